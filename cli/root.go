package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"ar-model-dashboard/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	APIURL        string
	CacheFile     string
	RedisAddr     string
	RedisPassword string
	RedisDB       int
	Format        string // "json" | "text"
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// NewRootCommand creates the root command of the operator CLI.
// Flag defaults come from the DASHBOARD_* environment variables.
func NewRootCommand() *cobra.Command {
	defaults, err := config.LoadClient()
	if err != nil {
		defaults = config.Client{APIURL: "http://localhost:8080", CacheFile: "ar-model-test-statuses.json"}
	}
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "dashboard",
		Short: "AR model dashboard operator CLI",
		Long: `Review AR model assets of the catalog from the terminal.

Keeps a local cache of test statuses and persists verification flags and notes
to the dashboard backend.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err != nil {
				return err
			}
			if !isValidFormat(opts.Format) {
				return fmt.Errorf("invalid format %q: must be one of %v", opts.Format, ValidFormats)
			}
			return nil
		},
		SilenceErrors: true, // main prints the error once
	}

	// Global flags
	cmd.PersistentFlags().StringVar(&opts.APIURL, "api-url", defaults.APIURL, "dashboard backend base url")
	cmd.PersistentFlags().StringVar(&opts.CacheFile, "cache-file", defaults.CacheFile, "local status cache file")
	cmd.PersistentFlags().StringVar(&opts.RedisAddr, "redis-addr", defaults.RedisAddr, "keep the status cache in redis instead of a file")
	cmd.PersistentFlags().StringVar(&opts.RedisPassword, "redis-password", defaults.RedisPassword, "redis password")
	cmd.PersistentFlags().IntVar(&opts.RedisDB, "redis-db", defaults.RedisDB, "redis database number")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")

	// Add subcommands
	cmd.AddCommand(NewRefreshCommand(opts))
	cmd.AddCommand(NewVerifyCommand(opts))
	cmd.AddCommand(NewIncorrectCommand(opts))
	cmd.AddCommand(NewNotesCommand(opts))
	cmd.AddCommand(NewStatusCommand(opts))
	cmd.AddCommand(NewShowCommand(opts))
	cmd.AddCommand(NewClearCommand(opts))

	return cmd
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
