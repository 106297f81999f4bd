package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"ar-model-dashboard/client"
	"ar-model-dashboard/models"
)

// NewRefreshCommand creates the refresh command.
func NewRefreshCommand(rootOpts *RootOptions) *cobra.Command {
	var pageSize int

	cmd := &cobra.Command{
		Use:          "refresh",
		Short:        "Load the catalog, synchronize variants and pull curated state",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.finish()

			groups, err := client.NewDashboard(s.api, s.cache, pageSize).Refresh(cmd.Context())
			if err != nil {
				return fmt.Errorf("failed to refresh catalog: %w", err)
			}

			variants := 0
			for _, g := range groups {
				variants += len(g.Variants)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%d groups, %d variants\n", len(groups), variants)
			return nil
		},
	}

	cmd.Flags().IntVar(&pageSize, "page-size", client.DefaultPageSize, "catalog page size")
	return cmd
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:          "verify <variant-id>",
		Short:        "Mark a variant as checked OK (clears the incorrect flag)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateAndShow(cmd, rootOpts, args[0], func(c *client.StatusCache, id int64) error {
				c.UpdateHumanVerified(id, !undo)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "clear the verified flag instead")
	return cmd
}

// NewIncorrectCommand creates the incorrect command.
func NewIncorrectCommand(rootOpts *RootOptions) *cobra.Command {
	var undo bool

	cmd := &cobra.Command{
		Use:          "incorrect <variant-id>",
		Short:        "Flag a variant's model as incorrect (clears the verified flag)",
		Args:         cobra.ExactArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return updateAndShow(cmd, rootOpts, args[0], func(c *client.StatusCache, id int64) error {
				c.UpdateManualIncorrect(id, !undo)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&undo, "undo", false, "clear the incorrect flag instead")
	return cmd
}

// NewNotesCommand creates the notes command.
func NewNotesCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "notes <variant-id> [text...]",
		Short:        "Replace the notes of a variant (no text clears them)",
		Args:         cobra.MinimumNArgs(1),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.Join(args[1:], " ")
			return updateAndShow(cmd, rootOpts, args[0], func(c *client.StatusCache, id int64) error {
				c.UpdateNotes(id, text)
				return nil
			})
		},
	}
}

// NewStatusCommand creates the status command.
func NewStatusCommand(rootOpts *RootOptions) *cobra.Command {
	var (
		notes string
		auto  bool
	)

	cmd := &cobra.Command{
		Use:   "status <variant-id> <ios|android> <status>",
		Short: "Record a manual or automatic test result (kept locally)",
		Long: `Record a test result in the local cache.

Manual statuses: not_tested, passed, failed.
Automatic statuses (--auto): not_tested, loading, passed, failed.`,
		Args:         cobra.ExactArgs(3),
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			platform := models.Platform(strings.ToLower(args[1]))
			status := strings.ToLower(args[2])

			return updateAndShow(cmd, rootOpts, args[0], func(c *client.StatusCache, id int64) error {
				if auto {
					return c.UpdateAutoStatus(id, platform, models.AutoTestStatus(status))
				}
				var n *string
				if cmd.Flags().Changed("notes") {
					n = &notes
				}
				return c.UpdateStatus(id, platform, models.TestStatus(status), n)
			})
		},
	}

	cmd.Flags().StringVar(&notes, "notes", "", "replace the local notes too")
	cmd.Flags().BoolVar(&auto, "auto", false, "record an automatic check result")
	return cmd
}

// NewShowCommand creates the show command.
func NewShowCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "show [variant-id...]",
		Short:        "Print cached statuses",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.finish()

			var statuses []models.ClientVariantStatus
			if len(args) == 0 {
				for _, st := range s.cache.All() {
					statuses = append(statuses, st)
				}
			}
			for _, arg := range args {
				id, err := parseVariantID(arg)
				if err != nil {
					return err
				}
				if st, ok := s.cache.Get(id); ok {
					statuses = append(statuses, st)
				}
			}
			return writeStatuses(cmd.OutOrStdout(), rootOpts.Format, statuses)
		},
	}
}

// NewClearCommand creates the clear command.
func NewClearCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:          "clear",
		Short:        "Forget every cached status (server state is kept)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := openSession(cmd.Context(), rootOpts)
			if err != nil {
				return err
			}
			defer s.finish()

			if err := s.cache.ClearAll(); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "status cache cleared")
			return nil
		},
	}
}

// updateAndShow applies one cache update, waits for its write and prints the result
func updateAndShow(cmd *cobra.Command, opts *RootOptions, arg string, update func(*client.StatusCache, int64) error) error {
	id, err := parseVariantID(arg)
	if err != nil {
		return err
	}

	s, err := openSession(cmd.Context(), opts)
	if err != nil {
		return err
	}

	updateErr := update(s.cache, id)
	if err := s.finish(); err != nil {
		return err
	}
	if updateErr != nil {
		return updateErr
	}

	st, _ := s.cache.Get(id)
	return writeStatuses(cmd.OutOrStdout(), opts.Format, []models.ClientVariantStatus{st})
}
