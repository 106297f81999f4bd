package main

import (
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"

	"ar-model-dashboard/cli"
	"ar-model-dashboard/config"
)

func main() {
	// Load .env file in development (ignores error if file doesn't exist)
	if !config.IsProduction() {
		if err := godotenv.Overload(".env"); err == nil {
			log.Printf("Loaded environment variables from .env")
		}
	}

	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
