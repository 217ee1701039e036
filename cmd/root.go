package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "libraryloan",
	Short: "Library loan backend",
	Long:  "REST backend for borrowing books from the Google Books catalog with API-key and session auth.",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
