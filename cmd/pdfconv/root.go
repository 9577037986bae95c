package main

import (
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "pdfconv",
		Short: "Convert images into a one-image-per-page PDF",
		Long: `Pdfconv turns a list of JPEG, PNG, WebP or GIF files into a single PDF
document with one image per page.

Page size, orientation, sizing policy and margin match the web UI defaults
and can be overridden per run.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file if present (ignore errors)
			_ = godotenv.Load()
		},
	}

	cmd.AddCommand(newConvertCmd())

	return cmd
}
