package cmd

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "rdn",
		Short:        "rdn",
		SilenceUsage: true,
		Long:         `CLI tool for validating and inspecting RDN documents. See README.md.`,
	}

	maxDepth       int
	comments       string
	trailingCommas bool
	multipleValues bool
)

// Execute executes the root command.
func Execute() error {
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "container nesting limit; 0 means the default of 64")
	rootCmd.PersistentFlags().StringVar(&comments, "comments", "", "comment handling: disallow, allow or skip")
	rootCmd.PersistentFlags().BoolVar(&trailingCommas, "trailing-commas", false, "allow a trailing comma before a closing bracket")
	rootCmd.PersistentFlags().BoolVar(&multipleValues, "multiple-values", false, "allow multiple whitespace-separated top-level values")
	return rootCmd.Execute()
}
