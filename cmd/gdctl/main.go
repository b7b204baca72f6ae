package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	apiFlag     string
	verboseFlag bool
	rootCmd     = &cobra.Command{
		Use:           "gdctl",
		Short:         "CLI client for the GD service REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

func init() {
	rootCmd.PersistentFlags().StringVarP(&apiFlag, "api", "a", "http://localhost:8080", "GD service base URL")
	rootCmd.PersistentFlags().BoolVarP(&verboseFlag, "verbose", "V", false, "Log requests to stderr")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
