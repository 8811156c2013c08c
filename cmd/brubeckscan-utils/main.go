package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "brubeckscan-utils",
	Short: "BrubeckScan node dashboard utilities",
	Long:  "Command line utilities for the BrubeckScan node dashboard including node lookups, timezone listing and api token generation",
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
