package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ethpandaops/brubeckscan/utils"
)

var timezonesCmd = &cobra.Command{
	Use:   "timezones",
	Short: "List selectable timezones",
	Long:  "Print the IANA timezone names accepted by the tz and ptz parameters",
	RunE: func(cmd *cobra.Command, args []string) error {
		filter, _ := cmd.Flags().GetString("filter")
		filter = strings.ToLower(filter)

		for _, name := range utils.GetTimezoneNames() {
			if filter != "" && !strings.Contains(strings.ToLower(name), filter) {
				continue
			}
			if _, err := fmt.Fprintln(cmd.OutOrStdout(), name); err != nil {
				return err
			}
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(timezonesCmd)

	timezonesCmd.Flags().StringP("filter", "f", "", "Only list timezones containing this text")
}
