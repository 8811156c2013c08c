package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/types/models"
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <address>",
	Short: "Look up a node",
	Long:  "Fetch the node record and reward metrics of a node and print the formatted result",
	Args:  cobra.ExactArgs(1),
	RunE:  runLookup,
}

func init() {
	rootCmd.AddCommand(lookupCmd)

	lookupCmd.Flags().String("config", "", "Path to brubeckscan config file (embedded defaults if empty)")
	lookupCmd.Flags().String("tz", "", "Timezone for claim times (IANA name, config default if empty)")
	lookupCmd.Flags().String("ptz", "", "Timezone for payout times (IANA name, config default if empty)")
	lookupCmd.Flags().Bool("json", false, "Print the result as json")
	lookupCmd.Flags().BoolP("verbose", "v", false, "Log upstream requests")
}

func runLookup(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	claimTimezone, _ := cmd.Flags().GetString("tz")
	payoutTimezone, _ := cmd.Flags().GetString("ptz")
	asJSON, _ := cmd.Flags().GetBool("json")
	verbose, _ := cmd.Flags().GetBool("verbose")

	logger := logrus.New()
	logger.SetOutput(cmd.ErrOrStderr())
	logger.SetLevel(logrus.WarnLevel)
	if verbose {
		logger.SetLevel(logrus.DebugLevel)
	}
	logrus.SetLevel(logger.GetLevel())

	if err := loadConfig(configPath); err != nil {
		return err
	}
	if err := services.StartNodeService(logger.WithField("module", "nodeservice")); err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	viewOpts := services.NodeViewOptionsFromConfig(payoutTimezone, claimTimezone)
	if err := services.GlobalNodeService.ValidateLookup(args[0], viewOpts); err != nil {
		return err
	}

	node, bundle, err := services.GlobalNodeService.Lookup(ctx, args[0])
	if err != nil {
		return err
	}

	pageData, err := services.BuildNodeView(node, bundle, viewOpts)
	if err != nil {
		return err
	}

	if asJSON {
		encoder := json.NewEncoder(cmd.OutOrStdout())
		encoder.SetIndent("", "  ")
		return encoder.Encode(pageData)
	}

	printNodeView(cmd.OutOrStdout(), pageData)
	return nil
}

func printNodeView(out io.Writer, pageData *models.NodePageData) {
	fmt.Fprintf(out, "Node %v\n\n", pageData.AddressChecksum)

	overview := newTable(out, []string{"Field", "Value"})
	overview.Append([]string{"Status", pageData.StatusLabel})
	overview.Append([]string{"Staked", pageData.Staked})
	overview.Append([]string{"To be received", pageData.ToBeReceived})
	overview.Append([]string{"Rewards", pageData.Rewards})
	overview.Append([]string{"Claims", strconv.FormatInt(pageData.ClaimCount, 10)})
	overview.Append([]string{"Claim percentage", pageData.ClaimPercentage + "%"})
	overview.Render()

	fmt.Fprintf(out, "\nPayouts (%v)\n", pageData.PayoutTimezone)
	payouts := newTable(out, []string{"Time", "Value", "Rounded"})
	for _, payout := range pageData.Payouts {
		payouts.Append([]string{payout.Time, payout.Value, strconv.FormatInt(payout.Rounded, 10)})
	}
	payouts.Render()

	fmt.Fprintf(out, "\nClaim codes (%v)\n", pageData.ClaimTimezone)
	claims := newTable(out, []string{"Code", "Time"})
	for _, claim := range pageData.ClaimCodes {
		claims.Append([]string{claim.ID, claim.Time})
	}
	claims.Render()

	for _, group := range pageData.MetricGroups {
		fmt.Fprintf(out, "\n%v\n", group.Title)
		metrics := newTable(out, []string{"Metric", "Value"})
		for _, entry := range group.Entries {
			metrics.Append([]string{entry.Label, entry.Value})
		}
		metrics.Render()
	}
}

func newTable(out io.Writer, header []string) *tablewriter.Table {
	table := tablewriter.NewWriter(out)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(false)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	return table
}
