package main

import (
	"bytes"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/types/models"
	"github.com/ethpandaops/brubeckscan/utils"
)

func TestPrintNodeView(t *testing.T) {
	pageData := &models.NodePageData{
		AddressChecksum: "0x4a2A3501e50759250828ACd85E7450fb55A10a69",
		StatusLabel:     "OK",
		Staked:          "10000",
		ToBeReceived:    "12.5",
		Rewards:         "400",
		ClaimCount:      1234,
		ClaimPercentage: "93.46",
		PayoutTimezone:  "UTC",
		Payouts: []*models.NodePageDataPayout{
			{Time: "Sun, 01 Jan 2023 12:00:00 UTC", Value: "41.2", Rounded: 42},
		},
		ClaimTimezone: "US/Eastern",
		ClaimCodes: []*models.NodePageDataClaim{
			{ID: "code-1", Time: "07:00:00 AM"},
		},
		MetricGroups: []*models.NodePageDataMetrics{
			{Key: "apr_apy", Title: "APR / APY", Entries: []*models.NodePageDataMetricItem{{Label: "Apr", Value: "19.2"}}},
		},
	}

	buf := &bytes.Buffer{}
	printNodeView(buf, pageData)
	output := buf.String()

	for _, expected := range []string{
		"Node 0x4a2A3501e50759250828ACd85E7450fb55A10a69",
		"93.46%",
		"Payouts (UTC)",
		"Sun, 01 Jan 2023 12:00:00 UTC",
		"Claim codes (US/Eastern)",
		"07:00:00 AM",
		"APR / APY",
		"19.2",
	} {
		assert.Contains(t, output, expected)
	}
}

func TestLookupRejectsTimezoneBeforeFetching(t *testing.T) {
	var calls atomic.Int64
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer upstream.Close()

	configPath := filepath.Join(t.TempDir(), "config.yml")
	configYml := fmt.Sprintf("endpoints:\n  nodeApi: %q\n  accRewardsApi: %q\n  claimedRewardsApi: %q\n  aprApyApi: %q\n",
		upstream.URL+"/api", upstream.URL+"/datarewards", upstream.URL+"/stats", upstream.URL+"/apy")
	require.NoError(t, os.WriteFile(configPath, []byte(configYml), 0o600))

	services.GlobalNodeService = nil
	t.Cleanup(func() {
		services.GlobalNodeService = nil
	})

	cmd := &cobra.Command{}
	cmd.Flags().AddFlagSet(lookupCmd.Flags())
	require.NoError(t, cmd.Flags().Set("config", configPath))
	require.NoError(t, cmd.Flags().Set("tz", "Europe/Atlantis"))
	t.Cleanup(func() {
		lookupCmd.Flags().Set("config", "")
		lookupCmd.Flags().Set("tz", "")
	})
	cmd.SetErr(&bytes.Buffer{})

	err := runLookup(cmd, []string{"0x4a2a3501e50759250828acd85e7450fb55a10a69"})
	assert.ErrorIs(t, err, utils.ErrUnknownTimezone)
	assert.Equal(t, int64(0), calls.Load())
}
