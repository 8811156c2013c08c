package services

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

func testNodeRecord(t *testing.T) *types.NodeRecord {
	response := &types.NodeResponse{}
	require.NoError(t, json.Unmarshal([]byte(testNodeResponse), response))
	node := response.Data.Node
	node.Address = testNodeAddress
	return node
}

func TestBuildNodeView(t *testing.T) {
	record := testNodeRecord(t)

	view, err := BuildNodeView(record, nil, NodeViewOptions{})
	require.NoError(t, err)

	assert.Equal(t, testNodeAddress, view.Address)
	assert.Equal(t, "0x4a...", view.AddressShort)
	assert.Equal(t, "0x4a2A3501e50759250828ACd85E7450fb55A10a69", view.AddressChecksum)
	assert.Equal(t, "https://brubeck1.streamr.network/identicon/0x4a2a.png", view.IdenticonURL)
	assert.False(t, view.IdenticonFallback)
	assert.True(t, view.StatusOK)
	assert.Equal(t, "OK", view.StatusLabel)
	assert.Equal(t, "10000", view.Staked)
	assert.Equal(t, "123.456", view.ToBeReceived)
	assert.Equal(t, "4321.5", view.Rewards)
	assert.Equal(t, int64(87), view.ClaimCount)
	assert.Equal(t, "93.46", view.ClaimPercentage)
	assert.Equal(t, "UTC", view.PayoutTimezone)
	assert.Equal(t, "US/Eastern", view.ClaimTimezone)
	assert.Empty(t, view.MetricGroups)

	// payouts are shown most recent first
	require.Len(t, view.Payouts, 2)
	assert.Equal(t, uint64(2), view.PayoutCount)
	assert.Equal(t, int64(1672574400), view.Payouts[0].Timestamp)
	assert.Equal(t, "Sun, 01 Jan 2023 12:00:00 UTC", view.Payouts[0].Time)
	assert.Equal(t, int64(41), view.Payouts[0].Rounded)
	assert.Equal(t, int64(1672531200), view.Payouts[1].Timestamp)
	assert.Equal(t, "Sun, 01 Jan 2023 00:00:00 UTC", view.Payouts[1].Time)
	assert.Equal(t, int64(42), view.Payouts[1].Rounded)
	assert.Equal(t, "41.2", view.Payouts[1].Value)

	require.Len(t, view.ClaimCodes, 1)
	assert.Equal(t, "code-1", view.ClaimCodes[0].ID)
	assert.Equal(t, "07:00:00 AM", view.ClaimCodes[0].Time)
	assert.Equal(t, "2023-01-01T12:00:00.000Z", view.ClaimCodes[0].ClaimTime)

	// the record itself stays in received order
	assert.Equal(t, int64(1672531200), int64(record.Payouts[0].Timestamp))
}

func TestBuildNodeViewTimezones(t *testing.T) {
	tests := []struct {
		name          string
		opts          NodeViewOptions
		expectPayout  string
		expectClaim   string
		expectFailure bool
	}{
		{
			name:         "defaults",
			opts:         NodeViewOptions{},
			expectPayout: "Sun, 01 Jan 2023 12:00:00 UTC",
			expectClaim:  "07:00:00 AM",
		},
		{
			name:         "configured defaults",
			opts:         NodeViewOptions{DefaultPayoutTimezone: "Asia/Tokyo", DefaultClaimTimezone: "UTC"},
			expectPayout: "Sun, 01 Jan 2023 21:00:00 JST",
			expectClaim:  "12:00:00 PM",
		},
		{
			name:         "selected timezones",
			opts:         NodeViewOptions{PayoutTimezone: "Europe/Berlin", ClaimTimezone: "Europe/Berlin"},
			expectPayout: "Sun, 01 Jan 2023 13:00:00 CET",
			expectClaim:  "01:00:00 PM",
		},
		{
			name:          "unknown payout timezone",
			opts:          NodeViewOptions{PayoutTimezone: "Mars/Olympus_Mons"},
			expectFailure: true,
		},
		{
			name:          "unknown claim timezone",
			opts:          NodeViewOptions{ClaimTimezone: "Nowhere"},
			expectFailure: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view, err := BuildNodeView(testNodeRecord(t), nil, tt.opts)
			if tt.expectFailure {
				assert.Error(t, err)
				assert.Nil(t, view)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.expectPayout, view.Payouts[0].Time)
			assert.Equal(t, tt.expectClaim, view.ClaimCodes[0].Time)
		})
	}
}

func TestBuildNodeViewFallbacks(t *testing.T) {
	record := &types.NodeRecord{
		Address:         testNodeAddress,
		ClaimPercentage: decimal.RequireFromString("12.344"),
		ClaimCodes: []types.NodeClaimCode{
			{ID: "broken", ClaimTime: "yesterday"},
		},
	}

	view, err := BuildNodeView(record, nil, NodeViewOptions{})
	require.NoError(t, err)

	assert.True(t, view.IdenticonFallback)
	assert.Equal(t, "/identicon?key="+testNodeAddress, view.IdenticonURL)
	assert.Equal(t, "NO", view.StatusLabel)
	assert.Equal(t, "12.34", view.ClaimPercentage)
	assert.Empty(t, view.Payouts)
	require.Len(t, view.ClaimCodes, 1)
	assert.Equal(t, "yesterday", view.ClaimCodes[0].Time)
}

func TestBuildNodeViewMetrics(t *testing.T) {
	bundle := &types.MetricsBundle{
		AccRewards: json.RawMessage(`{"rewards": {"total": 1234.56789, "last": 2}, "days": [1, 2]}`),
		AprApy:     json.RawMessage(`{"24h-APR": 19.2, "24h-APY": 21.04}`),
	}

	view, err := BuildNodeView(testNodeRecord(t), bundle, NodeViewOptions{})
	require.NoError(t, err)
	require.Len(t, view.MetricGroups, 2)

	accRewards := view.MetricGroups[0]
	assert.Equal(t, EndpointAccRewards, accRewards.Key)
	assert.Equal(t, "Accumulated Rewards", accRewards.Title)
	require.Len(t, accRewards.Entries, 4)
	values := []string{}
	for _, entry := range accRewards.Entries {
		values = append(values, entry.Value)
	}
	assert.Equal(t, []string{"1", "2", "2", "1,234.5679"}, values)

	aprApy := view.MetricGroups[1]
	assert.Equal(t, EndpointAprApy, aprApy.Key)
	assert.Equal(t, "APR / APY", aprApy.Title)
	require.Len(t, aprApy.Entries, 2)
	assert.Equal(t, "19.2", aprApy.Entries[0].Value)
	assert.Equal(t, "21.04", aprApy.Entries[1].Value)
}

func TestBuildNodeViewScalarMetrics(t *testing.T) {
	bundle := &types.MetricsBundle{
		ClaimedRewards: json.RawMessage(`42`),
	}

	view, err := BuildNodeView(testNodeRecord(t), bundle, NodeViewOptions{})
	require.NoError(t, err)
	require.Len(t, view.MetricGroups, 1)
	require.Len(t, view.MetricGroups[0].Entries, 1)
	assert.Equal(t, "Value", view.MetricGroups[0].Entries[0].Label)
	assert.Equal(t, "42", view.MetricGroups[0].Entries[0].Value)
}

func TestNodeViewOptionsValidate(t *testing.T) {
	tests := []struct {
		name    string
		opts    NodeViewOptions
		wantErr bool
	}{
		{name: "defaults", opts: NodeViewOptions{}},
		{name: "selected", opts: NodeViewOptions{PayoutTimezone: "Asia/Tokyo", ClaimTimezone: "Europe/Berlin"}},
		{name: "bad payout timezone", opts: NodeViewOptions{PayoutTimezone: "Mars/Olympus"}, wantErr: true},
		{name: "bad claim timezone", opts: NodeViewOptions{ClaimTimezone: "Europe/Atlantis"}, wantErr: true},
		{name: "bad default", opts: NodeViewOptions{DefaultClaimTimezone: "Nowhere"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.opts.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, utils.ErrUnknownTimezone)
				return
			}
			assert.NoError(t, err)
		})
	}
}
