package services

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/types/models"
	"github.com/ethpandaops/brubeckscan/utils"
)

type NodeViewOptions struct {
	PayoutTimezone        string
	ClaimTimezone         string
	DefaultPayoutTimezone string
	DefaultClaimTimezone  string
}

// NodeViewOptionsFromConfig returns view options with the configured default timezones
func NodeViewOptionsFromConfig(payoutTimezone string, claimTimezone string) NodeViewOptions {
	opts := NodeViewOptions{
		PayoutTimezone: payoutTimezone,
		ClaimTimezone:  claimTimezone,
	}
	if utils.Config != nil {
		opts.DefaultPayoutTimezone = utils.Config.Frontend.DefaultPayoutTimezone
		opts.DefaultClaimTimezone = utils.Config.Frontend.DefaultClaimTimezone
	}
	return opts
}

// Validate checks both timezone selections without building a view
func (opts NodeViewOptions) Validate() error {
	opts = opts.withDefaults()
	if _, err := utils.LoadTimezone(opts.PayoutTimezone, opts.DefaultPayoutTimezone); err != nil {
		return err
	}
	if _, err := utils.LoadTimezone(opts.ClaimTimezone, opts.DefaultClaimTimezone); err != nil {
		return err
	}
	return nil
}

func (opts NodeViewOptions) withDefaults() NodeViewOptions {
	if opts.DefaultPayoutTimezone == "" {
		opts.DefaultPayoutTimezone = "UTC"
	}
	if opts.DefaultClaimTimezone == "" {
		opts.DefaultClaimTimezone = "US/Eastern"
	}
	return opts
}

// BuildNodeView maps a fetched node record and its metrics onto the node page model.
// The record and bundle are not modified.
func BuildNodeView(record *types.NodeRecord, bundle *types.MetricsBundle, opts NodeViewOptions) (*models.NodePageData, error) {
	if record == nil {
		return nil, fmt.Errorf("%w: empty node record", ErrNodeNotFound)
	}

	opts = opts.withDefaults()

	payoutLoc, err := utils.LoadTimezone(opts.PayoutTimezone, opts.DefaultPayoutTimezone)
	if err != nil {
		return nil, err
	}
	claimLoc, err := utils.LoadTimezone(opts.ClaimTimezone, opts.DefaultClaimTimezone)
	if err != nil {
		return nil, err
	}

	pageData := &models.NodePageData{
		Address:         record.Address,
		AddressChecksum: utils.ChecksumAddress(record.Address),
		AddressShort:    utils.ShortAddress(record.Address),
		IdenticonURL:    record.IdenticonURL,
		StatusOK:        bool(record.Status),
		Staked:          record.Staked.String(),
		ToBeReceived:    record.ToBeReceived.String(),
		Rewards:         record.Rewards.String(),
		ClaimCount:      int64(record.ClaimCount),
		ClaimPercentage: utils.RoundAmount(record.ClaimPercentage, 2),
		PayoutTimezone:  payoutLoc.String(),
		ClaimTimezone:   claimLoc.String(),
	}

	if pageData.StatusOK {
		pageData.StatusLabel = "OK"
	} else {
		pageData.StatusLabel = "NO"
	}

	if pageData.IdenticonURL == "" {
		pageData.IdenticonURL = "/identicon?key=" + url.QueryEscape(record.Address)
		pageData.IdenticonFallback = true
	}

	// most recent payout first
	pageData.Payouts = make([]*models.NodePageDataPayout, 0, len(record.Payouts))
	for i := len(record.Payouts) - 1; i >= 0; i-- {
		payout := record.Payouts[i]
		pageData.Payouts = append(pageData.Payouts, &models.NodePageDataPayout{
			Timestamp: int64(payout.Timestamp),
			Time:      utils.FormatPayoutTime(int64(payout.Timestamp), payoutLoc),
			Value:     payout.Value.String(),
			Rounded:   utils.CeilAmount(payout.Value),
		})
	}
	pageData.PayoutCount = uint64(len(pageData.Payouts))

	pageData.ClaimCodes = make([]*models.NodePageDataClaim, 0, len(record.ClaimCodes))
	for _, claimCode := range record.ClaimCodes {
		claimTime, err := utils.FormatClaimTime(claimCode.ClaimTime, claimLoc)
		if err != nil {
			logrus.WithField("module", "node_view").WithError(err).Debugf("cannot convert claim time of %v", claimCode.ID)
			claimTime = claimCode.ClaimTime
		}
		pageData.ClaimCodes = append(pageData.ClaimCodes, &models.NodePageDataClaim{
			ID:        claimCode.ID,
			ClaimTime: claimCode.ClaimTime,
			Time:      claimTime,
		})
	}
	pageData.ClaimCodeCount = uint64(len(pageData.ClaimCodes))

	if bundle != nil {
		groups := []struct {
			key     string
			title   string
			payload json.RawMessage
		}{
			{EndpointAccRewards, "Accumulated Rewards", bundle.AccRewards},
			{EndpointClaimedRewards, "Claimed Rewards", bundle.ClaimedRewards},
			{EndpointAprApy, "APR / APY", bundle.AprApy},
		}
		for _, group := range groups {
			if group.payload == nil {
				continue
			}
			entries, err := buildMetricEntries(group.payload)
			if err != nil {
				logrus.WithField("module", "node_view").WithError(err).Debugf("cannot decode %v metrics", group.key)
				continue
			}
			pageData.MetricGroups = append(pageData.MetricGroups, &models.NodePageDataMetrics{
				Key:     group.key,
				Title:   group.title,
				Entries: entries,
			})
		}
	}

	return pageData, nil
}

func buildMetricEntries(payload json.RawMessage) ([]*models.NodePageDataMetricItem, error) {
	decoder := json.NewDecoder(bytes.NewReader(payload))
	decoder.UseNumber()

	var value interface{}
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}

	flat := map[string]interface{}{}
	flattenMetricValue("", value, flat)

	keys := make([]string, 0, len(flat))
	for key := range flat {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	entries := make([]*models.NodePageDataMetricItem, 0, len(keys))
	for _, key := range keys {
		entries = append(entries, &models.NodePageDataMetricItem{
			Label: utils.FormatMetricLabel(key),
			Value: utils.FormatMetricValue(flat[key]),
		})
	}
	return entries, nil
}

func flattenMetricValue(prefix string, value interface{}, flat map[string]interface{}) {
	switch v := value.(type) {
	case map[string]interface{}:
		for key, item := range v {
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenMetricValue(key, item, flat)
		}
	case []interface{}:
		for idx, item := range v {
			key := strconv.Itoa(idx)
			if prefix != "" {
				key = prefix + "." + key
			}
			flattenMetricValue(key, item, flat)
		}
	default:
		if prefix == "" {
			prefix = "value"
		}
		flat[prefix] = v
	}
}
