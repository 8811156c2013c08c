package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// NodeResponse is the envelope returned by the node profile endpoint.
type NodeResponse struct {
	Data *struct {
		Node *NodeRecord `json:"node"`
	} `json:"data"`
}

// NodeRecord holds the profile of a single node as returned by the node api.
type NodeRecord struct {
	Address         string          `json:"address"`
	Status          FlexBool        `json:"status"`
	Staked          decimal.Decimal `json:"staked"`
	ToBeReceived    decimal.Decimal `json:"toBeReceived"`
	Rewards         decimal.Decimal `json:"rewards"`
	ClaimCount      FlexInt64       `json:"claimCount"`
	ClaimPercentage decimal.Decimal `json:"claimPercentage"`
	IdenticonURL    string          `json:"identiconURL"`
	Payouts         []NodePayout    `json:"payouts"`
	ClaimCodes      []NodeClaimCode `json:"claimedRewardCodes"`
}

type NodePayout struct {
	Timestamp FlexInt64       `json:"timestamp"`
	Value     decimal.Decimal `json:"value"`
}

type NodeClaimCode struct {
	ID        string `json:"id"`
	ClaimTime string `json:"claimTime"`
}

// MetricsBundle holds the optional metric payloads of a node.
// A nil payload means the source endpoint did not answer with a valid json response.
type MetricsBundle struct {
	AccRewards     json.RawMessage `json:"acc_rewards,omitempty"`
	ClaimedRewards json.RawMessage `json:"claimed_rewards,omitempty"`
	AprApy         json.RawMessage `json:"apr_apy,omitempty"`
}

func (mb *MetricsBundle) Count() int {
	if mb == nil {
		return 0
	}
	count := 0
	for _, payload := range []json.RawMessage{mb.AccRewards, mb.ClaimedRewards, mb.AprApy} {
		if payload != nil {
			count++
		}
	}
	return count
}

// FlexBool accepts json booleans as well as their string and numeric representations.
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	str := strings.Trim(string(data), "\"")
	switch strings.ToLower(str) {
	case "true", "ok", "yes", "online":
		*b = true
		return nil
	case "false", "no", "offline", "":
		*b = false
		return nil
	}

	num, err := strconv.ParseFloat(str, 64)
	if err != nil {
		return fmt.Errorf("invalid boolean value: %s", data)
	}
	*b = num != 0
	return nil
}

// FlexInt64 accepts json numbers and numeric strings.
type FlexInt64 int64

func (i *FlexInt64) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}

	str := strings.Trim(string(data), "\"")
	if str == "" {
		return nil
	}

	if num, err := strconv.ParseInt(str, 10, 64); err == nil {
		*i = FlexInt64(num)
		return nil
	}

	num, err := strconv.ParseFloat(str, 64)
	if err != nil || math.IsNaN(num) || math.IsInf(num, 0) {
		return fmt.Errorf("invalid integer value: %s", data)
	}
	*i = FlexInt64(num)
	return nil
}
