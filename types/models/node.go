package models

// NodePageData is a struct to hold info for the node page
type NodePageData struct {
	Address           string `json:"address"`
	AddressChecksum   string `json:"address_checksum"`
	AddressShort      string `json:"address_short"`
	IdenticonURL      string `json:"identicon_url"`
	IdenticonFallback bool   `json:"identicon_fallback"`
	StatusOK          bool   `json:"status_ok"`
	StatusLabel       string `json:"status"`

	Staked          string `json:"staked"`
	ToBeReceived    string `json:"to_be_received"`
	Rewards         string `json:"rewards"`
	ClaimCount      int64  `json:"claim_count"`
	ClaimPercentage string `json:"claim_percentage"`

	PayoutTimezone string                 `json:"payout_timezone"`
	Payouts        []*NodePageDataPayout  `json:"payouts"`
	PayoutCount    uint64                 `json:"payout_count"`
	ClaimTimezone  string                 `json:"claim_timezone"`
	ClaimCodes     []*NodePageDataClaim   `json:"claim_codes"`
	ClaimCodeCount uint64                 `json:"claim_code_count"`
	MetricGroups   []*NodePageDataMetrics `json:"metric_groups"`
	Timezones      []string               `json:"-"`
}

type NodePageDataPayout struct {
	Timestamp int64  `json:"timestamp"`
	Time      string `json:"time"`
	Value     string `json:"value"`
	Rounded   int64  `json:"rounded"`
}

type NodePageDataClaim struct {
	ID        string `json:"id"`
	ClaimTime string `json:"claim_time"`
	Time      string `json:"time"`
}

type NodePageDataMetrics struct {
	Key     string                    `json:"key"`
	Title   string                    `json:"title"`
	Entries []*NodePageDataMetricItem `json:"entries"`
}

type NodePageDataMetricItem struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// NodeLookupPageData is used for the node page when the lookup did not succeed
type NodeLookupPageData struct {
	Address   string `json:"address"`
	ErrorType string `json:"error_type"`
	Message   string `json:"message"`
}
