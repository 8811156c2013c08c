package api

import (
	"net/http"

	"github.com/ethpandaops/brubeckscan/utils"
)

// APITimezonesData lists the selectable timezones and the configured defaults
type APITimezonesData struct {
	DefaultClaimTimezone  string   `json:"default_claim_timezone"`
	DefaultPayoutTimezone string   `json:"default_payout_timezone"`
	Timezones             []string `json:"timezones"`
	Count                 uint64   `json:"count"`
}

// APITimezonesV1 returns the IANA timezone names accepted by the tz and ptz parameters
// @Summary Get timezones
// @Tags General
// @Produce json
// @Success 200 {object} ApiResponse{data=APITimezonesData}
// @Router /v1/timezones [get]
// @ID getTimezones
func APITimezonesV1(w http.ResponseWriter, r *http.Request) {
	timezones := utils.GetTimezoneNames()
	data := &APITimezonesData{
		Timezones: timezones,
		Count:     uint64(len(timezones)),
	}
	if utils.Config != nil {
		data.DefaultClaimTimezone = utils.Config.Frontend.DefaultClaimTimezone
		data.DefaultPayoutTimezone = utils.Config.Frontend.DefaultPayoutTimezone
	}

	sendOKResponse(w, "/api/v1/timezones", data)
}
