package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ethpandaops/brubeckscan/services"
)

// APINodeMetricsResponse represents the response structure for the node metrics
type APINodeMetricsResponse struct {
	Status string              `json:"status"`
	Data   *APINodeMetricsData `json:"data"`
}

// APINodeMetricsData contains the raw metric payloads. Endpoints that failed are missing.
type APINodeMetricsData struct {
	Address        string          `json:"address"`
	AccRewards     json.RawMessage `json:"acc_rewards,omitempty"`
	ClaimedRewards json.RawMessage `json:"claimed_rewards,omitempty"`
	AprApy         json.RawMessage `json:"apr_apy,omitempty"`
	Available      []string        `json:"available"`
}

// APINodeMetricsV1 returns the raw reward metrics of a node
// @Summary Get node metrics
// @Description Returns the accumulated rewards, claimed rewards and global APR/APY payloads as returned by the upstream apis. Failed upstream endpoints are left out.
// @Tags Node
// @Produce json
// @Param address path string true "Node address (0x prefixed, 40 hex characters)"
// @Success 200 {object} APINodeMetricsResponse
// @Failure 400 {object} ApiResponse "Invalid address"
// @Router /v1/node/{address}/metrics [get]
// @ID getNodeMetrics
func APINodeMetricsV1(w http.ResponseWriter, r *http.Request) {
	route := "/api/v1/node/{address}/metrics"
	address := strings.TrimSpace(mux.Vars(r)["address"])

	bundle, err := services.GlobalNodeService.FetchMetrics(r.Context(), address)
	if err != nil {
		sendLookupErrorResponse(w, route, err)
		return
	}

	data := &APINodeMetricsData{
		Address:        address,
		AccRewards:     bundle.AccRewards,
		ClaimedRewards: bundle.ClaimedRewards,
		AprApy:         bundle.AprApy,
		Available:      []string{},
	}
	if bundle.AccRewards != nil {
		data.Available = append(data.Available, services.EndpointAccRewards)
	}
	if bundle.ClaimedRewards != nil {
		data.Available = append(data.Available, services.EndpointClaimedRewards)
	}
	if bundle.AprApy != nil {
		data.Available = append(data.Available, services.EndpointAprApy)
	}

	sendOKResponse(w, route, data)
}
