package api

import (
	"net/http"
	"strings"

	"github.com/gorilla/mux"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/types/models"
)

// APINodeResponse represents the response structure for a node lookup
type APINodeResponse struct {
	Status string               `json:"status"`
	Data   *models.NodePageData `json:"data"`
}

// APINodeV1 returns the node overview, payouts, claim codes and metrics of a node
// @Summary Get node details
// @Description Looks up a node by its address. Payout times are formatted in the ptz timezone, claim times in the tz timezone.
// @Tags Node
// @Produce json
// @Param address path string true "Node address (0x prefixed, 40 hex characters)"
// @Param tz query string false "Claim timezone (IANA name)"
// @Param ptz query string false "Payout timezone (IANA name)"
// @Success 200 {object} APINodeResponse
// @Failure 400 {object} ApiResponse "Invalid address or timezone"
// @Failure 404 {object} ApiResponse "Node not found"
// @Failure 502 {object} ApiResponse "Node api unavailable"
// @Router /v1/node/{address} [get]
// @ID getNode
func APINodeV1(w http.ResponseWriter, r *http.Request) {
	route := "/api/v1/node/{address}"
	address := strings.TrimSpace(mux.Vars(r)["address"])
	query := r.URL.Query()

	viewOpts := services.NodeViewOptionsFromConfig(query.Get("ptz"), query.Get("tz"))
	if err := services.GlobalNodeService.ValidateLookup(address, viewOpts); err != nil {
		sendLookupErrorResponse(w, route, err)
		return
	}

	node, bundle, err := services.GlobalNodeService.Lookup(r.Context(), address)
	if err != nil {
		sendLookupErrorResponse(w, route, err)
		return
	}

	pageData, err := services.BuildNodeView(node, bundle, viewOpts)
	if err != nil {
		sendLookupErrorResponse(w, route, err)
		return
	}

	sendOKResponse(w, route, pageData)
}
