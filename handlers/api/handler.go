package api

// @title BrubeckScan API
// @version 1.0
// @description Reward and staking statistics of Streamr Brubeck nodes.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @BasePath /api
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @tag.name Node
// @tag.description Node lookup endpoints

// @tag.name General
// @tag.description General information endpoints

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/utils"
)

type ApiResponse struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

var logger = logrus.StandardLogger().WithField("module", "api")

func sendBadRequestResponse(w http.ResponseWriter, route, message string) {
	sendErrorWithCodeResponse(w, route, message, http.StatusBadRequest)
}

func sendServerErrorResponse(w http.ResponseWriter, route, message string) {
	sendErrorWithCodeResponse(w, route, message, http.StatusInternalServerError)
}

func sendErrorWithCodeResponse(w http.ResponseWriter, route, message string, errorcode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(errorcode)
	response := &ApiResponse{
		Status: "ERROR: " + message,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("error serializing json error for API %v route: %v", route, err)
	}
}

// sendLookupErrorResponse maps node lookup failures to their http status
func sendLookupErrorResponse(w http.ResponseWriter, route string, err error) {
	var endpointErr *services.EndpointError
	switch {
	case errors.Is(err, utils.ErrInvalidAddress), errors.Is(err, utils.ErrUnknownTimezone):
		sendBadRequestResponse(w, route, err.Error())
	case errors.Is(err, services.ErrNodeNotFound):
		sendErrorWithCodeResponse(w, route, "node not found", http.StatusNotFound)
	case errors.As(err, &endpointErr):
		sendErrorWithCodeResponse(w, route, "could not fetch node data from "+endpointErr.Endpoint+" endpoint", http.StatusBadGateway)
	default:
		logger.WithError(err).Errorf("unexpected error in API %v route", route)
		sendServerErrorResponse(w, route, "internal server error")
	}
}

func sendOKResponse(w http.ResponseWriter, route string, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	response := &ApiResponse{
		Status: "OK",
		Data:   data,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.Errorf("error serializing json data for API %v route: %v", route, err)
	}
}
