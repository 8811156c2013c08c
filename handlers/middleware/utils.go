package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strings"

	"github.com/sirupsen/logrus"
)

type apiErrorBody struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// APIErrorResponse writes an error in the api response envelope
func APIErrorResponse(w http.ResponseWriter, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(&apiErrorBody{Status: message}); err != nil {
		logrus.WithError(err).Error("failed to encode API error response")
	}
}

// GetClientIP extracts the client ip, skipping proxyCount trusted proxies in X-Forwarded-For
func GetClientIP(r *http.Request, proxyCount uint) string {
	var ip string

	if proxyCount > 0 {
		forwardIps := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		forwardIdx := len(forwardIps) - int(proxyCount)
		if forwardIdx >= 0 {
			ip = strings.TrimSpace(forwardIps[forwardIdx])
		}
	}
	if ip != "" {
		return ip
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
