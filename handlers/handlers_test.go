package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/brubeckscan/services"
	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

const testNodeAddress = "0x4a2a3501e50759250828acd85e7450fb55a10a69"

const testNodeResponse = `{
	"data": {
		"node": {
			"id": "0x4a2a3501e50759250828acd85e7450fb55a10a69",
			"status": true,
			"staked": 10000,
			"toBeReceived": "123.456",
			"rewards": 4321.5,
			"claimCount": 87,
			"claimPercentage": 93.4567,
			"payouts": [
				{"timestamp": 1672531200, "value": 41.2}
			],
			"claimedRewardCodes": [
				{"id": "code-1", "claimTime": "2023-01-01T12:00:00.000Z"}
			]
		}
	}
}`

type testUpstream struct {
	server    *httptest.Server
	nodeCalls atomic.Int64
	logs      *test.Hook
}

// setupTestEnv points the global services at a fake upstream serving nodeStatus/nodeBody for node lookups
func setupTestEnv(t *testing.T, nodeStatus int, nodeBody string) *testUpstream {
	t.Helper()

	upstream := &testUpstream{}
	upstream.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasPrefix(r.URL.Path, "/api/nodes/"):
			upstream.nodeCalls.Add(1)
			w.WriteHeader(nodeStatus)
			w.Write([]byte(nodeBody))
		case strings.HasPrefix(r.URL.Path, "/apy"):
			w.Write([]byte(`{"apr": 19.2, "apy": 21.1}`))
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(upstream.server.Close)

	cfg := &types.Config{}
	require.NoError(t, utils.ReadConfig(cfg, ""))
	cfg.Endpoints.NodeApi = upstream.server.URL + "/api"
	cfg.Endpoints.AccRewardsApi = upstream.server.URL + "/datarewards"
	cfg.Endpoints.ClaimedRewards = upstream.server.URL + "/stats"
	cfg.Endpoints.AprApyApi = upstream.server.URL + "/apy"
	utils.Config = cfg

	logger, hook := test.NewNullLogger()
	upstream.logs = hook
	services.GlobalNodeService = services.NewNodeService(services.NodeServiceConfig{
		NodeApi:           cfg.Endpoints.NodeApi,
		AccRewardsApi:     cfg.Endpoints.AccRewardsApi,
		ClaimedRewardsApi: cfg.Endpoints.ClaimedRewards,
		AprApyApi:         cfg.Endpoints.AprApyApi,
		RequestTimeout:    2 * time.Second,
	}, logger)
	services.GlobalFrontendCache = services.NewFrontendCacheService(nil, 5*time.Second, true, logger)
	services.GlobalCallRateLimiter = nil

	t.Cleanup(func() {
		services.GlobalNodeService = nil
		services.GlobalFrontendCache = nil
	})

	return upstream
}
