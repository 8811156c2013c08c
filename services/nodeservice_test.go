package services

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethpandaops/brubeckscan/utils"
)

const testNodeAddress = "0x4a2a3501e50759250828acd85e7450fb55a10a69"

const testNodeResponse = `{
	"data": {
		"node": {
			"id": "0x4a2a3501e50759250828acd85e7450fb55a10a69",
			"identiconURL": "https://brubeck1.streamr.network/identicon/0x4a2a.png",
			"status": true,
			"staked": 10000,
			"toBeReceived": "123.456",
			"rewards": 4321.5,
			"claimCount": "87",
			"claimPercentage": 93.4567,
			"payouts": [
				{"timestamp": 1672531200, "value": 41.2},
				{"timestamp": "1672574400", "value": "41.0"}
			],
			"claimedRewardCodes": [
				{"id": "code-1", "claimTime": "2023-01-01T12:00:00.000Z"}
			]
		}
	}
}`

type testUpstream struct {
	server *httptest.Server
	calls  atomic.Int64
	routes map[string]func(w http.ResponseWriter, r *http.Request)
}

func newTestUpstream(t *testing.T, routes map[string]func(w http.ResponseWriter, r *http.Request)) *testUpstream {
	upstream := &testUpstream{routes: routes}
	upstream.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		upstream.calls.Add(1)
		for prefix, handler := range upstream.routes {
			if strings.HasPrefix(r.URL.Path, prefix) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	t.Cleanup(upstream.server.Close)
	return upstream
}

func (u *testUpstream) nodeService(logger logrus.FieldLogger) *NodeService {
	return NewNodeService(NodeServiceConfig{
		NodeApi:           u.server.URL + "/api",
		AccRewardsApi:     u.server.URL + "/datarewards",
		ClaimedRewardsApi: u.server.URL + "/stats",
		AprApyApi:         u.server.URL + "/apy",
		RequestTimeout:    2 * time.Second,
	}, logger)
}

func jsonResponse(status int, body string) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body))
	}
}

func TestValidateAddressMakesNoCalls(t *testing.T) {
	tests := []struct {
		name    string
		address string
	}{
		{name: "empty", address: ""},
		{name: "missing prefix", address: "4a2a3501e50759250828acd85e7450fb55a10a6900"},
		{name: "too short", address: "0x4a2a3501"},
		{name: "too long", address: testNodeAddress + "0"},
		{name: "non hex", address: "0x4a2a3501e50759250828acd85e7450fb55a10azz"},
		{name: "upper case prefix", address: "0X4a2a3501e50759250828acd85e7450fb55a10a69"},
		{name: "surrounding spaces", address: " " + testNodeAddress},
	}

	logger, _ := test.NewNullLogger()
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/": jsonResponse(http.StatusOK, testNodeResponse),
	})
	ns := upstream.nodeService(logger)

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ns.ValidateAddress(tt.address)
			assert.ErrorIs(t, err, ErrInvalidAddress)

			node, err := ns.FetchNode(context.Background(), tt.address)
			assert.Nil(t, node)
			assert.ErrorIs(t, err, ErrInvalidAddress)

			bundle, err := ns.FetchMetrics(context.Background(), tt.address)
			assert.Nil(t, bundle)
			assert.ErrorIs(t, err, ErrInvalidAddress)
		})
	}

	assert.Equal(t, int64(0), upstream.calls.Load())
}

func TestFetchNode(t *testing.T) {
	logger, _ := test.NewNullLogger()
	var requestedPath, userAgent string
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/api/nodes/": func(w http.ResponseWriter, r *http.Request) {
			requestedPath = r.URL.Path
			userAgent = r.Header.Get("User-Agent")
			jsonResponse(http.StatusOK, testNodeResponse)(w, r)
		},
	})

	node, err := upstream.nodeService(logger).FetchNode(context.Background(), testNodeAddress)
	require.NoError(t, err)
	require.NotNil(t, node)

	assert.Equal(t, "/api/nodes/"+testNodeAddress, requestedPath)
	assert.True(t, strings.HasPrefix(userAgent, "brubeckscan/"))

	assert.Equal(t, testNodeAddress, node.Address)
	assert.True(t, bool(node.Status))
	assert.True(t, decimal.NewFromInt(10000).Equal(node.Staked))
	assert.Equal(t, "123.456", node.ToBeReceived.String())
	assert.Equal(t, "4321.5", node.Rewards.String())
	assert.Equal(t, int64(87), int64(node.ClaimCount))
	assert.Equal(t, "93.4567", node.ClaimPercentage.String())
	assert.Equal(t, "https://brubeck1.streamr.network/identicon/0x4a2a.png", node.IdenticonURL)

	require.Len(t, node.Payouts, 2)
	assert.Equal(t, int64(1672531200), int64(node.Payouts[0].Timestamp))
	assert.Equal(t, "41.2", node.Payouts[0].Value.String())
	assert.Equal(t, int64(1672574400), int64(node.Payouts[1].Timestamp))

	require.Len(t, node.ClaimCodes, 1)
	assert.Equal(t, "code-1", node.ClaimCodes[0].ID)
	assert.Equal(t, "2023-01-01T12:00:00.000Z", node.ClaimCodes[0].ClaimTime)
}

func TestFetchNodeErrors(t *testing.T) {
	tests := []struct {
		name           string
		handler        func(w http.ResponseWriter, r *http.Request)
		expectNotFound bool
		expectStatus   int
	}{
		{
			name:           "http not found",
			handler:        jsonResponse(http.StatusNotFound, `{"error":"unknown node"}`),
			expectNotFound: true,
		},
		{
			name:           "missing node object",
			handler:        jsonResponse(http.StatusOK, `{"data":{"node":null}}`),
			expectNotFound: true,
		},
		{
			name:           "missing data object",
			handler:        jsonResponse(http.StatusOK, `{}`),
			expectNotFound: true,
		},
		{
			name:         "server error",
			handler:      jsonResponse(http.StatusInternalServerError, `internal error`),
			expectStatus: http.StatusInternalServerError,
		},
		{
			name:    "malformed json",
			handler: jsonResponse(http.StatusOK, `{"data":{"node":`),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, _ := test.NewNullLogger()
			upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
				"/api/nodes/": tt.handler,
			})

			node, err := upstream.nodeService(logger).FetchNode(context.Background(), testNodeAddress)
			assert.Nil(t, node)
			require.Error(t, err)

			if tt.expectNotFound {
				assert.ErrorIs(t, err, ErrNodeNotFound)
				return
			}

			var endpointErr *EndpointError
			require.True(t, errors.As(err, &endpointErr), "expected endpoint error, got %v", err)
			assert.Equal(t, EndpointNode, endpointErr.Endpoint)
			assert.Equal(t, tt.expectStatus, endpointErr.StatusCode)
			assert.NotErrorIs(t, err, ErrNodeNotFound)
		})
	}
}

func TestFetchNodeUnreachable(t *testing.T) {
	logger, _ := test.NewNullLogger()
	upstream := newTestUpstream(t, nil)
	ns := upstream.nodeService(logger)
	upstream.server.Close()

	_, err := ns.FetchNode(context.Background(), testNodeAddress)

	var endpointErr *EndpointError
	require.True(t, errors.As(err, &endpointErr))
	assert.Equal(t, 0, endpointErr.StatusCode)
}

func TestFetchMetricsPartialFailure(t *testing.T) {
	tests := []struct {
		name          string
		failing       string
		expectPresent []string
	}{
		{name: "acc rewards failing", failing: "/datarewards/", expectPresent: []string{EndpointClaimedRewards, EndpointAprApy}},
		{name: "claimed rewards failing", failing: "/stats/", expectPresent: []string{EndpointAccRewards, EndpointAprApy}},
		{name: "apr apy failing", failing: "/apy", expectPresent: []string{EndpointAccRewards, EndpointClaimedRewards}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			routes := map[string]func(w http.ResponseWriter, r *http.Request){
				"/datarewards/": jsonResponse(http.StatusOK, `{"accumulated": 12.5}`),
				"/stats/":       jsonResponse(http.StatusOK, `{"claimed": 3, "total": 4}`),
				"/apy":          jsonResponse(http.StatusOK, `{"24h-APR": 19.2, "24h-APY": 21.04}`),
			}
			routes[tt.failing] = jsonResponse(http.StatusBadGateway, `upstream down`)
			upstream := newTestUpstream(t, routes)

			bundle, err := upstream.nodeService(logger).FetchMetrics(context.Background(), testNodeAddress)
			require.NoError(t, err)
			require.NotNil(t, bundle)
			assert.Equal(t, 2, bundle.Count())

			present := map[string]bool{
				EndpointAccRewards:     bundle.AccRewards != nil,
				EndpointClaimedRewards: bundle.ClaimedRewards != nil,
				EndpointAprApy:         bundle.AprApy != nil,
			}
			for _, endpoint := range tt.expectPresent {
				assert.True(t, present[endpoint], "expected %v to be present", endpoint)
			}

			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
			assert.Equal(t, testNodeAddress, hook.LastEntry().Data["address"])
		})
	}
}

func TestFetchMetricsRejectsInvalidJson(t *testing.T) {
	logger, hook := test.NewNullLogger()
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/datarewards/": jsonResponse(http.StatusOK, `{"accumulated": `),
		"/stats/":       jsonResponse(http.StatusOK, `{"claimed": 3}`),
		"/apy":          jsonResponse(http.StatusOK, `<html>maintenance</html>`),
	})

	bundle, err := upstream.nodeService(logger).FetchMetrics(context.Background(), testNodeAddress)
	require.NoError(t, err)
	assert.Nil(t, bundle.AccRewards)
	assert.JSONEq(t, `{"claimed": 3}`, string(bundle.ClaimedRewards))
	assert.Nil(t, bundle.AprApy)
	assert.Len(t, hook.AllEntries(), 2)
}

func TestFetchMetricsSkipsUnconfiguredEndpoints(t *testing.T) {
	logger, _ := test.NewNullLogger()
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/apy": jsonResponse(http.StatusOK, `{"apr": 10}`),
	})
	ns := NewNodeService(NodeServiceConfig{
		NodeApi:   upstream.server.URL + "/api",
		AprApyApi: upstream.server.URL + "/apy",
	}, logger)

	bundle, err := ns.FetchMetrics(context.Background(), testNodeAddress)
	require.NoError(t, err)
	assert.Equal(t, 1, bundle.Count())
	assert.Equal(t, int64(1), upstream.calls.Load())
}

func TestLookup(t *testing.T) {
	t.Run("fetches metrics after the node profile", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
			"/api/nodes/":   jsonResponse(http.StatusOK, testNodeResponse),
			"/datarewards/": jsonResponse(http.StatusOK, `{"accumulated": 12.5}`),
			"/stats/":       jsonResponse(http.StatusOK, `{"claimed": 3}`),
			"/apy":          jsonResponse(http.StatusOK, `{"apr": 10}`),
		})

		node, bundle, err := upstream.nodeService(logger).Lookup(context.Background(), testNodeAddress)
		require.NoError(t, err)
		assert.NotNil(t, node)
		assert.Equal(t, 3, bundle.Count())
		assert.Equal(t, int64(4), upstream.calls.Load())
	})

	t.Run("skips metrics when the node lookup fails", func(t *testing.T) {
		logger, _ := test.NewNullLogger()
		upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
			"/api/nodes/": jsonResponse(http.StatusNotFound, `{}`),
			"/apy":        jsonResponse(http.StatusOK, `{"apr": 10}`),
		})

		node, bundle, err := upstream.nodeService(logger).Lookup(context.Background(), testNodeAddress)
		assert.ErrorIs(t, err, ErrNodeNotFound)
		assert.Nil(t, node)
		assert.Nil(t, bundle)
		assert.Equal(t, int64(1), upstream.calls.Load())
	})
}

func TestFetchLogsRejectedAddress(t *testing.T) {
	logger, hook := test.NewNullLogger()
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/": jsonResponse(http.StatusOK, testNodeResponse),
	})
	ns := upstream.nodeService(logger)

	_, err := ns.FetchNode(context.Background(), "0x4a2a3501")
	assert.ErrorIs(t, err, ErrInvalidAddress)
	_, err = ns.FetchMetrics(context.Background(), "0x4a2a3501")
	assert.ErrorIs(t, err, ErrInvalidAddress)

	require.Len(t, hook.AllEntries(), 2)
	for _, entry := range hook.AllEntries() {
		assert.Equal(t, logrus.InfoLevel, entry.Level)
		assert.Equal(t, "rejected node address", entry.Message)
		assert.Equal(t, "0x4a2a3501", entry.Data["address"])
		assert.ErrorIs(t, entry.Data[logrus.ErrorKey].(error), ErrInvalidAddress)
		assert.NotContains(t, entry.Data, "endpoint")
	}
	assert.Equal(t, int64(0), upstream.calls.Load())
}

func TestFetchMetricsDropsNullPayloads(t *testing.T) {
	logger, hook := test.NewNullLogger()
	upstream := newTestUpstream(t, map[string]func(w http.ResponseWriter, r *http.Request){
		"/datarewards/": jsonResponse(http.StatusOK, `null`),
		"/stats/":       jsonResponse(http.StatusOK, " null\n"),
		"/apy":          jsonResponse(http.StatusOK, `{"apr": 10}`),
	})

	bundle, err := upstream.nodeService(logger).FetchMetrics(context.Background(), testNodeAddress)
	require.NoError(t, err)
	assert.Nil(t, bundle.AccRewards)
	assert.Nil(t, bundle.ClaimedRewards)
	assert.Equal(t, 1, bundle.Count())

	require.Len(t, hook.AllEntries(), 2)
	endpoints := []interface{}{}
	for _, entry := range hook.AllEntries() {
		assert.Equal(t, logrus.WarnLevel, entry.Level)
		assert.Equal(t, testNodeAddress, entry.Data["address"])
		endpoints = append(endpoints, entry.Data["endpoint"])
	}
	assert.ElementsMatch(t, []interface{}{EndpointAccRewards, EndpointClaimedRewards}, endpoints)
}

func TestValidateLookup(t *testing.T) {
	tests := []struct {
		name      string
		address   string
		opts      NodeViewOptions
		expectErr error
	}{
		{name: "valid", address: testNodeAddress, opts: NodeViewOptions{PayoutTimezone: "UTC", ClaimTimezone: "US/Eastern"}},
		{name: "invalid address", address: "0x4a2a", opts: NodeViewOptions{PayoutTimezone: "UTC", ClaimTimezone: "UTC"}, expectErr: utils.ErrInvalidAddress},
		{name: "unknown payout timezone", address: testNodeAddress, opts: NodeViewOptions{PayoutTimezone: "Europe/Atlantis", ClaimTimezone: "UTC"}, expectErr: utils.ErrUnknownTimezone},
		{name: "unknown claim timezone", address: testNodeAddress, opts: NodeViewOptions{PayoutTimezone: "UTC", ClaimTimezone: "Mars/Olympus"}, expectErr: utils.ErrUnknownTimezone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger, hook := test.NewNullLogger()
			ns := NewNodeService(NodeServiceConfig{NodeApi: "http://127.0.0.1:1/api"}, logger)

			err := ns.ValidateLookup(tt.address, tt.opts)
			if tt.expectErr == nil {
				require.NoError(t, err)
				assert.Empty(t, hook.AllEntries())
				return
			}

			assert.ErrorIs(t, err, tt.expectErr)
			require.NotNil(t, hook.LastEntry())
			assert.Equal(t, logrus.InfoLevel, hook.LastEntry().Level)
			assert.Equal(t, "rejected node lookup", hook.LastEntry().Message)
			assert.Equal(t, tt.address, hook.LastEntry().Data["address"])
		})
	}
}
