package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/ethpandaops/brubeckscan/metrics"
	"github.com/ethpandaops/brubeckscan/types"
	"github.com/ethpandaops/brubeckscan/utils"
)

const (
	EndpointNode           = "node"
	EndpointAccRewards     = "acc_rewards"
	EndpointClaimedRewards = "claimed_rewards"
	EndpointAprApy         = "apr_apy"
)

const maxResponseSize = 8 * 1024 * 1024

var (
	ErrInvalidAddress = utils.ErrInvalidAddress
	ErrNodeNotFound   = errors.New("node not found")
)

// EndpointError is returned when an upstream endpoint could not be queried or returned an unusable response.
type EndpointError struct {
	Endpoint   string
	Url        string
	StatusCode int
	Err        error
}

func (e *EndpointError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("endpoint %v (%v) returned status %v: %v", e.Endpoint, e.Url, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("endpoint %v (%v) failed: %v", e.Endpoint, e.Url, e.Err)
}

func (e *EndpointError) Unwrap() error {
	return e.Err
}

type NodeServiceConfig struct {
	NodeApi           string
	AccRewardsApi     string
	ClaimedRewardsApi string
	AprApyApi         string
	RequestTimeout    time.Duration
	UserAgent         string
}

type NodeService struct {
	config NodeServiceConfig
	client *http.Client
	logger logrus.FieldLogger
}

type nodeServiceMetrics struct {
	requestCount    *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
}

var GlobalNodeService *NodeService

var (
	nodeMetrics     *nodeServiceMetrics
	nodeMetricsOnce sync.Once
)

func getNodeServiceMetrics() *nodeServiceMetrics {
	nodeMetricsOnce.Do(func() {
		nodeMetrics = &nodeServiceMetrics{
			requestCount: promauto.NewCounterVec(prometheus.CounterOpts{
				Namespace: metrics.Namespace,
				Name:      "endpoint_request_count",
				Help:      "Number of upstream endpoint requests",
			}, []string{"endpoint", "result"}),
			requestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
				Namespace: metrics.Namespace,
				Name:      "endpoint_request_duration",
				Help:      "Duration of upstream endpoint requests in milliseconds",
				Buckets:   []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 20000, 30000},
			}, []string{"endpoint"}),
		}
	})
	return nodeMetrics
}

// StartNodeService is used to start the global node service
func StartNodeService(logger logrus.FieldLogger) error {
	if GlobalNodeService != nil {
		return nil
	}

	GlobalNodeService = NewNodeService(NodeServiceConfig{
		NodeApi:           utils.Config.Endpoints.NodeApi,
		AccRewardsApi:     utils.Config.Endpoints.AccRewardsApi,
		ClaimedRewardsApi: utils.Config.Endpoints.ClaimedRewards,
		AprApyApi:         utils.Config.Endpoints.AprApyApi,
		RequestTimeout:    utils.Config.Endpoints.RequestTimeout,
		UserAgent:         utils.Config.Endpoints.UserAgent,
	}, logger)
	return nil
}

func NewNodeService(config NodeServiceConfig, logger logrus.FieldLogger) *NodeService {
	if config.RequestTimeout == 0 {
		config.RequestTimeout = 20 * time.Second
	}
	if config.UserAgent == "" {
		config.UserAgent = "brubeckscan/" + utils.GetBuildVersion()
	}

	return &NodeService{
		config: config,
		client: &http.Client{Timeout: config.RequestTimeout},
		logger: logger,
	}
}

// ValidateAddress checks the node address format. It never touches the network.
func (ns *NodeService) ValidateAddress(address string) error {
	return utils.ValidateNodeAddress(address)
}

// ValidateLookup checks the address and the display timezones of a lookup before anything is fetched.
func (ns *NodeService) ValidateLookup(address string, opts NodeViewOptions) error {
	err := ns.ValidateAddress(address)
	if err == nil {
		err = opts.Validate()
	}
	if err != nil {
		utils.LogLookupFailure(ns.logger, logrus.InfoLevel, err, "rejected node lookup", address, "")
	}
	return err
}

// FetchNode loads the node profile. A failed profile lookup fails the whole node lookup.
func (ns *NodeService) FetchNode(ctx context.Context, address string) (*types.NodeRecord, error) {
	if err := ns.ValidateAddress(address); err != nil {
		utils.LogLookupFailure(ns.logger, logrus.InfoLevel, err, "rejected node address", address, "")
		return nil, err
	}

	url, err := utils.JoinUrlPath(ns.config.NodeApi, "nodes", address)
	if err != nil {
		return nil, &EndpointError{Endpoint: EndpointNode, Url: utils.GetRedactedUrl(ns.config.NodeApi), Err: err}
	}

	body, err := ns.fetchEndpoint(ctx, EndpointNode, url)
	if err != nil {
		var endpointErr *EndpointError
		if errors.As(err, &endpointErr) && endpointErr.StatusCode == http.StatusNotFound {
			err = fmt.Errorf("%w: %v", ErrNodeNotFound, address)
			utils.LogLookupFailure(ns.logger, logrus.InfoLevel, err, "node not found", address, EndpointNode)
			return nil, err
		}
		utils.LogLookupFailure(ns.logger, logrus.WarnLevel, err, "error fetching node profile", address, EndpointNode)
		return nil, err
	}

	response := &types.NodeResponse{}
	if err := json.Unmarshal(body, response); err != nil {
		utils.LogLookupFailure(ns.logger, logrus.WarnLevel, err, "error decoding node profile", address, EndpointNode)
		return nil, &EndpointError{
			Endpoint: EndpointNode,
			Url:      utils.GetRedactedUrl(url),
			Err:      fmt.Errorf("invalid json response: %w", err),
		}
	}
	if response.Data == nil || response.Data.Node == nil {
		err := fmt.Errorf("%w: %v", ErrNodeNotFound, address)
		utils.LogLookupFailure(ns.logger, logrus.InfoLevel, err, "node profile response without node data", address, EndpointNode)
		return nil, err
	}

	node := response.Data.Node
	node.Address = address
	return node, nil
}

// FetchMetrics loads the optional metric payloads concurrently.
// Failed endpoints are logged and left out of the bundle, so the only returned error is a validation error.
func (ns *NodeService) FetchMetrics(ctx context.Context, address string) (*types.MetricsBundle, error) {
	if err := ns.ValidateAddress(address); err != nil {
		utils.LogLookupFailure(ns.logger, logrus.InfoLevel, err, "rejected node address", address, "")
		return nil, err
	}

	bundle := &types.MetricsBundle{}
	fetches := []struct {
		endpoint string
		baseUrl  string
		global   bool
		slot     *json.RawMessage
	}{
		{EndpointAccRewards, ns.config.AccRewardsApi, false, &bundle.AccRewards},
		{EndpointClaimedRewards, ns.config.ClaimedRewardsApi, false, &bundle.ClaimedRewards},
		{EndpointAprApy, ns.config.AprApyApi, true, &bundle.AprApy},
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, fetch := range fetches {
		if fetch.baseUrl == "" {
			continue
		}

		fetch := fetch
		g.Go(func() error {
			defer utils.HandleSubroutinePanic("nodeservice.FetchMetrics")

			url := fetch.baseUrl
			if !fetch.global {
				var err error
				url, err = utils.JoinUrlPath(fetch.baseUrl, address)
				if err != nil {
					utils.LogLookupFailure(ns.logger, logrus.WarnLevel, err, "invalid metrics endpoint url", address, fetch.endpoint)
					return nil
				}
			}

			payload, err := ns.fetchPayload(gctx, fetch.endpoint, url)
			if err != nil {
				utils.LogLookupFailure(ns.logger, logrus.WarnLevel, err, "error fetching node metrics, skipping", address, fetch.endpoint)
				return nil
			}

			*fetch.slot = payload
			return nil
		})
	}

	// workers never return errors, failures only leave their slot empty
	_ = g.Wait()

	return bundle, nil
}

// Lookup runs the full node lookup: profile first, metrics only when the profile is available.
func (ns *NodeService) Lookup(ctx context.Context, address string) (*types.NodeRecord, *types.MetricsBundle, error) {
	node, err := ns.FetchNode(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	bundle, err := ns.FetchMetrics(ctx, address)
	if err != nil {
		return nil, nil, err
	}

	return node, bundle, nil
}

func (ns *NodeService) fetchPayload(ctx context.Context, endpoint string, url string) (json.RawMessage, error) {
	body, err := ns.fetchEndpoint(ctx, endpoint, url)
	if err != nil {
		return nil, err
	}
	if !json.Valid(body) {
		return nil, &EndpointError{
			Endpoint: endpoint,
			Url:      utils.GetRedactedUrl(url),
			Err:      fmt.Errorf("invalid json response"),
		}
	}
	if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
		return nil, &EndpointError{
			Endpoint: endpoint,
			Url:      utils.GetRedactedUrl(url),
			Err:      fmt.Errorf("empty json response"),
		}
	}
	return json.RawMessage(body), nil
}

func (ns *NodeService) fetchEndpoint(ctx context.Context, endpoint string, url string) ([]byte, error) {
	t0 := time.Now()
	body, err := ns.doRequest(ctx, endpoint, url)

	m := getNodeServiceMetrics()
	m.requestDuration.WithLabelValues(endpoint).Observe(float64(time.Since(t0).Milliseconds()))
	result := "success"
	if err != nil {
		result = "error"
		var endpointErr *EndpointError
		if errors.As(err, &endpointErr) && endpointErr.StatusCode != 0 {
			result = fmt.Sprintf("http_%v", endpointErr.StatusCode)
		}
	}
	m.requestCount.WithLabelValues(endpoint, result).Inc()

	return body, err
}

func (ns *NodeService) doRequest(ctx context.Context, endpoint string, url string) ([]byte, error) {
	redactedUrl := utils.GetRedactedUrl(url)

	req, err := http.NewRequestWithContext(ctx, "GET", url, nil)
	if err != nil {
		return nil, &EndpointError{Endpoint: endpoint, Url: redactedUrl, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", ns.config.UserAgent)

	ns.logger.WithField("endpoint", endpoint).Debugf("GET %v", redactedUrl)

	resp, err := ns.client.Do(req)
	if err != nil {
		return nil, &EndpointError{Endpoint: endpoint, Url: redactedUrl, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, &EndpointError{
			Endpoint:   endpoint,
			Url:        redactedUrl,
			StatusCode: resp.StatusCode,
			Err:        fmt.Errorf("unexpected response: %v", strings.TrimSpace(string(data))),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &EndpointError{Endpoint: endpoint, Url: redactedUrl, Err: err}
	}
	return body, nil
}
