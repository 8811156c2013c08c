package middleware

import (
	"fmt"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/ethpandaops/brubeckscan/metrics"
)

const (
	rateLimiterCleanupInterval = 5 * time.Minute
	rateLimiterIdleTimeout     = 10 * time.Minute
	defaultRateLimitBurst      = 10
)

var (
	apiRateLimitedMetric     *prometheus.CounterVec
	apiRateLimitedMetricOnce sync.Once
)

// RateLimitConfig configures the api rate limiter. Limits are requests per minute.
type RateLimitConfig struct {
	DefaultRateLimit      uint
	DefaultRateLimitBurst uint
	Disabled              bool
	WhitelistedIPs        []string
	ProxyCount            uint
}

type rateLimitEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimitMiddleware limits api calls per client ip or per auth token
type RateLimitMiddleware struct {
	config           RateLimitConfig
	logger           logrus.FieldLogger
	rateLimiters     map[string]*rateLimitEntry
	mutex            sync.Mutex
	whitelistedIPs   map[string]bool
	whitelistedCIDRs []*net.IPNet
	stopChan         chan struct{}
	stopOnce         sync.Once
}

// NewRateLimitMiddleware creates a rate limiter and starts its cleanup loop
func NewRateLimitMiddleware(config RateLimitConfig, logger logrus.FieldLogger) *RateLimitMiddleware {
	apiRateLimitedMetricOnce.Do(func() {
		apiRateLimitedMetric = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "api_ratelimited_count",
			Help:      "Number of api calls rejected by the rate limiter",
		}, []string{"kind"})
	})

	m := &RateLimitMiddleware{
		config:         config,
		logger:         logger,
		rateLimiters:   make(map[string]*rateLimitEntry),
		whitelistedIPs: make(map[string]bool),
		stopChan:       make(chan struct{}),
	}

	for _, ipOrCidr := range config.WhitelistedIPs {
		if _, ipNet, err := net.ParseCIDR(ipOrCidr); err == nil {
			m.whitelistedCIDRs = append(m.whitelistedCIDRs, ipNet)
		} else if parsedIP := net.ParseIP(ipOrCidr); parsedIP != nil {
			m.whitelistedIPs[parsedIP.String()] = true
		} else {
			logger.WithField("entry", ipOrCidr).Warn("invalid IP/CIDR in whitelist, ignoring")
		}
	}

	go m.runCleanupLoop()

	return m
}

// Stop ends the cleanup loop
func (m *RateLimitMiddleware) Stop() {
	m.stopOnce.Do(func() {
		close(m.stopChan)
	})
}

func (m *RateLimitMiddleware) runCleanupLoop() {
	ticker := time.NewTicker(rateLimiterCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-m.stopChan:
			return
		case now := <-ticker.C:
			m.cleanupOldLimiters(now.Add(-rateLimiterIdleTimeout))
		}
	}
}

func (m *RateLimitMiddleware) cleanupOldLimiters(cutoff time.Time) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for key, entry := range m.rateLimiters {
		if entry.lastSeen.Before(cutoff) {
			delete(m.rateLimiters, key)
		}
	}
}

func (m *RateLimitMiddleware) isWhitelisted(ip string) bool {
	clientIP := net.ParseIP(ip)
	if clientIP == nil {
		return false
	}
	if m.whitelistedIPs[clientIP.String()] {
		return true
	}

	for _, ipNet := range m.whitelistedCIDRs {
		if ipNet.Contains(clientIP) {
			return true
		}
	}

	return false
}

func (m *RateLimitMiddleware) getRateLimiter(key string, limit uint, burst uint) *rate.Limiter {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if burst == 0 {
		burst = defaultRateLimitBurst
	}

	entry, exists := m.rateLimiters[key]
	if !exists {
		entry = &rateLimitEntry{
			limiter: rate.NewLimiter(rate.Limit(limit)/60, int(burst)),
		}
		m.rateLimiters[key] = entry
	}
	entry.lastSeen = time.Now()

	return entry.limiter
}

// Middleware applies rate limiting to api requests
func (m *RateLimitMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		clientIP := GetClientIP(r, m.config.ProxyCount)

		rateLimitKind := "ip"
		rateLimitKey := fmt.Sprintf("ip:%s", clientIP)
		rateLimit := m.config.DefaultRateLimit
		rateLimitBurst := m.config.DefaultRateLimitBurst

		if tokenInfo := GetTokenInfo(r); tokenInfo != nil {
			// tokens without a limit are unlimited
			rateLimit = tokenInfo.RateLimit
			rateLimitBurst = tokenInfo.RateLimit
			rateLimitKind = "token"
			rateLimitKey = fmt.Sprintf("token:%s", tokenInfo.Name)
		}

		if m.config.Disabled || rateLimit == 0 || m.isWhitelisted(clientIP) {
			next.ServeHTTP(w, r)
			return
		}

		callCost := GetCallCost(r)
		limiter := m.getRateLimiter(rateLimitKey, rateLimit, rateLimitBurst)
		resetTime := strconv.FormatInt(time.Now().Add(time.Minute).Unix(), 10)
		w.Header().Set("X-RateLimit-Limit", strconv.FormatUint(uint64(rateLimit), 10))
		w.Header().Set("X-RateLimit-Reset", resetTime)

		if !limiter.AllowN(time.Now(), callCost) {
			w.Header().Set("X-RateLimit-Remaining", "0")
			apiRateLimitedMetric.WithLabelValues(rateLimitKind).Inc()

			m.logger.WithFields(logrus.Fields{
				"client_ip":      clientIP,
				"rate_limit_key": rateLimitKey,
				"rate_limit":     rateLimit,
				"call_cost":      callCost,
			}).Warn("API rate limit exceeded")

			APIErrorResponse(w, http.StatusTooManyRequests, "ERROR: rate limit exceeded")
			return
		}

		remaining := limiter.Tokens()
		if remaining < 0 {
			remaining = 0
		}
		w.Header().Set("X-RateLimit-Remaining", strconv.FormatFloat(remaining, 'f', 0, 64))

		next.ServeHTTP(w, r)
	})
}
