package services

import (
	"errors"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"golang.org/x/time/rate"

	"github.com/ethpandaops/brubeckscan/metrics"
)

var ErrCallRateLimited = errors.New("call rate limit exceeded")

// CallRateLimiter limits node lookups per visitor ip, as every lookup fans out to the upstream endpoints
type CallRateLimiter struct {
	proxyCount uint
	rateLimit  uint
	burstLimit uint

	mutex    sync.Mutex
	visitors map[string]*callRateVisitor

	visitorsCount prometheus.Gauge
	newVisitors   prometheus.Counter
}

type callRateVisitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var GlobalCallRateLimiter *CallRateLimiter

var (
	callRateMetricsOnce   sync.Once
	callRateVisitorsGauge prometheus.Gauge
	callRateNewVisitors   prometheus.Counter
)

// StartCallRateLimiter is used to start the global call rate limiter
func StartCallRateLimiter(proxyCount uint, rateLimit uint, burstLimit uint) error {
	if GlobalCallRateLimiter != nil {
		return nil
	}

	GlobalCallRateLimiter = NewCallRateLimiter(proxyCount, rateLimit, burstLimit)
	go GlobalCallRateLimiter.cleanupVisitors()

	metrics.AddPreCollectFn(func() {
		GlobalCallRateLimiter.mutex.Lock()
		defer GlobalCallRateLimiter.mutex.Unlock()

		GlobalCallRateLimiter.visitorsCount.Set(float64(len(GlobalCallRateLimiter.visitors)))
	})

	return nil
}

func NewCallRateLimiter(proxyCount uint, rateLimit uint, burstLimit uint) *CallRateLimiter {
	callRateMetricsOnce.Do(func() {
		callRateVisitorsGauge = promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: metrics.Namespace,
			Name:      "call_rate_limiter_visitors_count",
			Help:      "Number of visitors in the call rate limiter",
		})
		callRateNewVisitors = promauto.NewCounter(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "call_rate_limiter_new_visitors_count",
			Help:      "Number of new visitors in the call rate limiter",
		})
	})

	if burstLimit < rateLimit {
		burstLimit = rateLimit
	}

	return &CallRateLimiter{
		proxyCount:    proxyCount,
		rateLimit:     rateLimit,
		burstLimit:    burstLimit,
		visitors:      map[string]*callRateVisitor{},
		visitorsCount: callRateVisitorsGauge,
		newVisitors:   callRateNewVisitors,
	}
}

// CheckCallLimit returns ErrCallRateLimited when the visitor of r exceeded its call budget.
// A nil limiter allows every call.
func (crl *CallRateLimiter) CheckCallLimit(r *http.Request, callCost uint) error {
	if crl == nil {
		return nil
	}
	visitor := crl.getVisitor(r)
	if visitor == nil {
		return errors.New("could not get visitor")
	}
	if !visitor.limiter.AllowN(time.Now(), int(callCost)) {
		return ErrCallRateLimited
	}
	return nil
}

func (crl *CallRateLimiter) getVisitor(r *http.Request) *callRateVisitor {
	var ip string

	if crl.proxyCount > 0 {
		forwardIps := strings.Split(r.Header.Get("X-Forwarded-For"), ",")
		forwardIdx := len(forwardIps) - int(crl.proxyCount)
		if forwardIdx >= 0 {
			ip = strings.TrimSpace(forwardIps[forwardIdx])
		}
	}
	if ip == "" {
		var err error
		ip, _, err = net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			return nil
		}
	}

	crl.mutex.Lock()
	defer crl.mutex.Unlock()

	visitor := crl.visitors[ip]
	if visitor == nil {
		visitor = &callRateVisitor{
			limiter:  rate.NewLimiter(rate.Limit(crl.rateLimit), int(crl.burstLimit)),
			lastSeen: time.Now(),
		}
		crl.visitors[ip] = visitor

		crl.newVisitors.Inc()
	} else {
		visitor.lastSeen = time.Now()
	}
	return visitor
}

func (crl *CallRateLimiter) cleanupVisitors() {
	for {
		time.Sleep(time.Minute)

		crl.mutex.Lock()
		for ip, v := range crl.visitors {
			if time.Since(v.lastSeen) > 3*time.Minute {
				delete(crl.visitors, ip)
			}
		}
		crl.mutex.Unlock()
	}
}
