package services

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/sirupsen/logrus"
	"github.com/timandy/routine"

	"github.com/ethpandaops/brubeckscan/cache"
	"github.com/ethpandaops/brubeckscan/metrics"
	"github.com/ethpandaops/brubeckscan/utils"
)

type FrontendCacheService struct {
	logger          logrus.FieldLogger
	callTimeout     time.Duration
	cacheDisabled   bool
	pageCallCounter atomic.Uint64
	tieredCache     *cache.TieredCache
	processingMutex sync.Mutex
	processingDict  map[string]*FrontendCacheProcessingPage
	callStackMutex  sync.RWMutex
	callStackBuffer []byte

	pageCallCount    *prometheus.CounterVec
	pageCallDuration *prometheus.HistogramVec
	pageCallCacheHit *prometheus.CounterVec
}

type FrontendCacheProcessingPage struct {
	CallCtx      context.Context
	modelMutex   sync.RWMutex
	pageModel    interface{}
	pageError    error
	PageKey      string
	CacheTimeout time.Duration
}

type PageDataHandlerFn = func(pageCall *FrontendCacheProcessingPage) interface{}

var GlobalFrontendCache *FrontendCacheService

type FrontendCachePageError struct {
	err   error
	name  string
	stack string
}

func (e FrontendCachePageError) Error() string {
	return e.err.Error()
}
func (e FrontendCachePageError) Name() string {
	return e.name
}
func (e FrontendCachePageError) Stack() string {
	return e.stack
}

// StartFrontendCache is used to start the global frontend cache service
func StartFrontendCache(logger logrus.FieldLogger) error {
	if GlobalFrontendCache != nil {
		return nil
	}

	cachePrefix := fmt.Sprintf("%sgui-", utils.Config.Frontend.RedisCachePrefix)
	tieredCache, err := cache.NewTieredCache(utils.Config.Frontend.LocalCacheSize, utils.Config.Frontend.RedisCacheAddr, cachePrefix)
	if err != nil {
		return err
	}

	GlobalFrontendCache = NewFrontendCacheService(tieredCache, utils.Config.Frontend.PageCallTimeout, utils.Config.Frontend.Debug, logger)
	return nil
}

var (
	frontendMetrics     [3]prometheus.Collector
	frontendMetricsOnce sync.Once
)

func NewFrontendCacheService(tieredCache *cache.TieredCache, callTimeout time.Duration, cacheDisabled bool, logger logrus.FieldLogger) *FrontendCacheService {
	if callTimeout == 0 {
		callTimeout = 30 * time.Second
	}

	frontendMetricsOnce.Do(func() {
		frontendMetrics[0] = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "frontend_page_call_count",
			Help:      "Number of page calls",
		}, []string{"page"})
		frontendMetrics[1] = promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metrics.Namespace,
			Name:      "frontend_page_call_duration",
			Help:      "Processing time for page calls",
			Buckets:   []float64{0, 25, 50, 75, 100, 250, 500, 750, 1000, 2500, 5000, 10000, 20000, 30000, 60000},
		}, []string{"page"})
		frontendMetrics[2] = promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: metrics.Namespace,
			Name:      "frontend_page_call_cache_hit",
			Help:      "Number of page calls that were served from cache or joined a running call",
		}, []string{"page"})
	})

	return &FrontendCacheService{
		logger:          logger,
		callTimeout:     callTimeout,
		cacheDisabled:   cacheDisabled,
		tieredCache:     tieredCache,
		processingDict:  make(map[string]*FrontendCacheProcessingPage),
		callStackBuffer: make([]byte, 1024*1024*5),

		pageCallCount:    frontendMetrics[0].(*prometheus.CounterVec),
		pageCallDuration: frontendMetrics[1].(*prometheus.HistogramVec),
		pageCallCacheHit: frontendMetrics[2].(*prometheus.CounterVec),
	}
}

// ProcessCachedPage builds the page model for pageKey with a timeout.
// Identical concurrent calls share one build. The result is cached when caching is requested and
// the build sets a CacheTimeout >= 0.
func (fc *FrontendCacheService) ProcessCachedPage(pageKey string, caching bool, returnValue interface{}, buildFn PageDataHandlerFn) (interface{}, error) {
	pageType := pageKey
	if strings.Contains(pageKey, ":") {
		pageType = strings.Split(pageKey, ":")[0]
	}

	fc.pageCallCount.WithLabelValues(pageType).Inc()

	fc.processingMutex.Lock()
	processingPage := fc.processingDict[pageKey]
	if processingPage != nil {
		fc.processingMutex.Unlock()
		fc.logger.Debugf("page already processing: %v", pageKey)

		fc.pageCallCacheHit.WithLabelValues(pageType).Inc()

		processingPage.modelMutex.RLock()
		defer processingPage.modelMutex.RUnlock()
		return processingPage.pageModel, processingPage.pageError
	}
	processingPage = &FrontendCacheProcessingPage{
		PageKey:      pageKey,
		CacheTimeout: -1,
	}
	fc.processingDict[pageKey] = processingPage
	processingPage.modelMutex.Lock()
	defer fc.completePageLoad(pageKey, processingPage)
	fc.processingMutex.Unlock()

	startTime := time.Now()
	var returnError error
	returnValue, returnError = fc.processPageCall(pageKey, pageType, caching, returnValue, buildFn, processingPage)
	processingPage.pageModel = returnValue
	processingPage.pageError = returnError

	fc.pageCallDuration.WithLabelValues(pageType).Observe(float64(time.Since(startTime).Milliseconds()))

	return returnValue, returnError
}

func (fc *FrontendCacheService) processPageCall(pageKey string, pageType string, caching bool, pageData interface{}, buildFn PageDataHandlerFn, pageCall *FrontendCacheProcessingPage) (interface{}, error) {
	// buffered, so the build routine never blocks after a timeout
	returnChan := make(chan interface{}, 1)
	errorChan := make(chan error, 1)
	isTimedOut := atomic.Bool{}

	callCtx, callCtxCancel := context.WithCancel(context.Background())
	defer callCtxCancel()
	pageCall.CallCtx = callCtx

	callIdx := fc.pageCallCounter.Add(1)
	callGoId := atomic.Uint64{}
	useCache := caching && !fc.cacheDisabled

	go func(callIdx uint64) {
		defer func() {
			if err := recover(); err != nil {
				errorChan <- &FrontendCachePageError{
					name:  "page panic",
					err:   fmt.Errorf("page call %v panic: %v", callIdx, err),
					stack: string(debug.Stack()),
				}
			}
		}()

		callGoId.Store(routine.Goid())

		if useCache && fc.getFrontendCache(pageKey, pageData) == nil {
			fc.logger.Debugf("page served from cache: %v", pageKey)
			fc.pageCallCacheHit.WithLabelValues(pageType).Inc()
			returnChan <- pageData
			return
		}

		pageData = buildFn(pageCall)

		if isTimedOut.Load() {
			return
		}
		if useCache && pageCall.CacheTimeout >= 0 {
			if err := fc.setFrontendCache(pageKey, pageData, pageCall.CacheTimeout); err != nil {
				fc.logger.WithError(err).Warnf("error caching page %v", pageKey)
			}
		}
		returnChan <- pageData
	}(callIdx)

	select {
	case returnValue := <-returnChan:
		return returnValue, nil
	case returnError := <-errorChan:
		return nil, returnError
	case <-time.After(fc.callTimeout):
		isTimedOut.Store(true)
		callCtxCancel()
		return nil, &FrontendCachePageError{
			name:  "page timeout",
			err:   fmt.Errorf("page call %v timeout", callIdx),
			stack: fc.extractPageCallStack(callGoId.Load()),
		}
	}
}

func (fc *FrontendCacheService) getFrontendCache(pageKey string, returnValue interface{}) error {
	if fc.tieredCache == nil {
		return cache.ErrCacheMiss
	}
	_, err := fc.tieredCache.Get(pageKey, returnValue)
	return err
}

func (fc *FrontendCacheService) setFrontendCache(pageKey string, value interface{}, timeout time.Duration) error {
	if fc.tieredCache == nil {
		return nil
	}
	return fc.tieredCache.Set(pageKey, value, timeout)
}

func (fc *FrontendCacheService) completePageLoad(pageKey string, processingPage *FrontendCacheProcessingPage) {
	processingPage.modelMutex.Unlock()
	fc.processingMutex.Lock()
	delete(fc.processingDict, pageKey)
	fc.processingMutex.Unlock()
}

func (fc *FrontendCacheService) extractPageCallStack(callGoid uint64) string {
	if fc.callStackMutex.TryLock() {
		runtime.Stack(fc.callStackBuffer, true)
		fc.callStackMutex.Unlock()
	}
	fc.callStackMutex.RLock()
	defer fc.callStackMutex.RUnlock()

	scanner := bufio.NewScanner(bytes.NewReader(fc.callStackBuffer))
	stackTrace := []string{}
	isRelevantCall := false
	for scanner.Scan() {
		line := scanner.Text()
		if strings.HasPrefix(line, "goroutine ") {
			if isRelevantCall {
				break
			}
			isRelevantCall = strings.HasPrefix(line, fmt.Sprintf("goroutine %v ", callGoid))
		}
		if isRelevantCall {
			stackTrace = append(stackTrace, line)
		}
	}

	if !isRelevantCall {
		return "call stack not found"
	}
	return strings.Join(stackTrace, "\n")
}
