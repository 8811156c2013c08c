package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsHandlerRunsPreCollectFns(t *testing.T) {
	calls := atomic.Int64{}
	AddPreCollectFn(func() {
		calls.Add(1)
	})

	handler := GetMetricsHandler().(*MetricsHandler)
	handler.lastCollectTime = time.Now().Add(-time.Minute)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, int64(1), calls.Load())

	// scrapes within a second reuse the last collection
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, int64(1), calls.Load())
}
