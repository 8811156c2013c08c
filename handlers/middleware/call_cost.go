package middleware

import (
	"context"
	"net/http"
	"sort"
	"strings"
	"sync"
)

type callCostKey string

const (
	contextKeyCallCost callCostKey = "call_cost"
)

type endpointCost struct {
	prefix string
	cost   int
}

var (
	endpointCosts []endpointCost
	costMutex     sync.RWMutex
)

// SetEndpointCost sets the call cost for all api paths starting with prefix.
// The longest matching prefix wins.
func SetEndpointCost(prefix string, cost int) {
	costMutex.Lock()
	defer costMutex.Unlock()

	for i := range endpointCosts {
		if endpointCosts[i].prefix == prefix {
			endpointCosts[i].cost = cost
			return
		}
	}
	endpointCosts = append(endpointCosts, endpointCost{prefix: prefix, cost: cost})
	sort.Slice(endpointCosts, func(a, b int) bool {
		return len(endpointCosts[a].prefix) > len(endpointCosts[b].prefix)
	})
}

func getEndpointCost(path string) int {
	costMutex.RLock()
	defer costMutex.RUnlock()

	for _, entry := range endpointCosts {
		if strings.HasPrefix(path, entry.prefix) {
			return entry.cost
		}
	}
	return 1
}

// CallCostMiddleware stores the call cost of the requested endpoint in the request context
func CallCostMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), contextKeyCallCost, getEndpointCost(r.URL.Path))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetCallCost extracts the call cost from request context, defaults to 1
func GetCallCost(r *http.Request) int {
	if cost, ok := r.Context().Value(contextKeyCallCost).(int); ok {
		return cost
	}
	return 1
}
