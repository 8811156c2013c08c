package middleware

import (
	"net/http"
	"regexp"
	"strings"
)

// NewCorsMiddleware allows cross origin GET requests from the given origins.
// Origins may contain * wildcards.
func NewCorsMiddleware(origins []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && matchAnyOrigin(origins, origin) {
				setCorsHeaders(w, origin)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func setCorsHeaders(w http.ResponseWriter, origin string) {
	w.Header().Set("Access-Control-Allow-Origin", origin)
	w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")
	w.Header().Add("Vary", "Origin")
}

func matchAnyOrigin(patterns []string, origin string) bool {
	for _, pattern := range patterns {
		if matchOrigin(pattern, origin) {
			return true
		}
	}
	return false
}

func matchOrigin(pattern, origin string) bool {
	if pattern == "*" {
		return true
	}

	pattern = regexp.QuoteMeta(pattern)
	pattern = strings.ReplaceAll(pattern, "\\*", ".*")
	matched, err := regexp.MatchString("^"+pattern+"$", origin)
	if err != nil {
		return false
	}
	return matched
}
