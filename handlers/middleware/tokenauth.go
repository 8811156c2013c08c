package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"github.com/ethpandaops/brubeckscan/types"
)

type contextKey string

const (
	contextKeyTokenInfo contextKey = "token_info"
)

var (
	ErrAuthNotConfigured = errors.New("authentication secret not configured")
	ErrInvalidToken      = errors.New("invalid token")
)

// TokenAuthConfig configures the api token authentication
type TokenAuthConfig struct {
	Secret      string
	RequireAuth bool
	ProxyCount  uint
}

// TokenAuthMiddleware validates HS256 bearer tokens on api requests
type TokenAuthMiddleware struct {
	config TokenAuthConfig
	logger logrus.FieldLogger
}

// NewTokenAuthMiddleware creates a new token authentication middleware instance
func NewTokenAuthMiddleware(config TokenAuthConfig, logger logrus.FieldLogger) *TokenAuthMiddleware {
	return &TokenAuthMiddleware{
		config: config,
		logger: logger,
	}
}

func (m *TokenAuthMiddleware) authenticateToken(tokenString string) (*types.APITokenInfo, error) {
	if m.config.Secret == "" {
		return nil, ErrAuthNotConfigured
	}

	claims := &types.APITokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(m.config.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	tokenInfo := &types.APITokenInfo{
		Name:           claims.Name,
		RateLimit:      claims.RateLimit,
		CorsOrigins:    claims.CorsOrigins,
		DomainPatterns: claims.DomainPatterns,
	}
	if claims.IssuedAt != nil {
		tokenInfo.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		tokenInfo.ExpiresAt = &claims.ExpiresAt.Time
	}

	return tokenInfo, nil
}

// validateDomainPatterns checks the request host against the token domain patterns.
// An empty pattern list allows any host.
func validateDomainPatterns(requestDomain string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}

	for _, pattern := range patterns {
		if pattern == requestDomain {
			return true
		}
		if matched, _ := filepath.Match(pattern, requestDomain); matched {
			return true
		}
	}

	return false
}

// Middleware authenticates bearer tokens and stores the token info in the request context
func (m *TokenAuthMiddleware) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var tokenInfo *types.APITokenInfo
		clientIP := GetClientIP(r, m.config.ProxyCount)

		if authHeader := r.Header.Get("Authorization"); authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
				APIErrorResponse(w, http.StatusUnauthorized, "ERROR: invalid authorization header format")
				return
			}

			var err error
			tokenInfo, err = m.authenticateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				m.logger.WithError(err).WithField("client_ip", clientIP).Warn("API authentication failed")
				APIErrorResponse(w, http.StatusUnauthorized, "ERROR: invalid authentication token")
				return
			}

			if !validateDomainPatterns(r.Host, tokenInfo.DomainPatterns) {
				m.logger.WithFields(logrus.Fields{
					"client_ip":        clientIP,
					"token_name":       tokenInfo.Name,
					"request_domain":   r.Host,
					"allowed_patterns": tokenInfo.DomainPatterns,
				}).Warn("API request rejected: domain not allowed for token")
				APIErrorResponse(w, http.StatusForbidden, "ERROR: token not valid for this domain")
				return
			}

			// token specific origins extend the global cors origins
			if origin := r.Header.Get("Origin"); origin != "" && matchAnyOrigin(tokenInfo.CorsOrigins, origin) {
				setCorsHeaders(w, origin)
			}

			m.logger.WithFields(logrus.Fields{
				"client_ip":  clientIP,
				"token_name": tokenInfo.Name,
			}).Debug("API request with valid token")
		}

		if tokenInfo == nil && m.config.RequireAuth && r.Method != http.MethodOptions {
			m.logger.WithField("client_ip", clientIP).Warn("API request rejected: authentication required")
			APIErrorResponse(w, http.StatusUnauthorized, "ERROR: authentication required")
			return
		}

		if tokenInfo != nil {
			r = r.WithContext(context.WithValue(r.Context(), contextKeyTokenInfo, tokenInfo))
		}

		next.ServeHTTP(w, r)
	})
}

// GetTokenInfo extracts token information from request context
func GetTokenInfo(r *http.Request) *types.APITokenInfo {
	if tokenInfo, ok := r.Context().Value(contextKeyTokenInfo).(*types.APITokenInfo); ok {
		return tokenInfo
	}
	return nil
}
