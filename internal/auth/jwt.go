// Package auth checks HS256 bearer tokens for the user endpoints.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"slices"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"cosmos-catalog/internal/http/respond"
	"cosmos-catalog/internal/logger"
)

// Claims represents the JWT claims we expect
type Claims struct {
	Roles []string `json:"roles"`
	jwt.RegisteredClaims
}

type ctxKey struct{}

// ClaimsFromContext returns the claims stored by RequireBearer.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ctxKey{}).(*Claims)
	return c, ok
}

// ParseToken validates and parses a JWT token string
func ParseToken(secret, tokenStr string) (*Claims, error) {
	if secret == "" {
		return nil, fmt.Errorf("jwt secret not configured")
	}

	tok, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("parse token failed: %w", err)
	}

	claims, ok := tok.Claims.(*Claims)
	if !ok || !tok.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

// GetBearerToken extracts the Bearer token from the Authorization header
func GetBearerToken(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if h == "" {
		return ""
	}

	parts := strings.SplitN(h, " ", 2)
	if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
		return strings.TrimSpace(parts[1])
	}
	return ""
}

// HasAnyRole checks if the user has any of the specified roles
func HasAnyRole(userRoles []string, allowed ...string) bool {
	for _, a := range allowed {
		if slices.Contains(userRoles, a) {
			return true
		}
	}
	return false
}

// RequireBearer rejects requests without a valid token. When roles are given
// the token must carry at least one of them.
func RequireBearer(secret string, roles ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenStr := GetBearerToken(r)
			if tokenStr == "" {
				logger.Debugf("RequireBearer: no bearer token provided")
				respond.Error(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			claims, err := ParseToken(secret, tokenStr)
			if err != nil {
				logger.Debugf("RequireBearer: %v", err)
				respond.Error(w, http.StatusUnauthorized, "Unauthorized", "")
				return
			}

			if len(roles) > 0 && !HasAnyRole(claims.Roles, roles...) {
				logger.Debugf("RequireBearer: subject %q lacks roles %v", claims.Subject, roles)
				respond.Error(w, http.StatusForbidden, "Forbidden", "")
				return
			}

			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKey{}, claims)))
		})
	}
}
