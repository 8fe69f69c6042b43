package middleware

import (
	"net/http"
	"strings"

	"github.com/technosupport/ts-dvr-gateway/internal/auth"
	"github.com/technosupport/ts-dvr-gateway/internal/tokens"
)

type TokenValidator interface {
	ValidateToken(tokenString string) (*tokens.Claims, error)
}

type JWTAuth struct {
	tokens    TokenValidator
	blacklist auth.TokenBlacklist
}

func NewJWTAuth(t TokenValidator, b auth.TokenBlacklist) *JWTAuth {
	return &JWTAuth{tokens: t, blacklist: b}
}

// Middleware verifies the JWT and injects AuthContext
func (m *JWTAuth) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenString := bearerToken(r)
		if tokenString == "" {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		claims, err := m.validate(r, tokenString)
		if err != nil {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}

		ctx := WithAuthContext(r.Context(), &AuthContext{
			UserID:   claims.UserID,
			Username: claims.Username,
			TokenID:  claims.ID,
		})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// Authenticate validates a raw token string the same way the middleware
// does; the WebSocket handler uses it for query-parameter tokens.
func (m *JWTAuth) Authenticate(r *http.Request, tokenString string) (*tokens.Claims, error) {
	return m.validate(r, tokenString)
}

func (m *JWTAuth) validate(r *http.Request, tokenString string) (*tokens.Claims, error) {
	claims, err := m.tokens.ValidateToken(tokenString)
	if err != nil {
		return nil, err
	}
	if claims.TokenType != tokens.Access {
		return nil, tokens.ErrInvalidToken
	}

	// Blacklist check fails closed.
	blacklisted, err := m.blacklist.IsBlacklisted(r.Context(), claims.ID)
	if err != nil {
		return nil, err
	}
	if blacklisted {
		return nil, tokens.ErrInvalidToken
	}
	return claims, nil
}

func bearerToken(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return ""
	}
	return parts[1]
}
