package api

import (
	"errors"
	"log"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/technosupport/ts-dvr-gateway/internal/auth"
	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/tokens"
)

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a *API) handleLogin(w http.ResponseWriter, r *http.Request) {
	if a.Limiter != nil {
		key := "login:" + a.Limiter.HashIP(clientIP(r))
		decision, err := a.Limiter.Check(r.Context(), key, a.LoginLimit)
		if err != nil {
			// Redis down: login fails closed.
			log.Printf("[ERROR] api: login rate limit check: %v", err)
			errorResponse(w, http.StatusServiceUnavailable, "service unavailable")
			return
		}
		if !decision.Allowed {
			w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
			errorResponse(w, http.StatusTooManyRequests, "too many login attempts")
			return
		}
	}

	var req loginRequest
	if err := readJSON(w, r, &req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Username == "" || req.Password == "" {
		errorResponse(w, http.StatusBadRequest, "username and password are required")
		return
	}

	user, err := a.Users.GetByUsername(r.Context(), req.Username)
	if err != nil {
		if errors.Is(err, data.ErrRecordNotFound) {
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		serverErrorResponse(w, err)
		return
	}

	match, err := auth.CheckPassword(req.Password, user.PasswordHash)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}
	if !match {
		errorResponse(w, http.StatusUnauthorized, "invalid credentials")
		return
	}

	access, err := a.Tokens.GenerateAccessToken(user.ID.String(), user.Username)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}
	refresh, err := a.Tokens.GenerateRefreshToken(user.ID.String(), user.Username)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"access_token":  access,
		"refresh_token": refresh,
		"token_type":    "Bearer",
		"expires_in":    int((15 * time.Minute).Seconds()),
		"user":          envelope{"id": user.ID, "username": user.Username},
	})
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

func (a *API) handleRefresh(w http.ResponseWriter, r *http.Request) {
	var req refreshRequest
	if err := readJSON(w, r, &req); err != nil || req.RefreshToken == "" {
		errorResponse(w, http.StatusBadRequest, "refresh_token is required")
		return
	}

	claims, err := a.Tokens.ValidateToken(req.RefreshToken)
	if err != nil || claims.TokenType != tokens.Refresh {
		errorResponse(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	blacklisted, err := a.Blacklist.IsBlacklisted(r.Context(), claims.ID)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}
	if blacklisted {
		errorResponse(w, http.StatusUnauthorized, "invalid refresh token")
		return
	}

	access, err := a.Tokens.GenerateAccessToken(claims.UserID, claims.Username)
	if err != nil {
		serverErrorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{
		"access_token": access,
		"token_type":   "Bearer",
		"expires_in":   int((15 * time.Minute).Seconds()),
	})
}

// handleLogout revokes the presented access token for its remaining
// lifetime.
func (a *API) handleLogout(w http.ResponseWriter, r *http.Request) {
	raw := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	claims, err := a.Tokens.ValidateToken(raw)
	if err != nil {
		errorResponse(w, http.StatusUnauthorized, "invalid token")
		return
	}

	ttl := time.Until(claims.ExpiresAt.Time)
	if ttl < 0 {
		ttl = time.Minute
	}
	if err := a.Blacklist.AddToBlacklist(r.Context(), claims.ID, ttl); err != nil {
		serverErrorResponse(w, err)
		return
	}

	writeJSON(w, http.StatusOK, envelope{"status": "logged out"})
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.Split(fwd, ",")
		return strings.TrimSpace(parts[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
