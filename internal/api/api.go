// Package api exposes the gateway's HTTP surface: auth, server
// management, the normalized event feed and the live WebSocket stream.
package api

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/technosupport/ts-dvr-gateway/internal/auth"
	"github.com/technosupport/ts-dvr-gateway/internal/data"
	"github.com/technosupport/ts-dvr-gateway/internal/live"
	"github.com/technosupport/ts-dvr-gateway/internal/middleware"
	"github.com/technosupport/ts-dvr-gateway/internal/ratelimit"
	"github.com/technosupport/ts-dvr-gateway/internal/registry"
	"github.com/technosupport/ts-dvr-gateway/internal/tokens"
)

type API struct {
	Servers data.ServerModel
	Events  data.EventModel
	Users   data.UserModel

	Tokens     *tokens.Manager
	Blacklist  auth.TokenBlacklist
	Limiter    *ratelimit.Limiter
	LoginLimit ratelimit.LimitConfig
	JWTAuth    *middleware.JWTAuth

	Resolver *registry.Resolver
	Hub      *live.Hub

	// DB is pinged by the health check; nil skips the probe.
	DB *sql.DB
}

func (a *API) Routes() http.Handler {
	r := chi.NewRouter()

	r.Get("/healthz", a.handleHealthz)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/login", a.handleLogin)
		r.Post("/auth/refresh", a.handleRefresh)

		r.Group(func(r chi.Router) {
			r.Use(a.JWTAuth.Middleware)

			r.Post("/auth/logout", a.handleLogout)

			r.Route("/servers", func(r chi.Router) {
				r.Post("/", a.handleCreateServer)
				r.Get("/", a.handleListServers)
				r.Get("/{id}", a.handleGetServer)
				r.Put("/{id}", a.handleUpdateServer)
				r.Put("/{id}/enabled", a.handleSetServerEnabled)
				r.Delete("/{id}", a.handleDeleteServer)
			})
		})

		r.Route("/events", func(r chi.Router) {
			// WebSocket clients cannot set headers, so the stream
			// handler does its own token check (query param or header).
			r.Get("/stream", a.handleStream)

			r.Group(func(r chi.Router) {
				r.Use(a.JWTAuth.Middleware)
				r.Get("/", a.handleListEvents)
				r.Get("/{seq}", a.handleGetEvent)
				r.Get("/{seq}/export-name", a.handleEventExportName)
			})
		})
	})

	return r
}

func (a *API) handleHealthz(w http.ResponseWriter, r *http.Request) {
	status := "ok"
	code := http.StatusOK

	if a.DB != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := a.DB.PingContext(ctx); err != nil {
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	writeJSON(w, code, envelope{"status": status, "stream_clients": a.Hub.ClientCount()})
}

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, data envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[ERROR] api: encode response: %v", err)
	}
}

func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}

func errorResponse(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, envelope{"error": message})
}

func serverErrorResponse(w http.ResponseWriter, err error) {
	log.Printf("[ERROR] api: %v", err)
	errorResponse(w, http.StatusInternalServerError, "internal server error")
}
