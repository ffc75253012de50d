/*
Package handler provides the HTTP and WebSocket surface of the relay.

This file defines the main Router: CORS, request logging, recovery, the
health endpoint, static asset serving, and the rate-limited WebSocket
endpoint.
*/
package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/rs/cors"
	"golang.org/x/time/rate"

	"chatrelay/internal/pkg/limiter"
	"chatrelay/internal/pkg/logx"
	"chatrelay/internal/pkg/resp"
)

const (
	// ConnectRate and ConnectBurst bound how often one IP may open new
	// WebSocket sessions.
	ConnectRate  = 0.5
	ConnectBurst = 5
)

// Router sets up the chi routing table for the application.
func Router(deps *AppDeps) http.Handler {
	connectLimiter := limiter.NewIPRateLimiter(rate.Limit(ConnectRate), ConnectBurst)

	r := chi.NewRouter()

	allowedOrigins := make(map[string]struct{})
	for _, origin := range deps.Config.AllowedOrigins {
		allowedOrigins[origin] = struct{}{}
	}

	var wsUpgrader = websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if deps.Config.Environment == "development" {
				return true
			}

			origin := r.Header.Get("Origin")
			if _, ok := allowedOrigins[origin]; ok {
				return true
			}

			logx.Warn("WebSocket connection rejected: Origin not allowed.", "origin", origin)
			return false
		},
	}

	corsAllowedOrigins := []string{}
	if deps.Config.Environment == "development" {
		corsAllowedOrigins = []string{"*"}
	} else if len(deps.Config.AllowedOrigins) > 0 {
		corsAllowedOrigins = deps.Config.AllowedOrigins
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   corsAllowedOrigins,
		AllowedMethods:   []string{"GET", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		ExposedHeaders:   []string{},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(logx.RequestLogger())
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		data := map[string]string{
			"status":  "ok",
			"service": "chatrelay",
		}
		resp.RespondSuccess(w, r, data)
	})

	r.Get("/ws", HandleWebSocket(wsUpgrader, connectLimiter, deps))

	// Static web client assets.
	r.Handle("/*", http.FileServer(http.Dir(deps.Config.PublicDir)))

	return r
}
