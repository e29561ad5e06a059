// Package router wires HTTP routes to their handlers.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/sablehq/frontdesk-ai-platform/internal/admin"
	"github.com/sablehq/frontdesk-ai-platform/internal/http/handlers"
	httpmiddleware "github.com/sablehq/frontdesk-ai-platform/internal/http/middleware"
	"github.com/sablehq/frontdesk-ai-platform/pkg/logging"
)

// Config holds router configuration.
type Config struct {
	Logger             *logging.Logger
	AssistantWebhook   *handlers.AssistantWebhookHandler
	AdminHandler       *admin.Handler
	AdminAuthSecret    string
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
}

// New creates a Chi router with all routes configured.
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	if cfg.Logger != nil {
		r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	}

	// Public endpoints (webhooks, health checks)
	r.Group(func(public chi.Router) {
		public.Get("/health", healthCheck)
		if cfg.AssistantWebhook != nil {
			public.Post("/webhooks/assistant", cfg.AssistantWebhook.HandleAssistantWebhook)
		}
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	// Dashboard admin endpoints
	if cfg.AdminHandler != nil {
		r.Route("/admin", func(ar chi.Router) {
			ar.Use(httpmiddleware.AdminJWT(cfg.AdminAuthSecret))
			ar.Get("/tenants/{tenantID}/overview", cfg.AdminHandler.GetTenantOverview)
			ar.Post("/tenants/{tenantID}/invalidate-context", cfg.AdminHandler.InvalidateContext)
		})
	}

	return r
}

func healthCheck(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
