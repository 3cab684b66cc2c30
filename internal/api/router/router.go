package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	httpmiddleware "github.com/wolfman30/travel-ai-concierge/internal/http/middleware"
	"github.com/wolfman30/travel-ai-concierge/internal/leads"
	"github.com/wolfman30/travel-ai-concierge/internal/webchat"
	"github.com/wolfman30/travel-ai-concierge/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	ChatHandler        *webchat.Handler
	LeadsHandler       *leads.Handler
	MetricsHandler     http.Handler
	CORSAllowedOrigins []string
	AdminAuth          httpmiddleware.AdminAuthConfig
	// RateLimiter guards the endpoints that call the LLM. Nil disables limiting.
	RateLimiter *httpmiddleware.RateLimiter
	// HealthChecks are probed by GET /health; any failure reports 503.
	HealthChecks map[string]HealthCheck
}

// New creates a new Chi router with all routes configured
func New(cfg *Config) http.Handler {
	if cfg.ChatHandler == nil {
		panic("router: chat handler cannot be nil")
	}

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))

	// Public endpoints
	r.Group(func(public chi.Router) {
		public.Get("/health", healthHandler(cfg.HealthChecks))
		if cfg.MetricsHandler != nil {
			public.Handle("/metrics", cfg.MetricsHandler)
		}
	})

	r.Route("/chat", func(chat chi.Router) {
		// The websocket hijacks the connection, so it stays outside Compress
		// and is throttled per frame instead.
		if cfg.RateLimiter != nil {
			cfg.ChatHandler.SetFrameLimiter(cfg.RateLimiter)
		}
		chat.Get("/ws", cfg.ChatHandler.HandleWebSocket)

		chat.Group(func(api chi.Router) {
			api.Use(middleware.Compress(5))
			api.Get("/scenarios", cfg.ChatHandler.HandleScenarios)
			api.Get("/history", cfg.ChatHandler.HandleHistory)
			api.Post("/end", cfg.ChatHandler.HandleEnd)
			api.Get("/trip", cfg.ChatHandler.HandleTrip)
			api.Delete("/trip", cfg.ChatHandler.HandleClearTrip)

			api.Group(func(llm chi.Router) {
				if cfg.RateLimiter != nil {
					llm.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
				}
				llm.Post("/start", cfg.ChatHandler.HandleStart)
				llm.Post("/message", cfg.ChatHandler.HandleMessage)
			})
		})
	})

	// Admin routes (protected by JWT)
	if cfg.LeadsHandler != nil && cfg.AdminAuth.Secret != "" {
		r.Route("/admin", func(admin chi.Router) {
			admin.Use(httpmiddleware.AdminJWT(cfg.AdminAuth))
			admin.Get("/leads", cfg.LeadsHandler.ListLeads)
			admin.Get("/leads/{leadID}", cfg.LeadsHandler.GetLead)
		})
	}

	return r
}
