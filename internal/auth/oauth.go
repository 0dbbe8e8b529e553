package auth

import (
	"net/http"

	"github.com/brizzai/auth-relay/internal/auth/constants"
	"github.com/brizzai/auth-relay/internal/auth/handlers"
	"github.com/brizzai/auth-relay/internal/auth/middleware"
	"github.com/brizzai/auth-relay/internal/config"
	"github.com/brizzai/auth-relay/internal/utils"
	"github.com/gorilla/mux"
)

// Service represents the OAuth relay HTTP service
type Service struct {
	config  *config.Config
	handler *handlers.Handler
	limiter *middleware.RateLimiter
}

// NewService creates a new OAuth relay service
func NewService(cfg *config.Config, handler *handlers.Handler) *Service {
	var limiter *middleware.RateLimiter
	if cfg.Server.RateLimit > 0 {
		limiter = middleware.NewRateLimiter(cfg.Server.RateLimit, cfg.Server.RateBurst)
	}

	return &Service{
		config:  cfg,
		handler: handler,
		limiter: limiter,
	}
}

// RegisterRoutes registers all relay routes
func (s *Service) RegisterRoutes(router *mux.Router) {
	router.HandleFunc(constants.InitPathPrefix+"{provider}", s.handler.HandleInit).Methods(http.MethodGet)
	router.HandleFunc(constants.FinalizePathPrefix+"{provider}", s.handler.HandleFinalize).Methods(http.MethodPost)
	router.HandleFunc(constants.CertsPath, s.handler.HandleCerts).Methods(http.MethodGet)
	router.HandleFunc(constants.HealthPath, s.handler.HandleHealth).Methods(http.MethodGet)
}

// Handler returns the routed handler wrapped with the middleware stack
func (s *Service) Handler() http.Handler {
	router := mux.NewRouter()
	s.RegisterRoutes(router)

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, "not_found", "Not found", http.StatusNotFound)
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		utils.WriteError(w, "method_not_allowed", "Method not allowed", http.StatusMethodNotAllowed)
	})

	return middleware.Chain(router,
		middleware.RequestID,
		middleware.AccessLog,
		middleware.CORSWithOrigins(s.config.Server.AllowOrigins),
		middleware.RateLimit(s.limiter),
	)
}
