package httpadapter

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/legalease-app/backend/internal/core/domain"
	"github.com/legalease-app/backend/internal/core/ports"
	"github.com/legalease-app/backend/internal/observability/metrics"
)

// Config tunes the traffic-control middleware. Zero values disable the
// corresponding layer.
type Config struct {
	MaxUploadBytes   int64
	RateLimitRPS     float64
	RateLimitBurst   int
	MaxInFlight      int
	BackpressureWait time.Duration
}

type Router struct {
	registrar ports.Registrar
	auth      ports.Authenticator
	uploader  ports.ContractUploader
	contracts ports.ContractService
	tokens    ports.TokenManager
	metrics   *metrics.APIMetrics
	logger    *slog.Logger
	cfg       Config
}

func NewRouter(
	registrar ports.Registrar,
	auth ports.Authenticator,
	uploader ports.ContractUploader,
	contracts ports.ContractService,
	tokens ports.TokenManager,
	apiMetrics *metrics.APIMetrics,
	logger *slog.Logger,
	cfg Config,
) *Router {
	return &Router{
		registrar: registrar,
		auth:      auth,
		uploader:  uploader,
		contracts: contracts,
		tokens:    tokens,
		metrics:   apiMetrics,
		logger:    logger,
		cfg:       cfg,
	}
}

func (rt *Router) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", rt.healthz)
	mux.HandleFunc("/v1/auth/register", rt.register)
	mux.HandleFunc("/v1/auth/login", rt.login)
	mux.HandleFunc("/v1/auth/refresh", rt.refresh)
	mux.Handle("/v1/contracts", rt.requireAuth(http.HandlerFunc(rt.contractCollection)))
	mux.Handle("/v1/contracts/", rt.requireAuth(http.HandlerFunc(rt.contractItem)))

	var handler http.Handler = mux
	if rt.metrics != nil {
		handler = rt.metrics.Middleware("api", handler)
	}
	handler = accessLogMiddleware(rt.logger, handler)
	if rt.cfg.MaxInFlight > 0 {
		handler = backpressureMiddleware(handler, rt.cfg.MaxInFlight, rt.cfg.BackpressureWait)
	}
	if rt.cfg.RateLimitRPS > 0 {
		handler = rateLimitMiddleware(handler, rt.cfg.RateLimitRPS, rt.cfg.RateLimitBurst, rt.onRateLimited)
	}
	return requestIDMiddleware(handler)
}

func (rt *Router) onRateLimited() {
	if rt.metrics != nil {
		rt.metrics.RecordRateLimited("api")
	}
}

func (rt *Router) healthz(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func (rt *Router) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := mapErrorToHTTPStatus(err)
	message := err.Error()
	if status == http.StatusInternalServerError {
		rt.logger.Error("request failed",
			slog.String("request_id", requestIDFromContext(r.Context())),
			slog.String("path", r.URL.Path),
			slog.String("error", err.Error()))
		message = "internal error"
	}

	payload := map[string]any{"error": message}
	if fields := domain.FieldErrors(err); len(fields) > 0 {
		payload["fields"] = fields
	}
	writeJSON(w, status, payload)
}

func (rt *Router) methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
}
