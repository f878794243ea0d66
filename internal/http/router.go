package httpserver

import (
	"log"
	"net/http"

	"github.com/giulianni/lawfirm-ai-back/internal/http/handlers"
	"github.com/giulianni/lawfirm-ai-back/internal/http/middleware"
)

type RouterDependencies struct {
	API            *handlers.API
	Logger         *log.Logger
	AuthToken      string
	CORSOrigins    []string
	RateLimitRPS   float64
	RateLimitBurst int
}

func NewRouter(deps RouterDependencies) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", deps.API.Health)
	mux.HandleFunc("/v1/documents/parse", deps.API.ParseDocument)
	mux.HandleFunc("/v1/documents/draft", deps.API.DraftDocument)
	mux.HandleFunc("/v1/tasks/", deps.API.GetTask)
	mux.HandleFunc("/v1/audit-events", deps.API.ListAuditEvents)

	handler := http.Handler(mux)
	handler = middleware.Auth(deps.AuthToken)(handler)
	handler = middleware.RateLimit(deps.RateLimitRPS, deps.RateLimitBurst)(handler)
	handler = middleware.CORS(middleware.CORSConfig{
		AllowedOrigins: deps.CORSOrigins,
	})(handler)
	handler = middleware.Trace(deps.Logger)(handler)
	handler = middleware.RequestID(handler)

	return handler
}
