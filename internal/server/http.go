package server

import (
	"log/slog"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	healthhandler "program-access/internal/health/handler"
	programhandler "program-access/internal/programaccess/handler"
	"program-access/internal/server/middleware"
)

// FetchProgramsPath is the route of the access-gated program fetch.
const FetchProgramsPath = "/api/get-prg-owner-data"

// RouterDeps holds the dependencies of the HTTP API.
type RouterDeps struct {
	// ServiceName names the otelgin server spans.
	ServiceName string
	Verifier    middleware.Verifier
	Programs    programhandler.ProgramLister
	// Health backs /ready. If nil, /ready always reports ready.
	Health *healthhandler.Checker
	Log    *slog.Logger
}

// NewRouter returns the gin engine serving the HTTP API.
//
// Routes:
//   - GET  /live                     → liveness
//   - GET  /ready                    → readiness (database ping, policy check)
//   - POST /api/get-prg-owner-data   → bearer auth, then programaccess handler
func NewRouter(deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		otelgin.Middleware(deps.ServiceName),
		middleware.Logger(deps.Log),
		middleware.Recovery(deps.Log),
	)

	health := deps.Health
	if health == nil {
		health = healthhandler.NewChecker(nil, nil)
	}
	r.GET("/live", healthhandler.Live)
	r.GET("/ready", healthhandler.Ready(health, deps.Log))

	programs := programhandler.NewHandler(deps.Programs, deps.Log)
	r.POST(FetchProgramsPath, middleware.Auth(deps.Verifier, deps.Log), programs.FetchPrograms)
	return r
}
