package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	otellog "go.opentelemetry.io/otel/log"
	"google.golang.org/grpc"

	"program-access/internal/config"
	"program-access/internal/db"
	healthhandler "program-access/internal/health/handler"
	identityservice "program-access/internal/identity/service"
	"program-access/internal/logging"
	membershiprepo "program-access/internal/membership/repository"
	orgrepo "program-access/internal/organization/repository"
	"program-access/internal/platform/rbac"
	"program-access/internal/policy/engine"
	programrepo "program-access/internal/program/repository"
	"program-access/internal/programaccess"
	"program-access/internal/security"
	"program-access/internal/server"
	sessionrepo "program-access/internal/session/repository"
	telemetryotel "program-access/internal/telemetry/otel"
)

const shutdownTimeout = 15 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("config: LOG_LEVEL: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	providers, err := telemetryotel.NewProviders(ctx, telemetryotel.Options{
		Endpoint:    cfg.OTLPEndpoint,
		ServiceName: cfg.ServiceName,
		Insecure:    cfg.OTLPInsecure,
	})
	if err != nil {
		return fmt.Errorf("telemetry: %w", err)
	}
	providers.SetGlobal()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := providers.Shutdown(shutdownCtx); err != nil {
			fmt.Fprintln(os.Stderr, "telemetry: shutdown:", err)
		}
	}()

	var lp otellog.LoggerProvider
	if providers.Exporting {
		lp = providers.LoggerProvider
	}
	log := logging.New(os.Stdout, level, lp, cfg.ServiceName)
	slog.SetDefault(log)

	if cfg.DatabaseURL == "" {
		return errors.New("DATABASE_URL is not set; create a .env from .env.example or set DATABASE_URL")
	}
	pool, err := db.Open(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		return fmt.Errorf("db: %w", err)
	}
	defer pool.Close()

	tokens, err := security.LoadTokenProvider(security.KeySettings{
		Secret:     cfg.JWTSecret,
		PrivateKey: cfg.JWTPrivateKey,
		PublicKey:  cfg.JWTPublicKey,
		Issuer:     cfg.JWTIssuer,
		Audience:   cfg.JWTAudience,
		AccessTTL:  cfg.AccessTTL(),
	})
	if err != nil {
		return fmt.Errorf("tokens: %w", err)
	}

	authz, policyChecker, err := newAuthorizer(ctx, cfg)
	if err != nil {
		return fmt.Errorf("authz: %w", err)
	}
	log.Info("authorizer ready", "engine", cfg.AuthzEngine, "token_alg", tokens.Alg())

	verifier := identityservice.NewSessionVerifier(tokens, sessionrepo.NewPostgresRepository(pool))
	programs := programaccess.NewService(
		orgrepo.NewPostgresRepository(pool),
		membershiprepo.NewPostgresRepository(pool),
		programrepo.NewPostgresRepository(pool),
		authz,
	)
	checker := healthhandler.NewChecker(pool, policyChecker)

	if cfg.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	httpSrv := &http.Server{
		Addr: cfg.HTTPAddr,
		Handler: server.NewRouter(server.RouterDeps{
			ServiceName: cfg.ServiceName,
			Verifier:    verifier,
			Programs:    programs,
			Health:      checker,
			Log:         log,
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 2)
	go func() {
		log.Info("HTTP server listening", "addr", cfg.HTTPAddr)
		if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var grpcSrv *grpc.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			return fmt.Errorf("listen: %w", err)
		}
		grpcSrv = server.NewGRPCServer(healthhandler.NewServer(checker, log))
		go func() {
			log.Info("gRPC health server listening", "addr", cfg.GRPCAddr)
			if err := grpcSrv.Serve(lis); err != nil {
				errCh <- fmt.Errorf("grpc: %w", err)
			}
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		log.Info("shutting down")
	case runErr = <-errCh:
		log.Error("server failed", "error", runErr)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(shutdownCtx); err != nil {
		log.Error("HTTP shutdown", "error", err)
	}
	if grpcSrv != nil {
		grpcSrv.GracefulStop()
	}
	log.Info("stopped")
	return runErr
}

// newAuthorizer returns the configured role authorizer and, for the OPA engine, its health checker.
func newAuthorizer(ctx context.Context, cfg *config.Config) (rbac.Authorizer, healthhandler.PolicyChecker, error) {
	if cfg.AuthzEngine != config.AuthzEngineOPA {
		return rbac.StaticAuthorizer{}, nil, nil
	}
	module := ""
	if cfg.AuthzPolicyFile != "" {
		var err error
		if module, err = engine.LoadPolicyFile(cfg.AuthzPolicyFile); err != nil {
			return nil, nil, err
		}
	}
	opa, err := engine.NewOPAAuthorizer(ctx, module)
	if err != nil {
		return nil, nil, err
	}
	return opa, opa, nil
}
