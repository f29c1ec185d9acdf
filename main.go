package main

import (
	"context"
	"database/sql"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"statement-pdf/internal/audit"
	"statement-pdf/internal/auth"
	"statement-pdf/internal/config"
	"statement-pdf/internal/observability/metrics"
	"statement-pdf/internal/statement/bootstrap"
	statementhttp "statement-pdf/internal/statement/interfaces/http"
)

const shutdownTimeout = 10 * time.Second

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		zap.NewExample().Fatal("config error", zap.Error(err))
	}
	logger := newLogger(cfg.Log.Development)
	defer func() { _ = logger.Sync() }()

	var db *sql.DB
	if cfg.Assets.DatabaseURL != "" {
		db, err = sql.Open("pgx", cfg.Assets.DatabaseURL)
		if err != nil {
			logger.Fatal("db open error", zap.Error(err))
		}
		defer db.Close()
		if err := db.Ping(); err != nil {
			logger.Fatal("db ping error", zap.Error(err))
		}
	}

	metrics.Init(db, logger)

	assetChain, err := bootstrap.BuildAssets(cfg.Assets, db, logger)
	if err != nil {
		logger.Fatal("asset store error", zap.Error(err))
	}
	defer assetChain.Close()

	services, err := bootstrap.BuildServices(cfg, assetChain.Store)
	if err != nil {
		logger.Fatal("render service error", zap.Error(err))
	}

	auditLog := audit.Multi{audit.NewZapLogger(logger)}
	if repo := audit.NewRepository(db); repo != nil {
		auditLog = append(auditLog, repo)
	}

	renderers := make([]statementhttp.Renderer, 0, 3)
	for _, svc := range services.All() {
		renderers = append(renderers, svc)
	}
	handlerOpts := []statementhttp.Option{
		statementhttp.WithLogger(logger),
		statementhttp.WithAudit(auditLog),
		statementhttp.WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes),
		statementhttp.WithRenderTimeout(cfg.HTTP.RenderTimeout),
		statementhttp.WithAssets(assetChain.Store, assetChain.Writer),
	}
	statementHandler, err := statementhttp.NewHandler(renderers, handlerOpts...)
	if err != nil {
		logger.Fatal("statement handler error", zap.Error(err))
	}

	policy := auth.NewDefaultPolicy([]string{"/healthz", "/metrics"}, nil)
	authMiddleware := auth.NewMiddleware([]byte(cfg.HTTP.JWTSecret), policy)
	if authMiddleware == nil {
		logger.Warn("AUTH_JWT_SECRET not set, requests are not authenticated")
	}

	mux := http.NewServeMux()
	statementHandler.Register(mux)
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	server := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           statementhttp.RequestID(loggingMiddleware(authMiddleware.Wrap(mux), logger)),
		ReadHeaderTimeout: cfg.HTTP.ReadHeaderTimeout,
		ReadTimeout:       cfg.HTTP.ReadTimeout,
		WriteTimeout:      cfg.HTTP.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error("http shutdown error", zap.Error(err))
		}
	}()

	logger.Info("http listening",
		zap.String("addr", cfg.HTTP.Addr),
		zap.Strings("asset_sources", assetChain.Sources),
		zap.Bool("auth", authMiddleware != nil),
	)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("http server error", zap.Error(err))
	}
}

func newLogger(development bool) *zap.Logger {
	var (
		logger *zap.Logger
		err    error
	)
	if development {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func loggingMiddleware(next http.Handler, logger *zap.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		resp := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(resp, r)
		logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", resp.status),
			zap.Duration("duration", time.Since(start)),
			zap.String("request_id", statementhttp.RequestIDFromContext(r.Context())),
		)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(status int) {
	w.status = status
	w.ResponseWriter.WriteHeader(status)
}
