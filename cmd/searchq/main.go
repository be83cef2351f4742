package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kailas-cloud/searchq"
	"github.com/kailas-cloud/searchq/internal/config"
	logpkg "github.com/kailas-cloud/searchq/internal/logger"
	"github.com/kailas-cloud/searchq/internal/metrics"
	chiTransport "github.com/kailas-cloud/searchq/internal/transport/chi"
	"github.com/kailas-cloud/searchq/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting searchq API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("es_addrs", cfg.Elasticsearch.Addrs),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	client, err := searchq.New(
		searchq.WithAddresses(cfg.Elasticsearch.Addrs...),
		searchq.WithBasicAuth(cfg.Elasticsearch.Username, cfg.Elasticsearch.Password),
		searchq.WithScrollKeepAlive(time.Duration(cfg.Search.ScrollKeepAliveSec)*time.Second),
		searchq.WithPrometheus(prometheus.DefaultRegisterer),
	)
	if err != nil {
		logger.Fatal("Failed to create search client", zap.Error(err))
	}

	ctx := context.Background()
	if err := client.Ping(ctx); err != nil {
		logger.Warn("Elasticsearch not reachable at startup", zap.Error(err))
	} else {
		logger.Info("Connected to Elasticsearch")
	}

	server := chiTransport.NewServer(
		&indexSearcher{client: client},
		client,
		chiTransport.Limits{
			DefaultPageSize: cfg.Search.DefaultPageSize,
			MaxPageSize:     cfg.Search.MaxPageSize,
		},
		logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// indexSearcher adapts the searchq client to the transport contract,
// serving raw JSON documents.
type indexSearcher struct {
	client *searchq.Client
}

func (s *indexSearcher) Search(ctx context.Context, index string, q searchq.Query) (searchq.SearchHits[json.RawMessage], error) {
	idx, err := searchq.NewIndex[json.RawMessage](s.client, index)
	if err != nil {
		return searchq.SearchHits[json.RawMessage]{}, err
	}
	return idx.Find(ctx, q)
}

func (s *indexSearcher) Count(ctx context.Context, index string, q searchq.Query) (int64, error) {
	idx, err := searchq.NewIndex[json.RawMessage](s.client, index)
	if err != nil {
		return 0, err
	}
	return idx.Count(ctx, q)
}

func (s *indexSearcher) DeleteByQuery(ctx context.Context, index string, dq *searchq.DeleteQuery) (int64, error) {
	idx, err := searchq.NewIndex[json.RawMessage](s.client, index)
	if err != nil {
		return 0, err
	}
	return idx.DeleteBy(ctx, dq)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.Duration("duration", time.Since(start)),
			)
		})
	}
}
