package observability

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

// Status is reported by the /health endpoint.
type Status func() map[string]any

// NewRouter returns the /health and /metrics handler.
func NewRouter(logger zerolog.Logger, status Status) *gin.Engine {
	RegisterMetrics()
	gin.SetMode(gin.ReleaseMode)

	startedAt := time.Now()
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(RequestLogger(logger))
	r.Use(RequestMetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		body := gin.H{
			"status": "ok",
			"uptime": time.Since(startedAt).String(),
		}
		if status != nil {
			for k, v := range status() {
				body[k] = v
			}
		}
		c.JSON(http.StatusOK, body)
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

// Serve runs the observability endpoints on addr until ctx is done.
func Serve(ctx context.Context, addr string, logger zerolog.Logger, status Status) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           NewRouter(logger, status),
		ReadHeaderTimeout: 5 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", addr).Msg("metrics listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		return nil
	}
}
