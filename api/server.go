// Package api exposes run triggers and status over HTTP.
package api

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"shortsbot/types"
)

// Runner starts pipeline runs in the background
type Runner interface {
	Start(ctx context.Context, req types.RunRequest) (string, error)
}

// StatusSource reports the current run state
type StatusSource interface {
	GetStatus() types.StatusResponse
}

// NewRouter constructs a Gin engine with registered routes. Runs started
// through the router live on baseCtx, not the request context.
func NewRouter(baseCtx context.Context, runner Runner, status StatusSource, isBusy func(error) bool) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())

	RegisterRunRoutes(r, &runsController{ctx: baseCtx, runner: runner, status: status, isBusy: isBusy})
	RegisterHealthRoutes(r)
	return r
}

// RegisterHealthRoutes registers GET /api/health
func RegisterHealthRoutes(r *gin.Engine) {
	r.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// Serve runs the HTTP server until ctx is cancelled
func Serve(ctx context.Context, addr string, handler http.Handler) error {
	srv := &http.Server{Addr: addr, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("🌐 API listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Println("Shutting down API server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
