// Package httpapi serves the inventory operations over JSON HTTP with gin.
package httpapi

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ironsheep/ui-inventory-mcp/internal/config"
	"github.com/ironsheep/ui-inventory-mcp/internal/inventory"
	"github.com/ironsheep/ui-inventory-mcp/internal/logger"
	"github.com/ironsheep/ui-inventory-mcp/internal/metrics"
)

// Server is the HTTP front end of an inventory.Service.
type Server struct {
	svc     *inventory.Service
	metrics *metrics.Metrics
	cfg     config.HTTPConfig
	version string
	router  *gin.Engine
}

// New builds the router. m may be nil, in which case /metrics is not served
// and requests are not instrumented.
func New(svc *inventory.Service, m *metrics.Metrics, cfg config.HTTPConfig, version string) *Server {
	s := &Server{svc: svc, metrics: m, cfg: cfg, version: version}

	router := gin.New()
	router.Use(gin.Recovery(), s.requestID(), s.observe())

	router.GET("/healthz", s.handleHealth)
	if m != nil {
		router.GET("/metrics", gin.WrapH(m.Handler()))
	}

	v1 := router.Group("/v1", s.limitBody())
	{
		v1.POST("/detect", s.handleDetect)
		v1.POST("/annotate", s.handleAnnotate)
		v1.POST("/style", s.handleStyle)
		v1.POST("/batch", s.handleBatch)

		v1.GET("/test-cases", s.handleListTestCases)
		v1.GET("/test-cases/:id", s.handleGetTestCase)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/validate/all", s.handleValidateAll)
	}

	s.router = router
	return s
}

// Handler returns the router as an http.Handler.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run listens on the configured address until ctx is done, then shuts down
// gracefully within the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.router,
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.L().Info("http server listening", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	logger.L().Info("http server shutting down")
	shutdownCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		shutdownCtx, cancel = context.WithTimeout(shutdownCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}
	return srv.Shutdown(shutdownCtx)
}
