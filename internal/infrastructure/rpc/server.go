// Package rpc is the wire front-end: a thin JSON-over-HTTP shell around
// the engine's four operations. It owns decoding, shape validation, and
// response encoding only — every domain decision is the processor's.
package rpc

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"ledger-engine/internal/infrastructure/rpc/handlers"
)

// NewRouter builds the gin engine with every engine route registered.
func NewRouter(engine handlers.Engine) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(prometheusMiddleware())

	router.POST("/accounts", handlers.MakeCreateAccountHandler(engine))
	router.GET("/accounts/:id/balance", handlers.MakeGetBalanceHandler(engine))
	router.POST("/accounts/:id/deposit", handlers.MakeDepositHandler(engine))
	router.POST("/transfers", handlers.MakeTransferHandler(engine))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// Server owns the HTTP listener's lifecycle, mirroring the reference
// service's own Start/Shutdown pair.
type Server struct {
	httpServer *http.Server
}

func NewServer(address string, port int, engine handlers.Engine) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:           fmt.Sprintf("%s:%d", address, port),
			Handler:        NewRouter(engine),
			ReadTimeout:    15 * time.Second,
			WriteTimeout:   15 * time.Second,
			IdleTimeout:    60 * time.Second,
			MaxHeaderBytes: 1 << 20,
		},
	}
}

// Start runs ListenAndServe in a background goroutine and reports any
// failure other than a clean shutdown onto errCh.
func (s *Server) Start(errCh chan<- error) {
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- fmt.Errorf("wire front-end failed: %w", err)
		}
	}()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
