// Package httpapi exposes schedules, sync writes and summary actions over HTTP.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

const shutdownTimeout = 10 * time.Second

// NewRouter builds the gin engine with every route.
func NewRouter(h *Handlers, logger *logrus.Entry) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(logger))

	r.GET("/healthz", h.Health)

	api := r.Group("/api/classes/:classID")
	{
		api.PUT("/settings", h.PutSettings)
		api.PUT("/fixed-slots", h.PutFixedSlots)
		api.GET("/schedule/:date", h.GetSchedule)
		api.PUT("/announcements", h.PutAnnouncementDays)
		api.PUT("/announcements/:date", h.PutAnnouncements)
		api.POST("/announcements/:date/periods/:period/clear", h.ClearSlot)
		api.POST("/general/:date/summary", h.GenerateSummary)
		api.DELETE("/general/:date/summary", h.DeleteSummary)
	}
	return r
}

type Server struct {
	httpServer *http.Server
	logger     *logrus.Entry
}

func NewServer(addr string, router http.Handler, logger *logrus.Entry) *Server {
	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
		},
		logger: logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.WithField("addr", s.httpServer.Addr).Info("HTTP server listening")
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http server shutdown: %w", err)
	}
	s.logger.Info("HTTP server stopped")
	return nil
}
