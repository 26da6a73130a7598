// Package server exposes a board over HTTP with a websocket change feed
package server

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/existflow/taskboard/internal/board"
	"github.com/existflow/taskboard/internal/logger"
	"github.com/existflow/taskboard/internal/realtime"
)

// Server serves one board
type Server struct {
	board       *board.Board
	hub         *Hub
	echo        *echo.Echo
	unsubscribe func()
}

// New creates a server for b and starts its websocket hub
func New(b *board.Board) *Server {
	s := &Server{
		board: b,
		hub:   NewHub(),
	}
	s.setupEcho()

	go s.hub.Run()
	s.unsubscribe = b.Subscribe(func(e board.Event) {
		s.hub.Broadcast(Message{Type: string(e.Kind), Data: e})
	})
	return s
}

func (s *Server) setupEcho() {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()
			req := c.Request()

			err := next(c)

			res := c.Response()
			logger.Info("HTTP Request",
				logger.F("method", req.Method),
				logger.F("uri", req.RequestURI),
				logger.F("status", res.Status),
				logger.F("size", res.Size),
				logger.F("duration", time.Since(start).String()),
				logger.F("request_id", res.Header().Get(echo.HeaderXRequestID)))
			return err
		}
	})

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORS())

	e.GET("/health", s.handleHealth)

	api := e.Group("/api/v1")
	api.GET("/board", s.handleBoard)
	api.POST("/tasks", s.handleCreateTask)
	api.PATCH("/tasks/:id", s.handleUpdateTask)
	api.POST("/tasks/:id/move", s.handleMoveTask)
	api.POST("/tasks/:id/toggle", s.handleToggleTask)
	api.POST("/columns", s.handleAddColumn)
	api.GET("/activities", s.handleActivities)
	api.GET("/export", s.handleExport)
	api.POST("/import", s.handleImport)
	api.PUT("/theme", s.handleTheme)
	api.GET("/ws", s.handleWebSocket)

	s.echo = e
}

// Notify forwards a realtime notice to websocket clients
func (s *Server) Notify(n realtime.Notice) {
	s.hub.Broadcast(Message{Type: "notice", Data: n})
}

// Router returns the HTTP handler
func (s *Server) Router() http.Handler {
	return s.echo
}

// Start listens on addr and blocks until the server stops
func (s *Server) Start(addr string) error {
	logger.Info("Server listening", logger.F("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown stops accepting requests, detaches from the board and closes all
// websocket clients
func (s *Server) Shutdown(ctx context.Context) error {
	s.unsubscribe()
	err := s.echo.Shutdown(ctx)
	s.hub.Stop()
	return err
}

func (s *Server) handleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
