// Package api is Bakery's Control API: an Echo HTTP/JSON server exposing
// /v1/pies, /v1/slices, /v1/status, /v1/health, wired the same way
// iam-service's cmd/api/main.go wires its own Echo instance (HideBanner,
// a structured request-logging middleware, middleware.Recover(), graceful
// Shutdown).
package api

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"github.com/arc-self/bakery/internal/apperr"
	"github.com/arc-self/bakery/internal/orchestrator"
	"github.com/arc-self/bakery/internal/store"
)

// Server is the Control API.
type Server struct {
	Echo *echo.Echo

	store        store.Store
	orchestrator *orchestrator.Orchestrator
	logger       *zap.Logger
	host         string
	port         int
	routerPort   orchestrator.RouterPortProvider
}

// New constructs a Server and registers all routes. It does not bind a
// listener; call Start to do that once the caller is ready to serve.
func New(st store.Store, orch *orchestrator.Orchestrator, routerPort orchestrator.RouterPortProvider, host string, port int, logger *zap.Logger) *Server {
	s := &Server{
		store:        st,
		orchestrator: orch,
		logger:       logger,
		host:         host,
		port:         port,
		routerPort:   routerPort,
	}

	e := echo.New()
	e.HideBanner = true
	e.HTTPErrorHandler = s.errorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			logger.Info("control api request",
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
			)
			return nil
		},
	}))

	s.Echo = e
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.Echo.Group("/v1")
	v1.GET("/health", s.handleHealth)
	v1.GET("/status", s.handleStatus)

	v1.GET("/pies", s.handleListPies)
	v1.POST("/pies", s.handleCreatePie)
	v1.GET("/pies/:idOrSlug", s.handleGetPie)
	v1.DELETE("/pies/:idOrSlug", s.handleDeletePie)

	v1.GET("/slices", s.handleListSlices)
	v1.POST("/slices", s.handleCreateSlice)
	v1.POST("/slices/:id/stop", s.handleStopSlice)
	v1.DELETE("/slices/:id", s.handleDeleteSlice)
}

// Start binds the control-plane listener. Per spec §4.4 this runs after
// the Router Proxy has already bound its own listener.
func (s *Server) Start() error {
	addr := s.host + ":" + strconv.Itoa(s.port)
	s.logger.Info("control api listening", zap.String("addr", addr))
	return s.Echo.Start(addr)
}

// errorHandler translates apperr.Error (and anything else) into the
// {"error": string} JSON body spec §4.4/§7 require, with the matching
// HTTP status.
func (s *Server) errorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	if appErr, ok := apperr.As(err); ok {
		_ = c.JSON(appErr.StatusCode(), errorResponse(appErr.Message))
		return
	}

	if httpErr, ok := err.(*echo.HTTPError); ok {
		msg := httpErr.Message
		if s, ok := msg.(string); ok {
			_ = c.JSON(http.StatusBadRequest, errorResponse(s))
			return
		}
		_ = c.JSON(http.StatusBadRequest, errorResponse(httpErr.Error()))
		return
	}

	_ = c.JSON(http.StatusBadRequest, errorResponse(err.Error()))
}

// bindJSON decodes the request body, mapping any decode failure to a
// 400 invalid-argument error (spec §4.4: "Malformed JSON bodies return 400").
func bindJSON(c echo.Context, out any) error {
	if err := c.Bind(out); err != nil {
		return apperr.InvalidArgument("malformed request body: %v", err)
	}
	return nil
}
