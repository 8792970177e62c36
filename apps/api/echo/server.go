package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

	"github.com/trezcool/educode/core"
	"github.com/trezcool/educode/core/store"
)

type Server struct {
	conf     *core.Config
	logger   core.Logger
	store    *store.Store
	ai       core.AIService
	app      *echo.Echo
	errors   chan error
	shutdown chan os.Signal
}

func NewServer(conf *core.Config, logger core.Logger, st *store.Store, ai core.AIService) *Server {
	s := &Server{
		conf:     conf,
		logger:   logger,
		store:    st,
		ai:       ai,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	s.setup()
	return s
}

func (s *Server) setup() {
	s.app.HideBanner = true
	s.app.Pre(middleware.RemoveTrailingSlash())
	if !s.conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(s.conf.Debug || s.conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}
	s.app.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{s.conf.FrontendBaseURL},
	}))

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.logger, s.signalShutdown)
	s.app.Debug = s.conf.Debug

	s.app.GET("/", s.home)

	v1 := s.app.Group("/v1", middleware.JWTWithConfig(newJWTConfig(s.conf)), sessionMiddleware(s.store))
	auth := authMiddleware()

	registerUserAPI(v1, auth, s.conf, s.store)
	registerCourseAPI(v1, auth, s.store)
	registerSubmissionAPI(v1, auth, s.store, s.ai)
	registerMessageAPI(v1, auth, s.store)
	registerGroupAPI(v1, auth, s.store)
	registerNotificationAPI(v1, auth)
	registerAdminAPI(v1, auth, s.store)
	registerAIAPI(v1, s.store, s.ai, s.logger)
}

// Start blocks until the server stops; failures other than a shutdown are reported on Errors.
func (s *Server) Start() {
	if err := s.app.Start(s.conf.Server.Host); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error {
	return s.errors
}

// ShutdownSignal delivers SIGINT & SIGTERM, and the signal raised by a shutdown error.
func (s *Server) ShutdownSignal() <-chan os.Signal {
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	return s.shutdown
}

func (s *Server) signalShutdown() {
	select {
	case s.shutdown <- syscall.SIGTERM:
	default:
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func (s *Server) home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to "+s.conf.AppName+" API!")
}
