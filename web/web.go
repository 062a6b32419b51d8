// Package web wires the HTTP server: gin engine, middleware chain, controllers
// and the background job scheduler.
package web

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/authsvc/auth-service/config"
	"github.com/authsvc/auth-service/logger"
	"github.com/authsvc/auth-service/util/common"
	"github.com/authsvc/auth-service/web/controller"
	"github.com/authsvc/auth-service/web/job"
	"github.com/authsvc/auth-service/web/locale"
	"github.com/authsvc/auth-service/web/middleware"
	"github.com/authsvc/auth-service/web/network"
	"github.com/authsvc/auth-service/web/service"

	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	shutdownTimeout   = 5 * time.Second
	readHeaderTimeout = 10 * time.Second
	msgRouteNotFound  = "server.notFound"
)

type Server struct {
	cfg *config.Config
	db  *gorm.DB

	httpServer *http.Server
	listener   net.Listener

	auth   *controller.AuthController
	users  *controller.UserAdminController
	health *controller.HealthController

	userService  *service.UserService
	tokenService *service.TokenService
	authService  *service.AuthService

	cron *cron.Cron

	ctx    context.Context
	cancel context.CancelFunc
}

func NewServer(cfg *config.Config, db *gorm.DB) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	return &Server{
		cfg:    cfg,
		db:     db,
		ctx:    ctx,
		cancel: cancel,
	}
}

func (s *Server) initServices() error {
	tokenService, err := service.NewTokenService(s.db, s.cfg.Auth)
	if err != nil {
		return err
	}
	s.tokenService = tokenService
	s.userService = service.NewUserService(s.db)
	s.authService = service.NewAuthService(s.db, s.userService, s.tokenService, s.cfg.Auth.BcryptCost)
	return nil
}

func (s *Server) initRouter() (*gin.Engine, error) {
	if config.IsDebug() {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.DefaultWriter = io.Discard
		gin.DefaultErrorWriter = io.Discard
		gin.SetMode(gin.ReleaseMode)
	}

	if err := locale.InitLocalizer(); err != nil {
		return nil, err
	}

	engine := gin.New()
	engine.Use(
		middleware.RequestLogger(),
		gzip.Gzip(gzip.DefaultCompression),
		locale.LocalizerMiddleware(),
		middleware.ErrorHandler(),
	)

	g := engine.Group("/")
	s.health = controller.NewHealthController(g, s.db)
	s.auth = controller.NewAuthController(g, s.authService, s.tokenService, s.cfg.Cookie)
	s.users = controller.NewUserAdminController(g, s.userService, s.tokenService)

	engine.NoRoute(func(c *gin.Context) {
		_ = c.Error(common.NotFound(msgRouteNotFound))
	})

	return engine, nil
}

// Handler builds the services and the gin engine without listening.
func (s *Server) Handler() (http.Handler, error) {
	if err := s.initServices(); err != nil {
		return nil, err
	}
	return s.initRouter()
}

func (s *Server) startTask() error {
	spec := s.cfg.Jobs.RefreshTokenPurgeCron
	if _, err := s.cron.AddJob(spec, job.NewRefreshTokenPurgeJob(s.tokenService)); err != nil {
		return fmt.Errorf("schedule refresh token purge %q: %w", spec, err)
	}
	logger.Infof("refresh token purge scheduled at %s", spec)
	return nil
}

// Start initializes and starts the web server and the job scheduler.
func (s *Server) Start() (err error) {
	defer func() {
		if err != nil {
			_ = s.Stop()
		}
	}()

	engine, err := s.Handler()
	if err != nil {
		return err
	}

	s.cron = cron.New(cron.WithLocation(time.UTC))
	if err = s.startTask(); err != nil {
		return err
	}
	s.cron.Start()

	listenAddr := net.JoinHostPort(s.cfg.Listen, strconv.Itoa(s.cfg.Port))
	listener, err := network.Listen(listenAddr, s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
	if err != nil {
		return err
	}
	if s.cfg.TLS.Enabled() {
		logger.Info("Web server running HTTPS on", listener.Addr())
	} else {
		logger.Info("Web server running HTTP on", listener.Addr())
	}

	s.listener = listener
	s.httpServer = &http.Server{
		Handler:           engine,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("web server stopped:", err)
		}
	}()

	return nil
}

// Stop shuts the HTTP server down, waiting up to five seconds for in-flight
// requests, and stops the scheduler.
func (s *Server) Stop() error {
	s.cancel()
	if s.cron != nil {
		s.cron.Stop()
	}

	if s.httpServer == nil {
		if s.listener != nil {
			return s.listener.Close()
		}
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.httpServer.Shutdown(ctx)
}

// Addr returns the address the server listens on, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// GetCtx returns the server's context.
func (s *Server) GetCtx() context.Context { return s.ctx }

// GetCron returns the server's cron scheduler instance.
func (s *Server) GetCron() *cron.Cron { return s.cron }
