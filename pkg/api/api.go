package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/telekom/smtp-mail-adapter/pkg/apiresponses"
	"github.com/telekom/smtp-mail-adapter/pkg/config"
	"github.com/telekom/smtp-mail-adapter/pkg/metrics"
	"github.com/telekom/smtp-mail-adapter/pkg/system"
	"github.com/telekom/smtp-mail-adapter/pkg/version"
)

const (
	DefaultListenAddress = ":8080"
	shutdownTimeout      = 30 * time.Second
)

type APIController interface {
	BasePath() string
	Register(rg *gin.RouterGroup) error
	Handlers() []gin.HandlerFunc
}

type Server struct {
	gin    *gin.Engine
	config config.Server
	log    *zap.SugaredLogger
}

func NewServer(log *zap.Logger, cfg config.Server, debug bool) *Server {
	if !debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if cfg.ListenAddress == "" {
		cfg.ListenAddress = DefaultListenAddress
	}

	engine := gin.New()
	engine.Use(
		ginzap.Ginzap(log, time.RFC3339, true),
		ginzap.RecoveryWithZap(log, true),
		system.RequestLogger(log.Sugar()),
	)

	if debug {
		engine.Use(
			cors.New(cors.Config{
				AllowOrigins:  []string{"http://localhost:5173", "http://127.0.0.1:8080"},
				AllowMethods:  []string{"GET", "POST", "OPTIONS"},
				AllowHeaders:  []string{"Origin", "Content-Type", system.CorrelationIDHeader},
				ExposeHeaders: []string{system.CorrelationIDHeader},
				MaxAge:        12 * time.Hour,
			}),
		)
	}

	s := &Server{
		gin:    engine,
		config: cfg,
		log:    log.Sugar(),
	}

	engine.GET("healthz", s.getHealth)
	engine.GET("metrics", gin.WrapH(metrics.MetricsHandler()))
	engine.GET("api/buildinfo", s.getBuildInfo)

	return s
}

func (s *Server) RegisterAll(controllers []APIController) error {
	r := s.gin.Group("api")
	for _, c := range controllers {
		if err := c.Register(r.Group(c.BasePath(), c.Handlers()...)); err != nil {
			return err
		}
	}
	return nil
}

// Handler returns the gin engine, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.gin
}

// Listen serves until ctx is cancelled and then shuts down gracefully.
func (s *Server) Listen(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.config.ListenAddress,
		Handler:           s.gin,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Infow("Starting HTTP server", "address", s.config.ListenAddress, "tls", s.config.TLSCertFile != "")
		var err error
		if s.config.TLSCertFile != "" && s.config.TLSKeyFile != "" {
			err = srv.ListenAndServeTLS(s.config.TLSCertFile, s.config.TLSKeyFile)
		} else {
			err = srv.ListenAndServe()
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errCh <- err
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}

func (s *Server) getHealth(c *gin.Context) {
	apiresponses.RespondOK(c, gin.H{"status": "ok"})
}

func (s *Server) getBuildInfo(c *gin.Context) {
	apiresponses.RespondOK(c, version.GetBuildInfo())
}
