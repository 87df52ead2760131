package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mark3labs/mcp-go/server"
	"github.com/meghashyamc/awquery/activitywatch"
	"github.com/meghashyamc/awquery/api/tools"
	"github.com/meghashyamc/awquery/config"
	"github.com/meghashyamc/awquery/db/kvdb"
	"github.com/meghashyamc/awquery/logger"
	"github.com/meghashyamc/awquery/services/search"
	"github.com/meghashyamc/awquery/validation"
)

const shutdownTimeout = 10 * time.Second

type apiServer struct {
	cfg        *config.Config
	router     *gin.Engine
	httpServer *http.Server
	kvdb       kvdb.DB
	service    *search.Service
	validator  *validation.Validator
	mcpServer  *server.MCPServer
	streamable *server.StreamableHTTPServer
	logger     logger.Logger
}

// Run serves the MCP endpoint and the REST mirror until ctx is cancelled or the process
// receives SIGINT or SIGTERM.
func Run(ctx context.Context, cfg *config.Config, logger logger.Logger) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	s, err := newAPIServer(cfg, logger)
	if err != nil {
		return err
	}

	errCh := s.setupHTTPServer()

	select {
	case err := <-errCh:
		s.closeStore()
		return err
	case <-ctx.Done():
	}

	return s.shutdown()
}

func newAPIServer(cfg *config.Config, logger logger.Logger) (*apiServer, error) {
	s := &apiServer{
		cfg:    cfg,
		logger: logger,
	}
	if err := s.setupDependencies(); err != nil {
		return nil, err
	}
	s.setupRouter()

	return s, nil
}

func (s *apiServer) setupDependencies() error {
	var err error
	if cachePath := s.cfg.GetCachePath(); len(cachePath) > 0 {
		s.kvdb, err = kvdb.New(s.logger, cachePath)
		if err != nil {
			s.logger.Error("error creating kvDB", "err", err.Error())
			return err
		}
	}

	cache, err := search.NewResultCache(s.logger, s.cfg.GetCacheCapacity(), s.kvdb)
	if err != nil {
		s.closeStore()
		return err
	}

	upstream, err := activitywatch.New(s.logger, s.cfg.GetActivityWatchURL(), s.cfg.GetRequestTimeout())
	if err != nil {
		s.logger.Error("error creating activitywatch client", "err", err.Error())
		s.closeStore()
		return err
	}

	s.validator, err = validation.New(s.logger)
	if err != nil {
		s.logger.Error("error creating validator", "err", err.Error())
		s.closeStore()
		return err
	}

	s.service = search.New(s.logger, upstream, cache)
	s.mcpServer = tools.NewMCPServer(s.cfg.GetServerName(), s.logger, s.service, s.validator, s.cfg.GetDebug())
	s.streamable = server.NewStreamableHTTPServer(s.mcpServer, server.WithEndpointPath(mcpPath))

	s.logger.Info("dependencies ready", "activitywatch_url", s.cfg.GetActivityWatchURL(), "cache_capacity", s.cfg.GetCacheCapacity(), "cache_path", s.cfg.GetCachePath())

	return nil
}

func (s *apiServer) setupRouter() {
	router := newRouter(s.cfg.GetDebug())

	router.Use(loggingMiddleware(s.logger))

	setupRoutes(router, s.logger, s.service, s.validator, s.streamable)

	s.router = router
}

func (s *apiServer) setupHTTPServer() <-chan error {

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%s", s.cfg.GetPort()),
		Handler: s.router.Handler(),
	}
	s.httpServer = httpServer

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting http server", "addr", httpServer.Addr, "name", s.cfg.GetServerName())
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("http server stopped", "err", err.Error())
			errCh <- fmt.Errorf("listen: %w", err)
		}
	}()

	return errCh
}

func (s *apiServer) shutdown() error {
	s.logger.Info("starting to shut down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	defer s.closeStore()

	if err := s.streamable.Shutdown(shutdownCtx); err != nil {
		s.logger.Warn("error closing mcp sessions", "err", err.Error())
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		s.logger.Error("error shutting down http server", "err", err.Error())
		return err
	}
	s.logger.Info("shut down http server successfully")

	return nil
}

func (s *apiServer) closeStore() {
	if s.kvdb == nil {
		return
	}
	if err := s.kvdb.Close(); err != nil {
		s.logger.Error("error closing kvDB", "err", err.Error())
	}
}
