package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"codebench/internal/judgestub"
	"codebench/pkg/utils/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const defaultConfigPath = "configs/judge-stub.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	addr := flag.String("addr", "", "Override listen address")
	fixturesPath := flag.String("fixtures", "", "Override fixture file")
	issueToken := flag.String("issue-token", "", "Print an access token for this subject and exit")
	tokenTTL := flag.Duration("token-ttl", 24*time.Hour, "Lifetime of issued tokens")
	flag.Parse()

	appCfg, err := loadAppConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load app config failed: %v\n", err)
		os.Exit(1)
	}
	if *addr != "" {
		appCfg.Server.Addr = *addr
	}
	if *fixturesPath != "" {
		appCfg.Fixtures = *fixturesPath
	}

	auth := judgestub.NewAuthenticator(appCfg.Auth)
	if *issueToken != "" {
		if auth == nil {
			fmt.Fprintln(os.Stderr, "auth.jwtSecret is not configured")
			os.Exit(1)
		}
		token, err := auth.Issue(*issueToken, *tokenTTL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "issue token failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Println(token)
		return
	}

	if err := logger.Init(appCfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	fixtures, err := judgestub.LoadFixtures(appCfg.Fixtures)
	if err != nil {
		logger.Error(context.Background(), "load fixtures failed", zap.Error(err))
		return
	}

	gin.SetMode(gin.ReleaseMode)
	stub := judgestub.NewServer(judgestub.Options{
		Fixtures: fixtures,
		Auth:     auth,
		CORS:     appCfg.CORS,
		Latency:  appCfg.Latency,
	})
	httpServer := &http.Server{
		Addr:           appCfg.Server.Addr,
		Handler:        stub.Router(),
		ReadTimeout:    appCfg.Server.ReadTimeout,
		WriteTimeout:   appCfg.Server.WriteTimeout,
		IdleTimeout:    appCfg.Server.IdleTimeout,
		MaxHeaderBytes: appCfg.Server.MaxHeaderBytes,
	}

	listener, err := net.Listen("tcp", appCfg.Server.Addr)
	if err != nil {
		logger.Error(context.Background(), "init http listener failed", zap.Error(err))
		return
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info(context.Background(), "judge stub started",
			zap.String("addr", appCfg.Server.Addr),
			zap.Int("problems", len(fixtures.Problems)),
			zap.Bool("auth", auth != nil),
		)
		errCh <- httpServer.Serve(listener)
	}()

	reload := make(chan os.Signal, 1)
	signal.Notify(reload, syscall.SIGHUP)
	defer signal.Stop(reload)

	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for running := true; running; {
		select {
		case err := <-errCh:
			if err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error(context.Background(), "http server stopped", zap.Error(err))
			}
			running = false
		case <-reload:
			next, err := judgestub.LoadFixtures(appCfg.Fixtures)
			if err != nil {
				logger.Warn(context.Background(), "reload fixtures failed, keeping previous set", zap.Error(err))
				continue
			}
			stub.Reload(next)
			logger.Info(context.Background(), "fixtures reloaded", zap.Int("problems", len(next.Problems)))
		case <-shutdownCtx.Done():
			logger.Info(context.Background(), "shutdown signal received")
			running = false
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultShutdownTimeout)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error(context.Background(), "http server shutdown failed", zap.Error(err))
	}
}
