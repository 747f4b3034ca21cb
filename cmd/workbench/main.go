package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"

	"codebench/internal/cli/config"
	"codebench/internal/cli/editor"
	httpclient "codebench/internal/cli/http"
	"codebench/internal/cli/repl"
	"codebench/internal/cli/state"
	"codebench/internal/common/cache"
	"codebench/internal/workbench/judge"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/observer"
	"codebench/internal/workbench/problem"
	"codebench/pkg/utils/logger"

	"go.uber.org/zap"
)

const defaultConfigPath = "configs/workbench.yaml"

func main() {
	configPath := flag.String("config", defaultConfigPath, "Path to config file")
	baseURL := flag.String("base", "", "Override judge base URL")
	timeout := flag.Duration("timeout", 0, "Override HTTP timeout (e.g. 30s)")
	token := flag.String("token", "", "Override access token")
	statePath := flag.String("state", "", "Override client state path")
	lang := flag.String("lang", "", "Override default language")
	editorCmd := flag.String("editor", "", "Override editor command")
	load := flag.String("load", "", "Problem id to load on start")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config failed: %v\n", err)
		os.Exit(1)
	}
	if *baseURL != "" {
		cfg.BaseURL = *baseURL
	}
	if *timeout > 0 {
		cfg.Timeout = *timeout
	}
	if *statePath != "" {
		cfg.StatePath = *statePath
	}
	if *lang != "" {
		if _, err := language.Parse(*lang); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		cfg.Language = *lang
	}
	if *editorCmd != "" {
		cfg.Editor = *editorCmd
	}

	if err := logger.Init(cfg.Logger); err != nil {
		fmt.Fprintf(os.Stderr, "init logger failed: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	ctx := context.Background()

	clientState, err := state.Load(cfg.StatePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load client state failed: %v\n", err)
		os.Exit(1)
	}
	if *token != "" {
		clientState.AccessToken = *token
	}

	client := httpclient.New(cfg.BaseURL, cfg.Timeout, func() string {
		return clientState.AccessToken
	})

	loaderCfg := problem.Config{
		Path:      cfg.Endpoints.Problem,
		LocalSize: cfg.Cache.LocalSize,
		CacheTTL:  cfg.Cache.TTL,
	}
	if cfg.Cache.Redis != nil {
		remote, err := cache.NewRedisCacheWithConfig(cfg.Cache.Redis)
		if err != nil {
			logger.Warn(ctx, "redis problem cache unavailable, using local cache only", zap.Error(err))
		} else {
			defer func() { _ = remote.Close() }()
			loaderCfg.Remote = remote
		}
	}

	r := repl.New(repl.Options{
		Client:          client,
		Judge:           judge.NewClient(client, nil, cfg.JudgeEndpoints()),
		Loader:          problem.NewLoader(client, loaderCfg),
		Editor:          editor.New(cfg.Editor),
		Recorder:        observer.LogRecorder{},
		DefaultLanguage: cfg.DefaultLanguage(),
		State:           &clientState,
		StatePath:       cfg.StatePath,
		HistoryPath:     cfg.HistoryPath,
	})
	logger.Info(ctx, "workbench started", zap.String("base_url", cfg.BaseURL))

	if *load != "" {
		if err := r.Execute(ctx, "load "+strconv.Quote(*load)); err != nil {
			fmt.Fprintf(os.Stderr, "load %s failed: %v\n", *load, err)
		}
	}
	if err := r.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
