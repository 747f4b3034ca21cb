package config

import (
	"fmt"
	"os"
	"time"

	"codebench/internal/common/cache"
	"codebench/internal/workbench/judge"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/problem"
	"codebench/pkg/utils/logger"

	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL   = "http://127.0.0.1:8080"
	DefaultTimeout   = 30 * time.Second
	DefaultStatePath = "configs/workbench_state.json"
	DefaultLogPath   = "logs/workbench.log"
	DefaultHistory   = ".codebench_history"
)

// Config holds workbench configuration.
type Config struct {
	BaseURL     string         `yaml:"baseURL"`
	Timeout     time.Duration  `yaml:"timeout"`
	StatePath   string         `yaml:"statePath"`
	HistoryPath string         `yaml:"historyPath"`
	Language    string         `yaml:"language"`
	Editor      string         `yaml:"editor"`
	Endpoints   EndpointConfig `yaml:"endpoints"`
	Logger      logger.Config  `yaml:"logger"`
	Cache       CacheConfig    `yaml:"cache"`
}

// EndpointConfig holds path templates; ":id" is replaced by the problem id.
type EndpointConfig struct {
	Problem string `yaml:"problem"`
	Run     string `yaml:"run"`
	Submit  string `yaml:"submit"`
}

// CacheConfig configures problem caching. Redis is used only when Redis.Addr is set.
type CacheConfig struct {
	LocalSize int                `yaml:"localSize"`
	TTL       time.Duration      `yaml:"ttl"`
	Redis     *cache.RedisConfig `yaml:"redis"`
}

// Load reads path; a missing file yields defaults.
func Load(path string) (Config, error) {
	cfg := Config{}
	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return cfg, fmt.Errorf("read config file failed: %w", err)
		}
		data = nil
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config file failed: %w", err)
		}
	}
	applyDefaults(&cfg)
	return cfg, nil
}

// DefaultLanguage returns the configured language or the package default.
func (c Config) DefaultLanguage() language.Language {
	lang, err := language.Parse(c.Language)
	if err != nil {
		return language.Default
	}
	return lang
}

// JudgeEndpoints converts the endpoint templates for the judge client.
func (c Config) JudgeEndpoints() judge.Endpoints {
	return judge.Endpoints{Run: c.Endpoints.Run, Submit: c.Endpoints.Submit}
}

func applyDefaults(cfg *Config) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.StatePath == "" {
		cfg.StatePath = DefaultStatePath
	}
	if cfg.HistoryPath == "" {
		cfg.HistoryPath = DefaultHistory
	}
	if cfg.Endpoints.Problem == "" {
		cfg.Endpoints.Problem = problem.DefaultPath
	}
	if cfg.Endpoints.Run == "" {
		cfg.Endpoints.Run = judge.DefaultRunPath
	}
	if cfg.Endpoints.Submit == "" {
		cfg.Endpoints.Submit = judge.DefaultSubmitPath
	}
	if cfg.Logger.Level == "" {
		cfg.Logger.Level = "info"
	}
	if cfg.Logger.Format == "" {
		cfg.Logger.Format = "json"
	}
	if cfg.Logger.OutputPath == "" {
		cfg.Logger.OutputPath = DefaultLogPath
	}
	if cfg.Cache.LocalSize <= 0 {
		cfg.Cache.LocalSize = 64
	}
	if cfg.Cache.TTL <= 0 {
		cfg.Cache.TTL = 10 * time.Minute
	}
	if cfg.Cache.Redis != nil && cfg.Cache.Redis.Addr == "" {
		cfg.Cache.Redis = nil
	}
}
