// Package problem fetches the problem load payload used to seed code buffers.
package problem

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	httpclient "codebench/internal/cli/http"
	"codebench/internal/common/cache"
	"codebench/internal/workbench/buffer"
	"codebench/internal/workbench/judge"
	pkgerrors "codebench/pkg/errors"
	"codebench/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	DefaultPath     = "/problem/problemById/:id"
	defaultCacheTTL = 10 * time.Minute
	cacheKeyPrefix  = "codebench:problem:"
)

// Problem is the subset of the problem load response the workbench consumes.
type Problem struct {
	ID         string             `json:"id"`
	Title      string             `json:"title"`
	Difficulty string             `json:"difficulty,omitempty"`
	StartCode  []buffer.StartCode `json:"startcode"`
}

// Config holds loader settings. Remote is optional.
type Config struct {
	Path       string
	LocalSize  int
	CacheTTL   time.Duration
	Remote     cache.BasicOps
	RemoteWait time.Duration
}

// Loader fetches problems through an in-process cache and an optional remote tier.
type Loader struct {
	doer       judge.Doer
	path       string
	local      *cache.LRUCache[Problem]
	remote     cache.BasicOps
	ttl        time.Duration
	remoteWait time.Duration
}

// NewLoader creates a loader that caches problems per cfg.
func NewLoader(doer judge.Doer, cfg Config) *Loader {
	if cfg.Path == "" {
		cfg.Path = DefaultPath
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.RemoteWait <= 0 {
		cfg.RemoteWait = time.Second
	}
	return &Loader{
		doer:       doer,
		path:       cfg.Path,
		local:      cache.NewLRUCache[Problem](cfg.LocalSize, cfg.CacheTTL),
		remote:     cfg.Remote,
		ttl:        cfg.CacheTTL,
		remoteWait: cfg.RemoteWait,
	}
}

// Load returns the problem with the given id.
func (l *Loader) Load(ctx context.Context, id string) (Problem, error) {
	if id == "" {
		return Problem{}, pkgerrors.BadRequest("problem id is required")
	}
	if p, ok := l.local.Get(id); ok {
		return p, nil
	}

	var (
		p   Problem
		err error
	)
	if l.remote != nil {
		remoteCtx, cancel := context.WithTimeout(ctx, l.remoteWait)
		var hit bool
		p, hit, err = cache.GetWithCached(remoteCtx, l.remote, cacheKeyPrefix+id, l.ttl, marshalProblem, unmarshalProblem, func(context.Context) (Problem, error) {
			return l.fetch(ctx, id)
		})
		cancel()
		if hit {
			logger.Debug(ctx, "problem served from remote cache", zap.String("problem_id", id))
		}
	} else {
		p, err = l.fetch(ctx, id)
	}
	if err != nil {
		return Problem{}, err
	}
	l.local.Set(id, p, 0)
	return p, nil
}

// Invalidate drops id from both cache tiers.
func (l *Loader) Invalidate(ctx context.Context, id string) {
	l.local.Delete(id)
	if l.remote != nil {
		_ = l.remote.Del(ctx, cacheKeyPrefix+id)
	}
}

func (l *Loader) fetch(ctx context.Context, id string) (Problem, error) {
	path, err := httpclient.BuildPath(l.path, map[string]string{"id": id})
	if err != nil {
		return Problem{}, pkgerrors.Wrap(err, pkgerrors.InvalidParams)
	}
	resp, err := l.doer.Do(ctx, http.MethodGet, path, nil, nil)
	if err != nil {
		return Problem{}, pkgerrors.Wrapf(err, pkgerrors.ProblemLoadFailed, "load problem %s failed: %v", id, err)
	}
	switch {
	case resp.StatusCode == http.StatusNotFound:
		return Problem{}, pkgerrors.Newf(pkgerrors.ProblemNotFound, "problem %s not found", id)
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return Problem{}, pkgerrors.Newf(pkgerrors.ProblemLoadFailed, "load problem %s failed: HTTP %d", id, resp.StatusCode)
	}

	p, err := unmarshalProblem(string(resp.Body))
	if err != nil {
		return Problem{}, pkgerrors.Wrapf(err, pkgerrors.StartCodeMalformed, "decode problem %s failed: %v", id, err)
	}
	if p.ID == "" {
		p.ID = id
	}
	return p, nil
}

func marshalProblem(p Problem) (string, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func unmarshalProblem(raw string) (Problem, error) {
	var p Problem
	if err := json.Unmarshal([]byte(raw), &p); err != nil {
		return Problem{}, fmt.Errorf("decode problem: %w", err)
	}
	return p, nil
}
