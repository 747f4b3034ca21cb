package judgestub

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"codebench/internal/common/http/middleware"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/problem"
	pkgerrors "codebench/pkg/errors"
	"codebench/pkg/utils/logger"
	"codebench/pkg/utils/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const maxCodeBytes = 64 << 10

// Options configures the stub router.
type Options struct {
	Fixtures *Fixtures
	Auth     *Authenticator
	CORS     middleware.CORSConfig
	// Latency is added to every run and submit unless the script sets its own.
	Latency time.Duration
}

// Server answers judge requests from fixtures.
type Server struct {
	mu       sync.RWMutex
	fixtures *Fixtures
	auth     *Authenticator
	cors     middleware.CORSConfig
	latency  time.Duration
	runs     atomic.Int64
	submits  atomic.Int64
}

type judgeRequest struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

func NewServer(opts Options) *Server {
	fixtures := opts.Fixtures
	if fixtures == nil {
		fixtures = &Fixtures{}
	}
	return &Server{fixtures: fixtures, auth: opts.Auth, cors: opts.CORS, latency: opts.Latency}
}

// Reload swaps the fixture set.
func (s *Server) Reload(f *Fixtures) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fixtures = f
}

// Router builds the gin engine with the stub routes.
func (s *Server) Router() *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.TraceContext())
	router.Use(middleware.CORS(s.cors))
	router.Use(middleware.RequestLogger())

	router.GET("/healthz", func(c *gin.Context) { c.Status(http.StatusOK) })
	router.GET("/stats", s.handleStats)
	router.GET("/problems", s.handleListProblems)

	router.GET(problem.DefaultPath, s.handleProblem)
	judged := router.Group("/submission", s.auth.Middleware())
	judged.POST("/run/:id", s.handleRun)
	judged.POST("/submit/:id", s.handleSubmit)
	return router
}

func (s *Server) lookup(id string) (*ProblemFixture, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.fixtures.Find(id)
}

func (s *Server) handleListProblems(c *gin.Context) {
	s.mu.RLock()
	ids := s.fixtures.IDs()
	s.mu.RUnlock()
	response.Success(c, gin.H{"problems": ids})
}

func (s *Server) handleStats(c *gin.Context) {
	response.Success(c, gin.H{"runs": s.runs.Load(), "submits": s.submits.Load()})
}

func (s *Server) handleProblem(c *gin.Context) {
	p, ok := s.lookup(c.Param("id"))
	if !ok {
		response.Error(c, pkgerrors.Newf(pkgerrors.ProblemNotFound, "problem %s not found", c.Param("id")))
		return
	}
	response.Raw(c, problem.Problem{
		ID:         p.ID,
		Title:      p.Title,
		Difficulty: p.Difficulty,
		StartCode:  p.StartCodeEntries(),
	})
}

func (s *Server) handleRun(c *gin.Context) {
	s.runs.Add(1)
	script, ok := s.script(c)
	if !ok {
		return
	}
	if s.finishScripted(c, script) {
		return
	}
	cases := script.Run
	if cases == nil {
		cases = []RunCase{}
	}
	response.Raw(c, cases)
}

func (s *Server) handleSubmit(c *gin.Context) {
	s.submits.Add(1)
	script, ok := s.script(c)
	if !ok {
		return
	}
	if s.finishScripted(c, script) {
		return
	}
	if script.Submit == nil {
		response.Error(c, pkgerrors.New(pkgerrors.JudgeSystemError).WithMessage("no submit result scripted for this problem"))
		return
	}
	response.Raw(c, script.Submit)
}

// script validates the request and resolves the fixture script, writing an error response on failure.
func (s *Server) script(c *gin.Context) (Script, bool) {
	p, ok := s.lookup(c.Param("id"))
	if !ok {
		response.Error(c, pkgerrors.Newf(pkgerrors.ProblemNotFound, "problem %s not found", c.Param("id")))
		return Script{}, false
	}
	var req judgeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "request body must be {code, language}")
		return Script{}, false
	}
	lang, err := language.Parse(req.Language)
	if err != nil {
		response.Error(c, err)
		return Script{}, false
	}
	if len(req.Code) > maxCodeBytes {
		response.Error(c, pkgerrors.Newf(pkgerrors.CodeTooLarge, "code exceeds %d bytes", maxCodeBytes))
		return Script{}, false
	}
	logger.Info(c.Request.Context(), "judge request",
		zap.String("problem_id", p.ID),
		zap.String("language", lang.Wire()),
		zap.Int("code_bytes", len(req.Code)),
	)
	return p.ScriptFor(lang, req.Code), true
}

// finishScripted applies latency and forced responses. It reports whether the response was written.
func (s *Server) finishScripted(c *gin.Context, script Script) bool {
	latency := script.Latency
	if latency == 0 {
		latency = s.latency
	}
	if err := sleep(c.Request.Context(), latency); err != nil {
		c.Abort()
		return true
	}
	if script.FailStatus != 0 {
		msg := script.FailMessage
		if msg == "" {
			msg = http.StatusText(script.FailStatus)
		}
		c.JSON(script.FailStatus, response.Response{Code: pkgerrors.JudgeSystemError, Message: msg})
		return true
	}
	if script.RawBody != "" {
		c.Data(http.StatusOK, "application/json", []byte(script.RawBody))
		return true
	}
	return false
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
