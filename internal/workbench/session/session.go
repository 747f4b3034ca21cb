// Package session ties the workbench core together for one problem view.
package session

import (
	"context"
	"sync"

	"codebench/internal/workbench/buffer"
	"codebench/internal/workbench/gate"
	"codebench/internal/workbench/judge"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/observer"
	"codebench/internal/workbench/panel"
	"codebench/internal/workbench/problem"
	"codebench/internal/workbench/verdict"
	pkgerrors "codebench/pkg/errors"
	"codebench/pkg/utils/contextkey"
	"codebench/pkg/utils/logger"

	"go.uber.org/zap"
)

// Judge admits judging requests through a gate.
type Judge interface {
	Admit(kind gate.Kind) (*judge.Ticket, error)
	Gate() *gate.Gate
}

// Event describes a completed request and the tab it forced.
type Event struct {
	Kind     gate.Kind
	Language language.Language
	Right    panel.RightTab
	Run      *verdict.RunVerdict
	Submit   *verdict.SubmitVerdict
}

// Options configures a session.
type Options struct {
	Recorder        observer.Recorder
	DefaultLanguage language.Language
	OnComplete      func(Event)
}

// RunRecord is the last run verdict and the language that produced it.
type RunRecord struct {
	Verdict  verdict.RunVerdict
	Language language.Language
}

// SubmitRecord is the last submit verdict and the language that produced it.
type SubmitRecord struct {
	Verdict  verdict.SubmitVerdict
	Language language.Language
}

// Session owns the buffers, panels and last results of one problem view.
// The mutex guards state read by the UI while a request is in flight.
// The judge's gate stays held from admission until the result is recorded.
type Session struct {
	mu          sync.Mutex
	judge       Judge
	recorder    observer.Recorder
	onComplete  func(Event)
	defaultLang language.Language

	problem    *problem.Problem
	templates  map[language.Language]string
	buffers    *buffer.Store
	panel      *panel.Machine
	lastRun    *RunRecord
	lastSubmit *SubmitRecord
	generation uint64
}

// New creates an empty session; Load must be called before Run or Submit.
func New(j Judge, opts Options) *Session {
	if opts.Recorder == nil {
		opts.Recorder = observer.NoopRecorder{}
	}
	if !opts.DefaultLanguage.Valid() {
		opts.DefaultLanguage = language.Default
	}
	return &Session{
		judge:       j,
		recorder:    opts.Recorder,
		onComplete:  opts.OnComplete,
		defaultLang: opts.DefaultLanguage,
		buffers:     buffer.NewStore(),
		panel:       panel.NewMachine(opts.DefaultLanguage),
	}
}

// Load starts a new problem view: buffers are reseeded, tabs reset and results dropped.
// A request still in flight for the previous problem completes but its result is discarded.
func (s *Session) Load(p problem.Problem) {
	s.mu.Lock()
	defer s.mu.Unlock()

	templates := buffer.TemplatesFromStartCode(p.StartCode)
	s.problem = &p
	s.templates = templates
	s.buffers.Initialize(templates)
	s.panel.Reset(s.defaultLang)
	s.lastRun = nil
	s.lastSubmit = nil
	s.generation++
}

// Problem returns the loaded problem, if any.
func (s *Session) Problem() (problem.Problem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.problem == nil {
		return problem.Problem{}, false
	}
	return *s.problem, true
}

// SelectLanguage switches the edited language and returns its buffer for the editing surface.
// Results are kept.
func (s *Session) SelectLanguage(lang language.Language) (string, error) {
	if !lang.Valid() {
		return "", pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language: %q", string(lang))
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SelectLanguage(lang)
	return s.buffers.Text(lang), nil
}

// Edit replaces the buffer of the selected language.
func (s *Session) Edit(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.buffers.SetText(s.panel.Selection().Language, text)
}

// ResetCode restores the selected language's starter template and returns it.
func (s *Session) ResetCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	lang := s.panel.Selection().Language
	s.buffers.SetText(lang, s.templates[lang])
	return s.buffers.Text(lang)
}

// Code returns the selected language and its buffer.
func (s *Session) Code() (language.Language, string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	lang := s.panel.Selection().Language
	return lang, s.buffers.Text(lang)
}

// SelectLeft switches the left tab. It never affects a pending request.
func (s *Session) SelectLeft(tab panel.LeftTab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SelectLeft(tab)
}

// SelectRight switches the right tab. It never affects a pending request.
func (s *Session) SelectRight(tab panel.RightTab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.panel.SelectRight(tab)
}

// Selection returns the current tabs and language.
func (s *Session) Selection() panel.Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.panel.Selection()
}

// Busy reports whether Run and Submit must be disabled.
func (s *Session) Busy() bool {
	return s.judge.Gate().Busy()
}

// State is the current request state.
func (s *Session) State() gate.State {
	return s.judge.Gate().State()
}

// LastRun returns the most recent run result for the loaded problem.
func (s *Session) LastRun() (RunRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastRun == nil {
		return RunRecord{}, false
	}
	return *s.lastRun, true
}

// LastSubmit returns the most recent submit result for the loaded problem.
func (s *Session) LastSubmit() (SubmitRecord, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lastSubmit == nil {
		return SubmitRecord{}, false
	}
	return *s.lastSubmit, true
}

// Pending is an admitted request. It holds the gate until Finish returns.
type Pending struct {
	s      *Session
	ticket *judge.Ticket
	req    request
}

// Begin snapshots the selected buffer and admits a request of kind.
// It fails with NoProblemLoaded or JudgeBusy without touching any state.
func (s *Session) Begin(kind gate.Kind) (*Pending, error) {
	req, err := s.snapshot()
	if err != nil {
		return nil, err
	}
	ticket, err := s.judge.Admit(kind)
	if err != nil {
		return nil, err
	}
	return &Pending{s: s, ticket: ticket, req: req}, nil
}

// Kind is the admitted request kind.
func (p *Pending) Kind() gate.Kind {
	return p.ticket.Kind()
}

// Language is the language of the snapshotted buffer.
func (p *Pending) Language() language.Language {
	return p.req.lang
}

// Finish sends the request, records its result, forces the matching tab and
// notifies the completion handler. The gate is released only after all of that.
func (p *Pending) Finish(ctx context.Context) Event {
	defer p.ticket.Release()
	s := p.s
	req := p.req
	ctx = context.WithValue(ctx, contextkey.ProblemID, req.problemID)

	ev := Event{Kind: p.Kind(), Language: req.lang}
	if ev.Kind == gate.Run {
		outcome, err := p.ticket.Run(ctx, req.problemID, req.lang, req.code)
		if err != nil {
			outcome = judge.RunOutcome{Failure: &judge.Failure{Kind: judge.FailureTransport, Message: err.Error()}}
		}
		v := verdict.InterpretRun(outcome)
		s.recorder.ObserveRun(ctx, req.lang, v.Accepted, len(v.Cases), outcome.Elapsed)
		ev.Run = &v
	} else {
		outcome, err := p.ticket.Submit(ctx, req.problemID, req.lang, req.code)
		if err != nil {
			outcome = judge.SubmitOutcome{Failure: &judge.Failure{Kind: judge.FailureTransport, Message: err.Error()}}
		}
		v := verdict.InterpretSubmit(outcome)
		s.recorder.ObserveSubmit(ctx, req.lang, v.Accepted, outcome.Elapsed)
		ev.Submit = &v
	}

	s.mu.Lock()
	if req.generation != s.generation {
		s.mu.Unlock()
		logger.Info(ctx, "discarding result for previous problem", zap.String("kind", ev.Kind.String()))
		return ev
	}
	if ev.Run != nil {
		s.lastRun = &RunRecord{Verdict: *ev.Run, Language: req.lang}
		s.panel.CompleteRun()
	} else {
		s.lastSubmit = &SubmitRecord{Verdict: *ev.Submit, Language: req.lang}
		s.panel.CompleteSubmit()
	}
	ev.Right = s.panel.Selection().Right
	s.mu.Unlock()

	s.notify(ev)
	return ev
}

// Run sends the selected buffer against the sample tests and waits for the result.
// On completion, success or failure, the run result is replaced and the testcase tab is forced.
func (s *Session) Run(ctx context.Context) (verdict.RunVerdict, error) {
	p, err := s.Begin(gate.Run)
	if err != nil {
		return verdict.RunVerdict{}, err
	}
	return *p.Finish(ctx).Run, nil
}

// Submit sends the selected buffer for full grading and waits for the result.
// On completion, success or failure, the submit result is replaced and the result tab is forced.
func (s *Session) Submit(ctx context.Context) (verdict.SubmitVerdict, error) {
	p, err := s.Begin(gate.Submit)
	if err != nil {
		return verdict.SubmitVerdict{}, err
	}
	return *p.Finish(ctx).Submit, nil
}

type request struct {
	problemID  string
	lang       language.Language
	code       string
	generation uint64
}

func (s *Session) snapshot() (request, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.problem == nil {
		return request{}, pkgerrors.New(pkgerrors.NoProblemLoaded)
	}
	lang := s.panel.Selection().Language
	return request{
		problemID:  s.problem.ID,
		lang:       lang,
		code:       s.buffers.Text(lang),
		generation: s.generation,
	}, nil
}

func (s *Session) notify(ev Event) {
	if s.onComplete == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error(context.Background(), "completion handler panicked", zap.Any("panic", r))
		}
	}()
	s.onComplete(ev)
}
