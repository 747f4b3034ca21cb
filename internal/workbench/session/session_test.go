package session_test

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	httpclient "codebench/internal/cli/http"
	"codebench/internal/testutil"
	"codebench/internal/workbench/buffer"
	"codebench/internal/workbench/gate"
	"codebench/internal/workbench/judge"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/panel"
	"codebench/internal/workbench/problem"
	"codebench/internal/workbench/session"
	"codebench/internal/workbench/verdict"
	pkgerrors "codebench/pkg/errors"
)

const (
	runAllPassed = `[{"stdin":"1","expected_output":"1","stdout":"1","status_id":3}]`
	submitOK     = `{"status":true,"testCasesPassed":10,"testCasesTotal":10,"runtime":0.12,"memory":2048}`
)

type scriptedDoer struct {
	mu      sync.Mutex
	bodies  map[string]string
	status  int
	block   chan struct{}
	entered chan struct{}
	sent    []judge.Payload
}

func (d *scriptedDoer) Do(ctx context.Context, method, path string, headers map[string]string, body []byte) (httpclient.ResponseInfo, error) {
	if d.entered != nil {
		d.entered <- struct{}{}
	}
	if d.block != nil {
		<-d.block
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	var payload judge.Payload
	_ = json.Unmarshal(body, &payload)
	d.sent = append(d.sent, payload)

	status := d.status
	if status == 0 {
		status = http.StatusOK
	}
	for prefix, resp := range d.bodies {
		if strings.HasPrefix(path, prefix) {
			return httpclient.ResponseInfo{StatusCode: status, Body: []byte(resp)}, nil
		}
	}
	return httpclient.ResponseInfo{StatusCode: http.StatusNotFound}, nil
}

func newSession(doer *scriptedDoer, opts session.Options) *session.Session {
	client := judge.NewClient(doer, nil, judge.Endpoints{})
	s := session.New(client, opts)
	s.Load(problem.Problem{
		ID: "two-sum",
		StartCode: []buffer.StartCode{
			{Language: "cpp", InitialCode: "// cpp"},
			{Language: "java", InitialCode: "// java"},
		},
	})
	return s
}

func TestLanguageSwitchPreservesBuffers(t *testing.T) {
	s := newSession(&scriptedDoer{}, session.Options{})

	s.Edit("int main() { return 0; }")
	text, err := s.SelectLanguage(language.Java)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, text, "// java")

	text, err = s.SelectLanguage(language.JavaScript)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, text, "")

	text, err = s.SelectLanguage(language.CPP)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, text, "int main() { return 0; }")

	testutil.AssertEqual(t, s.ResetCode(), "// cpp")

	_, err = s.SelectLanguage(language.Language("cobol"))
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.LanguageNotSupported), "cobol is rejected")
	lang, _ := s.Code()
	testutil.AssertEqual(t, lang, language.CPP)
}

func TestRunForcesTestcaseTab(t *testing.T) {
	doer := &scriptedDoer{bodies: map[string]string{"/submission/run/": runAllPassed}}
	var events []session.Event
	s := newSession(doer, session.Options{OnComplete: func(ev session.Event) { events = append(events, ev) }})
	s.SelectLeft(panel.Editorial)
	s.SelectRight(panel.Result)
	s.Edit("solution")

	v, err := s.Run(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, v.Accepted, "run accepted")

	sel := s.Selection()
	testutil.AssertEqual(t, sel.Right, panel.Testcase)
	testutil.AssertEqual(t, sel.Left, panel.Editorial)
	testutil.AssertEqual(t, len(events), 1)
	testutil.AssertEqual(t, events[0].Kind, gate.Run)
	testutil.AssertEqual(t, doer.sent[0].Code, "solution")
	testutil.AssertEqual(t, doer.sent[0].Language, "cpp")
}

func TestSubmitForcesResultTabEvenOnFailure(t *testing.T) {
	doer := &scriptedDoer{status: http.StatusInternalServerError, bodies: map[string]string{"/submission/submit/": `{"error":"judge exploded"}`}}
	s := newSession(doer, session.Options{})

	v, err := s.Submit(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v.Summary, verdict.SummaryFailed)
	testutil.AssertEqual(t, v.Message, "judge exploded")
	testutil.AssertEqual(t, s.Selection().Right, panel.Result)
	testutil.AssertFalse(t, s.Busy(), "gate released after failure")
}

func TestResultsSurviveLanguageChange(t *testing.T) {
	doer := &scriptedDoer{bodies: map[string]string{
		"/submission/run/":    runAllPassed,
		"/submission/submit/": submitOK,
	}}
	s := newSession(doer, session.Options{})
	_, err := s.Run(context.Background())
	testutil.AssertNoError(t, err)
	_, err = s.Submit(context.Background())
	testutil.AssertNoError(t, err)

	_, err = s.SelectLanguage(language.Java)
	testutil.AssertNoError(t, err)

	run, ok := s.LastRun()
	testutil.AssertTrue(t, ok, "run result kept")
	testutil.AssertEqual(t, run.Language, language.CPP)
	sub, ok := s.LastSubmit()
	testutil.AssertTrue(t, ok, "submit result kept")
	testutil.AssertTrue(t, sub.Verdict.Accepted, "submit accepted")
}

func TestBusyRefusalLeavesStateUntouched(t *testing.T) {
	doer := &scriptedDoer{
		bodies:  map[string]string{"/submission/run/": runAllPassed},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := newSession(doer, session.Options{})
	s.SelectRight(panel.Code)

	done := make(chan error, 1)
	go func() {
		_, err := s.Run(context.Background())
		done <- err
	}()
	<-doer.entered
	testutil.AssertTrue(t, s.Busy(), "busy while run pending")
	testutil.AssertEqual(t, s.State(), gate.RunPending)

	_, err := s.Submit(context.Background())
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.JudgeBusy), "submit refused while run pending")
	testutil.AssertEqual(t, s.Selection().Right, panel.Code)
	_, ok := s.LastSubmit()
	testutil.AssertFalse(t, ok, "no submit result recorded")

	close(doer.block)
	select {
	case err := <-done:
		testutil.AssertNoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("run did not complete")
	}
	testutil.AssertFalse(t, s.Busy(), "idle after run")
	testutil.AssertEqual(t, s.Selection().Right, panel.Testcase)
}

func TestReloadDiscardsInFlightResult(t *testing.T) {
	doer := &scriptedDoer{
		bodies:  map[string]string{"/submission/run/": runAllPassed},
		block:   make(chan struct{}),
		entered: make(chan struct{}, 1),
	}
	s := newSession(doer, session.Options{})

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, _ = s.Run(context.Background())
	}()
	<-doer.entered
	s.Load(problem.Problem{ID: "three-sum"})
	close(doer.block)
	<-done

	_, ok := s.LastRun()
	testutil.AssertFalse(t, ok, "result for previous problem discarded")
	testutil.AssertEqual(t, s.Selection().Right, panel.Code)
}

type gateCheckingRecorder struct {
	s          *session.Session
	busy       bool
	recorded   bool
	submitErr  error
	submitSeen bool
}

func (r *gateCheckingRecorder) ObserveRun(ctx context.Context, lang language.Language, accepted bool, cases int, elapsed time.Duration) {
	r.busy = r.s.Busy()
	_, r.recorded = r.s.LastRun()
	_, r.submitErr = r.s.Begin(gate.Submit)
}

func (r *gateCheckingRecorder) ObserveSubmit(ctx context.Context, lang language.Language, accepted bool, elapsed time.Duration) {
	r.submitSeen = true
}

func TestGateHeldUntilResultRecorded(t *testing.T) {
	doer := &scriptedDoer{bodies: map[string]string{
		"/submission/run/":    runAllPassed,
		"/submission/submit/": submitOK,
	}}
	rec := &gateCheckingRecorder{}
	var busyInHandler bool
	var s *session.Session
	s = newSession(doer, session.Options{
		Recorder:   rec,
		OnComplete: func(session.Event) { busyInHandler = s.Busy() },
	})
	rec.s = s

	_, err := s.Run(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertTrue(t, rec.busy, "gate held while the run result is interpreted")
	testutil.AssertFalse(t, rec.recorded, "recorder runs before the result is stored")
	testutil.AssertTrue(t, pkgerrors.Is(rec.submitErr, pkgerrors.JudgeBusy), "submit refused until run is recorded")
	testutil.AssertFalse(t, rec.submitSeen, "refused submit was never sent")
	testutil.AssertTrue(t, busyInHandler, "gate held while completion is delivered")
	testutil.AssertFalse(t, s.Busy(), "gate released after run finished")
	testutil.AssertEqual(t, len(doer.sent), 1)
}

func TestRunThenSubmitEndsOnResultTab(t *testing.T) {
	doer := &scriptedDoer{bodies: map[string]string{
		"/submission/run/":    runAllPassed,
		"/submission/submit/": submitOK,
	}}
	var tabs []panel.RightTab
	s := newSession(doer, session.Options{OnComplete: func(ev session.Event) { tabs = append(tabs, ev.Right) }})

	run, err := s.Begin(gate.Run)
	testutil.AssertNoError(t, err)
	_, err = s.Begin(gate.Submit)
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.JudgeBusy), "submit refused while run admitted")
	run.Finish(context.Background())

	sub, err := s.Begin(gate.Submit)
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, sub.Kind(), gate.Submit)
	sub.Finish(context.Background())

	testutil.AssertEqual(t, tabs, []panel.RightTab{panel.Testcase, panel.Result})
	testutil.AssertEqual(t, s.Selection().Right, panel.Result)
}

func TestRunWithoutProblem(t *testing.T) {
	client := judge.NewClient(&scriptedDoer{}, nil, judge.Endpoints{})
	s := session.New(client, session.Options{})
	_, err := s.Run(context.Background())
	testutil.AssertTrue(t, pkgerrors.Is(err, pkgerrors.NoProblemLoaded), "run needs a problem")
}
