// Package judge sends Run and Submit requests to the remote judge service.
package judge

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	httpclient "codebench/internal/cli/http"
	"codebench/internal/workbench/gate"
	"codebench/internal/workbench/language"
	pkgerrors "codebench/pkg/errors"
	"codebench/pkg/utils/logger"

	"go.uber.org/zap"
)

const (
	DefaultRunPath    = "/submission/run/:id"
	DefaultSubmitPath = "/submission/submit/:id"
)

// Doer performs one HTTP exchange.
type Doer interface {
	Do(ctx context.Context, method, path string, headers map[string]string, body []byte) (httpclient.ResponseInfo, error)
}

// Endpoints holds path templates; ":id" is replaced by the problem id.
type Endpoints struct {
	Run    string
	Submit string
}

// Client dispatches judging requests through a shared gate.
type Client struct {
	doer      Doer
	gate      *gate.Gate
	endpoints Endpoints
}

// NewClient creates a judge client. A nil gate gets a private one.
func NewClient(doer Doer, g *gate.Gate, endpoints Endpoints) *Client {
	if g == nil {
		g = &gate.Gate{}
	}
	if endpoints.Run == "" {
		endpoints.Run = DefaultRunPath
	}
	if endpoints.Submit == "" {
		endpoints.Submit = DefaultSubmitPath
	}
	return &Client{doer: doer, gate: g, endpoints: endpoints}
}

// Gate exposes the request gate so callers can disable controls while busy.
func (c *Client) Gate() *gate.Gate {
	return c.gate
}

// Ticket is an admitted judging request. It holds the gate until Release.
type Ticket struct {
	client   *Client
	kind     gate.Kind
	released atomic.Bool
}

// Admit reserves the gate for one request of kind, or fails with JudgeBusy.
// Callers must Release the ticket once the outcome has been handled.
func (c *Client) Admit(kind gate.Kind) (*Ticket, error) {
	if !c.gate.TryAcquire(kind) {
		return nil, busyError(c.gate.State())
	}
	return &Ticket{client: c, kind: kind}, nil
}

// Kind reports the request kind the ticket was admitted for.
func (t *Ticket) Kind() gate.Kind {
	return t.kind
}

// Release frees the gate. Calls after the first are no-ops.
func (t *Ticket) Release() {
	if t.released.CompareAndSwap(false, true) {
		t.client.gate.Release()
	}
}

// Run executes code against the problem's sample test cases.
// The returned error is non-nil only when the request was refused before dispatch.
func (c *Client) Run(ctx context.Context, problemID string, lang language.Language, code string) (RunOutcome, error) {
	if err := validate(problemID, lang); err != nil {
		return RunOutcome{}, err
	}
	ticket, err := c.Admit(gate.Run)
	if err != nil {
		return RunOutcome{}, err
	}
	defer ticket.Release()
	return ticket.Run(ctx, problemID, lang, code)
}

// Submit grades code against the problem's full test set.
// The returned error is non-nil only when the request was refused before dispatch.
func (c *Client) Submit(ctx context.Context, problemID string, lang language.Language, code string) (SubmitOutcome, error) {
	if err := validate(problemID, lang); err != nil {
		return SubmitOutcome{}, err
	}
	ticket, err := c.Admit(gate.Submit)
	if err != nil {
		return SubmitOutcome{}, err
	}
	defer ticket.Release()
	return ticket.Submit(ctx, problemID, lang, code)
}

// Run sends a run request under the ticket. The gate stays held.
func (t *Ticket) Run(ctx context.Context, problemID string, lang language.Language, code string) (RunOutcome, error) {
	if err := t.check(gate.Run, problemID, lang); err != nil {
		return RunOutcome{}, err
	}
	start := time.Now()
	body, failure := t.client.dispatch(ctx, t.client.endpoints.Run, problemID, lang, code)
	outcome := RunOutcome{Failure: failure}
	if failure == nil {
		cases, err := decodeRun(body)
		if err != nil {
			outcome.Failure = &Failure{Kind: FailureMalformed, Message: "The judge returned an unreadable run result."}
			logger.Warn(ctx, "malformed run response", zap.String("problem_id", problemID), zap.Error(err))
		} else {
			outcome.Cases = cases
		}
	}
	outcome.Elapsed = time.Since(start)
	return outcome, nil
}

// Submit sends a submit request under the ticket. The gate stays held.
func (t *Ticket) Submit(ctx context.Context, problemID string, lang language.Language, code string) (SubmitOutcome, error) {
	if err := t.check(gate.Submit, problemID, lang); err != nil {
		return SubmitOutcome{}, err
	}
	start := time.Now()
	body, failure := t.client.dispatch(ctx, t.client.endpoints.Submit, problemID, lang, code)
	outcome := SubmitOutcome{Failure: failure}
	if failure == nil {
		result, err := decodeSubmit(body)
		if err != nil {
			outcome.Failure = &Failure{Kind: FailureMalformed, Message: "The judge returned an unreadable submission result."}
			logger.Warn(ctx, "malformed submit response", zap.String("problem_id", problemID), zap.Error(err))
		} else {
			outcome.Result = result
		}
	}
	outcome.Elapsed = time.Since(start)
	return outcome, nil
}

func (t *Ticket) check(kind gate.Kind, problemID string, lang language.Language) error {
	if t.kind != kind {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "ticket admitted for %s, not %s", t.kind, kind)
	}
	if t.released.Load() {
		return pkgerrors.Newf(pkgerrors.InvalidParams, "%s ticket already released", t.kind)
	}
	return validate(problemID, lang)
}

func (c *Client) dispatch(ctx context.Context, template, problemID string, lang language.Language, code string) ([]byte, *Failure) {
	path, err := httpclient.BuildPath(template, map[string]string{"id": problemID})
	if err != nil {
		return nil, &Failure{Kind: FailureTransport, Message: fmt.Sprintf("Invalid judge endpoint: %v", err)}
	}
	body, err := json.Marshal(Payload{Code: code, Language: lang.Wire()})
	if err != nil {
		return nil, &Failure{Kind: FailureTransport, Message: fmt.Sprintf("Could not encode request: %v", err)}
	}

	resp, err := c.doer.Do(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		logger.Warn(ctx, "judge request failed",
			zap.String("path", path),
			zap.String("request_id", resp.RequestID),
			zap.Error(err),
		)
		return nil, &Failure{Kind: FailureTransport, Message: pkgerrors.JudgeTransportError.Message() + "."}
	}
	logger.Info(ctx, "judge response",
		zap.String("path", path),
		zap.String("language", lang.Wire()),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", resp.Duration),
		zap.String("request_id", resp.RequestID),
	)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg := errorMessage(resp.Body)
		if msg == "" {
			msg = fmt.Sprintf("The judge service responded with HTTP %d.", resp.StatusCode)
		}
		return nil, &Failure{Kind: FailureServer, Message: msg, StatusCode: resp.StatusCode}
	}
	return resp.Body, nil
}

func validate(problemID string, lang language.Language) error {
	if problemID == "" {
		return pkgerrors.New(pkgerrors.NoProblemLoaded)
	}
	if !lang.Valid() {
		return pkgerrors.Newf(pkgerrors.LanguageNotSupported, "unsupported language: %q", string(lang))
	}
	return nil
}

func busyError(state gate.State) error {
	return pkgerrors.New(pkgerrors.JudgeBusy).WithDetail("state", state.String())
}
