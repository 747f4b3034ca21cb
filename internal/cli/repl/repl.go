package repl

import (
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"codebench/internal/cli/command"
	"codebench/internal/cli/editor"
	httpclient "codebench/internal/cli/http"
	"codebench/internal/cli/render"
	"codebench/internal/cli/state"
	"codebench/internal/workbench/gate"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/observer"
	"codebench/internal/workbench/panel"
	"codebench/internal/workbench/problem"
	"codebench/internal/workbench/session"
	pkgerrors "codebench/pkg/errors"
	"codebench/pkg/utils/contextkey"
	"codebench/pkg/utils/logger"

	"github.com/chzyer/readline"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var errExit = stderrors.New("exit")

// ProblemLoader fetches problems for the load command.
type ProblemLoader interface {
	Load(ctx context.Context, id string) (problem.Problem, error)
}

// Options wires the REPL to its collaborators.
type Options struct {
	Client          *httpclient.Client
	Judge           session.Judge
	Loader          ProblemLoader
	Editor          *editor.Editor
	Recorder        observer.Recorder
	DefaultLanguage language.Language
	State           *state.ClientState
	StatePath       string
	HistoryPath     string
}

// REPL drives one workbench session from a terminal.
type REPL struct {
	client    *httpclient.Client
	loader    ProblemLoader
	editor    *editor.Editor
	session   *session.Session
	commands  map[string]command.Command
	state     *state.ClientState
	statePath string
	history   string

	outMu    sync.Mutex
	out      io.Writer
	prompter func(prompt string) (string, error)
	rl       *readline.Instance
	inflight sync.WaitGroup
}

func New(opts Options) *REPL {
	if opts.State == nil {
		opts.State = &state.ClientState{}
	}
	r := &REPL{
		client:    opts.Client,
		loader:    opts.Loader,
		editor:    opts.Editor,
		commands:  command.Registry(),
		state:     opts.State,
		statePath: opts.StatePath,
		history:   opts.HistoryPath,
		out:       os.Stdout,
	}
	if r.editor == nil {
		r.editor = editor.New("")
	}
	r.session = session.New(opts.Judge, session.Options{
		Recorder:        opts.Recorder,
		DefaultLanguage: opts.DefaultLanguage,
		OnComplete:      r.onComplete,
	})
	return r
}

// Session exposes the underlying workbench session.
func (r *REPL) Session() *session.Session {
	return r.session
}

// SetOutput redirects output and prompting, mainly for tests.
func (r *REPL) SetOutput(out io.Writer, prompter func(prompt string) (string, error)) {
	r.outMu.Lock()
	r.out = out
	r.outMu.Unlock()
	r.prompter = prompter
}

// Run reads commands until exit or end of input.
func (r *REPL) Run(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          r.prompt(),
		HistoryFile:     r.history,
		AutoComplete:    completer(r.commands),
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return fmt.Errorf("init readline failed: %w", err)
	}
	defer func() { _ = rl.Close() }()
	r.rl = rl
	r.SetOutput(rl.Stdout(), func(prompt string) (string, error) {
		rl.SetPrompt(prompt + ": ")
		return rl.Readline()
	})

	if r.state.LastProblemID != "" {
		r.printLine("last problem: %s (type \"load %s\" to reopen)", r.state.LastProblemID, r.state.LastProblemID)
	}
	for {
		rl.SetPrompt(r.prompt())
		line, err := rl.Readline()
		if stderrors.Is(err, readline.ErrInterrupt) {
			continue
		}
		if stderrors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if err := r.Execute(ctx, line); err != nil {
			if stderrors.Is(err, errExit) {
				break
			}
			r.printError(err)
		}
	}
	r.Wait()
	r.printLine("bye")
	return nil
}

// Execute runs one command line.
func (r *REPL) Execute(ctx context.Context, line string) error {
	inv, err := command.Parse(r.commands, line)
	if err != nil {
		return err
	}
	if err := r.promptMissing(inv); err != nil {
		return err
	}
	ctx = context.WithValue(ctx, contextkey.TraceID, uuid.NewString())

	switch inv.Command.Name {
	case command.Load:
		return r.handleLoad(ctx, inv.Arg("id"))
	case command.Lang:
		return r.handleLang(inv.Arg("language"))
	case command.Code:
		return r.handleCode(ctx, strings.ToLower(inv.Arg("action")), inv.Arg("path"))
	case command.Tab:
		return r.handleTab(strings.ToLower(inv.Arg("side")), inv.Arg("name"))
	case command.Run:
		return r.dispatch(gate.Run)
	case command.Submit:
		return r.dispatch(gate.Submit)
	case command.Wait:
		r.Wait()
		r.printLine("judge idle")
		return nil
	case command.Status:
		r.printStatus()
		return nil
	case command.Show:
		return r.handleShow(strings.ToLower(inv.Arg("tab")))
	case command.Set:
		return r.handleSet(strings.ToLower(inv.Arg("key")), inv.Arg("value"))
	case command.Help:
		r.printHelp()
		return nil
	case command.Exit:
		return errExit
	}
	return pkgerrors.Newf(pkgerrors.UnknownCommand, "unknown command: %s", inv.Command.Name)
}

// Wait blocks until every dispatched request has completed.
func (r *REPL) Wait() {
	r.inflight.Wait()
}

func (r *REPL) promptMissing(inv command.Invocation) error {
	for _, field := range inv.Missing() {
		if r.prompter == nil {
			return pkgerrors.Newf(pkgerrors.RequiredFieldEmpty, "%s is required, usage: %s", field.Name, inv.Command.Usage())
		}
		value, err := r.prompter(field.Prompt)
		if err != nil {
			return fmt.Errorf("read input failed: %w", err)
		}
		if err := inv.Fill(field, value); err != nil {
			return err
		}
	}
	return nil
}

func (r *REPL) handleLoad(ctx context.Context, id string) error {
	ctx = context.WithValue(ctx, contextkey.ProblemID, id)
	p, err := r.loader.Load(ctx, id)
	if err != nil {
		return err
	}
	r.session.Load(p)
	if r.session.Busy() {
		r.printLine("a request for the previous problem is still pending; its result will be discarded")
	}
	if lang, err := language.Parse(r.state.LastLanguage); err == nil {
		_, _ = r.session.SelectLanguage(lang)
	}
	r.state.LastProblemID = p.ID
	r.saveState()
	logger.Info(ctx, "problem loaded", zap.String("title", p.Title), zap.Int("templates", len(p.StartCode)))

	r.printStatus()
	lang, text := r.session.Code()
	r.withOutput(func(w io.Writer) { render.WriteCode(w, lang, text) })
	return nil
}

func (r *REPL) handleLang(raw string) error {
	lang, err := language.Parse(raw)
	if err != nil {
		return err
	}
	text, err := r.session.SelectLanguage(lang)
	if err != nil {
		return err
	}
	r.state.LastLanguage = lang.Wire()
	r.saveState()
	r.withOutput(func(w io.Writer) { render.WriteCode(w, lang, text) })
	return nil
}

func (r *REPL) handleCode(ctx context.Context, action, path string) error {
	if _, ok := r.session.Problem(); !ok {
		return pkgerrors.New(pkgerrors.NoProblemLoaded)
	}
	lang, text := r.session.Code()
	switch action {
	case "", "show":
	case "edit":
		edited, err := r.editor.Edit(ctx, lang, text)
		if err != nil {
			return err
		}
		r.session.Edit(edited)
		text = edited
	case "file":
		if path == "" {
			return pkgerrors.Newf(pkgerrors.RequiredFieldEmpty, "usage: code file <path>")
		}
		loaded, err := editor.ReadFile(path)
		if err != nil {
			return err
		}
		if sniffed, ok := editor.SniffLanguage(path); ok && sniffed != lang {
			r.printLine("note: %s looks like %s but the %s buffer was replaced", path, sniffed.DisplayName(), lang.DisplayName())
		}
		r.session.Edit(loaded)
		text = loaded
	case "reset":
		text = r.session.ResetCode()
	}
	r.withOutput(func(w io.Writer) { render.WriteCode(w, lang, text) })
	return nil
}

func (r *REPL) handleTab(side, name string) error {
	if side == "left" {
		tab, err := panel.ParseLeft(name)
		if err != nil {
			return err
		}
		r.session.SelectLeft(tab)
		r.printLine("left tab: %s", tab)
		return nil
	}
	tab, err := panel.ParseRight(name)
	if err != nil {
		return err
	}
	r.session.SelectRight(tab)
	return r.renderRight(tab)
}

func (r *REPL) handleShow(name string) error {
	tab := r.session.Selection().Right
	if name != "" {
		parsed, err := panel.ParseRight(name)
		if err != nil {
			return err
		}
		tab = parsed
		r.session.SelectRight(tab)
	}
	return r.renderRight(tab)
}

func (r *REPL) renderRight(tab panel.RightTab) error {
	switch tab {
	case panel.Code:
		lang, text := r.session.Code()
		r.withOutput(func(w io.Writer) { render.WriteCode(w, lang, text) })
	case panel.Testcase:
		rec, ok := r.session.LastRun()
		if !ok {
			return pkgerrors.New(pkgerrors.NoResultYet).WithMessage("No run result yet.")
		}
		r.withOutput(func(w io.Writer) { render.WriteRun(w, rec.Language, rec.Verdict) })
	case panel.Result:
		rec, ok := r.session.LastSubmit()
		if !ok {
			return pkgerrors.New(pkgerrors.NoResultYet).WithMessage("No submission result yet.")
		}
		r.withOutput(func(w io.Writer) { render.WriteSubmit(w, rec.Language, rec.Verdict) })
	}
	return nil
}

// dispatch admits a judging request synchronously, so a refusal is reported
// before the next prompt, then sends it on its own goroutine.
func (r *REPL) dispatch(kind gate.Kind) error {
	pending, err := r.session.Begin(kind)
	if err != nil {
		return err
	}

	lang := pending.Language()
	if kind == gate.Run {
		r.printLine("running %s against sample tests...", lang.DisplayName())
	} else {
		r.printLine("submitting %s...", lang.DisplayName())
	}

	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		ctx := context.WithValue(context.Background(), contextkey.TraceID, uuid.NewString())
		pending.Finish(ctx)
		r.refreshPrompt()
	}()
	return nil
}

func (r *REPL) onComplete(ev session.Event) {
	r.withOutput(func(w io.Writer) {
		fmt.Fprintf(w, "\n[%s tab]\n", ev.Right)
		switch {
		case ev.Run != nil:
			render.WriteRun(w, ev.Language, *ev.Run)
		case ev.Submit != nil:
			render.WriteSubmit(w, ev.Language, *ev.Submit)
		}
	})
}

func (r *REPL) handleSet(key, value string) error {
	switch key {
	case "base":
		r.client.SetBaseURL(value)
		r.printLine("base set to %s", value)
	case "timeout":
		dur, err := time.ParseDuration(value)
		if err != nil || dur <= 0 {
			return pkgerrors.Newf(pkgerrors.InvalidValue, "invalid duration: %s", value)
		}
		r.client.SetTimeout(dur)
		r.printLine("timeout set to %s", dur)
	case "token":
		if value == "-" {
			value = ""
		}
		r.state.AccessToken = value
		r.saveState()
		r.printLine("token updated")
	}
	return nil
}

func (r *REPL) saveState() {
	if r.statePath == "" {
		return
	}
	if err := state.Save(r.statePath, *r.state); err != nil {
		r.printLine("save state failed: %v", err)
	}
}

func (r *REPL) printStatus() {
	st := render.Status{
		Selection: r.session.Selection(),
		State:     r.session.State(),
	}
	if r.client != nil {
		st.BaseURL = r.client.BaseURL()
	}
	if p, ok := r.session.Problem(); ok {
		st.ProblemID = p.ID
		st.ProblemTitle = p.Title
	}
	r.withOutput(func(w io.Writer) { render.WriteStatus(w, st) })
}

func (r *REPL) printHelp() {
	r.withOutput(func(w io.Writer) {
		for _, cmd := range command.Sorted(r.commands) {
			fmt.Fprintf(w, "  %-36s %s\n", cmd.Usage(), cmd.Summary)
		}
		fmt.Fprintf(w, "  %-36s %s\n", "", "left tabs: description, editorial, solutions, submissions")
	})
}

func (r *REPL) prompt() string {
	p, ok := r.session.Problem()
	if !ok {
		return "codebench> "
	}
	lang, _ := r.session.Code()
	switch r.session.State() {
	case gate.RunPending:
		return fmt.Sprintf("codebench[%s %s running]> ", p.ID, lang)
	case gate.SubmitPending:
		return fmt.Sprintf("codebench[%s %s submitting]> ", p.ID, lang)
	}
	return fmt.Sprintf("codebench[%s %s]> ", p.ID, lang)
}

func (r *REPL) refreshPrompt() {
	if r.rl == nil {
		return
	}
	r.rl.SetPrompt(r.prompt())
	r.rl.Refresh()
}

func (r *REPL) printError(err error) {
	if code := pkgerrors.GetCode(err); code == pkgerrors.InternalServerError {
		logger.Error(context.Background(), "command failed", zap.Error(err))
	}
	r.printLine("error: %v", err)
}

func (r *REPL) printLine(format string, args ...interface{}) {
	r.withOutput(func(w io.Writer) {
		_, _ = fmt.Fprintf(w, format+"\n", args...)
	})
}

func (r *REPL) withOutput(fn func(w io.Writer)) {
	r.outMu.Lock()
	defer r.outMu.Unlock()
	fn(r.out)
}

func completer(commands map[string]command.Command) *readline.PrefixCompleter {
	items := make([]readline.PrefixCompleterInterface, 0, len(commands))
	for _, cmd := range command.Sorted(commands) {
		var children []readline.PrefixCompleterInterface
		if len(cmd.Fields) > 0 {
			for _, choice := range cmd.Fields[0].Choices {
				children = append(children, readline.PcItem(choice))
			}
		}
		if cmd.Name == command.Lang {
			for _, lang := range language.All() {
				children = append(children, readline.PcItem(lang.Wire()))
			}
		}
		items = append(items, readline.PcItem(cmd.Name, children...))
	}
	return readline.NewPrefixCompleter(items...)
}
