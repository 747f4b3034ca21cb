package command

import (
	"sort"
	"strings"

	pkgerrors "codebench/pkg/errors"

	"github.com/google/shlex"
)

const (
	Load   = "load"
	Lang   = "lang"
	Code   = "code"
	Tab    = "tab"
	Run    = "run"
	Submit = "submit"
	Wait   = "wait"
	Status = "status"
	Show   = "show"
	Set    = "set"
	Help   = "help"
	Exit   = "exit"
)

// Registry returns all REPL commands keyed by name and alias.
func Registry() map[string]Command {
	commands := []Command{
		{
			Name:    Load,
			Summary: "load a problem and reset buffers, tabs and results",
			Fields: []Field{
				{Name: "id", Prompt: "problem id", Required: true},
			},
		},
		{
			Name:    Lang,
			Aliases: []string{"language"},
			Summary: "switch the edited language",
			Fields: []Field{
				{Name: "language", Prompt: "language (cpp, java, javascript)", Required: true},
			},
		},
		{
			Name:    Code,
			Summary: "show, edit, load from file or reset the current buffer",
			Fields: []Field{
				{Name: "action", Choices: []string{"show", "edit", "file", "reset"}},
				{Name: "path", Prompt: "file path"},
			},
		},
		{
			Name:    Tab,
			Summary: "select a left or right panel tab",
			Fields: []Field{
				{Name: "side", Prompt: "side (left, right)", Required: true, Choices: []string{"left", "right"}},
				{Name: "name", Prompt: "tab name", Required: true},
			},
		},
		{
			Name:    Run,
			Summary: "run the current buffer against the sample tests",
			Async:   true,
		},
		{
			Name:    Submit,
			Summary: "submit the current buffer for full grading",
			Async:   true,
		},
		{
			Name:    Wait,
			Summary: "block until the pending request completes",
		},
		{
			Name:    Status,
			Summary: "show problem, language, tabs and request state",
		},
		{
			Name:    Show,
			Summary: "render a right-panel tab",
			Fields: []Field{
				{Name: "tab", Choices: []string{"code", "testcase", "result"}},
			},
		},
		{
			Name:    Set,
			Summary: "change the judge base URL, timeout or access token",
			Fields: []Field{
				{Name: "key", Prompt: "setting (base, timeout, token)", Required: true, Choices: []string{"base", "timeout", "token"}},
				{Name: "value", Prompt: "value", Required: true},
			},
		},
		{
			Name:    Help,
			Summary: "list commands",
		},
		{
			Name:    Exit,
			Aliases: []string{"quit"},
			Summary: "leave the workbench",
		},
	}

	registry := make(map[string]Command, len(commands)*2)
	for _, cmd := range commands {
		registry[cmd.Name] = cmd
		for _, alias := range cmd.Aliases {
			registry[alias] = cmd
		}
	}
	return registry
}

// Sorted returns each command once, ordered by name.
func Sorted(registry map[string]Command) []Command {
	seen := make(map[string]bool, len(registry))
	out := make([]Command, 0, len(registry))
	for _, cmd := range registry {
		if seen[cmd.Name] {
			continue
		}
		seen[cmd.Name] = true
		out = append(out, cmd)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Parse tokenises line and binds positional arguments to the command's fields.
// Required fields left empty are reported by Invocation.Missing for prompting.
func Parse(registry map[string]Command, line string) (Invocation, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "parse command failed: %v", err)
	}
	if len(tokens) == 0 {
		return Invocation{}, pkgerrors.BadRequest("empty command")
	}
	name := strings.ToLower(tokens[0])
	cmd, ok := registry[name]
	if !ok {
		return Invocation{}, pkgerrors.Newf(pkgerrors.UnknownCommand, "unknown command: %s", tokens[0])
	}

	args := tokens[1:]
	if len(args) > len(cmd.Fields) {
		return Invocation{}, pkgerrors.Newf(pkgerrors.InvalidParams, "too many arguments, usage: %s", cmd.Usage())
	}
	params := Params{}
	for i, value := range args {
		field := cmd.Fields[i]
		if err := checkChoice(field, value); err != nil {
			return Invocation{}, err
		}
		params.Set(field.Name, value)
	}
	return Invocation{Command: cmd, Params: params}, nil
}

// Fill validates and stores a prompted value for field.
func (inv Invocation) Fill(field Field, value string) error {
	value = strings.TrimSpace(value)
	if value == "" && field.Required {
		return pkgerrors.Newf(pkgerrors.RequiredFieldEmpty, "%s is required", field.Name)
	}
	if err := checkChoice(field, value); err != nil {
		return err
	}
	inv.Params.Set(field.Name, value)
	return nil
}

func checkChoice(field Field, value string) error {
	if len(field.Choices) == 0 {
		return nil
	}
	for _, choice := range field.Choices {
		if strings.EqualFold(choice, value) {
			return nil
		}
	}
	return pkgerrors.Newf(pkgerrors.InvalidValue, "invalid %s %q, want one of %s", field.Name, value, strings.Join(field.Choices, ", "))
}
