// Package editor moves buffer text in and out of an external editor or a file.
package editor

import (
	"context"
	"os"
	"os/exec"
	"strings"

	"codebench/internal/workbench/language"
	pkgerrors "codebench/pkg/errors"

	"github.com/google/shlex"
)

const maxFileSize = 1 << 20

// Editor opens buffers in an external command such as "vim" or "code --wait".
type Editor struct {
	command string
	stdin   *os.File
	stdout  *os.File
	stderr  *os.File
}

// New returns an editor for command. An empty command falls back to $VISUAL, $EDITOR, then vi.
func New(command string) *Editor {
	if command == "" {
		command = os.Getenv("VISUAL")
	}
	if command == "" {
		command = os.Getenv("EDITOR")
	}
	if command == "" {
		command = "vi"
	}
	return &Editor{command: command, stdin: os.Stdin, stdout: os.Stdout, stderr: os.Stderr}
}

func (e *Editor) Command() string {
	return e.command
}

// Edit writes text to a temp file named for lang, runs the editor on it and returns the saved text.
func (e *Editor) Edit(ctx context.Context, lang language.Language, text string) (string, error) {
	args, err := shlex.Split(e.command)
	if err != nil || len(args) == 0 {
		return "", pkgerrors.Newf(pkgerrors.EditorFailed, "invalid editor command %q", e.command)
	}

	f, err := os.CreateTemp("", "codebench-*"+lang.Extension())
	if err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "create temp file failed: %v", err)
	}
	path := f.Name()
	defer func() { _ = os.Remove(path) }()
	if _, err := f.WriteString(text); err != nil {
		_ = f.Close()
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "write temp file failed: %v", err)
	}
	if err := f.Close(); err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "close temp file failed: %v", err)
	}

	cmd := exec.CommandContext(ctx, args[0], append(args[1:], path)...)
	cmd.Stdin = e.stdin
	cmd.Stdout = e.stdout
	cmd.Stderr = e.stderr
	if err := cmd.Run(); err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "editor %s exited: %v", args[0], err)
	}
	return ReadFile(path)
}

// ReadFile loads a source file to replace a buffer.
func ReadFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "read file failed: %v", err)
	}
	if info.IsDir() {
		return "", pkgerrors.Newf(pkgerrors.EditorFailed, "%s is a directory", path)
	}
	if info.Size() > maxFileSize {
		return "", pkgerrors.Newf(pkgerrors.CodeTooLarge, "%s is larger than %d bytes", path, maxFileSize)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", pkgerrors.Wrapf(err, pkgerrors.EditorFailed, "read file failed: %v", err)
	}
	return strings.ReplaceAll(string(data), "\r\n", "\n"), nil
}

// SniffLanguage guesses the language of path from its extension.
func SniffLanguage(path string) (language.Language, bool) {
	for _, lang := range language.All() {
		if strings.HasSuffix(path, lang.Extension()) {
			return lang, true
		}
	}
	return "", false
}
