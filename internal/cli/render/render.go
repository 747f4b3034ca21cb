// Package render draws workbench panels as plain text.
package render

import (
	"fmt"
	"io"
	"strings"

	"codebench/internal/workbench/gate"
	"codebench/internal/workbench/language"
	"codebench/internal/workbench/panel"
	"codebench/internal/workbench/verdict"
)

const rule = "----------------------------------------"

// Status describes the header line of the workbench.
type Status struct {
	ProblemID    string
	ProblemTitle string
	Selection    panel.Selection
	State        gate.State
	BaseURL      string
}

func WriteStatus(w io.Writer, st Status) {
	problem := "<none>"
	if st.ProblemID != "" {
		problem = st.ProblemID
		if st.ProblemTitle != "" {
			problem = fmt.Sprintf("%s (%s)", st.ProblemID, st.ProblemTitle)
		}
	}
	fmt.Fprintf(w, "problem:  %s\n", problem)
	fmt.Fprintf(w, "language: %s\n", st.Selection.Language.DisplayName())
	fmt.Fprintf(w, "tabs:     left=%s right=%s\n", st.Selection.Left, st.Selection.Right)
	fmt.Fprintf(w, "judge:    %s (%s)\n", st.BaseURL, st.State)
}

// WriteCode prints a buffer with line numbers.
func WriteCode(w io.Writer, lang language.Language, text string) {
	fmt.Fprintf(w, "[%s]\n", lang.DisplayName())
	if text == "" {
		fmt.Fprintln(w, "  (empty)")
		return
	}
	lines := strings.Split(strings.TrimRight(text, "\n"), "\n")
	width := len(fmt.Sprint(len(lines)))
	for i, line := range lines {
		fmt.Fprintf(w, "%*d | %s\n", width, i+1, line)
	}
}

// WriteRun prints the testcase panel. Every case is listed, passed or not.
func WriteRun(w io.Writer, lang language.Language, v verdict.RunVerdict) {
	fmt.Fprintf(w, "Run (%s): %s\n", lang.DisplayName(), v.Message)
	if v.Failure != nil {
		return
	}
	for _, c := range v.Cases {
		mark := "PASS"
		if !c.Passed {
			mark = "FAIL"
		}
		fmt.Fprintln(w, rule)
		fmt.Fprintf(w, "Case %d  %s  %s\n", c.Index, mark, c.Status)
		writeField(w, "Input", c.Outcome.Input)
		writeField(w, "Expected", c.Outcome.ExpectedOutput)
		writeField(w, "Output", c.Outcome.ActualOutput)
		if c.Outcome.CompileOutput != "" {
			writeField(w, "Compiler", c.Outcome.CompileOutput)
		}
		if c.Outcome.Stderr != "" {
			writeField(w, "Stderr", c.Outcome.Stderr)
		}
		if c.Outcome.TimeSeconds > 0 || c.Outcome.MemoryKB > 0 {
			fmt.Fprintf(w, "  %s, %s\n", verdict.FormatRuntime(c.Outcome.TimeSeconds), verdict.FormatMemory(c.Outcome.MemoryKB))
		}
	}
}

// WriteSubmit prints the result panel. Optional lines appear only when the judge sent them.
func WriteSubmit(w io.Writer, lang language.Language, v verdict.SubmitVerdict) {
	fmt.Fprintf(w, "Submit (%s): %s\n", lang.DisplayName(), v.Headline)
	if v.Failure != nil {
		fmt.Fprintf(w, "  %s\n", v.Message)
		return
	}
	if v.HasCounts() {
		fmt.Fprintf(w, "  Test cases: %d/%d\n", *v.Passed, *v.Total)
	}
	if v.HasUsage() {
		parts := make([]string, 0, 2)
		if v.RuntimeSeconds != nil {
			parts = append(parts, "Runtime "+verdict.FormatRuntime(*v.RuntimeSeconds))
		}
		if v.MemoryKB != nil {
			parts = append(parts, "Memory "+verdict.FormatMemory(*v.MemoryKB))
		}
		fmt.Fprintf(w, "  %s\n", strings.Join(parts, ", "))
	}
}

func writeField(w io.Writer, label, value string) {
	value = strings.TrimRight(value, "\n")
	if !strings.Contains(value, "\n") {
		fmt.Fprintf(w, "  %-9s %s\n", label+":", value)
		return
	}
	fmt.Fprintf(w, "  %s:\n", label)
	for _, line := range strings.Split(value, "\n") {
		fmt.Fprintf(w, "    %s\n", line)
	}
}
