// Package panel tracks the active workbench tabs and the selected language.
package panel

import (
	"strings"

	"codebench/internal/workbench/language"
	pkgerrors "codebench/pkg/errors"
)

// LeftTab is the active problem-side tab.
type LeftTab string

const (
	Description LeftTab = "description"
	Editorial   LeftTab = "editorial"
	Solutions   LeftTab = "solutions"
	Submissions LeftTab = "submissions"
)

// RightTab is the active work-side tab.
type RightTab string

const (
	Code     RightTab = "code"
	Testcase RightTab = "testcase"
	Result   RightTab = "result"
)

var leftTabs = []LeftTab{Description, Editorial, Solutions, Submissions}

var rightTabs = []RightTab{Code, Testcase, Result}

// ParseLeft resolves a left tab name.
func ParseLeft(raw string) (LeftTab, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, tab := range leftTabs {
		if string(tab) == name {
			return tab, nil
		}
	}
	return "", pkgerrors.Newf(pkgerrors.UnknownTab, "unknown left tab: %q", raw)
}

// ParseRight resolves a right tab name.
func ParseRight(raw string) (RightTab, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	for _, tab := range rightTabs {
		if string(tab) == name {
			return tab, nil
		}
	}
	return "", pkgerrors.Newf(pkgerrors.UnknownTab, "unknown right tab: %q", raw)
}

// Selection is a snapshot of the machine.
type Selection struct {
	Left     LeftTab
	Right    RightTab
	Language language.Language
}

// Machine holds the tab pair and the selected language.
// It has no terminal state; Reset starts it over for a new problem.
type Machine struct {
	left     LeftTab
	right    RightTab
	language language.Language
}

// NewMachine returns a machine in its initial state.
func NewMachine(lang language.Language) *Machine {
	m := &Machine{}
	m.Reset(lang)
	return m
}

// Reset returns to description/code with lang selected.
func (m *Machine) Reset(lang language.Language) {
	if !lang.Valid() {
		lang = language.Default
	}
	m.left = Description
	m.right = Code
	m.language = lang
}

// SelectLeft changes the left tab only.
func (m *Machine) SelectLeft(tab LeftTab) {
	m.left = tab
}

// SelectRight changes the right tab only. It never affects an in-flight request.
func (m *Machine) SelectRight(tab RightTab) {
	m.right = tab
}

// SelectLanguage changes the language that edits and requests use.
func (m *Machine) SelectLanguage(lang language.Language) {
	m.language = lang
}

// CompleteRun forces the testcase tab after a run finishes, successful or not.
func (m *Machine) CompleteRun() {
	m.right = Testcase
}

// CompleteSubmit forces the result tab after a submission finishes, successful or not.
func (m *Machine) CompleteSubmit() {
	m.right = Result
}

// Selection returns the current tab pair.
func (m *Machine) Selection() Selection {
	return Selection{Left: m.left, Right: m.right, Language: m.language}
}
