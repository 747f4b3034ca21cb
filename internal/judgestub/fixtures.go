// Package judgestub serves problem, run and submit endpoints from scripted fixtures
// so the workbench can be exercised without a real judge.
package judgestub

import (
	"fmt"
	"os"
	"strings"
	"time"

	"codebench/internal/workbench/buffer"
	"codebench/internal/workbench/language"

	"gopkg.in/yaml.v3"
)

// Fixtures is the root of a fixture file.
type Fixtures struct {
	Problems []ProblemFixture `yaml:"problems"`
}

// ProblemFixture scripts one problem.
type ProblemFixture struct {
	ID         string       `yaml:"id"`
	Title      string       `yaml:"title"`
	Difficulty string       `yaml:"difficulty"`
	StartCode  []StartCode  `yaml:"startcode"`
	Default    Script       `yaml:"default"`
	Rules      []ScriptRule `yaml:"rules"`
}

type StartCode struct {
	Language    string `yaml:"language"`
	InitialCode string `yaml:"initialcode"`
}

// ScriptRule overrides the default script when the submitted code contains Match
// and, if set, the language equals Language. The first matching rule wins.
type ScriptRule struct {
	Match    string `yaml:"match"`
	Language string `yaml:"language"`
	Script   `yaml:",inline"`
}

// Script is what the stub answers for run and submit.
type Script struct {
	Run     []RunCase      `yaml:"run"`
	Submit  *SubmitFixture `yaml:"submit"`
	Latency time.Duration  `yaml:"latency"`
	// FailStatus forces an error response with this HTTP status.
	FailStatus  int    `yaml:"failStatus"`
	FailMessage string `yaml:"failMessage"`
	// RawBody is returned verbatim with status 200, for malformed-response testing.
	RawBody string `yaml:"rawBody"`
}

// RunCase mirrors one judged sample test on the wire.
type RunCase struct {
	Stdin          string  `yaml:"stdin" json:"stdin"`
	ExpectedOutput string  `yaml:"expected_output" json:"expected_output"`
	Stdout         string  `yaml:"stdout" json:"stdout"`
	StatusID       int     `yaml:"status_id" json:"status_id"`
	Time           float64 `yaml:"time" json:"time"`
	Memory         float64 `yaml:"memory" json:"memory"`
	Stderr         string  `yaml:"stderr" json:"stderr,omitempty"`
	CompileOutput  string  `yaml:"compile_output" json:"compile_output,omitempty"`
}

// SubmitFixture mirrors the submit response on the wire. Nil fields are omitted.
type SubmitFixture struct {
	Status          bool     `yaml:"status" json:"status"`
	Error           string   `yaml:"error" json:"error,omitempty"`
	TestCasesPassed *int     `yaml:"testCasesPassed" json:"testCasesPassed,omitempty"`
	TestCasesTotal  *int     `yaml:"testCasesTotal" json:"testCasesTotal,omitempty"`
	PassedTestCases *int     `yaml:"passedTestCases" json:"passedTestCases,omitempty"`
	TotalTestCases  *int     `yaml:"totalTestCases" json:"totalTestCases,omitempty"`
	Runtime         *float64 `yaml:"runtime" json:"runtime,omitempty"`
	Memory          *float64 `yaml:"memory" json:"memory,omitempty"`
}

// LoadFixtures reads and validates a fixture file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures failed: %w", err)
	}
	return ParseFixtures(data)
}

// ParseFixtures decodes fixture YAML.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var f Fixtures
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse fixtures failed: %w", err)
	}
	seen := make(map[string]bool, len(f.Problems))
	for i, p := range f.Problems {
		if p.ID == "" {
			return nil, fmt.Errorf("problem #%d has no id", i+1)
		}
		if seen[p.ID] {
			return nil, fmt.Errorf("duplicate problem id %s", p.ID)
		}
		seen[p.ID] = true
		for _, rule := range p.Rules {
			if rule.Language == "" {
				continue
			}
			if _, err := language.Parse(rule.Language); err != nil {
				return nil, fmt.Errorf("problem %s: %w", p.ID, err)
			}
		}
	}
	return &f, nil
}

// Find returns the fixture for id.
func (f *Fixtures) Find(id string) (*ProblemFixture, bool) {
	for i := range f.Problems {
		if f.Problems[i].ID == id {
			return &f.Problems[i], true
		}
	}
	return nil, false
}

// IDs lists problem ids in file order.
func (f *Fixtures) IDs() []string {
	ids := make([]string, 0, len(f.Problems))
	for _, p := range f.Problems {
		ids = append(ids, p.ID)
	}
	return ids
}

// ScriptFor picks the script answering code in lang.
func (p *ProblemFixture) ScriptFor(lang language.Language, code string) Script {
	for _, rule := range p.Rules {
		if rule.Language != "" {
			ruleLang, err := language.Parse(rule.Language)
			if err != nil || ruleLang != lang {
				continue
			}
		}
		if rule.Match != "" && !strings.Contains(code, rule.Match) {
			continue
		}
		return rule.Script
	}
	return p.Default
}

// StartCodeEntries converts templates to the problem payload shape.
func (p *ProblemFixture) StartCodeEntries() []buffer.StartCode {
	out := make([]buffer.StartCode, 0, len(p.StartCode))
	for _, sc := range p.StartCode {
		out = append(out, buffer.StartCode{Language: sc.Language, InitialCode: sc.InitialCode})
	}
	return out
}
