package judge

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// StatusAccepted is the judge status id of a test case whose output matched.
const StatusAccepted = 3

// FailureKind classifies why no judge result is available.
type FailureKind string

const (
	FailureTransport FailureKind = "transport"
	FailureServer    FailureKind = "server"
	FailureMalformed FailureKind = "malformed"
)

// Failure is the uniform shape of every request that produced no usable result.
type Failure struct {
	Kind       FailureKind
	Message    string
	StatusCode int
}

// Error returns the user-facing message.
func (f *Failure) Error() string {
	return f.Message
}

// TestCaseOutcome is one sample test evaluation returned by Run.
type TestCaseOutcome struct {
	Input          string
	ExpectedOutput string
	ActualOutput   string
	StatusID       int
	TimeSeconds    float64
	MemoryKB       float64
	Stderr         string
	CompileOutput  string
}

// Accepted reports whether the case matched the expected output.
func (o TestCaseOutcome) Accepted() bool {
	return o.StatusID == StatusAccepted
}

// RunOutcome is either an ordered list of cases or a failure.
type RunOutcome struct {
	Cases   []TestCaseOutcome
	Failure *Failure
	Elapsed time.Duration
}

// SubmitResult is the judge's aggregate verdict. Optional fields are nil when absent.
type SubmitResult struct {
	Accepted       bool
	Passed         *int
	Total          *int
	RuntimeSeconds *float64
	MemoryKB       *float64
	Error          string
}

// SubmitOutcome is either a submit result or a failure.
type SubmitOutcome struct {
	Result  *SubmitResult
	Failure *Failure
	Elapsed time.Duration
}

// Payload is the request body shared by Run and Submit.
type Payload struct {
	Code     string `json:"code"`
	Language string `json:"language"`
}

// maxExactInt is the largest integer a float64 holds exactly.
const maxExactInt = 1 << 53

// flexNumber accepts a JSON number, a numeric string or null.
type flexNumber struct {
	value float64
	set   bool
}

func (n *flexNumber) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	raw := string(data)
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			return fmt.Errorf("invalid numeric string: %w", err)
		}
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			return nil
		}
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %s: %w", string(data), err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("invalid number %s: not finite", string(data))
	}
	n.value = v
	n.set = true
	return nil
}

func (n *flexNumber) floatPtr() *float64 {
	if n == nil || !n.set {
		return nil
	}
	v := n.value
	return &v
}

// intPtr rejects fractional values instead of truncating them.
func (n *flexNumber) intPtr() (*int, error) {
	if n == nil || !n.set {
		return nil, nil
	}
	if math.Trunc(n.value) != n.value || math.Abs(n.value) > maxExactInt {
		return nil, fmt.Errorf("expected an integer, got %v", n.value)
	}
	v := int(n.value)
	return &v, nil
}

type wireTestCase struct {
	Stdin          string      `json:"stdin"`
	ExpectedOutput string      `json:"expected_output"`
	Stdout         string      `json:"stdout"`
	StatusID       *flexNumber `json:"status_id"`
	Time           *flexNumber `json:"time"`
	Memory         *flexNumber `json:"memory"`
	Stderr         string      `json:"stderr"`
	CompileOutput  string      `json:"compile_output"`
}

type wireSubmit struct {
	Status          *bool       `json:"status"`
	Error           string      `json:"error"`
	TestCasesPassed *flexNumber `json:"testCasesPassed"`
	TestCasesTotal  *flexNumber `json:"testCasesTotal"`
	PassedTestCases *flexNumber `json:"passedTestCases"`
	TotalTestCases  *flexNumber `json:"totalTestCases"`
	Runtime         *flexNumber `json:"runtime"`
	Memory          *flexNumber `json:"memory"`
}

type wireError struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func decodeRun(body []byte) ([]TestCaseOutcome, error) {
	var wire []wireTestCase
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode run response: %w", err)
	}
	if wire == nil {
		return nil, fmt.Errorf("decode run response: expected a list of test cases")
	}
	cases := make([]TestCaseOutcome, 0, len(wire))
	for i, w := range wire {
		status, err := w.StatusID.intPtr()
		if err != nil {
			return nil, fmt.Errorf("decode run response: test case %d status_id: %w", i+1, err)
		}
		if status == nil {
			return nil, fmt.Errorf("decode run response: test case %d has no status_id", i+1)
		}
		tc := TestCaseOutcome{
			Input:          w.Stdin,
			ExpectedOutput: w.ExpectedOutput,
			ActualOutput:   w.Stdout,
			StatusID:       *status,
			Stderr:         w.Stderr,
			CompileOutput:  w.CompileOutput,
		}
		if v := w.Time.floatPtr(); v != nil {
			tc.TimeSeconds = *v
		}
		if v := w.Memory.floatPtr(); v != nil {
			tc.MemoryKB = *v
		}
		cases = append(cases, tc)
	}
	return cases, nil
}

func decodeSubmit(body []byte) (*SubmitResult, error) {
	var wire wireSubmit
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("decode submit response: %w", err)
	}
	if wire.Status == nil {
		return nil, fmt.Errorf("decode submit response: missing status flag")
	}
	result := &SubmitResult{
		Accepted:       *wire.Status,
		Error:          wire.Error,
		RuntimeSeconds: wire.Runtime.floatPtr(),
		MemoryKB:       wire.Memory.floatPtr(),
	}
	var err error
	if result.Passed, err = firstInt(wire.TestCasesPassed, wire.PassedTestCases); err != nil {
		return nil, fmt.Errorf("decode submit response: passed count: %w", err)
	}
	if result.Total, err = firstInt(wire.TestCasesTotal, wire.TotalTestCases); err != nil {
		return nil, fmt.Errorf("decode submit response: total count: %w", err)
	}
	return result, nil
}

func firstInt(values ...*flexNumber) (*int, error) {
	for _, v := range values {
		p, err := v.intPtr()
		if err != nil {
			return nil, err
		}
		if p != nil {
			return p, nil
		}
	}
	return nil, nil
}

// errorMessage extracts a display message from an error body.
func errorMessage(body []byte) string {
	var wire wireError
	if err := json.Unmarshal(body, &wire); err == nil {
		if wire.Error != "" {
			return wire.Error
		}
		if wire.Message != "" {
			return wire.Message
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 || strings.HasPrefix(text, "<") {
		return ""
	}
	return text
}
