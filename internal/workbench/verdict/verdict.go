// Package verdict turns judge outcomes into display-ready verdicts.
package verdict

import (
	"fmt"

	"codebench/internal/workbench/judge"
)

// Summary is the headline state of a verdict.
type Summary string

const (
	SummaryAllPassed  Summary = "all passed"
	SummarySomeFailed Summary = "some failed"
	SummaryNoCases    Summary = "no cases"
	SummaryAccepted   Summary = "accepted"
	SummaryRejected   Summary = "rejected"
	SummaryFailed     Summary = "failed"
)

// NoCasesMessage is shown when a run returns no sample test cases.
const NoCasesMessage = "No sample test cases were executed."

// CaseVerdict is one test case with its pass/fail marking.
type CaseVerdict struct {
	Index   int
	Outcome judge.TestCaseOutcome
	Passed  bool
	Status  string
}

// RunVerdict is the interpreted result of a Run.
type RunVerdict struct {
	Accepted bool
	Summary  Summary
	Cases    []CaseVerdict
	Passed   int
	Message  string
	Failure  *judge.Failure
}

// SubmitVerdict is the interpreted result of a Submit. Optional fields stay nil when the judge omitted them.
type SubmitVerdict struct {
	Accepted       bool
	Summary        Summary
	Headline       string
	Message        string
	Passed         *int
	Total          *int
	RuntimeSeconds *float64
	MemoryKB       *float64
	Failure        *judge.Failure
}

// InterpretRun evaluates every case; it never stops at the first failure.
// A run with no cases is not accepted.
func InterpretRun(outcome judge.RunOutcome) RunVerdict {
	if outcome.Failure != nil {
		return RunVerdict{
			Summary: SummaryFailed,
			Message: outcome.Failure.Message,
			Failure: outcome.Failure,
		}
	}
	if len(outcome.Cases) == 0 {
		return RunVerdict{Summary: SummaryNoCases, Message: NoCasesMessage}
	}

	v := RunVerdict{Cases: make([]CaseVerdict, 0, len(outcome.Cases))}
	for i, tc := range outcome.Cases {
		passed := tc.Accepted()
		if passed {
			v.Passed++
		}
		v.Cases = append(v.Cases, CaseVerdict{
			Index:   i + 1,
			Outcome: tc,
			Passed:  passed,
			Status:  StatusLabel(tc.StatusID),
		})
	}
	v.Accepted = v.Passed == len(v.Cases)
	if v.Accepted {
		v.Summary = SummaryAllPassed
		v.Message = "All sample test cases passed."
	} else {
		v.Summary = SummarySomeFailed
		v.Message = fmt.Sprintf("%d of %d sample test cases passed.", v.Passed, len(v.Cases))
	}
	return v
}

// InterpretSubmit trusts the judge's aggregate flag even when the counts disagree.
func InterpretSubmit(outcome judge.SubmitOutcome) SubmitVerdict {
	if outcome.Failure != nil {
		return SubmitVerdict{
			Summary:  SummaryFailed,
			Headline: "Submission failed",
			Message:  outcome.Failure.Message,
			Failure:  outcome.Failure,
		}
	}
	if outcome.Result == nil {
		return SubmitVerdict{
			Summary:  SummaryFailed,
			Headline: "Submission failed",
			Message:  "The judge returned no result.",
			Failure:  &judge.Failure{Kind: judge.FailureMalformed, Message: "The judge returned no result."},
		}
	}

	r := outcome.Result
	v := SubmitVerdict{
		Accepted:       r.Accepted,
		Message:        r.Error,
		Passed:         r.Passed,
		Total:          r.Total,
		RuntimeSeconds: r.RuntimeSeconds,
		MemoryKB:       r.MemoryKB,
	}
	if r.Accepted {
		v.Summary = SummaryAccepted
		v.Headline = "Accepted"
		return v
	}
	v.Summary = SummaryRejected
	v.Headline = r.Error
	if v.Headline == "" {
		v.Headline = "Rejected"
	}
	return v
}

// HasCounts reports whether both pass counts were provided.
func (v SubmitVerdict) HasCounts() bool {
	return v.Passed != nil && v.Total != nil
}

// HasUsage reports whether runtime or memory was provided.
func (v SubmitVerdict) HasUsage() bool {
	return v.RuntimeSeconds != nil || v.MemoryKB != nil
}
