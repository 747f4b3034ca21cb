package verdict_test

import (
	"testing"

	"codebench/internal/testutil"
	"codebench/internal/workbench/judge"
	"codebench/internal/workbench/verdict"
)

func intPtr(v int) *int { return &v }

func floatPtr(v float64) *float64 { return &v }

func cases(statuses ...int) []judge.TestCaseOutcome {
	out := make([]judge.TestCaseOutcome, 0, len(statuses))
	for i, s := range statuses {
		out = append(out, judge.TestCaseOutcome{
			Input:          "in",
			ExpectedOutput: "out",
			ActualOutput:   "out",
			StatusID:       s,
			TimeSeconds:    0.01 * float64(i+1),
			MemoryKB:       512,
		})
	}
	return out
}

func TestInterpretRunAcceptance(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name        string
		statuses    []int
		wantAccept  bool
		wantSummary verdict.Summary
		wantPassed  int
	}{
		{name: "all accepted", statuses: []int{3, 3}, wantAccept: true, wantSummary: verdict.SummaryAllPassed, wantPassed: 2},
		{name: "one wrong answer", statuses: []int{3, 4}, wantAccept: false, wantSummary: verdict.SummarySomeFailed, wantPassed: 1},
		{name: "first fails", statuses: []int{6, 3, 3}, wantAccept: false, wantSummary: verdict.SummarySomeFailed, wantPassed: 2},
		{name: "single accepted", statuses: []int{3}, wantAccept: true, wantSummary: verdict.SummaryAllPassed, wantPassed: 1},
		{name: "all failed", statuses: []int{5, 11}, wantAccept: false, wantSummary: verdict.SummarySomeFailed, wantPassed: 0},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			v := verdict.InterpretRun(judge.RunOutcome{Cases: cases(tt.statuses...)})
			testutil.AssertEqual(t, v.Accepted, tt.wantAccept)
			testutil.AssertEqual(t, v.Summary, tt.wantSummary)
			testutil.AssertEqual(t, v.Passed, tt.wantPassed)
			testutil.AssertEqual(t, len(v.Cases), len(tt.statuses))
			for i, c := range v.Cases {
				testutil.AssertEqual(t, c.Index, i+1)
				testutil.AssertEqual(t, c.Passed, tt.statuses[i] == judge.StatusAccepted)
				testutil.AssertEqual(t, c.Outcome.StatusID, tt.statuses[i])
			}
		})
	}
}

func TestInterpretRunExposesEveryCase(t *testing.T) {
	v := verdict.InterpretRun(judge.RunOutcome{Cases: cases(3, 4)})
	testutil.AssertEqual(t, len(v.Cases), 2)
	testutil.AssertTrue(t, v.Cases[0].Passed, "first case should pass")
	testutil.AssertFalse(t, v.Cases[1].Passed, "second case should fail")
	testutil.AssertEqual(t, v.Cases[1].Status, "Wrong Answer")
	testutil.AssertEqual(t, v.Message, "1 of 2 sample test cases passed.")
}

func TestInterpretRunEmptyIsNotAccepted(t *testing.T) {
	v := verdict.InterpretRun(judge.RunOutcome{Cases: []judge.TestCaseOutcome{}})
	testutil.AssertFalse(t, v.Accepted, "empty run must not be accepted")
	testutil.AssertEqual(t, v.Summary, verdict.SummaryNoCases)
	testutil.AssertEqual(t, v.Message, verdict.NoCasesMessage)
}

func TestInterpretRunFailure(t *testing.T) {
	failure := &judge.Failure{Kind: judge.FailureTransport, Message: "Could not reach the judge service."}
	v := verdict.InterpretRun(judge.RunOutcome{Failure: failure})
	testutil.AssertFalse(t, v.Accepted, "failure must not be accepted")
	testutil.AssertEqual(t, v.Summary, verdict.SummaryFailed)
	testutil.AssertEqual(t, v.Message, failure.Message)
	testutil.AssertEqual(t, len(v.Cases), 0)
}

func TestInterpretSubmitAccepted(t *testing.T) {
	v := verdict.InterpretSubmit(judge.SubmitOutcome{Result: &judge.SubmitResult{
		Accepted:       true,
		Passed:         intPtr(10),
		Total:          intPtr(10),
		RuntimeSeconds: floatPtr(0.12),
		MemoryKB:       floatPtr(2048),
	}})
	testutil.AssertTrue(t, v.Accepted, "should be accepted")
	testutil.AssertEqual(t, v.Headline, "Accepted")
	testutil.AssertTrue(t, v.HasCounts(), "counts expected")
	testutil.AssertTrue(t, v.HasUsage(), "usage expected")
	testutil.AssertEqual(t, verdict.FormatMemory(*v.MemoryKB), "2.00 MB")
}

func TestInterpretSubmitRejectedWithoutUsage(t *testing.T) {
	v := verdict.InterpretSubmit(judge.SubmitOutcome{Result: &judge.SubmitResult{
		Accepted: false,
		Error:    "Wrong Answer",
		Passed:   intPtr(4),
		Total:    intPtr(10),
	}})
	testutil.AssertFalse(t, v.Accepted, "should be rejected")
	testutil.AssertEqual(t, v.Summary, verdict.SummaryRejected)
	testutil.AssertEqual(t, v.Headline, "Wrong Answer")
	testutil.AssertEqual(t, *v.Passed, 4)
	testutil.AssertEqual(t, *v.Total, 10)
	testutil.AssertFalse(t, v.HasUsage(), "usage should be absent")
	testutil.AssertTrue(t, v.Failure == nil, "missing fields are not a failure")
}

func TestInterpretSubmitTrustsAggregateFlag(t *testing.T) {
	v := verdict.InterpretSubmit(judge.SubmitOutcome{Result: &judge.SubmitResult{
		Accepted: true,
		Passed:   intPtr(3),
		Total:    intPtr(10),
	}})
	testutil.AssertTrue(t, v.Accepted, "aggregate flag is authoritative")

	v = verdict.InterpretSubmit(judge.SubmitOutcome{Result: &judge.SubmitResult{
		Accepted: false,
		Passed:   intPtr(10),
		Total:    intPtr(10),
	}})
	testutil.AssertFalse(t, v.Accepted, "aggregate flag is authoritative")
	testutil.AssertEqual(t, v.Headline, "Rejected")
}

func TestInterpretSubmitCompileErrorWithoutCounts(t *testing.T) {
	v := verdict.InterpretSubmit(judge.SubmitOutcome{Result: &judge.SubmitResult{
		Accepted: false,
		Error:    "Compilation Error",
	}})
	testutil.AssertFalse(t, v.HasCounts(), "counts should be absent")
	testutil.AssertEqual(t, v.Headline, "Compilation Error")
	testutil.AssertTrue(t, v.Failure == nil, "judge-reported rejection is not a failure")
}

func TestInterpretSubmitFailure(t *testing.T) {
	v := verdict.InterpretSubmit(judge.SubmitOutcome{Failure: &judge.Failure{Kind: judge.FailureServer, Message: "boom"}})
	testutil.AssertEqual(t, v.Summary, verdict.SummaryFailed)
	testutil.AssertEqual(t, v.Message, "boom")
}

func TestFormatMemory(t *testing.T) {
	t.Parallel()
	tests := []struct {
		kb   float64
		want string
	}{
		{kb: 0, want: "0 KB"},
		{kb: 512, want: "512 KB"},
		{kb: 1023, want: "1023 KB"},
		{kb: 1024, want: "1.00 MB"},
		{kb: 2048, want: "2.00 MB"},
		{kb: 3500, want: "3.42 MB"},
	}
	for _, tt := range tests {
		testutil.AssertEqual(t, verdict.FormatMemory(tt.kb), tt.want)
	}
}

func TestStatusLabel(t *testing.T) {
	testutil.AssertEqual(t, verdict.StatusLabel(3), "Accepted")
	testutil.AssertEqual(t, verdict.StatusLabel(6), "Compilation Error")
	testutil.AssertEqual(t, verdict.StatusLabel(99), "Status 99")
}
