package domain

import (
	"errors"
	"fmt"
	"time"
)

// Outcome is the result of running one probe.
type Outcome struct {
	Name   string `json:"name" yaml:"name"`
	Passed bool   `json:"passed" yaml:"passed"`
	Detail string `json:"details" yaml:"details"`
}

// Pass and Fail build outcomes for a named probe.
func Pass(name, detail string) Outcome { return Outcome{Name: name, Passed: true, Detail: detail} }
func Fail(name, detail string) Outcome { return Outcome{Name: name, Passed: false, Detail: detail} }

var (
	ErrReportFinalized = errors.New("report already finalized")
	ErrInconsistent    = errors.New("report is inconsistent with its outcomes")
)

// Report is the record of one battery run. It starts with status unknown,
// collects outcomes in run order and is finalized exactly once.
type Report struct {
	Timestamp     time.Time `json:"timestamp" yaml:"timestamp"`
	Outcomes      []Outcome `json:"tests" yaml:"tests"`
	OverallStatus Status    `json:"overall_status" yaml:"overall_status"`
	Issues        []string  `json:"issues_found" yaml:"issues_found"`

	finalized bool
}

func NewReport(ts time.Time) *Report {
	return &Report{
		Timestamp:     ts,
		Outcomes:      make([]Outcome, 0, 8),
		OverallStatus: StatusUnknown,
		Issues:        []string{},
	}
}

func (r *Report) Append(o Outcome) error {
	if r.finalized {
		return ErrReportFinalized
	}
	r.Outcomes = append(r.Outcomes, o)
	return nil
}

// Finalize derives the overall status and the issue list from the outcomes.
func (r *Report) Finalize() {
	r.OverallStatus = Aggregate(r.Outcomes)
	r.Issues = Issues(r.Outcomes)
	r.finalized = true
}

func (r *Report) Finalized() bool { return r.finalized }

// Passed returns the number of passing outcomes and the total.
func (r *Report) Passed() (passed, total int) {
	for _, o := range r.Outcomes {
		if o.Passed {
			passed++
		}
	}
	return passed, len(r.Outcomes)
}

// Validate checks that status and issues match what the outcomes imply.
// Decoded reports go through it before they are trusted.
func (r *Report) Validate() error {
	if want := Aggregate(r.Outcomes); r.OverallStatus != want {
		return fmt.Errorf("%w: overall_status=%q, outcomes give %q", ErrInconsistent, r.OverallStatus, want)
	}
	want := Issues(r.Outcomes)
	if len(want) != len(r.Issues) {
		return fmt.Errorf("%w: %d issues listed, %d failing tests", ErrInconsistent, len(r.Issues), len(want))
	}
	for i := range want {
		if want[i] != r.Issues[i] {
			return fmt.Errorf("%w: issue %d is %q, want %q", ErrInconsistent, i, r.Issues[i], want[i])
		}
	}
	return nil
}

// Restore rebuilds a finalized report from stored outcomes.
func Restore(ts time.Time, outcomes []Outcome) *Report {
	r := NewReport(ts)
	r.Outcomes = append(r.Outcomes, outcomes...)
	r.Finalize()
	return r
}
