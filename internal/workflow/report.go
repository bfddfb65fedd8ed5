package workflow

import (
	"time"

	"quaver/internal/library"
	"quaver/internal/services"
)

// GroupResult is the terminal state of one group's pipeline run.
type GroupResult struct {
	Run      *library.GroupRun
	Outcome  services.Outcome
	Stage    string
	Err      error
	Duration time.Duration
}

// Planned reports whether the group made it through every stage.
func (r GroupResult) Planned() bool {
	return r.Outcome == services.OutcomePlanned
}

// Report collects the results of one run over every scanned group, in the
// order the groups were handed to the manager.
type Report struct {
	Results  []GroupResult
	Started  time.Time
	Finished time.Time
}

// Counts returns how many groups planned, stopped for review, and failed.
func (r *Report) Counts() (planned, review, failed int) {
	for _, result := range r.Results {
		switch result.Outcome {
		case services.OutcomePlanned:
			planned++
		case services.OutcomeReview:
			review++
		default:
			failed++
		}
	}
	return planned, review, failed
}

// HasFailures reports whether any group stopped short of a plan.
func (r *Report) HasFailures() bool {
	for _, result := range r.Results {
		if !result.Planned() {
			return true
		}
	}
	return false
}

// Duration returns the wall time of the whole run.
func (r *Report) Duration() time.Duration {
	return r.Finished.Sub(r.Started)
}
