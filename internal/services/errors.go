package services

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrScan           = errors.New("scan error")
	ErrReference      = errors.New("reference error")
	ErrLookup         = errors.New("lookup error")
	ErrUnresolved     = errors.New("unresolved metadata")
	ErrPathValidation = errors.New("path validation error")
	ErrConfiguration  = errors.New("configuration error")
	ErrNotFound       = errors.New("not found")
	ErrTransient      = errors.New("transient failure")
)

// Outcome is the terminal state of a group's pipeline run.
type Outcome string

const (
	// OutcomePlanned means every stage completed and the group has output paths.
	OutcomePlanned Outcome = "planned"
	// OutcomeReview means a user-fixable problem stopped the group (bad
	// descriptor reference, missing metadata, forbidden path character).
	OutcomeReview Outcome = "review"
	// OutcomeFailed covers everything else, typically environmental failures.
	OutcomeFailed Outcome = "failed"
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later outcome classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrTransient
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// FailureOutcome maps a stage error to the outcome the workflow manager
// should report for the group after the stage fails.
func FailureOutcome(err error) Outcome {
	switch {
	case errors.Is(err, ErrScan),
		errors.Is(err, ErrReference),
		errors.Is(err, ErrUnresolved),
		errors.Is(err, ErrPathValidation),
		errors.Is(err, ErrConfiguration),
		errors.Is(err, ErrNotFound):
		return OutcomeReview
	default:
		return OutcomeFailed
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
