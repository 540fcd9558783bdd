package domain

import (
	"fmt"
	"strings"
)

// Status is the application status of a candidate.
type Status string

const (
	StatusSubmitted          Status = "SUBMITTED"
	StatusUnderReview        Status = "UNDER_REVIEW"
	StatusInterviewScheduled Status = "INTERVIEW_SCHEDULED"
	StatusAccepted           Status = "ACCEPTED"
	StatusRejected           Status = "REJECTED"
)

// Display categories used by consumers for visual coding (badge colors).
// They carry no business meaning.
const (
	CategoryPrimary   = "primary"
	CategoryInfo      = "info"
	CategoryWarning   = "warning"
	CategorySuccess   = "success"
	CategoryDanger    = "danger"
	CategorySecondary = "secondary"
)

var allStatuses = []Status{
	StatusSubmitted,
	StatusUnderReview,
	StatusInterviewScheduled,
	StatusAccepted,
	StatusRejected,
}

var statusLabels = map[Status]string{
	StatusSubmitted:          "Submitted",
	StatusUnderReview:        "Under Review",
	StatusInterviewScheduled: "Interview Scheduled",
	StatusAccepted:           "Accepted",
	StatusRejected:           "Rejected",
}

var statusCategories = map[Status]string{
	StatusSubmitted:          CategoryPrimary,
	StatusUnderReview:        CategoryInfo,
	StatusInterviewScheduled: CategoryWarning,
	StatusAccepted:           CategorySuccess,
	StatusRejected:           CategoryDanger,
}

// AllStatuses returns the closed set of statuses in workflow order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// IsValidStatus reports whether value is exactly one of the enumerated statuses.
func IsValidStatus(value string) bool {
	_, ok := statusLabels[Status(value)]
	return ok
}

// ParseStatus accepts surrounding whitespace and any letter case.
func ParseStatus(value string) (Status, error) {
	s := Status(strings.ToUpper(strings.TrimSpace(value)))
	if !IsValidStatus(string(s)) {
		return "", fmt.Errorf("unknown status %q", value)
	}
	return s, nil
}

// DisplayName returns the human readable label, or the raw value for unknown statuses.
func (s Status) DisplayName() string {
	if label, ok := statusLabels[s]; ok {
		return label
	}
	return string(s)
}

// Category returns the display category; unknown statuses map to secondary.
func (s Status) Category() string {
	if c, ok := statusCategories[s]; ok {
		return c
	}
	return CategorySecondary
}

// TransitionPolicy decides whether a candidate may move between two statuses.
type TransitionPolicy interface {
	Allows(from, to Status) bool
	Name() string
}

// PermissiveTransitions allows any status to follow any other, ACCEPTED and
// REJECTED included.
type PermissiveTransitions struct{}

func (PermissiveTransitions) Allows(from, to Status) bool { return true }
func (PermissiveTransitions) Name() string                { return "permissive" }

// TerminalTransitions treats ACCEPTED and REJECTED as final. Re-recording the
// same status (for example to add feedback) stays allowed.
type TerminalTransitions struct{}

func (TerminalTransitions) Allows(from, to Status) bool {
	if from == to {
		return true
	}
	return from != StatusAccepted && from != StatusRejected
}

func (TerminalTransitions) Name() string { return "terminal" }

// PolicyByName resolves the STATUS_POLICY setting. An empty name means permissive.
func PolicyByName(name string) (TransitionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "permissive":
		return PermissiveTransitions{}, nil
	case "terminal":
		return TerminalTransitions{}, nil
	default:
		return nil, fmt.Errorf("unknown status policy %q", name)
	}
}
