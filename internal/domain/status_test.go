package domain_test

import (
	"testing"

	"go-hr-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusLabelsAndCategories(t *testing.T) {
	tests := []struct {
		status   domain.Status
		label    string
		category string
	}{
		{domain.StatusSubmitted, "Submitted", "primary"},
		{domain.StatusUnderReview, "Under Review", "info"},
		{domain.StatusInterviewScheduled, "Interview Scheduled", "warning"},
		{domain.StatusAccepted, "Accepted", "success"},
		{domain.StatusRejected, "Rejected", "danger"},
		{domain.Status("ON_HOLD"), "ON_HOLD", "secondary"},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			assert.Equal(t, tt.label, tt.status.DisplayName())
			assert.Equal(t, tt.category, tt.status.Category())
		})
	}
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range domain.AllStatuses() {
		assert.True(t, domain.IsValidStatus(string(s)))
	}
	assert.False(t, domain.IsValidStatus("submitted"))
	assert.False(t, domain.IsValidStatus(""))
	assert.False(t, domain.IsValidStatus("HIRED"))
	assert.Len(t, domain.AllStatuses(), 5)
}

func TestParseStatus(t *testing.T) {
	s, err := domain.ParseStatus(" under_review ")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusUnderReview, s)

	_, err = domain.ParseStatus("HIRED")
	assert.Error(t, err)
}

func TestTransitionPolicies(t *testing.T) {
	permissive := domain.PermissiveTransitions{}
	terminal := domain.TerminalTransitions{}

	for _, from := range domain.AllStatuses() {
		for _, to := range domain.AllStatuses() {
			assert.True(t, permissive.Allows(from, to), "%s -> %s", from, to)
		}
	}

	assert.True(t, terminal.Allows(domain.StatusSubmitted, domain.StatusRejected))
	assert.True(t, terminal.Allows(domain.StatusInterviewScheduled, domain.StatusAccepted))
	assert.True(t, terminal.Allows(domain.StatusAccepted, domain.StatusAccepted))
	assert.False(t, terminal.Allows(domain.StatusAccepted, domain.StatusUnderReview))
	assert.False(t, terminal.Allows(domain.StatusRejected, domain.StatusSubmitted))
}

func TestPolicyByName(t *testing.T) {
	p, err := domain.PolicyByName("")
	require.NoError(t, err)
	assert.Equal(t, "permissive", p.Name())

	p, err = domain.PolicyByName("Terminal")
	require.NoError(t, err)
	assert.Equal(t, "terminal", p.Name())

	_, err = domain.PolicyByName("strict")
	assert.Error(t, err)
}
