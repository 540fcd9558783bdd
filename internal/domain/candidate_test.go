package domain_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"go-hr-tracker/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func validInput() domain.RegistrationInput {
	return domain.RegistrationInput{
		FullName:          "Ana María O'Neil",
		Email:             "ana@example.com",
		DateOfBirth:       "1992-11-30",
		YearsOfExperience: intPtr(4),
		Department:        "FINANCE",
		Resume:            &domain.ResumeUpload{Filename: "cv.docx", Size: 2048},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var vErr *domain.ValidationError
	require.True(t, errors.As(err, &vErr), "expected ValidationError, got %v", err)
	return vErr.Fields
}

func TestValidateRegistration(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		assert.NoError(t, domain.ValidateRegistration(validInput(), 0))
	})

	t.Run("zero years of experience is allowed", func(t *testing.T) {
		in := validInput()
		in.YearsOfExperience = intPtr(0)
		assert.NoError(t, domain.ValidateRegistration(in, 0))
	})

	tests := []struct {
		name   string
		mutate func(*domain.RegistrationInput)
		field  string
	}{
		{"missing name", func(in *domain.RegistrationInput) { in.FullName = "" }, "full_name"},
		{"name with emoji", func(in *domain.RegistrationInput) { in.FullName = "Ana 😀" }, "full_name"},
		{"bad email", func(in *domain.RegistrationInput) { in.Email = "ana@" }, "email"},
		{"bad date format", func(in *domain.RegistrationInput) { in.DateOfBirth = "30/11/1992" }, "date_of_birth"},
		{"future birth date", func(in *domain.RegistrationInput) {
			in.DateOfBirth = time.Now().AddDate(1, 0, 0).Format("2006-01-02")
		}, "date_of_birth"},
		{"missing experience", func(in *domain.RegistrationInput) { in.YearsOfExperience = nil }, "years_of_experience"},
		{"negative experience", func(in *domain.RegistrationInput) { in.YearsOfExperience = intPtr(-2) }, "years_of_experience"},
		{"unknown department", func(in *domain.RegistrationInput) { in.Department = "SALES" }, "department"},
		{"missing resume", func(in *domain.RegistrationInput) { in.Resume = nil }, "resume"},
		{"wrong resume type", func(in *domain.RegistrationInput) { in.Resume.Filename = "cv.png" }, "resume"},
		{"empty resume", func(in *domain.RegistrationInput) { in.Resume.Size = 0 }, "resume"},
		{"resume too large", func(in *domain.RegistrationInput) { in.Resume.Size = domain.DefaultMaxResumeBytes + 1 }, "resume"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput()
			tt.mutate(&in)
			fields := fieldsOf(t, domain.ValidateRegistration(in, 0))
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestNormalize(t *testing.T) {
	in := domain.RegistrationInput{FullName: "  Ana   Maria ", Email: " ANA@Example.COM ", Department: " it "}
	in.Normalize()
	assert.Equal(t, "Ana Maria", in.FullName)
	assert.Equal(t, "ana@example.com", in.Email)
	assert.Equal(t, "IT", in.Department)
}

func TestRegister(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c, err := domain.Register(validInput(), domain.ResumeRef{Filename: "cv.docx"}, 0, now)
	require.NoError(t, err)

	assert.NotEmpty(t, c.ID)
	assert.Equal(t, domain.StatusSubmitted, c.CurrentStatus)
	assert.Equal(t, int64(1), c.Version)
	assert.Equal(t, now, c.CreatedAt)
	assert.Equal(t, 1992, c.DateOfBirth.Year())
	require.Len(t, c.StatusChanges, 1)
	first := c.StatusChanges[0]
	assert.Nil(t, first.PreviousStatus)
	assert.Equal(t, domain.StatusSubmitted, first.NewStatus)
	assert.Equal(t, domain.SubmissionFeedback, first.Feedback)
	assert.Empty(t, first.AdminUser)
	assert.Equal(t, c.ID, first.CandidateID)

	_, err = domain.Register(domain.RegistrationInput{}, domain.ResumeRef{}, 0, now)
	assert.Error(t, err)
}

func TestAppendStatusChange(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c, err := domain.Register(validInput(), domain.ResumeRef{}, 0, now)
	require.NoError(t, err)

	later := now.Add(time.Hour)
	change, err := c.AppendStatusChange(domain.StatusInterviewScheduled, "Tuesday 10:00", "alice", nil, later)
	require.NoError(t, err)
	require.NotNil(t, change.PreviousStatus)
	assert.Equal(t, domain.StatusSubmitted, *change.PreviousStatus)
	assert.Equal(t, domain.StatusInterviewScheduled, c.CurrentStatus)
	assert.Equal(t, int64(2), c.Version)
	assert.Equal(t, later, c.UpdatedAt)
	assert.Len(t, c.StatusChanges, 2)

	_, err = c.AppendStatusChange("HIRED", "", "alice", nil, later)
	assert.Contains(t, fieldsOf(t, err), "status")
	assert.Len(t, c.StatusChanges, 2)

	_, err = c.AppendStatusChange(domain.StatusAccepted, "", "alice", domain.TerminalTransitions{}, later)
	require.NoError(t, err)
	_, err = c.AppendStatusChange(domain.StatusRejected, "", "alice", domain.TerminalTransitions{}, later)
	assert.ErrorIs(t, err, domain.ErrTransitionNotAllowed)
	assert.Equal(t, domain.StatusAccepted, c.CurrentStatus)
}

func TestCandidateViewJSON(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	c, err := domain.Register(validInput(), domain.ResumeRef{Key: "resumes/secret/key.docx", Filename: "cv.docx"}, 0, now)
	require.NoError(t, err)
	_, err = c.AppendStatusChange(domain.StatusUnderReview, "ok", "alice", nil, now.Add(time.Minute))
	require.NoError(t, err)

	view := domain.NewCandidateView(c)
	assert.Equal(t, "1992-11-30", view.DateOfBirth)
	assert.Equal(t, "Finance", view.DepartmentDisplay)
	assert.Equal(t, "Under Review", view.CurrentStatusDisplay)
	assert.Equal(t, "Submitted", view.StatusChanges[1].PreviousStatusDisplay)

	raw, err := json.Marshal(view)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "resumes/secret")
	assert.Contains(t, string(raw), `"previous_status":null`)

	summary := domain.NewCandidateSummary(c)
	raw, err = json.Marshal(summary)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "ana@example.com")
	assert.NotContains(t, string(raw), "status_changes")
}

func TestCandidateFilterOffset(t *testing.T) {
	assert.Equal(t, 0, domain.CandidateFilter{Page: 1, PageSize: 10}.Offset())
	assert.Equal(t, 20, domain.CandidateFilter{Page: 3, PageSize: 10}.Offset())
}

func TestAdminFromContext(t *testing.T) {
	ctx := domain.WithAdmin(context.Background(), domain.Admin{Username: "alice", Role: domain.RoleAdmin})
	a, ok := domain.AdminFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "alice", a.Username)

	_, ok = domain.AdminFromContext(domain.WithAdmin(context.Background(), domain.Admin{Username: "bob", Role: "viewer"}))
	assert.False(t, ok)
	_, ok = domain.AdminFromContext(context.Background())
	assert.False(t, ok)
}
