package domain

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"go-hr-tracker/pkg/validation"
)

// Department is the business unit a candidate applies to.
type Department string

const (
	DepartmentIT      Department = "IT"
	DepartmentHR      Department = "HR"
	DepartmentFinance Department = "FINANCE"
)

var departmentLabels = map[Department]string{
	DepartmentIT:      "IT",
	DepartmentHR:      "HR",
	DepartmentFinance: "Finance",
}

// AllDepartments returns the closed set of departments.
func AllDepartments() []Department {
	return []Department{DepartmentIT, DepartmentHR, DepartmentFinance}
}

func IsValidDepartment(value string) bool {
	_, ok := departmentLabels[Department(value)]
	return ok
}

func (d Department) DisplayName() string {
	if label, ok := departmentLabels[d]; ok {
		return label
	}
	return string(d)
}

// SubmissionFeedback is recorded on the initial history entry of every registration.
const SubmissionFeedback = "Application submitted successfully."

// DefaultMaxResumeBytes is the upload limit used when none is configured.
const DefaultMaxResumeBytes int64 = 5 * 1024 * 1024

var resumeExtensions = map[string]string{
	".pdf":  "application/pdf",
	".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ResumeContentType returns the content type served for a stored resume name.
func ResumeContentType(filename string) string {
	if ct, ok := resumeExtensions[strings.ToLower(filepath.Ext(filename))]; ok {
		return ct
	}
	return "application/octet-stream"
}

// ResumeRef points at the stored resume document of a candidate.
type ResumeRef struct {
	Key         string `json:"-"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// StatusChange is one immutable history entry. PreviousStatus is nil only for
// the initial entry written at registration.
type StatusChange struct {
	ID             string    `json:"id"`
	CandidateID    string    `json:"-"`
	PreviousStatus *Status   `json:"previous_status"`
	NewStatus      Status    `json:"new_status"`
	Feedback       string    `json:"feedback"`
	AdminUser      string    `json:"admin_user"`
	CreatedAt      time.Time `json:"created_at"`
}

// Candidate is the registration record. StatusChanges are ordered oldest first
// and the last entry's NewStatus always equals CurrentStatus.
type Candidate struct {
	ID                string
	FullName          string
	Email             string
	DateOfBirth       time.Time
	YearsOfExperience int
	Department        Department
	Resume            ResumeRef
	CurrentStatus     Status
	Version           int64
	CreatedAt         time.Time
	UpdatedAt         time.Time
	StatusChanges     []StatusChange
}

// ResumeUpload describes the uploaded document before it is stored.
type ResumeUpload struct {
	Filename    string
	ContentType string
	Size        int64
}

// RegistrationInput is the applicant-submitted form.
type RegistrationInput struct {
	FullName          string        `json:"full_name" form:"full_name" validate:"required,min=2,max=255,valid_name,no_emoji"`
	Email             string        `json:"email" form:"email" validate:"required,email,max=254"`
	DateOfBirth       string        `json:"date_of_birth" form:"date_of_birth" validate:"required,datetime=2006-01-02,past_date"`
	YearsOfExperience *int          `json:"years_of_experience" form:"years_of_experience" validate:"required,min=0,max=80"`
	Department        string        `json:"department" form:"department" validate:"required,oneof=IT HR FINANCE"`
	Resume            *ResumeUpload `json:"-" form:"-"`
}

// Normalize trims whitespace and canonicalizes case where the value is case-insensitive.
func (in *RegistrationInput) Normalize() {
	in.FullName = strings.Join(strings.Fields(in.FullName), " ")
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.DateOfBirth = strings.TrimSpace(in.DateOfBirth)
	in.Department = strings.ToUpper(strings.TrimSpace(in.Department))
}

// ValidateRegistration checks the form fields and the resume metadata.
// The resume content itself is sniffed by the storage side before it is persisted.
func ValidateRegistration(in RegistrationInput, maxResumeBytes int64) error {
	fields := map[string]string{}
	if err := validation.Validator().Struct(in); err != nil {
		fields = validation.FieldErrors(err)
	}

	if maxResumeBytes <= 0 {
		maxResumeBytes = DefaultMaxResumeBytes
	}
	switch {
	case in.Resume == nil || in.Resume.Filename == "":
		fields["resume"] = "This field is required."
	case resumeExtensions[strings.ToLower(filepath.Ext(in.Resume.Filename))] == "":
		fields["resume"] = "Only PDF and DOCX files are allowed."
	case in.Resume.Size <= 0:
		fields["resume"] = "The submitted file is empty."
	case in.Resume.Size > maxResumeBytes:
		fields["resume"] = "File size must not exceed " + formatMB(maxResumeBytes) + "."
	}

	if len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Register validates the input and builds a new candidate in SUBMITTED state
// with its initial history entry. Input must already be normalized.
func Register(in RegistrationInput, resume ResumeRef, maxResumeBytes int64, now time.Time) (*Candidate, error) {
	if err := ValidateRegistration(in, maxResumeBytes); err != nil {
		return nil, err
	}
	dob, err := time.Parse(validation.DateLayout, in.DateOfBirth)
	if err != nil {
		return nil, newValidationError("date_of_birth", "Use the YYYY-MM-DD format.")
	}

	id := uuid.NewString()
	c := &Candidate{
		ID:                id,
		FullName:          in.FullName,
		Email:             in.Email,
		DateOfBirth:       dob,
		YearsOfExperience: *in.YearsOfExperience,
		Department:        Department(in.Department),
		Resume:            resume,
		CurrentStatus:     StatusSubmitted,
		Version:           1,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	c.StatusChanges = []StatusChange{{
		ID:          uuid.NewString(),
		CandidateID: id,
		NewStatus:   StatusSubmitted,
		Feedback:    SubmissionFeedback,
		CreatedAt:   now,
	}}
	return c, nil
}

// UpdateStatusInput is an admin request to move a candidate to a new status.
// ExpectedVersion of 0 skips the optimistic concurrency check.
type UpdateStatusInput struct {
	Status          string `json:"status" validate:"required"`
	Feedback        string `json:"feedback" validate:"max=5000"`
	ExpectedVersion int64  `json:"version,omitempty" validate:"min=0"`
}

// AppendStatusChange moves the candidate to newStatus and records the history
// entry. The caller persists the returned entry together with the candidate.
func (c *Candidate) AppendStatusChange(newStatus Status, feedback, adminUser string, policy TransitionPolicy, now time.Time) (*StatusChange, error) {
	if !IsValidStatus(string(newStatus)) {
		return nil, newValidationError("status", "Must be one of: "+joinStatuses()+".")
	}
	if policy == nil {
		policy = PermissiveTransitions{}
	}
	if !policy.Allows(c.CurrentStatus, newStatus) {
		return nil, fmt.Errorf("%w: %s to %s", ErrTransitionNotAllowed, c.CurrentStatus.DisplayName(), newStatus.DisplayName())
	}

	prev := c.CurrentStatus
	change := StatusChange{
		ID:             uuid.NewString(),
		CandidateID:    c.ID,
		PreviousStatus: &prev,
		NewStatus:      newStatus,
		Feedback:       feedback,
		AdminUser:      adminUser,
		CreatedAt:      now,
	}
	c.CurrentStatus = newStatus
	c.UpdatedAt = now
	c.Version++
	c.StatusChanges = append(c.StatusChanges, change)
	return &change, nil
}

// StatusMutation applies a status change to a locked candidate and returns the
// history entry to persist.
type StatusMutation func(c *Candidate) (*StatusChange, error)

// CandidateFilter narrows the admin listing. An empty Departments slice means all.
type CandidateFilter struct {
	Page        int
	PageSize    int
	Departments []Department
}

// Offset of the first row on the requested page.
func (f CandidateFilter) Offset() int {
	return (f.Page - 1) * f.PageSize
}

// PaginatedResult for list responses
type PaginatedResult[T any] struct {
	Results    []T   `json:"results"`
	Count      int64 `json:"count"`
	Page       int   `json:"page"`
	PageSize   int   `json:"page_size"`
	TotalPages int   `json:"total_pages"`
}

// ResumeDownload is an open resume stream and the headers to serve it with.
type ResumeDownload struct {
	Body        io.ReadCloser
	Filename    string
	ContentType string
	Size        int64
}

// ExportFile is a rendered spreadsheet of candidates.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

type CandidateRepository interface {
	// Create stores the candidate and its history in one unit. Returns ErrDuplicateEmail.
	Create(ctx context.Context, c *Candidate) error
	EmailExists(ctx context.Context, email string) (bool, error)
	// GetByID loads the candidate with its full history. Returns ErrNotFound.
	GetByID(ctx context.Context, id string) (*Candidate, error)
	// List returns one page without history, newest first, plus the total count.
	List(ctx context.Context, filter CandidateFilter) ([]Candidate, int64, error)
	// UpdateStatus locks the candidate, applies mutate and persists the result atomically.
	UpdateStatus(ctx context.Context, id string, mutate StatusMutation) (*Candidate, error)
}

// ResumeStore keeps resume documents (see pkg/storage).
type ResumeStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

type CandidateUsecase interface {
	SubmitRegistration(ctx context.Context, input RegistrationInput, resume io.Reader) (string, error)
	FetchStatus(ctx context.Context, id string) (*CandidateView, error)
	ListCandidates(ctx context.Context, filter CandidateFilter) (*PaginatedResult[CandidateSummary], error)
	GetCandidate(ctx context.Context, id string) (*CandidateView, error)
	UpdateStatus(ctx context.Context, id string, input UpdateStatusInput) (*CandidateView, error)
	OpenResume(ctx context.Context, id string) (*ResumeDownload, error)
	ExportCandidates(ctx context.Context, departments []Department, format string) (*ExportFile, error)
}

func joinStatuses() string {
	parts := make([]string, 0, len(allStatuses))
	for _, s := range allStatuses {
		parts = append(parts, string(s))
	}
	return strings.Join(parts, ", ")
}

func formatMB(n int64) string {
	if n%(1024*1024) == 0 {
		return strconv.FormatInt(n/(1024*1024), 10) + "MB"
	}
	return strconv.FormatInt(n, 10) + " bytes"
}
