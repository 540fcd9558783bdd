package client

import (
	"io"
	"time"
)

// StatusChange is one entry of a candidate's status history.
type StatusChange struct {
	ID                    string    `json:"id"`
	PreviousStatus        *string   `json:"previous_status"`
	PreviousStatusDisplay string    `json:"previous_status_display"`
	NewStatus             string    `json:"new_status"`
	NewStatusDisplay      string    `json:"new_status_display"`
	NewStatusCategory     string    `json:"new_status_category"`
	Feedback              string    `json:"feedback"`
	AdminUser             string    `json:"admin_user"`
	CreatedAt             time.Time `json:"created_at"`
}

type Resume struct {
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// Candidate is the full candidate view with history ordered oldest first.
type Candidate struct {
	ID                    string         `json:"id"`
	FullName              string         `json:"full_name"`
	Email                 string         `json:"email"`
	DateOfBirth           string         `json:"date_of_birth"`
	YearsOfExperience     int            `json:"years_of_experience"`
	Department            string         `json:"department"`
	DepartmentDisplay     string         `json:"department_display"`
	CurrentStatus         string         `json:"current_status"`
	CurrentStatusDisplay  string         `json:"current_status_display"`
	CurrentStatusCategory string         `json:"current_status_category"`
	Resume                Resume         `json:"resume"`
	Version               int64          `json:"version"`
	CreatedAt             time.Time      `json:"created_at"`
	UpdatedAt             time.Time      `json:"updated_at"`
	StatusChanges         []StatusChange `json:"status_changes"`
}

// LatestChange returns the newest history entry, or nil for an empty history.
func (c *Candidate) LatestChange() *StatusChange {
	if len(c.StatusChanges) == 0 {
		return nil
	}
	return &c.StatusChanges[len(c.StatusChanges)-1]
}

// CandidateSummary is a row of the admin listing.
type CandidateSummary struct {
	ID                    string    `json:"id"`
	FullName              string    `json:"full_name"`
	YearsOfExperience     int       `json:"years_of_experience"`
	Department            string    `json:"department"`
	DepartmentDisplay     string    `json:"department_display"`
	CurrentStatus         string    `json:"current_status"`
	CurrentStatusDisplay  string    `json:"current_status_display"`
	CurrentStatusCategory string    `json:"current_status_category"`
	CreatedAt             time.Time `json:"created_at"`
}

type CandidatePage struct {
	Results    []CandidateSummary `json:"results"`
	Count      int64              `json:"count"`
	Page       int                `json:"page"`
	PageSize   int                `json:"page_size"`
	TotalPages int                `json:"total_pages"`
}

type ListOptions struct {
	Page        int
	PageSize    int
	Departments []string
}

// Registration is the applicant form. Resume is streamed as the "resume" part.
type Registration struct {
	FullName          string
	Email             string
	DateOfBirth       string // YYYY-MM-DD
	YearsOfExperience int
	Department        string
	ResumeFilename    string
	Resume            io.Reader
}

type StatusUpdate struct {
	Status   string `json:"status"`
	Feedback string `json:"feedback"`
	// Version, when set, makes the server reject the update if the candidate
	// changed since it was read.
	Version int64 `json:"version,omitempty"`
}

type LoginResult struct {
	Token     string    `json:"token"`
	TokenType string    `json:"token_type"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
}

type statusUpdateResult struct {
	Message   string    `json:"message"`
	Candidate Candidate `json:"candidate"`
}

type envelope[T any] struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    T      `json:"data"`
}
