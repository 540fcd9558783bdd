package domain

import "time"

// StatusChangeView is a history entry as served to clients.
type StatusChangeView struct {
	ID                    string    `json:"id"`
	PreviousStatus        *Status   `json:"previous_status"`
	PreviousStatusDisplay string    `json:"previous_status_display"`
	NewStatus             Status    `json:"new_status"`
	NewStatusDisplay      string    `json:"new_status_display"`
	NewStatusCategory     string    `json:"new_status_category"`
	Feedback              string    `json:"feedback"`
	AdminUser             string    `json:"admin_user"`
	CreatedAt             time.Time `json:"created_at"`
}

// CandidateView is the read-only projection of a candidate with its history.
type CandidateView struct {
	ID                    string             `json:"id"`
	FullName              string             `json:"full_name"`
	Email                 string             `json:"email"`
	DateOfBirth           string             `json:"date_of_birth"`
	YearsOfExperience     int                `json:"years_of_experience"`
	Department            Department         `json:"department"`
	DepartmentDisplay     string             `json:"department_display"`
	CurrentStatus         Status             `json:"current_status"`
	CurrentStatusDisplay  string             `json:"current_status_display"`
	CurrentStatusCategory string             `json:"current_status_category"`
	Resume                ResumeRef          `json:"resume"`
	Version               int64              `json:"version"`
	CreatedAt             time.Time          `json:"created_at"`
	UpdatedAt             time.Time          `json:"updated_at"`
	StatusChanges         []StatusChangeView `json:"status_changes"`
}

// CandidateSummary is a listing row. It carries no history and no email.
type CandidateSummary struct {
	ID                    string     `json:"id"`
	FullName              string     `json:"full_name"`
	YearsOfExperience     int        `json:"years_of_experience"`
	Department            Department `json:"department"`
	DepartmentDisplay     string     `json:"department_display"`
	CurrentStatus         Status     `json:"current_status"`
	CurrentStatusDisplay  string     `json:"current_status_display"`
	CurrentStatusCategory string     `json:"current_status_category"`
	CreatedAt             time.Time  `json:"created_at"`
}

func NewCandidateView(c *Candidate) *CandidateView {
	v := &CandidateView{
		ID:                    c.ID,
		FullName:              c.FullName,
		Email:                 c.Email,
		DateOfBirth:           c.DateOfBirth.Format("2006-01-02"),
		YearsOfExperience:     c.YearsOfExperience,
		Department:            c.Department,
		DepartmentDisplay:     c.Department.DisplayName(),
		CurrentStatus:         c.CurrentStatus,
		CurrentStatusDisplay:  c.CurrentStatus.DisplayName(),
		CurrentStatusCategory: c.CurrentStatus.Category(),
		Resume:                c.Resume,
		Version:               c.Version,
		CreatedAt:             c.CreatedAt,
		UpdatedAt:             c.UpdatedAt,
		StatusChanges:         make([]StatusChangeView, 0, len(c.StatusChanges)),
	}
	for _, sc := range c.StatusChanges {
		entry := StatusChangeView{
			ID:                sc.ID,
			NewStatus:         sc.NewStatus,
			NewStatusDisplay:  sc.NewStatus.DisplayName(),
			NewStatusCategory: sc.NewStatus.Category(),
			Feedback:          sc.Feedback,
			AdminUser:         sc.AdminUser,
			CreatedAt:         sc.CreatedAt,
		}
		if sc.PreviousStatus != nil {
			prev := *sc.PreviousStatus
			entry.PreviousStatus = &prev
			entry.PreviousStatusDisplay = prev.DisplayName()
		}
		v.StatusChanges = append(v.StatusChanges, entry)
	}
	return v
}

func NewCandidateSummary(c *Candidate) CandidateSummary {
	return CandidateSummary{
		ID:                    c.ID,
		FullName:              c.FullName,
		YearsOfExperience:     c.YearsOfExperience,
		Department:            c.Department,
		DepartmentDisplay:     c.Department.DisplayName(),
		CurrentStatus:         c.CurrentStatus,
		CurrentStatusDisplay:  c.CurrentStatus.DisplayName(),
		CurrentStatusCategory: c.CurrentStatus.Category(),
		CreatedAt:             c.CreatedAt,
	}
}
