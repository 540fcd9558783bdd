package usecase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"
	"unicode"

	"go-hr-tracker/internal/domain"
	"go-hr-tracker/pkg/apperror"
	"go-hr-tracker/pkg/logger"
	"go-hr-tracker/pkg/security"
	"go-hr-tracker/pkg/storage"

	"github.com/google/uuid"
)

const (
	maxPageSize      = 100
	exportBatchSize  = 500
	validationFailed = "Please correct the highlighted fields."
)

// CandidateConfig tunes the candidate workflow.
type CandidateConfig struct {
	MaxResumeBytes  int64
	DefaultPageSize int
	Policy          domain.TransitionPolicy
	// Now is the clock; nil means time.Now.
	Now func() time.Time
}

type candidateUsecase struct {
	repo   domain.CandidateRepository
	store  domain.ResumeStore
	audit  *security.AuditLogger
	cfg    CandidateConfig
	policy domain.TransitionPolicy
}

func NewCandidateUsecase(repo domain.CandidateRepository, store domain.ResumeStore, audit *security.AuditLogger, cfg CandidateConfig) domain.CandidateUsecase {
	if cfg.MaxResumeBytes <= 0 {
		cfg.MaxResumeBytes = domain.DefaultMaxResumeBytes
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = 10
	}
	if cfg.DefaultPageSize > maxPageSize {
		cfg.DefaultPageSize = maxPageSize
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	policy := cfg.Policy
	if policy == nil {
		policy = domain.PermissiveTransitions{}
	}
	return &candidateUsecase{repo: repo, store: store, audit: audit, cfg: cfg, policy: policy}
}

// now is truncated to microseconds, the precision PostgreSQL keeps.
func (u *candidateUsecase) now() time.Time {
	return u.cfg.Now().UTC().Truncate(time.Microsecond)
}

func requireAdmin(ctx context.Context) (domain.Admin, error) {
	admin, ok := domain.AdminFromContext(ctx)
	if !ok {
		return domain.Admin{}, apperror.Forbidden("Admin privileges required")
	}
	return admin, nil
}

func emailConflict() *apperror.AppError {
	e := apperror.Conflict("A candidate with this email is already registered.")
	e.Fields = map[string]string{"email": "A candidate with this email is already registered."}
	return e
}

func (u *candidateUsecase) SubmitRegistration(ctx context.Context, input domain.RegistrationInput, resume io.Reader) (string, error) {
	input.Normalize()
	if err := domain.ValidateRegistration(input, u.cfg.MaxResumeBytes); err != nil {
		return "", toAppError(err)
	}
	if resume == nil {
		return "", apperror.Validation(validationFailed, map[string]string{"resume": "This field is required."})
	}

	data, err := io.ReadAll(io.LimitReader(resume, u.cfg.MaxResumeBytes+1))
	if err != nil {
		return "", apperror.BadRequest("Failed to read the uploaded file")
	}
	if int64(len(data)) > u.cfg.MaxResumeBytes {
		return "", apperror.Validation(validationFailed, map[string]string{
			"resume": fmt.Sprintf("File size must not exceed %dMB.", u.cfg.MaxResumeBytes/(1024*1024)),
		})
	}

	check := security.ValidateResume(input.Resume.Filename, data)
	if !check.Valid {
		u.audit.LogUploadRejected(ctx, input.Email, input.Resume.Filename, check.Error)
		return "", apperror.Validation(validationFailed, map[string]string{
			"resume": "The file is not a valid PDF or DOCX document.",
		})
	}

	exists, err := u.repo.EmailExists(ctx, input.Email)
	if err != nil {
		return "", apperror.Internal(err)
	}
	if exists {
		return "", emailConflict()
	}

	filename := sanitizeFilename(input.Resume.Filename)
	candidate, err := domain.Register(input, domain.ResumeRef{
		Filename:    filename,
		ContentType: check.ContentType,
		Size:        int64(len(data)),
	}, u.cfg.MaxResumeBytes, u.now())
	if err != nil {
		return "", toAppError(err)
	}
	candidate.Resume.Key = fmt.Sprintf("resumes/%s/%s%s", candidate.ID, uuid.NewString(), check.Extension)

	if err := u.store.Put(ctx, candidate.Resume.Key, data, check.ContentType); err != nil {
		return "", apperror.Internal(fmt.Errorf("store resume: %w", err))
	}

	if err := u.repo.Create(ctx, candidate); err != nil {
		if delErr := u.store.Delete(context.WithoutCancel(ctx), candidate.Resume.Key); delErr != nil {
			logger.Log.Warn("Failed to remove orphaned resume", "key", candidate.Resume.Key, "error", delErr)
		}
		if errors.Is(err, domain.ErrDuplicateEmail) {
			return "", emailConflict()
		}
		return "", apperror.Internal(err)
	}

	u.audit.LogCandidateSubmitted(ctx, candidate.ID, string(candidate.Department))
	logger.Log.Info("Candidate registered", "candidate_id", candidate.ID, "department", candidate.Department)
	return candidate.ID, nil
}

func (u *candidateUsecase) load(ctx context.Context, id string) (*domain.Candidate, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("Candidate not found")
	}
	c, err := u.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, apperror.NotFound("Candidate not found")
		}
		return nil, apperror.Internal(err)
	}
	return c, nil
}

// FetchStatus is the public, unauthenticated status lookup.
func (u *candidateUsecase) FetchStatus(ctx context.Context, id string) (*domain.CandidateView, error) {
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return domain.NewCandidateView(c), nil
}

func (u *candidateUsecase) GetCandidate(ctx context.Context, id string) (*domain.CandidateView, error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	return u.FetchStatus(ctx, id)
}

func (u *candidateUsecase) normalizePaging(filter domain.CandidateFilter) domain.CandidateFilter {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.PageSize < 1 {
		filter.PageSize = u.cfg.DefaultPageSize
	}
	if filter.PageSize > maxPageSize {
		filter.PageSize = maxPageSize
	}
	return filter
}

func (u *candidateUsecase) ListCandidates(ctx context.Context, filter domain.CandidateFilter) (*domain.PaginatedResult[domain.CandidateSummary], error) {
	if _, err := requireAdmin(ctx); err != nil {
		return nil, err
	}
	for _, d := range filter.Departments {
		if !domain.IsValidDepartment(string(d)) {
			return nil, apperror.Validation("Invalid filter", map[string]string{
				"department": "Must be one of: IT, HR, FINANCE.",
			})
		}
	}
	filter = u.normalizePaging(filter)

	rows, total, err := u.repo.List(ctx, filter)
	if err != nil {
		return nil, apperror.Internal(err)
	}

	results := make([]domain.CandidateSummary, 0, len(rows))
	for i := range rows {
		results = append(results, domain.NewCandidateSummary(&rows[i]))
	}

	totalPages := int((total + int64(filter.PageSize) - 1) / int64(filter.PageSize))
	return &domain.PaginatedResult[domain.CandidateSummary]{
		Results:    results,
		Count:      total,
		Page:       filter.Page,
		PageSize:   filter.PageSize,
		TotalPages: totalPages,
	}, nil
}

func (u *candidateUsecase) UpdateStatus(ctx context.Context, id string, input domain.UpdateStatusInput) (*domain.CandidateView, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}

	status, err := domain.ParseStatus(input.Status)
	if err != nil {
		return nil, apperror.Validation(validationFailed, map[string]string{
			"status": "Must be one of: SUBMITTED, UNDER_REVIEW, INTERVIEW_SCHEDULED, ACCEPTED, REJECTED.",
		})
	}
	feedback := strings.TrimSpace(input.Feedback)
	if len(feedback) > 5000 {
		return nil, apperror.Validation(validationFailed, map[string]string{"feedback": "Must be at most 5000 characters."})
	}
	if input.ExpectedVersion < 0 {
		return nil, apperror.Validation(validationFailed, map[string]string{"version": "Must be a positive number."})
	}
	if _, err := uuid.Parse(id); err != nil {
		return nil, apperror.NotFound("Candidate not found")
	}

	var from domain.Status
	now := u.now()
	updated, err := u.repo.UpdateStatus(ctx, id, func(c *domain.Candidate) (*domain.StatusChange, error) {
		if input.ExpectedVersion > 0 && c.Version != input.ExpectedVersion {
			return nil, domain.ErrVersionConflict
		}
		from = c.CurrentStatus
		return c.AppendStatusChange(status, feedback, admin.Username, u.policy, now)
	})
	if err != nil {
		return nil, toAppError(err)
	}

	u.audit.LogStatusChanged(ctx, admin.Username, updated.ID, string(from), string(updated.CurrentStatus), updated.Version)
	return domain.NewCandidateView(updated), nil
}

func (u *candidateUsecase) OpenResume(ctx context.Context, id string) (*domain.ResumeDownload, error) {
	admin, err := requireAdmin(ctx)
	if err != nil {
		return nil, err
	}
	c, err := u.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Resume.Key == "" {
		return nil, apperror.NotFound("Resume file not found")
	}

	body, err := u.store.Open(ctx, c.Resume.Key)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, apperror.NotFound("Resume file not found")
		}
		return nil, apperror.Internal(err)
	}

	u.audit.LogResumeDownloaded(ctx, admin.Username, c.ID)
	contentType := c.Resume.ContentType
	if contentType == "" {
		contentType = domain.ResumeContentType(c.Resume.Filename)
	}
	return &domain.ResumeDownload{
		Body:        body,
		Filename:    c.Resume.Filename,
		ContentType: contentType,
		Size:        c.Resume.Size,
	}, nil
}

// toAppError maps domain sentinels onto HTTP-facing errors.
func toAppError(err error) error {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	var vErr *domain.ValidationError
	switch {
	case errors.As(err, &vErr):
		return apperror.Validation(validationFailed, vErr.Fields)
	case errors.Is(err, domain.ErrNotFound):
		return apperror.NotFound("Candidate not found")
	case errors.Is(err, domain.ErrDuplicateEmail):
		return emailConflict()
	case errors.Is(err, domain.ErrVersionConflict):
		return apperror.Conflict("Candidate was modified by someone else. Reload and try again.")
	case errors.Is(err, domain.ErrTransitionNotAllowed):
		return apperror.Conflict(err.Error())
	default:
		return apperror.Internal(err)
	}
}

// sanitizeFilename keeps the base name of an upload and drops characters that
// would break a Content-Disposition header.
func sanitizeFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.Map(func(r rune) rune {
		if r == '"' || r == '/' || r == '\\' || r == ';' || unicode.IsControl(r) {
			return '_'
		}
		return r
	}, name)
	if len([]rune(name)) > 200 {
		ext := filepath.Ext(name)
		name = string([]rune(name)[:200-len(ext)]) + ext
	}
	return name
}
