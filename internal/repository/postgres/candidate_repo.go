package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-hr-tracker/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

// PostgreSQL error codes
const (
	pgUniqueViolation = "23505"
)

const candidateColumns = `id, full_name, email, date_of_birth, years_of_experience, department,
	resume_key, resume_filename, resume_content_type, resume_size,
	current_status, version, created_at, updated_at`

type candidateRepo struct {
	db *pgxpool.Pool
}

func NewCandidateRepository(db *pgxpool.Pool) domain.CandidateRepository {
	return &candidateRepo{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCandidate(row rowScanner) (*domain.Candidate, error) {
	var c domain.Candidate
	var department, status string
	err := row.Scan(
		&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.YearsOfExperience, &department,
		&c.Resume.Key, &c.Resume.Filename, &c.Resume.ContentType, &c.Resume.Size,
		&status, &c.Version, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	c.Department = domain.Department(department)
	c.CurrentStatus = domain.Status(status)
	return &c, nil
}

func (r *candidateRepo) Create(ctx context.Context, c *domain.Candidate) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	query := `INSERT INTO candidates (` + candidateColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`
	_, err = tx.Exec(ctx, query,
		c.ID, c.FullName, c.Email, c.DateOfBirth, c.YearsOfExperience, string(c.Department),
		c.Resume.Key, c.Resume.Filename, c.Resume.ContentType, c.Resume.Size,
		string(c.CurrentStatus), c.Version, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("failed to insert candidate: %w", err)
	}

	for i := range c.StatusChanges {
		if err := insertStatusChange(ctx, tx, &c.StatusChanges[i], int64(i+1)); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

func insertStatusChange(ctx context.Context, tx pgx.Tx, sc *domain.StatusChange, position int64) error {
	var prev *string
	if sc.PreviousStatus != nil {
		s := string(*sc.PreviousStatus)
		prev = &s
	}
	_, err := tx.Exec(ctx, `
		INSERT INTO status_changes (id, candidate_id, position, previous_status, new_status, feedback, admin_user, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		sc.ID, sc.CandidateID, position, prev, string(sc.NewStatus), sc.Feedback, sc.AdminUser, sc.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert status change: %w", err)
	}
	return nil
}

func (r *candidateRepo) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM candidates WHERE email = $1)`, email).Scan(&exists)
	return exists, err
}

func (r *candidateRepo) GetByID(ctx context.Context, id string) (*domain.Candidate, error) {
	c, err := scanCandidate(r.db.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	history, err := loadHistory(ctx, r.db, id)
	if err != nil {
		return nil, err
	}
	c.StatusChanges = history
	return c, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func loadHistory(ctx context.Context, q querier, candidateID string) ([]domain.StatusChange, error) {
	rows, err := q.Query(ctx, `
		SELECT id, candidate_id, previous_status, new_status, feedback, admin_user, created_at
		FROM status_changes
		WHERE candidate_id = $1
		ORDER BY position ASC`, candidateID)
	if err != nil {
		return nil, fmt.Errorf("failed to load status history: %w", err)
	}
	defer rows.Close()

	history := []domain.StatusChange{}
	for rows.Next() {
		var sc domain.StatusChange
		var prev *string
		var next string
		if err := rows.Scan(&sc.ID, &sc.CandidateID, &prev, &next, &sc.Feedback, &sc.AdminUser, &sc.CreatedAt); err != nil {
			return nil, err
		}
		if prev != nil {
			p := domain.Status(*prev)
			sc.PreviousStatus = &p
		}
		sc.NewStatus = domain.Status(next)
		history = append(history, sc)
	}
	return history, rows.Err()
}

func (r *candidateRepo) List(ctx context.Context, filter domain.CandidateFilter) ([]domain.Candidate, int64, error) {
	where := ""
	args := []any{}
	if len(filter.Departments) > 0 {
		deps := make([]string, len(filter.Departments))
		for i, d := range filter.Departments {
			deps[i] = string(d)
		}
		where = ` WHERE department = ANY($1)`
		args = append(args, pq.Array(deps))
	}

	var total int64
	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM candidates`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count candidates: %w", err)
	}

	query := fmt.Sprintf(`SELECT %s FROM candidates%s ORDER BY created_at DESC, id DESC LIMIT $%d OFFSET $%d`,
		candidateColumns, where, len(args)+1, len(args)+2)
	rows, err := r.db.Query(ctx, query, append(args, filter.PageSize, filter.Offset())...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list candidates: %w", err)
	}
	defer rows.Close()

	candidates := []domain.Candidate{}
	for rows.Next() {
		c, err := scanCandidate(rows)
		if err != nil {
			return nil, 0, err
		}
		candidates = append(candidates, *c)
	}
	return candidates, total, rows.Err()
}

// UpdateStatus holds a row lock on the candidate for the whole read-modify-write.
func (r *candidateRepo) UpdateStatus(ctx context.Context, id string, mutate domain.StatusMutation) (*domain.Candidate, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	c, err := scanCandidate(tx.QueryRow(ctx, `SELECT `+candidateColumns+` FROM candidates WHERE id = $1 FOR UPDATE`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	loadedVersion := c.Version

	change, err := mutate(c)
	if err != nil {
		return nil, err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE candidates SET current_status = $2, version = $3, updated_at = $4
		WHERE id = $1 AND version = $5`,
		c.ID, string(c.CurrentStatus), c.Version, c.UpdatedAt, loadedVersion,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to update candidate: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, domain.ErrVersionConflict
	}

	if err := insertStatusChange(ctx, tx, change, c.Version); err != nil {
		return nil, err
	}

	history, err := loadHistory(ctx, tx, id)
	if err != nil {
		return nil, err
	}
	c.StatusChanges = history

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return c, nil
}
