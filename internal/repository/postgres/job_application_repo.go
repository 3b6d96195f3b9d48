package postgres

import (
	"context"
	"errors"
	"fmt"

	"go-maids-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const jobApplicationColumns = `
	id, job_id, maid_id, sponsor_id, cover_letter, proposed_salary,
	available_from, status, match_score, sponsor_notes, rejection_reason,
	withdrawal_reason, interview_scheduled_at, interview_completed_at,
	applied_at, updated_at, version`

type jobApplicationRepo struct {
	db *pgxpool.Pool
}

// NewJobApplicationRepository creates a new job application repository
func NewJobApplicationRepository(db *pgxpool.Pool) domain.JobApplicationRepository {
	return &jobApplicationRepo{db: db}
}

func (r *jobApplicationRepo) q(ctx context.Context) querier {
	return activeQuerier(ctx, r.db)
}

// Create inserts a new application row from the aggregate's snapshot.
func (r *jobApplicationRepo) Create(ctx context.Context, app *domain.JobApplication) error {
	s := app.Snapshot()

	query := `
		INSERT INTO job_applications (
			id, job_id, maid_id, sponsor_id, cover_letter, proposed_salary,
			available_from, status, match_score, sponsor_notes, rejection_reason,
			withdrawal_reason, interview_scheduled_at, interview_completed_at,
			applied_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17
		)`

	_, err := r.q(ctx).Exec(ctx, query,
		s.ID, s.JobID, s.MaidID, s.SponsorID, s.CoverLetter, nullDecimal(s.ProposedSalary),
		s.AvailableFrom, s.Status, s.MatchScore, s.SponsorNotes, s.RejectionReason,
		s.WithdrawalReason, s.InterviewScheduledAt, s.InterviewCompletedAt,
		s.AppliedAt, s.UpdatedAt, s.Version,
	)
	return err
}

// GetByID loads one application and rehydrates the aggregate.
func (r *jobApplicationRepo) GetByID(ctx context.Context, id string) (*domain.JobApplication, error) {
	query := `SELECT ` + jobApplicationColumns + ` FROM job_applications WHERE id = $1`

	s, err := scanJobApplicationSnapshot(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: application %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return domain.RehydrateJobApplication(s)
}

// Update writes the aggregate back with an optimistic version check.
func (r *jobApplicationRepo) Update(ctx context.Context, app *domain.JobApplication) error {
	s := app.Snapshot()

	query := `
		UPDATE job_applications SET
			cover_letter = $3, proposed_salary = $4, available_from = $5,
			status = $6, match_score = $7, sponsor_notes = $8,
			rejection_reason = $9, withdrawal_reason = $10,
			interview_scheduled_at = $11, interview_completed_at = $12,
			updated_at = $13, version = version + 1
		WHERE id = $1 AND version = $2`

	tag, err := r.q(ctx).Exec(ctx, query,
		s.ID, s.Version,
		s.CoverLetter, nullDecimal(s.ProposedSalary), s.AvailableFrom,
		s.Status, s.MatchScore, s.SponsorNotes,
		s.RejectionReason, s.WithdrawalReason,
		s.InterviewScheduledAt, s.InterviewCompletedAt,
		s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, s.ID)
	}
	return nil
}

// GetByJobID loads full aggregates for a posting's applications so the
// usecase can rank them. Submission order is the stable base ordering.
func (r *jobApplicationRepo) GetByJobID(ctx context.Context, jobID string) ([]*domain.JobApplication, error) {
	query := `SELECT ` + jobApplicationColumns + `
		FROM job_applications
		WHERE job_id = $1
		ORDER BY applied_at`

	rows, err := r.q(ctx).Query(ctx, query, jobID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var apps []*domain.JobApplication
	for rows.Next() {
		s, err := scanJobApplicationSnapshot(rows)
		if err != nil {
			return nil, err
		}
		app, err := domain.RehydrateJobApplication(s)
		if err != nil {
			return nil, err
		}
		apps = append(apps, app)
	}
	return apps, rows.Err()
}

// GetByMaidID lists a maid's applications, newest first.
func (r *jobApplicationRepo) GetByMaidID(ctx context.Context, maidID string) ([]domain.JobApplicationSnapshot, error) {
	query := `SELECT ` + jobApplicationColumns + `
		FROM job_applications
		WHERE maid_id = $1
		ORDER BY applied_at DESC`

	rows, err := r.q(ctx).Query(ctx, query, maidID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.JobApplicationSnapshot
	for rows.Next() {
		s, err := scanJobApplicationSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// Exists reports whether the maid already applied to the job. Withdrawn
// and rejected applications still count; one application per job.
func (r *jobApplicationRepo) Exists(ctx context.Context, jobID, maidID string) (bool, error) {
	var exists bool
	err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_applications WHERE job_id = $1 AND maid_id = $2)`,
		jobID, maidID,
	).Scan(&exists)
	return exists, err
}

func (r *jobApplicationRepo) staleOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_applications WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: application %s", domain.ErrNotFound, id)
	}
	return fmt.Errorf("%w: application %s", domain.ErrVersionConflict, id)
}

func scanJobApplicationSnapshot(row pgx.Row) (domain.JobApplicationSnapshot, error) {
	var (
		s        domain.JobApplicationSnapshot
		proposed decimal.NullDecimal
	)
	err := row.Scan(
		&s.ID, &s.JobID, &s.MaidID, &s.SponsorID, &s.CoverLetter, &proposed,
		&s.AvailableFrom, &s.Status, &s.MatchScore, &s.SponsorNotes, &s.RejectionReason,
		&s.WithdrawalReason, &s.InterviewScheduledAt, &s.InterviewCompletedAt,
		&s.AppliedAt, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		return domain.JobApplicationSnapshot{}, err
	}
	if proposed.Valid {
		s.ProposedSalary = &proposed.Decimal
	}
	return s, nil
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}
