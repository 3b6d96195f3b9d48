package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go-maids-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const jobPostingColumns = `
	id, sponsor_id, title, description, required_skills, required_languages,
	experience_years, preferred_nationality, country, city,
	contract_duration_months, start_date, salary, benefits,
	working_hours, days_off, accommodation_type, status,
	application_count, max_applications, view_count,
	posted_at, expires_at, created_at, updated_at, version`

type jobPostingRepo struct {
	db *pgxpool.Pool
}

// NewJobPostingRepository creates a new job posting repository
func NewJobPostingRepository(db *pgxpool.Pool) domain.JobPostingRepository {
	return &jobPostingRepo{db: db}
}

func (r *jobPostingRepo) q(ctx context.Context) querier {
	return activeQuerier(ctx, r.db)
}

// Create inserts a new posting row from the aggregate's snapshot.
func (r *jobPostingRepo) Create(ctx context.Context, job *domain.JobPosting) error {
	s := job.Snapshot()

	salary, err := marshalSalary(s.Salary)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO job_postings (
			id, sponsor_id, title, description, required_skills, required_languages,
			experience_years, preferred_nationality, country, city,
			contract_duration_months, start_date, salary, benefits,
			working_hours, days_off, accommodation_type, status,
			application_count, max_applications, view_count,
			posted_at, expires_at, created_at, updated_at, version
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14,
			$15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25, $26
		)`

	_, err = r.q(ctx).Exec(ctx, query,
		s.ID, s.SponsorID, s.Title, s.Description, s.RequiredSkills, s.RequiredLanguages,
		s.ExperienceYears, s.PreferredNationality, s.Location.Country, s.Location.City,
		s.ContractDurationMonths, s.StartDate, salary, s.Benefits,
		s.WorkingHours, s.DaysOff, s.AccommodationType, s.Status,
		s.ApplicationCount, s.MaxApplications, s.ViewCount,
		s.PostedAt, s.ExpiresAt, s.CreatedAt, s.UpdatedAt, s.Version,
	)
	return err
}

// GetByID loads one posting and rehydrates the aggregate.
func (r *jobPostingRepo) GetByID(ctx context.Context, id string) (*domain.JobPosting, error) {
	query := `SELECT ` + jobPostingColumns + ` FROM job_postings WHERE id = $1`

	s, err := scanJobPostingSnapshot(r.q(ctx).QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: job posting %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	return domain.RehydrateJobPosting(s)
}

// Update writes the aggregate back with an optimistic version check.
// A stale version leaves zero rows affected and surfaces as a conflict.
func (r *jobPostingRepo) Update(ctx context.Context, job *domain.JobPosting) error {
	s := job.Snapshot()

	salary, err := marshalSalary(s.Salary)
	if err != nil {
		return err
	}

	query := `
		UPDATE job_postings SET
			title = $3, description = $4, required_skills = $5, required_languages = $6,
			experience_years = $7, preferred_nationality = $8, country = $9, city = $10,
			contract_duration_months = $11, start_date = $12, salary = $13, benefits = $14,
			working_hours = $15, days_off = $16, accommodation_type = $17, status = $18,
			application_count = $19, max_applications = $20, view_count = $21,
			posted_at = $22, expires_at = $23, updated_at = $24, version = version + 1
		WHERE id = $1 AND version = $2`

	tag, err := r.q(ctx).Exec(ctx, query,
		s.ID, s.Version,
		s.Title, s.Description, s.RequiredSkills, s.RequiredLanguages,
		s.ExperienceYears, s.PreferredNationality, s.Location.Country, s.Location.City,
		s.ContractDurationMonths, s.StartDate, salary, s.Benefits,
		s.WorkingHours, s.DaysOff, s.AccommodationType, s.Status,
		s.ApplicationCount, s.MaxApplications, s.ViewCount,
		s.PostedAt, s.ExpiresAt, s.UpdatedAt,
	)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.staleOrMissing(ctx, s.ID)
	}
	return nil
}

// FetchOpen lists open postings, newest first, with the total count for
// pagination.
func (r *jobPostingRepo) FetchOpen(ctx context.Context, limit, offset int) ([]domain.JobPostingSnapshot, int64, error) {
	var total int64
	if err := r.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM job_postings WHERE status = 'open'`,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobPostingColumns + `
		FROM job_postings
		WHERE status = 'open'
		ORDER BY posted_at DESC
		LIMIT $1 OFFSET $2`

	snapshots, err := r.querySnapshots(ctx, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

// FetchBySponsorID lists all of one sponsor's postings in any status.
func (r *jobPostingRepo) FetchBySponsorID(ctx context.Context, sponsorID string, limit, offset int) ([]domain.JobPostingSnapshot, int64, error) {
	var total int64
	if err := r.q(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM job_postings WHERE sponsor_id = $1`, sponsorID,
	).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + jobPostingColumns + `
		FROM job_postings
		WHERE sponsor_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3`

	snapshots, err := r.querySnapshots(ctx, query, sponsorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return snapshots, total, nil
}

// FetchExpired loads full aggregates for open postings whose expiry has
// passed, so the sweep can run the close transition on each.
func (r *jobPostingRepo) FetchExpired(ctx context.Context, now time.Time) ([]*domain.JobPosting, error) {
	query := `SELECT ` + jobPostingColumns + `
		FROM job_postings
		WHERE status = 'open' AND expires_at IS NOT NULL AND expires_at <= $1
		ORDER BY expires_at`

	snapshots, err := r.querySnapshots(ctx, query, now)
	if err != nil {
		return nil, err
	}

	jobs := make([]*domain.JobPosting, 0, len(snapshots))
	for _, s := range snapshots {
		job, err := domain.RehydrateJobPosting(s)
		if err != nil {
			return nil, err
		}
		jobs = append(jobs, job)
	}
	return jobs, nil
}

func (r *jobPostingRepo) querySnapshots(ctx context.Context, query string, args ...any) ([]domain.JobPostingSnapshot, error) {
	rows, err := r.q(ctx).Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var snapshots []domain.JobPostingSnapshot
	for rows.Next() {
		s, err := scanJobPostingSnapshot(rows)
		if err != nil {
			return nil, err
		}
		snapshots = append(snapshots, s)
	}
	return snapshots, rows.Err()
}

// staleOrMissing decides why a guarded update matched no rows.
func (r *jobPostingRepo) staleOrMissing(ctx context.Context, id string) error {
	var exists bool
	if err := r.q(ctx).QueryRow(ctx,
		`SELECT EXISTS (SELECT 1 FROM job_postings WHERE id = $1)`, id,
	).Scan(&exists); err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("%w: job posting %s", domain.ErrNotFound, id)
	}
	return fmt.Errorf("%w: job posting %s", domain.ErrVersionConflict, id)
}

func scanJobPostingSnapshot(row pgx.Row) (domain.JobPostingSnapshot, error) {
	var (
		s         domain.JobPostingSnapshot
		salaryRaw []byte
	)
	err := row.Scan(
		&s.ID, &s.SponsorID, &s.Title, &s.Description, &s.RequiredSkills, &s.RequiredLanguages,
		&s.ExperienceYears, &s.PreferredNationality, &s.Location.Country, &s.Location.City,
		&s.ContractDurationMonths, &s.StartDate, &salaryRaw, &s.Benefits,
		&s.WorkingHours, &s.DaysOff, &s.AccommodationType, &s.Status,
		&s.ApplicationCount, &s.MaxApplications, &s.ViewCount,
		&s.PostedAt, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt, &s.Version,
	)
	if err != nil {
		return domain.JobPostingSnapshot{}, err
	}
	if len(salaryRaw) > 0 {
		var salary domain.Salary
		if err := json.Unmarshal(salaryRaw, &salary); err != nil {
			return domain.JobPostingSnapshot{}, fmt.Errorf("postgres: decode salary for %s: %w", s.ID, err)
		}
		s.Salary = &salary
	}
	return s, nil
}

// marshalSalary encodes the salary value object for its jsonb column.
// Nil stays NULL.
func marshalSalary(salary *domain.Salary) ([]byte, error) {
	if salary == nil {
		return nil, nil
	}
	return json.Marshal(salary)
}
