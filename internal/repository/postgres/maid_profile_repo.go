package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go-maids-backend/internal/domain"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type maidProfileRepo struct {
	db *pgxpool.Pool
}

// NewMaidProfileRepository creates a read-only repository over the
// maid profile projection maintained by the profiles context.
func NewMaidProfileRepository(db *pgxpool.Pool) domain.MaidProfileRepository {
	return &maidProfileRepo{db: db}
}

func (r *maidProfileRepo) GetByID(ctx context.Context, id string) (*domain.MaidProfile, error) {
	query := `
		SELECT id, full_name, nationality, skills, languages, experiences,
		       completion_percentage, verified, active
		FROM maid_profiles
		WHERE id = $1`

	var (
		p           domain.MaidProfile
		experiences []byte
	)
	err := r.db.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.FullName, &p.Nationality, &p.Skills, &p.Languages, &experiences,
		&p.CompletionPercentage, &p.Verified, &p.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: maid profile %s", domain.ErrNotFound, id)
		}
		return nil, err
	}
	if len(experiences) > 0 {
		if err := json.Unmarshal(experiences, &p.Experiences); err != nil {
			return nil, fmt.Errorf("postgres: decode experiences for %s: %w", id, err)
		}
	}
	return &p, nil
}
