package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
)

var profileColumns = []string{
	"user_id", "full_name", "occupation", "education_level",
	"learning_style", "learning_schedule", "encrypted_api_key", "updated_at",
}

type profileRepo struct {
	conn conn
}

func (r *profileRepo) Get(ctx context.Context, userID string) (*Profile, error) {
	query, args := r.conn.sql().Select(profileColumns...).
		From(entsql.Table(ProfilesTable.Name)).
		Where(entsql.EQ("user_id", userID)).
		Query()
	var out []Profile
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query profile: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("profile %s: %w", userID, apperrors.ErrNotFound)
	}
	return &out[0], nil
}

func (r *profileRepo) Upsert(ctx context.Context, p *Profile) error {
	p.UpdatedAt = time.Now().UTC()
	query, args := r.conn.sql().Insert(ProfilesTable.Name).
		Columns(profileColumns...).
		Values(p.UserID, p.FullName, p.Occupation, p.EducationLevel,
			p.LearningStyle, p.LearningSchedule, p.EncryptedAPIKey, p.UpdatedAt).
		OnConflict(
			entsql.ConflictColumns("user_id"),
			entsql.ResolveWithNewValues(),
		).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("upsert profile: %w", err)
	}
	return nil
}
