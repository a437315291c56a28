package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
)

var subjectColumns = []string{"id", "owner_id", "title", "description", "is_public", "created_at"}

type subjectRepo struct {
	conn conn
}

func (r *subjectRepo) Create(ctx context.Context, s *Subject) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now().UTC()
	}
	query, args := r.conn.sql().Insert(SubjectsTable.Name).
		Columns(subjectColumns...).
		Values(s.ID, s.OwnerID, s.Title, s.Description, s.IsPublic, s.CreatedAt).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert subject: %w", err)
	}
	return nil
}

func (r *subjectRepo) Get(ctx context.Context, id string) (*Subject, error) {
	query, args := r.conn.sql().Select(subjectColumns...).
		From(entsql.Table(SubjectsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var out []Subject
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query subject: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("subject %s: %w", id, apperrors.ErrNotFound)
	}
	return &out[0], nil
}

func (r *subjectRepo) ListByOwner(ctx context.Context, ownerID string) ([]Subject, error) {
	query, args := r.conn.sql().Select(subjectColumns...).
		From(entsql.Table(SubjectsTable.Name)).
		Where(entsql.EQ("owner_id", ownerID)).
		OrderBy(entsql.Desc("created_at"), "id").
		Query()
	var out []Subject
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("list subjects: %w", err)
	}
	return out, nil
}

func (r *subjectRepo) ListPublic(ctx context.Context, limit int) ([]Subject, error) {
	sel := r.conn.sql().Select(subjectColumns...).
		From(entsql.Table(SubjectsTable.Name)).
		Where(entsql.EQ("is_public", true)).
		OrderBy(entsql.Desc("created_at"), "id")
	if limit > 0 {
		sel.Limit(limit)
	}
	query, args := sel.Query()
	var out []Subject
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("list public subjects: %w", err)
	}
	return out, nil
}

func (r *subjectRepo) SetPublic(ctx context.Context, id string, public bool) error {
	query, args := r.conn.sql().Update(SubjectsTable.Name).
		Set("is_public", public).
		Where(entsql.EQ("id", id)).
		Query()
	n, err := r.conn.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update subject visibility: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subject %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}

func (r *subjectRepo) Delete(ctx context.Context, id string) error {
	query, args := r.conn.sql().Delete(SubjectsTable.Name).
		Where(entsql.EQ("id", id)).
		Query()
	n, err := r.conn.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("delete subject: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("subject %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
