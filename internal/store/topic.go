package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/topicgraph"
)

var topicColumns = []string{
	"id", "subject_id", "title", "description", "level", "status",
	"position_x", "position_y", "created_at", "updated_at",
}

type topicRepo struct {
	conn conn
}

func (r *topicRepo) Create(ctx context.Context, t *Topic) error {
	now := time.Now().UTC()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	query, args := r.conn.sql().Insert(TopicsTable.Name).
		Columns(topicColumns...).
		Values(t.ID, t.SubjectID, t.Title, t.Description, t.Level, string(t.Status),
			t.PositionX, t.PositionY, t.CreatedAt, t.UpdatedAt).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert topic: %w", err)
	}
	return nil
}

func (r *topicRepo) Get(ctx context.Context, id string) (*Topic, error) {
	query, args := r.conn.sql().Select(topicColumns...).
		From(entsql.Table(TopicsTable.Name)).
		Where(entsql.EQ("id", id)).
		Query()
	var out []Topic
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query topic: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("topic %s: %w", id, apperrors.ErrNotFound)
	}
	return &out[0], nil
}

func (r *topicRepo) ListBySubject(ctx context.Context, subjectID string) ([]Topic, error) {
	query, args := r.conn.sql().Select(topicColumns...).
		From(entsql.Table(TopicsTable.Name)).
		Where(entsql.EQ("subject_id", subjectID)).
		OrderBy("level", "title", "id").
		Query()
	var out []Topic
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("list topics: %w", err)
	}
	return out, nil
}

func (r *topicRepo) SetStatus(ctx context.Context, status topicgraph.Status, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	query, qargs := r.conn.sql().Update(TopicsTable.Name).
		Set("status", string(status)).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.In("id", args...)).
		Query()
	n, err := r.conn.exec(ctx, query, qargs)
	if err != nil {
		return fmt.Errorf("update topic status: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("topics %v: %w", ids, apperrors.ErrNotFound)
	}
	return nil
}

func (r *topicRepo) SetPosition(ctx context.Context, id string, x, y float64) error {
	query, args := r.conn.sql().Update(TopicsTable.Name).
		Set("position_x", x).
		Set("position_y", y).
		Set("updated_at", time.Now().UTC()).
		Where(entsql.EQ("id", id)).
		Query()
	n, err := r.conn.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("update topic position: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("topic %s: %w", id, apperrors.ErrNotFound)
	}
	return nil
}
