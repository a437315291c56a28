package store

import (
	"context"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
)

var contentColumns = []string{"topic_id", "content_json", "created_at", "updated_at"}

type contentRepo struct {
	conn conn
}

func (r *contentRepo) Upsert(ctx context.Context, topicID, contentJSON string) error {
	now := time.Now().UTC()
	query, args := r.conn.sql().Insert(TopicContentsTable.Name).
		Columns(contentColumns...).
		Values(topicID, contentJSON, now, now).
		OnConflict(
			entsql.ConflictColumns("topic_id"),
			entsql.ResolveWith(func(u *entsql.UpdateSet) {
				u.SetExcluded("content_json")
				u.SetExcluded("updated_at")
			}),
		).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("upsert topic content: %w", err)
	}
	return nil
}

func (r *contentRepo) Get(ctx context.Context, topicID string) (*TopicContent, error) {
	query, args := r.conn.sql().Select(contentColumns...).
		From(entsql.Table(TopicContentsTable.Name)).
		Where(entsql.EQ("topic_id", topicID)).
		Query()
	var out []TopicContent
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("query topic content: %w", err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("content for topic %s: %w", topicID, apperrors.ErrNotFound)
	}
	return &out[0], nil
}
