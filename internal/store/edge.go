package store

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/learnify/learnify/internal/apperrors"
)

var edgeColumns = []string{"parent_topic_id", "child_topic_id", "subject_id", "label"}

type edgeRepo struct {
	conn conn
}

func (r *edgeRepo) Create(ctx context.Context, e *TopicEdge) error {
	query, args := r.conn.sql().Insert(TopicEdgesTable.Name).
		Columns(edgeColumns...).
		Values(e.ParentID, e.ChildID, e.SubjectID, e.Label).
		Query()
	if _, err := r.conn.exec(ctx, query, args); err != nil {
		return fmt.Errorf("insert edge: %w", err)
	}
	return nil
}

func (r *edgeRepo) Exists(ctx context.Context, parentID, childID string) (bool, error) {
	query, args := r.conn.sql().Select(edgeColumns...).
		From(entsql.Table(TopicEdgesTable.Name)).
		Where(entsql.And(
			entsql.EQ("parent_topic_id", parentID),
			entsql.EQ("child_topic_id", childID),
		)).
		Query()
	var out []TopicEdge
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return false, fmt.Errorf("query edge: %w", err)
	}
	return len(out) > 0, nil
}

func (r *edgeRepo) Delete(ctx context.Context, parentID, childID string) error {
	query, args := r.conn.sql().Delete(TopicEdgesTable.Name).
		Where(entsql.And(
			entsql.EQ("parent_topic_id", parentID),
			entsql.EQ("child_topic_id", childID),
		)).
		Query()
	n, err := r.conn.exec(ctx, query, args)
	if err != nil {
		return fmt.Errorf("delete edge: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("edge %s -> %s: %w", parentID, childID, apperrors.ErrNotFound)
	}
	return nil
}

func (r *edgeRepo) ListBySubject(ctx context.Context, subjectID string) ([]TopicEdge, error) {
	query, args := r.conn.sql().Select(edgeColumns...).
		From(entsql.Table(TopicEdgesTable.Name)).
		Where(entsql.EQ("subject_id", subjectID)).
		OrderBy("parent_topic_id", "child_topic_id").
		Query()
	var out []TopicEdge
	if err := r.conn.scan(ctx, query, args, &out); err != nil {
		return nil, fmt.Errorf("list edges: %w", err)
	}
	return out, nil
}
