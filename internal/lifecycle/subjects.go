package lifecycle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/generation"
	"github.com/learnify/learnify/internal/store"
)

const defaultPublicLimit = 50

// CreateSubject creates an empty subject owned by userID.
func (m *Manager) CreateSubject(ctx context.Context, userID, title, description string, isPublic bool) (*store.Subject, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("subject title is required: %w", apperrors.ErrValidation)
	}
	if err := checkTitle("subject title", title); err != nil {
		return nil, err
	}

	s := &store.Subject{
		ID:          uuid.NewString(),
		OwnerID:     userID,
		Title:       title,
		Description: strings.TrimSpace(description),
		IsPublic:    isPublic,
	}
	if err := m.store.Repos().Subjects.Create(ctx, s); err != nil {
		return nil, err
	}
	return s, nil
}

// GetSubject returns a subject readable by userID.
func (m *Manager) GetSubject(ctx context.Context, userID, subjectID string) (*store.Subject, error) {
	return readableSubject(ctx, m.store.Repos(), userID, subjectID)
}

// ListSubjects returns the subjects owned by userID, newest first.
func (m *Manager) ListSubjects(ctx context.Context, userID string) ([]store.Subject, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return m.store.Repos().Subjects.ListByOwner(ctx, userID)
}

// ListPublicSubjects returns public subjects of all users, newest first.
func (m *Manager) ListPublicSubjects(ctx context.Context, limit int) ([]store.Subject, error) {
	if limit <= 0 {
		limit = defaultPublicLimit
	}
	return m.store.Repos().Subjects.ListPublic(ctx, limit)
}

// DeleteSubject removes a subject with all of its topics, edges and content.
func (m *Manager) DeleteSubject(ctx context.Context, userID, subjectID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return m.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := ownedSubject(ctx, r, userID, subjectID); err != nil {
			return err
		}
		return r.Subjects.Delete(ctx, subjectID)
	})
}

// SetSubjectVisibility publishes or unpublishes a subject.
func (m *Manager) SetSubjectVisibility(ctx context.Context, userID, subjectID string, public bool) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return m.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := ownedSubject(ctx, r, userID, subjectID); err != nil {
			return err
		}
		return r.Subjects.SetPublic(ctx, subjectID, public)
	})
}

// GetSubjectGraph returns a subject with its topics and edges. Owners can
// always read; anyone, including anonymous callers, can read public subjects.
func (m *Manager) GetSubjectGraph(ctx context.Context, userID, subjectID string) (*SubjectGraph, error) {
	r := m.store.Repos()
	s, err := readableSubject(ctx, r, userID, subjectID)
	if err != nil {
		return nil, err
	}
	_, topics, edges, err := loadGraph(ctx, r, subjectID)
	if err != nil {
		return nil, err
	}
	if topics == nil {
		topics = []store.Topic{}
	}
	if edges == nil {
		edges = []store.TopicEdge{}
	}
	return &SubjectGraph{Subject: *s, Topics: topics, Edges: edges}, nil
}

// GetTopicContent returns the stored lesson of a topic, or NotFound when
// it has not been generated yet.
func (m *Manager) GetTopicContent(ctx context.Context, userID, topicID string) (*TopicContent, error) {
	r := m.store.Repos()
	t, err := r.Topics.Get(ctx, topicID)
	if err != nil {
		return nil, err
	}
	if _, err := readableSubject(ctx, r, userID, t.SubjectID); err != nil {
		return nil, fmt.Errorf("topic %s: %w", topicID, apperrors.ErrNotFound)
	}

	c, err := r.Contents.Get(ctx, topicID)
	if err != nil {
		return nil, err
	}
	var lesson generation.LessonPayload
	if err := json.Unmarshal([]byte(c.ContentJSON), &lesson); err != nil {
		return nil, fmt.Errorf("decode stored lesson for topic %s: %w", topicID, err)
	}
	return &TopicContent{TopicID: topicID, Status: t.Status, Lesson: &lesson, UpdatedAt: c.UpdatedAt}, nil
}
