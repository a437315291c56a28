package lifecycle

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// CompleteTopic marks a topic COMPLETED from any status and unlocks the
// topics that depended on it, in the same transaction. It returns the IDs
// that became AVAILABLE.
func (m *Manager) CompleteTopic(ctx context.Context, userID, topicID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var unlocked []string
	err := m.store.WithTx(ctx, func(r store.Repos) error {
		t, _, err := ownedTopic(ctx, r, userID, topicID)
		if err != nil {
			return err
		}
		if t.Status != topicgraph.StatusCompleted {
			if err := r.Topics.SetStatus(ctx, topicgraph.StatusCompleted, t.ID); err != nil {
				return err
			}
		}
		unlocked, err = unlockSubject(ctx, r, t.SubjectID)
		return err
	})
	if err != nil {
		return nil, err
	}

	m.logger.Info("topic completed", "user_id", userID, "topic_id", topicID, "unlocked", len(unlocked))
	return unlocked, nil
}

// LinkTopics adds parent as a prerequisite of child. Both topics must belong
// to the same subject and the new edge must not close a cycle. An AVAILABLE
// child whose new parent is not yet COMPLETED goes back to LOCKED; children
// with content keep their status. Linking an existing edge is a no-op.
func (m *Manager) LinkTopics(ctx context.Context, userID, parentID, childID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	if parentID == childID {
		return fmt.Errorf("topic %s: %w", parentID, apperrors.ErrSelfReference)
	}

	return m.store.WithTx(ctx, func(r store.Repos) error {
		parent, _, err := ownedTopic(ctx, r, userID, parentID)
		if err != nil {
			return err
		}
		child, _, err := ownedTopic(ctx, r, userID, childID)
		if err != nil {
			return err
		}
		if parent.SubjectID != child.SubjectID {
			return fmt.Errorf("link %s -> %s: %w", parentID, childID, apperrors.ErrCrossSubject)
		}

		exists, err := r.Edges.Exists(ctx, parentID, childID)
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		g, _, _, err := loadGraph(ctx, r, parent.SubjectID)
		if err != nil {
			return err
		}
		if g.WouldCycle(parentID, childID) {
			return fmt.Errorf("link %s -> %s: %w", parentID, childID, apperrors.ErrCycleDetected)
		}

		edge := &store.TopicEdge{ParentID: parentID, ChildID: childID, SubjectID: parent.SubjectID}
		if err := r.Edges.Create(ctx, edge); err != nil {
			return err
		}

		if child.Status == topicgraph.StatusAvailable && parent.Status != topicgraph.StatusCompleted {
			return r.Topics.SetStatus(ctx, topicgraph.StatusLocked, childID)
		}
		return nil
	})
}

// UnlinkTopics removes a prerequisite edge and unlocks whatever it was
// holding back. It returns the IDs that became AVAILABLE.
func (m *Manager) UnlinkTopics(ctx context.Context, userID, parentID, childID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var unlocked []string
	err := m.store.WithTx(ctx, func(r store.Repos) error {
		child, _, err := ownedTopic(ctx, r, userID, childID)
		if err != nil {
			return err
		}
		if err := r.Edges.Delete(ctx, parentID, childID); err != nil {
			return err
		}
		unlocked, err = unlockSubject(ctx, r, child.SubjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// AddTopic creates a topic without prerequisites in an existing subject.
func (m *Manager) AddTopic(ctx context.Context, userID, subjectID, title, description string) (*store.Topic, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, fmt.Errorf("topic title is required: %w", apperrors.ErrValidation)
	}
	if err := checkTitle("topic title", title); err != nil {
		return nil, err
	}

	t := &store.Topic{
		ID:          uuid.NewString(),
		SubjectID:   subjectID,
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      topicgraph.InitialStatus(0),
	}
	err := m.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := ownedSubject(ctx, r, userID, subjectID); err != nil {
			return err
		}
		return r.Topics.Create(ctx, t)
	})
	if err != nil {
		return nil, err
	}
	return t, nil
}

// MoveTopic stores a manual layout position for a topic.
func (m *Manager) MoveTopic(ctx context.Context, userID, topicID string, x, y float64) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return m.store.WithTx(ctx, func(r store.Repos) error {
		if _, _, err := ownedTopic(ctx, r, userID, topicID); err != nil {
			return err
		}
		return r.Topics.SetPosition(ctx, topicID, x, y)
	})
}
