package lifecycle

import (
	"context"

	"github.com/learnify/learnify/internal/store"
	"github.com/learnify/learnify/internal/topicgraph"
)

// UnlockReachableTopics moves every LOCKED topic of the subject whose
// prerequisites are all COMPLETED to AVAILABLE and returns their IDs in
// topological order. Running it again without other changes returns nothing.
func (m *Manager) UnlockReachableTopics(ctx context.Context, userID, subjectID string) ([]string, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}

	var unlocked []string
	err := m.store.WithTx(ctx, func(r store.Repos) error {
		if _, err := ownedSubject(ctx, r, userID, subjectID); err != nil {
			return err
		}
		var err error
		unlocked, err = unlockSubject(ctx, r, subjectID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return unlocked, nil
}

// unlockSubject applies the unlock rule inside an existing transaction.
func unlockSubject(ctx context.Context, r store.Repos, subjectID string) ([]string, error) {
	g, _, _, err := loadGraph(ctx, r, subjectID)
	if err != nil {
		return nil, err
	}
	ids := g.Unlockable()
	if err := r.Topics.SetStatus(ctx, topicgraph.StatusAvailable, ids...); err != nil {
		return nil, err
	}
	return ids, nil
}
