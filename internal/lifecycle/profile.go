package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/learnify/learnify/internal/apperrors"
	"github.com/learnify/learnify/internal/store"
)

// GetProfile returns the user's profile. Users who never saved one get an
// empty profile.
func (m *Manager) GetProfile(ctx context.Context, userID string) (*store.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	return loadProfile(ctx, m.store.Repos(), userID)
}

// UpdateProfile replaces the learning preferences. The stored API key is
// left untouched.
func (m *Manager) UpdateProfile(ctx context.Context, userID string, u ProfileUpdate) (*store.Profile, error) {
	if err := requireUser(userID); err != nil {
		return nil, err
	}
	var out *store.Profile
	err := m.store.WithTx(ctx, func(r store.Repos) error {
		p, err := loadProfile(ctx, r, userID)
		if err != nil {
			return err
		}
		p.FullName = strings.TrimSpace(u.FullName)
		p.Occupation = strings.TrimSpace(u.Occupation)
		p.EducationLevel = strings.TrimSpace(u.EducationLevel)
		p.LearningStyle = strings.TrimSpace(u.LearningStyle)
		p.LearningSchedule = strings.TrimSpace(u.LearningSchedule)
		out = p
		return r.Profiles.Upsert(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// SetAPIKey stores the user's generation credential, encrypted.
func (m *Manager) SetAPIKey(ctx context.Context, userID, apiKey string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return fmt.Errorf("api key is empty: %w", apperrors.ErrValidation)
	}
	sealed, err := m.cipher.Encrypt(apiKey)
	if err != nil {
		return fmt.Errorf("encrypt api key: %w", err)
	}
	err = m.setEncryptedKey(ctx, userID, sealed)
	if err == nil {
		m.logger.Info("api key stored", "user_id", userID)
	}
	return err
}

// ClearAPIKey removes the stored credential.
func (m *Manager) ClearAPIKey(ctx context.Context, userID string) error {
	if err := requireUser(userID); err != nil {
		return err
	}
	return m.setEncryptedKey(ctx, userID, "")
}

func (m *Manager) setEncryptedKey(ctx context.Context, userID, sealed string) error {
	return m.store.WithTx(ctx, func(r store.Repos) error {
		p, err := loadProfile(ctx, r, userID)
		if err != nil {
			return err
		}
		p.EncryptedAPIKey = sealed
		return r.Profiles.Upsert(ctx, p)
	})
}

func loadProfile(ctx context.Context, r store.Repos, userID string) (*store.Profile, error) {
	p, err := r.Profiles.Get(ctx, userID)
	if errors.Is(err, apperrors.ErrNotFound) {
		return &store.Profile{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}
