package lifecycle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/learnify/learnify/internal/apperrors"
)

func TestProfile_DefaultsToEmpty(t *testing.T) {
	f := newFixture(t)
	p, err := f.m.GetProfile(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, alice, p.UserID)
	assert.False(t, p.HasAPIKey())
}

func TestProfile_UpdateKeepsKey(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)

	p, err := f.m.UpdateProfile(f.ctx, alice, ProfileUpdate{
		FullName:      " Alice ",
		Occupation:    "Nurse",
		LearningStyle: "visual",
	})
	require.NoError(t, err)
	assert.Equal(t, "Alice", p.FullName)

	stored, err := f.m.GetProfile(f.ctx, alice)
	require.NoError(t, err)
	assert.Equal(t, "Nurse", stored.Occupation)
	assert.True(t, stored.HasAPIKey())
}

func TestAPIKey_EncryptedAtRest(t *testing.T) {
	f := newFixture(t)
	f.withKey(alice)

	p, err := f.store.Repos().Profiles.Get(f.ctx, alice)
	require.NoError(t, err)
	assert.NotEmpty(t, p.EncryptedAPIKey)
	assert.NotContains(t, p.EncryptedAPIKey, "sk-test-key")

	require.NoError(t, f.m.ClearAPIKey(f.ctx, alice))
	p, err = f.store.Repos().Profiles.Get(f.ctx, alice)
	require.NoError(t, err)
	assert.False(t, p.HasAPIKey())

	assert.ErrorIs(t, f.m.SetAPIKey(f.ctx, alice, "   "), apperrors.ErrValidation)
}
