package settings

import (
	"context"
	"testing"
	"time"

	"storefront/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSettingsStore struct {
	doc       map[string]string
	updatedAt time.Time
}

func newMemSettingsStore() *memSettingsStore {
	return &memSettingsStore{doc: map[string]string{}}
}

func (s *memSettingsStore) GetSettingsDoc(ctx context.Context) (map[string]string, time.Time, error) {
	out := make(map[string]string, len(s.doc))
	for k, v := range s.doc {
		out[k] = v
	}
	return out, s.updatedAt, nil
}

func (s *memSettingsStore) MergeSettingsDoc(ctx context.Context, patch map[string]string) error {
	for k, v := range patch {
		s.doc[k] = v
	}
	s.updatedAt = time.Now()
	return nil
}

func TestFromDocSplitsReservedAndOverrides(t *testing.T) {
	updatedAt := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	doc := map[string]string{
		models.SettingLogoText:  "CyberBee",
		models.SettingHeroTitle: "Welcome",
		"heroTitle_color":       "#ff0000",
		"footerText":            "custom footer",
	}

	s := FromDoc(doc, updatedAt)

	assert.Equal(t, "CyberBee", s.LogoText)
	assert.Equal(t, "Welcome", s.HeroTitle)
	assert.Equal(t, updatedAt, s.UpdatedAt)
	require.Len(t, s.Overrides, 2)
	assert.Equal(t, "#ff0000", s.Overrides["heroTitle_color"])
	assert.Equal(t, "custom footer", s.Overrides["footerText"])
}

func TestApplyMergesLastWriterWins(t *testing.T) {
	store := newMemSettingsStore()
	svc := NewService(store)
	ctx := context.Background()

	require.NoError(t, svc.Apply(ctx, map[string]string{
		models.SettingLogoText: "First",
		"heroTitle_color":      "#111111",
	}))
	require.NoError(t, svc.Apply(ctx, map[string]string{
		models.SettingLogoText: "Second",
	}))

	s, err := svc.Get(ctx)
	require.NoError(t, err)

	assert.Equal(t, "Second", s.LogoText)
	assert.Equal(t, "#111111", s.Overrides["heroTitle_color"], "untouched keys keep their value")
}

func TestApplySkipsEmptyKeys(t *testing.T) {
	store := newMemSettingsStore()
	svc := NewService(store)

	require.NoError(t, svc.Apply(context.Background(), map[string]string{"": "junk"}))
	assert.Empty(t, store.doc)
}
