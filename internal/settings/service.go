package settings

import (
	"context"
	"time"

	"storefront/internal/models"
	"storefront/internal/util"

	"go.uber.org/zap"
)

// Store is the settings document boundary.
type Store interface {
	GetSettingsDoc(ctx context.Context) (map[string]string, time.Time, error)
	MergeSettingsDoc(ctx context.Context, patch map[string]string) error
}

// Service reads and merges the single site customization document.
type Service struct {
	store  Store
	logger *zap.Logger
}

// NewService creates a new settings service
func NewService(store Store) *Service {
	return &Service{
		store:  store,
		logger: util.GetLogger(),
	}
}

// Get returns the current site settings: typed reserved fields split out,
// everything else collected into the override map.
func (s *Service) Get(ctx context.Context) (*models.SiteSettings, error) {
	doc, updatedAt, err := s.store.GetSettingsDoc(ctx)
	if err != nil {
		return nil, err
	}
	return FromDoc(doc, updatedAt), nil
}

// Apply merges a patch into the settings document, last writer wins per
// key. Keys not present in the patch keep their current value.
func (s *Service) Apply(ctx context.Context, patch map[string]string) error {
	cleaned := make(map[string]string, len(patch))
	for k, v := range patch {
		if k == "" {
			continue
		}
		cleaned[k] = v
	}
	if len(cleaned) == 0 {
		return nil
	}

	if err := s.store.MergeSettingsDoc(ctx, cleaned); err != nil {
		return err
	}

	util.SettingsUpdatesTotal.Inc()
	s.logger.Info("Site settings merged", zap.Int("keys", len(cleaned)))
	return nil
}

// FromDoc converts the flat stored document into the typed settings record.
func FromDoc(doc map[string]string, updatedAt time.Time) *models.SiteSettings {
	out := &models.SiteSettings{UpdatedAt: updatedAt}

	for k, v := range doc {
		switch k {
		case models.SettingBackgroundImage:
			out.BackgroundImage = v
		case models.SettingLogoText:
			out.LogoText = v
		case models.SettingLogoIcon:
			out.LogoIcon = v
		case models.SettingTopBarText:
			out.TopBarText = v
		case models.SettingHeroTitle:
			out.HeroTitle = v
		case models.SettingHeroSubtitle:
			out.HeroSubtitle = v
		case models.SettingHeroButtonText:
			out.HeroButtonText = v
		case models.SettingHeroImage:
			out.HeroImage = v
		default:
			if out.Overrides == nil {
				out.Overrides = map[string]string{}
			}
			out.Overrides[k] = v
		}
	}
	return out
}
