package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const siteSettingsKey = "site"

// GetSettingsDoc retrieves the flat site settings document. A missing row is
// an empty document, not an error.
func (s *Store) GetSettingsDoc(ctx context.Context) (map[string]string, time.Time, error) {
	var row struct {
		Doc       []byte    `db:"doc"`
		UpdatedAt time.Time `db:"updated_at"`
	}

	err := s.db.GetContext(ctx, &row,
		"SELECT doc, updated_at FROM settings WHERE key = $1", siteSettingsKey)
	if err == sql.ErrNoRows {
		return map[string]string{}, time.Time{}, nil
	}
	if err != nil {
		return nil, time.Time{}, err
	}

	doc := map[string]string{}
	if err := json.Unmarshal(row.Doc, &doc); err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to decode settings doc: %w", err)
	}
	return doc, row.UpdatedAt, nil
}

// MergeSettingsDoc merges patch into the site settings document, last writer
// wins per key. Keys absent from the patch are left untouched.
func (s *Store) MergeSettingsDoc(ctx context.Context, patch map[string]string) error {
	if len(patch) == 0 {
		return nil
	}

	doc, err := json.Marshal(patch)
	if err != nil {
		return fmt.Errorf("failed to encode settings patch: %w", err)
	}

	query := `
		INSERT INTO settings (key, doc, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (key) DO UPDATE
		SET doc = settings.doc || EXCLUDED.doc, updated_at = NOW()`

	_, err = s.db.ExecContext(ctx, query, siteSettingsKey, doc)
	return err
}
