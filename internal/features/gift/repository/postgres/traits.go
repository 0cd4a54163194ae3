package postgres

import (
	"encoding/json"
	"fmt"

	"gift-collectibles-backend/internal/features/gift/models"
)

// Traits are stored as JSONB columns; the catalog payload inside them stays
// opaque to the database.

func marshalTraits(c *models.Collectible) (model, backdrop, pattern []byte, err error) {
	if model, err = json.Marshal(c.Model); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal model trait: %w", err)
	}
	if backdrop, err = json.Marshal(c.Backdrop); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal backdrop trait: %w", err)
	}
	if pattern, err = json.Marshal(c.Pattern); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to marshal pattern trait: %w", err)
	}
	return model, backdrop, pattern, nil
}

func unmarshalTraits(c *models.Collectible, model, backdrop, pattern []byte) error {
	if err := json.Unmarshal(model, &c.Model); err != nil {
		return fmt.Errorf("failed to unmarshal model trait: %w", err)
	}
	if err := json.Unmarshal(backdrop, &c.Backdrop); err != nil {
		return fmt.Errorf("failed to unmarshal backdrop trait: %w", err)
	}
	if err := json.Unmarshal(pattern, &c.Pattern); err != nil {
		return fmt.Errorf("failed to unmarshal pattern trait: %w", err)
	}
	return nil
}
