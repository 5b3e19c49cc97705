package service

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/rl1809/smart-pos/internal/port"
)

// loadCollection reads and decodes a whole collection. A missing or empty
// value is an empty collection.
func loadCollection[T any](ctx context.Context, store port.CollectionStore, name string) ([]T, error) {
	raw, ok, err := store.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	items := []T{}
	if !ok || raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if items == nil {
		// stored "null"
		items = []T{}
	}
	return items, nil
}

func saveCollection[T any](ctx context.Context, store port.CollectionStore, name string, items []T) error {
	if items == nil {
		items = []T{}
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}
	if err := store.Set(ctx, name, string(raw)); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	return nil
}
