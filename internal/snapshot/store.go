package snapshot

import (
	"context"
	"fmt"

	"github.com/vocabuddy/progress/internal/repository"
)

// Load reads the named store value and decodes it into v. It reports false
// when nothing has been persisted under name yet.
func Load(ctx context.Context, local repository.LocalStore, name string, schema Schema, v any) (bool, error) {
	raw, found, err := local.Get(ctx, name)
	if err != nil {
		return false, fmt.Errorf("read %s: %w", name, err)
	}
	if !found {
		return false, nil
	}
	if err := schema.Decode(raw, v); err != nil {
		return false, fmt.Errorf("load %s: %w", name, err)
	}
	return true, nil
}

// Save encodes v at the current schema version and writes it under name.
func Save(ctx context.Context, local repository.LocalStore, name string, schema Schema, v any) error {
	raw, err := schema.Encode(v)
	if err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}
	if err := local.Set(ctx, name, raw); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
