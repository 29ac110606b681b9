// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"

	"github.com/labthesis/thesis-engine/pkg/types"
)

// ImportJSON reads a JSON object mapping lab slug to vector and stores
// each vector. Labs are written in slug order; it returns the number of
// vectors stored.
func ImportJSON(ctx context.Context, store Store, r io.Reader) (int, error) {
	var m map[string][]float32
	if err := json.NewDecoder(r).Decode(&m); err != nil {
		return 0, fmt.Errorf("parsing feature JSON: %w", err)
	}
	slugs := make([]string, 0, len(m))
	for slug := range m {
		slugs = append(slugs, slug)
	}
	sort.Strings(slugs)

	for i, slug := range slugs {
		if err := store.Put(ctx, slug, types.FeatureVector(m[slug])); err != nil {
			return i, err
		}
	}
	return len(slugs), nil
}

// ExportJSON writes every stored vector as a JSON object keyed by slug.
func ExportJSON(ctx context.Context, store Store, w io.Writer) error {
	all, err := store.All(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(all); err != nil {
		return fmt.Errorf("marshaling feature JSON: %w", err)
	}
	return nil
}
