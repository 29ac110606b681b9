// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import "errors"

var (
	// ErrNotFound is returned when a thesis id is not in the corpus.
	ErrNotFound = errors.New("thesis not found")

	// ErrNotSearchable is returned when a thesis lacks a title or body.
	ErrNotSearchable = errors.New("thesis needs a title and a body")
)
