// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package features

import "errors"

var (
	// ErrEmptyCorpus is returned when there is no text to extract from.
	ErrEmptyCorpus = errors.New("no text to extract features from")

	// ErrDimensionMismatch is returned when a vector does not have the
	// store's dimension.
	ErrDimensionMismatch = errors.New("feature vector dimension mismatch")

	// ErrStoreClosed is returned by operations on a closed store.
	ErrStoreClosed = errors.New("feature store is closed")
)
