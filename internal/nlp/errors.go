// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package nlp

import (
	"errors"
	"fmt"
)

var (
	// ErrExternalUnavailable is returned when a required external tool
	// cannot be found or started.
	ErrExternalUnavailable = errors.New("external tool unavailable")

	// ErrSegmentationUnavailable is returned when the segmenter or its
	// dictionary cannot be used.
	ErrSegmentationUnavailable = fmt.Errorf("segmentation: %w", ErrExternalUnavailable)

	// ErrSummarizationFailed is matched by every *SummarizationError.
	ErrSummarizationFailed = errors.New("summarization failed")
)

// maxInputEcho bounds how much of the offending input an error carries.
const maxInputEcho = 200

// SummarizationError reports diagnostic output produced by the summarizer.
type SummarizationError struct {
	Detail string
	Input  string
}

func (e *SummarizationError) Error() string {
	return fmt.Sprintf("summarization failed: %s", e.Detail)
}

// Is makes errors.Is(err, ErrSummarizationFailed) true.
func (e *SummarizationError) Is(target error) bool {
	return target == ErrSummarizationFailed
}
