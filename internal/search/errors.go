// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package search

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrFetchFailed is matched by every *FetchError.
	ErrFetchFailed = errors.New("fetch failed")

	// ErrSourceFormatChanged is returned when a successful result page no
	// longer contains the result container the selector contract names.
	ErrSourceFormatChanged = errors.New("result page format changed")
)

// FetchError reports a network or HTTP failure for one query. It carries
// the query so a batch caller can rerun it.
type FetchError struct {
	Query  []string
	URL    string
	Status int
	Err    error
}

func (e *FetchError) Error() string {
	q := strings.Join(e.Query, " ")
	if e.Err != nil {
		return fmt.Sprintf("fetching %q: %v", q, e.Err)
	}
	return fmt.Sprintf("fetching %q: HTTP %d", q, e.Status)
}

func (e *FetchError) Unwrap() error { return e.Err }

// Is makes errors.Is(err, ErrFetchFailed) true.
func (e *FetchError) Is(target error) bool { return target == ErrFetchFailed }

// Skip records a result item that was left out because it was malformed.
type Skip struct {
	Index  int    `json:"index" yaml:"index"`
	Reason string `json:"reason" yaml:"reason"`
}
