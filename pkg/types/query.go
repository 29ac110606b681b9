// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"fmt"
	"strings"
)

// Field scopes keyword matching to part of a thesis.
type Field int

const (
	// FieldAny matches against title and body together.
	FieldAny Field = iota
	FieldTitle
	FieldBody
)

// String returns the wire name of the field ("" for FieldAny).
func (f Field) String() string {
	switch f {
	case FieldTitle:
		return "title"
	case FieldBody:
		return "body"
	default:
		return ""
	}
}

// ValidationError reports an untrusted parameter outside its allowed set.
type ValidationError struct {
	Param string
	Value string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q", e.Param, e.Value)
}

// ParseField converts an untrusted field parameter. The empty string means
// FieldAny; anything other than "title" or "body" is rejected.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return FieldAny, nil
	case "title":
		return FieldTitle, nil
	case "body":
		return FieldBody, nil
	default:
		return FieldAny, &ValidationError{Param: "field", Value: s}
	}
}

// SearchQuery holds the parameters of a local thesis search.
type SearchQuery struct {
	Keyword string
	LabID   int64
	Field   Field
}

// HasLab reports whether the query filters on a real lab.
func (q SearchQuery) HasLab() bool {
	return q.LabID > 0 && q.LabID != NoLab
}

// Active reports whether the query constrains the listing at all. An
// inactive query yields the default, unfiltered listing rather than an
// empty result.
func (q SearchQuery) Active() bool {
	return strings.TrimSpace(q.Keyword) != "" || q.HasLab() || q.Field != FieldAny
}
