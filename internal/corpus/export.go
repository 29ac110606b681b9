// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package corpus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"go.yaml.in/yaml/v3"
)

// Export formats.
const (
	FormatYAML = "yaml"
	FormatJSON = "json"
)

// Export writes every thesis with its lab slug to w as YAML or JSON.
func (s *Store) Export(ctx context.Context, w io.Writer, format string) error {
	records, err := s.exportRecords(ctx)
	if err != nil {
		return err
	}

	switch format {
	case FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling JSON: %w", err)
		}
	case FormatYAML, "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(records); err != nil {
			return fmt.Errorf("marshaling YAML: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unsupported export format %q", format)
	}
	return nil
}

func (s *Store) exportRecords(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.id, t.title, t.body, t.year, t.author, coalesce(l.slug, ''), coalesce(t.path, ''), t.url, t.access
		 FROM theses t LEFT JOIN labs l ON l.id = t.lab_id
		 ORDER BY t.id`)
	if err != nil {
		return nil, fmt.Errorf("querying for export: %w", err)
	}
	defer rows.Close()

	records := make([]Record, 0)
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Title, &r.Body, &r.Year, &r.Author, &r.Lab, &r.Path, &r.URL, &r.Access); err != nil {
			return nil, fmt.Errorf("scanning export row: %w", err)
		}
		records = append(records, r)
	}
	return records, rows.Err()
}
