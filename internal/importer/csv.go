// Package importer turns external task sources (CSV uploads, Jira projects)
// into title/description pairs for the estimation pipeline.
package importer

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// TaskImport is one row of imported work, before prediction.
type TaskImport struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// ParseCSV extracts title/description pairs from CSV data. Header matching
// is case-insensitive, fields are trimmed, and blank lines are skipped.
// Rows missing a title or description fail the whole import.
func ParseCSV(data string) ([]TaskImport, error) {
	reader := csv.NewReader(strings.NewReader(data))
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV format: %w", err)
	}
	if len(records) < 1 {
		return nil, fmt.Errorf("invalid CSV format: missing header row")
	}

	titleCol, descriptionCol := -1, -1
	for i, name := range records[0] {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "title":
			titleCol = i
		case "description":
			descriptionCol = i
		}
	}
	if titleCol < 0 || descriptionCol < 0 {
		return nil, fmt.Errorf("invalid CSV format: title and description columns are required")
	}

	imports := make([]TaskImport, 0, len(records)-1)
	for i, record := range records[1:] {
		title := strings.TrimSpace(record[titleCol])
		description := strings.TrimSpace(record[descriptionCol])
		if title == "" || description == "" {
			return nil, fmt.Errorf("invalid CSV format: row %d is missing title or description", i+1)
		}
		imports = append(imports, TaskImport{Title: title, Description: description})
	}

	return imports, nil
}
