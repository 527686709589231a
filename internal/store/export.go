package store

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/rcliao/studylog/internal/model"
)

// ExportFilename is the fixed name offered for downloads.
const ExportFilename = "lang_study.json"

var (
	// ErrInvalidImport is returned when the import file is not valid JSON.
	ErrInvalidImport = errors.New("invalid file format, please upload a valid JSON file")
	// ErrNotArray is returned when the import file's top-level value is not an array.
	ErrNotArray = errors.New("invalid file format, expected a JSON array of entries")
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Export encodes entries as an indented JSON array.
func Export(entries []model.StudyEntry) ([]byte, error) {
	if entries == nil {
		entries = []model.StudyEntry{}
	}
	b, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export: %w", err)
	}
	return b, nil
}

// ParseImport decodes an export file. Only the top-level shape is checked:
// elements with missing or mistyped fields are kept with zero values.
func ParseImport(data []byte) ([]model.StudyEntry, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !json.Valid(data) {
		return nil, ErrInvalidImport
	}
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	entries := make([]model.StudyEntry, 0, len(elems))
	for _, raw := range elems {
		entries = append(entries, decodeEntry(raw))
	}
	return entries, nil
}

// decodeEntry decodes one element, falling back to field-by-field decoding
// so a single bad field does not discard the others.
func decodeEntry(raw json.RawMessage) model.StudyEntry {
	var e model.StudyEntry
	if err := json.Unmarshal(raw, &e); err == nil {
		return e
	}

	e = model.StudyEntry{}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return e
	}

	e.ID = stringField(fields, "id")
	e.Text = stringField(fields, "text")
	e.Translation = stringField(fields, "translation")
	e.Type = model.EntryType(stringField(fields, "type"))
	e.Notes = stringField(fields, "notes")
	if v, ok := fields["date"]; ok {
		var t time.Time
		if json.Unmarshal(v, &t) == nil {
			e.Date = t
		}
	}
	return e
}

func stringField(fields map[string]json.RawMessage, name string) string {
	v, ok := fields[name]
	if !ok {
		return ""
	}
	var s string
	if json.Unmarshal(v, &s) != nil {
		return ""
	}
	return s
}
