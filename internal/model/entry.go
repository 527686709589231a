// Package model defines the core study-log data types.
package model

import "time"

// EntryType is the closed classification of a study entry.
type EntryType string

const (
	TypeWord     EntryType = "word"
	TypeIdiom    EntryType = "idiom"
	TypeSentence EntryType = "sentence"
)

// CategoryAll matches every entry type when filtering.
const CategoryAll = "all"

// StudyEntry is one user-recorded study item.
type StudyEntry struct {
	ID          string    `json:"id"`
	Text        string    `json:"text"`
	Translation string    `json:"translation"`
	Type        EntryType `json:"type"`
	Date        time.Time `json:"date"`
	Notes       string    `json:"notes,omitempty"`
}

// ChartDataPoint is one day of the activity chart. Date is month-day ("01-02").
type ChartDataPoint struct {
	Date  string `json:"date"`
	Count int    `json:"count"`
}

// Suggestion is an externally generated translation proposal.
type Suggestion struct {
	Translation string `json:"translation"`
	Example     string `json:"example"`
	Notes       string `json:"notes,omitempty"`
}

// Stats holds the quick numbers shown next to the entry form.
type Stats struct {
	Total int     `json:"total"`
	Today int     `json:"today"`
	Avg   float64 `json:"avg"`
}

// ValidTypes are the allowed entry types, in display order.
var ValidTypes = []EntryType{TypeWord, TypeIdiom, TypeSentence}

// ParseType reports whether s names a valid entry type.
func ParseType(s string) (EntryType, bool) {
	for _, t := range ValidTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// ValidCategory reports whether s is "all" or a valid entry type.
func ValidCategory(s string) bool {
	if s == CategoryAll {
		return true
	}
	_, ok := ParseType(s)
	return ok
}
