package store

import (
	"strings"

	"github.com/rcliao/studylog/internal/model"
)

// Filter returns the entries of the given category whose text or translation
// contains query, case-insensitively. An empty query matches everything and
// category "all" (or "") matches every type. Order is preserved.
func Filter(entries []model.StudyEntry, query, category string) []model.StudyEntry {
	q := strings.ToLower(query)
	anyType := category == "" || category == model.CategoryAll

	out := make([]model.StudyEntry, 0, len(entries))
	for _, e := range entries {
		if !anyType && string(e.Type) != category {
			continue
		}
		if q != "" &&
			!strings.Contains(strings.ToLower(e.Text), q) &&
			!strings.Contains(strings.ToLower(e.Translation), q) {
			continue
		}
		out = append(out, e)
	}
	return out
}
