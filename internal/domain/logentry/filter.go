package logentry

import "strings"

// All matches every level or category.
const All = "all"

// Filter is the log viewer predicate. Empty Level or Category means all.
type Filter struct {
	Search   string
	Level    Level
	Category Category
}

// NewFilter parses raw query values. "" and "all" disable a predicate.
// search is matched verbatim, so surrounding spaces are significant.
func NewFilter(search, level, category string) (Filter, error) {
	f := Filter{Search: search}
	if level != "" && level != All {
		l, err := ParseLevel(level)
		if err != nil {
			return Filter{}, err
		}
		f.Level = l
	}
	if category != "" && category != All {
		c, err := ParseCategory(category)
		if err != nil {
			return Filter{}, err
		}
		f.Category = c
	}
	return f, nil
}

// Matches reports whether e passes all three predicates.
func (f Filter) Matches(e Entry) bool {
	if f.Level != "" && e.Level() != f.Level {
		return false
	}
	if f.Category != "" && e.Category() != f.Category {
		return false
	}
	if f.Search == "" {
		return true
	}
	q := strings.ToLower(f.Search)
	return strings.Contains(strings.ToLower(e.Message()), q) ||
		strings.Contains(strings.ToLower(e.Details()), q) ||
		strings.Contains(strings.ToLower(e.Email()), q)
}

// Apply returns the matching entries in their original order.
func (f Filter) Apply(entries []Entry) []Entry {
	out := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if f.Matches(e) {
			out = append(out, e)
		}
	}
	return out
}

// Summary counts entries per level.
type Summary struct {
	Total   int
	Error   int
	Warning int
	Info    int
	Success int
}

// Summarize counts over entries. Callers pass the unfiltered set.
func Summarize(entries []Entry) Summary {
	s := Summary{Total: len(entries)}
	for _, e := range entries {
		switch e.Level() {
		case LevelError:
			s.Error++
		case LevelWarning:
			s.Warning++
		case LevelInfo:
			s.Info++
		case LevelSuccess:
			s.Success++
		}
	}
	return s
}
