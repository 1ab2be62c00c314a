package domain

import (
	"fmt"
	"strings"
	"time"
)

// FilterAll matches every value of a filter dimension.
const FilterAll = "all"

// DateLayout is the wire format of calendar dates in filters.
const DateLayout = "2006-01-02"

// TypeFilter selects transactions by type; FilterAll or empty selects all.
type TypeFilter string

// ParseTypeFilter accepts "all", "todos", an empty string, or any value
// accepted by ParseTransactionType.
func ParseTypeFilter(s string) (TypeFilter, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", FilterAll, "todos":
		return TypeFilter(FilterAll), nil
	}

	t, err := ParseTransactionType(s)
	if err != nil {
		return "", err
	}
	return TypeFilter(t), nil
}

func (f TypeFilter) transactionType() (TransactionType, bool) {
	if f == "" || f == FilterAll {
		return "", false
	}
	return TransactionType(f), true
}

// ParseCategoryFilter maps "all", "todas" and empty input to FilterAll and
// keeps any other label verbatim.
func ParseCategoryFilter(s string) string {
	switch strings.TrimSpace(s) {
	case "", FilterAll, "todas":
		return FilterAll
	default:
		return s
	}
}

// ParseDate parses an optional YYYY-MM-DD calendar date and returns the
// first instant of that day in loc. Empty input yields nil.
func ParseDate(s string, loc *time.Location) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	parsed, err := time.Parse(DateLayout, s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	y, m, day := parsed.Date()
	d := startOfDay(y, m, day, loc)
	return &d, nil
}

// Criteria is the active combination of type, category and date filters.
// DateStart and DateEnd are calendar dates: only their year, month and day
// are used, interpreted in Location.
type Criteria struct {
	DateStart *time.Time
	DateEnd   *time.Time
	Location  *time.Location
	Type      TypeFilter
	Category  string
}

// Validate reports an inverted date range. It is a validation state:
// callers keep working and surface the message to the user.
func (c Criteria) Validate() error {
	if c.DateStart == nil || c.DateEnd == nil {
		return nil
	}
	if c.StartBound().After(c.EndBound()) {
		return ErrInvertedDateRange
	}
	return nil
}

// Effective returns the criteria actually used for aggregation. An inverted
// date range is treated as unbounded until the user corrects it.
func (c Criteria) Effective() Criteria {
	if c.Validate() != nil {
		c.DateStart = nil
		c.DateEnd = nil
	}
	return c
}

// Loc returns the location in which dates are evaluated.
func (c Criteria) Loc() *time.Location {
	if c.Location == nil {
		return time.UTC
	}
	return c.Location
}

// StartBound is the first instant included by DateStart. It is the zero time
// when DateStart is unset.
func (c Criteria) StartBound() time.Time {
	if c.DateStart == nil {
		return time.Time{}
	}
	y, m, d := c.DateStart.Date()
	return startOfDay(y, m, d, c.Loc())
}

// EndBound is the last instant included by DateEnd: the start of the
// following day minus one millisecond. It is the zero time when DateEnd is
// unset.
func (c Criteria) EndBound() time.Time {
	if c.DateEnd == nil {
		return time.Time{}
	}
	y, m, d := c.DateEnd.Date()
	y, m, d = time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC).Date()
	return startOfDay(y, m, d, c.Loc()).Add(-time.Millisecond)
}

// Matches reports whether t passes every predicate of c.
func (c Criteria) Matches(t *Transaction) bool {
	if want, ok := c.Type.transactionType(); ok && t.Type != want {
		return false
	}
	if c.Category != "" && c.Category != FilterAll && t.Category != c.Category {
		return false
	}
	if c.DateStart != nil && t.CreatedAt.Before(c.StartBound()) {
		return false
	}
	if c.DateEnd != nil && t.CreatedAt.After(c.EndBound()) {
		return false
	}
	return true
}

// Filter returns the transactions matching c, preserving input order.
// The input slice is never modified.
func Filter(transactions []*Transaction, c Criteria) []*Transaction {
	out := make([]*Transaction, 0, len(transactions))
	for _, t := range transactions {
		if c.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// startOfDay returns the first instant whose local date in loc is y-m-d.
// Where a DST jump skips local midnight that is the end of the gap, not the
// normalized time.Date result, which falls on the previous day.
func startOfDay(y int, m time.Month, d int, loc *time.Location) time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, loc)
	want := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	for {
		ty, tm, td := t.Date()
		if !time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC).Before(want) {
			return t
		}
		_, end := t.ZoneBounds()
		if end.IsZero() || !end.After(t) {
			return t
		}
		t = end
	}
}
