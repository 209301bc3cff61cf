// Package daterange resolves from/to expressions such as "today",
// "3 days ago" or "2025-01-02" into wall-clock bounds.
package daterange

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/tj/go-naturaldate"

	"github.com/Zuo-Peng/ai-session-log/internal/model"
)

// Range holds inclusive bounds as zone-less wall-clock times (UTC location).
// A nil bound is open.
type Range struct {
	From *time.Time
	To   *time.Time
}

func (r Range) IsZero() bool { return r.From == nil && r.To == nil }

// Contains reports whether the wall clock of t lies within r.
func (r Range) Contains(t time.Time) bool {
	w := model.WallClock(t)
	if r.From != nil && w.Before(*r.From) {
		return false
	}
	if r.To != nil && w.After(*r.To) {
		return false
	}
	return true
}

func (r Range) String() string {
	f := func(t *time.Time) string {
		if t == nil {
			return "*"
		}
		return t.Format("2006-01-02 15:04:05.000")
	}
	return f(r.From) + " .. " + f(r.To)
}

// Parse resolves from and to relative to now. Empty strings leave the
// bound open.
func Parse(from, to string, now time.Time) (Range, error) {
	var r Range
	if from != "" {
		t, err := resolve(from, now, false)
		if err != nil {
			return Range{}, fmt.Errorf("could not parse from-date %q: %w", from, err)
		}
		r.From = &t
	}
	if to != "" {
		t, err := resolve(to, now, true)
		if err != nil {
			return Range{}, fmt.Errorf("could not parse to-date %q: %w", to, err)
		}
		r.To = &t
	}
	return r, nil
}

var errUnrecognized = errors.New("unrecognized date expression")

var daysAgo = regexp.MustCompile(`^(\d+)\s+days?\s+ago$`)

var absoluteLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339Nano,
}

// resolve widens "today", "yesterday" and "N days ago" to the start or end
// of the day; anything else is taken as the literal instant.
func resolve(expr string, now time.Time, end bool) (time.Time, error) {
	raw := strings.TrimSpace(expr)
	s := strings.ToLower(raw)
	today := model.WallClock(now)

	var day time.Time
	switch {
	case s == "today":
		day = today
	case s == "yesterday":
		day = today.AddDate(0, 0, -1)
	case daysAgo.MatchString(s):
		n, err := strconv.Atoi(daysAgo.FindStringSubmatch(s)[1])
		if err != nil {
			return time.Time{}, err
		}
		day = today.AddDate(0, 0, -n)
	default:
		t, err := literal(raw, now)
		if err != nil {
			return time.Time{}, err
		}
		if strings.Contains(s, "days ago") {
			return widen(t, end), nil
		}
		return t, nil
	}
	return widen(day, end), nil
}

func literal(s string, now time.Time) (time.Time, error) {
	for _, layout := range absoluteLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return model.WallClock(t), nil
		}
	}
	t, err := naturaldate.Parse(s, now, naturaldate.WithDirection(naturaldate.Past))
	if err != nil {
		return time.Time{}, err
	}
	// the parser hands back the reference time for input it cannot read
	if t.Equal(now) && !strings.EqualFold(s, "now") {
		return time.Time{}, errUnrecognized
	}
	return model.WallClock(t), nil
}

func widen(t time.Time, end bool) time.Time {
	y, m, d := t.Date()
	if end {
		return time.Date(y, m, d, 23, 59, 59, 999_999_999, time.UTC)
	}
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
