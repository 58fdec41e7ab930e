package core

import (
	"fmt"
	"strings"
	"time"

	"salesplot/internal/cache"
)

// DefaultDateLayouts accepts month/day/year only; anything else, ISO dates
// included, is dropped as unparseable. Add layouts through DATE_LAYOUTS.
var DefaultDateLayouts = []string{"1/2/2006"}

// Granularity is the width of a time bucket.
type Granularity int

const (
	Month Granularity = iota
	Year
)

func (g Granularity) String() string {
	switch g {
	case Month:
		return "month"
	case Year:
		return "year"
	default:
		return fmt.Sprintf("granularity(%d)", int(g))
	}
}

// Truncate returns the first instant of the bucket containing t, in UTC.
func (g Granularity) Truncate(t time.Time) time.Time {
	switch g {
	case Year:
		return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	default:
		return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	}
}

// Label formats a bucket start: "2023-01" for months, "2023" for years.
func (g Granularity) Label(t time.Time) string {
	if g == Year {
		return t.Format("2006")
	}
	return t.Format("2006-01")
}

type parsedDate struct {
	t  time.Time
	ok bool
}

// DateParser parses raw date strings against an ordered list of layouts and
// memoizes results, since sales data repeats the same dates many times.
type DateParser struct {
	layouts []string
	memo    *cache.LRUCache[parsedDate]
}

// NewDateParser returns a parser trying layouts in order. An empty list uses
// DefaultDateLayouts. memoSize bounds the number of remembered strings.
func NewDateParser(layouts []string, memoSize int) *DateParser {
	if len(layouts) == 0 {
		layouts = DefaultDateLayouts
	}
	return &DateParser{
		layouts: append([]string(nil), layouts...),
		memo:    cache.NewLRUCache[parsedDate](memoSize, 0),
	}
}

// Parse returns the date and true, or the zero time and false when no layout
// matches. Unparseable input is never an error.
func (p *DateParser) Parse(raw string) (time.Time, bool) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, false
	}
	if hit, ok := p.memo.Get(raw); ok {
		return hit.t, hit.ok
	}
	res := parsedDate{}
	for _, layout := range p.layouts {
		if t, err := time.Parse(layout, raw); err == nil {
			res = parsedDate{t: t, ok: true}
			break
		}
	}
	p.memo.Set(raw, res)
	return res.t, res.ok
}

// Stats exposes memo hit/miss counts.
func (p *DateParser) Stats() cache.Stats {
	return p.memo.Stats()
}
