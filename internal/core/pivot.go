package core

import (
	"sort"
	"time"
)

// Pivot is a wide count table: one row per time bucket, one column per
// category. Absent combinations are explicit zeros.
type Pivot struct {
	Granularity Granularity
	Buckets     []string
	Categories  []string
	Counts      [][]int
	// Skipped is the number of rows dropped because their date did not parse.
	Skipped int
}

// CountPivot groups rows by (bucket of parsed date, category) and counts them.
// Buckets are ordered by time, categories lexicographically. The table is
// only read.
func CountPivot(t Table, parse func(string) (time.Time, bool), g Granularity, category func(Transaction) string) Pivot {
	type key struct {
		bucket   time.Time
		category string
	}

	counts := make(map[key]int)
	buckets := make(map[time.Time]struct{})
	categories := make(map[string]struct{})
	skipped := 0

	t.Each(func(tx Transaction) {
		d, ok := parse(tx.RawDate)
		if !ok {
			skipped++
			return
		}
		k := key{bucket: g.Truncate(d), category: category(tx)}
		counts[k]++
		buckets[k.bucket] = struct{}{}
		categories[k.category] = struct{}{}
	})

	orderedBuckets := make([]time.Time, 0, len(buckets))
	for b := range buckets {
		orderedBuckets = append(orderedBuckets, b)
	}
	sort.Slice(orderedBuckets, func(i, j int) bool { return orderedBuckets[i].Before(orderedBuckets[j]) })

	cats := make([]string, 0, len(categories))
	for c := range categories {
		cats = append(cats, c)
	}
	sort.Strings(cats)

	p := Pivot{
		Granularity: g,
		Buckets:     make([]string, len(orderedBuckets)),
		Categories:  cats,
		Counts:      make([][]int, len(orderedBuckets)),
		Skipped:     skipped,
	}
	for i, b := range orderedBuckets {
		p.Buckets[i] = g.Label(b)
		row := make([]int, len(cats))
		for j, c := range cats {
			row[j] = counts[key{bucket: b, category: c}]
		}
		p.Counts[i] = row
	}
	return p
}

// IsEmpty reports whether the pivot has no buckets.
func (p Pivot) IsEmpty() bool {
	return len(p.Buckets) == 0
}

// Total returns the sum of every cell.
func (p Pivot) Total() int {
	n := 0
	for i := range p.Counts {
		n += p.RowTotal(i)
	}
	return n
}

// RowTotal returns the sum of bucket i across all categories.
func (p Pivot) RowTotal(i int) int {
	n := 0
	for _, c := range p.Counts[i] {
		n += c
	}
	return n
}

// Column returns category j's counts across buckets as float64 values,
// ready for plotting.
func (p Pivot) Column(j int) []float64 {
	out := make([]float64, len(p.Counts))
	for i, row := range p.Counts {
		out[i] = float64(row[j])
	}
	return out
}

// Cell looks up a count by labels. ok is false when either label is unknown.
func (p Pivot) Cell(bucket, category string) (n int, ok bool) {
	i := indexOf(p.Buckets, bucket)
	j := indexOf(p.Categories, category)
	if i < 0 || j < 0 {
		return 0, false
	}
	return p.Counts[i][j], true
}

func indexOf(xs []string, s string) int {
	for i, x := range xs {
		if x == s {
			return i
		}
	}
	return -1
}
