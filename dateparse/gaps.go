package dateparse

import (
	"sort"
	"time"

	"go-adverse/types"
)

// FillDailyGaps returns one point per day per category spanning the earliest to
// the latest date in points, with zero counts on days a category had no
// articles. Points sharing a day and category are summed; points with an
// unparseable date are dropped. The result is ordered by date, then category.
func FillDailyGaps(points []types.TrendPoint) []types.TrendPoint {
	type key struct {
		date     string
		category types.Category
	}
	counts := make(map[key]int)
	categories := make(map[types.Category]bool)
	var first, last time.Time

	for _, p := range points {
		d, err := time.Parse(Layout, p.Date)
		if err != nil {
			continue
		}
		if first.IsZero() || d.Before(first) {
			first = d
		}
		if last.IsZero() || d.After(last) {
			last = d
		}
		counts[key{p.Date, p.Category}] += p.Count
		categories[p.Category] = true
	}
	if len(categories) == 0 {
		return nil
	}

	sorted := make([]types.Category, 0, len(categories))
	for c := range categories {
		sorted = append(sorted, c)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	var out []types.TrendPoint
	for d := first; !d.After(last); d = d.AddDate(0, 0, 1) {
		date := d.Format(Layout)
		for _, c := range sorted {
			out = append(out, types.TrendPoint{Date: date, Category: c, Count: counts[key{date, c}]})
		}
	}
	return out
}
