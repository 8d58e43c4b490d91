package insights

import (
	"math"
	"sort"

	"go-adverse/dateparse"
	"go-adverse/types"
)

const (
	topEntitiesPerType = 5

	// --- Severity Thresholds ---

	// Highest relevance of a single adverse article
	mediumRelevanceThreshold = 0.5
	highRelevanceThreshold   = 0.7
	critRelevanceThreshold   = 0.85

	// Share of articles classified as adverse
	mediumShareThreshold = 0.2
	highShareThreshold   = 0.4
	critShareThreshold   = 0.6

	// Adverse article count
	mediumCountThreshold = 3
	highCountThreshold   = 10
	critCountThreshold   = 20
)

// Compute aggregates the articles of a screening. Relevance statistics only
// cover scored adverse articles; the trend only covers adverse articles with a
// normalized date.
func Compute(articles []types.ScreenedArticle) *types.Insights {
	ins := &types.Insights{
		Severity:       types.Low,
		CategoryCounts: make(map[string]int),
		TopEntities:    []types.EntityCount{},
		Matrix:         []types.MatrixCell{},
		Trend:          []types.TrendPoint{},
	}

	type entityKey struct {
		name string
		typ  types.EntityType
	}
	type cellKey struct {
		entity   entityKey
		category types.Category
	}
	entityCounts := make(map[entityKey]int)
	cellCounts := make(map[cellKey]int)
	var trend []types.TrendPoint
	var relevanceSum float64
	var scoredAdverse int

	for _, a := range articles {
		if a.Category != "" {
			ins.CategoryCounts[string(a.Category)]++
		}
		if !a.Category.Adverse() {
			continue
		}
		ins.AdverseCount++

		if a.Scored() {
			scoredAdverse++
			relevanceSum += a.Relevance.RelevanceScore
			ins.MaxRelevance = math.Max(ins.MaxRelevance, a.Relevance.RelevanceScore)
		}
		if a.Date != "" {
			trend = append(trend, types.TrendPoint{Date: a.Date, Category: a.Category, Count: 1})
		}

		// an entity counts once per article in the matrix
		seen := make(map[entityKey]bool)
		for _, t := range a.Entities.SortedTypes() {
			for _, m := range a.Entities.Mentions(t) {
				k := entityKey{m.EntityName, t}
				entityCounts[k]++
				if !seen[k] {
					seen[k] = true
					cellCounts[cellKey{k, a.Category}]++
				}
			}
		}
	}

	if len(articles) > 0 {
		ins.AdverseShare = round(float64(ins.AdverseCount) / float64(len(articles)))
	}
	if scoredAdverse > 0 {
		ins.AvgRelevance = round(relevanceSum / float64(scoredAdverse))
	}

	byType := make(map[types.EntityType][]types.EntityCount)
	for k, n := range entityCounts {
		byType[k.typ] = append(byType[k.typ], types.EntityCount{Name: k.name, Type: k.typ, Count: n})
	}
	for _, t := range types.AllEntityTypes() {
		counts := byType[t]
		sort.Slice(counts, func(i, j int) bool {
			if counts[i].Count != counts[j].Count {
				return counts[i].Count > counts[j].Count
			}
			return counts[i].Name < counts[j].Name
		})
		if len(counts) > topEntitiesPerType {
			counts = counts[:topEntitiesPerType]
		}
		ins.TopEntities = append(ins.TopEntities, counts...)
	}

	for k, n := range cellCounts {
		ins.Matrix = append(ins.Matrix, types.MatrixCell{Entity: k.entity.name, Type: k.entity.typ, Category: k.category, Count: n})
	}
	sort.Slice(ins.Matrix, func(i, j int) bool {
		a, b := ins.Matrix[i], ins.Matrix[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if a.Entity != b.Entity {
			return a.Entity < b.Entity
		}
		if a.Type != b.Type {
			return a.Type < b.Type
		}
		return a.Category < b.Category
	})

	if filled := dateparse.FillDailyGaps(trend); filled != nil {
		ins.Trend = filled
	}

	ins.Severity = severity(ins)
	return ins
}

// severity takes the highest level reached by any of the three signals.
func severity(ins *types.Insights) types.Severity {
	if ins.AdverseCount == 0 {
		return types.Low
	}

	sev := types.Low
	if ins.MaxRelevance >= mediumRelevanceThreshold || ins.AdverseShare >= mediumShareThreshold || ins.AdverseCount >= mediumCountThreshold {
		sev = types.Medium
	}
	if ins.MaxRelevance >= highRelevanceThreshold || ins.AdverseShare >= highShareThreshold || ins.AdverseCount >= highCountThreshold {
		sev = types.High
	}
	if ins.MaxRelevance >= critRelevanceThreshold || ins.AdverseShare >= critShareThreshold || ins.AdverseCount >= critCountThreshold {
		sev = types.Critical
	}
	return sev
}

func round(v float64) float64 {
	return math.Round(v*1000) / 1000
}
