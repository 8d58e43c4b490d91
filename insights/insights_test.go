package insights

import (
	"testing"

	"go-adverse/types"
)

func scored(v float64) *types.RelevanceScore {
	return &types.RelevanceScore{RelevanceScore: v}
}

func person(name string) []types.EntityMention {
	return []types.EntityMention{{EntityName: name}}
}

func TestCompute(t *testing.T) {
	articles := []types.ScreenedArticle{
		{
			Category:  types.Fraud,
			Relevance: scored(0.9),
			Date:      "2024-03-01",
			Entities: types.EntityExtraction{
				types.Person:  person("Jane Doe"),
				types.Company: person("Acme"),
			},
		},
		{
			Category:  types.MoneyLaundering,
			Relevance: scored(0.6),
			Date:      "2024-03-03",
			Entities:  types.EntityExtraction{types.Person: person("Jane Doe")},
		},
		{
			Category:  types.NonFinancialNews,
			Relevance: scored(0.3),
			Date:      "2024-03-02",
			Entities:  types.EntityExtraction{types.Person: person("Bob")},
		},
		{
			Category: types.Fraud,
			Entities: types.EntityExtraction{types.Company: person("Acme")},
		},
	}

	ins := Compute(articles)

	if ins.CategoryCounts["Fraud"] != 2 || ins.CategoryCounts["Money Laundering"] != 1 || ins.CategoryCounts["Non Financial News"] != 1 {
		t.Errorf("unexpected category counts %v", ins.CategoryCounts)
	}
	if ins.AdverseCount != 3 || ins.AdverseShare != 0.75 {
		t.Errorf("expected 3 adverse (0.75), got %d (%v)", ins.AdverseCount, ins.AdverseShare)
	}
	if ins.MaxRelevance != 0.9 || ins.AvgRelevance != 0.75 {
		t.Errorf("expected max 0.9 avg 0.75, got %v %v", ins.MaxRelevance, ins.AvgRelevance)
	}
	if ins.Severity != types.Critical {
		t.Errorf("expected critical severity, got %s", ins.Severity)
	}

	if len(ins.TopEntities) != 2 {
		t.Fatalf("expected 2 top entities (non adverse excluded), got %+v", ins.TopEntities)
	}
	if e := ins.TopEntities[0]; e.Name != "Acme" || e.Type != types.Company || e.Count != 2 {
		t.Errorf("unexpected first top entity %+v", e)
	}
	if e := ins.TopEntities[1]; e.Name != "Jane Doe" || e.Type != types.Person || e.Count != 2 {
		t.Errorf("unexpected second top entity %+v", e)
	}

	if len(ins.Matrix) != 3 {
		t.Fatalf("expected 3 matrix cells, got %+v", ins.Matrix)
	}
	if c := ins.Matrix[0]; c.Entity != "Acme" || c.Category != types.Fraud || c.Count != 2 {
		t.Errorf("unexpected first cell %+v", c)
	}
	if c := ins.Matrix[1]; c.Entity != "Jane Doe" || c.Category != types.Fraud {
		t.Errorf("unexpected second cell %+v", c)
	}

	// 01..03 March for Fraud and Money Laundering
	if len(ins.Trend) != 6 {
		t.Errorf("expected 6 trend points, got %+v", ins.Trend)
	}
}

func TestComputeNoAdverse(t *testing.T) {
	ins := Compute([]types.ScreenedArticle{
		{Category: types.GeneralFinancialNews, Relevance: scored(1.1), Date: "2024-03-01"},
	})
	if ins.Severity != types.Low || ins.AdverseCount != 0 || ins.MaxRelevance != 0 {
		t.Errorf("unexpected insights %+v", ins)
	}
	if ins.TopEntities == nil || ins.Matrix == nil || ins.Trend == nil {
		t.Errorf("expected empty, non-nil slices")
	}
}

func TestComputeEmpty(t *testing.T) {
	ins := Compute(nil)
	if ins.AdverseShare != 0 || ins.Severity != types.Low {
		t.Errorf("unexpected insights %+v", ins)
	}
}

func TestSeverity(t *testing.T) {
	tests := []struct {
		name string
		ins  types.Insights
		want types.Severity
	}{
		{"weak single hit", types.Insights{AdverseCount: 1, AdverseShare: 0.1, MaxRelevance: 0.3}, types.Low},
		{"medium relevance", types.Insights{AdverseCount: 1, AdverseShare: 0.1, MaxRelevance: 0.55}, types.Medium},
		{"high share", types.Insights{AdverseCount: 2, AdverseShare: 0.45, MaxRelevance: 0.3}, types.High},
		{"many hits", types.Insights{AdverseCount: 25, AdverseShare: 0.25, MaxRelevance: 0.4}, types.Critical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := severity(&tt.ins); got != tt.want {
				t.Errorf("expected %s, got %s", tt.want, got)
			}
		})
	}
}
