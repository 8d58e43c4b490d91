package scoring

import (
	"errors"
	"math"
	"sync"
	"testing"

	"go-adverse/types"
)

func mention(name string, variations ...string) types.EntityMention {
	return types.EntityMention{EntityName: name, Variations: variations}
}

// liverpoolExtraction is the extraction for a local-politics bribery story:
// two people, two potential crimes, one legal action, one location.
func liverpoolExtraction() types.EntityExtraction {
	return types.EntityExtraction{
		types.Company: {},
		types.Person: {
			mention("Joe Anderson", "Joe Anderson", "Former Liverpool mayor Joe Anderson"),
			mention("Derek Hatton", "Derek Hatton", "city politician Derek Hatton"),
		},
		types.FinancialInstitution: {},
		types.RegulatoryBody:       {},
		types.PotentialCrime: {
			mention("bribery", "bribery", "charges of bribery"),
			mention("misconduct", "misconduct"),
		},
		types.LegalAction: {
			mention("court appearance", "court appearance", "appeared in court"),
		},
		types.EnforcementAction: {},
		types.Location:          {mention("Liverpool", "Liverpool")},
		types.SanctionEntity:    {},
		types.Sector:            {},
		types.Regulation:        {},
	}
}

func TestComputeRelevanceScoreReferenceScenario(t *testing.T) {
	got, err := ComputeRelevanceScore(0.95, liverpoolExtraction(), nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RelevanceScore != 0.905 {
		t.Errorf("expected relevance 0.905, got %v", got.RelevanceScore)
	}
	if got.EntityTypeScore != 0.46 {
		t.Errorf("expected entity type score 0.46, got %v", got.EntityTypeScore)
	}
	if got.CombinationBonus != 0.2 {
		t.Errorf("expected combination bonus 0.2, got %v", got.CombinationBonus)
	}
}

func TestEmptyExtractionScoresConfidenceOnly(t *testing.T) {
	for _, confidence := range []float64{0, 0.1, 0.33, 0.5, 0.777, 0.95, 1} {
		for _, extraction := range []types.EntityExtraction{nil, {}} {
			got, err := ComputeRelevanceScore(confidence, extraction, nil)
			if err != nil {
				t.Fatalf("confidence %v: unexpected error: %v", confidence, err)
			}
			want := round(confidence*0.5, 3)
			if got.RelevanceScore != want {
				t.Errorf("confidence %v: expected %v, got %v", confidence, want, got.RelevanceScore)
			}
			if got.EntityTypeScore != 0 || got.CombinationBonus != 0 {
				t.Errorf("confidence %v: expected zero entity score and bonus, got %+v", confidence, got)
			}
		}
	}
}

func TestEntityTypeScoreEmptyIsZero(t *testing.T) {
	score, err := ComputeEntityTypeScore(types.EntityExtraction{}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0 {
		t.Errorf("expected 0 for degenerate extraction, got %v", score)
	}
	if !IsDegenerate(types.EntityExtraction{}) {
		t.Error("expected empty extraction to be degenerate")
	}
	if IsDegenerate(types.EntityExtraction{types.Sector: {}}) {
		t.Error("extraction with a present (empty) key is not degenerate")
	}
}

func TestEntityTypeScoreNormalizesByBreadth(t *testing.T) {
	// 3 persons (2.7) + 1 location (0.3) over 2 types = 1.5 -> capped to 1.0
	capped := types.EntityExtraction{
		types.Person:   {mention("a"), mention("b"), mention("c")},
		types.Location: {mention("x")},
	}
	score, err := ComputeEntityTypeScore(capped, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 1.0 {
		t.Errorf("expected capped score 1.0, got %v", score)
	}

	// 1 sector (0.3) over 3 present types = 0.1
	sparse := types.EntityExtraction{
		types.Sector:     {mention("energy")},
		types.Company:    {},
		types.Regulation: {},
	}
	score, err = ComputeEntityTypeScore(sparse, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.1 {
		t.Errorf("expected 0.1, got %v", score)
	}
}

func TestEntityTypeScoreClampProperty(t *testing.T) {
	all := types.AllEntityTypes()
	for n := 1; n <= len(all); n++ {
		for mentions := 0; mentions <= 6; mentions++ {
			extraction := types.EntityExtraction{}
			for i, et := range all[:n] {
				for j := 0; j < (mentions+i)%7; j++ {
					extraction[et] = append(extraction[et], mention("e"))
				}
				if extraction[et] == nil {
					extraction[et] = []types.EntityMention{}
				}
			}
			score, err := ComputeEntityTypeScore(extraction, nil)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if score < 0 || score > 1 {
				t.Errorf("entity type score out of [0,1]: %v for %d types", score, n)
			}
		}
	}
}

func TestEntityTypeScoreCustomWeights(t *testing.T) {
	extraction := types.EntityExtraction{types.Person: {mention("a")}}
	score, err := ComputeEntityTypeScore(extraction, EntityWeights{types.Person: 0.25})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if score != 0.25 {
		t.Errorf("expected 0.25, got %v", score)
	}
}

func TestMissingWeightIsConfigError(t *testing.T) {
	extraction := types.EntityExtraction{
		types.Person:  {mention("a")},
		types.Company: {mention("b")},
	}
	_, err := ComputeEntityTypeScore(extraction, EntityWeights{types.Person: 0.9})
	if !errors.Is(err, ErrInvalidWeightConfig) {
		t.Fatalf("expected ErrInvalidWeightConfig, got %v", err)
	}
	var wce *WeightConfigError
	if !errors.As(err, &wce) || wce.Key != string(types.Company) {
		t.Errorf("expected error naming COMPANY, got %v", err)
	}
}

func TestUnknownEntityTypeIsRejected(t *testing.T) {
	extraction := types.EntityExtraction{
		types.Person:    {mention("a")},
		"CRYPTO_WALLET": {mention("0xabc")},
	}
	_, err := ComputeRelevanceScore(0.8, extraction, nil)
	if !errors.Is(err, ErrInvalidWeightConfig) {
		t.Fatalf("expected ErrInvalidWeightConfig, got %v", err)
	}
	var wce *WeightConfigError
	if !errors.As(err, &wce) || wce.Key != "CRYPTO_WALLET" {
		t.Errorf("expected error naming CRYPTO_WALLET, got %v", err)
	}
}

func TestCombinationBonus(t *testing.T) {
	tests := []struct {
		name       string
		extraction types.EntityExtraction
		want       float64
	}{
		{"none", types.EntityExtraction{}, 0},
		{"person only", types.EntityExtraction{types.Person: {mention("a")}}, 0},
		{"legal action and person", types.EntityExtraction{
			types.Person:      {mention("a")},
			types.LegalAction: {mention("lawsuit")},
		}, 0.1},
		{"enforcement with empty company", types.EntityExtraction{
			types.Company:           {},
			types.EnforcementAction: {mention("fine")},
		}, 0},
		{"enforcement and company", types.EntityExtraction{
			types.Company:           {mention("Acme")},
			types.EnforcementAction: {mention("fine")},
		}, 0.1},
		{"all three capped", types.EntityExtraction{
			types.Person:            {mention("a")},
			types.Company:           {mention("Acme")},
			types.LegalAction:       {mention("indictment")},
			types.PotentialCrime:    {mention("fraud")},
			types.EnforcementAction: {mention("ban")},
		}, 0.2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeCombinationBonus(tt.extraction, DefaultMaxBonus)
			if got != tt.want {
				t.Errorf("expected %v, got %v", tt.want, got)
			}
			if got < 0 || got > DefaultMaxBonus {
				t.Errorf("bonus out of [0, %v]: %v", DefaultMaxBonus, got)
			}
		})
	}
}

func TestCombinationBonusCustomCap(t *testing.T) {
	extraction := types.EntityExtraction{
		types.Person:            {mention("a")},
		types.Company:           {mention("Acme")},
		types.LegalAction:       {mention("indictment")},
		types.PotentialCrime:    {mention("fraud")},
		types.EnforcementAction: {mention("ban")},
	}
	if got := ComputeCombinationBonus(extraction, 0.15); got != 0.15 {
		t.Errorf("expected 0.15, got %v", got)
	}
	if got := ComputeCombinationBonus(extraction, 1); math.Abs(got-0.3) > 1e-9 {
		t.Errorf("expected ~0.3 with a loose cap, got %v", got)
	}
}

func TestCombinationBonusNegativeCap(t *testing.T) {
	extraction := types.EntityExtraction{
		types.Person:      {mention("a")},
		types.LegalAction: {mention("indictment")},
	}
	if got := ComputeCombinationBonus(extraction, -0.5); got != 0 {
		t.Errorf("expected a negative cap to award nothing, got %v", got)
	}
	if got := ComputeCombinationBonus(types.EntityExtraction{}, -0.5); got != 0 {
		t.Errorf("expected 0 without combinations, got %v", got)
	}
}

func TestEntityTypeScoreRoundsTiesToEven(t *testing.T) {
	// 1 legal action (1.0) over 8 present types = 0.125 exactly
	extraction := types.EntityExtraction{
		types.LegalAction:          {mention("lawsuit")},
		types.Company:              {},
		types.Sector:               {},
		types.Regulation:           {},
		types.Location:             {},
		types.RegulatoryBody:       {},
		types.SanctionEntity:       {},
		types.FinancialInstitution: {},
	}
	got, err := ComputeRelevanceScore(0, extraction, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EntityTypeScore != 0.12 {
		t.Errorf("expected entity type score 0.12, got %v", got.EntityTypeScore)
	}
	if got.RelevanceScore != 0.06 {
		t.Errorf("expected relevance 0.06, got %v", got.RelevanceScore)
	}
}

func TestRound(t *testing.T) {
	tests := []struct {
		v        float64
		decimals int
		want     float64
	}{
		{0.125, 2, 0.12},
		{0.375, 2, 0.38},
		{2.675, 2, 2.67},
		{0.0625, 3, 0.062},
		{-0.125, 2, -0.12},
		{0.46, 2, 0.46},
	}
	for _, tt := range tests {
		if got := round(tt.v, tt.decimals); got != tt.want {
			t.Errorf("round(%v, %d) = %v, want %v", tt.v, tt.decimals, got, tt.want)
		}
	}
}

func TestRelevanceIsNotCappedAtOne(t *testing.T) {
	extraction := types.EntityExtraction{
		types.Person:         {mention("a"), mention("b")},
		types.LegalAction:    {mention("indictment")},
		types.PotentialCrime: {mention("fraud")},
	}
	got, err := ComputeRelevanceScore(1.0, extraction, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.EntityTypeScore != 1.0 || got.CombinationBonus != 0.2 {
		t.Fatalf("expected maximal components, got %+v", got)
	}
	if got.RelevanceScore != 1.2 {
		t.Errorf("expected 1.2, got %v", got.RelevanceScore)
	}
}

func TestCustomComponentWeights(t *testing.T) {
	got, err := ComputeRelevanceScore(0.95, liverpoolExtraction(), &ComponentWeights{
		ClassificationConfidence: 0.7,
		EntityType:               0.3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 0.665 + 0.138 + 0.2
	if got.RelevanceScore != 1.003 {
		t.Errorf("expected 1.003, got %v", got.RelevanceScore)
	}

	_, err = ComputeRelevanceScore(0.95, liverpoolExtraction(), &ComponentWeights{ClassificationConfidence: -0.1})
	if !errors.Is(err, ErrInvalidWeightConfig) {
		t.Errorf("expected ErrInvalidWeightConfig for negative weight, got %v", err)
	}
}

func TestInvalidConfidence(t *testing.T) {
	for _, c := range []float64{-0.01, 1.01, math.NaN(), math.Inf(1)} {
		_, err := ComputeRelevanceScore(c, liverpoolExtraction(), nil)
		if !errors.Is(err, ErrInvalidInput) {
			t.Errorf("confidence %v: expected ErrInvalidInput, got %v", c, err)
		}
	}
}

func TestEmptyEntityNameIsInvalidInput(t *testing.T) {
	extraction := types.EntityExtraction{types.Person: {mention("")}}
	got, err := ComputeRelevanceScore(0.5, extraction, nil)
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if got != (types.RelevanceScore{}) {
		t.Errorf("expected no partial score, got %+v", got)
	}
}

func TestScoreIsDeterministic(t *testing.T) {
	s, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	first, err := s.Score(0.83, liverpoolExtraction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for i := 0; i < 50; i++ {
		again, err := s.Score(0.83, liverpoolExtraction())
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if math.Float64bits(again.RelevanceScore) != math.Float64bits(first.RelevanceScore) ||
			again != first {
			t.Fatalf("expected identical output, got %+v then %+v", first, again)
		}
	}
}

func TestScoreIsOrderIndependent(t *testing.T) {
	base := liverpoolExtraction()
	want, err := ComputeRelevanceScore(0.61, base, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Rebuild the map inserting keys in every rotation of the canonical order.
	keys := types.AllEntityTypes()
	for shift := range keys {
		permuted := types.EntityExtraction{}
		for i := range keys {
			k := keys[(i+shift)%len(keys)]
			permuted[k] = base[k]
		}
		got, err := ComputeRelevanceScore(0.61, permuted, nil)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != want {
			t.Errorf("rotation %d: expected %+v, got %+v", shift, want, got)
		}
	}
}

func TestScorerConcurrentUse(t *testing.T) {
	s, err := NewScorer(DefaultConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := s.Score(0.95, liverpoolExtraction())
			if err != nil || got.RelevanceScore != 0.905 {
				t.Errorf("expected 0.905, got %v (err %v)", got.RelevanceScore, err)
			}
		}()
	}
	wg.Wait()
}

func TestNewScorerCopiesWeights(t *testing.T) {
	cfg := DefaultConfig()
	s, err := NewScorer(cfg)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	cfg.EntityWeights[types.Person] = 0.01

	got, err := s.Score(0.95, liverpoolExtraction())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.RelevanceScore != 0.905 {
		t.Errorf("mutating the caller's config changed the scorer: got %v", got.RelevanceScore)
	}
}

func TestConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		cfg  func() Config
		key  string
	}{
		{"zero weight", func() Config {
			c := DefaultConfig()
			c.EntityWeights[types.Sector] = 0
			return c
		}, string(types.Sector)},
		{"weight above one", func() Config {
			c := DefaultConfig()
			c.EntityWeights[types.Person] = 1.5
			return c
		}, string(types.Person)},
		{"unknown weight key", func() Config {
			c := DefaultConfig()
			c.EntityWeights["VESSEL"] = 0.5
			return c
		}, "VESSEL"},
		{"negative bonus", func() Config {
			c := DefaultConfig()
			c.MaxBonus = -1
			return c
		}, "max_bonus"},
		{"nan component", func() Config {
			c := DefaultConfig()
			c.ComponentWeights.EntityType = math.NaN()
			return c
		}, "entity_type"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScorer(tt.cfg())
			var wce *WeightConfigError
			if !errors.As(err, &wce) {
				t.Fatalf("expected WeightConfigError, got %v", err)
			}
			if wce.Key != tt.key {
				t.Errorf("expected key %q, got %q", tt.key, wce.Key)
			}
		})
	}
}
