// Package scoring ranks adverse-media articles by combining the classifier's
// confidence with a weighted view of the entities extracted from the article.
//
// Every function here is pure: a Scorer holds only an immutable copy of its
// configuration, so one Scorer may be shared by any number of goroutines.
package scoring

import (
	"math"
	"strconv"

	"go-adverse/types"
)

const (
	// DefaultMaxBonus caps the high-risk combination bonus.
	DefaultMaxBonus = 0.2

	// bonusPerCombination is awarded for each high-risk pair that co-occurs.
	bonusPerCombination = 0.1
)

// EntityWeights maps an entity type to its weight in (0, 1].
type EntityWeights map[types.EntityType]float64

// DefaultEntityWeights returns a fresh copy of the default weight table.
func DefaultEntityWeights() EntityWeights {
	return EntityWeights{
		types.Company:              0.7,
		types.Person:               0.9,
		types.FinancialInstitution: 0.9,
		types.RegulatoryBody:       0.8,
		types.PotentialCrime:       1.0,
		types.LegalAction:          1.0,
		types.EnforcementAction:    1.0,
		types.Location:             0.3,
		types.SanctionEntity:       0.9,
		types.Sector:               0.3,
		types.Regulation:           0.4,
	}
}

// ComponentWeights blends classification confidence and entity-type score.
// Callers keep the sum at or below 1.0 so relevance stays within [0, 1+MaxBonus].
type ComponentWeights struct {
	ClassificationConfidence float64 `json:"classification_confidence"`
	EntityType               float64 `json:"entity_type"`
}

// DefaultComponentWeights weighs confidence and entities equally.
func DefaultComponentWeights() ComponentWeights {
	return ComponentWeights{ClassificationConfidence: 0.5, EntityType: 0.5}
}

// highRiskCombinations are entity-type pairs whose co-occurrence signals compound risk.
var highRiskCombinations = [...][2]types.EntityType{
	{types.LegalAction, types.Person},
	{types.PotentialCrime, types.Person},
	{types.EnforcementAction, types.Company},
}

// Config is everything a Scorer needs. Treat it as a value: NewScorer copies it.
type Config struct {
	EntityWeights    EntityWeights
	ComponentWeights ComponentWeights
	MaxBonus         float64
}

// DefaultConfig returns the default scoring configuration.
func DefaultConfig() Config {
	return Config{
		EntityWeights:    DefaultEntityWeights(),
		ComponentWeights: DefaultComponentWeights(),
		MaxBonus:         DefaultMaxBonus,
	}
}

// Validate checks every weight in the configuration.
func (c Config) Validate() error {
	if err := c.EntityWeights.Validate(); err != nil {
		return err
	}
	if err := c.ComponentWeights.Validate(); err != nil {
		return err
	}
	if math.IsNaN(c.MaxBonus) || math.IsInf(c.MaxBonus, 0) || c.MaxBonus < 0 {
		return &WeightConfigError{Key: "max_bonus", Reason: "must be a non-negative number"}
	}
	return nil
}

// Validate rejects weights keyed by unknown entity types or outside (0, 1].
func (w EntityWeights) Validate() error {
	for _, t := range sortedWeightKeys(w) {
		if !t.Known() {
			return &WeightConfigError{Key: string(t), Reason: "weight configured for unknown entity type"}
		}
		v := w[t]
		if math.IsNaN(v) || v <= 0 || v > 1 {
			return &WeightConfigError{Key: string(t), Reason: "weight must be in (0, 1]"}
		}
	}
	return nil
}

// Validate rejects negative or non-finite component weights.
func (c ComponentWeights) Validate() error {
	if !nonNegative(c.ClassificationConfidence) {
		return &WeightConfigError{Key: "classification_confidence", Reason: "must be a non-negative number"}
	}
	if !nonNegative(c.EntityType) {
		return &WeightConfigError{Key: "entity_type", Reason: "must be a non-negative number"}
	}
	return nil
}

// Scorer computes relevance scores with a fixed configuration.
type Scorer struct {
	cfg Config
}

// NewScorer validates cfg and returns a Scorer holding a private copy of it.
func NewScorer(cfg Config) (*Scorer, error) {
	if cfg.EntityWeights == nil {
		cfg.EntityWeights = DefaultEntityWeights()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	weights := make(EntityWeights, len(cfg.EntityWeights))
	for k, v := range cfg.EntityWeights {
		weights[k] = v
	}
	cfg.EntityWeights = weights
	return &Scorer{cfg: cfg}, nil
}

// Config returns a copy of the scorer's configuration.
func (s *Scorer) Config() Config {
	cfg := s.cfg
	cfg.EntityWeights = make(EntityWeights, len(s.cfg.EntityWeights))
	for k, v := range s.cfg.EntityWeights {
		cfg.EntityWeights[k] = v
	}
	return cfg
}

// Score validates the inputs and produces a complete RelevanceScore, or an error
// and no score at all.
func (s *Scorer) Score(confidence float64, extraction types.EntityExtraction) (types.RelevanceScore, error) {
	if err := ValidateConfidence(confidence); err != nil {
		return types.RelevanceScore{}, err
	}
	if err := ValidateExtraction(extraction); err != nil {
		return types.RelevanceScore{}, err
	}

	entityScore, err := entityTypeScore(extraction, s.cfg.EntityWeights)
	if err != nil {
		return types.RelevanceScore{}, err
	}
	bonus := combinationBonus(extraction, s.cfg.MaxBonus)

	w := s.cfg.ComponentWeights
	relevance := confidence*w.ClassificationConfidence + entityScore*w.EntityType + bonus

	return types.RelevanceScore{
		EntityTypeScore:  entityScore,
		CombinationBonus: bonus,
		RelevanceScore:   round(relevance, 3),
	}, nil
}

// ComputeEntityTypeScore sums weight × mention count over the entity types
// present, divides by the number of types present, caps at 1.0 and rounds to
// two decimals. A nil weights table selects the defaults. An empty extraction
// scores 0.
func ComputeEntityTypeScore(extraction types.EntityExtraction, weights EntityWeights) (float64, error) {
	if weights == nil {
		weights = DefaultEntityWeights()
	}
	if err := weights.Validate(); err != nil {
		return 0, err
	}
	return entityTypeScore(extraction, weights)
}

// ComputeCombinationBonus awards bonusPerCombination for each high-risk pair of
// entity types that both have mentions, capped at maxBonus. Absent types count
// as having no mentions.
func ComputeCombinationBonus(extraction types.EntityExtraction, maxBonus float64) float64 {
	return combinationBonus(extraction, maxBonus)
}

// ComputeRelevanceScore scores one article with the default entity weights and
// bonus cap. A nil components selects DefaultComponentWeights.
func ComputeRelevanceScore(confidence float64, extraction types.EntityExtraction, components *ComponentWeights) (types.RelevanceScore, error) {
	cfg := DefaultConfig()
	if components != nil {
		cfg.ComponentWeights = *components
	}
	s, err := NewScorer(cfg)
	if err != nil {
		return types.RelevanceScore{}, err
	}
	return s.Score(confidence, extraction)
}

// IsDegenerate reports whether the extraction has no entity types at all, in
// which case the entity-type score resolves to zero.
func IsDegenerate(extraction types.EntityExtraction) bool {
	return len(extraction) == 0
}

// ValidateConfidence rejects NaN and values outside [0, 1].
func ValidateConfidence(confidence float64) error {
	if math.IsNaN(confidence) || confidence < 0 || confidence > 1 {
		return &InputError{Field: "confidence", Reason: "must be in [0, 1]"}
	}
	return nil
}

// ValidateExtraction checks that every mention carries an entity name.
func ValidateExtraction(extraction types.EntityExtraction) error {
	for _, t := range extraction.SortedTypes() {
		for i, m := range extraction[t] {
			if m.EntityName == "" {
				return &InputError{Field: string(t), Reason: "mention " + strconv.Itoa(i) + " has an empty entity_name"}
			}
		}
	}
	return nil
}

func entityTypeScore(extraction types.EntityExtraction, weights EntityWeights) (float64, error) {
	if IsDegenerate(extraction) {
		return 0, nil
	}

	// Sorted keys keep the floating-point sum independent of map iteration order.
	var sum float64
	for _, t := range extraction.SortedTypes() {
		w, ok := weights[t]
		if !ok {
			return 0, missingWeight(t)
		}
		sum += w * float64(len(extraction[t]))
	}

	score := round(sum/float64(len(extraction)), 2)
	return math.Min(score, 1.0), nil
}

func combinationBonus(extraction types.EntityExtraction, maxBonus float64) float64 {
	flags := 0
	for _, pair := range highRiskCombinations {
		if extraction.Has(pair[0]) && extraction.Has(pair[1]) {
			flags++
		}
	}
	return math.Min(float64(flags)*bonusPerCombination, math.Max(maxBonus, 0))
}

func sortedWeightKeys(w EntityWeights) []types.EntityType {
	e := make(types.EntityExtraction, len(w))
	for k := range w {
		e[k] = nil
	}
	return e.SortedTypes()
}

func nonNegative(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}

// round rounds the exact binary value of v to the given number of decimals,
// sending exact ties to the even digit (0.125 -> 0.12).
func round(v float64, decimals int) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', decimals, 64), 64)
	if err != nil {
		return v
	}
	return r
}
