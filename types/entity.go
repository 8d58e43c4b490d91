package types

import "sort"

// EntityType is one of the fixed tags the extractor assigns to a named entity.
type EntityType string

// The PROTENTIAL_CRIME spelling is what the extractor emits, so it is kept on the wire.
const (
	Company              EntityType = "COMPANY"
	Person               EntityType = "PERSON"
	FinancialInstitution EntityType = "FINANCIAL_INSTITUTION"
	RegulatoryBody       EntityType = "REGULATORY_BODY"
	PotentialCrime       EntityType = "PROTENTIAL_CRIME"
	LegalAction          EntityType = "LEGAL_ACTION"
	EnforcementAction    EntityType = "ENFORCEMENT_ACTION"
	Location             EntityType = "LOCATION"
	SanctionEntity       EntityType = "SANCTION_ENTITY"
	Sector               EntityType = "SECTOR"
	Regulation           EntityType = "REGULATION"
)

var knownEntityTypes = map[EntityType]bool{
	Company: true, Person: true, FinancialInstitution: true, RegulatoryBody: true,
	PotentialCrime: true, LegalAction: true, EnforcementAction: true, Location: true,
	SanctionEntity: true, Sector: true, Regulation: true,
}

// AllEntityTypes returns the eleven entity types in extractor order.
func AllEntityTypes() []EntityType {
	return []EntityType{
		Company, Person, FinancialInstitution, RegulatoryBody, PotentialCrime,
		LegalAction, EnforcementAction, Location, SanctionEntity, Sector, Regulation,
	}
}

// Known reports whether t is one of the eleven fixed tags.
func (t EntityType) Known() bool {
	return knownEntityTypes[t]
}

// EntityMention is one distinct entity with the surface forms it appeared under.
type EntityMention struct {
	EntityName string   `json:"entity_name" firestore:"entityName"`
	Variations []string `json:"variations" firestore:"variations"`
}

// EntityExtraction groups the mentions found in one article by entity type.
// A present key with no mentions is meaningful: it still counts towards the
// breadth of entity-type coverage.
type EntityExtraction map[EntityType][]EntityMention

// Mentions returns the mentions for t, or nil when t is absent.
func (e EntityExtraction) Mentions(t EntityType) []EntityMention {
	return e[t]
}

// Has reports whether at least one mention of t was extracted.
func (e EntityExtraction) Has(t EntityType) bool {
	return len(e[t]) > 0
}

// SortedTypes returns the entity types present in e in lexical order.
func (e EntityExtraction) SortedTypes() []EntityType {
	keys := make([]EntityType, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// MentionCount is the total number of mentions across all entity types.
func (e EntityExtraction) MentionCount() int {
	n := 0
	for _, mentions := range e {
		n += len(mentions)
	}
	return n
}
