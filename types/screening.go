package types

import "time"

type Severity string

const (
	Low      Severity = "low"
	Medium   Severity = "medium"
	High     Severity = "high"
	Critical Severity = "critical"
)

type Status string

const (
	Completed Status = "completed"
	Partial   Status = "partial" // some articles could not be classified or scored
	Failed    Status = "failed"
)

// ScreenedArticle is an article after classification, extraction and scoring.
type ScreenedArticle struct {
	ID            string           `firestore:"-" json:"id"` // hash of the link, doc id in the articles subcollection
	Title         string           `firestore:"title" json:"title"`
	Snippet       string           `firestore:"snippet" json:"snippet"`
	URL           string           `firestore:"url" json:"url"`
	Source        string           `firestore:"source" json:"source"`
	Date          string           `firestore:"date" json:"date"` // YYYY-MM-DD, empty when unparseable
	RawDate       string           `firestore:"rawDate" json:"rawDate"`
	Category      Category         `firestore:"category" json:"category"`
	Confidence    float64          `firestore:"confidence" json:"confidence"`
	Justification string           `firestore:"justification" json:"justification"`
	Entities      EntityExtraction `firestore:"entities" json:"entities"`
	Relevance     *RelevanceScore  `firestore:"relevance" json:"relevance,omitempty"` // nil when scoring failed
	Rank          int              `firestore:"rank" json:"rank"`
	Error         string           `firestore:"error,omitempty" json:"error,omitempty"`
}

// Scored reports whether the article carries a complete relevance score.
func (a ScreenedArticle) Scored() bool {
	return a.Relevance != nil
}

// Screening is one adverse-media check of a single entity name.
type Screening struct {
	ID           string    `firestore:"-" json:"id"`
	Query        string    `firestore:"query" json:"query"`
	TimeRange    string    `firestore:"timeRange" json:"timeRange"`
	ReturnNum    int       `firestore:"returnNum" json:"returnNum"`
	CreatedAt    time.Time `firestore:"createdAt" json:"createdAt"`
	Status       Status    `firestore:"status" json:"status"`
	ArticleCount int       `firestore:"articleCount" json:"articleCount"`
	ScoredCount  int       `firestore:"scoredCount" json:"scoredCount"`
	AdverseCount int       `firestore:"adverseCount" json:"adverseCount"`
	Summary      string    `firestore:"summary,omitempty" json:"summary,omitempty"` // filled by the LLM when adverse findings exist
	Insights     *Insights `firestore:"insights" json:"insights,omitempty"`

	// Articles live in a subcollection, ranked by relevance.
	Articles []ScreenedArticle `firestore:"-" json:"articles,omitempty"`
}

// EntityCount is how often an entity was mentioned across a screening.
type EntityCount struct {
	Name  string     `firestore:"name" json:"name"`
	Type  EntityType `firestore:"type" json:"type"`
	Count int        `firestore:"count" json:"count"`
}

// MatrixCell counts articles of a category that mention an entity.
type MatrixCell struct {
	Entity   string     `firestore:"entity" json:"entity"`
	Type     EntityType `firestore:"type" json:"type"`
	Category Category   `firestore:"category" json:"category"`
	Count    int        `firestore:"count" json:"count"`
}

// TrendPoint is the number of articles of one category published on one day.
type TrendPoint struct {
	Date     string   `firestore:"date" json:"date"`
	Category Category `firestore:"category" json:"category"`
	Count    int      `firestore:"count" json:"count"`
}

// Insights aggregates a screening for analysts.
type Insights struct {
	Severity       Severity       `firestore:"severity" json:"severity"`
	CategoryCounts map[string]int `firestore:"categoryCounts" json:"categoryCounts"`
	AdverseCount   int            `firestore:"adverseCount" json:"adverseCount"`
	AdverseShare   float64        `firestore:"adverseShare" json:"adverseShare"`
	MaxRelevance   float64        `firestore:"maxRelevance" json:"maxRelevance"`
	AvgRelevance   float64        `firestore:"avgRelevance" json:"avgRelevance"`
	TopEntities    []EntityCount  `firestore:"topEntities" json:"topEntities"`
	Matrix         []MatrixCell   `firestore:"matrix" json:"matrix"`
	Trend          []TrendPoint   `firestore:"trend" json:"trend"`
}
