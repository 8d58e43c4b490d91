package types

// Article is a single news search hit as returned by the news source.
type Article struct {
	Title    string `json:"title"`
	Snippet  string `json:"snippet,omitempty"`
	Link     string `json:"link,omitempty"`
	Source   string `json:"source,omitempty"`
	Date     string `json:"date,omitempty"` // free-form: "3 days ago", ISO, natural language
	ImageURL string `json:"imageUrl,omitempty"`
	Position int    `json:"position,omitempty"`
}

// Category is the adverse-news class assigned by the classifier.
type Category string

const (
	MoneyLaundering      Category = "Money Laundering"
	TerroristFinancing   Category = "Terrorist Financing"
	SanctionsViolations  Category = "Sanctions Violations"
	Fraud                Category = "Fraud"
	TaxEvasion           Category = "Tax Evasion"
	BriberyAndCorruption Category = "Bribery and Corruption"
	InsiderTrading       Category = "Insider Trading"
	PonziAndPyramid      Category = "Ponzi and Pyramid Schemes"
	TradeBasedLaundering Category = "Trade-Based Money Laundering"
	GeneralFinancialNews Category = "General Financial News"
	NonFinancialNews     Category = "Non Financial News"
)

// AllCategories returns the categories offered to the classifier, in prompt order.
func AllCategories() []Category {
	return []Category{
		MoneyLaundering, TerroristFinancing, SanctionsViolations, Fraud, TaxEvasion,
		BriberyAndCorruption, InsiderTrading, PonziAndPyramid, TradeBasedLaundering,
		GeneralFinancialNews, NonFinancialNews,
	}
}

// Adverse reports whether articles of this category count as adverse findings.
func (c Category) Adverse() bool {
	return c != "" && c != GeneralFinancialNews && c != NonFinancialNews
}

// ClassificationResult is the classifier's verdict for one article.
type ClassificationResult struct {
	Category        Category `json:"category" firestore:"category"`
	ConfidenceScore float64  `json:"confidence_score" firestore:"confidenceScore"`
	Justification   string   `json:"justification" firestore:"justification"`
}

// RelevanceScore is the output of one scoring call.
type RelevanceScore struct {
	EntityTypeScore  float64 `json:"entity_type_score" firestore:"entityTypeScore"`
	CombinationBonus float64 `json:"combination_bonus" firestore:"combinationBonus"`
	RelevanceScore   float64 `json:"relevance_score" firestore:"relevanceScore"`
}
