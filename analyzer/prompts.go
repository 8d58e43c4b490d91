package analyzer

import (
	"fmt"
	"strings"

	"go-adverse/types"
)

var entityDescriptions = []struct {
	Type        types.EntityType
	Description string
}{
	{types.Company, "Public or private companies, including subsidiaries."},
	{types.Person, "Individuals, especially executives, board members, or other key figures."},
	{types.FinancialInstitution, "Banks, investment firms, hedge funds, etc."},
	{types.RegulatoryBody, "Agencies like SEC, MAS, FCA, etc."},
	{types.PotentialCrime, "Terms indicating potential crime."},
	{types.LegalAction, "Mentions of lawsuits, indictments, probes, settlements."},
	{types.EnforcementAction, "Actions like fines, bans, license suspensions."},
	{types.Location, "Cities, countries; relevant for sanctions or jurisdiction context."},
	{types.SanctionEntity, "Country or individual sanctioned or under restrictions."},
	{types.Sector, `Industry or economic sector (e.g. "energy", "fintech").`},
	{types.Regulation, "Names or identifiers of laws or policies (e.g. GDPR, FCPA, Dodd-Frank)."},
}

func classificationPrompt() string {
	categories := make([]string, 0, len(types.AllCategories()))
	for _, c := range types.AllCategories() {
		categories = append(categories, string(c))
	}
	return fmt.Sprintf(`You identify adverse financial news and classify it. You will be given news articles, one per line, each containing a [title] and a [snippet].

## Constraints
1. For each article return a JSON object with the fields: category, confidence_score (a number between 0 and 1 showing how confident you are that the article belongs to the category) and justification (why this category and score).
2. Return a JSON list with exactly one object per article, in the same order as the articles.
3. Only return the JSON, nothing else.

## Categories
%s`, strings.Join(categories, ", "))
}

func extractionPrompt() string {
	var sb strings.Builder
	sb.WriteString(`You extract named entities from financial news. You will be given news articles, one per line, each containing a [title] and a [snippet].

## Constraints
1. Group references to the same entity together and list every variation found in the text.
2. For each article return a JSON object keyed by entity type. Each key maps to a list of {"entity_name": "...", "variations": ["..."]}. Include every entity type, using an empty list when none were found.
3. Return a JSON list with exactly one object per article, in the same order as the articles.
4. Only return the JSON, nothing else.

## Entity types
`)
	for _, d := range entityDescriptions {
		fmt.Fprintf(&sb, "%s: %s\n", d.Type, d.Description)
	}
	return sb.String()
}

// FormatArticle renders an article the way both prompts expect it.
func FormatArticle(a types.Article) string {
	title := strings.Join(strings.Fields(a.Title), " ")
	snippet := strings.Join(strings.Fields(a.Snippet), " ")
	return "[title]" + title + " [snippet]" + snippet
}
