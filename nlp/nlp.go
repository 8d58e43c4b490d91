package nlp

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	language "cloud.google.com/go/language/apiv2"
	"cloud.google.com/go/language/apiv2/languagepb"
	"google.golang.org/api/option"

	"go-adverse/types"
)

// Extractor is a fallback entity extractor backed by the Cloud Natural
// Language API. It only recognises people, organisations and places, so
// its extractions are narrower than the LLM's.
type Extractor struct {
	client *language.Client
}

func NewExtractor(client *language.Client) *Extractor {
	return &Extractor{client: client}
}

// InitLanguageClient creates a Natural Language client from base64 encoded
// service account credentials.
func InitLanguageClient(ctx context.Context, encodedCreds string) (*language.Client, error) {
	creds, err := base64.StdEncoding.DecodeString(encodedCreds)
	if err != nil {
		return nil, fmt.Errorf("failed to decode Natural Language credentials: %w", err)
	}

	client, err := language.NewClient(ctx, option.WithCredentialsJSON(creds))
	if err != nil {
		return nil, fmt.Errorf("failed to create Natural Language client: %w", err)
	}
	return client, nil
}

// ExtractEntities analyzes each text separately. Results align with texts.
func (e *Extractor) ExtractEntities(ctx context.Context, texts []string) ([]types.EntityExtraction, error) {
	out := make([]types.EntityExtraction, 0, len(texts))
	for i, text := range texts {
		entities, err := e.analyzeEntities(ctx, text)
		if err != nil {
			return nil, fmt.Errorf("text %d: %w", i, err)
		}
		out = append(out, ToExtraction(entities))
	}
	return out, nil
}

func (e *Extractor) analyzeEntities(ctx context.Context, text string) ([]*languagepb.Entity, error) {
	req := &languagepb.AnalyzeEntitiesRequest{
		Document: &languagepb.Document{
			Source: &languagepb.Document_Content{
				Content: text,
			},
			Type: languagepb.Document_PLAIN_TEXT,
		},
		EncodingType: languagepb.EncodingType_UTF8,
	}

	resp, err := e.client.AnalyzeEntities(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("AnalyzeEntities error: %w", err)
	}
	return resp.Entities, nil
}

// entityType maps Natural Language entity types onto ours. Types with no
// counterpart are dropped.
func entityType(t languagepb.Entity_Type) (types.EntityType, bool) {
	switch t {
	case languagepb.Entity_PERSON:
		return types.Person, true
	case languagepb.Entity_ORGANIZATION:
		return types.Company, true
	case languagepb.Entity_LOCATION, languagepb.Entity_ADDRESS:
		return types.Location, true
	}
	return "", false
}

// ToExtraction groups Natural Language entities by our entity types. Entities
// sharing a name are merged and their mention texts collected as variations.
// Only types that were actually found appear as keys.
func ToExtraction(entities []*languagepb.Entity) types.EntityExtraction {
	out := make(types.EntityExtraction)
	index := make(map[types.EntityType]map[string]int)

	for _, ent := range entities {
		t, ok := entityType(ent.GetType())
		if !ok {
			continue
		}
		name := strings.TrimSpace(ent.GetName())
		if name == "" {
			continue
		}
		if index[t] == nil {
			index[t] = make(map[string]int)
		}
		i, seen := index[t][strings.ToLower(name)]
		if !seen {
			i = len(out[t])
			index[t][strings.ToLower(name)] = i
			out[t] = append(out[t], types.EntityMention{EntityName: name, Variations: []string{}})
		}

		mention := &out[t][i]
		for _, m := range ent.GetMentions() {
			addVariation(mention, m.GetText().GetContent())
		}
	}
	return out
}

func addVariation(m *types.EntityMention, v string) {
	v = strings.TrimSpace(v)
	if v == "" {
		return
	}
	for _, existing := range m.Variations {
		if existing == v {
			return
		}
	}
	m.Variations = append(m.Variations, v)
}
