package analyzer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-adverse/config"
	"go-adverse/types"
)

const maxCompletionTokens = 4096

// ErrMisaligned is returned when the model does not answer once per article.
var ErrMisaligned = errors.New("model output does not align with input articles")

// Oracle classifies articles and extracts their entities. Results are aligned
// with the input by index.
type Oracle interface {
	Classify(ctx context.Context, texts []string) ([]types.ClassificationResult, error)
	ExtractEntities(ctx context.Context, texts []string) ([]types.EntityExtraction, error)
}

// Analyzer is an Oracle backed by an OpenAI (or Azure OpenAI) chat model.
type Analyzer struct {
	client *openai.Client
	model  string
}

// New creates an Analyzer for the public OpenAI API or, when an endpoint is
// configured, for an Azure OpenAI deployment.
func New(cfg config.OpenAIConfig) (*Analyzer, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key not configured")
	}

	if !cfg.Azure() {
		return NewWithClient(openai.NewClient(cfg.APIKey), cfg.Model), nil
	}

	clientCfg := openai.DefaultAzureConfig(cfg.APIKey, cfg.Endpoint)
	if cfg.APIVersion != "" {
		clientCfg.APIVersion = cfg.APIVersion
	}
	deployment := cfg.DeploymentName
	clientCfg.AzureModelMapperFunc = func(string) string { return deployment }
	return NewWithClient(openai.NewClientWithConfig(clientCfg), deployment), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *openai.Client, model string) *Analyzer {
	return &Analyzer{client: client, model: model}
}

// Client returns the underlying OpenAI client, for callers that share it.
func (a *Analyzer) Client() *openai.Client {
	return a.client
}

// Model is the model (or Azure deployment) requests are sent to.
func (a *Analyzer) Model() string {
	return a.model
}

// Classify assigns one adverse-news category per article.
func (a *Analyzer) Classify(ctx context.Context, texts []string) ([]types.ClassificationResult, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	content, err := a.complete(ctx, classificationPrompt(), texts)
	if err != nil {
		return nil, fmt.Errorf("classification request: %w", err)
	}
	results, err := parseClassifications(content)
	if err != nil {
		return nil, fmt.Errorf("classification result: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("%w: %d classifications for %d articles", ErrMisaligned, len(results), len(texts))
	}
	return results, nil
}

// ExtractEntities returns the typed entities found in each article.
func (a *Analyzer) ExtractEntities(ctx context.Context, texts []string) ([]types.EntityExtraction, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	content, err := a.complete(ctx, extractionPrompt(), texts)
	if err != nil {
		return nil, fmt.Errorf("entity extraction request: %w", err)
	}
	results, err := parseExtractions(content)
	if err != nil {
		return nil, fmt.Errorf("entity extraction result: %w", err)
	}
	if len(results) != len(texts) {
		return nil, fmt.Errorf("%w: %d extractions for %d articles", ErrMisaligned, len(results), len(texts))
	}
	return results, nil
}

func (a *Analyzer) complete(ctx context.Context, system string, texts []string) (string, error) {
	resp, err := a.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: a.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: system,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: strings.Join(texts, "\n"),
				},
			},
			MaxTokens:   maxCompletionTokens,
			Temperature: 1.0,
			TopP:        1.0,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}
	return resp.Choices[0].Message.Content, nil
}
