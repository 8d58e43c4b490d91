package summarization

import (
	"context"
	"fmt"
	"strings"

	"github.com/sashabaranov/go-openai"

	"go-adverse/logging"
	"go-adverse/types"
)

const maxArticlesForSummary = 10
const maxPromptLength = 15000 // Rough character limit for prompt

// Summarizer writes a short narrative of a screening's adverse findings.
type Summarizer struct {
	client *openai.Client
	model  string
}

func New(client *openai.Client, model string) *Summarizer {
	if model == "" {
		model = openai.GPT4oMini
	}
	return &Summarizer{client: client, model: model}
}

// Summarize returns an empty summary without calling the model when none of
// the articles is adverse. Articles are expected in rank order.
func (s *Summarizer) Summarize(ctx context.Context, query string, articles []types.ScreenedArticle) (string, error) {
	findings := collectFindings(articles)
	if findings == "" {
		logging.Debug("No adverse findings, skipping summary", "query", query)
		return "", nil
	}

	logging.Info("Requesting summary from OpenAI", "query", query)
	return s.callOpenAISummary(ctx, query, findings)
}

// collectFindings renders the top adverse articles, one block per article.
func collectFindings(articles []types.ScreenedArticle) string {
	var blocks []string
	for _, a := range articles {
		if len(blocks) >= maxArticlesForSummary {
			break
		}
		if !a.Category.Adverse() {
			continue
		}
		block := fmt.Sprintf("[%s] %s\n%s", a.Category, a.Title, a.Snippet)
		if a.Source != "" || a.Date != "" {
			block += fmt.Sprintf("\n(%s %s)", a.Source, a.Date)
		}
		blocks = append(blocks, block)
	}
	if len(blocks) == 0 {
		return ""
	}

	combined := strings.Join(blocks, "\n---\n")
	if len(combined) > maxPromptLength {
		logging.Warn("Combined findings exceed max length, truncating", "max", maxPromptLength)
		combined = combined[:maxPromptLength]
	}
	return combined
}

func (s *Summarizer) callOpenAISummary(ctx context.Context, query, findings string) (string, error) {
	prompt := fmt.Sprintf("Summarize the following adverse news findings about %q for a compliance analyst. State the alleged misconduct, the parties and authorities involved and how recent the reports are. Disregard articles that are clearly about a different entity with the same name. Provide a concise summary (3-4 sentences maximum):\n\n---\n%s\n---\n\nSummary:", query, findings)

	resp, err := s.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: s.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: "You are an assistant that summarizes adverse media findings for financial crime screening concisely.",
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: prompt,
				},
			},
			MaxTokens:   250,
			N:           1,
			Temperature: 0.5,
		},
	)
	if err != nil {
		return "", fmt.Errorf("openai chat completion error: %w", err)
	}

	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("openai returned empty response or choices")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
