package newsfeed

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"

	"go-adverse/types"
)

const (
	serperNewsURL = "https://google.serper.dev/news"

	DefaultReturnNum = 100
	DefaultTimeRange = "Past month"
	AnyTime          = "Any time"

	resultTTL = time.Hour
)

// timeRangeCodes maps the user-facing time windows to serper's qdr codes.
var timeRangeCodes = map[string]string{
	"Past week":  "w",
	"Past month": "m",
	"Past year":  "y",
}

// ErrUnknownTimeRange is returned for a time window serper cannot express.
var ErrUnknownTimeRange = errors.New("unknown time range")

// Source returns news articles matching a query.
type Source interface {
	Search(ctx context.Context, query string, returnNum int, timeRange string) ([]types.Article, error)
}

// Client searches Google News through the serper.dev API.
type Client struct {
	apiKey   string
	endpoint string
	client   *http.Client
	limiter  *rate.Limiter
	results  *cache.Cache
}

// NewClient creates a serper news client. Identical searches within an hour
// are answered from memory.
func NewClient(apiKey string) *Client {
	return &Client{
		apiKey:   apiKey,
		endpoint: serperNewsURL,
		client:   &http.Client{Timeout: 30 * time.Second},
		limiter:  rate.NewLimiter(rate.Every(200*time.Millisecond), 1),
		results:  cache.New(resultTTL, 10*time.Minute),
	}
}

type searchRequest struct {
	Q   string `json:"q"`
	Num int    `json:"num"`
	TBS string `json:"tbs,omitempty"`
}

type searchResponse struct {
	News []types.Article `json:"news"`
}

// Search returns up to returnNum business news articles about query published
// within timeRange ("Past week", "Past month", "Past year" or "Any time").
func (c *Client) Search(ctx context.Context, query string, returnNum int, timeRange string) ([]types.Article, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, fmt.Errorf("empty search query")
	}
	if c.apiKey == "" {
		return nil, fmt.Errorf("serper API key not configured")
	}
	if returnNum <= 0 {
		returnNum = DefaultReturnNum
	}
	if timeRange == "" {
		timeRange = DefaultTimeRange
	}

	payload := searchRequest{Q: "related:business " + query, Num: returnNum}
	if timeRange != AnyTime {
		code, ok := timeRangeCodes[timeRange]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownTimeRange, timeRange)
		}
		payload.TBS = "qdr:" + code
	}

	key := fmt.Sprintf("%s|%d|%s", payload.Q, payload.Num, payload.TBS)
	if cached, ok := c.results.Get(key); ok {
		return cached.([]types.Article), nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewBuffer(payloadBytes))
	if err != nil {
		return nil, err
	}
	req.Header.Set("X-API-KEY", c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("serper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("serper returned status %s: %s", resp.Status, strings.TrimSpace(string(body)))
	}

	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode serper response: %w", err)
	}

	articles := make([]types.Article, 0, len(out.News))
	for _, a := range out.News {
		if strings.TrimSpace(a.Title) == "" {
			continue
		}
		articles = append(articles, a)
	}

	c.results.Set(key, articles, cache.DefaultExpiration)
	return articles, nil
}

// TimeRanges lists the accepted time windows.
func TimeRanges() []string {
	return []string{"Past week", DefaultTimeRange, "Past year", AnyTime}
}
