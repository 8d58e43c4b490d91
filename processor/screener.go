package processor

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"go-adverse/analyzer"
	"go-adverse/dateparse"
	"go-adverse/db"
	"go-adverse/insights"
	"go-adverse/logging"
	"go-adverse/newsfeed"
	"go-adverse/scoring"
	"go-adverse/types"
)

const DefaultBatchSize = 10

var (
	ErrEmptyQuery = errors.New("query must not be empty")
	// ErrNotPersisted is returned alongside a complete screening that could
	// not be saved.
	ErrNotPersisted = errors.New("screening not persisted")
)

// Extractor extracts entities from formatted articles, aligned by index.
type Extractor interface {
	ExtractEntities(ctx context.Context, texts []string) ([]types.EntityExtraction, error)
}

type Summarizer interface {
	Summarize(ctx context.Context, query string, articles []types.ScreenedArticle) (string, error)
}

type Store interface {
	SaveScreening(ctx context.Context, screening *types.Screening) error
}

// Deps are the collaborators of a Screener. Fallback, Summarizer and Store
// are optional.
type Deps struct {
	Source     newsfeed.Source
	Oracle     analyzer.Oracle
	Scorer     *scoring.Scorer
	Fallback   Extractor
	Summarizer Summarizer
	Store      Store
}

type Options struct {
	BatchSize int
	// AbortOnScoreError fails the whole screening on the first article that
	// cannot be scored instead of skipping it.
	AbortOnScoreError bool
	Now               func() time.Time
}

type Request struct {
	Query     string `json:"query"`
	ReturnNum int    `json:"returnNum"`
	TimeRange string `json:"timeRange"`
}

// Screener runs adverse media screenings: search, classify, extract, score,
// rank and aggregate.
type Screener struct {
	deps Deps
	opts Options
}

func NewScreener(deps Deps, opts Options) (*Screener, error) {
	if deps.Source == nil || deps.Oracle == nil || deps.Scorer == nil {
		return nil, fmt.Errorf("screener needs a news source, an oracle and a scorer")
	}
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Screener{deps: deps, opts: opts}, nil
}

// Screen screens req.Query. Articles that cannot be classified or scored are
// kept with an error and ranked last. When saving fails the finished
// screening is returned together with ErrNotPersisted.
func (s *Screener) Screen(ctx context.Context, req Request) (*types.Screening, error) {
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	now := s.opts.Now()
	screening := &types.Screening{
		ID:        uuid.NewString(),
		Query:     query,
		TimeRange: req.TimeRange,
		ReturnNum: req.ReturnNum,
		CreatedAt: now.UTC(),
	}
	log := logging.WithPrefix("screen").With("id", screening.ID, "query", query)

	articles, err := s.deps.Source.Search(ctx, query, req.ReturnNum, req.TimeRange)
	if err != nil {
		return nil, fmt.Errorf("news search: %w", err)
	}
	log.Info("Fetched articles", "count", len(articles))

	kept, screened := dedupe(articles)
	if dropped := len(articles) - len(kept); dropped > 0 {
		log.Warn("Dropped duplicate articles", "count", dropped)
	}
	articles = kept
	for i, a := range articles {
		if date, ok := dateparse.Normalize(a.Date, now); ok {
			screened[i].Date = date
		}
	}

	for start := 0; start < len(articles); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(articles))
		if err := s.processBatch(ctx, articles[start:end], screened[start:end]); err != nil {
			return nil, err
		}
	}

	rank(screened)

	screening.Articles = screened
	screening.ArticleCount = len(screened)
	var failed int
	for _, a := range screened {
		if a.Scored() {
			screening.ScoredCount++
		}
		if a.Category.Adverse() {
			screening.AdverseCount++
		}
		if a.Error != "" {
			failed++
		}
	}
	switch {
	case failed == 0:
		screening.Status = types.Completed
	case failed == len(screened):
		screening.Status = types.Failed
	default:
		screening.Status = types.Partial
	}

	screening.Insights = insights.Compute(screened)

	if s.deps.Summarizer != nil && screening.AdverseCount > 0 {
		summary, err := s.deps.Summarizer.Summarize(ctx, query, screened)
		if err != nil {
			log.Warn("Summary generation failed", "err", err)
		}
		screening.Summary = summary
	}

	log.Info("Screening finished",
		"status", screening.Status,
		"scored", screening.ScoredCount,
		"adverse", screening.AdverseCount,
		"severity", screening.Insights.Severity,
	)

	if s.deps.Store != nil {
		if err := s.deps.Store.SaveScreening(ctx, screening); err != nil {
			log.Error("Failed to save screening", "err", err)
			return screening, fmt.Errorf("%w: %v", ErrNotPersisted, err)
		}
	}
	return screening, nil
}

// processBatch classifies and extracts one batch concurrently, then scores
// each article into out. Only context cancellation and, with
// AbortOnScoreError, scoring failures end the screening.
func (s *Screener) processBatch(ctx context.Context, batch []types.Article, out []types.ScreenedArticle) error {
	texts := make([]string, len(batch))
	for i, a := range batch {
		texts[i] = analyzer.FormatArticle(a)
	}

	var classifications []types.ClassificationResult
	var extractions []types.EntityExtraction
	var extractErr error

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		classifications, err = s.deps.Oracle.Classify(gctx, texts)
		if err == nil && len(classifications) != len(texts) {
			err = fmt.Errorf("%w: %d classifications for %d articles", analyzer.ErrMisaligned, len(classifications), len(texts))
		}
		return err
	})
	g.Go(func() error {
		extractions, extractErr = s.deps.Oracle.ExtractEntities(gctx, texts)
		if extractErr == nil && len(extractions) != len(texts) {
			extractErr = fmt.Errorf("%w: %d extractions for %d articles", analyzer.ErrMisaligned, len(extractions), len(texts))
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn("Classification failed, skipping batch", "size", len(batch), "err", err)
		markFailed(out, "classification failed: "+err.Error())
		return nil
	}

	if extractErr != nil && s.deps.Fallback != nil {
		logging.Warn("Entity extraction failed, using fallback extractor", "size", len(batch), "err", extractErr)
		extractions, extractErr = s.deps.Fallback.ExtractEntities(ctx, texts)
		if extractErr == nil && len(extractions) != len(texts) {
			extractErr = fmt.Errorf("%w: %d extractions for %d articles", analyzer.ErrMisaligned, len(extractions), len(texts))
		}
	}
	if extractErr != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		logging.Warn("Entity extraction failed, skipping batch", "size", len(batch), "err", extractErr)
		markFailed(out, "entity extraction failed: "+extractErr.Error())
		for i := range out {
			applyClassification(&out[i], classifications[i])
		}
		return nil
	}

	for i := range out {
		applyClassification(&out[i], classifications[i])
		out[i].Entities = extractions[i]

		score, err := s.deps.Scorer.Score(classifications[i].ConfidenceScore, extractions[i])
		if err != nil {
			if s.opts.AbortOnScoreError {
				return fmt.Errorf("scoring %q: %w", out[i].Title, err)
			}
			logging.Warn("Skipping article that cannot be scored", "title", out[i].Title, "err", err)
			out[i].Error = err.Error()
			continue
		}
		out[i].Relevance = &score
	}
	return nil
}

// dedupe keeps the first article for each document ID. Both results are
// aligned by index.
func dedupe(articles []types.Article) ([]types.Article, []types.ScreenedArticle) {
	seen := make(map[string]bool, len(articles))
	kept := make([]types.Article, 0, len(articles))
	screened := make([]types.ScreenedArticle, 0, len(articles))
	for _, a := range articles {
		sa := types.ScreenedArticle{
			Title:   a.Title,
			Snippet: a.Snippet,
			URL:     a.Link,
			Source:  a.Source,
			RawDate: a.Date,
		}
		sa.ID = db.ArticleID(sa)
		if seen[sa.ID] {
			continue
		}
		seen[sa.ID] = true
		kept = append(kept, a)
		screened = append(screened, sa)
	}
	return kept, screened
}

func applyClassification(a *types.ScreenedArticle, c types.ClassificationResult) {
	a.Category = c.Category
	a.Confidence = c.ConfidenceScore
	a.Justification = c.Justification
}

func markFailed(articles []types.ScreenedArticle, reason string) {
	for i := range articles {
		articles[i].Error = reason
	}
}

// rank orders articles by relevance, highest first. Unscored articles go last
// and ties keep search order.
func rank(articles []types.ScreenedArticle) {
	sort.SliceStable(articles, func(i, j int) bool {
		a, b := articles[i], articles[j]
		if a.Scored() != b.Scored() {
			return a.Scored()
		}
		if !a.Scored() {
			return false
		}
		return a.Relevance.RelevanceScore > b.Relevance.RelevanceScore
	})
	for i := range articles {
		articles[i].Rank = i + 1
	}
}
