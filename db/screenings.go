package db

import (
	"context"
	"fmt"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"go-adverse/logging"
	"go-adverse/types"
)

const (
	screeningsCollection = "screenings"
	articlesCollection   = "articles"
)

// ArticleID is the document ID of an article inside its screening.
func ArticleID(a types.ScreenedArticle) string {
	if a.URL != "" {
		return HashString(a.URL)
	}
	return HashString(a.Title)
}

// SaveScreening writes the screening document, then its articles to the
// articles subcollection using BulkWriter.
func (s *Store) SaveScreening(ctx context.Context, screening *types.Screening) error {
	if screening.ID == "" {
		return fmt.Errorf("cannot save screening without an ID")
	}

	screeningRef := s.client.Collection(screeningsCollection).Doc(screening.ID)
	if _, err := screeningRef.Set(ctx, screening); err != nil {
		return fmt.Errorf("error saving screening %s: %w", screening.ID, err)
	}

	if len(screening.Articles) == 0 {
		return nil
	}

	bw := s.client.BulkWriter(ctx)
	articlesRef := screeningRef.Collection(articlesCollection)

	jobs, failed := enqueueArticles(screening.ID, screening.Articles, func(a *types.ScreenedArticle) (*firestore.BulkWriterJob, error) {
		return bw.Set(articlesRef.Doc(a.ID), a)
	})

	// End flushes the remaining writes and waits for them to complete.
	bw.End()

	for _, job := range jobs {
		if _, err := job.Results(); err != nil {
			failed++
			logging.Warn("Error saving article", "screening", screening.ID, "err", err)
		}
	}
	if failed > 0 {
		return fmt.Errorf("failed to save %d of %d articles for screening %s", failed, len(screening.Articles), screening.ID)
	}

	logging.Debug("Saved screening", "id", screening.ID, "articles", len(jobs))
	return nil
}

// enqueueArticles assigns missing article IDs and hands each article to set.
// Articles that could not be enqueued are counted in failed.
func enqueueArticles(screeningID string, articles []types.ScreenedArticle, set func(*types.ScreenedArticle) (*firestore.BulkWriterJob, error)) (jobs []*firestore.BulkWriterJob, failed int) {
	for i := range articles {
		article := &articles[i]
		if article.ID == "" {
			article.ID = ArticleID(*article)
		}

		job, err := set(article)
		if err != nil {
			failed++
			logging.Warn("Error enqueueing article for save", "screening", screeningID, "article", article.ID, "err", err)
			continue
		}
		jobs = append(jobs, job)
	}
	return jobs, failed
}

// GetScreening retrieves a screening with its ranked articles.
func (s *Store) GetScreening(ctx context.Context, id string) (*types.Screening, error) {
	docSnap, err := s.client.Collection(screeningsCollection).Doc(id).Get(ctx)
	if err != nil {
		if notFound(err) {
			return nil, fmt.Errorf("screening %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("error getting screening %s: %w", id, err)
	}

	var screening types.Screening
	if err := docSnap.DataTo(&screening); err != nil {
		return nil, fmt.Errorf("error converting document %s to Screening: %w", id, err)
	}
	screening.ID = docSnap.Ref.ID

	articles, err := s.GetScreeningArticles(ctx, id)
	if err != nil {
		return nil, err
	}
	screening.Articles = articles
	return &screening, nil
}

// ListScreenings returns the most recent screenings without their articles.
func (s *Store) ListScreenings(ctx context.Context, limit int) ([]types.Screening, error) {
	query := s.client.Collection(screeningsCollection).OrderBy("createdAt", firestore.Desc)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	screenings := []types.Screening{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating screenings collection: %w", err)
		}

		var screening types.Screening
		if err := doc.DataTo(&screening); err != nil {
			logging.Warn("Error converting document to Screening, skipping", "id", doc.Ref.ID, "err", err)
			continue
		}
		screening.ID = doc.Ref.ID
		screenings = append(screenings, screening)
	}
	return screenings, nil
}

// GetScreeningArticles returns a screening's articles in rank order.
func (s *Store) GetScreeningArticles(ctx context.Context, id string) ([]types.ScreenedArticle, error) {
	iter := s.client.Collection(screeningsCollection).Doc(id).
		Collection(articlesCollection).
		OrderBy("rank", firestore.Asc).
		Documents(ctx)
	defer iter.Stop()

	articles := []types.ScreenedArticle{}
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error iterating articles of screening %s: %w", id, err)
		}

		var article types.ScreenedArticle
		if err := doc.DataTo(&article); err != nil {
			logging.Warn("Error converting document to ScreenedArticle, skipping", "id", doc.Ref.ID, "err", err)
			continue
		}
		article.ID = doc.Ref.ID
		articles = append(articles, article)
	}
	return articles, nil
}
