package handlers

import (
	"context"

	"go-adverse/processor"
	"go-adverse/scoring"
	"go-adverse/types"
)

type Screener interface {
	Screen(ctx context.Context, req processor.Request) (*types.Screening, error)
}

type ScreeningStore interface {
	GetScreening(ctx context.Context, id string) (*types.Screening, error)
	ListScreenings(ctx context.Context, limit int) ([]types.Screening, error)
}

// Handler serves the adverse media API. Screener and Store may be nil when
// the news search or Firestore is not configured.
type Handler struct {
	Screener Screener
	Scorer   *scoring.Scorer
	Store    ScreeningStore
}
