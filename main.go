package main

import (
	"context"
	"os"

	"go-adverse/analyzer"
	"go-adverse/config"
	"go-adverse/cronjobs"
	"go-adverse/db"
	"go-adverse/handlers"
	"go-adverse/logging"
	"go-adverse/newsfeed"
	"go-adverse/nlp"
	"go-adverse/processor"
	"go-adverse/routes"
	"go-adverse/scoring"
	"go-adverse/summarization"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal("Failed to load configuration", "err", err)
	}
	if err := logging.Init(os.Stderr, cfg.LogLevel); err != nil {
		logging.Fatal("Failed to initialize logging", "err", err)
	}
	ctx := context.Background()

	scoreCfg := scoring.DefaultConfig()
	scoreCfg.ComponentWeights = scoring.ComponentWeights{
		ClassificationConfidence: cfg.ConfidenceWeight,
		EntityType:               cfg.EntityWeight,
	}
	scorer, err := scoring.NewScorer(scoreCfg)
	if err != nil {
		logging.Fatal("Invalid score weights", "err", err)
	}

	h := &handlers.Handler{Scorer: scorer}
	deps := processor.Deps{Scorer: scorer}

	// Init firestore
	if cfg.FirebaseCredentials != "" {
		firestoreClient, err := db.InitFirestore(ctx, cfg.FirebaseCredentials)
		if err != nil {
			logging.Fatal("Failed to initialize Firestore", "err", err)
		}
		store := db.NewStore(firestoreClient)
		defer store.Close()
		h.Store = store
		deps.Store = store
	} else {
		logging.Warn("FIREBASE_CREDENTIALS not set, screenings will not be persisted")
	}

	// Natural Language API as fallback entity extractor
	if cfg.NaturalLanguageCredential != "" {
		langClient, err := nlp.InitLanguageClient(ctx, cfg.NaturalLanguageCredential)
		if err != nil {
			logging.Fatal("Failed to create Natural Language client", "err", err)
		}
		defer langClient.Close()
		deps.Fallback = nlp.NewExtractor(langClient)
	}

	if cfg.SerperAPIKey != "" && cfg.OpenAI.APIKey != "" {
		oracle, err := analyzer.New(cfg.OpenAI)
		if err != nil {
			logging.Fatal("Failed to create OpenAI client", "err", err)
		}
		deps.Source = newsfeed.NewClient(cfg.SerperAPIKey)
		deps.Oracle = oracle
		deps.Summarizer = summarization.New(oracle.Client(), oracle.Model())

		screener, err := processor.NewScreener(deps, processor.Options{
			BatchSize:         cfg.BatchSize,
			AbortOnScoreError: cfg.AbortOnScoreError,
		})
		if err != nil {
			logging.Fatal("Failed to create screener", "err", err)
		}
		h.Screener = screener

		if len(cfg.Watchlist) > 0 {
			c, err := cronjobs.InitCronJobs(screener, cronjobs.Watchlist{
				Names:     cfg.Watchlist,
				Schedule:  cfg.WatchlistSchedule,
				TimeRange: cfg.WatchlistTimeRange,
				ReturnNum: cfg.WatchlistReturnNum,
			})
			if err != nil {
				logging.Fatal("Error scheduling watchlist", "err", err)
			}
			defer c.Stop()
		}
	} else {
		logging.Warn("SERPER_API_KEY or OPENAI_API_KEY not set, only scoring is available")
	}

	r := routes.SetupRouter(h)
	if err := r.Run(":" + cfg.Port); err != nil {
		logging.Fatal("Failed to start server", "err", err)
	}
}
