package cronjobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"go-adverse/logging"
	"go-adverse/processor"
	"go-adverse/types"
)

const screeningTimeout = 10 * time.Minute

type Screener interface {
	Screen(ctx context.Context, req processor.Request) (*types.Screening, error)
}

// Watchlist describes the names screened on a schedule.
type Watchlist struct {
	Names     []string
	Schedule  string
	TimeRange string
	ReturnNum int
}

// InitCronJobs schedules the watchlist screenings and starts the scheduler.
// The returned cron must be stopped by the caller.
func InitCronJobs(screener Screener, wl Watchlist) (*cron.Cron, error) {
	logging.Info("Starting cron jobs", "names", len(wl.Names), "schedule", wl.Schedule)
	c := cron.New()

	_, err := c.AddFunc(wl.Schedule, func() {
		logging.Info("CronJob: watchlist screening running")
		RunWatchlist(context.Background(), screener, wl)
	})
	if err != nil {
		return nil, err
	}

	c.Start()
	return c, nil
}

// RunWatchlist screens every watchlist name in turn. A failing name is logged
// and does not stop the others. It returns the number of screenings that
// completed.
func RunWatchlist(ctx context.Context, screener Screener, wl Watchlist) int {
	done := 0
	for _, name := range wl.Names {
		if ctx.Err() != nil {
			break
		}

		sctx, cancel := context.WithTimeout(ctx, screeningTimeout)
		screening, err := screener.Screen(sctx, processor.Request{
			Query:     name,
			ReturnNum: wl.ReturnNum,
			TimeRange: wl.TimeRange,
		})
		cancel()
		if err != nil {
			logging.Error("CronJob: watchlist screening failed", "name", name, "err", err)
			continue
		}

		done++
		logging.Info("CronJob: watchlist screening done",
			"name", name,
			"id", screening.ID,
			"adverse", screening.AdverseCount,
			"severity", screening.Insights.Severity,
		)
	}
	return done
}
