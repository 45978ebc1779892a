package workflows

import (
	"fmt"
	"time"

	"go.temporal.io/sdk/temporal"
	"go.temporal.io/sdk/workflow"

	"github.com/samirrijal/balloonwind/internal/core/domain"
)

// FeedWarmTaskQueue is the task queue the warmer worker polls.
const FeedWarmTaskQueue = "feed-warm-queue"

// FeedWarmInput is the input for the feed warm workflow.
type FeedWarmInput struct {
	// Hours back to warm, inclusive of the current hour.
	Hours int
	// Broadcast the current hour to live subscribers once warmed.
	Broadcast bool
}

// FeedWarmResult summarizes one run.
type FeedWarmResult struct {
	Warmed      []int
	Unpublished []int
	Failed      []int
	Fixes       int
	Positions   int
}

// FeedWarmWorkflow refreshes every hourly file of the window into the cache
// in parallel, then optionally broadcasts the current hour. A failing
// historic hour is recorded and skipped; the run fails only when nothing
// could be warmed.
func FeedWarmWorkflow(ctx workflow.Context, input FeedWarmInput) (FeedWarmResult, error) {
	logger := workflow.GetLogger(ctx)

	if input.Hours < 0 || input.Hours > domain.MaxHoursBack {
		return FeedWarmResult{}, temporal.NewNonRetryableApplicationError(
			fmt.Sprintf("hours must be between 0 and %d, got %d", domain.MaxHoursBack, input.Hours), "invalid_input", nil)
	}
	logger.Info("Starting feed warm workflow", "hours", input.Hours)

	ctx = workflow.WithActivityOptions(ctx, workflow.ActivityOptions{
		StartToCloseTimeout: 30 * time.Second,
		RetryPolicy: &temporal.RetryPolicy{
			InitialInterval: 2 * time.Second,
			MaximumAttempts: 3,
		},
	})

	futures := make([]workflow.Future, input.Hours+1)
	for h := 0; h <= input.Hours; h++ {
		futures[h] = workflow.ExecuteActivity(ctx, "WarmHour", h)
	}

	var result FeedWarmResult
	latestReady := false
	for h, f := range futures {
		var r WarmHourResult
		if err := f.Get(ctx, &r); err != nil {
			logger.Warn("warm hour failed", "hour", h, "error", err)
			result.Failed = append(result.Failed, h)
			continue
		}
		if r.Unpublished {
			result.Unpublished = append(result.Unpublished, h)
			continue
		}
		result.Warmed = append(result.Warmed, h)
		result.Fixes += r.Fixes
		if h == 0 {
			latestReady = true
		}
	}

	if len(result.Warmed) == 0 && len(result.Failed) > 0 {
		return result, fmt.Errorf("feed warm: no hour warmed, %d failed", len(result.Failed))
	}

	if input.Broadcast && latestReady {
		if err := workflow.ExecuteActivity(ctx, "PublishLatest").Get(ctx, &result.Positions); err != nil {
			// cache is warm regardless; live subscribers catch up on the next run
			logger.Warn("publish latest failed", "error", err)
		}
	}

	logger.Info("Feed warm complete",
		"warmed", len(result.Warmed), "unpublished", len(result.Unpublished), "failed", len(result.Failed))
	return result, nil
}
