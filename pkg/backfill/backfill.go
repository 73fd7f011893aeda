// Package backfill assigns design identifiers to rows stored before
// identifiers were issued on create.
package backfill

import (
	"context"
	"errors"
	"math"
	"time"

	"github.com/trix-studio/trix/pkg/trix/repositories"
	"go.uber.org/zap"
)

const defaultBatchSize = 100

type Options struct {
	DryRun    bool
	BatchSize int
	// Now is the clock used for new identifiers; defaults to time.Now.
	Now func() time.Time
}

type Result struct {
	Pending  int
	Assigned int
	Skipped  int
	Failed   int
}

// Run assigns an identifier and metadata record to every design that has
// none. Designs that already carry an identifier are never touched. With
// DryRun set only the pending designs are counted.
func Run(ctx context.Context, repo repositories.DesignRepository, opts Options) (Result, error) {
	if repo == nil {
		return Result{}, errors.New("design repository is nil")
	}
	batch := opts.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	logger := zap.L().With(zap.Bool("dry_run", opts.DryRun))
	result := Result{}

	if opts.DryRun {
		pending, err := repo.WithoutToken(ctx, math.MaxInt32)
		if err != nil {
			return result, err
		}
		result.Pending = len(pending)
		for _, d := range pending {
			logger.Info("design without identifier", zap.Uint("design_id", d.ID), zap.String("title", d.Title))
		}
		logger.Info("backfill finished", zap.Int("pending", result.Pending))
		return result, nil
	}

	failed := map[uint]bool{}
	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		designs, err := repo.WithoutToken(ctx, batch+len(failed))
		if err != nil {
			return result, err
		}

		progressed := false
		for i := range designs {
			d := &designs[i]
			if failed[d.ID] {
				continue
			}
			result.Pending++
			assigned, err := repo.AssignToken(ctx, d, now())
			switch {
			case err != nil:
				logger.Warn("assigning identifier failed", zap.Uint("design_id", d.ID), zap.Error(err))
				failed[d.ID] = true
				result.Failed++
			case assigned:
				logger.Info("identifier assigned", zap.Uint("design_id", d.ID), zap.String("token_id", d.Token()))
				result.Assigned++
				progressed = true
			default:
				result.Skipped++
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}

	logger.Info("backfill finished",
		zap.Int("pending", result.Pending),
		zap.Int("assigned", result.Assigned),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return result, nil
}
