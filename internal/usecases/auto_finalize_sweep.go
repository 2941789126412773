package usecases

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
)

// DefaultSweepBatchSize caps how many trades one pass looks at.
const DefaultSweepBatchSize = 100

// TradeFinalizer settles one lapsed trade.
type TradeFinalizer interface {
	FinalizeExpired(ctx context.Context, tradeID uuid.UUID) (SweepOutcome, error)
	PreviewExpired(ctx context.Context, tradeID uuid.UUID) (SweepOutcome, error)
}

// SweepFailure is one trade the sweep could not settle.
type SweepFailure struct {
	TradeID uuid.UUID `json:"tradeId"`
	Error   string    `json:"error"`
}

// SweepSummary reports one sweep pass.
type SweepSummary struct {
	DryRun    bool           `json:"dryRun"`
	Scanned   int            `json:"scanned"`
	Finalized int            `json:"finalized"`
	Skipped   int            `json:"skipped"`
	Noop      int            `json:"noop"`
	Failures  []SweepFailure `json:"failures,omitempty"`
}

// AutoFinalizeSweep completes confirming trades whose window lapsed.
type AutoFinalizeSweep struct {
	tradeRepo repositories.TradeRepository
	finalizer TradeFinalizer
	clock     clock.Clock
	batchSize int
}

func NewAutoFinalizeSweep(tradeRepo repositories.TradeRepository, finalizer TradeFinalizer, clk clock.Clock, batchSize int) *AutoFinalizeSweep {
	if batchSize <= 0 {
		batchSize = DefaultSweepBatchSize
	}
	return &AutoFinalizeSweep{tradeRepo: tradeRepo, finalizer: finalizer, clock: clk, batchSize: batchSize}
}

// Run settles every eligible trade. A failing trade is recorded in the summary
// and the pass moves on. With dryRun nothing is written.
func (s *AutoFinalizeSweep) Run(ctx context.Context, dryRun bool) (*SweepSummary, error) {
	ids, err := s.tradeRepo.ListExpiredConfirming(ctx, s.clock.Now(), s.batchSize)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}

	summary := &SweepSummary{DryRun: dryRun, Scanned: len(ids)}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		var outcome SweepOutcome
		if dryRun {
			outcome, err = s.finalizer.PreviewExpired(ctx, id)
		} else {
			outcome, err = s.finalizer.FinalizeExpired(ctx, id)
		}
		if err != nil {
			logger.Error(ctx, "Auto-finalize failed", zap.String("trade_id", id.String()), zap.Error(err))
			summary.Failures = append(summary.Failures, SweepFailure{TradeID: id, Error: err.Error()})
			continue
		}
		switch outcome {
		case SweepOutcomeFinalized:
			summary.Finalized++
		case SweepOutcomeSkipped:
			logger.Info(ctx, "Auto-finalize skipped, trade has a live dispute", zap.String("trade_id", id.String()))
			summary.Skipped++
		default:
			summary.Noop++
		}
	}

	logger.Info(ctx, "Auto-finalize sweep finished",
		zap.Bool("dry_run", dryRun),
		zap.Int("scanned", summary.Scanned),
		zap.Int("finalized", summary.Finalized),
		zap.Int("skipped", summary.Skipped),
		zap.Int("failed", len(summary.Failures)),
	)
	return summary, nil
}
