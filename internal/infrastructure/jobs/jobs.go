package jobs

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardswap.backend/internal/infrastructure/metrics"
	"cardswap.backend/internal/usecases"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/redis"
)

// SweepLockKey guards the auto-finalize sweep across replicas.
const SweepLockKey = "cardswap:lock:auto_finalize_sweep"

// Sweeper runs one auto-finalize pass.
type Sweeper interface {
	Run(ctx context.Context, dryRun bool) (*usecases.SweepSummary, error)
}

// Locker hands out a single-runner lease.
type Locker interface {
	Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, func(context.Context) error, error)
}

// RedisLocker leases through the shared Redis client.
type RedisLocker struct{}

func (RedisLocker) Acquire(ctx context.Context, key, token string, ttl time.Duration) (bool, func(context.Context) error, error) {
	return redis.AcquireLock(ctx, key, token, ttl)
}

// AutoFinalizeJob runs the sweep while holding the cluster lease.
type AutoFinalizeJob struct {
	sweeper Sweeper
	locker  Locker
	lockTTL time.Duration
	metrics *metrics.Metrics
}

func NewAutoFinalizeJob(sweeper Sweeper, locker Locker, lockTTL time.Duration, m *metrics.Metrics) *AutoFinalizeJob {
	return &AutoFinalizeJob{sweeper: sweeper, locker: locker, lockTTL: lockTTL, metrics: m}
}

func (j *AutoFinalizeJob) Name() string { return "auto_finalize_sweep" }

func (j *AutoFinalizeJob) Run(ctx context.Context) {
	started := time.Now()
	defer j.metrics.ObserveJob(j.Name(), started)

	ok, release, err := j.locker.Acquire(ctx, SweepLockKey, uuid.NewString(), j.lockTTL)
	if err != nil {
		logger.Error(ctx, "Sweep lock unavailable", zap.Error(err))
		j.metrics.ObserveSweep("lock_error", 0, 0, 0)
		return
	}
	if !ok {
		logger.Debug(ctx, "Sweep already running elsewhere")
		j.metrics.ObserveSweep("lock_held", 0, 0, 0)
		return
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			logger.Warn(ctx, "Sweep lock release failed", zap.Error(err))
		}
	}()

	summary, err := j.sweeper.Run(ctx, false)
	if err != nil {
		logger.Error(ctx, "Auto-finalize sweep failed", zap.Error(err))
		j.metrics.ObserveSweep("error", 0, 0, 0)
		return
	}
	j.metrics.ObserveSweep("ok", summary.Finalized, summary.Skipped, len(summary.Failures))
}

// FraudScanner re-runs the heuristics over active users.
type FraudScanner interface {
	ScanActiveUsers(ctx context.Context) (*usecases.FraudScanSummary, error)
}

// FraudScanJob periodically rescans the active user base.
type FraudScanJob struct {
	scanner FraudScanner
	metrics *metrics.Metrics
}

func NewFraudScanJob(scanner FraudScanner, m *metrics.Metrics) *FraudScanJob {
	return &FraudScanJob{scanner: scanner, metrics: m}
}

func (j *FraudScanJob) Name() string { return "fraud_scan" }

func (j *FraudScanJob) Run(ctx context.Context) {
	defer j.metrics.ObserveJob(j.Name(), time.Now())

	summary, err := j.scanner.ScanActiveUsers(ctx)
	if err != nil {
		logger.Error(ctx, "Fraud scan failed", zap.Error(err))
		return
	}
	if summary.FlagsRaised > 0 {
		logger.Info(ctx, "Fraud scan raised flags",
			zap.Int("users_scanned", summary.UsersScanned),
			zap.Int("flags_raised", summary.FlagsRaised),
		)
	}
}

// ListingExpirer marks lapsed cards expired.
type ListingExpirer interface {
	ExpireListings(ctx context.Context) (int64, error)
}

// CardExpiryJob expires listings whose card passed its expiry date.
type CardExpiryJob struct {
	expirer ListingExpirer
	metrics *metrics.Metrics
}

func NewCardExpiryJob(expirer ListingExpirer, m *metrics.Metrics) *CardExpiryJob {
	return &CardExpiryJob{expirer: expirer, metrics: m}
}

func (j *CardExpiryJob) Name() string { return "card_expiry" }

func (j *CardExpiryJob) Run(ctx context.Context) {
	defer j.metrics.ObserveJob(j.Name(), time.Now())

	n, err := j.expirer.ExpireListings(ctx)
	if err != nil {
		logger.Error(ctx, "Card expiry failed", zap.Error(err))
		return
	}
	if n > 0 {
		logger.Info(ctx, "Expired gift card listings", zap.Int64("count", n))
	}
}
