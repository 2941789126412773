// Command sweep runs one auto-finalize pass outside the server. With -dry-run
// it reports what would happen and writes nothing.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"cardswap.backend/internal/app"
	"cardswap.backend/internal/config"
	"cardswap.backend/internal/infrastructure/datasources/postgres"
	"cardswap.backend/internal/infrastructure/jobs"
	"cardswap.backend/internal/infrastructure/notify"
	"cardswap.backend/internal/usecases"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/redis"
)

var errSweepLocked = errors.New("another sweep holds the lock")

type sweepRuntime struct {
	sweeper jobs.Sweeper
	locker  jobs.Locker
	// flush blocks until queued notifications are delivered.
	flush func()
}

type sweepDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config, live bool) (*sweepRuntime, io.Closer, error)
	out     io.Writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultSweepDeps() sweepDeps {
	return sweepDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: prepareRuntime,
		out:     os.Stdout,
	}
}

func prepareRuntime(cfg *config.Config, live bool) (*sweepRuntime, io.Closer, error) {
	var notifier usecases.Notifier
	if live {
		if err := redis.Init(cfg.Redis.URL, cfg.Redis.Password); err != nil {
			return nil, nil, fmt.Errorf("failed to initialize redis: %w", err)
		}
		notifier = notify.NewRedisNotifier(cfg.Redis.EventChannel)
	}

	db, err := postgres.NewConnection(cfg.Database)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect db: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
	}

	core, err := app.Build(db, cfg, notifier, clock.System{})
	if err != nil {
		_ = sqlDB.Close()
		return nil, nil, err
	}
	return &sweepRuntime{
		sweeper: core.Sweep,
		locker:  jobs.RedisLocker{},
		flush:   core.Dispatcher.Wait,
	}, sqlDB, nil
}

func runSweep(args []string, deps sweepDeps) error {
	def := defaultSweepDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("sweep", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "report outcomes without writing")
	batchSize := fs.Int("batch-size", 0, "max trades to examine (default from SWEEP_BATCH_SIZE)")
	lockTTL := fs.Duration("lock-ttl", 0, "sweep lock lifetime (default from SWEEP_LOCK_TTL)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batchSize < 0 {
		return fmt.Errorf("invalid -batch-size: %d", *batchSize)
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}
	cfg := deps.loadCfg()
	logger.Init(cfg.Server.Env)
	if *batchSize > 0 {
		cfg.Jobs.SweepBatchSize = *batchSize
	}
	if *lockTTL > 0 {
		cfg.Jobs.SweepLockTTL = *lockTTL
	}

	runtime, closer, err := deps.prepare(cfg, !*dryRun)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	ctx := context.Background()
	if !*dryRun {
		ok, release, err := runtime.locker.Acquire(ctx, jobs.SweepLockKey, uuid.NewString(), cfg.Jobs.SweepLockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire sweep lock: %w", err)
		}
		if !ok {
			return errSweepLocked
		}
		defer func() { _ = release(context.Background()) }()
	}

	summary, err := runtime.sweeper.Run(ctx, *dryRun)
	if runtime.flush != nil {
		runtime.flush()
	}
	if err != nil {
		return fmt.Errorf("sweep failed: %w", err)
	}

	enc := json.NewEncoder(deps.out)
	enc.SetIndent("", "  ")
	return enc.Encode(summary)
}

func main() {
	start := time.Now()
	if err := runSweep(os.Args[1:], defaultSweepDeps()); err != nil {
		log.Fatal(err)
	}
	log.Printf("sweep finished in %s", time.Since(start).Round(time.Millisecond))
}
