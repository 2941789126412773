package repositories

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// sqlCapture collects the SQL gorm builds for queries.
type sqlCapture struct {
	mu    sync.Mutex
	stmts []string
}

func (c *sqlCapture) last(t *testing.T) string {
	t.Helper()
	c.mu.Lock()
	defer c.mu.Unlock()
	require.NotEmpty(t, c.stmts, "no query was built")
	return c.stmts[len(c.stmts)-1]
}

// newPostgresDryRun opens a Postgres dialect handle that renders statements
// without connecting, so the locking clause sqlite drops can be asserted.
func newPostgresDryRun(t *testing.T) (*gorm.DB, *sqlCapture) {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  "host=127.0.0.1 port=1 user=postgres dbname=cardswap sslmode=disable",
		PreferSimpleProtocol: true,
	}), &gorm.Config{
		DryRun:               true,
		DisableAutomaticPing: true,
		Logger:               logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	capture := &sqlCapture{}
	err = db.Callback().Query().After("gorm:query").Register("test:capture_sql", func(tx *gorm.DB) {
		capture.mu.Lock()
		defer capture.mu.Unlock()
		capture.stmts = append(capture.stmts, tx.Statement.SQL.String())
	})
	require.NoError(t, err)
	return db, capture
}

func TestRowLock_PostgresReadsForUpdate(t *testing.T) {
	db, capture := newPostgresDryRun(t)
	u := &UnitOfWorkImpl{db: db}
	id := uuid.New()

	reads := map[string]func(ctx context.Context){
		"users":           func(ctx context.Context) { _, _ = NewUserRepository(db).GetByID(ctx, id) },
		"gift_cards":      func(ctx context.Context) { _, _ = NewGiftCardRepository(db).GetByID(ctx, id) },
		"trades":          func(ctx context.Context) { _, _ = NewTradeRepository(db).GetByID(ctx, id) },
		"sales":           func(ctx context.Context) { _, _ = NewSaleRepository(db).GetByID(ctx, id) },
		"escrow_sessions": func(ctx context.Context) { _, _ = NewEscrowRepository(db).GetByTradeID(ctx, id) },
		"disputes":        func(ctx context.Context) { _, _ = NewDisputeRepository(db).GetByID(ctx, id) },
		"fraud_flags":     func(ctx context.Context) { _, _ = NewFraudFlagRepository(db).GetByID(ctx, id) },
	}

	for table, read := range reads {
		t.Run(table, func(t *testing.T) {
			read(u.WithLock(context.Background()))
			locked := capture.last(t)
			assert.Contains(t, locked, `FROM "`+table+`"`)
			assert.True(t, strings.HasSuffix(locked, "FOR UPDATE"), "locked read: %s", locked)

			read(context.Background())
			plain := capture.last(t)
			assert.NotContains(t, plain, "FOR UPDATE")
		})
	}
}
