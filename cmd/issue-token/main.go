// Command issue-token mints an access token for an existing user, for local
// testing and operator access.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"cardswap.backend/internal/config"
	"cardswap.backend/internal/domain/entities"
	domainrepo "cardswap.backend/internal/domain/repositories"
	"cardswap.backend/internal/infrastructure/datasources/postgres"
	"cardswap.backend/internal/infrastructure/repositories"
	"cardswap.backend/pkg/jwt"
)

var openIssueTokenDB = postgres.NewConnection

var openIssueTokenSQLDB = func(db *gorm.DB) (io.Closer, error) {
	return db.DB()
}

type issueTokenRuntime interface {
	GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error)
	Issue(userID uuid.UUID, role string) (string, error)
}

type issueTokenDeps struct {
	loadEnv func() error
	loadCfg func() *config.Config
	prepare func(cfg *config.Config, ttl time.Duration) (issueTokenRuntime, io.Closer, error)
	now     func() time.Time
	out     io.Writer
}

type issueTokenRuntimeImpl struct {
	userRepo domainrepo.UserRepository
	issuer   *jwt.Issuer
}

func (r issueTokenRuntimeImpl) GetUserByID(ctx context.Context, userID uuid.UUID) (*entities.User, error) {
	return r.userRepo.GetByID(ctx, userID)
}

func (r issueTokenRuntimeImpl) Issue(userID uuid.UUID, role string) (string, error) {
	return r.issuer.Issue(userID, role)
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

func defaultIssueTokenDeps() issueTokenDeps {
	return issueTokenDeps{
		loadEnv: func() error { return godotenv.Load() },
		loadCfg: config.Load,
		prepare: func(cfg *config.Config, ttl time.Duration) (issueTokenRuntime, io.Closer, error) {
			db, err := openIssueTokenDB(cfg.Database)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to connect db: %w", err)
			}

			sqlDB, err := openIssueTokenSQLDB(db)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to init sql db: %w", err)
			}

			return issueTokenRuntimeImpl{
				userRepo: repositories.NewUserRepository(db),
				issuer:   jwt.NewIssuer(cfg.JWT.Secret, cfg.JWT.Issuer, ttl),
			}, sqlDB, nil
		},
		now: time.Now,
		out: os.Stdout,
	}
}

func parseUserID(userID string) (uuid.UUID, error) {
	if userID == "" {
		return uuid.Nil, fmt.Errorf("--user-id is required")
	}
	return uuid.Parse(userID)
}

func runIssueToken(args []string, deps issueTokenDeps) error {
	def := defaultIssueTokenDeps()
	if deps.loadEnv == nil {
		deps.loadEnv = def.loadEnv
	}
	if deps.loadCfg == nil {
		deps.loadCfg = def.loadCfg
	}
	if deps.now == nil {
		deps.now = def.now
	}
	if deps.prepare == nil {
		deps.prepare = def.prepare
	}
	if deps.out == nil {
		deps.out = def.out
	}

	fs := flag.NewFlagSet("issue-token", flag.ContinueOnError)
	userIDFlag := fs.String("user-id", "", "target user UUID (required)")
	ttlFlag := fs.Duration("ttl", 0, "token lifetime (default from JWT_ACCESS_EXPIRY)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	userID, err := parseUserID(*userIDFlag)
	if err != nil {
		return err
	}
	if *ttlFlag < 0 {
		return fmt.Errorf("invalid -ttl: %s", *ttlFlag)
	}

	if err := deps.loadEnv(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := deps.loadCfg()
	ttl := cfg.JWT.AccessExpiry
	if *ttlFlag > 0 {
		ttl = *ttlFlag
	}

	runtime, closer, err := deps.prepare(cfg, ttl)
	if err != nil {
		return err
	}
	if closer == nil {
		closer = nopCloser{}
	}
	defer closer.Close()

	user, err := runtime.GetUserByID(context.Background(), userID)
	if err != nil {
		return fmt.Errorf("failed to load user %s: %w", userID, err)
	}
	if !user.IsActive() {
		return fmt.Errorf("user %s is not active (status=%s)", userID, user.Status)
	}

	role := jwt.RoleUser
	if user.IsAdmin() {
		role = jwt.RoleAdmin
	}
	token, err := runtime.Issue(userID, role)
	if err != nil {
		return fmt.Errorf("failed issuing token: %w", err)
	}

	_, _ = fmt.Fprintf(deps.out, "user_id=%s\n", userID.String())
	_, _ = fmt.Fprintf(deps.out, "role=%s\n", role)
	_, _ = fmt.Fprintf(deps.out, "expires_at=%s\n", deps.now().Add(ttl).UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(deps.out, "ACCESS_TOKEN=%s\n", token)
	return nil
}

func main() {
	if err := runIssueToken(os.Args[1:], defaultIssueTokenDeps()); err != nil {
		log.Fatal(err)
	}
}
