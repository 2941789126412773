package main

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"cardswap.backend/internal/config"
	"cardswap.backend/internal/domain/entities"
	"cardswap.backend/internal/infrastructure/repositories"
	"cardswap.backend/internal/testutil"
	"cardswap.backend/pkg/jwt"
)

func TestParseUserID(t *testing.T) {
	if _, err := parseUserID(""); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := parseUserID("bad-uuid"); err == nil {
		t.Fatal("expected error for invalid uuid")
	}

	id := uuid.New()
	got, err := parseUserID(id.String())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != id {
		t.Fatalf("expected %s got %s", id, got)
	}
}

func TestMain_ExitsWhenUserIDMissing(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_ISSUE_TOKEN") == "1" {
		os.Args = []string{"issue-token"}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_ExitsWhenUserIDMissing")
	cmd.Env = append(os.Environ(), "GO_WANT_HELPER_ISSUE_TOKEN=1")
	if err := cmd.Run(); err == nil {
		t.Fatal("expected helper process to fail when --user-id is missing")
	}
}

func TestMain_ExitsOnDBConnectionFailure(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_ISSUE_TOKEN") == "2" {
		os.Args = []string{"issue-token", "-user-id", os.Getenv("HELPER_USER_ID")}
		main()
		return
	}

	cmd := exec.Command(os.Args[0], "-test.run=TestMain_ExitsOnDBConnectionFailure")
	cmd.Env = append(os.Environ(),
		"GO_WANT_HELPER_ISSUE_TOKEN=2",
		"HELPER_USER_ID="+uuid.NewString(),
		"DB_HOST=127.0.0.1",
		"DB_PORT=1",
		"DB_USER=postgres",
		"DB_PASSWORD=postgres",
		"DB_NAME=cardswap",
		"DB_SSLMODE=disable",
	)
	if err := cmd.Run(); err == nil {
		t.Fatal("expected helper process to fail on DB connection")
	}
}

type fakeTokenRuntime struct {
	user     *entities.User
	getErr   error
	issueErr error
	role     *string
}

func (f fakeTokenRuntime) GetUserByID(context.Context, uuid.UUID) (*entities.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.user, nil
}

func (f fakeTokenRuntime) Issue(_ uuid.UUID, role string) (string, error) {
	if f.role != nil {
		*f.role = role
	}
	if f.issueErr != nil {
		return "", f.issueErr
	}
	return "signed-token", nil
}

func nowFunc(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func depsWith(rt issueTokenRuntime, out io.Writer) issueTokenDeps {
	cfg := &config.Config{}
	cfg.JWT.AccessExpiry = 15 * time.Minute
	return issueTokenDeps{
		loadEnv: func() error { return nil },
		loadCfg: func() *config.Config { return cfg },
		prepare: func(*config.Config, time.Duration) (issueTokenRuntime, io.Closer, error) {
			return rt, nopCloser{}, nil
		},
		now: nowFunc(time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)),
		out: out,
	}
}

func TestRunIssueToken_Branches(t *testing.T) {
	userID := uuid.New()

	t.Run("flag parse error", func(t *testing.T) {
		if err := runIssueToken([]string{"-unknown-flag"}, depsWith(fakeTokenRuntime{}, io.Discard)); err == nil {
			t.Fatal("expected parse error")
		}
	})

	t.Run("negative ttl", func(t *testing.T) {
		err := runIssueToken([]string{"-user-id", userID.String(), "-ttl", "-1m"}, depsWith(fakeTokenRuntime{}, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "invalid -ttl") {
			t.Fatalf("expected ttl error, got %v", err)
		}
	})

	t.Run("prepare error", func(t *testing.T) {
		deps := depsWith(nil, io.Discard)
		deps.loadEnv = func() error { return errors.New("no env") }
		deps.prepare = func(*config.Config, time.Duration) (issueTokenRuntime, io.Closer, error) {
			return nil, nil, errors.New("db failed")
		}
		err := runIssueToken([]string{"-user-id", userID.String()}, deps)
		if err == nil || !strings.Contains(err.Error(), "db failed") {
			t.Fatalf("expected prepare error, got %v", err)
		}
	})

	t.Run("user load error", func(t *testing.T) {
		err := runIssueToken([]string{"-user-id", userID.String()}, depsWith(fakeTokenRuntime{getErr: errors.New("not found")}, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "failed to load user") {
			t.Fatalf("expected load user error, got %v", err)
		}
	})

	t.Run("inactive user", func(t *testing.T) {
		rt := fakeTokenRuntime{user: &entities.User{ID: userID, Status: entities.UserStatusSuspended}}
		err := runIssueToken([]string{"-user-id", userID.String()}, depsWith(rt, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "is not active") {
			t.Fatalf("expected inactive error, got %v", err)
		}
	})

	t.Run("issue error", func(t *testing.T) {
		rt := fakeTokenRuntime{user: &entities.User{ID: userID, Status: entities.UserStatusActive}, issueErr: errors.New("boom")}
		err := runIssueToken([]string{"-user-id", userID.String()}, depsWith(rt, io.Discard))
		if err == nil || !strings.Contains(err.Error(), "failed issuing token") {
			t.Fatalf("expected issue error, got %v", err)
		}
	})

	t.Run("admin success", func(t *testing.T) {
		var role string
		var out bytes.Buffer
		rt := fakeTokenRuntime{
			user: &entities.User{ID: userID, Role: entities.UserRoleAdmin, Status: entities.UserStatusActive},
			role: &role,
		}
		if err := runIssueToken([]string{"-user-id", userID.String(), "-ttl", "1h"}, depsWith(rt, &out)); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if role != jwt.RoleAdmin {
			t.Fatalf("expected admin role, got %s", role)
		}
		got := out.String()
		for _, want := range []string{"role=admin", "ACCESS_TOKEN=signed-token", "expires_at=2026-03-01T10:00:00Z"} {
			if !strings.Contains(got, want) {
				t.Fatalf("output missing %q: %s", want, got)
			}
		}
	})
}

func TestRunIssueToken_VerifiesAgainstIssuer(t *testing.T) {
	db := testutil.NewDB(t)
	user := &entities.User{
		ID:              uuid.New(),
		Username:        "carol",
		Email:           "carol@example.com",
		Role:            entities.UserRoleUser,
		Status:          entities.UserStatusActive,
		TrustTier:       entities.TrustTierNew,
		DailyTradeValue: decimal.Zero,
	}
	if err := repositories.NewUserRepository(db).Create(context.Background(), user); err != nil {
		t.Fatalf("create user: %v", err)
	}

	origOpen := openIssueTokenDB
	t.Cleanup(func() { openIssueTokenDB = origOpen })
	openIssueTokenDB = func(config.DatabaseConfig) (*gorm.DB, error) { return db, nil }

	cfg := &config.Config{}
	cfg.JWT = config.JWTConfig{Secret: "test-secret", Issuer: "cardswap", AccessExpiry: time.Minute}

	var out bytes.Buffer
	deps := defaultIssueTokenDeps()
	deps.loadEnv = func() error { return nil }
	deps.loadCfg = func() *config.Config { return cfg }
	deps.out = &out
	if err := runIssueToken([]string{"-user-id", user.ID.String()}, deps); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var token string
	for _, line := range strings.Split(out.String(), "\n") {
		if strings.HasPrefix(line, "ACCESS_TOKEN=") {
			token = strings.TrimPrefix(line, "ACCESS_TOKEN=")
		}
	}
	claims, err := jwt.NewIssuer("test-secret", "cardswap", time.Minute).Verify(token)
	if err != nil {
		t.Fatalf("token did not verify: %v", err)
	}
	if claims.UserID != user.ID || claims.IsAdmin() {
		t.Fatalf("unexpected claims: %+v", claims)
	}
}
