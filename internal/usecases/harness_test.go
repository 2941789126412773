package usecases_test

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"

	"cardswap.backend/internal/domain/entities"
	domainrepo "cardswap.backend/internal/domain/repositories"
	"cardswap.backend/internal/infrastructure/repositories"
	"cardswap.backend/internal/testutil"
	"cardswap.backend/internal/usecases"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/crypto"
)

var harnessStart = time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC)

type recordingNotifier struct {
	mu     sync.Mutex
	events []entities.TransitionEvent
}

func (n *recordingNotifier) Notify(_ context.Context, ev entities.TransitionEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return nil
}

func (n *recordingNotifier) count(action string) int {
	n.mu.Lock()
	defer n.mu.Unlock()
	c := 0
	for _, ev := range n.events {
		if ev.Action == action {
			c++
		}
	}
	return c
}

type lockedCtxKey struct{}

// lockRecorder lists the user and card rows a transaction read for update,
// in the order it read them.
type lockRecorder struct {
	mu      sync.Mutex
	entries []string
}

func (r *lockRecorder) record(ctx context.Context, kind string, id uuid.UUID) {
	if locked, _ := ctx.Value(lockedCtxKey{}).(bool); !locked {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = append(r.entries, kind+":"+id.String())
}

func (r *lockRecorder) reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.entries = nil
}

func (r *lockRecorder) snapshot() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.entries...)
}

type recordingUoW struct {
	domainrepo.UnitOfWork
}

func (u recordingUoW) WithLock(ctx context.Context) context.Context {
	return context.WithValue(u.UnitOfWork.WithLock(ctx), lockedCtxKey{}, true)
}

type recordingUsers struct {
	domainrepo.UserRepository
	log *lockRecorder
}

func (r recordingUsers) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	r.log.record(ctx, "user", id)
	return r.UserRepository.GetByID(ctx, id)
}

type recordingCards struct {
	domainrepo.GiftCardRepository
	log *lockRecorder
}

func (r recordingCards) GetByID(ctx context.Context, id uuid.UUID) (*entities.GiftCard, error) {
	r.log.record(ctx, "card", id)
	return r.GiftCardRepository.GetByID(ctx, id)
}

type harness struct {
	db    *gorm.DB
	clock *clock.Fake

	users    *repositories.UserRepository
	cards    *repositories.GiftCardRepository
	trades   *repositories.TradeRepository
	escrows  *repositories.EscrowRepository
	sales    *repositories.SaleRepository
	disputes *repositories.DisputeRepository
	flags    *repositories.FraudFlagRepository
	settings *repositories.PlatformSettingRepository
	audit    *repositories.AuditLogRepository

	notifier   *recordingNotifier
	locks      *lockRecorder
	dispatcher *usecases.EventDispatcher
	config     *usecases.PlatformConfig
	escrow     *usecases.EscrowController
	limits     *usecases.LimitsEnforcer
	trust      *usecases.TrustTierEngine
	fraud      *usecases.FraudDetectionEngine
	trade      *usecases.TradeUsecase
	sale       *usecases.SaleUsecase
	dispute    *usecases.DisputeUsecase
	listing    *usecases.ListingUsecase
	admin      *usecases.AdminUsecase
	sweep      *usecases.AutoFinalizeSweep
	sealer     *crypto.CodeSealer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	return newHarnessWithChecks(t, nil)
}

// newHarnessWithChecks replaces the default fraud heuristics when checks is not nil.
func newHarnessWithChecks(t *testing.T, checks []usecases.FraudCheck) *harness {
	t.Helper()
	db := testutil.NewDB(t)
	h := &harness{
		db:       db,
		clock:    clock.NewFake(harnessStart),
		users:    repositories.NewUserRepository(db),
		cards:    repositories.NewGiftCardRepository(db),
		trades:   repositories.NewTradeRepository(db),
		escrows:  repositories.NewEscrowRepository(db),
		sales:    repositories.NewSaleRepository(db),
		disputes: repositories.NewDisputeRepository(db),
		flags:    repositories.NewFraudFlagRepository(db),
		settings: repositories.NewPlatformSettingRepository(db),
		audit:    repositories.NewAuditLogRepository(db),
		notifier: &recordingNotifier{},
		locks:    &lockRecorder{},
	}
	uow := repositories.NewUnitOfWork(db)

	sealer, err := crypto.NewCodeSealer(strings.Repeat("ab", 32))
	require.NoError(t, err)
	h.sealer = sealer

	if checks == nil {
		checks = usecases.DefaultFraudChecks(h.trades, h.disputes)
	}

	h.dispatcher = usecases.NewEventDispatcher(h.audit, h.notifier, h.clock)
	h.config = usecases.NewPlatformConfig(h.settings)
	h.escrow = usecases.NewEscrowController(h.escrows, h.clock)
	h.limits = usecases.NewLimitsEnforcer(h.users, h.trades, h.config, h.clock)
	h.trust = usecases.NewTrustTierEngine(h.users, h.trades, h.flags, h.clock)
	h.fraud = usecases.NewFraudDetectionEngine(uow, h.users, h.flags, checks, h.clock, h.dispatcher)
	h.trade = usecases.NewTradeUsecase(
		recordingUoW{UnitOfWork: uow},
		recordingUsers{UserRepository: h.users, log: h.locks},
		recordingCards{GiftCardRepository: h.cards, log: h.locks},
		h.trades, h.disputes, h.escrow, h.limits, h.trust, h.fraud, h.config, sealer, h.clock, h.dispatcher)
	h.sale = usecases.NewSaleUsecase(uow, h.users, h.cards, h.sales, h.disputes, h.limits, h.fraud, h.config, sealer, h.clock, h.dispatcher)
	h.dispute = usecases.NewDisputeUsecase(uow, h.disputes, h.clock, h.dispatcher)
	h.listing = usecases.NewListingUsecase(h.users, h.cards, sealer, h.clock, h.dispatcher)
	h.admin = usecases.NewAdminUsecase(uow, h.users, h.disputes, h.flags, h.audit, h.clock, h.dispatcher)
	h.sweep = usecases.NewAutoFinalizeSweep(h.trades, h.trade, h.clock, 0)

	t.Cleanup(h.dispatcher.Wait)
	return h
}

func (h *harness) seedUser(t *testing.T, name string) *entities.User {
	t.Helper()
	u := &entities.User{
		ID:              uuid.New(),
		Username:        name,
		Email:           name + "@example.com",
		AvatarURL:       null.StringFrom("avatars/" + name + ".png"),
		Role:            entities.UserRoleUser,
		Status:          entities.UserStatusActive,
		TrustTier:       entities.TrustTierNew,
		TrustScore:      50,
		DailyTradeValue: decimal.Zero,
		CreatedAt:       h.clock.Now(),
		UpdatedAt:       h.clock.Now(),
	}
	require.NoError(t, h.users.Create(context.Background(), u))
	return u
}

func (h *harness) listCard(t *testing.T, owner *entities.User, value string, kind entities.ListingType) *entities.GiftCard {
	t.Helper()
	input := entities.CreateGiftCardInput{
		Brand:       "Acme",
		Value:       decimal.RequireFromString(value),
		ExpiryDate:  h.clock.Now().AddDate(1, 0, 0),
		ListingType: kind,
		CardNumber:  "CARD-" + owner.Username + "-" + value,
		Pin:         "1234",
	}
	if kind == entities.ListingTypeSell {
		price := decimal.RequireFromString(value).Mul(decimal.RequireFromString("0.8"))
		input.SellingPrice = &price
	}
	card, err := h.listing.CreateListing(context.Background(), actorOf(owner), input)
	require.NoError(t, err)
	return card
}

func (h *harness) setSetting(t *testing.T, key, value string) {
	t.Helper()
	require.NoError(t, h.settings.Upsert(context.Background(), &entities.PlatformSetting{
		Key:       key,
		Value:     value,
		UpdatedAt: h.clock.Now(),
	}))
}

func (h *harness) reloadUser(t *testing.T, id uuid.UUID) *entities.User {
	t.Helper()
	u, err := h.users.GetByID(context.Background(), id)
	require.NoError(t, err)
	return u
}

func (h *harness) reloadCard(t *testing.T, id uuid.UUID) *entities.GiftCard {
	t.Helper()
	c, err := h.cards.GetByID(context.Background(), id)
	require.NoError(t, err)
	return c
}

func (h *harness) reloadTrade(t *testing.T, id uuid.UUID) *entities.Trade {
	t.Helper()
	tr, err := h.trades.GetByID(context.Background(), id)
	require.NoError(t, err)
	return tr
}

func (h *harness) reloadEscrow(t *testing.T, tradeID uuid.UUID) *entities.EscrowSession {
	t.Helper()
	s, err := h.escrows.GetByTradeID(context.Background(), tradeID)
	require.NoError(t, err)
	return s
}

// tradeScenario is two users with one swap card each.
type tradeScenario struct {
	alice, bob         *entities.User
	aliceCard, bobCard *entities.GiftCard
}

func (h *harness) newScenario(t *testing.T) tradeScenario {
	t.Helper()
	s := tradeScenario{alice: h.seedUser(t, "alice"), bob: h.seedUser(t, "bob")}
	s.aliceCard = h.listCard(t, s.alice, "50", entities.ListingTypeSwap)
	s.bobCard = h.listCard(t, s.bob, "60", entities.ListingTypeSwap)
	return s
}

func (h *harness) propose(t *testing.T, s tradeScenario) *entities.Trade {
	t.Helper()
	trade, err := h.trade.Propose(context.Background(), actorOf(s.alice), entities.ProposeTradeInput{
		InitiatorCardID: s.aliceCard.ID,
		ResponderCardID: s.bobCard.ID,
	})
	require.NoError(t, err)
	return trade
}

// releasedTrade drives a fresh trade to codes_released.
func (h *harness) releasedTrade(t *testing.T, s tradeScenario) *entities.Trade {
	t.Helper()
	ctx := context.Background()
	trade := h.propose(t, s)
	_, err := h.trade.Respond(ctx, actorOf(s.bob), trade.ID, true)
	require.NoError(t, err)
	view, err := h.trade.Release(ctx, actorOf(s.alice), trade.ID)
	require.NoError(t, err)
	require.Equal(t, entities.TradeStatusCodesReleased, view.Trade.Status)
	return view.Trade
}

func actorOf(u *entities.User) entities.Actor {
	return entities.Actor{ID: u.ID, Role: u.Role}
}

func adminActor() entities.Actor {
	return entities.Actor{ID: uuid.New(), Role: entities.UserRoleAdmin}
}
