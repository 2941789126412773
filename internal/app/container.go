// Package app assembles repositories, engines and usecases from a database
// handle. Both the API server and the sweep CLI build on it.
package app

import (
	"fmt"

	"gorm.io/gorm"

	"cardswap.backend/internal/config"
	"cardswap.backend/internal/infrastructure/repositories"
	"cardswap.backend/internal/usecases"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/crypto"
)

// Container holds the wired core.
type Container struct {
	Settings   *repositories.PlatformSettingRepository
	Dispatcher *usecases.EventDispatcher
	Limits     *usecases.LimitsEnforcer
	Fraud      *usecases.FraudDetectionEngine
	Trades     *usecases.TradeUsecase
	Sales      *usecases.SaleUsecase
	Listings   *usecases.ListingUsecase
	Disputes   *usecases.DisputeUsecase
	Admin      *usecases.AdminUsecase
	Sweep      *usecases.AutoFinalizeSweep
}

// Build wires every component over db. A nil notifier drops events; a nil
// clock uses the system clock.
func Build(db *gorm.DB, cfg *config.Config, notifier usecases.Notifier, clk clock.Clock) (*Container, error) {
	if clk == nil {
		clk = clock.System{}
	}

	sealer, err := crypto.NewCodeSealer(cfg.Security.CardCodeKey)
	if err != nil {
		return nil, fmt.Errorf("invalid card code key: %w", err)
	}

	uow := repositories.NewUnitOfWork(db)
	userRepo := repositories.NewUserRepository(db)
	cardRepo := repositories.NewGiftCardRepository(db)
	tradeRepo := repositories.NewTradeRepository(db)
	escrowRepo := repositories.NewEscrowRepository(db)
	saleRepo := repositories.NewSaleRepository(db)
	disputeRepo := repositories.NewDisputeRepository(db)
	flagRepo := repositories.NewFraudFlagRepository(db)
	settingRepo := repositories.NewPlatformSettingRepository(db)
	auditRepo := repositories.NewAuditLogRepository(db)

	dispatcher := usecases.NewEventDispatcher(auditRepo, notifier, clk)
	platformConfig := usecases.NewPlatformConfig(settingRepo)

	limits := usecases.NewLimitsEnforcer(userRepo, tradeRepo, platformConfig, clk)
	trust := usecases.NewTrustTierEngine(userRepo, tradeRepo, flagRepo, clk)
	fraud := usecases.NewFraudDetectionEngine(uow, userRepo, flagRepo,
		usecases.DefaultFraudChecks(tradeRepo, disputeRepo), clk, dispatcher)
	escrow := usecases.NewEscrowController(escrowRepo, clk)

	trades := usecases.NewTradeUsecase(uow, userRepo, cardRepo, tradeRepo, disputeRepo,
		escrow, limits, trust, fraud, platformConfig, sealer, clk, dispatcher)
	sales := usecases.NewSaleUsecase(uow, userRepo, cardRepo, saleRepo, disputeRepo,
		limits, fraud, platformConfig, sealer, clk, dispatcher)

	return &Container{
		Settings:   settingRepo,
		Dispatcher: dispatcher,
		Limits:     limits,
		Fraud:      fraud,
		Trades:     trades,
		Sales:      sales,
		Listings:   usecases.NewListingUsecase(userRepo, cardRepo, sealer, clk, dispatcher),
		Disputes:   usecases.NewDisputeUsecase(uow, disputeRepo, clk, dispatcher),
		Admin:      usecases.NewAdminUsecase(uow, userRepo, disputeRepo, flagRepo, auditRepo, clk, dispatcher),
		Sweep:      usecases.NewAutoFinalizeSweep(tradeRepo, trades, clk, cfg.Jobs.SweepBatchSize),
	}, nil
}
