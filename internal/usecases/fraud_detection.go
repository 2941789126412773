package usecases

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
	"cardswap.backend/pkg/logger"
	"cardswap.backend/pkg/utils"
)

// AutoRestrictFlagThreshold is the unresolved-flag count that restricts an active user.
const AutoRestrictFlagThreshold = 2

// FraudScanSummary reports one pass over the active user base.
type FraudScanSummary struct {
	UsersScanned int `json:"usersScanned"`
	FlagsRaised  int `json:"flagsRaised"`
}

// FraudDetectionEngine runs independent heuristics. A failing check is logged
// and never stops its siblings or the caller.
type FraudDetectionEngine struct {
	uow        repositories.UnitOfWork
	userRepo   repositories.UserRepository
	flagRepo   repositories.FraudFlagRepository
	checks     []FraudCheck
	clock      clock.Clock
	dispatcher *EventDispatcher
}

func NewFraudDetectionEngine(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	flagRepo repositories.FraudFlagRepository,
	checks []FraudCheck,
	clk clock.Clock,
	dispatcher *EventDispatcher,
) *FraudDetectionEngine {
	return &FraudDetectionEngine{
		uow:        uow,
		userRepo:   userRepo,
		flagRepo:   flagRepo,
		checks:     checks,
		clock:      clk,
		dispatcher: dispatcher,
	}
}

// RunChecks evaluates every heuristic for userID and returns the flags it raised.
func (e *FraudDetectionEngine) RunChecks(ctx context.Context, userID uuid.UUID) []*entities.FraudFlag {
	var raised []*entities.FraudFlag
	for _, check := range e.checks {
		flag, err := e.runCheck(ctx, userID, check)
		if err != nil {
			logger.Error(ctx, "Fraud check failed",
				zap.String("check", string(check.Type())),
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			continue
		}
		if flag != nil {
			raised = append(raised, flag)
		}
	}
	return raised
}

func (e *FraudDetectionEngine) runCheck(ctx context.Context, userID uuid.UUID, check FraudCheck) (flag *entities.FraudFlag, err error) {
	var events []entities.TransitionEvent

	defer func() {
		if r := recover(); r != nil {
			flag = nil
			err = fmt.Errorf("fraud check %s panicked: %v", check.Type(), r)
		}
	}()

	err = e.uow.Do(ctx, func(txCtx context.Context) error {
		lockCtx := e.uow.WithLock(txCtx)
		user, err := e.userRepo.GetByID(lockCtx, userID)
		if err != nil {
			return err
		}

		exists, err := e.flagRepo.HasUnresolved(txCtx, userID, check.Type())
		if err != nil {
			return err
		}
		if exists {
			return nil
		}

		now := e.clock.Now()
		details, flagged, err := check.Evaluate(txCtx, user, now)
		if err != nil || !flagged {
			return err
		}

		flag = &entities.FraudFlag{
			ID:        utils.GenerateUUIDv7(),
			UserID:    userID,
			FlagType:  check.Type(),
			Details:   details,
			Status:    entities.FraudFlagStatusPending,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := e.flagRepo.Create(txCtx, flag); err != nil {
			return err
		}
		events = append(events, entities.TransitionEvent{
			Action:      "fraud_flag.created",
			SubjectType: entities.SubjectFraudFlag,
			SubjectID:   flag.ID,
			To:          string(flag.Status),
			Recipients:  []uuid.UUID{userID},
			Metadata:    map[string]string{"flag_type": string(flag.FlagType), "user_id": userID.String()},
		})

		restricted, err := e.maybeAutoRestrict(txCtx, user, flag, now)
		if err != nil {
			return err
		}
		if restricted {
			events = append(events, entities.TransitionEvent{
				Action:      "user.restricted",
				SubjectType: entities.SubjectUser,
				SubjectID:   userID,
				From:        string(entities.UserStatusActive),
				To:          string(entities.UserStatusRestricted),
				Recipients:  []uuid.UUID{userID},
				Metadata:    map[string]string{"reason": "fraud_flags"},
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if flag != nil {
		logger.Info(ctx, "Fraud flag created",
			zap.String("flag_type", string(flag.FlagType)),
			zap.String("user_id", userID.String()),
			zap.String("flag_id", flag.ID.String()),
		)
	}
	e.dispatcher.Dispatch(ctx, events...)
	return flag, nil
}

// maybeAutoRestrict marks the flag once the user holds enough unresolved flags and
// restricts the user if they are still active.
func (e *FraudDetectionEngine) maybeAutoRestrict(ctx context.Context, user *entities.User, flag *entities.FraudFlag, now time.Time) (bool, error) {
	unresolved, err := e.flagRepo.CountUnresolved(ctx, user.ID)
	if err != nil {
		return false, err
	}
	if unresolved < AutoRestrictFlagThreshold {
		return false, nil
	}

	restricted := false
	if user.IsActive() {
		user.Status = entities.UserStatusRestricted
		user.UpdatedAt = now
		if err := e.userRepo.Update(ctx, user); err != nil {
			return false, err
		}
		restricted = true
		logger.Warn(ctx, "User auto-restricted",
			zap.String("user_id", user.ID.String()),
			zap.Int64("unresolved_flags", unresolved),
		)
	}

	flag.AutoRestricted = true
	if err := e.flagRepo.Update(ctx, flag); err != nil {
		return false, err
	}
	return restricted, nil
}

// ScanActiveUsers runs every heuristic for each active user.
func (e *FraudDetectionEngine) ScanActiveUsers(ctx context.Context) (*FraudScanSummary, error) {
	ids, err := e.userRepo.ListIDsByStatus(ctx, entities.UserStatusActive)
	if err != nil {
		return nil, domainerrors.InternalError(err)
	}
	summary := &FraudScanSummary{}
	for _, id := range ids {
		if ctx.Err() != nil {
			break
		}
		summary.UsersScanned++
		summary.FlagsRaised += len(e.RunChecks(ctx, id))
	}
	return summary, nil
}

// ReviewFlag records an admin decision on a flag.
func (e *FraudDetectionEngine) ReviewFlag(ctx context.Context, actor entities.Actor, flagID uuid.UUID, input entities.ReviewFraudFlagInput) (*entities.FraudFlag, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can review fraud flags")
	}
	switch input.Status {
	case entities.FraudFlagStatusReviewed, entities.FraudFlagStatusDismissed, entities.FraudFlagStatusConfirmed:
	default:
		return nil, domainerrors.ValidationFailed("status must be reviewed, dismissed or confirmed")
	}

	var (
		flag *entities.FraudFlag
		from entities.FraudFlagStatus
	)
	err := e.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		flag, err = e.flagRepo.GetByID(e.uow.WithLock(txCtx), flagID)
		if err != nil {
			return notFoundOr(err, "fraud flag not found")
		}
		from = flag.Status
		flag.Status = input.Status
		if notes := notesOf(input.AdminNotes); notes.Valid {
			flag.AdminNotes = notes
		}
		flag.ReviewedBy = actorNullID(actor)
		flag.UpdatedAt = e.clock.Now()
		return e.flagRepo.Update(txCtx, flag)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	e.dispatcher.Dispatch(ctx, entities.TransitionEvent{
		Action:      "fraud_flag.reviewed",
		SubjectType: entities.SubjectFraudFlag,
		SubjectID:   flag.ID,
		ActorID:     actorNullID(actor),
		From:        string(from),
		To:          string(flag.Status),
		Metadata:    map[string]string{"user_id": flag.UserID.String(), "flag_type": string(flag.FlagType)},
	})
	return flag, nil
}
