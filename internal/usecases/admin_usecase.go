package usecases

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/domain/repositories"
	"cardswap.backend/pkg/clock"
)

// AdminUsecase covers user moderation and the admin listings.
type AdminUsecase struct {
	uow         repositories.UnitOfWork
	userRepo    repositories.UserRepository
	disputeRepo repositories.DisputeRepository
	flagRepo    repositories.FraudFlagRepository
	auditRepo   repositories.AuditLogRepository
	clock       clock.Clock
	dispatcher  *EventDispatcher
}

func NewAdminUsecase(
	uow repositories.UnitOfWork,
	userRepo repositories.UserRepository,
	disputeRepo repositories.DisputeRepository,
	flagRepo repositories.FraudFlagRepository,
	auditRepo repositories.AuditLogRepository,
	clk clock.Clock,
	dispatcher *EventDispatcher,
) *AdminUsecase {
	return &AdminUsecase{
		uow:         uow,
		userRepo:    userRepo,
		disputeRepo: disputeRepo,
		flagRepo:    flagRepo,
		auditRepo:   auditRepo,
		clock:       clk,
		dispatcher:  dispatcher,
	}
}

// UpdateUser sets a user's status and/or trust tier. Only fields that
// actually change are written and announced.
func (uc *AdminUsecase) UpdateUser(ctx context.Context, actor entities.Actor, userID uuid.UUID, input entities.AdminUpdateUserInput) (*entities.User, error) {
	if !actor.IsAdmin() {
		return nil, domainerrors.Forbidden("only admins can update users")
	}
	if input.Status == nil && input.TrustTier == nil {
		return nil, domainerrors.ValidationFailed("status or trustTier is required")
	}
	if input.Status != nil && !input.Status.Valid() {
		return nil, domainerrors.ValidationFailed("status must be active, restricted, suspended or banned")
	}
	if input.TrustTier != nil && !input.TrustTier.Valid() {
		return nil, domainerrors.ValidationFailed("trustTier must be 0, 1 or 2")
	}
	if input.Status != nil && userID == actor.ID {
		return nil, domainerrors.Forbidden("admins cannot change their own status")
	}

	var (
		user   *entities.User
		events []entities.TransitionEvent
	)
	err := uc.uow.Do(ctx, func(txCtx context.Context) error {
		var err error
		user, err = uc.userRepo.GetByID(uc.uow.WithLock(txCtx), userID)
		if err != nil {
			return notFoundOr(err, "user not found")
		}

		events = events[:0]
		if input.Status != nil && *input.Status != user.Status {
			events = append(events, entities.TransitionEvent{
				Action:      "user.status_changed",
				SubjectType: entities.SubjectUser,
				SubjectID:   user.ID,
				ActorID:     actorNullID(actor),
				From:        string(user.Status),
				To:          string(*input.Status),
				Recipients:  []uuid.UUID{user.ID},
			})
			user.Status = *input.Status
		}
		if input.TrustTier != nil && *input.TrustTier != user.TrustTier {
			events = append(events, entities.TransitionEvent{
				Action:      "user.tier_changed",
				SubjectType: entities.SubjectUser,
				SubjectID:   user.ID,
				ActorID:     actorNullID(actor),
				From:        strconv.Itoa(int(user.TrustTier)),
				To:          strconv.Itoa(int(*input.TrustTier)),
				Recipients:  []uuid.UUID{user.ID},
				Metadata:    map[string]string{"tier": input.TrustTier.SettingSuffix()},
			})
			user.TrustTier = *input.TrustTier
		}
		if len(events) == 0 {
			return nil
		}
		user.UpdatedAt = uc.clock.Now()
		return uc.userRepo.Update(txCtx, user)
	})
	if err != nil {
		return nil, internalOr(err)
	}

	uc.dispatcher.Dispatch(ctx, events...)
	return user, nil
}

func (uc *AdminUsecase) ListUsers(ctx context.Context, actor entities.Actor, filter entities.UserFilter) ([]*entities.User, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domainerrors.Forbidden("only admins can list users")
	}
	users, total, err := uc.userRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return users, total, nil
}

func (uc *AdminUsecase) ListDisputes(ctx context.Context, actor entities.Actor, filter entities.DisputeFilter) ([]*entities.Dispute, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domainerrors.Forbidden("only admins can list disputes")
	}
	disputes, total, err := uc.disputeRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return disputes, total, nil
}

func (uc *AdminUsecase) ListFraudFlags(ctx context.Context, actor entities.Actor, filter entities.FraudFlagFilter) ([]*entities.FraudFlag, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domainerrors.Forbidden("only admins can list fraud flags")
	}
	flags, total, err := uc.flagRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return flags, total, nil
}

// ListAuditLogs pages the transition trail newest first.
func (uc *AdminUsecase) ListAuditLogs(ctx context.Context, actor entities.Actor, filter entities.AuditLogFilter) ([]*entities.TransitionEvent, int64, error) {
	if !actor.IsAdmin() {
		return nil, 0, domainerrors.Forbidden("only admins can read the audit log")
	}
	if !filter.From.IsZero() && !filter.To.IsZero() && filter.To.Before(filter.From) {
		return nil, 0, domainerrors.ValidationFailed("dateTo must not be before dateFrom")
	}
	events, total, err := uc.auditRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, domainerrors.InternalError(err)
	}
	return events, total, nil
}
