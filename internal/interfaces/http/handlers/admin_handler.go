package handlers

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cardswap.backend/internal/domain/entities"
	domainerrors "cardswap.backend/internal/domain/errors"
	"cardswap.backend/internal/interfaces/http/response"
	"cardswap.backend/internal/usecases"
)

type FraudReviewService interface {
	ReviewFlag(ctx context.Context, actor entities.Actor, flagID uuid.UUID, input entities.ReviewFraudFlagInput) (*entities.FraudFlag, error)
	ScanActiveUsers(ctx context.Context) (*usecases.FraudScanSummary, error)
}

type DisputeService interface {
	GetDispute(ctx context.Context, actor entities.Actor, disputeID uuid.UUID) (*entities.Dispute, error)
	Resolve(ctx context.Context, actor entities.Actor, disputeID uuid.UUID, input entities.ResolveDisputeInput) (*entities.Dispute, error)
}

// AdminService moderates users and pages the admin listings.
type AdminService interface {
	UpdateUser(ctx context.Context, actor entities.Actor, userID uuid.UUID, input entities.AdminUpdateUserInput) (*entities.User, error)
	ListUsers(ctx context.Context, actor entities.Actor, filter entities.UserFilter) ([]*entities.User, int64, error)
	ListDisputes(ctx context.Context, actor entities.Actor, filter entities.DisputeFilter) ([]*entities.Dispute, int64, error)
	ListFraudFlags(ctx context.Context, actor entities.Actor, filter entities.FraudFlagFilter) ([]*entities.FraudFlag, int64, error)
	ListAuditLogs(ctx context.Context, actor entities.Actor, filter entities.AuditLogFilter) ([]*entities.TransitionEvent, int64, error)
}

type SettingsStore interface {
	Upsert(ctx context.Context, setting *entities.PlatformSetting) error
	List(ctx context.Context) ([]*entities.PlatformSetting, error)
}

type SweepRunner interface {
	Run(ctx context.Context, dryRun bool) (*usecases.SweepSummary, error)
}

// AdminHandler handles admin-only moderation endpoints
type AdminHandler struct {
	fraud    FraudReviewService
	disputes DisputeService
	admin    AdminService
	settings SettingsStore
	sweep    SweepRunner
}

func NewAdminHandler(fraud FraudReviewService, disputes DisputeService, admin AdminService, settings SettingsStore, sweep SweepRunner) *AdminHandler {
	return &AdminHandler{fraud: fraud, disputes: disputes, admin: admin, settings: settings, sweep: sweep}
}

// ListUsers GET /api/v1/admin/users?status=&trustTier=
func (h *AdminHandler) ListUsers(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}
	filter := entities.UserFilter{
		Status: entities.UserStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	}
	if raw := c.Query("trustTier"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			response.Error(c, domainerrors.ValidationFailed("trustTier must be an integer"))
			return
		}
		tier := entities.TrustTier(n)
		filter.TrustTier = &tier
	}

	users, total, err := h.admin.ListUsers(c.Request.Context(), actor, filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "users", users, page.Meta(total))
}

// UpdateUser changes status and/or trust tier
// PATCH /api/v1/admin/users/:id
func (h *AdminHandler) UpdateUser(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "user")
	if !ok {
		return
	}
	var input entities.AdminUpdateUserInput
	if !bindJSON(c, &input) {
		return
	}

	user, err := h.admin.UpdateUser(c.Request.Context(), actor, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"user": user})
}

// ListDisputes GET /api/v1/admin/disputes?status=
func (h *AdminHandler) ListDisputes(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}

	disputes, total, err := h.admin.ListDisputes(c.Request.Context(), actor, entities.DisputeFilter{
		Status: entities.DisputeStatus(c.Query("status")),
		Limit:  page.Limit,
		Offset: page.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "disputes", disputes, page.Meta(total))
}

// ListFraudFlags GET /api/v1/admin/fraud-flags?status=&flagType=&userId=
func (h *AdminHandler) ListFraudFlags(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}
	userID, ok := queryID(c, "userId")
	if !ok {
		return
	}

	flags, total, err := h.admin.ListFraudFlags(c.Request.Context(), actor, entities.FraudFlagFilter{
		UserID:   userID,
		FlagType: entities.FraudFlagType(c.Query("flagType")),
		Status:   entities.FraudFlagStatus(c.Query("status")),
		Limit:    page.Limit,
		Offset:   page.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "fraudFlags", flags, page.Meta(total))
}

// ListAuditLogs pages the transition trail. Dates are YYYY-MM-DD, inclusive.
// GET /api/v1/admin/audit-logs?subjectType=&subjectId=&actorId=&action=&dateFrom=&dateTo=
func (h *AdminHandler) ListAuditLogs(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	page, ok := pagination(c)
	if !ok {
		return
	}
	subjectID, ok := queryID(c, "subjectId")
	if !ok {
		return
	}
	actorID, ok := queryID(c, "actorId")
	if !ok {
		return
	}
	from, ok := queryDate(c, "dateFrom")
	if !ok {
		return
	}
	to, ok := queryDate(c, "dateTo")
	if !ok {
		return
	}

	events, total, err := h.admin.ListAuditLogs(c.Request.Context(), actor, entities.AuditLogFilter{
		SubjectType: entities.SubjectType(c.Query("subjectType")),
		SubjectID:   subjectID,
		ActorID:     actorID,
		Action:      c.Query("action"),
		From:        from,
		To:          to,
		Limit:       page.Limit,
		Offset:      page.Offset(),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paginated(c, http.StatusOK, "auditLogs", events, page.Meta(total))
}

// ReviewFraudFlag PUT /api/v1/admin/fraud-flags/:id
func (h *AdminHandler) ReviewFraudFlag(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "fraud flag")
	if !ok {
		return
	}
	var input entities.ReviewFraudFlagInput
	if !bindJSON(c, &input) {
		return
	}

	flag, err := h.fraud.ReviewFlag(c.Request.Context(), actor, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"fraudFlag": flag})
}

// RunFraudScan POST /api/v1/admin/fraud-scan
func (h *AdminHandler) RunFraudScan(c *gin.Context) {
	summary, err := h.fraud.ScanActiveUsers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"scan": summary})
}

// GetDispute GET /api/v1/admin/disputes/:id
func (h *AdminHandler) GetDispute(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "dispute")
	if !ok {
		return
	}

	dispute, err := h.disputes.GetDispute(c.Request.Context(), actor, id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": dispute})
}

// ResolveDispute PUT /api/v1/admin/disputes/:id
func (h *AdminHandler) ResolveDispute(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := pathID(c, "dispute")
	if !ok {
		return
	}
	var input entities.ResolveDisputeInput
	if !bindJSON(c, &input) {
		return
	}

	dispute, err := h.disputes.Resolve(c.Request.Context(), actor, id, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"dispute": dispute})
}

// ListSettings GET /api/v1/admin/settings
func (h *AdminHandler) ListSettings(c *gin.Context) {
	settings, err := h.settings.List(c.Request.Context())
	if err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"settings": settings})
}

type updateSettingRequest struct {
	Value       string `json:"value" binding:"required"`
	Description string `json:"description"`
}

// UpdateSetting PUT /api/v1/admin/settings/:key
func (h *AdminHandler) UpdateSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if !knownSetting(key) {
		response.Error(c, domainerrors.ValidationFailed("Unknown setting "+key))
		return
	}
	var req updateSettingRequest
	if !bindJSON(c, &req) {
		return
	}

	setting := &entities.PlatformSetting{Key: key, Value: strings.TrimSpace(req.Value), Description: req.Description}
	if err := h.settings.Upsert(c.Request.Context(), setting); err != nil {
		response.Error(c, domainerrors.InternalError(err))
		return
	}
	response.Success(c, http.StatusOK, gin.H{"setting": setting})
}

// RunSweep triggers one auto-finalize pass; ?dryRun=true only reports
// POST /api/v1/admin/sweep
func (h *AdminHandler) RunSweep(c *gin.Context) {
	dryRun, err := strconv.ParseBool(c.DefaultQuery("dryRun", "false"))
	if err != nil {
		response.Error(c, domainerrors.ValidationFailed("dryRun must be a boolean"))
		return
	}

	summary, err := h.sweep.Run(c.Request.Context(), dryRun)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"sweep": summary})
}

// queryID parses an optional uuid query parameter.
func queryID(c *gin.Context, name string) (uuid.UUID, bool) {
	raw := c.Query(name)
	if raw == "" {
		return uuid.Nil, true
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		response.Error(c, domainerrors.ValidationFailed("Invalid "+name))
		return uuid.Nil, false
	}
	return id, true
}

func queryDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	day, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		response.Error(c, domainerrors.ValidationFailed(name+" must be YYYY-MM-DD"))
		return time.Time{}, false
	}
	return day, true
}

func knownSetting(key string) bool {
	switch key {
	case entities.SettingFeePercentage, entities.SettingConfirmationWindowMinutes:
		return true
	}
	for _, prefix := range []string{
		entities.SettingMaxDailyTradesPrefix,
		entities.SettingMaxDailyValuePrefix,
		entities.SettingMaxActiveTradesPrefix,
	} {
		if suffix, ok := strings.CutPrefix(key, prefix); ok {
			for _, tier := range []entities.TrustTier{entities.TrustTierNew, entities.TrustTierEstablished, entities.TrustTierTrusted} {
				if suffix == tier.SettingSuffix() {
					return true
				}
			}
		}
	}
	return false
}
