package admins

import (
	"errors"
	"net/http"

	"github.com/Henryno111/deposit-stx/audit"
	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/services"
	"github.com/Henryno111/deposit-stx/utils"
)

type DashboardStats struct {
	Height             uint64              `json:"height"`
	TotalPool          uint64              `json:"total_pool"`
	TotalPoolDisplay   string              `json:"total_pool_display"`
	ActiveDepositors   uint64              `json:"active_depositors"`
	MinimumDeposit     uint64              `json:"minimum_deposit"`
	PoolLocked         bool                `json:"pool_locked"`
	TotalTasks         uint64              `json:"total_tasks"`
	PlatformFee        uint64              `json:"platform_fee_percentage"`
	TotalFeesCollected uint64              `json:"total_fees_collected"`
	TotalFeesDisplay   string              `json:"total_fees_collected_display"`
	Reconciliation     audit.Report        `json:"reconciliation"`
	Consistent         bool                `json:"consistent"`
	LastEvents         []models.AuditEvent `json:"last_events"`
}

type DashboardController struct {
	Svc *services.Services
}

func NewDashboardController(svc *services.Services) *DashboardController {
	return &DashboardController{Svc: svc}
}

// GET /v1/admin/dashboard
func (c *DashboardController) GetDashboardStats(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	var stats DashboardStats

	pool, err := c.Svc.Pool.Stats(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	stats.TotalPool = pool.TotalPool
	stats.TotalPoolDisplay = utils.FormatMicro(pool.TotalPool)
	stats.ActiveDepositors = pool.DepositorCount
	stats.MinimumDeposit = pool.MinimumDeposit
	stats.PoolLocked = pool.Locked

	if stats.TotalTasks, err = c.Svc.Tasks.GetTaskCount(ctx); err != nil {
		utils.WriteError(w, err)
		return
	}
	if stats.PlatformFee, err = c.Svc.Rewards.GetPlatformFeePercentage(ctx); err != nil {
		utils.WriteError(w, err)
		return
	}
	if stats.TotalFeesCollected, err = c.Svc.Rewards.GetTotalFeesCollected(ctx); err != nil {
		utils.WriteError(w, err)
		return
	}
	stats.TotalFeesDisplay = utils.FormatMicro(stats.TotalFeesCollected)

	report, err := c.Svc.Reconciler.Check(ctx)
	if err != nil && !errors.Is(err, ledger.ErrInvariantViolation) {
		utils.WriteError(w, err)
		return
	}
	stats.Reconciliation = report
	stats.Consistent = report.OK()
	stats.Height = report.Height

	// initialize to return an empty array, not null
	stats.LastEvents = make([]models.AuditEvent, 0)
	events, err := ledger.RecentEvents(ctx, c.Svc.Store, 10)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	stats.LastEvents = append(stats.LastEvents, events...)

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    stats,
	})
}
