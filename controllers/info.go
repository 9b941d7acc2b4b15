package controllers

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/services"
	"github.com/Henryno111/deposit-stx/utils"
)

type InfoController struct {
	Svc *services.Services
}

func NewInfoController(svc *services.Services) *InfoController {
	return &InfoController{Svc: svc}
}

// GET /v1/pool
func (c *InfoController) PoolStats(w http.ResponseWriter, r *http.Request) {
	stats, err := c.Svc.Pool.Stats(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"total_pool":              stats.TotalPool,
			"total_pool_display":      utils.FormatMicro(stats.TotalPool),
			"depositor_count":         stats.DepositorCount,
			"minimum_deposit":         stats.MinimumDeposit,
			"minimum_deposit_display": utils.FormatMicro(stats.MinimumDeposit),
			"pool_locked":             stats.Locked,
		},
	})
}

// GET /v1/info
func (c *InfoController) Info(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	height, err := c.Svc.Store.Height(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	tasks, err := c.Svc.Tasks.GetTaskCount(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	pct, err := c.Svc.Rewards.GetPlatformFeePercentage(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	fees, err := c.Svc.Rewards.GetTotalFeesCollected(ctx)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"owner":                        c.Svc.Guard.Owner(),
			"height":                       height,
			"task_count":                   tasks,
			"platform_fee_percentage":      pct,
			"total_fees_collected":         fees,
			"total_fees_collected_display": utils.FormatMicro(fees),
		},
	})
}
