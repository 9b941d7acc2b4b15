package admins

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/depositpool"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/utils"
)

type PoolController struct {
	Pool *depositpool.Pool
}

func NewPoolController(pool *depositpool.Pool) *PoolController {
	return &PoolController{Pool: pool}
}

type PoolLockRequest struct {
	Locked *bool `json:"locked" validate:"required"`
}

type MinimumDepositRequest struct {
	Amount uint64 `json:"amount"`
}

// PUT /v1/admin/pool/lock
func (c *PoolController) SetLock(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req PoolLockRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Pool.SetPoolLock(r.Context(), caller, *req.Locked); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Pool lock updated",
		Data:    map[string]interface{}{"pool_locked": *req.Locked},
	})
}

// PUT /v1/admin/pool/minimum
func (c *PoolController) SetMinimum(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req MinimumDepositRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Pool.SetMinimumDeposit(r.Context(), caller, req.Amount); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Minimum deposit updated",
		Data: map[string]interface{}{
			"minimum_deposit":         req.Amount,
			"minimum_deposit_display": utils.FormatMicro(req.Amount),
		},
	})
}
