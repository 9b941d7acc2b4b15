package users

import (
	"context"
	"net/http"

	"github.com/Henryno111/deposit-stx/depositpool"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/utils"
)

type DepositController struct {
	Pool *depositpool.Pool
}

func NewDepositController(pool *depositpool.Pool) *DepositController {
	return &DepositController{Pool: pool}
}

type AmountRequest struct {
	Amount uint64 `json:"amount"`
}

func depositView(who models.Principal, d *models.Deposit) map[string]interface{} {
	if d == nil {
		return map[string]interface{}{
			"principal":      who,
			"amount":         uint64(0),
			"amount_display": utils.FormatMicro(0),
			"timestamp":      uint64(0),
			"active":         false,
		}
	}
	return map[string]interface{}{
		"principal":      who,
		"amount":         d.Amount,
		"amount_display": utils.FormatMicro(d.Amount),
		"timestamp":      d.Timestamp,
		"active":         d.Active,
	}
}

// POST /v1/deposits
func (c *DepositController) Deposit(w http.ResponseWriter, r *http.Request) {
	c.move(w, r, c.Pool.Deposit, "Deposit recorded")
}

// POST /v1/deposits/withdraw
func (c *DepositController) Withdraw(w http.ResponseWriter, r *http.Request) {
	c.move(w, r, c.Pool.Withdraw, "Withdrawal recorded")
}

func (c *DepositController) move(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, caller models.Principal, amount uint64) error, msg string) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req AmountRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := op(r.Context(), caller, req.Amount); err != nil {
		utils.WriteError(w, err)
		return
	}
	d, err := c.Pool.GetDeposit(r.Context(), caller)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: msg, Data: depositView(caller, d)})
}

// GET /v1/deposits/{principal}
func (c *DepositController) GetDeposit(w http.ResponseWriter, r *http.Request) {
	who, err := utils.PathPrincipal(r, "principal")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	d, err := c.Pool.GetDeposit(r.Context(), who)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Successfully", Data: depositView(who, d)})
}
