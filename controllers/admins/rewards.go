package admins

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/rewards"
	"github.com/Henryno111/deposit-stx/utils"
)

type RewardController struct {
	Rewards *rewards.Distributor
}

func NewRewardController(d *rewards.Distributor) *RewardController {
	return &RewardController{Rewards: d}
}

type DistributeRequest struct {
	TaskID    uint64 `json:"task_id"`
	Recipient string `json:"recipient" validate:"required,principal"`
	Amount    uint64 `json:"amount"`
}

type BatchRequest struct {
	Items []rewards.Distribution `json:"items" validate:"required"`
}

type PlatformFeeRequest struct {
	Percentage uint64 `json:"percentage"`
}

type EmergencyWithdrawRequest struct {
	Amount    uint64 `json:"amount"`
	Recipient string `json:"recipient" validate:"required,principal"`
}

func payoutView(p rewards.Payout) map[string]interface{} {
	return map[string]interface{}{
		"net_reward":         p.NetReward,
		"fee":                p.Fee,
		"net_reward_display": utils.FormatMicro(p.NetReward),
		"fee_display":        utils.FormatMicro(p.Fee),
	}
}

// POST /v1/admin/rewards
func (c *RewardController) Distribute(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req DistributeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	payout, err := c.Rewards.DistributeReward(r.Context(), caller, req.TaskID, models.Principal(req.Recipient), req.Amount)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Reward distributed", Data: payoutView(payout)})
}

// POST /v1/admin/rewards/batch
func (c *RewardController) Batch(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req BatchRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	results, err := c.Rewards.BatchDistributeRewards(r.Context(), caller, req.Items)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	out := make([]map[string]interface{}, len(results))
	succeeded := 0
	for i, res := range results {
		item := map[string]interface{}{
			"task_id":   req.Items[i].TaskID,
			"recipient": req.Items[i].Recipient,
			"ok":        res.OK,
		}
		if res.OK {
			succeeded++
			for k, v := range payoutView(res.Payout) {
				item[k] = v
			}
		} else if _, kind := ledger.Classify(res.Err); kind != "" {
			item["error"] = kind
		} else {
			item["error"] = "internal"
		}
		out[i] = item
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Batch processed",
		Data: map[string]interface{}{
			"succeeded": succeeded,
			"failed":    len(results) - succeeded,
			"results":   out,
		},
	})
}

// PUT /v1/admin/rewards/fee
func (c *RewardController) SetFee(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req PlatformFeeRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if err := c.Rewards.SetPlatformFee(r.Context(), caller, req.Percentage); err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Platform fee updated",
		Data:    map[string]interface{}{"platform_fee_percentage": req.Percentage},
	})
}

// POST /v1/admin/rewards/emergency-withdraw
func (c *RewardController) EmergencyWithdraw(w http.ResponseWriter, r *http.Request) {
	caller, ok := utils.GetPrincipal(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var req EmergencyWithdrawRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	ev, err := c.Rewards.EmergencyWithdraw(r.Context(), caller, req.Amount, models.Principal(req.Recipient))
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Emergency withdrawal recorded",
		Data: map[string]interface{}{
			"event":          ev,
			"amount_display": utils.FormatMicro(ev.Amount),
		},
	})
}
