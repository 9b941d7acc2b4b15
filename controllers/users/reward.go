package users

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/rewards"
	"github.com/Henryno111/deposit-stx/utils"
)

type RewardController struct {
	Rewards *rewards.Distributor
}

func NewRewardController(d *rewards.Distributor) *RewardController {
	return &RewardController{Rewards: d}
}

// GET /v1/rewards/fee?amount= (micro-units) or ?units= (decimal units)
func (c *RewardController) CalculateFee(w http.ResponseWriter, r *http.Request) {
	var gross uint64
	var err error
	if r.URL.Query().Has("units") {
		gross, err = utils.QueryMicro(r, "units")
	} else {
		gross, err = utils.QueryUint(r, "amount")
	}
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	b, err := c.Rewards.CalculateRewardWithFee(r.Context(), gross)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"fee":                  b.Fee,
			"net_reward":           b.NetReward,
			"gross_reward":         b.GrossReward,
			"fee_display":          utils.FormatMicro(b.Fee),
			"net_reward_display":   utils.FormatMicro(b.NetReward),
			"gross_reward_display": utils.FormatMicro(b.GrossReward),
		},
	})
}

// GET /v1/rewards/claims/{id}/{principal}
func (c *RewardController) GetClaim(w http.ResponseWriter, r *http.Request) {
	id, err := utils.PathUint(r, "id")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	who, err := utils.PathPrincipal(r, "principal")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	claim, err := c.Rewards.GetRewardClaim(r.Context(), id, who)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	if claim == nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{Success: false, Message: "Claim not found"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"task_id":        id,
			"recipient":      who,
			"amount":         claim.Amount,
			"amount_display": utils.FormatMicro(claim.Amount),
			"claimed_at":     claim.ClaimedAt,
			"claimed":        claim.Claimed,
		},
	})
}

// GET /v1/rewards/paid/{principal}
func (c *RewardController) GetTotalPaid(w http.ResponseWriter, r *http.Request) {
	who, err := utils.PathPrincipal(r, "principal")
	if err != nil {
		utils.BadRequest(w, err.Error())
		return
	}
	total, err := c.Rewards.GetTotalRewardsPaid(r.Context(), who)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"principal":     who,
			"total":         total,
			"total_display": utils.FormatMicro(total),
		},
	})
}
