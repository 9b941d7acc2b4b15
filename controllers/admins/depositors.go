package admins

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/Henryno111/deposit-stx/depositpool"
	"github.com/Henryno111/deposit-stx/utils"
)

type DepositorResponse struct {
	Principal     string `json:"principal"`
	Amount        uint64 `json:"amount"`
	AmountDisplay string `json:"amount_display"`
	Timestamp     uint64 `json:"timestamp"`
	Active        bool   `json:"active"`
}

// GET /v1/admin/deposits?page=&limit=&status=active|inactive&search=
func (c *PoolController) ListDepositors(w http.ResponseWriter, r *http.Request) {
	// Get query parameters
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	status := r.URL.Query().Get("status")
	search := strings.ToLower(r.URL.Query().Get("search"))

	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > 100 {
		limit = 20
	}
	if status != "" && status != "active" && status != "inactive" {
		utils.BadRequest(w, "status must be active or inactive")
		return
	}

	all, err := c.Pool.ListDeposits(r.Context())
	if err != nil {
		utils.WriteError(w, err)
		return
	}

	// Apply filters
	filtered := make([]depositpool.Depositor, 0, len(all))
	for _, d := range all {
		if status == "active" && !d.Active || status == "inactive" && d.Active {
			continue
		}
		if search != "" && !strings.Contains(strings.ToLower(string(d.Principal)), search) {
			continue
		}
		filtered = append(filtered, d)
	}

	offset := (page - 1) * limit
	response := make([]DepositorResponse, 0, limit)
	for i := offset; i < len(filtered) && i < offset+limit; i++ {
		d := filtered[i]
		response = append(response, DepositorResponse{
			Principal:     string(d.Principal),
			Amount:        d.Amount,
			AmountDisplay: utils.FormatMicro(d.Amount),
			Timestamp:     d.Timestamp,
			Active:        d.Active,
		})
	}

	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"depositors": response,
			"page":       page,
			"limit":      limit,
			"total":      len(filtered),
		},
	})
}
