package admins

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Henryno111/deposit-stx/audit"
	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/utils"
)

const (
	defaultAuditLimit = 50
	maxAuditLimit     = 500
)

type AuditController struct {
	Store      ledger.Store
	Reconciler *audit.Reconciler
}

func NewAuditController(store ledger.Store, rec *audit.Reconciler) *AuditController {
	return &AuditController{Store: store, Reconciler: rec}
}

// GET /v1/admin/audit?limit=
func (c *AuditController) Recent(w http.ResponseWriter, r *http.Request) {
	limit := defaultAuditLimit
	if s := r.URL.Query().Get("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil || n <= 0 {
			utils.BadRequest(w, "limit must be a positive integer")
			return
		}
		if n > maxAuditLimit {
			n = maxAuditLimit
		}
		limit = n
	}

	report, err := c.Reconciler.Check(r.Context())
	if err != nil && !errors.Is(err, ledger.ErrInvariantViolation) {
		utils.WriteError(w, err)
		return
	}
	events, err := ledger.RecentEvents(r.Context(), c.Store, limit)
	if err != nil {
		utils.WriteError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data: map[string]interface{}{
			"consistent": report.OK(),
			"report":     report,
			"events":     events,
		},
	})
}
