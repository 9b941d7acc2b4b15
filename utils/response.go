package utils

import (
	"encoding/json"
	"net/http"

	"github.com/Henryno111/deposit-stx/ledger"
	"github.com/Henryno111/deposit-stx/observability"

	"github.com/rs/zerolog/log"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, resp APIResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// ErrorStatus maps a ledger error category onto an HTTP status.
func ErrorStatus(cat ledger.Category) int {
	switch cat {
	case ledger.CategoryAuthorization:
		return http.StatusForbidden
	case ledger.CategoryValidation:
		return http.StatusBadRequest
	case ledger.CategoryNotFound:
		return http.StatusNotFound
	case ledger.CategoryConflict, ledger.CategoryLocked:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// WriteError renders a ledger operation failure. Domain errors carry their
// kind in data.error; anything else is logged and reported as a 500.
func WriteError(w http.ResponseWriter, err error) {
	cat, kind := ledger.Classify(err)
	if cat == ledger.CategoryUnknown {
		log.Error().Err(err).Msg("ledger operation failed")
		WriteJSON(w, http.StatusInternalServerError, APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	observability.RecordRejection(kind)
	WriteJSON(w, ErrorStatus(cat), APIResponse{
		Success: false,
		Message: kind,
		Data:    map[string]interface{}{"error": kind},
	})
}
