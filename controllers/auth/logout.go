package auth

import (
	"net/http"
	"time"

	"github.com/Henryno111/deposit-stx/utils"

	"github.com/rs/zerolog/log"
)

// LogoutHandler revokes the access token presented in the Authorization header
// until it would have expired.
func LogoutHandler(w http.ResponseWriter, r *http.Request) {
	claims, ok := utils.GetClaims(r)
	if !ok {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
		return
	}
	var ttl time.Duration
	if claims.ExpiresAt != nil {
		ttl = time.Until(claims.ExpiresAt.Time)
	}
	if ttl < 0 {
		ttl = 0
	}
	if err := utils.RevokeJTI(r.Context(), claims.ID, ttl); err != nil {
		log.Error().Err(err).Str("principal", claims.Principal).Msg("token revocation failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Logged out"})
}
