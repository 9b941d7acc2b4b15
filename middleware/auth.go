package middleware

import (
	"context"
	"net/http"

	"github.com/Henryno111/deposit-stx/utils"
)

// AuthMiddleware authenticates ledger callers. The token's principal claim is
// the caller identity passed to every ledger operation.
func AuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		tokenStr, err := utils.BearerToken(r)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Unauthorized"})
			return
		}
		claims, err := utils.ValidateAccessToken(r.Context(), tokenStr)
		if err != nil {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		// the principal becomes a ledger key, so it must fit the key format
		if !utils.ValidPrincipal(claims.Principal) {
			utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{Success: false, Message: "Invalid token"})
			return
		}

		// admin sessions use the admin routes
		if claims.Role == utils.RoleAdmin {
			utils.WriteJSON(w, http.StatusForbidden, utils.APIResponse{Success: false, Message: "Access denied"})
			return
		}

		ctx := context.WithValue(r.Context(), utils.ClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
