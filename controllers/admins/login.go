package admins

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/utils"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type LoginRequest struct {
	Username string `json:"username" validate:"required,maxlen=100"`
	Password string `json:"password" validate:"required,maxlen=128"`
}

// AuthController signs admins in as the ledger owner.
type AuthController struct {
	Owner models.Principal
}

func NewAuthController(owner models.Principal) *AuthController {
	return &AuthController{Owner: owner}
}

// POST /v1/admin/login
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}

	if locked, remaining := middleware.IsAccountLocked(r.Context(), req.Username); locked {
		utils.WriteJSON(w, http.StatusTooManyRequests, utils.APIResponse{
			Success: false,
			Message: fmt.Sprintf("Account locked, try again in %d seconds", int(remaining.Seconds())+1),
		})
		return
	}

	admin, err := models.GetAdminByUsername(req.Username)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		log.Error().Err(err).Msg("admin lookup failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if err != nil || !admin.ValidatePassword(req.Password) {
		middleware.RecordFailedLogin(r.Context(), req.Username)
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Invalid username or password",
		})
		return
	}
	middleware.ResetFailedLogin(r.Context(), req.Username)

	token, err := utils.GenerateAccessToken(string(c.Owner), utils.RoleAdmin, admin.ID)
	if err != nil {
		log.Error().Err(err).Msg("token generation failed")
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{
			Success: false,
			Message: "Failed to create token",
		})
		return
	}

	log.Info().Str("admin", admin.Username).Msg("admin login")
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Login successful",
		Data: map[string]interface{}{
			"token":     token,
			"admin":     admin,
			"principal": c.Owner,
		},
	})
}
