package admins

import (
	"net/http"

	"github.com/Henryno111/deposit-stx/database"
	"github.com/Henryno111/deposit-stx/middleware"
	"github.com/Henryno111/deposit-stx/models"
	"github.com/Henryno111/deposit-stx/utils"
)

type updateAdminPasswordRequest struct {
	CurrentPassword string `json:"current_password" validate:"required"`
	NewPassword     string `json:"new_password" validate:"required,maxlen=128"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=NewPassword"`
}

func currentAdmin(w http.ResponseWriter, r *http.Request) (*models.Admin, bool) {
	claims, ok := utils.GetClaims(r)
	if !ok || claims.AdminID == 0 {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Unauthorized: Invalid subject",
		})
		return nil, false
	}
	admin, err := models.GetAdminByID(claims.AdminID)
	if err != nil {
		utils.WriteJSON(w, http.StatusNotFound, utils.APIResponse{
			Success: false,
			Message: "Admin not found",
		})
		return nil, false
	}
	return admin, true
}

// GET /v1/admin/profile
func GetAdminProfile(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{
		Success: true,
		Message: "Successfully",
		Data:    admin,
	})
}

// PUT /v1/admin/password
func UpdateAdminPassword(w http.ResponseWriter, r *http.Request) {
	admin, ok := currentAdmin(w, r)
	if !ok {
		return
	}
	var req updateAdminPasswordRequest
	if err := middleware.ValidateJSON(w, r, &req); err != nil {
		return
	}
	if len(req.NewPassword) < 8 {
		utils.BadRequest(w, "NewPassword must be at least 8 characters")
		return
	}
	if !admin.ValidatePassword(req.CurrentPassword) {
		utils.WriteJSON(w, http.StatusUnauthorized, utils.APIResponse{
			Success: false,
			Message: "Current password is incorrect",
		})
		return
	}
	admin.Password = req.NewPassword
	if err := admin.HashPassword(); err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	if err := database.DB.WithContext(r.Context()).Model(admin).Update("password", admin.Password).Error; err != nil {
		utils.WriteJSON(w, http.StatusInternalServerError, utils.APIResponse{Success: false, Message: "Internal server error"})
		return
	}
	utils.WriteJSON(w, http.StatusOK, utils.APIResponse{Success: true, Message: "Password updated"})
}
