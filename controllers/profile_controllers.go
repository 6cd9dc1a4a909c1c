package controllers

import (
	"errors"
	"net/http"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type ProfileController struct {
	DB     *gorm.DB
	Mailer *services.Mailer
}

func NewProfileController(db *gorm.DB, mailer *services.Mailer) *ProfileController {
	return &ProfileController{DB: db, Mailer: mailer}
}

func (pc *ProfileController) GetProfile(c *gin.Context) {
	user, err := currentUser(c, pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Name
	}

	utils.RespondJSON(c, http.StatusOK, "Profile data retrieved successfully", gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"display_name":      displayName,
		"phone":             user.Phone,
		"membership_number": user.MembershipNumber,
		"role":              user.Role,
	})
}

// UpdateProfile changes the self-service fields only; role, status and
// course assignments stay superuser territory.
func (pc *ProfileController) UpdateProfile(c *gin.Context) {
	user, err := currentUser(c, pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Name             *string `json:"name"`
		DisplayName      *string `json:"display_name"`
		Phone            *string `json:"phone"`
		MembershipNumber *string `json:"membership_number"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.DisplayName != nil {
		updates["display_name"] = *req.DisplayName
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.MembershipNumber != nil {
		updates["membership_number"] = *req.MembershipNumber
	}

	if len(updates) > 0 {
		if err := pc.DB.Model(user).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	var updated models.User
	if err := pc.DB.First(&updated, user.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	displayName := updated.DisplayName
	if displayName == "" {
		displayName = updated.Name
	}

	utils.RespondJSON(c, http.StatusOK, "Profile updated successfully", gin.H{
		"display_name":      displayName,
		"phone":             updated.Phone,
		"membership_number": updated.MembershipNumber,
	})
}

func (pc *ProfileController) ChangePassword(c *gin.Context) {
	user, err := currentUser(c, pc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password" binding:"required"`
		NewPassword     string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.CurrentPassword)); err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("current password is incorrect"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := pc.DB.Model(user).Update("password", string(hashed)).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	pc.Mailer.SendPasswordChanged(user.Email, user.Name)

	utils.RespondJSON(c, http.StatusOK, "Password changed successfully", nil)
}
