package controllers

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserController is the superuser administration surface: listing, creating,
// editing, approving and rejecting accounts.
type UserController struct {
	DB     *gorm.DB
	Mailer *services.Mailer
}

func NewUserController(db *gorm.DB, mailer *services.Mailer) *UserController {
	return &UserController{DB: db, Mailer: mailer}
}

func (uc *UserController) GetAllUsers(c *gin.Context) {
	var users []models.User
	if err := uc.DB.Preload("Courses").Preload("DefaultCourse").Find(&users).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	payload := make([]gin.H, 0, len(users))
	for i := range users {
		entry := userPayload(&users[i])
		if users[i].DefaultCourse != nil {
			entry["default_course_name"] = users[i].DefaultCourse.Name
		}
		payload = append(payload, entry)
	}

	utils.RespondJSON(c, http.StatusOK, "All users", payload)
}

// CreateUser adds an account directly. Unlike self-registration, these are
// approved immediately.
func (uc *UserController) CreateUser(c *gin.Context) {
	var req struct {
		Name      string `json:"name" binding:"required"`
		Email     string `json:"email" binding:"required,email"`
		Password  string `json:"password" binding:"required,min=6"`
		Role      string `json:"role"`
		CourseIDs []uint `json:"course_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Role == "" {
		req.Role = session.RoleUser
	}
	if !session.ValidRole(req.Role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := uc.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("user with this email already exists"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: string(hashed),
		Role:     req.Role,
		Status:   models.StatusApproved,
	}

	if len(req.CourseIDs) > 0 {
		var courses []models.Course
		if err := uc.DB.Find(&courses, req.CourseIDs).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid course assignment"))
			return
		}
		user.Courses = courses
	}

	if err := uc.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("User created by superuser: %s (role=%s)", user.Email, user.Role)
	utils.RespondJSON(c, http.StatusCreated, "User created successfully", gin.H{
		"user_id": user.ID,
	})
}

func (uc *UserController) UpdateUserRole(c *gin.Context) {
	var req struct {
		Role string `json:"role" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !session.ValidRole(req.Role) {
		utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
		return
	}

	result := uc.DB.Model(&models.User{}).Where("id = ?", c.Param("user_id")).Update("role", req.Role)
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Role updated successfully", nil)
}

func (uc *UserController) UpdateUserCourses(c *gin.Context) {
	var req struct {
		CourseIDs []uint `json:"course_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.First(&user, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	var courses []models.Course
	if len(req.CourseIDs) > 0 {
		if err := uc.DB.Find(&courses, req.CourseIDs).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid course assignment"))
			return
		}
	}

	if err := uc.DB.Model(&user).Association("Courses").Replace(courses); err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Course assignments updated successfully", nil)
}

// SetDefaultCourse sets or clears a user's default course. The course must
// be one of the user's assignments.
func (uc *UserController) SetDefaultCourse(c *gin.Context) {
	var req struct {
		DefaultCourseID *uint `json:"default_course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := uc.DB.Preload("Courses").First(&user, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if req.DefaultCourseID != nil {
		var course models.Course
		if err := uc.DB.First(&course, *req.DefaultCourseID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("course not found"))
			return
		}
		if !user.HasCourse(*req.DefaultCourseID) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("user is not assigned to this course"))
			return
		}
	}

	if err := uc.DB.Model(&user).Update("default_course_id", req.DefaultCourseID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Default course updated successfully", nil)
}

// ApproveUser moves a pending registration to approved and notifies the
// account owner.
func (uc *UserController) ApproveUser(c *gin.Context) {
	var user models.User
	if err := uc.DB.First(&user, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	now := time.Now()
	if err := uc.DB.Model(&user).Updates(map[string]interface{}{
		"status":      models.StatusApproved,
		"approved_at": now,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	uc.Mailer.SendApproval(user.Email, user.Name)

	utils.RespondJSON(c, http.StatusOK, "User approved successfully", gin.H{
		"email": user.Email,
	})
}

func (uc *UserController) RejectUser(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	// The body is optional; a missing reason gets a placeholder.
	_ = c.ShouldBindJSON(&req)
	if req.Reason == "" {
		req.Reason = "No reason provided"
	}

	var user models.User
	if err := uc.DB.First(&user, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	now := time.Now()
	if err := uc.DB.Model(&user).Updates(map[string]interface{}{
		"status":           models.StatusRejected,
		"rejected_at":      now,
		"rejection_reason": req.Reason,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	uc.Mailer.SendRejection(user.Email, user.Name, req.Reason)

	utils.RespondJSON(c, http.StatusOK, "User rejected", gin.H{
		"email": user.Email,
	})
}

// DeleteUser removes an account. Superusers cannot delete themselves or
// other superusers.
func (uc *UserController) DeleteUser(c *gin.Context) {
	actor, err := currentUser(c, uc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var target models.User
	if err := uc.DB.First(&target, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	if target.ID == actor.ID {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot delete your own account"))
		return
	}
	if target.Role == session.RoleSuperuser {
		utils.RespondError(c, http.StatusBadRequest, errors.New("cannot delete superuser accounts"))
		return
	}

	if err := uc.DB.Select("Courses").Delete(&target).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "User deleted successfully", nil)
}

// UpdateUser is the general-purpose superuser edit: name, email, role,
// status, course assignments and password in one request.
func (uc *UserController) UpdateUser(c *gin.Context) {
	var target models.User
	if err := uc.DB.First(&target, c.Param("user_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("user not found"))
		return
	}

	var req struct {
		Name      *string `json:"name"`
		Email     *string `json:"email"`
		Role      *string `json:"role"`
		Status    *string `json:"status"`
		Password  *string `json:"password"`
		CourseIDs []uint  `json:"course_ids"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*req.Email))
		var existing models.User
		if err := uc.DB.Where("email = ? AND id <> ?", email, target.ID).First(&existing).Error; err == nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("email already in use"))
			return
		}
		updates["email"] = email
	}
	if req.Role != nil {
		if !session.ValidRole(*req.Role) {
			utils.RespondError(c, http.StatusBadRequest, errors.New("invalid role"))
			return
		}
		updates["role"] = *req.Role
	}
	if req.Status != nil {
		updates["status"] = *req.Status
	}
	if req.Password != nil && *req.Password != "" {
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		updates["password"] = string(hashed)
	}

	if len(updates) > 0 {
		if err := uc.DB.Model(&target).Updates(updates).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	if req.CourseIDs != nil {
		var courses []models.Course
		if len(req.CourseIDs) > 0 {
			if err := uc.DB.Find(&courses, req.CourseIDs).Error; err != nil {
				utils.RespondError(c, http.StatusBadRequest, errors.New("invalid course assignment"))
				return
			}
		}
		if err := uc.DB.Model(&target).Association("Courses").Replace(courses); err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "User updated successfully", nil)
}
