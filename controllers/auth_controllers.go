package controllers

import (
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
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

type AuthController struct {
	DB     *gorm.DB
	Mailer *services.Mailer
}

func NewAuthController(db *gorm.DB, mailer *services.Mailer) *AuthController {
	return &AuthController{DB: db, Mailer: mailer}
}

// currentUser loads the full user record (with course assignments) for the
// authenticated request.
func currentUser(c *gin.Context, db *gorm.DB) (*models.User, error) {
	userIDInterface, exists := c.Get("user_id")
	if !exists {
		return nil, errors.New("user id not found in context")
	}
	userID, ok := userIDInterface.(uint)
	if !ok {
		return nil, errors.New("invalid user id type")
	}

	var user models.User
	if err := db.Preload("Courses").Preload("DefaultCourse").First(&user, userID).Error; err != nil {
		return nil, errors.New("user not found")
	}
	return &user, nil
}

func userPayload(user *models.User) gin.H {
	var defaultCourse gin.H
	if user.DefaultCourse != nil {
		defaultCourse = gin.H{
			"id":   user.DefaultCourse.ID,
			"name": user.DefaultCourse.Name,
		}
	}

	displayName := user.DisplayName
	if displayName == "" {
		displayName = user.Name
	}

	return gin.H{
		"id":                user.ID,
		"email":             user.Email,
		"name":              user.Name,
		"role":              user.Role,
		"status":            user.Status,
		"course_ids":        user.CourseIDs(),
		"default_course_id": user.DefaultCourseID,
		"default_course":    defaultCourse,
		"profile": gin.H{
			"display_name":      displayName,
			"phone":             user.Phone,
			"membership_number": user.MembershipNumber,
		},
	}
}

// Register creates a self-service account. Every registration lands in
// pending status; only a superuser approval makes it usable.
func (ac *AuthController) Register(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=6"`
		CourseID *uint  `json:"course_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	req.Email = strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.User
	if err := ac.DB.Where("email = ?", req.Email).First(&existing).Error; err == nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("email already registered"))
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	user := models.User{
		Name:            req.Name,
		Email:           req.Email,
		Password:        string(hashed),
		Role:            session.RoleUser,
		Status:          models.StatusPending,
		DefaultCourseID: req.CourseID,
	}

	if req.CourseID != nil {
		var course models.Course
		if err := ac.DB.First(&course, *req.CourseID).Error; err != nil {
			utils.RespondError(c, http.StatusBadRequest, errors.New("course not found"))
			return
		}
		user.Courses = []models.Course{course}
	}

	if err := ac.DB.Create(&user).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("New user registered: %s (pending approval)", user.Email)

	// Notify superusers and welcome the new user; neither failing blocks the
	// registration.
	var superuserEmails []string
	ac.DB.Model(&models.User{}).Where("role = ?", session.RoleSuperuser).Pluck("email", &superuserEmails)
	if len(superuserEmails) > 0 {
		ac.Mailer.SendRegistrationNotification(superuserEmails, user.Name, user.Email)
	}
	ac.Mailer.SendWelcome(user.Email, user.Name)

	utils.RespondJSON(c, http.StatusCreated,
		"Registration submitted. Your account is pending approval by the administrator.", gin.H{
			"user_id": user.ID,
			"status":  user.Status,
		})
}

// Login verifies credentials and returns a bearer token plus the user record
// and landing route.
func (ac *AuthController) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required"`
		Password string `json:"password" binding:"required"`
		Desktop  bool   `json:"desktop"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Preload("Courses").Preload("DefaultCourse").
		Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).
		First(&user).Error; err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("invalid credentials"))
		return
	}

	switch user.Status {
	case models.StatusPending:
		utils.RespondError(c, http.StatusForbidden, errors.New("your account is pending approval by the administrator"))
		return
	case models.StatusRejected:
		utils.RespondError(c, http.StatusForbidden, errors.New("your account registration was not approved"))
		return
	}

	token, err := utils.GenerateToken(user.ID, user.Role)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	route := session.ResolveRoute(session.RouteInput{
		HasToken:         true,
		Role:             user.Role,
		HasDefaultCourse: user.DefaultCourseID != nil,
		DesktopViewport:  req.Desktop,
	})

	utils.RespondJSON(c, http.StatusOK, "Login successful", gin.H{
		"token": token,
		"user":  userPayload(&user),
		"route": route,
	})
}

// Me returns the authenticated user's record.
func (ac *AuthController) Me(c *gin.Context) {
	user, err := currentUser(c, ac.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Current user", userPayload(user))
}

// Route resolves the landing route for whatever session the caller holds.
// It is deliberately public: an absent or broken token resolves to login
// instead of an error.
func (ac *AuthController) Route(c *gin.Context) {
	desktop := c.Query("desktop") == "true" || c.Query("desktop") == "1"

	in := session.RouteInput{DesktopViewport: desktop}

	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		if claims, err := utils.ParseToken(strings.TrimPrefix(authHeader, "Bearer ")); err == nil {
			var user models.User
			if err := ac.DB.First(&user, claims.UserID).Error; err == nil {
				in.HasToken = true
				in.Role = user.Role
				in.HasDefaultCourse = user.DefaultCourseID != nil
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Resolved route", gin.H{
		"route": session.ResolveRoute(in),
	})
}

// generateResetCode returns a 6-digit numeric code.
func generateResetCode() string {
	n, err := rand.Int(rand.Reader, big.NewInt(1000000))
	if err != nil {
		return "000000"
	}
	return fmt.Sprintf("%06d", n.Int64())
}

// ForgotPassword issues a reset code. The response never reveals whether the
// email exists; when the mailer is unconfigured the code is returned in the
// body so the flow stays testable.
func (ac *AuthController) ForgotPassword(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(req.Email))).First(&user).Error; err != nil {
		utils.RespondJSON(c, http.StatusOK,
			"If an account with this email exists, a reset code has been sent", nil)
		return
	}

	code := generateResetCode()
	expires := time.Now().Add(15 * time.Minute)
	if err := ac.DB.Model(&user).Updates(map[string]interface{}{
		"reset_code":         code,
		"reset_code_expires": expires,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if ac.Mailer.SendPasswordReset(user.Email, user.Name, code) {
		utils.RespondJSON(c, http.StatusOK, "Reset code sent to your email", gin.H{
			"email_sent": true,
		})
		return
	}

	utils.RespondJSON(c, http.StatusOK,
		"Email service not configured. Use this code to reset your password.", gin.H{
			"email_sent": false,
			"reset_code": code,
		})
}

func (ac *AuthController) verifyCode(email, code string) (*models.User, error) {
	var user models.User
	if err := ac.DB.Where("email = ?", strings.ToLower(strings.TrimSpace(email))).First(&user).Error; err != nil {
		return nil, errors.New("invalid email or code")
	}

	if user.ResetCode == "" || user.ResetCode != code {
		return nil, errors.New("invalid reset code")
	}
	if user.ResetCodeExpires == nil || time.Now().After(*user.ResetCodeExpires) {
		return nil, errors.New("reset code has expired")
	}
	return &user, nil
}

func (ac *AuthController) VerifyResetCode(c *gin.Context) {
	var req struct {
		Email string `json:"email" binding:"required"`
		Code  string `json:"code" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if _, err := ac.verifyCode(req.Email, req.Code); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Code verified successfully", gin.H{
		"verified": true,
	})
}

func (ac *AuthController) ResetPassword(c *gin.Context) {
	var req struct {
		Email       string `json:"email" binding:"required"`
		Code        string `json:"code" binding:"required"`
		NewPassword string `json:"new_password" binding:"required,min=6"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	user, err := ac.verifyCode(req.Email, req.Code)
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.NewPassword), bcrypt.DefaultCost)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := ac.DB.Model(user).Updates(map[string]interface{}{
		"password":           string(hashed),
		"reset_code":         "",
		"reset_code_expires": nil,
	}).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	ac.Mailer.SendPasswordChanged(user.Email, user.Name)

	utils.RespondJSON(c, http.StatusOK, "Password reset successfully", nil)
}
