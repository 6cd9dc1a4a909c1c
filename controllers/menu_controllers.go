package controllers

import (
	"errors"
	"net/http"

	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetMenu lists menu items, optionally filtered to one course. Public.
func (mc *MenuController) GetMenu(c *gin.Context) {
	query := mc.DB.Model(&models.MenuItem{})
	if courseID := c.Query("courseId"); courseID != "" {
		query = query.Where("course_id = ?", courseID)
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items", items)
}

// courseAccessAllowed checks course scoping for menu mutations: admins may
// only touch menus of courses they are assigned to, superusers any course.
func courseAccessAllowed(user *models.User, courseID uint) bool {
	if user.Role == session.RoleSuperuser {
		return true
	}
	return user.HasCourse(courseID)
}

func (mc *MenuController) CreateMenuItem(c *gin.Context) {
	user, err := currentUser(c, mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req struct {
		Name        string  `json:"name" binding:"required"`
		Description string  `json:"description"`
		Price       float64 `json:"price" binding:"required,gt=0"`
		Category    string  `json:"category" binding:"required"`
		CourseID    uint    `json:"course_id" binding:"required"`
		Available   *bool   `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if !courseAccessAllowed(user, req.CourseID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you don't have access to this course"))
		return
	}

	var course models.Course
	if err := mc.DB.First(&course, req.CourseID).Error; err != nil {
		utils.RespondError(c, http.StatusBadRequest, errors.New("course not found"))
		return
	}

	item := models.MenuItem{
		CourseID:    req.CourseID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Category:    req.Category,
		Available:   true,
	}
	if req.Available != nil {
		item.Available = *req.Available
	}

	if err := mc.DB.Create(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Menu item created", item)
}

func (mc *MenuController) UpdateMenuItem(c *gin.Context) {
	user, err := currentUser(c, mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	if !courseAccessAllowed(user, item.CourseID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you don't have access to this course"))
		return
	}

	var req struct {
		Name        *string  `json:"name"`
		Description *string  `json:"description"`
		Price       *float64 `json:"price"`
		Category    *string  `json:"category"`
		Available   *bool    `json:"available"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Price != nil {
		updates["price"] = *req.Price
	}
	if req.Category != nil {
		updates["category"] = *req.Category
	}
	if req.Available != nil {
		updates["available"] = *req.Available
	}

	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no data to update"))
		return
	}

	if err := mc.DB.Model(&item).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item updated", item)
}

func (mc *MenuController) DeleteMenuItem(c *gin.Context) {
	user, err := currentUser(c, mc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, c.Param("item_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("menu item not found"))
		return
	}

	if !courseAccessAllowed(user, item.CourseID) {
		utils.RespondError(c, http.StatusForbidden, errors.New("you don't have access to this course"))
		return
	}

	if err := mc.DB.Delete(&item).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Menu item deleted successfully", nil)
}
