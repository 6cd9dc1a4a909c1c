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

type CourseController struct {
	DB *gorm.DB
}

func NewCourseController(db *gorm.DB) *CourseController {
	return &CourseController{DB: db}
}

// GetCourses lists active courses. Public: guests pick a course before
// browsing the menu.
func (cc *CourseController) GetCourses(c *gin.Context) {
	var courses []models.Course
	if err := cc.DB.Where("active = ?", true).Find(&courses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active courses", courses)
}

// GetMyCourses lists the courses assigned to the caller. Superusers see
// every active course.
func (cc *CourseController) GetMyCourses(c *gin.Context) {
	user, err := currentUser(c, cc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	if user.Role == session.RoleSuperuser {
		var courses []models.Course
		if err := cc.DB.Where("active = ?", true).Find(&courses).Error; err != nil {
			utils.RespondError(c, http.StatusInternalServerError, err)
			return
		}
		utils.RespondJSON(c, http.StatusOK, "My courses", courses)
		return
	}

	active := make([]models.Course, 0, len(user.Courses))
	for _, course := range user.Courses {
		if course.Active {
			active = append(active, course)
		}
	}
	utils.RespondJSON(c, http.StatusOK, "My courses", active)
}

// GetAllCourses includes inactive courses. Superuser only.
func (cc *CourseController) GetAllCourses(c *gin.Context) {
	var courses []models.Course
	if err := cc.DB.Find(&courses).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All courses", courses)
}

func (cc *CourseController) CreateCourse(c *gin.Context) {
	var req struct {
		Name        string `json:"name" binding:"required"`
		Location    string `json:"location" binding:"required"`
		Description string `json:"description"`
		Active      *bool  `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	course := models.Course{
		Name:        req.Name,
		Location:    req.Location,
		Description: req.Description,
		Active:      true,
	}
	if req.Active != nil {
		course.Active = *req.Active
	}

	if err := cc.DB.Create(&course).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.InfoLogger.Printf("Course created: %s (%s)", course.Name, course.Location)
	utils.RespondJSON(c, http.StatusCreated, "Course created", course)
}

func (cc *CourseController) UpdateCourse(c *gin.Context) {
	var course models.Course
	if err := cc.DB.First(&course, c.Param("course_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("course not found"))
		return
	}

	var req struct {
		Name        *string `json:"name"`
		Location    *string `json:"location"`
		Description *string `json:"description"`
		Active      *bool   `json:"active"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		updates["name"] = *req.Name
	}
	if req.Location != nil {
		updates["location"] = *req.Location
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}

	if len(updates) == 0 {
		utils.RespondError(c, http.StatusBadRequest, errors.New("no data to update"))
		return
	}

	if err := cc.DB.Model(&course).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Course updated", course)
}

func (cc *CourseController) DeleteCourse(c *gin.Context) {
	result := cc.DB.Delete(&models.Course{}, c.Param("course_id"))
	if result.Error != nil {
		utils.RespondError(c, http.StatusInternalServerError, result.Error)
		return
	}
	if result.RowsAffected == 0 {
		utils.RespondError(c, http.StatusNotFound, errors.New("course not found"))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Course deleted successfully", nil)
}
