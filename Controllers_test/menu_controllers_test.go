package Controllers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/fairwayfoods/fairway-app/controllers"
	"github.com/fairwayfoods/fairway-app/middlewares"
	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
)

type menuFixture struct {
	EastCourseID uint
	WestCourseID uint
	EastItemID   uint
	WestItemID   uint
}

func setupTestDBForMenu() (*gorm.DB, menuFixture) {
	db, err := gorm.Open(sqlite.Open("file:menutest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(&models.User{}, &models.Course{}, &models.MenuItem{})
	if err != nil {
		panic(err)
	}
	db.Where("1 = 1").Delete(&models.MenuItem{})
	db.Where("1 = 1").Delete(&models.Course{})
	db.Where("1 = 1").Delete(&models.User{})

	east := models.Course{Name: "East Course", Location: "Durban", Active: true}
	west := models.Course{Name: "West Course", Location: "Johannesburg", Active: true}
	db.Create(&east)
	db.Create(&west)

	eastItem := models.MenuItem{CourseID: east.ID, Name: "Bunny Chow", Price: 95.0, Category: "Mains", Available: true}
	westItem := models.MenuItem{CourseID: west.ID, Name: "Boerewors Roll", Price: 65.0, Category: "Mains", Available: true}
	db.Create(&eastItem)
	db.Create(&westItem)

	return db, menuFixture{
		EastCourseID: east.ID,
		WestCourseID: west.ID,
		EastItemID:   eastItem.ID,
		WestItemID:   westItem.ID,
	}
}

func setupMenuRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	menuCtrl := controllers.NewMenuController(db)

	router.GET("/menu", menuCtrl.GetMenu)

	admin := router.Group("/")
	admin.Use(middlewares.AuthMiddleware(), middlewares.RequireCapability(session.CapManageMenu))
	admin.POST("/menu", menuCtrl.CreateMenuItem)
	admin.PUT("/menu/:item_id", menuCtrl.UpdateMenuItem)
	admin.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	return router
}

// seedAdminFor creates an approved admin assigned to the given courses.
func seedAdminFor(db *gorm.DB, email string, courseIDs ...uint) models.User {
	admin := seedAccount(db, email, "secret123", session.RoleAdmin, models.StatusApproved)
	var courses []models.Course
	db.Find(&courses, courseIDs)
	db.Model(&admin).Association("Courses").Replace(courses)
	return admin
}

func TestGetMenuFilteredByCourse(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForMenu()
	router := setupMenuRouter(db)

	req, _ := http.NewRequest("GET", "/menu?courseId="+itoa(fx.EastCourseID), nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeBody(t, w)
	items := resp["data"].([]interface{})
	assert.Len(t, items, 1)
	item := items[0].(map[string]interface{})
	assert.Equal(t, "Bunny Chow", item["name"])
}

func TestAdminMenuMutationsScopedToAssignedCourses(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForMenu()
	router := setupMenuRouter(db)

	admin := seedAdminFor(db, "eastadmin@fairway.local", fx.EastCourseID)
	token, _ := utils.GenerateToken(admin.ID, admin.Role)

	// Creating on the assigned course works.
	w := postJSON(router, "/menu", map[string]interface{}{
		"name":      "Toasted Chicken Mayo",
		"price":     70.0,
		"category":  "Halfway House",
		"course_id": fx.EastCourseID,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Creating on a course the admin is not assigned to is forbidden.
	w = postJSON(router, "/menu", map[string]interface{}{
		"name":      "Smash Burger",
		"price":     110.0,
		"category":  "Mains",
		"course_id": fx.WestCourseID,
	}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)

	// Same scoping applies to edits of existing items.
	body, _ := json.Marshal(map[string]interface{}{"available": false})
	req, _ := http.NewRequest("PUT", "/menu/"+itoa(fx.WestItemID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusForbidden, w2.Code)

	body, _ = json.Marshal(map[string]interface{}{"available": false})
	req, _ = http.NewRequest("PUT", "/menu/"+itoa(fx.EastItemID), bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var item models.MenuItem
	db.First(&item, fx.EastItemID)
	assert.False(t, item.Available)
}

func TestSuperuserManagesAnyCourseMenu(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForMenu()
	router := setupMenuRouter(db)

	super := seedAccount(db, "boss@fairway.local", "secret123", session.RoleSuperuser, models.StatusApproved)
	token, _ := utils.GenerateToken(super.ID, super.Role)

	w := postJSON(router, "/menu", map[string]interface{}{
		"name":      "Biltong Platter",
		"price":     150.0,
		"category":  "Snacks",
		"course_id": fx.WestCourseID,
	}, token)
	assert.Equal(t, http.StatusCreated, w.Code)

	req, _ := http.NewRequest("DELETE", "/menu/"+itoa(fx.EastItemID), nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	var count int64
	db.Model(&models.MenuItem{}).Where("id = ?", fx.EastItemID).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestKitchenCannotManageMenu(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForMenu()
	router := setupMenuRouter(db)

	kitchen := seedAccount(db, "kitchen@fairway.local", "secret123", session.RoleKitchen, models.StatusApproved)
	token, _ := utils.GenerateToken(kitchen.ID, kitchen.Role)

	w := postJSON(router, "/menu", map[string]interface{}{
		"name":      "Off-menu Special",
		"price":     50.0,
		"category":  "Specials",
		"course_id": fx.EastCourseID,
	}, token)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
