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
	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/utils"
)

// orderFixture holds the seeded ids so tests never rely on autoincrement
// values surviving between runs.
type orderFixture struct {
	CourseID   uint
	SandwichID uint
	LagerID    uint
	OystersID  uint
}

func setupTestDBForOrders() (*gorm.DB, orderFixture) {
	db, err := gorm.Open(sqlite.Open("file:ordertest?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}
	err = db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
	)
	if err != nil {
		panic(err)
	}
	db.Where("1 = 1").Delete(&models.OrderItem{})
	db.Where("1 = 1").Delete(&models.Order{})
	db.Where("1 = 1").Delete(&models.MenuItem{})
	db.Where("1 = 1").Delete(&models.Course{})
	db.Where("1 = 1").Delete(&models.User{})

	course := models.Course{Name: "Royal Fairway", Location: "Cape Town", Active: true}
	db.Create(&course)
	sandwich := models.MenuItem{
		CourseID: course.ID, Name: "Club Sandwich", Price: 85.0,
		Category: "Halfway House", Available: true,
	}
	db.Create(&sandwich)
	lager := models.MenuItem{
		CourseID: course.ID, Name: "Craft Lager", Price: 45.0,
		Category: "Drinks", Available: true,
	}
	db.Create(&lager)
	oysters := models.MenuItem{
		CourseID: course.ID, Name: "Oysters", Price: 120.0,
		Category: "Specials", Available: false,
	}
	db.Create(&oysters)

	return db, orderFixture{
		CourseID:   course.ID,
		SandwichID: sandwich.ID,
		LagerID:    lager.ID,
		OystersID:  oysters.ID,
	}
}

func setupOrderRouter(db *gorm.DB) (*gin.Engine, *services.OrderMonitor) {
	gin.SetMode(gin.TestMode)
	router := gin.Default()
	monitor := services.NewOrderMonitor(db)
	orderCtrl := controllers.NewOrderController(db, services.NewMailer(), monitor)

	router.POST("/orders", orderCtrl.CreateOrder)

	auth := router.Group("/")
	auth.Use(middlewares.AuthMiddleware())
	auth.POST("/orders/user", orderCtrl.CreateUserOrder)
	auth.GET("/orders/my-orders", orderCtrl.GetMyOrders)

	staff := auth.Group("/")
	staff.Use(middlewares.RequireCapability(session.CapViewAllOrders))
	staff.GET("/orders", orderCtrl.GetAllOrders)
	staff.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)
	staff.POST("/orders/acknowledge", orderCtrl.AcknowledgeAlerts)
	staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	return router, monitor
}

func patchStatus(router *gin.Engine, orderID uint, status, token string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(map[string]string{"status": status})
	req, _ := http.NewRequest("PATCH", "/orders/"+itoa(orderID)+"/status", bytes.NewBuffer(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGuestOrderNormalizesCartAndComputesTotal(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	// The same sandwich submitted twice merges into one line of two.
	w := postJSON(router, "/orders", map[string]interface{}{
		"customer_name": "Walk-in Golfer",
		"course_id":     fx.CourseID,
		"tee_off_time":  "14:30",
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
			{"menu_item_id": fx.LagerID, "quantity": 1},
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	resp := decodeBody(t, w)
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "pending", data["status"])
	assert.NotEmpty(t, data["reference"])
	assert.Equal(t, 2*85.0+45.0, data["total_amount"])

	items := data["items"].([]interface{})
	assert.Len(t, items, 2)
	first := items[0].(map[string]interface{})
	assert.Equal(t, float64(2), first["quantity"])
}

func TestGuestOrderRejectsUnavailableItem(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	w := postJSON(router, "/orders", map[string]interface{}{
		"customer_name": "Walk-in Golfer",
		"course_id":     fx.CourseID,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.OystersID, "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestOrderIdempotencyKey(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	payload := map[string]interface{}{
		"customer_name":   "Double Tapper",
		"course_id":       fx.CourseID,
		"idempotency_key": "abc-123",
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}

	w := postJSON(router, "/orders", payload, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	firstResp := decodeBody(t, w)
	firstID := firstResp["data"].(map[string]interface{})["id"]

	// Resubmitting the same cart returns the original order, not a new one.
	w = postJSON(router, "/orders", payload, "")
	assert.Equal(t, http.StatusOK, w.Code)
	secondResp := decodeBody(t, w)
	assert.Equal(t, "Order already placed", secondResp["message"])
	assert.Equal(t, firstID, secondResp["data"].(map[string]interface{})["id"])

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestOrderIdempotencyKeyInsertCollision(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	// Another request with the same key already won the insert; this
	// submission's own insert hits the unique index and must resolve to the
	// winner's order instead of an error.
	key := "race-key"
	winner := models.Order{
		Reference:      "AAA11111",
		CustomerName:   "First Submitter",
		CourseID:       fx.CourseID,
		Status:         "pending",
		TotalAmount:    85.0,
		IdempotencyKey: &key,
	}
	assert.NoError(t, db.Create(&winner).Error)

	w := postJSON(router, "/orders", map[string]interface{}{
		"customer_name":   "Second Submitter",
		"course_id":       fx.CourseID,
		"idempotency_key": key,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusOK, w.Code)
	resp := decodeBody(t, w)
	assert.Equal(t, "Order already placed", resp["message"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, float64(winner.ID), data["id"])
	assert.Equal(t, "First Submitter", data["customer_name"])

	var count int64
	db.Model(&models.Order{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestMyOrdersScopedToRequester(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	alice := seedAccount(db, "alice@example.com", "secret123", session.RoleUser, models.StatusApproved)
	bob := seedAccount(db, "bob@example.com", "secret123", session.RoleUser, models.StatusApproved)
	cashier := seedAccount(db, "cashier@fairway.local", "secret123", session.RoleCashier, models.StatusApproved)

	aliceToken, _ := utils.GenerateToken(alice.ID, alice.Role)
	bobToken, _ := utils.GenerateToken(bob.ID, bob.Role)
	cashierToken, _ := utils.GenerateToken(cashier.ID, cashier.Role)

	w := postJSON(router, "/orders/user", map[string]interface{}{
		"customer_name": "Alice",
		"course_id":     fx.CourseID,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, aliceToken)
	assert.Equal(t, http.StatusCreated, w.Code)

	// Bob sees none of Alice's orders.
	req, _ := http.NewRequest("GET", "/orders/my-orders", nil)
	req.Header.Set("Authorization", "Bearer "+bobToken)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	resp := decodeBody(t, w2)
	if resp["data"] != nil {
		assert.Empty(t, resp["data"].([]interface{}))
	}

	// Alice sees her own.
	req, _ = http.NewRequest("GET", "/orders/my-orders", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	resp = decodeBody(t, w2)
	assert.Len(t, resp["data"].([]interface{}), 1)

	// Customers cannot reach the staff list, cashiers can.
	req, _ = http.NewRequest("GET", "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+aliceToken)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusForbidden, w2.Code)

	req, _ = http.NewRequest("GET", "/orders", nil)
	req.Header.Set("Authorization", "Bearer "+cashierToken)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	resp = decodeBody(t, w2)
	views := resp["data"].([]interface{})
	assert.Len(t, views, 1)
	view := views[0].(map[string]interface{})
	assert.Equal(t, "Start Preparing", view["action_label"])
}

func TestOrderLifecycleAdvancement(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	kitchen := seedAccount(db, "kitchen@fairway.local", "secret123", session.RoleKitchen, models.StatusApproved)
	kitchenToken, _ := utils.GenerateToken(kitchen.ID, kitchen.Role)

	w := postJSON(router, "/orders", map[string]interface{}{
		"customer_name": "Walk-in Golfer",
		"course_id":     fx.CourseID,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := uint(data["id"].(float64))

	// Skipping a step is rejected and the row stays put.
	w2 := patchStatus(router, orderID, "ready", kitchenToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w2.Code)

	var order models.Order
	db.First(&order, orderID)
	assert.Equal(t, "pending", order.Status)

	// One step at a time works.
	w2 = patchStatus(router, orderID, "preparing", kitchenToken)
	assert.Equal(t, http.StatusOK, w2.Code)
	view := decodeBody(t, w2)["data"].(map[string]interface{})
	assert.Equal(t, "Mark as Ready", view["action_label"])

	w2 = patchStatus(router, orderID, "ready", kitchenToken)
	assert.Equal(t, http.StatusOK, w2.Code)
	view = decodeBody(t, w2)["data"].(map[string]interface{})
	assert.Equal(t, true, view["terminal"])

	// Ready is terminal: no further movement, forward or backward.
	w2 = patchStatus(router, orderID, "pending", kitchenToken)
	assert.Equal(t, http.StatusUnprocessableEntity, w2.Code)

	db.First(&order, orderID)
	assert.Equal(t, "ready", order.Status)
}

func TestCustomerCannotAdvanceOrders(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, _ := setupOrderRouter(db)

	alice := seedAccount(db, "alice@example.com", "secret123", session.RoleUser, models.StatusApproved)
	aliceToken, _ := utils.GenerateToken(alice.ID, alice.Role)

	w := postJSON(router, "/orders/user", map[string]interface{}{
		"customer_name": "Alice",
		"course_id":     fx.CourseID,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, aliceToken)
	assert.Equal(t, http.StatusCreated, w.Code)
	data := decodeBody(t, w)["data"].(map[string]interface{})
	orderID := uint(data["id"].(float64))

	// Customers are blocked before the handler even runs.
	w2 := patchStatus(router, orderID, "preparing", aliceToken)
	assert.Equal(t, http.StatusForbidden, w2.Code)

	var order models.Order
	db.First(&order, orderID)
	assert.Equal(t, "pending", order.Status)
}

func TestKitchenDisplayAndAlerts(t *testing.T) {
	utils.InitLogger()
	db, fx := setupTestDBForOrders()
	router, monitor := setupOrderRouter(db)

	kitchen := seedAccount(db, "kitchen@fairway.local", "secret123", session.RoleKitchen, models.StatusApproved)
	kitchenToken, _ := utils.GenerateToken(kitchen.ID, kitchen.Role)

	monitor.Poll()

	w := postJSON(router, "/orders", map[string]interface{}{
		"customer_name": "Walk-in Golfer",
		"course_id":     fx.CourseID,
		"items": []map[string]interface{}{
			{"menu_item_id": fx.SandwichID, "quantity": 1},
		},
	}, "")
	assert.Equal(t, http.StatusCreated, w.Code)

	monitor.Poll()

	req, _ := http.NewRequest("GET", "/kitchen/display", nil)
	req.Header.Set("Authorization", "Bearer "+kitchenToken)
	w2 := httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)
	data := decodeBody(t, w2)["data"].(map[string]interface{})
	assert.Equal(t, float64(1), data["alert_count"])
	assert.Len(t, data["orders"].([]interface{}), 1)

	// Acknowledging clears the highlight but not the ticket.
	w2 = httptest.NewRecorder()
	req, _ = http.NewRequest("POST", "/orders/acknowledge", nil)
	req.Header.Set("Authorization", "Bearer "+kitchenToken)
	router.ServeHTTP(w2, req)
	assert.Equal(t, http.StatusOK, w2.Code)

	req, _ = http.NewRequest("GET", "/kitchen/display", nil)
	req.Header.Set("Authorization", "Bearer "+kitchenToken)
	w2 = httptest.NewRecorder()
	router.ServeHTTP(w2, req)
	data = decodeBody(t, w2)["data"].(map[string]interface{})
	assert.Equal(t, float64(0), data["alert_count"])
	assert.Len(t, data["orders"].([]interface{}), 1)
}
