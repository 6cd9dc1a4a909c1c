package controllers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/fairwayfoods/fairway-app/kds"
	"github.com/fairwayfoods/fairway-app/models"
	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/fairwayfoods/fairway-app/statemachine"
	"github.com/fairwayfoods/fairway-app/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type OrderController struct {
	DB      *gorm.DB
	Mailer  *services.Mailer
	Monitor *services.OrderMonitor
}

func NewOrderController(db *gorm.DB, mailer *services.Mailer, monitor *services.OrderMonitor) *OrderController {
	return &OrderController{DB: db, Mailer: mailer, Monitor: monitor}
}

type orderItemRequest struct {
	MenuItemID uint `json:"menu_item_id" binding:"required"`
	Quantity   int  `json:"quantity" binding:"required,gt=0"`
}

type createOrderRequest struct {
	Items          []orderItemRequest `json:"items" binding:"required,min=1"`
	CustomerName   string             `json:"customer_name" binding:"required"`
	TeeOffTime     string             `json:"tee_off_time"`
	CourseID       uint               `json:"course_id" binding:"required"`
	IdempotencyKey string             `json:"idempotency_key"`
}

// newOrderReference derives a short human-readable order code.
func newOrderReference() string {
	return strings.ToUpper(strings.ReplaceAll(uuid.NewString(), "-", "")[:8])
}

// buildOrder normalizes the submitted cart against the course menu and
// persists the order with snapshotted names and prices. The total is always
// recomputed server-side; a client-sent total is never trusted.
func (oc *OrderController) buildOrder(req createOrderRequest, userID *uint) (*models.Order, error) {
	var course models.Course
	if err := oc.DB.Where("active = ?", true).First(&course, req.CourseID).Error; err != nil {
		return nil, errors.New("course not found")
	}

	cart := models.Cart{}
	for _, item := range req.Items {
		var menuItem models.MenuItem
		if err := oc.DB.Where("course_id = ?", req.CourseID).First(&menuItem, item.MenuItemID).Error; err != nil {
			return nil, errors.New("menu item not found for this course")
		}
		if !menuItem.Available {
			return nil, errors.New("menu item is not available: " + menuItem.Name)
		}
		cart.Add(models.CartLine{
			MenuItemID: menuItem.ID,
			Name:       menuItem.Name,
			Price:      menuItem.Price,
			Quantity:   item.Quantity,
		})
	}

	order := models.Order{
		Reference:    newOrderReference(),
		UserID:       userID,
		CustomerName: req.CustomerName,
		TeeOffTime:   req.TeeOffTime,
		CourseID:     req.CourseID,
		Status:       statemachine.StatusPending,
		TotalAmount:  cart.Total(),
	}
	if req.IdempotencyKey != "" {
		key := req.IdempotencyKey
		order.IdempotencyKey = &key
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, line := range cart.Lines {
			item := models.OrderItem{
				OrderID:    order.ID,
				MenuItemID: line.MenuItemID,
				Name:       line.Name,
				Price:      line.Price,
				Quantity:   line.Quantity,
			}
			if err := tx.Create(&item).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return &order, nil
}

// findByIdempotencyKey returns the order previously created with this key,
// if any. The unique index on the key is the arbiter: a replayed or
// concurrently double-submitted cart fails its insert and is resolved here.
func (oc *OrderController) findByIdempotencyKey(key string) *models.Order {
	if key == "" {
		return nil
	}
	var order models.Order
	if err := oc.DB.Preload("Items").Where("idempotency_key = ?", key).First(&order).Error; err != nil {
		return nil
	}
	return &order
}

// CreateOrder places a guest order (no authentication).
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.buildOrder(req, nil)
	if err != nil {
		if existing := oc.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
			utils.RespondJSON(c, http.StatusOK, "Order already placed", existing)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	kds.BroadcastOrderCreated(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// CreateUserOrder places an order tied to the authenticated customer and
// sends an order confirmation email.
func (oc *OrderController) CreateUserOrder(c *gin.Context) {
	user, err := currentUser(c, oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.buildOrder(req, &user.ID)
	if err != nil {
		if existing := oc.findByIdempotencyKey(req.IdempotencyKey); existing != nil {
			utils.RespondJSON(c, http.StatusOK, "Order already placed", existing)
			return
		}
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var course models.Course
	courseName := "your golf course"
	if err := oc.DB.First(&course, order.CourseID).Error; err == nil {
		courseName = course.Name
	}
	oc.Mailer.SendOrderConfirmation(user.Email, user.Name, *order, courseName)

	kds.BroadcastOrderCreated(*order)
	utils.RespondJSON(c, http.StatusCreated, "Order placed", order)
}

// orderView decorates an order with the one action the dashboards may offer
// for its current status.
func orderView(order models.Order) gin.H {
	return gin.H{
		"order":        order,
		"action_label": statemachine.ActionLabel(order.Status),
		"terminal":     statemachine.Terminal(order.Status),
	}
}

// GetAllOrders is the staff view: every order, newest first.
func (oc *OrderController) GetAllOrders(c *gin.Context) {
	var orders []models.Order
	if err := oc.DB.Preload("Items").Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}
	utils.RespondJSON(c, http.StatusOK, "List of orders", views)
}

// GetMyOrders is the customer view: only the requester's own orders.
func (oc *OrderController) GetMyOrders(c *gin.Context) {
	user, err := currentUser(c, oc.DB)
	if err != nil {
		utils.RespondError(c, http.StatusUnauthorized, err)
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("Items").Where("user_id = ?", user.ID).
		Order("created_at desc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My orders", orders)
}

// UpdateOrderStatus advances an order one step along
// pending -> preparing -> ready. Anything else is rejected and the row is
// left untouched.
func (oc *OrderController) UpdateOrderStatus(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	role, _ := roleInterface.(string)

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var order models.Order
	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Items").First(&order, c.Param("order_id")).Error; err != nil {
			return gorm.ErrRecordNotFound
		}
		if err := statemachine.CanAdvance(order.Status, req.Status, role); err != nil {
			return err
		}
		return tx.Model(&order).Update("status", req.Status).Error
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
			return
		}
		utils.RespondError(c, http.StatusUnprocessableEntity, err)
		return
	}

	utils.InfoLogger.Printf("Order %s advanced to %s by %s", order.Reference, order.Status, role)

	kds.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusOK, "Order status updated", orderView(order))
}

// UpdateOrder is the admin edit surface. Status still goes through the
// state machine; items replace the existing lines and the total is
// recomputed from them.
func (oc *OrderController) UpdateOrder(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	role, _ := roleInterface.(string)

	var order models.Order
	if err := oc.DB.Preload("Items").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	var req struct {
		CustomerName *string `json:"customer_name"`
		TeeOffTime   *string `json:"tee_off_time"`
		Status       *string `json:"status"`
		Items        []struct {
			MenuItemID uint    `json:"menu_item_id"`
			Name       string  `json:"name"`
			Price      float64 `json:"price"`
			Quantity   int     `json:"quantity"`
		} `json:"items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	if req.Status != nil && *req.Status != order.Status {
		if err := statemachine.CanAdvance(order.Status, *req.Status, role); err != nil {
			utils.RespondError(c, http.StatusUnprocessableEntity, err)
			return
		}
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{}
		if req.CustomerName != nil {
			updates["customer_name"] = *req.CustomerName
		}
		if req.TeeOffTime != nil {
			updates["tee_off_time"] = *req.TeeOffTime
		}
		if req.Status != nil {
			updates["status"] = *req.Status
		}

		if req.Items != nil {
			if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
				return err
			}
			cart := models.Cart{}
			for _, item := range req.Items {
				cart.Add(models.CartLine{
					MenuItemID: item.MenuItemID,
					Name:       item.Name,
					Price:      item.Price,
					Quantity:   item.Quantity,
				})
			}
			for _, line := range cart.Lines {
				if err := tx.Create(&models.OrderItem{
					OrderID:    order.ID,
					MenuItemID: line.MenuItemID,
					Name:       line.Name,
					Price:      line.Price,
					Quantity:   line.Quantity,
				}).Error; err != nil {
					return err
				}
			}
			updates["total_amount"] = cart.Total()
		}

		if len(updates) == 0 {
			return nil
		}
		return tx.Model(&order).Updates(updates).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if err := oc.DB.Preload("Items").First(&order, order.ID).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	kds.BroadcastOrderUpdate(order)
	utils.RespondJSON(c, http.StatusOK, "Order updated", order)
}

func (oc *OrderController) DeleteOrder(c *gin.Context) {
	var order models.Order
	if err := oc.DB.First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, errors.New("order not found"))
		return
	}

	err := oc.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", order.ID).Delete(&models.OrderItem{}).Error; err != nil {
			return err
		}
		return tx.Delete(&order).Error
	})
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Order deleted successfully", nil)
}

// AcknowledgeAlerts clears the kitchen's unacknowledged new-order counter.
func (oc *OrderController) AcknowledgeAlerts(c *gin.Context) {
	oc.Monitor.Acknowledge()
	utils.RespondJSON(c, http.StatusOK, "Alerts acknowledged", gin.H{
		"alert_count": oc.Monitor.AlertCount(),
	})
}

// GetKitchenDisplay returns the non-terminal orders for the kitchen board,
// oldest first, so tickets are worked in arrival order.
func (oc *OrderController) GetKitchenDisplay(c *gin.Context) {
	roleInterface, _ := c.Get("role")
	role, _ := roleInterface.(string)
	if !session.Allows(role, session.CapViewAllOrders) {
		utils.RespondError(c, http.StatusForbidden, errors.New("insufficient permissions"))
		return
	}

	var orders []models.Order
	if err := oc.DB.Preload("Items").
		Where("status IN ?", []string{statemachine.StatusPending, statemachine.StatusPreparing}).
		Order("created_at asc").Find(&orders).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	views := make([]gin.H, 0, len(orders))
	for _, o := range orders {
		views = append(views, orderView(o))
	}

	utils.RespondJSON(c, http.StatusOK, "Kitchen display", gin.H{
		"orders":      views,
		"alert_count": oc.Monitor.AlertCount(),
	})
}
