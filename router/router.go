package router

import (
	"github.com/fairwayfoods/fairway-app/controllers"
	"github.com/fairwayfoods/fairway-app/middlewares"
	"github.com/fairwayfoods/fairway-app/services"
	"github.com/fairwayfoods/fairway-app/session"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func SetupRouter(db *gorm.DB, mailer *services.Mailer, monitor *services.OrderMonitor) *gin.Engine {
	r := gin.Default()

	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.NewRateLimiter(50, 1).RateLimit())

	authCtrl := controllers.NewAuthController(db, mailer)
	profileCtrl := controllers.NewProfileController(db, mailer)
	courseCtrl := controllers.NewCourseController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(db, mailer, monitor)
	userCtrl := controllers.NewUserController(db, mailer)
	marketingCtrl := controllers.NewMarketingController(mailer)

	api := r.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "healthy"})
	})

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	authPublic := api.Group("/auth")
	authPublic.Use(middlewares.NewStrictRateLimiter())
	{
		authPublic.POST("/register", authCtrl.Register)
		authPublic.POST("/login", authCtrl.Login)
		authPublic.POST("/forgot-password", authCtrl.ForgotPassword)
		authPublic.POST("/verify-reset-code", authCtrl.VerifyResetCode)
		authPublic.POST("/reset-password", authCtrl.ResetPassword)
	}
	api.GET("/auth/route", authCtrl.Route)

	api.GET("/courses", courseCtrl.GetCourses)
	api.GET("/menu", menuCtrl.GetMenu)
	api.POST("/orders", orderCtrl.CreateOrder)

	// WebSocket feed for kitchen/cashier dashboards.
	ws := api.Group("/kds")
	ws.Use(middlewares.WebSocketAuthMiddleware())
	{
		ws.GET("/ws", controllers.KDSHandler)
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	auth := api.Group("/")
	auth.Use(middlewares.AuthMiddleware())

	auth.GET("/auth/me", authCtrl.Me)
	auth.GET("/profile", profileCtrl.GetProfile)
	auth.PUT("/profile", profileCtrl.UpdateProfile)
	auth.PUT("/profile/password", profileCtrl.ChangePassword)

	auth.GET("/courses/my-courses", courseCtrl.GetMyCourses)
	auth.GET("/users/my-courses", courseCtrl.GetMyCourses)

	auth.POST("/orders/user", orderCtrl.CreateUserOrder)
	auth.GET("/orders/my-orders", orderCtrl.GetMyOrders)

	// Staff: full order visibility and lifecycle advancement.
	staff := auth.Group("/")
	staff.Use(middlewares.RequireCapability(session.CapViewAllOrders))
	{
		staff.GET("/orders", orderCtrl.GetAllOrders)
		staff.GET("/kitchen/display", orderCtrl.GetKitchenDisplay)
		staff.POST("/orders/acknowledge", orderCtrl.AcknowledgeAlerts)
		staff.PATCH("/orders/:order_id/status", orderCtrl.UpdateOrderStatus)
	}

	// Menu management: admins within their assigned courses, superusers
	// everywhere.
	menuAdmin := auth.Group("/")
	menuAdmin.Use(middlewares.RequireCapability(session.CapManageMenu))
	{
		menuAdmin.POST("/menu", menuCtrl.CreateMenuItem)
		menuAdmin.PUT("/menu/:item_id", menuCtrl.UpdateMenuItem)
		menuAdmin.DELETE("/menu/:item_id", menuCtrl.DeleteMenuItem)
	}

	// Order editing (admin and superuser).
	orderAdmin := auth.Group("/")
	orderAdmin.Use(middlewares.RequireCapability(session.CapEditOrders))
	{
		orderAdmin.PUT("/orders/:order_id", orderCtrl.UpdateOrder)
	}

	// ----------------------------------------------------------------
	//                      SUPERUSER ROUTES
	// ----------------------------------------------------------------
	super := auth.Group("/")
	super.Use(middlewares.RequireSuperuser())
	{
		super.GET("/courses/all", courseCtrl.GetAllCourses)
		super.POST("/courses", courseCtrl.CreateCourse)
		super.PUT("/courses/:course_id", courseCtrl.UpdateCourse)
		super.DELETE("/courses/:course_id", courseCtrl.DeleteCourse)

		super.GET("/users", userCtrl.GetAllUsers)
		super.POST("/users/create", userCtrl.CreateUser)
		super.PUT("/users/:user_id", userCtrl.UpdateUser)
		super.PUT("/users/:user_id/role", userCtrl.UpdateUserRole)
		super.PUT("/users/:user_id/courses", userCtrl.UpdateUserCourses)
		super.PUT("/users/:user_id/default-course", userCtrl.SetDefaultCourse)
		super.POST("/users/:user_id/approve", userCtrl.ApproveUser)
		super.POST("/users/:user_id/reject", userCtrl.RejectUser)
		super.DELETE("/users/:user_id", userCtrl.DeleteUser)

		super.DELETE("/orders/:order_id", orderCtrl.DeleteOrder)

		super.POST("/marketing/send", marketingCtrl.SendMarketing)
	}

	return r
}
