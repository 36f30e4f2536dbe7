package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/yeremiapane/scan-order/controllers"
	"github.com/yeremiapane/scan-order/kds"
	"github.com/yeremiapane/scan-order/middlewares"
	"github.com/yeremiapane/scan-order/models"
	"github.com/yeremiapane/scan-order/services"
	"github.com/yeremiapane/scan-order/utils"
	"gorm.io/gorm"
)

const Version = "2.0.0"

// Options carries the process-wide collaborators the routes are built on.
type Options struct {
	DB             *gorm.DB
	JWT            *utils.JWTManager
	Hub            *kds.Hub
	Chat           *services.ChatService
	AllowedOrigins []string
	AdminAPIKey    string

	RateLimitRPS           float64
	RateLimitBurst         int
	AuthRateLimitPerMinute int
}

func SetupRouter(opts Options) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.LoggerMiddleware())
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddlewares(opts.AllowedOrigins))

	db := opts.DB
	var notifier services.Notifier
	if opts.Hub != nil {
		notifier = opts.Hub
	}

	sessionSvc := services.NewSessionService(db)
	orderSvc := services.NewOrderService(db, notifier)
	billSvc := services.NewBillService(db, notifier)
	paymentSvc := services.NewPaymentService(db, notifier)

	authCtrl := controllers.NewAuthController(services.NewAuthService(db, opts.JWT))
	statsCtrl := controllers.NewStatsController(services.NewStatsService(db))
	branchCtrl := controllers.NewBranchController(db)
	tableCtrl := controllers.NewTableController(db, notifier)
	categoryCtrl := controllers.NewMenuCategoryController(db)
	menuCtrl := controllers.NewMenuController(db)
	orderCtrl := controllers.NewOrderController(orderSvc)
	guestCtrl := controllers.NewGuestController(db, sessionSvc, orderSvc, billSvc)
	paymentCtrl := controllers.NewPaymentController(paymentSvc)
	customerCtrl := controllers.NewCustomerController(db)
	adminCtrl := controllers.NewAdminController(services.NewAdminService(db))

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"message": "Scan & Order API is running",
			"version": Version,
		})
	})

	api := r.Group("/api")
	if opts.RateLimitRPS > 0 {
		api.Use(middlewares.NewRateLimiter(opts.RateLimitRPS, opts.RateLimitBurst).RateLimit())
	}

	// ----------------------------------------------------------------
	//                      PUBLIC ROUTES
	// ----------------------------------------------------------------
	strict := func(c *gin.Context) { c.Next() }
	if opts.AuthRateLimitPerMinute > 0 {
		strict = middlewares.NewStrictRateLimiter(opts.AuthRateLimitPerMinute).RateLimit()
	}
	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", strict, authCtrl.Register)
		authGroup.POST("/login", strict, authCtrl.Login)
		authGroup.GET("/me", middlewares.AuthMiddleware(opts.JWT, db), authCtrl.Me)
	}

	api.GET("/public/branches", guestCtrl.GetBranches)

	guest := api.Group("/guest")
	{
		guest.GET("/branches", guestCtrl.GetBranches)
		guest.GET("/menu-items", guestCtrl.GetMenuItems)
		guest.GET("/tables/:table_id", guestCtrl.GetTable)
		guest.POST("/sessions", guestCtrl.CreateSession)
		guest.POST("/orders", guestCtrl.CreateOrder)
		guest.GET("/orders/:order_id/status", guestCtrl.GetOrderStatus)
		guest.GET("/orders/:order_id/details", guestCtrl.GetOrderDetails)
		guest.GET("/sessions/:session_id/details", guestCtrl.GetSessionDetails)
		guest.PUT("/sessions/:session_id/bill/status",
			middlewares.PaymentSecurityHeaders(),
			middlewares.LogPaymentRequest(),
			guestCtrl.UpdateBillStatus)
	}

	if opts.Chat != nil {
		chatCtrl := controllers.NewChatController(opts.Chat)
		chat := api.Group("/chat")
		{
			chat.POST("", chatCtrl.PostChat)
			chat.DELETE("/history/:branch_id", chatCtrl.ClearHistory)
			chat.GET("/branches/:branch_id/info", chatCtrl.GetBranchInfo)
			chat.GET("/health", chatCtrl.Health)
		}
		aiConfig := api.Group("/ai-config", middlewares.AdminKey(opts.AdminAPIKey))
		{
			aiConfig.GET("", chatCtrl.GetAIConfig)
			aiConfig.PUT("", chatCtrl.UpdateAIConfig)
		}
	}

	// ----------------------------------------------------------------
	//                      AUTHENTICATED ROUTES
	// ----------------------------------------------------------------
	authed := api.Group("")
	authed.Use(middlewares.AuthMiddleware(opts.JWT, db))

	manage := authed.Group("", middlewares.RequireRoles(models.RoleOwner, models.RoleStaff))
	{
		manage.GET("/stats/:tenant_id", statsCtrl.GetTenantStats)
		manage.GET("/tenants/:tenant_id/cashback-settings", statsCtrl.GetCashbackSettings)
		manage.PUT("/tenants/:tenant_id/cashback-settings", statsCtrl.UpdateCashbackSettings)

		manage.POST("/branches", branchCtrl.CreateBranch)
		manage.GET("/branches", branchCtrl.GetBranches)
		manage.GET("/branches/:branch_id", branchCtrl.GetBranch)
		manage.PUT("/branches/:branch_id", branchCtrl.UpdateBranch)
		manage.DELETE("/branches/:branch_id", branchCtrl.DeleteBranch)

		manage.POST("/branches/:branch_id/tables", tableCtrl.CreateTable)
		manage.GET("/branches/:branch_id/tables", tableCtrl.GetTables)
		manage.GET("/tables/:table_id", tableCtrl.GetTable)
		manage.PUT("/tables/:table_id", tableCtrl.UpdateTable)
		manage.DELETE("/tables/:table_id", tableCtrl.DeleteTable)
		manage.GET("/tables/:table_id/qr-code", tableCtrl.GetQRCode)

		manage.POST("/categories", categoryCtrl.CreateCategory)
		manage.GET("/categories", categoryCtrl.GetCategories)
		manage.GET("/categories/:category_id/menu-items", menuCtrl.GetMenuItemsByCategory)

		manage.POST("/menu-items", menuCtrl.CreateMenuItem)
		manage.GET("/menu-items/:menu_item_id", menuCtrl.GetMenuItem)
		manage.PUT("/menu-items/:menu_item_id", menuCtrl.UpdateMenuItem)
		manage.DELETE("/menu-items/:menu_item_id", menuCtrl.DeleteMenuItem)
		manage.GET("/branches/:branch_id/menu-items", menuCtrl.GetMenuItemsByBranch)

		manage.POST("/orders", orderCtrl.CreateOrder)
		manage.POST("/orders/generate-random", orderCtrl.GenerateRandomOrder)
	}

	kitchen := authed.Group("/orders", middlewares.RequireRoles(models.RoleOwner, models.RoleStaff, models.RoleChef))
	{
		kitchen.GET("", orderCtrl.GetOrders)
		kitchen.GET("/:order_id", orderCtrl.GetOrder)
		kitchen.PUT("/:order_id/status", orderCtrl.UpdateOrderStatus)
	}

	staff := authed.Group("/staff",
		middlewares.RequireRoles(models.RoleOwner, models.RoleStaff),
		middlewares.PaymentSecurityHeaders(),
		middlewares.LogPaymentRequest(),
	)
	{
		staff.GET("/cash-pending", paymentCtrl.GetCashPending)
		staff.PUT("/cash-pending/:bill_id/confirm", paymentCtrl.ConfirmCash)
		staff.GET("/qr-paid", paymentCtrl.GetQrPaid)
		staff.PUT("/qr-paid/:bill_id/verify", paymentCtrl.VerifyQr)
	}

	authed.GET("/customers/me/points", middlewares.RequireRoles(models.RoleCustomer), customerCtrl.GetMyPoints)

	// ----------------------------------------------------------------
	//                      ADMIN ROUTES
	// ----------------------------------------------------------------
	admin := api.Group("/admin", middlewares.AdminKey(opts.AdminAPIKey))
	{
		admin.GET("/dashboard", adminCtrl.GetDashboard)
		admin.GET("/stats", adminCtrl.GetDashboard)
		admin.GET("/restaurants", adminCtrl.GetRestaurants)
		admin.GET("/revenue", adminCtrl.GetRevenue)
		admin.GET("/users", adminCtrl.GetUsers)
		admin.PATCH("/users/:user_id/status", adminCtrl.UpdateUserStatus)
		admin.PATCH("/users/:user_id", adminCtrl.UpdateUser)
		admin.DELETE("/users/:user_id", adminCtrl.DeleteUser)
		admin.PATCH("/restaurants/:tenant_id/status", adminCtrl.UpdateRestaurantStatus)
		admin.PATCH("/restaurants/:tenant_id", adminCtrl.UpdateRestaurant)
		admin.DELETE("/restaurants/:tenant_id", adminCtrl.DeleteRestaurant)
	}

	// WebSocket endpoint, authenticated by ?token=
	if opts.Hub != nil {
		kdsCtrl := controllers.NewKDSController(opts.Hub, opts.AllowedOrigins)
		api.GET("/kds/ws", middlewares.WebSocketAuthMiddleware(opts.JWT, db), kdsCtrl.Handle)
	}

	return r
}
