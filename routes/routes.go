package routes

import (
	"net/http"

	"github.com/abdout/souq/configs"
	"github.com/abdout/souq/controllers"
	"github.com/abdout/souq/entity"
	"github.com/abdout/souq/middlewares"
	"github.com/abdout/souq/pkg/access"
	"github.com/abdout/souq/pkg/blob"
	"github.com/abdout/souq/pkg/gateway"
	"github.com/abdout/souq/pkg/notify"
	"github.com/abdout/souq/repository"
	"github.com/abdout/souq/services"
	"github.com/abdout/souq/store"
	"github.com/abdout/souq/ws"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Deps = ของที่ต่อกับโลกภายนอก (สร้างใน cmd/serve, test ใส่ของปลอมได้)
type Deps struct {
	DB       *gorm.DB
	Cfg      *configs.Config
	Log      *zap.Logger
	KV       store.KV
	Gateway  gateway.Gateway
	Notifier notify.Notifier
	Blob     blob.Store
	Hub      *ws.OrderHub // nil = ไม่เปิด websocket
}

func RegisterRoutes(r *gin.Engine, d Deps) {
	r.Use(middlewares.CORSMiddleware())
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	db, cfg, log := d.DB, d.Cfg, d.Log
	policy := access.NewTenantPolicy()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tenantRepo := repository.NewTenantRepository(db)
	itemRepo := repository.NewItemRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	inventoryRepo := repository.NewInventoryRepository(db)
	reviewRepo := repository.NewReviewRepository(db)

	// Services
	authSvc := services.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TTL)
	tenantSvc := services.NewTenantService(db, tenantRepo, userRepo, policy, d.Blob, log)
	onboardingSvc := services.NewOnboardingService(db, tenantRepo, userRepo, d.Gateway, cfg, log)
	inventorySvc := services.NewInventoryService(db, inventoryRepo, itemRepo, tenantRepo, policy, log)
	itemSvc := services.NewItemService(itemRepo, tenantRepo, categoryRepo, reviewRepo, inventorySvc, policy, d.Blob, log)
	reportSvc := services.NewReportService(itemRepo, tenantRepo, policy, log)
	orderSvc := services.NewOrderService(db, orderRepo, itemRepo, tenantRepo, userRepo, inventoryRepo, policy, d.Notifier, log)
	deliverySvc := services.NewDeliveryService(tenantRepo)
	checkoutSvc := services.NewCheckoutService(db, itemRepo, tenantRepo, userRepo, orderRepo, d.Gateway, cfg, log)
	reviewSvc := services.NewReviewService(reviewRepo, itemRepo, orderRepo, log)
	cartSvc := services.NewCartService(d.KV, itemRepo, tenantRepo, cfg.Cart.TTL, log)

	// Controllers
	authCtrl := controllers.NewAuthController(authSvc)
	tenantCtrl := controllers.NewTenantController(tenantSvc)
	onboardingCtrl := controllers.NewOnboardingController(onboardingSvc, authSvc)
	itemCtrl := controllers.NewItemController(itemSvc)
	inventoryCtrl := controllers.NewInventoryController(inventorySvc, reportSvc)
	orderCtrl := controllers.NewOrderController(orderSvc, deliverySvc)
	checkoutCtrl := controllers.NewCheckoutController(checkoutSvc, authSvc)
	reviewCtrl := controllers.NewReviewController(reviewSvc)
	cartCtrl := controllers.NewCartController(cartSvc)

	secret := cfg.JWT.Secret
	auth := middlewares.AuthMiddleware(secret)
	optional := middlewares.OptionalAuth(secret)

	// Auth (public)
	a := r.Group("/auth")
	{
		a.POST("/register", authCtrl.Register)
		a.POST("/login", authCtrl.Login)
		a.GET("/me", auth, authCtrl.Me)
	}

	// Storefront (public, token ถ้ามีจะเห็นของร้านตัวเองที่ยังไม่เปิด)
	pub := r.Group("/", optional)
	{
		pub.GET("/tenants", tenantCtrl.List)
		pub.GET("/tenants/nearby", tenantCtrl.Nearby)
		pub.GET("/tenants/:slug", tenantCtrl.Get)
		pub.GET("/items", itemCtrl.List)
		pub.GET("/items/:id", itemCtrl.Detail)
		pub.GET("/items/:id/reviews", reviewCtrl.List)
		pub.GET("/categories", itemCtrl.Categories)
		pub.GET("/onboarding/requirements/:businessType", onboardingCtrl.Requirements)
		pub.POST("/orders/quote", orderCtrl.Quote)
	}

	// Customer (ต้อง login)
	u := r.Group("/", auth)
	{
		u.POST("/orders", orderCtrl.Create)
		u.GET("/orders", orderCtrl.ListForMe)
		u.GET("/orders/:id", orderCtrl.Detail)
		u.GET("/orders/:id/timeline", orderCtrl.Timeline)
		u.GET("/orders/:id/history", orderCtrl.History)
		u.PATCH("/orders/:id/status", orderCtrl.UpdateStatus)

		u.POST("/items/:id/reviews", reviewCtrl.Submit)

		u.GET("/library", orderCtrl.Library)
		u.GET("/library/:itemId", orderCtrl.LibraryItem)

		u.POST("/checkout/purchase", checkoutCtrl.Purchase)
		u.POST("/checkout/verify", checkoutCtrl.Verify)
		u.POST("/checkout/items", checkoutCtrl.Items)

		u.POST("/onboarding/start", onboardingCtrl.Start)
		u.GET("/onboarding/status", onboardingCtrl.Status)
		u.POST("/onboarding/complete", onboardingCtrl.Complete)
	}

	// Cart (แยกต่อร้าน)
	cart := r.Group("/cart", auth)
	{
		cart.DELETE("", cartCtrl.ClearAll)
		cart.GET("/:slug", cartCtrl.Get)
		cart.DELETE("/:slug", cartCtrl.Clear)
		cart.POST("/:slug/items", cartCtrl.AddItem)
		cart.PATCH("/:slug/items/:itemId", cartCtrl.UpdateItem)
		cart.DELETE("/:slug/items/:itemId", cartCtrl.RemoveItem)
		cart.PUT("/:slug/address", cartCtrl.SetAddress)
		cart.PUT("/:slug/order-type", cartCtrl.SetOrderType)
	}

	// Merchant (สมาชิกร้าน หรือ superadmin กับ ?tenant=<slug>)
	m := r.Group("/merchant", auth)
	{
		m.PATCH("/tenant", tenantCtrl.UpdateSettings)
		m.PATCH("/tenant/active", tenantCtrl.SetActive)
		m.GET("/tenant/documents", tenantCtrl.Documents)
		m.POST("/tenant/documents", tenantCtrl.UploadDocument)

		m.GET("/items", itemCtrl.MerchantList)
		m.POST("/items", itemCtrl.Create)
		m.PATCH("/items/:id", itemCtrl.Update)
		m.PATCH("/items/:id/availability", itemCtrl.ToggleAvailability)
		m.PATCH("/items/:id/archive", itemCtrl.Archive)
		m.POST("/items/:id/image", itemCtrl.UploadImage)
		m.POST("/categories", itemCtrl.CreateCategory)

		m.GET("/inventory/low-stock", inventoryCtrl.LowStock)
		m.GET("/inventory/summary", inventoryCtrl.Summary)
		m.GET("/inventory/export", inventoryCtrl.Export)
		m.POST("/inventory/bulk", inventoryCtrl.BulkUpdate)
		m.PATCH("/inventory/:itemId", inventoryCtrl.SetQuantity)
		m.GET("/inventory/:itemId/history", inventoryCtrl.History)

		m.GET("/orders", orderCtrl.ListForTenant)
	}

	// Admin (superadmin only)
	admin := r.Group("/admin", middlewares.AuthMiddleware(secret, entity.RoleSuperAdmin))
	{
		admin.DELETE("/tenants/:id", tenantCtrl.Delete)
	}

	// Realtime order tracking
	if d.Hub != nil {
		r.GET("/ws/orders/:id", middlewares.WSAuthMiddleware(secret), d.Hub.Handler(orderSvc))
	}
}
