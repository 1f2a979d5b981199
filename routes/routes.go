package routes

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"salon-server/cart"
	"salon-server/media"
	"salon-server/middleware"
	"salon-server/services"
	"salon-server/websocket"
)

// API holds everything the HTTP handlers need
type API struct {
	DB       *gorm.DB
	Workflow *services.Workflow
	Views    *services.Views
	Checkout *services.Checkout
	Auth     *services.AuthService
	Carts    *cart.Store
	Hub      *websocket.Hub
	Uploader media.Uploader
}

// Register mounts the storefront API under /api and the admin console API
// under /api/admin.
func (a *API) Register(router *gin.Engine) {
	router.GET("/health", a.health)

	api := router.Group("/api")
	{
		RegisterCatalogRoutes(api, a)
		RegisterBookingRoutes(api, a)
		RegisterCartRoutes(api, a)
	}

	admin := api.Group("/admin")
	{
		RegisterAdminAuthRoutes(admin.Group("/auth"), a)
		admin.GET("/ws", middleware.WebSocketAuthMiddleware(a.DB), a.serveWebSocket)

		protected := admin.Group("")
		protected.Use(middleware.AdminAuthMiddleware(a.DB))
		{
			RegisterAdminRoutes(protected, a)
			RegisterDashboardRoutes(protected, a)
			RegisterRealtimeRoutes(protected, a)
		}
	}
}

func (a *API) health(c *gin.Context) {
	observers, clients, dropped := a.Hub.Stats()
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now(),
		"realtime": gin.H{
			"observers": observers,
			"clients":   clients,
			"dropped":   dropped,
		},
	})
}
