package routes

import (
	"net/http"
	"time"

	"chatbooking/handlers"
	"chatbooking/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterAvailabilityRoutes sets up slot queries and schedule management.
func RegisterAvailabilityRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/availability")
	{
		api.Use(middleware.TenantMiddleware())
		api.GET("/slots", hb.GetSlotsHandler)
		api.PUT("/weekly", hb.SetWeeklyHandler)
		api.PUT("/exceptions", hb.SetExceptionHandler)
	}
}

// RegisterBookingRoutes sets up the booking lifecycle endpoints.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/bookings")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("", hb.CreateBookingHandler)
		api.GET("", hb.ListBookingsHandler)
		api.GET("/:id", hb.GetBookingHandler)
		api.POST("/:id/confirm", hb.ConfirmBookingHandler)
		api.POST("/:id/cancel", hb.CancelBookingHandler)
		api.POST("/:id/no-show", hb.NoShowBookingHandler)
	}
}

// RegisterChatRoutes sets up the conversational booking endpoints.
func RegisterChatRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/chat")
	{
		api.Use(middleware.TenantMiddleware())
		api.POST("/conversations", hb.StartConversationHandler)
		api.GET("/conversations/:id", hb.GetConversationHandler)
		api.POST("/conversations/:id/messages", hb.SendMessageHandler)
	}
}

// RegisterCatalogRoutes sets up read-only catalog endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/catalog")
	{
		api.Use(middleware.TenantMiddleware())
		api.GET("/services", hb.ListServicesHandler)
		api.GET("/providers", hb.ListProvidersHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "X-Tenant-ID"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	RegisterHealthRoute(r)
	RegisterAvailabilityRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterChatRoutes(r, hb)
	RegisterCatalogRoutes(r, hb)
}
