package routes

import (
	"net/http"
	"time"

	"medibook/config"
	"medibook/handlers"
	"medibook/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterBookingRoutes registers all endpoints for the booking flow.
func RegisterBookingRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	booking := r.Group("/api/booking")
	{
		booking.GET("/slots", h.GetAvailableSlots)
		booking.POST("/reservations", h.CreateReservation)
		booking.GET("/reservations/:id", h.GetReservation)
		booking.POST("/reservations/:id/confirm", h.ConfirmReservation)
		booking.POST("/reservations/:id/resend", h.ResendCode)
		booking.POST("/reservations/:id/cancel", h.CancelReservation)
		booking.PATCH("/reservations/:id/status", h.UpdateReservationStatus)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine) {
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "Hi, I'm Medibook"})
	})
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, h *handlers.BookingHandler) {
	r.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"*"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(middleware.RateLimitMiddleware(config.AppConfig.MaxRequestsPerMin))

	RegisterHealthRoute(r)
	RegisterBookingRoutes(r, h)
}
