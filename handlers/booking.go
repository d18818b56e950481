package handlers

import (
	"context"
	"net/http"
	"time"

	"chatbooking/middleware"
	"chatbooking/models"
	"chatbooking/services/booking"
	"chatbooking/utils"

	"github.com/gin-gonic/gin"
)

// CreateBookingHandler reserves a slot directly, without the chat flow.
// POST /api/bookings
func (hb *HandlerBundle) CreateBookingHandler(c *gin.Context) {
	var input struct {
		ServiceID  string              `json:"serviceId" binding:"required"`
		ProviderID string              `json:"providerId" binding:"required"`
		Start      time.Time           `json:"start" binding:"required"`
		Customer   models.CustomerInfo `json:"customer" binding:"required"`
		Notes      string              `json:"notes"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	if input.Customer.Name == "" || input.Customer.Email == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "customer name and email are required")
		return
	}

	b, err := hb.Bookings.Create(c.Request.Context(), booking.CreateBookingInput{
		TenantID:   middleware.GetTenantID(c),
		ServiceID:  input.ServiceID,
		ProviderID: input.ProviderID,
		Start:      input.Start,
		Customer:   input.Customer,
		Notes:      input.Notes,
	})
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// GetBookingHandler returns one booking.
// GET /api/bookings/:id
func (hb *HandlerBundle) GetBookingHandler(c *gin.Context) {
	b, err := hb.Bookings.GetBooking(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// ListBookingsHandler lists bookings by provider window, by customer email,
// or by the conversation that created them.
// GET /api/bookings?providerId=&from=&to=  |  ?email=  |  ?conversationId=
func (hb *HandlerBundle) ListBookingsHandler(c *gin.Context) {
	tenantID := middleware.GetTenantID(c)

	if conversationID := c.Query("conversationId"); conversationID != "" {
		b, err := hb.Bookings.GetForConversation(c.Request.Context(), tenantID, conversationID)
		if err != nil {
			utils.JSONDomainError(c, err)
			return
		}
		bookings := []models.Booking{}
		if b != nil {
			bookings = append(bookings, *b)
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
		return
	}

	if email := c.Query("email"); email != "" {
		bookings, err := hb.Bookings.ListForCustomer(c.Request.Context(), tenantID, email)
		if err != nil {
			utils.JSONDomainError(c, err)
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": bookings})
		return
	}

	providerID := c.Query("providerId")
	from, errFrom := time.Parse(time.RFC3339, c.Query("from"))
	to, errTo := time.Parse(time.RFC3339, c.Query("to"))
	if providerID == "" || errFrom != nil || errTo != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input",
			"either conversationId, email, or providerId with RFC3339 from and to, is required")
		return
	}

	bookings, err := hb.Bookings.ListForProvider(c.Request.Context(), tenantID, providerID, from, to)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// ConfirmBookingHandler moves a PENDING booking to CONFIRMED.
// POST /api/bookings/:id/confirm
func (hb *HandlerBundle) ConfirmBookingHandler(c *gin.Context) {
	hb.transitionBooking(c, hb.Bookings.Confirm)
}

// CancelBookingHandler cancels a PENDING or CONFIRMED booking.
// POST /api/bookings/:id/cancel
func (hb *HandlerBundle) CancelBookingHandler(c *gin.Context) {
	hb.transitionBooking(c, hb.Bookings.Cancel)
}

// NoShowBookingHandler marks a CONFIRMED booking as NO_SHOW after its start.
// POST /api/bookings/:id/no-show
func (hb *HandlerBundle) NoShowBookingHandler(c *gin.Context) {
	hb.transitionBooking(c, hb.Bookings.MarkNoShow)
}

func (hb *HandlerBundle) transitionBooking(c *gin.Context, op func(ctx context.Context, tenantID, bookingID string) (*models.Booking, error)) {
	b, err := op(c.Request.Context(), middleware.GetTenantID(c), c.Param("id"))
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}
