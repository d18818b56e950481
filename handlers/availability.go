package handlers

import (
	"net/http"

	"chatbooking/middleware"
	"chatbooking/models"
	"chatbooking/services/availability"
	"chatbooking/utils"

	"github.com/gin-gonic/gin"
)

// GetSlotsHandler returns the bookable slots for a service/provider pair.
// GET /api/availability/slots?serviceId=&providerId=&from=&to=&includeUnavailable=
func (hb *HandlerBundle) GetSlotsHandler(c *gin.Context) {
	q := availability.SlotQuery{
		TenantID:           middleware.GetTenantID(c),
		ServiceID:          c.Query("serviceId"),
		ProviderID:         c.Query("providerId"),
		FromDate:           c.Query("from"),
		ToDate:             c.Query("to"),
		IncludeUnavailable: c.Query("includeUnavailable") == "true",
	}
	if q.ServiceID == "" || q.ProviderID == "" || q.FromDate == "" || q.ToDate == "" {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", "serviceId, providerId, from and to are required")
		return
	}

	slots, err := hb.Availability.GenerateSlots(c.Request.Context(), q)
	if err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	if slots == nil {
		slots = []models.Slot{}
	}
	c.JSON(http.StatusOK, gin.H{"slots": slots})
}

// SetWeeklyHandler stores one weekday of a provider's recurring schedule.
// PUT /api/availability/weekly
func (hb *HandlerBundle) SetWeeklyHandler(c *gin.Context) {
	var w models.WeeklyAvailability
	if err := c.ShouldBindJSON(&w); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	w.TenantID = middleware.GetTenantID(c)

	if err := hb.Availability.UpdateWeekly(c.Request.Context(), &w); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, w)
}

// SetExceptionHandler stores a single-date schedule override.
// PUT /api/availability/exceptions
func (hb *HandlerBundle) SetExceptionHandler(c *gin.Context) {
	var e models.AvailabilityException
	if err := c.ShouldBindJSON(&e); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "invalid input", err.Error())
		return
	}
	e.TenantID = middleware.GetTenantID(c)

	if err := hb.Availability.UpdateException(c.Request.Context(), &e); err != nil {
		utils.JSONDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}
