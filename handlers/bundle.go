package handlers

import (
	catalogRepo "chatbooking/database/repository/catalog"
	"chatbooking/services/availability"
	"chatbooking/services/booking"
	"chatbooking/services/chat"
)

// HandlerBundle aggregates the services the HTTP handlers depend on.
type HandlerBundle struct {
	Availability availability.AvailabilityService
	Bookings     booking.BookingService
	Chat         chat.ChatAgentService
	CatalogRepo  catalogRepo.CatalogRepository
}
