package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups the endpoint handlers the router needs.
type HandlerBundle struct {
	JWTSecret []byte

	CreateBooking   gin.HandlerFunc
	ListBookings    gin.HandlerFunc
	GetBooking      gin.HandlerFunc
	ConfirmBooking  gin.HandlerFunc
	RejectBooking   gin.HandlerFunc
	CancelBooking   gin.HandlerFunc
	StartBooking    gin.HandlerFunc
	CompleteBooking gin.HandlerFunc
	SpecialistStats gin.HandlerFunc
}

// NewHandlerBundle wires a BookingHandler into a bundle.
func NewHandlerBundle(h *BookingHandler, jwtSecret []byte) *HandlerBundle {
	return &HandlerBundle{
		JWTSecret:       jwtSecret,
		CreateBooking:   h.CreateBooking,
		ListBookings:    h.ListBookings,
		GetBooking:      h.GetBooking,
		ConfirmBooking:  h.ConfirmBooking,
		RejectBooking:   h.RejectBooking,
		CancelBooking:   h.CancelBooking,
		StartBooking:    h.StartBooking,
		CompleteBooking: h.CompleteBooking,
		SpecialistStats: h.SpecialistStats,
	}
}
