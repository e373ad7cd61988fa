package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"bookly/database"
	"bookly/models"
	"bookly/services/booking"
	"bookly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// BookingHandler exposes the booking engine over HTTP. Catalog resolves
// which specialist, if any, the caller acts for.
type BookingHandler struct {
	Svc     booking.BookingService
	Catalog booking.CatalogLookup
}

func NewBookingHandler(svc booking.BookingService, catalog booking.CatalogLookup) *BookingHandler {
	return &BookingHandler{Svc: svc, Catalog: catalog}
}

var kindStatus = map[booking.ErrorKind]int{
	booking.KindValidation:    http.StatusBadRequest,
	booking.KindConflict:      http.StatusConflict,
	booking.KindAuthorization: http.StatusForbidden,
	booking.KindBusinessRule:  http.StatusUnprocessableEntity,
	booking.KindNotFound:      http.StatusNotFound,
}

// respondError writes err as a structured error response. Anything that is
// not a BookingError is an infrastructure failure and becomes a 500.
func respondError(c *gin.Context, err error) {
	if be, ok := booking.AsBookingError(err); ok {
		status, known := kindStatus[be.Kind]
		if !known {
			status = http.StatusBadRequest
		}
		utils.JSONError(c, status, be.Code, be.Message, "")
		return
	}
	utils.ContextLogger(c).Error("booking request failed", zap.Error(err))
	utils.JSONError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "Internal Server Error", "")
}

func currentUser(c *gin.Context) (string, bool) {
	userID := c.GetString("userID")
	if userID == "" {
		utils.JSONError(c, http.StatusUnauthorized, "UNAUTHORIZED", "Insufficient authorization", "")
		return "", false
	}
	return userID, true
}

// CreateBooking handles POST /api/bookings.
func (h *BookingHandler) CreateBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var in booking.CreateBookingInput
	if err := c.ShouldBindJSON(&in); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeInvalidInput, "invalid request body", err.Error())
		return
	}
	in.CustomerID = userID

	b, err := h.Svc.CreateBooking(c.Request.Context(), in)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, b)
}

// ListBookings handles GET /api/bookings?role=&status=&page=&limit=.
func (h *BookingHandler) ListBookings(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))

	result, err := h.Svc.GetUserBookings(c.Request.Context(), booking.UserBookingsQuery{
		UserID: userID,
		Role:   booking.Role(c.DefaultQuery("role", string(booking.RoleCustomer))),
		Status: models.BookingStatus(c.Query("status")),
		Page:   page,
		Limit:  limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// GetBooking handles GET /api/bookings/:id. Only the two parties see it.
func (h *BookingHandler) GetBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := h.Svc.GetBooking(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	if b.CustomerID != userID {
		owns, err := h.actsFor(c, userID, b.SpecialistID)
		if err != nil {
			respondError(c, err)
			return
		}
		if !owns {
			utils.JSONError(c, http.StatusNotFound, booking.CodeBookingNotFound, "booking not found", "")
			return
		}
	}
	c.JSON(http.StatusOK, b)
}

// actsFor reports whether userID is the account of specialistID.
func (h *BookingHandler) actsFor(c *gin.Context, userID, specialistID string) (bool, error) {
	sp, err := h.Catalog.GetSpecialistByUserID(c.Request.Context(), userID)
	if errors.Is(err, database.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return sp.ID == specialistID, nil
}

type reasonRequest struct {
	Reason string `json:"reason"`
}

// bindOptional decodes an optional JSON body; an empty body is fine.
func bindOptional(c *gin.Context, out any) bool {
	if c.Request.ContentLength == 0 {
		return true
	}
	if err := c.ShouldBindJSON(out); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeInvalidInput, "invalid request body", err.Error())
		return false
	}
	return true
}

// ConfirmBooking handles POST /api/bookings/:id/confirm.
func (h *BookingHandler) ConfirmBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := h.Svc.ConfirmBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// RejectBooking handles POST /api/bookings/:id/reject.
func (h *BookingHandler) RejectBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	b, err := h.Svc.RejectBooking(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// CancelBooking handles POST /api/bookings/:id/cancel.
func (h *BookingHandler) CancelBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req reasonRequest
	if !bindOptional(c, &req) {
		return
	}
	b, err := h.Svc.CancelBooking(c.Request.Context(), c.Param("id"), userID, req.Reason)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// StartBooking handles POST /api/bookings/:id/start.
func (h *BookingHandler) StartBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	b, err := h.Svc.StartBooking(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

type completeRequest struct {
	PaymentConfirmed bool   `json:"paymentConfirmed"`
	Notes            string `json:"notes"`
}

// CompleteBooking handles POST /api/bookings/:id/complete.
func (h *BookingHandler) CompleteBooking(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeInvalidInput, "invalid request body", err.Error())
		return
	}
	b, err := h.Svc.CompleteBookingWithPayment(c.Request.Context(), c.Param("id"), userID, req.PaymentConfirmed, req.Notes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, b)
}

// SpecialistStats handles GET /api/bookings/specialists/:id/stats?startDate=&endDate=.
// Dates are RFC 3339 or YYYY-MM-DD. Only the specialist may read its figures.
func (h *BookingHandler) SpecialistStats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	specialistID := c.Param("id")
	owns, err := h.actsFor(c, userID, specialistID)
	if err != nil {
		respondError(c, err)
		return
	}
	if !owns {
		utils.JSONError(c, http.StatusForbidden, booking.CodeSpecialistNotAuthorized, "only the specialist can view these statistics", "")
		return
	}

	from, err := parseDate(c.Query("startDate"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeInvalidInput, "invalid startDate", err.Error())
		return
	}
	to, err := parseDate(c.Query("endDate"))
	if err != nil {
		utils.JSONError(c, http.StatusBadRequest, booking.CodeInvalidInput, "invalid endDate", err.Error())
		return
	}
	stats, err := h.Svc.GetSpecialistBookingStats(c.Request.Context(), specialistID, from, to)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

func parseDate(s string) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, errors.New("expected RFC 3339 or YYYY-MM-DD")
	}
	return &t, nil
}
