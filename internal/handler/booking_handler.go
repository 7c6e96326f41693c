package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"go-event-booking/internal/model"
	"go-event-booking/internal/service"
	"go-event-booking/pkg/apperrors"
	"go-event-booking/pkg/logger"
)

type BookingHandler struct {
	service service.BookingService
}

func NewBookingHandler(service service.BookingService) *BookingHandler {
	return &BookingHandler{service: service}
}

func (h *BookingHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.POST("bookings", h.Create)
		router.GET("bookings/:id", h.Get)
		router.GET("bookings/:id/status", h.GetStatus)
		router.POST("bookings/:id/confirm", h.Confirm)
		router.POST("bookings/:id/cancel", h.Cancel)

		router.GET("users/:id/bookings", h.ListUserBookings)
	}
}

func (h *BookingHandler) Create(c *gin.Context) {
	var req model.CreateBookingRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	booking, err := h.service.CreateBooking(c, req.UserID, req.SessionID, req.Seats)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, booking.ToResponse())
}

func (h *BookingHandler) Get(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.service.GetBooking(c, bookingID)
	if err != nil {
		h.handleError(c, err, "Get")
		return
	}
	c.JSON(http.StatusOK, booking.ToResponse())
}

func (h *BookingHandler) GetStatus(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	status, err := h.service.GetBookingStatus(c, bookingID)
	if err != nil {
		h.handleError(c, err, "GetStatus")
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": bookingID, "status": status})
}

func (h *BookingHandler) Confirm(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.service.ConfirmBooking(c, bookingID)
	if err != nil {
		h.handleError(c, err, "Confirm")
		return
	}
	c.JSON(http.StatusOK, booking.ToResponse())
}

func (h *BookingHandler) Cancel(c *gin.Context) {
	bookingID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	booking, err := h.service.CancelBooking(c, bookingID)
	if err != nil {
		h.handleError(c, err, "Cancel")
		return
	}
	c.JSON(http.StatusOK, booking.ToResponse())
}

func (h *BookingHandler) ListUserBookings(c *gin.Context) {
	userID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	bookings, err := h.service.ListUserBookings(c, userID)
	if err != nil {
		h.handleError(c, err, "ListUserBookings")
		return
	}
	responses := make([]model.BookingResponse, 0, len(bookings))
	for _, b := range bookings {
		responses = append(responses, b.ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

func (h *BookingHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrBookingNotFound):
		log.Warn("Booking not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Booking not found"})
	case errors.Is(err, apperrors.ErrSessionNotFound):
		log.Warn("Session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, apperrors.ErrInsufficientSeats):
		log.Warn("Insufficient seats")
		c.JSON(http.StatusConflict, gin.H{"error": "Not enough seats available"})
	case errors.Is(err, apperrors.ErrBookingNotCancellable):
		log.Warn("Booking not cancellable")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only confirmed bookings can be cancelled"})
	case errors.Is(err, apperrors.ErrInvalidStatusTransition):
		log.Warn("Invalid status transition")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
