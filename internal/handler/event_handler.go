package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"go-event-booking/internal/model"
	"go-event-booking/internal/service"
	"go-event-booking/pkg/apperrors"
	"go-event-booking/pkg/logger"
)

type EventHandler struct {
	service service.EventService
}

func NewEventHandler(service service.EventService) *EventHandler {
	return &EventHandler{service: service}
}

func (h *EventHandler) RegisterRoutes(r *gin.Engine) {
	router := r.Group("/api/v1")
	{
		router.GET("events", h.List)
		router.GET("events/:id", h.Get)
		router.POST("events", h.Create)
		router.PUT("events/:id", h.Update)
		router.DELETE("events/:id", h.Delete)

		router.POST("events/:id/sessions", h.AddSession)
		router.GET("events/:id/sessions", h.ListAvailableSessions)
		router.DELETE("events/:id/sessions/:sessionID", h.RemoveSession)

		router.GET("sessions/:id/price", h.GetSessionPrice)
	}
}

type CreateEventRequest struct {
	Name        string   `json:"name" binding:"required"`
	Description string   `json:"description"`
	Venue       string   `json:"venue" binding:"required"`
	Categories  []string `json:"categories" binding:"required,min=1"`
}

type UpdateEventRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Venue       *string  `json:"venue"`
	Categories  []string `json:"categories"`
}

type CreateSessionRequest struct {
	StartTime time.Time       `json:"start_time" binding:"required"`
	EndTime   time.Time       `json:"end_time" binding:"required"`
	Capacity  int             `json:"capacity" binding:"required,min=1"`
	BasePrice decimal.Decimal `json:"base_price" binding:"required"`
}

func (h *EventHandler) List(c *gin.Context) {
	var (
		events []*model.Event
		err    error
	)
	if category := c.Query("category"); category != "" {
		events, err = h.service.GetEventsByCategory(c, category)
	} else {
		events, err = h.service.ListEvents(c)
	}
	if err != nil {
		h.handleError(c, err, "List")
		return
	}
	c.JSON(http.StatusOK, events)
}

func (h *EventHandler) Get(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	event, err := h.service.GetEvent(c, eventID)
	if err != nil {
		h.handleError(c, err, "Get")
		return
	}
	c.JSON(http.StatusOK, event)
}

func (h *EventHandler) Create(c *gin.Context) {
	var req CreateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	created, err := h.service.CreateEvent(c, req.Name, req.Description, req.Venue, req.Categories)
	if err != nil {
		h.handleError(c, err, "Create")
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *EventHandler) Update(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req UpdateEventRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	params := model.UpdateEventParams{
		Name:        req.Name,
		Description: req.Description,
		Venue:       req.Venue,
		Categories:  req.Categories,
	}
	updated, err := h.service.UpdateEvent(c, eventID, params)
	if err != nil {
		h.handleError(c, err, "Update")
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *EventHandler) Delete(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	if err := h.service.DeleteEvent(c, eventID); err != nil {
		h.handleError(c, err, "Delete")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) AddSession(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	var req CreateSessionRequest
	if err := BindJson(c, &req); err != nil {
		return
	}
	session, err := h.service.AddSession(c, eventID, req.StartTime, req.EndTime, req.Capacity, req.BasePrice)
	if err != nil {
		h.handleError(c, err, "AddSession")
		return
	}
	c.JSON(http.StatusCreated, session.ToResponse())
}

func (h *EventHandler) ListAvailableSessions(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sessions, err := h.service.GetAvailableSessions(c, eventID)
	if err != nil {
		h.handleError(c, err, "ListAvailableSessions")
		return
	}
	responses := make([]model.SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		responses = append(responses, s.ToResponse())
	}
	c.JSON(http.StatusOK, responses)
}

func (h *EventHandler) RemoveSession(c *gin.Context) {
	eventID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	sessionID, ok := parseUUIDParam(c, "sessionID")
	if !ok {
		return
	}
	if err := h.service.RemoveSession(c, eventID, sessionID); err != nil {
		h.handleError(c, err, "RemoveSession")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *EventHandler) GetSessionPrice(c *gin.Context) {
	sessionID, ok := parseUUIDParam(c, "id")
	if !ok {
		return
	}
	quote, err := h.service.GetSessionPrice(c, sessionID)
	if err != nil {
		h.handleError(c, err, "GetSessionPrice")
		return
	}
	c.JSON(http.StatusOK, quote)
}

func (h *EventHandler) handleError(c *gin.Context, err error, operation string) {
	log := logger.WithComponent("handler").With(zap.String("operation", operation), zap.Error(err))
	switch {
	case errors.Is(err, apperrors.ErrEventNotFound):
		log.Warn("Event not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Event not found"})
	case errors.Is(err, apperrors.ErrSessionNotFound):
		log.Warn("Session not found")
		c.JSON(http.StatusNotFound, gin.H{"error": "Session not found"})
	case errors.Is(err, apperrors.ErrSessionOverlap):
		log.Warn("Session overlap")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session overlaps with existing session"})
	case errors.Is(err, apperrors.ErrSessionHasBookings):
		log.Warn("Session has bookings")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Session has existing bookings"})
	case errors.Is(err, apperrors.ErrEventHasBookings):
		log.Warn("Event has bookings")
		c.JSON(http.StatusBadRequest, gin.H{"error": "Event has existing bookings"})
	case errors.Is(err, apperrors.ErrInvalidInput):
		log.Warn("Invalid input")
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Error("Unexpected error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
