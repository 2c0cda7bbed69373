package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ticketrush/ticketrush/internal/event/domain"
	"github.com/ticketrush/ticketrush/internal/event/dto"
	"github.com/ticketrush/ticketrush/internal/event/service"
	"github.com/ticketrush/ticketrush/pkg/response"
)

// EventHandler handles event-related HTTP requests
type EventHandler struct {
	eventService service.EventService
}

// NewEventHandler creates a new EventHandler
func NewEventHandler(eventService service.EventService) *EventHandler {
	return &EventHandler{
		eventService: eventService,
	}
}

// Create handles POST /events - creates a draft event
func (h *EventHandler) Create(c *gin.Context) {
	var req dto.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.Create(c.Request.Context(), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Created(c, dto.FromEvent(event))
}

// Get handles GET /events/:id
func (h *EventHandler) Get(c *gin.Context) {
	event, err := h.eventService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// List handles GET /events
func (h *EventHandler) List(c *gin.Context) {
	var filter dto.EventListFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		response.BadRequest(c, "Invalid query parameters")
		return
	}

	events, total, err := h.eventService.List(c.Request.Context(), &filter)
	if err != nil {
		h.writeError(c, err)
		return
	}

	items := make([]*dto.EventResponse, len(events))
	for i, event := range events {
		items[i] = dto.FromEvent(event)
	}

	c.JSON(200, response.Response{
		Success: true,
		Data:    items,
		Meta:    gin.H{"total": total, "limit": filter.Limit, "offset": filter.Offset},
	})
}

// Update handles PUT /events/:id - administrative metadata changes
func (h *EventHandler) Update(c *gin.Context) {
	var req dto.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	event, err := h.eventService.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// Publish handles POST /events/:id/publish
func (h *EventHandler) Publish(c *gin.Context) {
	event, err := h.eventService.Publish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// Cancel handles POST /events/:id/cancel
func (h *EventHandler) Cancel(c *gin.Context) {
	event, err := h.eventService.Cancel(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

// Finish handles POST /events/:id/finish
func (h *EventHandler) Finish(c *gin.Context) {
	event, err := h.eventService.Finish(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromEvent(event))
}

func (h *EventHandler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsStateConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
