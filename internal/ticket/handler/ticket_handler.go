package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/ticketrush/ticketrush/internal/ticket/domain"
	"github.com/ticketrush/ticketrush/internal/ticket/dto"
	"github.com/ticketrush/ticketrush/internal/ticket/service"
	"github.com/ticketrush/ticketrush/pkg/middleware"
	"github.com/ticketrush/ticketrush/pkg/response"
)

// TicketHandler handles ticket-related HTTP requests
type TicketHandler struct {
	ticketService service.TicketService
}

// NewTicketHandler creates a new TicketHandler
func NewTicketHandler(ticketService service.TicketService) *TicketHandler {
	return &TicketHandler{
		ticketService: ticketService,
	}
}

// PurchaseSpecific handles POST /tickets/:id/purchase
func (h *TicketHandler) PurchaseSpecific(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	ticket, err := h.ticketService.PurchaseSpecific(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}

// PurchaseAny handles POST /tickets/purchase - any available ticket of an event
func (h *TicketHandler) PurchaseAny(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.PurchaseAnyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	ticket, err := h.ticketService.PurchaseAny(c.Request.Context(), req.EventID, userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}

// PurchaseBatch handles POST /tickets/purchase-batch - all or nothing
func (h *TicketHandler) PurchaseBatch(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	var req dto.PurchaseBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid request body")
		return
	}

	tickets, err := h.ticketService.PurchaseBatch(c.Request.Context(), req.EventID, userID, req.Quantity)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTickets(tickets))
}

// Cancel handles POST /tickets/:id/cancel
func (h *TicketHandler) Cancel(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	ticket, err := h.ticketService.Cancel(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTicket(ticket))
}

// MyTickets handles GET /tickets/my
func (h *TicketHandler) MyTickets(c *gin.Context) {
	userID, ok := middleware.GetUserID(c)
	if !ok {
		response.Unauthorized(c, "Authentication required")
		return
	}

	tickets, err := h.ticketService.MyTickets(c.Request.Context(), userID)
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTickets(tickets))
}

// TicketsByEvent handles GET /events/:id/tickets
func (h *TicketHandler) TicketsByEvent(c *gin.Context) {
	tickets, err := h.ticketService.TicketsByEvent(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromTickets(tickets))
}

// SalesSummary handles GET /events/:id/sales
func (h *TicketHandler) SalesSummary(c *gin.Context) {
	summary, err := h.ticketService.SalesSummary(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromSalesSummary(summary))
}

// SalesSummaryAll handles GET /sales
func (h *TicketHandler) SalesSummaryAll(c *gin.Context) {
	summaries, err := h.ticketService.SalesSummaryAll(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}

	response.Success(c, dto.FromSalesSummaries(summaries))
}

func (h *TicketHandler) writeError(c *gin.Context, err error) {
	switch {
	case domain.IsNotFoundError(err):
		response.NotFound(c, err.Error())
	case domain.IsConflictError(err):
		response.Conflict(c, err.Error())
	case domain.IsForbiddenError(err):
		response.Forbidden(c, err.Error())
	case domain.IsValidationError(err):
		response.BadRequest(c, err.Error())
	default:
		response.InternalError(c, err)
	}
}
