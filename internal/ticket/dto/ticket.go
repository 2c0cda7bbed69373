package dto

import (
	"time"

	"github.com/ticketrush/ticketrush/internal/ticket/domain"
)

// PurchaseAnyRequest asks for any one available ticket of an event
type PurchaseAnyRequest struct {
	EventID string `json:"event_id" binding:"required"`
}

// PurchaseBatchRequest asks for a block of tickets, all or nothing
type PurchaseBatchRequest struct {
	EventID  string `json:"event_id" binding:"required"`
	Quantity int    `json:"quantity" binding:"required,min=1,max=100"`
}

// TicketResponse is the API representation of a ticket
type TicketResponse struct {
	ID        string  `json:"id"`
	Code      string  `json:"code"`
	EventID   string  `json:"event_id"`
	HolderID  *string `json:"holder_id,omitempty"`
	Price     float64 `json:"price"`
	State     string  `json:"state"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

// FromTicket converts a domain ticket to a response
func FromTicket(t *domain.Ticket) *TicketResponse {
	return &TicketResponse{
		ID:        t.ID,
		Code:      t.Code,
		EventID:   t.EventID,
		HolderID:  t.HolderID,
		Price:     t.Price,
		State:     t.State.String(),
		CreatedAt: t.CreatedAt.Format(time.RFC3339),
		UpdatedAt: t.UpdatedAt.Format(time.RFC3339),
	}
}

// FromTickets converts a slice of domain tickets
func FromTickets(tickets []*domain.Ticket) []*TicketResponse {
	out := make([]*TicketResponse, 0, len(tickets))
	for _, t := range tickets {
		out = append(out, FromTicket(t))
	}
	return out
}

// SalesSummaryResponse reports aggregate sales for one event
type SalesSummaryResponse struct {
	EventID     string  `json:"event_id"`
	TicketsSold int     `json:"tickets_sold"`
	Revenue     float64 `json:"revenue"`
}

// FromSalesSummary converts a domain summary to a response
func FromSalesSummary(s *domain.SalesSummary) *SalesSummaryResponse {
	return &SalesSummaryResponse{
		EventID:     s.EventID,
		TicketsSold: s.TicketsSold,
		Revenue:     s.Revenue,
	}
}

// FromSalesSummaries converts per-event summaries
func FromSalesSummaries(summaries []*domain.SalesSummary) []*SalesSummaryResponse {
	out := make([]*SalesSummaryResponse, 0, len(summaries))
	for _, s := range summaries {
		out = append(out, FromSalesSummary(s))
	}
	return out
}
