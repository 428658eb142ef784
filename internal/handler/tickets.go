package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/service"
)

// TicketService defines the operations needed by the KOT handlers.
// Satisfied by *service.TicketService.
type TicketService interface {
	CreateTicket(ctx context.Context, req service.CreateTicketRequest) (*service.TicketResult, error)
	GetTicket(ctx context.Context, id string) (*service.TicketResult, error)
	ListTickets(ctx context.Context, statuses []string, tableID string) ([]service.TicketResult, error)
	UpdateStatus(ctx context.Context, id, newStatus string) (*database.Ticket, error)
	DeleteTicket(ctx context.Context, id string) error
	CloseAllForTable(ctx context.Context, tableID string) (int64, error)
}

// TicketHandler handles kitchen-order-ticket endpoints.
type TicketHandler struct {
	svc TicketService
}

func NewTicketHandler(svc TicketService) *TicketHandler {
	return &TicketHandler{svc: svc}
}

// RegisterRoutes registers KOT endpoints on the given Chi router.
func (h *TicketHandler) RegisterRoutes(r chi.Router) {
	r.Post("/kot/add", h.Create)
	r.Get("/kot/", h.List)
	r.Get("/kot/{id}", h.Get)
	r.Put("/kot/{id}/status", h.UpdateStatus)
	r.Delete("/kot/{id}", h.Delete)
	r.Put("/kot/close/{tableId}", h.CloseForTable)
}

// --- Request / Response types ---

type createTicketRequest struct {
	RoomID    string                   `json:"room_id"`
	TableID   string                   `json:"table_id"`
	CreatedBy string                   `json:"created_by"`
	Items     []ticketItemRequestEntry `json:"items"`
}

type ticketItemRequestEntry struct {
	ProductID    string `json:"product_id"`
	Quantity     int32  `json:"quantity"`
	Instructions string `json:"instructions"`
}

type updateTicketStatusRequest struct {
	Status string `json:"status"`
}

type ticketResponse struct {
	ID           uuid.UUID            `json:"id"`
	TicketNumber string               `json:"ticket_number"`
	TableID      uuid.UUID            `json:"table_id"`
	RoomID       uuid.UUID            `json:"room_id"`
	Status       string               `json:"status"`
	CreatedBy    string               `json:"created_by"`
	OrderID      *uuid.UUID           `json:"order_id,omitempty"`
	Items        []ticketItemResponse `json:"items,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

type ticketItemResponse struct {
	ID           uuid.UUID `json:"id"`
	ProductID    uuid.UUID `json:"product_id"`
	Quantity     int32     `json:"quantity"`
	Instructions string    `json:"instructions,omitempty"`
}

func toTicketResponse(t database.Ticket, items []database.TicketItem) ticketResponse {
	resp := ticketResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		TableID:      t.TableID,
		RoomID:       t.RoomID,
		Status:       t.Status,
		CreatedBy:    t.CreatedBy,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
	if t.OrderID.Valid {
		orderID := uuid.UUID(t.OrderID.Bytes)
		resp.OrderID = &orderID
	}
	for _, item := range items {
		resp.Items = append(resp.Items, ticketItemResponse{
			ID:           item.ID,
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}
	return resp
}

// --- Handlers ---

// Create handles POST /kot/add.
func (h *TicketHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	items := make([]service.TicketItemRequest, 0, len(req.Items))
	for _, item := range req.Items {
		items = append(items, service.TicketItemRequest{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
	}

	result, err := h.svc.CreateTicket(r.Context(), service.CreateTicketRequest{
		RoomID:    req.RoomID,
		TableID:   req.TableID,
		CreatedBy: req.CreatedBy,
		Items:     items,
	})
	if err != nil {
		h.respondTicketError(w, err)
		return
	}

	respond(w, http.StatusCreated, "ticket", toTicketResponse(result.Ticket, result.Items))
}

// List handles GET /kot/ with optional ?status=PREPARING,READY and ?table_id=
// filters.
func (h *TicketHandler) List(w http.ResponseWriter, r *http.Request) {
	var statuses []string
	if raw := r.URL.Query().Get("status"); raw != "" {
		for _, s := range strings.Split(raw, ",") {
			if s = strings.TrimSpace(s); s != "" {
				statuses = append(statuses, s)
			}
		}
	}

	results, err := h.svc.ListTickets(r.Context(), statuses, r.URL.Query().Get("table_id"))
	if err != nil {
		h.respondTicketError(w, err)
		return
	}

	resp := make([]ticketResponse, 0, len(results))
	for _, result := range results {
		resp = append(resp, toTicketResponse(result.Ticket, result.Items))
	}
	respond(w, http.StatusOK, "tickets", resp)
}

// Get handles GET /kot/{id}.
func (h *TicketHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetTicket(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	respond(w, http.StatusOK, "ticket", toTicketResponse(result.Ticket, result.Items))
}

// UpdateStatus handles PUT /kot/{id}/status.
func (h *TicketHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateTicketStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	ticket, err := h.svc.UpdateStatus(r.Context(), chi.URLParam(r, "id"), req.Status)
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	respond(w, http.StatusOK, "ticket", toTicketResponse(*ticket, nil))
}

// Delete handles DELETE /kot/{id}.
func (h *TicketHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteTicket(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.respondTicketError(w, err)
		return
	}
	respondMessage(w, http.StatusOK, "ticket deleted")
}

// CloseForTable handles PUT /kot/close/{tableId}.
func (h *TicketHandler) CloseForTable(w http.ResponseWriter, r *http.Request) {
	closed, err := h.svc.CloseAllForTable(r.Context(), chi.URLParam(r, "tableId"))
	if err != nil {
		h.respondTicketError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"success": true, "closed": closed})
}

// --- Helpers ---

func (h *TicketHandler) respondTicketError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrInvalidRoomID),
		errors.Is(err, service.ErrInvalidTableID),
		errors.Is(err, service.ErrInvalidTicketID),
		errors.Is(err, service.ErrInvalidChannel),
		errors.Is(err, service.ErrInvalidStatus):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrTicketNotFound):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrTicketTransition),
		errors.Is(err, service.ErrTicketStateStale):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: ticket handler: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
