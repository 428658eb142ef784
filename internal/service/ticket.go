package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
)

// Errors returned by the ticket service.
var (
	ErrEmptyItems        = errors.New("items are required")
	ErrInvalidQuantity   = errors.New("quantity must be > 0")
	ErrInvalidProductID  = errors.New("invalid product_id")
	ErrInvalidRoomID     = errors.New("invalid room_id")
	ErrInvalidTableID    = errors.New("invalid table_id")
	ErrInvalidTicketID   = errors.New("invalid ticket_id")
	ErrInvalidChannel    = errors.New("invalid created_by channel")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrProductNotFound   = errors.New("product not found")
	ErrTableNotFound     = errors.New("table not found in room")
	ErrTicketNotFound    = errors.New("ticket not found")
	ErrTicketTransition  = errors.New("status transition not allowed")
	ErrTicketStateStale  = errors.New("ticket changed concurrently, re-read and retry")
)

// Ticket transitions are forward-only. Deletion is a separate operation, not
// a status.
var allowedTicketTransitions = map[string][]string{
	enum.TicketStatusPreparing: {enum.TicketStatusReady, enum.TicketStatusClosed},
	enum.TicketStatusReady:     {enum.TicketStatusClosed},
	enum.TicketStatusClosed:    {},
}

// TicketStore defines the DB methods needed by the ticket service.
// Satisfied by *database.Queries.
type TicketStore interface {
	ProductExists(ctx context.Context, id uuid.UUID) (bool, error)
	GetTableInRoom(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error)
	CreateTicket(ctx context.Context, arg database.CreateTicketParams) (database.Ticket, error)
	CreateTicketItem(ctx context.Context, arg database.CreateTicketItemParams) (database.TicketItem, error)
	GetTicket(ctx context.Context, id uuid.UUID) (database.Ticket, error)
	ListTickets(ctx context.Context, arg database.ListTicketsParams) ([]database.Ticket, error)
	ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]database.TicketItem, error)
	UpdateTicketStatus(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error)
	DeleteTicket(ctx context.Context, id uuid.UUID) (database.Ticket, error)
	CloseTicketsForTable(ctx context.Context, tableID uuid.UUID) (int64, error)
	CountTicketsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
	AttachTicketsToOrder(ctx context.Context, arg database.AttachTicketsToOrderParams) (int64, error)
}

// NumberSource issues the next human-readable ticket number.
type NumberSource interface {
	NextTicketNumber(ctx context.Context) (string, error)
}

// OccupancyTracker re-derives a table's status from its live tickets and
// orders.
type OccupancyTracker interface {
	Recompute(ctx context.Context, tableID uuid.UUID) error
}

// Broadcaster pushes a fulfillment event to connected clients.
type Broadcaster interface {
	Broadcast(eventType string, payload any)
}

// CreateTicketRequest is the validated input for creating a kitchen ticket.
type CreateTicketRequest struct {
	RoomID    string
	TableID   string
	CreatedBy string
	Items     []TicketItemRequest
}

// TicketItemRequest is a single line on a ticket.
type TicketItemRequest struct {
	ProductID    string
	Quantity     int32
	Instructions string
}

// TicketResult is a ticket with its line items.
type TicketResult struct {
	Ticket database.Ticket
	Items  []database.TicketItem
}

// TicketService owns kitchen-ticket creation, status transitions, and the
// association of tickets to orders.
type TicketService struct {
	store   TicketStore
	numbers NumberSource
	tracker OccupancyTracker
	events  Broadcaster
}

func NewTicketService(store TicketStore, numbers NumberSource, tracker OccupancyTracker, events Broadcaster) *TicketService {
	return &TicketService{store: store, numbers: numbers, tracker: tracker, events: events}
}

// CreateTicket validates the request, takes a ticket number, and persists the
// ticket in PREPARING. Stock is not reserved here: tickets only check product
// existence, reservation happens at order time.
func (s *TicketService) CreateTicket(ctx context.Context, req CreateTicketRequest) (*TicketResult, error) {
	if !isValidChannel(req.CreatedBy) {
		return nil, ErrInvalidChannel
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	roomID, err := uuid.Parse(req.RoomID)
	if err != nil {
		return nil, ErrInvalidRoomID
	}
	tableID, err := uuid.Parse(req.TableID)
	if err != nil {
		return nil, ErrInvalidTableID
	}

	if _, err := s.store.GetTableInRoom(ctx, database.GetTableInRoomParams{ID: tableID, RoomID: roomID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTableNotFound
		}
		return nil, fmt.Errorf("get table: %w", err)
	}

	productIDs := make([]uuid.UUID, len(req.Items))
	for i, item := range req.Items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
		exists, err := s.store.ProductExists(ctx, pid)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: check product: %w", i, err)
		}
		if !exists {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrProductNotFound)
		}
		productIDs[i] = pid
	}

	number, err := s.numbers.NextTicketNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("ticket number: %w", err)
	}

	ticket, err := s.store.CreateTicket(ctx, database.CreateTicketParams{
		TicketNumber: number,
		TableID:      tableID,
		RoomID:       roomID,
		CreatedBy:    req.CreatedBy,
	})
	if err != nil {
		return nil, fmt.Errorf("create ticket: %w", err)
	}

	items := make([]database.TicketItem, 0, len(req.Items))
	for i, item := range req.Items {
		ti, err := s.store.CreateTicketItem(ctx, database.CreateTicketItemParams{
			TicketID:     ticket.ID,
			ProductID:    productIDs[i],
			Quantity:     item.Quantity,
			Instructions: item.Instructions,
		})
		if err != nil {
			// Remove the half-written ticket so the kitchen never sees it.
			if _, delErr := s.store.DeleteTicket(ctx, ticket.ID); delErr != nil {
				log.Printf("ERROR: failed to remove partial ticket %s: %v", ticket.ID, delErr)
			}
			return nil, fmt.Errorf("create ticket item: %w", err)
		}
		items = append(items, ti)
	}

	s.recompute(ctx, tableID)
	s.broadcast("ticket.created", ticket)

	return &TicketResult{Ticket: ticket, Items: items}, nil
}

// GetTicket returns a ticket with its items.
func (s *TicketService) GetTicket(ctx context.Context, id string) (*TicketResult, error) {
	ticketID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidTicketID
	}
	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}
	items, err := s.store.ListTicketItemsByTicket(ctx, ticketID)
	if err != nil {
		return nil, fmt.Errorf("list ticket items: %w", err)
	}
	return &TicketResult{Ticket: ticket, Items: items}, nil
}

// ListTickets returns tickets filtered by status set and/or table.
func (s *TicketService) ListTickets(ctx context.Context, statuses []string, tableID string) ([]TicketResult, error) {
	for _, st := range statuses {
		if !isValidTicketStatus(st) {
			return nil, ErrInvalidStatus
		}
	}

	var table pgtype.UUID
	if tableID != "" {
		id, err := uuid.Parse(tableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		table = pgtype.UUID{Bytes: id, Valid: true}
	}

	tickets, err := s.store.ListTickets(ctx, database.ListTicketsParams{Statuses: statuses, TableID: table})
	if err != nil {
		return nil, fmt.Errorf("list tickets: %w", err)
	}

	results := make([]TicketResult, 0, len(tickets))
	for _, t := range tickets {
		items, err := s.store.ListTicketItemsByTicket(ctx, t.ID)
		if err != nil {
			return nil, fmt.Errorf("list ticket items: %w", err)
		}
		results = append(results, TicketResult{Ticket: t, Items: items})
	}
	return results, nil
}

// UpdateStatus moves a ticket forward through PREPARING → READY → CLOSED.
// The write is guarded on the status just read; if a concurrent request won
// the race the caller gets ErrTicketStateStale.
func (s *TicketService) UpdateStatus(ctx context.Context, id, newStatus string) (*database.Ticket, error) {
	ticketID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidTicketID
	}
	if !isValidTicketStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	ticket, err := s.store.GetTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketNotFound
		}
		return nil, fmt.Errorf("get ticket: %w", err)
	}

	if !transitionAllowed(allowedTicketTransitions, ticket.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrTicketTransition, ticket.Status, newStatus)
	}

	updated, err := s.store.UpdateTicketStatus(ctx, database.UpdateTicketStatusParams{
		ID:         ticketID,
		Status:     newStatus,
		PrevStatus: ticket.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrTicketStateStale
		}
		return nil, fmt.Errorf("update ticket status: %w", err)
	}

	if newStatus == enum.TicketStatusClosed {
		s.recompute(ctx, updated.TableID)
	}
	s.broadcast("ticket.status_changed", updated)

	return &updated, nil
}

// DeleteTicket removes a ticket outright (a kitchen cancel, not a close).
func (s *TicketService) DeleteTicket(ctx context.Context, id string) error {
	ticketID, err := uuid.Parse(id)
	if err != nil {
		return ErrInvalidTicketID
	}

	ticket, err := s.store.DeleteTicket(ctx, ticketID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrTicketNotFound
		}
		return fmt.Errorf("delete ticket: %w", err)
	}

	s.recompute(ctx, ticket.TableID)
	s.broadcast("ticket.deleted", ticket)
	return nil
}

// CloseAllForTable bulk-closes every active ticket for a table, then
// recomputes occupancy once.
func (s *TicketService) CloseAllForTable(ctx context.Context, tableID string) (int64, error) {
	id, err := uuid.Parse(tableID)
	if err != nil {
		return 0, ErrInvalidTableID
	}

	closed, err := s.store.CloseTicketsForTable(ctx, id)
	if err != nil {
		return 0, fmt.Errorf("close tickets: %w", err)
	}

	s.recompute(ctx, id)
	if closed > 0 {
		s.broadcast("tickets.closed", map[string]any{"table_id": id, "closed": closed})
	}
	return closed, nil
}

// ValidateTicketsExist rejects the set wholesale when any id is missing.
func (s *TicketService) ValidateTicketsExist(ctx context.Context, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	count, err := s.store.CountTicketsByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("count tickets: %w", err)
	}
	if count != int64(len(ids)) {
		return ErrTicketNotFound
	}
	return nil
}

// AttachToOrder sets the order back-reference on each ticket. Run as the last
// step of order creation so a failed order never leaves dangling attachments.
func (s *TicketService) AttachToOrder(ctx context.Context, ids []uuid.UUID, orderID uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	if _, err := s.store.AttachTicketsToOrder(ctx, database.AttachTicketsToOrderParams{IDs: ids, OrderID: orderID}); err != nil {
		return fmt.Errorf("attach tickets: %w", err)
	}
	return nil
}

func (s *TicketService) recompute(ctx context.Context, tableID uuid.UUID) {
	if err := s.tracker.Recompute(ctx, tableID); err != nil {
		log.Printf("ERROR: failed to recompute table %s: %v", tableID, err)
	}
}

func (s *TicketService) broadcast(eventType string, payload any) {
	if s.events != nil {
		s.events.Broadcast(eventType, payload)
	}
}

// --- Helpers ---

func isValidChannel(s string) bool {
	switch s {
	case enum.CreatorChannelAdmin, enum.CreatorChannelPOS, enum.CreatorChannelKiosk:
		return true
	}
	return false
}

func isValidTicketStatus(s string) bool {
	switch s {
	case enum.TicketStatusPreparing, enum.TicketStatusReady, enum.TicketStatusClosed:
		return true
	}
	return false
}

func transitionAllowed(transitions map[string][]string, from, to string) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
