package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const ticketColumns = `id, ticket_number, table_id, room_id, status, created_by, order_id, created_at, updated_at`

func scanTicket(row interface{ Scan(dest ...any) error }) (Ticket, error) {
	var t Ticket
	err := row.Scan(&t.ID, &t.TicketNumber, &t.TableID, &t.RoomID, &t.Status, &t.CreatedBy, &t.OrderID, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTicket = `
INSERT INTO tickets (ticket_number, table_id, room_id, created_by)
VALUES ($1, $2, $3, $4)
RETURNING ` + ticketColumns

type CreateTicketParams struct {
	TicketNumber string
	TableID      uuid.UUID
	RoomID       uuid.UUID
	CreatedBy    string
}

func (q *Queries) CreateTicket(ctx context.Context, arg CreateTicketParams) (Ticket, error) {
	row := q.db.QueryRow(ctx, createTicket, arg.TicketNumber, arg.TableID, arg.RoomID, arg.CreatedBy)
	return scanTicket(row)
}

const createTicketItem = `
INSERT INTO ticket_items (ticket_id, product_id, quantity, instructions)
VALUES ($1, $2, $3, $4)
RETURNING id, ticket_id, product_id, quantity, instructions
`

type CreateTicketItemParams struct {
	TicketID     uuid.UUID
	ProductID    uuid.UUID
	Quantity     int32
	Instructions string
}

func (q *Queries) CreateTicketItem(ctx context.Context, arg CreateTicketItemParams) (TicketItem, error) {
	row := q.db.QueryRow(ctx, createTicketItem, arg.TicketID, arg.ProductID, arg.Quantity, arg.Instructions)
	var ti TicketItem
	err := row.Scan(&ti.ID, &ti.TicketID, &ti.ProductID, &ti.Quantity, &ti.Instructions)
	return ti, err
}

const getTicket = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE id = $1
`

func (q *Queries) GetTicket(ctx context.Context, id uuid.UUID) (Ticket, error) {
	return scanTicket(q.db.QueryRow(ctx, getTicket, id))
}

const listTickets = `
SELECT ` + ticketColumns + `
FROM tickets
WHERE ($1::text[] IS NULL OR status = ANY($1))
  AND ($2::uuid IS NULL OR table_id = $2)
ORDER BY created_at DESC
`

type ListTicketsParams struct {
	Statuses []string
	TableID  pgtype.UUID
}

func (q *Queries) ListTickets(ctx context.Context, arg ListTicketsParams) ([]Ticket, error) {
	rows, err := q.db.Query(ctx, listTickets, arg.Statuses, arg.TableID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Ticket
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const listTicketItemsByTicket = `
SELECT id, ticket_id, product_id, quantity, instructions
FROM ticket_items
WHERE ticket_id = $1
ORDER BY id
`

func (q *Queries) ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]TicketItem, error) {
	rows, err := q.db.Query(ctx, listTicketItemsByTicket, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []TicketItem
	for rows.Next() {
		var ti TicketItem
		if err := rows.Scan(&ti.ID, &ti.TicketID, &ti.ProductID, &ti.Quantity, &ti.Instructions); err != nil {
			return nil, err
		}
		items = append(items, ti)
	}
	return items, rows.Err()
}

const updateTicketStatus = `
UPDATE tickets
SET status = $2, updated_at = now()
WHERE id = $1 AND status = $3
RETURNING ` + ticketColumns

type UpdateTicketStatusParams struct {
	ID         uuid.UUID
	Status     string
	PrevStatus string
}

// UpdateTicketStatus is guarded on the status the caller read, so a
// concurrent transition surfaces as pgx.ErrNoRows instead of a lost update.
func (q *Queries) UpdateTicketStatus(ctx context.Context, arg UpdateTicketStatusParams) (Ticket, error) {
	row := q.db.QueryRow(ctx, updateTicketStatus, arg.ID, arg.Status, arg.PrevStatus)
	return scanTicket(row)
}

const deleteTicket = `
DELETE FROM tickets
WHERE id = $1
RETURNING ` + ticketColumns

func (q *Queries) DeleteTicket(ctx context.Context, id uuid.UUID) (Ticket, error) {
	return scanTicket(q.db.QueryRow(ctx, deleteTicket, id))
}

const closeTicketsForTable = `
UPDATE tickets
SET status = 'CLOSED', updated_at = now()
WHERE table_id = $1 AND status IN ('PREPARING', 'READY')
`

func (q *Queries) CloseTicketsForTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(ctx, closeTicketsForTable, tableID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const countTicketsByIDs = `
SELECT count(*) FROM tickets WHERE id = ANY($1)
`

func (q *Queries) CountTicketsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countTicketsByIDs, ids).Scan(&n)
	return n, err
}

const attachTicketsToOrder = `
UPDATE tickets
SET order_id = $2, updated_at = now()
WHERE id = ANY($1)
`

type AttachTicketsToOrderParams struct {
	IDs     []uuid.UUID
	OrderID uuid.UUID
}

func (q *Queries) AttachTicketsToOrder(ctx context.Context, arg AttachTicketsToOrderParams) (int64, error) {
	tag, err := q.db.Exec(ctx, attachTicketsToOrder, arg.IDs, arg.OrderID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const listTicketIDsByOrder = `
SELECT id FROM tickets WHERE order_id = $1 ORDER BY created_at
`

func (q *Queries) ListTicketIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error) {
	rows, err := q.db.Query(ctx, listTicketIDsByOrder, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
