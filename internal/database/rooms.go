package database

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const createRoom = `
INSERT INTO rooms (name, description, capacity, location)
VALUES ($1, $2, $3, $4)
RETURNING id, name, description, capacity, location, is_active, created_at, updated_at
`

type CreateRoomParams struct {
	Name        string
	Description pgtype.Text
	Capacity    int32
	Location    pgtype.Text
}

func (q *Queries) CreateRoom(ctx context.Context, arg CreateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, createRoom, arg.Name, arg.Description, arg.Capacity, arg.Location)
	var r Room
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &r.Location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const getRoom = `
SELECT id, name, description, capacity, location, is_active, created_at, updated_at
FROM rooms
WHERE id = $1 AND is_active
`

func (q *Queries) GetRoom(ctx context.Context, id uuid.UUID) (Room, error) {
	row := q.db.QueryRow(ctx, getRoom, id)
	var r Room
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &r.Location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const listRooms = `
SELECT id, name, description, capacity, location, is_active, created_at, updated_at
FROM rooms
WHERE is_active
ORDER BY name
`

func (q *Queries) ListRooms(ctx context.Context) ([]Room, error) {
	rows, err := q.db.Query(ctx, listRooms)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Room
	for rows.Next() {
		var r Room
		if err := rows.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &r.Location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, r)
	}
	return items, rows.Err()
}

const updateRoom = `
UPDATE rooms
SET name = $2, description = $3, capacity = $4, location = $5, updated_at = now()
WHERE id = $1 AND is_active
RETURNING id, name, description, capacity, location, is_active, created_at, updated_at
`

type UpdateRoomParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Capacity    int32
	Location    pgtype.Text
}

func (q *Queries) UpdateRoom(ctx context.Context, arg UpdateRoomParams) (Room, error) {
	row := q.db.QueryRow(ctx, updateRoom, arg.ID, arg.Name, arg.Description, arg.Capacity, arg.Location)
	var r Room
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.Capacity, &r.Location, &r.IsActive, &r.CreatedAt, &r.UpdatedAt)
	return r, err
}

const deactivateRoom = `
UPDATE rooms
SET is_active = FALSE, updated_at = now()
WHERE id = $1 AND is_active
RETURNING id
`

func (q *Queries) DeactivateRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deactivated uuid.UUID
	err := q.db.QueryRow(ctx, deactivateRoom, id).Scan(&deactivated)
	return deactivated, err
}

// --- Tables ---

const tableColumns = `id, room_id, table_number, seating_capacity, table_type, status, created_at, updated_at`

func scanTable(row interface{ Scan(dest ...any) error }) (Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.RoomID, &t.TableNumber, &t.SeatingCapacity, &t.TableType, &t.Status, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

const createTable = `
INSERT INTO tables (room_id, table_number, seating_capacity, table_type)
VALUES ($1, $2, $3, $4)
RETURNING ` + tableColumns

type CreateTableParams struct {
	RoomID          uuid.UUID
	TableNumber     string
	SeatingCapacity int32
	TableType       string
}

func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, createTable, arg.RoomID, arg.TableNumber, arg.SeatingCapacity, arg.TableType)
	return scanTable(row)
}

const getTable = `
SELECT ` + tableColumns + `
FROM tables
WHERE id = $1
`

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTable, id))
}

const getTableInRoom = `
SELECT ` + tableColumns + `
FROM tables
WHERE id = $1 AND room_id = $2
`

type GetTableInRoomParams struct {
	ID     uuid.UUID
	RoomID uuid.UUID
}

func (q *Queries) GetTableInRoom(ctx context.Context, arg GetTableInRoomParams) (Table, error) {
	return scanTable(q.db.QueryRow(ctx, getTableInRoom, arg.ID, arg.RoomID))
}

const listTablesByRoom = `
SELECT ` + tableColumns + `
FROM tables
WHERE room_id = $1
ORDER BY table_number
`

func (q *Queries) ListTablesByRoom(ctx context.Context, roomID uuid.UUID) ([]Table, error) {
	rows, err := q.db.Query(ctx, listTablesByRoom, roomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	return items, rows.Err()
}

const updateTable = `
UPDATE tables
SET table_number = $3, seating_capacity = $4, table_type = $5, status = $6, updated_at = now()
WHERE id = $1 AND room_id = $2
RETURNING ` + tableColumns

type UpdateTableParams struct {
	ID              uuid.UUID
	RoomID          uuid.UUID
	TableNumber     string
	SeatingCapacity int32
	TableType       string
	Status          string
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, updateTable,
		arg.ID, arg.RoomID, arg.TableNumber, arg.SeatingCapacity, arg.TableType, arg.Status)
	return scanTable(row)
}

const deleteTable = `
DELETE FROM tables
WHERE id = $1 AND room_id = $2
RETURNING id
`

type DeleteTableParams struct {
	ID     uuid.UUID
	RoomID uuid.UUID
}

func (q *Queries) DeleteTable(ctx context.Context, arg DeleteTableParams) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, deleteTable, arg.ID, arg.RoomID).Scan(&deleted)
	return deleted, err
}

const countActiveTableRefs = `
SELECT
    (SELECT count(*) FROM tickets WHERE table_id = $1 AND status IN ('PREPARING', 'READY'))
  + (SELECT count(*) FROM orders  WHERE table_id = $1 AND status IN ('PENDING', 'IN_PROGRESS'))
`

// CountActiveTableRefs counts the tickets and orders that currently claim
// the table; occupancy is derived from this number.
func (q *Queries) CountActiveTableRefs(ctx context.Context, tableID uuid.UUID) (int64, error) {
	var n int64
	err := q.db.QueryRow(ctx, countActiveTableRefs, tableID).Scan(&n)
	return n, err
}

const setDerivedTableStatus = `
UPDATE tables
SET status = $2, updated_at = now()
WHERE id = $1 AND status IN ('AVAILABLE', 'OCCUPIED') AND status <> $2
`

type SetDerivedTableStatusParams struct {
	ID     uuid.UUID
	Status string
}

// SetDerivedTableStatus only ever touches the two derived states; RESERVED
// and OUT_OF_SERVICE are operator-held and outrank occupancy.
func (q *Queries) SetDerivedTableStatus(ctx context.Context, arg SetDerivedTableStatusParams) error {
	_, err := q.db.Exec(ctx, setDerivedTableStatus, arg.ID, arg.Status)
	return err
}
