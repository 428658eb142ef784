package database

import (
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

type User struct {
	ID           uuid.UUID
	Name         string
	Email        string
	PasswordHash string
	Role         string
	IsActive     bool
	CreatedAt    time.Time
}

type Category struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	IsActive    bool
	CreatedAt   time.Time
}

type Product struct {
	ID             uuid.UUID
	CategoryID     uuid.UUID
	Name           string
	UnitPrice      pgtype.Numeric
	StockQuantity  int32
	MinStockLevel  int32
	StockResetDate pgtype.Date
	IsActive       bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type Room struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	Capacity    int32
	Location    pgtype.Text
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type Table struct {
	ID              uuid.UUID
	RoomID          uuid.UUID
	TableNumber     string
	SeatingCapacity int32
	TableType       string
	Status          string
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type DailySequence struct {
	SeqDate   pgtype.Date
	Counter   int32
	UpdatedAt time.Time
}

type Order struct {
	ID             uuid.UUID
	UserID         pgtype.UUID
	RoomID         uuid.UUID
	TableID        uuid.UUID
	Status         string
	PaymentMethod  string
	DiscountType   pgtype.Text
	DiscountValue  pgtype.Numeric
	DiscountReason pgtype.Text
	Subtotal       pgtype.Numeric
	TaxAmount      pgtype.Numeric
	TotalAmount    pgtype.Numeric
	DeletedAt      pgtype.Timestamptz
	DeletedBy      pgtype.UUID
	DeleteReason   pgtype.Text
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

type OrderItem struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
}

type Ticket struct {
	ID           uuid.UUID
	TicketNumber string
	TableID      uuid.UUID
	RoomID       uuid.UUID
	Status       string
	CreatedBy    string
	OrderID      pgtype.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type TicketItem struct {
	ID           uuid.UUID
	TicketID     uuid.UUID
	ProductID    uuid.UUID
	Quantity     int32
	Instructions string
}
