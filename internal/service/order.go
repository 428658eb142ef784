package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
	"github.com/dapur-pos/api/internal/ledger"
)

// Errors returned by the order service.
var (
	ErrInvalidOrderID       = errors.New("invalid order_id")
	ErrInvalidUserID        = errors.New("invalid user_id")
	ErrInvalidActorID       = errors.New("invalid actor id")
	ErrInvalidPayment       = errors.New("invalid payment_method")
	ErrInvalidDiscount      = errors.New("invalid discount_type")
	ErrInvalidDiscountValue = errors.New("invalid discount_value")
	ErrOrderNotFound        = errors.New("order not found")
	ErrOrderTerminal        = errors.New("order is completed, cancelled, or deleted")
	ErrOrderTransition      = errors.New("status transition not allowed")
	ErrOrderStateStale      = errors.New("order changed concurrently, re-read and retry")
	ErrEmptyReason          = errors.New("a reason is required")
)

var allowedOrderTransitions = map[string][]string{
	enum.OrderStatusPending:    {enum.OrderStatusInProgress, enum.OrderStatusCompleted},
	enum.OrderStatusInProgress: {enum.OrderStatusCompleted},
}

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// OrderStore defines the DB methods needed by the order service.
// Satisfied by *database.Queries (and its WithTx variant).
type OrderStore interface {
	GetTableInRoom(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	CreateOrder(ctx context.Context, arg database.CreateOrderParams) (database.Order, error)
	CreateOrderItem(ctx context.Context, arg database.CreateOrderItemParams) (database.OrderItem, error)
	GetOrder(ctx context.Context, id uuid.UUID) (database.Order, error)
	ListOrders(ctx context.Context, arg database.ListOrdersParams) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, userID uuid.UUID) ([]database.Order, error)
	ListDeletedOrders(ctx context.Context) ([]database.Order, error)
	ListOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) ([]database.OrderItem, error)
	DeleteOrderItemsByOrder(ctx context.Context, orderID uuid.UUID) error
	UpdateOrderForEdit(ctx context.Context, arg database.UpdateOrderForEditParams) (database.Order, error)
	UpdateOrderStatus(ctx context.Context, arg database.UpdateOrderStatusParams) (database.Order, error)
	SoftDeleteOrder(ctx context.Context, arg database.SoftDeleteOrderParams) (database.Order, error)
	ListTicketIDsByOrder(ctx context.Context, orderID uuid.UUID) ([]uuid.UUID, error)
}

// NewOrderStore creates an OrderStore from a DBTX (pool or tx), letting the
// service run the order-row-plus-items persist inside one transaction. Stock,
// tickets, and table state live outside that transaction and are kept
// consistent by compensation.
type NewOrderStore func(db database.DBTX) OrderStore

// StockLedger reserves and releases product stock.
type StockLedger interface {
	Reserve(ctx context.Context, lines []ledger.Line) error
	Release(ctx context.Context, lines []ledger.Line)
}

// TicketLinker validates and attaches kitchen tickets to an order.
type TicketLinker interface {
	ValidateTicketsExist(ctx context.Context, ids []uuid.UUID) error
	AttachToOrder(ctx context.Context, ids []uuid.UUID, orderID uuid.UUID) error
}

// CreateOrderRequest is the validated input for creating an order.
type CreateOrderRequest struct {
	UserID         string // optional, empty for walk-ins
	RoomID         string
	TableID        string
	PaymentMethod  string
	DiscountType   string
	DiscountValue  string
	DiscountReason string
	TicketIDs      []string
	Items          []OrderItemRequest
}

// OrderItemRequest is a single line on an order. Unit price is never taken
// from the client; it is read from the catalog and frozen on the order row.
type OrderItemRequest struct {
	ProductID string
	Quantity  int32
}

// EditOrderRequest replaces an order's line items and billing fields.
type EditOrderRequest struct {
	PaymentMethod  string
	DiscountType   string
	DiscountValue  string
	DiscountReason string
	Items          []OrderItemRequest
}

// OrderResult is an order with its items and attached ticket ids.
type OrderResult struct {
	Order     database.Order
	Items     []database.OrderItem
	TicketIDs []uuid.UUID
}

// OrderService orchestrates stock reservation, ticket linking, table
// occupancy, and the order record itself.
type OrderService struct {
	pool     TxBeginner
	store    OrderStore
	newStore NewOrderStore
	ledger   StockLedger
	tickets  TicketLinker
	tracker  OccupancyTracker
	events   Broadcaster
	taxRate  decimal.Decimal // percent, e.g. 5 for 5%
}

func NewOrderService(
	pool TxBeginner,
	store OrderStore,
	newStore NewOrderStore,
	stock StockLedger,
	tickets TicketLinker,
	tracker OccupancyTracker,
	events Broadcaster,
	taxRatePercent decimal.Decimal,
) *OrderService {
	return &OrderService{
		pool:     pool,
		store:    store,
		newStore: newStore,
		ledger:   stock,
		tickets:  tickets,
		tracker:  tracker,
		events:   events,
		taxRate:  taxRatePercent,
	}
}

// pricedItem is a validated order line with its frozen unit price.
type pricedItem struct {
	productID uuid.UUID
	quantity  int32
	unitPrice decimal.Decimal
}

// CreateOrder validates the request, reserves stock, computes totals, and
// persists the order in PENDING. Validation and the stock reservation run
// before any order row exists, so a rejected request leaves nothing behind;
// a persist failure after reservation releases the reserved stock before
// returning.
func (s *OrderService) CreateOrder(ctx context.Context, req CreateOrderRequest) (*OrderResult, error) {
	payment, err := validatePayment(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	userID := pgtype.UUID{}
	if req.UserID != "" {
		uid, err := uuid.Parse(req.UserID)
		if err != nil {
			return nil, ErrInvalidUserID
		}
		userID = pgtype.UUID{Bytes: uid, Valid: true}
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

	ticketIDs := make([]uuid.UUID, 0, len(req.TicketIDs))
	for _, raw := range req.TicketIDs {
		tid, err := uuid.Parse(raw)
		if err != nil {
			return nil, ErrInvalidTicketID
		}
		ticketIDs = append(ticketIDs, tid)
	}
	if err := s.tickets.ValidateTicketsExist(ctx, ticketIDs); err != nil {
		return nil, err
	}

	priced, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	discount, err := parseDiscount(req.DiscountType, req.DiscountValue, req.DiscountReason)
	if err != nil {
		return nil, err
	}

	lines := toLedgerLines(priced)
	if err := s.ledger.Reserve(ctx, lines); err != nil {
		return nil, err
	}

	totals := s.computeTotals(priced, discount)

	order, items, err := s.persistOrderTx(ctx, userID, roomID, tableID, payment, discount, totals, priced)
	if err != nil {
		s.ledger.Release(ctx, lines)
		return nil, err
	}

	// Attach last so a failed order never leaves dangling back-references.
	// The reverse gap (order persisted, attach failed) only loses the link;
	// log it rather than unwind a live order.
	if err := s.tickets.AttachToOrder(ctx, ticketIDs, order.ID); err != nil {
		log.Printf("ERROR: failed to attach tickets to order %s: %v", order.ID, err)
	}

	s.recompute(ctx, tableID)
	s.broadcast("order.created", order)

	return &OrderResult{Order: order, Items: items, TicketIDs: ticketIDs}, nil
}

// EditOrder replaces the line items and billing fields of a live order. The
// ledger sees release(old) then reserve(new); if the new reservation fails,
// the old one is re-applied and the persisted order is untouched, so the
// order and the ledger never diverge.
func (s *OrderService) EditOrder(ctx context.Context, id string, req EditOrderRequest) (*OrderResult, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidOrderID
	}
	payment, err := validatePayment(req.PaymentMethod)
	if err != nil {
		return nil, err
	}
	if len(req.Items) == 0 {
		return nil, ErrEmptyItems
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if isTerminalOrderStatus(order.Status) {
		return nil, ErrOrderTerminal
	}

	oldItems, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	oldLines := orderItemsToLines(oldItems)

	priced, err := s.priceItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	discount, err := parseDiscount(req.DiscountType, req.DiscountValue, req.DiscountReason)
	if err != nil {
		return nil, err
	}

	newLines := toLedgerLines(priced)
	s.ledger.Release(ctx, oldLines)
	if err := s.ledger.Reserve(ctx, newLines); err != nil {
		// Put the old reservation back; the persisted order still holds the
		// old items, so ledger and order stay aligned.
		if reErr := s.ledger.Reserve(ctx, oldLines); reErr != nil {
			log.Printf("ERROR: failed to restore reservation for order %s: %v", orderID, reErr)
		}
		return nil, err
	}

	totals := s.computeTotals(priced, discount)

	updated, items, err := s.rewriteOrderTx(ctx, orderID, payment, discount, totals, priced)
	if err != nil {
		s.ledger.Release(ctx, newLines)
		if reErr := s.ledger.Reserve(ctx, oldLines); reErr != nil {
			log.Printf("ERROR: failed to restore reservation for order %s: %v", orderID, reErr)
		}
		return nil, err
	}

	// The rewrite committed; a failure listing tickets must not surface an
	// edit that already succeeded.
	ticketIDs, err := s.store.ListTicketIDsByOrder(ctx, orderID)
	if err != nil {
		log.Printf("ERROR: failed to list tickets for order %s: %v", orderID, err)
		ticketIDs = nil
	}

	s.broadcast("order.updated", updated)
	return &OrderResult{Order: updated, Items: items, TicketIDs: ticketIDs}, nil
}

// UpdateStatus moves an order forward through PENDING → IN_PROGRESS →
// COMPLETED. Cancellation goes through DeleteOrder, not here.
func (s *OrderService) UpdateStatus(ctx context.Context, id, newStatus string) (*database.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidOrderID
	}
	if !isValidOrderStatus(newStatus) {
		return nil, ErrInvalidStatus
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}

	if !transitionAllowed(allowedOrderTransitions, order.Status, newStatus) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrOrderTransition, order.Status, newStatus)
	}

	updated, err := s.store.UpdateOrderStatus(ctx, database.UpdateOrderStatusParams{
		ID:         orderID,
		Status:     newStatus,
		PrevStatus: order.Status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderStateStale
		}
		return nil, fmt.Errorf("update order status: %w", err)
	}

	// A completed order no longer claims its table.
	if newStatus == enum.OrderStatusCompleted {
		s.recompute(ctx, updated.TableID)
	}
	s.broadcast("order.status_changed", updated)

	return &updated, nil
}

// DeleteOrder soft-deletes a live order: the guarded status flip is the
// decision point under concurrency, then the current line items go back to
// the ledger and the table is recomputed. Completed stock is never returned
// because completed orders refuse deletion.
func (s *OrderService) DeleteOrder(ctx context.Context, id, actor, reason string) (*database.Order, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidOrderID
	}
	if reason == "" {
		return nil, ErrEmptyReason
	}
	actorID, err := uuid.Parse(actor)
	if err != nil {
		return nil, ErrInvalidActorID
	}

	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	if isTerminalOrderStatus(order.Status) {
		return nil, ErrOrderTerminal
	}

	// Items are frozen once the status flip commits; read them before the
	// flip so a failed read cannot strand a committed deletion without its
	// stock return.
	items, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}

	deleted, err := s.store.SoftDeleteOrder(ctx, database.SoftDeleteOrderParams{
		ID:           orderID,
		DeletedBy:    pgtype.UUID{Bytes: actorID, Valid: true},
		DeleteReason: pgtype.Text{String: reason, Valid: true},
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderStateStale
		}
		return nil, fmt.Errorf("delete order: %w", err)
	}

	s.ledger.Release(ctx, orderItemsToLines(items))

	s.recompute(ctx, deleted.TableID)
	s.broadcast("order.deleted", deleted)

	return &deleted, nil
}

// GetOrder returns one order with its items and ticket ids.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*OrderResult, error) {
	orderID, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrInvalidOrderID
	}
	order, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("get order: %w", err)
	}
	items, err := s.store.ListOrderItemsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order items: %w", err)
	}
	ticketIDs, err := s.store.ListTicketIDsByOrder(ctx, orderID)
	if err != nil {
		return nil, fmt.Errorf("list order tickets: %w", err)
	}
	return &OrderResult{Order: order, Items: items, TicketIDs: ticketIDs}, nil
}

// ListOrders returns live orders filtered by status and/or table.
func (s *OrderService) ListOrders(ctx context.Context, status, tableID string) ([]database.Order, error) {
	arg := database.ListOrdersParams{}
	if status != "" {
		if !isValidOrderStatus(status) {
			return nil, ErrInvalidStatus
		}
		arg.Status = pgtype.Text{String: status, Valid: true}
	}
	if tableID != "" {
		id, err := uuid.Parse(tableID)
		if err != nil {
			return nil, ErrInvalidTableID
		}
		arg.TableID = pgtype.UUID{Bytes: id, Valid: true}
	}
	orders, err := s.store.ListOrders(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListOrdersByUser returns the requester's own orders.
func (s *OrderService) ListOrdersByUser(ctx context.Context, userID string) ([]database.Order, error) {
	uid, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrInvalidUserID
	}
	orders, err := s.store.ListOrdersByUser(ctx, uid)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

// ListDeletions returns the soft-deleted orders with their deletion records.
func (s *OrderService) ListDeletions(ctx context.Context) ([]database.Order, error) {
	orders, err := s.store.ListDeletedOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list deleted orders: %w", err)
	}
	return orders, nil
}

// --- Internals ---

// priceItems validates every line and freezes the catalog unit price.
func (s *OrderService) priceItems(ctx context.Context, items []OrderItemRequest) ([]pricedItem, error) {
	priced := make([]pricedItem, 0, len(items))
	for i, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidQuantity)
		}
		pid, err := uuid.Parse(item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("item[%d]: %w", i, ErrInvalidProductID)
		}
		product, err := s.store.GetProduct(ctx, pid)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, fmt.Errorf("item[%d]: %w", i, ErrProductNotFound)
			}
			return nil, fmt.Errorf("item[%d]: get product: %w", i, err)
		}
		priced = append(priced, pricedItem{
			productID: pid,
			quantity:  item.Quantity,
			unitPrice: numericToDecimal(product.UnitPrice),
		})
	}
	return priced, nil
}

type orderDiscount struct {
	kind   pgtype.Text
	value  pgtype.Numeric
	reason pgtype.Text
	amount func(subtotal decimal.Decimal) decimal.Decimal
}

func parseDiscount(kind, value, reason string) (orderDiscount, error) {
	if kind == "" {
		return orderDiscount{amount: func(decimal.Decimal) decimal.Decimal { return decimal.Zero }}, nil
	}
	if kind != enum.DiscountTypePercentage && kind != enum.DiscountTypeFixed {
		return orderDiscount{}, ErrInvalidDiscount
	}
	dv, err := decimal.NewFromString(value)
	if err != nil || dv.IsNegative() {
		return orderDiscount{}, ErrInvalidDiscountValue
	}

	d := orderDiscount{
		kind:  pgtype.Text{String: kind, Valid: true},
		value: decimalToNumeric(dv),
	}
	if reason != "" {
		d.reason = pgtype.Text{String: reason, Valid: true}
	}
	if kind == enum.DiscountTypePercentage {
		d.amount = func(subtotal decimal.Decimal) decimal.Decimal {
			return subtotal.Mul(dv).Div(decimal.NewFromInt(100))
		}
	} else {
		d.amount = func(decimal.Decimal) decimal.Decimal { return dv }
	}
	return d, nil
}

type orderTotals struct {
	subtotal decimal.Decimal
	tax      decimal.Decimal
	total    decimal.Decimal
}

// computeTotals derives subtotal, tax, and total. The chargeable amount after
// a fixed discount is clamped at zero.
func (s *OrderService) computeTotals(items []pricedItem, discount orderDiscount) orderTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.unitPrice.Mul(decimal.NewFromInt32(item.quantity)))
	}

	afterDiscount := subtotal.Sub(discount.amount(subtotal))
	if afterDiscount.IsNegative() {
		afterDiscount = decimal.Zero
	}

	tax := afterDiscount.Mul(s.taxRate).Div(decimal.NewFromInt(100))
	return orderTotals{
		subtotal: subtotal,
		tax:      tax,
		total:    afterDiscount.Add(tax),
	}
}

// persistOrderTx writes the order row and its items in one transaction: the
// order record is a single entity and must never be readable half-written.
func (s *OrderService) persistOrderTx(
	ctx context.Context,
	userID pgtype.UUID,
	roomID, tableID uuid.UUID,
	payment string,
	discount orderDiscount,
	totals orderTotals,
	items []pricedItem,
) (database.Order, []database.OrderItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.CreateOrder(ctx, database.CreateOrderParams{
		UserID:         userID,
		RoomID:         roomID,
		TableID:        tableID,
		PaymentMethod:  payment,
		DiscountType:   discount.kind,
		DiscountValue:  discount.value,
		DiscountReason: discount.reason,
		Subtotal:       decimalToNumeric(totals.subtotal),
		TaxAmount:      decimalToNumeric(totals.tax),
		TotalAmount:    decimalToNumeric(totals.total),
	})
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("create order: %w", err)
	}

	persisted, err := insertOrderItems(ctx, store, order.ID, items)
	if err != nil {
		return database.Order{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, persisted, nil
}

// rewriteOrderTx replaces an order's billing fields and items in one
// transaction. The UPDATE is guarded on a live status, so a concurrently
// completed or deleted order rolls the whole rewrite back.
func (s *OrderService) rewriteOrderTx(
	ctx context.Context,
	orderID uuid.UUID,
	payment string,
	discount orderDiscount,
	totals orderTotals,
	items []pricedItem,
) (database.Order, []database.OrderItem, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return database.Order{}, nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	store := s.newStore(tx)

	order, err := store.UpdateOrderForEdit(ctx, database.UpdateOrderForEditParams{
		ID:             orderID,
		PaymentMethod:  payment,
		DiscountType:   discount.kind,
		DiscountValue:  discount.value,
		DiscountReason: discount.reason,
		Subtotal:       decimalToNumeric(totals.subtotal),
		TaxAmount:      decimalToNumeric(totals.tax),
		TotalAmount:    decimalToNumeric(totals.total),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return database.Order{}, nil, ErrOrderStateStale
		}
		return database.Order{}, nil, fmt.Errorf("update order: %w", err)
	}

	if err := store.DeleteOrderItemsByOrder(ctx, orderID); err != nil {
		return database.Order{}, nil, fmt.Errorf("clear order items: %w", err)
	}
	persisted, err := insertOrderItems(ctx, store, orderID, items)
	if err != nil {
		return database.Order{}, nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return database.Order{}, nil, fmt.Errorf("commit tx: %w", err)
	}
	return order, persisted, nil
}

func insertOrderItems(ctx context.Context, store OrderStore, orderID uuid.UUID, items []pricedItem) ([]database.OrderItem, error) {
	persisted := make([]database.OrderItem, 0, len(items))
	for _, item := range items {
		oi, err := store.CreateOrderItem(ctx, database.CreateOrderItemParams{
			OrderID:   orderID,
			ProductID: item.productID,
			Quantity:  item.quantity,
			UnitPrice: decimalToNumeric(item.unitPrice),
		})
		if err != nil {
			return nil, fmt.Errorf("create order item: %w", err)
		}
		persisted = append(persisted, oi)
	}
	return persisted, nil
}

func (s *OrderService) recompute(ctx context.Context, tableID uuid.UUID) {
	if err := s.tracker.Recompute(ctx, tableID); err != nil {
		log.Printf("ERROR: failed to recompute table %s: %v", tableID, err)
	}
}

func (s *OrderService) broadcast(eventType string, payload any) {
	if s.events != nil {
		s.events.Broadcast(eventType, payload)
	}
}

// --- Helpers ---

func validatePayment(s string) (string, error) {
	if s == "" {
		return enum.PaymentMethodCash, nil
	}
	switch s {
	case enum.PaymentMethodCash, enum.PaymentMethodCard,
		enum.PaymentMethodUPI, enum.PaymentMethodWallet:
		return s, nil
	}
	return "", ErrInvalidPayment
}

func isValidOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusPending, enum.OrderStatusInProgress, enum.OrderStatusCompleted,
		enum.OrderStatusCancelled, enum.OrderStatusDeleted:
		return true
	}
	return false
}

func isTerminalOrderStatus(s string) bool {
	switch s {
	case enum.OrderStatusCompleted, enum.OrderStatusCancelled, enum.OrderStatusDeleted:
		return true
	}
	return false
}

func toLedgerLines(items []pricedItem) []ledger.Line {
	lines := make([]ledger.Line, len(items))
	for i, item := range items {
		lines[i] = ledger.Line{ProductID: item.productID, Quantity: item.quantity}
	}
	return lines
}

func orderItemsToLines(items []database.OrderItem) []ledger.Line {
	lines := make([]ledger.Line, len(items))
	for i, item := range items {
		lines[i] = ledger.Line{ProductID: item.ProductID, Quantity: item.Quantity}
	}
	return lines
}

func numericToDecimal(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid {
		return decimal.Zero
	}
	val, err := n.Value()
	if err != nil || val == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(val.(string))
	if err != nil {
		return decimal.Zero
	}
	return d
}

func decimalToNumeric(d decimal.Decimal) pgtype.Numeric {
	var n pgtype.Numeric
	_ = n.Scan(d.StringFixed(2))
	return n
}
