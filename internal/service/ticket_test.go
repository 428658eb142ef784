package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
)

// mockTicketStore implements TicketStore with configurable behavior.
type mockTicketStore struct {
	productExistsFn        func(ctx context.Context, id uuid.UUID) (bool, error)
	getTableInRoomFn       func(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error)
	createTicketFn         func(ctx context.Context, arg database.CreateTicketParams) (database.Ticket, error)
	createTicketItemFn     func(ctx context.Context, arg database.CreateTicketItemParams) (database.TicketItem, error)
	getTicketFn            func(ctx context.Context, id uuid.UUID) (database.Ticket, error)
	listTicketsFn          func(ctx context.Context, arg database.ListTicketsParams) ([]database.Ticket, error)
	listTicketItemsFn      func(ctx context.Context, ticketID uuid.UUID) ([]database.TicketItem, error)
	updateTicketStatusFn   func(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error)
	deleteTicketFn         func(ctx context.Context, id uuid.UUID) (database.Ticket, error)
	closeTicketsForTableFn func(ctx context.Context, tableID uuid.UUID) (int64, error)
	countTicketsByIDsFn    func(ctx context.Context, ids []uuid.UUID) (int64, error)
	attachTicketsFn        func(ctx context.Context, arg database.AttachTicketsToOrderParams) (int64, error)
}

func (m *mockTicketStore) ProductExists(ctx context.Context, id uuid.UUID) (bool, error) {
	return m.productExistsFn(ctx, id)
}
func (m *mockTicketStore) GetTableInRoom(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error) {
	return m.getTableInRoomFn(ctx, arg)
}
func (m *mockTicketStore) CreateTicket(ctx context.Context, arg database.CreateTicketParams) (database.Ticket, error) {
	return m.createTicketFn(ctx, arg)
}
func (m *mockTicketStore) CreateTicketItem(ctx context.Context, arg database.CreateTicketItemParams) (database.TicketItem, error) {
	return m.createTicketItemFn(ctx, arg)
}
func (m *mockTicketStore) GetTicket(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
	return m.getTicketFn(ctx, id)
}
func (m *mockTicketStore) ListTickets(ctx context.Context, arg database.ListTicketsParams) ([]database.Ticket, error) {
	return m.listTicketsFn(ctx, arg)
}
func (m *mockTicketStore) ListTicketItemsByTicket(ctx context.Context, ticketID uuid.UUID) ([]database.TicketItem, error) {
	return m.listTicketItemsFn(ctx, ticketID)
}
func (m *mockTicketStore) UpdateTicketStatus(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error) {
	return m.updateTicketStatusFn(ctx, arg)
}
func (m *mockTicketStore) DeleteTicket(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
	return m.deleteTicketFn(ctx, id)
}
func (m *mockTicketStore) CloseTicketsForTable(ctx context.Context, tableID uuid.UUID) (int64, error) {
	return m.closeTicketsForTableFn(ctx, tableID)
}
func (m *mockTicketStore) CountTicketsByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	return m.countTicketsByIDsFn(ctx, ids)
}
func (m *mockTicketStore) AttachTicketsToOrder(ctx context.Context, arg database.AttachTicketsToOrderParams) (int64, error) {
	return m.attachTicketsFn(ctx, arg)
}

// fakeNumberSource implements NumberSource.
type fakeNumberSource struct {
	number string
	err    error
}

func (f *fakeNumberSource) NextTicketNumber(ctx context.Context) (string, error) {
	return f.number, f.err
}

type ticketFixture struct {
	svc     *TicketService
	store   *mockTicketStore
	numbers *fakeNumberSource
	tracker *fakeTracker
	events  *fakeBroadcaster
}

func newTicketFixture(store *mockTicketStore) *ticketFixture {
	f := &ticketFixture{
		store:   store,
		numbers: &fakeNumberSource{number: "KOT-20260831-001"},
		tracker: &fakeTracker{},
		events:  &fakeBroadcaster{},
	}
	f.svc = NewTicketService(store, f.numbers, f.tracker, f.events)
	return f
}

// defaultTicketStore answers for one table and one known product.
func defaultTicketStore(roomID, tableID, productID uuid.UUID) *mockTicketStore {
	return &mockTicketStore{
		getTableInRoomFn: func(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error) {
			if arg.ID == tableID && arg.RoomID == roomID {
				return database.Table{ID: tableID, RoomID: roomID, TableNumber: "T1"}, nil
			}
			return database.Table{}, pgx.ErrNoRows
		},
		productExistsFn: func(ctx context.Context, id uuid.UUID) (bool, error) {
			return id == productID, nil
		},
		createTicketFn: func(ctx context.Context, arg database.CreateTicketParams) (database.Ticket, error) {
			return database.Ticket{
				ID:           uuid.New(),
				TicketNumber: arg.TicketNumber,
				TableID:      arg.TableID,
				RoomID:       arg.RoomID,
				Status:       enum.TicketStatusPreparing,
				CreatedBy:    arg.CreatedBy,
			}, nil
		},
		createTicketItemFn: func(ctx context.Context, arg database.CreateTicketItemParams) (database.TicketItem, error) {
			return database.TicketItem{
				ID:        uuid.New(),
				TicketID:  arg.TicketID,
				ProductID: arg.ProductID,
				Quantity:  arg.Quantity,
			}, nil
		},
	}
}

func TestCreateTicketAssignsNumberAndRecomputes(t *testing.T) {
	roomID, tableID, productID := uuid.New(), uuid.New(), uuid.New()
	f := newTicketFixture(defaultTicketStore(roomID, tableID, productID))

	result, err := f.svc.CreateTicket(context.Background(), CreateTicketRequest{
		RoomID:    roomID.String(),
		TableID:   tableID.String(),
		CreatedBy: enum.CreatorChannelPOS,
		Items:     []TicketItemRequest{{ProductID: productID.String(), Quantity: 2, Instructions: "no onion"}},
	})
	if err != nil {
		t.Fatalf("CreateTicket() error = %v", err)
	}
	if result.Ticket.TicketNumber != "KOT-20260831-001" {
		t.Errorf("ticket number = %q", result.Ticket.TicketNumber)
	}
	if result.Ticket.Status != enum.TicketStatusPreparing {
		t.Errorf("status = %q, want PREPARING", result.Ticket.Status)
	}
	if len(result.Items) != 1 || result.Items[0].Quantity != 2 {
		t.Errorf("items = %+v", result.Items)
	}
	if len(f.tracker.recomputed) != 1 || f.tracker.recomputed[0] != tableID {
		t.Errorf("recomputed = %v, want [%s]", f.tracker.recomputed, tableID)
	}
}

func TestCreateTicketRejectsUnknownProduct(t *testing.T) {
	roomID, tableID := uuid.New(), uuid.New()
	f := newTicketFixture(defaultTicketStore(roomID, tableID, uuid.New()))

	_, err := f.svc.CreateTicket(context.Background(), CreateTicketRequest{
		RoomID:    roomID.String(),
		TableID:   tableID.String(),
		CreatedBy: enum.CreatorChannelPOS,
		Items:     []TicketItemRequest{{ProductID: uuid.New().String(), Quantity: 1}},
	})
	if !errors.Is(err, ErrProductNotFound) {
		t.Errorf("CreateTicket() error = %v, want ErrProductNotFound", err)
	}
	if len(f.tracker.recomputed) != 0 {
		t.Errorf("recompute fired on rejected ticket")
	}
}

func TestCreateTicketRejectsBadChannel(t *testing.T) {
	f := newTicketFixture(&mockTicketStore{})
	_, err := f.svc.CreateTicket(context.Background(), CreateTicketRequest{
		RoomID:    uuid.New().String(),
		TableID:   uuid.New().String(),
		CreatedBy: "DRIVE_THROUGH",
		Items:     []TicketItemRequest{{ProductID: uuid.New().String(), Quantity: 1}},
	})
	if !errors.Is(err, ErrInvalidChannel) {
		t.Errorf("CreateTicket() error = %v, want ErrInvalidChannel", err)
	}
}

func TestCreateTicketRemovesPartialTicketOnItemFailure(t *testing.T) {
	roomID, tableID, productID := uuid.New(), uuid.New(), uuid.New()
	store := defaultTicketStore(roomID, tableID, productID)
	store.createTicketItemFn = func(ctx context.Context, arg database.CreateTicketItemParams) (database.TicketItem, error) {
		return database.TicketItem{}, errors.New("connection reset")
	}

	var removed uuid.UUID
	store.deleteTicketFn = func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
		removed = id
		return database.Ticket{ID: id}, nil
	}

	f := newTicketFixture(store)
	_, err := f.svc.CreateTicket(context.Background(), CreateTicketRequest{
		RoomID:    roomID.String(),
		TableID:   tableID.String(),
		CreatedBy: enum.CreatorChannelPOS,
		Items:     []TicketItemRequest{{ProductID: productID.String(), Quantity: 1}},
	})
	if err == nil {
		t.Fatal("CreateTicket() succeeded, want item failure")
	}
	if removed == uuid.Nil {
		t.Error("partial ticket was not removed")
	}
}

func TestUpdateStatusForwardOnly(t *testing.T) {
	tableID := uuid.New()
	store := &mockTicketStore{
		getTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{ID: id, TableID: tableID, Status: enum.TicketStatusReady}, nil
		},
	}
	f := newTicketFixture(store)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New().String(), enum.TicketStatusPreparing)
	if !errors.Is(err, ErrTicketTransition) {
		t.Errorf("UpdateStatus() error = %v, want ErrTicketTransition", err)
	}
}

func TestUpdateStatusClosedRecomputesTable(t *testing.T) {
	tableID := uuid.New()
	store := &mockTicketStore{
		getTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{ID: id, TableID: tableID, Status: enum.TicketStatusReady}, nil
		},
		updateTicketStatusFn: func(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error) {
			if arg.PrevStatus != enum.TicketStatusReady {
				t.Errorf("guard status = %q, want READY", arg.PrevStatus)
			}
			return database.Ticket{ID: arg.ID, TableID: tableID, Status: arg.Status}, nil
		},
	}
	f := newTicketFixture(store)

	updated, err := f.svc.UpdateStatus(context.Background(), uuid.New().String(), enum.TicketStatusClosed)
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if updated.Status != enum.TicketStatusClosed {
		t.Errorf("status = %q", updated.Status)
	}
	if len(f.tracker.recomputed) != 1 || f.tracker.recomputed[0] != tableID {
		t.Errorf("recomputed = %v, want [%s]", f.tracker.recomputed, tableID)
	}
}

func TestUpdateStatusReadyDoesNotRecompute(t *testing.T) {
	store := &mockTicketStore{
		getTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{ID: id, TableID: uuid.New(), Status: enum.TicketStatusPreparing}, nil
		},
		updateTicketStatusFn: func(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error) {
			return database.Ticket{ID: arg.ID, Status: arg.Status}, nil
		},
	}
	f := newTicketFixture(store)

	if _, err := f.svc.UpdateStatus(context.Background(), uuid.New().String(), enum.TicketStatusReady); err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	if len(f.tracker.recomputed) != 0 {
		t.Errorf("recompute fired for READY")
	}
}

func TestTicketUpdateStatusStaleOnConcurrentWin(t *testing.T) {
	store := &mockTicketStore{
		getTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{ID: id, Status: enum.TicketStatusPreparing}, nil
		},
		updateTicketStatusFn: func(ctx context.Context, arg database.UpdateTicketStatusParams) (database.Ticket, error) {
			return database.Ticket{}, pgx.ErrNoRows
		},
	}
	f := newTicketFixture(store)

	_, err := f.svc.UpdateStatus(context.Background(), uuid.New().String(), enum.TicketStatusReady)
	if !errors.Is(err, ErrTicketStateStale) {
		t.Errorf("UpdateStatus() error = %v, want ErrTicketStateStale", err)
	}
}

func TestDeleteTicketRecomputesTable(t *testing.T) {
	tableID := uuid.New()
	store := &mockTicketStore{
		deleteTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{ID: id, TableID: tableID, Status: enum.TicketStatusPreparing}, nil
		},
	}
	f := newTicketFixture(store)

	if err := f.svc.DeleteTicket(context.Background(), uuid.New().String()); err != nil {
		t.Fatalf("DeleteTicket() error = %v", err)
	}
	if len(f.tracker.recomputed) != 1 || f.tracker.recomputed[0] != tableID {
		t.Errorf("recomputed = %v, want [%s]", f.tracker.recomputed, tableID)
	}
}

func TestDeleteTicketNotFound(t *testing.T) {
	store := &mockTicketStore{
		deleteTicketFn: func(ctx context.Context, id uuid.UUID) (database.Ticket, error) {
			return database.Ticket{}, pgx.ErrNoRows
		},
	}
	f := newTicketFixture(store)

	if err := f.svc.DeleteTicket(context.Background(), uuid.New().String()); !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("DeleteTicket() error = %v, want ErrTicketNotFound", err)
	}
}

func TestCloseAllForTableRecomputesOnce(t *testing.T) {
	tableID := uuid.New()
	store := &mockTicketStore{
		closeTicketsForTableFn: func(ctx context.Context, id uuid.UUID) (int64, error) {
			return 3, nil
		},
	}
	f := newTicketFixture(store)

	closed, err := f.svc.CloseAllForTable(context.Background(), tableID.String())
	if err != nil {
		t.Fatalf("CloseAllForTable() error = %v", err)
	}
	if closed != 3 {
		t.Errorf("closed = %d, want 3", closed)
	}
	if len(f.tracker.recomputed) != 1 {
		t.Errorf("recompute calls = %d, want exactly 1", len(f.tracker.recomputed))
	}
}

func TestValidateTicketsExistRejectsPartialSet(t *testing.T) {
	store := &mockTicketStore{
		countTicketsByIDsFn: func(ctx context.Context, ids []uuid.UUID) (int64, error) {
			return int64(len(ids) - 1), nil
		},
	}
	f := newTicketFixture(store)

	err := f.svc.ValidateTicketsExist(context.Background(), []uuid.UUID{uuid.New(), uuid.New()})
	if !errors.Is(err, ErrTicketNotFound) {
		t.Errorf("ValidateTicketsExist() error = %v, want ErrTicketNotFound", err)
	}
}
