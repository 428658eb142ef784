package handler_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
	"github.com/dapur-pos/api/internal/handler"
)

// --- Mock store ---

type mockRoomStore struct {
	rooms     map[uuid.UUID]database.Room
	tables    map[uuid.UUID]database.Table
	tableRefs map[uuid.UUID]int64
}

func newMockRoomStore() *mockRoomStore {
	return &mockRoomStore{
		rooms:     make(map[uuid.UUID]database.Room),
		tables:    make(map[uuid.UUID]database.Table),
		tableRefs: make(map[uuid.UUID]int64),
	}
}

func (m *mockRoomStore) CreateRoom(_ context.Context, arg database.CreateRoomParams) (database.Room, error) {
	r := database.Room{
		ID:          uuid.New(),
		Name:        arg.Name,
		Description: arg.Description,
		Capacity:    arg.Capacity,
		Location:    arg.Location,
		IsActive:    true,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	m.rooms[r.ID] = r
	return r, nil
}

func (m *mockRoomStore) GetRoom(_ context.Context, id uuid.UUID) (database.Room, error) {
	r, ok := m.rooms[id]
	if !ok || !r.IsActive {
		return database.Room{}, pgx.ErrNoRows
	}
	return r, nil
}

func (m *mockRoomStore) ListRooms(_ context.Context) ([]database.Room, error) {
	var result []database.Room
	for _, r := range m.rooms {
		if r.IsActive {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *mockRoomStore) UpdateRoom(_ context.Context, arg database.UpdateRoomParams) (database.Room, error) {
	r, ok := m.rooms[arg.ID]
	if !ok || !r.IsActive {
		return database.Room{}, pgx.ErrNoRows
	}
	r.Name = arg.Name
	r.Description = arg.Description
	r.Capacity = arg.Capacity
	r.Location = arg.Location
	m.rooms[r.ID] = r
	return r, nil
}

func (m *mockRoomStore) DeactivateRoom(_ context.Context, id uuid.UUID) (uuid.UUID, error) {
	r, ok := m.rooms[id]
	if !ok || !r.IsActive {
		return uuid.Nil, pgx.ErrNoRows
	}
	r.IsActive = false
	m.rooms[id] = r
	return id, nil
}

func (m *mockRoomStore) CreateTable(_ context.Context, arg database.CreateTableParams) (database.Table, error) {
	t := database.Table{
		ID:              uuid.New(),
		RoomID:          arg.RoomID,
		TableNumber:     arg.TableNumber,
		SeatingCapacity: arg.SeatingCapacity,
		TableType:       arg.TableType,
		Status:          enum.TableStatusAvailable,
		CreatedAt:       time.Now(),
		UpdatedAt:       time.Now(),
	}
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockRoomStore) GetTableInRoom(_ context.Context, arg database.GetTableInRoomParams) (database.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok || t.RoomID != arg.RoomID {
		return database.Table{}, pgx.ErrNoRows
	}
	return t, nil
}

func (m *mockRoomStore) ListTablesByRoom(_ context.Context, roomID uuid.UUID) ([]database.Table, error) {
	var result []database.Table
	for _, t := range m.tables {
		if t.RoomID == roomID {
			result = append(result, t)
		}
	}
	return result, nil
}

func (m *mockRoomStore) UpdateTable(_ context.Context, arg database.UpdateTableParams) (database.Table, error) {
	t, ok := m.tables[arg.ID]
	if !ok || t.RoomID != arg.RoomID {
		return database.Table{}, pgx.ErrNoRows
	}
	t.TableNumber = arg.TableNumber
	t.SeatingCapacity = arg.SeatingCapacity
	t.TableType = arg.TableType
	t.Status = arg.Status
	m.tables[t.ID] = t
	return t, nil
}

func (m *mockRoomStore) DeleteTable(_ context.Context, arg database.DeleteTableParams) (uuid.UUID, error) {
	t, ok := m.tables[arg.ID]
	if !ok || t.RoomID != arg.RoomID {
		return uuid.Nil, pgx.ErrNoRows
	}
	delete(m.tables, arg.ID)
	return arg.ID, nil
}

func (m *mockRoomStore) CountActiveTableRefs(_ context.Context, tableID uuid.UUID) (int64, error) {
	return m.tableRefs[tableID], nil
}

// --- Helpers ---

func setupRoomRouter(store *mockRoomStore) *chi.Mux {
	h := handler.NewRoomHandler(store)
	r := chi.NewRouter()
	h.RegisterRoutes(r)
	return r
}

func addRoom(store *mockRoomStore, name string) database.Room {
	r, _ := store.CreateRoom(context.Background(), database.CreateRoomParams{Name: name, Capacity: 40})
	return r
}

func addTable(store *mockRoomStore, roomID uuid.UUID, number string) database.Table {
	t, _ := store.CreateTable(context.Background(), database.CreateTableParams{
		RoomID:          roomID,
		TableNumber:     number,
		SeatingCapacity: 4,
		TableType:       enum.TableTypeStandard,
	})
	return t
}

// --- Tests ---

func TestRoomCreate(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)

	rr := doRequest(t, router, "POST", "/rooms/add", map[string]interface{}{
		"name":     "Main Hall",
		"capacity": 60,
		"location": "Ground floor",
	})

	if rr.Code != http.StatusCreated {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusCreated, rr.Body.String())
	}
	room := entityFromEnvelope(t, rr, "room")
	if room["name"] != "Main Hall" {
		t.Errorf("name = %v", room["name"])
	}
}

func TestRoomGet_IncludesTables(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Terrace")
	addTable(store, room.ID, "T1")
	addTable(store, room.ID, "T2")

	rr := doRequest(t, router, "GET", "/rooms/"+room.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	resp := entityFromEnvelope(t, rr, "room")
	tables := resp["tables"].([]interface{})
	if len(tables) != 2 {
		t.Errorf("expected 2 tables, got %d", len(tables))
	}
}

func TestRoomDelete_NotFound(t *testing.T) {
	router := setupRoomRouter(newMockRoomStore())

	rr := doRequest(t, router, "DELETE", "/rooms/"+uuid.NewString(), nil)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusNotFound)
	}
}

func TestTableCreate_InvalidType(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Patio")

	rr := doRequest(t, router, "POST", "/rooms/"+room.ID.String()+"/tables", map[string]interface{}{
		"table_number": "P1",
		"table_type":   "HAMMOCK",
	})

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusBadRequest)
	}
}

func TestTableUpdate_ManualHold(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Main Hall")
	table := addTable(store, room.ID, "T5")

	rr := doRequest(t, router, "PUT", "/rooms/"+room.ID.String()+"/tables/"+table.ID.String(),
		map[string]interface{}{
			"table_number":     "T5",
			"seating_capacity": 4,
			"table_type":       "STANDARD",
			"status":           "RESERVED",
		})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := entityFromEnvelope(t, rr, "table"); resp["status"] != "RESERVED" {
		t.Errorf("status = %v", resp["status"])
	}
}

func TestTableUpdate_AvailableRederivedWhenReferenced(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Main Hall")
	table := addTable(store, room.ID, "T6")
	store.tableRefs[table.ID] = 2

	// Client claims AVAILABLE, but two live tickets/orders still reference the
	// table; the write must land as OCCUPIED.
	rr := doRequest(t, router, "PUT", "/rooms/"+room.ID.String()+"/tables/"+table.ID.String(),
		map[string]interface{}{
			"table_number":     "T6",
			"seating_capacity": 4,
			"table_type":       "STANDARD",
			"status":           "AVAILABLE",
		})

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if resp := entityFromEnvelope(t, rr, "table"); resp["status"] != "OCCUPIED" {
		t.Errorf("status = %v, want OCCUPIED", resp["status"])
	}
}

func TestTableDelete_RefusedWhenActive(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Main Hall")
	table := addTable(store, room.ID, "T7")
	store.tableRefs[table.ID] = 1

	rr := doRequest(t, router, "DELETE", "/rooms/"+room.ID.String()+"/tables/"+table.ID.String(), nil)

	if rr.Code != http.StatusConflict {
		t.Fatalf("status: got %d, want %d", rr.Code, http.StatusConflict)
	}
	if _, ok := store.tables[table.ID]; !ok {
		t.Errorf("table should not have been deleted")
	}
}

func TestTableDelete(t *testing.T) {
	store := newMockRoomStore()
	router := setupRoomRouter(store)
	room := addRoom(store, "Main Hall")
	table := addTable(store, room.ID, "T8")

	rr := doRequest(t, router, "DELETE", "/rooms/"+room.ID.String()+"/tables/"+table.ID.String(), nil)

	if rr.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d; body: %s", rr.Code, http.StatusOK, rr.Body.String())
	}
	if _, ok := store.tables[table.ID]; ok {
		t.Errorf("table still present after delete")
	}
}
