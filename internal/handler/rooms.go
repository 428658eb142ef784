package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
)

// RoomStore defines the database methods needed by room and table handlers.
type RoomStore interface {
	CreateRoom(ctx context.Context, arg database.CreateRoomParams) (database.Room, error)
	GetRoom(ctx context.Context, id uuid.UUID) (database.Room, error)
	ListRooms(ctx context.Context) ([]database.Room, error)
	UpdateRoom(ctx context.Context, arg database.UpdateRoomParams) (database.Room, error)
	DeactivateRoom(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateTable(ctx context.Context, arg database.CreateTableParams) (database.Table, error)
	GetTableInRoom(ctx context.Context, arg database.GetTableInRoomParams) (database.Table, error)
	ListTablesByRoom(ctx context.Context, roomID uuid.UUID) ([]database.Table, error)
	UpdateTable(ctx context.Context, arg database.UpdateTableParams) (database.Table, error)
	DeleteTable(ctx context.Context, arg database.DeleteTableParams) (uuid.UUID, error)
	CountActiveTableRefs(ctx context.Context, tableID uuid.UUID) (int64, error)
}

// RoomHandler handles room and table endpoints.
type RoomHandler struct {
	store RoomStore
}

func NewRoomHandler(store RoomStore) *RoomHandler {
	return &RoomHandler{store: store}
}

// RegisterRoutes registers room and table endpoints on the given Chi router.
func (h *RoomHandler) RegisterRoutes(r chi.Router) {
	r.Post("/rooms/add", h.Create)
	r.Get("/rooms/", h.List)
	r.Get("/rooms/{id}", h.Get)
	r.Put("/rooms/{id}", h.Update)
	r.Delete("/rooms/{id}", h.Delete)

	r.Post("/rooms/{roomId}/tables", h.CreateTable)
	r.Put("/rooms/{roomId}/tables/{tableId}", h.UpdateTable)
	r.Delete("/rooms/{roomId}/tables/{tableId}", h.DeleteTable)
}

// --- Request / Response types ---

type roomRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Capacity    int32  `json:"capacity"`
	Location    string `json:"location"`
}

type roomResponse struct {
	ID          uuid.UUID       `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description,omitempty"`
	Capacity    int32           `json:"capacity"`
	Location    string          `json:"location,omitempty"`
	Tables      []tableResponse `json:"tables,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type tableRequest struct {
	TableNumber     string `json:"table_number"`
	SeatingCapacity int32  `json:"seating_capacity"`
	TableType       string `json:"table_type"`
	Status          string `json:"status"`
}

type tableResponse struct {
	ID              uuid.UUID `json:"id"`
	RoomID          uuid.UUID `json:"room_id"`
	TableNumber     string    `json:"table_number"`
	SeatingCapacity int32     `json:"seating_capacity"`
	TableType       string    `json:"table_type"`
	Status          string    `json:"status"`
}

func toRoomResponse(room database.Room, tables []database.Table) roomResponse {
	resp := roomResponse{
		ID:          room.ID,
		Name:        room.Name,
		Description: room.Description.String,
		Capacity:    room.Capacity,
		Location:    room.Location.String,
		CreatedAt:   room.CreatedAt,
		UpdatedAt:   room.UpdatedAt,
	}
	for _, t := range tables {
		resp.Tables = append(resp.Tables, toTableResponse(t))
	}
	return resp
}

func toTableResponse(t database.Table) tableResponse {
	return tableResponse{
		ID:              t.ID,
		RoomID:          t.RoomID,
		TableNumber:     t.TableNumber,
		SeatingCapacity: t.SeatingCapacity,
		TableType:       t.TableType,
		Status:          t.Status,
	}
}

// --- Room handlers ---

// Create handles POST /rooms/add.
func (h *RoomHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}
	if req.Capacity < 0 {
		respondError(w, http.StatusBadRequest, "capacity must be non-negative")
		return
	}

	room, err := h.store.CreateRoom(r.Context(), database.CreateRoomParams{
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Capacity:    req.Capacity,
		Location:    textOrNull(req.Location),
	})
	if err != nil {
		log.Printf("ERROR: failed to create room: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusCreated, "room", toRoomResponse(room, nil))
}

// List handles GET /rooms/.
func (h *RoomHandler) List(w http.ResponseWriter, r *http.Request) {
	rooms, err := h.store.ListRooms(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list rooms: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]roomResponse, 0, len(rooms))
	for _, room := range rooms {
		resp = append(resp, toRoomResponse(room, nil))
	}
	respond(w, http.StatusOK, "rooms", resp)
}

// Get handles GET /rooms/{id}, returning the room with its tables.
func (h *RoomHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	room, err := h.store.GetRoom(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "room not found")
			return
		}
		log.Printf("ERROR: failed to get room: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tables, err := h.store.ListTablesByRoom(r.Context(), id)
	if err != nil {
		log.Printf("ERROR: failed to list tables: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, "room", toRoomResponse(room, tables))
}

// Update handles PUT /rooms/{id}.
func (h *RoomHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	var req roomRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	room, err := h.store.UpdateRoom(r.Context(), database.UpdateRoomParams{
		ID:          id,
		Name:        req.Name,
		Description: textOrNull(req.Description),
		Capacity:    req.Capacity,
		Location:    textOrNull(req.Location),
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "room not found")
			return
		}
		log.Printf("ERROR: failed to update room: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, "room", toRoomResponse(room, nil))
}

// Delete handles DELETE /rooms/{id} (deactivation, not erasure).
func (h *RoomHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	if _, err := h.store.DeactivateRoom(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "room not found")
			return
		}
		log.Printf("ERROR: failed to delete room: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondMessage(w, http.StatusOK, "room deleted")
}

// --- Table handlers ---

// CreateTable handles POST /rooms/{roomId}/tables.
func (h *RoomHandler) CreateTable(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TableNumber == "" {
		respondError(w, http.StatusBadRequest, "table_number is required")
		return
	}
	tableType := req.TableType
	if tableType == "" {
		tableType = enum.TableTypeStandard
	}
	if !isValidTableType(tableType) {
		respondError(w, http.StatusBadRequest, "invalid table_type")
		return
	}

	table, err := h.store.CreateTable(r.Context(), database.CreateTableParams{
		RoomID:          roomID,
		TableNumber:     req.TableNumber,
		SeatingCapacity: req.SeatingCapacity,
		TableType:       tableType,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			respondError(w, http.StatusNotFound, "room not found")
			return
		}
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "table number already exists in room")
			return
		}
		log.Printf("ERROR: failed to create table: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusCreated, "table", toTableResponse(table))
}

// UpdateTable handles PUT /rooms/{roomId}/tables/{tableId}. Operators may set
// RESERVED or OUT_OF_SERVICE here; AVAILABLE and OCCUPIED stay derived from
// live tickets and orders.
func (h *RoomHandler) UpdateTable(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	tableID, err := uuid.Parse(chi.URLParam(r, "tableId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid table id")
		return
	}

	var req tableRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.TableNumber == "" {
		respondError(w, http.StatusBadRequest, "table_number is required")
		return
	}
	if !isValidTableType(req.TableType) {
		respondError(w, http.StatusBadRequest, "invalid table_type")
		return
	}

	status := req.Status
	if status == "" {
		current, err := h.store.GetTableInRoom(r.Context(), database.GetTableInRoomParams{ID: tableID, RoomID: roomID})
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				respondError(w, http.StatusNotFound, "table not found")
				return
			}
			log.Printf("ERROR: failed to get table: %v", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		status = current.Status
	}
	if !isValidTableStatus(status) {
		respondError(w, http.StatusBadRequest, "invalid status")
		return
	}

	// Releasing a manual hold re-derives occupancy rather than trusting the
	// client's idea of AVAILABLE.
	if status == enum.TableStatusAvailable || status == enum.TableStatusOccupied {
		refs, err := h.store.CountActiveTableRefs(r.Context(), tableID)
		if err != nil {
			log.Printf("ERROR: failed to count table refs: %v", err)
			respondError(w, http.StatusInternalServerError, "internal server error")
			return
		}
		if refs > 0 {
			status = enum.TableStatusOccupied
		} else {
			status = enum.TableStatusAvailable
		}
	}

	table, err := h.store.UpdateTable(r.Context(), database.UpdateTableParams{
		ID:              tableID,
		RoomID:          roomID,
		TableNumber:     req.TableNumber,
		SeatingCapacity: req.SeatingCapacity,
		TableType:       req.TableType,
		Status:          status,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "table not found")
			return
		}
		if isUniqueViolation(err) {
			respondError(w, http.StatusConflict, "table number already exists in room")
			return
		}
		log.Printf("ERROR: failed to update table: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, "table", toTableResponse(table))
}

// DeleteTable handles DELETE /rooms/{roomId}/tables/{tableId}. A table with
// live tickets or orders refuses deletion.
func (h *RoomHandler) DeleteTable(w http.ResponseWriter, r *http.Request) {
	roomID, err := uuid.Parse(chi.URLParam(r, "roomId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid room id")
		return
	}
	tableID, err := uuid.Parse(chi.URLParam(r, "tableId"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid table id")
		return
	}

	refs, err := h.store.CountActiveTableRefs(r.Context(), tableID)
	if err != nil {
		log.Printf("ERROR: failed to count table refs: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if refs > 0 {
		respondError(w, http.StatusConflict, "table has active tickets or orders")
		return
	}

	if _, err := h.store.DeleteTable(r.Context(), database.DeleteTableParams{ID: tableID, RoomID: roomID}); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "table not found")
			return
		}
		log.Printf("ERROR: failed to delete table: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondMessage(w, http.StatusOK, "table deleted")
}

// --- Helpers ---

func isValidTableType(s string) bool {
	switch s {
	case enum.TableTypeStandard, enum.TableTypeBooth, enum.TableTypeHighTop, enum.TableTypeOutdoor:
		return true
	}
	return false
}

func isValidTableStatus(s string) bool {
	switch s {
	case enum.TableStatusAvailable, enum.TableStatusOccupied,
		enum.TableStatusReserved, enum.TableStatusOutOfService:
		return true
	}
	return false
}
