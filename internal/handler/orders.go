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

	"github.com/dapur-pos/api/internal/database"
	"github.com/dapur-pos/api/internal/enum"
	"github.com/dapur-pos/api/internal/ledger"
	"github.com/dapur-pos/api/internal/middleware"
	"github.com/dapur-pos/api/internal/service"
)

// OrderService defines the operations needed by the order handlers.
// Satisfied by *service.OrderService.
type OrderService interface {
	CreateOrder(ctx context.Context, req service.CreateOrderRequest) (*service.OrderResult, error)
	EditOrder(ctx context.Context, id string, req service.EditOrderRequest) (*service.OrderResult, error)
	UpdateStatus(ctx context.Context, id, newStatus string) (*database.Order, error)
	DeleteOrder(ctx context.Context, id, actor, reason string) (*database.Order, error)
	GetOrder(ctx context.Context, id string) (*service.OrderResult, error)
	ListOrders(ctx context.Context, status, tableID string) ([]database.Order, error)
	ListOrdersByUser(ctx context.Context, userID string) ([]database.Order, error)
	ListDeletions(ctx context.Context) ([]database.Order, error)
}

// OrderHandler handles order endpoints.
type OrderHandler struct {
	svc OrderService
}

func NewOrderHandler(svc OrderService) *OrderHandler {
	return &OrderHandler{svc: svc}
}

// RegisterRoutes registers order endpoints on the given Chi router.
func (h *OrderHandler) RegisterRoutes(r chi.Router) {
	r.Post("/order/add", h.Create)
	r.Get("/order/", h.List)
	r.Get("/order/deletions/history", h.DeletionHistory)
	r.Get("/order/single/{id}", h.Get)
	r.Get("/order/{userId}", h.ListByUser)
	r.Put("/order/update/{id}", h.Update)
	r.Delete("/order/delete/{id}", h.Delete)
}

// --- Request / Response types ---

type createOrderRequest struct {
	UserID         string                  `json:"user_id"`
	RoomID         string                  `json:"room_id"`
	TableID        string                  `json:"table_id"`
	PaymentMethod  string                  `json:"payment_method"`
	DiscountType   string                  `json:"discount_type"`
	DiscountValue  string                  `json:"discount_value"`
	DiscountReason string                  `json:"discount_reason"`
	TicketIDs      []string                `json:"ticket_ids"`
	Items          []orderItemRequestEntry `json:"items"`
}

type orderItemRequestEntry struct {
	ProductID string `json:"product_id"`
	Quantity  int32  `json:"quantity"`
}

// updateOrderRequest covers both shapes of PUT /order/update/{id}: a bare
// status advance ({"status": "IN_PROGRESS"}) or a full item/billing rewrite.
type updateOrderRequest struct {
	Status         string                  `json:"status"`
	PaymentMethod  string                  `json:"payment_method"`
	DiscountType   string                  `json:"discount_type"`
	DiscountValue  string                  `json:"discount_value"`
	DiscountReason string                  `json:"discount_reason"`
	Items          []orderItemRequestEntry `json:"items"`
}

type deleteOrderRequest struct {
	Reason string `json:"reason"`
}

type orderResponse struct {
	ID             uuid.UUID           `json:"id"`
	UserID         *uuid.UUID          `json:"user_id,omitempty"`
	RoomID         uuid.UUID           `json:"room_id"`
	TableID        uuid.UUID           `json:"table_id"`
	Status         string              `json:"status"`
	PaymentMethod  string              `json:"payment_method"`
	DiscountType   string              `json:"discount_type,omitempty"`
	DiscountValue  string              `json:"discount_value,omitempty"`
	DiscountReason string              `json:"discount_reason,omitempty"`
	Subtotal       string              `json:"subtotal"`
	TaxAmount      string              `json:"tax_amount"`
	TotalAmount    string              `json:"total_amount"`
	Items          []orderItemResponse `json:"items,omitempty"`
	TicketIDs      []uuid.UUID         `json:"ticket_ids,omitempty"`
	DeletedAt      *time.Time          `json:"deleted_at,omitempty"`
	DeletedBy      *uuid.UUID          `json:"deleted_by,omitempty"`
	DeleteReason   string              `json:"delete_reason,omitempty"`
	CreatedAt      time.Time           `json:"created_at"`
	UpdatedAt      time.Time           `json:"updated_at"`
}

type orderItemResponse struct {
	ID        uuid.UUID `json:"id"`
	ProductID uuid.UUID `json:"product_id"`
	Quantity  int32     `json:"quantity"`
	UnitPrice string    `json:"unit_price"`
}

func toOrderResponse(o database.Order, items []database.OrderItem, ticketIDs []uuid.UUID) orderResponse {
	resp := orderResponse{
		ID:            o.ID,
		RoomID:        o.RoomID,
		TableID:       o.TableID,
		Status:        o.Status,
		PaymentMethod: o.PaymentMethod,
		Subtotal:      moneyString(o.Subtotal),
		TaxAmount:     moneyString(o.TaxAmount),
		TotalAmount:   moneyString(o.TotalAmount),
		TicketIDs:     ticketIDs,
		CreatedAt:     o.CreatedAt,
		UpdatedAt:     o.UpdatedAt,
	}
	if o.UserID.Valid {
		userID := uuid.UUID(o.UserID.Bytes)
		resp.UserID = &userID
	}
	if o.DiscountType.Valid {
		resp.DiscountType = o.DiscountType.String
		resp.DiscountValue = moneyString(o.DiscountValue)
		resp.DiscountReason = o.DiscountReason.String
	}
	if o.DeletedAt.Valid {
		deletedAt := o.DeletedAt.Time
		resp.DeletedAt = &deletedAt
	}
	if o.DeletedBy.Valid {
		deletedBy := uuid.UUID(o.DeletedBy.Bytes)
		resp.DeletedBy = &deletedBy
	}
	if o.DeleteReason.Valid {
		resp.DeleteReason = o.DeleteReason.String
	}
	for _, item := range items {
		resp.Items = append(resp.Items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: moneyString(item.UnitPrice),
		})
	}
	return resp
}

// --- Handlers ---

// Create handles POST /order/add.
func (h *OrderHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	result, err := h.svc.CreateOrder(r.Context(), service.CreateOrderRequest{
		UserID:         req.UserID,
		RoomID:         req.RoomID,
		TableID:        req.TableID,
		PaymentMethod:  req.PaymentMethod,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		DiscountReason: req.DiscountReason,
		TicketIDs:      req.TicketIDs,
		Items:          toItemRequests(req.Items),
	})
	if err != nil {
		h.respondOrderError(w, err)
		return
	}

	respond(w, http.StatusCreated, "order", toOrderResponse(result.Order, result.Items, result.TicketIDs))
}

// List handles GET /order/ with optional ?status= and ?table_id= filters.
func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListOrders(r.Context(), r.URL.Query().Get("status"), r.URL.Query().Get("table_id"))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "orders", toOrderResponses(orders))
}

// ListByUser handles GET /order/{userId}. Staff may only list their own
// orders; admins may list anyone's.
func (h *OrderHandler) ListByUser(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userId")

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}
	if !canViewOtherUsers(claims.Role) && claims.UserID.String() != userID {
		respondError(w, http.StatusForbidden, "insufficient permissions")
		return
	}

	orders, err := h.svc.ListOrdersByUser(r.Context(), userID)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "orders", toOrderResponses(orders))
}

// Get handles GET /order/single/{id}.
func (h *OrderHandler) Get(w http.ResponseWriter, r *http.Request) {
	result, err := h.svc.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "order", toOrderResponse(result.Order, result.Items, result.TicketIDs))
}

// Update handles PUT /order/update/{id}. A body carrying only a status
// advances the state machine; a body carrying items rewrites the order.
func (h *OrderHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req updateOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id := chi.URLParam(r, "id")

	if req.Status != "" && len(req.Items) == 0 {
		order, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
		if err != nil {
			h.respondOrderError(w, err)
			return
		}
		respond(w, http.StatusOK, "order", toOrderResponse(*order, nil, nil))
		return
	}

	result, err := h.svc.EditOrder(r.Context(), id, service.EditOrderRequest{
		PaymentMethod:  req.PaymentMethod,
		DiscountType:   req.DiscountType,
		DiscountValue:  req.DiscountValue,
		DiscountReason: req.DiscountReason,
		Items:          toItemRequests(req.Items),
	})
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "order", toOrderResponse(result.Order, result.Items, result.TicketIDs))
}

// Delete handles DELETE /order/delete/{id}. The acting user comes from the
// JWT, the reason from the body; both land on the deletion record.
func (h *OrderHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req deleteOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	claims := middleware.ClaimsFromContext(r.Context())
	if claims == nil {
		respondError(w, http.StatusUnauthorized, "not authenticated")
		return
	}

	order, err := h.svc.DeleteOrder(r.Context(), chi.URLParam(r, "id"), claims.UserID.String(), req.Reason)
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "order", toOrderResponse(*order, nil, nil))
}

// DeletionHistory handles GET /order/deletions/history.
func (h *OrderHandler) DeletionHistory(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListDeletions(r.Context())
	if err != nil {
		h.respondOrderError(w, err)
		return
	}
	respond(w, http.StatusOK, "orders", toOrderResponses(orders))
}

// --- Helpers ---

func canViewOtherUsers(role string) bool {
	return role == enum.UserRoleOwner || role == enum.UserRoleManager
}

func toItemRequests(items []orderItemRequestEntry) []service.OrderItemRequest {
	reqs := make([]service.OrderItemRequest, 0, len(items))
	for _, item := range items {
		reqs = append(reqs, service.OrderItemRequest{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return reqs
}

func toOrderResponses(orders []database.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o, nil, nil))
	}
	return resp
}

func (h *OrderHandler) respondOrderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrEmptyItems),
		errors.Is(err, service.ErrInvalidQuantity),
		errors.Is(err, service.ErrInvalidProductID),
		errors.Is(err, service.ErrInvalidRoomID),
		errors.Is(err, service.ErrInvalidTableID),
		errors.Is(err, service.ErrInvalidTicketID),
		errors.Is(err, service.ErrInvalidOrderID),
		errors.Is(err, service.ErrInvalidUserID),
		errors.Is(err, service.ErrInvalidActorID),
		errors.Is(err, service.ErrInvalidPayment),
		errors.Is(err, service.ErrInvalidDiscount),
		errors.Is(err, service.ErrInvalidDiscountValue),
		errors.Is(err, service.ErrInvalidStatus),
		errors.Is(err, service.ErrEmptyReason):
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrTableNotFound),
		errors.Is(err, service.ErrTicketNotFound),
		errors.Is(err, service.ErrOrderNotFound),
		errors.Is(err, ledger.ErrProductUnavailable):
		respondError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrOrderTerminal),
		errors.Is(err, service.ErrOrderTransition),
		errors.Is(err, service.ErrOrderStateStale),
		errors.Is(err, ledger.ErrInsufficientStock):
		respondError(w, http.StatusConflict, err.Error())
	default:
		log.Printf("ERROR: order handler: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
	}
}
