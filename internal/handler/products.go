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
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dapur-pos/api/internal/database"
)

var errNegativePrice = errors.New("unit_price must be a non-negative decimal")

// ProductStore defines the database methods needed by inventory handlers.
type ProductStore interface {
	CreateProduct(ctx context.Context, arg database.CreateProductParams) (database.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (database.Product, error)
	ListProducts(ctx context.Context) ([]database.Product, error)
	ListLowStockProducts(ctx context.Context) ([]database.Product, error)
	UpdateProduct(ctx context.Context, arg database.UpdateProductParams) (database.Product, error)
	SoftDeleteProduct(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
}

// ProductHandler handles inventory endpoints.
type ProductHandler struct {
	store ProductStore
}

func NewProductHandler(store ProductStore) *ProductHandler {
	return &ProductHandler{store: store}
}

// RegisterRoutes registers inventory endpoints on the given Chi router.
func (h *ProductHandler) RegisterRoutes(r chi.Router) {
	r.Post("/inventory/add", h.Create)
	r.Get("/inventory/", h.List)
	r.Get("/inventory/low-stock/items", h.ListLowStock)
	r.Get("/inventory/{id}", h.Get)
	r.Put("/inventory/{id}", h.Update)
	r.Delete("/inventory/{id}", h.Delete)
}

// --- Request / Response types ---

type productRequest struct {
	CategoryID     string `json:"category_id"`
	Name           string `json:"name"`
	UnitPrice      string `json:"unit_price"`
	StockQuantity  int32  `json:"stock_quantity"`
	MinStockLevel  int32  `json:"min_stock_level"`
	StockResetDate string `json:"stock_reset_date"` // YYYY-MM-DD, optional
}

type productResponse struct {
	ID             uuid.UUID `json:"id"`
	CategoryID     uuid.UUID `json:"category_id"`
	Name           string    `json:"name"`
	UnitPrice      string    `json:"unit_price"`
	StockQuantity  int32     `json:"stock_quantity"`
	MinStockLevel  int32     `json:"min_stock_level"`
	StockResetDate string    `json:"stock_reset_date,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

func toProductResponse(p database.Product) productResponse {
	resp := productResponse{
		ID:            p.ID,
		CategoryID:    p.CategoryID,
		Name:          p.Name,
		UnitPrice:     moneyString(p.UnitPrice),
		StockQuantity: p.StockQuantity,
		MinStockLevel: p.MinStockLevel,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
	if p.StockResetDate.Valid {
		resp.StockResetDate = p.StockResetDate.Time.Format("2006-01-02")
	}
	return resp
}

// --- Handlers ---

// Create handles POST /inventory/add.
func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	arg, err := h.buildParams(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.StockQuantity < 0 || req.MinStockLevel < 0 {
		respondError(w, http.StatusBadRequest, "stock quantities must be non-negative")
		return
	}

	product, err := h.store.CreateProduct(r.Context(), database.CreateProductParams{
		CategoryID:     arg.CategoryID,
		Name:           arg.Name,
		UnitPrice:      arg.UnitPrice,
		StockQuantity:  req.StockQuantity,
		MinStockLevel:  arg.MinStockLevel,
		StockResetDate: arg.StockResetDate,
	})
	if err != nil {
		if isForeignKeyViolation(err) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		log.Printf("ERROR: failed to create product: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusCreated, "product", toProductResponse(product))
}

// List handles GET /inventory/.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list products: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond(w, http.StatusOK, "products", toProductResponses(products))
}

// ListLowStock handles GET /inventory/low-stock/items: products whose stock
// has fallen below their minimum level.
func (h *ProductHandler) ListLowStock(w http.ResponseWriter, r *http.Request) {
	products, err := h.store.ListLowStockProducts(r.Context())
	if err != nil {
		log.Printf("ERROR: failed to list low-stock products: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	respond(w, http.StatusOK, "products", toProductResponses(products))
}

// Get handles GET /inventory/{id}.
func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	product, err := h.store.GetProduct(r.Context(), id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("ERROR: failed to get product: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, "product", toProductResponse(product))
}

// Update handles PUT /inventory/{id}. Stock quantity is not editable here;
// only the ledger moves it.
func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	arg, err := h.buildParams(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	product, err := h.store.UpdateProduct(r.Context(), database.UpdateProductParams{
		ID:             id,
		CategoryID:     arg.CategoryID,
		Name:           arg.Name,
		UnitPrice:      arg.UnitPrice,
		MinStockLevel:  arg.MinStockLevel,
		StockResetDate: arg.StockResetDate,
	})
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		if isForeignKeyViolation(err) {
			respondError(w, http.StatusNotFound, "category not found")
			return
		}
		log.Printf("ERROR: failed to update product: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respond(w, http.StatusOK, "product", toProductResponse(product))
}

// Delete handles DELETE /inventory/{id} (soft delete).
func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid product id")
		return
	}

	if _, err := h.store.SoftDeleteProduct(r.Context(), id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			respondError(w, http.StatusNotFound, "product not found")
			return
		}
		log.Printf("ERROR: failed to delete product: %v", err)
		respondError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	respondMessage(w, http.StatusOK, "product deleted")
}

// --- Helpers ---

// buildParams validates the shared create/update fields.
func (h *ProductHandler) buildParams(req productRequest) (database.CreateProductParams, error) {
	if req.Name == "" {
		return database.CreateProductParams{}, errors.New("name is required")
	}
	categoryID, err := uuid.Parse(req.CategoryID)
	if err != nil {
		return database.CreateProductParams{}, errors.New("invalid category_id")
	}
	price, err := parseUnitPrice(req.UnitPrice)
	if err != nil {
		return database.CreateProductParams{}, err
	}
	if req.MinStockLevel < 0 {
		return database.CreateProductParams{}, errors.New("min_stock_level must be non-negative")
	}

	var resetDate pgtype.Date
	if req.StockResetDate != "" {
		day, err := time.Parse("2006-01-02", req.StockResetDate)
		if err != nil {
			return database.CreateProductParams{}, errors.New("stock_reset_date must be YYYY-MM-DD")
		}
		resetDate = pgtype.Date{Time: day, Valid: true}
	}

	return database.CreateProductParams{
		CategoryID:     categoryID,
		Name:           req.Name,
		UnitPrice:      price,
		MinStockLevel:  req.MinStockLevel,
		StockResetDate: resetDate,
	}, nil
}

func parseUnitPrice(s string) (pgtype.Numeric, error) {
	d, err := decimal.NewFromString(s)
	if err != nil || d.IsNegative() {
		return pgtype.Numeric{}, errNegativePrice
	}
	var n pgtype.Numeric
	if err := n.Scan(d.StringFixed(2)); err != nil {
		return pgtype.Numeric{}, errNegativePrice
	}
	return n, nil
}

func toProductResponses(products []database.Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp
}
