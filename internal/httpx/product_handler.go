package httpx

import (
	"errors"
	"net/http"
	"strconv"

	"camrent-be/internal/product"
	"camrent-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type ProductHandler struct {
	svc product.Service
}

func NewProductHandler(svc product.Service) *ProductHandler {
	return &ProductHandler{svc: svc}
}

// List is the public catalog: active, non-deleted products only.
func (h *ProductHandler) List(w http.ResponseWriter, r *http.Request) {
	opts := product.QueryOptions{
		Category:   r.URL.Query().Get("category"),
		Search:     r.URL.Query().Get("search"),
		OnlyActive: true,
		Page:       queryInt32(r, "page"),
		Limit:      queryInt32(r, "limit"),
	}

	products, err := h.svc.GetList(r.Context(), opts)
	if err != nil {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []product.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

// AdminList includes inactive and soft-deleted products.
func (h *ProductHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	opts := product.QueryOptions{
		Category:       r.URL.Query().Get("category"),
		Search:         r.URL.Query().Get("search"),
		IncludeDeleted: true,
		Page:           queryInt32(r, "page"),
		Limit:          queryInt32(r, "limit"),
	}

	products, err := h.svc.GetList(r.Context(), opts)
	if err != nil {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if products == nil {
		products = []product.Product{}
	}

	respondJSON(w, http.StatusOK, products)
}

func (h *ProductHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	p, err := h.svc.GetByID(r.Context(), id, false)
	if err != nil {
		writeProductError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

type createProductRequest struct {
	Name        string  `json:"name"`
	Category    string  `json:"category"`
	PricePerDay float64 `json:"price_per_day"`
	Description *string `json:"description"`
	Image       *string `json:"image"`
	Quantity    int     `json:"quantity"`
}

func (h *ProductHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Create(r.Context(), product.NewProduct{
		Name:        req.Name,
		Category:    req.Category,
		PricePerDay: req.PricePerDay,
		Description: req.Description,
		ImageURL:    req.Image,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeProductError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, p)
}

type updateProductRequest struct {
	Name        *string         `json:"name"`
	Category    *string         `json:"category"`
	PricePerDay *float64        `json:"price_per_day"`
	Description *string         `json:"description"`
	Image       *string         `json:"image"`
	Quantity    *int            `json:"quantity"`
	Status      *product.Status `json:"status"`
}

func (h *ProductHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	var req updateProductRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Status != nil && *req.Status != product.StatusActive && *req.Status != product.StatusInactive {
		respondError(w, "invalid product status", http.StatusBadRequest)
		return
	}

	p, err := h.svc.Update(r.Context(), id, product.UpdateProduct{
		Name:        req.Name,
		Category:    req.Category,
		PricePerDay: req.PricePerDay,
		Description: req.Description,
		ImageURL:    req.Image,
		Quantity:    req.Quantity,
		Status:      req.Status,
	})
	if err != nil {
		writeProductError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, p)
}

func (h *ProductHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid product id", http.StatusBadRequest)
		return
	}

	if err := h.svc.SoftDelete(r.Context(), id); err != nil {
		writeProductError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "product deleted"})
}

func writeProductError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, product.ErrProductNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	case errors.Is(err, product.ErrNameRequired),
		errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidQuantity),
		errors.Is(err, product.ErrNoFieldsToSet):
		respondError(w, err.Error(), http.StatusBadRequest)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}

func queryInt32(r *http.Request, key string) int32 {
	v, err := strconv.ParseInt(r.URL.Query().Get(key), 10, 32)
	if err != nil {
		return 0
	}
	return int32(v)
}
