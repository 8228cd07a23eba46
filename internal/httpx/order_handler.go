package httpx

import (
	"errors"
	"net/http"
	"time"

	"camrent-be/internal/order"
	"camrent-be/internal/utils"

	"github.com/go-chi/chi/v5"
)

type OrderHandler struct {
	svc order.Service
}

func NewOrderHandler(svc order.Service) *OrderHandler {
	return &OrderHandler{svc: svc}
}

type orderItemRequest struct {
	Product  uint    `json:"product"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	Image    *string `json:"image"`
}

type placeOrderRequest struct {
	Items     []orderItemRequest `json:"items"`
	Total     float64            `json:"total"`
	StartDate *time.Time         `json:"startDate"`
	EndDate   *time.Time         `json:"endDate"`
}

func (h *OrderHandler) Place(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	var req placeOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	items := make([]order.LineItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, order.LineItemInput{
			ProductID: it.Product,
			Name:      it.Name,
			Price:     it.Price,
			Quantity:  it.Quantity,
			ImageURL:  it.Image,
		})
	}

	o, err := h.svc.PlaceOrder(r.Context(), userID, order.PlaceOrderInput{
		Items:     items,
		Total:     req.Total,
		StartDate: req.StartDate,
		EndDate:   req.EndDate,
	})
	if err != nil {
		writeOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, o)
}

func (h *OrderHandler) List(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orders, err := h.svc.GetUserOrders(r.Context(), userID)
	if err != nil {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

func (h *OrderHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	userID, _ := utils.GetUserIDFromContext(r.Context())

	orderID, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	o, err := h.svc.CancelOrder(r.Context(), orderID, userID)
	if err != nil {
		writeOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) AdminList(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.GetAllOrders(r.Context())
	if err != nil {
		respondError(w, "internal server error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}

	respondJSON(w, http.StatusOK, orders)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *OrderHandler) AdminUpdateStatus(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, "invalid request body", http.StatusBadRequest)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), orderID, order.Status(req.Status))
	if err != nil {
		writeOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, o)
}

func (h *OrderHandler) AdminDelete(w http.ResponseWriter, r *http.Request) {
	orderID, err := utils.ToUint(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, "invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.svc.DeleteOrder(r.Context(), orderID); err != nil {
		writeOrderError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "order deleted"})
}

func writeOrderError(w http.ResponseWriter, err error) {
	var stockErr *order.InsufficientStockError

	switch {
	case errors.As(err, &stockErr):
		respondError(w, stockErr.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrNoItems),
		errors.Is(err, order.ErrInvalidQuantity),
		errors.Is(err, order.ErrInvalidStatus),
		errors.Is(err, order.ErrAlreadyCancelled):
		respondError(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, order.ErrOrderNotFound),
		errors.Is(err, order.ErrProductNotFound):
		respondError(w, err.Error(), http.StatusNotFound)
	default:
		respondError(w, "internal server error", http.StatusInternalServerError)
	}
}
