// Package httptransport exposes the services over HTTP. It only decodes
// requests, parses status strings at the boundary, and maps results and
// sentinel errors to responses; all business rules live below.
package httptransport

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/shopspring/decimal"

	"github.com/storelane/fulfillment/internal/application/catalog"
	appcustomer "github.com/storelane/fulfillment/internal/application/customer"
	"github.com/storelane/fulfillment/internal/application/fulfillment"
	domcustomer "github.com/storelane/fulfillment/internal/domain/customer"
	"github.com/storelane/fulfillment/internal/domain/order"
	"github.com/storelane/fulfillment/internal/domain/payment"
	"github.com/storelane/fulfillment/internal/domain/product"
)

type Handler struct {
	fulfillment *fulfillment.Service
	catalog     *catalog.Service
	customers   *appcustomer.Service
}

func NewHandler(f *fulfillment.Service, c *catalog.Service, cu *appcustomer.Service) *Handler {
	return &Handler{fulfillment: f, catalog: c, customers: cu}
}

func (h *Handler) Router() http.Handler {
	r := mux.NewRouter()

	r.HandleFunc("/orders", h.handleCreateOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders", h.handleListOrders).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}", h.handleGetOrder).Methods(http.MethodGet)
	r.HandleFunc("/orders/{id}/confirm", h.handleConfirmOrder).Methods(http.MethodPost)
	r.HandleFunc("/orders/{id}/status", h.handleUpdateOrderStatus).Methods(http.MethodPut)

	r.HandleFunc("/payments", h.handleMakePayment).Methods(http.MethodPost)
	r.HandleFunc("/payments/{id}", h.handleGetPayment).Methods(http.MethodGet)
	r.HandleFunc("/payments/{id}/status", h.handleUpdatePaymentStatus).Methods(http.MethodPut)

	r.HandleFunc("/products", h.handleCreateProduct).Methods(http.MethodPost)
	r.HandleFunc("/products", h.handleListProducts).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.handleGetProduct).Methods(http.MethodGet)
	r.HandleFunc("/products/{id}", h.handleUpdateProduct).Methods(http.MethodPut)
	r.HandleFunc("/products/{id}", h.handleDeleteProduct).Methods(http.MethodDelete)

	r.HandleFunc("/customers", h.handleCreateCustomer).Methods(http.MethodPost)
	r.HandleFunc("/customers", h.handleListCustomers).Methods(http.MethodGet)
	r.HandleFunc("/customers/{id}", h.handleGetCustomer).Methods(http.MethodGet)
	r.HandleFunc("/customers/{id}", h.handleUpdateCustomer).Methods(http.MethodPut)

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	return r
}

type orderItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

type createOrderRequest struct {
	CustomerID string             `json:"customer_id"`
	Items      []orderItemRequest `json:"items"`
}

type workflowResponse struct {
	Success bool   `json:"success"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (h *Handler) handleCreateOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	items := make([]fulfillment.ItemInput, len(req.Items))
	for i, it := range req.Items {
		items[i] = fulfillment.ItemInput{ProductID: it.ProductID, Quantity: it.Quantity}
	}

	res, err := h.fulfillment.CreateOrder(r.Context(), req.CustomerID, items)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !res.Created {
		writeRejection(w, res.Reason, res.Message)
		return
	}
	writeJSON(w, http.StatusCreated, workflowResponse{
		Success: true,
		Message: res.Message,
		Data: map[string]any{
			"order_id": res.OrderID,
			"status":   res.Status,
		},
	})
}

func (h *Handler) handleListOrders(w http.ResponseWriter, r *http.Request) {
	status, err := order.ParseStatus(r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	orders, err := h.fulfillment.OrdersByStatus(r.Context(), status)
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

func (h *Handler) handleGetOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.fulfillment.Order(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, o)
}

func (h *Handler) handleConfirmOrder(w http.ResponseWriter, r *http.Request) {
	res, err := h.fulfillment.ConfirmOrder(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFault(w, err)
		return
	}
	if !res.Confirmed {
		writeRejection(w, res.Reason, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse{
		Success: true,
		Message: res.Message,
		Data: map[string]any{
			"order_id": res.OrderID,
			"status":   res.Status,
		},
	})
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *Handler) handleUpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	next, err := order.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.fulfillment.UpdateOrderStatus(r.Context(), mux.Vars(r)["id"], next)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !res.Updated {
		writeRejection(w, res.Reason, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse{
		Success: true,
		Message: res.Message,
		Data: map[string]any{
			"order_id": res.OrderID,
			"status":   res.Status,
		},
	})
}

type makePaymentRequest struct {
	OrderID     string          `json:"order_id"`
	Amount      decimal.Decimal `json:"amount"`
	PaymentType string          `json:"payment_type"`
}

func (h *Handler) handleMakePayment(w http.ResponseWriter, r *http.Request) {
	var req makePaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.fulfillment.MakePayment(r.Context(), req.OrderID, req.Amount, req.PaymentType)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !res.Created {
		writeRejection(w, res.Reason, res.Message)
		return
	}
	writeJSON(w, http.StatusCreated, workflowResponse{
		Success: true,
		Message: res.Message,
		Data: map[string]any{
			"payment_id": res.PaymentID,
			"status":     res.Status,
		},
	})
}

func (h *Handler) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	p, err := h.fulfillment.Payment(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdatePaymentStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	next, err := payment.ParseStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	res, err := h.fulfillment.UpdatePaymentStatus(r.Context(), mux.Vars(r)["id"], next)
	if err != nil {
		writeFault(w, err)
		return
	}
	if !res.Updated {
		writeRejection(w, res.Reason, res.Message)
		return
	}
	writeJSON(w, http.StatusOK, workflowResponse{
		Success: true,
		Message: res.Message,
		Data: map[string]any{
			"payment_id": res.PaymentID,
			"status":     res.Status,
		},
	})
}

type productRequest struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Price       decimal.Decimal `json:"price"`
	Quantity    int             `json:"quantity"`
}

func (h *Handler) handleCreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.catalog.CreateProduct(r.Context(), catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (h *Handler) handleListProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.Products(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) handleGetProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.catalog.Product(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleUpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	p, err := h.catalog.UpdateProduct(r.Context(), mux.Vars(r)["id"], catalog.ProductInput{
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *Handler) handleDeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.catalog.DeleteProduct(r.Context(), mux.Vars(r)["id"]); err != nil {
		writeFault(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type customerRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Address string `json:"address"`
}

func (h *Handler) handleCreateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.customers.CreateCustomer(r.Context(), appcustomer.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

func (h *Handler) handleListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.Customers(r.Context())
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) handleGetCustomer(w http.ResponseWriter, r *http.Request) {
	c, err := h.customers.Customer(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func (h *Handler) handleUpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req customerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	c, err := h.customers.UpdateCustomer(r.Context(), mux.Vars(r)["id"], appcustomer.CustomerInput{
		Name:    req.Name,
		Email:   req.Email,
		Address: req.Address,
	})
	if err != nil {
		writeFault(w, err)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

func decodeJSON(r *http.Request, dst any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dst)
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, workflowResponse{Success: false, Message: err.Error()})
}

func writeRejection(w http.ResponseWriter, reason fulfillment.FailureReason, message string) {
	status := http.StatusUnprocessableEntity
	switch reason {
	case fulfillment.ReasonOrderNotFound, fulfillment.ReasonPaymentNotFound, fulfillment.ReasonProductNotFound:
		status = http.StatusNotFound
	case fulfillment.ReasonValidation, fulfillment.ReasonAmountMismatch:
		status = http.StatusBadRequest
	case fulfillment.ReasonInvalidTransition, fulfillment.ReasonNotEligible:
		status = http.StatusConflict
	}
	writeJSON(w, status, workflowResponse{Success: false, Reason: string(reason), Message: message})
}

// writeFault maps sentinel lookup errors from the query paths; anything else
// is an internal storage fault.
func writeFault(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, order.ErrNotFound),
		errors.Is(err, payment.ErrNotFound),
		errors.Is(err, product.ErrNotFound),
		errors.Is(err, domcustomer.ErrNotFound):
		writeError(w, http.StatusNotFound, err)
	case errors.Is(err, product.ErrInvalidPrice),
		errors.Is(err, product.ErrInvalidQuantity):
		writeError(w, http.StatusBadRequest, err)
	default:
		writeError(w, http.StatusInternalServerError, err)
	}
}
