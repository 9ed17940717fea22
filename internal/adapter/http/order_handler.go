package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/armelle-pouzioux/GLesCrocs/internal/adapter/logger"
	"github.com/armelle-pouzioux/GLesCrocs/internal/domain"
	"github.com/armelle-pouzioux/GLesCrocs/internal/interfaces"
)

// OrderHandler serves the order-queue API:
//
//	GET   /api/orders                  today's active queue
//	POST  /api/orders                  create an order from a cart
//	GET   /api/orders/{id}             point lookup
//	PATCH /api/orders/{id}/{action}    advance the order's status
type OrderHandler struct {
	orders  interfaces.OrderService
	queue   interfaces.QueueService
	logger  logger.Logger
	timeout time.Duration
}

func NewOrderHandler(orders interfaces.OrderService, queue interfaces.QueueService, lgr logger.Logger, timeout time.Duration) *OrderHandler {
	return &OrderHandler{
		orders:  orders,
		queue:   queue,
		logger:  lgr,
		timeout: timeout,
	}
}

type createOrderRequest struct {
	Items []cartLineRequest `json:"items"`
}

type cartLineRequest struct {
	MenuItemID int64 `json:"menu_item_id"`
	Quantity   int   `json:"qty"`
}

type orderResponse struct {
	ID               int64               `json:"id"`
	ServiceDate      string              `json:"service_date"`
	TicketNumber     int                 `json:"ticket_number"`
	Status           string              `json:"status"`
	TotalCents       int64               `json:"total_cents"`
	EstimatedPrepSec int                 `json:"estimated_prep_sec"`
	Items            []orderItemResponse `json:"items,omitempty"`
	ValidatedAt      time.Time           `json:"validated_at"`
	PreparingAt      *time.Time          `json:"preparing_at,omitempty"`
	PaidAt           *time.Time          `json:"paid_at,omitempty"`
	ReadyAt          *time.Time          `json:"ready_at,omitempty"`
	CompletedAt      *time.Time          `json:"completed_at,omitempty"`
	CancelledAt      *time.Time          `json:"cancelled_at,omitempty"`
}

type orderItemResponse struct {
	MenuItemID     int64  `json:"menu_item_id"`
	Name           string `json:"name"`
	Quantity       int    `json:"qty"`
	UnitPriceCents int64  `json:"unit_price_cents"`
}

type queueResponse struct {
	ServiceDate string          `json:"service_date"`
	Orders      []orderResponse `json:"orders"`
}

// HandleOrders routes everything under /api/orders.
func (h *OrderHandler) HandleOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()
	r = r.WithContext(ctx)

	rest := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/orders"), "/")

	if rest == "" {
		switch r.Method {
		case http.MethodGet:
			h.listQueue(w, r)
		case http.MethodPost:
			h.createOrder(w, r)
		default:
			writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
		}
		return
	}

	parts := strings.Split(rest, "/")
	orderID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil || orderID < 1 {
		writeError(w, http.StatusNotFound, codeNotFound, "order not found")
		return
	}

	switch {
	case len(parts) == 1 && r.Method == http.MethodGet:
		h.getOrder(w, r, orderID)
	case len(parts) == 2 && r.Method == http.MethodPatch:
		h.applyAction(w, r, orderID, domain.Action(parts[1]))
	default:
		writeError(w, http.StatusMethodNotAllowed, codeMethodNotAllowed, "method not allowed")
	}
}

func (h *OrderHandler) listQueue(w http.ResponseWriter, r *http.Request) {
	serviceDate, orders, err := h.queue.ActiveQueue(r.Context())
	if err != nil {
		h.respondDomainError(w, r, "queue_list_failed", err)
		return
	}

	resp := queueResponse{
		ServiceDate: serviceDate,
		Orders:      make([]orderResponse, 0, len(orders)),
	}
	for _, o := range orders {
		resp.Orders = append(resp.Orders, toOrderResponse(o, false))
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *OrderHandler) createOrder(w http.ResponseWriter, r *http.Request) {
	var req createOrderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, codeValidation, "invalid request body")
		return
	}

	cmd := interfaces.CreateOrderCommand{
		Lines: make([]interfaces.CartLine, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		cmd.Lines = append(cmd.Lines, interfaces.CartLine{
			MenuItemID: item.MenuItemID,
			Quantity:   item.Quantity,
		})
	}

	order, err := h.orders.CreateOrder(r.Context(), cmd)
	if err != nil {
		h.respondDomainError(w, r, "order_creation_failed", err)
		return
	}

	writeJSON(w, http.StatusCreated, toOrderResponse(order, true))
}

func (h *OrderHandler) getOrder(w http.ResponseWriter, r *http.Request, orderID int64) {
	order, err := h.queue.GetOrder(r.Context(), orderID)
	if err != nil {
		h.respondDomainError(w, r, "order_lookup_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, true))
}

func (h *OrderHandler) applyAction(w http.ResponseWriter, r *http.Request, orderID int64, action domain.Action) {
	order, err := h.orders.ApplyAction(r.Context(), orderID, action)
	if err != nil {
		h.respondDomainError(w, r, "status_change_failed", err)
		return
	}

	writeJSON(w, http.StatusOK, toOrderResponse(order, true))
}

func (h *OrderHandler) respondDomainError(w http.ResponseWriter, r *http.Request, action string, err error) {
	switch {
	case domain.IsInvalidInput(err):
		writeError(w, http.StatusUnprocessableEntity, codeValidation, err.Error())
	case domain.IsNotFound(err):
		writeError(w, http.StatusNotFound, codeNotFound, err.Error())
	case errors.Is(err, domain.ErrIllegalTransition):
		writeError(w, http.StatusConflict, codeBusinessRule, err.Error())
	case errors.Is(err, domain.ErrUnavailable):
		writeError(w, http.StatusServiceUnavailable, codeUnavailable, "temporarily unavailable, retry later")
	default:
		h.logger.Error(action, "Unexpected failure", requestIDFrom(r.Context()), nil, err)
		writeError(w, http.StatusInternalServerError, codeServerError, "internal server error")
	}
}

func toOrderResponse(o *domain.Order, withItems bool) orderResponse {
	resp := orderResponse{
		ID:               o.ID,
		ServiceDate:      o.ServiceDate,
		TicketNumber:     o.TicketNumber,
		Status:           string(o.Status),
		TotalCents:       o.TotalCents,
		EstimatedPrepSec: o.EstimatedPrepSec,
		ValidatedAt:      o.ValidatedAt,
		PreparingAt:      o.PreparingAt,
		PaidAt:           o.PaidAt,
		ReadyAt:          o.ReadyAt,
		CompletedAt:      o.CompletedAt,
		CancelledAt:      o.CancelledAt,
	}
	if withItems {
		for _, line := range o.Lines {
			resp.Items = append(resp.Items, orderItemResponse{
				MenuItemID:     line.MenuItemID,
				Name:           line.NameSnapshot,
				Quantity:       line.Quantity,
				UnitPriceCents: line.UnitPriceCents,
			})
		}
	}
	return resp
}
