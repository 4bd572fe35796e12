package httpserver

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"strawbeary/internal/domain"
	ordersvc "strawbeary/internal/service/order"
)

const invalidOrderMessage = "Invalid order payload"

// placeOrderRequest keeps items and total raw so their JSON types can be checked.
type placeOrderRequest struct {
	SessionID string          `json:"sessionId"`
	Items     json.RawMessage `json:"items"`
	Total     json.RawMessage `json:"total"`
}

func (h *handlers) placeOrder(c *gin.Context) {
	var req placeOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: invalidOrderMessage})
		return
	}
	in, ok := req.toInput()
	if !ok {
		c.JSON(http.StatusBadRequest, errorResponse{Message: invalidOrderMessage})
		return
	}
	in.IdempotencyKey = c.GetHeader("Idempotency-Key")

	order, err := h.orders.PlaceOrder(c.Request.Context(), in)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidPayload) {
			c.JSON(http.StatusBadRequest, errorResponse{Message: invalidOrderMessage})
			return
		}
		h.writeError(c, err, "Failed to create order")
		return
	}
	c.JSON(http.StatusCreated, order)
}

func (h *handlers) listOrders(c *gin.Context) {
	orders, err := h.orders.ListOrders(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch orders")
		return
	}
	c.JSON(http.StatusOK, orders)
}

func (r placeOrderRequest) toInput() (ordersvc.PlaceInput, bool) {
	if r.SessionID == "" {
		return ordersvc.PlaceInput{}, false
	}
	items := bytes.TrimSpace(r.Items)
	if len(items) == 0 || items[0] != '[' {
		return ordersvc.PlaceInput{}, false
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(items, &lines); err != nil {
		return ordersvc.PlaceInput{}, false
	}
	total, ok := parseJSONNumber(r.Total)
	if !ok {
		return ordersvc.PlaceInput{}, false
	}
	return ordersvc.PlaceInput{SessionID: r.SessionID, Items: lines, Total: total}, true
}

// parseJSONNumber accepts only a bare JSON number, not a quoted one.
func parseJSONNumber(raw json.RawMessage) (decimal.Decimal, bool) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || raw[0] == '"' {
		return decimal.Decimal{}, false
	}
	var n json.Number
	if err := json.Unmarshal(raw, &n); err != nil {
		return decimal.Decimal{}, false
	}
	d, err := decimal.NewFromString(n.String())
	if err != nil {
		return decimal.Decimal{}, false
	}
	return d, true
}
