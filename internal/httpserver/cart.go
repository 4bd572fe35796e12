package httpserver

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	cartsvc "strawbeary/internal/service/cart"
)

func (h *handlers) getCart(c *gin.Context) {
	cart, err := h.cart.Get(c.Request.Context(), c.Param("sessionId"))
	if err != nil {
		h.writeError(c, err, "Failed to fetch cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}

func (h *handlers) saveCart(c *gin.Context) {
	var req cartsvc.SaveInput
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		// A mistyped field still decodes sessionId, so its check comes first.
		var typeErr *json.UnmarshalTypeError
		if !errors.As(err, &typeErr) || req.SessionID != "" {
			c.JSON(http.StatusBadRequest, errorResponse{Message: "Failed to save cart"})
			return
		}
	}
	cart, err := h.cart.Save(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to save cart")
		return
	}
	c.JSON(http.StatusOK, cart)
}
