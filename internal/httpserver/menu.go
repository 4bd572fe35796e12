package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	menusvc "strawbeary/internal/service/menu"
)

func (h *handlers) listMenu(c *gin.Context) {
	items, err := h.menu.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err, "Failed to fetch menu items")
		return
	}
	c.JSON(http.StatusOK, items)
}

func (h *handlers) createMenuItem(c *gin.Context) {
	var req menusvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Failed to create menu item"})
		return
	}
	item, err := h.menu.Create(c.Request.Context(), req)
	if err != nil {
		h.writeError(c, err, "Failed to create menu item")
		return
	}
	c.JSON(http.StatusCreated, item)
}
