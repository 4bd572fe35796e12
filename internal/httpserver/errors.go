package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"strawbeary/internal/domain"
	"strawbeary/internal/logger"
)

type errorResponse struct {
	Message string `json:"message"`
}

// writeError maps service errors onto status codes. Anything unrecognised is
// a store failure: logged, answered with fallback, never retried.
func (h *handlers) writeError(c *gin.Context, err error, fallback string) {
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, errorResponse{Message: verr.Message})
	case errors.Is(err, domain.ErrDuplicateRequest):
		c.JSON(http.StatusConflict, errorResponse{Message: "Duplicate request"})
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, errorResponse{Message: "Not found"})
	default:
		_ = c.Error(err)
		logger.FromGin(c, h.logger).Error(fallback, zap.Error(err))
		c.JSON(http.StatusInternalServerError, errorResponse{Message: fallback})
	}
}
