package httpserver

import (
	"errors"
	"net/http"

	"chiringuito/internal/domain"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

type errorResponse struct {
	Message string `json:"message"`
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrUnavailable):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidArgument),
		errors.Is(err, domain.ErrLimitExceeded),
		errors.Is(err, domain.ErrInvalidState):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func (h *handlers) writeError(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Error(err),
		)
		c.JSON(status, errorResponse{Message: "Internal server error"})
		return
	}

	msg := err.Error()
	var de *domain.Error
	if errors.As(err, &de) {
		msg = de.Message
	}
	c.JSON(status, errorResponse{Message: msg})
}

func writeBindError(c *gin.Context, err error) {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		c.JSON(http.StatusBadRequest, errorResponse{Message: validationMessage(verrs[0])})
		return
	}
	c.JSON(http.StatusBadRequest, errorResponse{Message: "Malformed request body"})
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Field() {
	case "MenuItemID":
		if fe.Tag() == "required" {
			return "Menu item ID is required"
		}
		return "Menu item ID must be a valid UUID"
	case "Quantity":
		return "Quantity is required"
	default:
		return "Validation failed"
	}
}
