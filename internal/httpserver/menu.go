package httpserver

import (
	"encoding/json"
	"net/http"

	"chiringuito/internal/domain"
	menusvc "chiringuito/internal/service/menu"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

type handlers struct {
	logger *zap.Logger
	menu   menuService
	orders orderService
}

type menuItemResponse struct {
	ID          uuid.UUID   `json:"id"`
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Price       json.Number `json:"price"`
	ImageURL    string      `json:"imageUrl"`
	Available   bool        `json:"available"`
}

func (h *handlers) listMenu(c *gin.Context) {
	items, err := h.menu.List(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toMenuResponse(items))
}

func toMenuResponse(items []menusvc.Item) []menuItemResponse {
	out := make([]menuItemResponse, 0, len(items))
	for _, it := range items {
		out = append(out, menuItemResponse{
			ID:          it.ID,
			Name:        it.Name,
			Description: it.Description,
			Price:       money(it.Price),
			ImageURL:    it.ImageURL,
			Available:   it.Available,
		})
	}
	return out
}

// money renders d as a JSON number with two fraction digits.
func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(domain.MoneyScale))
}
