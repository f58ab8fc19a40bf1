package httpserver

import (
	"encoding/json"
	"net/http"

	ordersvc "chiringuito/internal/service/order"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type itemQuantityRequest struct {
	MenuItemID string `json:"menuItemId" binding:"required,uuid"`
	Quantity   *int   `json:"quantity" binding:"required"`
}

type orderSummaryResponse struct {
	OrderID     uuid.UUID           `json:"orderId"`
	Status      string              `json:"status"`
	TotalAmount json.Number         `json:"totalAmount"`
	ItemCount   int                 `json:"itemCount"`
	OrderLines  []orderLineResponse `json:"orderLines"`
}

type orderLineResponse struct {
	OrderLineID  uuid.UUID   `json:"orderLineId"`
	MenuItemID   uuid.UUID   `json:"menuItemId"`
	MenuItemName string      `json:"menuItemName"`
	Quantity     int         `json:"quantity"`
	UnitPrice    json.Number `json:"unitPrice"`
	LineTotal    json.Number `json:"lineTotal"`
}

func (h *handlers) addItem(c *gin.Context) {
	id, qty, ok := bindItemQuantity(c)
	if !ok {
		return
	}
	summary, err := h.orders.AddItem(c.Request.Context(), sessionFrom(c), id, qty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

func (h *handlers) getCart(c *gin.Context) {
	summary, ok, err := h.orders.GetCart(c.Request.Context(), sessionFrom(c))
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !ok {
		c.Status(http.StatusOK)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

func (h *handlers) updateQuantity(c *gin.Context) {
	id, qty, ok := bindItemQuantity(c)
	if !ok {
		return
	}
	summary, err := h.orders.UpdateQuantity(c.Request.Context(), sessionFrom(c), id, qty)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, toSummaryResponse(summary))
}

func (h *handlers) removeItem(c *gin.Context) {
	id, err := uuid.Parse(c.Param("menuItemId"))
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Invalid menu item id"})
		return
	}
	if err := h.orders.RemoveItem(c.Request.Context(), sessionFrom(c), id); err != nil {
		h.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func bindItemQuantity(c *gin.Context) (uuid.UUID, int, bool) {
	var req itemQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeBindError(c, err)
		return uuid.Nil, 0, false
	}
	id, err := uuid.Parse(req.MenuItemID)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Message: "Menu item ID must be a valid UUID"})
		return uuid.Nil, 0, false
	}
	return id, *req.Quantity, true
}

func toSummaryResponse(s *ordersvc.Summary) orderSummaryResponse {
	lines := make([]orderLineResponse, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, orderLineResponse{
			OrderLineID:  l.OrderLineID,
			MenuItemID:   l.MenuItemID,
			MenuItemName: l.MenuItemName,
			Quantity:     l.Quantity,
			UnitPrice:    money(l.UnitPrice),
			LineTotal:    money(l.LineTotal),
		})
	}
	return orderSummaryResponse{
		OrderID:     s.OrderID,
		Status:      s.Status,
		TotalAmount: money(s.TotalAmount),
		ItemCount:   s.ItemCount,
		OrderLines:  lines,
	}
}
