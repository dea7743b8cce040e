package api

import (
	"net/http"

	"pos-service/internal/models"
	"pos-service/internal/service"

	"github.com/gin-gonic/gin"
)

// createOrder handles order creation
func (h *Handler) createOrder(c *gin.Context) {
	var req service.CreateOrderRequest
	if !h.bindJSON(c, &req) {
		return
	}

	if req.IdempotencyKey == "" {
		req.IdempotencyKey = c.GetHeader("Idempotency-Key")
	}

	resp, err := h.orders.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Order created successfully", resp)
}

func orderListParams(c *gin.Context) service.OrderListParams {
	return service.OrderListParams{
		Status:    c.Query("status"),
		OrderType: c.Query("order_type"),
		Date:      c.Query("date"),
	}
}

func (h *Handler) listOrders(c *gin.Context) {
	h.respondOrders(c, orderListParams(c))
}

func (h *Handler) dineInOrders(c *gin.Context) {
	params := orderListParams(c)
	params.OrderType = models.OrderTypeDineIn
	h.respondOrders(c, params)
}

func (h *Handler) takeawayOrders(c *gin.Context) {
	params := orderListParams(c)
	params.OrderType = models.OrderTypeTakeaway
	h.respondOrders(c, params)
}

func (h *Handler) respondOrders(c *gin.Context, params service.OrderListParams) {
	orders, err := h.orders.ListOrders(c.Request.Context(), params)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", orders)
}

func (h *Handler) activeOrders(c *gin.Context) {
	orders, err := h.orders.ActiveOrders(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", orders)
}

// getOrder handles get order by ID
func (h *Handler) getOrder(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	order, err := h.orders.GetOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", order)
}

func (h *Handler) updateOrderStatus(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req service.UpdateOrderStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	order, err := h.orders.UpdateOrderStatus(c.Request.Context(), orderID, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order status updated successfully", order)
}

func (h *Handler) updateOrderItemStatus(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	itemID, ok := h.pathID(c, "item_id")
	if !ok {
		return
	}
	var req service.UpdateItemStatusRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.orders.UpdateOrderItemStatus(c.Request.Context(), orderID, itemID, &req); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order item status updated successfully", nil)
}

func (h *Handler) cancelOrder(c *gin.Context) {
	orderID, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.orders.CancelOrder(c.Request.Context(), orderID); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Order cancelled successfully", nil)
}

func (h *Handler) listTables(c *gin.Context) {
	tables, err := h.orders.ListTables(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", tables)
}
