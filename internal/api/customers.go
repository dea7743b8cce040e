package api

import (
	"net/http"

	"pos-service/internal/service"
	"pos-service/internal/store"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listCustomers(c *gin.Context) {
	customers, err := h.customers.ListCustomers(c.Request.Context(), store.CustomerFilter{
		CustomerType: c.Query("customer_type"),
		Search:       c.Query("search"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", customers)
}

func (h *Handler) getCustomer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	customer, err := h.customers.GetCustomer(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", customer)
}

func (h *Handler) getCustomerByPhone(c *gin.Context) {
	customer, err := h.customers.GetCustomerByPhone(c.Request.Context(), c.Param("phone"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", customer)
}

func (h *Handler) createCustomer(c *gin.Context) {
	var req service.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.CreateCustomer(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Customer created successfully", customer)
}

func (h *Handler) updateCustomer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req service.CustomerRequest
	if !h.bindJSON(c, &req) {
		return
	}
	customer, err := h.customers.UpdateCustomer(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Customer updated successfully", customer)
}

func (h *Handler) deleteCustomer(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.customers.DeleteCustomer(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Customer deleted successfully", nil)
}

func (h *Handler) customerOrders(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	orders, err := h.customers.CustomerOrders(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", orders)
}

func (h *Handler) customerStats(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	stats, err := h.customers.CustomerStats(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", stats)
}
