package api

import (
	"net/http"

	"pos-service/internal/service"
	"pos-service/internal/store"

	"github.com/gin-gonic/gin"
)

func (h *Handler) listMenu(c *gin.Context) {
	filter := store.MenuFilter{
		Cuisine:  c.Query("cuisine"),
		Category: c.Query("category"),
	}
	if raw := c.Query("available"); raw != "" {
		available := raw == "true"
		filter.Available = &available
	}

	items, err := h.menu.ListMenu(c.Request.Context(), filter)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", items)
}

func (h *Handler) listCuisines(c *gin.Context) {
	cuisines, err := h.menu.Cuisines(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", cuisines)
}

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.menu.Categories(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", categories)
}

func (h *Handler) getMenuItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	item, err := h.menu.GetMenuItem(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", item)
}

func (h *Handler) createMenuItem(c *gin.Context) {
	var req service.MenuItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.menu.CreateMenuItem(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Menu item created", item)
}

func (h *Handler) updateMenuItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req service.MenuItemRequest
	if !h.bindJSON(c, &req) {
		return
	}
	item, err := h.menu.UpdateMenuItem(c.Request.Context(), id, &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item updated", item)
}

func (h *Handler) setAvailability(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	var req service.AvailabilityRequest
	if !h.bindJSON(c, &req) {
		return
	}
	if err := h.menu.SetAvailability(c.Request.Context(), id, &req); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Availability updated", nil)
}

func (h *Handler) deleteMenuItem(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	if err := h.menu.DeleteMenuItem(c.Request.Context(), id); err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Menu item deleted", nil)
}
