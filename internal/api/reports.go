package api

import (
	"net/http"

	"pos-service/internal/service"

	"github.com/gin-gonic/gin"
)

func dateRange(c *gin.Context) service.DateRange {
	return service.DateRange{Start: c.Query("start_date"), End: c.Query("end_date")}
}

// respondReport writes a report or the error that prevented it
func (h *Handler) respondReport(c *gin.Context, data interface{}, err error) {
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", data)
}

func (h *Handler) dailySales(c *gin.Context) {
	sales, err := h.reports.DailySales(c.Request.Context(), c.Query("date"))
	h.respondReport(c, sales, err)
}

func (h *Handler) popularItems(c *gin.Context) {
	limit, ok := h.queryInt(c, "limit")
	if !ok {
		return
	}
	items, err := h.reports.PopularItems(c.Request.Context(), dateRange(c), limit)
	h.respondReport(c, items, err)
}

func (h *Handler) revenueByCuisine(c *gin.Context) {
	revenue, err := h.reports.RevenueByCuisine(c.Request.Context(), dateRange(c))
	h.respondReport(c, revenue, err)
}

func (h *Handler) peakHours(c *gin.Context) {
	hours, err := h.reports.PeakHours(c.Request.Context(), c.Query("date"))
	h.respondReport(c, hours, err)
}

func (h *Handler) paymentMethods(c *gin.Context) {
	methods, err := h.reports.PaymentMethods(c.Request.Context(), dateRange(c))
	h.respondReport(c, methods, err)
}

func (h *Handler) weeklyComparison(c *gin.Context) {
	weekly, err := h.reports.WeeklyComparison(c.Request.Context())
	h.respondReport(c, weekly, err)
}

func (h *Handler) orderStatus(c *gin.Context) {
	statuses, err := h.reports.OrderStatusSummary(c.Request.Context())
	h.respondReport(c, statuses, err)
}
