package api

import (
	"net/http"

	"pos-service/internal/service"

	"github.com/gin-gonic/gin"
)

func (h *Handler) settlePayment(c *gin.Context) {
	var req service.SettlePaymentRequest
	if !h.bindJSON(c, &req) {
		return
	}
	resp, err := h.payments.SettlePayment(c.Request.Context(), &req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusCreated, "Payment processed successfully", resp)
}

func (h *Handler) listPayments(c *gin.Context) {
	payments, err := h.payments.ListPayments(c.Request.Context(), service.PaymentListParams{
		Date:          c.Query("date"),
		PaymentMethod: c.Query("payment_method"),
	})
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", payments)
}

func (h *Handler) getPayment(c *gin.Context) {
	id, ok := h.pathID(c, "id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPayment(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", payment)
}

func (h *Handler) getPaymentByOrder(c *gin.Context) {
	orderID, ok := h.pathID(c, "order_id")
	if !ok {
		return
	}
	payment, err := h.payments.GetPaymentByOrder(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", payment)
}

func (h *Handler) getBill(c *gin.Context) {
	orderID, ok := h.pathID(c, "order_id")
	if !ok {
		return
	}
	bill, err := h.payments.Bill(c.Request.Context(), orderID)
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", bill)
}

func (h *Handler) todaySummary(c *gin.Context) {
	summary, err := h.payments.TodaySummary(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	respond(c, http.StatusOK, "Success", summary)
}
