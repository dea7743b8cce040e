package service

import (
	"pos-service/internal/models"

	"github.com/shopspring/decimal"
)

const (
	GSTPercentage           = 5
	ServiceChargePercentage = 10
)

var (
	gstRate           = decimal.New(GSTPercentage, -2)
	serviceChargeRate = decimal.New(ServiceChargePercentage, -2)
)

// Totals are the money fields of an order
type Totals struct {
	Subtotal      decimal.Decimal
	GSTAmount     decimal.Decimal
	ServiceCharge decimal.Decimal
	TotalAmount   decimal.Decimal
}

// ComputeTotals applies GST to every order and the service charge to dine-in
// orders, rounding each charge to the minor unit
func ComputeTotals(subtotal decimal.Decimal, dineIn bool) Totals {
	subtotal = subtotal.Round(2)
	gst := subtotal.Mul(gstRate).Round(2)
	service := decimal.Zero
	if dineIn {
		service = subtotal.Mul(serviceChargeRate).Round(2)
	}
	return Totals{
		Subtotal:      subtotal,
		GSTAmount:     gst,
		ServiceCharge: service,
		TotalAmount:   subtotal.Add(gst).Add(service),
	}
}

// ChangeDue is the change handed back for a payment; only cash overpayment returns change
func ChangeDue(method string, received, total decimal.Decimal) decimal.Decimal {
	if method != models.PaymentMethodCash || received.LessThanOrEqual(total) {
		return decimal.Zero
	}
	return received.Sub(total)
}

func serviceChargePercentage(orderType string) int {
	if orderType == models.OrderTypeDineIn {
		return ServiceChargePercentage
	}
	return 0
}
