package billing

import (
	"math"

	"github.com/clinicdesk/clinicdesk/pkg/clinicerr"
)

// DefaultGSTRate is the GST applied to clinic services.
const DefaultGSTRate = 0.18

// LineItem is one extra charge on top of the consultation fee. Order is
// preserved exactly as entered at the front desk.
type LineItem struct {
	Description string  `json:"description"`
	Amount      float64 `json:"amount"`
}

// Breakdown is the priced invoice. All figures are in whole-currency units;
// tax is rounded to the nearest rupee the way the front desk expects.
type Breakdown struct {
	Subtotal float64 `json:"subtotal"`
	Tax      float64 `json:"tax"`
	Discount float64 `json:"discount"`
	Total    float64 `json:"total"`
}

// ComputeBreakdown prices an invoice. It is a pure function: same inputs,
// same figures, no clock or database anywhere.
//
//	subtotal = baseFee + sum(items)
//	tax      = round(subtotal * rate)
//	total    = max(0, subtotal + tax - discount)
func ComputeBreakdown(baseFee float64, items []LineItem, discount, rate float64) (Breakdown, error) {
	if baseFee < 0 {
		return Breakdown{}, clinicerr.Validation("base_fee", "base fee cannot be negative")
	}
	if discount < 0 {
		return Breakdown{}, clinicerr.Validation("discount", "discount cannot be negative")
	}
	if rate < 0 || rate >= 1 {
		return Breakdown{}, clinicerr.Validation("rate", "tax rate must be in [0, 1)")
	}

	subtotal := baseFee
	for _, item := range items {
		if item.Amount < 0 {
			return Breakdown{}, clinicerr.Validationf("items", "line item %q has a negative amount", item.Description)
		}
		subtotal += item.Amount
	}

	tax := math.Round(subtotal * rate)

	total := subtotal + tax - discount
	if total < 0 {
		total = 0
	}

	return Breakdown{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: discount,
		Total:    total,
	}, nil
}
