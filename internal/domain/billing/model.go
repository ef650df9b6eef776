// Package billing prices consultations and walks invoices through their
// lifecycle: draft, pending, then paid or void.
package billing

import (
	"time"

	"github.com/google/uuid"
)

// Status is the invoice lifecycle state.
type Status string

const (
	// StatusDraft invoices are editable; nothing has been handed to the
	// patient yet.
	StatusDraft Status = "draft"
	// StatusPending invoices have been issued; figures are frozen.
	StatusPending Status = "pending"
	// StatusPaid is terminal.
	StatusPaid Status = "paid"
	// StatusVoid is terminal; voiding is an admin action.
	StatusVoid Status = "void"
)

// validTransitions is the whole lifecycle. Nothing leaves paid or void.
var validTransitions = map[Status][]Status{
	StatusDraft:   {StatusPending},
	StatusPending: {StatusPaid, StatusVoid},
}

// CanTransition reports whether from -> to is a legal lifecycle step.
func CanTransition(from, to Status) bool {
	for _, next := range validTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// PaymentMethod is how the patient settled the bill.
type PaymentMethod string

const (
	PaymentCash PaymentMethod = "cash"
	PaymentUPI  PaymentMethod = "upi"
	PaymentCard PaymentMethod = "card"
)

// ValidPaymentMethod reports whether m is one of the accepted methods.
func ValidPaymentMethod(m PaymentMethod) bool {
	switch m {
	case PaymentCash, PaymentUPI, PaymentCard:
		return true
	}
	return false
}

// Invoice maps to the invoice table. Once issued, the priced figures never
// change; corrections happen by voiding and re-invoicing.
type Invoice struct {
	ID             uuid.UUID      `db:"id" json:"id"`
	InvoiceNumber  string         `db:"invoice_number" json:"invoice_number"`
	ConsultationID uuid.UUID      `db:"consultation_id" json:"consultation_id"`
	PatientID      uuid.UUID      `db:"patient_id" json:"patient_id"`
	Status         Status         `db:"status" json:"status"`
	BaseFee        float64        `db:"base_fee" json:"base_fee"`
	Items          []LineItem     `json:"items"`
	Subtotal       float64        `db:"subtotal" json:"subtotal"`
	Tax            float64        `db:"tax" json:"tax"`
	Discount       float64        `db:"discount" json:"discount"`
	Total          float64        `db:"total" json:"total"`
	PaymentMethod  *PaymentMethod `db:"payment_method" json:"payment_method,omitempty"`
	CreatedBy      *uuid.UUID     `db:"created_by" json:"created_by,omitempty"`
	IssuedAt       *time.Time     `db:"issued_at" json:"issued_at,omitempty"`
	PaidAt         *time.Time     `db:"paid_at" json:"paid_at,omitempty"`
	VoidedAt       *time.Time     `db:"voided_at" json:"voided_at,omitempty"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

// Editable reports whether line items and figures may still change.
func (inv *Invoice) Editable() bool {
	return inv.Status == StatusDraft
}

// Active reports whether the invoice still counts against its consultation.
// A void invoice does not block re-invoicing.
func (inv *Invoice) Active() bool {
	return inv.Status != StatusVoid
}
