// Package document renders clinic paperwork as PDFs.
package document

import (
	"fmt"

	"github.com/johnfercher/maroto/v2"
	"github.com/johnfercher/maroto/v2/pkg/components/col"
	"github.com/johnfercher/maroto/v2/pkg/components/line"
	"github.com/johnfercher/maroto/v2/pkg/components/text"
	"github.com/johnfercher/maroto/v2/pkg/config"
	"github.com/johnfercher/maroto/v2/pkg/consts/align"
	"github.com/johnfercher/maroto/v2/pkg/consts/fontstyle"
	"github.com/johnfercher/maroto/v2/pkg/props"
)

// InvoiceData carries everything the invoice PDF shows. Amounts arrive
// pre-formatted so the renderer never does money arithmetic.
type InvoiceData struct {
	ClinicName    string
	ClinicAddress string

	InvoiceNumber string
	IssueDate     string
	Status        string
	PaymentMethod string

	PatientName string
	PatientID   string
	PatientAge  string
	DoctorName  string

	Items []InvoiceItem

	Subtotal string
	Tax      string
	Discount string
	Total    string
}

// InvoiceItem is one line on the invoice.
type InvoiceItem struct {
	Description string
	Amount      string
}

// InvoiceRenderer builds invoice PDFs.
type InvoiceRenderer struct{}

func NewInvoiceRenderer() *InvoiceRenderer {
	return &InvoiceRenderer{}
}

// Render produces the PDF bytes for an invoice.
func (r *InvoiceRenderer) Render(data InvoiceData) ([]byte, error) {
	cfg := config.NewBuilder().
		WithPageNumber(props.PageNumber{
			Pattern: "Page {current} of {total}",
			Place:   props.RightBottom,
		}).
		Build()

	m := maroto.New(cfg)

	m.AddRow(14,
		text.NewCol(12, data.ClinicName, props.Text{
			Size:  18,
			Style: fontstyle.Bold,
			Align: align.Left,
		}),
	)
	m.AddRow(8,
		text.NewCol(12, data.ClinicAddress, props.Text{Size: 9}),
	)

	m.AddRow(12,
		text.NewCol(12, "Invoice", props.Text{
			Size:  14,
			Style: fontstyle.Bold,
			Top:   3,
		}),
	)

	m.AddRow(22,
		col.New(6).Add(
			text.New("Invoice number: "+data.InvoiceNumber, props.Text{Top: 0}),
			text.New("Date of issue: "+data.IssueDate, props.Text{Top: 5}),
			text.New("Status: "+data.Status, props.Text{Top: 10}),
			text.New("Payment method: "+paymentMethodLabel(data.PaymentMethod), props.Text{Top: 15}),
		),
		col.New(6).Add(
			text.New("Patient: "+data.PatientName, props.Text{Top: 0}),
			text.New("Patient ID: "+data.PatientID, props.Text{Top: 5}),
			text.New("Age: "+data.PatientAge, props.Text{Top: 10}),
			text.New("Consulting doctor: "+data.DoctorName, props.Text{Top: 15}),
		),
	)

	m.AddRow(10,
		text.NewCol(9, "Description", props.Text{Style: fontstyle.Bold, Size: 9}),
		text.NewCol(3, "Amount", props.Text{Style: fontstyle.Bold, Size: 9, Align: align.Right}),
	)
	m.AddRow(2, line.NewCol(12))

	for _, item := range data.Items {
		m.AddRow(8,
			text.NewCol(9, item.Description, props.Text{Size: 9}),
			text.NewCol(3, item.Amount, props.Text{Size: 9, Align: align.Right}),
		)
	}

	m.AddRow(2, line.NewCol(12))

	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "Subtotal", props.Text{Size: 9}),
		text.NewCol(2, data.Subtotal, props.Text{Size: 9, Align: align.Right}),
	)
	m.AddRow(8,
		col.New(7),
		text.NewCol(3, "GST", props.Text{Size: 9}),
		text.NewCol(2, data.Tax, props.Text{Size: 9, Align: align.Right}),
	)
	if data.Discount != "" {
		m.AddRow(8,
			col.New(7),
			text.NewCol(3, "Discount", props.Text{Size: 9}),
			text.NewCol(2, "-"+data.Discount, props.Text{Size: 9, Align: align.Right}),
		)
	}
	m.AddRow(10,
		col.New(7),
		text.NewCol(3, "Total", props.Text{Style: fontstyle.Bold, Size: 10}),
		text.NewCol(2, data.Total, props.Text{Style: fontstyle.Bold, Size: 10, Align: align.Right}),
	)

	m.AddRow(12,
		text.NewCol(12, "This is a computer generated invoice.", props.Text{
			Size: 8,
			Top:  5,
		}),
	)

	doc, err := m.Generate()
	if err != nil {
		return nil, fmt.Errorf("generate invoice pdf: %w", err)
	}
	return doc.GetBytes(), nil
}

func paymentMethodLabel(method string) string {
	switch method {
	case "cash":
		return "Cash"
	case "upi":
		return "UPI"
	case "card":
		return "Card"
	case "":
		return "Not recorded"
	default:
		return method
	}
}
