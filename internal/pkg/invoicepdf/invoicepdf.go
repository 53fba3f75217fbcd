// Package invoicepdf 把发票渲染为 PDF
package invoicepdf

import (
	"bytes"
	"fmt"

	"github.com/go-pdf/fpdf"

	"github.com/qs3c/kidcare_server/internal/model"
)

// Document 渲染发票所需的全部数据
type Document struct {
	Invoice          *model.Invoice
	SiteName         string
	ServiceName      string
	ChildName        string
	SubscriptionCode string
}

const dateLayout = "2006-01-02"

// Render 渲染 A4 发票
func Render(doc *Document) ([]byte, error) {
	inv := doc.Invoice
	if inv == nil {
		return nil, fmt.Errorf("invoice is required")
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Invoice "+inv.InvoiceNumber, true)
	pdf.SetCreationDate(inv.IssuedAt)
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, doc.SiteName, "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 12)
	pdf.CellFormat(0, 8, "Invoice "+inv.InvoiceNumber, "", 1, "L", false, 0, "")
	pdf.Ln(4)

	pdf.SetFont("Helvetica", "", 10)
	rows := [][2]string{
		{"Billed to", inv.CustomerName},
		{"Email", inv.CustomerEmail},
		{"Child", doc.ChildName},
		{"Service", doc.ServiceName},
		{"Subscription", doc.SubscriptionCode},
		{"Issued", inv.IssuedAt.Format(dateLayout)},
		{"Due", inv.DueDate.Format(dateLayout)},
	}
	for _, r := range rows {
		pdf.CellFormat(40, 6, r[0], "", 0, "L", false, 0, "")
		pdf.CellFormat(0, 6, pdf.UnicodeTranslatorFromDescriptor("")(r[1]), "", 1, "L", false, 0, "")
	}
	pdf.Ln(6)

	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.CellFormat(100, 8, "Description", "1", 0, "L", true, 0, "")
	pdf.CellFormat(20, 8, "Qty", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Unit", "1", 0, "R", true, 0, "")
	pdf.CellFormat(25, 8, "Amount", "1", 1, "R", true, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range inv.Items {
		pdf.CellFormat(100, 8, truncate(item.Description, 60), "1", 0, "L", false, 0, "")
		pdf.CellFormat(20, 8, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, item.UnitPrice.StringFixed(2), "1", 0, "R", false, 0, "")
		pdf.CellFormat(25, 8, item.Amount.StringFixed(2), "1", 1, "R", false, 0, "")
	}
	pdf.Ln(4)

	totals := [][2]string{
		{"Subtotal", inv.Subtotal.StringFixed(2)},
		{"Discount", "-" + inv.DiscountAmount.StringFixed(2)},
		{"Total", inv.TotalAmount.StringFixed(2)},
	}
	for i, r := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Helvetica", "B", 11)
		}
		pdf.CellFormat(145, 7, r[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(25, 7, r[1], "", 1, "R", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("failed to render invoice %s: %w", inv.InvoiceNumber, err)
	}
	return buf.Bytes(), nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
