// Package invoice renders an order as a printable PDF with a QR code that
// points back at the order.
package invoice

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"

	"github.com/joao-fontenele/digitalshop/internal/domain"
)

const qrImageName = "order-qr"

type Options struct {
	ShopName string
	// OrderURL is formatted with the order id to build the QR payload. When
	// empty the QR code carries the bare id.
	OrderURL string
}

func DefaultOptions() Options {
	return Options{ShopName: "Digital Shop Nepal"}
}

func (o Options) qrPayload(orderID string) string {
	if o.OrderURL == "" {
		return orderID
	}
	if strings.Contains(o.OrderURL, "%s") {
		return fmt.Sprintf(o.OrderURL, orderID)
	}
	return strings.TrimRight(o.OrderURL, "/") + "/" + orderID
}

// The core PDF fonts have no rupee glyph.
func amount(d decimal.Decimal) string {
	return "Rs. " + d.StringFixed(2)
}

func Filename(order *domain.Order) string {
	return "invoice-" + order.ID + ".pdf"
}

// Render writes the invoice PDF for order to w.
func Render(w io.Writer, order *domain.Order, opts Options) error {
	qrPNG, err := qrcode.Encode(opts.qrPayload(order.ID), qrcode.Medium, 256)
	if err != nil {
		return fmt.Errorf("encode qr code: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.SetTitle("Invoice "+order.ID, true)
	pdf.SetAuthor(opts.ShopName, true)
	pdf.AddPage()

	pdf.SetFont("Arial", "B", 18)
	pdf.Cell(0, 10, tr(opts.ShopName))
	pdf.Ln(10)

	pdf.SetFont("Arial", "", 11)
	pdf.Cell(0, 6, "Invoice for order "+order.ID)
	pdf.Ln(6)
	pdf.Cell(0, 6, "Date: "+order.CreatedAt.Format("02 Jan 2006 15:04 MST"))
	pdf.Ln(6)
	pdf.Cell(0, 6, "Status: "+string(order.Status))
	pdf.Ln(10)

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader(qrImageName, imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions(qrImageName, 160, 12, 35, 35, false, imageOpts, 0, "")

	addr := order.Address
	pdf.SetFont("Arial", "B", 12)
	pdf.Cell(0, 7, "Ship to")
	pdf.Ln(7)
	pdf.SetFont("Arial", "", 11)
	for _, line := range []string{
		addr.Name,
		addr.Address,
		strings.TrimSpace(addr.Country + " " + addr.Pincode),
		"Mobile: " + addr.MobileNumber,
		"WhatsApp: " + addr.WhatsappNumber,
		"Email: " + order.Email,
	} {
		pdf.Cell(0, 6, tr(line))
		pdf.Ln(6)
	}
	pdf.Ln(6)

	widths := []float64{90, 30, 20, 40}
	pdf.SetFont("Arial", "B", 11)
	pdf.SetFillColor(230, 230, 230)
	for i, h := range []string{"Item", "Unit price", "Qty", "Line total"} {
		align := "R"
		if i == 0 {
			align = "L"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 10)
	for _, item := range order.Items {
		pdf.CellFormat(widths[0], 7, tr(truncate(item.Title, 48)), "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, amount(item.UnitPrice), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, fmt.Sprintf("%d", item.Quantity), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, amount(item.LineTotal()), "1", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}
	pdf.Ln(4)

	label := widths[0] + widths[1] + widths[2]
	totals := [][2]string{{"Subtotal", amount(order.Subtotal)}}
	if order.CouponUsed != "" {
		totals = append(totals, [2]string{"Discount (" + order.CouponUsed + ")", "- " + amount(order.DiscountApplied)})
	}
	totals = append(totals, [2]string{"Total", amount(order.TotalAmount)})
	for i, row := range totals {
		if i == len(totals)-1 {
			pdf.SetFont("Arial", "B", 11)
		}
		pdf.CellFormat(label, 7, row[0], "", 0, "R", false, 0, "")
		pdf.CellFormat(widths[3], 7, row[1], "", 0, "R", false, 0, "")
		pdf.Ln(-1)
	}

	pdf.Ln(8)
	pdf.SetFont("Arial", "I", 9)
	pdf.MultiCell(0, 5, "Digital goods are delivered to the email and WhatsApp number above. Scan the code to view this order.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}
