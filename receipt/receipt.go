package receipt

import (
	"bytes"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"agromart/models"

	"github.com/phpdave11/gofpdf"
	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

var ErrBadSignature = errors.New("receipt signature mismatch")

// Renderer builds PDF receipts whose QR code carries a signed order reference.
type Renderer struct {
	secret []byte
}

func NewRenderer(secret string) *Renderer {
	return &Renderer{secret: []byte(secret)}
}

// Payload returns "orderId|orderNumber|status|signature".
func (r *Renderer) Payload(o *models.MarketplaceOrder) string {
	data := fmt.Sprintf("%s|%s|%s", o.ID.Hex(), o.OrderNumber, o.Status)
	return data + "|" + r.sign(data)
}

// Verify checks a scanned payload and returns the order id it names.
func (r *Renderer) Verify(payload string) (string, error) {
	i := strings.LastIndex(payload, "|")
	if i < 0 {
		return "", ErrBadSignature
	}
	data, sig := payload[:i], payload[i+1:]
	if !hmac.Equal([]byte(sig), []byte(r.sign(data))) {
		return "", ErrBadSignature
	}
	id, _, _ := strings.Cut(data, "|")
	return id, nil
}

func (r *Renderer) sign(data string) string {
	h := hmac.New(sha256.New, r.secret)
	h.Write([]byte(data))
	return base64.RawURLEncoding.EncodeToString(h.Sum(nil))
}

// Render returns the receipt for o as a PDF document.
func (r *Renderer) Render(o *models.MarketplaceOrder) ([]byte, error) {
	qrPNG, err := qrcode.Encode(r.Payload(o), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode receipt qr: %w", err)
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.AddPage()
	pdf.SetFont("Arial", "B", 16)
	pdf.Cell(40, 10, "Order Receipt")
	pdf.Ln(12)

	pdf.SetFont("Arial", "", 12)
	pdf.Cell(0, 8, "Order: "+label(o))
	pdf.Ln(8)
	pdf.Cell(0, 8, "Placed: "+o.CreatedAt.Format("02 Jan 2006 15:04"))
	pdf.Ln(8)
	pdf.Cell(0, 8, "Status: "+string(o.Status))
	pdf.Ln(8)
	if o.PaymentMethod != "" {
		pdf.Cell(0, 8, "Payment: "+o.PaymentMethod)
		pdf.Ln(8)
	}
	if o.ShippingAddress != "" {
		pdf.MultiCell(120, 6, "Ship to: "+o.ShippingAddress, "", "L", false)
	}
	pdf.Ln(6)

	pdf.SetFont("Arial", "B", 11)
	pdf.CellFormat(90, 8, "Item", "B", 0, "L", false, 0, "")
	pdf.CellFormat(20, 8, "Qty", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Price", "B", 0, "R", false, 0, "")
	pdf.CellFormat(30, 8, "Amount", "B", 1, "R", false, 0, "")

	pdf.SetFont("Arial", "", 11)
	for _, it := range o.Items {
		pdf.CellFormat(90, 7, it.Name, "", 0, "L", false, 0, "")
		pdf.CellFormat(20, 7, fmt.Sprintf("%d", it.Quantity), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, money(it.Price), "", 0, "R", false, 0, "")
		pdf.CellFormat(30, 7, LineTotal(it).StringFixed(2), "", 1, "R", false, 0, "")
	}

	pdf.SetFont("Arial", "B", 12)
	pdf.CellFormat(140, 10, "Total", "T", 0, "R", false, 0, "")
	pdf.CellFormat(30, 10, money(o.Total), "T", 1, "R", false, 0, "")

	if o.Status == models.OrderCancelled {
		pdf.SetFont("Arial", "I", 11)
		pdf.Cell(0, 8, "Cancelled: "+o.CancellationReason)
		pdf.Ln(8)
	}

	imageOpts := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("qr", imageOpts, bytes.NewReader(qrPNG))
	pdf.ImageOptions("qr", 150, 20, 40, 40, false, imageOpts, 0, "")

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write receipt pdf: %w", err)
	}
	return buf.Bytes(), nil
}

func label(o *models.MarketplaceOrder) string {
	if o.OrderNumber != "" {
		return o.OrderNumber
	}
	return o.ID.Hex()
}

// money rounds half away from zero on the decimal value, so 2.675 prints as 2.68.
func money(v float64) string {
	return decimal.NewFromFloat(v).StringFixed(2)
}

// LineTotal is price times quantity without float drift.
func LineTotal(it models.OrderItem) decimal.Decimal {
	return decimal.NewFromFloat(it.Price).Mul(decimal.NewFromInt(int64(it.Quantity)))
}

// Filename is the attachment name used for o's receipt.
func Filename(o *models.MarketplaceOrder) string {
	return "receipt-" + label(o) + ".pdf"
}
