// Package memo renders credit memo documents.
package memo

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"html/template"
	"time"

	"github.com/shopspring/decimal"
	"github.com/skip2/go-qrcode"
)

type Line struct {
	Description string
	AmountCents int64
	TaxCents    int64
	TaxRate     decimal.Decimal
}

type Document struct {
	Number           string
	IssuedAt         time.Time
	BookingReference string
	PropertyName     string
	GuestName        string
	Currency         string
	Lines            []Line
	SubtotalCents    int64
	TaxCents         int64
	TotalCents       int64
}

// QRPayload is what the memo's QR code encodes.
func (d Document) QRPayload() string {
	return fmt.Sprintf("CREDITMEMO|%s|%s|%s|%s",
		d.Number, d.BookingReference, FormatCents(d.TotalCents), d.Currency)
}

// FormatCents renders minor units with two decimals.
func FormatCents(cents int64) string {
	return decimal.New(cents, -2).StringFixed(2)
}

var documentTemplate = template.Must(template.New("credit_memo").Funcs(template.FuncMap{
	"money": FormatCents,
	"percent": func(rate decimal.Decimal) string {
		return rate.Mul(decimal.NewFromInt(100)).StringFixed(2) + "%"
	},
}).Parse(`<!DOCTYPE html>
<html>
<head><meta charset="utf-8"><title>Credit memo {{.Doc.Number}}</title></head>
<body>
<h1>Credit memo {{.Doc.Number}}</h1>
<p>Issued {{.Doc.IssuedAt.Format "2006-01-02"}}</p>
<p>Booking {{.Doc.BookingReference}}{{if .Doc.PropertyName}} at {{.Doc.PropertyName}}{{end}}</p>
<p>Issued to {{.Doc.GuestName}}</p>
<table>
<thead><tr><th>Description</th><th>Tax rate</th><th>Tax</th><th>Amount</th></tr></thead>
<tbody>
{{range .Doc.Lines}}<tr><td>{{.Description}}</td><td>{{percent .TaxRate}}</td><td>{{money .TaxCents}}</td><td>{{money .AmountCents}}</td></tr>
{{end}}</tbody>
</table>
<p>Subtotal: {{money .Doc.SubtotalCents}} {{.Doc.Currency}}</p>
<p>Tax: {{money .Doc.TaxCents}} {{.Doc.Currency}}</p>
<p><strong>Total credited: {{money .Doc.TotalCents}} {{.Doc.Currency}}</strong></p>
<img alt="{{.Doc.Number}}" src="{{.QR}}">
</body>
</html>
`))

// Render produces the memo as a standalone HTML page with an embedded QR code.
func Render(doc Document) ([]byte, error) {
	png, err := qrcode.Encode(doc.QRPayload(), qrcode.Medium, 256)
	if err != nil {
		return nil, fmt.Errorf("encode memo qr code: %w", err)
	}

	var buf bytes.Buffer
	err = documentTemplate.Execute(&buf, struct {
		Doc Document
		QR  template.URL
	}{
		Doc: doc,
		QR:  template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(png)),
	})
	if err != nil {
		return nil, fmt.Errorf("render credit memo %s: %w", doc.Number, err)
	}

	return buf.Bytes(), nil
}
