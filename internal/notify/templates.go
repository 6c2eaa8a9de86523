package notify

import (
	"bytes"
	"html/template"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/bakery/internal/models"
)

type InvoiceLine struct {
	Name     string
	Quantity int
	Price    decimal.Decimal
	Subtotal decimal.Decimal
}

type Invoice struct {
	OrderID    uint
	CustomerID uint
	CreatedAt  time.Time
	Lines      []InvoiceLine
	Total      decimal.Decimal
}

// InvoiceFrom builds the invoice from the order header and the lines that
// were inserted with it.
func InvoiceFrom(o *models.Order, items []models.OrderItem) Invoice {
	lines := make([]InvoiceLine, 0, len(items))
	for _, it := range items {
		lines = append(lines, InvoiceLine{
			Name:     it.ProductName,
			Quantity: it.Quantity,
			Price:    it.Price,
			Subtotal: it.Subtotal,
		})
	}
	return Invoice{
		OrderID:    o.ID,
		CustomerID: o.UserID,
		CreatedAt:  o.CreatedAt,
		Lines:      lines,
		Total:      o.TotalAmount,
	}
}

type DeliveryUpdate struct {
	OrderID uint
	Status  models.OrderStatus
}

var templates = template.Must(template.New("mail").Funcs(template.FuncMap{
	"money": func(d decimal.Decimal) string { return "$" + d.StringFixed(2) },
	"date":  func(t time.Time) string { return t.UTC().Format("2006-01-02 15:04 MST") },
}).Parse(`
{{define "otp"}}<h2>Your one-time password</h2>
<p>Use <strong>{{.Code}}</strong> to sign in. The code expires in {{.Minutes}} minutes.</p>
<p>If you did not request it, ignore this email.</p>{{end}}

{{define "invoice"}}<h2>Bakery Invoice #{{.OrderID}}</h2>
<p>Customer ID: {{.CustomerID}}<br>Date: {{date .CreatedAt}}</p>
<table border="1" cellpadding="6" cellspacing="0">
<tr><th>Item</th><th>Qty</th><th>Price</th><th>Subtotal</th></tr>
{{range .Lines}}<tr><td>{{.Name}}</td><td>{{.Quantity}}</td><td>{{money .Price}}</td><td>{{money .Subtotal}}</td></tr>
{{end}}</table>
<p><strong>Total: {{money .Total}}</strong></p>{{end}}

{{define "promotion"}}<h2>You have been promoted to Driver</h2>
<p>Sign in again to see the deliveries assigned to you.</p>{{end}}

{{define "delivery"}}<h2>Order #{{.OrderID}} update</h2>
<p>Your order is now <strong>{{.Status}}</strong>.</p>{{end}}
`))

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
