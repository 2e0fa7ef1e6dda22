package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/junaidrashid-git/storefront-api/models"
	"github.com/shopspring/decimal"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var funcMap = template.FuncMap{
	"money": formatMoney,
	"date":  formatDate,
	"title": statusTitle,
	"lineTotal": func(price decimal.Decimal, qty int) decimal.Decimal {
		return price.Mul(decimal.NewFromInt(int64(qty)))
	},
}

var templates = template.Must(template.New("mail").Funcs(funcMap).Parse(`
{{define "layout_start"}}<!DOCTYPE html><html><body style="font-family:Arial,sans-serif;color:#222;max-width:600px;margin:auto">{{end}}
{{define "layout_end"}}<p style="color:#888;font-size:12px">{{.StoreName}}</p></body></html>{{end}}

{{define "order_confirmation"}}{{template "layout_start"}}
<h2>Thanks for your order!</h2>
<p>Order <strong>{{.Order.OrderRef}}</strong> was placed on {{date .Order.CreatedAt}}.</p>
<table width="100%" cellpadding="6" style="border-collapse:collapse">
<tr style="background:#f4f4f4"><th align="left">Item</th><th>Qty</th><th align="right">Total</th></tr>
{{range .Order.Items}}<tr><td>{{.Name}}{{if .Color}} / {{.Color}}{{end}}{{if .Size}} / {{.Size}}{{end}}</td><td align="center">{{.Quantity}}</td><td align="right">{{money $.Currency (lineTotal .Price .Quantity)}}</td></tr>
{{end}}</table>
<p>Items: {{money .Currency .Order.ItemsPrice}}<br>
Shipping: {{money .Currency .Order.ShippingPrice}}<br>
Tax: {{money .Currency .Order.TaxPrice}}<br>
<strong>Total: {{money .Currency .Order.TotalPrice}}</strong></p>
<p>Expected delivery: {{date .Order.ExpectedDeliveryDate}}</p>
<p>Ship to: {{.Order.ShippingAddress.FullName}}, {{.Order.ShippingAddress.Street}}, {{.Order.ShippingAddress.City}} {{.Order.ShippingAddress.PostalCode}}, {{.Order.ShippingAddress.Country}}</p>
<p><a href="{{.OrderURL}}">View your order</a></p>
{{template "layout_end" .}}{{end}}

{{define "shipping_update"}}{{template "layout_start"}}
<h2>Your order is {{title .Order.Status}}</h2>
<p>Order <strong>{{.Order.OrderRef}}</strong> is now <strong>{{title .Order.Status}}</strong>.</p>
{{if .Order.TrackingNumber}}<p>Carrier: {{.Order.Carrier}}<br>Tracking number: {{.Order.TrackingNumber}}</p>{{end}}
<p>Expected delivery: {{date .Order.ExpectedDeliveryDate}}</p>
<p><a href="{{.OrderURL}}">Track your order</a></p>
{{template "layout_end" .}}{{end}}

{{define "contact_forward"}}{{template "layout_start"}}
<h2>New contact message</h2>
<p><strong>From:</strong> {{.Contact.Name}} &lt;{{.Contact.Email}}&gt;</p>
<p><strong>Subject:</strong> {{.Contact.Subject}}</p>
<p style="white-space:pre-wrap">{{.Contact.Message}}</p>
{{template "layout_end" .}}{{end}}
`))

// Templates renders the store's emails
type Templates struct {
	StoreName string
	PublicURL string
	Currency  string
}

type orderData struct {
	StoreName string
	Currency  string
	OrderURL  string
	Order     *models.Order
}

type contactData struct {
	StoreName string
	Contact   *models.ContactMessage
}

func (t Templates) orderURL(ref string) string {
	return strings.TrimSuffix(t.PublicURL, "/") + "/account/orders/" + ref
}

// OrderConfirmation renders the email sent after checkout. Items must be loaded.
func (t Templates) OrderConfirmation(order *models.Order, to string) (Message, error) {
	data := orderData{StoreName: t.StoreName, Currency: t.Currency, OrderURL: t.orderURL(order.OrderRef), Order: order}
	html, err := render("order_confirmation", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Order confirmation %s", order.OrderRef),
		HTML:    html,
		Text: fmt.Sprintf("Thanks for your order %s. Total: %s. Track it at %s",
			order.OrderRef, formatMoney(t.Currency, order.TotalPrice), data.OrderURL),
	}, nil
}

// ShippingUpdate renders the email sent when an order ships or is delivered
func (t Templates) ShippingUpdate(order *models.Order, to string) (Message, error) {
	data := orderData{StoreName: t.StoreName, Currency: t.Currency, OrderURL: t.orderURL(order.OrderRef), Order: order}
	html, err := render("shipping_update", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Your order %s is %s", order.OrderRef, statusTitle(order.Status)),
		HTML:    html,
		Text:    fmt.Sprintf("Order %s is %s. Track it at %s", order.OrderRef, statusTitle(order.Status), data.OrderURL),
	}, nil
}

// ContactForward renders a contact form message for the admin mailbox, replying to the sender
func (t Templates) ContactForward(msg *models.ContactMessage, to string) (Message, error) {
	html, err := render("contact_forward", contactData{StoreName: t.StoreName, Contact: msg})
	if err != nil {
		return Message{}, err
	}
	subject := msg.Subject
	if subject == "" {
		subject = "New message"
	}
	return Message{
		To:      []string{to},
		Subject: fmt.Sprintf("[Contact] %s", subject),
		HTML:    html,
		Text:    fmt.Sprintf("From: %s <%s>\n\n%s", msg.Name, msg.Email, msg.Message),
		ReplyTo: msg.Email,
	}, nil
}

func render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return buf.String(), nil
}

func formatMoney(currency string, d decimal.Decimal) string {
	amount := d.StringFixed(2)
	switch strings.ToUpper(currency) {
	case "USD", "":
		return "$" + amount
	case "EUR":
		return "€" + amount
	case "GBP":
		return "£" + amount
	default:
		return amount + " " + currency
	}
}

func formatDate(t time.Time) string {
	return t.Format("Mon, Jan 2 2006")
}

// statusTitle turns "ready_to_ship" into "Ready To Ship"
func statusTitle(status models.OrderStatus) string {
	return cases.Title(language.English).String(strings.ReplaceAll(string(status), "_", " "))
}
