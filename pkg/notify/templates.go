package notify

import (
	"bytes"
	"fmt"
	"text/template"
	"time"

	"github.com/shopspring/decimal"
)

var statusMessages = map[string]string{
	"pending":          "Your order has been placed and is pending confirmation",
	"confirmed":        "Your order has been confirmed and is being prepared",
	"preparing":        "Your order is being prepared",
	"ready":            "Your order is ready for pickup/delivery",
	"out_for_delivery": "Your order is out for delivery",
	"delivered":        "Your order has been delivered",
	"cancelled":        "Your order has been cancelled",
}

// StatusMessage returns the customer-facing line for a status.
func StatusMessage(status string) string {
	if m, ok := statusMessages[status]; ok {
		return m
	}
	return "Your order status has been updated"
}

type LineData struct {
	Name                string
	Quantity            int
	Price               decimal.Decimal
	SpecialInstructions string
}

type OrderData struct {
	OrderID             uint
	OrderNumber         string
	TenantID            uint
	CustomerName        string
	CustomerEmail       string
	MerchantName        string
	MerchantEmail       string
	Items               []LineData
	Subtotal            decimal.Decimal
	DeliveryFee         decimal.Decimal
	Total               decimal.Decimal
	Address             string
	OrderType           string
	EstimatedDelivery   *time.Time
	SpecialInstructions string
	Status              string
}

type StatusData struct {
	OrderID           uint
	OrderNumber       string
	TenantID          uint
	NewStatus         string
	PreviousStatus    string
	CustomerName      string
	CustomerEmail     string
	MerchantName      string
	EstimatedDelivery *time.Time
	UpdateMessage     string
}

var funcs = template.FuncMap{
	"when": func(t *time.Time) string {
		if t == nil {
			return ""
		}
		return t.Format("2006-01-02 15:04")
	},
}

var customerTmpl = template.Must(template.New("customer").Funcs(funcs).Parse(`Hello {{.CustomerName}},

Thank you for your order from {{.MerchantName}}.
Order #{{.OrderNumber}} ({{.OrderType}})
{{range .Items}}- {{.Name}} x{{.Quantity}} @ {{.Price.StringFixed 2}}{{if .SpecialInstructions}} ({{.SpecialInstructions}}){{end}}
{{end}}
Subtotal: {{.Subtotal.StringFixed 2}}
Delivery fee: {{.DeliveryFee.StringFixed 2}}
Total: {{.Total.StringFixed 2}}
{{if .Address}}Deliver to: {{.Address}}
{{end}}{{if .EstimatedDelivery}}Estimated: {{when .EstimatedDelivery}}
{{end}}{{if .SpecialInstructions}}Notes: {{.SpecialInstructions}}
{{end}}`))

var merchantTmpl = template.Must(template.New("merchant").Funcs(funcs).Parse(`New order #{{.OrderNumber}} for {{.MerchantName}}

Customer: {{.CustomerName}} <{{.CustomerEmail}}>
Type: {{.OrderType}}
{{range .Items}}- {{.Name}} x{{.Quantity}}{{if .SpecialInstructions}} ({{.SpecialInstructions}}){{end}}
{{end}}
Total: {{.Total.StringFixed 2}}
{{if .Address}}Deliver to: {{.Address}}
{{end}}{{if .SpecialInstructions}}Notes: {{.SpecialInstructions}}
{{end}}`))

var statusTmpl = template.Must(template.New("status").Funcs(funcs).Parse(`Order Status Update - {{.MerchantName}}

Hello {{.CustomerName}},

Order #{{.OrderNumber}}
Status: {{.PreviousStatus}} -> {{.NewStatus}}
{{if .EstimatedDelivery}}Estimated Delivery: {{when .EstimatedDelivery}}
{{end}}
{{.Message}}
{{if .UpdateMessage}}Update: {{.UpdateMessage}}
{{end}}`))

func render(t *template.Template, data any) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return fmt.Sprintf("render %s: %v", t.Name(), err)
	}
	return buf.String()
}

func CustomerConfirmation(d OrderData) Message {
	return Message{
		Kind:        KindCustomerConfirmation,
		To:          d.CustomerEmail,
		Subject:     fmt.Sprintf("Order Confirmed #%s - %s", d.OrderNumber, d.MerchantName),
		Body:        render(customerTmpl, d),
		TenantID:    d.TenantID,
		OrderID:     d.OrderID,
		OrderNumber: d.OrderNumber,
		Status:      d.Status,
	}
}

func MerchantConfirmation(d OrderData) Message {
	return Message{
		Kind:        KindMerchantConfirmation,
		To:          d.MerchantEmail,
		Subject:     fmt.Sprintf("New Order #%s - %s", d.OrderNumber, d.MerchantName),
		Body:        render(merchantTmpl, d),
		TenantID:    d.TenantID,
		OrderID:     d.OrderID,
		OrderNumber: d.OrderNumber,
		Status:      d.Status,
	}
}

func StatusUpdate(d StatusData) Message {
	msg := StatusMessage(d.NewStatus)
	body := render(statusTmpl, struct {
		StatusData
		Message string
	}{d, msg})
	return Message{
		Kind:           KindStatusUpdate,
		To:             d.CustomerEmail,
		Subject:        fmt.Sprintf("Order Update #%s - %s", d.OrderNumber, msg),
		Body:           body,
		TenantID:       d.TenantID,
		OrderID:        d.OrderID,
		OrderNumber:    d.OrderNumber,
		Status:         d.NewStatus,
		PreviousStatus: d.PreviousStatus,
	}
}
