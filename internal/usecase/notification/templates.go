package notification

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"github.com/Pesokrava/storefront/internal/domain"
)

// Content is the rendered copy of one notification
type Content struct {
	SMS     string
	Subject string
	Text    string
	HTML    string
}

type templateData struct {
	Name      string
	Reference string
	Tracking  string
	ETA       string
	Amount    string
	Headline  string
	Body      string
}

var emailLayout = template.Must(template.New("email").Parse(`<!doctype html>
<html><body style="font-family:sans-serif;color:#222">
<h2>{{.Headline}}</h2>
<p>Hi {{.Name}},</p>
<p>{{.Body}}</p>
{{if .Tracking}}<p>Tracking number: <strong>{{.Tracking}}</strong></p>{{end}}
{{if .ETA}}<p>Estimated delivery: {{.ETA}}</p>{{end}}
<p>Order reference: {{.Reference}}</p>
</body></html>`))

// orderReference is the short reference shown to customers
func orderReference(o *domain.Order) string {
	return strings.ToUpper(o.ID.String()[:8])
}

func customerName(o *domain.Order, u *domain.User) string {
	if u != nil && u.Name != "" {
		return u.Name
	}
	if o.ShippingAddress.FullName != "" {
		return o.ShippingAddress.FullName
	}
	return "there"
}

// Render builds the SMS and email copy for a notification kind
func Render(kind domain.NotificationKind, o *domain.Order, u *domain.User) (Content, error) {
	data := templateData{
		Name:      customerName(o, u),
		Reference: orderReference(o),
	}

	var sms string
	switch kind {
	case domain.NotifyOrderProcessing:
		data.Headline = "We're preparing your order"
		data.Body = "Your order is being prepared and will ship soon."
		sms = fmt.Sprintf("Your order %s is being prepared.", data.Reference)
	case domain.NotifyOrderShipped:
		if o.TrackingNumber != nil {
			data.Tracking = *o.TrackingNumber
		}
		if o.EstimatedDelivery != nil {
			data.ETA = o.EstimatedDelivery.Format("Mon, Jan 2")
		}
		data.Headline = "Your order is on its way"
		data.Body = "Good news, your order has shipped."
		sms = fmt.Sprintf("Your order %s has shipped. Tracking: %s. ETA: %s.", data.Reference, data.Tracking, data.ETA)
	case domain.NotifyOrderDelivered:
		data.Headline = "Your order was delivered"
		data.Body = "Your order has been delivered. We hope you love it."
		sms = fmt.Sprintf("Your order %s was delivered. Enjoy!", data.Reference)
	case domain.NotifyRefundApproved:
		data.Amount = o.Total.StringFixed(2) + " " + strings.ToUpper(o.Currency)
		data.Headline = "Your refund was approved"
		data.Body = fmt.Sprintf("We've refunded %s to your original payment method.", data.Amount)
		sms = fmt.Sprintf("Your refund of %s for order %s was approved.", data.Amount, data.Reference)
	default:
		return Content{}, fmt.Errorf("unknown notification kind %q", kind)
	}

	var html bytes.Buffer
	if err := emailLayout.Execute(&html, data); err != nil {
		return Content{}, fmt.Errorf("render email: %w", err)
	}

	text := fmt.Sprintf("Hi %s,\n\n%s\n", data.Name, data.Body)
	if data.Tracking != "" {
		text += fmt.Sprintf("Tracking number: %s\n", data.Tracking)
	}
	if data.ETA != "" {
		text += fmt.Sprintf("Estimated delivery: %s\n", data.ETA)
	}
	text += fmt.Sprintf("Order reference: %s\n", data.Reference)

	return Content{
		SMS:     sms,
		Subject: data.Headline,
		Text:    text,
		HTML:    html.String(),
	}, nil
}
