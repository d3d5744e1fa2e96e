package email

import (
	"bytes"
	"fmt"
	"html/template"
)

const (
	TemplatePaymentReceipt = "payment_receipt"
	TemplateJoinRequest    = "join_request"
	TemplateJoinResponse   = "join_response"
)

var templates = map[string]*template.Template{
	TemplatePaymentReceipt: template.Must(template.New(TemplatePaymentReceipt).Parse(`
<h2>Payment received</h2>
<p>Hi {{.Name}},</p>
<p>We received your payment of <b>{{.Amount}} {{.Currency}}</b> for {{.Description}}.</p>
<p>Transaction ID: {{.TransactionID}}</p>
<p>Happy travels!<br>The TravelBuddy team</p>
`)),
	TemplateJoinRequest: template.Must(template.New(TemplateJoinRequest).Parse(`
<h2>New join request</h2>
<p>Hi {{.HostName}},</p>
<p><b>{{.RequesterName}}</b> wants to join your trip to <b>{{.Destination}}</b>.</p>
<p>Open your dashboard to accept or reject the request.</p>
`)),
	TemplateJoinResponse: template.Must(template.New(TemplateJoinResponse).Parse(`
<h2>Your join request was {{.Status}}</h2>
<p>Hi {{.Name}},</p>
<p>The host of <b>{{.Title}}</b> ({{.Destination}}) has {{.Status}} your request.</p>
`)),
}

// RenderTemplate renders one of the built-in message templates.
func RenderTemplate(name string, data TemplateData) (string, error) {
	tmpl, ok := templates[name]
	if !ok {
		return "", fmt.Errorf("unknown email template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("render email template %q: %w", name, err)
	}
	return buf.String(), nil
}
