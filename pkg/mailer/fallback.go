package mailer

import "context"

type fallbackTemplate struct {
	subject string
	body    string
}

// Built-in copies of the refund emails, used when the template store is unavailable.
var fallbackTemplates = map[string]fallbackTemplate{
	"refund_requested": {
		subject: "Refund request for booking {{.BookingReference}}",
		body:    `<p>Hi {{.RecipientName}},</p><p>A refund of {{.Amount}} {{.Currency}} was requested for booking {{.BookingReference}}.</p>`,
	},
	"refund_under_review": {
		subject: "Refund for booking {{.BookingReference}} is under review",
		body:    `<p>Hi {{.RecipientName}},</p><p>Your refund request is being reviewed.</p>`,
	},
	"refund_approved": {
		subject: "Refund approved for booking {{.BookingReference}}",
		body:    `<p>Hi {{.RecipientName}},</p><p>A refund of {{.Amount}} {{.Currency}} was approved.</p>`,
	},
	"refund_rejected": {
		subject: "Refund request for booking {{.BookingReference}} declined",
		body:    `<p>Hi {{.RecipientName}},</p><p>Your refund request was declined.</p><p>{{.CustomerNotes}}</p>`,
	},
	"refund_processing": {
		subject: "Refund for booking {{.BookingReference}} is being processed",
		body:    `<p>Hi {{.RecipientName}},</p><p>Your refund of {{.Amount}} {{.Currency}} is on its way.</p>`,
	},
	"refund_completed": {
		subject: "Refund completed for booking {{.BookingReference}}",
		body:    `<p>Hi {{.RecipientName}},</p><p>Your refund of {{.Amount}} {{.Currency}} is complete.</p>`,
	},
	"refund_failed": {
		subject: "Refund for booking {{.BookingReference}} could not be processed",
		body:    `<p>Hi {{.RecipientName}},</p><p>{{.CustomerNotes}}</p>`,
	},
	"refund_withdrawn": {
		subject: "Refund request for booking {{.BookingReference}} withdrawn",
		body:    `<p>Hi {{.RecipientName}},</p><p>The refund request was withdrawn.</p>`,
	},
}

var genericFallback = fallbackTemplate{
	subject: "Update on your booking {{.BookingReference}}",
	body:    `<p>Hi {{.RecipientName}},</p><p>There is an update on booking {{.BookingReference}}. Please sign in for details.</p>`,
}

// FallbackProvider renders hard-coded HTML.
type FallbackProvider struct {
	transport Transport
}

func NewFallbackProvider(transport Transport) *FallbackProvider {
	return &FallbackProvider{transport: transport}
}

func (p *FallbackProvider) Name() string {
	return "fallback"
}

func (p *FallbackProvider) Send(ctx context.Context, msg Message) error {
	tpl, ok := fallbackTemplates[msg.Template]
	if !ok {
		tpl = genericFallback
	}

	subject, err := renderText(msg.Template, tpl.subject, msg.Data)
	if err != nil {
		return err
	}
	body, err := renderHTML(msg.Template, tpl.body, msg.Data)
	if err != nil {
		return err
	}

	return p.transport.Deliver(ctx, msg.To, subject, body)
}
