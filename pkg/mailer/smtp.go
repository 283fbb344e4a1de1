package mailer

import (
	"context"
	"fmt"
	"time"

	"rental-booking/pkg/utils"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

// Transport puts a rendered email on the wire.
type Transport interface {
	Deliver(ctx context.Context, to, subject, htmlBody string) error
}

type SMTPTransport struct {
	host    string
	from    string
	options []mail.Option
}

func NewSMTPTransport(cfg utils.EmailConfig) *SMTPTransport {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	options := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(mail.TLSMandatory),
	}
	if cfg.User != "" {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthLogin),
			mail.WithUsername(cfg.User),
			mail.WithPassword(cfg.Password),
		)
	}

	return &SMTPTransport{host: cfg.Host, from: cfg.From, options: options}
}

func (t *SMTPTransport) Deliver(ctx context.Context, to, subject, htmlBody string) error {
	msg := mail.NewMsg()
	if err := msg.From(t.from); err != nil {
		return fmt.Errorf("invalid sender %q: %w", t.from, err)
	}
	if err := msg.To(to); err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}
	msg.Subject(subject)
	msg.SetBodyString(mail.TypeTextHTML, htmlBody)

	client, err := mail.NewClient(t.host, t.options...)
	if err != nil {
		return fmt.Errorf("create smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("send email: %w", err)
	}
	return nil
}

// LogTransport only logs; used when no SMTP host is configured.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	return &LogTransport{log: log}
}

func (t *LogTransport) Deliver(_ context.Context, to, subject, _ string) error {
	t.log.Info("Email delivery skipped, SMTP not configured",
		zap.String("to", to),
		zap.String("subject", subject),
	)
	return nil
}
