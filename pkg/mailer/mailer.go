// Package mailer delivers transactional email through an ordered chain of providers.
package mailer

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Message is addressed by template key; each provider decides how to render it.
type Message struct {
	To       string
	ToName   string
	Template string
	Data     map[string]string
}

type Provider interface {
	Name() string
	Send(ctx context.Context, msg Message) error
}

// Sender is what callers depend on.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}

// Chain tries providers in order and stops at the first success.
type Chain struct {
	providers []Provider
	log       *zap.Logger
}

func NewChain(log *zap.Logger, providers ...Provider) *Chain {
	return &Chain{
		providers: providers,
		log:       log.With(zap.String("component", "mailer")),
	}
}

func (c *Chain) Send(ctx context.Context, msg Message) error {
	var errs []error

	for _, p := range c.providers {
		err := p.Send(ctx, msg)
		if err == nil {
			c.log.Debug("Email sent",
				zap.String("provider", p.Name()),
				zap.String("template", msg.Template),
				zap.String("to", msg.To),
			)
			return nil
		}

		c.log.Warn("Email provider failed",
			zap.String("provider", p.Name()),
			zap.String("template", msg.Template),
			zap.Error(err),
		)
		errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))

		if ctx.Err() != nil {
			break
		}
	}

	if len(errs) == 0 {
		return errors.New("no email providers configured")
	}
	return errors.Join(errs...)
}
