// Package gateway wraps the payment providers that can push money back to a guest.
package gateway

import (
	"context"
	"fmt"
)

const (
	ProviderStripe = "stripe"
	ProviderPayPal = "paypal"
)

// RefundRequest carries amounts in minor units.
type RefundRequest struct {
	// TransactionRef is the provider's id of the original charge.
	TransactionRef string
	AmountCents    int64
	Currency       string
	IdempotencyKey string
	Note           string
}

type RefundResult struct {
	ProviderRef string
	Status      string
}

type Gateway interface {
	Name() string
	Refund(ctx context.Context, req RefundRequest) (*RefundResult, error)
}

// Registry maps a provider name to its gateway.
type Registry map[string]Gateway

func (r Registry) Get(provider string) (Gateway, bool) {
	g, ok := r[provider]
	return g, ok && g != nil
}

// ProviderError keeps the provider's own wording so operators can act on it.
type ProviderError struct {
	Provider string
	Code     string
	Message  string
}

func (e *ProviderError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s refund failed (%s): %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s refund failed: %s", e.Provider, e.Message)
}
