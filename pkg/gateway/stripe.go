package gateway

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v83"
	"github.com/stripe/stripe-go/v83/refund"
)

// StripeGateway refunds a PaymentIntent. The request idempotency key makes a
// resubmitted refund return the first result instead of paying twice.
type StripeGateway struct {
	client *refund.Client
}

func NewStripeGateway(secretKey, apiURL string, httpClient *http.Client) *StripeGateway {
	config := &stripe.BackendConfig{
		HTTPClient:        httpClient,
		MaxNetworkRetries: stripe.Int64(0),
	}
	if apiURL != "" {
		config.URL = stripe.String(apiURL)
	}

	return &StripeGateway{
		client: &refund.Client{
			B:   stripe.GetBackendWithConfig(stripe.APIBackend, config),
			Key: secretKey,
		},
	}
}

func (g *StripeGateway) Name() string {
	return ProviderStripe
}

func (g *StripeGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	params := &stripe.RefundParams{
		PaymentIntent: stripe.String(req.TransactionRef),
		Amount:        stripe.Int64(req.AmountCents),
		Reason:        stripe.String(string(stripe.RefundReasonRequestedByCustomer)),
	}
	params.Context = ctx
	params.SetIdempotencyKey(req.IdempotencyKey)
	params.AddMetadata("refund_request_id", req.IdempotencyKey)
	if req.Note != "" {
		params.AddMetadata("note", req.Note)
	}

	r, err := g.client.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) {
			return nil, &ProviderError{
				Provider: ProviderStripe,
				Code:     string(stripeErr.Code),
				Message:  stripeErr.Msg,
			}
		}
		return nil, &ProviderError{Provider: ProviderStripe, Message: err.Error()}
	}

	switch r.Status {
	case stripe.RefundStatusFailed, stripe.RefundStatusCanceled:
		return nil, &ProviderError{
			Provider: ProviderStripe,
			Code:     string(r.FailureReason),
			Message:  "refund " + r.ID + " ended with status " + string(r.Status),
		}
	}

	return &RefundResult{ProviderRef: r.ID, Status: string(r.Status)}, nil
}
