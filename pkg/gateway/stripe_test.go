package gateway

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const stripeRefundsURL = "https://api.stripe.com/v1/refunds"

func newTestStripeGateway(t *testing.T) *StripeGateway {
	client := &http.Client{}
	httpmock.ActivateNonDefault(client)
	t.Cleanup(httpmock.DeactivateAndReset)

	return NewStripeGateway("sk_test_123", "", client)
}

func testRefundRequest() RefundRequest {
	return RefundRequest{
		TransactionRef: "pi_123",
		AmountCents:    12550,
		Currency:       "usd",
		IdempotencyKey: "0b8f0c2e-refund",
	}
}

func TestStripeRefundSucceeds(t *testing.T) {
	g := newTestStripeGateway(t)

	var idempotencyKey string
	httpmock.RegisterResponder(http.MethodPost, stripeRefundsURL,
		func(req *http.Request) (*http.Response, error) {
			idempotencyKey = req.Header.Get("Idempotency-Key")
			require.NoError(t, req.ParseForm())
			assert.Equal(t, "pi_123", req.PostForm.Get("payment_intent"))
			assert.Equal(t, "12550", req.PostForm.Get("amount"))
			assert.Equal(t, "requested_by_customer", req.PostForm.Get("reason"))
			return httpmock.NewJsonResponse(200, map[string]any{
				"id":     "re_123",
				"object": "refund",
				"amount": 12550,
				"status": "succeeded",
			})
		})

	res, err := g.Refund(context.Background(), testRefundRequest())
	require.NoError(t, err)

	assert.Equal(t, "re_123", res.ProviderRef)
	assert.Equal(t, "succeeded", res.Status)
	assert.Equal(t, "0b8f0c2e-refund", idempotencyKey)
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}

func TestStripeRefundProviderError(t *testing.T) {
	g := newTestStripeGateway(t)

	httpmock.RegisterResponder(http.MethodPost, stripeRefundsURL,
		httpmock.NewJsonResponderOrPanic(400, map[string]any{
			"error": map[string]any{
				"type":    "invalid_request_error",
				"code":    "charge_already_refunded",
				"message": "Charge ch_1 has already been refunded.",
			},
		}))

	_, err := g.Refund(context.Background(), testRefundRequest())
	require.Error(t, err)

	var providerErr *ProviderError
	require.True(t, errors.As(err, &providerErr))
	assert.Equal(t, ProviderStripe, providerErr.Provider)
	assert.Equal(t, "charge_already_refunded", providerErr.Code)
	assert.Contains(t, err.Error(), "Charge ch_1 has already been refunded.")
}

func TestStripeRefundFailedStatus(t *testing.T) {
	g := newTestStripeGateway(t)

	httpmock.RegisterResponder(http.MethodPost, stripeRefundsURL,
		httpmock.NewJsonResponderOrPanic(200, map[string]any{
			"id":             "re_456",
			"object":         "refund",
			"status":         "failed",
			"failure_reason": "expired_or_canceled_card",
		}))

	_, err := g.Refund(context.Background(), testRefundRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expired_or_canceled_card")
}

func TestStripeRefundNetworkError(t *testing.T) {
	g := newTestStripeGateway(t)

	httpmock.RegisterResponder(http.MethodPost, stripeRefundsURL,
		httpmock.NewErrorResponder(errors.New("connection reset by peer")))

	_, err := g.Refund(context.Background(), testRefundRequest())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection reset by peer")
	assert.Equal(t, 1, httpmock.GetTotalCallCount())
}
