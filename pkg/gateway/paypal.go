package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/plutov/paypal/v4"
	"github.com/shopspring/decimal"
)

// PayPalSDK is the subset of the PayPal client used for refunds.
type PayPalSDK interface {
	RefundCapture(ctx context.Context, captureID string, refundCaptureRequest paypal.RefundCaptureRequest) (*paypal.RefundResponse, error)
}

type PayPalGateway struct {
	client PayPalSDK
}

func NewPayPalGateway(client PayPalSDK) *PayPalGateway {
	return &PayPalGateway{client: client}
}

// NewPayPalClient builds an SDK client against the live or sandbox API.
func NewPayPalClient(clientID, secret string, live bool, httpClient *http.Client) (*paypal.Client, error) {
	apiBase := paypal.APIBaseSandBox
	if live {
		apiBase = paypal.APIBaseLive
	}

	c, err := paypal.NewClient(clientID, secret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("error creating paypal client: [%w]", err)
	}
	if httpClient != nil {
		c.Client = httpClient
	}
	return c, nil
}

func (g *PayPalGateway) Name() string {
	return ProviderPayPal
}

func (g *PayPalGateway) Refund(ctx context.Context, req RefundRequest) (*RefundResult, error) {
	res, err := g.client.RefundCapture(ctx, req.TransactionRef, paypal.RefundCaptureRequest{
		Amount: &paypal.Money{
			Currency: strings.ToUpper(req.Currency),
			Value:    decimal.New(req.AmountCents, -2).StringFixed(2),
		},
		InvoiceID:   req.IdempotencyKey,
		NoteToPayer: req.Note,
	})
	if err != nil {
		var apiErr *paypal.ErrorResponse
		if errors.As(err, &apiErr) {
			return nil, &ProviderError{Provider: ProviderPayPal, Code: apiErr.Name, Message: apiErr.Message}
		}
		return nil, &ProviderError{Provider: ProviderPayPal, Message: err.Error()}
	}

	switch strings.ToUpper(res.Status) {
	case "FAILED", "CANCELLED":
		return nil, &ProviderError{
			Provider: ProviderPayPal,
			Message:  fmt.Sprintf("refund %s ended with status %s", res.ID, res.Status),
		}
	}

	return &RefundResult{ProviderRef: res.ID, Status: res.Status}, nil
}
