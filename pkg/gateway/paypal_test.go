package gateway

import (
	"context"
	"fmt"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/plutov/paypal/v4"
	. "github.com/smartystreets/goconvey/convey"
)

func TestUnitPayPalRefund(t *testing.T) {
	mockCtrl := gomock.NewController(t)
	defer mockCtrl.Finish()

	sdk := NewMockPayPalSDK(mockCtrl)
	g := NewPayPalGateway(sdk)

	req := RefundRequest{
		TransactionRef: "CAPTURE-1",
		AmountCents:    4005,
		Currency:       "eur",
		IdempotencyKey: "refund-1",
	}

	Convey("Refund is sent with the amount in major units", t, func() {
		sdk.EXPECT().RefundCapture(gomock.Any(), "CAPTURE-1", paypal.RefundCaptureRequest{
			Amount:    &paypal.Money{Currency: "EUR", Value: "40.05"},
			InvoiceID: "refund-1",
		}).Return(&paypal.RefundResponse{ID: "RF-9", Status: "COMPLETED"}, nil)

		res, err := g.Refund(context.Background(), req)

		So(err, ShouldBeNil)
		So(res.ProviderRef, ShouldEqual, "RF-9")
		So(res.Status, ShouldEqual, "COMPLETED")
	})

	Convey("API errors keep the PayPal message", t, func() {
		sdk.EXPECT().RefundCapture(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(nil, &paypal.ErrorResponse{Name: "UNPROCESSABLE_ENTITY", Message: "The refund amount must be less than or equal to the capture amount"})

		res, err := g.Refund(context.Background(), req)

		So(res, ShouldBeNil)
		So(err.Error(), ShouldContainSubstring, "UNPROCESSABLE_ENTITY")
		So(err.Error(), ShouldContainSubstring, "less than or equal to the capture amount")
	})

	Convey("Transport errors are reported as provider errors", t, func() {
		sdk.EXPECT().RefundCapture(gomock.Any(), gomock.Any(), gomock.Any()).Return(nil, fmt.Errorf("dial tcp: i/o timeout"))

		_, err := g.Refund(context.Background(), req)

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldEqual, "paypal refund failed: dial tcp: i/o timeout")
	})

	Convey("A failed refund status is an error", t, func() {
		sdk.EXPECT().RefundCapture(gomock.Any(), gomock.Any(), gomock.Any()).
			Return(&paypal.RefundResponse{ID: "RF-10", Status: "FAILED"}, nil)

		_, err := g.Refund(context.Background(), req)

		So(err, ShouldNotBeNil)
		So(err.Error(), ShouldContainSubstring, "RF-10")
	})
}

func TestUnitRegistry(t *testing.T) {
	Convey("Registry only returns configured gateways", t, func() {
		r := Registry{ProviderPayPal: NewPayPalGateway(nil)}

		_, ok := r.Get(ProviderPayPal)
		So(ok, ShouldBeTrue)

		_, ok = r.Get(ProviderStripe)
		So(ok, ShouldBeFalse)
	})
}
