package usecase

import (
	"context"
	"testing"

	"rental-booking/internal/dto/request"
	"rental-booking/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateBookingTotalsLineItems(t *testing.T) {
	f := newRefundFixture(t, nil)

	resp, err := f.svc.Booking.CreateBooking(context.Background(), f.guest, &request.CreateBookingRequest{
		PropertyID: f.property.ID.String(),
		CheckIn:    "2027-07-01",
		CheckOut:   "2027-07-05",
		Guests:     3,
		LineItems: []request.LineItemRequest{
			{Description: "4 nights", Amount: decimal.RequireFromString("480.00"), TaxRate: decimal.RequireFromString("0.125")},
			{Description: "Cleaning", Amount: decimal.RequireFromString("45.55"), TaxRate: decimal.Zero},
		},
	})
	require.NoError(t, err)

	assert.True(t, resp.TotalPrice.Equal(decimal.RequireFromString("585.55")))
	assert.Equal(t, "USD", resp.Currency)
	require.Len(t, resp.LineItems, 2)
	assert.True(t, resp.LineItems[0].Tax.Equal(decimal.NewFromInt(60)))
	assert.False(t, resp.HasActiveRefund)
}

func TestCreateBookingRejectsReversedStay(t *testing.T) {
	f := newRefundFixture(t, nil)

	_, err := f.svc.Booking.CreateBooking(context.Background(), f.guest, &request.CreateBookingRequest{
		PropertyID: f.property.ID.String(),
		CheckIn:    "2027-07-05",
		CheckOut:   "2027-07-05",
		Guests:     1,
		LineItems:  []request.LineItemRequest{{Description: "night", Amount: decimal.NewFromInt(100)}},
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation))
}

func TestRecordPaymentCapsAtOutstandingBalance(t *testing.T) {
	f := newRefundFixture(t, nil)

	_, err := f.svc.Booking.RecordPayment(context.Background(), f.guest, f.booking.ID, &request.RecordPaymentRequest{
		Provider: "manual",
		Amount:   decimal.NewFromInt(1),
	})
	assert.True(t, apperror.Is(err, apperror.KindValidation), "booking is already paid in full")
}

func TestBookingDetailShowsActiveRefund(t *testing.T) {
	f := newRefundFixture(t, nil)
	f.request(t, "100", "")

	detail, err := f.svc.Booking.GetBookingByID(context.Background(), f.guest, f.booking.ID)
	require.NoError(t, err)
	assert.True(t, detail.HasActiveRefund)
	require.Len(t, detail.Refunds, 1)
	assert.Len(t, detail.Payments, 1)

	_, err = f.svc.Booking.GetBookingByID(context.Background(), f.stranger, f.booking.ID)
	assert.True(t, apperror.Is(err, apperror.KindPermission))

	_, err = f.svc.Booking.GetBookingByID(context.Background(), f.guest, uuid.New())
	assert.True(t, apperror.Is(err, apperror.KindNotFound))
}

func TestCancelBookingBlockedByRefund(t *testing.T) {
	f := newRefundFixture(t, nil)
	f.request(t, "100", "")

	_, err := f.svc.Booking.CancelBooking(context.Background(), f.guest, f.booking.ID)
	assert.True(t, apperror.Is(err, apperror.KindRefundLockActive))
}

func TestEligibilityForBooking(t *testing.T) {
	f := newRefundFixture(t, nil)

	res, err := f.svc.Refund.Eligibility(context.Background(), f.guest, f.booking.ID)
	require.NoError(t, err)
	assert.Equal(t, "moderate", res.Policy)
	assert.Equal(t, 100, res.RefundPercent)
	assert.True(t, res.SuggestedAmount.Equal(decimal.NewFromInt(1000)))
}
