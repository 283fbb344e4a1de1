package utils

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

type amountInput struct {
	Amount decimal.Decimal `json:"amount" validate:"decimal_gt0"`
	Note   string          `json:"note" validate:"omitempty,min=3"`
}

func TestValidateStructDecimal(t *testing.T) {
	errs := ValidateStruct(amountInput{Amount: decimal.RequireFromString("12.50")})
	assert.Empty(t, errs)

	errs = ValidateStruct(amountInput{Amount: decimal.Zero, Note: "ab"})
	assert.Equal(t, "Must be greater than zero", errs["amount"])
	assert.Equal(t, "Minimum length is 3", errs["note"])
}

func TestFormatValidationErrorsIsSorted(t *testing.T) {
	msg := FormatValidationErrors(map[string]string{"b": "two", "a": "one"})
	assert.Equal(t, "a: one; b: two", msg)
}
