package request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestNormalizedReason(t *testing.T) {
	cases := []struct {
		name   string
		req    CreateRefundRequest
		want   string
		wantOK bool
	}{
		{"label only", CreateRefundRequest{ReasonCode: "change_of_plans"}, "Change of plans", true},
		{"label and detail", CreateRefundRequest{ReasonCode: "property_issue", ReasonDetail: strPtr("  no hot   water ")}, "Issue with the property: no hot water", true},
		{"blank detail", CreateRefundRequest{ReasonCode: "host_cancelled", ReasonDetail: strPtr("   ")}, "Host cancelled", true},
		{"other needs detail", CreateRefundRequest{ReasonCode: "other"}, "", false},
		{"other with detail", CreateRefundRequest{ReasonCode: "other", ReasonDetail: strPtr("flight cancelled")}, "Other: flight cancelled", true},
		{"unknown code", CreateRefundRequest{ReasonCode: "whim"}, "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := tc.req.NormalizedReason()
			assert.Equal(t, tc.wantOK, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
