package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestKindHTTPStatus(t *testing.T) {
	cases := map[Kind]int{
		KindValidation:             http.StatusBadRequest,
		KindInvalidStateTransition: http.StatusBadRequest,
		KindRefundLockActive:       http.StatusConflict,
		KindConflict:               http.StatusConflict,
		KindNotFound:               http.StatusNotFound,
		KindPermission:             http.StatusForbidden,
		KindUnauthorized:           http.StatusUnauthorized,
		KindInternal:               http.StatusInternalServerError,
	}

	for kind, status := range cases {
		assert.Equal(t, status, kind.HTTPStatus(), kind.Code())
	}
}

func TestKindOfWrappedError(t *testing.T) {
	base := RefundLocked("b-1")
	wrapped := fmt.Errorf("change dates: %w", base)

	assert.Equal(t, KindRefundLockActive, KindOf(wrapped))
	assert.True(t, Is(wrapped, KindRefundLockActive))
	assert.Equal(t, "REFUND_LOCK_ACTIVE", KindOf(wrapped).Code())

	appErr, ok := As(wrapped)
	require.True(t, ok)
	assert.Same(t, base, appErr)
}

func TestKindOfUntypedError(t *testing.T) {
	assert.Equal(t, KindInternal, KindOf(errors.New("boom")))
	assert.False(t, Is(nil, KindInternal))
}

func TestInternalUnwrap(t *testing.T) {
	cause := errors.New("connection reset")
	err := Internal("failed to load refund", cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "failed to load refund: connection reset", err.Error())
}
