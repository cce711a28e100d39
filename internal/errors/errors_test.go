package errors

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeNotFound, http.StatusNotFound},
		{CodeValidation, http.StatusBadRequest},
		{CodeUnavailable, http.StatusServiceUnavailable},
		{CodeInvariant, http.StatusInternalServerError},
		{CodeInternal, http.StatusInternalServerError},
		{Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_IsMatchesByCode(t *testing.T) {
	err := Invariantf("segment %d overlaps", 3)

	assert.True(t, Is(err, ErrInvariant))
	assert.False(t, Is(err, ErrValidation))
	assert.Equal(t, "segment 3 overlaps", err.Error())
}

func TestWrap_KeepsCause(t *testing.T) {
	cause := fmt.Errorf("timeout after %ds", 10)
	err := Wrap(cause, CodeUnavailable, "sponsor lookup failed")

	assert.Equal(t, "sponsor lookup failed: timeout after 10s", err.Error())
	assert.True(t, Is(err, ErrUnavailable))
	assert.Equal(t, cause, Unwrap(err))
}

func TestWrappedWithFmt_StillMatches(t *testing.T) {
	err := fmt.Errorf("merge: %w", Invariantf("bad order"))

	var domainErr *Error
	require.True(t, As(err, &domainErr))
	assert.Equal(t, CodeInvariant, domainErr.Code)
	assert.Equal(t, http.StatusInternalServerError, domainErr.HTTPStatus())
}

func TestWithDetails(t *testing.T) {
	base := Validation("bad interval")
	detailed := base.WithDetails(map[string]string{"end": "must be greater than start"})

	assert.Nil(t, base.Details)
	assert.Equal(t, map[string]string{"end": "must be greater than start"}, detailed.Details)
	assert.Equal(t, base.Code, detailed.Code)
}
