package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/listenupapp/chapter-timeline/internal/errors"
)

type window struct {
	Start float64 `json:"start" validate:"gte=0"`
	End   float64 `json:"end" validate:"gtfield=Start"`
	Kind  string  `json:"kind,omitempty" validate:"omitempty,oneof=sponsor selfpromo"`
}

func TestValidate_Valid(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(window{Start: 10, End: 20, Kind: "sponsor"}))
}

func TestValidate_ReportsJSONFieldNames(t *testing.T) {
	v := New()

	err := v.Validate(window{Start: -1, End: -5, Kind: "music"})
	require.Error(t, err)
	assert.True(t, domainerrors.Is(err, domainerrors.ErrValidation))

	fields := Fields(err)
	require.NotNil(t, fields)
	assert.Equal(t, "must be greater than or equal to 0", fields["start"])
	assert.Equal(t, "must be greater than Start", fields["end"])
	assert.Equal(t, "must be one of: sponsor selfpromo", fields["kind"])
}

func TestFields_NonDomainError(t *testing.T) {
	assert.Nil(t, Fields(assert.AnError))
}
