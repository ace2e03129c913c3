package queryir

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		err  *Error
		want string
	}{
		{NewConfigurationError("color", "unknown field"), "CONFIGURATION_ERROR: unknown field (field=color)"},
		{NewInvalidArgument("age", "must be >= 0").AtIndex(2), "INVALID_ARGUMENT: must be >= 0 (field=age, index=2)"},
		{NewEmptyCombination(), "EMPTY_COMBINATION: cannot combine an empty predicate list"},
		{NewInvalidArgument("", "predicate is nil").AtIndex(0), "INVALID_ARGUMENT: predicate is nil (index=0)"},
		{NewUnsupportedFilterKey("zip"), `UNSUPPORTED_FILTER_KEY: no filter registered for key "zip" (field=zip)`},
		{ErrConfiguration, "CONFIGURATION_ERROR: CONFIGURATION_ERROR"},
	}

	for _, tt := range tests {
		t.Run(string(tt.err.Code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestErrorClassificationThroughWrapping(t *testing.T) {
	err := fmt.Errorf("compile movie filter: %w", NewConfigurationError("colour", "unknown field"))

	assert.True(t, IsConfigurationError(err))
	assert.False(t, IsInvalidArgument(err))
	assert.True(t, errors.Is(err, ErrConfiguration))
	assert.False(t, errors.Is(err, ErrInvalidArgument))
	assert.Equal(t, CodeConfiguration, CodeOf(err))

	assert.Equal(t, ErrorCode(""), CodeOf(errors.New("disk full")))
	assert.False(t, IsUnsupportedFilterKey(nil))
}

func TestAtIndexCopies(t *testing.T) {
	base := NewInvalidArgument("age", "bad")
	indexed := base.AtIndex(3)

	assert.Equal(t, -1, base.Index)
	assert.Equal(t, 3, indexed.Index)
}
