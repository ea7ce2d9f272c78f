package validation

import (
	"testing"

	apperrors "investa/internal/errors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestValidator_CollectsFieldErrors(t *testing.T) {
	v := New()
	v.Required("first_name", "  ")
	v.Email("email", "not-an-email")
	v.OneOf("status", "paused", "active", "inactive")
	v.DecimalRange("percentage", decimal.NewFromInt(101), decimal.Zero, decimal.NewFromInt(100))

	assert.False(t, v.Valid())
	ve, ok := apperrors.AsValidation(v.Err())
	assert.True(t, ok)
	assert.Len(t, ve.Fields, 4)
	assert.Equal(t, []string{"The percentage must be between 0 and 100."}, ve.Fields["percentage"])
}

func TestValidator_Password(t *testing.T) {
	tests := []struct {
		name    string
		pw      string
		confirm string
		valid   bool
	}{
		{"ok", "s3cretpass", "s3cretpass", true},
		{"too short", "short", "short", false},
		{"mismatch", "s3cretpass", "s3cretpasz", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := New()
			v.Password("password", tt.pw, tt.confirm)
			assert.Equal(t, tt.valid, v.Valid())
			if tt.valid {
				assert.NoError(t, v.Err())
			}
		})
	}
}
