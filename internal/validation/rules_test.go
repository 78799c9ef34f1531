package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/allisson/gatekeeper/internal/errors"
)

func TestPermissionKey(t *testing.T) {
	tests := []struct {
		name      string
		value     string
		expectErr bool
	}{
		{name: "channels key", value: "channels", expectErr: false},
		{name: "chat key", value: "chat", expectErr: false},
		{name: "users key", value: "users", expectErr: false},
		{name: "empty is deferred to Required", value: "", expectErr: false},
		{name: "unknown key", value: "files", expectErr: true},
		{name: "case sensitive", value: "Chat", expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := PermissionKey.Validate(tt.value)
			if tt.expectErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPermissionOperation(t *testing.T) {
	assert.NoError(t, PermissionOperation.Validate("read"))
	assert.NoError(t, PermissionOperation.Validate("write"))
	assert.NoError(t, PermissionOperation.Validate(""))
	assert.Error(t, PermissionOperation.Validate("delete"))
}

func TestIdentifier(t *testing.T) {
	assert.NoError(t, Identifier.Validate("U12345"))
	assert.NoError(t, Identifier.Validate("enterprise:E1"))
	assert.Error(t, Identifier.Validate("has space"))

	long := make([]byte, 256)
	for i := range long {
		long[i] = 'a'
	}
	assert.Error(t, Identifier.Validate(string(long)))
}

func TestWrapValidationError(t *testing.T) {
	assert.Nil(t, WrapValidationError(nil))

	err := WrapValidationError(assert.AnError)
	assert.ErrorIs(t, err, apperrors.ErrInvalidInput)
}
