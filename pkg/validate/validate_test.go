package validate

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmail(t *testing.T) {
	tests := []struct {
		email string
		valid bool
	}{
		{"reader@example.com", true},
		{"first.last+tag@novels.co.uk", true},
		{"", false},
		{"   ", false},
		{"no-at-sign.com", false},
		{"user@host", false},
		{"user@@example.com", false},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := Email(tt.email)
			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestPassword(t *testing.T) {
	assert.NoError(t, Password("secret123"))
	assert.Error(t, Password("short1"))
	assert.Error(t, Password("onlyletters"))
	assert.Error(t, Password("12345678"))
}

func TestName(t *testing.T) {
	assert.NoError(t, Name("Lin"))
	assert.Error(t, Name("  "))
	assert.Error(t, Name(strings.Repeat("a", MaxNameLength+1)))
}

func TestSignup(t *testing.T) {
	err := Signup(SignupForm{Name: "Lin", Email: "lin@example.com", Password: "secret123", Confirm: "secret123"})
	assert.NoError(t, err)

	err = Signup(SignupForm{Name: "", Email: "bad", Password: "x", Confirm: "y"})
	require.Error(t, err)

	var fields FieldErrors
	require.True(t, errors.As(err, &fields))
	assert.Len(t, fields, 4)
	assert.Contains(t, err.Error(), "name: name is required")
	assert.Contains(t, err.Error(), "confirm: passwords do not match")
}

func TestLogin(t *testing.T) {
	assert.NoError(t, Login("lin@example.com", "anything"))

	err := Login("lin@example.com", "")
	require.Error(t, err)
	assert.Equal(t, "password: password is required", err.Error())
}
