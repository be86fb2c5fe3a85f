package validator

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nikhil/teamchat/internal/apperrors"
)

type sample struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=2,max=5"`
	Team  int64  `json:"teamId" validate:"gt=0"`
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      sample
		path    string
		message string
	}{
		{name: "missing email", in: sample{Name: "abc", Team: 1}, path: "email", message: "email is required"},
		{name: "bad email", in: sample{Email: "nope", Name: "abc", Team: 1}, path: "email", message: "Invalid email"},
		{name: "short name", in: sample{Email: "a@b.co", Name: "a", Team: 1}, path: "name", message: "name must be at least 2 characters long"},
		{name: "long name", in: sample{Email: "a@b.co", Name: "abcdef", Team: 1}, path: "name", message: "name must be at most 5 characters long"},
		{name: "zero team", in: sample{Email: "a@b.co", Name: "abc"}, path: "teamId", message: "teamId must be greater than 0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.in)
			require.Error(t, err)

			var e *apperrors.Error
			require.True(t, errors.As(err, &e))
			assert.Equal(t, apperrors.KindValidation, e.Kind)
			assert.Equal(t, tt.path, e.Path)
			assert.Equal(t, tt.message, e.Message)
		})
	}
}

func TestValidate_OK(t *testing.T) {
	assert.NoError(t, Validate(sample{Email: "a@b.co", Name: "abc", Team: 1}))
}
