package validate

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sampleRequest struct {
	Email string `validate:"required,email"`
	Title string `validate:"required,min=3"`
}

func TestFieldErrors(t *testing.T) {
	v := New()
	err := v.Validate(&sampleRequest{Email: "not-an-email", Title: "ab"})
	require.Error(t, err)

	fields := FieldErrors(err)
	assert.Equal(t, "must be a valid email address", fields["email"])
	assert.Equal(t, "must be at least 3 characters", fields["title"])
}

func TestFieldErrorsWithNonValidationError(t *testing.T) {
	fields := FieldErrors(errors.New("boom"))
	assert.Equal(t, map[string]string{"request": "invalid request"}, fields)
}

func TestValidatePasses(t *testing.T) {
	v := New()
	assert.NoError(t, v.Validate(&sampleRequest{Email: "a@b.com", Title: "abc"}))
}
