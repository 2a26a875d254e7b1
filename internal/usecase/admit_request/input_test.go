package admit_request

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInputValidate_WithIdentity_Passes(t *testing.T) {
	input := Input{Identity: "abc123"}

	assert.NoError(t, input.Validate())
}

func TestInputValidate_EmptyIdentity_ReturnsError(t *testing.T) {
	input := Input{Identity: ""}

	err := input.Validate()

	assert.ErrorIs(t, err, ErrMissingIdentity)
}
