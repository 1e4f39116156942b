package masking

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskSecret(t *testing.T) {
	assert.Equal(t, "", MaskSecret("  "))
	assert.Equal(t, "****", MaskSecret("abc"))
	assert.Equal(t, "****6789", MaskSecret("secret-6789"))
}

func TestSanitizeMetadata(t *testing.T) {
	out := SanitizeMetadata(map[string]any{
		"username": "sara",
		"password": "hunter22",
		"nested":   map[string]any{"api_token": "abcdefgh", "amount": 10},
		"":         "dropped",
	})

	assert.Equal(t, "sara", out["username"])
	assert.Equal(t, "****er22", out["password"])
	nested := out["nested"].(map[string]any)
	assert.Equal(t, "****efgh", nested["api_token"])
	assert.Equal(t, 10, nested["amount"])
	_, ok := out[""]
	assert.False(t, ok)
}
