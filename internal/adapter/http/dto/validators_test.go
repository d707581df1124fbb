package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func engine(t *testing.T) *validator.Validate {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)
	return v
}

func TestValidateTxHash(t *testing.T) {
	v := engine(t)

	valid := []string{
		"0xabc123",
		"0xABCDEF0123456789abcdef0123456789abcdef0123456789abcdef0123456789",
	}
	for _, h := range valid {
		assert.NoError(t, v.Var(h, "tx_hash"), h)
	}

	invalid := []string{
		"",
		"abc123",
		"0x",
		"0x123",      // too short
		"0xzzzzzz",   // non-hex
		"0x abc 123", // whitespace
	}
	for _, h := range invalid {
		assert.Error(t, v.Var(h, "tx_hash"), h)
	}
}

func TestValidatePositiveDecimal(t *testing.T) {
	v := engine(t)

	assert.NoError(t, v.Var("1000", "positive_decimal"))
	assert.NoError(t, v.Var("0.000001", "positive_decimal"))
	assert.NoError(t, v.Var("88.45", "positive_decimal"))

	assert.Error(t, v.Var("0", "positive_decimal"))
	assert.Error(t, v.Var("-5", "positive_decimal"))
	assert.Error(t, v.Var("NaN", "positive_decimal"))
	assert.Error(t, v.Var("1e3x", "positive_decimal"))
	assert.Error(t, v.Var("", "positive_decimal"))
}
