package dto

import (
	"testing"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type amountRequest struct {
	Amount decimal.Decimal `binding:"required,gt=0"`
}

func TestDecimalBindingTags(t *testing.T) {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	require.True(t, ok)

	err := v.Struct(amountRequest{Amount: decimal.NewFromInt(10)})
	assert.NoError(t, err)

	err = v.Struct(amountRequest{Amount: decimal.Zero})
	assert.Error(t, err)

	err = v.Struct(amountRequest{Amount: decimal.NewFromInt(-3)})
	assert.Error(t, err)
}
