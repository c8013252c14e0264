package valueobject

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMoney(t *testing.T) {
	t.Run("creates money with valid currency", func(t *testing.T) {
		m, err := NewMoney(decimal.NewFromInt(100), BDT)
		require.NoError(t, err)
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(100)))
		assert.Equal(t, BDT, m.Currency())
	})

	t.Run("rejects empty currency", func(t *testing.T) {
		_, err := NewMoney(decimal.NewFromInt(100), "")
		assert.Error(t, err)
	})
}

func TestMoney_Arithmetic(t *testing.T) {
	a := NewMoneyBDT(decimal.NewFromFloat(100.50))
	b := NewMoneyBDT(decimal.NewFromFloat(49.50))

	t.Run("add", func(t *testing.T) {
		sum, err := a.Add(b)
		require.NoError(t, err)
		assert.True(t, sum.Amount().Equal(decimal.NewFromInt(150)))
	})

	t.Run("subtract", func(t *testing.T) {
		diff, err := a.Subtract(b)
		require.NoError(t, err)
		assert.True(t, diff.Amount().Equal(decimal.NewFromInt(51)))
	})

	t.Run("currency mismatch fails", func(t *testing.T) {
		usd, _ := NewMoney(decimal.NewFromInt(1), USD)
		_, err := a.Add(usd)
		assert.Error(t, err)
		_, err = a.Subtract(usd)
		assert.Error(t, err)
	})

	t.Run("multiply", func(t *testing.T) {
		m := a.Multiply(decimal.NewFromInt(2))
		assert.True(t, m.Amount().Equal(decimal.NewFromInt(201)))
	})
}

func TestMoney_CalculatePercentage(t *testing.T) {
	m := NewMoneyBDT(decimal.NewFromInt(4800))
	pct := m.CalculatePercentage(decimal.NewFromInt(1))
	assert.True(t, pct.Amount().Equal(decimal.NewFromInt(48)))
}

func TestMoney_RoundFixed(t *testing.T) {
	m := NewMoneyBDT(decimal.NewFromFloat(10.005))
	assert.Equal(t, "10.01", m.RoundFixed().Amount().StringFixed(2))
}

func TestMoney_JSONRoundTrip(t *testing.T) {
	m := NewMoneyBDT(decimal.NewFromFloat(99.99))
	data, err := json.Marshal(m)
	require.NoError(t, err)

	var decoded Money
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.True(t, decoded.Equals(m))
}

func TestMoney_Scan(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan("123.45"))
	assert.True(t, m.Amount().Equal(decimal.NewFromFloat(123.45)))
	assert.Equal(t, DefaultCurrency, m.Currency())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())
}
