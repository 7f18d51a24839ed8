package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMoneyFromString(t *testing.T) {
	m, err := MoneyFromString("19.999")
	require.NoError(t, err)
	assert.Equal(t, "20.00", m.Cents().StringFixed(2))

	for _, raw := range []string{"", "abc", "NaN", "Inf"} {
		_, err := MoneyFromString(raw)
		assert.Error(t, err, raw)
	}
}

func TestMoneyCents(t *testing.T) {
	cases := map[string]string{
		"93.6":    "93.60",
		"0.005":   "0.01",
		"12.3449": "12.34",
		"40":      "40.00",
	}
	for in, want := range cases {
		m, err := MoneyFromString(in)
		require.NoError(t, err)
		assert.Equal(t, want, m.Cents().StringFixed(2), in)
	}
}

func TestMoneyJSON(t *testing.T) {
	m, err := MoneyFromString("40")
	require.NoError(t, err)
	out, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{m})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":40.00}`, string(out))
	assert.Contains(t, string(out), "40.00")

	var back struct {
		Total Money `json:"total"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"total":12.5}`), &back))
	assert.Equal(t, "12.50", back.Total.StringFixed(2))
}
