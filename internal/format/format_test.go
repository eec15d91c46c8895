package format

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestMoney(t *testing.T) {
	cases := map[string]string{
		"0":          "0,00",
		"5":          "5,00",
		"12.5":       "12,50",
		"10.005":     "10,01",
		"1234.56":    "1.234,56",
		"1234567.89": "1.234.567,89",
	}
	for in, want := range cases {
		assert.Equal(t, want, Money(decimal.RequireFromString(in)), in)
	}
	assert.Equal(t, ZeroMoney, Money(decimal.Zero))
}

func TestDuration(t *testing.T) {
	tests := []struct {
		minutes float64
		want    string
	}{
		{0, "0 hora(s) e 0 minuto(s)"},
		{0.9, "0 hora(s) e 0 minuto(s)"},
		{59, "0 hora(s) e 59 minuto(s)"},
		{61.5, "1 hora(s) e 1 minuto(s)"},
		{1440, "1 dia(s), 0 hora(s) e 0 minuto(s)"},
		{1500, "1 dia(s), 1 hora(s) e 0 minuto(s)"},
		{3 * 1440 + 125, "3 dia(s), 2 hora(s) e 5 minuto(s)"},
		{-5, "0 hora(s) e 0 minuto(s)"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Duration(tt.minutes))
	}
}
