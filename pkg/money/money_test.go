package money

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArithmetic(t *testing.T) {
	tests := []struct {
		name string
		got  Money
		want string
	}{
		{name: "add", got: Add(MustParse("10.10"), MustParse("0.20")), want: "10.30"},
		{name: "mul", got: Mul(MustParse("5.50"), FromInt(2)), want: "11.00"},
		{name: "mul rounds half away from zero", got: Mul(MustParse("0.05"), MustParse("0.5")), want: "0.03"},
		{name: "negative rounds away from zero", got: Mul(MustParse("-0.05"), MustParse("0.5")), want: "-0.03"},
		{name: "mul trunc drops digits", got: MulTrunc(MustParse("100.10"), MustParse("0.05")), want: "5.00"},
		{name: "mul trunc negative toward zero", got: MulTrunc(MustParse("-100.10"), MustParse("0.05")), want: "-5.00"},
		{name: "div", got: Div(MustParse("600.00"), FromInt(3)), want: "200.00"},
		{name: "div rounds", got: Div(MustParse("100.00"), FromInt(3)), want: "33.33"},
		{name: "div by zero", got: Div(MustParse("100.00"), Zero()), want: "0.00"},
		{name: "mul int", got: MustParse("10.00").MulInt(3), want: "30.00"},
		{name: "div int zero", got: MustParse("12.00").DivInt(0), want: "0.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.got.String())
		})
	}
}

func TestSumHasNoDrift(t *testing.T) {
	amounts := make([]Money, 0, 1000)
	for i := 0; i < 1000; i++ {
		amounts = append(amounts, MustParse("0.10"))
	}
	assert.Equal(t, "100.00", Sum(amounts...).String())
}

func TestParse(t *testing.T) {
	m, err := Parse("12.345")
	require.NoError(t, err)
	assert.Equal(t, "12.35", m.String())

	m, err = Parse("")
	require.NoError(t, err)
	assert.True(t, m.IsZero())

	_, err = Parse("twelve")
	assert.Error(t, err)
}

func TestJSON(t *testing.T) {
	payload, err := json.Marshal(struct {
		Total Money `json:"total"`
	}{Total: MustParse("41")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"total":"41.00"}`, string(payload))

	var in struct {
		A Money `json:"a"`
		B Money `json:"b"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"a":"1.50","b":2.25}`), &in))
	assert.Equal(t, "1.50", in.A.String())
	assert.Equal(t, "2.25", in.B.String())
}

func TestScanValue(t *testing.T) {
	var m Money
	require.NoError(t, m.Scan([]byte("19.90")))
	assert.Equal(t, "19.90", m.String())

	require.NoError(t, m.Scan(float64(41)))
	assert.Equal(t, "41.00", m.String())

	require.NoError(t, m.Scan(nil))
	assert.True(t, m.IsZero())

	v, err := MustParse("7.5").Value()
	require.NoError(t, err)
	assert.Equal(t, "7.50", v)
}
