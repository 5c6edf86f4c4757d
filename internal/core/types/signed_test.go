package types

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSignedMoney_Convention(t *testing.T) {
	dr := Dr(MustMoney("500"))
	cr := Cr(MustMoney("500"))

	assert.True(t, dr.IsDebit())
	assert.True(t, cr.IsCredit())
	assert.True(t, dr.Add(cr).IsZero())
	assert.Equal(t, "500.00 Dr", dr.String())
	assert.Equal(t, "500.00 Cr", cr.String())

	// Dr/Cr take the magnitude regardless of the input sign.
	assert.True(t, Dr(MustMoney("-3")).Equal(MustSigned("3")))
	assert.True(t, Cr(MustMoney("-3")).Equal(MustSigned("-3")))
}

func TestSignedMoney_FromExternal(t *testing.T) {
	// Tally writes debits as negative amounts.
	m := FromExternal(decimal.RequireFromString("-250.50"))
	assert.True(t, m.IsDebit())
	assert.True(t, m.DebitPart().Equal(MustMoney("250.5")))
	assert.True(t, m.CreditPart().IsZero())
}

func TestSignedMoney_Tolerance(t *testing.T) {
	assert.True(t, MustSigned("0.009").IsNegligible())
	assert.True(t, MustSigned("-0.004").IsNegligible())
	assert.False(t, MustSigned("0.01").IsNegligible())

	total := MustSigned("100.005").Add(MustSigned("-100"))
	assert.True(t, total.IsNegligible())
}

func TestSignedMoney_JSON(t *testing.T) {
	data, err := json.Marshal(MustSigned("-12.5"))
	require.NoError(t, err)

	var back SignedMoney
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, back.Equal(MustSigned("-12.5")))

	require.NoError(t, json.Unmarshal([]byte(`42.1`), &back))
	assert.True(t, back.Equal(MustSigned("42.1")))
}
