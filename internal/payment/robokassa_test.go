package payment

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaymentURL(t *testing.T) {
	c := NewClient("shop", "pass1", "pass2", "")

	raw := c.PaymentURL("42", 29, "Premium plan, 30 days")
	parsed, err := url.Parse(raw)
	require.NoError(t, err)
	assert.Equal(t, "auth.robokassa.ru", parsed.Host)

	q := parsed.Query()
	assert.Equal(t, "shop", q.Get("MerchantLogin"))
	assert.Equal(t, "29.00", q.Get("OutSum"))
	assert.Equal(t, "42", q.Get("InvId"))
	assert.Equal(t, "Premium plan, 30 days", q.Get("Description"))

	expected := fmt.Sprintf("%x", md5.Sum([]byte("shop:29.00:42:pass1")))
	assert.Equal(t, expected, q.Get("SignatureValue"))
}

func TestPaymentURL_CustomBase(t *testing.T) {
	c := NewClient("shop", "pass1", "pass2", "https://pay.example.com/checkout")

	raw := c.PaymentURL("7", 10.5, "test")
	assert.True(t, strings.HasPrefix(raw, "https://pay.example.com/checkout?"))
	assert.Contains(t, raw, "OutSum=10.50")
}

func TestVerifyCallback(t *testing.T) {
	c := NewClient("shop", "pass1", "pass2", "")

	sig := fmt.Sprintf("%x", md5.Sum([]byte("29.00:42:pass2")))
	assert.True(t, c.VerifyCallback("29.00", "42", sig))

	// The provider sends uppercase hex.
	assert.True(t, c.VerifyCallback("29.00", "42", strings.ToUpper(sig)))

	assert.False(t, c.VerifyCallback("29.00", "42", "bogus"))
	assert.False(t, c.VerifyCallback("30.00", "42", sig))
	assert.False(t, c.VerifyCallback("29.00", "43", sig))
}
