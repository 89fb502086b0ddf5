package payment

import (
	"crypto/md5"
	"fmt"
	"net/url"
	"strings"
)

// Client builds payment URLs and verifies result callbacks for a
// Robokassa-compatible merchant endpoint.
type Client struct {
	merchantLogin string
	password1     string
	password2     string
	baseURL       string
}

func NewClient(merchantLogin, password1, password2, baseURL string) *Client {
	if baseURL == "" {
		baseURL = "https://auth.robokassa.ru/Merchant/Index.aspx"
	}
	return &Client{
		merchantLogin: merchantLogin,
		password1:     password1,
		password2:     password2,
		baseURL:       baseURL,
	}
}

// PaymentURL returns the hosted checkout URL for an invoice.
// The init signature is md5(login:outSum:invId:password1).
func (c *Client) PaymentURL(invoiceID string, amount float64, description string) string {
	outSum := formatAmount(amount)
	signature := md5Hex(fmt.Sprintf("%s:%s:%s:%s", c.merchantLogin, outSum, invoiceID, c.password1))

	q := url.Values{}
	q.Set("MerchantLogin", c.merchantLogin)
	q.Set("OutSum", outSum)
	q.Set("InvId", invoiceID)
	q.Set("Description", description)
	q.Set("SignatureValue", signature)

	return c.baseURL + "?" + q.Encode()
}

// VerifyCallback checks the result-URL signature md5(outSum:invId:password2).
// The comparison is case-insensitive, as the provider sends uppercase hex.
func (c *Client) VerifyCallback(outSum, invoiceID, signature string) bool {
	expected := md5Hex(fmt.Sprintf("%s:%s:%s", outSum, invoiceID, c.password2))
	return strings.EqualFold(expected, signature)
}

func formatAmount(amount float64) string {
	return fmt.Sprintf("%.2f", amount)
}

func md5Hex(s string) string {
	return fmt.Sprintf("%x", md5.Sum([]byte(s)))
}
