package checkout

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatCardNumber(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"single group", "4242", "4242"},
		{"partial group", "42424", "4242 4"},
		{"full number", "4242424242424242", "4242 4242 4242 4242"},
		{"already formatted", "4242 4242 4242 4242", "4242 4242 4242 4242"},
		{"dashes stripped", "4242-4242-4242-4242", "4242 4242 4242 4242"},
		{"letters stripped", "4242abcd4242", "4242 4242"},
		{"truncated past 16 digits", "42424242424242429999", "4242 4242 4242 4242"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatCardNumber(tc.input))
		})
	}
}

func TestFormatExpiry(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"one digit", "1", "1"},
		{"two digits no slash", "12", "12"},
		{"three digits", "123", "12/3"},
		{"four digits", "1226", "12/26"},
		{"slash preserved by reformat", "12/26", "12/26"},
		{"truncated past four digits", "122634", "12/26"},
		{"non-digits stripped", "12-26", "12/26"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, FormatExpiry(tc.input))
		})
	}
}

func TestPaymentMethodIsValid(t *testing.T) {
	assert.True(t, PaymentCard.IsValid())
	assert.True(t, PaymentUPI.IsValid())
	assert.True(t, PaymentCOD.IsValid())
	assert.False(t, PaymentMethod("paypal").IsValid())
	assert.False(t, PaymentMethod("").IsValid())
}
