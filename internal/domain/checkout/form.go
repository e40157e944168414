// Package checkout validates checkout form data and drives the submission
// state machine that turns a cart into an immutable order.
package checkout

import "strings"

// PaymentMethod enumerates the supported settlement methods.
type PaymentMethod string

const (
	PaymentCard PaymentMethod = "card"
	PaymentUPI  PaymentMethod = "upi"
	// PaymentCOD is cash on delivery, settled at delivery time. Orders at or
	// above the configured ceiling are not eligible.
	PaymentCOD PaymentMethod = "cod"
)

// IsValid reports whether m is a known payment method.
func (m PaymentMethod) IsValid() bool {
	switch m {
	case PaymentCard, PaymentUPI, PaymentCOD:
		return true
	}
	return false
}

// FormData is the transient checkout form. It lives for one checkout session
// and is discarded after order creation or abandonment.
type FormData struct {
	FullName string
	Email    string
	Phone    string

	Street   string
	City     string
	State    string
	PostCode string
	Country  string

	PaymentMethod PaymentMethod
	CardNumber    string
	CardExpiry    string
	CardCVC       string

	AgreeTerms bool

	// IdempotencyKey, when set, becomes the order id so a retried submission
	// after a dropped connection cannot create a duplicate order.
	IdempotencyKey string
}

const cardDigits = 16

// digitsOnly strips every non-digit character from s.
func digitsOnly(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// FormatCardNumber normalizes card input for display: non-digits are
// stripped, the result is truncated to the first 16 digits, and digits are
// grouped in blocks of 4 separated by a single space.
func FormatCardNumber(input string) string {
	digits := digitsOnly(input)
	if len(digits) > cardDigits {
		digits = digits[:cardDigits]
	}

	var groups []string
	for i := 0; i < len(digits); i += 4 {
		end := min(i+4, len(digits))
		groups = append(groups, digits[i:end])
	}
	return strings.Join(groups, " ")
}

// FormatExpiry normalizes expiry input to MM/YY: digits only, at most 4,
// with a slash inserted after the second digit.
func FormatExpiry(input string) string {
	digits := digitsOnly(input)
	if len(digits) > 4 {
		digits = digits[:4]
	}
	if len(digits) <= 2 {
		return digits
	}
	return digits[:2] + "/" + digits[2:]
}
