package checkout

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FieldError is a single field-level validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries the field-level failures of a rejected submission.
// It is always recovered locally: the session returns to editing.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		msgs[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// Has reports whether the error contains a failure for the given field.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Validate checks the form against the required-field, terms, card, and
// cash-on-delivery rules. grandTotal is the order total the payment method
// must be able to settle; codCeiling is the currency-specific COD limit.
// An empty result means the form may proceed to submission.
func Validate(form FormData, grandTotal, codCeiling decimal.Decimal) []FieldError {
	var errs []FieldError

	required := []struct {
		field string
		value string
	}{
		{"fullName", form.FullName},
		{"email", form.Email},
		{"phone", form.Phone},
		{"street", form.Street},
		{"city", form.City},
		{"postCode", form.PostCode},
		{"country", form.Country},
	}
	for _, r := range required {
		if strings.TrimSpace(r.value) == "" {
			errs = append(errs, FieldError{Field: r.field, Message: "is required"})
		}
	}

	if !form.AgreeTerms {
		errs = append(errs, FieldError{Field: "agreeTerms", Message: "terms must be accepted"})
	}

	switch form.PaymentMethod {
	case PaymentCard:
		if digits := digitsOnly(form.CardNumber); len(digits) != cardDigits {
			errs = append(errs, FieldError{
				Field:   "cardNumber",
				Message: fmt.Sprintf("must be exactly %d digits", cardDigits),
			})
		}
		if strings.TrimSpace(form.CardExpiry) == "" {
			errs = append(errs, FieldError{Field: "cardExpiry", Message: "is required"})
		}
		if strings.TrimSpace(form.CardCVC) == "" {
			errs = append(errs, FieldError{Field: "cardCVC", Message: "is required"})
		}
	case PaymentUPI:
		// No extra fields; settlement happens out of band.
	case PaymentCOD:
		// Enforced as a validation failure, not a disclaimer: large orders
		// are not eligible for cash on delivery.
		if grandTotal.GreaterThanOrEqual(codCeiling) {
			errs = append(errs, FieldError{
				Field:   "paymentMethod",
				Message: fmt.Sprintf("orders of %s or more are not eligible for cash on delivery", codCeiling.String()),
			})
		}
	default:
		errs = append(errs, FieldError{Field: "paymentMethod", Message: "unknown payment method"})
	}

	return errs
}
