// Package address validates the shipping details collected at checkout.
package address

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/joao-fontenele/digitalshop/internal/domain"
)

const (
	FieldName           = "name"
	FieldAddress        = "address"
	FieldCountry        = "country"
	FieldMobileNumber   = "mobile_number"
	FieldWhatsappNumber = "whatsapp_number"
	FieldPincode        = "pincode"
)

// RequiredFields is the order fields are reported in.
var RequiredFields = []string{FieldName, FieldAddress, FieldCountry, FieldMobileNumber, FieldWhatsappNumber}

var (
	ErrRequired       = errors.New("is required")
	ErrTooShort       = errors.New("must be at least 2 characters")
	ErrPhoneFormat    = errors.New("must include country code, e.g. +977 9801234567")
	ErrUnknownCountry = errors.New("is not a supported country")
	ErrUnknownField   = errors.New("unknown field")
)

var phonePattern = regexp.MustCompile(`^\+\d{1,4}\s?\d{6,15}$`)

var countries = []string{
	"Nepal",
	"India",
	"Bangladesh",
	"Bhutan",
	"Sri Lanka",
	"Pakistan",
	"China",
	"United Arab Emirates",
	"Qatar",
	"Saudi Arabia",
	"Malaysia",
	"Japan",
	"South Korea",
	"Australia",
	"United Kingdom",
	"United States",
	"Canada",
	"Other",
}

var countrySet = func() map[string]string {
	m := make(map[string]string, len(countries))
	for _, c := range countries {
		m[strings.ToLower(c)] = c
	}
	return m
}()

// Countries returns the supported shipping countries; "Other" is last.
func Countries() []string {
	out := make([]string, len(countries))
	copy(out, countries)
	return out
}

type FieldError struct {
	Field string `json:"field"`
	Err   error  `json:"-"`
}

func (e FieldError) Error() string {
	return e.Field + " " + e.Err.Error()
}

func (e FieldError) Unwrap() error { return e.Err }

// ValidationError carries every failing field of an address.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid address: %s", strings.Join(names, ", "))
}

// Messages maps field name to a user-facing message.
func (e *ValidationError) Messages() map[string]string {
	out := make(map[string]string, len(e.Fields))
	for _, f := range e.Fields {
		out[f.Field] = f.Error()
	}
	return out
}

// ValidateField checks one field by name. Nil means the value is acceptable.
func ValidateField(name, value string) error {
	v := strings.TrimSpace(value)
	switch name {
	case FieldName:
		if v == "" {
			return ErrRequired
		}
		if len([]rune(v)) < 2 {
			return ErrTooShort
		}
	case FieldAddress:
		if v == "" {
			return ErrRequired
		}
	case FieldCountry:
		if v == "" {
			return ErrRequired
		}
		if _, ok := countrySet[strings.ToLower(v)]; !ok {
			return ErrUnknownCountry
		}
	case FieldMobileNumber, FieldWhatsappNumber:
		if v == "" {
			return ErrRequired
		}
		if !phonePattern.MatchString(v) {
			return ErrPhoneFormat
		}
	case FieldPincode:
		return nil
	default:
		return ErrUnknownField
	}
	return nil
}

func fieldValues(a domain.ShippingAddress) map[string]string {
	return map[string]string{
		FieldName:           a.Name,
		FieldAddress:        a.Address,
		FieldCountry:        a.Country,
		FieldMobileNumber:   a.MobileNumber,
		FieldWhatsappNumber: a.WhatsappNumber,
		FieldPincode:        a.Pincode,
	}
}

// ValidateAll returns the missing or invalid fields, in RequiredFields order.
func ValidateAll(a domain.ShippingAddress) []FieldError {
	values := fieldValues(a)
	var out []FieldError
	for _, field := range RequiredFields {
		if err := ValidateField(field, values[field]); err != nil {
			out = append(out, FieldError{Field: field, Err: err})
		}
	}
	return out
}

// Validate wraps ValidateAll into a single error.
func Validate(a domain.ShippingAddress) error {
	if fields := ValidateAll(a); len(fields) > 0 {
		return &ValidationError{Fields: fields}
	}
	return nil
}

// Progress is the percentage (0-100) of required fields that are filled and valid.
func Progress(a domain.ShippingAddress) int {
	valid := len(RequiredFields) - len(ValidateAll(a))
	return valid * 100 / len(RequiredFields)
}

func Complete(a domain.ShippingAddress) bool {
	return Progress(a) == 100
}

// Normalize trims every field and maps the country to its canonical spelling.
func Normalize(a domain.ShippingAddress) domain.ShippingAddress {
	a.Name = strings.TrimSpace(a.Name)
	a.Address = strings.TrimSpace(a.Address)
	a.Country = strings.TrimSpace(a.Country)
	if canonical, ok := countrySet[strings.ToLower(a.Country)]; ok {
		a.Country = canonical
	}
	a.MobileNumber = strings.TrimSpace(a.MobileNumber)
	a.WhatsappNumber = strings.TrimSpace(a.WhatsappNumber)
	a.Pincode = strings.TrimSpace(a.Pincode)
	return a
}
