package address

import (
	"errors"
	"testing"

	"github.com/joao-fontenele/digitalshop/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validAddress() domain.ShippingAddress {
	return domain.ShippingAddress{
		Name:           "Sita Sharma",
		Address:        "Baneshwor, Kathmandu",
		Country:        "Nepal",
		MobileNumber:   "+977 9801112233",
		WhatsappNumber: "+9779801112233",
	}
}

func TestValidateField(t *testing.T) {
	tests := []struct {
		name    string
		field   string
		value   string
		wantErr error
	}{
		{"name ok", FieldName, "Ram", nil},
		{"name blank", FieldName, "   ", ErrRequired},
		{"name one char after trim", FieldName, " R ", ErrTooShort},
		{"address ok", FieldAddress, "Lalitpur", nil},
		{"address blank", FieldAddress, "\t", ErrRequired},
		{"country ok", FieldCountry, "Nepal", nil},
		{"country case insensitive", FieldCountry, "india", nil},
		{"country other", FieldCountry, "Other", nil},
		{"country missing", FieldCountry, "", ErrRequired},
		{"country unknown", FieldCountry, "Atlantis", ErrUnknownCountry},
		{"mobile with space", FieldMobileNumber, "+977 9801112233", nil},
		{"mobile without space", FieldMobileNumber, "+9779801112233", nil},
		{"mobile no country code", FieldMobileNumber, "98011122", ErrPhoneFormat},
		{"mobile too short", FieldMobileNumber, "+977 12345", ErrPhoneFormat},
		{"mobile too long", FieldMobileNumber, "+1 1234567890123456", ErrPhoneFormat},
		{"mobile letters", FieldMobileNumber, "+977 98011abc22", ErrPhoneFormat},
		{"whatsapp missing", FieldWhatsappNumber, "", ErrRequired},
		{"whatsapp ok", FieldWhatsappNumber, "+91 9876543210", nil},
		{"pincode optional", FieldPincode, "", nil},
		{"unknown field", "favourite_colour", "blue", ErrUnknownField},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateField(tt.field, tt.value)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestValidateAll(t *testing.T) {
	t.Run("valid address has no errors", func(t *testing.T) {
		assert.Empty(t, ValidateAll(validAddress()))
		assert.NoError(t, Validate(validAddress()))
	})

	t.Run("mobile without country code is reported", func(t *testing.T) {
		a := validAddress()
		a.MobileNumber = "98011122"

		fields := ValidateAll(a)
		require.Len(t, fields, 1)
		assert.Equal(t, FieldMobileNumber, fields[0].Field)
		assert.ErrorIs(t, fields[0], ErrPhoneFormat)
	})

	t.Run("empty address reports every required field in order", func(t *testing.T) {
		fields := ValidateAll(domain.ShippingAddress{})
		got := make([]string, len(fields))
		for i, f := range fields {
			got[i] = f.Field
		}
		assert.Equal(t, RequiredFields, got)
	})

	t.Run("validate returns a validation error", func(t *testing.T) {
		a := validAddress()
		a.Name = ""
		a.WhatsappNumber = "123"

		err := Validate(a)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr))
		assert.Len(t, verr.Fields, 2)
		msgs := verr.Messages()
		assert.Contains(t, msgs, FieldName)
		assert.Contains(t, msgs, FieldWhatsappNumber)
	})
}

func TestProgress(t *testing.T) {
	assert.Equal(t, 0, Progress(domain.ShippingAddress{}))
	assert.Equal(t, 100, Progress(validAddress()))
	assert.True(t, Complete(validAddress()))

	a := validAddress()
	a.MobileNumber = "98011122"
	assert.Equal(t, 80, Progress(a))
	assert.False(t, Complete(a))

	partial := domain.ShippingAddress{Name: "Hari", Country: "Nepal"}
	assert.Equal(t, 40, Progress(partial))
}

func TestNormalize(t *testing.T) {
	got := Normalize(domain.ShippingAddress{
		Name:    "  Gita ",
		Country: " sri lanka ",
		Pincode: " 44600 ",
	})
	assert.Equal(t, "Gita", got.Name)
	assert.Equal(t, "Sri Lanka", got.Country)
	assert.Equal(t, "44600", got.Pincode)
}

func TestCountries_OtherIsLast(t *testing.T) {
	list := Countries()
	require.NotEmpty(t, list)
	assert.Equal(t, "Other", list[len(list)-1])
}
