package validation

import (
	"reflect"
	"regexp"
	"strings"

	"institution-site-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// Regex patterns
var (
	// International dialing: optional +, a digit, then digits and the usual separators
	phoneRegex = regexp.MustCompile(`^\+?[0-9][0-9 ().-]{6,19}$`)
)

// NewValidator returns a validator configured for contact payloads.
// Field errors are reported under their JSON names.
func NewValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(jsonFieldName)
	RegisterValidators(v)
	return v
}

// RegisterValidators registers custom validators to the validator instance
func RegisterValidators(v *validator.Validate) {
	_ = v.RegisterValidation("intl_phone", ValidPhone)
	_ = v.RegisterValidation("request_type", ValidRequestType)
}

// ValidPhone validates an international phone number
func ValidPhone(fl validator.FieldLevel) bool {
	val := fl.Field().String()
	if val == "" {
		return true // Optional, use required if needed
	}
	digits := 0
	for _, r := range val {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7 && digits <= 15 && phoneRegex.MatchString(val)
}

// ValidRequestType validates the request type against the closed enumeration
func ValidRequestType(fl validator.FieldLevel) bool {
	return domain.RequestType(fl.Field().String()).Valid()
}

func jsonFieldName(fld reflect.StructField) string {
	name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
	if name == "-" {
		return ""
	}
	if name == "" {
		return fld.Name
	}
	return name
}
