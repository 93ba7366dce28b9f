package validation

import (
	"fmt"
	"sort"
	"strings"

	"institution-site-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// ValidationError carries the localized violations of a rejected payload
type ValidationError struct {
	Fields map[string][]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return fmt.Sprintf("validation failed on %s", strings.Join(names, ", "))
}

// Result is the outcome of Schema.Validate: exactly one of Request or Err is set.
type Result struct {
	Request *domain.ContactRequest
	Err     *ValidationError
}

// Valid reports whether the payload passed every constraint
func (r Result) Valid() bool {
	return r.Err == nil
}

// Schema validates contact payloads and reports violations in one display language
type Schema struct {
	locale   domain.Locale
	validate *validator.Validate
}

// NewSchema binds the shared constraint set to the messages of locale.
// The validator must come from NewValidator.
func NewSchema(v *validator.Validate, locale domain.Locale) *Schema {
	if _, ok := catalogs[locale]; !ok {
		locale = domain.DefaultLocale
	}
	return &Schema{locale: locale, validate: v}
}

// Locale returns the display language of the schema messages
func (s *Schema) Locale() domain.Locale {
	return s.locale
}

// Validate normalizes a copy of req and checks it. The caller's value is left untouched.
func (s *Schema) Validate(req *domain.ContactRequest) Result {
	if req == nil {
		return Result{Err: &ValidationError{Fields: map[string][]string{
			"": {fmt.Sprintf(catalogFor(s.locale).fallback, "payload", "required")},
		}}}
	}

	normalized := Normalize(*req)
	if err := s.validate.Struct(&normalized); err != nil {
		fields := FormatValidationErrors(err, s.locale)
		if len(fields) == 0 {
			// Not a field error (e.g. invalid validation target)
			fields[""] = []string{fmt.Sprintf(catalogFor(s.locale).fallback, "payload", err.Error())}
		}
		return Result{Err: &ValidationError{Fields: fields}}
	}
	return Result{Request: &normalized}
}

// Normalize trims every text field except the honeypot and lower-cases the email address
func Normalize(req domain.ContactRequest) domain.ContactRequest {
	req.Name = strings.TrimSpace(req.Name)
	req.Organization = strings.TrimSpace(req.Organization)
	req.Title = strings.TrimSpace(req.Title)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	req.Country = strings.TrimSpace(req.Country)
	req.RequestType = domain.RequestType(strings.TrimSpace(string(req.RequestType)))
	req.Message = strings.TrimSpace(req.Message)
	return req
}
