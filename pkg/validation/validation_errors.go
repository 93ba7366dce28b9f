package validation

import (
	"errors"
	"fmt"
	"strings"

	"institution-site-backend/internal/domain"

	"github.com/go-playground/validator/v10"
)

// catalog holds the user-facing text of one display language.
// Catalogs differ only in wording; constraints live on the struct tags.
type catalog struct {
	labels   map[string]string
	required string
	min      string
	max      string
	email    string
	phone    string
	reqType  string
	fallback string
}

var catalogs = map[domain.Locale]catalog{
	domain.LocaleFR: {
		labels: map[string]string{
			"name":         "Nom",
			"organization": "Organisation",
			"title":        "Fonction",
			"email":        "E-mail",
			"phone":        "Téléphone",
			"country":      "Pays",
			"requestType":  "Type de demande",
			"message":      "Message",
		},
		required: "%s : ce champ est obligatoire",
		min:      "%s : minimum %s caractères",
		max:      "%s : maximum %s caractères",
		email:    "%s : adresse e-mail invalide",
		phone:    "%s : numéro invalide (format international, 7 à 15 chiffres)",
		reqType:  "%s : doit être l'une des valeurs suivantes : %s",
		fallback: "%s : valeur invalide (%s)",
	},
	domain.LocaleEN: {
		labels: map[string]string{
			"name":         "Name",
			"organization": "Organization",
			"title":        "Job title",
			"email":        "Email",
			"phone":        "Phone",
			"country":      "Country",
			"requestType":  "Request type",
			"message":      "Message",
		},
		required: "%s: this field is required",
		min:      "%s: at least %s characters",
		max:      "%s: at most %s characters",
		email:    "%s: invalid email address",
		phone:    "%s: invalid number (international format, 7 to 15 digits)",
		reqType:  "%s: must be one of: %s",
		fallback: "%s: invalid value (%s)",
	},
}

func catalogFor(locale domain.Locale) catalog {
	if c, ok := catalogs[locale]; ok {
		return c
	}
	return catalogs[domain.DefaultLocale]
}

// FormatValidationErrors converts validator.ValidationErrors to localized messages
// keyed by field path. Messages of one field keep the order they were reported in.
func FormatValidationErrors(err error, locale domain.Locale) map[string][]string {
	fields := make(map[string][]string)

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return fields
	}

	c := catalogFor(locale)
	for _, e := range validationErrors {
		fields[e.Field()] = append(fields[e.Field()], c.format(e))
	}
	return fields
}

// format formats a single validation error to a user-friendly message
func (c catalog) format(e validator.FieldError) string {
	label := c.label(e.Field())

	switch e.Tag() {
	case "required":
		return fmt.Sprintf(c.required, label)
	case "min":
		return fmt.Sprintf(c.min, label, e.Param())
	case "max":
		return fmt.Sprintf(c.max, label, e.Param())
	case "email":
		return fmt.Sprintf(c.email, label)
	case "intl_phone":
		return fmt.Sprintf(c.phone, label)
	case "request_type":
		return fmt.Sprintf(c.reqType, label, requestTypeOptions())
	default:
		return fmt.Sprintf(c.fallback, label, e.Tag())
	}
}

func (c catalog) label(field string) string {
	if label, ok := c.labels[field]; ok {
		return label
	}
	return field
}

func requestTypeOptions() string {
	options := make([]string, len(domain.RequestTypes))
	for i, rt := range domain.RequestTypes {
		options[i] = string(rt)
	}
	return strings.Join(options, ", ")
}
