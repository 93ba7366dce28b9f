package domain

import "context"

// RequestType is the closed set of reasons a visitor can pick on the contact form
type RequestType string

const (
	RequestFinancement    RequestType = "financement"
	RequestInvestissement RequestType = "investissement"
	RequestConseil        RequestType = "conseil"
	RequestGestion        RequestType = "gestion"
	RequestAutre          RequestType = "autre"
)

// RequestTypes lists every accepted request type in display order
var RequestTypes = []RequestType{
	RequestFinancement,
	RequestInvestissement,
	RequestConseil,
	RequestGestion,
	RequestAutre,
}

// Valid reports whether t belongs to the closed enumeration
func (t RequestType) Valid() bool {
	for _, rt := range RequestTypes {
		if rt == t {
			return true
		}
	}
	return false
}

// Locale is a supported display language
type Locale string

const (
	LocaleFR Locale = "fr"
	LocaleEN Locale = "en"

	DefaultLocale = LocaleFR
)

// ParseLocale returns the matching locale, falling back to DefaultLocale
func ParseLocale(s string) (Locale, bool) {
	switch Locale(s) {
	case LocaleFR:
		return LocaleFR, true
	case LocaleEN:
		return LocaleEN, true
	}
	return DefaultLocale, false
}

// ContactRequest represents a contact form submission.
// It lives for a single request and is never persisted.
type ContactRequest struct {
	Name         string      `json:"name" validate:"required,min=2,max=100"`
	Organization string      `json:"organization" validate:"required,min=2,max=200"`
	Title        string      `json:"title,omitempty" validate:"omitempty,max=100"`
	Email        string      `json:"email" validate:"required,max=254,email"`
	Phone        string      `json:"phone,omitempty" validate:"omitempty,intl_phone"`
	Country      string      `json:"country,omitempty" validate:"omitempty,max=100"`
	RequestType  RequestType `json:"requestType" validate:"required,request_type"`
	Message      string      `json:"message" validate:"required,min=20,max=2000"`

	// Anti-spam fields
	Website        string `json:"website,omitempty"`
	FormRenderedAt *int64 `json:"formRenderedAt,omitempty"`

	// Locale is the display language the visitor declared, if any
	Locale Locale `json:"locale,omitempty"`
}

// SubmissionState is the terminal (or last reached) state of a contact submission
type SubmissionState string

const (
	StateReceived        SubmissionState = "received"
	StateInvalid         SubmissionState = "invalid"
	StateValidated       SubmissionState = "validated"
	StateSilentlyDropped SubmissionState = "silently_dropped"
	StateTooFast         SubmissionState = "too_fast"
	StateSpamClean       SubmissionState = "spam_clean"
	StateConfigMissing   SubmissionState = "config_missing"
	StateConfigChecked   SubmissionState = "config_checked"
	StateRendered        SubmissionState = "rendered"
	StateDispatched      SubmissionState = "dispatched"
	StateDelivered       SubmissionState = "delivered"
	StateDeliveryFailed  SubmissionState = "delivery_failed"
	StateUnexpected      SubmissionState = "unexpected"
)

// SubmissionOutcome is the single result returned for every submission.
// Errors is only set on the failure variant, keyed by field path.
type SubmissionOutcome struct {
	Success bool                `json:"success"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors,omitempty"`

	State SubmissionState `json:"-"`
}

// RenderedEmail is the notification built from a validated submission
type RenderedEmail struct {
	To      string
	ReplyTo string
	Subject string
	HTML    string
}

// ContactUsecase defines the interface for contact form operations
type ContactUsecase interface {
	// Submit runs the whole intake pipeline and never returns an error:
	// every failure is folded into the outcome.
	Submit(ctx context.Context, req *ContactRequest) SubmissionOutcome
}
