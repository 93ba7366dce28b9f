package usecase

import (
	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/email"
)

// ContactMessages is the user-facing copy of every submission outcome in one language.
// None of it carries transport or configuration details.
type ContactMessages struct {
	Success     string
	Invalid     string
	TooFast     string
	Unavailable string
	Unexpected  string
	Delivery    map[email.DeliveryErrorKind]string
}

var contactMessages = map[domain.Locale]ContactMessages{
	domain.LocaleFR: {
		Success:     "Merci pour votre message. Notre équipe vous répondra sous 48 heures ouvrées.",
		Invalid:     "Veuillez corriger les champs signalés du formulaire.",
		TooFast:     "Le formulaire a été envoyé très rapidement. Merci de prendre le temps de le relire avant de réessayer.",
		Unavailable: "Le formulaire de contact est momentanément indisponible. Merci de contacter l'administrateur du site.",
		Unexpected:  "Une erreur inattendue est survenue. Merci de réessayer plus tard.",
		Delivery: map[email.DeliveryErrorKind]string{
			email.DeliveryTimeout:           "Le serveur de messagerie n'a pas répondu à temps. Merci de réessayer dans quelques minutes.",
			email.DeliveryAuthFailure:       "Le service d'envoi est mal configuré (authentification refusée). Merci de contacter l'administrateur du site.",
			email.DeliveryRateLimited:       "Trop de messages ont été envoyés récemment. Merci de réessayer plus tard.",
			email.DeliveryUnreachable:       "Le serveur de messagerie est injoignable. Merci de réessayer plus tard.",
			email.DeliveryRecipientRejected: "L'adresse de destination a été refusée par le serveur de messagerie. Merci de contacter l'administrateur du site.",
			email.DeliveryUnknown:           "Votre message n'a pas pu être envoyé. Merci de réessayer plus tard.",
		},
	},
	domain.LocaleEN: {
		Success:     "Thank you for your message. Our team will get back to you within 48 business hours.",
		Invalid:     "Please correct the highlighted fields of the form.",
		TooFast:     "The form was submitted very quickly. Please take a little more time to review it and try again.",
		Unavailable: "The contact form is temporarily unavailable. Please contact the site administrator.",
		Unexpected:  "An unexpected error occurred. Please try again later.",
		Delivery: map[email.DeliveryErrorKind]string{
			email.DeliveryTimeout:           "The mail server did not respond in time. Please try again in a few minutes.",
			email.DeliveryAuthFailure:       "The email service is misconfigured (authentication rejected). Please contact the site administrator.",
			email.DeliveryRateLimited:       "Too many messages were sent recently. Please try again later.",
			email.DeliveryUnreachable:       "The mail server cannot be reached. Please try again later.",
			email.DeliveryRecipientRejected: "The destination address was rejected by the mail server. Please contact the site administrator.",
			email.DeliveryUnknown:           "Your message could not be sent. Please try again later.",
		},
	},
}

// ContactMessagesFor returns the outcome copy of locale, or of the default locale
func ContactMessagesFor(locale domain.Locale) ContactMessages {
	if m, ok := contactMessages[locale]; ok {
		return m
	}
	return contactMessages[domain.DefaultLocale]
}

// deliveryMessage returns the message of kind, falling back to the unknown-failure copy
func (m ContactMessages) deliveryMessage(kind email.DeliveryErrorKind) string {
	if msg, ok := m.Delivery[kind]; ok {
		return msg
	}
	return m.Delivery[email.DeliveryUnknown]
}
