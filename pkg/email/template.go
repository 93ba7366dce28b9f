package email

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"

	"institution-site-backend/internal/domain"
)

// contactEmailLabels is the fixed copy of the notification in one language
type contactEmailLabels struct {
	Heading      string
	Intro        string
	Name         string
	Organization string
	Title        string
	Email        string
	Phone        string
	Country      string
	RequestType  string
	Message      string
	Footer       string
}

var emailLabels = map[domain.Locale]contactEmailLabels{
	domain.LocaleFR: {
		Heading:      "Nouvelle demande de contact",
		Intro:        "Une demande a été envoyée depuis le formulaire de contact du site.",
		Name:         "Nom",
		Organization: "Organisation",
		Title:        "Fonction",
		Email:        "E-mail",
		Phone:        "Téléphone",
		Country:      "Pays",
		RequestType:  "Type de demande",
		Message:      "Message",
		Footer:       "Pour répondre, utilisez simplement la fonction « Répondre » de votre messagerie.",
	},
	domain.LocaleEN: {
		Heading:      "New contact request",
		Intro:        "A request was sent from the website contact form.",
		Name:         "Name",
		Organization: "Organization",
		Title:        "Job title",
		Email:        "Email",
		Phone:        "Phone",
		Country:      "Country",
		RequestType:  "Request type",
		Message:      "Message",
		Footer:       "To answer, simply use the Reply function of your mail client.",
	},
}

var requestTypeLabels = map[domain.Locale]map[domain.RequestType]string{
	domain.LocaleFR: {
		domain.RequestFinancement:    "Demande de financement",
		domain.RequestInvestissement: "Projet d'investissement",
		domain.RequestConseil:        "Demande de conseil",
		domain.RequestGestion:        "Gestion d'actifs",
		domain.RequestAutre:          "Autre demande",
	},
	domain.LocaleEN: {
		domain.RequestFinancement:    "Financing request",
		domain.RequestInvestissement: "Investment project",
		domain.RequestConseil:        "Advisory request",
		domain.RequestGestion:        "Asset management",
		domain.RequestAutre:          "Other request",
	},
}

// RequestTypeLabel returns the localized label of a request type.
// Unknown types fall back to their raw value.
func RequestTypeLabel(t domain.RequestType, locale domain.Locale) string {
	labels, ok := requestTypeLabels[locale]
	if !ok {
		labels = requestTypeLabels[domain.DefaultLocale]
	}
	if label, ok := labels[t]; ok {
		return label
	}
	return string(t)
}

// contactEmailData holds the data for contact form emails
type contactEmailData struct {
	Lang         domain.Locale
	L            contactEmailLabels
	Name         string
	Organization string
	Title        string
	Email        string
	Phone        string
	Country      string
	RequestType  string
	Message      string
}

// contactEmailTemplate is the HTML template for contact form emails.
// html/template escapes every interpolated value; optional rows are left out when empty.
const contactEmailTemplate = `<!DOCTYPE html>
<html lang="{{.Lang}}">
<head>
    <meta charset="UTF-8">
    <title>{{.L.Heading}}</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #0b3d63; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .value { margin-top: 5px; }
        .message-box { background: white; padding: 15px; border-left: 4px solid #0b3d63; margin-top: 10px; }
        .footer { text-align: center; padding: 20px; color: #888; font-size: 12px; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>{{.L.Heading}}</h1>
        </div>
        <div class="content">
            <p>{{.L.Intro}}</p>
            <div class="field">
                <div class="label">{{.L.RequestType}}</div>
                <div class="value">{{.RequestType}}</div>
            </div>
            <div class="field">
                <div class="label">{{.L.Name}}</div>
                <div class="value">{{.Name}}</div>
            </div>
            <div class="field">
                <div class="label">{{.L.Organization}}</div>
                <div class="value">{{.Organization}}</div>
            </div>
{{- if .Title}}
            <div class="field">
                <div class="label">{{.L.Title}}</div>
                <div class="value">{{.Title}}</div>
            </div>
{{- end}}
            <div class="field">
                <div class="label">{{.L.Email}}</div>
                <div class="value">{{.Email}}</div>
            </div>
{{- if .Phone}}
            <div class="field">
                <div class="label">{{.L.Phone}}</div>
                <div class="value">{{.Phone}}</div>
            </div>
{{- end}}
{{- if .Country}}
            <div class="field">
                <div class="label">{{.L.Country}}</div>
                <div class="value">{{.Country}}</div>
            </div>
{{- end}}
            <div class="field">
                <div class="label">{{.L.Message}}</div>
                <div class="message-box">{{nl2br .Message}}</div>
            </div>
        </div>
        <div class="footer">
            <p>{{.L.Footer}}</p>
        </div>
    </div>
</body>
</html>`

var contactTmpl = template.Must(template.New("contact").Funcs(template.FuncMap{
	"nl2br": nl2br,
}).Parse(contactEmailTemplate))

// nl2br escapes s and turns its line breaks into <br> tags
func nl2br(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	escaped := template.HTMLEscapeString(s)
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>\n"))
}

// ContactSubject builds "<request type label>: <organization>"
func ContactSubject(req *domain.ContactRequest, locale domain.Locale) string {
	return fmt.Sprintf("%s: %s", RequestTypeLabel(req.RequestType, locale), req.Organization)
}

// RenderContactEmail builds the notification for a validated submission.
// The output only depends on its arguments.
func RenderContactEmail(req *domain.ContactRequest, locale domain.Locale, to string) (domain.RenderedEmail, error) {
	labels, ok := emailLabels[locale]
	if !ok {
		locale = domain.DefaultLocale
		labels = emailLabels[locale]
	}

	data := contactEmailData{
		Lang:         locale,
		L:            labels,
		Name:         req.Name,
		Organization: req.Organization,
		Title:        req.Title,
		Email:        req.Email,
		Phone:        req.Phone,
		Country:      req.Country,
		RequestType:  RequestTypeLabel(req.RequestType, locale),
		Message:      req.Message,
	}

	var body bytes.Buffer
	if err := contactTmpl.Execute(&body, data); err != nil {
		return domain.RenderedEmail{}, fmt.Errorf("failed to execute email template: %w", err)
	}

	return domain.RenderedEmail{
		To:      to,
		ReplyTo: req.Email,
		Subject: ContactSubject(req, locale),
		HTML:    body.String(),
	}, nil
}
