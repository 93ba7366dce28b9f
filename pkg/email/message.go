package email

import (
	"bytes"
	"fmt"
	"mime"
	"mime/quotedprintable"
	"net/mail"
	"strings"
	"time"

	"institution-site-backend/internal/domain"

	"github.com/google/uuid"
)

// headerSanitizer removes line breaks so user input cannot inject headers
var headerSanitizer = strings.NewReplacer("\r", "", "\n", "")

// encodeSubject Q-encodes subject and folds between encoded-words,
// keeping each header line well under the 998 octet limit.
func encodeSubject(subject string) string {
	encoded := mime.QEncoding.Encode("UTF-8", headerSanitizer.Replace(subject))
	return strings.ReplaceAll(encoded, "?= =?", "?=\r\n =?")
}

func addressHeader(addr string) string {
	return headerSanitizer.Replace((&mail.Address{Address: addr}).String())
}

// buildMessage assembles the MIME message sent over SMTP
func buildMessage(from string, msg domain.RenderedEmail, now time.Time) ([]byte, error) {
	var buf bytes.Buffer

	domainPart := "localhost"
	if at := strings.LastIndex(from, "@"); at >= 0 && at < len(from)-1 {
		domainPart = from[at+1:]
	}

	headers := []struct{ key, value string }{
		{"From", addressHeader(from)},
		{"To", addressHeader(msg.To)},
		{"Subject", encodeSubject(msg.Subject)},
		{"Date", now.Format(time.RFC1123Z)},
		{"Message-ID", fmt.Sprintf("<%s@%s>", uuid.NewString(), headerSanitizer.Replace(domainPart))},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
		{"Content-Transfer-Encoding", "quoted-printable"},
	}
	if msg.ReplyTo != "" {
		headers = append(headers, struct{ key, value string }{"Reply-To", addressHeader(msg.ReplyTo)})
	}

	for _, h := range headers {
		fmt.Fprintf(&buf, "%s: %s\r\n", h.key, h.value)
	}
	buf.WriteString("\r\n")

	qp := quotedprintable.NewWriter(&buf)
	if _, err := qp.Write([]byte(msg.HTML)); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	if err := qp.Close(); err != nil {
		return nil, fmt.Errorf("encode body: %w", err)
	}
	return buf.Bytes(), nil
}
