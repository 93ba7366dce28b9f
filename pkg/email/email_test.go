package email_test

import (
	"context"
	"crypto/tls"
	"crypto/x509"
	"net"
	"testing"
	"time"

	"institution-site-backend/config"
	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/email"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func relayConfig(port int, secure bool) *config.Config {
	return &config.Config{
		SMTPHost:      "127.0.0.1",
		SMTPPort:      port,
		SMTPSecure:    secure,
		SMTPUsername:  "relay-user",
		SMTPPassword:  "relay-secret",
		SMTPFromEmail: "noreply@institution.example",
	}
}

func newDispatcher(port int, secure bool, roots *x509.CertPool, greeting time.Duration) *email.SMTPDispatcher {
	return email.NewSMTPDispatcher(relayConfig(port, secure), nil,
		email.WithTLSConfig(&tls.Config{RootCAs: roots, MinVersion: tls.VersionTLS12}),
		email.WithTimeouts(2*time.Second, greeting, 2*time.Second),
	)
}

func notification() domain.RenderedEmail {
	return domain.RenderedEmail{
		To:      "contact@institution.example",
		ReplyTo: "jane@acme.com",
		Subject: "Demande de conseil: Acme Corp",
		HTML:    "<p>Jane Doe</p>",
	}
}

func TestSMTPDispatcherSend(t *testing.T) {
	t.Run("Should deliver over implicit TLS", func(t *testing.T) {
		relay, roots := startRelay(t)
		d := newDispatcher(relay.port, true, roots, 2*time.Second)

		require.NoError(t, d.Send(context.Background(), notification()))

		messages := relay.received()
		require.Len(t, messages, 1)
		assert.Contains(t, messages[0], "Subject: Demande de conseil: Acme Corp")
		assert.Contains(t, messages[0], "Reply-To: <jane@acme.com>")
		assert.Contains(t, messages[0], "<p>Jane Doe</p>")
	})

	t.Run("Should deliver after upgrading with STARTTLS", func(t *testing.T) {
		relay, roots := startRelay(t, plainRelay(true))
		d := newDispatcher(relay.port, false, roots, 2*time.Second)

		require.NoError(t, d.Send(context.Background(), notification()))
		assert.Len(t, relay.received(), 1)
	})

	t.Run("Should refuse a relay without STARTTLS", func(t *testing.T) {
		relay, roots := startRelay(t, plainRelay(false))
		d := newDispatcher(relay.port, false, roots, 2*time.Second)

		err := d.Send(context.Background(), notification())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "STARTTLS")
		assert.Empty(t, relay.received())
	})

	t.Run("Should classify rejected credentials as an authentication failure", func(t *testing.T) {
		relay, roots := startRelay(t, withAuthReply("535 5.7.8 Username and Password not accepted"))
		d := newDispatcher(relay.port, true, roots, 2*time.Second)

		err := d.Send(context.Background(), notification())
		require.Error(t, err)
		assert.Equal(t, email.DeliveryAuthFailure, email.ClassifyDeliveryError(err))
		assert.Empty(t, relay.received())
	})

	t.Run("Should classify a refused mailbox as a recipient rejection", func(t *testing.T) {
		relay, roots := startRelay(t, withRcptReply("550 5.1.1 User unknown"))
		d := newDispatcher(relay.port, true, roots, 2*time.Second)

		err := d.Send(context.Background(), notification())
		require.Error(t, err)
		assert.Equal(t, email.DeliveryRecipientRejected, email.ClassifyDeliveryError(err))
	})

	t.Run("Should classify a closed port as unreachable", func(t *testing.T) {
		l, err := net.Listen("tcp", "127.0.0.1:0")
		require.NoError(t, err)
		port := l.Addr().(*net.TCPAddr).Port
		require.NoError(t, l.Close())

		d := newDispatcher(port, true, nil, 2*time.Second)
		err = d.Send(context.Background(), notification())
		require.Error(t, err)
		assert.Equal(t, email.DeliveryUnreachable, email.ClassifyDeliveryError(err))
	})

	t.Run("Should time out a relay that never greets", func(t *testing.T) {
		relay, roots := startRelay(t, silentRelay())
		d := newDispatcher(relay.port, true, roots, 200*time.Millisecond)

		start := time.Now()
		err := d.Send(context.Background(), notification())
		require.Error(t, err)
		assert.Equal(t, email.DeliveryTimeout, email.ClassifyDeliveryError(err))
		assert.Less(t, time.Since(start), 2*time.Second)
	})
}

func TestNewSMTPDispatcherDefaults(t *testing.T) {
	cfg := relayConfig(465, true)
	cfg.SMTPFromEmail = ""

	// Sender falls back to the login, and a zero timeout to the default
	d := email.NewSMTPDispatcher(cfg, nil)
	require.NotNil(t, d)
	var _ email.Dispatcher = d
}

func TestStubDispatcher(t *testing.T) {
	assert.NoError(t, email.NewStubDispatcher(nil).Send(context.Background(), notification()))
}
