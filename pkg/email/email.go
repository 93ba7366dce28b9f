package email

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/smtp"
	"strconv"
	"strings"
	"time"

	"institution-site-backend/config"
	"institution-site-backend/internal/domain"
)

// DefaultTimeout bounds connection, greeting and socket inactivity
const DefaultTimeout = 10 * time.Second

// Dispatcher delivers a rendered email.
// Implementations can be swapped (SMTP, stub) without changing callers.
type Dispatcher interface {
	Send(ctx context.Context, msg domain.RenderedEmail) error
}

// SMTPDispatcher sends emails through an SMTP relay.
// Every Send opens and closes its own connection, so concurrent use is safe.
type SMTPDispatcher struct {
	host     string
	port     int
	secure   bool
	username string
	password string
	from     string

	connectTimeout  time.Duration
	greetingTimeout time.Duration
	socketTimeout   time.Duration
	tlsConfig       *tls.Config

	logger *slog.Logger
	now    func() time.Time
}

// DispatcherOption customizes an SMTPDispatcher
type DispatcherOption func(*SMTPDispatcher)

// WithTLSConfig overrides the TLS configuration (e.g. a private CA)
func WithTLSConfig(cfg *tls.Config) DispatcherOption {
	return func(d *SMTPDispatcher) {
		d.tlsConfig = cfg
	}
}

// WithTimeouts overrides the connection, greeting and socket timeouts
func WithTimeouts(connect, greeting, socket time.Duration) DispatcherOption {
	return func(d *SMTPDispatcher) {
		d.connectTimeout = connect
		d.greetingTimeout = greeting
		d.socketTimeout = socket
	}
}

// NewSMTPDispatcher creates a dispatcher from the relay settings of cfg
func NewSMTPDispatcher(cfg *config.Config, logger *slog.Logger, opts ...DispatcherOption) *SMTPDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	from := cfg.SMTPFromEmail
	if from == "" {
		from = cfg.SMTPUsername // Most relays use the login as sender
	}
	d := &SMTPDispatcher{
		host:            cfg.SMTPHost,
		port:            cfg.SMTPPort,
		secure:          cfg.SMTPSecure,
		username:        cfg.SMTPUsername,
		password:        cfg.SMTPPassword,
		from:            from,
		connectTimeout:  cfg.SMTPTimeout,
		greetingTimeout: cfg.SMTPTimeout,
		socketTimeout:   cfg.SMTPTimeout,
		logger:          logger,
		now:             time.Now,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.connectTimeout <= 0 {
		d.connectTimeout = DefaultTimeout
	}
	if d.greetingTimeout <= 0 {
		d.greetingTimeout = DefaultTimeout
	}
	if d.socketTimeout <= 0 {
		d.socketTimeout = DefaultTimeout
	}
	return d
}

// Send makes exactly one delivery attempt. Errors keep the transport reason so
// ClassifyDeliveryError can inspect them; nothing is retried or queued.
func (d *SMTPDispatcher) Send(ctx context.Context, msg domain.RenderedEmail) error {
	body, err := buildMessage(d.from, msg, d.now())
	if err != nil {
		return err
	}

	client, err := d.connect(ctx)
	if err != nil {
		return err
	}
	defer client.Close()

	if d.username != "" {
		auth, err := d.auth(client)
		if err != nil {
			return err
		}
		if err := client.Auth(auth); err != nil {
			return stageError(StageAuth, err)
		}
	}

	if err := client.Mail(d.from); err != nil {
		return stageError(StageMailFrom, err)
	}
	if err := client.Rcpt(msg.To); err != nil {
		return stageError(StageRcptTo, err)
	}

	w, err := client.Data()
	if err != nil {
		return stageError(StageData, err)
	}
	if _, err := w.Write(body); err != nil {
		return stageError(StageData, err)
	}
	if err := w.Close(); err != nil {
		return stageError(StageData, err)
	}

	// The relay accepted the message once DATA is closed
	if err := client.Quit(); err != nil {
		d.logger.Warn("smtp quit failed after delivery", "error", err)
	}
	return nil
}

// connect dials the relay and returns a client on an encrypted session:
// implicit TLS when secure, mandatory STARTTLS otherwise.
func (d *SMTPDispatcher) connect(ctx context.Context) (*smtp.Client, error) {
	addr := net.JoinHostPort(d.host, strconv.Itoa(d.port))
	dialer := &net.Dialer{Timeout: d.connectTimeout}

	raw, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, stageError(StageConnect, err)
	}
	conn := &idleTimeoutConn{Conn: raw, timeout: d.greetingTimeout}

	var transport net.Conn = conn
	if d.secure {
		tlsConn := tls.Client(conn, d.clientTLSConfig())
		hsCtx, cancel := context.WithTimeout(ctx, d.connectTimeout)
		err := tlsConn.HandshakeContext(hsCtx)
		cancel()
		if err != nil {
			raw.Close()
			return nil, stageError(StageTLSHandshake, err)
		}
		transport = tlsConn
	}

	client, err := smtp.NewClient(transport, d.host)
	if err != nil {
		raw.Close()
		return nil, stageError(StageGreeting, err)
	}
	conn.timeout = d.socketTimeout

	if !d.secure {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			client.Close()
			return nil, stageError(StageStartTLS, errors.New("relay does not offer STARTTLS"))
		}
		if err := client.StartTLS(d.clientTLSConfig()); err != nil {
			client.Close()
			return nil, stageError(StageStartTLS, err)
		}
	}
	return client, nil
}

func (d *SMTPDispatcher) auth(client *smtp.Client) (smtp.Auth, error) {
	ok, mechanisms := client.Extension("AUTH")
	if !ok {
		return nil, stageError(StageAuth, errors.New("relay does not advertise AUTH"))
	}
	mechanisms = strings.ToUpper(mechanisms)
	if !strings.Contains(mechanisms, "PLAIN") && strings.Contains(mechanisms, "LOGIN") {
		return &loginAuth{username: d.username, password: d.password, host: d.host}, nil
	}
	return smtp.PlainAuth("", d.username, d.password, d.host), nil
}

func (d *SMTPDispatcher) clientTLSConfig() *tls.Config {
	if d.tlsConfig != nil {
		cfg := d.tlsConfig.Clone()
		if cfg.ServerName == "" {
			cfg.ServerName = d.host
		}
		return cfg
	}
	return &tls.Config{ServerName: d.host, MinVersion: tls.VersionTLS12}
}

// idleTimeoutConn pushes the deadline forward on every read and write,
// so timeout bounds inactivity rather than the whole session.
type idleTimeoutConn struct {
	net.Conn
	timeout time.Duration
}

func (c *idleTimeoutConn) Read(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Read(p)
}

func (c *idleTimeoutConn) Write(p []byte) (int, error) {
	if err := c.Conn.SetDeadline(time.Now().Add(c.timeout)); err != nil {
		return 0, err
	}
	return c.Conn.Write(p)
}

// loginAuth implements the LOGIN SMTP auth mechanism.
type loginAuth struct {
	username string
	password string
	host     string
}

func (a *loginAuth) Start(server *smtp.ServerInfo) (string, []byte, error) {
	if !server.TLS {
		return "", nil, errors.New("unencrypted connection")
	}
	if server.Name != a.host {
		return "", nil, fmt.Errorf("unexpected server name %s", server.Name)
	}
	return "LOGIN", nil, nil
}

func (a *loginAuth) Next(fromServer []byte, more bool) ([]byte, error) {
	if !more {
		return nil, nil
	}
	switch strings.ToLower(strings.TrimSpace(string(fromServer))) {
	case "username:", "user:":
		return []byte(a.username), nil
	case "password:", "pass:":
		return []byte(a.password), nil
	default:
		return nil, fmt.Errorf("unexpected login challenge: %s", string(fromServer))
	}
}

// Ensure interface compliance
var _ Dispatcher = (*SMTPDispatcher)(nil)
