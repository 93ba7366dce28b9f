package email_test

import (
	"bufio"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"fmt"
	"io"
	"math/big"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// fakeRelay is a minimal SMTP server for exercising the dispatcher
type fakeRelay struct {
	listener  net.Listener
	tlsConfig *tls.Config
	port      int

	implicitTLS bool
	offerTLS    bool   // advertise STARTTLS on plain sessions
	silent      bool   // never send the greeting
	authReply   string // reply to AUTH
	rcptReply   string // reply to RCPT TO

	mu       sync.Mutex
	messages []string
}

type relayOption func(*fakeRelay)

func withAuthReply(reply string) relayOption { return func(r *fakeRelay) { r.authReply = reply } }
func withRcptReply(reply string) relayOption { return func(r *fakeRelay) { r.rcptReply = reply } }
func silentRelay() relayOption              { return func(r *fakeRelay) { r.silent = true } }
func plainRelay(offerTLS bool) relayOption {
	return func(r *fakeRelay) {
		r.implicitTLS = false
		r.offerTLS = offerTLS
	}
}

// startRelay listens on 127.0.0.1 and returns the relay with the client roots trusting it
func startRelay(t *testing.T, opts ...relayOption) (*fakeRelay, *x509.CertPool) {
	t.Helper()
	cert, pool := selfSignedCert(t)

	r := &fakeRelay{
		tlsConfig:   &tls.Config{Certificates: []tls.Certificate{cert}},
		implicitTLS: true,
		authReply:   "235 2.7.0 Authentication successful",
		rcptReply:   "250 2.1.5 OK",
	}
	for _, opt := range opts {
		opt(r)
	}

	var err error
	if r.implicitTLS {
		r.listener, err = tls.Listen("tcp", "127.0.0.1:0", r.tlsConfig)
	} else {
		r.listener, err = net.Listen("tcp", "127.0.0.1:0")
	}
	require.NoError(t, err)
	r.port = r.listener.Addr().(*net.TCPAddr).Port
	t.Cleanup(func() { r.listener.Close() })

	go func() {
		for {
			conn, err := r.listener.Accept()
			if err != nil {
				return
			}
			go r.serve(conn)
		}
	}()
	return r, pool
}

func (r *fakeRelay) received() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.messages...)
}

func (r *fakeRelay) serve(conn net.Conn) {
	defer conn.Close()

	if r.silent {
		if tlsConn, ok := conn.(*tls.Conn); ok {
			_ = tlsConn.Handshake()
		}
		_, _ = io.Copy(io.Discard, conn)
		return
	}

	reply := func(lines ...string) {
		for _, line := range lines {
			fmt.Fprintf(conn, "%s\r\n", line)
		}
	}
	upgraded := r.implicitTLS
	reader := bufio.NewReader(conn)
	reply("220 relay.test ESMTP")

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		cmd := strings.ToUpper(strings.TrimSpace(line))

		switch {
		case strings.HasPrefix(cmd, "EHLO"):
			if r.offerTLS && !upgraded {
				reply("250-relay.test", "250-STARTTLS", "250 8BITMIME")
			} else {
				reply("250-relay.test", "250-AUTH PLAIN LOGIN", "250 8BITMIME")
			}
		case cmd == "STARTTLS":
			reply("220 2.0.0 Ready to start TLS")
			tlsConn := tls.Server(conn, r.tlsConfig)
			if err := tlsConn.Handshake(); err != nil {
				return
			}
			conn = tlsConn
			reader = bufio.NewReader(conn)
			upgraded = true
		case strings.HasPrefix(cmd, "AUTH"):
			reply(r.authReply)
		case strings.HasPrefix(cmd, "MAIL FROM"):
			reply("250 2.1.0 OK")
		case strings.HasPrefix(cmd, "RCPT TO"):
			reply(r.rcptReply)
		case cmd == "DATA":
			reply("354 End data with <CR><LF>.<CR><LF>")
			var data strings.Builder
			for {
				dataLine, err := reader.ReadString('\n')
				if err != nil {
					return
				}
				if dataLine == ".\r\n" {
					break
				}
				data.WriteString(dataLine)
			}
			r.mu.Lock()
			r.messages = append(r.messages, data.String())
			r.mu.Unlock()
			reply("250 2.0.0 Queued")
		case cmd == "QUIT":
			reply("221 2.0.0 Bye")
			return
		default:
			reply("502 5.5.2 Command not recognized")
		}
	}
}

func selfSignedCert(t *testing.T) (tls.Certificate, *x509.CertPool) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "relay.test"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(time.Hour),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageCertSign,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		IsCA:                  true,
		IPAddresses:           []net.IP{net.ParseIP("127.0.0.1")},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	parsed, err := x509.ParseCertificate(der)
	require.NoError(t, err)

	pool := x509.NewCertPool()
	pool.AddCert(parsed)
	return tls.Certificate{Certificate: [][]byte{der}, PrivateKey: key}, pool
}
