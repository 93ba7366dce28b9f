package email

import (
	"context"
	"log/slog"

	"institution-site-backend/internal/domain"
)

// StubDispatcher is a no-op dispatcher for local runs when MAIL_DRY_RUN is set.
type StubDispatcher struct {
	logger *slog.Logger
}

// NewStubDispatcher creates a stub dispatcher that logs but doesn't send.
func NewStubDispatcher(logger *slog.Logger) *StubDispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &StubDispatcher{logger: logger}
}

// Send logs the email but doesn't actually send it.
func (s *StubDispatcher) Send(ctx context.Context, msg domain.RenderedEmail) error {
	s.logger.Info("stub dispatcher: would send email", "to", msg.To, "subject", msg.Subject, "bytes", len(msg.HTML))
	return nil
}

var _ Dispatcher = (*StubDispatcher)(nil)
