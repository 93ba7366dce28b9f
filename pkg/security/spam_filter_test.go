package security_test

import (
	"testing"
	"time"

	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/security"

	"github.com/stretchr/testify/assert"
)

func renderedAt(t time.Time) *int64 {
	ms := t.UnixMilli()
	return &ms
}

func TestSpamFilterClassify(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	filter := security.NewSpamFilter(0)

	t.Run("Should flag a form submitted one second after render as too fast", func(t *testing.T) {
		req := &domain.ContactRequest{FormRenderedAt: renderedAt(now.Add(-1 * time.Second))}
		assert.Equal(t, security.SpamTooFast, filter.Classify(req, now))
	})

	t.Run("Should let a form submitted after five seconds through", func(t *testing.T) {
		req := &domain.ContactRequest{FormRenderedAt: renderedAt(now.Add(-5 * time.Second))}
		assert.Equal(t, security.SpamClean, filter.Classify(req, now))
	})

	t.Run("Should treat the threshold itself as human", func(t *testing.T) {
		req := &domain.ContactRequest{FormRenderedAt: renderedAt(now.Add(-security.DefaultMinFillTime))}
		assert.Equal(t, security.SpamClean, filter.Classify(req, now))
	})

	t.Run("Should skip the timing rule when no render time is sent", func(t *testing.T) {
		assert.Equal(t, security.SpamClean, filter.Classify(&domain.ContactRequest{}, now))
	})

	t.Run("Should silently reject a filled honeypot", func(t *testing.T) {
		req := &domain.ContactRequest{Website: "http://spam.example"}
		assert.Equal(t, security.SpamSilentlyRejected, filter.Classify(req, now))
	})

	t.Run("Should prefer the honeypot over the timing rule", func(t *testing.T) {
		req := &domain.ContactRequest{
			Website:        "http://spam.example",
			FormRenderedAt: renderedAt(now.Add(-100 * time.Millisecond)),
		}
		assert.Equal(t, security.SpamSilentlyRejected, filter.Classify(req, now))
	})

	t.Run("Should treat a whitespace-only honeypot as filled", func(t *testing.T) {
		assert.Equal(t, security.SpamSilentlyRejected, filter.Classify(&domain.ContactRequest{Website: "   "}, now))
		assert.True(t, security.HoneypotFilled(&domain.ContactRequest{Website: "\t"}))
	})

	t.Run("Should treat an empty honeypot as clean", func(t *testing.T) {
		assert.False(t, security.HoneypotFilled(&domain.ContactRequest{}))
		assert.False(t, security.HoneypotFilled(nil))
	})

	t.Run("Should honor a custom minimum fill time", func(t *testing.T) {
		strict := security.NewSpamFilter(10 * time.Second)
		req := &domain.ContactRequest{FormRenderedAt: renderedAt(now.Add(-5 * time.Second))}
		assert.Equal(t, security.SpamTooFast, strict.Classify(req, now))
	})
}

func TestElapsed(t *testing.T) {
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, time.Duration(-1), security.Elapsed(&domain.ContactRequest{}, now))
	assert.Equal(t, 2*time.Second, security.Elapsed(&domain.ContactRequest{FormRenderedAt: renderedAt(now.Add(-2 * time.Second))}, now))
}

func TestSpamVerdictString(t *testing.T) {
	assert.Equal(t, "clean", security.SpamClean.String())
	assert.Equal(t, "silently_rejected", security.SpamSilentlyRejected.String())
	assert.Equal(t, "too_fast", security.SpamTooFast.String())
}
