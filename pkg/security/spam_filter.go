package security

import (
	"time"

	"institution-site-backend/internal/domain"
)

// DefaultMinFillTime is the shortest time a human is expected to need to fill the contact form
const DefaultMinFillTime = 3 * time.Second

// SpamVerdict is the anti-spam classification of a validated submission
type SpamVerdict int

const (
	// SpamClean lets the submission through
	SpamClean SpamVerdict = iota
	// SpamSilentlyRejected drops the submission while the visitor still sees a success
	SpamSilentlyRejected
	// SpamTooFast asks the visitor to slow down
	SpamTooFast
)

func (v SpamVerdict) String() string {
	switch v {
	case SpamClean:
		return "clean"
	case SpamSilentlyRejected:
		return "silently_rejected"
	case SpamTooFast:
		return "too_fast"
	default:
		return "unknown"
	}
}

// SpamFilter applies the honeypot and fill-time heuristics
type SpamFilter struct {
	minFillTime time.Duration
}

// NewSpamFilter creates a filter; a non-positive minFillTime selects DefaultMinFillTime
func NewSpamFilter(minFillTime time.Duration) *SpamFilter {
	if minFillTime <= 0 {
		minFillTime = DefaultMinFillTime
	}
	return &SpamFilter{minFillTime: minFillTime}
}

// Classify must only be called on a payload that already passed schema validation.
// The honeypot wins over the timing rule.
//
// formRenderedAt comes from the client and can be forged to bypass the timing rule.
func (f *SpamFilter) Classify(req *domain.ContactRequest, now time.Time) SpamVerdict {
	if HoneypotFilled(req) {
		return SpamSilentlyRejected
	}
	if req.FormRenderedAt != nil {
		elapsed := now.Sub(time.UnixMilli(*req.FormRenderedAt))
		if elapsed < f.minFillTime {
			return SpamTooFast
		}
	}
	return SpamClean
}

// HoneypotFilled reports whether the hidden trap field carries any value, blanks included.
// It only reads Website, so it is safe on payloads that failed validation.
func HoneypotFilled(req *domain.ContactRequest) bool {
	return req != nil && req.Website != ""
}

// Elapsed returns how long the form was open, or -1 when the client sent no timestamp
func Elapsed(req *domain.ContactRequest, now time.Time) time.Duration {
	if req.FormRenderedAt == nil {
		return -1
	}
	return now.Sub(time.UnixMilli(*req.FormRenderedAt))
}
