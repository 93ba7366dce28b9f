package email

import (
	"errors"
	"net"
	"net/textproto"
	"strconv"
	"strings"
)

// Stages of an SMTP session, in the order Send walks them
const (
	StageConnect      = "connect"
	StageTLSHandshake = "tls handshake"
	StageGreeting     = "greeting"
	StageStartTLS     = "starttls"
	StageAuth         = "auth"
	StageMailFrom     = "mail from"
	StageRcptTo       = "rcpt to"
	StageData         = "data"
)

var sessionStages = []string{
	StageConnect, StageTLSHandshake, StageGreeting, StageStartTLS,
	StageAuth, StageMailFrom, StageRcptTo, StageData,
}

// SendError records the session stage a delivery attempt failed at
type SendError struct {
	Stage string
	Err   error
}

func (e *SendError) Error() string {
	return "smtp " + e.Stage + ": " + e.Err.Error()
}

func (e *SendError) Unwrap() error {
	return e.Err
}

func stageError(stage string, err error) error {
	return &SendError{Stage: stage, Err: err}
}

// DeliveryErrorKind classifies why a delivery attempt failed
type DeliveryErrorKind int

const (
	DeliveryUnknown DeliveryErrorKind = iota
	DeliveryTimeout
	DeliveryAuthFailure
	DeliveryRateLimited
	DeliveryUnreachable
	DeliveryRecipientRejected
)

func (k DeliveryErrorKind) String() string {
	switch k {
	case DeliveryTimeout:
		return "timeout"
	case DeliveryAuthFailure:
		return "authentication"
	case DeliveryRateLimited:
		return "rate_limited"
	case DeliveryUnreachable:
		return "unreachable"
	case DeliveryRecipientRejected:
		return "recipient_rejected"
	default:
		return "unknown"
	}
}

// failure is what the rules see: the stage and the relay's own reply,
// never the dispatcher's stage prefix.
type failure struct {
	err   error
	stage string
	reply string
	code  int
}

type deliveryRule struct {
	kind  DeliveryErrorKind
	match func(f failure) bool
}

// deliveryRules are evaluated top to bottom and the first match wins.
// Relay replies often satisfy several predicates ("421 too many connections, timeout"),
// so the order is part of the classification.
var deliveryRules = []deliveryRule{
	{DeliveryTimeout, func(f failure) bool {
		var netErr net.Error
		if errors.As(f.err, &netErr) && netErr.Timeout() {
			return true
		}
		return containsAny(f.reply, "timeout", "timed out", "deadline exceeded")
	}},
	{DeliveryAuthFailure, func(f failure) bool {
		return f.stage == StageAuth || f.code == 535 ||
			containsAny(f.reply, "auth", "invalid login", "credentials", "username and password")
	}},
	{DeliveryRateLimited, func(f failure) bool {
		return containsAny(f.reply, "rate limit", "rate-limit", "ratelimit", "too many", "throttl", "quota")
	}},
	{DeliveryUnreachable, func(f failure) bool {
		return containsAny(f.reply, "connection refused", "econnrefused", "no such host", "network is unreachable", "no route to host")
	}},
	{DeliveryRecipientRejected, func(f failure) bool {
		// Only a permanent refusal of the recipient itself; 4xx replies are transient
		if f.stage != "" && f.stage != StageRcptTo {
			return false
		}
		if f.code >= 400 && f.code < 500 {
			return false
		}
		if f.stage == StageRcptTo && (f.code == 550 || f.code == 551 || f.code == 553) {
			return true
		}
		return containsAny(f.reply, "recipient", "mailbox", "user unknown", "no such user", "invalid address")
	}},
}

// ClassifyDeliveryError maps a transport error to its kind.
// A nil error is DeliveryUnknown.
func ClassifyDeliveryError(err error) DeliveryErrorKind {
	if err == nil {
		return DeliveryUnknown
	}
	f := describeFailure(err)
	for _, rule := range deliveryRules {
		if rule.match(f) {
			return rule.kind
		}
	}
	return DeliveryUnknown
}

func describeFailure(err error) failure {
	f := failure{err: err}

	var sendErr *SendError
	if errors.As(err, &sendErr) {
		f.stage = sendErr.Stage
		f.reply = strings.ToLower(sendErr.Err.Error())
	} else {
		f.stage, f.reply = splitStage(strings.ToLower(err.Error()))
	}

	var protoErr *textproto.Error
	if errors.As(err, &protoErr) {
		f.code = protoErr.Code
	} else if len(f.reply) >= 3 {
		if code, convErr := strconv.Atoi(f.reply[:3]); convErr == nil {
			f.code = code
		}
	}
	return f
}

// splitStage strips a "smtp <stage>: " prefix from errors that crossed a
// boundary as plain text.
func splitStage(text string) (string, string) {
	for _, stage := range sessionStages {
		prefix := "smtp " + stage + ": "
		if strings.HasPrefix(text, prefix) {
			return stage, strings.TrimPrefix(text, prefix)
		}
	}
	return "", text
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
