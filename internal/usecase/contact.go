package usecase

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sort"
	"time"

	"institution-site-backend/config"
	"institution-site-backend/internal/domain"
	"institution-site-backend/pkg/email"
	"institution-site-backend/pkg/metrics"
	"institution-site-backend/pkg/security"
	"institution-site-backend/pkg/validation"

	"github.com/go-playground/validator/v10"
)

// ContactDeps groups the collaborators of the contact usecase
type ContactDeps struct {
	Config         *config.Config
	Validator      *validator.Validate // From validation.NewValidator
	Dispatcher     email.Dispatcher
	SecurityLogger *security.SecurityLogger
	Metrics        *metrics.ContactMetrics
	Logger         *slog.Logger
	Now            func() time.Time
}

type contactUsecase struct {
	cfg        *config.Config
	schemas    map[domain.Locale]*validation.Schema
	spamFilter *security.SpamFilter
	dispatcher email.Dispatcher
	secLogger  *security.SecurityLogger
	metrics    *metrics.ContactMetrics
	logger     *slog.Logger
	now        func() time.Time
}

// NewContactUsecase creates a new contact usecase
func NewContactUsecase(deps ContactDeps) domain.ContactUsecase {
	v := deps.Validator
	if v == nil {
		v = validation.NewValidator()
	}
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &contactUsecase{
		cfg: deps.Config,
		schemas: map[domain.Locale]*validation.Schema{
			domain.LocaleFR: validation.NewSchema(v, domain.LocaleFR),
			domain.LocaleEN: validation.NewSchema(v, domain.LocaleEN),
		},
		spamFilter: security.NewSpamFilter(deps.Config.SpamMinFillTime),
		dispatcher: deps.Dispatcher,
		secLogger:  deps.SecurityLogger,
		metrics:    deps.Metrics,
		logger:     logger,
		now:        now,
	}
}

// Submit validates the submission, filters spam, renders the notification and
// makes one delivery attempt. Every path ends in exactly one outcome; nothing is
// sent unless all earlier stages succeeded.
func (uc *contactUsecase) Submit(ctx context.Context, req *domain.ContactRequest) (outcome domain.SubmissionOutcome) {
	locale := domain.DefaultLocale
	if req != nil {
		locale, _ = domain.ParseLocale(string(req.Locale))
	}
	msgs := ContactMessagesFor(locale)
	state := domain.StateReceived

	defer func() {
		if r := recover(); r != nil {
			uc.logger.Error("contact submission panicked",
				"panic", r,
				"state", state,
				"stack", string(debug.Stack()),
			)
			uc.secLogger.LogSubmissionEvent(ctx, security.EventUnexpectedFailure, "", map[string]interface{}{"state": string(state)})
			outcome = uc.finish(domain.SubmissionOutcome{Message: msgs.Unexpected, State: domain.StateUnexpected})
		}
	}()

	// Received -> Invalid | Validated
	result := uc.schemas[locale].Validate(req)
	if !result.Valid() && security.HoneypotFilled(req) {
		// Bots get no validation feedback either
		uc.secLogger.LogSpamRejected(ctx, security.SpamSilentlyRejected, "", -1)
		return uc.finish(domain.SubmissionOutcome{
			Success: true,
			Message: msgs.Success,
			State:   domain.StateSilentlyDropped,
		})
	}
	if !result.Valid() {
		uc.secLogger.LogSubmissionEvent(ctx, security.EventValidationFailed, "", map[string]interface{}{
			"fields": fieldNames(result.Err.Fields),
		})
		return uc.finish(domain.SubmissionOutcome{
			Message: msgs.Invalid,
			Errors:  result.Err.Fields,
			State:   domain.StateInvalid,
		})
	}
	valid := result.Request
	state = domain.StateValidated

	// Validated -> SilentlyDropped | TooFast | SpamClean
	now := uc.now()
	switch verdict := uc.spamFilter.Classify(valid, now); verdict {
	case security.SpamSilentlyRejected:
		// The visitor is told the message went through so bots learn nothing
		uc.secLogger.LogSpamRejected(ctx, verdict, valid.Email, security.Elapsed(valid, now))
		return uc.finish(domain.SubmissionOutcome{
			Success: true,
			Message: msgs.Success,
			State:   domain.StateSilentlyDropped,
		})
	case security.SpamTooFast:
		uc.secLogger.LogSpamRejected(ctx, verdict, valid.Email, security.Elapsed(valid, now))
		return uc.finish(domain.SubmissionOutcome{
			Message: msgs.TooFast,
			State:   domain.StateTooFast,
		})
	}
	state = domain.StateSpamClean

	// SpamClean -> ConfigChecked
	if missing := uc.cfg.MissingMailSettings(); len(missing) > 0 || uc.dispatcher == nil {
		uc.logger.Error("contact form mail configuration missing", "missing", missing, "dispatcher", uc.dispatcher != nil)
		uc.secLogger.LogSubmissionEvent(ctx, security.EventMailConfigMissing, "", map[string]interface{}{"missing": missing})
		return uc.finish(domain.SubmissionOutcome{
			Message: msgs.Unavailable,
			State:   domain.StateConfigMissing,
		})
	}
	state = domain.StateConfigChecked

	// ConfigChecked -> Rendered
	rendered, err := email.RenderContactEmail(valid, locale, uc.cfg.ContactEmailTo)
	if err != nil {
		uc.logger.Error("failed to render contact email", "error", err)
		return uc.finish(domain.SubmissionOutcome{
			Message: msgs.Unexpected,
			State:   domain.StateUnexpected,
		})
	}
	state = domain.StateRendered

	// Rendered -> Dispatched -> Delivered | DeliveryFailed
	// A visitor closing the tab must not abort a delivery already under way;
	// the dispatcher's own timeouts bound the call.
	start := time.Now()
	err = uc.dispatcher.Send(context.WithoutCancel(ctx), rendered)
	state = domain.StateDispatched
	if err != nil {
		kind := email.ClassifyDeliveryError(err)
		uc.metrics.ObserveDispatch(kind.String(), time.Since(start).Seconds())
		uc.logger.Error("contact email delivery failed",
			"kind", kind.String(),
			"error", err,
			"request_type", string(valid.RequestType),
		)
		if kind == email.DeliveryAuthFailure {
			uc.secLogger.LogSubmissionEvent(ctx, security.EventMailAuthRejected, "", nil)
		}
		return uc.finish(domain.SubmissionOutcome{
			Message: msgs.deliveryMessage(kind),
			State:   domain.StateDeliveryFailed,
		})
	}
	uc.metrics.ObserveDispatch("delivered", time.Since(start).Seconds())

	uc.logger.Info("contact email delivered",
		"request_type", string(valid.RequestType),
		"sender", security.MaskEmail(valid.Email),
	)
	return uc.finish(domain.SubmissionOutcome{
		Success: true,
		Message: msgs.Success,
		State:   domain.StateDelivered,
	})
}

func (uc *contactUsecase) finish(outcome domain.SubmissionOutcome) domain.SubmissionOutcome {
	uc.metrics.ObserveSubmission(string(outcome.State))
	uc.logger.Debug("contact submission finished", "state", outcome.State, "success", outcome.Success)
	return outcome
}

func fieldNames(fields map[string][]string) []string {
	names := make([]string, 0, len(fields))
	for name := range fields {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
