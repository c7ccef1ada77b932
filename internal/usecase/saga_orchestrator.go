package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
)

// SagaOutcome describes what handling one callback did.
type SagaOutcome string

const (
	// OutcomeApplied means at least one aggregate changed and a domain event was published.
	OutcomeApplied SagaOutcome = "applied"
	// OutcomeUnmatched means no aggregate could be resolved; nothing changed.
	OutcomeUnmatched SagaOutcome = "unmatched"
	// OutcomeDuplicate means every target aggregate was already in the target state.
	// The domain event is published again under the same event key.
	OutcomeDuplicate SagaOutcome = "duplicate"
	// OutcomeRejected means aggregate state forbids the transition; the attempt is audited.
	OutcomeRejected SagaOutcome = "rejected"
)

type sagaHandler func(ctx context.Context, run *sagaRun) (SagaOutcome, error)

// sagaRun is the per-callback working state. It never outlives Handle.
type sagaRun struct {
	ev         *domain.CanonicalEvent
	receivedAt time.Time
	log        zerolog.Logger
	applied    []string
}

func (r *sagaRun) record(aggregateType, id string) {
	r.applied = append(r.applied, aggregateType+":"+id)
}

func (r *sagaRun) mutated() bool {
	return len(r.applied) > 0
}

// SagaOrchestrator applies canonical callbacks to payment aggregates.
// All fields are set at construction and never written afterwards, so one
// orchestrator serves any number of concurrent workers.
type SagaOrchestrator struct {
	requests     PaymentRequestService
	transactions PaymentTransactionService
	refunds      PaymentRefundService
	auditRepo    AuditRepository
	publisher    EventPublisher
	idGen        IDGenerator
	metrics      *metrics.Metrics
	logger       zerolog.Logger
	now          func() time.Time
	handlers     map[domain.CallbackType]sagaHandler
}

// SagaOption configures a SagaOrchestrator.
type SagaOption func(*SagaOrchestrator)

// WithClock overrides the time source.
func WithClock(now func() time.Time) SagaOption {
	return func(o *SagaOrchestrator) { o.now = now }
}

func NewSagaOrchestrator(
	requests PaymentRequestService,
	transactions PaymentTransactionService,
	refunds PaymentRefundService,
	auditRepo AuditRepository,
	publisher EventPublisher,
	idGen IDGenerator,
	metrics *metrics.Metrics,
	logger zerolog.Logger,
	opts ...SagaOption,
) *SagaOrchestrator {
	o := &SagaOrchestrator{
		requests:     requests,
		transactions: transactions,
		refunds:      refunds,
		auditRepo:    auditRepo,
		publisher:    publisher,
		idGen:        idGen,
		metrics:      metrics,
		logger:       logger.With().Str("component", "saga").Logger(),
		now:          func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(o)
	}

	o.handlers = map[domain.CallbackType]sagaHandler{
		domain.CallbackRequestApproved: o.handleRequestApproved,
		domain.CallbackRequestRejected: o.handleRequestRejected,
		domain.CallbackPaymentSuccess:  o.handlePaymentSuccess,
		domain.CallbackPaymentFailed:   o.handlePaymentFailed,
		domain.CallbackRefundSuccess:   o.handleRefundSuccess,
		domain.CallbackRefundFailed:    o.handleRefundFailed,
	}
	return o
}

// Handle resolves the aggregate targeted by ev, applies the transition, audits it
// and publishes the resulting domain event.
//
// A lookup miss is not an error: it returns OutcomeUnmatched. Collaborator and
// publish failures are returned so the transport redelivers; steps already applied
// are skipped on redelivery by the per-aggregate guards, and the event is published
// again. A status update that loses a race returns domain.ErrStatusConflict; the
// redelivery re-reads the aggregate and settles as duplicate or rejected.
func (o *SagaOrchestrator) Handle(ctx context.Context, ev *domain.CanonicalEvent) (SagaOutcome, error) {
	if ev == nil {
		return "", fmt.Errorf("saga: %w: nil event", domain.ErrMalformedPayload)
	}
	if err := ev.Validate(); err != nil {
		return "", fmt.Errorf("saga: %w: %w", domain.ErrMalformedPayload, err)
	}

	start := time.Now()
	run := &sagaRun{
		ev:         ev,
		receivedAt: ev.ReceivedAt,
		log: o.logger.With().
			Str("callback_type", string(ev.Type)).
			Str("correlation_id", ev.CorrelationID).
			Str("gateway", ev.GatewayName).
			Logger(),
	}
	if run.receivedAt.IsZero() {
		run.receivedAt = o.now()
	}

	outcome, err := o.handlers[ev.Type](ctx, run)

	if o.metrics != nil {
		o.metrics.SagaDuration.WithLabelValues(string(ev.Type)).Observe(time.Since(start).Seconds())
	}

	if err != nil {
		if run.mutated() {
			run.log.Error().Err(err).
				Bool("partial_state", true).
				Strs("applied_steps", run.applied).
				Msg("saga failed after partial application")
		} else {
			run.log.Error().Err(err).Msg("saga failed")
		}
		return "", err
	}

	if outcome == OutcomeDuplicate && o.metrics != nil {
		o.metrics.CallbacksDuplicate.WithLabelValues(string(ev.Type)).Inc()
	}
	run.log.Info().Str("outcome", string(outcome)).Strs("applied_steps", run.applied).Msg("callback handled")

	return outcome, nil
}

func (o *SagaOrchestrator) handleRequestApproved(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	return o.decideRequest(ctx, run, domain.RequestStatusApproved, "")
}

func (o *SagaOrchestrator) handleRequestRejected(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	return o.decideRequest(ctx, run, domain.RequestStatusRejected, run.ev.Reason())
}

func (o *SagaOrchestrator) decideRequest(ctx context.Context, run *sagaRun, target domain.RequestStatus, reason string) (SagaOutcome, error) {
	req, found, err := o.resolveRequest(ctx, run.ev)
	if err != nil {
		return "", o.fail(run, "resolve_request", err)
	}
	if !found {
		return o.unmatched(run, domain.AggregateTypePaymentRequest)
	}
	run.log = run.log.With().Str("payment_request_id", req.ID).Logger()

	if req.Status == target {
		return o.publish(ctx, run, domain.AggregateTypePaymentRequest, req.ID, decisionPayload(req.ID, target, reason), OutcomeDuplicate)
	}
	if !req.Status.CanApprove() {
		o.rejected(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status),
			fmt.Sprintf("request in status %s cannot become %s", req.Status, target))
		return OutcomeRejected, nil
	}

	updated, err := o.requests.UpdateStatus(ctx, req.ID, target, reason)
	if err != nil {
		return "", o.fail(run, "update_request_status", err)
	}
	run.record(domain.AggregateTypePaymentRequest, req.ID)

	note := "request approved by " + gatewayLabel(run.ev)
	if target == domain.RequestStatusRejected {
		note = "request rejected: " + reason
	}
	o.applied(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status), string(updated.Status), note)

	return o.publish(ctx, run, domain.AggregateTypePaymentRequest, req.ID, decisionPayload(req.ID, updated.Status, reason), OutcomeApplied)
}

func decisionPayload(requestID string, status domain.RequestStatus, reason string) map[string]any {
	payload := map[string]any{
		"requestId": requestID,
		"status":    string(status),
	}
	if reason != "" {
		payload["reason"] = reason
	}
	return payload
}

func (o *SagaOrchestrator) handlePaymentSuccess(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	ev := run.ev

	txn, found, err := o.findTransaction(ctx, ev.ExternalTransactionID)
	if err != nil {
		return "", o.fail(run, "resolve_transaction", err)
	}
	if !found {
		return o.unmatched(run, domain.AggregateTypePaymentTransaction)
	}
	run.log = run.log.With().Str("payment_transaction_id", txn.ID).Logger()

	if !txn.Status.IsSuccess() {
		updated, err := o.transactions.MarkProcessed(ctx, txn.ID, ev.ExternalTransactionID, ev.GatewayResponse)
		if err != nil {
			return "", o.fail(run, "mark_transaction_processed", err)
		}
		run.record(domain.AggregateTypePaymentTransaction, txn.ID)
		o.applied(ctx, run, domain.AggregateTypePaymentTransaction, txn.ID,
			string(txn.Status), string(updated.Status), "transaction processed as "+ev.ExternalTransactionID)
	}

	requestOutcome, err := o.settleRequest(ctx, run, txn.PaymentRequestID)
	if err != nil {
		return "", err
	}

	amount := ev.Amount
	if amount.IsZero() {
		amount = txn.Amount
	}
	currency := ev.Currency
	if currency == "" {
		currency = txn.Currency
	}
	return o.publish(ctx, run, domain.AggregateTypePaymentTransaction, txn.ID, map[string]any{
		"transactionId":         txn.ID,
		"requestId":             txn.PaymentRequestID,
		"externalTransactionId": ev.ExternalTransactionID,
		"amount":                amount.String(),
		"currency":              currency,
		"paidAt":                run.receivedAt.UTC().Format(time.RFC3339Nano),
	}, quietOutcome(requestOutcome))
}

// settleRequest marks the owning request paid unless it already is.
func (o *SagaOrchestrator) settleRequest(ctx context.Context, run *sagaRun, requestID string) (SagaOutcome, error) {
	req, found, err := o.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", o.fail(run, "resolve_request", err)
	}
	if !found {
		run.log.Warn().Str("payment_request_id", requestID).Msg("owning payment request not found")
		return OutcomeUnmatched, nil
	}

	if req.Status.IsPaid() || req.PaidAt != nil {
		return OutcomeDuplicate, nil
	}
	if !req.Status.CanMarkPaid() {
		o.rejected(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status),
			fmt.Sprintf("request in status %s cannot be marked paid", req.Status))
		return OutcomeRejected, nil
	}

	updated, err := o.requests.MarkPaid(ctx, req.ID, run.receivedAt)
	if err != nil {
		return "", o.fail(run, "mark_request_paid", err)
	}
	run.record(domain.AggregateTypePaymentRequest, req.ID)
	o.applied(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status), string(updated.Status),
		"paid at "+run.receivedAt.UTC().Format(time.RFC3339))
	return OutcomeApplied, nil
}

func (o *SagaOrchestrator) handlePaymentFailed(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	ev := run.ev
	reason := ev.Reason()

	txn, found, err := o.findTransaction(ctx, ev.ExternalTransactionID)
	if err != nil {
		return "", o.fail(run, "resolve_transaction", err)
	}
	if !found {
		return o.unmatched(run, domain.AggregateTypePaymentTransaction)
	}
	run.log = run.log.With().Str("payment_transaction_id", txn.ID).Logger()

	if txn.Status.IsSuccess() {
		o.rejected(ctx, run, domain.AggregateTypePaymentTransaction, txn.ID, string(txn.Status),
			"failure reported for a successful transaction: "+reason)
		return OutcomeRejected, nil
	}

	if txn.Status != domain.TransactionStatusFailed {
		updated, err := o.transactions.MarkFailed(ctx, txn.ID, ev.ErrorCode, ev.ErrorMessage)
		if err != nil {
			return "", o.fail(run, "mark_transaction_failed", err)
		}
		run.record(domain.AggregateTypePaymentTransaction, txn.ID)
		o.applied(ctx, run, domain.AggregateTypePaymentTransaction, txn.ID,
			string(txn.Status), string(updated.Status), reason)
	}

	requestOutcome, err := o.failRequest(ctx, run, txn.PaymentRequestID, reason)
	if err != nil {
		return "", err
	}

	return o.publish(ctx, run, domain.AggregateTypePaymentTransaction, txn.ID, map[string]any{
		"transactionId": txn.ID,
		"requestId":     txn.PaymentRequestID,
		"errorCode":     ev.ErrorCode,
		"errorMessage":  ev.ErrorMessage,
		"reason":        reason,
	}, quietOutcome(requestOutcome))
}

func (o *SagaOrchestrator) failRequest(ctx context.Context, run *sagaRun, requestID, reason string) (SagaOutcome, error) {
	req, found, err := o.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", o.fail(run, "resolve_request", err)
	}
	if !found {
		run.log.Warn().Str("payment_request_id", requestID).Msg("owning payment request not found")
		return OutcomeUnmatched, nil
	}

	if req.Status == domain.RequestStatusFailed {
		return OutcomeDuplicate, nil
	}
	if req.Status.IsTerminal() || req.Status.IsPaid() {
		o.rejected(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status),
			fmt.Sprintf("request in status %s cannot fail", req.Status))
		return OutcomeRejected, nil
	}

	updated, err := o.requests.UpdateStatus(ctx, req.ID, domain.RequestStatusFailed, reason)
	if err != nil {
		return "", o.fail(run, "update_request_status", err)
	}
	run.record(domain.AggregateTypePaymentRequest, req.ID)
	o.applied(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status), string(updated.Status), reason)
	return OutcomeApplied, nil
}

func (o *SagaOrchestrator) handleRefundSuccess(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	ev := run.ev

	refund, found, err := o.findRefund(ctx, ev.ExternalRefundID)
	if err != nil {
		return "", o.fail(run, "resolve_refund", err)
	}
	if !found {
		return o.unmatched(run, domain.AggregateTypePaymentRefund)
	}
	run.log = run.log.With().Str("payment_refund_id", refund.ID).Logger()

	if !refund.Status.IsSuccess() {
		updated, err := o.refunds.MarkProcessed(ctx, refund.ID, ev.ExternalRefundID, ev.GatewayResponse)
		if err != nil {
			return "", o.fail(run, "mark_refund_processed", err)
		}
		run.record(domain.AggregateTypePaymentRefund, refund.ID)
		o.applied(ctx, run, domain.AggregateTypePaymentRefund, refund.ID,
			string(refund.Status), string(updated.Status), "refund processed as "+ev.ExternalRefundID)
	}

	refundAmount := ev.Amount
	if refundAmount.IsZero() {
		refundAmount = refund.Amount
	}

	payload := map[string]any{
		"refundId":      refund.ID,
		"transactionId": refund.PaymentTransactionID,
		"amount":        refundAmount.String(),
		"currency":      refund.Currency,
	}

	txn, found, err := o.transactions.GetByID(ctx, refund.PaymentTransactionID)
	if err != nil {
		return "", o.fail(run, "resolve_transaction", err)
	}

	requestOutcome := OutcomeUnmatched
	if !found {
		run.log.Warn().Str("payment_transaction_id", refund.PaymentTransactionID).Msg("parent transaction not found")
	} else {
		full := domain.IsFullRefund(txn.Amount, refundAmount)
		payload["requestId"] = txn.PaymentRequestID
		payload["fullRefund"] = full

		target := domain.RequestStatusPartialRefund
		if full {
			target = domain.RequestStatusRefunded
		}
		note := fmt.Sprintf("refunded %s of %s", refundAmount.String(), txn.Amount.String())

		requestOutcome, err = o.refundRequest(ctx, run, txn.PaymentRequestID, target, note)
		if err != nil {
			return "", err
		}
	}

	return o.publish(ctx, run, domain.AggregateTypePaymentRefund, refund.ID, payload, quietOutcome(requestOutcome))
}

func (o *SagaOrchestrator) refundRequest(ctx context.Context, run *sagaRun, requestID string, target domain.RequestStatus, note string) (SagaOutcome, error) {
	req, found, err := o.requests.GetByID(ctx, requestID)
	if err != nil {
		return "", o.fail(run, "resolve_request", err)
	}
	if !found {
		run.log.Warn().Str("payment_request_id", requestID).Msg("owning payment request not found")
		return OutcomeUnmatched, nil
	}

	// A later partial refund never downgrades a fully refunded request.
	if req.Status == target || req.Status == domain.RequestStatusRefunded {
		return OutcomeDuplicate, nil
	}
	if !req.Status.CanRefund() {
		o.rejected(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status),
			fmt.Sprintf("request in status %s cannot be refunded", req.Status))
		return OutcomeRejected, nil
	}

	updated, err := o.requests.UpdateStatus(ctx, req.ID, target, "")
	if err != nil {
		return "", o.fail(run, "update_request_status", err)
	}
	run.record(domain.AggregateTypePaymentRequest, req.ID)
	o.applied(ctx, run, domain.AggregateTypePaymentRequest, req.ID, string(req.Status), string(updated.Status), note)
	return OutcomeApplied, nil
}

func (o *SagaOrchestrator) handleRefundFailed(ctx context.Context, run *sagaRun) (SagaOutcome, error) {
	ev := run.ev
	reason := ev.Reason()

	refund, found, err := o.findRefund(ctx, ev.ExternalRefundID)
	if err != nil {
		return "", o.fail(run, "resolve_refund", err)
	}
	if !found {
		return o.unmatched(run, domain.AggregateTypePaymentRefund)
	}
	run.log = run.log.With().Str("payment_refund_id", refund.ID).Logger()

	if refund.Status.IsSuccess() {
		o.rejected(ctx, run, domain.AggregateTypePaymentRefund, refund.ID, string(refund.Status),
			"failure reported for a processed refund: "+reason)
		return OutcomeRejected, nil
	}

	if refund.Status != domain.TransactionStatusFailed {
		updated, err := o.refunds.MarkFailed(ctx, refund.ID, ev.ErrorCode, ev.ErrorMessage)
		if err != nil {
			return "", o.fail(run, "mark_refund_failed", err)
		}
		run.record(domain.AggregateTypePaymentRefund, refund.ID)
		o.applied(ctx, run, domain.AggregateTypePaymentRefund, refund.ID, string(refund.Status), string(updated.Status), reason)
	}

	return o.publish(ctx, run, domain.AggregateTypePaymentRefund, refund.ID, map[string]any{
		"refundId":      refund.ID,
		"transactionId": refund.PaymentTransactionID,
		"errorCode":     ev.ErrorCode,
		"errorMessage":  ev.ErrorMessage,
		"reason":        reason,
	}, OutcomeDuplicate)
}

// resolveRequest tries the explicit id, then the payment token, then the request code.
func (o *SagaOrchestrator) resolveRequest(ctx context.Context, ev *domain.CanonicalEvent) (*domain.PaymentRequest, bool, error) {
	lookups := []struct {
		hint string
		find func(context.Context, string) (*domain.PaymentRequest, bool, error)
	}{
		{ev.PaymentRequestID, o.requests.GetByID},
		{ev.PaymentToken, o.requests.FindByToken},
		{ev.RequestCode, o.requests.FindByCode},
	}
	for _, l := range lookups {
		if l.hint == "" {
			continue
		}
		req, found, err := l.find(ctx, l.hint)
		if err != nil || found {
			return req, found, err
		}
	}
	return nil, false, nil
}

func (o *SagaOrchestrator) findTransaction(ctx context.Context, externalID string) (*domain.PaymentTransaction, bool, error) {
	if externalID == "" {
		return nil, false, nil
	}
	return o.transactions.FindByExternalID(ctx, externalID)
}

func (o *SagaOrchestrator) findRefund(ctx context.Context, externalRefundID string) (*domain.PaymentRefund, bool, error) {
	if externalRefundID == "" {
		return nil, false, nil
	}
	return o.refunds.FindByExternalID(ctx, externalRefundID)
}

func (o *SagaOrchestrator) unmatched(run *sagaRun, aggregateType string) (SagaOutcome, error) {
	ev := run.ev
	run.log.Warn().
		Str("aggregate_type", aggregateType).
		Str("payment_request_id", ev.PaymentRequestID).
		Str("payment_token", ev.PaymentToken).
		Str("request_code", ev.RequestCode).
		Str("external_transaction_id", ev.ExternalTransactionID).
		Str("external_refund_id", ev.ExternalRefundID).
		Msg("callback unmatched")

	if o.metrics != nil {
		o.metrics.CallbacksUnmatched.WithLabelValues(string(ev.Type)).Inc()
	}
	return OutcomeUnmatched, nil
}

func (o *SagaOrchestrator) applied(ctx context.Context, run *sagaRun, aggregateType, id, previous, next, note string) {
	o.audit(ctx, run, &domain.AuditLog{
		AggregateType:  aggregateType,
		AggregateID:    id,
		PreviousStatus: previous,
		NewStatus:      next,
		Note:           note,
		Outcome:        domain.AuditOutcomeApplied,
	})
}

func (o *SagaOrchestrator) rejected(ctx context.Context, run *sagaRun, aggregateType, id, status, note string) {
	run.log.Warn().Str("aggregate_type", aggregateType).Str("aggregate_id", id).Str("status", status).Msg(note)
	o.audit(ctx, run, &domain.AuditLog{
		AggregateType:  aggregateType,
		AggregateID:    id,
		PreviousStatus: status,
		NewStatus:      status,
		Note:           note,
		Outcome:        domain.AuditOutcomeRejected,
	})
}

// audit records a transition attempt. A failed write is logged and counted but
// never undoes or blocks the transition.
func (o *SagaOrchestrator) audit(ctx context.Context, run *sagaRun, entry *domain.AuditLog) {
	entry.ID = o.idGen.Generate()
	entry.Action = string(run.ev.Type)
	entry.CorrelationID = run.ev.CorrelationID
	entry.GatewayName = run.ev.GatewayName
	entry.CreatedAt = o.now()

	if o.metrics != nil {
		o.metrics.SagaTransitions.WithLabelValues(entry.AggregateType, entry.Action, string(entry.Outcome)).Inc()
	}
	if o.auditRepo == nil {
		return
	}

	if err := o.auditRepo.Create(ctx, entry); err != nil {
		run.log.Error().Err(err).
			Bool("partial_state", true).
			Str("aggregate_type", entry.AggregateType).
			Str("aggregate_id", entry.AggregateID).
			Str("new_status", entry.NewStatus).
			Msg("audit write failed")
		if o.metrics != nil {
			o.metrics.AuditWriteFailures.Inc()
		}
		return
	}
	if o.metrics != nil {
		o.metrics.AuditLogsCreated.WithLabelValues(entry.Action, string(entry.Outcome)).Inc()
	}
}

// publish emits the domain event for the primary aggregate. It runs whether or not
// this delivery changed anything, because an earlier delivery may have applied the
// change and failed before its event left. Consumers drop repeats by event key.
// The result is OutcomeApplied when the run mutated state, quiet otherwise.
func (o *SagaOrchestrator) publish(ctx context.Context, run *sagaRun, aggregateType, aggregateID string, payload map[string]any, quiet SagaOutcome) (SagaOutcome, error) {
	event := domain.NewDomainEvent(o.idGen.Generate(), domain.EventTypeFor(run.ev.Type), run.ev.CorrelationID, payload, o.now())
	event.AggregateType = aggregateType
	event.AggregateID = aggregateID
	event.Payload[domain.PayloadEventKey] = event.DedupKey()

	if err := o.publisher.Publish(ctx, event); err != nil {
		if o.metrics != nil {
			o.metrics.PublishErrors.WithLabelValues("domain_events").Inc()
		}
		return "", o.fail(run, "publish", err)
	}
	if o.metrics != nil {
		o.metrics.DomainEventsPublished.WithLabelValues(event.Type).Inc()
	}
	if !run.mutated() {
		run.log.Debug().Str("event_key", event.DedupKey()).Msg("domain event republished")
		return quiet, nil
	}
	return OutcomeApplied, nil
}

func (o *SagaOrchestrator) fail(run *sagaRun, step string, err error) error {
	if o.metrics != nil {
		o.metrics.SagaErrors.WithLabelValues(string(run.ev.Type), step).Inc()
	}
	return fmt.Errorf("%s %s: %w", run.ev.Type, step, err)
}

// quietOutcome reports a run that changed nothing.
func quietOutcome(requestOutcome SagaOutcome) SagaOutcome {
	if requestOutcome == OutcomeRejected {
		return OutcomeRejected
	}
	return OutcomeDuplicate
}

func gatewayLabel(ev *domain.CanonicalEvent) string {
	if ev.GatewayName == "" {
		return "gateway"
	}
	return ev.GatewayName
}
