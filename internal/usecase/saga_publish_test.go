package usecase_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/infrastructure/metrics"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/usecase/mockgen"
)

func TestSaga_PublishFailureIsReturned(t *testing.T) {
	ctrl := gomock.NewController(t)

	requests := mockgen.NewMockPaymentRequestService(ctrl)
	txns := mockgen.NewMockPaymentTransactionService(ctrl)
	refunds := mockgen.NewMockPaymentRefundService(ctrl)
	audit := mockgen.NewMockAuditRepository(ctrl)
	publisher := mockgen.NewMockEventPublisher(ctrl)
	idGen := mockgen.NewMockIDGenerator(ctrl)

	txn := &domain.PaymentTransaction{ID: "T1", PaymentRequestID: "R1", ExternalTransactionID: "pi_1", Status: domain.TransactionStatusPending}
	req := &domain.PaymentRequest{ID: "R1", Status: domain.RequestStatusProcessing}

	idGen.EXPECT().Generate().Return("id").AnyTimes()
	txns.EXPECT().FindByExternalID(gomock.Any(), "pi_1").Return(txn, true, nil)
	txns.EXPECT().MarkProcessed(gomock.Any(), "T1", "pi_1", gomock.Any()).
		Return(&domain.PaymentTransaction{ID: "T1", PaymentRequestID: "R1", Status: domain.TransactionStatusSuccess}, nil)
	requests.EXPECT().GetByID(gomock.Any(), "R1").Return(req, true, nil)
	requests.EXPECT().MarkPaid(gomock.Any(), "R1", gomock.Any()).
		Return(&domain.PaymentRequest{ID: "R1", Status: domain.RequestStatusCompleted}, nil)
	audit.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(2)
	publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, ev *domain.DomainEvent) error {
			assert.Equal(t, "payment.success", ev.Type)
			assert.Equal(t, domain.AggregateTypePaymentTransaction, ev.AggregateType)
			assert.Equal(t, "T1", ev.AggregateID)
			return errors.New("broker unavailable")
		})

	m := metrics.New(prometheus.NewRegistry())
	var logs bytes.Buffer
	saga := usecase.NewSagaOrchestrator(requests, txns, refunds, audit, publisher, idGen, m, zerolog.New(&logs),
		usecase.WithClock(func() time.Time { return fixedNow }))

	_, err := saga.Handle(context.Background(), &domain.CanonicalEvent{Type: domain.CallbackPaymentSuccess, ExternalTransactionID: "pi_1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broker unavailable")

	assert.Equal(t, 1.0, testutil.ToFloat64(m.PublishErrors.WithLabelValues("domain_events")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.SagaErrors.WithLabelValues("PAYMENT_SUCCESS", "publish")))
	assert.Contains(t, logs.String(), `"partial_state":true`)
}

func TestSaga_RedeliveryAfterPublishFailurePublishes(t *testing.T) {
	ctrl := gomock.NewController(t)

	requests := mockgen.NewMockPaymentRequestService(ctrl)
	txns := mockgen.NewMockPaymentTransactionService(ctrl)
	refunds := mockgen.NewMockPaymentRefundService(ctrl)
	publisher := mockgen.NewMockEventPublisher(ctrl)
	idGen := mockgen.NewMockIDGenerator(ctrl)

	// State left behind by a delivery whose mutations committed and whose publish failed.
	txns.EXPECT().FindByExternalID(gomock.Any(), "pi_1").
		Return(&domain.PaymentTransaction{ID: "T1", PaymentRequestID: "R1", ExternalTransactionID: "pi_1", Status: domain.TransactionStatusSuccess}, true, nil)
	requests.EXPECT().GetByID(gomock.Any(), "R1").
		Return(&domain.PaymentRequest{ID: "R1", Status: domain.RequestStatusCompleted, PaidAt: &fixedNow}, true, nil)
	idGen.EXPECT().Generate().Return("ev-2")

	gomock.InOrder(
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).Return(errors.New("broker unavailable")),
		publisher.EXPECT().Publish(gomock.Any(), gomock.Any()).
			DoAndReturn(func(ctx context.Context, ev *domain.DomainEvent) error {
				assert.Equal(t, "payment.success:T1", ev.DedupKey())
				assert.Equal(t, "payment.success:T1", ev.Payload[domain.PayloadEventKey])
				return nil
			}),
	)
	txns.EXPECT().FindByExternalID(gomock.Any(), "pi_1").
		Return(&domain.PaymentTransaction{ID: "T1", PaymentRequestID: "R1", ExternalTransactionID: "pi_1", Status: domain.TransactionStatusSuccess}, true, nil)
	requests.EXPECT().GetByID(gomock.Any(), "R1").
		Return(&domain.PaymentRequest{ID: "R1", Status: domain.RequestStatusCompleted, PaidAt: &fixedNow}, true, nil)
	idGen.EXPECT().Generate().Return("ev-3")

	m := metrics.New(prometheus.NewRegistry())
	saga := usecase.NewSagaOrchestrator(requests, txns, refunds, nil, publisher, idGen, m, zerolog.Nop(),
		usecase.WithClock(func() time.Time { return fixedNow }))
	ev := &domain.CanonicalEvent{Type: domain.CallbackPaymentSuccess, ExternalTransactionID: "pi_1"}

	_, err := saga.Handle(context.Background(), ev)
	require.Error(t, err)

	outcome, err := saga.Handle(context.Background(), ev)
	require.NoError(t, err)
	assert.Equal(t, usecase.OutcomeDuplicate, outcome)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.DomainEventsPublished.WithLabelValues("payment.success")))
}
