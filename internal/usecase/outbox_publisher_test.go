package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/paysaga/internal/domain"
	"github.com/iho/paysaga/internal/usecase"
	"github.com/iho/paysaga/internal/usecase/mocks"
)

func TestOutboxPublisher_Publish(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	pub := usecase.NewOutboxPublisher(repo)

	ev := domain.NewDomainEvent("ev-1", domain.EventTypeRefundSuccess, "corr-9", map[string]any{"refundId": "F1"}, fixedNow)
	ev.AggregateType = domain.AggregateTypePaymentRefund
	ev.AggregateID = "F1"

	require.NoError(t, pub.Publish(context.Background(), ev))

	stored := repo.Events()
	require.Len(t, stored, 1)
	assert.Equal(t, "ev-1", stored[0].ID)
	assert.Equal(t, "refund.success", stored[0].EventType)
	assert.Equal(t, "corr-9", stored[0].CorrelationID)
	assert.Equal(t, "F1", stored[0].AggregateID)
	assert.False(t, stored[0].Published)

	// The relay rebuilds the same wire event.
	back := stored[0].ToDomainEvent()
	assert.Equal(t, ev.Type, back.Type)
	assert.Equal(t, *ev.CorrelationID, *back.CorrelationID)
	assert.Equal(t, fixedNow.UTC(), back.CreatedAt)
}

func TestOutboxPublisher_PublishError(t *testing.T) {
	repo := mocks.NewMockOutboxRepository()
	dbErr := errors.New("insert failed")
	repo.CreateFunc = func(ctx context.Context, event *domain.OutboxEvent) error { return dbErr }

	err := usecase.NewOutboxPublisher(repo).Publish(context.Background(),
		domain.NewDomainEvent("ev-1", domain.EventTypePaymentFailed, "", nil, time.Now()))
	assert.ErrorIs(t, err, dbErr)
}
