package postgres

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/iho/paysaga/internal/domain"
)

func TestBuildAuditListQuery(t *testing.T) {
	t.Run("no filter", func(t *testing.T) {
		query, args := buildAuditListQuery(domain.AuditFilter{})
		assert.NotContains(t, query, "WHERE")
		assert.True(t, strings.HasSuffix(query, "ORDER BY created_at DESC, id DESC"))
		assert.Empty(t, args)
	})

	t.Run("placeholders follow argument order", func(t *testing.T) {
		start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		query, args := buildAuditListQuery(domain.AuditFilter{
			AggregateID: "R1",
			Action:      "PAYMENT_SUCCESS",
			StartDate:   &start,
			Limit:       20,
			Offset:      40,
		})

		assert.Contains(t, query, "WHERE aggregate_id = $1 AND action = $2 AND created_at >= $3")
		assert.Contains(t, query, "LIMIT $4 OFFSET $5")
		assert.Equal(t, []any{"R1", "PAYMENT_SUCCESS", start, 20, 40}, args)
	})

	t.Run("more than nine arguments", func(t *testing.T) {
		start, end := time.Now(), time.Now()
		query, args := buildAuditListQuery(domain.AuditFilter{
			AggregateType: "payment_request",
			AggregateID:   "R1",
			Action:        "REQUEST_APPROVED",
			CorrelationID: "c-1",
			StartDate:     &start,
			EndDate:       &end,
			Limit:         10,
			Offset:        10,
		})

		assert.Len(t, args, 8)
		assert.Contains(t, query, "OFFSET $8")
	})
}
