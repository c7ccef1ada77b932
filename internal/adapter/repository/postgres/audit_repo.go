package postgres

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5/pgtype"

	"github.com/iho/paysaga/internal/domain"
)

const auditLogColumns = `id, aggregate_type, aggregate_id, action, previous_status, new_status,
	note, outcome, correlation_id, gateway_name, created_at`

// AuditRepository implements audit log persistence
type AuditRepository struct {
	db DBTX
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db DBTX) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO audit_logs (`+auditLogColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		log.ID,
		log.AggregateType,
		log.AggregateID,
		log.Action,
		log.PreviousStatus,
		log.NewStatus,
		log.Note,
		string(log.Outcome),
		log.CorrelationID,
		log.GatewayName,
		timeToPgTimestamptz(log.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

// List retrieves audit logs with filtering, newest first
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	query, args := buildAuditListQuery(filter)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list audit logs: %w", err)
	}
	defer rows.Close()

	var logs []*domain.AuditLog
	for rows.Next() {
		var (
			log       domain.AuditLog
			outcome   string
			createdAt pgtype.Timestamptz
		)

		err := rows.Scan(
			&log.ID,
			&log.AggregateType,
			&log.AggregateID,
			&log.Action,
			&log.PreviousStatus,
			&log.NewStatus,
			&log.Note,
			&outcome,
			&log.CorrelationID,
			&log.GatewayName,
			&createdAt,
		)
		if err != nil {
			return nil, err
		}

		log.Outcome = domain.AuditOutcome(outcome)
		log.CreatedAt = createdAt.Time
		logs = append(logs, &log)
	}

	return logs, rows.Err()
}

func buildAuditListQuery(filter domain.AuditFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, cond+" $"+strconv.Itoa(len(args)))
	}

	if filter.AggregateType != "" {
		add("aggregate_type =", filter.AggregateType)
	}
	if filter.AggregateID != "" {
		add("aggregate_id =", filter.AggregateID)
	}
	if filter.Action != "" {
		add("action =", filter.Action)
	}
	if filter.CorrelationID != "" {
		add("correlation_id =", filter.CorrelationID)
	}
	if filter.StartDate != nil {
		add("created_at >=", *filter.StartDate)
	}
	if filter.EndDate != nil {
		add("created_at <", *filter.EndDate)
	}

	var b strings.Builder
	b.WriteString("SELECT " + auditLogColumns + " FROM audit_logs")
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	b.WriteString(" ORDER BY created_at DESC, id DESC")

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		b.WriteString(" LIMIT $" + strconv.Itoa(len(args)))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		b.WriteString(" OFFSET $" + strconv.Itoa(len(args)))
	}

	return b.String(), args
}
