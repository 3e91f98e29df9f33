package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/peakstay/reservation-engine/pkg/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// PostgresActivityRepository writes audit records for reservation actions
type PostgresActivityRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresActivityRepository creates a new PostgresActivityRepository
func NewPostgresActivityRepository(pool *pgxpool.Pool) *PostgresActivityRepository {
	return &PostgresActivityRepository{pool: pool}
}

// LogActivity appends one audit entry
func (r *PostgresActivityRepository) LogActivity(ctx context.Context, action string, payload map[string]interface{}, actorID string) error {
	ctx, span := telemetry.StartSpan(ctx, "repo.postgres.activity.log")
	defer span.End()

	span.SetAttributes(
		attribute.String("action", action),
		attribute.String("actor_id", actorID),
	)

	body, err := json.Marshal(payload)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to marshal activity payload: %w", err)
	}

	query := `
		INSERT INTO activity_logs (action, payload, actor_id, created_at)
		VALUES ($1, $2, $3, $4)
	`

	if _, err := r.pool.Exec(ctx, query, action, body, nullString(actorID), time.Now()); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("failed to insert activity log: %w", err)
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// Ensure PostgresActivityRepository implements ActivityRepository
var _ ActivityRepository = (*PostgresActivityRepository)(nil)
