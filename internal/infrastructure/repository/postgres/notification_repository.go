package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/jmoiron/sqlx"

	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
	qb "github.com/riskibarqy/fantasy-settlement/internal/platform/querybuilder"
)

type NotificationRepository struct {
	db *sqlx.DB
}

func NewNotificationRepository(db *sqlx.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

func (r *NotificationRepository) Enqueue(ctx context.Context, item notification.Notification) (notification.Notification, error) {
	query, args, err := qb.InsertInto("notification_outbox").
		Columns("kind", "season_id", "round_number", "payload", "created_at").
		Values(item.Kind, item.SeasonID, item.RoundNumber, encodeJSONMap(item.Payload), item.CreatedAt).
		Suffix("RETURNING id").
		ToSQL()
	if err != nil {
		return notification.Notification{}, fmt.Errorf("build enqueue notification query: %w", err)
	}
	if err := r.db.QueryRowxContext(ctx, query, args...).Scan(&item.ID); err != nil {
		return notification.Notification{}, fmt.Errorf("enqueue notification: %w", err)
	}
	return item, nil
}

func (r *NotificationRepository) ListPending(ctx context.Context, maxAttempts, limit int) ([]notification.Notification, error) {
	query, args, err := qb.Select(
		"id", "kind", "season_id", "round_number", "payload::text AS payload",
		"attempts", "last_error", "created_at", "sent_at",
	).From("notification_outbox").
		Where(qb.IsNull("sent_at"), qb.Expr("attempts < ?", maxAttempts)).
		OrderBy("id").
		Limit(limit).
		ToSQL()
	if err != nil {
		return nil, fmt.Errorf("build list pending notifications query: %w", err)
	}

	var rows []notificationTableModel
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, fmt.Errorf("list pending notifications: %w", err)
	}

	out := make([]notification.Notification, 0, len(rows))
	for _, row := range rows {
		out = append(out, notification.Notification{
			ID:          row.ID,
			Kind:        row.Kind,
			SeasonID:    row.SeasonID,
			RoundNumber: row.RoundNumber,
			Payload:     decodeJSONMap(row.Payload),
			Attempts:    row.Attempts,
			LastError:   row.LastError,
			CreatedAt:   row.CreatedAt,
			SentAt:      nullableTime(row.SentAt),
		})
	}
	return out, nil
}

func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, sentAt time.Time) error {
	query, args, err := qb.Update("notification_outbox").
		Set("sent_at", sql.NullTime{Time: sentAt, Valid: true}).
		SetExpr("attempts", "attempts + 1").
		Set("last_error", "").
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark notification sent query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notification sent: %w", err)
	}
	return nil
}

func (r *NotificationRepository) MarkFailed(ctx context.Context, id int64, reason string) error {
	query, args, err := qb.Update("notification_outbox").
		SetExpr("attempts", "attempts + 1").
		Set("last_error", reason).
		Where(qb.Eq("id", id)).
		ToSQL()
	if err != nil {
		return fmt.Errorf("build mark notification failed query: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("mark notification failed: %w", err)
	}
	return nil
}

func encodeJSONMap(value map[string]any) string {
	if len(value) == 0 {
		return "{}"
	}
	encoded, err := sonic.Marshal(value)
	if err != nil {
		return "{}"
	}
	return string(encoded)
}

func decodeJSONMap(raw string) map[string]any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return map[string]any{}
	}
	out := make(map[string]any)
	if err := sonic.Unmarshal([]byte(raw), &out); err != nil {
		return map[string]any{}
	}
	return out
}
