package notification

import (
	"context"
	"time"
)

// Repository is the notification outbox.
type Repository interface {
	Enqueue(ctx context.Context, item Notification) (Notification, error)
	ListPending(ctx context.Context, maxAttempts, limit int) ([]Notification, error)
	MarkSent(ctx context.Context, id int64, sentAt time.Time) error
	MarkFailed(ctx context.Context, id int64, reason string) error
}
