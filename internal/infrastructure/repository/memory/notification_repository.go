package memory

import (
	"context"
	"sort"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/riskibarqy/fantasy-settlement/internal/domain/notification"
)

type NotificationRepository struct{ store *Store }

func NewNotificationRepository(store *Store) *NotificationRepository {
	return &NotificationRepository{store: store}
}

func (r *NotificationRepository) Enqueue(_ context.Context, item notification.Notification) (notification.Notification, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item.ID = r.store.nextID()
	item.Payload = clonePayload(item.Payload)
	r.store.outbox[item.ID] = item
	return item, nil
}

func (r *NotificationRepository) ListPending(_ context.Context, maxAttempts, limit int) ([]notification.Notification, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	out := make([]notification.Notification, 0)
	for _, item := range r.store.outbox {
		if item.SentAt != nil {
			continue
		}
		if maxAttempts > 0 && item.Attempts >= maxAttempts {
			continue
		}
		item.Payload = clonePayload(item.Payload)
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *NotificationRepository) MarkSent(_ context.Context, id int64, sentAt time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.outbox[id]
	if !ok {
		return errors.Newf("notification %d not found", id)
	}
	sent := sentAt
	item.SentAt = &sent
	item.Attempts++
	item.LastError = ""
	r.store.outbox[id] = item
	return nil
}

func (r *NotificationRepository) MarkFailed(_ context.Context, id int64, reason string) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	item, ok := r.store.outbox[id]
	if !ok {
		return errors.Newf("notification %d not found", id)
	}
	item.Attempts++
	item.LastError = reason
	r.store.outbox[id] = item
	return nil
}

// Outbox returns every stored notification ordered by id.
func (s *Store) Outbox() []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]notification.Notification, 0, len(s.outbox))
	for _, item := range s.outbox {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func clonePayload(in map[string]any) map[string]any {
	if in == nil {
		return nil
	}
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
