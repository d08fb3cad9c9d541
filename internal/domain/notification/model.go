package notification

import "time"

const KindRoundClosed = "round_closed"

// Notification is an outbox entry waiting for delivery.
type Notification struct {
	ID          int64
	Kind        string
	SeasonID    int64
	RoundNumber int
	Payload     map[string]any
	Attempts    int
	LastError   string
	CreatedAt   time.Time
	SentAt      *time.Time
}
