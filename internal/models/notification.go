package models

import "time"

// SubmissionKind names the two record kinds accepted by the intake service.
type SubmissionKind string

const (
	KindApplication SubmissionKind = "application"
	KindContact     SubmissionKind = "contact"
)

// Notification is the rendered, channel-independent announcement of a new
// submission.
type Notification struct {
	Kind     SubmissionKind `json:"kind"`
	RecordID string         `json:"recordId"`
	Subject  string         `json:"subject"`
	Body     string         `json:"body"` // Markdown
	Created  time.Time      `json:"created"`
}

// Delivery statuses
const (
	StatusSent     = "sent"
	StatusFailed   = "failed"
	StatusDisabled = "disabled"
)

// DeliveryResult records the outcome of one channel delivery.
type DeliveryResult struct {
	Channel string    `json:"channel"`
	Status  string    `json:"status"`
	Error   string    `json:"error,omitempty"`
	SentAt  time.Time `json:"sentAt"`
}
