// internal/models/activity.go
package models

const (
	ActivityTypeApplication = "application"
	ActivityTypeMessage     = "message"
)

// ActivityEvent is a display-only union of the two feed entry kinds.
// Application events carry Status and Title; message events carry Sender
// and Content. Timestamp is RFC3339 UTC.
type ActivityEvent struct {
	Type      string `json:"type"`
	Status    string `json:"status,omitempty"`
	Title     string `json:"title,omitempty"`
	Sender    string `json:"sender,omitempty"`
	Content   string `json:"content,omitempty"`
	Timestamp string `json:"timestamp"`
}
