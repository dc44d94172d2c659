// internal/models/application.go
package models

type ApplicationStatus string

const (
	ApplicationStatusPending  ApplicationStatus = "pending"
	ApplicationStatusAccepted ApplicationStatus = "accepted"
	ApplicationStatusRejected ApplicationStatus = "rejected"
)

// IsTerminal reports whether no further status transition is allowed.
func (s ApplicationStatus) IsTerminal() bool {
	return s == ApplicationStatusAccepted || s == ApplicationStatusRejected
}

// Application is a creator's bid on a listing. At most one application
// exists per (UserID, ListingID) pair, enforced by a unique index.
type Application struct {
	ID        string            `json:"id"`
	UserID    string            `json:"userId"`
	ListingID string            `json:"listingId"`
	Proposal  string            `json:"proposal"`
	Status    ApplicationStatus `json:"status"`
	CreatedAt string            `json:"createdAt"`
	UpdatedAt string            `json:"updatedAt"`
}
