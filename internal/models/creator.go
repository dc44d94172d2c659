// internal/models/creator.go
package models

// Creator holds the public matching attributes of a creator account.
// FollowerCount is a pointer so an unreported count is distinguishable
// from a count of zero.
type Creator struct {
	ID              string   `json:"id"`
	Name            string   `json:"name"`
	Email           string   `json:"email"`
	AudienceProfile string   `json:"audienceProfile,omitempty"`
	Categories      []string `json:"categories"`
	FollowerCount   *int     `json:"followerCount,omitempty"`
}
