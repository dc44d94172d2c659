// internal/workers/feed/aggregate-activity/models.go
package aggregateactivity

import "sponsorhub-workers/internal/models"

type Input struct {
	UserID string `json:"userId"`
	Limit  int    `json:"limit,omitempty"` // per source, defaults to config
}

type Output struct {
	Activity []models.ActivityEvent `json:"activity"`
}
