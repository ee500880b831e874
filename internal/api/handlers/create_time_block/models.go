package create_time_block

import (
	"time"
)

// CreateTimeBlockRequest HTTP request model
type CreateTimeBlockRequest struct {
	StartsAt time.Time `json:"startsAt"`
	EndsAt   time.Time `json:"endsAt"`
	Type     string    `json:"type"`
	Reason   *string   `json:"reason,omitempty"`
}
