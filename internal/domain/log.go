package domain

import (
	"time"

	"gopkg.in/guregu/null.v4"
)

// LogEntry is one row of the append-only action trail.
type LogEntry struct {
	ID        int       `json:"id"`
	UserID    null.Int  `json:"user_id"`
	Action    string    `json:"action"`
	CreatedAt time.Time `json:"created_at"`
}

type LogFilter struct {
	Search string
	Page
}
