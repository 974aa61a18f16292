package repository

import (
	"context"
	"time"
)

// AuditEntry is one recorded auth action.
type AuditEntry struct {
	UserID    string
	Email     string
	Action    string
	IP        string
	UserAgent string
	Metadata  map[string]any
	CreatedAt time.Time
}

// AuditRepository appends auth actions to a durable trail.
type AuditRepository interface {
	Insert(ctx context.Context, e AuditEntry) error
}
