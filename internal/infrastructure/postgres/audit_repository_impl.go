package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/oksasatya/go-otp-auth/internal/domain/repository"
)

// execer is the subset of pgxpool.Pool used here
type execer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

type AuditRepository struct {
	db  execer
	now func() time.Time
}

func NewAuditRepository(db execer) *AuditRepository {
	return &AuditRepository{db: db, now: time.Now}
}

const insertAudit = `INSERT INTO auth_audit_logs (id, user_id, email, action, ip, user_agent, metadata, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func (r *AuditRepository) Insert(ctx context.Context, e repository.AuditEntry) error {
	meta := e.Metadata
	if meta == nil {
		meta = map[string]any{}
	}
	raw, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal audit metadata: %w", err)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = r.now().UTC()
	}
	_, err = r.db.Exec(ctx, insertAudit,
		uuid.New(),
		nullable(e.UserID),
		nullable(e.Email),
		e.Action,
		nullable(e.IP),
		nullable(e.UserAgent),
		raw,
		created,
	)
	if err != nil {
		return fmt.Errorf("insert audit log: %w", err)
	}
	return nil
}

var _ repository.AuditRepository = (*AuditRepository)(nil)
