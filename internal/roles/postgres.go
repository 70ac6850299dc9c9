package roles

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// Postgres persists role grants in PostgreSQL. See schema.sql.
type Postgres struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *Postgres {
	return &Postgres{db: db}
}

func (s *Postgres) Grant(ctx context.Context, userID id.UserID, domainID id.DomainID, role Role) (*UserDomainRole, error) {
	grant := &UserDomainRole{
		ID:        id.RoleID(uuid.New()),
		UserID:    userID,
		DomainID:  domainID,
		Role:      role,
		CreatedAt: requestcontext.Now(ctx),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO user_domain_roles (id, user_id, domain_id, role, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		uuid.UUID(grant.ID), uuid.UUID(userID), uuid.UUID(domainID), string(role), grant.CreatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return nil, sentinel.ErrConflict
		}
		return nil, fmt.Errorf("grant role: %w", err)
	}
	return grant, nil
}

func (s *Postgres) ListByDomain(ctx context.Context, domainID id.DomainID) ([]*UserDomainRole, error) {
	return s.list(ctx, `WHERE domain_id = $1`, uuid.UUID(domainID))
}

func (s *Postgres) ListByUser(ctx context.Context, userID id.UserID) ([]*UserDomainRole, error) {
	return s.list(ctx, `WHERE user_id = $1`, uuid.UUID(userID))
}

func (s *Postgres) list(ctx context.Context, where string, arg any) ([]*UserDomainRole, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, user_id, domain_id, role, created_at
		FROM user_domain_roles `+where+` ORDER BY created_at`, arg)
	if err != nil {
		return nil, fmt.Errorf("list roles: %w", err)
	}
	defer rows.Close()

	var out []*UserDomainRole
	for rows.Next() {
		var (
			g          UserDomainRole
			roleUUID   uuid.UUID
			userUUID   uuid.UUID
			domainUUID uuid.UUID
			role       string
		)
		if err := rows.Scan(&roleUUID, &userUUID, &domainUUID, &role, &g.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan role: %w", err)
		}
		g.ID = id.RoleID(roleUUID)
		g.UserID = id.UserID(userUUID)
		g.DomainID = id.DomainID(domainUUID)
		g.Role = Role(role)
		out = append(out, &g)
	}
	return out, rows.Err()
}

func (s *Postgres) HasRole(ctx context.Context, userID id.UserID, domainID id.DomainID, role Role) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(
			SELECT 1 FROM user_domain_roles
			WHERE user_id = $1 AND domain_id = $2 AND role = $3)`,
		uuid.UUID(userID), uuid.UUID(domainID), string(role)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check role: %w", err)
	}
	return exists, nil
}

func (s *Postgres) RevokeByDomain(ctx context.Context, domainID id.DomainID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM user_domain_roles WHERE domain_id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("revoke roles: %w", err)
	}
	return nil
}
