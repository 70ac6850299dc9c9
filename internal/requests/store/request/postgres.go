package request

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/requests/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// PostgresStore persists domain requests in PostgreSQL. See schema.sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed request store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const requestColumns = `id, requester_id, investigator, requested_domain, organization_name,
	federal_agency, suborganization, purpose, status, first_submitted, last_submitted,
	action_needed_reason, rejection_reason, approved_domain_id, version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, r *models.DomainRequest) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_requests (`+requestColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		uuid.UUID(r.ID), uuid.UUID(r.RequesterID), nullUserID(r.Investigator),
		r.RequestedDomain, r.OrganizationName, r.FederalAgency, r.Suborganization, r.Purpose,
		string(r.Status), nullTime(r.FirstSubmitted), nullTime(r.LastSubmitted),
		r.ActionNeededReason, r.RejectionReason, nullDomainID(r.ApprovedDomainID),
		r.Version, r.CreatedAt, r.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create domain request: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, requestID id.RequestID) (*models.DomainRequest, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM domain_requests WHERE id = $1`, uuid.UUID(requestID))
	return scanRequest(row)
}

func (s *PostgresStore) ListByRequester(ctx context.Context, requesterID id.UserID) ([]*models.DomainRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM domain_requests
		WHERE requester_id = $1 ORDER BY created_at`, uuid.UUID(requesterID))
	if err != nil {
		return nil, fmt.Errorf("list requests by requester: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (s *PostgresStore) ListByStatus(ctx context.Context, status models.Status) ([]*models.DomainRequest, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+requestColumns+` FROM domain_requests
		WHERE status = $1 ORDER BY created_at`, string(status))
	if err != nil {
		return nil, fmt.Errorf("list requests by status: %w", err)
	}
	defer rows.Close()
	return scanRequests(rows)
}

func (s *PostgresStore) ExistsByApprovedDomain(ctx context.Context, domainID id.DomainID) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM domain_requests WHERE approved_domain_id = $1)`,
		uuid.UUID(domainID)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check approved domain claim: %w", err)
	}
	return exists, nil
}

// Execute atomically validates and mutates one request under a row lock,
// mirroring the domain store's transition discipline.
func (s *PostgresStore) Execute(ctx context.Context, requestID id.RequestID,
	validate func(*models.DomainRequest) error, mutate func(*models.DomainRequest)) (*models.DomainRequest, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin request tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+requestColumns+` FROM domain_requests WHERE id = $1 FOR UPDATE`,
		uuid.UUID(requestID))
	r, err := scanRequest(row)
	if err != nil {
		return nil, err
	}

	if err := validate(r); err != nil {
		return nil, err
	}
	mutate(r)
	r.Version++
	r.UpdatedAt = requestcontext.Now(ctx)

	_, err = tx.ExecContext(ctx, `
		UPDATE domain_requests
		SET investigator = $2, federal_agency = $3, suborganization = $4, status = $5,
		    first_submitted = $6, last_submitted = $7, action_needed_reason = $8,
		    rejection_reason = $9, approved_domain_id = $10, version = $11, updated_at = $12
		WHERE id = $1`,
		uuid.UUID(r.ID), nullUserID(r.Investigator), r.FederalAgency, r.Suborganization,
		string(r.Status), nullTime(r.FirstSubmitted), nullTime(r.LastSubmitted),
		r.ActionNeededReason, r.RejectionReason, nullDomainID(r.ApprovedDomainID),
		r.Version, r.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update domain request: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit request tx: %w", err)
	}
	return r, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (*models.DomainRequest, error) {
	var (
		r              models.DomainRequest
		requestUUID    uuid.UUID
		requesterUUID  uuid.UUID
		investigator   uuid.NullUUID
		status         string
		firstSubmitted sql.NullTime
		lastSubmitted  sql.NullTime
		approvedDomain uuid.NullUUID
	)
	err := row.Scan(&requestUUID, &requesterUUID, &investigator,
		&r.RequestedDomain, &r.OrganizationName, &r.FederalAgency, &r.Suborganization,
		&r.Purpose, &status, &firstSubmitted, &lastSubmitted,
		&r.ActionNeededReason, &r.RejectionReason, &approvedDomain,
		&r.Version, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain request: %w", err)
	}
	r.ID = id.RequestID(requestUUID)
	r.RequesterID = id.UserID(requesterUUID)
	r.Status = models.Status(status)
	r.FirstSubmitted = timePtr(firstSubmitted)
	r.LastSubmitted = timePtr(lastSubmitted)
	if investigator.Valid {
		v := id.UserID(investigator.UUID)
		r.Investigator = &v
	}
	if approvedDomain.Valid {
		v := id.DomainID(approvedDomain.UUID)
		r.ApprovedDomainID = &v
	}
	return &r, nil
}

func scanRequests(rows *sql.Rows) ([]*models.DomainRequest, error) {
	var out []*models.DomainRequest
	for rows.Next() {
		r, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func nullUserID(u *id.UserID) uuid.NullUUID {
	if u == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*u), Valid: true}
}

func nullDomainID(d *id.DomainID) uuid.NullUUID {
	if d == nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: uuid.UUID(*d), Valid: true}
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}
