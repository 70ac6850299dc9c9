package information

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
)

// PostgresStore persists approval snapshots in PostgreSQL. See schema.sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const informationColumns = `domain_id, request_id, creator_id, organization_name,
	federal_agency, suborganization, purpose, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, info *models.DomainInformation) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domain_information (`+informationColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(info.DomainID), uuid.UUID(info.RequestID), uuid.UUID(info.CreatorID),
		info.OrganizationName, info.FederalAgency, info.Suborganization,
		info.Purpose, info.CreatedAt, info.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create domain information: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByDomain(ctx context.Context, domainID id.DomainID) (*models.DomainInformation, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+informationColumns+` FROM domain_information
		WHERE domain_id = $1`, uuid.UUID(domainID))

	var (
		info        models.DomainInformation
		domainUUID  uuid.UUID
		requestUUID uuid.UUID
		creatorUUID uuid.UUID
	)
	err := row.Scan(&domainUUID, &requestUUID, &creatorUUID, &info.OrganizationName,
		&info.FederalAgency, &info.Suborganization, &info.Purpose,
		&info.CreatedAt, &info.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain information: %w", err)
	}
	info.DomainID = id.DomainID(domainUUID)
	info.RequestID = id.RequestID(requestUUID)
	info.CreatorID = id.UserID(creatorUUID)
	return &info, nil
}

func (s *PostgresStore) DeleteByDomain(ctx context.Context, domainID id.DomainID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM domain_information WHERE domain_id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("delete domain information: %w", err)
	}
	return nil
}
