package contact

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
	"registrar/pkg/requestcontext"
)

// PostgresStore persists public contacts in PostgreSQL. See schema.sql.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const contactColumns = `id, domain_id, registry_id, contact_type, name, org, streets, city,
	province, postal_code, country_code, voice, fax, email, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, c *models.PublicContact) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO public_contacts (`+contactColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		uuid.UUID(c.ID), uuid.UUID(c.DomainID), c.RegistryID, string(c.Type),
		c.Name, c.Org, pq.Array(c.Streets), c.City, c.Province, c.PostalCode,
		c.CountryCode, c.Voice, c.Fax, c.Email, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create contact: %w", err)
	}
	return nil
}

func (s *PostgresStore) Update(ctx context.Context, c *models.PublicContact) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE public_contacts
		SET registry_id = $3, name = $4, org = $5, streets = $6, city = $7,
		    province = $8, postal_code = $9, country_code = $10, voice = $11,
		    fax = $12, email = $13, updated_at = $14
		WHERE domain_id = $1 AND contact_type = $2`,
		uuid.UUID(c.DomainID), string(c.Type), c.RegistryID, c.Name, c.Org,
		pq.Array(c.Streets), c.City, c.Province, c.PostalCode, c.CountryCode,
		c.Voice, c.Fax, c.Email, requestcontext.Now(ctx))
	if err != nil {
		return fmt.Errorf("update contact: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *PostgresStore) FindByDomainAndType(ctx context.Context, domainID id.DomainID, typ models.ContactType) (*models.PublicContact, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+contactColumns+` FROM public_contacts
		WHERE domain_id = $1 AND contact_type = $2`, uuid.UUID(domainID), string(typ))
	return scanContact(row)
}

func (s *PostgresStore) ListByDomain(ctx context.Context, domainID id.DomainID) ([]*models.PublicContact, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+contactColumns+` FROM public_contacts WHERE domain_id = $1`, uuid.UUID(domainID))
	if err != nil {
		return nil, fmt.Errorf("list contacts: %w", err)
	}
	defer rows.Close()

	var out []*models.PublicContact
	for rows.Next() {
		c, err := scanContact(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) DeleteByDomain(ctx context.Context, domainID id.DomainID) error {
	_, err := s.db.ExecContext(ctx, `
		DELETE FROM public_contacts WHERE domain_id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("delete contacts: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanContact(row rowScanner) (*models.PublicContact, error) {
	var (
		c           models.PublicContact
		contactUUID uuid.UUID
		domainUUID  uuid.UUID
		typ         string
		streets     pq.StringArray
	)
	err := row.Scan(&contactUUID, &domainUUID, &c.RegistryID, &typ, &c.Name, &c.Org,
		&streets, &c.City, &c.Province, &c.PostalCode, &c.CountryCode,
		&c.Voice, &c.Fax, &c.Email, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan contact: %w", err)
	}
	c.ID = id.ContactID(contactUUID)
	c.DomainID = id.DomainID(domainUUID)
	c.Type = models.ContactType(typ)
	c.Streets = streets
	return &c, nil
}
