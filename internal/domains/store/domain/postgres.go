package domain

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"registrar/internal/domains/models"
	id "registrar/pkg/domain"
	"registrar/pkg/platform/sentinel"
	"registrar/pkg/requestcontext"
)

// PostgresStore persists domains in PostgreSQL. See schema.sql.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgres constructs a PostgreSQL-backed domain store.
func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const domainColumns = `id, name, state, first_ready, expiration_date, deleted_at, version, created_at, updated_at`

func (s *PostgresStore) Create(ctx context.Context, d *models.Domain) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO domains (`+domainColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		uuid.UUID(d.ID), strings.ToLower(d.Name), string(d.State),
		nullTime(d.FirstReady), nullTime(d.ExpirationDate), nullTime(d.DeletedAt),
		d.Version, d.CreatedAt, d.UpdatedAt)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return sentinel.ErrConflict
		}
		return fmt.Errorf("create domain: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByName(ctx context.Context, name string) (*models.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE name = $1`, strings.ToLower(name))
	return scanDomain(row)
}

func (s *PostgresStore) FindByID(ctx context.Context, domainID id.DomainID) (*models.Domain, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE id = $1`, uuid.UUID(domainID))
	return scanDomain(row)
}

func (s *PostgresStore) ExistsByName(ctx context.Context, name string) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM domains WHERE name = $1)`, strings.ToLower(name)).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check domain exists: %w", err)
	}
	return exists, nil
}

// Execute atomically validates and mutates one domain. The row is locked
// with SELECT ... FOR UPDATE for the duration of both callbacks, so two
// transitions racing on the same domain serialize instead of both passing
// their guard against stale state.
func (s *PostgresStore) Execute(ctx context.Context, name string,
	validate func(*models.Domain) error, mutate func(*models.Domain)) (*models.Domain, error) {

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin transition tx: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT `+domainColumns+` FROM domains WHERE name = $1 FOR UPDATE`, strings.ToLower(name))
	d, err := scanDomain(row)
	if err != nil {
		return nil, err
	}

	if err := validate(d); err != nil {
		return nil, err
	}
	mutate(d)
	d.Version++
	d.UpdatedAt = requestcontext.Now(ctx)

	_, err = tx.ExecContext(ctx, `
		UPDATE domains
		SET state = $2, first_ready = $3, expiration_date = $4, deleted_at = $5,
		    version = $6, updated_at = $7
		WHERE id = $1`,
		uuid.UUID(d.ID), string(d.State), nullTime(d.FirstReady),
		nullTime(d.ExpirationDate), nullTime(d.DeletedAt), d.Version, d.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("update domain: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit transition tx: %w", err)
	}
	return d, nil
}

func (s *PostgresStore) Delete(ctx context.Context, domainID id.DomainID) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM domains WHERE id = $1`, uuid.UUID(domainID))
	if err != nil {
		return fmt.Errorf("delete domain: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDomain(row rowScanner) (*models.Domain, error) {
	var (
		d          models.Domain
		domainUUID uuid.UUID
		state      string
		firstReady sql.NullTime
		expiration sql.NullTime
		deletedAt  sql.NullTime
	)
	err := row.Scan(&domainUUID, &d.Name, &state, &firstReady, &expiration, &deletedAt,
		&d.Version, &d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan domain: %w", err)
	}
	d.ID = id.DomainID(domainUUID)
	d.State = models.State(state)
	d.FirstReady = timePtr(firstReady)
	d.ExpirationDate = timePtr(expiration)
	d.DeletedAt = timePtr(deletedAt)
	return &d, nil
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
