package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/ledger_sync/internal/apperrors"
	"github.com/SscSPs/ledger_sync/internal/core/domain"
	portsrepo "github.com/SscSPs/ledger_sync/internal/core/ports/repositories"
	"github.com/SscSPs/ledger_sync/internal/models"
	"github.com/SscSPs/ledger_sync/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PgxAccountMappingRepository struct {
	BaseRepository
}

// NewAccountMappingRepository creates a repository for account mappings.
func NewAccountMappingRepository(pool *pgxpool.Pool) portsrepo.AccountMappingRepositoryWithTx {
	return &PgxAccountMappingRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountMappingRepositoryWithTx = (*PgxAccountMappingRepository)(nil)

// ListMappings retrieves every mapping row for one integration.
func (r *PgxAccountMappingRepository) ListMappings(ctx context.Context, integration domain.IntegrationID) ([]domain.AccountMapping, error) {
	query := `
		SELECT id, integration, lm_id, account_id, account_name, created_at
		FROM account_mappings
		WHERE integration = $1
		ORDER BY id;
	`
	rows, err := r.Pool.Query(ctx, query, string(integration))
	if err != nil {
		return nil, fmt.Errorf("failed to query account mappings for %s: %w", integration, err)
	}
	defer rows.Close()

	var result []models.AccountMapping
	for rows.Next() {
		var m models.AccountMapping
		if err := rows.Scan(&m.ID, &m.Integration, &m.LMID, &m.AccountID, &m.AccountName, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account mapping row: %w", err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account mapping rows: %w", err)
	}

	return mapping.ToDomainAccountMappings(result), nil
}

// ReplaceAll deletes the integration's rows and inserts mappings in one transaction,
// so readers see either the old set or the new set.
func (r *PgxAccountMappingRepository) ReplaceAll(ctx context.Context, integration domain.IntegrationID, mappings []domain.AccountMapping) error {
	tx, err := r.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = r.Rollback(ctx, tx)
	}()

	if _, err := tx.Exec(ctx, `DELETE FROM account_mappings WHERE integration = $1;`, string(integration)); err != nil {
		return fmt.Errorf("failed to clear account mappings for %s: %w", integration, err)
	}

	if len(mappings) > 0 {
		batch := &pgx.Batch{}
		insertQuery := `
			INSERT INTO account_mappings (integration, lm_id, account_id, account_name)
			VALUES ($1, $2, $3, $4);
		`
		for _, d := range mappings {
			m := mapping.ToModelAccountMapping(d)
			batch.Queue(insertQuery, string(integration), m.LMID, m.AccountID, m.AccountName)
		}

		br := tx.SendBatch(ctx, batch)
		if err := br.Close(); err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				return fmt.Errorf("%w: account mapping for %s violates uniqueness: %s", apperrors.ErrDuplicate, integration, pgErr.Detail)
			}
			return fmt.Errorf("failed to insert account mappings for %s: %w", integration, err)
		}
	}

	return r.Commit(ctx, tx)
}
