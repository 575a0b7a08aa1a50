package files

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/dbx"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
)

// PostgresRepository implements file record storage over database/sql.
// Reads and single-statement writes go through db; AdvanceStatus opens its
// own transaction on conn.
type PostgresRepository struct {
	conn *sql.DB
	db   dbx.DBTX
}

func NewPostgresRepository(conn *sql.DB) *PostgresRepository {
	return &PostgresRepository{conn: conn, db: conn}
}

// Create inserts a new file record. The file id is the primary key, so a
// duplicate insert fails at the database level.
func (r *PostgresRepository) Create(ctx context.Context, file *models.FileRecord) error {
	query := `
		INSERT INTO files (file_id, owner_user_id, storage_key, status, content_type, size_hint, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8);
	`
	res, err := r.db.ExecContext(ctx, query,
		file.ID, file.OwnerUserID, file.StorageKey, file.Status, file.ContentType, file.SizeHint, file.CreatedAt, file.UpdatedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n != 1 {
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
	return nil
}

// GetByID returns the record for a file id, or common.ErrorNotFound.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	return getByID(ctx, r.db, id)
}

func getByID(ctx context.Context, db dbx.DBTX, id string) (*models.FileRecord, error) {
	query := `
		SELECT file_id, owner_user_id, storage_key, status, content_type, size_hint, created_at, updated_at
		FROM files WHERE file_id=$1
	`
	result := &models.FileRecord{}
	err := db.QueryRowContext(ctx, query, id).Scan(
		&result.ID, &result.OwnerUserID, &result.StorageKey, &result.Status,
		&result.ContentType, &result.SizeHint, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrorNotFound
		}
		return nil, fmt.Errorf("failed to select file: %w", err)
	}
	return result, nil
}

// SelectByOwner returns all records owned by ownerUserID, newest first.
func (r *PostgresRepository) SelectByOwner(ctx context.Context, ownerUserID string) ([]*models.FileRecord, error) {
	query := `
		SELECT file_id, owner_user_id, storage_key, status, content_type, size_hint, created_at, updated_at
		FROM files WHERE owner_user_id=$1
		ORDER BY created_at DESC
	`
	rows, err := r.db.QueryContext(ctx, query, ownerUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to select files: %w", err)
	}
	defer rows.Close()

	var result []*models.FileRecord
	for rows.Next() {
		var item models.FileRecord
		if err := rows.Scan(&item.ID, &item.OwnerUserID, &item.StorageKey, &item.Status,
			&item.ContentType, &item.SizeHint, &item.CreatedAt, &item.UpdatedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// AdvanceStatus applies a compare-and-set status write and re-reads the
// row inside a single transaction, so the returned record reflects the
// state the write actually observed.
//
// Outcomes: (record, nil) when the transition was applied; (record,
// common.ErrorConflict) when the row exists but was not in the expected
// state; (nil, common.ErrorNotFound) when there is no such record.
func (r *PostgresRepository) AdvanceStatus(ctx context.Context, id string, from, to models.Status) (*models.FileRecord, error) {
	var record *models.FileRecord

	err := dbx.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx dbx.DBTX) error {
		updateErr := updateStatusFrom(ctx, tx, id, from, to)
		if updateErr != nil && !errors.Is(updateErr, common.ErrorConflict) {
			return updateErr
		}

		rec, getErr := getByID(ctx, tx, id)
		if getErr != nil {
			return getErr
		}
		record = rec

		// A conflict rolls back, which is harmless: nothing was written.
		return updateErr
	})
	if err != nil && !errors.Is(err, common.ErrorConflict) {
		return nil, err
	}
	return record, err
}

func updateStatusFrom(ctx context.Context, db dbx.DBTX, id string, from, to models.Status) error {
	query := `UPDATE files SET status=$2, updated_at=now() WHERE file_id=$1 AND status=$3`
	res, err := db.ExecContext(ctx, query, id, to, from)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrorConflict
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}
