// Package files implements the durable file record store.
package files

import (
	"context"

	"github.com/dmitrijs2005/contenthub/internal/server/models"
)

// Repository is the storage contract for file records.
//
// AdvanceStatus is the conditional write used for lifecycle transitions:
// the status column is only changed when the record is currently in the
// expected state, so duplicate or reordered notifications cannot regress a
// record. It returns the record's current row in both outcomes; when no row
// matched the expected state the error is common.ErrorConflict and the
// caller disambiguates (transition already applied vs. real conflict) from
// the returned record. A missing record is common.ErrorNotFound.
type Repository interface {
	Create(ctx context.Context, file *models.FileRecord) error
	GetByID(ctx context.Context, id string) (*models.FileRecord, error)
	SelectByOwner(ctx context.Context, ownerUserID string) ([]*models.FileRecord, error)
	AdvanceStatus(ctx context.Context, id string, from, to models.Status) (*models.FileRecord, error)
}
