package events

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/auth"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
)

// StatusUpdater is the mutation gateway the detector drives. Satisfied by
// services.StatusService.
type StatusUpdater interface {
	UpdateFileStatus(ctx context.Context, caller auth.Caller, fileID string, next models.Status) (*models.FileRecord, error)
}

// Detector advances a file record to QUEUED when the storage layer
// confirms the object was written.
type Detector struct {
	status StatusUpdater
	bucket string
	logger logging.Logger
}

// NewDetector builds a detector. bucket, when non-empty, restricts handling
// to notifications from that bucket.
func NewDetector(status StatusUpdater, bucket string, logger logging.Logger) *Detector {
	return &Detector{
		status: status,
		bucket: bucket,
		logger: logger.With("module", "completion_detector"),
	}
}

// HandleObjectCreated processes one notification.
//
// It returns nil whenever the notification is fully handled, which
// includes duplicates, keys outside the upload prefix and records that no
// longer exist: with at-least-once delivery those are normal, not fatal.
// An error is returned only for transient failures, so the surrounding
// delivery mechanism redelivers the notification.
func (d *Detector) HandleObjectCreated(ctx context.Context, bucket, key string) error {

	if d.bucket != "" && bucket != d.bucket {
		d.logger.Warn(ctx, "ignoring notification for foreign bucket", "bucket", bucket, "key", key)
		return nil
	}

	fileID, err := models.FileIDFromStorageKey(key)
	if err != nil {
		d.logger.Warn(ctx, "ignoring object outside upload prefix", "key", key)
		return nil
	}

	_, err = d.status.UpdateFileStatus(ctx, auth.InternalCaller(), fileID, models.StatusQueued)

	switch {
	case err == nil:
		d.logger.Info(ctx, "upload confirmed", "file_id", fileID)
		return nil
	case errors.Is(err, common.ErrorNotFound):
		// Likely a duplicate for a record cleaned up downstream, or a key
		// written outside this service. Treated as handled.
		d.logger.Warn(ctx, "no record for uploaded object", "file_id", fileID, "key", key)
		return nil
	case errors.Is(err, common.ErrorConflict):
		d.logger.Warn(ctx, "transition rejected", "file_id", fileID, "error", err.Error())
		return nil
	default:
		return fmt.Errorf("updating file status: %w", err)
	}
}
