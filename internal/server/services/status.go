package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/auth"
	"github.com/dmitrijs2005/contenthub/internal/server/metrics"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
	"github.com/dmitrijs2005/contenthub/internal/server/repositories/files"
)

// StatusService is the single path by which a file record's status is ever
// written after creation. Access control and idempotence live here so no
// caller has to duplicate them.
type StatusService struct {
	files  files.Repository
	logger logging.Logger
}

func NewStatusService(repo files.Repository, logger logging.Logger) *StatusService {
	return &StatusService{
		files:  repo,
		logger: logger.With("module", "status_service"),
	}
}

// UpdateFileStatus applies one state transition and returns the updated
// record.
//
// The write is a compare-and-set keyed on the transition's predecessor
// state, applied together with a re-read of the row in one transaction.
// When the write matched no row the returned row state disambiguates: a
// missing record is common.ErrorNotFound; a record already in the target
// state is a successful no-op, because the triggering notification is
// delivered at-least-once; anything else is common.ErrorConflict.
func (s *StatusService) UpdateFileStatus(ctx context.Context, caller auth.Caller, fileID string, next models.Status) (*models.FileRecord, error) {

	prev, ok := next.Predecessor()
	if !ok {
		metrics.StatusTransitions.WithLabelValues("rejected").Inc()
		return nil, fmt.Errorf("%w: %q is not a valid transition target", common.ErrorConflict, next)
	}

	if !caller.IsInternal() {
		record, err := s.files.GetByID(ctx, fileID)
		if err != nil {
			return nil, err
		}
		if record.OwnerUserID != caller.UserID {
			return nil, common.ErrorForbidden
		}
	}

	record, err := s.files.AdvanceStatus(ctx, fileID, prev, next)

	switch {
	case err == nil:
		metrics.StatusTransitions.WithLabelValues("applied").Inc()
		s.logger.Info(ctx, "file status updated", "file_id", fileID, "status", string(next))
		return record, nil

	case errors.Is(err, common.ErrorNotFound):
		return nil, err

	case errors.Is(err, common.ErrorConflict):
		if record != nil && record.Status == next {
			// Duplicate delivery; the transition was already applied.
			metrics.StatusTransitions.WithLabelValues("duplicate").Inc()
			return record, nil
		}
		metrics.StatusTransitions.WithLabelValues("conflict").Inc()
		if record == nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %s cannot move to %s", common.ErrorConflict, record.Status, next)

	default:
		return nil, fmt.Errorf("%w: %v", common.ErrorTransientStorage, err)
	}
}
