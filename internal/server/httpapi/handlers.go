package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/auth"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
	"github.com/dmitrijs2005/contenthub/internal/server/services"
	"github.com/go-chi/chi/v5"
)

// CapabilityProvider issues presigned capabilities and lists records.
// Satisfied by services.CapabilityService.
type CapabilityProvider interface {
	RequestUpload(ctx context.Context, caller auth.Caller, contentType string, sizeHint *int64) (*services.Grant, error)
	RequestDownload(ctx context.Context, caller auth.Caller, fileID string) (*services.Grant, error)
	ListFiles(ctx context.Context, caller auth.Caller) ([]*models.FileRecord, error)
}

// StatusMutator applies file status transitions. Satisfied by
// services.StatusService.
type StatusMutator interface {
	UpdateFileStatus(ctx context.Context, caller auth.Caller, fileID string, next models.Status) (*models.FileRecord, error)
}

// ObjectCreatedHandler processes storage "object created" notifications
// pushed over HTTP. Satisfied by events.Detector.
type ObjectCreatedHandler interface {
	HandleObjectCreated(ctx context.Context, bucket, key string) error
}

// Handler holds the HTTP handlers for the API routes.
type Handler struct {
	capabilities CapabilityProvider
	status       StatusMutator
	objects      ObjectCreatedHandler
	logger       logging.Logger
}

func NewHandler(capabilities CapabilityProvider, status StatusMutator, objects ObjectCreatedHandler, logger logging.Logger) *Handler {
	return &Handler{
		capabilities: capabilities,
		status:       status,
		objects:      objects,
		logger:       logger.With("module", "httpapi"),
	}
}

type uploadRequest struct {
	ContentType string `json:"content_type,omitempty"`
	SizeHint    *int64 `json:"size_hint,omitempty"`
}

type grantResponse struct {
	FileID    string    `json:"file_id"`
	URL       string    `json:"url"`
	Method    string    `json:"method"`
	ExpiresAt time.Time `json:"expires_at"`
}

type fileResponse struct {
	FileID      string    `json:"file_id"`
	Status      string    `json:"status"`
	ContentType string    `json:"content_type,omitempty"`
	SizeHint    *int64    `json:"size_hint,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type statusRequest struct {
	Status string `json:"status"`
}

type objectCreatedRequest struct {
	Bucket string `json:"bucket"`
	Key    string `json:"key"`
}

func toGrantResponse(g *services.Grant) grantResponse {
	return grantResponse{
		FileID:    g.FileID,
		URL:       g.URL,
		Method:    g.Method,
		ExpiresAt: g.ExpiresAt,
	}
}

func toFileResponse(r *models.FileRecord) fileResponse {
	return fileResponse{
		FileID:      r.ID,
		Status:      string(r.Status),
		ContentType: r.ContentType,
		SizeHint:    r.SizeHint,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

// respondServiceError maps service errors to HTTP statuses. Injected and
// unexpected failures deliberately share a generic 500 so clients cannot
// tell them apart.
func (h *Handler) respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		respondError(w, http.StatusNotFound, "file not found")
	case errors.Is(err, common.ErrorForbidden):
		respondError(w, http.StatusForbidden, "access denied")
	case errors.Is(err, common.ErrorConflict):
		respondError(w, http.StatusConflict, "status conflict")
	case errors.Is(err, common.ErrorNotReady):
		respondError(w, http.StatusTooEarly, "upload not completed")
	default:
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err.Error())
		respondError(w, http.StatusInternalServerError, "internal error")
	}
}

// RequestUploadURL handles POST /api/v1/files/upload-url.
func (h *Handler) RequestUploadURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	var req uploadRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, http.StatusBadRequest, "malformed request body")
			return
		}
	}

	grant, err := h.capabilities.RequestUpload(r.Context(), caller, req.ContentType, req.SizeHint)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondCreated(w, toGrantResponse(grant))
}

// RequestDownloadURL handles GET /api/v1/files/{fileID}/download-url.
func (h *Handler) RequestDownloadURL(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	fileID := chi.URLParam(r, "fileID")

	grant, err := h.capabilities.RequestDownload(r.Context(), caller, fileID)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondOK(w, toGrantResponse(grant))
}

// ListFiles handles GET /api/v1/files.
func (h *Handler) ListFiles(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	records, err := h.capabilities.ListFiles(r.Context(), caller)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	result := make([]fileResponse, 0, len(records))
	for _, record := range records {
		result = append(result, toFileResponse(record))
	}

	respondOK(w, result)
}

// UpdateFileStatus handles PATCH /internal/v1/files/{fileID}/status.
func (h *Handler) UpdateFileStatus(w http.ResponseWriter, r *http.Request) {
	caller, ok := CallerFromContext(r.Context())
	if !ok {
		respondError(w, http.StatusUnauthorized, "missing caller")
		return
	}

	fileID := chi.URLParam(r, "fileID")

	var req statusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	next := models.Status(req.Status)
	if !next.Valid() {
		respondError(w, http.StatusBadRequest, "unknown status")
		return
	}

	record, err := h.status.UpdateFileStatus(r.Context(), caller, fileID, next)
	if err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	respondOK(w, toFileResponse(record))
}

// ObjectCreated handles POST /internal/v1/events/object-created, the push
// alternative to the queue consumer.
func (h *Handler) ObjectCreated(w http.ResponseWriter, r *http.Request) {
	var req objectCreatedRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	if err := h.objects.HandleObjectCreated(r.Context(), req.Bucket, req.Key); err != nil {
		h.respondServiceError(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
