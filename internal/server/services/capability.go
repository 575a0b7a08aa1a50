// Package services contains the application services: capability issuance
// and the single status-mutation path.
package services

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/auth"
	"github.com/dmitrijs2005/contenthub/internal/server/chaos"
	sc "github.com/dmitrijs2005/contenthub/internal/server/config"
	"github.com/dmitrijs2005/contenthub/internal/server/metrics"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
	"github.com/dmitrijs2005/contenthub/internal/server/repositories/files"
	"github.com/google/uuid"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Operation identifiers consulted against the failure-injection denylist.
const (
	OpRequestUploadCapability   = "files.requestUploadCapability"
	OpRequestDownloadCapability = "files.requestDownloadCapability"
)

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return s3.NewFromConfig(cfg, optFns...)
	}

	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return s3.NewPresignClient(c)
	}

	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignPutObject(ctx, in, optFns...)
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return pc.PresignGetObject(ctx, in, optFns...)
	}

	timeNow = time.Now
)

// Grant is a time-limited, single-object capability returned to the client.
type Grant struct {
	FileID    string
	URL       string
	Method    string
	ExpiresAt time.Time
}

// CapabilityService issues scoped upload and download capabilities and owns
// file record creation.
type CapabilityService struct {
	files  files.Repository
	gate   *chaos.Gate
	config *sc.Config
	logger logging.Logger
}

func NewCapabilityService(repo files.Repository, gate *chaos.Gate, config *sc.Config, logger logging.Logger) *CapabilityService {
	return &CapabilityService{
		files:  repo,
		gate:   gate,
		config: config,
		logger: logger.With("module", "capability_service"),
	}
}

func (s *CapabilityService) getPresignClient() (*s3.PresignClient, error) {
	cfg, err := loadDefaultAWSConfig(context.Background(),
		config.WithRegion(s.config.S3Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			s.config.S3RootUser,
			s.config.S3RootPassword,
			"",
		)))
	if err != nil {
		return nil, err
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(s.config.S3BaseEndpoint)
	})

	return newS3PresignClient(client), nil
}

// RequestUpload allocates a file id, persists a record in PENDING_UPLOAD
// and returns a presigned PUT capability bound to the record's storage key.
// When the failure-injection gate denies the operation, no record is
// created and common.ErrorInjectedFailure is returned.
func (s *CapabilityService) RequestUpload(ctx context.Context, caller auth.Caller, contentType string, sizeHint *int64) (*Grant, error) {

	if s.gate.IsDenied(ctx, OpRequestUploadCapability) {
		metrics.InjectedFailures.WithLabelValues(OpRequestUploadCapability).Inc()
		return nil, common.ErrorInjectedFailure
	}

	fileID := uuid.NewString()
	key := models.StorageKeyForFile(fileID)

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, fmt.Errorf("creating presign client: %w", err)
	}

	in := &s3.PutObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &key,
	}
	if contentType != "" {
		in.ContentType = &contentType
	}

	req, err := presignPutObject(presignClient, ctx, in, s3.WithPresignExpires(s.config.UploadURLTTL))
	if err != nil {
		return nil, fmt.Errorf("presigning put: %w", err)
	}

	now := timeNow().UTC()
	record := &models.FileRecord{
		ID:          fileID,
		OwnerUserID: caller.UserID,
		StorageKey:  key,
		Status:      models.StatusPendingUpload,
		ContentType: contentType,
		SizeHint:    sizeHint,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.files.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("creating file record: %w", err)
	}

	metrics.CapabilitiesIssued.WithLabelValues(http.MethodPut).Inc()
	s.logger.Info(ctx, "upload capability issued", "file_id", fileID, "owner", caller.UserID)

	return &Grant{
		FileID:    fileID,
		URL:       req.URL,
		Method:    http.MethodPut,
		ExpiresAt: now.Add(s.config.UploadURLTTL),
	}, nil
}

// RequestDownload returns a presigned GET capability for a confirmed file.
//
// Policy: the request is rejected with common.ErrorNotReady until the
// record has reached QUEUED. A read capability for an object that may not
// exist yet is wasted work; clients poll instead.
func (s *CapabilityService) RequestDownload(ctx context.Context, caller auth.Caller, fileID string) (*Grant, error) {

	if s.gate.IsDenied(ctx, OpRequestDownloadCapability) {
		metrics.InjectedFailures.WithLabelValues(OpRequestDownloadCapability).Inc()
		return nil, common.ErrorInjectedFailure
	}

	record, err := s.files.GetByID(ctx, fileID)
	if err != nil {
		return nil, err
	}

	if record.OwnerUserID != caller.UserID && !caller.IsInternal() {
		return nil, common.ErrorForbidden
	}

	if record.Status != models.StatusQueued {
		return nil, common.ErrorNotReady
	}

	presignClient, err := s.getPresignClient()
	if err != nil {
		return nil, fmt.Errorf("creating presign client: %w", err)
	}

	req, err := presignGetObject(presignClient, ctx, &s3.GetObjectInput{
		Bucket: &s.config.S3Bucket,
		Key:    &record.StorageKey,
	}, s3.WithPresignExpires(s.config.DownloadURLTTL))
	if err != nil {
		return nil, fmt.Errorf("presigning get: %w", err)
	}

	metrics.CapabilitiesIssued.WithLabelValues(http.MethodGet).Inc()

	return &Grant{
		FileID:    fileID,
		URL:       req.URL,
		Method:    http.MethodGet,
		ExpiresAt: timeNow().UTC().Add(s.config.DownloadURLTTL),
	}, nil
}

// ListFiles returns the caller's file records.
func (s *CapabilityService) ListFiles(ctx context.Context, caller auth.Caller) ([]*models.FileRecord, error) {
	result, err := s.files.SelectByOwner(ctx, caller.UserID)
	if err != nil {
		return nil, fmt.Errorf("selecting files: %w", err)
	}
	return result, nil
}
