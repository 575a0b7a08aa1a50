package services

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	v4 "github.com/aws/aws-sdk-go-v2/aws/signer/v4"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/dmitrijs2005/contenthub/internal/common"
	"github.com/dmitrijs2005/contenthub/internal/logging"
	"github.com/dmitrijs2005/contenthub/internal/server/chaos"
	sc "github.com/dmitrijs2005/contenthub/internal/server/config"
	"github.com/dmitrijs2005/contenthub/internal/server/models"
)

// fakeFileRepo is an in-memory files.Repository with the same conditional
// write semantics as the Postgres implementation.
type fakeFileRepo struct {
	mu      sync.Mutex
	records map[string]*models.FileRecord

	createErr error
	updateErr error
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{records: make(map[string]*models.FileRecord)}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *models.FileRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	clone := *file
	r.records[file.ID] = &clone
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.records[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	clone := *rec
	return &clone, nil
}

func (r *fakeFileRepo) SelectByOwner(ctx context.Context, ownerUserID string) ([]*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.FileRecord
	for _, rec := range r.records {
		if rec.OwnerUserID == ownerUserID {
			clone := *rec
			result = append(result, &clone)
		}
	}
	return result, nil
}

func (r *fakeFileRepo) AdvanceStatus(ctx context.Context, id string, from, to models.Status) (*models.FileRecord, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.updateErr != nil {
		return nil, r.updateErr
	}
	rec, ok := r.records[id]
	if !ok {
		return nil, common.ErrorNotFound
	}
	if rec.Status != from {
		clone := *rec
		return &clone, common.ErrorConflict
	}
	rec.Status = to
	clone := *rec
	return &clone, nil
}

func testLogger() logging.Logger {
	return logging.NewSlogLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError})))
}

func staticGate(denied ...string) *chaos.Gate {
	return chaos.NewGate(chaos.SourceFunc(func(ctx context.Context) ([]string, error) {
		return denied, nil
	}), 0, testLogger())
}

// staticGateRef builds a gate whose denylist follows the pointed-to slice,
// so tests can toggle injection between calls.
func staticGateRef(denied *[]string) *chaos.Gate {
	return chaos.NewGate(chaos.SourceFunc(func(ctx context.Context) ([]string, error) {
		return *denied, nil
	}), 0, testLogger())
}

func testConfig() *sc.Config {
	cfg := &sc.Config{}
	cfg.LoadDefaults()
	cfg.S3Bucket = "landing-zone"
	return cfg
}

// stubPresign replaces the AWS presign seams for the duration of a test so
// no network or credentials are needed. URLs are derived from the object
// key to let tests assert capability scoping.
func stubPresign(t *testing.T) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNewS3 := newS3ClientFromConfig
	origNewPre := newS3PresignClient
	origPut := presignPutObject
	origGet := presignGetObject
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNewS3
		newS3PresignClient = origNewPre
		presignPutObject = origPut
		presignGetObject = origGet
	})

	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) *s3.Client {
		return &s3.Client{}
	}
	newS3PresignClient = func(c *s3.Client) *s3.PresignClient {
		return &s3.PresignClient{}
	}
	presignPutObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://storage.local/" + *in.Bucket + "/" + *in.Key + "?sig=put"}, nil
	}
	presignGetObject = func(pc *s3.PresignClient, ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.PresignOptions)) (*v4.PresignedHTTPRequest, error) {
		return &v4.PresignedHTTPRequest{URL: "https://storage.local/" + *in.Bucket + "/" + *in.Key + "?sig=get"}, nil
	}
}
