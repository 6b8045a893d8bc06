// Package s3store archives the raw FONDSNET workbook in S3 so every committed
// hash can be traced back to the exact file it was computed from.
package s3store

import (
	"bytes"
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/v-the-cmd/fondsnet-import/internal/config"
	errs "github.com/v-the-cmd/fondsnet-import/internal/errors"
	"github.com/v-the-cmd/fondsnet-import/internal/logging"
)

// ContentTypeXLSX is the MIME type of Office Open XML spreadsheets.
const ContentTypeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// putObjectAPI is the slice of the S3 client the store uses.
type putObjectAPI interface {
	PutObject(ctx context.Context, input *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Store uploads workbook snapshots to a single bucket.
type Store struct {
	client putObjectAPI
	cfg    config.S3Config
	log    *logging.Logger
}

// New creates a store using the default AWS credential chain.
func New(ctx context.Context, cfg config.S3Config, log *logging.Logger) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, errs.Wrap(err, errs.ErrS3, "failed to load AWS configuration").
			WithSuggestion("Check AWS credentials (AWS_ACCESS_KEY_ID, AWS_SECRET_ACCESS_KEY or an assumed role)")
	}
	return NewWithClient(s3.NewFromConfig(awsCfg), cfg, log), nil
}

// NewWithClient creates a store with a custom S3 client, used in tests.
func NewWithClient(client putObjectAPI, cfg config.S3Config, log *logging.Logger) *Store {
	if log == nil {
		log = logging.Global()
	}
	return &Store{client: client, cfg: cfg, log: log.WithStage("upload")}
}

// UploadWorkbook stores the workbook bytes under the object key derived from
// the content hash and returns the object's web URL.
func (s *Store) UploadWorkbook(ctx context.Context, hash string, data []byte) (string, error) {
	key := s.cfg.ObjectKey(hash)

	s.log.Info("uploading workbook", "bucket", s.cfg.Bucket, "key", key, "bytes", len(data))

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.cfg.Bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(ContentTypeXLSX),
	})
	if err != nil {
		return "", errs.UploadFailed(s.cfg.Bucket, key, err)
	}

	url := s.cfg.WebURL(hash)
	s.log.Info("upload complete", "url", url)
	return url, nil
}
