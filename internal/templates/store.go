package templates

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"

	"lakehose/internal/logger"
	"lakehose/pkg/retry"
)

// ErrTemplateNotFound reports that the blob store has no object under
// the requested key. It stays until the template is uploaded; callers
// must not treat it as transient.
var ErrTemplateNotFound = errors.New("template not found")

// Store reads template sources from blob storage.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
}

type S3Store struct {
	client *s3.Client
	bucket string
	logger logger.Logger
}

// NewS3Store builds an S3-backed template store. A custom endpoint
// (MinIO, LocalStack) switches the client to path-style addressing.
func NewS3Store(awsCfg aws.Config, endpoint, bucket string, log logger.Logger) *S3Store {
	s3Opts := []func(*s3.Options){}
	if endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true // required for MinIO / LocalStack
		})
	}

	return &S3Store{
		client: s3.NewFromConfig(awsCfg, s3Opts...),
		bucket: bucket,
		logger: log,
	}
}

func (s *S3Store) Get(ctx context.Context, key string) (string, error) {
	var body string

	err := retry.Do(ctx, 3, func() error {
		out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
			Bucket: aws.String(s.bucket),
			Key:    aws.String(key),
		})
		if err != nil {
			var noSuchKey *s3types.NoSuchKey
			if errors.As(err, &noSuchKey) {
				s.logger.WarnwCtx(ctx, "Template object missing",
					"bucket", s.bucket,
					"key", key,
				)
				return retry.Permanent(fmt.Errorf("%w: s3://%s/%s", ErrTemplateNotFound, s.bucket, key))
			}
			return fmt.Errorf("get template s3://%s/%s: %w", s.bucket, key, err)
		}
		defer out.Body.Close()

		data, err := io.ReadAll(out.Body)
		if err != nil {
			return fmt.Errorf("read template s3://%s/%s: %w", s.bucket, key, err)
		}
		body = string(data)
		return nil
	})
	if err != nil {
		return "", err
	}

	return body, nil
}

func (s *S3Store) Ping(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	if err != nil {
		return fmt.Errorf("head bucket %s: %w", s.bucket, err)
	}
	return nil
}
