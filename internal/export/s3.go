package export

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"nido-go/internal/config"
	"nido-go/internal/nido"
)

// S3Exporter writes export payloads to an S3 bucket.
// Keys are <prefix>/<name>; the multipart uploader handles payloads of any
// size without buffering them in memory.
type S3Exporter struct {
	name     string
	bucket   string
	prefix   string
	client   *s3.Client
	uploader *manager.Uploader
}

// NewS3Exporter creates an S3 exporter from configuration. Credentials come
// from the config file when set, otherwise from the default AWS chain
// (environment, shared config, instance role).
func NewS3Exporter(cfg config.ExportConfig) (*S3Exporter, error) {
	if cfg.S3Bucket == "" {
		return nil, fmt.Errorf("s3 export requires s3_bucket to be set")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.S3Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.S3Region))
	}
	if cfg.S3AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.S3AccessKeyID, cfg.S3SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(context.Background(), opts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return &S3Exporter{
		name:     cfg.Name,
		bucket:   cfg.S3Bucket,
		prefix:   cfg.S3Prefix,
		client:   client,
		uploader: manager.NewUploader(client),
	}, nil
}

// Put uploads a payload to the bucket under <prefix>/<name>.
func (e *S3Exporter) Put(name string, r io.Reader, size int64) error {
	key := path.Join(e.prefix, name)

	_, err := e.uploader.Upload(context.Background(), &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return fmt.Errorf("uploading %s to s3: %w", key, err)
	}

	return nil
}

// ValidateSetup verifies that the bucket exists and is reachable.
func (e *S3Exporter) ValidateSetup() error {
	_, err := e.client.HeadBucket(context.Background(), &s3.HeadBucketInput{
		Bucket: aws.String(e.bucket),
	})
	if err != nil {
		return fmt.Errorf("bucket %s not accessible: %w", e.bucket, err)
	}
	return nil
}

// Compile-time check that S3Exporter implements the nido.Exporter interface.
var _ nido.Exporter = (*S3Exporter)(nil)
