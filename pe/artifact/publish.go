package artifact

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.uber.org/zap"

	"github.com/cwbudde/algo-gwpe/internal/logging"
)

// ErrPublish wraps upload failures.
var ErrPublish = errors.New("artifact: publish failed")

// ParquetContentType is sent with uploaded tables.
const ParquetContentType = "application/vnd.apache.parquet"

// S3Config locates the destination bucket. Empty Endpoint means AWS;
// empty keys fall back to the default credential chain.
type S3Config struct {
	Bucket    string `yaml:"bucket"`
	Prefix    string `yaml:"prefix"`
	Region    string `yaml:"region"`
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	PathStyle bool   `yaml:"path_style"`
}

// Uploader is the subset of the S3 API used by [Publisher].
type Uploader interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// NewS3Client builds an S3 client from cfg.
func NewS3Client(ctx context.Context, cfg S3Config) (*s3.Client, error) {
	loaders := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		loaders = append(loaders, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		loaders = append(loaders, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loaders...)
	if err != nil {
		return nil, fmt.Errorf("%w: load aws config: %w", ErrPublish, err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	}), nil
}

// PublisherOption configures a [Publisher].
type PublisherOption func(*Publisher)

// WithLogger sets the logger for upload events.
func WithLogger(l *zap.Logger) PublisherOption {
	return func(p *Publisher) { p.logger = l }
}

// Publisher uploads artifact files under a key prefix.
type Publisher struct {
	client Uploader
	bucket string
	prefix string
	logger *zap.Logger
}

// NewPublisher returns a publisher writing to bucket under prefix.
func NewPublisher(client Uploader, bucket, prefix string, opts ...PublisherOption) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("%w: nil client", ErrPublish)
	}
	if bucket == "" {
		return nil, fmt.Errorf("%w: empty bucket", ErrPublish)
	}

	p := &Publisher{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	p.logger = logging.OrNop(p.logger)
	return p, nil
}

// Key returns the object key for name.
func (p *Publisher) Key(name string) string {
	if p.prefix == "" {
		return name
	}
	return path.Join(p.prefix, name)
}

// Publish uploads data as name and returns the object key.
func (p *Publisher) Publish(ctx context.Context, name string, data []byte, contentType string) (string, error) {
	key := p.Key(name)
	_, err := p.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(p.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentType),
	})
	if err != nil {
		p.logger.Error("artifact upload failed", zap.String("bucket", p.bucket), zap.String("key", key), zap.Error(err))
		return "", fmt.Errorf("%w: s3://%s/%s: %w", ErrPublish, p.bucket, key, err)
	}

	p.logger.Info("artifact published", zap.String("bucket", p.bucket), zap.String("key", key), zap.Int("bytes", len(data)))
	return key, nil
}

// PublishFiles uploads each parquet file under its base name.
func (p *Publisher) PublishFiles(ctx context.Context, paths ...string) ([]string, error) {
	keys := make([]string, 0, len(paths))
	for _, fp := range paths {
		data, err := os.ReadFile(fp)
		if err != nil {
			return keys, fmt.Errorf("%w: %w", ErrPublish, err)
		}
		key, err := p.Publish(ctx, filepath.Base(fp), data, ParquetContentType)
		if err != nil {
			return keys, err
		}
		keys = append(keys, key)
	}
	return keys, nil
}
