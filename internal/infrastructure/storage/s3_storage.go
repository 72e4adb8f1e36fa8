package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/garyjia/billed/internal/application/port"
)

// S3Config configures the S3 receipt bucket
type S3Config struct {
	Region    string
	Bucket    string
	Prefix    string
	Endpoint  string
	PathStyle bool
}

// s3API is the part of *s3.Client used for receipts
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3FileStorage implements port.FileStorage on an S3 bucket
type S3FileStorage struct {
	client s3API
	bucket string
	prefix string
	logger *zap.Logger
}

// NewS3FileStorage loads the default AWS credential chain and returns a
// bucket-backed storage
func NewS3FileStorage(ctx context.Context, cfg S3Config, logger *zap.Logger) (port.FileStorage, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket is required")
	}

	var loadOpts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		loadOpts = append(loadOpts, awsconfig.WithRegion(cfg.Region))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.PathStyle
	})
	return newS3FileStorage(client, cfg.Bucket, cfg.Prefix, logger), nil
}

func newS3FileStorage(client s3API, bucket, prefix string, logger *zap.Logger) *S3FileStorage {
	return &S3FileStorage{
		client: client,
		bucket: bucket,
		prefix: strings.Trim(strings.TrimSpace(prefix), "/"),
		logger: logger,
	}
}

// Save uploads content with its sniffed content type
func (s *S3FileStorage) Save(ctx context.Context, path string, content []byte) error {
	key := s.objectKey(path)
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:               aws.String(s.bucket),
		Key:                  aws.String(key),
		Body:                 bytes.NewReader(content),
		ContentType:          aws.String(mimetype.Detect(content).String()),
		ServerSideEncryption: s3types.ServerSideEncryptionAes256,
	})
	if err != nil {
		s.logger.Error("Failed to upload receipt", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("s3 put object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

// Read downloads an object
func (s *S3FileStorage) Read(ctx context.Context, path string) ([]byte, error) {
	key := s.objectKey(path)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		var noSuchKey *s3types.NoSuchKey
		if errors.As(err, &noSuchKey) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		s.logger.Error("Failed to download receipt", zap.String("key", key), zap.Error(err))
		return nil, fmt.Errorf("s3 get object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	defer out.Body.Close()

	content, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read s3 object body: %w", err)
	}
	return content, nil
}

// Exists reports whether the object can be found
func (s *S3FileStorage) Exists(ctx context.Context, path string) bool {
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.objectKey(path)),
	})
	return err == nil
}

// Delete removes an object; S3 treats missing keys as success
func (s *S3FileStorage) Delete(ctx context.Context, path string) error {
	key := s.objectKey(path)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	}); err != nil {
		s.logger.Error("Failed to delete receipt", zap.String("key", key), zap.Error(err))
		return fmt.Errorf("s3 delete object bucket=%s key=%s: %w", s.bucket, key, err)
	}
	return nil
}

func (s *S3FileStorage) objectKey(path string) string {
	key := strings.TrimLeft(path, "/")
	if s.prefix == "" {
		return key
	}
	return s.prefix + "/" + key
}
