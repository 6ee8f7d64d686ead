package s3

//go:generate go run go.uber.org/mock/mockgen -source=./s3.go -destination=./mocks/s3_mock.go -package=mocks

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"lodge/config"
	"lodge/infras/otel"
	"lodge/shared/constant"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"
)

const (
	otelAttrObjectKey = "object_key"
	otelAttrBucket    = "bucket"

	urlScheme = "s3://"

	// maxObjectSize caps catalog downloads.
	maxObjectSize = 8 << 20
)

var ErrInvalidURL = errors.New("object url must look like s3://bucket/key")

type S3 interface {
	GetObject(ctx context.Context, bucketName, objectKey string) ([]byte, error)
	PutObject(ctx context.Context, bucketName, objectKey, contentType string, data []byte) error
}

type s3Impl struct {
	client *s3.Client
	config *config.Config
	otel   otel.Otel
}

func New(cfg *config.Config, ot otel.Otel) (S3, error) {
	s3Config := cfg.External.S3

	options := []func(*awsConfig.LoadOptions) error{}
	if s3Config.AccessKeyID != "" {
		options = append(options, awsConfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(s3Config.AccessKeyID, s3Config.SecretAccessKey, ""),
		))
	}

	if s3Config.Region != "" {
		options = append(options, awsConfig.WithRegion(s3Config.Region))
	}

	awsCfg, err := awsConfig.LoadDefaultConfig(context.Background(), options...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS configuration: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if s3Config.APIEndpoint != "" {
			o.BaseEndpoint = aws.String(s3Config.APIEndpoint)
			o.UsePathStyle = true
		}
	})

	return &s3Impl{client: client, config: cfg, otel: ot}, nil
}

// GetObject downloads an object. An empty bucketName uses the configured bucket.
func (svc *s3Impl) GetObject(ctx context.Context, bucketName, objectKey string) (data []byte, err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".GetObject")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = svc.bucket(bucketName)
	scope.SetAttributes(map[string]any{otelAttrObjectKey: objectKey, otelAttrBucket: bucketName})

	out, err := svc.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucketName).Str("key", objectKey).Msg("failed to get object from S3")

		return nil, fmt.Errorf("failed to get object from S3: %w", err)
	}
	defer out.Body.Close()

	data, err = io.ReadAll(io.LimitReader(out.Body, maxObjectSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read object body: %w", err)
	}

	return data, nil
}

// PutObject uploads data under objectKey.
func (svc *s3Impl) PutObject(ctx context.Context, bucketName, objectKey, contentType string, data []byte) (err error) {
	ctx, scope := svc.otel.NewScope(ctx, constant.OtelS3ScopeName, constant.OtelS3ScopeName+".PutObject")
	defer scope.End()
	defer func() { scope.TraceIfError(err) }()

	bucketName = svc.bucket(bucketName)
	scope.SetAttributes(map[string]any{otelAttrObjectKey: objectKey, otelAttrBucket: bucketName})

	_, err = svc.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(bucketName),
		Key:           aws.String(objectKey),
		Body:          bytes.NewReader(data),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(int64(len(data))),
	})
	if err != nil {
		log.Error().Err(err).Str("bucket", bucketName).Str("key", objectKey).Msg("failed to put object to S3")

		return fmt.Errorf("failed to put object to S3: %w", err)
	}

	return nil
}

func (svc *s3Impl) bucket(name string) string {
	if name == "" {
		return svc.config.External.S3.BucketName
	}

	return name
}

// IsURL reports whether location names an S3 object rather than a local path.
func IsURL(location string) bool {
	return strings.HasPrefix(location, urlScheme)
}

// ParseURL splits s3://bucket/key into bucket and key.
func ParseURL(location string) (bucket, key string, err error) {
	rest, ok := strings.CutPrefix(location, urlScheme)
	if !ok {
		return "", "", ErrInvalidURL
	}

	bucket, key, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", ErrInvalidURL
	}

	return bucket, key, nil
}
