package audit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ObjectPutter is the part of the S3 client the exporter uses.
type ObjectPutter interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Exporter writes ledger snapshots to an S3-compatible bucket.
type S3Exporter struct {
	client ObjectPutter
	bucket string
	prefix string
}

func NewS3Exporter(client ObjectPutter, bucket, prefix string) *S3Exporter {
	return &S3Exporter{client: client, bucket: bucket, prefix: prefix}
}

// NewS3ExporterFromEnv builds an exporter for AUDIT_S3_BUCKET. Cloudflare R2
// is used when R2_ACCOUNT_ID is set, otherwise the default AWS credential
// chain. It returns nil, nil when no bucket is configured.
func NewS3ExporterFromEnv(ctx context.Context) (*S3Exporter, error) {
	bucket := os.Getenv("AUDIT_S3_BUCKET")
	if bucket == "" {
		return nil, nil
	}
	prefix := os.Getenv("AUDIT_S3_PREFIX")
	if prefix == "" {
		prefix = "ledger-snapshots"
	}

	accountID := os.Getenv("R2_ACCOUNT_ID")
	if accountID == "" {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("load aws config: %w", err)
		}
		return NewS3Exporter(s3.NewFromConfig(cfg), bucket, prefix), nil
	}

	accessKey := os.Getenv("R2_ACCESS_KEY_ID")
	secretKey := os.Getenv("R2_SECRET_ACCESS_KEY")
	if accessKey == "" || secretKey == "" {
		return nil, fmt.Errorf("R2_ACCESS_KEY_ID and R2_SECRET_ACCESS_KEY are required with R2_ACCOUNT_ID")
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion("auto"), // Required by SDK, R2 ignores this
		config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(accessKey, secretKey, ""),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("load r2 config: %w", err)
	}
	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", accountID)
	client := s3.NewFromConfig(cfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
	})
	return NewS3Exporter(client, bucket, prefix), nil
}

// Export uploads snap as JSON and returns the object key.
func (e *S3Exporter) Export(ctx context.Context, snap Snapshot) (string, error) {
	body, err := json.Marshal(snap)
	if err != nil {
		return "", err
	}
	key := path.Join(e.prefix, fmt.Sprintf("ledger-%020d-%s.json", snap.Height, time.Now().UTC().Format("20060102T150405Z")))
	_, err = e.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(e.bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(body),
		ContentLength: aws.Int64(int64(len(body))),
		ContentType:   aws.String("application/json"),
	})
	if err != nil {
		return "", fmt.Errorf("upload snapshot %s: %w", key, err)
	}
	return key, nil
}
