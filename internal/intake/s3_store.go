package intake

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store archives uploads to an S3 bucket, keyed by category and date.
// Deployments that keep clinical uploads off local disk configure this via
// UPLOAD_BUCKET.
type S3Store struct {
	bucket   string
	s3Client S3API
}

// NewS3Store creates an S3-backed upload store.
func NewS3Store(client S3API, bucket string) *S3Store {
	return &S3Store{bucket: bucket, s3Client: client}
}

// Save implements UploadStore.
func (s *S3Store) Save(ctx context.Context, category, filename string, content []byte) (string, error) {
	now := time.Now().UTC()
	key := fmt.Sprintf("%s/%d/%02d/%02d/%s_%s",
		category, now.Year(), now.Month(), now.Day(),
		uuid.New().String()[:6], filepath.Base(filename))

	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   bytes.NewReader(content),
	})
	if err != nil {
		return "", fmt.Errorf("intake: put upload to s3: %w", err)
	}

	return "s3://" + s.bucket + "/" + key, nil
}
