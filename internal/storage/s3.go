// Package storage archives original submission images to S3 for audit.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/snapdish/snapdish-api/config"
)

// SubmissionStore writes submission images under a fingerprint-derived
// prefix, one object per image in submission order.
type SubmissionStore struct {
	client *s3.Client
	bucket string
}

func NewSubmissionStore(cfg *config.S3Config) *SubmissionStore {
	return &SubmissionStore{
		client: cfg.Client,
		bucket: cfg.Bucket,
	}
}

// ArchiveSubmission uploads each image to submissions/<fingerprint>/<index>.
// Re-archiving the same fingerprint overwrites identical content, so the
// operation is idempotent.
func (s *SubmissionStore) ArchiveSubmission(ctx context.Context, fingerprint string, images [][]byte) error {
	for i, img := range images {
		key := fmt.Sprintf("submissions/%s/%d", fingerprint, i)
		_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:      aws.String(s.bucket),
			Key:         aws.String(key),
			Body:        bytes.NewReader(img),
			ContentType: aws.String(http.DetectContentType(img)),
		})
		if err != nil {
			return fmt.Errorf("uploading %s: %w", key, err)
		}
	}
	return nil
}
