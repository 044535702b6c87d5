package config

import (
	"context"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config holds an initialized S3 client and the target bucket.
type S3Config struct {
	Client *s3.Client
	Bucket string
}

// NewS3Config builds the S3 client from the shared AWS config chain
// (environment, shared credentials, instance role).
func NewS3Config(ctx context.Context, settings S3Settings) (*S3Config, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(settings.Region),
	)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client: s3.NewFromConfig(awsCfg),
		Bucket: settings.Bucket,
	}, nil
}
