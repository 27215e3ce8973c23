package export

import (
	"bytes"
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Options locates the snapshot object.
type S3Options struct {
	Bucket   string
	Key      string
	Region   string
	Endpoint string // custom endpoint (MinIO and similar); enables path-style addressing
}

// objectPutter is the subset of *s3.Client used by S3Destination.
type objectPutter interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Destination uploads the snapshot to an S3-compatible bucket.
type S3Destination struct {
	client objectPutter
	bucket string
	key    string
}

// NewS3Destination creates an S3 destination using the default AWS
// credential chain.
func NewS3Destination(ctx context.Context, opts S3Options) (*S3Destination, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(opts.Region))
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}

	var s3opts []func(*s3.Options)
	if opts.Endpoint != "" {
		s3opts = append(s3opts, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(opts.Endpoint)
			o.UsePathStyle = true
		})
	}
	return &S3Destination{
		client: s3.NewFromConfig(cfg, s3opts...),
		bucket: opts.Bucket,
		key:    opts.Key,
	}, nil
}

func (d *S3Destination) Name() string {
	return "s3://" + d.bucket + "/" + d.key
}

// Write replaces the snapshot object with data.
func (d *S3Destination) Write(ctx context.Context, data []byte) error {
	_, err := d.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(d.bucket),
		Key:         aws.String(d.key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/x-ndjson"),
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", d.Name(), err)
	}
	return nil
}
