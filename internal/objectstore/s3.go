package objectstore

import (
	"context"
	"fmt"
	"io"
	"iter"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
)

// S3Client is the default Client, backed by the AWS SDK v1 and usable
// against any S3-compatible endpoint (AWS S3, MinIO, Ceph RGW, ...) by
// setting EndpointURL.
type S3Client struct {
	svc *s3.S3
}

// S3ClientConfig configures NewS3Client. EndpointURL is optional; when
// set, the client talks to that endpoint with path-style addressing
// instead of virtual-hosted AWS S3.
type S3ClientConfig struct {
	Region      string
	EndpointURL string
}

// NewS3Client builds an S3Client using the default AWS credential chain
// (environment, shared config, EC2/ECS role).
func NewS3Client(cfg S3ClientConfig) (*S3Client, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	awsCfg := aws.NewConfig().WithRegion(region)

	if cfg.EndpointURL != "" {
		awsCfg = awsCfg.WithEndpoint(cfg.EndpointURL).WithS3ForcePathStyle(true)
	}

	sess, err := session.NewSessionWithOptions(session.Options{
		SharedConfigState: session.SharedConfigEnable,
		Config:            *awsCfg,
	})
	if err != nil {
		return nil, fmt.Errorf("new s3 client: %w", err)
	}

	return &S3Client{svc: s3.New(sess)}, nil
}

// ListObjects pages through ListObjectsV2, yielding every key under prefix
// in listing order. A context cancellation or an API error is surfaced as
// the iterator's second value, and iteration stops there.
func (c *S3Client) ListObjects(ctx context.Context, bucket, prefix string) iter.Seq2[ListedObject, error] {
	return func(yield func(ListedObject, error) bool) {
		input := &s3.ListObjectsV2Input{
			Bucket: aws.String(bucket),
		}

		if prefix != "" {
			input.Prefix = aws.String(prefix)
		}

		var apiErr error

		err := c.svc.ListObjectsV2PagesWithContext(ctx, input, func(page *s3.ListObjectsV2Output, lastPage bool) bool {
			for _, obj := range page.Contents {
				if ctx.Err() != nil {
					apiErr = ctx.Err()
					return false
				}

				listed := ListedObject{
					Key:  aws.StringValue(obj.Key),
					Size: aws.Int64Value(obj.Size),
					ETag: trimETagQuotes(aws.StringValue(obj.ETag)),
				}

				if obj.LastModified != nil {
					listed.LastModified = *obj.LastModified
				}

				if !yield(listed, nil) {
					return false
				}
			}

			return true
		})
		if err != nil && apiErr == nil {
			apiErr = err
		}

		if apiErr != nil {
			yield(ListedObject{}, fmt.Errorf("list objects in %q: %w", bucket, apiErr))
		}
	}
}

// GetObject opens a streaming GET of the whole object.
func (c *S3Client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, int64, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, 0, fmt.Errorf("get object %q: %w", key, err)
	}

	return out.Body, aws.Int64Value(out.ContentLength), nil
}

// GetObjectRange reads the inclusive byte range [start, end] of key.
func (c *S3Client) GetObjectRange(ctx context.Context, bucket, key string, start, end int64) ([]byte, error) {
	out, err := c.svc.GetObjectWithContext(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
		Range:  aws.String(fmt.Sprintf("bytes=%d-%d", start, end)),
	})
	if err != nil {
		return nil, fmt.Errorf("get object range %q: %w", key, err)
	}

	defer func() { _ = out.Body.Close() }()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read object range %q: %w", key, err)
	}

	return data, nil
}

// trimETagQuotes strips the surrounding double quotes S3 wraps ETags in.
// A multipart ETag keeps its trailing "-N" suffix, e.g. `"abc-3"` -> `abc-3`.
func trimETagQuotes(etag string) string {
	if len(etag) >= 2 && etag[0] == '"' && etag[len(etag)-1] == '"' {
		return etag[1 : len(etag)-1]
	}

	return etag
}
