package blobstore

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the part of *s3.Client used by S3Store.
type s3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	HeadBucket(ctx context.Context, in *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
	CreateBucket(ctx context.Context, in *s3.CreateBucketInput, optFns ...func(*s3.Options)) (*s3.CreateBucketOutput, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// Options configure an S3Store.
type Options struct {
	Region       string
	AccessKey    string
	SecretKey    string
	BaseEndpoint string
	Bucket       string
	// PublicURL is the prefix under which objects are served. Defaults to
	// BaseEndpoint/Bucket.
	PublicURL string
}

// S3Store implements Store on top of the AWS SDK. It works against MinIO
// and other path-style S3 endpoints.
type S3Store struct {
	client    s3API
	bucket    string
	publicURL string
	now       func() time.Time
}

// NewS3Store builds a client from static credentials and a base endpoint.
func NewS3Store(ctx context.Context, o Options) (*S3Store, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(o.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			o.AccessKey,
			o.SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(opts *s3.Options) {
		if o.BaseEndpoint != "" {
			opts.BaseEndpoint = aws.String(o.BaseEndpoint)
		}
		opts.UsePathStyle = true
	})

	public := o.PublicURL
	if public == "" {
		public = strings.TrimRight(o.BaseEndpoint, "/") + "/" + o.Bucket
	}
	return newS3Store(client, o.Bucket, public), nil
}

func newS3Store(client s3API, bucket, publicURL string) *S3Store {
	return &S3Store{
		client:    client,
		bucket:    bucket,
		publicURL: strings.TrimRight(publicURL, "/"),
		now:       time.Now,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *S3Store) EnsureBucket(ctx context.Context) error {
	if _, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(s.bucket)}); err == nil {
		return nil
	}
	_, err := s.client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(s.bucket)})
	if err != nil {
		var owned *types.BucketAlreadyOwnedByYou
		if errors.As(err, &owned) {
			return nil
		}
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads the photo under a fresh key and returns its public URL.
func (s *S3Store) Put(ctx context.Context, up Upload) (*Object, error) {
	if up.Body == nil {
		return nil, errors.New("empty upload body")
	}
	key := NewKey(s.now(), up.Name)

	in := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   newProgressReader(up.Body, up.Size, up.Progress),
	}
	if up.ContentType != "" {
		in.ContentType = aws.String(up.ContentType)
	}
	if up.Size > 0 {
		in.ContentLength = aws.Int64(up.Size)
	}

	if _, err := s.client.PutObject(ctx, in); err != nil {
		return nil, fmt.Errorf("put object %s: %w", key, err)
	}
	return &Object{Key: key, URL: s.URL(key), Size: up.Size}, nil
}

// Delete removes the blob addressed by rawURL.
func (s *S3Store) Delete(ctx context.Context, rawURL string) error {
	key, err := s.KeyFromURL(rawURL)
	if err != nil {
		return err
	}
	_, err = s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete object %s: %w", key, err)
	}
	return nil
}

// URL returns the public URL of key. Each path segment is escaped.
func (s *S3Store) URL(key string) string {
	parts := strings.Split(key, "/")
	for i, p := range parts {
		parts[i] = url.PathEscape(p)
	}
	return s.publicURL + "/" + strings.Join(parts, "/")
}

// KeyFromURL is the inverse of URL.
func (s *S3Store) KeyFromURL(rawURL string) (string, error) {
	rest, ok := strings.CutPrefix(rawURL, s.publicURL+"/")
	if !ok || rest == "" {
		return "", fmt.Errorf("%w: %s", ErrForeignURL, rawURL)
	}
	key, err := url.PathUnescape(rest)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrForeignURL, err)
	}
	return key, nil
}
