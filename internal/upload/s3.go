package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/standardbeagle/pagedit/internal/debug"
)

// ErrMissingBucket is returned when no bucket is configured.
var ErrMissingBucket = errors.New("upload: s3 bucket not configured")

// S3Config configures an S3-compatible store such as Cloudflare R2.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string
	AccessKeyID     string
	SecretAccessKey string

	// PublicDomain is the host objects are served from; the returned URL is
	// https://<PublicDomain>/<key>.
	PublicDomain string

	// Prefix is prepended to every object key.
	Prefix string
}

type putObjectAPI interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader puts uploads into a bucket.
type S3Uploader struct {
	cfg    S3Config
	client putObjectAPI
}

// NewS3Uploader builds an S3 client from cfg. Static credentials are used
// when both keys are set; otherwise the default AWS chain applies.
func NewS3Uploader(ctx context.Context, cfg S3Config) (*S3Uploader, error) {
	if cfg.Bucket == "" {
		return nil, ErrMissingBucket
	}
	if cfg.Region == "" {
		cfg.Region = "auto"
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return &S3Uploader{cfg: cfg, client: client}, nil
}

// Upload implements Uploader.
func (u *S3Uploader) Upload(ctx context.Context, f File) (string, error) {
	ct, err := validate(f)
	if err != nil {
		return "", err
	}

	key := ObjectKey(u.cfg.Prefix, f)
	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(u.cfg.Bucket),
		Key:           aws.String(key),
		Body:          bytes.NewReader(f.Data),
		ContentType:   aws.String(ct),
		ContentLength: aws.Int64(int64(len(f.Data))),
	})
	if err != nil {
		return "", fmt.Errorf("failed to put %s: %w", key, err)
	}

	debug.Log("upload", "put s3://%s/%s", u.cfg.Bucket, key)
	return u.publicURL(key), nil
}

func (u *S3Uploader) publicURL(key string) string {
	domain := strings.TrimSuffix(u.cfg.PublicDomain, "/")
	domain = strings.TrimPrefix(strings.TrimPrefix(domain, "https://"), "http://")
	if domain == "" {
		domain = u.cfg.Bucket + ".s3." + u.cfg.Region + ".amazonaws.com"
	}
	return "https://" + domain + "/" + key
}
