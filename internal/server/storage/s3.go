package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// s3API is the part of *s3.Client used by the S3 backend.
type s3API interface {
	HeadObject(ctx context.Context, in *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

var (
	loadDefaultAWSConfig = config.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config carries the connection settings of an S3-compatible endpoint.
type S3Config struct {
	User         string
	Password     string
	Bucket       string
	Region       string
	BaseEndpoint string
	Prefix       string
}

// S3 stores group directories as key prefixes in a bucket. A directory is
// represented by an empty marker object whose key ends in "/", so empty
// directories survive and can be listed.
type S3 struct {
	client s3API
	bucket string
	prefix string
}

// NewS3 connects to the configured endpoint using static credentials.
func NewS3(ctx context.Context, c S3Config) (*S3, error) {
	cfg, err := loadDefaultAWSConfig(ctx,
		config.WithRegion(c.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(c.User, c.Password, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("aws config: %w", err)
	}

	client := newS3ClientFromConfig(cfg, func(o *s3.Options) {
		if c.BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(c.BaseEndpoint)
		}
		o.UsePathStyle = true
	})

	return newS3(client, c.Bucket, c.Prefix), nil
}

func newS3(client s3API, bucket, prefix string) *S3 {
	if prefix != "" && !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}
	return &S3{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3) key(p string) string {
	return s.prefix + p
}

func (s *S3) dirPrefix(p string) string {
	if p == "" {
		return s.prefix
	}
	return s.prefix + p + "/"
}

func (s *S3) CreateDirectory(ctx context.Context, p string) error {
	if parent := path.Dir(p); parent != "." {
		kind, err := s.Stat(ctx, parent)
		if err != nil {
			return err
		}
		if kind != KindDir {
			return ErrNotDirectory
		}
	}

	switch _, err := s.Stat(ctx, p); {
	case err == nil:
		return ErrAlreadyExists
	case !errors.Is(err, ErrNotFound):
		return err
	}

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.dirPrefix(p)),
		Body:   bytes.NewReader(nil),
	})
	if err != nil {
		return fmt.Errorf("put directory marker: %w", err)
	}
	return nil
}

func (s *S3) RemoveDirectory(ctx context.Context, p string) error {
	kind, err := s.Stat(ctx, p)
	if err != nil {
		return err
	}
	if kind != KindDir {
		return ErrNotDirectory
	}

	marker := s.dirPrefix(p)
	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(marker),
		MaxKeys: aws.Int32(2),
	})
	if err != nil {
		return fmt.Errorf("list %s: %w", p, err)
	}
	for _, obj := range out.Contents {
		if aws.ToString(obj.Key) != marker {
			return ErrNotEmpty
		}
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(marker),
	}); err != nil {
		return fmt.Errorf("delete directory marker: %w", err)
	}
	return nil
}

func (s *S3) DeleteFile(ctx context.Context, p string) error {
	kind, err := s.Stat(ctx, p)
	if err != nil {
		return err
	}
	if kind == KindDir {
		return ErrIsDirectory
	}

	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	}); err != nil {
		return fmt.Errorf("delete %s: %w", p, err)
	}
	return nil
}

func (s *S3) List(ctx context.Context, p string) (Listing, error) {
	kind, err := s.Stat(ctx, p)
	if err != nil {
		return Listing{}, err
	}
	if kind != KindDir {
		return Listing{}, ErrNotDirectory
	}

	pfx := s.dirPrefix(p)
	pager := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(pfx),
		Delimiter: aws.String("/"),
	})

	var out Listing
	for pager.HasMorePages() {
		page, err := pager.NextPage(ctx)
		if err != nil {
			return Listing{}, fmt.Errorf("list %s: %w", p, err)
		}
		for _, cp := range page.CommonPrefixes {
			name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), pfx), "/")
			if name != "" {
				out.Dirs = append(out.Dirs, name)
			}
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == pfx {
				continue
			}
			out.Files = append(out.Files, strings.TrimPrefix(key, pfx))
		}
	}
	sort.Strings(out.Files)
	sort.Strings(out.Dirs)
	return out, nil
}

func (s *S3) Stat(ctx context.Context, p string) (Kind, error) {
	if p == "" {
		return KindDir, nil
	}

	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(p)),
	})
	if err == nil {
		return KindFile, nil
	}
	if !isNotFound(err) {
		return 0, fmt.Errorf("head %s: %w", p, err)
	}

	out, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(s.bucket),
		Prefix:  aws.String(s.dirPrefix(p)),
		MaxKeys: aws.Int32(1),
	})
	if err != nil {
		return 0, fmt.Errorf("list %s: %w", p, err)
	}
	if len(out.Contents) > 0 || len(out.CommonPrefixes) > 0 {
		return KindDir, nil
	}
	return 0, ErrNotFound
}

func isNotFound(err error) bool {
	var nf *types.NotFound
	var nsk *types.NoSuchKey
	return errors.As(err, &nf) || errors.As(err, &nsk)
}
