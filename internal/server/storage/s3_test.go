package storage

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and implements just enough of
// ListObjectsV2 (prefix, delimiter, max keys) for the backend.
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]struct{}
	listErr error
}

func newFakeS3(keys ...string) *fakeS3 {
	f := &fakeS3{objects: map[string]struct{}{}}
	for _, k := range keys {
		f.objects[k] = struct{}{}
	}
	return f
}

func (f *fakeS3) has(key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.objects[key]
	return ok
}

func (f *fakeS3) HeadObject(_ context.Context, in *s3.HeadObjectInput, _ ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[aws.ToString(in.Key)] = struct{}{}
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}

	prefix := aws.ToString(in.Prefix)
	delim := aws.ToString(in.Delimiter)

	keys := make([]string, 0, len(f.objects))
	for k := range f.objects {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	out := &s3.ListObjectsV2Output{}
	seen := map[string]bool{}
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if delim != "" {
			if i := strings.Index(rest, delim); i >= 0 {
				cp := prefix + rest[:i+len(delim)]
				if !seen[cp] {
					seen[cp] = true
					out.CommonPrefixes = append(out.CommonPrefixes, types.CommonPrefix{Prefix: aws.String(cp)})
				}
				continue
			}
		}
		out.Contents = append(out.Contents, types.Object{Key: aws.String(k)})
	}

	if in.MaxKeys != nil && int(*in.MaxKeys) < len(out.Contents) {
		out.Contents = out.Contents[:*in.MaxKeys]
	}
	return out, nil
}

func TestS3_CreateDirectory(t *testing.T) {
	fake := newFakeS3()
	s := newS3(fake, "bucket", "groups")
	ctx := context.Background()

	require.NoError(t, s.CreateDirectory(ctx, "Team"))
	assert.True(t, fake.has("groups/Team/"))

	err := s.CreateDirectory(ctx, "Team")
	assert.True(t, errors.Is(err, ErrAlreadyExists), "got %v", err)

	err = s.CreateDirectory(ctx, "Missing/child")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	require.NoError(t, s.CreateDirectory(ctx, "Team/docs"))
	assert.True(t, fake.has("groups/Team/docs/"))
}

func TestS3_ListPartitionsAndSorts(t *testing.T) {
	fake := newFakeS3(
		"Team/",
		"Team/b.txt",
		"Team/a.txt",
		"Team/zeta/",
		"Team/alpha/",
		"Team/alpha/deep.txt",
	)
	s := newS3(fake, "bucket", "")

	got, err := s.List(context.Background(), "Team")
	require.NoError(t, err)
	assert.Equal(t, []string{"a.txt", "b.txt"}, got.Files)
	assert.Equal(t, []string{"alpha", "zeta"}, got.Dirs)

	_, err = s.List(context.Background(), "Nope")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	_, err = s.List(context.Background(), "Team/a.txt")
	assert.True(t, errors.Is(err, ErrNotDirectory), "got %v", err)
}

func TestS3_Stat(t *testing.T) {
	s := newS3(newFakeS3("Team/", "Team/a.txt", "Implicit/x.txt"), "bucket", "")
	ctx := context.Background()

	kind, err := s.Stat(ctx, "Team")
	require.NoError(t, err)
	assert.Equal(t, KindDir, kind)

	kind, err = s.Stat(ctx, "Team/a.txt")
	require.NoError(t, err)
	assert.Equal(t, KindFile, kind)

	kind, err = s.Stat(ctx, "Implicit")
	require.NoError(t, err)
	assert.Equal(t, KindDir, kind)

	_, err = s.Stat(ctx, "Team/missing")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)
}

func TestS3_DeleteFile(t *testing.T) {
	fake := newFakeS3("Team/", "Team/a.txt", "Team/sub/")
	s := newS3(fake, "bucket", "")
	ctx := context.Background()

	require.NoError(t, s.DeleteFile(ctx, "Team/a.txt"))
	assert.False(t, fake.has("Team/a.txt"))

	err := s.DeleteFile(ctx, "Team/a.txt")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = s.DeleteFile(ctx, "Team/sub")
	assert.True(t, errors.Is(err, ErrIsDirectory), "got %v", err)
}

func TestS3_RemoveDirectory(t *testing.T) {
	fake := newFakeS3("Team/", "Team/empty/", "Team/full/", "Team/full/x.txt", "Team/f.txt")
	s := newS3(fake, "bucket", "")
	ctx := context.Background()

	require.NoError(t, s.RemoveDirectory(ctx, "Team/empty"))
	assert.False(t, fake.has("Team/empty/"))

	err := s.RemoveDirectory(ctx, "Team/empty")
	assert.True(t, errors.Is(err, ErrNotFound), "got %v", err)

	err = s.RemoveDirectory(ctx, "Team/full")
	assert.True(t, errors.Is(err, ErrNotEmpty), "got %v", err)
	assert.False(t, errors.Is(err, ErrAlreadyExists), "got %v", err)
	assert.True(t, fake.has("Team/full/x.txt"))

	err = s.RemoveDirectory(ctx, "Team/f.txt")
	assert.True(t, errors.Is(err, ErrNotDirectory), "got %v", err)
}

func TestS3_ListErrorIsWrapped(t *testing.T) {
	boom := errors.New("boom")
	fake := newFakeS3()
	fake.listErr = boom
	s := newS3(fake, "bucket", "")

	_, err := s.Stat(context.Background(), "Team")
	assert.ErrorIs(t, err, boom)
}

func TestNewS3_UsesConfigSeams(t *testing.T) {
	origLoad, origNew := loadDefaultAWSConfig, newS3ClientFromConfig
	t.Cleanup(func() { loadDefaultAWSConfig, newS3ClientFromConfig = origLoad, origNew })

	fake := newFakeS3()
	var opts s3.Options
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) s3API {
		for _, fn := range optFns {
			fn(&opts)
		}
		return fake
	}

	s, err := NewS3(context.Background(), S3Config{
		User:         "minio",
		Password:     "secret",
		Bucket:       "groups",
		Region:       "us-east-1",
		BaseEndpoint: "http://localhost:9000",
	})
	require.NoError(t, err)
	assert.Equal(t, "groups", s.bucket)
	assert.Equal(t, "http://localhost:9000", aws.ToString(opts.BaseEndpoint))
	assert.True(t, opts.UsePathStyle)
}
