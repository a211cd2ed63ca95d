package store

import (
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeS3 keeps objects in memory and records the last PutObject input
type fakeS3 struct {
	mu      sync.Mutex
	objects map[string]string
	lastPut *s3.PutObjectInput

	getErr  error
	putErr  error
	headErr error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: make(map[string]string)}
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	body, ok := f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)]
	if !ok {
		return nil, &types.NoSuchKey{Message: aws.String("missing")}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(body))}, nil
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	data, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Bucket)+"/"+aws.ToString(in.Key)] = string(data)
	f.lastPut = in
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(ctx context.Context, in *s3.HeadBucketInput, _ ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	return &s3.HeadBucketOutput{}, f.headErr
}

func TestS3Backend(t *testing.T) {
	ctx := context.Background()

	t.Run("KeyUsesPrefix", func(t *testing.T) {
		b := NewS3BackendFromClient(newFakeS3(), "bucket", "taskmanager/")
		assert.Equal(t, "taskmanager/users.json", b.Key(Users))
	})

	t.Run("MissingObjectIsNotFound", func(t *testing.T) {
		b := NewS3BackendFromClient(newFakeS3(), "bucket", "")

		_, err := b.Read(ctx, Tasks)
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})

	t.Run("APIErrorNotFound", func(t *testing.T) {
		client := newFakeS3()
		client.getErr = &smithy.GenericAPIError{Code: "NotFound", Message: "not found"}
		b := NewS3BackendFromClient(client, "bucket", "")

		_, err := b.Read(ctx, Tasks)
		assert.ErrorIs(t, err, ErrCollectionNotFound)
	})

	t.Run("OtherErrorsPropagate", func(t *testing.T) {
		client := newFakeS3()
		client.getErr = &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}
		b := NewS3BackendFromClient(client, "bucket", "")

		_, err := b.Read(ctx, Tasks)
		require.Error(t, err)
		assert.NotErrorIs(t, err, ErrCollectionNotFound)
	})

	t.Run("WriteThenRead", func(t *testing.T) {
		client := newFakeS3()
		b := NewS3BackendFromClient(client, "bucket", "p/")

		require.NoError(t, b.Write(ctx, Users, []byte(`["alice"]`)))
		assert.Equal(t, "application/json", aws.ToString(client.lastPut.ContentType))
		assert.Equal(t, int64(len(`["alice"]`)), aws.ToInt64(client.lastPut.ContentLength))

		doc, err := b.Read(ctx, Users)
		require.NoError(t, err)
		assert.Equal(t, `["alice"]`, string(doc))
	})

	t.Run("WriteError", func(t *testing.T) {
		client := newFakeS3()
		client.putErr = errors.New("slow down")
		b := NewS3BackendFromClient(client, "bucket", "")

		assert.ErrorContains(t, b.Write(ctx, Users, []byte("[]")), "slow down")
	})

	t.Run("Ping", func(t *testing.T) {
		client := newFakeS3()
		b := NewS3BackendFromClient(client, "bucket", "")
		assert.NoError(t, b.Ping(ctx))

		client.headErr = errors.New("no such bucket")
		assert.Error(t, b.Ping(ctx))
	})

	t.Run("StoreOnS3", func(t *testing.T) {
		s := NewStore(NewS3BackendFromClient(newFakeS3(), "bucket", ""))
		require.NoError(t, s.Init(ctx))

		users, err := s.LoadUsers(ctx)
		require.NoError(t, err)
		assert.Empty(t, users)
	})
}

func TestNewS3Backend(t *testing.T) {
	ctx := context.Background()

	t.Run("BucketRequired", func(t *testing.T) {
		_, err := NewS3Backend(ctx, S3Options{Region: "us-east-1"})
		assert.Error(t, err)
	})

	t.Run("ConfigLoadError", func(t *testing.T) {
		orig := loadDefaultAWSConfig
		t.Cleanup(func() { loadDefaultAWSConfig = orig })
		loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
			return aws.Config{}, errors.New("no profile")
		}

		_, err := NewS3Backend(ctx, S3Options{Bucket: "b", Region: "us-east-1"})
		assert.ErrorContains(t, err, "no profile")
	})

	t.Run("StaticCredentials", func(t *testing.T) {
		b, err := NewS3Backend(ctx, S3Options{
			Bucket:       "tasks",
			Prefix:       "dev/",
			Region:       "us-east-1",
			Endpoint:     "http://localhost:9000",
			AccessKey:    "minio",
			SecretKey:    "minio123",
			UsePathStyle: true,
		})
		require.NoError(t, err)
		assert.Equal(t, "s3", b.Name())
		assert.Equal(t, "dev/tasks.json", b.Key(Tasks))
	})
}
