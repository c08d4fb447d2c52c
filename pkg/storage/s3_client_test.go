package storage

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockObjectAPI struct {
	mock.Mock
}

func (m *MockObjectAPI) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.GetObjectOutput), args.Error(1)
}

func (m *MockObjectAPI) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	args := m.Called(ctx, params)
	return &s3.DeleteObjectOutput{}, args.Error(0)
}

func (m *MockObjectAPI) HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*s3.HeadObjectOutput), args.Error(1)
}

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error) {
	args := m.Called(ctx, input)
	return &manager.UploadOutput{}, args.Error(0)
}

func TestUploadSetsContentTypeAndMetadata(t *testing.T) {
	ctx := context.Background()
	uploader := new(MockUploader)
	uploader.On("Upload", ctx, mock.MatchedBy(func(in *s3.PutObjectInput) bool {
		return aws.ToString(in.Bucket) == "archive" &&
			aws.ToString(in.Key) == "certificates/a.pdf" &&
			aws.ToString(in.ContentType) == "application/pdf" &&
			in.Metadata["sha256"] == "abc"
	})).Return(nil)

	c := &s3Store{uploader: uploader}
	err := c.Upload(ctx, "archive", "certificates/a.pdf", strings.NewReader("%PDF"), map[string]string{"sha256": "abc"})
	require.NoError(t, err)
	uploader.AssertExpectations(t)
}

func TestHead(t *testing.T) {
	ctx := context.Background()
	api := new(MockObjectAPI)
	modified := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)

	api.On("HeadObject", ctx, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "present.pdf"
	})).Return(&s3.HeadObjectOutput{
		ContentLength: aws.Int64(42),
		LastModified:  aws.Time(modified),
		Metadata:      map[string]string{"sha256": "abc"},
	}, nil)
	api.On("HeadObject", ctx, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "missing.pdf"
	})).Return(nil, &types.NotFound{})
	api.On("HeadObject", ctx, mock.MatchedBy(func(in *s3.HeadObjectInput) bool {
		return aws.ToString(in.Key) == "broken.pdf"
	})).Return(nil, errors.New("access denied"))

	c := &s3Store{api: api}

	info, err := c.Head(ctx, "archive", "present.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(42), info.Size)
	assert.Equal(t, modified, info.LastModified)
	assert.Equal(t, "abc", info.Metadata["sha256"])

	_, err = c.Head(ctx, "archive", "missing.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.Head(ctx, "archive", "broken.pdf")
	assert.ErrorContains(t, err, "access denied")
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestDownloadAndDelete(t *testing.T) {
	ctx := context.Background()
	api := new(MockObjectAPI)
	api.On("GetObject", ctx, mock.MatchedBy(func(in *s3.GetObjectInput) bool {
		return aws.ToString(in.Key) == "a.pdf"
	})).Return(&s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader("%PDF-1.3"))}, nil)
	api.On("GetObject", ctx, mock.Anything).Return(nil, &types.NoSuchKey{})
	api.On("DeleteObject", ctx, mock.Anything).Return(nil)

	c := &s3Store{api: api}

	body, err := c.Download(ctx, "archive", "a.pdf")
	require.NoError(t, err)
	data, err := io.ReadAll(body)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.3", string(data))

	_, err = c.Download(ctx, "archive", "b.pdf")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, c.Delete(ctx, "archive", "a.pdf"))
}

func TestPresignedURL(t *testing.T) {
	client := s3.New(s3.Options{
		Region:      "us-east-1",
		Credentials: credentials.NewStaticCredentialsProvider("AKIDEXAMPLE", "secret", ""),
	})
	c := &s3Store{presign: s3.NewPresignClient(client)}

	url, err := c.GetPresignedURL(context.Background(), "archive", "certificates/a.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, url, "archive")
	assert.Contains(t, url, "certificates/a.pdf")
	assert.Contains(t, url, "X-Amz-Signature=")
	assert.Contains(t, url, "X-Amz-Expires=900")
}
