package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	s3types "github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func TestLocalFileStorage(t *testing.T) {
	ctx := context.Background()
	base := t.TempDir()
	s := NewLocalFileStorage(base, zap.NewNop())

	require.NoError(t, s.Save(ctx, "1a2b/receipt.png", pngHeader))
	assert.True(t, s.Exists(ctx, "1a2b/receipt.png"))

	content, err := s.Read(ctx, "1a2b/receipt.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, content)

	require.NoError(t, s.Delete(ctx, "1a2b/receipt.png"))
	assert.False(t, s.Exists(ctx, "1a2b/receipt.png"))
	_, err = os.Stat(filepath.Join(base, "1a2b"))
	assert.True(t, os.IsNotExist(err), "empty bill directory is pruned")

	require.NoError(t, s.Delete(ctx, "1a2b/receipt.png"), "delete is idempotent")

	_, err = s.Read(ctx, "missing.png")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalFileStorage_RejectsEscapes(t *testing.T) {
	ctx := context.Background()
	s := NewLocalFileStorage(t.TempDir(), zap.NewNop())

	assert.ErrorContains(t, s.Save(ctx, "../outside.png", pngHeader), "escapes base directory")
	_, err := s.Read(ctx, "../../etc/passwd")
	assert.Error(t, err)
	assert.False(t, s.Exists(ctx, "../x"))
}

// fakeS3 keeps objects in memory
type fakeS3 struct {
	objects map[string][]byte
	types   map[string]string
	putErr  error
}

func newFakeS3() *fakeS3 {
	return &fakeS3{objects: map[string][]byte{}, types: map[string]string{}}
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, opts ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	body, err := io.ReadAll(in.Body)
	if err != nil {
		return nil, err
	}
	f.objects[aws.ToString(in.Key)] = body
	f.types[aws.ToString(in.Key)] = aws.ToString(in.ContentType)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) GetObject(ctx context.Context, in *s3.GetObjectInput, opts ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	body, ok := f.objects[aws.ToString(in.Key)]
	if !ok {
		return nil, &s3types.NoSuchKey{}
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(body))}, nil
}

func (f *fakeS3) HeadObject(ctx context.Context, in *s3.HeadObjectInput, opts ...func(*s3.Options)) (*s3.HeadObjectOutput, error) {
	if _, ok := f.objects[aws.ToString(in.Key)]; !ok {
		return nil, &s3types.NotFound{}
	}
	return &s3.HeadObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, opts ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(f.objects, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3FileStorage(t *testing.T) {
	ctx := context.Background()
	client := newFakeS3()
	s := newS3FileStorage(client, "receipts", "/bills/", zap.NewNop())

	require.NoError(t, s.Save(ctx, "1a2b/receipt.png", pngHeader))
	assert.Contains(t, client.objects, "bills/1a2b/receipt.png")
	assert.Equal(t, "image/png", client.types["bills/1a2b/receipt.png"])
	assert.True(t, s.Exists(ctx, "1a2b/receipt.png"))

	content, err := s.Read(ctx, "1a2b/receipt.png")
	require.NoError(t, err)
	assert.Equal(t, pngHeader, content)

	require.NoError(t, s.Delete(ctx, "1a2b/receipt.png"))
	assert.False(t, s.Exists(ctx, "1a2b/receipt.png"))

	_, err = s.Read(ctx, "1a2b/receipt.png")
	assert.ErrorIs(t, err, ErrNotFound)

	client.putErr = errors.New("access denied")
	assert.ErrorContains(t, s.Save(ctx, "x.png", pngHeader), "access denied")
}
