package service

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pageza/foodgram/backend/internal/testhelpers"
)

func TestDecodeImage(t *testing.T) {
	img, err := DecodeImage("image", testhelpers.PNGDataURI)
	require.NoError(t, err)
	assert.Equal(t, "image/png", img.ContentType)
	assert.Equal(t, "png", img.Ext)
	assert.NotEmpty(t, img.Data)

	bad := []string{
		"",
		"plain text",
		"data:image/png,iVBORw0KGgo=",
		"data:application/pdf;base64,JVBERi0=",
		"data:image/png;base64,!!!",
		"data:image/png;base64,",
	}
	for _, uri := range bad {
		_, err := DecodeImage("avatar", uri)
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "uri %q", uri)
		assert.Equal(t, "avatar", verr.Field)
	}
}

type fakeS3 struct {
	put    *s3.PutObjectInput
	body   []byte
	delete *s3.DeleteObjectInput
	err    error
}

func (f *fakeS3) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.put = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func (f *fakeS3) DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.delete = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3ImageStore(t *testing.T) {
	client := &fakeS3{}
	store := &S3ImageStore{client: client, bucket: "media", publicURL: "https://cdn.example.com/"}
	ctx := context.Background()

	img, err := DecodeImage("image", testhelpers.PNGDataURI)
	require.NoError(t, err)

	key, err := store.Save(ctx, "recipes", img)
	require.NoError(t, err)
	assert.Regexp(t, `^recipes/[0-9a-f-]{36}\.png$`, key)
	assert.Equal(t, "media", aws.ToString(client.put.Bucket))
	assert.Equal(t, "image/png", aws.ToString(client.put.ContentType))
	assert.Equal(t, img.Data, client.body)
	assert.Equal(t, "https://cdn.example.com/"+key, store.URL(key))
	assert.Equal(t, "", store.URL(""))

	require.NoError(t, store.Delete(ctx, key))
	assert.Equal(t, key, aws.ToString(client.delete.Key))

	client.err = errors.New("boom")
	_, err = store.Save(ctx, "recipes", img)
	assert.Error(t, err)
}

func TestLocalImageStore(t *testing.T) {
	store, err := NewLocalImageStore(t.TempDir(), "http://localhost:8080/")
	require.NoError(t, err)
	ctx := context.Background()

	img, err := DecodeImage("image", testhelpers.PNGDataURI)
	require.NoError(t, err)
	key, err := store.Save(ctx, "recipes", img)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/"+key, store.URL(key))

	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, key))
	require.NoError(t, store.Delete(ctx, ""))
}
