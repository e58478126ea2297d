package storage

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeObjectStore implements objectStore and records the requests it sees.
type fakeObjectStore struct {
	putInputs    []*s3.PutObjectInput
	deleteInputs []*s3.DeleteObjectInput
	listOutput   *s3.ListObjectsV2Output
	putErr       error
}

func (f *fakeObjectStore) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.putInputs = append(f.putInputs, params)
	return &s3.PutObjectOutput{ETag: aws.String(`"abc123"`)}, nil
}

func (f *fakeObjectStore) DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	f.deleteInputs = append(f.deleteInputs, params)
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeObjectStore) ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	if f.listOutput != nil {
		return f.listOutput, nil
	}
	return &s3.ListObjectsV2Output{}, nil
}

func newTestUploader(store *fakeObjectStore) *cloudflareR2Uploader {
	return &cloudflareR2Uploader{
		client:        store,
		bucketName:    "tournament-media",
		publicBaseURL: "https://media.example.com/",
	}
}

func TestCloudflareR2Uploader_Upload(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		store := &fakeObjectStore{}
		u := newTestUploader(store)

		result, err := u.Upload(ctx, "payment-proofs/3/abc", "image/png", 1024, strings.NewReader("png"))
		require.NoError(t, err)
		assert.Equal(t, "payment-proofs/3/abc", result.Key)
		assert.Equal(t, "https://media.example.com/payment-proofs/3/abc", result.Location)
		assert.Equal(t, "abc123", result.ETag, "surrounding quotes are stripped")

		require.Len(t, store.putInputs, 1)
		assert.Equal(t, "tournament-media", *store.putInputs[0].Bucket)
		assert.Equal(t, int64(1024), *store.putInputs[0].ContentLength)
	})

	t.Run("oversized upload never reaches the store", func(t *testing.T) {
		store := &fakeObjectStore{}
		u := newTestUploader(store)

		_, err := u.Upload(ctx, "payment-proofs/3/big", "image/png", MaxUploadSize+1, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrUploadTooLarge)
		assert.Empty(t, store.putInputs)
	})

	t.Run("empty key", func(t *testing.T) {
		u := newTestUploader(&fakeObjectStore{})
		_, err := u.Upload(ctx, "", "image/png", 10, strings.NewReader("x"))
		require.ErrorIs(t, err, ErrEmptyKey)
	})
}

func TestCloudflareR2Uploader_Delete(t *testing.T) {
	ctx := context.Background()
	store := &fakeObjectStore{}
	u := newTestUploader(store)

	require.NoError(t, u.Delete(ctx, "payment-proofs/3/abc"))
	require.Len(t, store.deleteInputs, 1)
	assert.Equal(t, "payment-proofs/3/abc", *store.deleteInputs[0].Key)

	require.ErrorIs(t, u.Delete(ctx, ""), ErrEmptyKey)
}

func TestCloudflareR2Uploader_ListLatest(t *testing.T) {
	ctx := context.Background()

	older := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	newer := older.Add(48 * time.Hour)

	store := &fakeObjectStore{
		listOutput: &s3.ListObjectsV2Output{
			Contents: []types.Object{
				{Key: aws.String("qr-codes/100/first"), LastModified: &older},
				{Key: aws.String("qr-codes/100/second"), LastModified: &newer},
				{Key: aws.String("qr-codes/100/broken"), LastModified: nil},
			},
		},
	}
	u := newTestUploader(store)

	key, err := u.ListLatest(ctx, "qr-codes/100/")
	require.NoError(t, err)
	assert.Equal(t, "qr-codes/100/second", key, "the most recent upload wins")

	u2 := newTestUploader(&fakeObjectStore{})
	key, err = u2.ListLatest(ctx, "qr-codes/999/")
	require.NoError(t, err)
	assert.Empty(t, key)
}

func TestObjectKeyNamespacing(t *testing.T) {
	key1 := ObjectKey("payment-proofs", 7)
	key2 := ObjectKey("payment-proofs", 7)

	assert.True(t, strings.HasPrefix(key1, "payment-proofs/7/"))
	assert.NotEqual(t, key1, key2, "keys carry a random component")

	assert.True(t, strings.HasPrefix(key1, OwnerPrefix("payment-proofs", 7)))
	assert.False(t, strings.HasPrefix(key1, OwnerPrefix("payment-proofs", 77)))
}
