package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/photoshare-app/photoshare/internal/naming"
	"github.com/photoshare-app/photoshare/internal/storage"
)

type fakeLister struct {
	objects []storage.ObjectInfo
	err     error
}

func (f *fakeLister) List(ctx context.Context, bucket string) ([]storage.ObjectInfo, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.objects, nil
}

func newTestCatalog(lister ObjectLister) *Catalog {
	return New(lister, naming.NewMapper("thumb-", ""), "photo-bucket", "eu-west-1")
}

func TestListImagesFiltersAndShapes(t *testing.T) {
	modified := time.Date(2026, 5, 2, 17, 30, 0, 0, time.FixedZone("CEST", 2*3600))
	lister := &fakeLister{objects: []storage.ObjectInfo{
		{Key: "albums/cat.jpg", Size: 120_000, LastModified: modified},
		{Key: "thumb-albums/cat.jpg", Size: 9_000, LastModified: modified},
		{Key: "readme.txt", Size: 100, LastModified: modified},
		{Key: "dog.webp", Size: 80_000, LastModified: modified},
	}}

	images, err := newTestCatalog(lister).ListImages(context.Background())
	require.NoError(t, err)
	require.Len(t, images, 2, "derivatives and non-images must be excluded")

	cat := images[0]
	assert.Equal(t, "cat.jpg", cat.Name, "name is the final path segment")
	assert.Equal(t, "https://photo-bucket.s3.eu-west-1.amazonaws.com/albums/cat.jpg", cat.URL)
	assert.Equal(t, "2026-05-02T15:30:00Z", cat.LastModified, "timestamps normalize to UTC")
	assert.Equal(t, int64(120_000), cat.Size)

	assert.Equal(t, "dog.webp", images[1].Name)
}

func TestListImagesEmptyBucket(t *testing.T) {
	images, err := newTestCatalog(&fakeLister{}).ListImages(context.Background())
	require.NoError(t, err)
	require.NotNil(t, images, "empty catalog must be an empty slice, not nil")
	assert.Empty(t, images)
}

func TestListImagesStoreFailure(t *testing.T) {
	lister := &fakeLister{err: &storage.Error{
		Op: "list", Bucket: "photo-bucket",
		Kind: storage.KindAccessDenied,
		Err:  errors.New("access denied"),
	}}

	_, err := newTestCatalog(lister).ListImages(context.Background())
	var serr *storage.Error
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, storage.KindAccessDenied, serr.Kind)
}
