// Package catalog implements the read path: enumerating processable images
// in a bucket and shaping their metadata for API responses.
//
// It shares the naming classifier with the write path, so generated
// thumbnails and non-image objects never appear in listings.
package catalog

import (
	"context"
	"fmt"
	"path"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/photoshare-app/photoshare/internal/naming"
	"github.com/photoshare-app/photoshare/internal/storage"
)

// ObjectLister is the catalog's view of the object store.
type ObjectLister interface {
	List(ctx context.Context, bucket string) ([]storage.ObjectInfo, error)
}

// Image is one catalog entry, JSON-shaped for the API response.
type Image struct {
	Name         string `json:"name"`
	URL          string `json:"url"`
	LastModified string `json:"lastModified"`
	Size         int64  `json:"size"`
}

// Catalog lists images in a single configured bucket.
type Catalog struct {
	lister ObjectLister
	mapper *naming.Mapper
	bucket string
	region string
}

// New builds a Catalog over the given bucket and region. The region feeds
// the public object URL.
func New(lister ObjectLister, mapper *naming.Mapper, bucket, region string) *Catalog {
	return &Catalog{lister: lister, mapper: mapper, bucket: bucket, region: region}
}

// ListImages enumerates all processable images in the bucket. An empty
// bucket yields an empty, non-nil slice rather than an error. Timestamps are
// RFC 3339 in UTC.
func (c *Catalog) ListImages(ctx context.Context) ([]Image, error) {
	objects, err := c.lister.List(ctx, c.bucket)
	if err != nil {
		return nil, fmt.Errorf("list bucket %s: %w", c.bucket, err)
	}

	images := make([]Image, 0, len(objects))
	for _, obj := range objects {
		if c.mapper.Classify(obj.Key) != naming.Processable {
			continue
		}
		images = append(images, Image{
			Name:         path.Base(obj.Key),
			URL:          c.objectURL(obj.Key),
			LastModified: obj.LastModified.UTC().Format(time.RFC3339),
			Size:         obj.Size,
		})
	}

	log.Debug().
		Str("bucket", c.bucket).
		Int("objects", len(objects)).
		Int("images", len(images)).
		Msg("Catalog listed")

	return images, nil
}

// objectURL builds the public virtual-hosted URL for an object. The photo
// bucket is public-read; presigning is not needed on this path.
func (c *Catalog) objectURL(key string) string {
	return fmt.Sprintf("https://%s.s3.%s.amazonaws.com/%s", c.bucket, c.region, key)
}
