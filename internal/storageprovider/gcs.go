package storageprovider

import (
	"context"
	"errors"
	"io"

	"cloud.google.com/go/storage"

	"github.com/perfsight/frametrace/internal/storageutil"
)

// Gcs implements storageutil.ObjectHandler on a Google Cloud Storage
// bucket.
type Gcs struct {
	BucketHandle *storage.BucketHandle
}

// Put writes an object to the storage provider with name being the path.
func (g *Gcs) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	return g.BucketHandle.Object(name).NewWriter(ctx), nil
}

// Get reads an object from the storage provider with name being the
// path. If the object was not found, it returns ErrObjectNotFound.
func (g *Gcs) Get(ctx context.Context, name string) (storageutil.ReadSizeCloser, error) {
	rc, err := g.BucketHandle.Object(name).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}
	return gcsReader{rc}, nil
}

// gcsReader adapts the GCS object reader to ReadSizeCloser.
type gcsReader struct {
	*storage.Reader
}

func (r gcsReader) Size() int64 {
	return r.Attrs.Size
}
