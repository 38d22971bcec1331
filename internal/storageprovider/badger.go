package storageprovider

import (
	"bytes"
	"context"
	"errors"
	"io"

	"github.com/dgraph-io/badger/v4"

	"github.com/perfsight/frametrace/internal/storageutil"
)

// Badger implements storageutil.ObjectHandler on a local Badger
// database, used when the service runs without cloud storage.
type Badger struct {
	DB *badger.DB
}

// Put writes an object to the storage provider with name being the path.
func (b *Badger) Put(ctx context.Context, name string) (io.WriteCloser, error) {
	return &badgerWriter{
		b:    &bytes.Buffer{},
		txn:  b.DB.NewTransaction(true),
		name: name,
	}, nil
}

// Get reads an object from the storage provider with name being the
// path. If the key was not found, it returns ErrObjectNotFound.
func (b *Badger) Get(ctx context.Context, name string) (storageutil.ReadSizeCloser, error) {
	txn := b.DB.NewTransaction(false)
	item, err := txn.Get([]byte(name))
	if err != nil {
		txn.Discard()
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil, storageutil.ErrObjectNotFound
		}
		return nil, err
	}

	value, err := item.ValueCopy(nil)
	if err != nil {
		txn.Discard()
		return nil, err
	}

	return &badgerReader{
		txn:    txn,
		reader: bytes.NewReader(value),
		size:   item.ValueSize(),
	}, nil
}

// badgerWriter implements io.WriteCloser, buffering the object and
// committing it in one transaction on Close.
type badgerWriter struct {
	b    *bytes.Buffer
	txn  *badger.Txn
	name string
}

func (bw *badgerWriter) Write(b []byte) (int, error) {
	return bw.b.Write(b)
}

func (bw *badgerWriter) Close() error {
	err := bw.txn.Set([]byte(bw.name), bw.b.Bytes())
	if err != nil {
		bw.txn.Discard()
		return err
	}
	return bw.txn.Commit()
}

// badgerReader implements storageutil.ReadSizeCloser.
type badgerReader struct {
	txn    *badger.Txn
	reader io.Reader
	size   int64
}

func (b *badgerReader) Read(p []byte) (int, error) {
	return b.reader.Read(p)
}

func (b *badgerReader) Close() error {
	b.txn.Discard()
	return nil
}

func (b *badgerReader) Size() int64 {
	return b.size
}
