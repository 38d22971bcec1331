package storageprovider

import (
	"context"
	"errors"
	"testing"

	"github.com/dgraph-io/badger/v4"

	"github.com/perfsight/frametrace/internal/storageutil"
	"github.com/perfsight/frametrace/internal/testutil"
)

func newBadger(t *testing.T) *Badger {
	t.Helper()
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLogger(nil))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() {
		_ = db.Close()
	})
	return &Badger{DB: db}
}

func TestBadgerCompressedRoundTrip(t *testing.T) {
	provider := newBadger(t)
	ctx := context.Background()

	written := map[string][]int64{
		"APP_1": {100, 150},
		"GPU_1": {150, 230},
	}
	err := storageutil.CompressedWrite(ctx, provider, "imports/trace-1/abc", written)
	if err != nil {
		t.Fatal(err)
	}

	var read map[string][]int64
	err = storageutil.UnmarshalCompressed(ctx, provider, "imports/trace-1/abc", &read)
	if err != nil {
		t.Fatal(err)
	}
	if diff := testutil.Diff(read, written); diff != "" {
		t.Fatalf("Result mismatch: got - want +\n%s", diff)
	}
}

func TestBadgerObjectNotFound(t *testing.T) {
	provider := newBadger(t)

	var out map[string]string
	err := storageutil.UnmarshalCompressed(context.Background(), provider, "imports/missing", &out)
	if !errors.Is(err, storageutil.ErrObjectNotFound) {
		t.Fatalf("expected ErrObjectNotFound, got %v", err)
	}
}
