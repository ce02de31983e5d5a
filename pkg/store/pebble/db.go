package pebblestore

import (
	"context"
	"errors"
	"time"

	"github.com/cockroachdb/pebble"
)

// FsyncMode defines durability behavior for write operations.
type FsyncMode int

const (
	FsyncModeUnspecified FsyncMode = iota
	// FsyncModeAlways requests a WAL fsync on each committed batch.
	FsyncModeAlways
	// FsyncModeInterval lets Pebble coalesce WAL syncs within the
	// configured interval (group commit).
	FsyncModeInterval
	// FsyncModeNever avoids forcing WAL syncs from the application.
	FsyncModeNever
)

// Options configures the Pebble-backed store.
type Options struct {
	// DataDir is the path to the Pebble database directory. Required.
	DataDir string
	// Fsync determines when to sync the WAL.
	Fsync FsyncMode
	// FsyncInterval controls group commit when Fsync=FsyncModeInterval.
	FsyncInterval time.Duration
	// PebbleOptions allows advanced tuning. If nil, defaults are used.
	PebbleOptions *pebble.Options
}

// db wraps a Pebble instance with the configured fsync policy.
type db struct {
	inner     *pebble.DB
	writeSync bool
}

func openDB(opts Options) (*db, error) {
	if opts.DataDir == "" {
		return nil, errors.New("pebblestore: Options.DataDir is required")
	}

	po := opts.PebbleOptions
	if po == nil {
		po = &pebble.Options{}
	}
	switch opts.Fsync {
	case FsyncModeAlways:
		// Sync set per commit below.
	case FsyncModeInterval:
		if opts.FsyncInterval <= 0 {
			opts.FsyncInterval = 5 * time.Millisecond
		}
		po.WALMinSyncInterval = func() time.Duration { return opts.FsyncInterval }
	case FsyncModeNever:
	default:
		po.WALMinSyncInterval = func() time.Duration { return 5 * time.Millisecond }
	}

	inner, err := pebble.Open(opts.DataDir, po)
	if err != nil {
		return nil, err
	}
	return &db{inner: inner, writeSync: opts.Fsync == FsyncModeAlways}, nil
}

func (d *db) close() error {
	if d == nil || d.inner == nil {
		return nil
	}
	return d.inner.Close()
}

func (d *db) newBatch() *pebble.Batch { return d.inner.NewBatch() }

func (d *db) commitBatch(_ context.Context, b *pebble.Batch) error {
	if b == nil {
		return errors.New("pebblestore: nil batch")
	}
	syncMode := pebble.NoSync
	if d.writeSync {
		syncMode = pebble.Sync
	}
	return b.Commit(syncMode)
}

func (d *db) set(key, value []byte) error {
	b := d.inner.NewBatch()
	defer b.Close()
	if err := b.Set(key, value, nil); err != nil {
		return err
	}
	return d.commitBatch(context.Background(), b)
}

func (d *db) delete(key []byte) error {
	b := d.inner.NewBatch()
	defer b.Close()
	if err := b.Delete(key, nil); err != nil {
		return err
	}
	return d.commitBatch(context.Background(), b)
}

// get copies the value for the given key. Returns pebble.ErrNotFound when
// the key is absent.
func (d *db) get(key []byte) ([]byte, error) {
	val, closer, err := d.inner.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (d *db) newIter(opts *pebble.IterOptions) (*pebble.Iterator, error) {
	return d.inner.NewIter(opts)
}

// deleteAll removes every key in the store.
func (d *db) deleteAll() error {
	syncMode := pebble.NoSync
	if d.writeSync {
		syncMode = pebble.Sync
	}
	return d.inner.DeleteRange([]byte{0x00}, []byte{0xff}, syncMode)
}
