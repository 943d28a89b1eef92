package storage

import (
	"testing"
	"time"
)

func TestBoltStoreTracksFingerprintsAndExpiry(t *testing.T) {
	dir := t.TempDir()
	opts := Options{
		ResourceTTL:     1 * time.Second,
		CleanupInterval: 1 * time.Second,
	}

	storeRaw, err := openBolt(dir+"/cache.db", opts)
	if err != nil {
		t.Fatalf("openBolt: %v", err)
	}
	store := storeRaw.(*boltStore)
	defer store.Close()

	seen, err := store.SeenResource("acme/products/1", "fp1")
	if err != nil || seen {
		t.Fatalf("expected unseen resource, seen=%v err=%v", seen, err)
	}

	if err := store.MarkResource("acme/products/1", "fp1"); err != nil {
		t.Fatalf("MarkResource: %v", err)
	}

	seen, err = store.SeenResource("acme/products/1", "fp1")
	if err != nil || !seen {
		t.Fatalf("expected resource marked as seen, got seen=%v err=%v", seen, err)
	}

	// A changed fingerprint means the resource needs re-export.
	seen, err = store.SeenResource("acme/products/1", "fp2")
	if err != nil || seen {
		t.Fatalf("expected changed fingerprint to read unseen, seen=%v err=%v", seen, err)
	}

	// Fast-forward cleanup cadence and trigger expiry.
	store.lastCleanup.Store(time.Now().Add(-2 * time.Second).Unix())
	time.Sleep(1100 * time.Millisecond)

	seen, err = store.SeenResource("acme/products/1", "fp1")
	if err != nil {
		t.Fatalf("SeenResource after expiry: %v", err)
	}
	if seen {
		t.Fatalf("expected entry to expire and be removed")
	}
}

func TestNewStoreSupportsNoop(t *testing.T) {
	store, err := NewStore("none", "", Options{})
	if err != nil {
		t.Fatalf("NewStore none: %v", err)
	}
	if err := store.MarkResource("x", "fp"); err != nil {
		t.Fatalf("noop store MarkResource: %v", err)
	}
}

func TestNewStoreRejectsUnknownType(t *testing.T) {
	if _, err := NewStore("redis", "", Options{}); err == nil {
		t.Fatalf("expected error for unsupported storage type")
	}
}
