package cache

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("value"), time.Minute); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	_, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("NullCache.Get() found = true, want false")
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestHash(t *testing.T) {
	a := Hash([]byte("hello"))
	b := Hash([]byte("hello"))
	c := Hash([]byte("world"))

	if a != b {
		t.Errorf("Hash() not deterministic: %q != %q", a, b)
	}
	if a == c {
		t.Error("Hash() produced same hash for different inputs")
	}
	if len(a) != 64 {
		t.Errorf("Hash() length = %d, want 64", len(a))
	}
}

func TestDefaultKeyer(t *testing.T) {
	k := NewDefaultKeyer()

	layoutA := k.LayoutKey("hash1", LayoutKeyOpts{MaxAttempts: 64})
	layoutB := k.LayoutKey("hash1", LayoutKeyOpts{MaxAttempts: 64})
	if layoutA != layoutB {
		t.Error("LayoutKey() not deterministic")
	}

	layoutC := k.LayoutKey("hash2", LayoutKeyOpts{MaxAttempts: 64})
	if layoutA == layoutC {
		t.Error("LayoutKey() same key for different item hashes")
	}

	layoutD := k.LayoutKey("hash1", LayoutKeyOpts{MaxAttempts: 8})
	if layoutA == layoutD {
		t.Error("LayoutKey() same key for different options")
	}

	artifactA := k.ArtifactKey("hash1", ArtifactKeyOpts{Scale: 2, Crush: true})
	artifactB := k.ArtifactKey("hash1", ArtifactKeyOpts{Scale: 2, Crush: false})
	if artifactA == artifactB {
		t.Error("ArtifactKey() same key for different crush settings")
	}

	if layoutA == artifactA {
		t.Error("LayoutKey() and ArtifactKey() collide for same hash")
	}
}

func TestScopedKeyer(t *testing.T) {
	inner := NewDefaultKeyer()
	scoped := NewScopedKeyer(inner, "webapp:")

	key := scoped.LayoutKey("hash1", LayoutKeyOpts{MaxAttempts: 64})
	if !strings.HasPrefix(key, "webapp:") {
		t.Errorf("LayoutKey() = %q, want webapp: prefix", key)
	}
	if strings.TrimPrefix(key, "webapp:") != inner.LayoutKey("hash1", LayoutKeyOpts{MaxAttempts: 64}) {
		t.Error("ScopedKeyer changed the inner key")
	}

	artifact := scoped.ArtifactKey("hash1", ArtifactKeyOpts{Scale: 2})
	if !strings.HasPrefix(artifact, "webapp:") {
		t.Errorf("ArtifactKey() = %q, want webapp: prefix", artifact)
	}
}

func TestScopedKeyerNilInner(t *testing.T) {
	scoped := NewScopedKeyer(nil, "p:")
	key := scoped.LayoutKey("h", LayoutKeyOpts{})
	if !strings.HasPrefix(key, "p:") {
		t.Errorf("LayoutKey() = %q, want p: prefix", key)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	data := []byte(`{"width":128,"height":64}`)
	if err := c.Set(ctx, "layout-key", data, time.Hour); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	got, found, err := c.Get(ctx, "layout-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !found {
		t.Fatal("Get() found = false after Set()")
	}
	if string(got) != string(data) {
		t.Errorf("Get() = %q, want %q", got, data)
	}

	_, found, err = c.Get(ctx, "missing-key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for missing key")
	}
}

func TestFileCacheExpiration(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "short", []byte("value"), time.Millisecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)

	_, found, err := c.Get(ctx, "short")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for expired entry")
	}
}

func TestFileCacheKindMismatch(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	fc := c.(*FileCache)

	// An entry whose recorded kind disagrees with its key is a miss and
	// gets removed.
	key := "layout:deadbeef"
	path := fc.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	raw, _ := json.Marshal(fileEntry{Kind: "artifact", Data: []byte("x")})
	if err := os.WriteFile(path, raw, 0644); err != nil {
		t.Fatal(err)
	}

	_, found, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for entry of the wrong kind")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("mismatched entry not removed")
	}
}

func TestFileCacheCorruptEntry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()
	fc := c.(*FileCache)

	key := "artifact:cafef00d"
	path := fc.entryPath(key)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	_, found, err := c.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true for corrupt entry")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("corrupt entry not removed")
	}
}

func TestKeyKind(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"layout:abc", "layout"},
		{"artifact:def", "artifact"},
		{"bare-key", "misc"},
		{":leading", "misc"},
	}
	for _, tt := range tests {
		if got := keyKind(tt.key); got != tt.want {
			t.Errorf("keyKind(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestFileCacheDelete(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	defer c.Close()

	if err := c.Set(ctx, "key", []byte("value"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, found, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if found {
		t.Error("Get() found = true after Delete()")
	}

	// Deleting a missing key is not an error.
	if err := c.Delete(ctx, "missing"); err != nil {
		t.Errorf("Delete() of missing key error = %v", err)
	}
}
