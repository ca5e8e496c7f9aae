package provider

import (
	"path/filepath"
	"testing"
)

func TestKeyIsDeterministicSHA256Hex(t *testing.T) {
	k1 := Key("https://api.tfl.gov.uk/line/victoria/route/sequence/outbound")
	k2 := Key("https://api.tfl.gov.uk/line/victoria/route/sequence/outbound")
	if k1 != k2 {
		t.Fatalf("expected Key to be deterministic")
	}
	if len(k1) != 64 {
		t.Fatalf("expected a hex-encoded sha256 digest (64 chars), got %d", len(k1))
	}
}

func TestCachePutGetRoundTrip(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 8)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	key := Key("https://example.test/a")
	if err := c.Put(key, []byte(`{"ok":true}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
	data, ok := c.Get(key)
	if !ok {
		t.Fatalf("expected cache hit after Put")
	}
	if string(data) != `{"ok":true}` {
		t.Fatalf("unexpected cached payload: %s", data)
	}
}

func TestCacheGetMissReturnsFalse(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 8)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if _, ok := c.Get(Key("https://example.test/missing")); ok {
		t.Fatalf("expected a miss for an unwritten key")
	}
}

func TestCachePutJSONWritesFileOnDisk(t *testing.T) {
	dir := t.TempDir()
	c, err := NewCache(dir, 8)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	key := Key("https://example.test/b")
	if err := c.PutJSON(key, map[string]int{"x": 1}); err != nil {
		t.Fatalf("PutJSON: %v", err)
	}

	path := filepath.Join(dir, key+".json")
	var out map[string]int
	c2, err := NewCache(dir, 1)
	if err != nil {
		t.Fatalf("NewCache: %v", err)
	}
	if !c2.GetJSON(key, &out) {
		t.Fatalf("expected GetJSON to find the entry written to %s", path)
	}
	if out["x"] != 1 {
		t.Fatalf("unexpected decoded value: %v", out)
	}
}
