package cache

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"
)

func newTestDiskTier(t *testing.T, maxSizeMB int) *DiskTier {
	t.Helper()
	tier, err := NewDiskTier(t.TempDir(), maxSizeMB)
	if err != nil {
		t.Fatalf("NewDiskTier failed: %v", err)
	}
	return tier
}

func TestDiskTier_RoundTrip(t *testing.T) {
	tier := newTestDiskTier(t, 100)

	original := map[string]any{
		"id":    float64(25),
		"name":  "pikachu",
		"types": []any{"electric"},
	}
	raw, err := json.Marshal(original)
	if err != nil {
		t.Fatal(err)
	}

	if err := tier.Set("pokemon_25", raw, time.Hour); err != nil {
		t.Fatalf("Set failed: %v", err)
	}

	got, ok := tier.Get("pokemon_25")
	if !ok {
		t.Fatal("Get failed: key not found")
	}

	var decoded map[string]any
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("retrieved value is not valid JSON: %v", err)
	}
	if !reflect.DeepEqual(decoded, original) {
		t.Errorf("round trip mismatch: got %v, want %v", decoded, original)
	}
}

func TestDiskTier_FileSchema(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir, 100)
	if err != nil {
		t.Fatal(err)
	}

	key := "pokemon_1"
	if err := tier.Set(key, json.RawMessage(`{"name":"bulbasaur"}`), time.Hour); err != nil {
		t.Fatal(err)
	}

	// Filename is the MD5 hex digest of the key
	sum := md5.Sum([]byte(key))
	path := filepath.Join(dir, hex.EncodeToString(sum[:])+".json")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected cache file at hashed path: %v", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		t.Fatalf("cache file is not valid JSON: %v", err)
	}
	for _, want := range []string{"key", "data", "created_at", "expires_at", "access_count", "last_accessed"} {
		if _, ok := fields[want]; !ok {
			t.Errorf("cache file missing field %q", want)
		}
	}
	if string(fields["access_count"]) != "0" {
		t.Errorf("fresh entry access_count = %s, want 0", fields["access_count"])
	}
}

func TestDiskTier_AccessBookkeepingPersisted(t *testing.T) {
	tier := newTestDiskTier(t, 100)

	if err := tier.Set("pokemon_1", json.RawMessage(`1`), time.Hour); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 3; i++ {
		if _, ok := tier.Get("pokemon_1"); !ok {
			t.Fatal("Get failed")
		}
	}

	raw, err := os.ReadFile(tier.filePath("pokemon_1"))
	if err != nil {
		t.Fatal(err)
	}
	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		t.Fatal(err)
	}
	if entry.AccessCount != 3 {
		t.Errorf("persisted AccessCount = %d, want 3", entry.AccessCount)
	}
	if entry.LastAccessed == nil {
		t.Error("persisted LastAccessed should be set after reads")
	}
}

func TestDiskTier_TTLExpiry(t *testing.T) {
	clock := newFakeClock()
	tier := newTestDiskTier(t, 100)
	tier.now = clock.Now

	if err := tier.Set("pokemon_1", json.RawMessage(`1`), time.Hour); err != nil {
		t.Fatal(err)
	}

	clock.Advance(2 * time.Hour)

	if _, ok := tier.Get("pokemon_1"); ok {
		t.Error("expired entry should be a miss")
	}
	if _, err := os.Stat(tier.filePath("pokemon_1")); !os.IsNotExist(err) {
		t.Error("expired entry file should have been deleted")
	}
}

func TestDiskTier_CorruptedFileIsMiss(t *testing.T) {
	tier := newTestDiskTier(t, 100)

	path := tier.filePath("pokemon_1")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, ok := tier.Get("pokemon_1"); ok {
		t.Error("corrupted file should read as a miss")
	}
}

func TestDiskTier_DeleteAndClear(t *testing.T) {
	tier := newTestDiskTier(t, 100)

	if err := tier.Set("a", json.RawMessage(`1`), 0); err != nil {
		t.Fatal(err)
	}
	if err := tier.Set("b", json.RawMessage(`2`), 0); err != nil {
		t.Fatal(err)
	}

	ok, err := tier.Delete("a")
	if err != nil || !ok {
		t.Errorf("Delete(a) = %v, %v; want true, nil", ok, err)
	}
	ok, err = tier.Delete("a")
	if err != nil || ok {
		t.Errorf("second Delete(a) = %v, %v; want false, nil", ok, err)
	}

	if err := tier.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if stats := tier.Stats(); stats.TotalFiles != 0 {
		t.Errorf("Clear left %d files", stats.TotalFiles)
	}
}

func TestDiskTier_SizeCapCleanup(t *testing.T) {
	dir := t.TempDir()
	tier, err := NewDiskTier(dir, 1) // 1 MB cap
	if err != nil {
		t.Fatal(err)
	}

	// Each entry is ~300KB, so four of them exceed the cap.
	bigValue := json.RawMessage(`"` + strings.Repeat("x", 300*1024) + `"`)

	base := time.Now().Add(-time.Hour)
	for i := 0; i < 4; i++ {
		key := fmt.Sprintf("key-%d", i)
		if err := tier.Set(key, bigValue, 0); err != nil {
			t.Fatalf("Set %s failed: %v", key, err)
		}
		// Stagger modification times so eviction order is stable.
		mt := base.Add(time.Duration(i) * time.Minute)
		if err := os.Chtimes(tier.filePath(key), mt, mt); err != nil {
			t.Fatal(err)
		}
	}

	// The fifth write finds the cap exceeded and removes the
	// oldest quarter of the files before writing.
	if err := tier.Set("key-4", bigValue, 0); err != nil {
		t.Fatalf("Set key-4 failed: %v", err)
	}

	if _, err := os.Stat(tier.filePath("key-0")); !os.IsNotExist(err) {
		t.Error("oldest file should have been evicted")
	}
	for _, key := range []string{"key-1", "key-2", "key-3", "key-4"} {
		if _, err := os.Stat(tier.filePath(key)); err != nil {
			t.Errorf("file for %s should have survived cleanup: %v", key, err)
		}
	}
}

func TestDiskTier_RemoveExpired(t *testing.T) {
	clock := newFakeClock()
	tier := newTestDiskTier(t, 100)
	tier.now = clock.Now

	if err := tier.Set("expired", json.RawMessage(`1`), time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := tier.Set("fresh", json.RawMessage(`2`), 100*time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := tier.Set("forever", json.RawMessage(`3`), 0); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(tier.filePath("corrupt"), []byte("???"), 0o644); err != nil {
		t.Fatal(err)
	}

	clock.Advance(time.Hour)

	removed := tier.RemoveExpired()
	if removed != 2 {
		t.Errorf("RemoveExpired removed %d files, want 2 (expired + corrupt)", removed)
	}
	if _, ok := tier.Get("fresh"); !ok {
		t.Error("unexpired entry should have survived the sweep")
	}
	if _, ok := tier.Get("forever"); !ok {
		t.Error("never-expiring entry should have survived the sweep")
	}
}

func TestDiskTier_Stats(t *testing.T) {
	tier := newTestDiskTier(t, 100)

	if err := tier.Set("a", json.RawMessage(`"payload"`), time.Hour); err != nil {
		t.Fatal(err)
	}
	if err := tier.Set("b", json.RawMessage(`"payload"`), time.Hour); err != nil {
		t.Fatal(err)
	}

	stats := tier.Stats()
	if stats.TotalFiles != 2 {
		t.Errorf("TotalFiles = %d, want 2", stats.TotalFiles)
	}
	if stats.MaxSizeMB != 100 {
		t.Errorf("MaxSizeMB = %d, want 100", stats.MaxSizeMB)
	}
	if stats.TotalSizeMB <= 0 {
		t.Error("TotalSizeMB should be positive")
	}
	if stats.UsagePercentage <= 0 {
		t.Error("UsagePercentage should be positive")
	}
}
