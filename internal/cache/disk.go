package cache

import (
	"crypto/md5" //nolint:gosec // filename hashing, not security
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/charmbracelet/log"
)

// DiskTier is a persistent file-per-key cache. Each entry is stored as
// a JSON file named by the MD5 hex digest of its key. The tier is
// capped by total size in megabytes; when a write finds the cap
// exceeded, the oldest quarter of the files by modification time is
// deleted. Reads never fail the caller: any I/O or decode problem is
// logged and reported as a miss.
type DiskTier struct {
	dir       string
	maxSizeMB int

	// mu serializes the size-cap cleanup scan so concurrent
	// writers don't both decide to evict.
	mu sync.Mutex

	now func() time.Time
}

// NewDiskTier creates a disk tier rooted at dir, capped at maxSizeMB
// megabytes of serialized entries.
func NewDiskTier(dir string, maxSizeMB int) (*DiskTier, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}
	return &DiskTier{
		dir:       dir,
		maxSizeMB: maxSizeMB,
		now:       time.Now,
	}, nil
}

// Get retrieves a value. A hit rewrites the entry's file with its
// access bookkeeping bumped. Expired entries are deleted and reported
// as a miss, and so is anything unreadable or unparseable.
func (d *DiskTier) Get(key string) (json.RawMessage, bool) {
	path := d.filePath(key)

	raw, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			log.Warn("Could not read cache file", "key", key, "err", err)
		}
		return nil, false
	}

	var entry Entry
	if err := json.Unmarshal(raw, &entry); err != nil {
		log.Warn("Corrupted cache file treated as miss", "key", key, "err", err)
		return nil, false
	}

	if entry.Expired(d.now()) {
		if err := os.Remove(path); err != nil {
			log.Warn("Could not remove expired cache file", "key", key, "err", err)
		}
		return nil, false
	}

	entry.Touch(d.now())
	if err := d.writeEntry(path, &entry); err != nil {
		log.Warn("Could not update cache file access metadata", "key", key, "err", err)
		return nil, false
	}

	return entry.Data, true
}

// Set stores a value, running the lazy size-cap cleanup first. A
// ttl of zero or less means the entry never expires. Unlike reads,
// a failed write surfaces as an error: the caller depends on
// durability here.
func (d *DiskTier) Set(key string, data json.RawMessage, ttl time.Duration) error {
	d.cleanupIfNeeded()

	entry := newEntry(key, data, d.now(), ttl)
	if err := d.writeEntry(d.filePath(key), entry); err != nil {
		return &Error{Op: "set", Key: key, Err: err}
	}
	return nil
}

// Delete removes an entry, reporting whether it existed.
func (d *DiskTier) Delete(key string) (bool, error) {
	err := os.Remove(d.filePath(key))
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, &Error{Op: "delete", Key: key, Err: err}
	}
	return true, nil
}

// Clear removes all entry files.
func (d *DiskTier) Clear() error {
	files, err := d.entryFiles()
	if err != nil {
		return &Error{Op: "clear", Key: "all", Err: err}
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &Error{Op: "clear", Key: "all", Err: err}
		}
	}
	return nil
}

// RemoveExpired scans all entry files and deletes every one whose
// expiry has passed, plus any file that cannot be parsed. It returns
// the number of files removed.
func (d *DiskTier) RemoveExpired() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	files, err := d.entryFiles()
	if err != nil {
		log.Warn("Could not scan cache directory", "err", err)
		return 0
	}

	removed := 0
	now := d.now()
	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		var entry Entry
		if err := json.Unmarshal(raw, &entry); err != nil {
			// Unparseable means corrupted; remove it.
			if os.Remove(path) == nil {
				removed++
			}
			continue
		}

		if entry.Expired(now) {
			if os.Remove(path) == nil {
				removed++
			}
		}
	}
	return removed
}

// Stats returns a snapshot of the tier's state. Sizes are read from
// disk at call time, not tracked incrementally.
func (d *DiskTier) Stats() DiskStats {
	stats := DiskStats{MaxSizeMB: d.maxSizeMB}

	files, err := d.entryFiles()
	if err != nil {
		log.Warn("Could not scan cache directory", "err", err)
		return stats
	}

	var totalBytes int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		totalBytes += info.Size()
	}

	stats.TotalFiles = len(files)
	stats.TotalSizeMB = float64(totalBytes) / (1024 * 1024)
	if d.maxSizeMB > 0 {
		stats.UsagePercentage = float64(totalBytes) / float64(int64(d.maxSizeMB)*1024*1024) * 100
	}
	return stats
}

// filePath maps a key to its file. Keys are hashed so arbitrary key
// strings stay filesystem-safe.
func (d *DiskTier) filePath(key string) string {
	sum := md5.Sum([]byte(key)) //nolint:gosec
	return filepath.Join(d.dir, hex.EncodeToString(sum[:])+".json")
}

func (d *DiskTier) entryFiles() ([]string, error) {
	return filepath.Glob(filepath.Join(d.dir, "*.json"))
}

// writeEntry serializes an entry to path via a temp file and rename.
func (d *DiskTier) writeEntry(path string, entry *Entry) error {
	raw, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return err
	}

	tempPath := path + ".tmp"
	if err := os.WriteFile(tempPath, raw, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tempPath, path); err != nil {
		os.Remove(tempPath)
		return err
	}
	return nil
}

// cleanupIfNeeded deletes the oldest 25% of entry files by
// modification time when the total size exceeds the cap. This is a
// coarse batch heuristic: it does not guarantee the remaining total
// drops under the cap. Best effort; failures are logged only.
func (d *DiskTier) cleanupIfNeeded() {
	d.mu.Lock()
	defer d.mu.Unlock()

	files, err := d.entryFiles()
	if err != nil {
		log.Warn("Cache cleanup scan failed", "err", err)
		return
	}

	type fileInfo struct {
		path    string
		size    int64
		modTime time.Time
	}

	var infos []fileInfo
	var totalBytes int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		infos = append(infos, fileInfo{path, info.Size(), info.ModTime()})
		totalBytes += info.Size()
	}

	if totalBytes <= int64(d.maxSizeMB)*1024*1024 {
		return
	}

	sort.Slice(infos, func(i, j int) bool {
		return infos[i].modTime.Before(infos[j].modTime)
	})

	for _, fi := range infos[:len(infos)/4] {
		if err := os.Remove(fi.path); err != nil {
			log.Warn("Cache cleanup could not remove file", "path", fi.path, "err", err)
		}
	}
}
