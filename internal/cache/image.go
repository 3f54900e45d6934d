package cache

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// DefaultImageKind is the image kind used when callers don't care
// about a specific sprite set.
const DefaultImageKind = "official_artwork"

// ImageTier is a content-addressed on-disk store for artwork blobs,
// keyed by Pokémon ID and image kind. Presence on disk is the only
// presence signal: no TTL, no eviction. Artwork is immutable once
// published upstream, so staleness is the caller's problem.
type ImageTier struct {
	dir string
}

// NewImageTier creates an image tier rooted at dir. The default kind's
// subdirectory is created eagerly; other kinds on demand.
func NewImageTier(dir string) (*ImageTier, error) {
	if err := os.MkdirAll(filepath.Join(dir, DefaultImageKind), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create image directory: %w", err)
	}
	return &ImageTier{dir: dir}, nil
}

// ImagePath returns the local path for an image, and whether the file
// exists.
func (t *ImageTier) ImagePath(id int, kind string) (string, bool) {
	path := t.path(id, kind)
	if _, err := os.Stat(path); err != nil {
		return "", false
	}
	return path, true
}

// HasImage reports whether an image exists in the store.
func (t *ImageTier) HasImage(id int, kind string) bool {
	_, ok := t.ImagePath(id, kind)
	return ok
}

// StoreImage writes image bytes, creating the kind subdirectory on
// demand and overwriting any existing file. It returns the stored
// path.
func (t *ImageTier) StoreImage(id int, data []byte, kind string) (string, error) {
	if kind == "" {
		kind = DefaultImageKind
	}
	if err := os.MkdirAll(filepath.Join(t.dir, kind), 0o755); err != nil {
		return "", &Error{Op: "store_image", Key: fmt.Sprint(id), Err: err}
	}

	path := t.path(id, kind)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", &Error{Op: "store_image", Key: fmt.Sprint(id), Err: err}
	}
	return path, nil
}

// DeleteImage removes an image, reporting whether it existed.
func (t *ImageTier) DeleteImage(id int, kind string) bool {
	path, ok := t.ImagePath(id, kind)
	if !ok {
		return false
	}
	if err := os.Remove(path); err != nil {
		log.Warn("Could not delete cached image", "id", id, "kind", kind, "err", err)
		return false
	}
	return true
}

// ClearImages removes all images of one kind, or every kind when kind
// is empty.
func (t *ImageTier) ClearImages(kind string) error {
	pattern := filepath.Join(t.dir, kind, "*.png")
	if kind == "" {
		pattern = filepath.Join(t.dir, "*", "*.png")
	}

	files, err := filepath.Glob(pattern)
	if err != nil {
		return &Error{Op: "clear_images", Key: kind, Err: err}
	}
	for _, path := range files {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return &Error{Op: "clear_images", Key: kind, Err: err}
		}
	}
	return nil
}

// Stats returns a snapshot of the store's contents.
func (t *ImageTier) Stats() ImageStats {
	var stats ImageStats

	files, err := filepath.Glob(filepath.Join(t.dir, "*", "*.png"))
	if err != nil {
		log.Warn("Could not scan image directory", "err", err)
		return stats
	}

	var totalBytes int64
	for _, path := range files {
		info, err := os.Stat(path)
		if err != nil {
			continue
		}
		totalBytes += info.Size()
		if filepath.Base(filepath.Dir(path)) == DefaultImageKind {
			stats.OfficialArtworkCount++
		}
	}

	stats.TotalImages = len(files)
	stats.TotalSizeMB = float64(totalBytes) / (1024 * 1024)
	return stats
}

func (t *ImageTier) path(id int, kind string) string {
	if kind == "" {
		kind = DefaultImageKind
	}
	return filepath.Join(t.dir, kind, fmt.Sprintf("%d.png", id))
}
