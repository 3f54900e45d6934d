package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Error describes a failed cache operation. It is returned only for
// genuine I/O or serialization failures; absence is always signalled
// with a bool, never an error.
type Error struct {
	Op  string // operation that failed, e.g. "set", "store_image"
	Key string // cache key or image id involved
	Err error  // underlying cause
}

func (e *Error) Error() string {
	return fmt.Sprintf("cache %s %q: %v", e.Op, e.Key, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Cache key namespaces. Keys are formatted as "<namespace>_<id>".
func PokemonKey(id int) string    { return fmt.Sprintf("pokemon_%d", id) }
func SpeciesKey(id int) string    { return fmt.Sprintf("species_%d", id) }
func GenerationKey(id int) string { return fmt.Sprintf("generation_%d", id) }

// MemoryStats holds memory tier statistics.
type MemoryStats struct {
	TotalEntries     int
	ExpiredEntries   int
	ActiveEntries    int
	MaxEntries       int
	MemoryUsageBytes int64
}

// DiskStats holds disk tier statistics.
type DiskStats struct {
	TotalFiles      int
	TotalSizeMB     float64
	MaxSizeMB       int
	UsagePercentage float64
}

// ImageStats holds image tier statistics.
type ImageStats struct {
	TotalImages          int
	TotalSizeMB          float64
	OfficialArtworkCount int
}

// Stats aggregates statistics from all tiers.
type Stats struct {
	Memory    MemoryStats
	Disk      DiskStats
	Images    ImageStats
	Timestamp time.Time
}

// ExpiredStats reports how many entries ClearExpired removed per tier.
// The memory tier purges expired entries lazily on read, so its count
// is always zero.
type ExpiredStats struct {
	MemoryCleared int
	FilesCleared  int
}

// Config holds configuration for the cache manager and its tiers.
type Config struct {
	// Dir is the root cache directory. API entries live in an
	// "api_cache" subdirectory. Empty means the user cache dir.
	Dir string

	// ImageDir is the root image directory. Empty means
	// "pokemon_images" next to the api cache.
	ImageDir string

	MemoryMaxEntries int
	DiskMaxSizeMB    int

	// MemoryTTL is the default TTL used when promoting disk hits
	// into the memory tier.
	MemoryTTL     time.Duration
	PokemonTTL    time.Duration
	SpeciesTTL    time.Duration
	GenerationTTL time.Duration
}

// DefaultConfig returns the default cache configuration.
func DefaultConfig() Config {
	return Config{
		MemoryMaxEntries: 1000,
		DiskMaxSizeMB:    100,
		MemoryTTL:        time.Hour,
		PokemonTTL:       24 * time.Hour,
		SpeciesTTL:       24 * time.Hour,
		GenerationTTL:    48 * time.Hour,
	}
}

func (c *Config) applyDefaults() error {
	def := DefaultConfig()
	if c.MemoryMaxEntries == 0 {
		c.MemoryMaxEntries = def.MemoryMaxEntries
	}
	if c.DiskMaxSizeMB == 0 {
		c.DiskMaxSizeMB = def.DiskMaxSizeMB
	}
	if c.MemoryTTL == 0 {
		c.MemoryTTL = def.MemoryTTL
	}
	if c.PokemonTTL == 0 {
		c.PokemonTTL = def.PokemonTTL
	}
	if c.SpeciesTTL == 0 {
		c.SpeciesTTL = def.SpeciesTTL
	}
	if c.GenerationTTL == 0 {
		c.GenerationTTL = def.GenerationTTL
	}
	if c.Dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			return fmt.Errorf("failed to resolve cache directory: %w", err)
		}
		c.Dir = filepath.Join(base, "pokedeck")
	}
	if c.ImageDir == "" {
		c.ImageDir = filepath.Join(c.Dir, "pokemon_images")
	}
	return nil
}
