package cache

import (
	"encoding/json"
	"path/filepath"
	"time"
)

// Manager is the façade over the three cache tiers. Keyed reads go
// memory first, then disk; a disk hit is promoted into memory at the
// default TTL. Keyed writes go through memory and disk in that order.
// Image blobs bypass the keyed tiers entirely.
//
// The manager holds no cached data itself. Construct one at process
// start and pass it by reference to whatever needs it.
type Manager struct {
	memory *MemoryTier
	disk   *DiskTier
	images *ImageTier
	cfg    Config
}

// NewManager creates a manager and its tiers from cfg, filling in
// defaults for any zero field.
func NewManager(cfg Config) (*Manager, error) {
	if err := cfg.applyDefaults(); err != nil {
		return nil, err
	}

	disk, err := NewDiskTier(filepath.Join(cfg.Dir, "api_cache"), cfg.DiskMaxSizeMB)
	if err != nil {
		return nil, err
	}

	images, err := NewImageTier(cfg.ImageDir)
	if err != nil {
		return nil, err
	}

	return &Manager{
		memory: NewMemoryTier(cfg.MemoryMaxEntries),
		disk:   disk,
		images: images,
		cfg:    cfg,
	}, nil
}

// get is the tiered read path: memory, then disk with promotion.
func (m *Manager) get(key string) (json.RawMessage, bool) {
	if data, ok := m.memory.Get(key); ok {
		return data, true
	}

	if data, ok := m.disk.Get(key); ok {
		// Promote for faster future access. Memory only: the disk
		// copy already exists and keeps its own bookkeeping.
		m.memory.Set(key, data, m.cfg.MemoryTTL)
		return data, true
	}

	return nil, false
}

// set is the write-through path. The memory write cannot fail; a disk
// write failure propagates.
func (m *Manager) set(key string, data json.RawMessage, ttl time.Duration) error {
	m.memory.Set(key, data, ttl)
	return m.disk.Set(key, data, ttl)
}

// GetPokemon returns cached Pokémon data for an ID.
func (m *Manager) GetPokemon(id int) (json.RawMessage, bool) {
	return m.get(PokemonKey(id))
}

// SetPokemon caches Pokémon data for an ID.
func (m *Manager) SetPokemon(id int, data json.RawMessage) error {
	return m.set(PokemonKey(id), data, m.cfg.PokemonTTL)
}

// GetSpecies returns cached species data for an ID.
func (m *Manager) GetSpecies(id int) (json.RawMessage, bool) {
	return m.get(SpeciesKey(id))
}

// SetSpecies caches species data for an ID.
func (m *Manager) SetSpecies(id int, data json.RawMessage) error {
	return m.set(SpeciesKey(id), data, m.cfg.SpeciesTTL)
}

// GetGeneration returns cached generation data.
func (m *Manager) GetGeneration(id int) (json.RawMessage, bool) {
	return m.get(GenerationKey(id))
}

// SetGeneration caches generation data. Generation listings change
// rarely, so they carry a longer TTL than record data.
func (m *Manager) SetGeneration(id int, data json.RawMessage) error {
	return m.set(GenerationKey(id), data, m.cfg.GenerationTTL)
}

// HasImage reports whether official artwork for an ID is cached.
func (m *Manager) HasImage(id int) bool {
	return m.images.HasImage(id, DefaultImageKind)
}

// ImagePath returns the local path of cached official artwork.
func (m *Manager) ImagePath(id int) (string, bool) {
	return m.images.ImagePath(id, DefaultImageKind)
}

// StoreImage caches official artwork bytes for an ID.
func (m *Manager) StoreImage(id int, data []byte) (string, error) {
	return m.images.StoreImage(id, data, DefaultImageKind)
}

// Images exposes the image tier for callers that need other kinds.
func (m *Manager) Images() *ImageTier { return m.images }

// ClearAll clears every tier unconditionally, expired or not.
func (m *Manager) ClearAll() error {
	m.memory.Clear()
	if err := m.disk.Clear(); err != nil {
		return err
	}
	return m.images.ClearImages("")
}

// ClearExpired sweeps the disk tier for expired or corrupted entry
// files. The memory tier purges lazily on read and needs no sweep.
func (m *Manager) ClearExpired() ExpiredStats {
	return ExpiredStats{
		FilesCleared: m.disk.RemoveExpired(),
	}
}

// ComprehensiveStats aggregates every tier's statistics with a
// snapshot timestamp.
func (m *Manager) ComprehensiveStats() Stats {
	return Stats{
		Memory:    m.memory.Stats(),
		Disk:      m.disk.Stats(),
		Images:    m.images.Stats(),
		Timestamp: time.Now(),
	}
}
