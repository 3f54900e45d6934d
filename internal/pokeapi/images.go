package pokeapi

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/dgnsrekt/pokedeck/internal/cache"
)

var pngMagic = []byte("\x89PNG\r\n\x1a\n")

// ImageDownloader fetches official artwork and stores it through the
// image tier. Downloads for distinct IDs are independent, so DownloadAll
// runs them with bounded fan-out.
type ImageDownloader struct {
	httpClient    *http.Client
	cache         *cache.Manager
	maxRetries    int
	maxConcurrent int
}

// NewImageDownloader creates a downloader backed by the given cache
// manager. maxConcurrent bounds DownloadAll's fan-out; zero means 20.
func NewImageDownloader(cm *cache.Manager, timeout time.Duration, maxRetries, maxConcurrent int) *ImageDownloader {
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	if maxConcurrent <= 0 {
		maxConcurrent = 20
	}
	return &ImageDownloader{
		httpClient:    &http.Client{Timeout: timeout},
		cache:         cm,
		maxRetries:    maxRetries,
		maxConcurrent: maxConcurrent,
	}
}

// ArtworkPath returns the local path of a Pokémon's official artwork,
// downloading and caching it when missing. With force set, the cached
// copy is re-downloaded.
func (d *ImageDownloader) ArtworkPath(ctx context.Context, p *Pokemon, force bool) (string, error) {
	if !force {
		if path, ok := d.cache.ImagePath(p.ID); ok {
			return path, nil
		}
	}

	data, err := d.fetch(ctx, p.ArtworkURL(), p.ID)
	if err != nil {
		return "", err
	}

	path, err := d.cache.StoreImage(p.ID, data)
	if err != nil {
		return "", err
	}
	return path, nil
}

// DownloadAll fetches artwork for every Pokémon concurrently, bounded
// by the configured fan-out limit. It returns the local path per ID;
// individual failures are logged and leave the ID out of the result.
func (d *ImageDownloader) DownloadAll(ctx context.Context, pokemon []*Pokemon) map[int]string {
	var mu sync.Mutex
	paths := make(map[int]string, len(pokemon))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.maxConcurrent)

	for _, p := range pokemon {
		g.Go(func() error {
			path, err := d.ArtworkPath(ctx, p, false)
			if err != nil {
				log.Warn("Artwork download failed", "id", p.ID, "name", p.Name, "err", err)
				return nil // keep going; missing art is not fatal
			}
			mu.Lock()
			paths[p.ID] = path
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()
	return paths
}

// fetch downloads image bytes with bounded retries, validating that
// the payload is a PNG before handing it to the store.
func (d *ImageDownloader) fetch(ctx context.Context, url string, id int) ([]byte, error) {
	var lastErr error
	for attempt := 0; attempt <= d.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-time.After(time.Duration(1<<(attempt-1)) * time.Second):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		data, err := d.doFetch(ctx, url)
		if err == nil {
			return data, nil
		}
		lastErr = err
	}
	return nil, fmt.Errorf("pokeapi: image download for %d failed after %d retries: %w", id, d.maxRetries, lastErr)
}

func (d *ImageDownloader) doFetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pokedeck/1.0")

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("empty image data")
	}
	if !bytes.HasPrefix(data, pngMagic) {
		return nil, fmt.Errorf("payload is not a PNG")
	}
	return data, nil
}
