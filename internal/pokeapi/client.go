// Package pokeapi fetches Pokémon records from PokeAPI, reading
// through the cache manager and writing fetched data back through it.
package pokeapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/dgnsrekt/pokedeck/internal/cache"
)

const defaultBaseURL = "https://pokeapi.co/api/v2"

// ClientConfig holds the tunables for the API client.
type ClientConfig struct {
	BaseURL    string
	Timeout    time.Duration
	MaxRetries int
	// RateLimit is the minimum delay between requests.
	RateLimit time.Duration
}

// DefaultClientConfig returns the standard client settings.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		BaseURL:    defaultBaseURL,
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RateLimit:  100 * time.Millisecond,
	}
}

// Client talks to PokeAPI. Reads are cache-first; fetched records are
// written through both keyed tiers.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	maxRetries int
	retryBase  time.Duration
	cache      *cache.Manager
}

// NewClient creates a client backed by the given cache manager.
func NewClient(cm *cache.Manager, cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.RateLimit <= 0 {
		cfg.RateLimit = 100 * time.Millisecond
	}
	return &Client{
		baseURL:    cfg.BaseURL,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		limiter:    rate.NewLimiter(rate.Every(cfg.RateLimit), 1),
		maxRetries: cfg.MaxRetries,
		retryBase:  time.Second,
		cache:      cm,
	}
}

// Pokemon fetches a Pokémon record by ID.
func (c *Client) Pokemon(ctx context.Context, id int) (*Pokemon, error) {
	if err := ValidatePokemonID(id); err != nil {
		return nil, err
	}

	if raw, ok := c.cache.GetPokemon(id); ok {
		var p Pokemon
		if err := json.Unmarshal(raw, &p); err == nil {
			return &p, nil
		}
		log.Warn("Cached pokemon data did not parse, refetching", "id", id)
	}

	raw, err := c.getJSON(ctx, fmt.Sprintf("/pokemon/%d", id))
	if err != nil {
		return nil, err
	}

	var p Pokemon
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("pokeapi: decoding pokemon %d: %w", id, err)
	}

	if err := c.cache.SetPokemon(id, raw); err != nil {
		log.Warn("Could not cache pokemon data", "id", id, "err", err)
	}
	return &p, nil
}

// Species fetches a species record by ID.
func (c *Client) Species(ctx context.Context, id int) (*Species, error) {
	if err := ValidatePokemonID(id); err != nil {
		return nil, err
	}

	if raw, ok := c.cache.GetSpecies(id); ok {
		var s Species
		if err := json.Unmarshal(raw, &s); err == nil {
			return &s, nil
		}
		log.Warn("Cached species data did not parse, refetching", "id", id)
	}

	raw, err := c.getJSON(ctx, fmt.Sprintf("/pokemon-species/%d", id))
	if err != nil {
		return nil, err
	}

	var s Species
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("pokeapi: decoding species %d: %w", id, err)
	}

	if err := c.cache.SetSpecies(id, raw); err != nil {
		log.Warn("Could not cache species data", "id", id, "err", err)
	}
	return &s, nil
}

// Generation fetches a generation listing by number.
func (c *Client) Generation(ctx context.Context, gen int) (*Generation, error) {
	if err := ValidateGeneration(gen); err != nil {
		return nil, err
	}

	if raw, ok := c.cache.GetGeneration(gen); ok {
		var g Generation
		if err := json.Unmarshal(raw, &g); err == nil {
			return &g, nil
		}
		log.Warn("Cached generation data did not parse, refetching", "gen", gen)
	}

	raw, err := c.getJSON(ctx, fmt.Sprintf("/generation/%d", gen))
	if err != nil {
		return nil, err
	}

	var g Generation
	if err := json.Unmarshal(raw, &g); err != nil {
		return nil, fmt.Errorf("pokeapi: decoding generation %d: %w", gen, err)
	}

	if err := c.cache.SetGeneration(gen, raw); err != nil {
		log.Warn("Could not cache generation data", "gen", gen, "err", err)
	}
	return &g, nil
}

// GenerationIDs returns the Pokémon ID span for a generation.
func GenerationIDs(gen int) ([]int, error) {
	if err := ValidateGeneration(gen); err != nil {
		return nil, err
	}
	r := GenerationRanges[gen]
	ids := make([]int, 0, r.Last-r.First+1)
	for id := r.First; id <= r.Last; id++ {
		ids = append(ids, id)
	}
	return ids, nil
}

// getJSON performs a rate-limited GET with bounded retries and
// exponential backoff. A 404 maps to ErrNotFound; other HTTP errors
// and transport failures are retried.
func (c *Client) getJSON(ctx context.Context, path string) (json.RawMessage, error) {
	url := c.baseURL + path

	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			delay := time.Duration(1<<(attempt-1)) * c.retryBase
			log.Debug("Retrying request", "url", url, "attempt", attempt, "delay", delay)
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}

		raw, err := c.doRequest(ctx, url)
		if err == nil {
			return raw, nil
		}
		if errors.Is(err, ErrNotFound) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
		}
		lastErr = err
	}
	return nil, fmt.Errorf("pokeapi: request failed after %d retries: %w", c.maxRetries, lastErr)
}

func (c *Client) doRequest(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", "pokedeck/1.0 (https://github.com/dgnsrekt/pokedeck)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close() //nolint:errcheck

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, ErrNotFound
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP status %d", resp.StatusCode)
	}

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	return raw, nil
}
