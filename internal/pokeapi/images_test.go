package pokeapi

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"
)

var testPNG = append([]byte(nil), append(pngMagic, []byte("fake image bytes")...)...)

func artworkPokemon(id int, url string) *Pokemon {
	p := &Pokemon{ID: id, Name: "test"}
	p.Sprites.Other.OfficialArtwork.FrontDefault = url
	return p
}

func TestImageDownloader_ArtworkPath(t *testing.T) {
	var requests atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		w.Write(testPNG) //nolint:errcheck
	}))
	t.Cleanup(server.Close)

	d := NewImageDownloader(newTestCache(t), 5*time.Second, 0, 1)
	p := artworkPokemon(25, server.URL+"/25.png")

	path, err := d.ArtworkPath(context.Background(), p, false)
	if err != nil {
		t.Fatalf("ArtworkPath failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("downloaded artwork missing on disk: %v", err)
	}

	// Second call hits the image cache.
	if _, err := d.ArtworkPath(context.Background(), p, false); err != nil {
		t.Fatal(err)
	}
	if n := requests.Load(); n != 1 {
		t.Errorf("server saw %d requests, want 1", n)
	}

	// Force re-downloads even when cached.
	if _, err := d.ArtworkPath(context.Background(), p, true); err != nil {
		t.Fatal(err)
	}
	if n := requests.Load(); n != 2 {
		t.Errorf("server saw %d requests after force, want 2", n)
	}
}

func TestImageDownloader_RejectsNonPNG(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("<html>not an image</html>")) //nolint:errcheck
	}))
	t.Cleanup(server.Close)

	d := NewImageDownloader(newTestCache(t), 5*time.Second, 0, 1)
	p := artworkPokemon(1, server.URL+"/1.png")

	if _, err := d.ArtworkPath(context.Background(), p, false); err == nil {
		t.Error("non-PNG payload should fail the download")
	}
}

func TestImageDownloader_DownloadAll(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/3.png" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write(testPNG) //nolint:errcheck
	}))
	t.Cleanup(server.Close)

	d := NewImageDownloader(newTestCache(t), 5*time.Second, 0, 4)
	pokemon := []*Pokemon{
		artworkPokemon(1, server.URL+"/1.png"),
		artworkPokemon(2, server.URL+"/2.png"),
		artworkPokemon(3, server.URL+"/3.png"),
	}

	paths := d.DownloadAll(context.Background(), pokemon)

	if len(paths) != 2 {
		t.Fatalf("got %d paths, want 2 (one download fails)", len(paths))
	}
	if _, ok := paths[3]; ok {
		t.Error("failed download should be absent from the result")
	}
	for _, id := range []int{1, 2} {
		if _, err := os.Stat(paths[id]); err != nil {
			t.Errorf("artwork for %d missing on disk: %v", id, err)
		}
	}
}
