package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"

	mcobra "github.com/muesli/mango-cobra"
	"github.com/muesli/roff"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const defaultConfig = `# PokeAPI settings
api:
  base_url: "https://pokeapi.co/api/v2"
  timeout: "30s"
  max_retries: 3
  # minimum delay between API requests
  rate_limit: "100ms"
  max_concurrent_images: 20

# Cache settings
cache:
  # cache root directory (default: the user cache dir)
  dir: ""
  # artwork directory (default: pokemon_images under the cache root)
  image_dir: ""
  memory_max_entries: 1000
  disk_max_mb: 100

# Time-to-live per record kind
ttl:
  memory: "1h"
  pokemon: "24h"
  species: "24h"
  generation: "48h"

# Page geometry, millimeters
layout:
  page_width_mm: 210
  page_height_mm: 297
  card_width_mm: 63
  card_height_mm: 88
  margin_mm: 5
  spacing_mm: 2

# Card text language (en, ja, ...)
language: "en"
`

var configCmd = &cobra.Command{
	Use:     "config",
	Short:   "Show the pokedeck config file location",
	Long:    paragraph(fmt.Sprintf("\nLocate the pokedeck config file, %s it with defaults when missing.", keyword("creating"))),
	Example: paragraph("pokedeck config\npokedeck config --config path/to/pokedeck.yml"),
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		if err := ensureConfigFile(); err != nil {
			return err
		}
		fmt.Println("Config file:", configFile)
		return nil
	},
}

var manCmd = &cobra.Command{
	Use:    "man",
	Short:  "Generate man page",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		manPage, err := mcobra.NewManPage(1, rootCmd)
		if err != nil {
			return fmt.Errorf("unable to generate man page: %w", err)
		}
		manPage = manPage.WithSection("Copyright", "(c) 2025 pokedeck contributors.\nReleased under MIT license.")
		fmt.Println(manPage.Build(roff.NewDocument()))
		return nil
	},
}

func ensureConfigFile() error {
	if configFile == "" {
		configFile = viper.GetViper().ConfigFileUsed()
		if err := os.MkdirAll(filepath.Dir(configFile), 0o755); err != nil { //nolint:gosec
			return fmt.Errorf("could not write configuration file: %w", err)
		}
	}

	if ext := path.Ext(configFile); ext != ".yaml" && ext != ".yml" {
		return fmt.Errorf("'%s' is not a supported configuration type: use '%s' or '%s'", ext, ".yaml", ".yml")
	}

	if _, err := os.Stat(configFile); errors.Is(err, fs.ErrNotExist) {
		// File doesn't exist yet, create all necessary directories and
		// write the default config file
		if err := os.MkdirAll(filepath.Dir(configFile), 0o700); err != nil {
			return fmt.Errorf("unable create directory: %w", err)
		}

		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("unable to create config file: %w", err)
		}
		defer func() { _ = f.Close() }()

		if _, err := f.WriteString(defaultConfig); err != nil {
			return fmt.Errorf("unable to write config file: %w", err)
		}
	} else if err != nil { // some other error occurred
		return fmt.Errorf("unable to stat config file: %w", err)
	}
	return nil
}
