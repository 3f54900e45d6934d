// Package main provides the entry point for the pokedeck CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/muesli/reflow/wordwrap"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/dgnsrekt/pokedeck/internal/cache"
	"github.com/dgnsrekt/pokedeck/internal/layout"
	"github.com/dgnsrekt/pokedeck/internal/pokeapi"
	"github.com/dgnsrekt/pokedeck/ui"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string

	keywordStyle = lipgloss.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: "#04B575", Dark: "#ECFD65"})

	rootCmd = &cobra.Command{
		Use:   "pokedeck",
		Short: "Print Pokémon card decks as PDF",
		Long: paragraph(fmt.Sprintf(
			"\nFetch Pokémon from PokeAPI, %s them, and pack the cards onto printable PDF pages.",
			keyword("cache"),
		)),
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.NoArgs,
		RunE:             execute,
	}
)

func keyword(s string) string { return keywordStyle.Render(s) }

func paragraph(s string) string { return wordwrap.String(s, 80) }

// execute runs the interactive generation picker when attached to a
// terminal, otherwise prints usage.
func execute(cmd *cobra.Command, _ []string) error {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		return cmd.Help()
	}

	cfg, err := env.ParseAs[ui.Config]()
	if err != nil {
		return fmt.Errorf("error parsing config: %v", err)
	}

	gen, ok, err := ui.PickGeneration(cfg)
	if err != nil {
		return err
	}
	if !ok {
		return nil
	}

	return runGenerate(cmd, generateOptions{
		Generation: gen,
		Output:     fmt.Sprintf("pokedeck-gen%d.pdf", gen),
		Language:   cfg.Language,
	})
}

// newCacheManager builds the cache manager from the active config.
func newCacheManager() (*cache.Manager, error) {
	return cache.NewManager(cache.Config{
		Dir:              viper.GetString("cache.dir"),
		ImageDir:         viper.GetString("cache.image_dir"),
		MemoryMaxEntries: viper.GetInt("cache.memory_max_entries"),
		DiskMaxSizeMB:    viper.GetInt("cache.disk_max_mb"),
		MemoryTTL:        viper.GetDuration("ttl.memory"),
		PokemonTTL:       viper.GetDuration("ttl.pokemon"),
		SpeciesTTL:       viper.GetDuration("ttl.species"),
		GenerationTTL:    viper.GetDuration("ttl.generation"),
	})
}

// newAPIClient builds the PokeAPI client from the active config.
func newAPIClient(cm *cache.Manager) *pokeapi.Client {
	return pokeapi.NewClient(cm, pokeapi.ClientConfig{
		BaseURL:    viper.GetString("api.base_url"),
		Timeout:    viper.GetDuration("api.timeout"),
		MaxRetries: viper.GetInt("api.max_retries"),
		RateLimit:  viper.GetDuration("api.rate_limit"),
	})
}

// newLayoutEngine builds the layout engine from the active config,
// applying the paper, orientation and margin variants.
func newLayoutEngine(landscape, compact bool, paper string) (*layout.Engine, error) {
	cfg := layout.Config{
		PageWidth:  viper.GetFloat64("layout.page_width_mm"),
		PageHeight: viper.GetFloat64("layout.page_height_mm"),
		CardWidth:  viper.GetFloat64("layout.card_width_mm"),
		CardHeight: viper.GetFloat64("layout.card_height_mm"),
		Margin:     viper.GetFloat64("layout.margin_mm"),
		Spacing:    viper.GetFloat64("layout.spacing_mm"),
	}
	if paper == "Letter" {
		cfg.PageWidth, cfg.PageHeight = 215.9, 279.4
	}
	if landscape {
		cfg.PageWidth, cfg.PageHeight = cfg.PageHeight, cfg.PageWidth
	}
	if compact {
		cfg.Margin /= 2
	}
	return layout.NewEngine(cfg)
}

// setupLog routes logging to POKEDECK_LOGFILE when set, stderr
// otherwise, and returns a closer for the log sink.
func setupLog() (func() error, error) {
	log.SetOutput(os.Stderr)
	log.SetLevel(log.WarnLevel)
	if viper.GetBool("debug") {
		log.SetLevel(log.DebugLevel)
	}

	if path := os.Getenv("POKEDECK_LOGFILE"); path != "" {
		f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, fmt.Errorf("error setting up log file: %w", err)
		}
		log.SetOutput(f)
		log.SetLevel(log.DebugLevel)
		return f.Close, nil
	}

	return func() error { return nil }, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		os.Exit(1)
	}
	_ = closer()
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Cache defaults
	viper.SetDefault("cache.dir", "")
	viper.SetDefault("cache.image_dir", "")
	viper.SetDefault("cache.memory_max_entries", 1000)
	viper.SetDefault("cache.disk_max_mb", 100)
	viper.SetDefault("ttl.memory", time.Hour)
	viper.SetDefault("ttl.pokemon", 24*time.Hour)
	viper.SetDefault("ttl.species", 24*time.Hour)
	viper.SetDefault("ttl.generation", 48*time.Hour)

	// API defaults
	viper.SetDefault("api.base_url", "https://pokeapi.co/api/v2")
	viper.SetDefault("api.timeout", 30*time.Second)
	viper.SetDefault("api.max_retries", 3)
	viper.SetDefault("api.rate_limit", 100*time.Millisecond)
	viper.SetDefault("api.max_concurrent_images", 20)

	// Layout defaults: A4 portrait, poker-size cards
	viper.SetDefault("layout.page_width_mm", 210.0)
	viper.SetDefault("layout.page_height_mm", 297.0)
	viper.SetDefault("layout.card_width_mm", 63.0)
	viper.SetDefault("layout.card_height_mm", 88.0)
	viper.SetDefault("layout.margin_mm", 5.0)
	viper.SetDefault("layout.spacing_mm", 2.0)

	viper.SetDefault("language", "en")

	rootCmd.AddCommand(generateCmd, cacheCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "pokedeck")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "pokedeck")}, dirs...)
	}

	if c := os.Getenv("POKEDECK_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("pokedeck")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("pokedeck")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	if viper.ConfigFileUsed() == "" {
		configFile = filepath.Join(dirs[0], "pokedeck.yml")
	}
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
