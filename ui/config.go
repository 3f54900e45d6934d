package ui

// Config contains TUI-specific configuration, parsed from the
// environment.
type Config struct {
	Language    string `env:"POKEDECK_LANGUAGE" envDefault:"en"`
	EnableMouse bool   `env:"POKEDECK_ENABLE_MOUSE"`
	HomeDir     string `env:"HOME"`
}
