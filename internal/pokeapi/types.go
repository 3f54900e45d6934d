package pokeapi

import "fmt"

// NamedResource is PokeAPI's ubiquitous {name, url} pair.
type NamedResource struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

// PokemonType is one slot of a Pokémon's type list.
type PokemonType struct {
	Slot int           `json:"slot"`
	Type NamedResource `json:"type"`
}

// PokemonStat is one base stat entry.
type PokemonStat struct {
	BaseStat int           `json:"base_stat"`
	Effort   int           `json:"effort"`
	Stat     NamedResource `json:"stat"`
}

// PokemonAbility is one ability entry.
type PokemonAbility struct {
	Slot     int           `json:"slot"`
	IsHidden bool          `json:"is_hidden"`
	Ability  NamedResource `json:"ability"`
}

// Sprites holds the sprite URLs we care about.
type Sprites struct {
	FrontDefault string `json:"front_default"`
	Other        struct {
		OfficialArtwork struct {
			FrontDefault string `json:"front_default"`
		} `json:"official-artwork"`
	} `json:"other"`
}

// Pokemon is the record returned by /pokemon/{id}.
type Pokemon struct {
	ID             int              `json:"id"`
	Name           string           `json:"name"`
	Height         int              `json:"height"` // decimeters
	Weight         int              `json:"weight"` // hectograms
	BaseExperience int              `json:"base_experience"`
	Types          []PokemonType    `json:"types"`
	Abilities      []PokemonAbility `json:"abilities"`
	Stats          []PokemonStat    `json:"stats"`
	Sprites        Sprites          `json:"sprites"`
}

// HeightMeters converts the API's decimeters to meters.
func (p *Pokemon) HeightMeters() float64 { return float64(p.Height) / 10 }

// WeightKg converts the API's hectograms to kilograms.
func (p *Pokemon) WeightKg() float64 { return float64(p.Weight) / 10 }

// PrimaryType returns the first type name, or "" when untyped.
func (p *Pokemon) PrimaryType() string {
	if len(p.Types) == 0 {
		return ""
	}
	return p.Types[0].Type.Name
}

// SecondaryType returns the second type name, or "".
func (p *Pokemon) SecondaryType() string {
	if len(p.Types) < 2 {
		return ""
	}
	return p.Types[1].Type.Name
}

// Stat returns the named base stat, zero if absent.
func (p *Pokemon) Stat(name string) int {
	for _, s := range p.Stats {
		if s.Stat.Name == name {
			return s.BaseStat
		}
	}
	return 0
}

// ArtworkURL returns the official artwork URL, falling back to the
// sprite repository pattern when the API record carries none.
func (p *Pokemon) ArtworkURL() string {
	if url := p.Sprites.Other.OfficialArtwork.FrontDefault; url != "" {
		return url
	}
	return fmt.Sprintf("https://raw.githubusercontent.com/PokeAPI/sprites/master/sprites/pokemon/other/official-artwork/%d.png", p.ID)
}

// FlavorTextEntry is one localized flavor text.
type FlavorTextEntry struct {
	FlavorText string        `json:"flavor_text"`
	Language   NamedResource `json:"language"`
}

// GenusEntry is one localized genus ("Seed Pokémon").
type GenusEntry struct {
	Genus    string        `json:"genus"`
	Language NamedResource `json:"language"`
}

// LocalizedName is one localized species name.
type LocalizedName struct {
	Name     string        `json:"name"`
	Language NamedResource `json:"language"`
}

// Species is the record returned by /pokemon-species/{id}.
type Species struct {
	ID                int               `json:"id"`
	Name              string            `json:"name"`
	FlavorTextEntries []FlavorTextEntry `json:"flavor_text_entries"`
	Genera            []GenusEntry      `json:"genera"`
	Names             []LocalizedName   `json:"names"`
}

// FlavorText returns the first flavor text in the given language.
func (s *Species) FlavorText(lang string) string {
	for _, e := range s.FlavorTextEntries {
		if e.Language.Name == lang {
			return e.FlavorText
		}
	}
	return ""
}

// Genus returns the genus in the given language.
func (s *Species) Genus(lang string) string {
	for _, e := range s.Genera {
		if e.Language.Name == lang {
			return e.Genus
		}
	}
	return ""
}

// LocalName returns the species name in the given language, falling
// back to the canonical name.
func (s *Species) LocalName(lang string) string {
	for _, e := range s.Names {
		if e.Language.Name == lang {
			return e.Name
		}
	}
	return s.Name
}

// Generation is the record returned by /generation/{id}.
type Generation struct {
	ID             int             `json:"id"`
	Name           string          `json:"name"`
	PokemonSpecies []NamedResource `json:"pokemon_species"`
}

// IDRange is an inclusive span of Pokémon IDs.
type IDRange struct {
	First int
	Last  int
}

// GenerationRanges maps each generation to its Pokémon ID span.
var GenerationRanges = map[int]IDRange{
	1: {1, 151},
	2: {152, 251},
	3: {252, 386},
	4: {387, 493},
	5: {494, 649},
	6: {650, 721},
	7: {722, 809},
	8: {810, 905},
	9: {906, 1025},
}

// GenerationNames maps each generation to its display name.
var GenerationNames = map[int]string{
	1: "Kanto (Gen I)",
	2: "Johto (Gen II)",
	3: "Hoenn (Gen III)",
	4: "Sinnoh (Gen IV)",
	5: "Unova (Gen V)",
	6: "Kalos (Gen VI)",
	7: "Alola (Gen VII)",
	8: "Galar (Gen VIII)",
	9: "Paldea (Gen IX)",
}

// MaxPokemonID is the highest known Pokémon ID.
const MaxPokemonID = 1025

// MaxGeneration is the highest known generation.
const MaxGeneration = 9
