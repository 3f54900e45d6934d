package main

import (
	"errors"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/dgnsrekt/pokedeck/internal/pdf"
	"github.com/dgnsrekt/pokedeck/internal/pokeapi"
)

var (
	genNumber     int
	genIDs        []int
	genOutput     string
	genLanguage   string
	genLandscape  bool
	genCompact    bool
	genCutGuides  bool
	genPaper      string
	genForceImage bool

	generateCmd = &cobra.Command{
		Use:   "generate",
		Short: "Fetch Pokémon and generate a card PDF",
		Example: paragraph(
			"pokedeck generate --generation 1\npokedeck generate --ids 1,4,7,25 --output starters.pdf",
		),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runGenerate(cmd, generateOptions{
				Generation:    genNumber,
				IDs:           genIDs,
				Output:        genOutput,
				Language:      genLanguage,
				Landscape:     genLandscape,
				Compact:       genCompact,
				CuttingGuides: genCutGuides,
				Paper:         genPaper,
				ForceImages:   genForceImage,
			})
		},
	}

	summaryLabel = lipgloss.NewStyle().Bold(true)
)

type generateOptions struct {
	Generation    int
	IDs           []int
	Output        string
	Language      string
	Landscape     bool
	Compact       bool
	CuttingGuides bool
	Paper         string
	ForceImages   bool
}

func runGenerate(cmd *cobra.Command, opts generateOptions) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if opts.Language == "" {
		opts.Language = viper.GetString("language")
	}
	if opts.Output == "" {
		opts.Output = "pokedeck.pdf"
	}

	ids, err := resolveIDs(opts)
	if err != nil {
		return err
	}

	cm, err := newCacheManager()
	if err != nil {
		return err
	}
	client := newAPIClient(cm)

	if opts.Generation != 0 {
		// Warms the generation listing; the card batch itself comes
		// from the ID range.
		if g, err := client.Generation(ctx, opts.Generation); err == nil {
			log.Debug("Generation listing fetched", "name", g.Name, "species", len(g.PokemonSpecies))
		} else {
			log.Warn("Could not fetch generation listing", "gen", opts.Generation, "err", err)
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Fetching %d Pokémon...\n", len(ids))

	pokemon := make([]*pokeapi.Pokemon, 0, len(ids))
	species := make(map[int]*pokeapi.Species, len(ids))
	for _, id := range ids {
		p, err := client.Pokemon(ctx, id)
		if err != nil {
			if errors.Is(err, pokeapi.ErrNotFound) {
				log.Warn("Pokémon not found, skipping", "id", id)
				continue
			}
			return err
		}
		pokemon = append(pokemon, p)

		s, err := client.Species(ctx, id)
		if err != nil {
			log.Warn("Species data unavailable", "id", id, "err", err)
		} else {
			species[id] = s
		}
	}
	if len(pokemon) == 0 {
		return errors.New("no Pokémon to lay out")
	}

	fmt.Fprintln(cmd.OutOrStdout(), "Downloading artwork...")

	downloader := pokeapi.NewImageDownloader(cm,
		viper.GetDuration("api.timeout"),
		viper.GetInt("api.max_retries"),
		viper.GetInt("api.max_concurrent_images"))
	if opts.ForceImages {
		for _, p := range pokemon {
			if _, err := downloader.ArtworkPath(ctx, p, true); err != nil {
				log.Warn("Artwork download failed", "id", p.ID, "err", err)
			}
		}
	}
	paths := downloader.DownloadAll(ctx, pokemon)

	cards := make([]pdf.Card, 0, len(pokemon))
	for _, p := range pokemon {
		cards = append(cards, pdf.Card{
			Pokemon:   p,
			Species:   species[p.ID],
			ImagePath: paths[p.ID],
			Language:  opts.Language,
		})
	}

	engine, err := newLayoutEngine(opts.Landscape, opts.Compact, opts.Paper)
	if err != nil {
		return err
	}
	if !engine.Validate(len(cards)) {
		log.Warn("Cards overflow the usable page area with the current geometry")
	}

	result, err := pdf.NewBuilder(engine).Build(cards, opts.Output, pdf.Options{
		CuttingGuides: opts.CuttingGuides,
	})
	if err != nil {
		return err
	}

	summary := engine.Summarize(result.TotalCards)
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s %s\n", summaryLabel.Render("Wrote"), result.OutputPath)
	fmt.Fprintf(out, "%s %d cards on %d pages (%s grid, %.0f%% page use)\n",
		summaryLabel.Render("Layout"), result.TotalCards, result.TotalPages, summary.Grid, summary.Utilization)
	fmt.Fprintf(out, "%s %.1f MB in %s, about %s to print\n",
		summaryLabel.Render("Output"), result.FileSizeMB, result.Elapsed.Round(10*time.Millisecond), summary.PrintTime)
	return nil
}

// resolveIDs turns the generation/ids flags into a concrete ID list.
func resolveIDs(opts generateOptions) ([]int, error) {
	switch {
	case len(opts.IDs) > 0 && opts.Generation != 0:
		return nil, errors.New("use either --generation or --ids, not both")
	case len(opts.IDs) > 0:
		for _, id := range opts.IDs {
			if err := pokeapi.ValidatePokemonID(id); err != nil {
				return nil, err
			}
		}
		return opts.IDs, nil
	case opts.Generation != 0:
		return pokeapi.GenerationIDs(opts.Generation)
	default:
		return nil, errors.New("specify --generation or --ids")
	}
}

func init() {
	generateCmd.Flags().IntVarP(&genNumber, "generation", "g", 0, "generation number (1-9)")
	generateCmd.Flags().IntSliceVar(&genIDs, "ids", nil, "explicit Pokémon IDs, comma-separated")
	generateCmd.Flags().StringVarP(&genOutput, "output", "o", "", "output PDF path (default pokedeck.pdf)")
	generateCmd.Flags().StringVarP(&genLanguage, "language", "l", "", "card text language (en, ja, ...)")
	generateCmd.Flags().BoolVar(&genLandscape, "landscape", false, "rotate the page 90 degrees")
	generateCmd.Flags().BoolVar(&genCompact, "compact", false, "halve the page margins")
	generateCmd.Flags().BoolVar(&genCutGuides, "cutting-guides", false, "add cutting guides (wider margins)")
	generateCmd.Flags().StringVar(&genPaper, "paper", "A4", "paper size (A4 or Letter)")
	generateCmd.Flags().BoolVar(&genForceImage, "force-images", false, "re-download cached artwork")
}
