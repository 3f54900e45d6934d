// Package pdf renders composited Pokémon cards onto paged PDF output.
// Page geometry comes verbatim from the layout engine; this package
// only issues drawing calls.
package pdf

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-pdf/fpdf"

	"github.com/dgnsrekt/pokedeck/internal/layout"
	"github.com/dgnsrekt/pokedeck/internal/pokeapi"
)

// Card is one card's worth of assembled data, ready to draw.
type Card struct {
	Pokemon   *pokeapi.Pokemon
	Species   *pokeapi.Species
	ImagePath string // local artwork path, may be empty
	Language  string // flavor text language, default "en"
}

// Options control a build.
type Options struct {
	CuttingGuides bool
}

// Result summarizes a finished build.
type Result struct {
	OutputPath string
	TotalCards int
	TotalPages int
	Elapsed    time.Duration
	FileSizeMB float64
}

// Builder renders card batches into PDF files for one layout engine.
type Builder struct {
	engine *layout.Engine
}

// NewBuilder creates a builder over the given layout engine.
func NewBuilder(engine *layout.Engine) *Builder {
	return &Builder{engine: engine}
}

// Build lays the cards out and writes the PDF to outputPath.
func (b *Builder) Build(cards []Card, outputPath string, opts Options) (*Result, error) {
	start := time.Now()

	r := b.engine.Calculate(len(cards))
	if opts.CuttingGuides {
		r = b.engine.CuttingLayout(len(cards))
	}
	positions := b.engine.CardPositions(r)

	cfg := b.engine.Config()
	doc := fpdf.NewCustom(&fpdf.InitType{
		UnitStr: "mm",
		Size:    fpdf.SizeType{Wd: cfg.PageWidth, Ht: cfg.PageHeight},
	})
	doc.SetAutoPageBreak(false, 0)
	doc.SetTitle("Pokédeck cards", true)

	for page := 0; page < r.TotalPages; page++ {
		doc.AddPage()

		if opts.CuttingGuides {
			drawCuttingGuides(doc, r, positions)
		}

		for slot, pos := range positions {
			idx := page*r.CardsPerPage + slot
			if idx >= len(cards) {
				break
			}
			drawCard(doc, cards[idx], r, pos)
		}
	}

	if err := doc.OutputFileAndClose(outputPath); err != nil {
		return nil, fmt.Errorf("pdf: writing %s: %w", outputPath, err)
	}

	result := &Result{
		OutputPath: outputPath,
		TotalCards: len(cards),
		TotalPages: r.TotalPages,
		Elapsed:    time.Since(start),
	}
	if info, err := os.Stat(outputPath); err == nil {
		result.FileSizeMB = float64(info.Size()) / (1024 * 1024)
	}
	return result, nil
}

// drawCard renders one card at its layout position. Positions are
// margin-origin offsets; the margin shift happens here.
func drawCard(doc *fpdf.Fpdf, card Card, r layout.Result, pos layout.Position) {
	x := r.Margin + pos.X
	y := r.Margin + pos.Y
	w := r.CardWidth
	h := r.CardHeight

	// Frame
	doc.SetDrawColor(40, 40, 40)
	doc.SetLineWidth(0.4)
	doc.SetFillColor(255, 255, 255)
	doc.Rect(x, y, w, h, "FD")

	const pad = 3.0

	// Artwork occupies the upper half of the card
	artH := h * 0.5
	if card.ImagePath != "" {
		doc.ImageOptions(card.ImagePath, x+pad, y+pad, w-2*pad, artH-pad, false,
			fpdf.ImageOptions{ImageType: "PNG"}, 0, "")
	} else {
		log.Debug("Card has no artwork", "id", card.Pokemon.ID)
	}

	textY := y + artH + pad

	// Name and Pokédex number
	doc.SetFont("Helvetica", "B", 11)
	doc.SetTextColor(0, 0, 0)
	doc.SetXY(x+pad, textY)
	doc.CellFormat(w-2*pad, 5, fmt.Sprintf("%s  #%03d", displayName(card), card.Pokemon.ID),
		"", 0, "L", false, 0, "")
	textY += 6

	// Types and genus
	doc.SetFont("Helvetica", "I", 8)
	typeLine := title(card.Pokemon.PrimaryType())
	if t := card.Pokemon.SecondaryType(); t != "" {
		typeLine += " / " + title(t)
	}
	if card.Species != nil {
		if genus := card.Species.Genus(lang(card)); genus != "" {
			typeLine += "  -  " + genus
		}
	}
	doc.SetXY(x+pad, textY)
	doc.CellFormat(w-2*pad, 4, typeLine, "", 0, "L", false, 0, "")
	textY += 5

	// Base stats
	doc.SetFont("Helvetica", "", 8)
	stats := fmt.Sprintf("HP %d   ATK %d   DEF %d   SPD %d",
		card.Pokemon.Stat("hp"), card.Pokemon.Stat("attack"),
		card.Pokemon.Stat("defense"), card.Pokemon.Stat("speed"))
	doc.SetXY(x+pad, textY)
	doc.CellFormat(w-2*pad, 4, stats, "", 0, "L", false, 0, "")
	textY += 5

	// Height and weight
	doc.SetXY(x+pad, textY)
	doc.CellFormat(w-2*pad, 4, fmt.Sprintf("%.1f m   %.1f kg",
		card.Pokemon.HeightMeters(), card.Pokemon.WeightKg()),
		"", 0, "L", false, 0, "")
	textY += 6

	// Flavor text, wrapped to the remaining card body
	if card.Species != nil {
		if flavor := cleanFlavorText(card.Species.FlavorText(lang(card))); flavor != "" {
			doc.SetFont("Helvetica", "", 7)
			doc.SetXY(x+pad, textY)
			doc.MultiCell(w-2*pad, 3.2, flavor, "", "L", false)
		}
	}
}

// drawCuttingGuides draws short corner ticks around every card slot.
func drawCuttingGuides(doc *fpdf.Fpdf, r layout.Result, positions []layout.Position) {
	const tick = 3.0

	doc.SetDrawColor(150, 150, 150)
	doc.SetLineWidth(0.1)

	for _, pos := range positions {
		x := r.Margin + pos.X
		y := r.Margin + pos.Y
		for _, corner := range [][2]float64{
			{x, y},
			{x + r.CardWidth, y},
			{x, y + r.CardHeight},
			{x + r.CardWidth, y + r.CardHeight},
		} {
			doc.Line(corner[0]-tick, corner[1], corner[0]+tick, corner[1])
			doc.Line(corner[0], corner[1]-tick, corner[0], corner[1]+tick)
		}
	}
}

func displayName(card Card) string {
	name := card.Pokemon.Name
	if card.Species != nil {
		name = card.Species.LocalName(lang(card))
	}
	return title(name)
}

// title uppercases the first letter; API names are lowercase.
func title(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func lang(card Card) string {
	if card.Language == "" {
		return "en"
	}
	return card.Language
}

// cleanFlavorText strips the control characters PokeAPI embeds in
// flavor text.
func cleanFlavorText(s string) string {
	s = strings.ReplaceAll(s, "\f", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.Join(strings.Fields(s), " ")
}
