// Package layout computes how fixed-size cards pack onto fixed-size
// pages. Everything here is pure math over an immutable configuration;
// callers can share one Engine across any number of goroutines.
package layout

import (
	"fmt"
	"math"
)

// ErrNonPositiveDimension is returned when a configuration carries a
// zero or negative page or card dimension.
var ErrNonPositiveDimension = fmt.Errorf("layout: non-positive dimension")

// Config holds the page geometry. All values share one linear unit,
// millimeters by convention.
type Config struct {
	PageWidth  float64
	PageHeight float64
	CardWidth  float64
	CardHeight float64
	Margin     float64
	// Spacing is the nominal inter-card gap used to decide how many
	// cards fit. The actual rendered gap is recomputed per layout to
	// distribute leftover space evenly.
	Spacing float64
}

// DefaultConfig returns the standard geometry: A4 portrait pages and
// poker-size cards.
func DefaultConfig() Config {
	return Config{
		PageWidth:  210,
		PageHeight: 297,
		CardWidth:  63,
		CardHeight: 88,
		Margin:     5,
		Spacing:    2,
	}
}

// Result is a computed page layout. It is derived per call and never
// mutated afterward.
type Result struct {
	Rows         int
	Cols         int
	CardsPerPage int
	TotalPages   int

	CardWidth  float64
	CardHeight float64
	Margin     float64

	// HorizontalSpacing and VerticalSpacing are the recomputed gaps.
	// Spacing is the smaller of the two, for callers that want one
	// uniform number.
	HorizontalSpacing float64
	VerticalSpacing   float64
	Spacing           float64

	UsableWidth  float64
	UsableHeight float64

	// CuttingGuides marks a layout padded for cutting guides.
	CuttingGuides bool
}

// Position is a card's top-left offset from the page's top-left
// margin corner.
type Position struct {
	X float64
	Y float64
}

// Engine computes layouts for one page geometry.
type Engine struct {
	cfg Config
}

// NewEngine validates the configuration and returns an engine.
func NewEngine(cfg Config) (*Engine, error) {
	for _, d := range []struct {
		name  string
		value float64
	}{
		{"page width", cfg.PageWidth},
		{"page height", cfg.PageHeight},
		{"card width", cfg.CardWidth},
		{"card height", cfg.CardHeight},
	} {
		if d.value <= 0 {
			return nil, fmt.Errorf("%w: %s %v", ErrNonPositiveDimension, d.name, d.value)
		}
	}
	return &Engine{cfg: cfg}, nil
}

// Config returns the engine's geometry.
func (e *Engine) Config() Config { return e.cfg }

// Calculate computes the optimal grid for the given number of cards.
// Zero cards yields a degenerate layout with zero pages. If even one
// card does not fit in the usable area, the grid is still forced to
// 1x1 and may overflow; Validate catches that case.
func (e *Engine) Calculate(totalCards int) Result {
	usableWidth := e.cfg.PageWidth - 2*e.cfg.Margin
	usableHeight := e.cfg.PageHeight - 2*e.cfg.Margin

	// The last card in a row needs no trailing gap, so one spacing
	// unit is credited back before dividing.
	cols := fitCount(usableWidth, e.cfg.CardWidth, e.cfg.Spacing)
	rows := fitCount(usableHeight, e.cfg.CardHeight, e.cfg.Spacing)

	cardsPerPage := rows * cols
	totalPages := 0
	if totalCards > 0 {
		totalPages = (totalCards + cardsPerPage - 1) / cardsPerPage
	}

	hSpacing := evenSpacing(usableWidth, e.cfg.CardWidth, cols)
	vSpacing := evenSpacing(usableHeight, e.cfg.CardHeight, rows)

	return Result{
		Rows:              rows,
		Cols:              cols,
		CardsPerPage:      cardsPerPage,
		TotalPages:        totalPages,
		CardWidth:         e.cfg.CardWidth,
		CardHeight:        e.cfg.CardHeight,
		Margin:            e.cfg.Margin,
		HorizontalSpacing: hSpacing,
		VerticalSpacing:   vSpacing,
		Spacing:           math.Min(hSpacing, vSpacing),
		UsableWidth:       usableWidth,
		UsableHeight:      usableHeight,
	}
}

// CardPositions returns the per-card placement offsets for one page,
// row-major from the top-left margin corner, using the recomputed
// spacing.
func (e *Engine) CardPositions(r Result) []Position {
	positions := make([]Position, 0, r.Rows*r.Cols)
	for row := 0; row < r.Rows; row++ {
		for col := 0; col < r.Cols; col++ {
			positions = append(positions, Position{
				X: float64(col) * (r.CardWidth + r.HorizontalSpacing),
				Y: float64(row) * (r.CardHeight + r.VerticalSpacing),
			})
		}
	}
	return positions
}

// Validate reports whether the computed layout actually fits the
// usable area.
func (e *Engine) Validate(totalCards int) bool {
	r := e.Calculate(totalCards)
	gridWidth := float64(r.Cols)*r.CardWidth + float64(r.Cols-1)*r.HorizontalSpacing
	gridHeight := float64(r.Rows)*r.CardHeight + float64(r.Rows-1)*r.VerticalSpacing
	return gridWidth <= r.UsableWidth+1e-9 && gridHeight <= r.UsableHeight+1e-9
}

// Utilization returns the share of the usable area covered by cards,
// as a percentage.
func (r Result) Utilization() float64 {
	usableArea := r.UsableWidth * r.UsableHeight
	if usableArea <= 0 {
		return 0
	}
	cardArea := float64(r.CardsPerPage) * r.CardWidth * r.CardHeight
	return cardArea / usableArea * 100
}

// Summary is a human-readable description of a layout.
type Summary struct {
	TotalCards   int
	CardsPerPage int
	TotalPages   int
	Grid         string
	CardSize     string
	Utilization  float64
	PrintTime    string
}

// Summarize builds a Summary for the given card count.
func (e *Engine) Summarize(totalCards int) Summary {
	r := e.Calculate(totalCards)
	return Summary{
		TotalCards:   totalCards,
		CardsPerPage: r.CardsPerPage,
		TotalPages:   r.TotalPages,
		Grid:         fmt.Sprintf("%d x %d", r.Rows, r.Cols),
		CardSize:     fmt.Sprintf("%g x %g mm", r.CardWidth, r.CardHeight),
		Utilization:  r.Utilization(),
		PrintTime:    estimatePrintTime(r.TotalPages),
	}
}

// Alternative is a named layout variant.
type Alternative struct {
	Name        string
	Description string
	Result      Result
}

// Alternatives computes the portrait, landscape and compact variants.
// Each is recomputed on a derived configuration; the engine itself is
// never mutated.
func (e *Engine) Alternatives(totalCards int) []Alternative {
	landscape := e.cfg
	landscape.PageWidth, landscape.PageHeight = e.cfg.PageHeight, e.cfg.PageWidth

	compact := e.cfg
	compact.Margin = e.cfg.Margin / 2

	return []Alternative{
		{
			Name:        "Optimal (Portrait)",
			Description: "Best fit for the configured page",
			Result:      e.Calculate(totalCards),
		},
		{
			Name:        "Landscape",
			Description: "Page rotated 90 degrees",
			Result:      (&Engine{cfg: landscape}).Calculate(totalCards),
		},
		{
			Name:        "Compact",
			Description: "Halved margins, more cards per page",
			Result:      (&Engine{cfg: compact}).Calculate(totalCards),
		},
	}
}

// Cutting-guide padding, in the configured unit.
const (
	cuttingMarginPad  = 5
	cuttingSpacingPad = 3
)

// CuttingLayout recomputes the layout with extra margin and spacing
// reserved for cutting guides.
func (e *Engine) CuttingLayout(totalCards int) Result {
	cfg := e.cfg
	cfg.Margin += cuttingMarginPad
	cfg.Spacing += cuttingSpacingPad

	r := (&Engine{cfg: cfg}).Calculate(totalCards)
	r.CuttingGuides = true
	return r
}

// ForPaperSize recomputes the layout for a named paper size. Known
// sizes are "A4" (the default geometry) and "Letter"; anything else
// falls back to the engine's own page.
func (e *Engine) ForPaperSize(totalCards int, paper string) Result {
	if paper != "Letter" {
		return e.Calculate(totalCards)
	}
	cfg := e.cfg
	cfg.PageWidth, cfg.PageHeight = 215.9, 279.4
	return (&Engine{cfg: cfg}).Calculate(totalCards)
}

// fitCount returns how many card-plus-gap units fit in the usable
// span, never less than one.
func fitCount(usable, card, spacing float64) int {
	n := int(math.Floor((usable + spacing) / (card + spacing)))
	if n < 1 {
		return 1
	}
	return n
}

// evenSpacing distributes the leftover span evenly between n cards.
func evenSpacing(usable, card float64, n int) float64 {
	if n <= 1 {
		return 0
	}
	return (usable - float64(n)*card) / float64(n-1)
}

// estimatePrintTime gives a rough duration for color printing, about
// half a minute per page.
func estimatePrintTime(pages int) string {
	minutes := float64(pages) * 0.5
	switch {
	case minutes < 1:
		return "< 1 minute"
	case minutes < 60:
		return fmt.Sprintf("%d minutes", int(minutes))
	default:
		return fmt.Sprintf("%dh %dm", int(minutes)/60, int(minutes)%60)
	}
}
