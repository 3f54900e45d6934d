package layout

import (
	"errors"
	"math"
	"testing"
)

func newDefaultEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}
	return engine
}

func TestCalculate_DefaultGrid(t *testing.T) {
	engine := newDefaultEngine(t)
	r := engine.Calculate(20)

	// A4 with 5mm margins and 63x88 cards packs a 3x3 grid.
	if r.Cols != 3 || r.Rows != 3 {
		t.Errorf("grid = %dx%d, want 3x3", r.Rows, r.Cols)
	}
	if r.CardsPerPage != 9 {
		t.Errorf("CardsPerPage = %d, want 9", r.CardsPerPage)
	}
	if r.TotalPages != 3 {
		t.Errorf("TotalPages = %d for 20 cards, want 3", r.TotalPages)
	}
	if r.UsableWidth != 200 || r.UsableHeight != 287 {
		t.Errorf("usable area = %gx%g, want 200x287", r.UsableWidth, r.UsableHeight)
	}
}

func TestCalculate_PageCounts(t *testing.T) {
	engine := newDefaultEngine(t)

	cases := []struct {
		cards int
		pages int
	}{
		{0, 0},
		{1, 1},
		{9, 1},
		{10, 2},
		{18, 2},
		{19, 3},
		{151, 17},
	}
	for _, tc := range cases {
		if got := engine.Calculate(tc.cards).TotalPages; got != tc.pages {
			t.Errorf("Calculate(%d).TotalPages = %d, want %d", tc.cards, got, tc.pages)
		}
	}
}

func TestCalculate_EvenSpacing(t *testing.T) {
	engine := newDefaultEngine(t)
	r := engine.Calculate(9)

	// Leftover width 200-3*63=11 split across 2 gaps.
	if math.Abs(r.HorizontalSpacing-5.5) > 1e-9 {
		t.Errorf("HorizontalSpacing = %g, want 5.5", r.HorizontalSpacing)
	}
	// Leftover height 287-3*88=23 split across 2 gaps.
	if math.Abs(r.VerticalSpacing-11.5) > 1e-9 {
		t.Errorf("VerticalSpacing = %g, want 11.5", r.VerticalSpacing)
	}
	if r.Spacing != r.HorizontalSpacing {
		t.Errorf("Spacing = %g, want the smaller gap %g", r.Spacing, r.HorizontalSpacing)
	}
}

func TestCalculate_Idempotent(t *testing.T) {
	engine := newDefaultEngine(t)

	first := engine.Calculate(20)
	second := engine.Calculate(20)
	if first != second {
		t.Error("repeated Calculate calls should return identical results")
	}
}

func TestCalculate_OversizedCardForcedGrid(t *testing.T) {
	engine, err := NewEngine(Config{
		PageWidth:  100,
		PageHeight: 100,
		CardWidth:  300,
		CardHeight: 300,
		Margin:     5,
		Spacing:    2,
	})
	if err != nil {
		t.Fatal(err)
	}

	r := engine.Calculate(1)
	if r.Rows != 1 || r.Cols != 1 {
		t.Errorf("oversized card grid = %dx%d, want forced 1x1", r.Rows, r.Cols)
	}
	if engine.Validate(1) {
		t.Error("Validate should reject a layout that overflows the page")
	}
}

func TestNewEngine_RejectsNonPositiveDimensions(t *testing.T) {
	bad := []Config{
		{PageWidth: 0, PageHeight: 297, CardWidth: 63, CardHeight: 88},
		{PageWidth: 210, PageHeight: -1, CardWidth: 63, CardHeight: 88},
		{PageWidth: 210, PageHeight: 297, CardWidth: 0, CardHeight: 88},
		{PageWidth: 210, PageHeight: 297, CardWidth: 63, CardHeight: 0},
	}
	for i, cfg := range bad {
		if _, err := NewEngine(cfg); !errors.Is(err, ErrNonPositiveDimension) {
			t.Errorf("case %d: NewEngine error = %v, want ErrNonPositiveDimension", i, err)
		}
	}
}

func TestCardPositions(t *testing.T) {
	engine := newDefaultEngine(t)
	r := engine.Calculate(9)
	positions := engine.CardPositions(r)

	if len(positions) != 9 {
		t.Fatalf("got %d positions, want 9", len(positions))
	}
	if positions[0] != (Position{0, 0}) {
		t.Errorf("first position = %+v, want origin", positions[0])
	}

	// Row-major: the second position moves right, the fourth wraps to
	// the next row.
	if positions[1].Y != 0 || positions[1].X <= positions[0].X {
		t.Errorf("second position = %+v, want same row advanced right", positions[1])
	}
	if positions[3].X != 0 || positions[3].Y <= positions[0].Y {
		t.Errorf("fourth position = %+v, want next row at left edge", positions[3])
	}

	// Every card must sit inside the usable area.
	for i, p := range positions {
		if p.X+r.CardWidth > r.UsableWidth+1e-9 || p.Y+r.CardHeight > r.UsableHeight+1e-9 {
			t.Errorf("position %d (%+v) overflows the usable area", i, p)
		}
	}
}

func TestValidate_DefaultFits(t *testing.T) {
	engine := newDefaultEngine(t)
	if !engine.Validate(20) {
		t.Error("the default geometry should validate")
	}
}

func TestUtilization(t *testing.T) {
	engine := newDefaultEngine(t)
	r := engine.Calculate(9)

	// 9 cards of 63x88 on a 200x287 usable area.
	want := 9.0 * 63 * 88 / (200 * 287) * 100
	if math.Abs(r.Utilization()-want) > 1e-9 {
		t.Errorf("Utilization = %g, want %g", r.Utilization(), want)
	}
}

func TestSummarize(t *testing.T) {
	engine := newDefaultEngine(t)
	s := engine.Summarize(20)

	if s.TotalCards != 20 || s.TotalPages != 3 {
		t.Errorf("summary counts = %d cards / %d pages, want 20 / 3", s.TotalCards, s.TotalPages)
	}
	if s.Grid != "3 x 3" {
		t.Errorf("Grid = %q, want \"3 x 3\"", s.Grid)
	}
	if s.CardSize != "63 x 88 mm" {
		t.Errorf("CardSize = %q", s.CardSize)
	}
	if s.PrintTime == "" {
		t.Error("PrintTime should be populated")
	}
}

func TestAlternatives(t *testing.T) {
	engine := newDefaultEngine(t)
	before := engine.Config()

	alts := engine.Alternatives(20)
	if len(alts) != 3 {
		t.Fatalf("got %d alternatives, want 3", len(alts))
	}

	portrait, landscape, compact := alts[0].Result, alts[1].Result, alts[2].Result
	if portrait != engine.Calculate(20) {
		t.Error("first alternative should match the engine's own layout")
	}
	if landscape.UsableWidth != 287 || landscape.UsableHeight != 200 {
		t.Errorf("landscape usable area = %gx%g, want swapped 287x200", landscape.UsableWidth, landscape.UsableHeight)
	}
	if compact.Margin != before.Margin/2 {
		t.Errorf("compact margin = %g, want %g", compact.Margin, before.Margin/2)
	}
	if compact.CardsPerPage < portrait.CardsPerPage {
		t.Error("compact should never fit fewer cards than portrait")
	}

	if engine.Config() != before {
		t.Error("Alternatives must not mutate the engine")
	}
}

func TestCuttingLayout(t *testing.T) {
	engine := newDefaultEngine(t)
	r := engine.CuttingLayout(20)

	if !r.CuttingGuides {
		t.Error("CuttingGuides should be marked")
	}
	if r.Margin != 10 {
		t.Errorf("cutting margin = %g, want 10", r.Margin)
	}
	// The padded geometry still fits a 3x2 grid: usable 190x277 with
	// 5mm nominal spacing.
	if r.Cols != 2 || r.Rows != 3 {
		t.Errorf("cutting grid = %dx%d, want 3x2", r.Rows, r.Cols)
	}
}

func TestForPaperSize(t *testing.T) {
	engine := newDefaultEngine(t)

	letter := engine.ForPaperSize(20, "Letter")
	if letter.UsableWidth != 215.9-10 || letter.UsableHeight != 279.4-10 {
		t.Errorf("Letter usable area = %gx%g", letter.UsableWidth, letter.UsableHeight)
	}

	if engine.ForPaperSize(20, "A4") != engine.Calculate(20) {
		t.Error("A4 should match the engine's own geometry")
	}
	if engine.ForPaperSize(20, "unknown") != engine.Calculate(20) {
		t.Error("unknown paper should fall back to the engine's geometry")
	}
}
