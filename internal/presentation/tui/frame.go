package tui

import (
	"cmp"
	"fmt"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/muesli/termenv"
)

// Palette maps run flags to colors. Earlier entries win.
var Palette = []struct {
	Flag  domain.Flag
	Color string
}{
	{domain.FlagFound, "#22c55e"},
	{domain.FlagPath, "#eab308"},
	{domain.FlagComparing, "#ef4444"},
	{domain.FlagProcessing, "#f97316"},
	{domain.FlagSorted, "#10b981"},
	{domain.FlagCalculated, "#8b5cf6"},
	{domain.FlagVisited, "#3b82f6"},
	{domain.FlagStart, "#06b6d4"},
	{domain.FlagTarget, "#ec4899"},
	{domain.FlagWall, "#6b7280"},
}

// FrameRenderer draws frames as terminal text.
type FrameRenderer struct {
	profile termenv.Profile
	width   int
}

// NewFrameRenderer creates a renderer for the given color profile and
// terminal width.
func NewFrameRenderer(p termenv.Profile, width int) *FrameRenderer {
	if width <= 0 {
		width = DefaultWidth
	}
	return &FrameRenderer{profile: p, width: width}
}

// Render draws f according to its family.
func (r *FrameRenderer) Render(f *domain.Frame) string {
	if f == nil || len(f.Elements) == 0 {
		return "(empty)"
	}
	switch f.Family {
	case domain.FamilyArray:
		return r.bars(f)
	case domain.FamilyGrid:
		return r.grid(f)
	case domain.FamilyBoard:
		return r.board(f)
	case domain.FamilyTable:
		return r.table(f)
	case domain.FamilyTree:
		return r.tree(f)
	case domain.FamilyGraph:
		return r.graph(f)
	default:
		return r.list(f)
	}
}

func (r *FrameRenderer) paint(s string, flags domain.Flag) string {
	for _, p := range Palette {
		if flags.Has(p.Flag) {
			return r.profile.String(s).Foreground(r.profile.Color(p.Color)).String()
		}
	}
	return s
}

func num(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func (r *FrameRenderer) bars(f *domain.Frame) string {
	peak := 0.0
	for _, e := range f.Elements {
		peak = max(peak, math.Abs(e.Value))
	}
	span := max(r.width-16, 10)
	var b strings.Builder
	for i, e := range f.Elements {
		n := 0
		if peak > 0 {
			n = max(int(math.Round(math.Abs(e.Value)/peak*float64(span))), 1)
		}
		bar := r.paint(strings.Repeat("█", n), e.Flags)
		fmt.Fprintf(&b, "%4d %s %s", i, bar, num(e.Value))
		if i < len(f.Elements)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func cellGlyph(fl domain.Flag) string {
	switch {
	case fl.Has(domain.FlagWall):
		return "█"
	case fl.Has(domain.FlagStart):
		return "S"
	case fl.Has(domain.FlagTarget):
		return "T"
	case fl.Has(domain.FlagPath):
		return "*"
	case fl.Has(domain.FlagProcessing):
		return "@"
	case fl.Has(domain.FlagVisited):
		return "·"
	default:
		return " "
	}
}

func (r *FrameRenderer) grid(f *domain.Frame) string {
	var b strings.Builder
	b.WriteString("┌" + strings.Repeat("─", f.Cols) + "┐\n")
	for row := range f.Rows {
		b.WriteString("│")
		for col := range f.Cols {
			e := f.Elements[row*f.Cols+col]
			b.WriteString(r.paint(cellGlyph(e.Flags), e.Flags))
		}
		b.WriteString("│\n")
	}
	b.WriteString("└" + strings.Repeat("─", f.Cols) + "┘")
	return b.String()
}

func (r *FrameRenderer) board(f *domain.Frame) string {
	var b strings.Builder
	for row := range 3 {
		cells := make([]string, 3)
		for col := range 3 {
			i := row*3 + col
			e := f.Elements[i]
			mark := e.Label
			if mark == "" {
				mark = strconv.Itoa(i)
			}
			cells[col] = " " + r.paint(mark, e.Flags) + " "
		}
		b.WriteString(strings.Join(cells, "│"))
		if row < 2 {
			b.WriteString("\n───┼───┼───\n")
		}
	}
	return b.String()
}

func (r *FrameRenderer) table(f *domain.Frame) string {
	tw := table.NewWriter()
	tw.SetStyle(table.StyleLight)
	rowHeads := f.Headers["rows"]
	if cols := f.Headers["cols"]; len(cols) > 0 {
		hdr := table.Row{""}
		for _, c := range cols {
			hdr = append(hdr, c)
		}
		tw.AppendHeader(hdr)
	}
	for row := range f.Rows {
		line := table.Row{""}
		if row < len(rowHeads) {
			line[0] = rowHeads[row]
		}
		for col := range f.Cols {
			e := f.Elements[row*f.Cols+col]
			line = append(line, r.paint(num(e.Value), e.Flags))
		}
		tw.AppendRow(line)
	}
	return tw.Render()
}

func (r *FrameRenderer) tree(f *domain.Frame) string {
	nodes := slices.Clone(f.Elements)
	slices.SortFunc(nodes, func(a, b domain.Element) int { return cmp.Compare(a.X, b.X) })
	var b strings.Builder
	for i, e := range nodes {
		fmt.Fprintf(&b, "%s%s", strings.Repeat("  ", int(e.Y)), r.paint(num(e.Value), e.Flags))
		if i < len(nodes)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (r *FrameRenderer) graph(f *domain.Frame) string {
	out := make(map[string][]string, len(f.Elements))
	for _, e := range f.Edges {
		out[e.From] = append(out[e.From], fmt.Sprintf("%s(%s)", e.To, num(e.Weight)))
	}
	var b strings.Builder
	for i, e := range f.Elements {
		fmt.Fprintf(&b, "%s → %s", r.paint(e.ID, e.Flags), strings.Join(out[e.ID], " "))
		if names := e.Flags.Names(); len(names) > 0 {
			fmt.Fprintf(&b, "  [%s]", strings.Join(names, ","))
		}
		if i < len(f.Elements)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (r *FrameRenderer) list(f *domain.Frame) string {
	var b strings.Builder
	for i, e := range f.Elements {
		fmt.Fprintf(&b, "%3s %8.3f %s", e.ID, e.Value, r.paint(e.Label, e.Flags))
		if i < len(f.Elements)-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
