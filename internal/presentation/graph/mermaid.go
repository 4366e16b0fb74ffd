package graph

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/aretw0/stepwise/pkg/domain"
)

// classes lists the Mermaid classes in precedence order. A node takes the
// first class whose flag it carries.
var classes = []struct {
	flag  domain.Flag
	name  string
	style string
}{
	{domain.FlagFound, "found", "fill:#bbf7d0,stroke:#15803d,stroke-width:3px,color:#000"},
	{domain.FlagPath, "path", "fill:#fef08a,stroke:#a16207,stroke-width:3px,color:#000"},
	{domain.FlagProcessing, "processing", "fill:#fed7aa,stroke:#c2410c,stroke-width:2px,color:#000"},
	{domain.FlagComparing, "comparing", "fill:#fecaca,stroke:#b91c1c,stroke-width:2px,color:#000"},
	{domain.FlagVisited, "visited", "fill:#e1f5fe,stroke:#01579b,stroke-width:2px,color:#000"},
	{domain.FlagStart, "start", "fill:#cffafe,stroke:#0e7490,stroke-width:2px,color:#000"},
	{domain.FlagTarget, "target", "fill:#fbcfe8,stroke:#be185d,stroke-width:2px,color:#000"},
}

// GenerateMermaid produces a Mermaid flowchart for a graph or tree frame.
// Graphs are drawn left to right with weighted undirected links; trees top
// down with their start and target markers shown as stadium shapes.
func GenerateMermaid(f *domain.Frame) (string, error) {
	if f == nil {
		return "", domain.ErrEmptyContainer
	}
	var sb strings.Builder
	switch f.Family {
	case domain.FamilyGraph:
		sb.WriteString("graph LR\n")
	case domain.FamilyTree:
		sb.WriteString("graph TD\n")
	default:
		return "", fmt.Errorf("%w: mermaid export needs a graph or tree, got %s", domain.ErrFamilyMismatch, f.Family)
	}

	for _, e := range f.Elements {
		label := e.ID
		if f.Family == domain.FamilyTree {
			label = strconv.FormatFloat(e.Value, 'f', -1, 64)
		}
		opener, closer := "[", "]"
		if e.Flags&(domain.FlagStart|domain.FlagTarget) != 0 {
			opener, closer = "([", "])"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", sanitizeMermaidID(e.ID), opener, strings.ReplaceAll(label, "\"", "'"), closer)
	}

	for _, e := range f.Edges {
		from, to := sanitizeMermaidID(e.From), sanitizeMermaidID(e.To)
		switch {
		case f.Family == domain.FamilyTree:
			fmt.Fprintf(&sb, "    %s -- %s --> %s\n", from, e.Label, to)
		case e.Weight != 0:
			fmt.Fprintf(&sb, "    %s ---|%s| %s\n", from, strconv.FormatFloat(e.Weight, 'f', -1, 64), to)
		default:
			fmt.Fprintf(&sb, "    %s --- %s\n", from, to)
		}
	}

	used := make(map[string][]string)
	for _, e := range f.Elements {
		for _, c := range classes {
			if e.Flags.Has(c.flag) {
				used[c.name] = append(used[c.name], sanitizeMermaidID(e.ID))
				break
			}
		}
	}
	if len(used) == 0 {
		return sb.String(), nil
	}
	sb.WriteString("\n    %% Flag Styles\n")
	for _, c := range classes {
		ids, ok := used[c.name]
		if !ok {
			continue
		}
		fmt.Fprintf(&sb, "    classDef %s %s;\n", c.name, c.style)
		fmt.Fprintf(&sb, "    class %s %s;\n", strings.Join(ids, ","), c.name)
	}
	return sb.String(), nil
}

func sanitizeMermaidID(id string) string {
	return strings.NewReplacer(".", "_", "-", "_", "/", "_", "\\", "_", ":", "_", " ", "_").Replace(id)
}
