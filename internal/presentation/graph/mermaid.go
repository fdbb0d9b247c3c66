package graph

import (
	"fmt"
	"strings"

	"github.com/KIIGIN/bot-constructor/pkg/domain"
)

// GraphOverlay contains runtime data to visualize on the graph.
type GraphOverlay struct {
	CurrentBlock string
}

// maxLabel bounds the block text shown inside a node.
const maxLabel = 40

// GenerateMermaid produces a Mermaid flowchart from a scenario graph.
// It applies semantic styling:
// - Start: ((Circle))
// - Menu: {{Hexagon}}
// - Input: [/Parallelogram/]
// - Delay: [[Subroutine]]
// - Message: [Rectangle]
// Exits other than the generic next/completed are written on the edge.
func GenerateMermaid(g *domain.Graph, overlay *GraphOverlay) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	for _, b := range g.Blocks {
		safeID := sanitizeMermaidID(b.ID)

		opener, closer := "[", "]"
		switch b.Type {
		case domain.BlockStart:
			opener, closer = "((", "))"
		case domain.BlockMenu:
			opener, closer = "{{", "}}"
		case domain.BlockInputData:
			opener, closer = "[/", "/]"
		case domain.BlockDelay:
			opener, closer = "[[", "]]"
		}

		label := b.ID
		if summary := summarize(b); summary != "" {
			label = fmt.Sprintf("%s <br/> %s", b.ID, summary)
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", safeID, opener, escapeLabel(label), closer)
	}

	for _, c := range g.Connections {
		from := sanitizeMermaidID(c.From.BlockID)
		to := sanitizeMermaidID(c.To.BlockID)
		if c.From.Point == domain.PointNext || c.From.Point == domain.PointCompleted {
			fmt.Fprintf(&sb, "    %s --> %s\n", from, to)
			continue
		}
		fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", from, escapeLabel(buttonText(g, c.From)), to)
	}

	if overlay != nil && overlay.CurrentBlock != "" {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text for contrast on both light and dark themes.
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		fmt.Fprintf(&sb, "    class %s current;\n", sanitizeMermaidID(overlay.CurrentBlock))
	}

	return sb.String()
}

// summarize picks a short description of what a block shows or waits for.
func summarize(b domain.Block) string {
	switch b.Type {
	case domain.BlockDelay:
		v, _ := b.Data["value"].(map[string]any)
		if v == nil || v["duration"] == nil {
			return ""
		}
		unit := "seconds"
		if m, ok := v["measurement"].(string); ok && m != "" {
			unit = m
		}
		return fmt.Sprintf("⏱️ %v %s", v["duration"], unit)
	case domain.BlockStart:
		return ""
	}
	text, _ := b.Data["text"].(string)
	if b.Type == domain.BlockInputData {
		if v, ok := b.Data["variable_name"].(string); ok && v != "" {
			text = fmt.Sprintf("%s → {{ %s }}", text, v)
		}
	}
	if r := []rune(text); len(r) > maxLabel {
		text = string(r[:maxLabel-1]) + "…"
	}
	return text
}

// buttonText resolves a button exit to its caption, falling back to the point name.
func buttonText(g *domain.Graph, from domain.Endpoint) string {
	b, ok := g.Block(from.BlockID)
	if !ok {
		return from.Point
	}
	items, _ := b.Data["buttons"].([]any)
	for _, item := range items {
		m, ok := item.(map[string]any)
		if !ok {
			continue
		}
		if fmt.Sprint(m["id"]) == from.Point && m["text"] != nil {
			return fmt.Sprint(m["text"])
		}
	}
	return from.Point
}

func escapeLabel(s string) string {
	s = strings.ReplaceAll(s, "\"", "'")
	return strings.ReplaceAll(s, "\n", " ")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	s = strings.ReplaceAll(s, " ", "_")
	return s
}
