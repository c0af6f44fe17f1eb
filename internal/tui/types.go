// Package tui provides the interactive dependency graph dashboard.
package tui

// NodeDensity represents the level of detail shown for nodes.
type NodeDensity int

const (
	// DensityCompact shows ref and status only.
	DensityCompact NodeDensity = iota
	// DensityStandard shows ref, status, and truncated title.
	DensityStandard
	// DensityDetailed adds priority.
	DensityDetailed
)

// String returns a string representation of the NodeDensity.
func (d NodeDensity) String() string {
	switch d {
	case DensityCompact:
		return "compact"
	case DensityStandard:
		return "standard"
	case DensityDetailed:
		return "detailed"
	default:
		return "unknown"
	}
}

// ParseDensity converts a string to NodeDensity.
func ParseDensity(s string) NodeDensity {
	switch s {
	case "compact":
		return DensityCompact
	case "detailed":
		return DensityDetailed
	default:
		return DensityStandard
	}
}

// Viewport represents the visible area of the graph.
type Viewport struct {
	OffsetX int // Horizontal scroll offset
	OffsetY int // Vertical scroll offset
	Width   int // Visible width in characters
	Height  int // Visible height in rows
}

// Position represents a node's position and size in the layout.
type Position struct {
	X int // Left position
	Y int // Top position
	W int // Width
	H int // Height
}
