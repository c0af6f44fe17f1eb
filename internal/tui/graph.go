package tui

import (
	"fmt"
	"strings"
	"sync"

	"github.com/mwhitford/abacus/internal/config"
	"github.com/mwhitford/abacus/internal/graph"
	"github.com/mwhitford/abacus/internal/issue"
)

// Graph manages the dependency graph visualization state. Nodes are laid
// out in topological layers: prerequisites above the issues that depend on
// them.
type Graph struct {
	cfg *config.GraphConfig

	mu        sync.RWMutex
	view      *graph.View
	layers    [][]int
	positions map[int]Position
	cycles    [][]int
	inCycle   map[int]bool
	selected  int // 0 = none
	focus     int // 0 = whole working set, else closure of this issue
	viewport  Viewport
}

// NewGraph creates a Graph with the given configuration.
func NewGraph(cfg *config.GraphConfig) *Graph {
	return &Graph{
		cfg:       cfg,
		positions: make(map[int]Position),
		inCycle:   make(map[int]bool),
	}
}

// Rebuild replaces the snapshot and recomputes layers, positions, and cycle
// membership. Selection survives when the node still exists.
func (g *Graph) Rebuild(v *graph.View) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.view = v
	g.rebuildLayout()
}

// rebuildLayout recomputes everything derived from the snapshot and focus.
// Must be called with mu held.
func (g *Graph) rebuildLayout() {
	ids := g.view.IDs
	if g.focus != 0 {
		ids = graph.Closure(g.view, g.focus)
	}

	g.layers = graph.Layers(ids, g.view)
	g.cycles = graph.FindCycles(g.view)
	g.inCycle = make(map[int]bool)
	for _, cycle := range g.cycles {
		for _, id := range cycle {
			g.inCycle[id] = true
		}
	}

	g.positionNodes()

	if g.selected != 0 && g.view.Nodes[g.selected] == nil {
		g.selected = 0
	}
	if g.selected == 0 && len(g.layers) > 0 && len(g.layers[0]) > 0 {
		g.selected = g.layers[0][0]
	}
}

// positionNodes computes grid positions for all laid-out nodes.
// Must be called with mu held.
func (g *Graph) positionNodes() {
	nodeW, nodeH := g.nodeDimensions()
	spacing := 2

	g.positions = make(map[int]Position)
	for layerIdx, layer := range g.layers {
		for nodeIdx, id := range layer {
			g.positions[id] = Position{
				X: nodeIdx * (nodeW + spacing),
				Y: layerIdx * (nodeH + spacing),
				W: nodeW,
				H: nodeH,
			}
		}
	}
}

// nodeDimensions returns node width and height based on density.
func (g *Graph) nodeDimensions() (int, int) {
	switch ParseDensity(g.cfg.Density) {
	case DensityCompact:
		return 10, 1
	case DensityDetailed:
		return 30, 1
	default:
		return 24, 1
	}
}

// SetFocus scopes the layout to the issues connected to id. Zero clears the
// focus.
func (g *Graph) SetFocus(id int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.focus = id
	if g.view != nil {
		g.rebuildLayout()
	}
}

// Focus returns the current focus issue, or 0.
func (g *Graph) Focus() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.focus
}

// Cycles returns the detected cycles of the current snapshot.
func (g *Graph) Cycles() [][]int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.cycles
}

// Selected returns the selected issue id, or 0.
func (g *Graph) Selected() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.selected
}

// NodeCount returns the number of laid-out nodes.
func (g *Graph) NodeCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	n := 0
	for _, layer := range g.layers {
		n += len(layer)
	}
	return n
}

// ContentSize returns the bounding box of the laid-out nodes. Useful for
// one-shot rendering where the canvas should fit the content rather than
// a terminal viewport.
func (g *Graph) ContentSize() (int, int) {
	g.mu.RLock()
	defer g.mu.RUnlock()
	w, h := 0, 0
	for _, pos := range g.positions {
		if pos.X+pos.W > w {
			w = pos.X + pos.W
		}
		if pos.Y+pos.H > h {
			h = pos.Y + pos.H
		}
	}
	return w, h
}

// SetViewport sets the viewport dimensions.
func (g *Graph) SetViewport(width, height int) {
	g.mu.Lock()
	g.viewport.Width = width
	g.viewport.Height = height
	g.mu.Unlock()
}

// SelectNext moves selection to the next node in the current layer,
// wrapping around.
func (g *Graph) SelectNext() {
	g.moveInLayer(1)
}

// SelectPrev moves selection to the previous node in the current layer,
// wrapping around.
func (g *Graph) SelectPrev() {
	g.moveInLayer(-1)
}

func (g *Graph) moveInLayer(delta int) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.selected == 0 {
		return
	}
	for _, layer := range g.layers {
		for i, id := range layer {
			if id == g.selected {
				next := (i + delta + len(layer)) % len(layer)
				g.selected = layer[next]
				g.adjustViewport()
				return
			}
		}
	}
}

// SelectUp moves selection to the first laid-out prerequisite of the
// selected issue.
func (g *Graph) SelectUp() {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.currentNode()
	if n == nil {
		return
	}
	for _, dep := range n.DependsOn {
		if _, ok := g.positions[dep]; ok {
			g.selected = dep
			g.adjustViewport()
			return
		}
	}
}

// SelectDown moves selection to the first laid-out dependent of the
// selected issue.
func (g *Graph) SelectDown() {
	g.mu.Lock()
	defer g.mu.Unlock()

	n := g.currentNode()
	if n == nil {
		return
	}
	for _, blocked := range n.Blocks {
		if _, ok := g.positions[blocked]; ok {
			g.selected = blocked
			g.adjustViewport()
			return
		}
	}
}

// currentNode returns the selected node. Must be called with mu held.
func (g *Graph) currentNode() *graph.Node {
	if g.view == nil || g.selected == 0 {
		return nil
	}
	return g.view.Nodes[g.selected]
}

// adjustViewport keeps the selected node visible. Must be called with mu
// held.
func (g *Graph) adjustViewport() {
	pos, ok := g.positions[g.selected]
	if !ok {
		return
	}

	if pos.X < g.viewport.OffsetX {
		g.viewport.OffsetX = pos.X
	} else if pos.X+pos.W > g.viewport.OffsetX+g.viewport.Width {
		g.viewport.OffsetX = pos.X + pos.W - g.viewport.Width
	}

	if pos.Y < g.viewport.OffsetY {
		g.viewport.OffsetY = pos.Y
	} else if pos.Y+pos.H > g.viewport.OffsetY+g.viewport.Height {
		g.viewport.OffsetY = pos.Y + pos.H - g.viewport.Height
	}
}

// SelectedSummary is the one-line detail of the selected issue, empty when
// nothing is selected.
func (g *Graph) SelectedSummary() string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	n := g.currentNode()
	if n == nil {
		return ""
	}
	return fmt.Sprintf("%s %s [%s/%s] deps %d blocks %d",
		issue.Ref(n.ID), n.Title, n.Status, n.Priority, len(n.DependsOn), len(n.Blocks))
}

// CycleDensity cycles through density levels and recomputes positions.
func (g *Graph) CycleDensity() {
	g.mu.Lock()
	defer g.mu.Unlock()

	switch ParseDensity(g.cfg.Density) {
	case DensityCompact:
		g.cfg.Density = DensityStandard.String()
	case DensityStandard:
		g.cfg.Density = DensityDetailed.String()
	default:
		g.cfg.Density = DensityCompact.String()
	}

	if g.view != nil {
		g.positionNodes()
	}
}

// Density returns the current density level.
func (g *Graph) Density() NodeDensity {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return ParseDensity(g.cfg.Density)
}

// Render draws the graph into a width x height character block.
func (g *Graph) Render(width, height int) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if g.view == nil || len(g.layers) == 0 {
		return renderEmpty(width, height)
	}

	grid := newGrid(width, height)
	g.renderEdges(grid)
	for _, layer := range g.layers {
		for _, id := range layer {
			g.renderNodeToGrid(grid, id)
		}
	}
	return grid.String()
}

// renderEmpty renders a placeholder for an empty graph.
func renderEmpty(width, height int) string {
	msg := "No open issues"
	if width < len(msg) {
		msg = "Empty"
	}
	padLeft := (width - len(msg)) / 2
	if padLeft < 0 {
		padLeft = 0
	}
	line := strings.Repeat(" ", padLeft) + msg
	if len(line) < width {
		line += strings.Repeat(" ", width-len(line))
	}

	var lines []string
	midY := height / 2
	for y := 0; y < height; y++ {
		if y == midY {
			lines = append(lines, line)
		} else {
			lines = append(lines, strings.Repeat(" ", width))
		}
	}
	return strings.Join(lines, "\n")
}

// renderEdges draws the dependency edges. Every edge runs from a
// prerequisite's bottom edge to the dependent's top edge.
func (g *Graph) renderEdges(grid *charGrid) {
	for _, layer := range g.layers {
		for _, id := range layer {
			n := g.view.Nodes[id]
			if n == nil {
				continue
			}
			toPos, ok := g.positions[id]
			if !ok {
				continue
			}
			for _, dep := range n.DependsOn {
				fromPos, ok := g.positions[dep]
				if !ok {
					continue
				}
				g.renderEdge(grid, fromPos, toPos)
			}
		}
	}
}

// renderEdge draws one L-shaped edge: down from the prerequisite, then
// across to the dependent.
func (g *Graph) renderEdge(grid *charGrid, from, to Position) {
	fromX := from.X + from.W/2 - g.viewport.OffsetX
	fromY := from.Y + from.H - g.viewport.OffsetY
	toX := to.X + to.W/2 - g.viewport.OffsetX
	toY := to.Y - g.viewport.OffsetY

	minY, maxY := fromY, toY
	if minY > maxY {
		minY, maxY = maxY, minY
	}
	for y := minY; y < maxY; y++ {
		grid.writeRune(fromX, y, '│')
	}

	if fromX != toX {
		minX, maxX := fromX, toX
		if minX > maxX {
			minX, maxX = maxX, minX
		}
		for x := minX; x <= maxX; x++ {
			if x == fromX && toY > fromY {
				grid.writeRune(x, toY-1, '└')
			} else if x != toX {
				grid.writeRune(x, toY-1, '─')
			}
		}
	}
}

// renderNodeToGrid draws one node at its viewport-adjusted position.
func (g *Graph) renderNodeToGrid(grid *charGrid, id int) {
	n := g.view.Nodes[id]
	if n == nil {
		return
	}
	pos, ok := g.positions[id]
	if !ok {
		return
	}

	x := pos.X - g.viewport.OffsetX
	y := pos.Y - g.viewport.OffsetY
	if x+pos.W < 0 || x >= grid.width || y+pos.H < 0 || y >= grid.height {
		return
	}

	grid.writeString(x, y, g.formatNode(n, id == g.selected))
}

// formatNode builds the node's one-line text for the current density.
func (g *Graph) formatNode(n *graph.Node, selected bool) string {
	marker := "["
	if selected {
		marker = ">"
	}
	if g.inCycle[n.ID] {
		marker += "!"
	}

	var text string
	switch ParseDensity(g.cfg.Density) {
	case DensityCompact:
		text = fmt.Sprintf("%s%s %s", marker, issue.Ref(n.ID), n.Status.Marker())
	case DensityDetailed:
		text = fmt.Sprintf("%s%s %s %s %s", marker, issue.Ref(n.ID), n.Status.Marker(),
			n.Priority, truncate(n.Title, 12))
	default:
		text = fmt.Sprintf("%s%s %s %s", marker, issue.Ref(n.ID), n.Status.Marker(),
			truncate(n.Title, 12))
	}
	return text
}

// truncate shortens s to max runes, marking the cut with a tilde.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	if max < 1 {
		return ""
	}
	return string(runes[:max-1]) + "~"
}

// charGrid is a 2D character grid for rendering.
type charGrid struct {
	width  int
	height int
	cells  [][]rune
}

// newGrid creates a new character grid filled with spaces.
func newGrid(width, height int) *charGrid {
	cells := make([][]rune, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]rune, width)
		for x := 0; x < width; x++ {
			cells[y][x] = ' '
		}
	}
	return &charGrid{width: width, height: height, cells: cells}
}

// writeRune writes a single rune at the given position.
func (g *charGrid) writeRune(x, y int, r rune) {
	if x >= 0 && x < g.width && y >= 0 && y < g.height {
		g.cells[y][x] = r
	}
}

// writeString writes a string starting at the given position.
func (g *charGrid) writeString(x, y int, s string) {
	for i, r := range s {
		g.writeRune(x+i, y, r)
	}
}

// String converts the grid to a string.
func (g *charGrid) String() string {
	var lines []string
	for _, row := range g.cells {
		lines = append(lines, string(row))
	}
	return strings.Join(lines, "\n")
}
