package core

// Grid is the 4-connected topology of a W×H board stored row-major, index 0
// being the top-left cell. It is a plain value: pass it wherever neighbor
// lookups happen instead of closing over the board dimensions.
type Grid struct {
	W, H int
}

// NewGrid returns the topology of a w×h board.
func NewGrid(w, h int) Grid {
	return Grid{W: w, H: h}
}

// Size returns the number of cells.
func (g Grid) Size() int { return g.W * g.H }

// Contains reports whether i is a cell index of the grid.
func (g Grid) Contains(i int) bool { return i >= 0 && i < g.Size() }

// Index converts (x, y) to a cell index.
func (g Grid) Index(x, y int) int { return y*g.W + x }

// XY converts a cell index to (x, y).
func (g Grid) XY(i int) (int, int) { return i % g.W, i / g.W }

// Coord converts a cell index to a Coordinate.
func (g Grid) Coord(i int) Coordinate { return FromIndex(i, g.W) }

// Right returns the cell to the right of i, if any.
func (g Grid) Right(i int) (int, bool) {
	if i%g.W == g.W-1 {
		return 0, false
	}
	return i + 1, true
}

// Left returns the cell to the left of i, if any.
func (g Grid) Left(i int) (int, bool) {
	if i%g.W == 0 {
		return 0, false
	}
	return i - 1, true
}

// Up returns the cell above i, if any.
func (g Grid) Up(i int) (int, bool) {
	if i < g.W {
		return 0, false
	}
	return i - g.W, true
}

// Down returns the cell below i, if any.
func (g Grid) Down(i int) (int, bool) {
	if i >= g.W*(g.H-1) {
		return 0, false
	}
	return i + g.W, true
}

// Step returns the neighbor of i in direction d, if any.
func (g Grid) Step(i int, d Direction) (int, bool) {
	switch d {
	case Right:
		return g.Right(i)
	case Up:
		return g.Up(i)
	case Left:
		return g.Left(i)
	case Down:
		return g.Down(i)
	}
	return 0, false
}

// Neighbors returns the existing neighbors of i in the fixed order right, up,
// left, down. Search ties are broken by this order.
func (g Grid) Neighbors(i int) []int {
	out := make([]int, 0, 4)
	return g.AppendNeighbors(out, i)
}

// AppendNeighbors appends the neighbors of i to dst in Neighbors order.
func (g Grid) AppendNeighbors(dst []int, i int) []int {
	for _, d := range Directions {
		if n, ok := g.Step(i, d); ok {
			dst = append(dst, n)
		}
	}
	return dst
}

// Adjacent reports whether a and b share an edge.
func (g Grid) Adjacent(a, b int) bool {
	if !g.Contains(a) || !g.Contains(b) {
		return false
	}
	return g.Coord(a).IsAdjacentTo(g.Coord(b))
}
