package workflow

// Default canvas layout. Nodes without a user-supplied position are
// placed left to right with a fixed horizontal stride so sequential
// nodes never overlap. Matches the spacing the n8n editor uses for
// freshly dropped nodes.
const (
	layoutOriginX = 240
	layoutOriginY = 300
	layoutStrideX = 220
)

// defaultPosition returns the canvas position for the i-th node of a
// spec. A pure function of the index, so layout is deterministic.
func defaultPosition(i int) Position {
	return Position{
		X: layoutOriginX + float64(i)*layoutStrideX,
		Y: layoutOriginY,
	}
}
