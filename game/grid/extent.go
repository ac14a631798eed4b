package grid

// Extent is the width x height bound of a map.
type Extent struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Contains reports whether 1 <= v.X <= Width and 1 <= v.Y <= Height.
func (e Extent) Contains(v Vector) bool {
	return v.X >= 1 && v.X <= e.Width && v.Y >= 1 && v.Y <= e.Height
}

// Index returns the row-major index of v, or -1 when v is out of bounds.
func (e Extent) Index(v Vector) int {
	if !e.Contains(v) {
		return -1
	}
	return (v.Y-1)*e.Width + (v.X - 1)
}

// At is the inverse of Index.
func (e Extent) At(index int) Vector {
	return Vector{X: index%e.Width + 1, Y: index/e.Width + 1}
}

// Size returns the number of cells.
func (e Extent) Size() int {
	return e.Width * e.Height
}

// Vectors returns every vector of the extent in row-major order.
func (e Extent) Vectors() []Vector {
	vectors := make([]Vector, 0, e.Size())
	for y := 1; y <= e.Height; y++ {
		for x := 1; x <= e.Width; x++ {
			vectors = append(vectors, Vector{x, y})
		}
	}
	return vectors
}

// Ring calls fn for every vector at exactly Manhattan distance d from center.
// Enumeration starts at the "up" vertex and walks clockwise, so the order is
// fixed for a given (center, d). A ring of distance 0 is the center itself.
// Vectors outside any map are included; callers filter with Extent.Contains.
func Ring(center Vector, d int, fn func(Vector)) {
	if d < 0 {
		return
	}
	if d == 0 {
		fn(center)
		return
	}
	// up -> right
	for i := 0; i < d; i++ {
		fn(Vector{center.X + i, center.Y - d + i})
	}
	// right -> down
	for i := 0; i < d; i++ {
		fn(Vector{center.X + d - i, center.Y + i})
	}
	// down -> left
	for i := 0; i < d; i++ {
		fn(Vector{center.X - i, center.Y + d - i})
	}
	// left -> up
	for i := 0; i < d; i++ {
		fn(Vector{center.X - d + i, center.Y - i})
	}
}

// Within calls fn for every vector whose distance from center lies in
// [min, max], ring by ring from min outwards.
func Within(center Vector, min, max int, fn func(Vector)) {
	if min < 0 {
		min = 0
	}
	for d := min; d <= max; d++ {
		Ring(center, d, fn)
	}
}
