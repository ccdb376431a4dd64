package model

import (
	"encoding/json"
	"fmt"
)

// Point represents a 2D point in image pixel coordinates (origin top-left,
// Y grows downward).
type Point struct {
	X, Y int
}

// MarshalJSON encodes the point as a two-element [x, y] array.
func (p Point) MarshalJSON() ([]byte, error) {
	return json.Marshal([2]int{p.X, p.Y})
}

// UnmarshalJSON decodes a two-element [x, y] array.
func (p *Point) UnmarshalJSON(data []byte) error {
	var xy []int
	if err := json.Unmarshal(data, &xy); err != nil {
		return fmt.Errorf("point: %w", err)
	}
	if len(xy) != 2 {
		return fmt.Errorf("point: expected 2 coordinates, got %d", len(xy))
	}
	p.X, p.Y = xy[0], xy[1]
	return nil
}

// Quad is a four-corner bounding box as emitted by OCR engines. Corners are
// ordered top-left, top-right, bottom-right, bottom-left.
type Quad [4]Point

// NewQuadFromRect builds a Quad from an axis-aligned rectangle given by its
// top-left (x0, y0) and bottom-right (x1, y1) corners.
func NewQuadFromRect(x0, y0, x1, y1 int) Quad {
	return Quad{
		{X: x0, Y: y0},
		{X: x1, Y: y0},
		{X: x1, Y: y1},
		{X: x0, Y: y1},
	}
}

// TopLeft returns the first corner.
func (q Quad) TopLeft() Point { return q[0] }

// TopRight returns the second corner.
func (q Quad) TopRight() Point { return q[1] }

// Bounds returns the axis-aligned box enclosing all four corners.
func (q Quad) Bounds() BBox {
	minX, minY := q[0].X, q[0].Y
	maxX, maxY := q[0].X, q[0].Y
	for _, p := range q[1:] {
		minX = min(minX, p.X)
		minY = min(minY, p.Y)
		maxX = max(maxX, p.X)
		maxY = max(maxY, p.Y)
	}
	return BBox{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// BBox represents an axis-aligned bounding box (rectangle)
type BBox struct {
	X      int // Left
	Y      int // Top (image coordinate system)
	Width  int
	Height int
}

// NewBBox creates a bounding box from coordinates
func NewBBox(x, y, width, height int) BBox {
	return BBox{X: x, Y: y, Width: width, Height: height}
}

// Left returns the left edge X coordinate
func (b BBox) Left() int {
	return b.X
}

// Right returns the right edge X coordinate
func (b BBox) Right() int {
	return b.X + b.Width
}

// Top returns the top edge Y coordinate
func (b BBox) Top() int {
	return b.Y
}

// Bottom returns the bottom edge Y coordinate
func (b BBox) Bottom() int {
	return b.Y + b.Height
}

// Union returns the smallest box enclosing both boxes. Degenerate boxes,
// including the zero BBox at the origin, still contribute their position.
func (b BBox) Union(other BBox) BBox {
	x := min(b.Left(), other.Left())
	y := min(b.Top(), other.Top())
	right := max(b.Right(), other.Right())
	bottom := max(b.Bottom(), other.Bottom())

	return BBox{
		X:      x,
		Y:      y,
		Width:  right - x,
		Height: bottom - y,
	}
}

// Quad converts the box into a four-corner Quad.
func (b BBox) Quad() Quad {
	return NewQuadFromRect(b.Left(), b.Top(), b.Right(), b.Bottom())
}
