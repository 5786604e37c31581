package streetview

import "fmt"

// Zoom level bounds supported by the tile endpoint
const (
	MinZoom = 0
	MaxZoom = 5
)

// TileSize is the pixel width and height of every tile served by the
// panorama endpoint, at every zoom level.
const TileSize = 512

// Coordinate addresses one tile in the panorama grid at a given zoom
type Coordinate struct {
	X int `json:"x"`
	Y int `json:"y"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d, %d)", c.X, c.Y)
}

// ValidateZoom checks that zoom is within the supported range
func ValidateZoom(zoom int) error {
	if zoom < MinZoom || zoom > MaxZoom {
		return fmt.Errorf("%w: zoom %d must be between %d and %d", ErrInvalidZoom, zoom, MinZoom, MaxZoom)
	}
	return nil
}

// MaxCoordinates returns the tile grid extent at a zoom level: 2^zoom
// columns by max(1, 2^(zoom-1)) rows. The extent doubles as the exclusive
// bottom-right corner of the full-panorama region.
func MaxCoordinates(zoom int) (Coordinate, error) {
	if err := ValidateZoom(zoom); err != nil {
		return Coordinate{}, err
	}
	width := 1 << zoom
	height := width / 2
	if height < 1 {
		height = 1
	}
	return Coordinate{X: width, Y: height}, nil
}

// inRectangle reports whether c lies within the rectangle spanned by
// topLeft and bottomRight, inclusive on all edges.
func inRectangle(c, topLeft, bottomRight Coordinate) bool {
	return c.X >= topLeft.X && c.X <= bottomRight.X &&
		c.Y >= topLeft.Y && c.Y <= bottomRight.Y
}
