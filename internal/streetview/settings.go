package streetview

import (
	"fmt"
	"strconv"
	"strings"
)

// Settings describes one panorama download request: the zoom level and the
// rectangular tile region to fetch. The bottom-right corner is exclusive,
// so the full grid at zoom z is (0,0) to MaxCoordinates(z). Settings are
// immutable once constructed.
type Settings struct {
	zoom        int
	topLeft     Coordinate
	bottomRight Coordinate
}

// DefaultSettings returns the full panorama at zoom 0, a single tile.
func DefaultSettings() Settings {
	settings, _ := NewSettings(MinZoom)
	return settings
}

// NewSettings returns settings covering the full panorama grid at zoom.
func NewSettings(zoom int) (Settings, error) {
	max, err := MaxCoordinates(zoom)
	if err != nil {
		return Settings{}, err
	}
	return Settings{zoom: zoom, bottomRight: max}, nil
}

// NewSettingsRegion returns settings for a sub-rectangle of the grid at
// zoom. Both corners must lie within the grid extent, and bottomRight must
// exceed topLeft on both axes.
func NewSettingsRegion(zoom int, topLeft, bottomRight Coordinate) (Settings, error) {
	max, err := MaxCoordinates(zoom)
	if err != nil {
		return Settings{}, err
	}
	origin := Coordinate{}
	if !inRectangle(topLeft, origin, max) || !inRectangle(bottomRight, origin, max) {
		return Settings{}, fmt.Errorf("%w: region %v to %v exceeds grid extent %v at zoom %d",
			ErrOutOfBounds, topLeft, bottomRight, max, zoom)
	}
	if bottomRight.X <= topLeft.X || bottomRight.Y <= topLeft.Y {
		return Settings{}, fmt.Errorf("%w: bottom-right %v must exceed top-left %v on both axes",
			ErrInvalidRegion, bottomRight, topLeft)
	}
	return Settings{zoom: zoom, topLeft: topLeft, bottomRight: bottomRight}, nil
}

// Zoom returns the zoom level.
func (s Settings) Zoom() int { return s.zoom }

// TopLeft returns the inclusive top-left corner of the region.
func (s Settings) TopLeft() Coordinate { return s.topLeft }

// BottomRight returns the exclusive bottom-right corner of the region.
func (s Settings) BottomRight() Coordinate { return s.bottomRight }

// Width returns the region width in tiles.
func (s Settings) Width() int { return s.bottomRight.X - s.topLeft.X }

// Height returns the region height in tiles.
func (s Settings) Height() int { return s.bottomRight.Y - s.topLeft.Y }

// Tiles returns the number of tiles in the region.
func (s Settings) Tiles() int { return s.Width() * s.Height() }

// IsZero reports whether s is the zero value rather than a constructed
// request. Callers receiving a zero value substitute DefaultSettings.
func (s Settings) IsZero() bool { return s == Settings{} }

// ParseRegion parses a "x0,y0,x1,y1" region string, as accepted by the CLI
// and the HTTP API, into settings at the given zoom.
func ParseRegion(zoom int, region string) (Settings, error) {
	parts := strings.Split(region, ",")
	if len(parts) != 4 {
		return Settings{}, fmt.Errorf("%w: region must be x0,y0,x1,y1", ErrInvalidRegion)
	}

	var nums [4]int
	for i, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return Settings{}, fmt.Errorf("%w: region must be x0,y0,x1,y1", ErrInvalidRegion)
		}
		nums[i] = n
	}

	topLeft := Coordinate{X: nums[0], Y: nums[1]}
	bottomRight := Coordinate{X: nums[2], Y: nums[3]}
	return NewSettingsRegion(zoom, topLeft, bottomRight)
}
