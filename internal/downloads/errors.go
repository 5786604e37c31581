package downloads

import "errors"

var (
	// ErrIncompleteGrid is returned when a tile grid is missing tiles and
	// cannot be assembled.
	ErrIncompleteGrid = errors.New("tile grid is incomplete")

	// ErrNoPanoramaData is returned when the panorama exists but carries no
	// image data, i.e. every fetched tile is black.
	ErrNoPanoramaData = errors.New("panorama contains no image data")
)
