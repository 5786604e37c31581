package downloads

import (
	"streetview-download/internal/streetview"
)

// enumerateCoordinates lists every tile coordinate in the region in
// row-major order (left to right, then top to bottom).
func enumerateCoordinates(settings streetview.Settings) []streetview.Coordinate {
	topLeft := settings.TopLeft()
	bottomRight := settings.BottomRight()

	coords := make([]streetview.Coordinate, 0, settings.Tiles())
	for y := topLeft.Y; y < bottomRight.Y; y++ {
		for x := topLeft.X; x < bottomRight.X; x++ {
			coords = append(coords, streetview.Coordinate{X: x, Y: y})
		}
	}
	return coords
}

// splitBatches partitions coords into exactly count contiguous batches.
// Sizes differ by at most one: the first len(coords) % count batches carry
// the extra element, so splitting 5 coordinates 3 ways yields sizes 2, 2, 1
// and splitting 3 coordinates 4 ways yields sizes 1, 1, 1, 0.
func splitBatches(coords []streetview.Coordinate, count int) [][]streetview.Coordinate {
	if count < 1 {
		count = 1
	}

	quotient := len(coords) / count
	remainder := len(coords) % count

	batches := make([][]streetview.Coordinate, count)
	offset := 0
	for i := range batches {
		size := quotient
		if i < remainder {
			size++
		}
		batches[i] = coords[offset : offset+size]
		offset += size
	}
	return batches
}
