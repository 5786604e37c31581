package downloads

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/draw"

	_ "image/jpeg"
	_ "image/png"

	"streetview-download/internal/streetview"
)

// AssembleTiles decodes every tile in the grid and pastes it into a single
// bitmap at (column*512, row*512). The grid must be complete; a missing tile
// aborts with ErrIncompleteGrid.
func AssembleTiles(ctx context.Context, grid TileGrid) (*image.RGBA, error) {
	if len(grid) == 0 || len(grid[0]) == 0 {
		return nil, ErrIncompleteGrid
	}
	rows := len(grid)
	cols := len(grid[0])

	output := image.NewRGBA(image.Rect(0, 0, cols*streetview.TileSize, rows*streetview.TileSize))
	for row := 0; row < rows; row++ {
		for col := 0; col < cols; col++ {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			data := grid[row][col]
			if len(data) == 0 {
				return nil, ErrIncompleteGrid
			}
			tile, _, err := image.Decode(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("failed to decode tile (%d, %d): %w", col, row, err)
			}

			xOff := col * streetview.TileSize
			yOff := row * streetview.TileSize
			rect := image.Rect(xOff, yOff, xOff+streetview.TileSize, yOff+streetview.TileSize)
			draw.Draw(output, rect, tile, image.Point{0, 0}, draw.Src)
		}
	}
	return output, nil
}
