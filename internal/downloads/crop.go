package downloads

import (
	"context"
	"image"
	"image/draw"
)

const (
	// blackThreshold is the per-channel value at or below which a pixel
	// counts as black.
	blackThreshold = 5

	// sampleDivisor controls line sampling: a probed line checks every
	// length/sampleDivisor-th pixel, at least every pixel.
	sampleDivisor = 100

	// blankProbeSize is the side of the top-left block probed to detect a
	// panorama with no image data at all.
	blankProbeSize = 32
)

// CropBlackEdges trims trailing all-black columns and rows from the bottom
// and right of img. Content is never removed from the top or left. An image
// whose top-left corner block is entirely black is treated as empty and
// yields a zero-size image. The operation is idempotent.
func CropBlackEdges(ctx context.Context, img *image.RGBA) (*image.RGBA, error) {
	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width == 0 || height == 0 {
		return img, nil
	}

	if blankCorner(img) {
		return image.NewRGBA(image.Rectangle{}), nil
	}

	lastCol, err := lastContentIndex(ctx, width, func(x int) bool {
		return columnHasContent(img, bounds.Min.X+x)
	})
	if err != nil {
		return nil, err
	}
	lastRow, err := lastContentIndex(ctx, height, func(y int) bool {
		return rowHasContent(img, bounds.Min.Y+y)
	})
	if err != nil {
		return nil, err
	}

	if lastCol == width-1 && lastRow == height-1 {
		return img, nil
	}

	cropped := image.NewRGBA(image.Rect(0, 0, lastCol+1, lastRow+1))
	draw.Draw(cropped, cropped.Bounds(), img, bounds.Min, draw.Src)
	return cropped, nil
}

// lastContentIndex binary-searches [0, size) for the highest line index that
// still has content. hasContent probes a single line. When no trailing black
// run exists the search runs off the upper bound and the last index wins.
func lastContentIndex(ctx context.Context, size int, hasContent func(int) bool) (int, error) {
	lower := 0
	upper := size - 1
	for lower <= upper {
		if err := ctx.Err(); err != nil {
			return 0, err
		}

		mid := (lower + upper) / 2
		if hasContent(mid) {
			lower = mid + 1
			continue
		}
		if mid == 0 {
			return 0, nil
		}
		if hasContent(mid - 1) {
			return mid - 1, nil
		}
		upper = mid - 1
	}
	return size - 1, nil
}

// columnHasContent samples column x at a stride derived from the image
// height and reports whether any sampled pixel is brighter than the black
// threshold.
func columnHasContent(img *image.RGBA, x int) bool {
	bounds := img.Bounds()
	stride := sampleStride(bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y += stride {
		if !pixelDark(img, x, y) {
			return true
		}
	}
	return false
}

// rowHasContent samples row y at a stride derived from the image width.
func rowHasContent(img *image.RGBA, y int) bool {
	bounds := img.Bounds()
	stride := sampleStride(bounds.Dx())
	for x := bounds.Min.X; x < bounds.Max.X; x += stride {
		if !pixelDark(img, x, y) {
			return true
		}
	}
	return false
}

// blankCorner reports whether the top-left probe block is entirely black.
func blankCorner(img *image.RGBA) bool {
	bounds := img.Bounds()
	maxX := bounds.Min.X + blankProbeSize
	if maxX > bounds.Max.X {
		maxX = bounds.Max.X
	}
	maxY := bounds.Min.Y + blankProbeSize
	if maxY > bounds.Max.Y {
		maxY = bounds.Max.Y
	}

	for y := bounds.Min.Y; y < maxY; y++ {
		for x := bounds.Min.X; x < maxX; x++ {
			if !pixelDark(img, x, y) {
				return false
			}
		}
	}
	return true
}

func pixelDark(img *image.RGBA, x, y int) bool {
	c := img.RGBAAt(x, y)
	return c.R <= blackThreshold && c.G <= blackThreshold && c.B <= blackThreshold
}

func sampleStride(length int) int {
	stride := length / sampleDivisor
	if stride < 1 {
		stride = 1
	}
	return stride
}
