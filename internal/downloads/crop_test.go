package downloads_test

import (
	"context"
	"errors"
	"image"
	"image/color"
	"image/draw"
	"testing"

	"streetview-download/internal/downloads"
)

// contentImage builds a width x height image whose top-left
// contentWidth x contentHeight rectangle is filled with a bright color and
// whose remainder is black.
func contentImage(width, height, contentWidth, contentHeight int) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	fill := &image.Uniform{color.RGBA{R: 120, G: 180, B: 90, A: 255}}
	draw.Draw(img, image.Rect(0, 0, contentWidth, contentHeight), fill, image.Point{}, draw.Src)
	return img
}

func TestCropBlackEdgesNoChange(t *testing.T) {
	img := contentImage(64, 48, 64, 48)

	got, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("CropBlackEdges returned error: %v", err)
	}
	if bounds := got.Bounds(); bounds.Dx() != 64 || bounds.Dy() != 48 {
		t.Errorf("bounds = %dx%d, want 64x48", bounds.Dx(), bounds.Dy())
	}
}

func TestCropBlackEdgesAllBlack(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))

	got, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("CropBlackEdges returned error: %v", err)
	}
	if !got.Bounds().Empty() {
		t.Errorf("bounds = %v, want empty", got.Bounds())
	}
}

func TestCropBlackEdgesBottomAndRight(t *testing.T) {
	img := contentImage(64, 64, 40, 24)

	got, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("CropBlackEdges returned error: %v", err)
	}
	if bounds := got.Bounds(); bounds.Dx() != 40 || bounds.Dy() != 24 {
		t.Errorf("bounds = %dx%d, want 40x24", bounds.Dx(), bounds.Dy())
	}
}

func TestCropBlackEdgesLastContentColumn(t *testing.T) {
	const width, height = 64, 64
	for _, lastCol := range []int{0, 1, width / 2, width - 2, width - 1} {
		img := contentImage(width, height, lastCol+1, height)

		got, err := downloads.CropBlackEdges(context.Background(), img)
		if err != nil {
			t.Fatalf("CropBlackEdges(lastCol=%d) returned error: %v", lastCol, err)
		}
		bounds := got.Bounds()
		if bounds.Dx() != lastCol+1 {
			t.Errorf("lastCol=%d: width = %d, want %d", lastCol, bounds.Dx(), lastCol+1)
		}
		if bounds.Dy() != height {
			t.Errorf("lastCol=%d: height = %d, want %d", lastCol, bounds.Dy(), height)
		}
	}
}

func TestCropBlackEdgesThresholdBoundary(t *testing.T) {
	// Channel value 5 still counts as black, 6 does not.
	img := image.NewRGBA(image.Rect(0, 0, 64, 64))
	for y := 0; y < 64; y++ {
		for x := 0; x < 64; x++ {
			v := uint8(5)
			if x < 32 {
				v = 6
			}
			img.SetRGBA(x, y, color.RGBA{R: v, G: v, B: v, A: 255})
		}
	}

	got, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("CropBlackEdges returned error: %v", err)
	}
	if bounds := got.Bounds(); bounds.Dx() != 32 || bounds.Dy() != 64 {
		t.Errorf("bounds = %dx%d, want 32x64", bounds.Dx(), bounds.Dy())
	}
}

func TestCropBlackEdgesSampledImage(t *testing.T) {
	// Large enough that probed lines are sampled rather than fully scanned.
	img := contentImage(512, 512, 512, 256)

	got, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("CropBlackEdges returned error: %v", err)
	}
	if bounds := got.Bounds(); bounds.Dx() != 512 || bounds.Dy() != 256 {
		t.Errorf("bounds = %dx%d, want 512x256", bounds.Dx(), bounds.Dy())
	}
}

func TestCropBlackEdgesIdempotent(t *testing.T) {
	img := contentImage(64, 64, 40, 24)

	once, err := downloads.CropBlackEdges(context.Background(), img)
	if err != nil {
		t.Fatalf("first crop returned error: %v", err)
	}
	twice, err := downloads.CropBlackEdges(context.Background(), once)
	if err != nil {
		t.Fatalf("second crop returned error: %v", err)
	}
	if once.Bounds() != twice.Bounds() {
		t.Errorf("second crop changed bounds from %v to %v", once.Bounds(), twice.Bounds())
	}
}

func TestCropBlackEdgesCancelled(t *testing.T) {
	img := contentImage(64, 64, 40, 24)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloads.CropBlackEdges(ctx, img)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("error = %v, want context.Canceled", err)
	}
}
