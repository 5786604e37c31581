package downloads

import (
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"
	"log"
	"os"
)

// Supported output formats.
const (
	FormatJPEG = "jpeg"
	FormatPNG  = "png"
)

const jpegQuality = 90

// EncodeImage writes img to w in the given format. An empty format encodes
// JPEG.
func EncodeImage(w io.Writer, img image.Image, format string) error {
	switch format {
	case FormatJPEG, "":
		return jpeg.Encode(w, img, &jpeg.Options{Quality: jpegQuality})
	case FormatPNG:
		return png.Encode(w, img)
	default:
		return fmt.Errorf("unsupported image format: %s", format)
	}
}

// SaveImage encodes img into a file at path.
func SaveImage(path string, img image.Image, format string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := EncodeImage(f, img, format); err != nil {
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}

	log.Printf("[Downloader] saved %s", path)
	return nil
}
