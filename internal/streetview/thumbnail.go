package streetview

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"math"
	"net/url"
	"strconv"

	_ "image/jpeg" // Register JPEG decoder for thumbnail responses
	_ "image/png"  // Register PNG decoder for thumbnail responses

	xdraw "golang.org/x/image/draw"
)

// Thumbnail dimension limits accepted by the endpoint
const (
	MinViewWidth  = 32
	MinViewHeight = 16
	MaxViewWidth  = 2048
	MaxViewHeight = 2048

	DefaultViewWidth  = 768
	DefaultViewHeight = 768
)

// ValidateDimensions checks that a requested view size is within the range
// the thumbnail endpoint accepts.
func ValidateDimensions(width, height int) error {
	if width < MinViewWidth || width > MaxViewWidth {
		return fmt.Errorf("%w: width must be between %d and %d pixels",
			ErrInvalidDimensions, MinViewWidth, MaxViewWidth)
	}
	if height < MinViewHeight || height > MaxViewHeight {
		return fmt.Errorf("%w: height must be between %d and %d pixels",
			ErrInvalidDimensions, MinViewHeight, MaxViewHeight)
	}
	return nil
}

// FetchView downloads the view a Street View URL renders: the panorama
// projected at the URL's yaw, pitch and field of view. The thumbnail
// endpoint does the projection server-side; the result is rescaled if it
// comes back in a different size than requested. Same retry policy as
// tile fetches.
func (c *Client) FetchView(ctx context.Context, info *URLInfo, width, height int) (image.Image, error) {
	if err := ValidateDimensions(width, height); err != nil {
		return nil, err
	}
	params := url.Values{
		"cb_client": {ClientID},
		"output":    {"thumbnail"},
		"panoid":    {info.PanoramaID},
		"w":         {strconv.Itoa(width)},
		"h":         {strconv.Itoa(height)},
		"yaw":       {formatAngle(info.Yaw)},
		// The endpoint measures pitch from the horizon, positive downward.
		"pitch":    {formatAngle(90 - info.Pitch)},
		"thumbfov": {strconv.Itoa(int(math.Round(info.FOV)))},
	}

	data, err := c.fetchWithRetry(ctx, c.thumbnailURL, params)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch view: %w", err)
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode view image: %w", err)
	}
	if bounds := img.Bounds(); bounds.Dx() == width && bounds.Dy() == height {
		return img, nil
	}
	return resizeImage(img, width, height), nil
}

// resizeImage rescales img to width x height with Catmull-Rom
// interpolation.
func resizeImage(img image.Image, width, height int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, width, height))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), img, img.Bounds(), xdraw.Src, nil)
	return dst
}

func formatAngle(degrees float64) string {
	return strconv.FormatFloat(degrees, 'f', -1, 64)
}
