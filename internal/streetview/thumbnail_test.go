package streetview_test

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/url"
	"testing"

	"streetview-download/internal/streetview"
)

func TestValidateDimensions(t *testing.T) {
	tests := []struct {
		name    string
		width   int
		height  int
		wantErr bool
	}{
		{name: "defaults", width: streetview.DefaultViewWidth, height: streetview.DefaultViewHeight},
		{name: "typical", width: 720, height: 440},
		{name: "minimum", width: 32, height: 16},
		{name: "maximum", width: 2048, height: 2048},
		{name: "width too small", width: 25, height: 50, wantErr: true},
		{name: "width too large", width: 9000, height: 300, wantErr: true},
		{name: "height too small", width: 300, height: 15, wantErr: true},
		{name: "height too large", width: 300, height: 3000, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := streetview.ValidateDimensions(tt.width, tt.height)
			if tt.wantErr {
				if !errors.Is(err, streetview.ErrInvalidDimensions) {
					t.Fatalf("ValidateDimensions(%d, %d) = %v, want ErrInvalidDimensions", tt.width, tt.height, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ValidateDimensions(%d, %d) returned error: %v", tt.width, tt.height, err)
			}
		})
	}
}

func TestFetchView(t *testing.T) {
	var query url.Values
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = r.URL.Query()
		w.Write(encodeTestPNG(t, 100, 50))
	}))

	info := &streetview.URLInfo{
		Latitude:   51.517,
		Longitude:  -0.123,
		FOV:        29.5,
		Yaw:        120.5,
		Pitch:      90,
		PanoramaID: testPanoramaID,
	}
	img, err := client.FetchView(context.Background(), info, 100, 50)
	if err != nil {
		t.Fatalf("FetchView returned error: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 100 || bounds.Dy() != 50 {
		t.Errorf("bounds = %dx%d, want 100x50", bounds.Dx(), bounds.Dy())
	}

	if got := query.Get("output"); got != "thumbnail" {
		t.Errorf("output = %q, want thumbnail", got)
	}
	if got := query.Get("panoid"); got != testPanoramaID {
		t.Errorf("panoid = %q, want %q", got, testPanoramaID)
	}
	if got := query.Get("yaw"); got != "120.5" {
		t.Errorf("yaw = %q, want 120.5", got)
	}
	// The API takes pitch relative to the horizon, inverted.
	if got := query.Get("pitch"); got != "0" {
		t.Errorf("pitch = %q, want 0", got)
	}
	if got := query.Get("thumbfov"); got != "30" {
		t.Errorf("thumbfov = %q, want 30", got)
	}
}

func TestFetchViewResizesMismatchedResponse(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(encodeTestPNG(t, 100, 50))
	}))

	info := &streetview.URLInfo{FOV: 75, Pitch: 90, PanoramaID: testPanoramaID}
	img, err := client.FetchView(context.Background(), info, 200, 100)
	if err != nil {
		t.Fatalf("FetchView returned error: %v", err)
	}
	if bounds := img.Bounds(); bounds.Dx() != 200 || bounds.Dy() != 100 {
		t.Errorf("bounds = %dx%d, want 200x100", bounds.Dx(), bounds.Dy())
	}
}

func TestFetchViewRejectsBadDimensions(t *testing.T) {
	client := newTestClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request sent for invalid dimensions")
	}))

	info := &streetview.URLInfo{FOV: 75, Pitch: 90, PanoramaID: testPanoramaID}
	_, err := client.FetchView(context.Background(), info, 10, 10)
	if !errors.Is(err, streetview.ErrInvalidDimensions) {
		t.Fatalf("error = %v, want ErrInvalidDimensions", err)
	}
}

func encodeTestPNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.Set(x, y, color.RGBA{R: 200, G: 100, B: 50, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}
