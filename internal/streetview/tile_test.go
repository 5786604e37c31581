package streetview_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"streetview-download/internal/streetview"
)

func TestMaxCoordinates(t *testing.T) {
	want := []streetview.Coordinate{
		{X: 1, Y: 1},
		{X: 2, Y: 1},
		{X: 4, Y: 2},
		{X: 8, Y: 4},
		{X: 16, Y: 8},
		{X: 32, Y: 16},
	}
	for zoom := streetview.MinZoom; zoom <= streetview.MaxZoom; zoom++ {
		got, err := streetview.MaxCoordinates(zoom)
		if err != nil {
			t.Fatalf("MaxCoordinates(%d) returned error: %v", zoom, err)
		}
		if diff := cmp.Diff(want[zoom], got); diff != "" {
			t.Errorf("MaxCoordinates(%d) mismatch (-want+got):\n%v", zoom, diff)
		}
	}
}

func TestMaxCoordinatesInvalidZoom(t *testing.T) {
	for _, zoom := range []int{-1, 6, 42} {
		if _, err := streetview.MaxCoordinates(zoom); !errors.Is(err, streetview.ErrInvalidZoom) {
			t.Errorf("MaxCoordinates(%d) error = %v, want ErrInvalidZoom", zoom, err)
		}
	}
}

func TestValidateZoom(t *testing.T) {
	for zoom := streetview.MinZoom; zoom <= streetview.MaxZoom; zoom++ {
		if err := streetview.ValidateZoom(zoom); err != nil {
			t.Errorf("ValidateZoom(%d) = %v, want nil", zoom, err)
		}
	}
	if err := streetview.ValidateZoom(streetview.MaxZoom + 1); !errors.Is(err, streetview.ErrInvalidZoom) {
		t.Errorf("ValidateZoom(%d) = %v, want ErrInvalidZoom", streetview.MaxZoom+1, err)
	}
}

func TestCoordinateString(t *testing.T) {
	got := streetview.Coordinate{X: 3, Y: 14}.String()
	if want := "(3, 14)"; got != want {
		t.Errorf("String() = %q, want %q", got, want)
	}
}
