package streetview_test

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"streetview-download/internal/streetview"
)

func TestDefaultSettings(t *testing.T) {
	settings := streetview.DefaultSettings()
	if got := settings.Zoom(); got != 0 {
		t.Errorf("Zoom() = %d, want 0", got)
	}
	if diff := cmp.Diff(streetview.Coordinate{X: 0, Y: 0}, settings.TopLeft()); diff != "" {
		t.Errorf("TopLeft() mismatch (-want+got):\n%v", diff)
	}
	if diff := cmp.Diff(streetview.Coordinate{X: 1, Y: 1}, settings.BottomRight()); diff != "" {
		t.Errorf("BottomRight() mismatch (-want+got):\n%v", diff)
	}
	if got := settings.Tiles(); got != 1 {
		t.Errorf("Tiles() = %d, want 1", got)
	}
	if settings.IsZero() {
		t.Error("IsZero() = true for constructed settings")
	}
}

func TestNewSettingsFullGrid(t *testing.T) {
	tiles := []int{1, 2, 8, 32, 128, 512}
	for zoom := streetview.MinZoom; zoom <= streetview.MaxZoom; zoom++ {
		settings, err := streetview.NewSettings(zoom)
		if err != nil {
			t.Fatalf("NewSettings(%d) returned error: %v", zoom, err)
		}
		if got := settings.Tiles(); got != tiles[zoom] {
			t.Errorf("NewSettings(%d).Tiles() = %d, want %d", zoom, got, tiles[zoom])
		}
	}
	if _, err := streetview.NewSettings(-1); !errors.Is(err, streetview.ErrInvalidZoom) {
		t.Errorf("NewSettings(-1) error = %v, want ErrInvalidZoom", err)
	}
}

func TestNewSettingsRegion(t *testing.T) {
	tests := []struct {
		name        string
		zoom        int
		topLeft     streetview.Coordinate
		bottomRight streetview.Coordinate
		wantErr     error
		wantTiles   int
	}{
		{
			name:        "single tile at zoom 0",
			zoom:        0,
			bottomRight: streetview.Coordinate{X: 1, Y: 1},
			wantTiles:   1,
		},
		{
			name:        "interior region at zoom 5",
			zoom:        5,
			topLeft:     streetview.Coordinate{X: 10, Y: 10},
			bottomRight: streetview.Coordinate{X: 13, Y: 14},
			wantTiles:   12,
		},
		{
			name:        "single column at zoom 5",
			zoom:        5,
			topLeft:     streetview.Coordinate{X: 8, Y: 10},
			bottomRight: streetview.Coordinate{X: 9, Y: 13},
			wantTiles:   3,
		},
		{
			name:        "degenerate region",
			zoom:        0,
			bottomRight: streetview.Coordinate{X: 0, Y: 0},
			wantErr:     streetview.ErrInvalidRegion,
		},
		{
			name:        "inverted corners",
			zoom:        0,
			topLeft:     streetview.Coordinate{X: 3, Y: 3},
			bottomRight: streetview.Coordinate{X: 2, Y: 2},
			wantErr:     streetview.ErrOutOfBounds,
		},
		{
			name:        "bottom-right beyond extent",
			zoom:        1,
			topLeft:     streetview.Coordinate{X: 1, Y: 0},
			bottomRight: streetview.Coordinate{X: 3, Y: 4},
			wantErr:     streetview.ErrOutOfBounds,
		},
		{
			name:        "negative top-left",
			zoom:        2,
			topLeft:     streetview.Coordinate{X: -1, Y: 0},
			bottomRight: streetview.Coordinate{X: 2, Y: 2},
			wantErr:     streetview.ErrOutOfBounds,
		},
		{
			name:        "invalid zoom",
			zoom:        -1,
			topLeft:     streetview.Coordinate{X: 1, Y: 2},
			bottomRight: streetview.Coordinate{X: 4, Y: 5},
			wantErr:     streetview.ErrInvalidZoom,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			settings, err := streetview.NewSettingsRegion(tt.zoom, tt.topLeft, tt.bottomRight)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got := settings.Tiles(); got != tt.wantTiles {
				t.Errorf("Tiles() = %d, want %d", got, tt.wantTiles)
			}
		})
	}
}

func TestSettingsDimensions(t *testing.T) {
	settings, err := streetview.NewSettingsRegion(5,
		streetview.Coordinate{X: 10, Y: 10}, streetview.Coordinate{X: 13, Y: 14})
	if err != nil {
		t.Fatalf("NewSettingsRegion returned error: %v", err)
	}
	if got := settings.Width(); got != 3 {
		t.Errorf("Width() = %d, want 3", got)
	}
	if got := settings.Height(); got != 4 {
		t.Errorf("Height() = %d, want 4", got)
	}
}

func TestParseRegion(t *testing.T) {
	settings, err := streetview.ParseRegion(5, " 10,10, 13,14")
	if err != nil {
		t.Fatalf("ParseRegion returned error: %v", err)
	}
	if got := settings.TopLeft(); got != (streetview.Coordinate{X: 10, Y: 10}) {
		t.Errorf("TopLeft() = %v, want (10, 10)", got)
	}
	if got := settings.BottomRight(); got != (streetview.Coordinate{X: 13, Y: 14}) {
		t.Errorf("BottomRight() = %v, want (13, 14)", got)
	}

	for _, region := range []string{"", "1,2,3", "1,2,3,4,5", "a,b,c,d", "1,2,,4"} {
		if _, err := streetview.ParseRegion(5, region); !errors.Is(err, streetview.ErrInvalidRegion) {
			t.Errorf("ParseRegion(%q) error = %v, want ErrInvalidRegion", region, err)
		}
	}

	// Corner validation still applies to parsed regions.
	if _, err := streetview.ParseRegion(1, "0,0,3,4"); !errors.Is(err, streetview.ErrOutOfBounds) {
		t.Errorf("out-of-extent region error = %v, want ErrOutOfBounds", err)
	}
}

func TestSettingsZeroValue(t *testing.T) {
	var settings streetview.Settings
	if !settings.IsZero() {
		t.Error("IsZero() = false for zero value")
	}
}
