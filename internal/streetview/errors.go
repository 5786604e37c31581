package streetview

import (
	"errors"
	"fmt"
	"net/http"
)

// Validation errors, raised before any network I/O
var (
	ErrInvalidZoom       = errors.New("invalid zoom level")
	ErrOutOfBounds       = errors.New("coordinates out of bounds")
	ErrInvalidRegion     = errors.New("invalid tile region")
	ErrInvalidPanoramaID = errors.New("invalid panorama ID")
	ErrInvalidDimensions = errors.New("invalid image dimensions")
	ErrInvalidURL        = errors.New("invalid street view URL")
)

// StatusError reports a non-200 response from one of the Street View
// endpoints.
type StatusError struct {
	Code int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request failed with status: %d", e.Code)
}

// Terminal reports whether retrying cannot help. The endpoints answer 400
// for structurally invalid requests, which stay invalid on retry; any
// other status may be transient.
func (e *StatusError) Terminal() bool {
	return e.Code == http.StatusBadRequest
}
