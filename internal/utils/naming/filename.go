package naming

import (
	"fmt"
)

// shortIDLength keeps filenames readable; the full 22-character ID adds no
// value once the coordinates are in the name.
const shortIDLength = 8

// PanoramaFilename creates a standardized panorama filename with metadata
// Format: streetview_{lat}_{lon}_z{zoom}_{id prefix}{ext}
func PanoramaFilename(latitude, longitude float64, zoom int, panoramaID, ext string) string {
	return fmt.Sprintf("streetview_%s_%s_z%d_%s%s",
		SanitizeCoordinate(latitude, true),
		SanitizeCoordinate(longitude, false),
		zoom,
		ShortPanoramaID(panoramaID),
		ext)
}

// ViewFilename creates a standardized filename for a projected view download
// Format: streetview_view_{lat}_{lon}_{id prefix}{ext}
func ViewFilename(latitude, longitude float64, panoramaID, ext string) string {
	return fmt.Sprintf("streetview_view_%s_%s_%s%s",
		SanitizeCoordinate(latitude, true),
		SanitizeCoordinate(longitude, false),
		ShortPanoramaID(panoramaID),
		ext)
}

// ShortPanoramaID returns the filename-friendly prefix of a panorama ID.
// IDs are base64url, so the prefix needs no further sanitizing.
func ShortPanoramaID(id string) string {
	if len(id) <= shortIDLength {
		return id
	}
	return id[:shortIDLength]
}
