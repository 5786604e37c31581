package streetview

import "fmt"

// PanoramaIDLength is the fixed length of every panorama identifier
const PanoramaIDLength = 22

// ValidatePanoramaID checks that id is exactly 22 characters drawn from
// ASCII letters, digits, '-' and '_'.
func ValidatePanoramaID(id string) error {
	if len(id) != PanoramaIDLength {
		return fmt.Errorf("%w: must be %d characters, got %d", ErrInvalidPanoramaID, PanoramaIDLength, len(id))
	}
	for _, r := range id {
		switch {
		case r >= 'a' && r <= 'z':
		case r >= 'A' && r <= 'Z':
		case r >= '0' && r <= '9':
		case r == '-' || r == '_':
		default:
			return fmt.Errorf("%w: character %q is not allowed", ErrInvalidPanoramaID, r)
		}
	}
	return nil
}
