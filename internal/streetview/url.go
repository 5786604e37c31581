package streetview

import (
	"fmt"
	"strconv"
	"strings"
)

// View parameter bounds as they appear in share URLs
const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
	MinFOV       = 15.0
	MaxFOV       = 90.0
	MinYaw       = 0.0
	MaxYaw       = 360.0
	DefaultYaw   = 0.0
	MinPitch     = 1.0
	MaxPitch     = 179.0
)

const (
	urlPartCount     = 4
	minDataParts     = 5
	panoramaIDIndex  = 4
	panoramaIDPrefix = "1s"
)

// URLInfo is the view information carried by a full Street View URL.
type URLInfo struct {
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	FOV        float64 `json:"fov"`
	Yaw        float64 `json:"yaw"`
	Pitch      float64 `json:"pitch"`
	PanoramaID string  `json:"panoramaId"`
}

// ParseURL validates and parses a full Google Maps Street View URL.
//
// The accepted shape is
//
//	https://www.google.<tld>/maps/@<lat>,<lon>,<view...>/data=!..!1s<panorama id>!..
//
// where the view parameters carry a "2a"/"3a" marker, the field of view
// ("75y"), the pitch ("70.52t") and optionally the yaw ("247.27h", 0 when
// absent), in any order. Unknown view tokens, query parameters and data
// segments past the panorama ID are ignored.
func ParseURL(rawURL string) (*URLInfo, error) {
	u := rawURL
	for _, protocol := range []string{"http://", "https://"} {
		if strings.HasPrefix(u, protocol) {
			u = strings.TrimPrefix(u, protocol)
			break
		}
	}
	u = strings.TrimPrefix(u, "www.")
	u = strings.TrimRight(u, "/")

	parts := strings.Split(u, "/")
	if len(parts) != urlPartCount {
		return nil, fmt.Errorf("%w: expected host/maps/@position/data segments", ErrInvalidURL)
	}
	host := parts[0]
	if !strings.HasPrefix(host, "google.") || host == "google." {
		return nil, fmt.Errorf("%w: %q is not a google maps host", ErrInvalidURL, host)
	}
	if parts[1] != "maps" {
		return nil, fmt.Errorf("%w: missing maps segment", ErrInvalidURL)
	}

	position, ok := strings.CutPrefix(parts[2], "@")
	if !ok {
		return nil, fmt.Errorf("%w: missing @position segment", ErrInvalidURL)
	}
	fields := strings.Split(position, ",")
	if len(fields) < 2 {
		return nil, fmt.Errorf("%w: position needs latitude and longitude", ErrInvalidURL)
	}
	latitude, err := strconv.ParseFloat(fields[0], 64)
	if err != nil || latitude < MinLatitude || latitude > MaxLatitude {
		return nil, fmt.Errorf("%w: invalid latitude %q", ErrInvalidURL, fields[0])
	}
	longitude, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || longitude < MinLongitude || longitude > MaxLongitude {
		return nil, fmt.Errorf("%w: invalid longitude %q", ErrInvalidURL, fields[1])
	}

	fov, yaw, pitch, err := parseViewParams(fields[2:])
	if err != nil {
		return nil, err
	}

	dataPart := parts[3]
	if !strings.HasPrefix(dataPart, "data=") {
		return nil, fmt.Errorf("%w: missing data segment", ErrInvalidURL)
	}
	dataFields := strings.Split(dataPart, "!")
	if len(dataFields) < minDataParts {
		return nil, fmt.Errorf("%w: data segment too short", ErrInvalidURL)
	}
	panoramaID, ok := strings.CutPrefix(dataFields[panoramaIDIndex], panoramaIDPrefix)
	if !ok {
		return nil, fmt.Errorf("%w: missing panorama ID marker", ErrInvalidURL)
	}
	if err := ValidatePanoramaID(panoramaID); err != nil {
		return nil, err
	}

	return &URLInfo{
		Latitude:   latitude,
		Longitude:  longitude,
		FOV:        fov,
		Yaw:        yaw,
		Pitch:      pitch,
		PanoramaID: panoramaID,
	}, nil
}

// parseViewParams extracts fov, yaw and pitch from the position tokens
// after latitude and longitude. Each suffix may appear at most once;
// tokens with an unknown suffix are skipped.
func parseViewParams(tokens []string) (fov, yaw, pitch float64, err error) {
	seen := make(map[byte]bool)
	for _, token := range tokens {
		if token == "" {
			continue
		}
		suffix := token[len(token)-1]
		if !strings.ContainsRune("ayht", rune(suffix)) {
			continue
		}
		if seen[suffix] {
			return 0, 0, 0, fmt.Errorf("%w: duplicate %q parameter", ErrInvalidURL, string(suffix))
		}
		value := token[:len(token)-1]
		switch suffix {
		case 'a':
			if token != "2a" && token != "3a" {
				return 0, 0, 0, fmt.Errorf("%w: invalid marker %q", ErrInvalidURL, token)
			}
		case 'y':
			fov, err = strconv.ParseFloat(value, 64)
			if err != nil || fov < MinFOV || fov > MaxFOV {
				return 0, 0, 0, fmt.Errorf("%w: invalid field of view %q", ErrInvalidURL, token)
			}
		case 'h':
			yaw, err = strconv.ParseFloat(value, 64)
			if err != nil || yaw < MinYaw || yaw >= MaxYaw {
				return 0, 0, 0, fmt.Errorf("%w: invalid yaw %q", ErrInvalidURL, token)
			}
		case 't':
			pitch, err = strconv.ParseFloat(value, 64)
			if err != nil || pitch < MinPitch || pitch > MaxPitch {
				return 0, 0, 0, fmt.Errorf("%w: invalid pitch %q", ErrInvalidURL, token)
			}
		}
		seen[suffix] = true
	}

	// Yaw may be omitted and defaults to 0; the other parameters are
	// required.
	for _, required := range []byte("ayt") {
		if !seen[required] {
			return 0, 0, 0, fmt.Errorf("%w: missing %q parameter", ErrInvalidURL, string(required))
		}
	}
	if !seen['h'] {
		yaw = DefaultYaw
	}
	return fov, yaw, pitch, nil
}
