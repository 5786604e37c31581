package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"streetview-download/internal/config"
	"streetview-download/internal/telemetry"
)

func TestNewWithoutKeyReturnsNil(t *testing.T) {
	// No PostHog key is linked into test builds.
	tracker := telemetry.New(&config.UserSettings{TelemetryEnabled: true})
	require.Nil(t, tracker)
}

func TestNewWithoutSettingsReturnsNil(t *testing.T) {
	require.Nil(t, telemetry.New(nil))
}

func TestNilTrackerIsSafe(t *testing.T) {
	var tracker *telemetry.Tracker
	tracker.Track("panorama_download_complete", map[string]interface{}{"zoom": 2})
	tracker.Close()
}
