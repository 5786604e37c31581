package telemetry

import (
	"log"

	"github.com/google/uuid"
	"github.com/posthog/posthog-go"

	"streetview-download/internal/config"
)

// Linker flags
var (
	PostHogKey  string
	PostHogHost string
)

// Tracker sends anonymous usage events to PostHog. A nil Tracker is valid
// and drops all events.
type Tracker struct {
	client     posthog.Client
	distinctID string
}

// New creates a tracker when a PostHog key was linked in and the user opted
// in; otherwise it returns nil. A missing install ID is generated and
// persisted with the settings so events stay distinct per install.
func New(settings *config.UserSettings) *Tracker {
	if PostHogKey == "" || settings == nil || !settings.TelemetryEnabled {
		return nil
	}

	if settings.InstallID == "" {
		settings.InstallID = uuid.NewString()
		if err := config.SaveSettings(settings); err != nil {
			log.Printf("[Telemetry] failed to persist install ID: %v", err)
		}
	}

	client, err := posthog.NewWithConfig(PostHogKey, posthog.Config{
		Endpoint: PostHogHost,
	})
	if err != nil {
		log.Printf("[Telemetry] failed to initialize PostHog: %v", err)
		return nil
	}

	return &Tracker{client: client, distinctID: settings.InstallID}
}

// Track sends an event with optional properties.
func (t *Tracker) Track(event string, props map[string]interface{}) {
	if t == nil || t.client == nil {
		return
	}
	t.client.Enqueue(posthog.Capture{
		DistinctId: t.distinctID,
		Event:      event,
		Properties: props,
	})
}

// Close flushes pending events.
func (t *Tracker) Close() {
	if t == nil || t.client == nil {
		return
	}
	t.client.Close()
}
