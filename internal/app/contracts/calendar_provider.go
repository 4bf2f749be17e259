package contracts

import (
	"context"
	"mediconnect-service/internal/app/models"
	"time"
)

// CalendarProviderClient is the capability contract over one external
// calendar backend. Implementations map transport failures onto the
// exceptions taxonomy (auth expired, rate limited, transport) and treat
// delete-of-missing as success.
type CalendarProviderClient interface {
	// FetchEvents returns both the raw series/singles and the expanded
	// occurrences within [timeMin, timeMax].
	FetchEvents(ctx context.Context, connection *models.CalendarConnection, timeMin, timeMax time.Time) (*models.ProviderFeed, error)

	// CreateEvent pushes an event and returns the provider-assigned id.
	CreateEvent(ctx context.Context, connection *models.CalendarConnection, spec *models.EventSpec) (string, error)

	// DeleteEvent removes a pushed event. A provider-side not-found is
	// a no-op, not an error.
	DeleteEvent(ctx context.Context, connection *models.CalendarConnection, externalEventID string) error

	// RefreshCredentials renews the access token in place when expired.
	// Callers persist the refreshed connection immediately.
	RefreshCredentials(ctx context.Context, connection *models.CalendarConnection) error
}
