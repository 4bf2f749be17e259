package routers

import (
	"mediconnect-service/internal/app/delivery/http/controllers"
	"mediconnect-service/internal/app/delivery/http/middlewares"

	"github.com/go-chi/chi/v5"
)

func attachCalendarSyncRoutes(router chi.Router, m *middlewares.Middlewares, c *controllers.CalendarSyncController) {
	router.With(m.Authenticate).Get("/status", c.GetConnectionStatus)
	router.With(m.Authenticate).Post("/sync", c.Sync)
	router.With(m.Authenticate).Post("/conflicts/resolve", c.ResolveConflicts)
	router.With(m.Authenticate).Post("/events/classify", c.ClassifyRecurrentEvent)
	router.With(m.Authenticate).Post("/events/track-pre-existing", c.TrackPreExistingEvents)
	router.With(m.Authenticate).Put("/settings", c.UpdateSyncSettings)
	router.With(m.Authenticate).Delete("/connection", c.Disconnect)
	router.With(m.Authenticate).Get("/history", c.SyncHistory)
}
