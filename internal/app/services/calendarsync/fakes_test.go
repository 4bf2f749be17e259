package calendarsync

import (
	"context"
	"fmt"
	"sort"
	"time"

	"mediconnect-service/internal/app/models"
)

// In-memory stores backing the usecase tests. They mimic the mongo
// repositories' contract: not-found returns (nil, nil) and finders
// return copies so callers must persist through Update*.

type fakeScheduleRepo struct {
	templates  map[string]*models.ScheduleTemplate
	exceptions map[string]*models.ScheduleException
	nextID     int
}

func newFakeScheduleRepo() *fakeScheduleRepo {
	return &fakeScheduleRepo{
		templates:  map[string]*models.ScheduleTemplate{},
		exceptions: map[string]*models.ScheduleException{},
	}
}

func (r *fakeScheduleRepo) id(prefix string) string {
	r.nextID++
	return fmt.Sprintf("%s-%d", prefix, r.nextID)
}

func (r *fakeScheduleRepo) FindTemplateByUserAndDay(_ context.Context, userID string, dayOfWeek int) (*models.ScheduleTemplate, error) {
	for _, template := range r.templates {
		if template.UserID == userID && template.DayOfWeek == dayOfWeek {
			copied := *template
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindTemplateByID(_ context.Context, templateID string) (*models.ScheduleTemplate, error) {
	template, ok := r.templates[templateID]
	if !ok {
		return nil, nil
	}
	copied := *template
	return &copied, nil
}

func (r *fakeScheduleRepo) FindTemplatesByUserID(_ context.Context, userID string) ([]models.ScheduleTemplate, error) {
	var out []models.ScheduleTemplate
	for _, template := range r.templates {
		if template.UserID == userID {
			out = append(out, *template)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) CreateTemplate(_ context.Context, template *models.ScheduleTemplate) (string, error) {
	id := r.id("tpl")
	copied := *template
	copied.ID = id
	r.templates[id] = &copied
	return id, nil
}

func (r *fakeScheduleRepo) UpdateTemplate(_ context.Context, template *models.ScheduleTemplate) error {
	if _, ok := r.templates[template.ID]; !ok {
		return fmt.Errorf("template %s not found", template.ID)
	}
	copied := *template
	r.templates[template.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) FindExceptionByUserAndDate(_ context.Context, userID, date string) (*models.ScheduleException, error) {
	for _, exception := range r.exceptions {
		if exception.UserID == userID && exception.Date == date {
			copied := *exception
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeScheduleRepo) FindExceptionByID(_ context.Context, exceptionID string) (*models.ScheduleException, error) {
	exception, ok := r.exceptions[exceptionID]
	if !ok {
		return nil, nil
	}
	copied := *exception
	return &copied, nil
}

func (r *fakeScheduleRepo) FindExceptionsByUserFromDate(_ context.Context, userID, fromDate string) ([]models.ScheduleException, error) {
	var out []models.ScheduleException
	for _, exception := range r.exceptions {
		if exception.UserID == userID && exception.Date >= fromDate {
			out = append(out, *exception)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date < out[j].Date })
	return out, nil
}

func (r *fakeScheduleRepo) FindExceptionsWithoutSource(_ context.Context, userID string) ([]models.ScheduleException, error) {
	var out []models.ScheduleException
	for _, exception := range r.exceptions {
		if exception.UserID == userID && (exception.SyncSource == "" || exception.SyncSource == models.SyncSourceManual) {
			out = append(out, *exception)
		}
	}
	return out, nil
}

func (r *fakeScheduleRepo) CreateException(_ context.Context, exception *models.ScheduleException) (string, error) {
	id := r.id("exc")
	copied := *exception
	copied.ID = id
	r.exceptions[id] = &copied
	return id, nil
}

func (r *fakeScheduleRepo) UpdateException(_ context.Context, exception *models.ScheduleException) error {
	if _, ok := r.exceptions[exception.ID]; !ok {
		return fmt.Errorf("exception %s not found", exception.ID)
	}
	copied := *exception
	r.exceptions[exception.ID] = &copied
	return nil
}

func (r *fakeScheduleRepo) DeleteExceptionByID(_ context.Context, exceptionID string) error {
	delete(r.exceptions, exceptionID)
	return nil
}

type fakeConnectionRepo struct {
	connections map[string]*models.CalendarConnection
	nextID      int
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{connections: map[string]*models.CalendarConnection{}}
}

func (r *fakeConnectionRepo) FindActiveByUserID(_ context.Context, userID string) (*models.CalendarConnection, error) {
	for _, connection := range r.connections {
		if connection.UserID == userID && connection.IsActive {
			copied := *connection
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) FindByID(_ context.Context, connectionID string) (*models.CalendarConnection, error) {
	connection, ok := r.connections[connectionID]
	if !ok {
		return nil, nil
	}
	copied := *connection
	return &copied, nil
}

func (r *fakeConnectionRepo) FindByUserAndProvider(_ context.Context, userID string, provider models.SyncProvider) (*models.CalendarConnection, error) {
	for _, connection := range r.connections {
		if connection.UserID == userID && connection.Provider == provider {
			copied := *connection
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeConnectionRepo) FindAllActive(_ context.Context) ([]models.CalendarConnection, error) {
	var out []models.CalendarConnection
	for _, connection := range r.connections {
		if connection.IsActive {
			out = append(out, *connection)
		}
	}
	return out, nil
}

func (r *fakeConnectionRepo) CreateConnection(_ context.Context, connection *models.CalendarConnection) (string, error) {
	r.nextID++
	id := fmt.Sprintf("conn-%d", r.nextID)
	copied := *connection
	copied.ID = id
	r.connections[id] = &copied
	return id, nil
}

func (r *fakeConnectionRepo) UpdateConnection(_ context.Context, connection *models.CalendarConnection) error {
	if _, ok := r.connections[connection.ID]; !ok {
		return fmt.Errorf("connection %s not found", connection.ID)
	}
	copied := *connection
	r.connections[connection.ID] = &copied
	return nil
}

type fakeSyncedEventRepo struct {
	records map[string]*models.SyncedEvent
	nextID  int
}

func newFakeSyncedEventRepo() *fakeSyncedEventRepo {
	return &fakeSyncedEventRepo{records: map[string]*models.SyncedEvent{}}
}

func (r *fakeSyncedEventRepo) FindByExternalAndLocal(_ context.Context, userID, externalEventID, localEventID string) (*models.SyncedEvent, error) {
	for _, record := range r.records {
		if record.UserID == userID && record.ExternalEventID == externalEventID && record.LocalEventID == localEventID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSyncedEventRepo) FindByUserAndExternalID(_ context.Context, userID, externalEventID string) (*models.SyncedEvent, error) {
	for _, record := range r.records {
		if record.UserID == userID && record.ExternalEventID == externalEventID {
			copied := *record
			return &copied, nil
		}
	}
	return nil, nil
}

func (r *fakeSyncedEventRepo) FindByConnection(_ context.Context, userID, connectionID string) ([]models.SyncedEvent, error) {
	var out []models.SyncedEvent
	for _, record := range r.records {
		if record.UserID == userID && record.ConnectionID == connectionID {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeSyncedEventRepo) FindByConnectionAndDirection(_ context.Context, userID, connectionID string, direction models.SyncDirection) ([]models.SyncedEvent, error) {
	var out []models.SyncedEvent
	for _, record := range r.records {
		if record.UserID == userID && record.ConnectionID == connectionID && record.SyncDirection == direction {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeSyncedEventRepo) FindCompletedByConnection(_ context.Context, userID, connectionID string) ([]models.SyncedEvent, error) {
	var out []models.SyncedEvent
	for _, record := range r.records {
		if record.UserID == userID && record.ConnectionID == connectionID && record.SyncStatus == models.SyncStatusCompleted {
			out = append(out, *record)
		}
	}
	return out, nil
}

func (r *fakeSyncedEventRepo) FindRecentByUserID(_ context.Context, userID string, limit int) ([]models.SyncedEvent, error) {
	var out []models.SyncedEvent
	for _, record := range r.records {
		if record.UserID == userID {
			out = append(out, *record)
		}
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *fakeSyncedEventRepo) CreateSyncedEvent(_ context.Context, event *models.SyncedEvent) (string, error) {
	r.nextID++
	id := fmt.Sprintf("rec-%d", r.nextID)
	copied := *event
	copied.ID = id
	r.records[id] = &copied
	return id, nil
}

func (r *fakeSyncedEventRepo) UpdateSyncedEvent(_ context.Context, event *models.SyncedEvent) error {
	if _, ok := r.records[event.ID]; !ok {
		return fmt.Errorf("synced event %s not found", event.ID)
	}
	copied := *event
	r.records[event.ID] = &copied
	return nil
}

func (r *fakeSyncedEventRepo) DeleteByID(_ context.Context, syncedEventID string) error {
	delete(r.records, syncedEventID)
	return nil
}

type fakeLocker struct {
	refuse bool
}

func (l *fakeLocker) TryLock(_ context.Context, _ string, _ time.Duration) (bool, string, error) {
	if l.refuse {
		return false, "", nil
	}
	return true, "lock-value", nil
}

func (l *fakeLocker) Unlock(_ context.Context, _, _ string) error {
	return nil
}

type fakeProviderClient struct {
	feed       *models.ProviderFeed
	fetchErr   error
	refreshErr error
	created    []models.EventSpec
	deleted    []string
	refreshed  int
}

func (c *fakeProviderClient) FetchEvents(_ context.Context, _ *models.CalendarConnection, _, _ time.Time) (*models.ProviderFeed, error) {
	if c.fetchErr != nil {
		return nil, c.fetchErr
	}
	if c.feed == nil {
		return &models.ProviderFeed{}, nil
	}
	return c.feed, nil
}

func (c *fakeProviderClient) CreateEvent(_ context.Context, _ *models.CalendarConnection, spec *models.EventSpec) (string, error) {
	c.created = append(c.created, *spec)
	return fmt.Sprintf("pushed-%d", len(c.created)), nil
}

func (c *fakeProviderClient) DeleteEvent(_ context.Context, _ *models.CalendarConnection, externalEventID string) error {
	c.deleted = append(c.deleted, externalEventID)
	return nil
}

func (c *fakeProviderClient) RefreshCredentials(_ context.Context, connection *models.CalendarConnection) error {
	if c.refreshErr != nil {
		return c.refreshErr
	}
	c.refreshed++
	expiry := time.Now().Add(time.Hour)
	connection.TokenExpiry = &expiry
	return nil
}

type fakeNotifier struct {
	published int
}

func (n *fakeNotifier) PublishSyncCompleted(_ context.Context, _ *models.CalendarConnection, _ *models.SyncResult) error {
	n.published++
	return nil
}
