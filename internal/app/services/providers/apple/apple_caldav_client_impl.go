package apple

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/exceptions"
	"net/http"
	"strings"
	"sync"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/google/uuid"
	"github.com/teambition/rrule-go"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	appleCalDAVClientInstance contracts.CalendarProviderClient
	onceAppleCalDAVClient     sync.Once
)

// appleCalDAVClient talks to an Apple calendar over CalDAV-style HTTP:
// one ICS document per calendar on fetch, one ICS object per event for
// create/delete. Auth is HTTP basic with the account email and an
// app-specific password, which never expires, so RefreshCredentials is
// a no-op.
type appleCalDAVClient struct {
	BaseURL    string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Log        *zap.Logger
}

func NewAppleCalDAVClient(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.CalendarProviderClient {
	onceAppleCalDAVClient.Do(func() {
		maxRPS := internalConfig.Sync.ProviderMaxRPS
		if maxRPS <= 0 {
			maxRPS = 5
		}
		timeout := time.Duration(internalConfig.Sync.ProviderTimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = constvars.ProviderHTTPTimeout
		}
		appleCalDAVClientInstance = &appleCalDAVClient{
			BaseURL:    strings.TrimRight(internalConfig.Apple.CalDAVBaseURL, "/"),
			HTTPClient: &http.Client{Timeout: timeout},
			Limiter:    rate.NewLimiter(rate.Limit(maxRPS), maxRPS),
			Log:        logger,
		}
	})
	return appleCalDAVClientInstance
}

func (c *appleCalDAVClient) FetchEvents(ctx context.Context, connection *models.CalendarConnection, timeMin, timeMax time.Time) (*models.ProviderFeed, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("appleCalDAVClient.FetchEvents called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingConnectionIDKey, connection.ID),
	)

	body, err := c.do(ctx, connection, constvars.MethodGet, c.calendarURL(connection), nil, "")
	if err != nil {
		return nil, err
	}

	calendar, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}

	feed := &models.ProviderFeed{}
	for _, vevent := range calendar.Events() {
		if err := c.appendVEvent(feed, vevent, timeMin, timeMax); err != nil {
			c.Log.Warn("appleCalDAVClient.FetchEvents skipping malformed VEVENT",
				zap.Error(err),
			)
		}
	}
	return feed, nil
}

// appendVEvent maps one VEVENT into the feed: the raw series entry
// plus either the single occurrence or every expanded occurrence
// inside [timeMin, timeMax].
func (c *appleCalDAVClient) appendVEvent(feed *models.ProviderFeed, vevent *ical.VEvent, timeMin, timeMax time.Time) error {
	uidProp := vevent.GetProperty(ical.ComponentPropertyUniqueId)
	if uidProp == nil || uidProp.Value == "" {
		return fmt.Errorf("missing UID")
	}
	uid := uidProp.Value

	start, err := vevent.GetStartAt()
	if err != nil {
		return exceptions.ErrMalformedEvent(err, uid)
	}
	end, err := vevent.GetEndAt()
	if err != nil || end.Before(start) {
		end = start
	}

	allDay := isAllDayStart(vevent)
	base := models.ExternalEvent{
		ID:       uid,
		IsAllDay: allDay,
		Status:   eventStatus(vevent),
	}
	if p := vevent.GetProperty(ical.ComponentPropertySummary); p != nil {
		base.Summary = p.Value
	}
	if p := vevent.GetProperty(ical.ComponentPropertyDescription); p != nil {
		base.Description = p.Value
	}
	if p := vevent.GetProperty(ical.ComponentPropertyLocation); p != nil {
		base.Location = p.Value
	}

	rawRule := ""
	if p := vevent.GetProperty(ical.ComponentProperty(ical.PropertyRrule)); p != nil {
		rawRule = p.Value
	}

	master := base
	setOccurrenceTimes(&master, start, end, allDay)
	var rules []string
	if rawRule != "" {
		rules = []string{rawRule}
	}
	feed.RawEvents = append(feed.RawEvents, models.RawProviderEvent{Event: master, RecurrenceRules: rules})

	if rawRule == "" {
		if start.Before(timeMax) && !end.Before(timeMin) {
			single := base
			setOccurrenceTimes(&single, start, end, allDay)
			feed.Expanded = append(feed.Expanded, single)
		}
		return nil
	}

	rule, err := rrule.StrToRRule(rawRule)
	if err != nil {
		return exceptions.ErrMalformedEvent(err, uid)
	}
	rule.DTStart(start)
	duration := end.Sub(start)

	for i, occStart := range rule.Between(timeMin.In(start.Location()), timeMax.In(start.Location()), true) {
		occurrence := base
		occurrence.IsRecurring = true
		occurrence.RecurringGroupID = uid
		occurrence.ID = fmt.Sprintf("%s:%d", uid, i)
		setOccurrenceTimes(&occurrence, occStart, occStart.Add(duration), allDay)
		feed.Expanded = append(feed.Expanded, occurrence)
	}
	return nil
}

func (c *appleCalDAVClient) CreateEvent(ctx context.Context, connection *models.CalendarConnection, spec *models.EventSpec) (string, error) {
	eventID := uuid.NewString()

	calendar := ical.NewCalendar()
	calendar.SetMethod(ical.MethodPublish)
	vevent := calendar.AddEvent(eventID)
	vevent.SetCreatedTime(time.Now())
	vevent.SetDtStampTime(time.Now())
	vevent.SetSummary(spec.Summary)
	if spec.Description != "" {
		vevent.SetDescription(spec.Description)
	}

	date := spec.Date
	if spec.Recurring && spec.DayOfWeek != nil {
		date = nextDateForWeekday(*spec.DayOfWeek)
		vevent.AddRrule(fmt.Sprintf("FREQ=WEEKLY;BYDAY=%s", byDayCodes[*spec.DayOfWeek%7]))
	}
	day, err := clock.ParseDate(date)
	if err != nil {
		return "", exceptions.ErrCannotParseDate(err)
	}

	if spec.AllDay {
		vevent.SetAllDayStartAt(day)
		vevent.SetAllDayEndAt(day.AddDate(0, 0, 1))
	} else {
		startMin, err := clock.Parse(spec.Start)
		if err != nil {
			return "", exceptions.ErrCannotParseTime(err)
		}
		endMin, err := clock.Parse(spec.End)
		if err != nil {
			return "", exceptions.ErrCannotParseTime(err)
		}
		vevent.SetStartAt(day.Add(time.Duration(startMin) * time.Minute))
		vevent.SetEndAt(day.Add(time.Duration(endMin) * time.Minute))
	}

	if _, err := c.do(ctx, connection, constvars.MethodPut, c.eventURL(connection, eventID), strings.NewReader(calendar.Serialize()), constvars.MIMETextCalendar); err != nil {
		return "", err
	}
	return eventID, nil
}

func (c *appleCalDAVClient) DeleteEvent(ctx context.Context, connection *models.CalendarConnection, externalEventID string) error {
	_, err := c.do(ctx, connection, constvars.MethodDelete, c.eventURL(connection, externalEventID), nil, "")
	return err
}

// RefreshCredentials: app-specific passwords do not expire.
func (c *appleCalDAVClient) RefreshCredentials(ctx context.Context, connection *models.CalendarConnection) error {
	return nil
}

func (c *appleCalDAVClient) calendarURL(connection *models.CalendarConnection) string {
	return fmt.Sprintf("%s/%s/calendar.ics", c.BaseURL, connection.CalendarEmail)
}

func (c *appleCalDAVClient) eventURL(connection *models.CalendarConnection, eventID string) string {
	return fmt.Sprintf("%s/%s/%s.ics", c.BaseURL, connection.CalendarEmail, eventID)
}

func (c *appleCalDAVClient) do(ctx context.Context, connection *models.CalendarConnection, method, endpoint string, body io.Reader, contentType string) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.SetBasicAuth(connection.CalendarEmail, connection.AccessToken)
	if contentType != "" {
		req.Header.Set(constvars.HeaderContentType, contentType)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == constvars.StatusUnauthorized || resp.StatusCode == constvars.StatusForbidden:
		return nil, exceptions.ErrProviderAuthExpired(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == constvars.StatusTooManyRequests:
		return nil, exceptions.ErrProviderRateLimited(fmt.Errorf("status %d", resp.StatusCode))
	case method == constvars.MethodDelete && (resp.StatusCode == constvars.StatusNotFound || resp.StatusCode == constvars.StatusGone):
		return nil, nil
	case resp.StatusCode >= 400:
		return nil, exceptions.ErrProviderBadStatus(fmt.Errorf("%s %s", method, endpoint), resp.StatusCode)
	}

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}
	return responseBody, nil
}

func setOccurrenceTimes(event *models.ExternalEvent, start, end time.Time, allDay bool) {
	event.StartDate = clock.FormatDate(start)
	if allDay {
		// ICS all-day DTEND is exclusive.
		endDate := end.AddDate(0, 0, -1)
		if endDate.Before(start) {
			endDate = start
		}
		event.EndDate = clock.FormatDate(endDate)
		return
	}
	event.EndDate = clock.FormatDate(end)
	event.StartTime = start.Format("15:04")
	event.EndTime = end.Format("15:04")
}

func isAllDayStart(vevent *ical.VEvent) bool {
	dtStart := vevent.GetProperty(ical.ComponentPropertyDtStart)
	if dtStart == nil {
		return false
	}
	if params := dtStart.ICalParameters; params != nil {
		if values, ok := params["VALUE"]; ok && len(values) > 0 && strings.EqualFold(values[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(dtStart.Value, "T")
}

func eventStatus(vevent *ical.VEvent) string {
	if p := vevent.GetProperty(ical.ComponentProperty(ical.PropertyStatus)); p != nil {
		if strings.EqualFold(p.Value, "CANCELLED") {
			return models.EventStatusCancelled
		}
		return strings.ToLower(p.Value)
	}
	return "confirmed"
}

var byDayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

func nextDateForWeekday(dayOfWeek int) string {
	now := time.Now()
	current := (int(now.Weekday()) + 6) % 7
	delta := (dayOfWeek - current + 7) % 7
	return clock.FormatDate(now.AddDate(0, 0, delta))
}
