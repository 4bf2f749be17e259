package google

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
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

var (
	googleCalendarClientInstance contracts.CalendarProviderClient
	onceGoogleCalendarClient     sync.Once
)

var byDayCodes = [7]string{"MO", "TU", "WE", "TH", "FR", "SA", "SU"}

type googleCalendarClient struct {
	Config     config.Google
	Timezone   string
	HTTPClient *http.Client
	Limiter    *rate.Limiter
	Log        *zap.Logger
}

func NewGoogleCalendarClient(internalConfig *config.InternalConfig, logger *zap.Logger) contracts.CalendarProviderClient {
	onceGoogleCalendarClient.Do(func() {
		maxRPS := internalConfig.Sync.ProviderMaxRPS
		if maxRPS <= 0 {
			maxRPS = 5
		}
		timeout := time.Duration(internalConfig.Sync.ProviderTimeoutSecs) * time.Second
		if timeout <= 0 {
			timeout = constvars.ProviderHTTPTimeout
		}
		googleCalendarClientInstance = &googleCalendarClient{
			Config:     internalConfig.Google,
			Timezone:   internalConfig.App.Timezone,
			HTTPClient: &http.Client{Timeout: timeout},
			Limiter:    rate.NewLimiter(rate.Limit(maxRPS), maxRPS),
			Log:        logger,
		}
	})
	return googleCalendarClientInstance
}

// Google wire shapes. Start/End carry either a date or a dateTime.
type googleEventTime struct {
	Date     string `json:"date,omitempty"`
	DateTime string `json:"dateTime,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

type googleEvent struct {
	ID               string          `json:"id,omitempty"`
	Summary          string          `json:"summary,omitempty"`
	Description      string          `json:"description,omitempty"`
	Location         string          `json:"location,omitempty"`
	Status           string          `json:"status,omitempty"`
	RecurringEventID string          `json:"recurringEventId,omitempty"`
	Recurrence       []string        `json:"recurrence,omitempty"`
	EventType        string          `json:"eventType,omitempty"`
	Start            googleEventTime `json:"start"`
	End              googleEventTime `json:"end"`
}

type googleEventList struct {
	Items         []googleEvent `json:"items"`
	NextPageToken string        `json:"nextPageToken,omitempty"`
}

func (c *googleCalendarClient) FetchEvents(ctx context.Context, connection *models.CalendarConnection, timeMin, timeMax time.Time) (*models.ProviderFeed, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("googleCalendarClient.FetchEvents called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingConnectionIDKey, connection.ID),
	)

	raw, err := c.listEvents(ctx, connection, timeMin, timeMax, false)
	if err != nil {
		return nil, err
	}
	expanded, err := c.listEvents(ctx, connection, timeMin, timeMax, true)
	if err != nil {
		return nil, err
	}

	feed := &models.ProviderFeed{}
	for _, item := range raw {
		event, err := c.toExternalEvent(&item)
		if err != nil {
			c.Log.Warn("googleCalendarClient.FetchEvents skipping malformed event",
				zap.String(constvars.LoggingEventIDKey, item.ID),
				zap.Error(err),
			)
			continue
		}
		feed.RawEvents = append(feed.RawEvents, models.RawProviderEvent{
			Event:           *event,
			RecurrenceRules: item.Recurrence,
		})
	}
	for _, item := range expanded {
		event, err := c.toExternalEvent(&item)
		if err != nil {
			c.Log.Warn("googleCalendarClient.FetchEvents skipping malformed event",
				zap.String(constvars.LoggingEventIDKey, item.ID),
				zap.Error(err),
			)
			continue
		}
		feed.Expanded = append(feed.Expanded, *event)
	}
	return feed, nil
}

func (c *googleCalendarClient) listEvents(ctx context.Context, connection *models.CalendarConnection, timeMin, timeMax time.Time, singleEvents bool) ([]googleEvent, error) {
	var items []googleEvent
	pageToken := ""
	for {
		query := url.Values{}
		query.Set("timeMin", timeMin.Format(time.RFC3339))
		query.Set("timeMax", timeMax.Format(time.RFC3339))
		query.Set("maxResults", "2500")
		if singleEvents {
			query.Set("singleEvents", "true")
			query.Set("orderBy", "startTime")
		}
		if pageToken != "" {
			query.Set("pageToken", pageToken)
		}
		endpoint := fmt.Sprintf("%s/calendars/primary/events?%s", c.Config.CalendarURL, query.Encode())

		body, err := c.do(ctx, connection, constvars.MethodGet, endpoint, nil)
		if err != nil {
			return nil, err
		}

		var page googleEventList
		if err := json.Unmarshal(body, &page); err != nil {
			return nil, exceptions.ErrProviderTransport(err)
		}
		items = append(items, page.Items...)
		if page.NextPageToken == "" {
			return items, nil
		}
		pageToken = page.NextPageToken
	}
}

func (c *googleCalendarClient) CreateEvent(ctx context.Context, connection *models.CalendarConnection, spec *models.EventSpec) (string, error) {
	payload, err := c.buildEventPayload(spec)
	if err != nil {
		return "", err
	}
	requestJSON, err := json.Marshal(payload)
	if err != nil {
		return "", exceptions.ErrCannotMarshalJSON(err)
	}

	endpoint := fmt.Sprintf("%s/calendars/primary/events", c.Config.CalendarURL)
	body, err := c.do(ctx, connection, constvars.MethodPost, endpoint, bytes.NewBuffer(requestJSON))
	if err != nil {
		return "", err
	}

	var created googleEvent
	if err := json.Unmarshal(body, &created); err != nil {
		return "", exceptions.ErrProviderTransport(err)
	}
	return created.ID, nil
}

func (c *googleCalendarClient) DeleteEvent(ctx context.Context, connection *models.CalendarConnection, externalEventID string) error {
	endpoint := fmt.Sprintf("%s/calendars/primary/events/%s", c.Config.CalendarURL, url.PathEscape(externalEventID))
	_, err := c.do(ctx, connection, constvars.MethodDelete, endpoint, nil)
	return err
}

func (c *googleCalendarClient) RefreshCredentials(ctx context.Context, connection *models.CalendarConnection) error {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	c.Log.Info("googleCalendarClient.RefreshCredentials called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingConnectionIDKey, connection.ID),
	)

	form := url.Values{}
	form.Set("client_id", c.Config.ClientID)
	form.Set("client_secret", c.Config.ClientSecret)
	form.Set("refresh_token", connection.RefreshToken)
	form.Set("grant_type", "refresh_token")

	if err := c.Limiter.Wait(ctx); err != nil {
		return exceptions.ErrProviderTransport(err)
	}
	req, err := http.NewRequestWithContext(ctx, constvars.MethodPost, c.Config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationForm)

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return exceptions.ErrProviderTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != constvars.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		return exceptions.ErrProviderTokenRefresh(fmt.Errorf("token endpoint returned %d: %s", resp.StatusCode, string(bodyBytes)))
	}

	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return exceptions.ErrProviderTokenRefresh(err)
	}

	connection.AccessToken = token.AccessToken
	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	connection.TokenExpiry = &expiry
	return nil
}

// do runs one authenticated, rate-limited call and maps the failure
// taxonomy. A 404/410 on DELETE is treated as success.
func (c *googleCalendarClient) do(ctx context.Context, connection *models.CalendarConnection, method, endpoint string, body io.Reader) ([]byte, error) {
	if err := c.Limiter.Wait(ctx); err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, body)
	if err != nil {
		return nil, exceptions.ErrCreateHTTPRequest(err)
	}
	req.Header.Set(constvars.HeaderAuthorization, "Bearer "+connection.AccessToken)
	if body != nil {
		req.Header.Set(constvars.HeaderContentType, constvars.MIMEApplicationJSON)
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return nil, exceptions.ErrProviderTransport(err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == constvars.StatusUnauthorized:
		return nil, exceptions.ErrProviderAuthExpired(fmt.Errorf("status %d", resp.StatusCode))
	case resp.StatusCode == constvars.StatusTooManyRequests || resp.StatusCode == constvars.StatusForbidden:
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

func (c *googleCalendarClient) toExternalEvent(item *googleEvent) (*models.ExternalEvent, error) {
	event := &models.ExternalEvent{
		ID:               item.ID,
		Summary:          item.Summary,
		Description:      item.Description,
		Location:         item.Location,
		Status:           item.Status,
		RecurringGroupID: item.RecurringEventID,
		IsRecurring:      len(item.Recurrence) > 0 || item.RecurringEventID != "",
	}

	if item.Start.Date != "" {
		event.IsAllDay = true
		event.StartDate = item.Start.Date
		// Google's all-day end date is exclusive.
		event.EndDate = item.Start.Date
		if item.End.Date != "" {
			if end, err := clock.ParseDate(item.End.Date); err == nil {
				end = end.AddDate(0, 0, -1)
				if formatted := clock.FormatDate(end); formatted >= event.StartDate {
					event.EndDate = formatted
				}
			}
		}
		return event, nil
	}

	startDate, startTime, err := splitDateTime(item.Start.DateTime)
	if err != nil {
		return nil, exceptions.ErrMalformedEvent(err, item.ID)
	}
	endDate, endTime, err := splitDateTime(item.End.DateTime)
	if err != nil {
		return nil, exceptions.ErrMalformedEvent(err, item.ID)
	}
	event.StartDate = startDate
	event.StartTime = startTime
	event.EndDate = endDate
	event.EndTime = endTime
	return event, nil
}

func splitDateTime(value string) (string, string, error) {
	if value == "" {
		return "", "", fmt.Errorf("empty dateTime")
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return "", "", err
	}
	return clock.FormatDate(parsed), parsed.Format("15:04"), nil
}

func (c *googleCalendarClient) buildEventPayload(spec *models.EventSpec) (*googleEvent, error) {
	payload := &googleEvent{Summary: spec.Summary, Description: spec.Description}

	if spec.AllDay {
		if spec.Date == "" {
			return nil, exceptions.ErrCannotParseDate(fmt.Errorf("all-day event needs a date"))
		}
		end, err := clock.ParseDate(spec.Date)
		if err != nil {
			return nil, exceptions.ErrCannotParseDate(err)
		}
		payload.Start = googleEventTime{Date: spec.Date}
		payload.End = googleEventTime{Date: clock.FormatDate(end.AddDate(0, 0, 1))}
		return payload, nil
	}

	date := spec.Date
	if spec.Recurring && spec.DayOfWeek != nil {
		date = nextDateForWeekday(*spec.DayOfWeek)
		payload.Recurrence = []string{fmt.Sprintf("RRULE:FREQ=WEEKLY;BYDAY=%s", byDayCodes[*spec.DayOfWeek%7])}
	}
	if date == "" {
		return nil, exceptions.ErrCannotParseDate(fmt.Errorf("timed event needs a date or weekday"))
	}

	payload.Start = googleEventTime{
		DateTime: fmt.Sprintf("%sT%s:00", date, spec.Start),
		TimeZone: c.Timezone,
	}
	payload.End = googleEventTime{
		DateTime: fmt.Sprintf("%sT%s:00", date, spec.End),
		TimeZone: c.Timezone,
	}
	return payload, nil
}

// nextDateForWeekday returns today or the next calendar date falling on
// the given Monday-indexed weekday.
func nextDateForWeekday(dayOfWeek int) string {
	now := time.Now()
	current := (int(now.Weekday()) + 6) % 7
	delta := (dayOfWeek - current + 7) % 7
	return clock.FormatDate(now.AddDate(0, 0, delta))
}
