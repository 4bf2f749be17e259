package calendarsync

import (
	"context"
	"fmt"
	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/clock"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/dto/requests"
	"mediconnect-service/internal/pkg/dto/responses"
	"mediconnect-service/internal/pkg/exceptions"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"
)

var (
	calendarSyncUsecaseInstance contracts.CalendarSyncUsecase
	onceCalendarSyncUsecase     sync.Once
)

type calendarSyncUsecase struct {
	ScheduleRepository    contracts.ScheduleRepository
	ConnectionRepository  contracts.CalendarConnectionRepository
	SyncedEventRepository contracts.SyncedEventRepository
	ProviderClients       map[models.SyncProvider]contracts.CalendarProviderClient
	LockerService         contracts.LockerService
	Notifier              contracts.SyncNotifier
	InternalConfig        *config.InternalConfig
	Log                   *zap.Logger
}

func NewCalendarSyncUsecase(
	scheduleRepository contracts.ScheduleRepository,
	connectionRepository contracts.CalendarConnectionRepository,
	syncedEventRepository contracts.SyncedEventRepository,
	providerClients map[models.SyncProvider]contracts.CalendarProviderClient,
	lockerService contracts.LockerService,
	notifier contracts.SyncNotifier,
	internalConfig *config.InternalConfig,
	logger *zap.Logger,
) contracts.CalendarSyncUsecase {
	onceCalendarSyncUsecase.Do(func() {
		calendarSyncUsecaseInstance = &calendarSyncUsecase{
			ScheduleRepository:    scheduleRepository,
			ConnectionRepository:  connectionRepository,
			SyncedEventRepository: syncedEventRepository,
			ProviderClients:       providerClients,
			LockerService:         lockerService,
			Notifier:              notifier,
			InternalConfig:        internalConfig,
			Log:                   logger,
		}
	})
	return calendarSyncUsecaseInstance
}

func (uc *calendarSyncUsecase) Sync(ctx context.Context, userID string, request *requests.Sync) (*responses.Sync, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarSyncUsecase.Sync called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	connection, err := uc.ConnectionRepository.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, exceptions.ErrCalendarNotConnected(fmt.Errorf("no active connection for user %s", userID))
	}
	if request != nil {
		// Once the user has opted into merging, the flag stays on;
		// write-back cleanup depends on it surviving later passes.
		connection.SyncSettings = models.SyncSettings{
			MergeCalendars:       request.MergeCalendars || connection.SyncSettings.MergeCalendars,
			ReceiveNotifications: request.ReceiveNotifications,
		}
	}

	// Passes for the same connection never overlap; a second caller is
	// refused and retries on the next tick.
	lockKey := fmt.Sprintf(constvars.SyncLockKeyFormat, connection.ID)
	acquired, lockValue, err := uc.LockerService.TryLock(ctx, lockKey, constvars.SyncLockTTL)
	if err != nil {
		return nil, err
	}
	if !acquired {
		return nil, exceptions.ErrSyncAlreadyRunning(fmt.Errorf("sync in flight for connection %s", connection.ID))
	}
	defer func() {
		if unlockErr := uc.LockerService.Unlock(ctx, lockKey, lockValue); unlockErr != nil {
			uc.Log.Warn("calendarSyncUsecase.Sync failed to release lock",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(unlockErr),
			)
		}
	}()

	result, passErr := uc.runSyncPass(ctx, userID, connection)

	now := time.Now()
	connection.LastSyncAt = &now
	if passErr != nil {
		connection.LastSyncStatus = models.SyncStatusFailed
		connection.LastSyncError = passErr.Error()
	} else {
		// Failed passes do not count: pre-existing tracking keys off a
		// zero SyncCount and must still run after a failed first pass.
		connection.SyncCount++
		connection.LastSyncStatus = models.SyncStatusCompleted
		connection.LastSyncError = ""
	}
	if updateErr := uc.ConnectionRepository.UpdateConnection(ctx, connection); updateErr != nil {
		uc.Log.Error("calendarSyncUsecase.Sync failed to update connection bookkeeping",
			zap.String(constvars.LoggingRequestIDKey, requestID),
			zap.Error(updateErr),
		)
	}
	if passErr != nil {
		return nil, passErr
	}

	if connection.SyncSettings.ReceiveNotifications && uc.Notifier != nil {
		if notifyErr := uc.Notifier.PublishSyncCompleted(ctx, connection, result); notifyErr != nil {
			uc.Log.Warn("calendarSyncUsecase.Sync failed to publish notification",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(notifyErr),
			)
		}
	}

	return &responses.Sync{
		Success:        true,
		SyncedEvents:   result.EventsSynced(),
		Conflicts:      result.Conflicts,
		Recurrent:      result.Recurrent,
		Special:        result.Special,
		AllDay:         result.AllDay,
		SyncedEventIDs: result.SyncedEventIDs,
		Debug:          result.Debug,
	}, nil
}

func (uc *calendarSyncUsecase) runSyncPass(ctx context.Context, userID string, connection *models.CalendarConnection) (*models.SyncResult, error) {
	client, ok := uc.ProviderClients[connection.Provider]
	if !ok {
		return nil, exceptions.ErrProviderTransport(fmt.Errorf("no client registered for provider %s", connection.Provider))
	}

	now := time.Now()
	if connection.TokenExpired(now) {
		if err := client.RefreshCredentials(ctx, connection); err != nil {
			return nil, err
		}
		// Persist immediately so a concurrent pass for another user of
		// the same provider never re-refreshes this connection.
		if err := uc.ConnectionRepository.UpdateConnection(ctx, connection); err != nil {
			return nil, err
		}
	}

	if connection.SyncCount == 0 {
		if _, err := uc.TrackPreExistingEvents(ctx, userID); err != nil {
			return nil, err
		}
	}

	writeBack := uc.InternalConfig.Sync.WriteBackByDefault || connection.SyncSettings.MergeCalendars
	if writeBack {
		if err := uc.clearPushedEvents(ctx, userID, connection, client); err != nil {
			return nil, err
		}
	}

	horizon := uc.InternalConfig.Sync.HorizonInDays
	timeMin := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	timeMax := timeMin.AddDate(0, 0, horizon)
	feed, err := client.FetchEvents(ctx, connection, timeMin, timeMax)
	if err != nil {
		return nil, err
	}

	categorized := CategorizeEvents(feed, clock.FormatDate(timeMin))
	result, err := uc.ProcessExternalEvents(ctx, userID, connection, categorized)
	if err != nil {
		return nil, err
	}

	if writeBack {
		written, err := uc.pushInternalBreaks(ctx, userID, connection, client)
		if err != nil {
			return nil, err
		}
		result.Debug.EventsWrittenOut = written
	}
	return result, nil
}

func (uc *calendarSyncUsecase) ProcessExternalEvents(ctx context.Context, userID string, connection *models.CalendarConnection, events *models.CategorizedEvents) (*models.SyncResult, error) {
	result := &models.SyncResult{
		Synced:         []models.SyncedEvent{},
		Conflicts:      []models.SyncConflict{},
		Recurrent:      events.Recurrent,
		Special:        events.Special,
		AllDay:         events.AllDay,
		SyncedEventIDs: []string{},
		Debug:          events.Debug,
	}
	justSynced := justSyncedSet{}

	groupIDs := make([]string, 0, len(events.GroupedRecurring))
	for groupID := range events.GroupedRecurring {
		groupIDs = append(groupIDs, groupID)
	}
	sort.Strings(groupIDs)

	for _, groupID := range groupIDs {
		if err := uc.mapRecurringGroup(ctx, userID, connection, events.GroupedRecurring[groupID], result, justSynced); err != nil {
			return nil, err
		}
	}
	for i := range events.Special {
		if err := uc.mapSpecialEvent(ctx, userID, connection, &events.Special[i], result, justSynced); err != nil {
			return nil, err
		}
	}
	for i := range events.AllDay {
		if err := uc.mapAllDayEvent(ctx, userID, connection, &events.AllDay[i], result); err != nil {
			return nil, err
		}
	}
	return result, nil
}

// mapRecurringGroup routes one series: weekly cadence with a known
// weekday becomes a template break, every other cadence materializes
// per-date exceptions inside the horizon. An unrecognized cadence is
// never auto-mapped.
func (uc *calendarSyncUsecase) mapRecurringGroup(ctx context.Context, userID string, connection *models.CalendarConnection, group *models.RecurringEventGroup, result *models.SyncResult, justSynced justSyncedSet) error {
	if len(group.Instances) == 0 {
		return nil
	}
	pattern := group.Pattern

	if pattern.IsWeekly() {
		return uc.mapWeeklyGroup(ctx, userID, connection, group, result, justSynced)
	}
	if pattern.FrequencyDays == nil {
		result.Debug.SkippedEvents += len(group.Instances)
		result.Errors = append(result.Errors, fmt.Sprintf("series %s: unsupported recurrence %q", group.GroupID, pattern.Rule))
		return nil
	}
	return uc.mapNonWeeklyGroup(ctx, userID, connection, group, result, justSynced)
}

func (uc *calendarSyncUsecase) mapWeeklyGroup(ctx context.Context, userID string, connection *models.CalendarConnection, group *models.RecurringEventGroup, result *models.SyncResult, justSynced justSyncedSet) error {
	representative := &group.Instances[0]
	if !representative.HasTime() {
		result.Debug.SkippedEvents++
		result.Errors = append(result.Errors, fmt.Sprintf("series %s: weekly instance %s has no time of day", group.GroupID, representative.ID))
		return nil
	}

	template, err := uc.getOrCreateTemplate(ctx, userID, *group.Pattern.DayOfWeek)
	if err != nil {
		return err
	}

	// Re-running over an unchanged feed finds the break already tagged.
	if hasBreakForEvent(template.TimeBlocks, representative.ID) {
		if _, err := uc.upsertSyncedEvent(ctx, connection, representative, template.ID, models.LocalEventTemplate, models.DirectionExternalToInternal, group.GroupID); err != nil {
			return err
		}
		justSynced.add(representative.ID)
		return nil
	}

	if conflict := DetectTemplateConflict(representative, template, justSynced); conflict != nil {
		result.Conflicts = append(result.Conflicts, *conflict)
		return nil
	}

	newBreak := models.TimeBlock{
		Start:            representative.StartTime,
		End:              representative.EndTime,
		Type:             models.BlockBreak,
		Reason:           eventTitle(representative),
		ExternalEventID:  representative.ID,
		RecurringGroupID: group.GroupID,
	}
	template.TimeBlocks = InsertBreak(template.OpensAt, template.ClosesAt, template.TimeBlocks, newBreak)
	template.HasSyncedBreaks = true
	now := time.Now()
	template.LastSyncUpdate = &now
	if err := uc.ScheduleRepository.UpdateTemplate(ctx, template); err != nil {
		return err
	}

	record, err := uc.upsertSyncedEvent(ctx, connection, representative, template.ID, models.LocalEventTemplate, models.DirectionExternalToInternal, group.GroupID)
	if err != nil {
		return err
	}
	justSynced.add(representative.ID)
	result.Synced = append(result.Synced, *record)
	result.SyncedEventIDs = append(result.SyncedEventIDs, representative.ID)
	return nil
}

func (uc *calendarSyncUsecase) mapNonWeeklyGroup(ctx context.Context, userID string, connection *models.CalendarConnection, group *models.RecurringEventGroup, result *models.SyncResult, justSynced justSyncedSet) error {
	today := clock.FormatDate(time.Now())
	horizonEnd := clock.FormatDate(time.Now().AddDate(0, 0, uc.InternalConfig.Sync.HorizonInDays))

	for i := range group.Instances {
		instance := &group.Instances[i]
		if instance.StartDate < today || instance.StartDate > horizonEnd {
			continue
		}
		if !instance.HasTime() {
			result.Debug.SkippedEvents++
			continue
		}

		exception, err := uc.ScheduleRepository.FindExceptionByUserAndDate(ctx, userID, instance.StartDate)
		if err != nil {
			return err
		}
		if exception != nil {
			// An occupied date is never silently rewritten.
			if hasBreakForEvent(exception.TimeBlocks, instance.ID) {
				if _, err := uc.upsertSyncedEvent(ctx, connection, instance, exception.ID, models.LocalEventException, models.DirectionExternalToInternal, group.GroupID); err != nil {
					return err
				}
				justSynced.add(instance.ID)
				continue
			}
			if conflict := DetectExceptionConflict(instance, exception, justSynced); conflict != nil {
				result.Conflicts = append(result.Conflicts, *conflict)
			}
			continue
		}

		if err := uc.createExceptionWithBreak(ctx, userID, connection, instance, group.GroupID, result, justSynced); err != nil {
			return err
		}
	}
	return nil
}

func (uc *calendarSyncUsecase) mapSpecialEvent(ctx context.Context, userID string, connection *models.CalendarConnection, event *models.ExternalEvent, result *models.SyncResult, justSynced justSyncedSet) error {
	if !event.HasTime() {
		result.Debug.SkippedEvents++
		return nil
	}

	exception, err := uc.ScheduleRepository.FindExceptionByUserAndDate(ctx, userID, event.StartDate)
	if err != nil {
		return err
	}
	if exception == nil {
		return uc.createExceptionWithBreak(ctx, userID, connection, event, "", result, justSynced)
	}

	if hasBreakForEvent(exception.TimeBlocks, event.ID) {
		if _, err := uc.upsertSyncedEvent(ctx, connection, event, exception.ID, models.LocalEventException, models.DirectionExternalToInternal, ""); err != nil {
			return err
		}
		justSynced.add(event.ID)
		return nil
	}
	if conflict := DetectExceptionConflict(event, exception, justSynced); conflict != nil {
		result.Conflicts = append(result.Conflicts, *conflict)
		return nil
	}

	opensAt, closesAt := exceptionHours(exception)
	newBreak := models.TimeBlock{
		Start:           event.StartTime,
		End:             event.EndTime,
		Type:            models.BlockBreak,
		Reason:          eventTitle(event),
		ExternalEventID: event.ID,
	}
	exception.TimeBlocks = InsertBreak(opensAt, closesAt, exception.TimeBlocks, newBreak)
	exception.IsSynced = true
	if exception.SyncSource == "" || exception.SyncSource == models.SyncSourceManual {
		exception.SyncSource = connection.Provider.SyncSource()
	}
	if exception.SyncConnectionID == "" {
		exception.SyncConnectionID = connection.ID
	}
	if err := uc.ScheduleRepository.UpdateException(ctx, exception); err != nil {
		return err
	}

	record, err := uc.upsertSyncedEvent(ctx, connection, event, exception.ID, models.LocalEventException, models.DirectionExternalToInternal, "")
	if err != nil {
		return err
	}
	justSynced.add(event.ID)
	result.Synced = append(result.Synced, *record)
	result.SyncedEventIDs = append(result.SyncedEventIDs, event.ID)
	return nil
}

// mapAllDayEvent blocks out every calendar date the event spans as a
// non-working day. Dates that already carry an exception are left
// untouched.
func (uc *calendarSyncUsecase) mapAllDayEvent(ctx context.Context, userID string, connection *models.CalendarConnection, event *models.ExternalEvent, result *models.SyncResult) error {
	start, err := clock.ParseDate(event.StartDate)
	if err != nil {
		result.Debug.SkippedEvents++
		result.Errors = append(result.Errors, fmt.Sprintf("all-day %s: bad start date %q", event.ID, event.StartDate))
		return nil
	}
	end := start
	if event.EndDate != "" {
		if parsed, err := clock.ParseDate(event.EndDate); err == nil {
			end = parsed
		}
	}

	for date := start; !date.After(end); date = date.AddDate(0, 0, 1) {
		dateStr := clock.FormatDate(date)
		existing, err := uc.ScheduleRepository.FindExceptionByUserAndDate(ctx, userID, dateStr)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		exception := &models.ScheduleException{
			UserID:             userID,
			Date:               dateStr,
			IsWorkingDay:       false,
			Reason:             eventTitle(event),
			SyncSource:         connection.Provider.SyncSource(),
			ExternalCalendarID: event.ID,
			IsSynced:           true,
			SyncConnectionID:   connection.ID,
		}
		exceptionID, err := uc.ScheduleRepository.CreateException(ctx, exception)
		if err != nil {
			return err
		}
		exception.ID = exceptionID

		record, err := uc.upsertSyncedEvent(ctx, connection, event, exceptionID, models.LocalEventException, models.DirectionExternalToInternal, "")
		if err != nil {
			return err
		}
		result.Synced = append(result.Synced, *record)
	}
	result.SyncedEventIDs = append(result.SyncedEventIDs, event.ID)
	return nil
}

// createExceptionWithBreak seeds a dated exception from the weekday's
// active template and inserts the event as a break.
func (uc *calendarSyncUsecase) createExceptionWithBreak(ctx context.Context, userID string, connection *models.CalendarConnection, event *models.ExternalEvent, groupID string, result *models.SyncResult, justSynced justSyncedSet) error {
	opensAt, closesAt := constvars.DefaultOpensAt, constvars.DefaultClosesAt
	var seedBlocks []models.TimeBlock

	if date, err := clock.ParseDate(event.StartDate); err == nil {
		dayOfWeek := mondayIndexed(date.Weekday())
		template, err := uc.ScheduleRepository.FindTemplateByUserAndDay(ctx, userID, dayOfWeek)
		if err != nil {
			return err
		}
		if template != nil && template.IsActive {
			opensAt, closesAt = template.OpensAt, template.ClosesAt
			seedBlocks = append(seedBlocks, template.TimeBlocks...)
		}
	}

	newBreak := models.TimeBlock{
		Start:            event.StartTime,
		End:              event.EndTime,
		Type:             models.BlockBreak,
		Reason:           eventTitle(event),
		ExternalEventID:  event.ID,
		RecurringGroupID: groupID,
	}
	exception := &models.ScheduleException{
		UserID:             userID,
		Date:               event.StartDate,
		IsWorkingDay:       true,
		OpensAt:            opensAt,
		ClosesAt:           closesAt,
		TimeBlocks:         InsertBreak(opensAt, closesAt, seedBlocks, newBreak),
		SyncSource:         connection.Provider.SyncSource(),
		ExternalCalendarID: event.ID,
		IsSynced:           true,
		SyncConnectionID:   connection.ID,
	}
	exceptionID, err := uc.ScheduleRepository.CreateException(ctx, exception)
	if err != nil {
		return err
	}
	exception.ID = exceptionID

	record, err := uc.upsertSyncedEvent(ctx, connection, event, exceptionID, models.LocalEventException, models.DirectionExternalToInternal, groupID)
	if err != nil {
		return err
	}
	justSynced.add(event.ID)
	result.Synced = append(result.Synced, *record)
	result.SyncedEventIDs = append(result.SyncedEventIDs, event.ID)
	return nil
}

func (uc *calendarSyncUsecase) getOrCreateTemplate(ctx context.Context, userID string, dayOfWeek int) (*models.ScheduleTemplate, error) {
	template, err := uc.ScheduleRepository.FindTemplateByUserAndDay(ctx, userID, dayOfWeek)
	if err != nil {
		return nil, err
	}
	if template != nil {
		return template, nil
	}

	template = &models.ScheduleTemplate{
		UserID:    userID,
		DayOfWeek: dayOfWeek,
		IsActive:  true,
		OpensAt:   constvars.DefaultOpensAt,
		ClosesAt:  constvars.DefaultClosesAt,
		TimeBlocks: []models.TimeBlock{{
			Start: constvars.DefaultOpensAt,
			End:   constvars.DefaultClosesAt,
			Type:  models.BlockConsultation,
		}},
	}
	templateID, err := uc.ScheduleRepository.CreateTemplate(ctx, template)
	if err != nil {
		return nil, err
	}
	template.ID = templateID
	return template, nil
}

func (uc *calendarSyncUsecase) upsertSyncedEvent(ctx context.Context, connection *models.CalendarConnection, event *models.ExternalEvent, localID string, localType models.LocalEventType, direction models.SyncDirection, groupID string) (*models.SyncedEvent, error) {
	existing, err := uc.SyncedEventRepository.FindByExternalAndLocal(ctx, connection.UserID, event.ID, localID)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	if existing != nil {
		existing.SyncStatus = models.SyncStatusCompleted
		existing.LastSyncedAt = now
		existing.RecurringGroupID = groupID
		if err := uc.SyncedEventRepository.UpdateSyncedEvent(ctx, existing); err != nil {
			return nil, err
		}
		return existing, nil
	}

	record := &models.SyncedEvent{
		UserID:           connection.UserID,
		ConnectionID:     connection.ID,
		ExternalEventID:  event.ID,
		LocalEventID:     localID,
		LocalEventType:   localType,
		SyncDirection:    direction,
		SyncStatus:       models.SyncStatusCompleted,
		RecurringGroupID: groupID,
		EventTitle:       eventTitle(event),
		EventDate:        event.StartDate,
		LastSyncedAt:     now,
	}
	recordID, err := uc.SyncedEventRepository.CreateSyncedEvent(ctx, record)
	if err != nil {
		return nil, err
	}
	record.ID = recordID
	return record, nil
}

func (uc *calendarSyncUsecase) TrackPreExistingEvents(ctx context.Context, userID string) (int, error) {
	count := 0

	templates, err := uc.ScheduleRepository.FindTemplatesByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range templates {
		template := &templates[i]
		changed := false
		for j := range template.TimeBlocks {
			block := &template.TimeBlocks[j]
			if block.Type.IsBreak() && block.ExternalEventID == "" && !block.ExistedBeforeSync {
				block.ExistedBeforeSync = true
				changed = true
				count++
			}
		}
		if changed {
			if err := uc.ScheduleRepository.UpdateTemplate(ctx, template); err != nil {
				return count, err
			}
		}
	}

	manualExceptions, err := uc.ScheduleRepository.FindExceptionsWithoutSource(ctx, userID)
	if err != nil {
		return count, err
	}
	for i := range manualExceptions {
		exception := &manualExceptions[i]
		if exception.ExistedBeforeSync {
			continue
		}
		exception.ExistedBeforeSync = true
		if err := uc.ScheduleRepository.UpdateException(ctx, exception); err != nil {
			return count, err
		}
		count++
	}
	return count, nil
}

func (uc *calendarSyncUsecase) CleanupSyncedEvents(ctx context.Context, userID, connectionID string) (int, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarSyncUsecase.CleanupSyncedEvents called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
		zap.String(constvars.LoggingConnectionIDKey, connectionID),
	)

	records, err := uc.SyncedEventRepository.FindByConnectionAndDirection(ctx, userID, connectionID, models.DirectionExternalToInternal)
	if err != nil {
		return 0, err
	}

	removed := 0
	for i := range records {
		record := &records[i]
		switch record.LocalEventType {
		case models.LocalEventException:
			exception, err := uc.ScheduleRepository.FindExceptionByID(ctx, record.LocalEventID)
			if err != nil {
				return removed, err
			}
			if exception == nil {
				break
			}
			if !exception.ExistedBeforeSync {
				if err := uc.ScheduleRepository.DeleteExceptionByID(ctx, exception.ID); err != nil {
					return removed, err
				}
				removed++
				break
			}
			// User-authored exceptions survive, but any break the sync
			// inserted into them is stripped out.
			if stripSyncedBreakFromException(exception, record.ExternalEventID, connectionID) {
				if err := uc.ScheduleRepository.UpdateException(ctx, exception); err != nil {
					return removed, err
				}
				removed++
			}
		case models.LocalEventTemplate:
			template, err := uc.ScheduleRepository.FindTemplateByID(ctx, record.LocalEventID)
			if err != nil {
				return removed, err
			}
			if template != nil && stripSyncedBreak(template, record.ExternalEventID) {
				if err := uc.ScheduleRepository.UpdateTemplate(ctx, template); err != nil {
					return removed, err
				}
				removed++
			}
		}
		if err := uc.SyncedEventRepository.DeleteByID(ctx, record.ID); err != nil {
			return removed, err
		}
	}

	uc.Log.Info("calendarSyncUsecase.CleanupSyncedEvents finished",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.Int(constvars.LoggingCountKey, removed),
	)
	return removed, nil
}

// stripSyncedBreak removes the break a given external event produced
// and recomputes the consultation gap-fill. Pre-existing blocks are
// never stripped.
// stripSyncedBreakFromException removes the break a sync pass inserted
// into a user-authored exception and resets the sync markers once no
// synced break remains.
func stripSyncedBreakFromException(exception *models.ScheduleException, externalEventID, connectionID string) bool {
	kept := make([]models.TimeBlock, 0, len(exception.TimeBlocks))
	stripped := false
	for _, block := range exception.TimeBlocks {
		if block.Type.IsBreak() && block.ExternalEventID == externalEventID && !block.ExistedBeforeSync {
			stripped = true
			continue
		}
		if block.Type.IsBreak() {
			kept = append(kept, block)
		}
	}
	if !stripped {
		return false
	}
	opensAt, closesAt := exceptionHours(exception)
	exception.TimeBlocks = RecomputeBlocks(opensAt, closesAt, kept)
	if !hasSyncedBreaks(exception.TimeBlocks) {
		exception.IsSynced = false
		if exception.SyncConnectionID == connectionID {
			exception.SyncConnectionID = ""
			exception.SyncSource = models.SyncSourceManual
		}
	}
	return true
}

func stripSyncedBreak(template *models.ScheduleTemplate, externalEventID string) bool {
	kept := make([]models.TimeBlock, 0, len(template.TimeBlocks))
	stripped := false
	for _, block := range template.TimeBlocks {
		if block.Type.IsBreak() && block.ExternalEventID == externalEventID && !block.ExistedBeforeSync {
			stripped = true
			continue
		}
		if block.Type.IsBreak() {
			kept = append(kept, block)
		}
	}
	if !stripped {
		return false
	}
	template.TimeBlocks = RecomputeBlocks(template.OpensAt, template.ClosesAt, kept)
	template.HasSyncedBreaks = hasSyncedBreaks(template.TimeBlocks)
	return true
}

func hasSyncedBreaks(blocks []models.TimeBlock) bool {
	for _, block := range blocks {
		if block.Type.IsBreak() && block.ExternalEventID != "" {
			return true
		}
	}
	return false
}

// clearPushedEvents deletes every previously written-back event from
// the provider and drops its record, so each pass re-pushes a fresh
// snapshot. Provider-side failures are logged and swallowed.
func (uc *calendarSyncUsecase) clearPushedEvents(ctx context.Context, userID string, connection *models.CalendarConnection, client contracts.CalendarProviderClient) error {
	records, err := uc.SyncedEventRepository.FindByConnectionAndDirection(ctx, userID, connection.ID, models.DirectionInternalToExternal)
	if err != nil {
		return err
	}
	for i := range records {
		record := &records[i]
		if err := client.DeleteEvent(ctx, connection, record.ExternalEventID); err != nil {
			uc.Log.Warn("calendarSyncUsecase.clearPushedEvents failed to delete provider event",
				zap.String(constvars.LoggingEventIDKey, record.ExternalEventID),
				zap.Error(err),
			)
		}
		if err := uc.SyncedEventRepository.DeleteByID(ctx, record.ID); err != nil {
			return err
		}
	}
	return nil
}

// pushInternalBreaks writes every user-authored break (no external
// event id) out to the provider and records the push.
func (uc *calendarSyncUsecase) pushInternalBreaks(ctx context.Context, userID string, connection *models.CalendarConnection, client contracts.CalendarProviderClient) (int, error) {
	written := 0

	templates, err := uc.ScheduleRepository.FindTemplatesByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range templates {
		template := &templates[i]
		if !template.IsActive {
			continue
		}
		for _, block := range template.TimeBlocks {
			if !block.Type.IsBreak() || block.ExternalEventID != "" {
				continue
			}
			day := template.DayOfWeek
			spec := &models.EventSpec{
				Summary:   blockSummary(block),
				DayOfWeek: &day,
				Start:     block.Start,
				End:       block.End,
				Recurring: true,
			}
			externalID, err := client.CreateEvent(ctx, connection, spec)
			if err != nil {
				uc.Log.Warn("calendarSyncUsecase.pushInternalBreaks failed to create provider event",
					zap.Int(constvars.LoggingDayOfWeekKey, day),
					zap.Error(err),
				)
				continue
			}
			if err := uc.recordPushedEvent(ctx, connection, externalID, template.ID, models.LocalEventTemplate, blockSummary(block), ""); err != nil {
				return written, err
			}
			written++
		}
	}

	futureExceptions, err := uc.ScheduleRepository.FindExceptionsByUserFromDate(ctx, userID, clock.FormatDate(time.Now()))
	if err != nil {
		return written, err
	}
	for i := range futureExceptions {
		exception := &futureExceptions[i]
		if exception.IsSynced {
			// Came in from the provider; exporting it again would echo.
			continue
		}
		if !exception.IsWorkingDay {
			summary := exception.Reason
			if summary == "" {
				summary = constvars.ClosedDayEventTitle
			}
			spec := &models.EventSpec{
				Summary: summary,
				Date:    exception.Date,
				AllDay:  true,
			}
			externalID, err := client.CreateEvent(ctx, connection, spec)
			if err != nil {
				uc.Log.Warn("calendarSyncUsecase.pushInternalBreaks failed to create provider event",
					zap.String(constvars.LoggingDateKey, exception.Date),
					zap.Error(err),
				)
				continue
			}
			if err := uc.recordPushedEvent(ctx, connection, externalID, exception.ID, models.LocalEventException, summary, exception.Date); err != nil {
				return written, err
			}
			written++
			continue
		}
		if exception.OpensAt != "" && exception.ClosesAt != "" {
			summary := fmt.Sprintf(constvars.SpecialHoursTitleFmt, exception.OpensAt, exception.ClosesAt)
			spec := &models.EventSpec{
				Summary: summary,
				Date:    exception.Date,
				Start:   exception.OpensAt,
				End:     exception.ClosesAt,
			}
			externalID, err := client.CreateEvent(ctx, connection, spec)
			if err != nil {
				uc.Log.Warn("calendarSyncUsecase.pushInternalBreaks failed to create provider event",
					zap.String(constvars.LoggingDateKey, exception.Date),
					zap.Error(err),
				)
			} else {
				if err := uc.recordPushedEvent(ctx, connection, externalID, exception.ID, models.LocalEventException, summary, exception.Date); err != nil {
					return written, err
				}
				written++
			}
		}
		for _, block := range exception.TimeBlocks {
			if !block.Type.IsBreak() || block.ExternalEventID != "" {
				continue
			}
			spec := &models.EventSpec{
				Summary: blockSummary(block),
				Date:    exception.Date,
				Start:   block.Start,
				End:     block.End,
			}
			externalID, err := client.CreateEvent(ctx, connection, spec)
			if err != nil {
				uc.Log.Warn("calendarSyncUsecase.pushInternalBreaks failed to create provider event",
					zap.String(constvars.LoggingDateKey, exception.Date),
					zap.Error(err),
				)
				continue
			}
			if err := uc.recordPushedEvent(ctx, connection, externalID, exception.ID, models.LocalEventException, blockSummary(block), exception.Date); err != nil {
				return written, err
			}
			written++
		}
	}
	return written, nil
}

func (uc *calendarSyncUsecase) recordPushedEvent(ctx context.Context, connection *models.CalendarConnection, externalID, localID string, localType models.LocalEventType, title, date string) error {
	record := &models.SyncedEvent{
		UserID:          connection.UserID,
		ConnectionID:    connection.ID,
		ExternalEventID: externalID,
		LocalEventID:    localID,
		LocalEventType:  localType,
		SyncDirection:   models.DirectionInternalToExternal,
		SyncStatus:      models.SyncStatusCompleted,
		EventTitle:      title,
		EventDate:       date,
		LastSyncedAt:    time.Now(),
	}
	recordID, err := uc.SyncedEventRepository.CreateSyncedEvent(ctx, record)
	if err != nil {
		return err
	}
	record.ID = recordID
	return nil
}

func (uc *calendarSyncUsecase) ResolveConflicts(ctx context.Context, userID string, resolutions []requests.ConflictResolution) (*responses.ResolveConflicts, error) {
	response := &responses.ResolveConflicts{Results: []models.TimeBlock{}}

	for i := range resolutions {
		resolution := &resolutions[i]
		resolutionType := models.ResolutionType(resolution.ResolutionType)
		switch resolutionType {
		case models.ResolutionKeepInternal, models.ResolutionKeepExternal, models.ResolutionMergeSum, models.ResolutionMergeCombine:
		default:
			return nil, exceptions.ErrUnknownResolutionType(fmt.Errorf("resolution type %q", resolution.ResolutionType))
		}

		applied, err := uc.applyResolution(ctx, userID, resolution, resolutionType, response)
		if err != nil {
			return nil, err
		}
		response.Resolved += applied
	}
	return response, nil
}

// applyResolution rewrites every internal break touched by the
// conflict: the ones overlapping the external event's span, plus all
// series siblings when a group id is supplied.
func (uc *calendarSyncUsecase) applyResolution(ctx context.Context, userID string, resolution *requests.ConflictResolution, resolutionType models.ResolutionType, response *responses.ResolveConflicts) (int, error) {
	applied := 0

	templates, err := uc.ScheduleRepository.FindTemplatesByUserID(ctx, userID)
	if err != nil {
		return 0, err
	}
	for i := range templates {
		template := &templates[i]
		changed, blocks, err := uc.resolveInBlocks(template.TimeBlocks, template.OpensAt, template.ClosesAt, resolution, resolutionType, response)
		if err != nil {
			return applied, err
		}
		if changed == 0 {
			continue
		}
		template.TimeBlocks = blocks
		now := time.Now()
		template.LastSyncUpdate = &now
		template.HasSyncedBreaks = hasSyncedBreaks(blocks)
		if err := uc.ScheduleRepository.UpdateTemplate(ctx, template); err != nil {
			return applied, err
		}
		applied += changed
	}

	today := clock.FormatDate(time.Now())
	dateExceptions, err := uc.ScheduleRepository.FindExceptionsByUserFromDate(ctx, userID, today)
	if err != nil {
		return applied, err
	}
	for i := range dateExceptions {
		exception := &dateExceptions[i]
		if !exception.IsWorkingDay {
			continue
		}
		opensAt, closesAt := exceptionHours(exception)
		changed, blocks, err := uc.resolveInBlocks(exception.TimeBlocks, opensAt, closesAt, resolution, resolutionType, response)
		if err != nil {
			return applied, err
		}
		if changed == 0 {
			continue
		}
		exception.TimeBlocks = blocks
		if err := uc.ScheduleRepository.UpdateException(ctx, exception); err != nil {
			return applied, err
		}
		applied += changed
	}
	return applied, nil
}

func (uc *calendarSyncUsecase) resolveInBlocks(blocks []models.TimeBlock, opensAt, closesAt string, resolution *requests.ConflictResolution, resolutionType models.ResolutionType, response *responses.ResolveConflicts) (int, []models.TimeBlock, error) {
	changed := 0
	breaks := breaksOf(blocks)

	for i := range breaks {
		target := &breaks[i]
		if !uc.resolutionTargets(target, resolution) {
			continue
		}
		extStart, extEnd := resolution.MergeStart, resolution.MergeEnd
		if extStart == "" || extEnd == "" {
			extStart, extEnd = target.Start, target.End
		}
		replacement, keepExternal, err := ApplyResolution(resolutionType, *target, extStart, extEnd, opensAt, closesAt)
		if err != nil {
			return 0, nil, err
		}
		if keepExternal && replacement.ExternalEventID == "" {
			replacement.ExternalEventID = resolution.EventID
		}
		*target = replacement
		response.Results = append(response.Results, replacement)
		changed++
	}
	if changed == 0 {
		return 0, blocks, nil
	}

	merged := MergeOverlappingBreaks(breaks)
	return changed, RecomputeBlocks(opensAt, closesAt, merged), nil
}

func (uc *calendarSyncUsecase) resolutionTargets(target *models.TimeBlock, resolution *requests.ConflictResolution) bool {
	if resolution.GroupID != "" && target.RecurringGroupID == resolution.GroupID {
		return true
	}
	if target.ExternalEventID == resolution.EventID && resolution.EventID != "" {
		return true
	}
	if resolution.MergeStart == "" || resolution.MergeEnd == "" {
		return false
	}
	overlap, err := clock.Overlap(resolution.MergeStart, resolution.MergeEnd, target.Start, target.End)
	return err == nil && overlap
}

func (uc *calendarSyncUsecase) ClassifyRecurrentEvent(ctx context.Context, userID, externalEventID string, classification models.BlockType) error {
	record, err := uc.SyncedEventRepository.FindByUserAndExternalID(ctx, userID, externalEventID)
	if err != nil {
		return err
	}
	if record == nil {
		return exceptions.ErrMalformedEvent(fmt.Errorf("no synced event for id"), externalEventID)
	}

	retag := func(blocks []models.TimeBlock) bool {
		changed := false
		for i := range blocks {
			if blocks[i].ExternalEventID == externalEventID && blocks[i].Type.IsBreak() {
				blocks[i].Type = classification
				changed = true
			}
		}
		return changed
	}

	switch record.LocalEventType {
	case models.LocalEventTemplate:
		template, err := uc.ScheduleRepository.FindTemplateByID(ctx, record.LocalEventID)
		if err != nil {
			return err
		}
		if template != nil && retag(template.TimeBlocks) {
			if err := uc.ScheduleRepository.UpdateTemplate(ctx, template); err != nil {
				return err
			}
		}
	case models.LocalEventException:
		exception, err := uc.ScheduleRepository.FindExceptionByID(ctx, record.LocalEventID)
		if err != nil {
			return err
		}
		if exception != nil && retag(exception.TimeBlocks) {
			if err := uc.ScheduleRepository.UpdateException(ctx, exception); err != nil {
				return err
			}
		}
	}

	record.Classification = classification
	return uc.SyncedEventRepository.UpdateSyncedEvent(ctx, record)
}

func (uc *calendarSyncUsecase) GetConnectionStatus(ctx context.Context, userID string) (*responses.ConnectionStatus, error) {
	connection, err := uc.ConnectionRepository.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return &responses.ConnectionStatus{Connected: false}, nil
	}
	return &responses.ConnectionStatus{
		Connected: true,
		Provider:  connection.Provider,
		Email:     connection.CalendarEmail,
		Settings:  connection.SyncSettings,
		LastSync:  connection.LastSyncAt,
	}, nil
}

func (uc *calendarSyncUsecase) UpdateSyncSettings(ctx context.Context, userID string, request *requests.UpdateSyncSettings) (*models.SyncSettings, error) {
	connection, err := uc.ConnectionRepository.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, exceptions.ErrCalendarNotConnected(fmt.Errorf("no active connection for user %s", userID))
	}
	connection.SyncSettings = models.SyncSettings{
		MergeCalendars:       request.MergeCalendars || connection.SyncSettings.MergeCalendars,
		ReceiveNotifications: request.ReceiveNotifications,
	}
	if err := uc.ConnectionRepository.UpdateConnection(ctx, connection); err != nil {
		return nil, err
	}
	return &connection.SyncSettings, nil
}

func (uc *calendarSyncUsecase) Disconnect(ctx context.Context, userID string) (*responses.Disconnect, error) {
	requestID, _ := ctx.Value(constvars.CONTEXT_REQUEST_ID_KEY).(string)
	uc.Log.Info("calendarSyncUsecase.Disconnect called",
		zap.String(constvars.LoggingRequestIDKey, requestID),
		zap.String(constvars.LoggingUserIDKey, userID),
	)

	connection, err := uc.ConnectionRepository.FindActiveByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if connection == nil {
		return nil, exceptions.ErrCalendarNotConnected(fmt.Errorf("no active connection for user %s", userID))
	}

	// Best-effort provider cleanup: local state always wins.
	if client, ok := uc.ProviderClients[connection.Provider]; ok {
		if err := uc.clearPushedEvents(ctx, userID, connection, client); err != nil {
			uc.Log.Warn("calendarSyncUsecase.Disconnect failed clearing pushed events",
				zap.String(constvars.LoggingRequestIDKey, requestID),
				zap.Error(err),
			)
		}
	}

	removed, err := uc.CleanupSyncedEvents(ctx, userID, connection.ID)
	if err != nil {
		return nil, err
	}

	connection.IsActive = false
	if err := uc.ConnectionRepository.UpdateConnection(ctx, connection); err != nil {
		return nil, err
	}
	return &responses.Disconnect{EventsRemoved: removed}, nil
}

func (uc *calendarSyncUsecase) SyncHistory(ctx context.Context, userID string) ([]responses.SyncHistoryEntry, error) {
	records, err := uc.SyncedEventRepository.FindRecentByUserID(ctx, userID, constvars.SyncHistoryLimit)
	if err != nil {
		return nil, err
	}
	entries := make([]responses.SyncHistoryEntry, 0, len(records))
	for _, record := range records {
		entries = append(entries, responses.SyncHistoryEntry{
			ID:         record.ID,
			Direction:  record.SyncDirection,
			ExternalID: record.ExternalEventID,
			LocalID:    record.LocalEventID,
			LocalType:  record.LocalEventType,
			Status:     record.SyncStatus,
			CreatedAt:  record.CreatedAt,
		})
	}
	return entries, nil
}

func hasBreakForEvent(blocks []models.TimeBlock, externalEventID string) bool {
	for _, block := range blocks {
		if block.Type.IsBreak() && block.ExternalEventID == externalEventID {
			return true
		}
	}
	return false
}

func eventTitle(event *models.ExternalEvent) string {
	if event.Summary == "" {
		return constvars.DefaultEventTitle
	}
	return event.Summary
}

func blockSummary(block models.TimeBlock) string {
	if block.Reason != "" {
		return block.Reason
	}
	return string(block.Type)
}

func exceptionHours(exception *models.ScheduleException) (string, string) {
	opensAt, closesAt := exception.OpensAt, exception.ClosesAt
	if opensAt == "" {
		opensAt = constvars.DefaultOpensAt
	}
	if closesAt == "" {
		closesAt = constvars.DefaultClosesAt
	}
	return opensAt, closesAt
}

// mondayIndexed converts Go's Sunday-first weekday to the schedule
// model's Monday=0 .. Sunday=6 indexing.
func mondayIndexed(weekday time.Weekday) int {
	return (int(weekday) + 6) % 7
}
