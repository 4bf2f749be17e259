package controllers

import (
	"net/http"

	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/app/delivery/http/middlewares"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/dto/requests"
	"mediconnect-service/internal/pkg/exceptions"
	"mediconnect-service/internal/pkg/utils"

	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

type CalendarSyncController struct {
	Usecase   contracts.CalendarSyncUsecase
	Scheduler contracts.SyncScheduler
	Log       *zap.Logger
}

func NewCalendarSyncController(usecase contracts.CalendarSyncUsecase, scheduler contracts.SyncScheduler, log *zap.Logger) *CalendarSyncController {
	return &CalendarSyncController{
		Usecase:   usecase,
		Scheduler: scheduler,
		Log:       log,
	}
}

// Sync runs one pass immediately and (re)arms the periodic auto-sync
// task for the user.
func (c *CalendarSyncController) Sync(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	request := new(requests.Sync)
	if r.Body != nil && r.ContentLength > 0 {
		if err := json.NewDecoder(r.Body).Decode(request); err != nil {
			utils.BuildErrorResponse(c.Log, w, exceptions.ErrCannotParseJSON(err))
			return
		}
	}

	response, err := c.Usecase.Sync(r.Context(), userID, request)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}

	status, err := c.Usecase.GetConnectionStatus(r.Context(), userID)
	if err == nil && status.Connected {
		if schedErr := c.Scheduler.Start(userID, ""); schedErr != nil {
			c.Log.Warn("CalendarSyncController.Sync failed to arm auto-sync",
				zap.String(constvars.LoggingUserIDKey, userID),
				zap.Error(schedErr),
			)
		}
	}

	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SyncSuccessMessage, response)
}

func (c *CalendarSyncController) GetConnectionStatus(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	response, err := c.Usecase.GetConnectionStatus(r.Context(), userID)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SyncStatusSuccessMessage, response)
}

func (c *CalendarSyncController) ResolveConflicts(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	var resolutions []requests.ConflictResolution
	if err := json.NewDecoder(r.Body).Decode(&resolutions); err != nil {
		utils.BuildErrorResponse(c.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	for i := range resolutions {
		if err := utils.ValidateStruct(&resolutions[i]); err != nil {
			utils.BuildErrorResponse(c.Log, w, exceptions.ErrInputValidation(err))
			return
		}
	}

	response, err := c.Usecase.ResolveConflicts(r.Context(), userID, resolutions)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.ConflictsResolvedMessage, response)
}

func (c *CalendarSyncController) ClassifyRecurrentEvent(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	request := new(requests.RecurrentEventClassification)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(c.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}
	if err := utils.ValidateStruct(request); err != nil {
		utils.BuildErrorResponse(c.Log, w, exceptions.ErrInputValidation(err))
		return
	}

	err := c.Usecase.ClassifyRecurrentEvent(r.Context(), userID, request.ExternalEventID, models.BlockType(request.Classification))
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.EventsClassifiedMessage, nil)
}

func (c *CalendarSyncController) UpdateSyncSettings(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	request := new(requests.UpdateSyncSettings)
	if err := json.NewDecoder(r.Body).Decode(request); err != nil {
		utils.BuildErrorResponse(c.Log, w, exceptions.ErrCannotParseJSON(err))
		return
	}

	settings, err := c.Usecase.UpdateSyncSettings(r.Context(), userID, request)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SyncSettingsUpdatedMessage, settings)
}

func (c *CalendarSyncController) TrackPreExistingEvents(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	count, err := c.Usecase.TrackPreExistingEvents(r.Context(), userID)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.PreExistingTrackedMessage, map[string]int{"tracked": count})
}

// Disconnect cancels the auto-sync task, removes synced schedule data
// and deactivates the connection.
func (c *CalendarSyncController) Disconnect(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	c.Scheduler.Stop(userID)

	response, err := c.Usecase.Disconnect(r.Context(), userID)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.CalendarDisconnectedMessage, response)
}

func (c *CalendarSyncController) SyncHistory(w http.ResponseWriter, r *http.Request) {
	userID := middlewares.UserIDFromContext(r.Context())

	entries, err := c.Usecase.SyncHistory(r.Context(), userID)
	if err != nil {
		utils.BuildErrorResponse(c.Log, w, err)
		return
	}
	utils.BuildSuccessResponse(w, constvars.StatusOK, constvars.SyncHistorySuccessMessage, entries)
}
