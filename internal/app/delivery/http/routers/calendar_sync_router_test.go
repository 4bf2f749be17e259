package routers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/delivery/http/controllers"
	"mediconnect-service/internal/app/delivery/http/middlewares"
	"mediconnect-service/internal/app/models"
	"mediconnect-service/internal/pkg/dto/requests"
	"mediconnect-service/internal/pkg/dto/responses"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

type MockCalendarSyncUsecase struct {
	mock.Mock
}

func (m *MockCalendarSyncUsecase) Sync(ctx context.Context, userID string, request *requests.Sync) (*responses.Sync, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.Sync), args.Error(1)
}

func (m *MockCalendarSyncUsecase) ProcessExternalEvents(ctx context.Context, userID string, connection *models.CalendarConnection, events *models.CategorizedEvents) (*models.SyncResult, error) {
	args := m.Called(ctx, userID, connection, events)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncResult), args.Error(1)
}

func (m *MockCalendarSyncUsecase) ResolveConflicts(ctx context.Context, userID string, resolutions []requests.ConflictResolution) (*responses.ResolveConflicts, error) {
	args := m.Called(ctx, userID, resolutions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.ResolveConflicts), args.Error(1)
}

func (m *MockCalendarSyncUsecase) ClassifyRecurrentEvent(ctx context.Context, userID, externalEventID string, classification models.BlockType) error {
	args := m.Called(ctx, userID, externalEventID, classification)
	return args.Error(0)
}

func (m *MockCalendarSyncUsecase) TrackPreExistingEvents(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendarSyncUsecase) CleanupSyncedEvents(ctx context.Context, userID, connectionID string) (int, error) {
	args := m.Called(ctx, userID, connectionID)
	return args.Int(0), args.Error(1)
}

func (m *MockCalendarSyncUsecase) GetConnectionStatus(ctx context.Context, userID string) (*responses.ConnectionStatus, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.ConnectionStatus), args.Error(1)
}

func (m *MockCalendarSyncUsecase) UpdateSyncSettings(ctx context.Context, userID string, request *requests.UpdateSyncSettings) (*models.SyncSettings, error) {
	args := m.Called(ctx, userID, request)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.SyncSettings), args.Error(1)
}

func (m *MockCalendarSyncUsecase) Disconnect(ctx context.Context, userID string) (*responses.Disconnect, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*responses.Disconnect), args.Error(1)
}

func (m *MockCalendarSyncUsecase) SyncHistory(ctx context.Context, userID string) ([]responses.SyncHistoryEntry, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]responses.SyncHistoryEntry), args.Error(1)
}

type MockSyncScheduler struct {
	mock.Mock
}

func (m *MockSyncScheduler) Start(userID, connectionID string) error {
	args := m.Called(userID, connectionID)
	return args.Error(0)
}

func (m *MockSyncScheduler) Stop(userID string) {
	m.Called(userID)
}

func (m *MockSyncScheduler) StopAll() {
	m.Called()
}

func setupTestRouter(usecase *MockCalendarSyncUsecase, scheduler *MockSyncScheduler) *chi.Mux {
	logger := zap.NewNop()
	internalConfig := &config.InternalConfig{
		App: config.App{
			EndpointPrefix: "api",
			Version:        "v1",
			MaxRequests:    100,
		},
	}

	controller := controllers.NewCalendarSyncController(usecase, scheduler, logger)
	middlewareInstance := middlewares.NewMiddlewares(logger)

	router := chi.NewRouter()
	SetupRoutes(router, internalConfig, middlewareInstance, controller)
	return router
}

func TestCalendarSyncRouter_StatusEndpoint(t *testing.T) {
	mockUsecase := new(MockCalendarSyncUsecase)
	mockScheduler := new(MockSyncScheduler)
	router := setupTestRouter(mockUsecase, mockScheduler)

	t.Run("returns the connection status for the authenticated user", func(t *testing.T) {
		mockUsecase.On("GetConnectionStatus", mock.Anything, "user-1").
			Return(&responses.ConnectionStatus{Connected: true, Provider: models.ProviderGoogle}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar-sync/status", nil)
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		var response responses.ResponseDTO
		assert.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &response))
		assert.True(t, response.Success)
		mockUsecase.AssertExpectations(t)
	})

	t.Run("rejects requests without an identity header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/calendar-sync/status", nil)
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusUnauthorized, recorder.Code)
	})
}

func TestCalendarSyncRouter_SyncEndpoint(t *testing.T) {
	mockUsecase := new(MockCalendarSyncUsecase)
	mockScheduler := new(MockSyncScheduler)
	router := setupTestRouter(mockUsecase, mockScheduler)

	mockUsecase.On("Sync", mock.Anything, "user-1", mock.Anything).
		Return(&responses.Sync{Success: true, SyncedEvents: 2}, nil).Once()
	mockUsecase.On("GetConnectionStatus", mock.Anything, "user-1").
		Return(&responses.ConnectionStatus{Connected: true}, nil).Once()
	mockScheduler.On("Start", "user-1", "").Return(nil).Once()

	body, _ := json.Marshal(requests.Sync{MergeCalendars: true})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/calendar-sync/sync", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "user-1")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	mockUsecase.AssertExpectations(t)
	mockScheduler.AssertExpectations(t)
}

func TestCalendarSyncRouter_ResolveConflictsValidation(t *testing.T) {
	mockUsecase := new(MockCalendarSyncUsecase)
	mockScheduler := new(MockSyncScheduler)
	router := setupTestRouter(mockUsecase, mockScheduler)

	t.Run("invalid resolution type never reaches the usecase", func(t *testing.T) {
		body := []byte(`[{"eventId":"evt-1","resolutionType":"split_difference"}]`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calendar-sync/conflicts/resolve", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
		mockUsecase.AssertNotCalled(t, "ResolveConflicts")
	})

	t.Run("valid resolutions are delegated", func(t *testing.T) {
		mockUsecase.On("ResolveConflicts", mock.Anything, "user-1", mock.Anything).
			Return(&responses.ResolveConflicts{Resolved: 1}, nil).Once()

		body := []byte(`[{"eventId":"evt-1","resolutionType":"merge_combine","mergeStart":"12:30","mergeEnd":"13:30"}]`)
		req := httptest.NewRequest(http.MethodPost, "/api/v1/calendar-sync/conflicts/resolve", bytes.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("X-User-ID", "user-1")
		recorder := httptest.NewRecorder()

		router.ServeHTTP(recorder, req)

		assert.Equal(t, http.StatusOK, recorder.Code)
		mockUsecase.AssertExpectations(t)
	})
}

func TestCalendarSyncRouter_DisconnectStopsScheduler(t *testing.T) {
	mockUsecase := new(MockCalendarSyncUsecase)
	mockScheduler := new(MockSyncScheduler)
	router := setupTestRouter(mockUsecase, mockScheduler)

	mockScheduler.On("Stop", "user-1").Once()
	mockUsecase.On("Disconnect", mock.Anything, "user-1").
		Return(&responses.Disconnect{EventsRemoved: 3}, nil).Once()

	req := httptest.NewRequest(http.MethodDelete, "/api/v1/calendar-sync/connection", nil)
	req.Header.Set("X-User-ID", "user-1")
	recorder := httptest.NewRecorder()

	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusOK, recorder.Code)
	mockUsecase.AssertExpectations(t)
	mockScheduler.AssertExpectations(t)
}
