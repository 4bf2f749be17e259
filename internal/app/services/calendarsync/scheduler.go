package calendarsync

import (
	"context"
	"fmt"
	"mediconnect-service/internal/app/config"
	"mediconnect-service/internal/app/contracts"
	"mediconnect-service/internal/pkg/constvars"
	"mediconnect-service/internal/pkg/exceptions"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

var (
	syncSchedulerInstance contracts.SyncScheduler
	onceSyncScheduler     sync.Once
)

// syncScheduler runs one periodic auto-sync entry per user. Starting a
// new entry for a user replaces the previous one; a pass already in
// flight for the connection is refused by the usecase's lock, so ticks
// never overlap themselves.
type syncScheduler struct {
	cron           *cron.Cron
	usecase        contracts.CalendarSyncUsecase
	internalConfig *config.InternalConfig
	log            *zap.Logger

	mu      sync.Mutex
	entries map[string]cron.EntryID
}

func NewSyncScheduler(usecase contracts.CalendarSyncUsecase, internalConfig *config.InternalConfig, logger *zap.Logger) contracts.SyncScheduler {
	onceSyncScheduler.Do(func() {
		c := cron.New()
		c.Start()
		syncSchedulerInstance = &syncScheduler{
			cron:           c,
			usecase:        usecase,
			internalConfig: internalConfig,
			log:            logger,
			entries:        map[string]cron.EntryID{},
		}
	})
	return syncSchedulerInstance
}

func (s *syncScheduler) Start(userID, connectionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[userID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, userID)
	}

	interval := s.internalConfig.Sync.IntervalInMinutes
	if interval <= 0 {
		interval = int(constvars.AutoSyncInterval.Minutes())
	}
	spec := fmt.Sprintf("@every %dm", interval)

	entryID, err := s.cron.AddFunc(spec, func() {
		s.runOnce(userID, connectionID)
	})
	if err != nil {
		return err
	}
	s.entries[userID] = entryID

	s.log.Info("syncScheduler.Start scheduled auto-sync",
		zap.String(constvars.LoggingUserIDKey, userID),
		zap.String(constvars.LoggingConnectionIDKey, connectionID),
	)
	return nil
}

func (s *syncScheduler) Stop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if entryID, ok := s.entries[userID]; ok {
		s.cron.Remove(entryID)
		delete(s.entries, userID)
		s.log.Info("syncScheduler.Stop cancelled auto-sync",
			zap.String(constvars.LoggingUserIDKey, userID),
		)
	}
}

func (s *syncScheduler) StopAll() {
	s.mu.Lock()
	defer s.mu.Unlock()

	for userID, entryID := range s.entries {
		s.cron.Remove(entryID)
		delete(s.entries, userID)
	}
	// Waits for a running tick to finish; ticks are short because the
	// sync pass itself is guarded by the connection lock.
	<-s.cron.Stop().Done()
}

func (s *syncScheduler) runOnce(userID, connectionID string) {
	ctx := context.Background()
	_, err := s.usecase.Sync(ctx, userID, nil)
	if err != nil {
		if exceptions.IsProviderRateLimited(err) {
			s.log.Info("syncScheduler tick deferred, provider rate limited",
				zap.String(constvars.LoggingUserIDKey, userID),
			)
			return
		}
		s.log.Warn("syncScheduler tick failed",
			zap.String(constvars.LoggingUserIDKey, userID),
			zap.String(constvars.LoggingConnectionIDKey, connectionID),
			zap.Error(err),
		)
	}
}
