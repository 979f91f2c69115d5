package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

// Sweeper drops expired entries from a time-windowed cache.
type Sweeper interface {
	CleanupExpired() int
	Len() int
}

// TokenKeeper is the credential kept alive between chat commands.
type TokenKeeper interface {
	Authorized() bool
	Token(ctx context.Context) (*oauth2.Token, error)
}

type MaintenanceScheduler struct {
	cronEngine           *cron.Cron
	sweepers             map[string]Sweeper
	keeper               TokenKeeper
	logger               *logrus.Entry
	cronSpecDedupSweep   string
	cronSpecTokenRefresh string
}

func NewMaintenanceScheduler(
	sweepers map[string]Sweeper, // keyed by a name used in logs
	keeper TokenKeeper,
	logger *logrus.Entry,
	loc *time.Location,
	cronSpecDedupSweep string, // e.g., "*/10 * * * *" (every 10 minutes)
	cronSpecTokenRefresh string, // e.g., "0 */6 * * *" (every 6 hours)
) *MaintenanceScheduler {
	if loc == nil {
		loc = time.Local
	}
	return &MaintenanceScheduler{
		cronEngine:           cron.New(cron.WithLocation(loc)),
		sweepers:             sweepers,
		keeper:               keeper,
		logger:               logger,
		cronSpecDedupSweep:   cronSpecDedupSweep,
		cronSpecTokenRefresh: cronSpecTokenRefresh,
	}
}

// Start registers the jobs and starts the cron engine. An invalid cron spec
// is reported instead of aborting the process.
func (s *MaintenanceScheduler) Start() error {
	s.logger.Info("Starting maintenance scheduler...")

	if _, err := s.cronEngine.AddFunc(s.cronSpecDedupSweep, s.sweep); err != nil {
		return fmt.Errorf("could not add dedup sweep cron job: %w", err)
	}
	if _, err := s.cronEngine.AddFunc(s.cronSpecTokenRefresh, s.refreshToken); err != nil {
		return fmt.Errorf("could not add token refresh cron job: %w", err)
	}

	s.cronEngine.Start()
	s.logger.WithField("jobs", len(s.cronEngine.Entries())).Info("Maintenance scheduler started with jobs.")
	return nil
}

func (s *MaintenanceScheduler) sweep() {
	for name, sw := range s.sweepers {
		if removed := sw.CleanupExpired(); removed > 0 {
			s.logger.WithFields(logrus.Fields{
				"cache":     name,
				"removed":   removed,
				"remaining": sw.Len(),
			}).Debug("Swept expired cache entries")
		}
	}
}

// refreshToken asks for a token so an expired one is refreshed and persisted
// through the credential's hook. A revoked grant shows up here, in the logs,
// before the owner's next command fails.
func (s *MaintenanceScheduler) refreshToken() {
	if s.keeper == nil || !s.keeper.Authorized() {
		s.logger.Debug("Skipping token refresh: credential not authorized")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	tok, err := s.keeper.Token(ctx)
	if err != nil {
		s.logger.WithError(err).Error("Scheduled token refresh failed")
		return
	}
	s.logger.WithField("expiry", tok.Expiry).Info("Credential token is valid")
}

func (s *MaintenanceScheduler) Stop() {
	s.logger.Info("Stopping maintenance scheduler...")
	ctx := s.cronEngine.Stop() // Stops the scheduler from adding new jobs, waits for running jobs.
	<-ctx.Done()
	s.logger.Info("Maintenance scheduler gracefully stopped.")
}
