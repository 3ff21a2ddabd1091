package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/amaumene/tempus/internal/controllers"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
)

const warmupTimeout = 2 * time.Minute

// Scheduler manages scheduled tasks
type Scheduler struct {
	cron           *cron.Cron
	browseCtrl     *controllers.BrowseController
	backupCtrl     *controllers.BackupController
	warmupSchedule string
	backupSchedule string
	backupFile     string
	logger         *logrus.Logger
}

// NewScheduler creates a new scheduler
func NewScheduler(
	browseCtrl *controllers.BrowseController,
	backupCtrl *controllers.BackupController,
	warmupSchedule string,
	backupSchedule string,
	backupFile string,
	logger *logrus.Logger,
) *Scheduler {
	return &Scheduler{
		cron:           cron.New(),
		browseCtrl:     browseCtrl,
		backupCtrl:     backupCtrl,
		warmupSchedule: warmupSchedule,
		backupSchedule: backupSchedule,
		backupFile:     backupFile,
		logger:         logger,
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() error {
	s.logger.Info("Starting scheduler")

	// Keep the discovery feeds in the response cache
	_, err := s.cron.AddFunc(s.warmupSchedule, func() {
		s.runWarmup()
	})
	if err != nil {
		return fmt.Errorf("failed to add warmup job: %w", err)
	}

	_, err = s.cron.AddFunc(s.backupSchedule, func() {
		s.runBackup()
	})
	if err != nil {
		return fmt.Errorf("failed to add backup job: %w", err)
	}

	s.cron.Start()
	s.logger.WithFields(logrus.Fields{
		"warmup": s.warmupSchedule,
		"backup": s.backupSchedule,
	}).Info("Scheduler started")

	go s.runWarmup()

	return nil
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	s.logger.Info("Stopping scheduler")
	<-s.cron.Stop().Done()
}

// runWarmup fetches page one of the trending and popular feeds
func (s *Scheduler) runWarmup() {
	s.logger.Debug("Running cache warmup")
	ctx, cancel := context.WithTimeout(context.Background(), warmupTimeout)
	defer cancel()

	if _, err := s.browseCtrl.Trending(ctx, 1, 0); err != nil {
		s.logger.WithError(err).Warn("Failed to warm trending feed")
	}
	if _, err := s.browseCtrl.Popular(ctx, 1, 0); err != nil {
		s.logger.WithError(err).Warn("Failed to warm popular feed")
	}
}

// runBackup exports all local data to the backup file
func (s *Scheduler) runBackup() {
	s.logger.Info("Running scheduled backup")

	if _, err := s.backupCtrl.Export(s.backupFile); err != nil {
		s.logger.WithError(err).Error("Backup job failed")
	} else {
		s.logger.Info("Backup job completed successfully")
	}
}
