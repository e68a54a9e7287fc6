package services

import (
	"context"
	"log"

	"smartcart-auth/internal/adapters/persistence/repositories"

	"github.com/robfig/cron/v3"
)

// CleanupService purges dead reset codes on a schedule. Token ledger
// rows are deliberately not touched: they are only deleted when their
// owning user is deleted.
type CleanupService struct {
	resetCodeRepo repositories.ResetCodeRepository
	cron          *cron.Cron
}

// NewCleanupService creates a new cleanup service
func NewCleanupService(resetCodeRepo repositories.ResetCodeRepository) *CleanupService {
	return &CleanupService{
		resetCodeRepo: resetCodeRepo,
		cron:          cron.New(),
	}
}

// Start schedules the nightly purge (03:00 daily)
func (s *CleanupService) Start() {
	s.cron.AddFunc("0 3 * * *", func() {
		if err := s.resetCodeRepo.DeleteExpired(context.Background()); err != nil {
			log.Printf("❌ Reset code cleanup failed: %v", err)
			return
		}
		log.Println("✅ Expired reset codes purged")
	})
	s.cron.Start()
	log.Println("✅ Cleanup service started (daily at 03:00)")
}

// Stop stops the scheduler
func (s *CleanupService) Stop() {
	s.cron.Stop()
}
