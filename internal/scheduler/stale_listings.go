package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/ewen-lbh/loca7/internal/config"
	"github.com/ewen-lbh/loca7/internal/database/appartments"
	"github.com/ewen-lbh/loca7/internal/importer"
	"github.com/ewen-lbh/loca7/internal/tasks"
)

// StaleListingsScheduler periodically archives listings whose owner has
// not touched them in a long time, so the search results stay current.
type StaleListingsScheduler struct {
	repo       *appartments.Repository
	taskClient *tasks.Client
	cfg        config.StaleListings
	publicURL  string

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	cancelFunc context.CancelFunc
}

func NewStaleListingsScheduler(repo *appartments.Repository, taskClient *tasks.Client, cfg config.StaleListings, publicURL string) *StaleListingsScheduler {
	return &StaleListingsScheduler{
		repo:       repo,
		taskClient: taskClient,
		cfg:        cfg,
		publicURL:  publicURL,
		cron:       cron.New(cron.WithParser(cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow))),
	}
}

// Start begins the scheduler if the sweep is enabled.
func (s *StaleListingsScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if !s.cfg.Enabled {
		log.Printf("Stale listings scheduler: disabled")
		return nil
	}
	if s.cfg.MaxAge <= 0 {
		return fmt.Errorf("stale listings: max age must be positive, got %v", s.cfg.MaxAge)
	}

	entryID, err := s.cron.AddFunc(s.cfg.Schedule, func() {
		if _, err := s.Sweep(); err != nil {
			log.Printf("Stale listings sweep failed: %v", err)
		}
	})
	if err != nil {
		return fmt.Errorf("invalid cron schedule '%s': %w", s.cfg.Schedule, err)
	}
	s.entryID = entryID

	var cancelCtx context.Context
	cancelCtx, s.cancelFunc = context.WithCancel(ctx)

	s.cron.Start()
	s.isRunning = true

	log.Printf("Stale listings scheduler: started with schedule '%s', max age %v",
		s.cfg.Schedule, s.cfg.MaxAge)

	go func() {
		<-cancelCtx.Done()
		s.Stop()
	}()

	return nil
}

// Stop gracefully stops the scheduler, waiting for a running sweep.
func (s *StaleListingsScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	ctx := s.cron.Stop()
	<-ctx.Done()

	s.isRunning = false
	s.cancelFunc = nil

	log.Printf("Stale listings scheduler: stopped")
}

// IsRunning returns whether the scheduler is active.
func (s *StaleListingsScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRunTime returns when the next sweep will occur.
func (s *StaleListingsScheduler) NextRunTime() *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if !s.isRunning {
		return nil
	}
	for _, entry := range s.cron.Entries() {
		if entry.ID == s.entryID {
			t := entry.Next
			return &t
		}
	}
	return nil
}

// Sweep archives every live listing untouched for longer than the
// configured maximum age and tells the owners. It returns the number of
// listings archived.
func (s *StaleListingsScheduler) Sweep() (int, error) {
	cutoff := time.Now().Add(-s.cfg.MaxAge)
	stale, err := s.repo.ListStale(cutoff)
	if err != nil {
		return 0, fmt.Errorf("failed to list stale listings: %w", err)
	}
	if len(stale) == 0 {
		log.Printf("Stale listings sweep: nothing to archive")
		return 0, nil
	}

	archived := 0
	for _, listing := range stale {
		if err := s.repo.SetArchived(listing.ID, true); err != nil {
			log.Printf("Stale listings sweep: failed to archive listing %s: %v", listing.ID, err)
			continue
		}
		archived++
		s.notifyOwner(listing.Owner.Email, listing.Title(), listing.ID)
	}

	log.Printf("Stale listings sweep: archived %d of %d stale listings", archived, len(stale))
	return archived, nil
}

// notifyOwner mails the owner about the automatic archival. Placeholder
// addresses from the import have nobody behind them, so they are skipped.
func (s *StaleListingsScheduler) notifyOwner(email, title, listingID string) {
	if s.taskClient == nil || email == "" || importer.IsGhostEmail(email) {
		return
	}
	task := tasks.SendMailTask{
		Template: "announcement-archived",
		To:       email,
		Subject:  "Votre annonce a été archivée automatiquement",
		Data: map[string]any{
			"Title": title,
			"URL":   s.publicURL + "/appartements/" + listingID,
		},
	}
	if _, err := s.taskClient.Add(task).Save(); err != nil {
		log.Printf("Stale listings sweep: failed to enqueue mail for %s: %v", email, err)
	}
}
