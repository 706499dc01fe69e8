package maintenance

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// Scheduler runs named housekeeping jobs on cron schedules
type Scheduler struct {
	cron    *cron.Cron
	jobs    map[string]cron.EntryID // job name -> entry_id
	jobsMux sync.RWMutex
}

// NewScheduler creates a new scheduler
func NewScheduler() *Scheduler {
	return &Scheduler{
		cron: cron.New(cron.WithSeconds()), // Support seconds in cron expressions
		jobs: make(map[string]cron.EntryID),
	}
}

// Start starts the scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	log.Info().Int("jobs", len(s.Jobs())).Msg("⏰ Maintenance scheduler started")
}

// Stop stops the scheduler and waits for running jobs
func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	log.Info().Msg("✅ Maintenance scheduler stopped")
}

// AddJob registers job under name, replacing any previous job with that name.
// schedule is a six-field cron expression (e.g. "0 0 3 * * *" for 03:00 daily).
func (s *Scheduler) AddJob(name, schedule string, job func()) error {
	s.jobsMux.Lock()
	defer s.jobsMux.Unlock()

	if entryID, exists := s.jobs[name]; exists {
		s.cron.Remove(entryID)
		delete(s.jobs, name)
	}

	entryID, err := s.cron.AddFunc(schedule, job)
	if err != nil {
		return fmt.Errorf("failed to add cron job %s: %w", name, err)
	}

	s.jobs[name] = entryID
	log.Info().Str("job", name).Str("schedule", schedule).Msg("   ✅ Scheduled job")
	return nil
}

// Jobs returns the registered job names
func (s *Scheduler) Jobs() []string {
	s.jobsMux.RLock()
	defer s.jobsMux.RUnlock()

	names := make([]string, 0, len(s.jobs))
	for name := range s.jobs {
		names = append(names, name)
	}
	return names
}

// IdleResolver closes conversations that went quiet
type IdleResolver interface {
	ResolveIdle(ctx context.Context, before time.Time) (int64, error)
}

// ConversationSweeper resolves active or pending conversations idle longer than After
type ConversationSweeper struct {
	Repo  IdleResolver
	After time.Duration
	Now   func() time.Time
}

// Run performs one sweep
func (s *ConversationSweeper) Run(ctx context.Context) (int64, error) {
	now := time.Now
	if s.Now != nil {
		now = s.Now
	}
	cutoff := now().Add(-s.After)

	n, err := s.Repo.ResolveIdle(ctx, cutoff)
	if err != nil {
		log.Error().Err(err).Msg("❌ Conversation sweep failed")
		return 0, err
	}
	if n > 0 {
		log.Info().Int64("resolved", n).Time("cutoff", cutoff).Msg("🧹 Resolved idle conversations")
	}
	return n, nil
}

// Job adapts Run to a cron callback
func (s *ConversationSweeper) Job() func() {
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		_, _ = s.Run(ctx)
	}
}
