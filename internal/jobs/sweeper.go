package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	bookingservice "hallbook/internal/bookings/service"
	requestservice "hallbook/internal/requests/service"
	"hallbook/pkg/config"
)

const sweepTimeout = 2 * time.Minute

// Sweeper runs the periodic lifecycle jobs: expiring stale pending
// bookings, expiring unreviewed requests, and completing elapsed
// bookings. It satisfies the application Worker contract.
type Sweeper struct {
	cron     *cron.Cron
	bookings bookingservice.BookingService
	requests requestservice.RequestService
	cfg      *config.Config
}

func NewSweeper(bookings bookingservice.BookingService, requests requestservice.RequestService, cfg *config.Config) (*Sweeper, error) {
	s := &Sweeper{
		cron:     cron.New(),
		bookings: bookings,
		requests: requests,
		cfg:      cfg,
	}

	if _, err := s.cron.AddFunc(cfg.PendingExpirySchedule, s.expirePendingBookings); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.RequestExpirySchedule, s.expireRequests); err != nil {
		return nil, err
	}
	if _, err := s.cron.AddFunc(cfg.CompletionSchedule, s.completeElapsed); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Sweeper) Start() {
	s.cron.Start()
	s.cfg.Log.Info("Lifecycle sweeper started",
		"pending_expiry", s.cfg.PendingExpirySchedule,
		"request_expiry", s.cfg.RequestExpirySchedule,
		"completion", s.cfg.CompletionSchedule,
	)
}

// Stop halts scheduling and waits for any running sweep to finish.
func (s *Sweeper) Stop() {
	<-s.cron.Stop().Done()
	s.cfg.Log.Info("Lifecycle sweeper stopped")
}

func (s *Sweeper) expirePendingBookings() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.bookings.ExpireStalePending(ctx)
	if err != nil {
		s.cfg.Log.Error("Pending booking sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.cfg.Log.Info("Pending booking sweep finished", "expired", count)
	}
}

func (s *Sweeper) expireRequests() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.requests.ExpireStale(ctx)
	if err != nil {
		s.cfg.Log.Error("Request expiry sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.cfg.Log.Info("Request expiry sweep finished", "expired", count)
	}
}

func (s *Sweeper) completeElapsed() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()

	count, err := s.bookings.CompleteElapsed(ctx)
	if err != nil {
		s.cfg.Log.Error("Completion sweep failed", "error", err)
		return
	}
	if count > 0 {
		s.cfg.Log.Info("Completion sweep finished", "completed", count)
	}
}
