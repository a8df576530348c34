package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/fittra/trailstack/internal/metrics"
	"github.com/fittra/trailstack/internal/model"
	"github.com/fittra/trailstack/internal/store"
)

// Scheduler periodically checks for departure reminders to send.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	trips    *store.TripStore
	metrics  *metrics.Metrics
	logger   *slog.Logger
	interval time.Duration
	leadDays int
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a departure reminder scheduler. leadDays is how many
// days before a trip's start date the reminder goes out.
func NewScheduler(svc *Service, pushStore *store.PushStore, tripStore *store.TripStore, leadDays int, m *metrics.Metrics, logger *slog.Logger) *Scheduler {
	if leadDays <= 0 {
		leadDays = 3
	}
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		trips:    tripStore,
		metrics:  m,
		logger:   logger,
		interval: 15 * time.Minute,
		leadDays: leadDays,
	}
}

// Start begins the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})
	s.mu.Unlock()

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.tick()
			}
		}
	}()
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.RLock()
	cancel := s.cancel
	done := s.done
	s.mu.RUnlock()

	if cancel != nil {
		cancel()
	}
	if done != nil {
		<-done
	}
}

func (s *Scheduler) tick() {
	now := time.Now().UTC()
	windowEnd := now.Add(time.Duration(s.leadDays) * 24 * time.Hour)

	trips, err := s.trips.ListStartingBetween(now, windowEnd)
	if err != nil {
		s.logger.Error("list departing trips", "error", err)
		return
	}

	for _, t := range trips {
		refID := fmt.Sprintf("trip-%d", t.ID)
		sent, err := s.push.WasSent(model.NotifTypeDepartureReminder, refID)
		if err != nil {
			s.logger.Error("check sent reminder", "error", err)
			continue
		}
		if sent {
			continue
		}

		daysOut := int(t.StartDate.UTC().Sub(now).Hours()/24) + 1
		body := fmt.Sprintf("%s starts in %d days", t.Title, daysOut)
		if daysOut <= 1 {
			body = fmt.Sprintf("%s starts tomorrow", t.Title)
		}

		s.sendAll(Payload{
			Title: "Departure Reminder",
			Body:  body,
			URL:   fmt.Sprintf("/trip/%d", t.ID),
			Tag:   refID,
		})

		s.push.RecordSent(model.NotifTypeDepartureReminder, refID)
	}
}

func (s *Scheduler) sendAll(payload Payload) {
	subs, err := s.push.List()
	if err != nil {
		s.logger.Error("list push subscriptions", "error", err)
		return
	}

	for _, sub := range subs {
		if err := s.service.Send(&sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.push.DeleteByEndpoint(sub.Endpoint)
				s.metrics.PushSends.WithLabelValues("expired").Inc()
			} else {
				s.logger.Error("send departure reminder", "error", err)
				s.metrics.PushSends.WithLabelValues("error").Inc()
			}
			continue
		}
		s.metrics.PushSends.WithLabelValues("ok").Inc()
	}
}
