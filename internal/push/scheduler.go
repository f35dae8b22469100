package push

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/dukerupert/fusionmeals/internal/model"
	"github.com/dukerupert/fusionmeals/internal/pantry"
	"github.com/dukerupert/fusionmeals/internal/store"
)

// ExpiringWithinDays is how far ahead the expiry reminder looks.
const ExpiringWithinDays = 2

// sentRetention bounds the dedupe table.
const sentRetention = 7 * 24 * time.Hour

// Inventory supplies a user's pantry with current statuses.
type Inventory interface {
	Inventory(userID string) (*model.PantryInventory, error)
}

// Scheduler periodically sends pantry reminders. Each reminder type goes out
// at most once per user per day.
type Scheduler struct {
	mu       sync.RWMutex
	service  *Service
	push     *store.PushStore
	pantry   Inventory
	interval time.Duration
	now      func() time.Time
	logger   *slog.Logger
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewScheduler creates a pantry reminder scheduler.
func NewScheduler(svc *Service, pushStore *store.PushStore, inv Inventory, logger *slog.Logger) *Scheduler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Scheduler{
		service:  svc,
		push:     pushStore,
		pantry:   inv,
		interval: 60 * time.Second,
		now:      time.Now,
		logger:   logger.With("component", "push_scheduler"),
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
				s.tick(ctx)
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

func (s *Scheduler) tick(ctx context.Context) {
	now := s.now().UTC()

	userIDs, err := s.push.ListUserIDs()
	if err != nil {
		s.logger.Error("list subscribed users", "error", err)
		return
	}

	for _, uid := range userIDs {
		if ctx.Err() != nil {
			return
		}
		s.remind(ctx, uid, now)
	}

	if err := s.push.CleanupSent(now.Add(-sentRetention)); err != nil {
		s.logger.Error("cleanup sent notifications", "error", err)
	}
}

func (s *Scheduler) remind(ctx context.Context, userID string, now time.Time) {
	inv, err := s.pantry.Inventory(userID)
	if err != nil {
		s.logger.Error("load pantry", "user_id", userID, "error", err)
		return
	}

	var expiring, low []string
	for _, item := range inv.Items {
		if pantry.ExpiresWithin(item, now, ExpiringWithinDays) {
			expiring = append(expiring, item.Name)
		}
		if item.Status == model.PantryStatusLow {
			low = append(low, item.Name)
		}
	}

	day := now.Format("2006-01-02")
	if len(expiring) > 0 {
		s.notifyOnce(ctx, userID, model.NotifTypePantryExpiring, day, ExpiringPayload(expiring))
	}
	if len(low) > 0 {
		s.notifyOnce(ctx, userID, model.NotifTypePantryLowStock, day, LowStockPayload(low))
	}
}

func (s *Scheduler) notifyOnce(ctx context.Context, userID, notifType, refID string, payload Payload) {
	enabled, err := s.push.IsPreferenceEnabled(userID, notifType)
	if err != nil {
		s.logger.Error("check preference", "user_id", userID, "type", notifType, "error", err)
		return
	}
	if !enabled {
		return
	}

	sent, err := s.push.WasSent(userID, notifType, refID)
	if err != nil {
		s.logger.Error("check sent", "user_id", userID, "type", notifType, "error", err)
		return
	}
	if sent {
		return
	}

	if _, err := s.SendToUser(ctx, userID, payload); err != nil {
		s.logger.Error("send reminder", "user_id", userID, "type", notifType, "error", err)
		return
	}

	if err := s.push.RecordSent(userID, notifType, refID); err != nil {
		s.logger.Error("record sent", "user_id", userID, "type", notifType, "error", err)
	}
}

// SendToUser delivers payload to every device of a user and returns how many
// deliveries succeeded. Expired subscriptions are removed.
func (s *Scheduler) SendToUser(ctx context.Context, userID string, payload Payload) (int, error) {
	subs, err := s.push.ListByUser(userID)
	if err != nil {
		return 0, fmt.Errorf("list subscriptions: %w", err)
	}

	sent := 0
	for _, sub := range subs {
		if err := s.service.Send(ctx, &sub, payload); err != nil {
			if errors.Is(err, ErrExpired) {
				s.logger.Info("removing expired subscription", "user_id", userID, "subscription_id", sub.ID)
				if err := s.push.DeleteByEndpoint(sub.Endpoint); err != nil {
					s.logger.Error("delete expired subscription", "error", err)
				}
				continue
			}
			s.logger.Warn("push send failed", "user_id", userID, "subscription_id", sub.ID, "error", err)
			continue
		}
		sent++
	}
	return sent, nil
}

// ExpiringPayload summarizes items about to expire.
func ExpiringPayload(names []string) Payload {
	body := fmt.Sprintf("%d pantry items expire within %d days: %s", len(names), ExpiringWithinDays, strings.Join(names, ", "))
	if len(names) == 1 {
		body = fmt.Sprintf("%s expires within %d days", names[0], ExpiringWithinDays)
	}
	return Payload{
		Title: "Use it before you lose it",
		Body:  body,
		URL:   "/pantry",
		Tag:   "pantry-expiring",
	}
}

// LowStockPayload summarizes items at or below their threshold.
func LowStockPayload(names []string) Payload {
	body := fmt.Sprintf("%d pantry items are running low: %s", len(names), strings.Join(names, ", "))
	if len(names) == 1 {
		body = fmt.Sprintf("Running low on %s", names[0])
	}
	return Payload{
		Title: "Pantry running low",
		Body:  body,
		URL:   "/pantry",
		Tag:   "pantry-low-stock",
	}
}
