package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"edufunkids/internal/achievements"
	"edufunkids/internal/cache"
	"edufunkids/internal/logger"
	"edufunkids/internal/models"
	"edufunkids/internal/progress"
	"edufunkids/internal/repository"
)

const notifyTimeout = 30 * time.Second

// NotificationService emails parents when their child earns badges
type NotificationService struct {
	accounts *repository.AccountRepository
	profiles repository.ProfileStore
	mailer   Mailer
	log      *logger.Logger
}

// NewNotificationService creates a notification service
func NewNotificationService(accounts *repository.AccountRepository, profiles repository.ProfileStore, mailer Mailer, log *logger.Logger) *NotificationService {
	return &NotificationService{
		accounts: accounts,
		profiles: profiles,
		mailer:   mailer,
		log:      log.With("service", "NotificationService"),
	}
}

// HandleBadgeEvent sends the badge email when email is configured and the
// profile has achievement notifications switched on
func (n *NotificationService) HandleBadgeEvent(ctx context.Context, event cache.BadgeEvent) error {
	if n.mailer == nil || !n.mailer.IsEnabled() || len(event.Badges) == 0 {
		return nil
	}

	doc, err := n.profiles.Get(ctx, event.UserID)
	if errors.Is(err, repository.ErrProfileNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	profile := progress.Load(doc, time.Now()).Profile()
	prefs := profile.Settings.Notifications
	if !prefs.Enabled || !prefs.Achievements {
		return nil
	}

	account, err := n.accounts.GetByID(ctx, event.UserID)
	if err != nil {
		return err
	}
	if account == nil || account.IsDemo {
		return nil
	}

	badges := make([]models.Badge, 0, len(event.Badges))
	for _, id := range event.Badges {
		badges = append(badges, achievements.Lookup(id))
	}
	if err := n.mailer.SendBadgeEmail(ctx, account.Email, profile.ChildName, badges); err != nil {
		return fmt.Errorf("failed to send badge email: %w", err)
	}
	n.log.Info("Badge email sent", "user_id", event.UserID, "game", event.Game, "badges", len(badges))
	return nil
}

// LocalBadgePublisher hands badge events to a handler on its own goroutine.
// It stands in for the Redis bus on single-instance deployments.
type LocalBadgePublisher struct {
	handle func(context.Context, cache.BadgeEvent) error
	log    *logger.Logger
	wg     sync.WaitGroup
}

// NewLocalBadgePublisher creates a publisher calling handle for every event
func NewLocalBadgePublisher(handle func(context.Context, cache.BadgeEvent) error, log *logger.Logger) *LocalBadgePublisher {
	return &LocalBadgePublisher{handle: handle, log: log.With("service", "LocalBadgePublisher")}
}

func (p *LocalBadgePublisher) Publish(ctx context.Context, event cache.BadgeEvent) error {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), notifyTimeout)
		defer cancel()
		if err := p.handle(ctx, event); err != nil {
			p.log.Warn("Badge event handler failed", "user_id", event.UserID, "error", err)
		}
	}()
	return nil
}

// Wait blocks until every published event was handled
func (p *LocalBadgePublisher) Wait() {
	p.wg.Wait()
}
