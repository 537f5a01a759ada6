package service

import (
	"context"
	"strings"

	"github.com/catsflats/backend/internal/model"
)

type subscriptionStore interface {
	Enabled() bool
	FindByTgID(ctx context.Context, tgID int64) (*model.Subscription, error)
	Upsert(ctx context.Context, sub model.Subscription) (*model.Subscription, error)
	Delete(ctx context.Context, tgID int64) error
	FindAllEnabled(ctx context.Context) ([]model.Subscription, error)
}

// SubscriptionService manages saved-search notification preferences.
type SubscriptionService struct {
	repo subscriptionStore
}

func NewSubscriptionService(repo subscriptionStore) *SubscriptionService {
	return &SubscriptionService{repo: repo}
}

func (s *SubscriptionService) Available() bool {
	return s.repo.Enabled()
}

func (s *SubscriptionService) Get(ctx context.Context, tgID int64) (*model.Subscription, error) {
	return s.repo.FindByTgID(ctx, tgID)
}

func (s *SubscriptionService) Upsert(ctx context.Context, tgID int64, cities, countries string, enabled bool) (*model.Subscription, error) {
	return s.repo.Upsert(ctx, model.Subscription{
		TgID:      tgID,
		Cities:    normalizeList(cities),
		Countries: normalizeList(countries),
		Enabled:   enabled,
	})
}

func (s *SubscriptionService) Enable(ctx context.Context, tgID int64) (*model.Subscription, error) {
	existing, err := s.repo.FindByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return s.Upsert(ctx, tgID, "", "", true)
	}
	return s.Upsert(ctx, tgID, existing.Cities, existing.Countries, true)
}

func (s *SubscriptionService) Disable(ctx context.Context, tgID int64) (*model.Subscription, error) {
	existing, err := s.repo.FindByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, nil
	}
	return s.Upsert(ctx, tgID, existing.Cities, existing.Countries, false)
}

func (s *SubscriptionService) Delete(ctx context.Context, tgID int64) error {
	return s.repo.Delete(ctx, tgID)
}

func (s *SubscriptionService) AllEnabled(ctx context.Context) ([]model.Subscription, error) {
	return s.repo.FindAllEnabled(ctx)
}

// normalizeList tidies a comma-separated value: trimmed entries, single
// separator, empties dropped.
func normalizeList(value string) string {
	parts := strings.Split(value, ",")
	kept := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			kept = append(kept, trimmed)
		}
	}
	return strings.Join(kept, ", ")
}
