package service

import (
	"context"
	"log"
	"strings"
	"time"

	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/model"
)

const notifyTimeout = 30 * time.Second

type messageSender interface {
	SendMessage(ctx context.Context, chatID any, text string) (*client.Message, error)
}

// NotifyService fans a freshly published listing out to subscribers whose
// saved search matches its location. Delivery is best effort; a failed DM
// never fails the publish.
type NotifyService struct {
	telegram      messageSender
	subscriptions *SubscriptionService
}

func NewNotifyService(telegram messageSender, subscriptions *SubscriptionService) *NotifyService {
	return &NotifyService{telegram: telegram, subscriptions: subscriptions}
}

// ListingPublished notifies matching subscribers with the rendered card.
// Runs synchronously; callers fire it from a goroutine after the publish
// response is already on the wire.
func (s *NotifyService) ListingPublished(listing model.Listing, caption string) {
	if !s.subscriptions.Available() {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
	defer cancel()

	subs, err := s.subscriptions.AllEnabled(ctx)
	if err != nil {
		log.Printf("[Notify] Failed to load subscriptions (listing=%s): %v", listing.ID, err)
		return
	}

	sent := 0
	for _, sub := range subs {
		if sub.TgID == listing.OwnerTgID {
			continue
		}
		if !subscriptionMatches(sub, listing) {
			continue
		}
		if _, err := s.telegram.SendMessage(ctx, sub.TgID, caption); err != nil {
			log.Printf("[Notify] Failed to notify subscriber (tgId=%d, listing=%s): %v", sub.TgID, listing.ID, err)
			continue
		}
		sent++
	}

	if sent > 0 {
		log.Printf("[Notify] Listing announced to %d subscriber(s) (listing=%s)", sent, listing.ID)
	}
}

// subscriptionMatches checks the listing location against the saved comma
// lists. A subscription with no filters matches everything.
func subscriptionMatches(sub model.Subscription, listing model.Listing) bool {
	if strings.TrimSpace(sub.Cities) == "" && strings.TrimSpace(sub.Countries) == "" {
		return true
	}
	return listIncludes(sub.Cities, listing.City) || listIncludes(sub.Countries, listing.Country)
}

func listIncludes(list, value string) bool {
	value = strings.TrimSpace(value)
	if value == "" {
		return false
	}
	for _, item := range strings.Split(list, ",") {
		if strings.EqualFold(strings.TrimSpace(item), value) {
			return true
		}
	}
	return false
}
