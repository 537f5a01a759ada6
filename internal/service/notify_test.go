package service

import (
	"context"
	"testing"

	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/model"
)

type fakeSubscriptionStore struct {
	subs []model.Subscription
}

func (f *fakeSubscriptionStore) Enabled() bool { return true }

func (f *fakeSubscriptionStore) FindByTgID(ctx context.Context, tgID int64) (*model.Subscription, error) {
	for i := range f.subs {
		if f.subs[i].TgID == tgID {
			return &f.subs[i], nil
		}
	}
	return nil, nil
}

func (f *fakeSubscriptionStore) Upsert(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	f.subs = append(f.subs, sub)
	return &sub, nil
}

func (f *fakeSubscriptionStore) Delete(ctx context.Context, tgID int64) error { return nil }

func (f *fakeSubscriptionStore) FindAllEnabled(ctx context.Context) ([]model.Subscription, error) {
	enabled := make([]model.Subscription, 0, len(f.subs))
	for _, sub := range f.subs {
		if sub.Enabled {
			enabled = append(enabled, sub)
		}
	}
	return enabled, nil
}

type recordingSender struct {
	sent []any
}

func (r *recordingSender) SendMessage(ctx context.Context, chatID any, text string) (*client.Message, error) {
	r.sent = append(r.sent, chatID)
	return &client.Message{MessageID: 1}, nil
}

func TestNotifyListingPublished(t *testing.T) {
	store := &fakeSubscriptionStore{subs: []model.Subscription{
		{TgID: 1, Cities: "Lisbon, Porto", Enabled: true},
		{TgID: 2, Cities: "Berlin", Enabled: true},
		{TgID: 3, Countries: "Portugal", Enabled: true},
		{TgID: 4, Enabled: true},  // no filters, matches everything
		{TgID: 5, Cities: "lisbon", Enabled: true},
		{TgID: 42, Cities: "Lisbon", Enabled: true}, // the owner, skipped
	}}
	sender := &recordingSender{}
	notify := NewNotifyService(sender, NewSubscriptionService(store))

	notify.ListingPublished(model.Listing{
		ID:        "listing-1",
		OwnerTgID: 42,
		City:      "Lisbon",
		Country:   "Portugal",
	}, "caption")

	want := map[int64]bool{1: true, 3: true, 4: true, 5: true}
	if len(sender.sent) != len(want) {
		t.Fatalf("sent to %v, want %d recipients", sender.sent, len(want))
	}
	for _, chatID := range sender.sent {
		id, ok := chatID.(int64)
		if !ok || !want[id] {
			t.Fatalf("unexpected recipient %v", chatID)
		}
	}
}

func TestSubscriptionMatches(t *testing.T) {
	listing := model.Listing{City: "Lisbon", Country: "Portugal"}

	tests := []struct {
		name string
		sub  model.Subscription
		want bool
	}{
		{"city-match", model.Subscription{Cities: "Lisbon"}, true},
		{"city-in-list", model.Subscription{Cities: "Porto, Lisbon"}, true},
		{"case-insensitive", model.Subscription{Cities: "LISBON"}, true},
		{"country-match", model.Subscription{Countries: "Portugal"}, true},
		{"no-match", model.Subscription{Cities: "Berlin", Countries: "Germany"}, false},
		{"empty-matches-all", model.Subscription{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := subscriptionMatches(tt.sub, listing); got != tt.want {
				t.Fatalf("subscriptionMatches() = %v, want %v", got, tt.want)
			}
		})
	}
}
