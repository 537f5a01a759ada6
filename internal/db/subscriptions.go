package db

import (
	"context"
	"time"

	"github.com/catsflats/backend/internal/cache"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/obs"
	"github.com/catsflats/backend/internal/retry"
)

const (
	subscriptionCacheTTL = 5 * time.Minute
	subscriptionCacheMax = 1000
)

// Subscriptions stores notification preferences. Reads go through an
// expiring cache because the bot checks subscriptions on nearly every
// update while Notion rate-limits aggressively.
type Subscriptions struct {
	client     *NotionClient
	databaseID string
	cache      *cache.Cache[int64, model.Subscription]
}

func NewSubscriptions(client *NotionClient, databaseID string) *Subscriptions {
	return &Subscriptions{
		client:     client,
		databaseID: databaseID,
		cache:      cache.New[int64, model.Subscription](subscriptionCacheTTL, subscriptionCacheMax),
	}
}

// Enabled reports whether the subscriptions database is configured at all.
func (r *Subscriptions) Enabled() bool {
	return r.databaseID != ""
}

func (r *Subscriptions) FindByTgID(ctx context.Context, tgID int64) (*model.Subscription, error) {
	if sub, ok := r.cache.Get(tgID); ok {
		obs.CacheHits.WithLabelValues("subscriptions").Inc()
		return &sub, nil
	}
	obs.CacheMisses.WithLabelValues("subscriptions").Inc()

	sub, err := retry.Do(ctx, "subscriptions.findByTgId", func(ctx context.Context) (*model.Subscription, error) {
		resp, err := r.client.QueryDatabase(ctx, r.databaseID, map[string]any{
			"filter": map[string]any{
				"property": "tgId",
				"number":   map[string]any{"equals": tgID},
			},
			"page_size": 1,
		})
		if err != nil {
			return nil, err
		}
		if len(resp.Results) == 0 {
			return nil, nil
		}
		found := toSubscription(resp.Results[0])
		return &found, nil
	}, retry.Options{})
	if err != nil {
		return nil, err
	}
	if sub != nil {
		r.cache.Set(tgID, *sub)
	}
	return sub, nil
}

func (r *Subscriptions) Upsert(ctx context.Context, sub model.Subscription) (*model.Subscription, error) {
	existing, err := r.FindByTgID(ctx, sub.TgID)
	if err != nil {
		return nil, err
	}

	properties := map[string]any{
		"title":     titleProp("subscription"),
		"tgId":      numberProp(sub.TgID),
		"cities":    richTextProp(sub.Cities),
		"countries": richTextProp(sub.Countries),
		"enabled":   checkboxProp(sub.Enabled),
	}

	stored, err := retry.Do(ctx, "subscriptions.upsert", func(ctx context.Context) (*model.Subscription, error) {
		var page *Page
		var err error
		if existing != nil && existing.ID != "" {
			page, err = r.client.UpdatePage(ctx, existing.ID, properties)
		} else {
			page, err = r.client.CreatePage(ctx, r.databaseID, properties)
		}
		if err != nil {
			return nil, err
		}
		result := toSubscription(*page)
		return &result, nil
	}, retry.Options{})
	if err != nil {
		return nil, err
	}

	r.cache.Set(sub.TgID, *stored)
	return stored, nil
}

// Delete disables the subscription page. Notion archives rather than
// deletes, so a disabled flag keeps the page queryable for support.
func (r *Subscriptions) Delete(ctx context.Context, tgID int64) error {
	existing, err := r.FindByTgID(ctx, tgID)
	if err != nil {
		return err
	}
	if existing == nil || existing.ID == "" {
		return nil
	}

	_, err = retry.Do(ctx, "subscriptions.delete", func(ctx context.Context) (*Page, error) {
		return r.client.UpdatePage(ctx, existing.ID, map[string]any{
			"enabled": checkboxProp(false),
		})
	}, retry.Options{})
	if err != nil {
		return err
	}

	r.cache.Delete(tgID)
	return nil
}

func (r *Subscriptions) FindAllEnabled(ctx context.Context) ([]model.Subscription, error) {
	return retry.Do(ctx, "subscriptions.findAllEnabled", func(ctx context.Context) ([]model.Subscription, error) {
		resp, err := r.client.QueryDatabase(ctx, r.databaseID, map[string]any{
			"filter": map[string]any{
				"property": "enabled",
				"checkbox": map[string]any{"equals": true},
			},
		})
		if err != nil {
			return nil, err
		}
		subs := make([]model.Subscription, 0, len(resp.Results))
		for _, page := range resp.Results {
			subs = append(subs, toSubscription(page))
		}
		return subs, nil
	}, retry.Options{})
}

func toSubscription(page Page) model.Subscription {
	props := page.Properties
	return model.Subscription{
		ID:        page.ID,
		TgID:      propNumber(props["tgId"]),
		Cities:    plainText(props["cities"]),
		Countries: plainText(props["countries"]),
		Enabled:   propCheckbox(props["enabled"]),
	}
}
