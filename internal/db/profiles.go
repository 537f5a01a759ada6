package db

import (
	"context"
	"sync"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/retry"
)

// Properties added to the profiles database after its first deployment.
// Older workspaces may still miss them, so the repo extends the schema on
// first use instead of failing every write.
var profileRequiredProps = []string{"intro", "catName", "catPhotoUrl"}

type Profiles struct {
	client     *NotionClient
	databaseID string

	mu          sync.Mutex
	schemaProps map[string]struct{}
}

func NewProfiles(client *NotionClient, databaseID string) *Profiles {
	return &Profiles{client: client, databaseID: databaseID}
}

// FindByTgID returns the profile owned by tgID, or nil when none exists.
func (r *Profiles) FindByTgID(ctx context.Context, tgID int64) (*model.Profile, error) {
	return retry.Do(ctx, "profiles.findByTgId", func(ctx context.Context) (*model.Profile, error) {
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
		profile := toProfile(resp.Results[0])
		return &profile, nil
	}, retry.Options{})
}

// Upsert creates or updates the page for profile.TgID and returns the stored
// profile.
func (r *Profiles) Upsert(ctx context.Context, profile model.Profile) (*model.Profile, error) {
	existing, err := r.FindByTgID(ctx, profile.TgID)
	if err != nil {
		return nil, err
	}
	if err := r.ensureSchema(ctx); err != nil {
		return nil, err
	}

	properties := buildProfileProperties(profile)

	return retry.Do(ctx, "profiles.upsert", func(ctx context.Context) (*model.Profile, error) {
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
		stored := toProfile(*page)
		return &stored, nil
	}, retry.Options{})
}

// UpdateChannelMessage records the channel post id on the owner's page. A
// missing profile is a no-op.
func (r *Profiles) UpdateChannelMessage(ctx context.Context, tgID, messageID int64) error {
	existing, err := r.FindByTgID(ctx, tgID)
	if err != nil {
		return err
	}
	if existing == nil || existing.ID == "" {
		return nil
	}

	_, err = retry.Do(ctx, "profiles.updateChannelMessage", func(ctx context.Context) (*Page, error) {
		return r.client.UpdatePage(ctx, existing.ID, map[string]any{
			"channelMessageId": numberProp(messageID),
		})
	}, retry.Options{})
	return err
}

// ensureSchema verifies the database carries every property the repo writes,
// extending it once when properties are missing. The property set is cached
// for the process lifetime.
func (r *Profiles) ensureSchema(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.schemaProps != nil {
		return nil
	}

	database, err := retry.Do(ctx, "profiles.retrieveSchema", func(ctx context.Context) (*Database, error) {
		return r.client.RetrieveDatabase(ctx, r.databaseID)
	}, retry.Options{})
	if err != nil {
		return apperr.Dependency("failed to read profiles database schema", err)
	}

	available := make(map[string]struct{}, len(database.Properties))
	for name := range database.Properties {
		available[name] = struct{}{}
	}

	missing := map[string]any{}
	for _, name := range profileRequiredProps {
		if _, ok := available[name]; !ok {
			missing[name] = map[string]any{"rich_text": map[string]any{}}
		}
	}

	if len(missing) > 0 {
		if _, err := r.client.UpdateDatabase(ctx, r.databaseID, missing); err != nil {
			return apperr.Dependency("profiles database is missing required properties (intro, catName, catPhotoUrl)", err)
		}
		for name := range missing {
			available[name] = struct{}{}
		}
	}

	r.schemaProps = available
	return nil
}

func buildProfileProperties(profile model.Profile) map[string]any {
	props := map[string]any{
		"title":       titleProp(profile.Name),
		"tgId":        numberProp(profile.TgID),
		"name":        richTextProp(profile.Name),
		"city":        richTextProp(profile.City),
		"country":     richTextProp(profile.Country),
		"intro":       richTextProp(profile.Intro),
		"catName":     richTextProp(profile.CatName),
		"catPhotoId":  richTextProp(profile.CatPhotoID),
		"catPhotoUrl": richTextProp(profile.CatPhotoURL),
	}
	if profile.ChannelMessageID != 0 {
		props["channelMessageId"] = numberProp(profile.ChannelMessageID)
	}
	return props
}

func toProfile(page Page) model.Profile {
	props := page.Properties
	name := plainText(props["name"])
	if name == "" {
		name = plainText(props["title"])
	}
	return model.Profile{
		ID:               page.ID,
		TgID:             propNumber(props["tgId"]),
		Name:             name,
		City:             plainText(props["city"]),
		Country:          plainText(props["country"]),
		Intro:            plainText(props["intro"]),
		CatName:          plainText(props["catName"]),
		CatPhotoID:       plainText(props["catPhotoId"]),
		CatPhotoURL:      plainText(props["catPhotoUrl"]),
		ChannelMessageID: propNumber(props["channelMessageId"]),
	}
}
