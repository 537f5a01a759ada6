package db

import (
	"context"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/retry"
)

type Listings struct {
	client     *NotionClient
	databaseID string
}

func NewListings(client *NotionClient, databaseID string) *Listings {
	return &Listings{client: client, databaseID: databaseID}
}

func (r *Listings) Create(ctx context.Context, listing model.Listing) (*model.Listing, error) {
	properties := buildListingProperties(listing)

	return retry.Do(ctx, "listings.create", func(ctx context.Context) (*model.Listing, error) {
		page, err := r.client.CreatePage(ctx, r.databaseID, properties)
		if err != nil {
			return nil, err
		}
		stored := toListing(*page)
		return &stored, nil
	}, retry.Options{})
}

// FindByID returns the listing page, or nil when Notion reports it missing.
func (r *Listings) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	return retry.Do(ctx, "listings.findById", func(ctx context.Context) (*model.Listing, error) {
		page, err := r.client.RetrievePage(ctx, id)
		if err != nil {
			if apperr.IsKind(err, apperr.KindNotFound) {
				return nil, nil
			}
			return nil, err
		}
		listing := toListing(*page)
		return &listing, nil
	}, retry.Options{})
}

func (r *Listings) UpdateChannelMessage(ctx context.Context, listingID string, messageID int64) error {
	_, err := retry.Do(ctx, "listings.updateChannelMessage", func(ctx context.Context) (*Page, error) {
		return r.client.UpdatePage(ctx, listingID, map[string]any{
			"channelMessageId": numberProp(messageID),
		})
	}, retry.Options{})
	return err
}

func buildListingProperties(listing model.Listing) map[string]any {
	props := map[string]any{
		"title":                 titleProp(listing.Name),
		"ownerTgId":             numberProp(listing.OwnerTgID),
		"profileId":             richTextProp(listing.ProfileID),
		"name":                  richTextProp(listing.Name),
		"city":                  richTextProp(listing.City),
		"country":               richTextProp(listing.Country),
		"catPhotoId":            richTextProp(listing.CatPhotoID),
		"catPhotoUrl":           richTextProp(listing.CatPhotoURL),
		"apartmentDescription":  richTextProp(listing.ApartmentDescription),
		"apartmentPhotoId":      richTextProp(listing.ApartmentPhotoID),
		"apartmentPhotoUrl":     richTextProp(listing.ApartmentPhotoURL),
		"dates":                 richTextProp(listing.Dates),
		"conditions":            richTextProp(listing.Conditions),
		"preferredDestinations": richTextProp(listing.PreferredDestinations),
	}
	if listing.ChannelMessageID != 0 {
		props["channelMessageId"] = numberProp(listing.ChannelMessageID)
	}
	return props
}

func toListing(page Page) model.Listing {
	props := page.Properties
	name := plainText(props["name"])
	if name == "" {
		name = plainText(props["title"])
	}
	return model.Listing{
		ID:                    page.ID,
		OwnerTgID:             propNumber(props["ownerTgId"]),
		ProfileID:             plainText(props["profileId"]),
		Name:                  name,
		City:                  plainText(props["city"]),
		Country:               plainText(props["country"]),
		CatPhotoID:            plainText(props["catPhotoId"]),
		CatPhotoURL:           plainText(props["catPhotoUrl"]),
		ApartmentDescription:  plainText(props["apartmentDescription"]),
		ApartmentPhotoID:      plainText(props["apartmentPhotoId"]),
		ApartmentPhotoURL:     plainText(props["apartmentPhotoUrl"]),
		Dates:                 plainText(props["dates"]),
		Conditions:            plainText(props["conditions"]),
		PreferredDestinations: plainText(props["preferredDestinations"]),
		ChannelMessageID:      propNumber(props["channelMessageId"]),
	}
}
