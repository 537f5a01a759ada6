package service

import (
	"context"
	"strings"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
)

const listingFieldMax = 500

type listingStore interface {
	Create(ctx context.Context, listing model.Listing) (*model.Listing, error)
	FindByID(ctx context.Context, id string) (*model.Listing, error)
	UpdateChannelMessage(ctx context.Context, listingID string, messageID int64) error
}

type ListingService struct {
	repo     listingStore
	profiles *ProfileService
}

func NewListingService(repo listingStore, profiles *ProfileService) *ListingService {
	return &ListingService{repo: repo, profiles: profiles}
}

type ListingInput struct {
	ApartmentDescription  string
	ApartmentPhotoID      string
	ApartmentPhotoURL     string
	Dates                 string
	Conditions            string
	PreferredDestinations string
}

// BuildDraft validates listing input and combines it with the owner's
// profile into an unsaved listing. The owner must have a profile.
func (s *ListingService) BuildDraft(ctx context.Context, ownerTgID int64, input ListingInput) (*model.Listing, error) {
	profile, err := s.profiles.Ensure(ctx, ownerTgID)
	if err != nil {
		return nil, err
	}

	description, err := cleanField(input.ApartmentDescription, "apartment description", listingFieldMax)
	if err != nil {
		return nil, err
	}
	photoID, err := cleanField(input.ApartmentPhotoID, "apartment photo", 512)
	if err != nil {
		return nil, err
	}
	dates, err := NormalizeDateRange(input.Dates)
	if err != nil {
		return nil, err
	}
	conditions, err := cleanField(input.Conditions, "conditions", listingFieldMax)
	if err != nil {
		return nil, err
	}
	destinations, err := cleanField(input.PreferredDestinations, "preferred destinations", listingFieldMax)
	if err != nil {
		return nil, err
	}

	return &model.Listing{
		OwnerTgID:             ownerTgID,
		ProfileID:             profile.ID,
		Name:                  profile.Name,
		City:                  profile.City,
		Country:               profile.Country,
		CatPhotoID:            profile.CatPhotoID,
		CatPhotoURL:           profile.CatPhotoURL,
		ApartmentDescription:  description,
		ApartmentPhotoID:      photoID,
		ApartmentPhotoURL:     strings.TrimSpace(input.ApartmentPhotoURL),
		Dates:                 dates,
		Conditions:            conditions,
		PreferredDestinations: destinations,
	}, nil
}

// Persist stores a draft and returns the stored listing with its id.
func (s *ListingService) Persist(ctx context.Context, draft model.Listing) (*model.Listing, error) {
	return s.repo.Create(ctx, draft)
}

// GetOwned returns the listing only when it exists and belongs to tgID;
// anything else is NotFound so callers cannot probe other users' listings.
func (s *ListingService) GetOwned(ctx context.Context, tgID int64, id string) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if listing == nil || listing.OwnerTgID != tgID {
		return nil, apperr.NotFound("listing not found")
	}
	return listing, nil
}

func (s *ListingService) UpdateChannelMessage(ctx context.Context, listingID string, messageID int64) error {
	return s.repo.UpdateChannelMessage(ctx, listingID, messageID)
}
