package service

import (
	"context"
	"strings"
	"testing"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
)

type fakeListingStore struct {
	listings map[string]*model.Listing
	nextID   int
}

func newFakeListingStore() *fakeListingStore {
	return &fakeListingStore{listings: make(map[string]*model.Listing)}
}

func (f *fakeListingStore) Create(ctx context.Context, listing model.Listing) (*model.Listing, error) {
	f.nextID++
	stored := listing
	stored.ID = "listing-" + strings.Repeat("x", f.nextID)
	f.listings[stored.ID] = &stored
	return &stored, nil
}

func (f *fakeListingStore) FindByID(ctx context.Context, id string) (*model.Listing, error) {
	return f.listings[id], nil
}

func (f *fakeListingStore) UpdateChannelMessage(ctx context.Context, listingID string, messageID int64) error {
	if listing, ok := f.listings[listingID]; ok {
		listing.ChannelMessageID = messageID
	}
	return nil
}

func newListingFixture(t *testing.T) (*ListingService, *fakeListingStore) {
	t.Helper()
	profileStore := newFakeProfileStore()
	profiles := NewProfileService(profileStore)
	if _, err := profiles.Save(context.Background(), validProfileInput()); err != nil {
		t.Fatalf("Save(profile) = %v", err)
	}
	store := newFakeListingStore()
	return NewListingService(store, profiles), store
}

func validListingInput() ListingInput {
	return ListingInput{
		ApartmentDescription:  "Cozy flat near the river",
		ApartmentPhotoID:      "AgACAgIAAxk-flat",
		Dates:                 "01.06.2030 - 15.06.2030",
		Conditions:            "Exchange preferred",
		PreferredDestinations: "Berlin, Paris",
	}
}

func TestListingBuildDraftInheritsProfile(t *testing.T) {
	svc, _ := newListingFixture(t)

	draft, err := svc.BuildDraft(context.Background(), 42, validListingInput())
	if err != nil {
		t.Fatalf("BuildDraft() = %v", err)
	}
	if draft.OwnerTgID != 42 {
		t.Fatalf("owner = %d, want 42", draft.OwnerTgID)
	}
	if draft.Name != "Ada" || draft.City != "Lisbon" {
		t.Fatalf("profile fields not inherited: %q/%q", draft.Name, draft.City)
	}
	if draft.Dates != "01.06.2030 - 15.06.2030" {
		t.Fatalf("dates = %q, want normalized range", draft.Dates)
	}
	if draft.ID != "" {
		t.Fatal("draft should not carry an id before Persist")
	}
}

func TestListingBuildDraftRequiresProfile(t *testing.T) {
	profiles := NewProfileService(newFakeProfileStore())
	svc := NewListingService(newFakeListingStore(), profiles)

	_, err := svc.BuildDraft(context.Background(), 99, validListingInput())
	if !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("BuildDraft() = %v, want not found", err)
	}
}

func TestListingBuildDraftValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ListingInput)
	}{
		{"empty-description", func(in *ListingInput) { in.ApartmentDescription = " " }},
		{"long-description", func(in *ListingInput) { in.ApartmentDescription = strings.Repeat("a", 501) }},
		{"empty-photo", func(in *ListingInput) { in.ApartmentPhotoID = "" }},
		{"bad-dates", func(in *ListingInput) { in.Dates = "whenever" }},
		{"empty-conditions", func(in *ListingInput) { in.Conditions = "" }},
		{"empty-destinations", func(in *ListingInput) { in.PreferredDestinations = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _ := newListingFixture(t)
			input := validListingInput()
			tt.mutate(&input)
			_, err := svc.BuildDraft(context.Background(), 42, input)
			if !apperr.IsKind(err, apperr.KindValidation) {
				t.Fatalf("BuildDraft() = %v, want validation error", err)
			}
		})
	}
}

func TestListingGetOwned(t *testing.T) {
	svc, _ := newListingFixture(t)

	draft, err := svc.BuildDraft(context.Background(), 42, validListingInput())
	if err != nil {
		t.Fatalf("BuildDraft() = %v", err)
	}
	stored, err := svc.Persist(context.Background(), *draft)
	if err != nil {
		t.Fatalf("Persist() = %v", err)
	}

	got, err := svc.GetOwned(context.Background(), 42, stored.ID)
	if err != nil {
		t.Fatalf("GetOwned(owner) = %v", err)
	}
	if got.ID != stored.ID {
		t.Fatalf("id = %q, want %q", got.ID, stored.ID)
	}

	// Another user's id probe and an unknown id both look identical.
	if _, err := svc.GetOwned(context.Background(), 7, stored.ID); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("GetOwned(stranger) = %v, want not found", err)
	}
	if _, err := svc.GetOwned(context.Background(), 42, "missing"); !apperr.IsKind(err, apperr.KindNotFound) {
		t.Fatalf("GetOwned(missing) = %v, want not found", err)
	}
}
