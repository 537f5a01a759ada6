package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
)

// profileStore - 프로필 저장소 인터페이스 (Notion 레포지토리가 구현)
type profileStore interface {
	FindByTgID(ctx context.Context, tgID int64) (*model.Profile, error)
	Upsert(ctx context.Context, profile model.Profile) (*model.Profile, error)
	UpdateChannelMessage(ctx context.Context, tgID, messageID int64) error
}

type ProfileService struct {
	repo profileStore
}

func NewProfileService(repo profileStore) *ProfileService {
	return &ProfileService{repo: repo}
}

type ProfileInput struct {
	TgID        int64
	Name        string
	Location    string
	Intro       string
	CatName     string
	CatPhotoID  string
	CatPhotoURL string
}

// Save validates and stores a profile, returning the stored copy.
func (s *ProfileService) Save(ctx context.Context, input ProfileInput) (*model.Profile, error) {
	name, err := cleanField(input.Name, "name", 120)
	if err != nil {
		return nil, err
	}
	intro, err := cleanField(input.Intro, "intro", 600)
	if err != nil {
		return nil, err
	}
	catName, err := cleanField(input.CatName, "cat name", 100)
	if err != nil {
		return nil, err
	}
	catPhotoID, err := cleanField(input.CatPhotoID, "cat photo", 512)
	if err != nil {
		return nil, err
	}
	catPhotoURL := strings.TrimSpace(input.CatPhotoURL)
	if len([]rune(catPhotoURL)) > 2048 {
		return nil, apperr.Validation("cat photo link is too long (max 2048 characters)")
	}

	city, country, err := normalizeLocation(input.Location)
	if err != nil {
		return nil, err
	}

	return s.repo.Upsert(ctx, model.Profile{
		TgID:        input.TgID,
		Name:        name,
		City:        city,
		Country:     country,
		Intro:       intro,
		CatName:     catName,
		CatPhotoID:  catPhotoID,
		CatPhotoURL: catPhotoURL,
	})
}

// Get returns the profile for tgID, or nil when none exists.
func (s *ProfileService) Get(ctx context.Context, tgID int64) (*model.Profile, error) {
	return s.repo.FindByTgID(ctx, tgID)
}

// Ensure returns the profile for tgID or a NotFound error.
func (s *ProfileService) Ensure(ctx context.Context, tgID int64) (*model.Profile, error) {
	profile, err := s.repo.FindByTgID(ctx, tgID)
	if err != nil {
		return nil, err
	}
	if profile == nil {
		return nil, apperr.NotFound("profile not found, fill it in first")
	}
	return profile, nil
}

func (s *ProfileService) UpdateChannelMessage(ctx context.Context, tgID, messageID int64) error {
	return s.repo.UpdateChannelMessage(ctx, tgID, messageID)
}

func cleanField(value, field string, max int) (string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return "", apperr.Validation(field + " cannot be empty")
	}
	if len([]rune(trimmed)) > max {
		return "", apperr.Validation(fmt.Sprintf("%s is too long (max %d characters)", field, max))
	}
	return trimmed, nil
}

// normalizeLocation splits a "City, Country" value. A single segment is used
// for both parts, matching how hosts usually type just the city.
func normalizeLocation(value string) (string, string, error) {
	if strings.TrimSpace(value) == "" {
		return "", "", nil
	}
	parts := make([]string, 0, 2)
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			parts = append(parts, trimmed)
		}
	}
	if len(parts) == 0 {
		return "", "", nil
	}

	city, err := cleanField(parts[0], "city", 180)
	if err != nil {
		return "", "", err
	}
	countryRaw := parts[0]
	if len(parts) > 1 {
		countryRaw = parts[1]
	}
	country, err := cleanField(countryRaw, "country", 180)
	if err != nil {
		return "", "", err
	}
	return city, country, nil
}
