package service

import (
	"context"
	"errors"
	"log"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/model"
)

// channelPoster - 채널 게시에 필요한 Telegram 클라이언트 메서드
type channelPoster interface {
	SendPhoto(ctx context.Context, chatID any, fileID, caption string) (*client.Message, error)
	SendMediaGroup(ctx context.Context, chatID any, media []client.InputMediaPhoto) ([]client.Message, error)
}

// PublishService posts profiles and listings to the shared channel.
type PublishService struct {
	telegram  channelPoster
	channelID string
}

func NewPublishService(telegram channelPoster, channelID string) *PublishService {
	return &PublishService{telegram: telegram, channelID: channelID}
}

func (s *PublishService) PublishProfile(ctx context.Context, profile model.Profile, caption string) (int64, error) {
	msg, err := s.telegram.SendPhoto(ctx, s.channelID, profile.CatPhotoID, caption)
	if err != nil {
		log.Printf("[Publish] Failed to publish profile (tgId=%d): %v", profile.TgID, err)
		return 0, asDependency("failed to post profile to channel", err)
	}
	log.Printf("[Publish] Profile posted to channel (tgId=%d, messageId=%d)", profile.TgID, msg.MessageID)
	return msg.MessageID, nil
}

func (s *PublishService) PublishListing(ctx context.Context, listing model.Listing, caption string) (int64, error) {
	media := []client.InputMediaPhoto{
		{Type: "photo", Media: listing.CatPhotoID, Caption: caption, ParseMode: "MarkdownV2"},
		{Type: "photo", Media: listing.ApartmentPhotoID},
	}
	messages, err := s.telegram.SendMediaGroup(ctx, s.channelID, media)
	if err != nil {
		log.Printf("[Publish] Failed to publish listing (id=%s): %v", listing.ID, err)
		return 0, asDependency("failed to post listing to channel", err)
	}
	if len(messages) == 0 {
		return 0, apperr.Dependency("telegram did not return a message id", nil)
	}
	log.Printf("[Publish] Listing posted to channel (id=%s, messageId=%d)", listing.ID, messages[0].MessageID)
	return messages[0].MessageID, nil
}

// asDependency keeps already-classified errors intact and folds everything
// else into a dependency failure.
func asDependency(message string, err error) error {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Dependency(message, err)
}
