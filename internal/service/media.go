package service

import (
	"context"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/config"
	"github.com/catsflats/backend/internal/model"
)

// maxPhotoBytes stays below Telegram's 20 MB photo limit.
const maxPhotoBytes = 15 * 1024 * 1024

var mimeExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
	"image/heic": ".heic",
	"image/heif": ".heif",
	"image/avif": ".avif",
}

type photoUploader interface {
	UploadPhoto(ctx context.Context, chatID any, data []byte, filename, caption string, silent bool) (*client.Message, error)
	DeleteMessage(ctx context.Context, chatID any, messageID int64) error
}

// MediaService stores uploaded photos on disk and obtains reusable Telegram
// file ids by bouncing the bytes through the uploader's own DM.
type MediaService struct {
	telegram photoUploader
	cfg      config.MediaConfig
}

func NewMediaService(telegram photoUploader, cfg config.MediaConfig) (*MediaService, error) {
	if err := os.MkdirAll(cfg.StorageRoot, 0o755); err != nil {
		return nil, fmt.Errorf("failed to initialize media storage directory: %w", err)
	}
	return &MediaService{telegram: telegram, cfg: cfg}, nil
}

// SavePhoto validates, stores and Telegram-uploads a photo. When the
// Telegram upload fails the stored URL is still returned so the web client
// can preview the image; the missing file id is flagged in the warning.
func (s *MediaService) SavePhoto(ctx context.Context, tgID int64, data []byte, filename, mimetype string) (*model.MediaUploadResponse, error) {
	if len(data) == 0 {
		return nil, apperr.Validation("file is empty")
	}
	if !strings.HasPrefix(mimetype, "image/") {
		return nil, apperr.Validation("only images are supported")
	}
	if len(data) > maxPhotoBytes {
		return nil, apperr.Validation("file is too large (max 15 MB)")
	}

	relativePath, err := s.store(data, filename, mimetype)
	if err != nil {
		return nil, err
	}
	url := s.publicURL(relativePath)

	if filename == "" {
		filename = "photo.jpg"
	}
	msg, err := s.telegram.UploadPhoto(ctx, tgID, data, filename, "📸 Photo uploaded (this message will be removed)", true)
	if err != nil {
		log.Printf("[Media] Telegram upload failed (tgId=%d): %v", tgID, err)
		return &model.MediaUploadResponse{
			URL:     url,
			Warning: "photo stored, but no Telegram file id could be obtained; use it for web preview only",
		}, nil
	}

	if len(msg.Photo) == 0 {
		return nil, apperr.Dependency("telegram did not return a file id", nil)
	}
	// Telegram returns sizes smallest-first.
	fileID := msg.Photo[len(msg.Photo)-1].FileID

	if err := s.telegram.DeleteMessage(ctx, tgID, msg.MessageID); err != nil {
		log.Printf("[Media] Failed to delete temporary photo message (tgId=%d, messageId=%d): %v", tgID, msg.MessageID, err)
	}

	return &model.MediaUploadResponse{FileID: fileID, URL: url}, nil
}

func (s *MediaService) store(data []byte, filename, mimetype string) (string, error) {
	now := time.Now()
	relativePath := path.Join(
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", int(now.Month())),
		uuid.NewString()+inferExtension(filename, mimetype),
	)

	absolutePath := filepath.Join(s.cfg.StorageRoot, filepath.FromSlash(relativePath))
	if err := os.MkdirAll(filepath.Dir(absolutePath), 0o755); err != nil {
		return "", fmt.Errorf("failed to create media directory: %w", err)
	}
	if err := os.WriteFile(absolutePath, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write media file: %w", err)
	}

	log.Printf("[Media] Stored media file (%s)", relativePath)
	return relativePath, nil
}

func (s *MediaService) publicURL(relativePath string) string {
	if s.cfg.BaseURL != "" {
		return s.cfg.BaseURL + "/" + relativePath
	}
	return s.cfg.PublicPath + relativePath
}

func inferExtension(filename, mimetype string) string {
	if ext := strings.ToLower(path.Ext(filename)); ext != "" {
		return ext
	}
	if ext, ok := mimeExtensions[strings.ToLower(mimetype)]; ok {
		return ext
	}
	return ".bin"
}
