// 환경변수 기반 설정 로더
//
// 환경변수:
//   - BOT_TOKEN: Telegram Bot Token (required)
//   - CHANNEL_ID: 게시 채널 ID (required)
//   - CHANNEL_INVITE_LINK: 채널 초대 링크 (required)
//   - NOTION_TOKEN, NOTION_DB_PROFILES, NOTION_DB_LISTINGS (required)
//   - NOTION_DB_SUBSCRIPTIONS (optional)
//   - API_HOST (default: 0.0.0.0), API_PORT (default: 8080)
//   - API_CORS_ORIGINS (default: *)
//   - MEDIA_STORAGE_ROOT, MEDIA_PUBLIC_PATH, MEDIA_BASE_URL

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Telegram  TelegramConfig
	Notion    NotionConfig
	HTTP      HTTPConfig
	Auth      AuthConfig
	Media     MediaConfig
	RateLimit RateLimitConfig
}

type TelegramConfig struct {
	BotToken          string
	ChannelID         string
	ChannelInviteLink string
	WebAppURL         string
}

type NotionConfig struct {
	Token           string
	ProfilesDB      string
	ListingsDB      string
	SubscriptionsDB string
}

type HTTPConfig struct {
	Host        string
	Port        string
	CORSOrigins []string
}

type AuthConfig struct {
	InitDataMaxAge time.Duration
	SessionTTL     time.Duration
}

type MediaConfig struct {
	StorageRoot string
	PublicPath  string
	BaseURL     string
}

type RateLimitConfig struct {
	RequestsPerMinute int
	BotMinInterval    time.Duration
}

func Load() (Config, error) {
	cfg := Config{
		Telegram: TelegramConfig{
			BotToken:          os.Getenv("BOT_TOKEN"),
			ChannelID:         os.Getenv("CHANNEL_ID"),
			ChannelInviteLink: os.Getenv("CHANNEL_INVITE_LINK"),
			WebAppURL:         strings.TrimSpace(os.Getenv("WEBAPP_URL")),
		},
		Notion: NotionConfig{
			Token:           os.Getenv("NOTION_TOKEN"),
			ProfilesDB:      os.Getenv("NOTION_DB_PROFILES"),
			ListingsDB:      os.Getenv("NOTION_DB_LISTINGS"),
			SubscriptionsDB: os.Getenv("NOTION_DB_SUBSCRIPTIONS"),
		},
		HTTP: HTTPConfig{
			Host:        getenv("API_HOST", "0.0.0.0"),
			Port:        getenv("API_PORT", "8080"),
			CORSOrigins: splitList(getenv("API_CORS_ORIGINS", "*")),
		},
		Auth: AuthConfig{
			InitDataMaxAge: durationEnv("AUTH_INIT_DATA_MAX_AGE", 300*time.Second),
			SessionTTL:     durationEnv("AUTH_SESSION_TTL", time.Hour),
		},
		Media: MediaConfig{
			StorageRoot: resolveStorageRoot(os.Getenv("MEDIA_STORAGE_ROOT")),
			PublicPath:  normalizePublicPath(getenv("MEDIA_PUBLIC_PATH", "/uploads")),
			BaseURL:     strings.TrimRight(os.Getenv("MEDIA_BASE_URL"), "/"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerMinute: intEnv("RATE_LIMIT_PER_MINUTE", 100),
			BotMinInterval:    durationEnv("BOT_RATE_LIMIT_INTERVAL", 500*time.Millisecond),
		},
	}

	required := []struct {
		name  string
		value string
	}{
		{"BOT_TOKEN", cfg.Telegram.BotToken},
		{"CHANNEL_ID", cfg.Telegram.ChannelID},
		{"CHANNEL_INVITE_LINK", cfg.Telegram.ChannelInviteLink},
		{"NOTION_TOKEN", cfg.Notion.Token},
		{"NOTION_DB_PROFILES", cfg.Notion.ProfilesDB},
		{"NOTION_DB_LISTINGS", cfg.Notion.ListingsDB},
	}
	for _, req := range required {
		if req.value == "" {
			return Config{}, fmt.Errorf("missing required env var: %s", req.name)
		}
	}

	if port, err := strconv.Atoi(cfg.HTTP.Port); err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("API_PORT must be a valid port number, got %q", cfg.HTTP.Port)
	}

	return cfg, nil
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func intEnv(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	val, err := strconv.Atoi(raw)
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}

func durationEnv(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	val, err := time.ParseDuration(raw)
	if err != nil || val <= 0 {
		return fallback
	}
	return val
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func normalizePublicPath(value string) string {
	if !strings.HasPrefix(value, "/") {
		value = "/" + value
	}
	if !strings.HasSuffix(value, "/") {
		value += "/"
	}
	return value
}

func resolveStorageRoot(value string) string {
	if value == "" {
		value = "storage/uploads"
	}
	if filepath.IsAbs(value) {
		return value
	}
	wd, err := os.Getwd()
	if err != nil {
		return value
	}
	return filepath.Join(wd, value)
}
