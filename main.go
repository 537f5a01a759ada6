package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/catsflats/backend/internal/bot"
	"github.com/catsflats/backend/internal/client"
	"github.com/catsflats/backend/internal/config"
	"github.com/catsflats/backend/internal/db"
	"github.com/catsflats/backend/internal/handler"
	"github.com/catsflats/backend/internal/obs"
	"github.com/catsflats/backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Printf("[Main] no .env file, using process environment")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Main] config: %v", err)
	}

	obs.Init()

	notion := db.NewNotionClient(cfg.Notion.Token)
	profileRepo := db.NewProfiles(notion, cfg.Notion.ProfilesDB)
	listingRepo := db.NewListings(notion, cfg.Notion.ListingsDB)
	subscriptionRepo := db.NewSubscriptions(notion, cfg.Notion.SubscriptionsDB)

	telegram := client.NewTelegramClient(cfg.Telegram.BotToken)

	replay := service.NewReplayGuard()
	auth, err := service.NewAuthService(cfg.Telegram.BotToken, cfg.Auth, replay)
	if err != nil {
		log.Fatalf("[Main] auth: %v", err)
	}

	profiles := service.NewProfileService(profileRepo)
	listings := service.NewListingService(listingRepo, profiles)
	subscriptions := service.NewSubscriptionService(subscriptionRepo)
	publish := service.NewPublishService(telegram, cfg.Telegram.ChannelID)
	notify := service.NewNotifyService(telegram, subscriptions)
	media, err := service.NewMediaService(telegram, cfg.Media)
	if err != nil {
		log.Fatalf("[Main] media storage: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	limiter := service.NewActivityLimiter(cfg.RateLimit.BotMinInterval)
	botRouter := bot.NewRouter(telegram, limiter, profiles, subscriptions,
		cfg.Telegram.WebAppURL, cfg.Telegram.ChannelInviteLink)
	go botRouter.Run(ctx)

	router := handler.NewRouter(handler.Deps{
		Config:   cfg,
		Auth:     auth,
		Profiles: profiles,
		Listings: listings,
		Publish:  publish,
		Notify:   notify,
		Media:    media,
	})

	addr := cfg.HTTP.Host + ":" + cfg.HTTP.Port
	log.Printf("[Main] API listening on %s", addr)
	if err := router.Run(addr); err != nil {
		log.Fatalf("[Main] server: %v", err)
	}
}
