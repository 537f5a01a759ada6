package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/config"
	"github.com/catsflats/backend/internal/obs"
	"github.com/catsflats/backend/internal/service"
)

// Deps bundles everything the HTTP surface needs.
type Deps struct {
	Config   config.Config
	Auth     *service.AuthService
	Profiles *service.ProfileService
	Listings *service.ListingService
	Publish  *service.PublishService
	Notify   *service.NotifyService
	Media    *service.MediaService
}

// NewRouter assembles the middleware chain and routes. Order matters: the
// rate limiter runs before the auth gate does any expensive verification.
func NewRouter(deps Deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(obs.Instrument())
	router.Use(CORSMiddleware(deps.Config.HTTP.CORSOrigins))

	router.GET("/", Root)
	router.GET("/healthz", Health)
	router.GET("/metrics", obs.Handler())
	router.Static(deps.Config.Media.PublicPath, deps.Config.Media.StorageRoot)

	inviteLink := deps.Config.Telegram.ChannelInviteLink
	profileHandler := NewProfileHandler(deps.Profiles, deps.Publish, inviteLink)
	listingHandler := NewListingHandler(deps.Listings, deps.Profiles, deps.Publish, deps.Notify, inviteLink)
	mediaHandler := NewMediaHandler(deps.Media)

	api := router.Group("/api")
	api.Use(RateLimitMiddleware(deps.Config.RateLimit.RequestsPerMinute))
	api.Use(AuthMiddleware(deps.Auth))
	{
		api.GET("/profile", profileHandler.Get)
		api.PUT("/profile", profileHandler.Put)
		api.POST("/profile/publish", profileHandler.Publish)

		api.POST("/listings/preview", listingHandler.Preview)
		api.POST("/listings", listingHandler.Create)
		api.GET("/listings/:id", listingHandler.Get)
		api.POST("/listings/:id/publish", listingHandler.Publish)

		api.POST("/media/photo", mediaHandler.UploadPhoto)
	}

	return router
}
