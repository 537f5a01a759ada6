package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/service"
	"github.com/catsflats/backend/internal/template"
)

type ListingHandler struct {
	listings   *service.ListingService
	profiles   *service.ProfileService
	publish    *service.PublishService
	notify     *service.NotifyService
	inviteLink string
}

func NewListingHandler(listings *service.ListingService, profiles *service.ProfileService, publish *service.PublishService, notify *service.NotifyService, inviteLink string) *ListingHandler {
	return &ListingHandler{listings: listings, profiles: profiles, publish: publish, notify: notify, inviteLink: inviteLink}
}

func toListingInput(req model.ListingRequest) service.ListingInput {
	return service.ListingInput{
		ApartmentDescription:  req.ApartmentDescription,
		ApartmentPhotoID:      req.ApartmentPhotoID,
		ApartmentPhotoURL:     req.ApartmentPhotoURL,
		Dates:                 req.Dates,
		Conditions:            req.Conditions,
		PreferredDestinations: req.PreferredDestinations,
	}
}

// Preview godoc
// @Summary Render a listing draft without saving it
// @Tags listings
// @Accept json
// @Produce json
// @Param request body model.ListingRequest true "Listing fields"
// @Success 200 {object} model.ListingPreviewResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Router /api/listings/preview [post]
func (h *ListingHandler) Preview(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	var req model.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	draft, err := h.listings.BuildDraft(ctx, authCtx.User.ID, toListingInput(req))
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := h.profiles.Ensure(ctx, authCtx.User.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ListingPreviewResponse{
		Preview: template.ListingCard(*profile, *draft),
		Listing: draft,
	})
}

// Create godoc
// @Summary Create a listing, optionally publishing it to the channel
// @Tags listings
// @Accept json
// @Produce json
// @Param request body model.ListingRequest true "Listing fields"
// @Success 200 {object} model.ListingCreateResponse
// @Failure 400 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/listings [post]
func (h *ListingHandler) Create(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	var req model.ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	ctx := c.Request.Context()
	draft, err := h.listings.BuildDraft(ctx, authCtx.User.ID, toListingInput(req))
	if err != nil {
		writeError(c, err)
		return
	}

	stored, err := h.listings.Persist(ctx, *draft)
	if err != nil {
		writeError(c, err)
		return
	}

	resp := model.ListingCreateResponse{
		ListingID: stored.ID,
		Listing:   stored,
	}

	if req.Publish {
		profile, err := h.profiles.Ensure(ctx, authCtx.User.ID)
		if err != nil {
			writeError(c, err)
			return
		}
		caption := template.ListingCard(*profile, *stored)
		messageID, err := h.publish.PublishListing(ctx, *stored, caption)
		if err != nil {
			writeError(c, err)
			return
		}
		if err := h.listings.UpdateChannelMessage(ctx, stored.ID, messageID); err != nil {
			writeError(c, err)
			return
		}
		resp.Published = &model.PublishedMessage{MessageID: messageID}
		resp.ChannelInviteLink = h.inviteLink
		go h.notify.ListingPublished(*stored, caption)
	}

	c.JSON(http.StatusOK, resp)
}

// Get godoc
// @Summary Get own listing by id
// @Tags listings
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} model.ListingEnvelope
// @Failure 404 {object} model.ErrorResponse
// @Router /api/listings/{id} [get]
func (h *ListingHandler) Get(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	ctx := c.Request.Context()
	listing, err := h.listings.GetOwned(ctx, authCtx.User.ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := h.profiles.Ensure(ctx, authCtx.User.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ListingEnvelope{
		Listing: listing,
		Preview: template.ListingCard(*profile, *listing),
	})
}

// Publish godoc
// @Summary Post an existing listing to the channel
// @Tags listings
// @Produce json
// @Param id path string true "Listing id"
// @Success 200 {object} model.ListingPublishResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/listings/{id}/publish [post]
func (h *ListingHandler) Publish(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	ctx := c.Request.Context()
	listing, err := h.listings.GetOwned(ctx, authCtx.User.ID, c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	profile, err := h.profiles.Ensure(ctx, authCtx.User.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	caption := template.ListingCard(*profile, *listing)
	messageID, err := h.publish.PublishListing(ctx, *listing, caption)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.listings.UpdateChannelMessage(ctx, listing.ID, messageID); err != nil {
		writeError(c, err)
		return
	}

	go h.notify.ListingPublished(*listing, caption)

	c.JSON(http.StatusOK, model.ListingPublishResponse{
		MessageID:         messageID,
		ChannelInviteLink: h.inviteLink,
	})
}
