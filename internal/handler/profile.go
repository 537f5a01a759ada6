package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/catsflats/backend/internal/apperr"
	"github.com/catsflats/backend/internal/model"
	"github.com/catsflats/backend/internal/service"
	"github.com/catsflats/backend/internal/template"
)

type ProfileHandler struct {
	profiles   *service.ProfileService
	publish    *service.PublishService
	inviteLink string
}

func NewProfileHandler(profiles *service.ProfileService, publish *service.PublishService, inviteLink string) *ProfileHandler {
	return &ProfileHandler{profiles: profiles, publish: publish, inviteLink: inviteLink}
}

type profileRequest struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Intro       string `json:"intro"`
	CatName     string `json:"catName"`
	CatPhotoID  string `json:"catPhotoId"`
	CatPhotoURL string `json:"catPhotoUrl"`

	InitData string `json:"initData,omitempty"`
}

// Get godoc
// @Summary Get own profile
// @Tags profile
// @Produce json
// @Success 200 {object} model.ProfileEnvelope
// @Failure 403 {object} model.ErrorResponse
// @Router /api/profile [get]
func (h *ProfileHandler) Get(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	profile, err := h.profiles.Get(c.Request.Context(), authCtx.User.ID)
	if err != nil {
		writeError(c, err)
		return
	}
	if profile == nil {
		c.JSON(http.StatusOK, model.ProfileEnvelope{Profile: nil})
		return
	}

	c.JSON(http.StatusOK, model.ProfileEnvelope{
		Profile: profile,
		Preview: template.ProfilePreview(*profile),
	})
}

// Put godoc
// @Summary Create or update own profile
// @Tags profile
// @Accept json
// @Produce json
// @Param request body profileRequest true "Profile fields"
// @Success 200 {object} model.ProfileEnvelope
// @Failure 400 {object} model.ErrorResponse
// @Failure 403 {object} model.ErrorResponse
// @Router /api/profile [put]
func (h *ProfileHandler) Put(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, apperr.Validation("invalid request body"))
		return
	}

	profile, err := h.profiles.Save(c.Request.Context(), service.ProfileInput{
		TgID:        authCtx.User.ID,
		Name:        req.Name,
		Location:    req.Location,
		Intro:       req.Intro,
		CatName:     req.CatName,
		CatPhotoID:  req.CatPhotoID,
		CatPhotoURL: req.CatPhotoURL,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ProfileEnvelope{
		Profile: profile,
		Preview: template.ProfilePreview(*profile),
	})
}

// Publish godoc
// @Summary Post own profile to the channel
// @Tags profile
// @Produce json
// @Success 200 {object} model.ProfilePublishResponse
// @Failure 403 {object} model.ErrorResponse
// @Failure 404 {object} model.ErrorResponse
// @Failure 502 {object} model.ErrorResponse
// @Router /api/profile/publish [post]
func (h *ProfileHandler) Publish(c *gin.Context) {
	authCtx := GetAuthContext(c)
	if authCtx == nil {
		writeError(c, apperr.Forbidden("telegram user is not authenticated"))
		return
	}

	ctx := c.Request.Context()
	profile, err := h.profiles.Ensure(ctx, authCtx.User.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	preview := template.ProfilePreview(*profile)
	messageID, err := h.publish.PublishProfile(ctx, *profile, preview)
	if err != nil {
		writeError(c, err)
		return
	}

	if err := h.profiles.UpdateChannelMessage(ctx, authCtx.User.ID, messageID); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, model.ProfilePublishResponse{
		MessageID:         messageID,
		Preview:           preview,
		ChannelInviteLink: h.inviteLink,
	})
}
