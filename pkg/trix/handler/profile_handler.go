package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// ProfilesAPIController binds HTTP requests to the ProfileService
type ProfilesAPIController struct {
	Service *services.ProfileService
}

func NewProfilesAPIController(s *services.ProfileService) *ProfilesAPIController {
	return &ProfilesAPIController{Service: s}
}

// RetrieveProfile handles GET /profiles/:username
func (c *ProfilesAPIController) RetrieveProfile(ctx *gin.Context, p *models.UsernameParams) (*models.ProfileDetail, error) {
	return c.Service.Retrieve(ctx.Request.Context(), p.Username, middleware.CurrentUserID(ctx))
}

// UpdateProfile handles PUT /profile
func (c *ProfilesAPIController) UpdateProfile(ctx *gin.Context, body *models.UpdateProfileInput) (*models.ProfileDetail, error) {
	return c.Service.Update(ctx.Request.Context(), middleware.CurrentUserID(ctx), body)
}

// RemoveAvatar handles DELETE /profile/avatar
func (c *ProfilesAPIController) RemoveAvatar(ctx *gin.Context) (*models.ProfileDetail, error) {
	return c.Service.RemoveAvatar(ctx.Request.Context(), middleware.CurrentUserID(ctx))
}

// UploadAvatar handles multipart PUT /profile/avatar
func (c *ProfilesAPIController) UploadAvatar(ctx *gin.Context) {
	image, closeFn, err := formImage(ctx, "avatar")
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer closeFn()

	out, err := c.Service.UploadAvatar(ctx.Request.Context(), middleware.CurrentUserID(ctx), image)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, out)
}
