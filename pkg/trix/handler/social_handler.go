package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// SocialAPIController binds likes, follows, comments and views to the SocialService
type SocialAPIController struct {
	Service *services.SocialService
	Contact *services.ContactService
}

func NewSocialAPIController(s *services.SocialService, contact *services.ContactService) *SocialAPIController {
	return &SocialAPIController{Service: s, Contact: contact}
}

// ToggleLike handles POST /designs/:id/like
func (c *SocialAPIController) ToggleLike(ctx *gin.Context, p *models.DesignParams) (*models.LikeResult, error) {
	return c.Service.ToggleLike(ctx.Request.Context(), middleware.CurrentUserID(ctx), p.Id)
}

// ToggleFollow handles POST /profiles/:username/follow
func (c *SocialAPIController) ToggleFollow(ctx *gin.Context, p *models.UsernameParams) (*models.FollowResult, error) {
	return c.Service.ToggleFollow(ctx.Request.Context(), middleware.CurrentUserID(ctx), p.Username)
}

// AddComment handles POST /designs/:id/comments
func (c *SocialAPIController) AddComment(ctx *gin.Context, body *models.CommentInput) (*models.CommentResult, error) {
	return c.Service.AddComment(ctx.Request.Context(), middleware.CurrentUserID(ctx), body)
}

// ListComments handles GET /designs/:id/comments
func (c *SocialAPIController) ListComments(ctx *gin.Context, p *models.DesignParams) ([]models.CommentOut, error) {
	return c.Service.ListComments(ctx.Request.Context(), p.Id, middleware.CurrentUserID(ctx))
}

// TrackView handles POST /designs/:id/views
func (c *SocialAPIController) TrackView(ctx *gin.Context, p *models.DesignParams) (*models.ViewResult, error) {
	return c.Service.TrackView(ctx.Request.Context(), p.Id, middleware.CurrentUserID(ctx), ctx.ClientIP(), ctx.Request.UserAgent())
}

// SubmitContact handles POST /contact
func (c *SocialAPIController) SubmitContact(ctx *gin.Context, body *models.ContactInput) (*models.ContactResult, error) {
	return c.Contact.Submit(ctx.Request.Context(), body)
}
