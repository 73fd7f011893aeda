package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// AuthController binds the account endpoints to the AuthService
type AuthController struct {
	Auth     *services.AuthService
	Profiles *services.ProfileService
}

func NewAuthController(auth *services.AuthService, profiles *services.ProfileService) *AuthController {
	return &AuthController{Auth: auth, Profiles: profiles}
}

// Register handles POST /auth/register
func (c *AuthController) Register(ctx *gin.Context, body *models.RegisterInput) (*models.TokenResponse, error) {
	return c.Auth.Register(ctx.Request.Context(), body)
}

// Login handles POST /auth/login
func (c *AuthController) Login(ctx *gin.Context, body *models.LoginInput) (*models.TokenResponse, error) {
	return c.Auth.Login(ctx.Request.Context(), body)
}

// Me handles GET /auth/me
func (c *AuthController) Me(ctx *gin.Context) (*models.ProfileDetail, error) {
	return c.Profiles.Me(ctx.Request.Context(), middleware.CurrentUserID(ctx))
}
