package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
	"go.uber.org/zap"
)

// InpaintingAPIController binds the AI studio endpoints to the InpaintingService
type InpaintingAPIController struct {
	Service *services.InpaintingService
}

func NewInpaintingAPIController(s *services.InpaintingService) *InpaintingAPIController {
	return &InpaintingAPIController{Service: s}
}

// Inpaint handles POST /ai/inpaint
func (c *InpaintingAPIController) Inpaint(ctx *gin.Context, body *models.InpaintInput) (*models.InpaintResult, error) {
	zap.L().Info("inpainting requested", zap.String("username", middleware.CurrentUsername(ctx)), zap.String("image", body.ImagePath))
	return c.Service.Inpaint(ctx.Request.Context(), body)
}

// Status handles GET /ai/status
func (c *InpaintingAPIController) Status(ctx *gin.Context) (*models.AIStatus, error) {
	return c.Service.Status(), nil
}

// Upload handles multipart POST /ai/upload
func (c *InpaintingAPIController) Upload(ctx *gin.Context) {
	image, closeFn, err := formImage(ctx, "image")
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer closeFn()

	out, err := c.Service.Upload(ctx.Request.Context(), image)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, out)
}
