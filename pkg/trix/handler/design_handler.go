package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/trix-studio/trix/pkg/trix/helpers/util"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// DesignsAPIController binds HTTP requests to the DesignService
type DesignsAPIController struct {
	Service *services.DesignService
}

func NewDesignsAPIController(s *services.DesignService) *DesignsAPIController {
	return &DesignsAPIController{Service: s}
}

// Latest handles GET /designs/latest
func (c *DesignsAPIController) Latest(ctx *gin.Context) ([]models.DesignSummary, error) {
	return c.Service.Latest(ctx.Request.Context())
}

// Gallery handles GET /designs
func (c *DesignsAPIController) Gallery(ctx *gin.Context, p *models.ListDesignsParams) ([]models.DesignSummary, error) {
	designs, pagination, err := c.Service.Gallery(ctx.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, pagination)
	return designs, nil
}

// Search handles GET /designs/search
func (c *DesignsAPIController) Search(ctx *gin.Context, p *models.SearchParams) ([]models.DesignSummary, error) {
	designs, pagination, err := c.Service.Search(ctx.Request.Context(), p)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, pagination)
	return designs, nil
}

// Trending handles GET /designs/trending
func (c *DesignsAPIController) Trending(ctx *gin.Context) ([]models.DesignSummary, error) {
	return c.Service.Trending(ctx.Request.Context())
}

// ByTag handles GET /tags/:tag/designs
func (c *DesignsAPIController) ByTag(ctx *gin.Context, p *models.TagParams) ([]models.DesignSummary, error) {
	designs, pagination, err := c.Service.ByTag(ctx.Request.Context(), p.Tag, p.Page, p.PerPage)
	if err != nil {
		return nil, err
	}
	util.SetPaginationHeaders(ctx.Request, ctx.Header, pagination)
	return designs, nil
}

// RetrieveDesign handles GET /designs/:id
func (c *DesignsAPIController) RetrieveDesign(ctx *gin.Context, p *models.DesignParams) (*models.DesignDetail, error) {
	return c.Service.Retrieve(ctx.Request.Context(), p.Id, middleware.CurrentUserID(ctx))
}

// UpdateDesign handles PUT /designs/:id
func (c *DesignsAPIController) UpdateDesign(ctx *gin.Context, body *models.UpdateDesignInput) (*models.DesignDetail, error) {
	return c.Service.Update(ctx.Request.Context(), middleware.CurrentUserID(ctx), body)
}

// DeleteDesign handles DELETE /designs/:id
func (c *DesignsAPIController) DeleteDesign(ctx *gin.Context, p *models.DesignParams) error {
	return c.Service.Delete(ctx.Request.Context(), middleware.CurrentUserID(ctx), p.Id)
}

// CreateDesign handles multipart POST /designs
func (c *DesignsAPIController) CreateDesign(ctx *gin.Context) {
	var in models.CreateDesignInput
	if err := ctx.ShouldBindWith(&in, binding.FormMultipart); err != nil {
		writeError(ctx, bindError(err))
		return
	}
	image, closeFn, err := formImage(ctx, "image")
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer closeFn()

	created, err := c.Service.Create(ctx.Request.Context(), middleware.CurrentUserID(ctx), &in, image)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusCreated, created)
}

// ReplaceImage handles multipart PUT /designs/:id/image
func (c *DesignsAPIController) ReplaceImage(ctx *gin.Context) {
	id, err := pathID(ctx)
	if err != nil {
		writeError(ctx, err)
		return
	}
	image, closeFn, err := formImage(ctx, "image")
	if err != nil {
		writeError(ctx, err)
		return
	}
	defer closeFn()

	updated, err := c.Service.ReplaceImage(ctx.Request.Context(), middleware.CurrentUserID(ctx), id, image)
	if err != nil {
		writeError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, updated)
}

