package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/tools"
	"github.com/trix-studio/trix/pkg/trix/helpers/util"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"github.com/trix-studio/trix/pkg/trix/services/typesense"
	"go.uber.org/zap"
)

const (
	latestLimit   = 6
	relatedLimit  = 4
	trendingLimit = 12
	trendingSpan  = 7 * 24 * time.Hour
)

type DesignService struct {
	repo  repositories.DesignRepository
	store storage.Store
	now   func() time.Time
}

func NewDesignService(repo repositories.DesignRepository, store storage.Store) *DesignService {
	return &DesignService{repo: repo, store: store, now: time.Now}
}

func (s *DesignService) url(key string) string {
	return s.store.URL(key)
}

// Latest returns the newest published designs.
func (s *DesignService) Latest(ctx context.Context) ([]models.DesignSummary, error) {
	designs, _, err := s.repo.List(ctx, repositories.DesignFilter{Status: models.StatusPublished, PerPage: latestLimit})
	if err != nil {
		return nil, err
	}
	return util.ToDesignSummaries(designs, s.url), nil
}

func (s *DesignService) Gallery(ctx context.Context, p *models.ListDesignsParams) ([]models.DesignSummary, models.Pagination, error) {
	designs, pagination, err := s.repo.List(ctx, repositories.DesignFilter{
		Page:    p.Page,
		PerPage: p.PerPage,
		Status:  models.StatusPublished,
		Style:   strings.TrimSpace(p.Style),
		Search:  p.Search,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return util.ToDesignSummaries(designs, s.url), pagination, nil
}

func (s *DesignService) Search(ctx context.Context, p *models.SearchParams) ([]models.DesignSummary, models.Pagination, error) {
	q := strings.TrimSpace(p.Q)
	if q == "" {
		return []models.DesignSummary{}, paginationOf(p.Page, p.PerPage), nil
	}
	designs, pagination, err := s.repo.List(ctx, repositories.DesignFilter{
		Page:      p.Page,
		PerPage:   p.PerPage,
		Status:    models.StatusPublished,
		Search:    q,
		SearchAll: true,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return util.ToDesignSummaries(designs, s.url), pagination, nil
}

func (s *DesignService) ByTag(ctx context.Context, tag string, page, perPage int) ([]models.DesignSummary, models.Pagination, error) {
	if strings.TrimSpace(tag) == "" {
		return nil, models.Pagination{}, fmt.Errorf("%w: tag is empty", ErrInvalidInput)
	}
	designs, pagination, err := s.repo.List(ctx, repositories.DesignFilter{
		Page:    page,
		PerPage: perPage,
		Status:  models.StatusPublished,
		Tag:     tag,
	})
	if err != nil {
		return nil, models.Pagination{}, err
	}
	return util.ToDesignSummaries(designs, s.url), pagination, nil
}

// Trending ranks last week's published designs by likes, then views.
func (s *DesignService) Trending(ctx context.Context) ([]models.DesignSummary, error) {
	designs, err := s.repo.Trending(ctx, s.now().Add(-trendingSpan), trendingLimit)
	if err != nil {
		return nil, err
	}
	return util.ToDesignSummaries(designs, s.url), nil
}

// Retrieve returns a design visible to viewerID (0 for anonymous callers).
func (s *DesignService) Retrieve(ctx context.Context, id, viewerID uint) (*models.DesignDetail, error) {
	d, err := s.visible(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}
	detail := util.ToDesignDetail(d, s.url)

	if detail.LikedByMe, err = s.repo.IsLikedBy(ctx, d.ID, viewerID); err != nil {
		return nil, err
	}
	related, err := s.repo.Related(ctx, d, relatedLimit)
	if err != nil {
		return nil, err
	}
	detail.Related = util.ToDesignSummaries(related, s.url)
	return detail, nil
}

// visible loads a design and checks the viewer may see it.
func (s *DesignService) visible(ctx context.Context, id, viewerID uint) (*models.Design, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if !d.VisibleTo(viewerID) {
		return nil, ErrForbidden
	}
	return d, nil
}

// owned loads a design and checks viewerID owns it.
func (s *DesignService) owned(ctx context.Context, id, viewerID uint) (*models.Design, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, ErrNotFound
	}
	if viewerID == 0 || d.UserID != viewerID {
		return nil, ErrForbidden
	}
	return d, nil
}

func (s *DesignService) Create(ctx context.Context, ownerID uint, in *models.CreateDesignInput, image *Upload) (*models.DesignDetail, error) {
	if image == nil || image.Body == nil {
		return nil, ErrImageRequired
	}
	status := strings.TrimSpace(in.Status)
	if status == "" {
		status = models.StatusDraft
	}
	if !models.ValidStatus(status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, status)
	}

	key, err := uploadKey("designs", "", image.Name)
	if err != nil {
		return nil, err
	}
	size, err := saveUpload(ctx, s.store, key, image)
	if err != nil {
		return nil, err
	}

	d := &models.Design{
		UserID:      ownerID,
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
		Image:       key,
		ImageSize:   size,
		Prompt:      in.Prompt,
		Style:       strings.TrimSpace(in.Style),
		ModelUsed:   strings.TrimSpace(in.ModelUsed),
		Status:      status,
		Tags:        strings.TrimSpace(in.Tags),
		CreatedAt:   s.now(),
	}
	if err := s.repo.Create(ctx, d); err != nil {
		deleteQuietly(ctx, s.store, key)
		return nil, err
	}
	zap.L().Info("design created", zap.Uint("design", d.ID), zap.Uint("owner", ownerID), zap.String("token", d.Token()))

	s.reindex(d)
	return util.ToDesignDetail(d, s.url), nil
}

// Update changes the editable fields. The identifier is never touched.
func (s *DesignService) Update(ctx context.Context, viewerID uint, in *models.UpdateDesignInput) (*models.DesignDetail, error) {
	d, err := s.owned(ctx, in.Id, viewerID)
	if err != nil {
		return nil, err
	}
	if !models.ValidStatus(in.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, in.Status)
	}
	d.Title = strings.TrimSpace(in.Title)
	d.Description = in.Description
	d.Status = in.Status
	d.Style = strings.TrimSpace(in.Style)
	d.ModelUsed = strings.TrimSpace(in.ModelUsed)
	d.Prompt = in.Prompt
	d.Tags = strings.TrimSpace(in.Tags)

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}
	s.reindex(d)
	return util.ToDesignDetail(d, s.url), nil
}

// ReplaceImage stores a new image for the design and removes the old file.
func (s *DesignService) ReplaceImage(ctx context.Context, viewerID, id uint, image *Upload) (*models.DesignDetail, error) {
	if image == nil || image.Body == nil {
		return nil, ErrImageRequired
	}
	d, err := s.owned(ctx, id, viewerID)
	if err != nil {
		return nil, err
	}

	key, err := uploadKey("designs", "", image.Name)
	if err != nil {
		return nil, err
	}
	size, err := saveUpload(ctx, s.store, key, image)
	if err != nil {
		return nil, err
	}

	old := d.Image
	d.Image, d.ImageSize = key, size
	if err := s.repo.Update(ctx, d); err != nil {
		deleteQuietly(ctx, s.store, key)
		return nil, err
	}
	if old != key {
		deleteQuietly(ctx, s.store, old)
	}
	s.reindex(d)
	return util.ToDesignDetail(d, s.url), nil
}

func (s *DesignService) Delete(ctx context.Context, viewerID, id uint) error {
	d, err := s.owned(ctx, id, viewerID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, d); err != nil {
		return err
	}
	deleteQuietly(ctx, s.store, d.Image)
	zap.L().Info("design deleted", zap.Uint("design", d.ID), zap.Uint("owner", d.UserID))

	d.Status = models.StatusDraft
	s.reindex(d)
	return nil
}

// reindex publishes or removes the design in the search index in the background.
func (s *DesignService) reindex(d *models.Design) {
	if !typesense.Enabled() {
		return
	}
	snapshot := *d
	if snapshot.Status == models.StatusPublished {
		imageURL := s.url(snapshot.Image)
		tools.Dispatch(context.Background(), "typesense_publish", func(ctx context.Context) error {
			return typesense.PublishDesign(ctx, &snapshot, imageURL)
		})
		return
	}
	tools.Dispatch(context.Background(), "typesense_remove", func(ctx context.Context) error {
		return typesense.RemoveDesign(ctx, snapshot.ID)
	})
}

func paginationOf(page, perPage int) models.Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 12
	}
	return models.Pagination{
		CurrentPage:    min(page, repositories.MaxPage),
		RecordsPerPage: min(perPage, repositories.MaxPerPage),
	}
}
