package repositories

import (
	"context"
	"errors"
	"math"
	"strings"
	"time"

	"github.com/trix-studio/trix/pkg/tokenid"
	"github.com/trix-studio/trix/pkg/trix/models"
	"gorm.io/gorm"
)

// DesignFilter narrows List. Zero values mean "no constraint".
type DesignFilter struct {
	Page    int
	PerPage int
	Status  string
	Style   string
	OwnerID uint
	// Search matches title, description and prompt.
	Search string
	// SearchAll also matches tags and the owner's username.
	SearchAll bool
	Tag       string
}

const (
	MaxPerPage = 100
	MaxPage    = 100000
)

type DesignRepository interface {
	Create(ctx context.Context, d *models.Design) error
	Update(ctx context.Context, d *models.Design) error
	Delete(ctx context.Context, d *models.Design) error
	GetByID(ctx context.Context, id uint) (*models.Design, error)
	List(ctx context.Context, f DesignFilter) ([]models.Design, models.Pagination, error)
	Trending(ctx context.Context, since time.Time, limit int) ([]models.Design, error)
	Related(ctx context.Context, d *models.Design, limit int) ([]models.Design, error)
	IsLikedBy(ctx context.Context, designID, userID uint) (bool, error)
	WithoutToken(ctx context.Context, limit int) ([]models.Design, error)
	AssignToken(ctx context.Context, d *models.Design, now time.Time) (bool, error)
	AllDesignIDs(ctx context.Context) ([]uint, error)
}

type designRepository struct {
	db *gorm.DB
}

func NewDesignRepository(db *gorm.DB) DesignRepository {
	return &designRepository{db: db}
}

// Create persists a new design. The identifier is assigned here, once, from
// the stored row, and its metadata record is written in the same transaction.
func (r *designRepository) Create(ctx context.Context, d *models.Design) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := d.User
		if owner == nil {
			owner = &models.User{}
			if err := tx.First(owner, d.UserID).Error; err != nil {
				return err
			}
		}
		if d.CreatedAt.IsZero() {
			d.CreatedAt = time.Now()
		}
		d.EnsureToken(owner, time.Now())

		d.User = nil
		err := tx.Create(d).Error
		d.User = owner
		if err != nil {
			return err
		}
		if err := tx.Create(&models.TokenMetadata{
			DesignID:      d.ID,
			TokenID:       d.Token(),
			HashAlgorithm: tokenid.Algorithm,
		}).Error; err != nil {
			return err
		}
		_, err = recountPublishedDesigns(tx, d.UserID)
		return err
	})
}

// Update writes the editable columns only. token_id, token_created_at, the
// owner and the counters are never part of an update.
func (r *designRepository) Update(ctx context.Context, d *models.Design) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&models.Design{ID: d.ID}).
			Select("title", "description", "image", "image_size", "prompt", "style", "model_used", "status", "tags").
			Updates(&models.Design{
				Title:       d.Title,
				Description: d.Description,
				Image:       d.Image,
				ImageSize:   d.ImageSize,
				Prompt:      d.Prompt,
				Style:       d.Style,
				ModelUsed:   d.ModelUsed,
				Status:      d.Status,
				Tags:        d.Tags,
			}).Error; err != nil {
			return err
		}

		var stored models.Design
		if err := tx.Select("id", "user_id", "token_id", "token_created_at", "updated_at").First(&stored, d.ID).Error; err != nil {
			return err
		}
		d.TokenID, d.TokenCreatedAt, d.UpdatedAt = stored.TokenID, stored.TokenCreatedAt, stored.UpdatedAt

		if stored.TokenID != nil {
			meta := models.TokenMetadata{DesignID: d.ID, TokenID: *stored.TokenID, HashAlgorithm: tokenid.Algorithm}
			if err := tx.Where(models.TokenMetadata{DesignID: d.ID}).
				Assign(models.TokenMetadata{TokenID: *stored.TokenID}).
				FirstOrCreate(&meta).Error; err != nil {
				return err
			}
		}
		_, err := recountPublishedDesigns(tx, stored.UserID)
		return err
	})
}

func (r *designRepository) Delete(ctx context.Context, d *models.Design) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, m := range []any{&models.Like{}, &models.Comment{}, &models.DesignView{}, &models.TokenMetadata{}} {
			if err := tx.Where("design_id = ?", d.ID).Delete(m).Error; err != nil {
				return err
			}
		}
		if err := tx.Delete(&models.Design{}, d.ID).Error; err != nil {
			return err
		}
		_, err := recountPublishedDesigns(tx, d.UserID)
		return err
	})
}

func (r *designRepository) GetByID(ctx context.Context, id uint) (*models.Design, error) {
	var d models.Design
	err := r.db.WithContext(ctx).Preload("User").First(&d, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func (r *designRepository) List(ctx context.Context, f DesignFilter) ([]models.Design, models.Pagination, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.PerPage < 1 {
		f.PerPage = 12
	}
	f.PerPage = min(f.PerPage, MaxPerPage)
	f.Page = min(f.Page, MaxPage)

	q := r.db.WithContext(ctx).Model(&models.Design{})
	if f.Status != "" {
		q = q.Where("status = ?", f.Status)
	}
	if f.Style != "" {
		q = q.Where("style = ?", f.Style)
	}
	if f.OwnerID != 0 {
		q = q.Where("user_id = ?", f.OwnerID)
	}
	if s := strings.TrimSpace(f.Search); s != "" {
		pat := "%" + strings.ToLower(s) + "%"
		cond := r.db.Where("LOWER(title) LIKE ?", pat).
			Or("LOWER(description) LIKE ?", pat).
			Or("LOWER(prompt) LIKE ?", pat)
		if f.SearchAll {
			owners := r.db.Model(&models.User{}).Select("id").Where("LOWER(username) LIKE ?", pat)
			cond = cond.Or("LOWER(tags) LIKE ?", pat).Or("user_id IN (?)", owners)
		}
		q = q.Where(cond)
	}
	if tag := normalizeTag(f.Tag); tag != "" {
		q = q.Where("',' || LOWER(REPLACE(tags, ' ', '')) || ',' LIKE ?", "%,"+tag+",%")
	}

	q = q.Session(&gorm.Session{})

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	var designs []models.Design
	if err := q.Preload("User").
		Order("created_at DESC").Order("id DESC").
		Limit(f.PerPage).Offset((f.Page - 1) * f.PerPage).
		Find(&designs).Error; err != nil {
		return nil, models.Pagination{}, err
	}

	return designs, paginate(f.Page, f.PerPage, int(total)), nil
}

func normalizeTag(tag string) string {
	return strings.ToLower(strings.ReplaceAll(strings.TrimSpace(tag), " ", ""))
}

func paginate(page, perPage, total int) models.Pagination {
	totalPages := int(math.Ceil(float64(total) / float64(perPage)))
	p := models.Pagination{
		CurrentPage:    page,
		RecordsPerPage: perPage,
		TotalPages:     totalPages,
		TotalRecords:   total,
	}
	if page < totalPages {
		next := page + 1
		p.Next = &next
	}
	if page > 1 {
		prev := page - 1
		p.Previous = &prev
	}
	return p
}

func (r *designRepository) Trending(ctx context.Context, since time.Time, limit int) ([]models.Design, error) {
	var designs []models.Design
	err := r.db.WithContext(ctx).Preload("User").
		Where("status = ? AND created_at >= ?", models.StatusPublished, since).
		Order("likes_count DESC").Order("views_count DESC").Order("id DESC").
		Limit(limit).
		Find(&designs).Error
	return designs, err
}

func (r *designRepository) Related(ctx context.Context, d *models.Design, limit int) ([]models.Design, error) {
	var designs []models.Design
	err := r.db.WithContext(ctx).Preload("User").
		Where("status = ? AND style = ? AND id <> ?", models.StatusPublished, d.Style, d.ID).
		Order("created_at DESC").Order("id DESC").
		Limit(limit).
		Find(&designs).Error
	return designs, err
}

func (r *designRepository) IsLikedBy(ctx context.Context, designID, userID uint) (bool, error) {
	if userID == 0 {
		return false, nil
	}
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("design_id = ? AND user_id = ?", designID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *designRepository) WithoutToken(ctx context.Context, limit int) ([]models.Design, error) {
	var designs []models.Design
	err := r.db.WithContext(ctx).Preload("User").
		Where("token_id IS NULL OR token_id = ''").
		Order("id").Limit(limit).
		Find(&designs).Error
	return designs, err
}

// AssignToken gives d an identifier if the stored row has none. The update is
// conditional on the column still being empty, so a concurrent writer cannot
// be overwritten.
func (r *designRepository) AssignToken(ctx context.Context, d *models.Design, now time.Time) (bool, error) {
	if d.Token() != "" {
		return false, nil
	}
	var assigned bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		owner := d.User
		if owner == nil {
			owner = &models.User{}
			if err := tx.First(owner, d.UserID).Error; err != nil {
				return err
			}
		}
		candidate := *d
		candidate.EnsureToken(owner, now)

		res := tx.Model(&models.Design{}).
			Where("id = ? AND (token_id IS NULL OR token_id = '')", d.ID).
			UpdateColumns(map[string]any{
				"token_id":         candidate.Token(),
				"token_created_at": now,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}
		meta := models.TokenMetadata{DesignID: d.ID, TokenID: candidate.Token(), HashAlgorithm: tokenid.Algorithm}
		if err := tx.Where(models.TokenMetadata{DesignID: d.ID}).
			Assign(models.TokenMetadata{TokenID: candidate.Token()}).
			FirstOrCreate(&meta).Error; err != nil {
			return err
		}
		d.TokenID, d.TokenCreatedAt = candidate.TokenID, candidate.TokenCreatedAt
		assigned = true
		return nil
	})
	return assigned, err
}

func (r *designRepository) AllDesignIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.Design{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
