package repositories

import (
	"context"
	"errors"

	"github.com/trix-studio/trix/pkg/trix/models"
	"gorm.io/gorm"
)

type SocialRepository interface {
	ToggleLike(ctx context.Context, userID, designID uint) (liked bool, likes int, err error)
	ToggleFollow(ctx context.Context, followerID, followingID uint) (following bool, followers int, err error)
	AddComment(ctx context.Context, c *models.Comment) (int, error)
	GetComment(ctx context.Context, id uint) (*models.Comment, error)
	ListComments(ctx context.Context, designID uint) ([]models.Comment, error)
	TrackView(ctx context.Context, v *models.DesignView) (counted bool, views int, err error)
	RecountDesign(ctx context.Context, designID uint) error
	RecountProfile(ctx context.Context, userID uint) error
	SaveContact(ctx context.Context, m *models.ContactMessage) error
}

type socialRepository struct {
	db *gorm.DB
}

func NewSocialRepository(db *gorm.DB) SocialRepository {
	return &socialRepository{db: db}
}

func (r *socialRepository) ToggleLike(ctx context.Context, userID, designID uint) (bool, int, error) {
	var liked bool
	var likes int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("user_id = ? AND design_id = ?", userID, designID).Delete(&models.Like{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.Like{UserID: userID, DesignID: designID}).Error; err != nil {
				return err
			}
			liked = true
		}
		var err error
		likes, err = recountLikes(tx, designID)
		return err
	})
	return liked, likes, err
}

func (r *socialRepository) ToggleFollow(ctx context.Context, followerID, followingID uint) (bool, int, error) {
	var following bool
	var followers int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("follower_id = ? AND following_id = ?", followerID, followingID).Delete(&models.Follow{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			if err := tx.Create(&models.Follow{FollowerID: followerID, FollowingID: followingID}).Error; err != nil {
				return err
			}
			following = true
		}
		var err error
		if followers, err = recountFollowers(tx, followingID); err != nil {
			return err
		}
		_, err = recountFollowing(tx, followerID)
		return err
	})
	return following, followers, err
}

func (r *socialRepository) AddComment(ctx context.Context, c *models.Comment) (int, error) {
	var count int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		author := c.User
		c.User = nil
		err := tx.Create(c).Error
		c.User = author
		if err != nil {
			return err
		}
		count, err = recountComments(tx, c.DesignID)
		return err
	})
	return count, err
}

func (r *socialRepository) GetComment(ctx context.Context, id uint) (*models.Comment, error) {
	var c models.Comment
	err := r.db.WithContext(ctx).First(&c, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// ListComments returns every comment of a design, oldest first.
func (r *socialRepository) ListComments(ctx context.Context, designID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).Preload("User").
		Where("design_id = ?", designID).
		Order("created_at ASC").Order("id ASC").
		Find(&comments).Error
	return comments, err
}

// TrackView stores at most one view per (user, design, ip). Anonymous views
// are deduplicated on (design, ip).
func (r *socialRepository) TrackView(ctx context.Context, v *models.DesignView) (bool, int, error) {
	var counted bool
	var views int
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		q := tx.Model(&models.DesignView{}).Where("design_id = ? AND ip_address = ?", v.DesignID, v.IPAddress)
		if v.UserID == nil {
			q = q.Where("user_id IS NULL")
		} else {
			q = q.Where("user_id = ?", *v.UserID)
		}
		var n int64
		if err := q.Count(&n).Error; err != nil {
			return err
		}
		if n == 0 {
			if err := tx.Create(v).Error; err != nil {
				return err
			}
			counted = true
		}
		var err error
		views, err = recountViews(tx, v.DesignID)
		return err
	})
	return counted, views, err
}

func (r *socialRepository) RecountDesign(ctx context.Context, designID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := recountLikes(tx, designID); err != nil {
			return err
		}
		if _, err := recountComments(tx, designID); err != nil {
			return err
		}
		_, err := recountViews(tx, designID)
		return err
	})
}

func (r *socialRepository) RecountProfile(ctx context.Context, userID uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := recountFollowers(tx, userID); err != nil {
			return err
		}
		if _, err := recountFollowing(tx, userID); err != nil {
			return err
		}
		_, err := recountPublishedDesigns(tx, userID)
		return err
	})
}

func (r *socialRepository) SaveContact(ctx context.Context, m *models.ContactMessage) error {
	return r.db.WithContext(ctx).Create(m).Error
}
