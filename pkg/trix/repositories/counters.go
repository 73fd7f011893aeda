package repositories

import (
	"github.com/trix-studio/trix/pkg/trix/models"
	"gorm.io/gorm"
)

// Denormalised counters are recomputed from their source rows instead of
// being incremented, so a missed update heals on the next write.

func recountLikes(tx *gorm.DB, designID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.Like{}).Where("design_id = ?", designID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.Design{}).Where("id = ?", designID).UpdateColumn("likes_count", n).Error
	return int(n), err
}

func recountComments(tx *gorm.DB, designID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.Comment{}).Where("design_id = ?", designID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.Design{}).Where("id = ?", designID).UpdateColumn("comments_count", n).Error
	return int(n), err
}

func recountViews(tx *gorm.DB, designID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.DesignView{}).Where("design_id = ?", designID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.Design{}).Where("id = ?", designID).UpdateColumn("views_count", n).Error
	return int(n), err
}

func recountFollowers(tx *gorm.DB, userID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.Follow{}).Where("following_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.UserProfile{}).Where("user_id = ?", userID).UpdateColumn("followers_count", n).Error
	return int(n), err
}

func recountFollowing(tx *gorm.DB, userID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.Follow{}).Where("follower_id = ?", userID).Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.UserProfile{}).Where("user_id = ?", userID).UpdateColumn("following_count", n).Error
	return int(n), err
}

func recountPublishedDesigns(tx *gorm.DB, userID uint) (int, error) {
	var n int64
	if err := tx.Model(&models.Design{}).
		Where("user_id = ? AND status = ?", userID, models.StatusPublished).
		Count(&n).Error; err != nil {
		return 0, err
	}
	err := tx.Model(&models.UserProfile{}).Where("user_id = ?", userID).UpdateColumn("designs_count", n).Error
	return int(n), err
}
