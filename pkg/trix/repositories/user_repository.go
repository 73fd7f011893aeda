package repositories

import (
	"context"
	"errors"
	"strings"

	"github.com/trix-studio/trix/pkg/trix/models"
	"gorm.io/gorm"
)

var ErrUsernameTaken = errors.New("username already taken")

type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, id uint) (*models.User, error)
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, profile *models.UserProfile) error
	IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error)
	AllUserIDs(ctx context.Context) ([]uint, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

// Create stores the user together with an empty profile.
func (r *userRepository) Create(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).Where("LOWER(username) = ?", strings.ToLower(user.Username)).Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		profile := user.Profile
		user.Profile = nil
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		if profile == nil {
			profile = &models.UserProfile{}
		}
		profile.UserID = user.ID
		if err := tx.Create(profile).Error; err != nil {
			return err
		}
		user.Profile = profile
		return nil
	})
}

func (r *userRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").First(&user, id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, r.ensureProfile(ctx, &user)
}

func (r *userRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Preload("Profile").Where("username = ?", username).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, r.ensureProfile(ctx, &user)
}

// ensureProfile creates the profile of users that predate it.
func (r *userRepository) ensureProfile(ctx context.Context, user *models.User) error {
	if user.Profile != nil {
		return nil
	}
	profile := models.UserProfile{UserID: user.ID}
	if err := r.db.WithContext(ctx).Where(models.UserProfile{UserID: user.ID}).FirstOrCreate(&profile).Error; err != nil {
		return err
	}
	user.Profile = &profile
	return nil
}

func (r *userRepository) UpdateUser(ctx context.Context, user *models.User) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var n int64
		if err := tx.Model(&models.User{}).
			Where("LOWER(username) = ? AND id <> ?", strings.ToLower(user.Username), user.ID).
			Count(&n).Error; err != nil {
			return err
		}
		if n > 0 {
			return ErrUsernameTaken
		}
		return tx.Model(user).
			Select("username", "email", "first_name", "last_name").
			Updates(user).Error
	})
}

func (r *userRepository) UpdateProfile(ctx context.Context, profile *models.UserProfile) error {
	return r.db.WithContext(ctx).Model(profile).
		Select("bio", "avatar", "website", "location", "birth_date").
		Updates(profile).Error
}

func (r *userRepository) IsFollowing(ctx context.Context, followerID, followingID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND following_id = ?", followerID, followingID).
		Count(&n).Error
	return n > 0, err
}

func (r *userRepository) AllUserIDs(ctx context.Context) ([]uint, error) {
	var ids []uint
	err := r.db.WithContext(ctx).Model(&models.User{}).Order("id").Pluck("id", &ids).Error
	return ids, err
}
