package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/trix-studio/trix/pkg/storage"
	"github.com/trix-studio/trix/pkg/trix/helpers/util"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
)

// profileDesignsLimit caps the designs embedded in a profile response.
const profileDesignsLimit = 50

type ProfileService struct {
	users   repositories.UserRepository
	designs repositories.DesignRepository
	store   storage.Store
}

func NewProfileService(users repositories.UserRepository, designs repositories.DesignRepository, store storage.Store) *ProfileService {
	return &ProfileService{users: users, designs: designs, store: store}
}

// Retrieve returns the profile of username. The owner sees every own design,
// other callers only published ones.
func (s *ProfileService) Retrieve(ctx context.Context, username string, viewerID uint) (*models.ProfileDetail, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.detail(ctx, user, viewerID)
}

// Me returns the caller's own profile.
func (s *ProfileService) Me(ctx context.Context, userID uint) (*models.ProfileDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return s.detail(ctx, user, userID)
}

func (s *ProfileService) detail(ctx context.Context, user *models.User, viewerID uint) (*models.ProfileDetail, error) {
	filter := repositories.DesignFilter{OwnerID: user.ID, PerPage: profileDesignsLimit}
	if viewerID != user.ID {
		filter.Status = models.StatusPublished
	}
	designs, _, err := s.designs.List(ctx, filter)
	if err != nil {
		return nil, err
	}

	out := util.ToProfileDetail(user, s.store.URL)
	out.Designs = util.ToDesignSummaries(designs, s.store.URL)
	if viewerID != user.ID {
		out.Email = ""
	}
	if viewerID != 0 && viewerID != user.ID {
		if out.FollowedByMe, err = s.users.IsFollowing(ctx, viewerID, user.ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

func (s *ProfileService) Update(ctx context.Context, userID uint, in *models.UpdateProfileInput) (*models.ProfileDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	user.Username = strings.TrimSpace(in.Username)
	user.FirstName = strings.TrimSpace(in.FirstName)
	user.LastName = strings.TrimSpace(in.LastName)
	user.Email = strings.TrimSpace(in.Email)
	if err := s.users.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
		}
		return nil, err
	}

	user.Profile.Bio = in.Bio
	user.Profile.Website = strings.TrimSpace(in.Website)
	user.Profile.Location = strings.TrimSpace(in.Location)
	if err := s.users.UpdateProfile(ctx, user.Profile); err != nil {
		return nil, err
	}
	return s.detail(ctx, user, userID)
}

// UploadAvatar replaces the caller's avatar and deletes the previous file.
func (s *ProfileService) UploadAvatar(ctx context.Context, userID uint, image *Upload) (*models.ProfileDetail, error) {
	if image == nil || image.Body == nil {
		return nil, ErrImageRequired
	}
	if !image.IsImage() {
		return nil, ErrNotAnImage
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}

	key, err := uploadKey("avatars", "", image.Name)
	if err != nil {
		return nil, err
	}
	if _, err := saveUpload(ctx, s.store, key, image); err != nil {
		return nil, err
	}

	old := user.Profile.Avatar
	user.Profile.Avatar = key
	if err := s.users.UpdateProfile(ctx, user.Profile); err != nil {
		deleteQuietly(ctx, s.store, key)
		return nil, err
	}
	deleteQuietly(ctx, s.store, old)
	return s.detail(ctx, user, userID)
}

func (s *ProfileService) RemoveAvatar(ctx context.Context, userID uint) (*models.ProfileDetail, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrNotFound
	}
	old := user.Profile.Avatar
	if old != "" {
		user.Profile.Avatar = ""
		if err := s.users.UpdateProfile(ctx, user.Profile); err != nil {
			return nil, err
		}
		deleteQuietly(ctx, s.store, old)
	}
	return s.detail(ctx, user, userID)
}
