package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/trix-studio/trix/pkg/trix/helpers/util"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
)

// recountConcurrency bounds parallel recount transactions.
const recountConcurrency = 4

type SocialService struct {
	social  repositories.SocialRepository
	designs repositories.DesignRepository
	users   repositories.UserRepository
}

func NewSocialService(social repositories.SocialRepository, designs repositories.DesignRepository, users repositories.UserRepository) *SocialService {
	return &SocialService{social: social, designs: designs, users: users}
}

func (s *SocialService) visibleDesign(ctx context.Context, id, viewerID uint) (*models.Design, error) {
	d, err := s.designs.GetByID(ctx, id)
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

func (s *SocialService) ToggleLike(ctx context.Context, userID, designID uint) (*models.LikeResult, error) {
	if _, err := s.visibleDesign(ctx, designID, userID); err != nil {
		return nil, err
	}
	liked, count, err := s.social.ToggleLike(ctx, userID, designID)
	if err != nil {
		return nil, err
	}
	return &models.LikeResult{Liked: liked, LikesCount: count}, nil
}

func (s *SocialService) ToggleFollow(ctx context.Context, followerID uint, username string) (*models.FollowResult, error) {
	target, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if target == nil {
		return nil, ErrNotFound
	}
	if target.ID == followerID {
		return nil, fmt.Errorf("%w: you cannot follow yourself", ErrInvalidInput)
	}
	following, followers, err := s.social.ToggleFollow(ctx, followerID, target.ID)
	if err != nil {
		return nil, err
	}
	return &models.FollowResult{Following: following, FollowersCount: followers}, nil
}

func (s *SocialService) AddComment(ctx context.Context, userID uint, in *models.CommentInput) (*models.CommentResult, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, fmt.Errorf("%w: comment content is empty", ErrInvalidInput)
	}
	if _, err := s.visibleDesign(ctx, in.Id, userID); err != nil {
		return nil, err
	}
	if in.ParentId != nil {
		parent, err := s.social.GetComment(ctx, *in.ParentId)
		if err != nil {
			return nil, err
		}
		if parent == nil || parent.DesignID != in.Id {
			return nil, fmt.Errorf("%w: parent comment does not belong to this design", ErrInvalidInput)
		}
	}

	author, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	c := &models.Comment{
		UserID:   userID,
		User:     author,
		DesignID: in.Id,
		Content:  content,
		ParentID: in.ParentId,
	}
	count, err := s.social.AddComment(ctx, c)
	if err != nil {
		return nil, err
	}
	return &models.CommentResult{Comment: util.ToCommentOut(c), CommentsCount: count}, nil
}

// ListComments returns top-level comments with their replies, oldest first.
func (s *SocialService) ListComments(ctx context.Context, designID, viewerID uint) ([]models.CommentOut, error) {
	if _, err := s.visibleDesign(ctx, designID, viewerID); err != nil {
		return nil, err
	}
	flat, err := s.social.ListComments(ctx, designID)
	if err != nil {
		return nil, err
	}
	return util.ThreadComments(flat), nil
}

// TrackView counts at most one view per (user, design, ip).
func (s *SocialService) TrackView(ctx context.Context, designID, viewerID uint, ip, userAgent string) (*models.ViewResult, error) {
	if _, err := s.visibleDesign(ctx, designID, viewerID); err != nil {
		return nil, err
	}
	v := &models.DesignView{DesignID: designID, IPAddress: ip, UserAgent: userAgent}
	if viewerID != 0 {
		v.UserID = &viewerID
	}
	counted, views, err := s.social.TrackView(ctx, v)
	if err != nil {
		return nil, err
	}
	return &models.ViewResult{Counted: counted, ViewsCount: views}, nil
}

// RecountAll recomputes every denormalised counter from its source rows.
func (s *SocialService) RecountAll(ctx context.Context) error {
	start := time.Now()
	designIDs, err := s.designs.AllDesignIDs(ctx)
	if err != nil {
		return err
	}
	userIDs, err := s.users.AllUserIDs(ctx)
	if err != nil {
		return err
	}

	sem := semaphore.NewWeighted(recountConcurrency)
	g, ctx := errgroup.WithContext(ctx)

	run := func(fn func() error) error {
		if err := sem.Acquire(ctx, 1); err != nil {
			return err
		}
		g.Go(func() error {
			defer sem.Release(1)
			return fn()
		})
		return nil
	}

	var acquireErr error
	for _, id := range designIDs {
		id := id
		if acquireErr = run(func() error { return s.social.RecountDesign(ctx, id) }); acquireErr != nil {
			break
		}
	}
	for _, id := range userIDs {
		if acquireErr != nil {
			break
		}
		id := id
		acquireErr = run(func() error { return s.social.RecountProfile(ctx, id) })
	}

	if err := g.Wait(); err != nil {
		return fmt.Errorf("recount counters: %w", err)
	}
	if acquireErr != nil {
		return fmt.Errorf("recount counters: %w", acquireErr)
	}
	zap.L().Info("recounted counters",
		zap.Int("designs", len(designIDs)),
		zap.Int("users", len(userIDs)),
		zap.Duration("took", time.Since(start)))
	return nil
}
