package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/loopfz/gadgeto/tonic"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/mask"
	"github.com/trix-studio/trix/pkg/storage"
	problem "github.com/trix-studio/trix/pkg/trix/helpers/problem"
	"github.com/trix-studio/trix/pkg/trix/middleware"
	"github.com/trix-studio/trix/pkg/trix/models"
	"github.com/trix-studio/trix/pkg/trix/repositories"
	"github.com/trix-studio/trix/pkg/trix/services"
)

// stubDesignRepo mocks DesignRepository for controller tests
type stubDesignRepo struct {
	getFunc     func(ctx context.Context, id uint) (*models.Design, error)
	listFunc    func(ctx context.Context, f repositories.DesignFilter) ([]models.Design, models.Pagination, error)
	likedFunc   func(ctx context.Context, designID, userID uint) (bool, error)
	relatedFunc func(ctx context.Context, d *models.Design, limit int) ([]models.Design, error)
}

func (s *stubDesignRepo) GetByID(ctx context.Context, id uint) (*models.Design, error) {
	return s.getFunc(ctx, id)
}
func (s *stubDesignRepo) List(ctx context.Context, f repositories.DesignFilter) ([]models.Design, models.Pagination, error) {
	return s.listFunc(ctx, f)
}
func (s *stubDesignRepo) IsLikedBy(ctx context.Context, designID, userID uint) (bool, error) {
	return s.likedFunc(ctx, designID, userID)
}
func (s *stubDesignRepo) Related(ctx context.Context, d *models.Design, limit int) ([]models.Design, error) {
	return s.relatedFunc(ctx, d, limit)
}

// unused
func (s *stubDesignRepo) Create(ctx context.Context, d *models.Design) error { return nil }
func (s *stubDesignRepo) Update(ctx context.Context, d *models.Design) error { return nil }
func (s *stubDesignRepo) Delete(ctx context.Context, d *models.Design) error { return nil }
func (s *stubDesignRepo) Trending(ctx context.Context, since time.Time, limit int) ([]models.Design, error) {
	return nil, nil
}
func (s *stubDesignRepo) WithoutToken(ctx context.Context, limit int) ([]models.Design, error) {
	return nil, nil
}
func (s *stubDesignRepo) AssignToken(ctx context.Context, d *models.Design, now time.Time) (bool, error) {
	return false, nil
}
func (s *stubDesignRepo) AllDesignIDs(ctx context.Context) ([]uint, error) { return nil, nil }

func newController(t *testing.T, repo repositories.DesignRepository) *DesignsAPIController {
	t.Helper()
	store, err := storage.NewLocalStore(t.TempDir(), "/media/")
	require.NoError(t, err)
	return NewDesignsAPIController(services.NewDesignService(repo, store))
}

func publishedDesign(id, owner uint) *models.Design {
	return &models.Design{
		ID:     id,
		UserID: owner,
		User:   &models.User{ID: owner, Username: "alice"},
		Title:  "Neon",
		Image:  "designs/neon.png",
		Status: models.StatusPublished,
		Tags:   "night,city",
	}
}

func TestGallery_Handler(t *testing.T) {
	next := 3
	repo := &stubDesignRepo{
		listFunc: func(ctx context.Context, f repositories.DesignFilter) ([]models.Design, models.Pagination, error) {
			assert.Equal(t, models.StatusPublished, f.Status)
			assert.Equal(t, "cyberpunk", f.Style)
			designs := []models.Design{*publishedDesign(1, 7), *publishedDesign(2, 7)}
			return designs, models.Pagination{CurrentPage: f.Page, RecordsPerPage: f.PerPage, TotalRecords: 9, TotalPages: 5, Next: &next}, nil
		},
	}
	ctrl := newController(t, repo)

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodGet, "/v1/designs?page=2&perPage=2&style=cyberpunk", nil)

	resp, err := ctrl.Gallery(ctx, &models.ListDesignsParams{Page: 2, PerPage: 2, Style: " cyberpunk "})
	require.NoError(t, err)
	require.Len(t, resp, 2)
	assert.Equal(t, "/media/designs/neon.png", resp[0].ImageUrl)
	assert.Equal(t, []string{"night", "city"}, resp[0].Tags)
	assert.Equal(t, "9", w.Header().Get("X-Total-Count"))
	assert.Contains(t, w.Header().Get("Link"), `rel="next"`)
}

func TestRetrieveDesign_Handler(t *testing.T) {
	draft := publishedDesign(5, 7)
	draft.Status = models.StatusDraft

	repo := &stubDesignRepo{
		getFunc: func(ctx context.Context, id uint) (*models.Design, error) {
			switch id {
			case 1:
				return publishedDesign(1, 7), nil
			case 5:
				return draft, nil
			case 9:
				return nil, errors.New("connection reset")
			}
			return nil, nil
		},
		likedFunc: func(ctx context.Context, designID, userID uint) (bool, error) {
			return userID == 8, nil
		},
		relatedFunc: func(ctx context.Context, d *models.Design, limit int) ([]models.Design, error) {
			assert.Equal(t, 4, limit)
			return []models.Design{*publishedDesign(2, 7)}, nil
		},
	}
	ctrl := newController(t, repo)

	tests := []struct {
		name   string
		id     uint
		viewer uint
		status int
	}{
		{name: "published for anonymous", id: 1, status: http.StatusOK},
		{name: "draft for owner", id: 5, viewer: 7, status: http.StatusOK},
		{name: "draft for stranger", id: 5, viewer: 8, status: http.StatusForbidden},
		{name: "unknown", id: 3, status: http.StatusNotFound},
		{name: "repository failure", id: 9, status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
			ctx.Request = httptest.NewRequest(http.MethodGet, fmt.Sprintf("/v1/designs/%d", tt.id), nil)
			if tt.viewer != 0 {
				middleware.SetCurrentUser(ctx, tt.viewer, "viewer")
			}

			resp, err := ctrl.RetrieveDesign(ctx, &models.DesignParams{Id: tt.id})
			if tt.status != http.StatusOK {
				status, _ := ErrorHook(ctx, err)
				assert.Equal(t, tt.status, status)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.id, resp.Id)
			assert.Len(t, resp.Related, 1)
		})
	}
}

func TestLikedByMe_Handler(t *testing.T) {
	repo := &stubDesignRepo{
		getFunc:     func(ctx context.Context, id uint) (*models.Design, error) { return publishedDesign(id, 7), nil },
		likedFunc:   func(ctx context.Context, designID, userID uint) (bool, error) { return userID == 8, nil },
		relatedFunc: func(ctx context.Context, d *models.Design, limit int) ([]models.Design, error) { return nil, nil },
	}
	ctrl := newController(t, repo)

	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	ctx.Request = httptest.NewRequest(http.MethodGet, "/v1/designs/1", nil)
	middleware.SetCurrentUser(ctx, 8, "bob")

	resp, err := ctrl.RetrieveDesign(ctx, &models.DesignParams{Id: 1})
	require.NoError(t, err)
	assert.True(t, resp.LikedByMe)
	assert.Empty(t, resp.Related)
}

func TestCreateDesign_RequiresImage(t *testing.T) {
	ctrl := newController(t, &stubDesignRepo{})

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("title", "No image"))
	require.NoError(t, mw.Close())

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPost, "/v1/designs", &body)
	ctx.Request.Header.Set("Content-Type", mw.FormDataContentType())
	middleware.SetCurrentUser(ctx, 7, "alice")

	ctrl.CreateDesign(ctx)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	var prob problem.APIError
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &prob))
	assert.Equal(t, http.StatusBadRequest, prob.Status)
}

func TestReplaceImage_InvalidID(t *testing.T) {
	ctrl := newController(t, &stubDesignRepo{})

	w := httptest.NewRecorder()
	ctx, _ := gin.CreateTestContext(w)
	ctx.Request = httptest.NewRequest(http.MethodPut, "/v1/designs/abc/image", nil)
	ctx.Params = gin.Params{{Key: "id", Value: "abc"}}

	ctrl.ReplaceImage(ctx)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestErrorHook_Mapping(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "problem passes through", err: problem.NewForbidden("path", "nope"), status: http.StatusForbidden},
		{name: "bind error", err: tonic.BindError{}, status: http.StatusBadRequest},
		{name: "not found", err: services.ErrNotFound, status: http.StatusNotFound},
		{name: "forbidden", err: services.ErrForbidden, status: http.StatusForbidden},
		{name: "bad credentials", err: services.ErrBadCredentials, status: http.StatusUnauthorized},
		{name: "invalid mask", err: fmt.Errorf("%w: unknown mask type", mask.ErrInvalidMaskRequest), status: http.StatusBadRequest},
		{name: "invalid input", err: fmt.Errorf("%w: empty comment", services.ErrInvalidInput), status: http.StatusBadRequest},
		{name: "image required", err: services.ErrImageRequired, status: http.StatusBadRequest},
		{name: "ai unavailable", err: services.ErrAIUnavailable, status: http.StatusServiceUnavailable},
		{name: "inference failed", err: fmt.Errorf("%w: 500", services.ErrInferenceFailed), status: http.StatusBadGateway},
		{name: "anything else", err: errors.New("boom"), status: http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			ctx, _ := gin.CreateTestContext(w)

			status, body := ErrorHook(ctx, tt.err)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
			apiErr, ok := body.(problem.APIError)
			require.True(t, ok)
			assert.Equal(t, tt.status, apiErr.Status)
		})
	}
}

func TestErrorHook_DetailDropsSentinelPrefix(t *testing.T) {
	ctx, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, body := ErrorHook(ctx, fmt.Errorf("%w: comment content must not be empty", services.ErrInvalidInput))
	assert.Equal(t, "comment content must not be empty", body.(problem.APIError).Detail)
}
