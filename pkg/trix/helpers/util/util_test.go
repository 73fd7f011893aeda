package util_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trix-studio/trix/pkg/trix/helpers/util"
	"github.com/trix-studio/trix/pkg/trix/models"
)

func mediaURL(key string) string { return "/media/" + key }

func TestToDesignDetail(t *testing.T) {
	token := "ab"
	d := &models.Design{
		ID:      7,
		UserID:  3,
		User:    &models.User{ID: 3, Username: "alice"},
		Title:   "Sunset",
		Image:   "designs/s.png",
		Status:  models.StatusPublished,
		Tags:    "warm, sky,,",
		TokenID: &token,
	}
	out := util.ToDesignDetail(d, mediaURL)
	assert.Equal(t, "/media/designs/s.png", out.ImageUrl)
	assert.Equal(t, []string{"warm", "sky"}, out.Tags)
	assert.Equal(t, "ab", out.TokenId)
	assert.Equal(t, "alice", out.Owner.Username)
	require.NotNil(t, out.Links.Owner)
	assert.Equal(t, "/v1/profiles/alice", out.Links.Owner.Href)
	assert.NotNil(t, out.Related)
}

func TestThreadComments(t *testing.T) {
	one, two := uint(1), uint(2)
	now := time.Now()
	flat := []models.Comment{
		{ID: 1, UserID: 1, Content: "root", CreatedAt: now},
		{ID: 2, UserID: 2, Content: "reply", ParentID: &one, CreatedAt: now.Add(time.Second)},
		{ID: 3, UserID: 1, Content: "nested", ParentID: &two, CreatedAt: now.Add(2 * time.Second)},
		{ID: 4, UserID: 3, Content: "second root", CreatedAt: now.Add(3 * time.Second)},
	}
	out := util.ThreadComments(flat)
	require.Len(t, out, 2)
	assert.Equal(t, "root", out[0].Content)
	require.Len(t, out[0].Replies, 2)
	assert.Equal(t, "reply", out[0].Replies[0].Content)
	assert.Equal(t, "nested", out[0].Replies[1].Content)
	assert.Empty(t, out[1].Replies)
}

func TestSetPaginationHeaders(t *testing.T) {
	next, prev := 3, 1
	r := httptest.NewRequest(http.MethodGet, "/v1/designs?style=abstract&page=2", nil)
	rec := httptest.NewRecorder()
	util.SetPaginationHeaders(r, rec.Header().Set, models.Pagination{
		CurrentPage: 2, RecordsPerPage: 12, TotalPages: 3, TotalRecords: 30, Next: &next, Previous: &prev,
	})
	assert.Equal(t, "30", rec.Header().Get("X-Total-Count"))
	link := rec.Header().Get("Link")
	assert.Contains(t, link, `rel="self"`)
	assert.Contains(t, link, "page=3")
	assert.Contains(t, link, `rel="prev"`)
	assert.Contains(t, link, "style=abstract")
}
