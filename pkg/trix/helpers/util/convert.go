package util

import (
	"fmt"

	"github.com/trix-studio/trix/pkg/trix/models"
)

// URLFunc maps a stored file key to its public URL.
type URLFunc func(key string) string

func ToOwner(u *models.User) models.Owner {
	if u == nil {
		return models.Owner{}
	}
	return models.Owner{Id: u.ID, Username: u.Username}
}

func ToDesignSummary(d *models.Design, url URLFunc) models.DesignSummary {
	owner := ToOwner(d.User)
	if owner.Id == 0 {
		owner.Id = d.UserID
	}
	imageURL := ""
	if d.Image != "" && url != nil {
		imageURL = url(d.Image)
	}
	links := &models.Links{
		Self: &models.Link{Href: fmt.Sprintf("/v1/designs/%d", d.ID)},
	}
	if owner.Username != "" {
		links.Owner = &models.Link{Href: fmt.Sprintf("/v1/profiles/%s", owner.Username)}
	}
	if imageURL != "" {
		links.Image = &models.Link{Href: imageURL}
	}
	return models.DesignSummary{
		Id:            d.ID,
		Title:         d.Title,
		ImageUrl:      imageURL,
		Style:         d.Style,
		Status:        d.Status,
		Owner:         owner,
		LikesCount:    d.LikesCount,
		ViewsCount:    d.ViewsCount,
		CommentsCount: d.CommentsCount,
		Tags:          d.TagList(),
		CreatedAt:     d.CreatedAt,
		Links:         links,
	}
}

func ToDesignSummaries(designs []models.Design, url URLFunc) []models.DesignSummary {
	out := make([]models.DesignSummary, 0, len(designs))
	for i := range designs {
		out = append(out, ToDesignSummary(&designs[i], url))
	}
	return out
}

func ToDesignDetail(d *models.Design, url URLFunc) *models.DesignDetail {
	return &models.DesignDetail{
		DesignSummary:  ToDesignSummary(d, url),
		Description:    d.Description,
		Prompt:         d.Prompt,
		ModelUsed:      d.ModelUsed,
		TokenId:        d.Token(),
		TokenCreatedAt: d.TokenCreatedAt,
		UpdatedAt:      d.UpdatedAt,
		Related:        []models.DesignSummary{},
	}
}

func ToProfileDetail(u *models.User, url URLFunc) *models.ProfileDetail {
	out := &models.ProfileDetail{
		Id:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Email:     u.Email,
		Designs:   []models.DesignSummary{},
	}
	if p := u.Profile; p != nil {
		out.Bio = p.Bio
		out.Website = p.Website
		out.Location = p.Location
		out.FollowersCount = p.FollowersCount
		out.FollowingCount = p.FollowingCount
		out.DesignsCount = p.DesignsCount
		if p.Avatar != "" && url != nil {
			out.AvatarUrl = url(p.Avatar)
		}
	}
	return out
}

func ToCommentOut(c *models.Comment) models.CommentOut {
	out := models.CommentOut{
		Id:        c.ID,
		Author:    ToOwner(c.User),
		Content:   c.Content,
		ParentId:  c.ParentID,
		CreatedAt: c.CreatedAt,
	}
	if out.Author.Id == 0 {
		out.Author.Id = c.UserID
	}
	for i := range c.Replies {
		out.Replies = append(out.Replies, ToCommentOut(&c.Replies[i]))
	}
	return out
}

// ThreadComments nests a flat, oldest-first comment list under its top-level
// comments. Replies to replies are attached to the top-level ancestor.
func ThreadComments(flat []models.Comment) []models.CommentOut {
	byID := make(map[uint]*models.Comment, len(flat))
	for i := range flat {
		byID[flat[i].ID] = &flat[i]
	}

	out := make([]models.CommentOut, 0)
	index := make(map[uint]int)
	var replies []*models.Comment
	for i := range flat {
		c := &flat[i]
		if c.ParentID == nil {
			index[c.ID] = len(out)
			out = append(out, ToCommentOut(c))
			continue
		}
		replies = append(replies, c)
	}
	for _, c := range replies {
		top := c
		for top.ParentID != nil {
			parent, ok := byID[*top.ParentID]
			if !ok {
				break
			}
			top = parent
		}
		if i, ok := index[top.ID]; ok {
			out[i].Replies = append(out[i].Replies, ToCommentOut(c))
		}
	}
	return out
}
