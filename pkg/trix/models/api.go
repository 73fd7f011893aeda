package models

import (
	"time"

	"github.com/trix-studio/trix/pkg/mask"
)

// Link is a hypermedia link
type Link struct {
	Href string `json:"href"`
}

// Links holds HAL-style self/related links
type Links struct {
	Self    *Link `json:"self,omitempty"`
	Owner   *Link `json:"owner,omitempty"`
	Image   *Link `json:"image,omitempty"`
	Designs *Link `json:"designs,omitempty"`
}

type Pagination struct {
	Next           *int `json:"next,omitempty"`
	Previous       *int `json:"previous,omitempty"`
	CurrentPage    int  `json:"currentPage"`
	RecordsPerPage int  `json:"recordsPerPage"`
	TotalPages     int  `json:"totalPages"`
	TotalRecords   int  `json:"totalRecords"`
}

type Owner struct {
	Id       uint   `json:"id"`
	Username string `json:"username"`
}

// DesignSummary is the list view of a design
type DesignSummary struct {
	Id            uint      `json:"id"`
	Title         string    `json:"title"`
	ImageUrl      string    `json:"imageUrl"`
	Style         string    `json:"style,omitempty"`
	Status        string    `json:"status"`
	Owner         Owner     `json:"owner"`
	LikesCount    int       `json:"likesCount"`
	ViewsCount    int       `json:"viewsCount"`
	CommentsCount int       `json:"commentsCount"`
	Tags          []string  `json:"tags"`
	CreatedAt     time.Time `json:"createdAt"`
	Links         *Links    `json:"_links,omitempty"`
}

// DesignDetail is the full view of a design
type DesignDetail struct {
	DesignSummary
	Description    string          `json:"description,omitempty"`
	Prompt         string          `json:"prompt,omitempty"`
	ModelUsed      string          `json:"modelUsed,omitempty"`
	TokenId        string          `json:"tokenId"`
	TokenCreatedAt *time.Time      `json:"tokenCreatedAt,omitempty"`
	UpdatedAt      time.Time       `json:"updatedAt"`
	LikedByMe      bool            `json:"likedByMe"`
	Related        []DesignSummary `json:"relatedDesigns"`
}

type ProfileDetail struct {
	Id             uint            `json:"id"`
	Username       string          `json:"username"`
	FirstName      string          `json:"firstName,omitempty"`
	LastName       string          `json:"lastName,omitempty"`
	Email          string          `json:"email,omitempty"`
	Bio            string          `json:"bio,omitempty"`
	AvatarUrl      string          `json:"avatarUrl,omitempty"`
	Website        string          `json:"website,omitempty"`
	Location       string          `json:"location,omitempty"`
	FollowersCount int             `json:"followersCount"`
	FollowingCount int             `json:"followingCount"`
	DesignsCount   int             `json:"designsCount"`
	FollowedByMe   bool            `json:"followedByMe"`
	Designs        []DesignSummary `json:"designs"`
}

type CommentOut struct {
	Id        uint         `json:"id"`
	Author    Owner        `json:"author"`
	Content   string       `json:"content"`
	ParentId  *uint        `json:"parentId,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	Replies   []CommentOut `json:"replies,omitempty"`
}

// Request params

type DesignParams struct {
	Id uint `path:"id"`
}

type TagParams struct {
	Tag     string `path:"tag"`
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
}

type UsernameParams struct {
	Username string `path:"username"`
}

type ListDesignsParams struct {
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
	Style   string `query:"style"`
	Search  string `query:"search"`
}

type SearchParams struct {
	Q       string `query:"q"`
	Page    int    `query:"page"`
	PerPage int    `query:"perPage"`
}

type RegisterInput struct {
	Username string `json:"username" binding:"required,max=150"`
	Email    string `json:"email" binding:"omitempty,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type TokenResponse struct {
	AccessToken string `json:"accessToken"`
	TokenType   string `json:"tokenType"`
	ExpiresIn   int    `json:"expiresIn"`
}

type UpdateDesignInput struct {
	Id          uint   `path:"id"`
	Title       string `json:"title" binding:"required,max=200"`
	Description string `json:"description"`
	Status      string `json:"status" binding:"required,oneof=draft published private"`
	Style       string `json:"style" binding:"max=50"`
	ModelUsed   string `json:"modelUsed" binding:"max=100"`
	Prompt      string `json:"prompt"`
	Tags        string `json:"tags" binding:"max=200"`
}

// CreateDesignInput is bound from the multipart form; the image is read separately.
type CreateDesignInput struct {
	Title       string `form:"title" binding:"required,max=200"`
	Description string `form:"description"`
	Status      string `form:"status"`
	Style       string `form:"style" binding:"max=50"`
	ModelUsed   string `form:"model_used" binding:"max=100"`
	Prompt      string `form:"prompt"`
	Tags        string `form:"tags" binding:"max=200"`
}

type UpdateProfileInput struct {
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"firstName" binding:"max=150"`
	LastName  string `json:"lastName" binding:"max=150"`
	Email     string `json:"email" binding:"omitempty,email"`
	Bio       string `json:"bio" binding:"max=500"`
	Website   string `json:"website" binding:"omitempty,url"`
	Location  string `json:"location" binding:"max=100"`
}

type CommentInput struct {
	Id       uint   `path:"id"`
	Content  string `json:"content" binding:"required"`
	ParentId *uint  `json:"parentId"`
}

type LikeResult struct {
	Liked      bool `json:"liked"`
	LikesCount int  `json:"likesCount"`
}

type FollowResult struct {
	Following      bool `json:"following"`
	FollowersCount int  `json:"followersCount"`
}

type CommentResult struct {
	Comment       CommentOut `json:"comment"`
	CommentsCount int        `json:"commentsCount"`
}

type ViewResult struct {
	Counted    bool `json:"counted"`
	ViewsCount int  `json:"viewsCount"`
}

type ContactInput struct {
	Name    string `json:"name" binding:"required,max=100"`
	Email   string `json:"email" binding:"required,email"`
	Subject string `json:"subject" binding:"required,max=200"`
	Message string `json:"message" binding:"required"`
}

type ContactResult struct {
	Id      uint   `json:"id"`
	Message string `json:"message"`
}

type InpaintInput struct {
	ImagePath         string        `json:"imagePath"`
	MaskData          *mask.Request `json:"maskData"`
	Prompt            string        `json:"prompt"`
	NegativePrompt    string        `json:"negativePrompt"`
	NumInferenceSteps *int          `json:"numInferenceSteps"`
	GuidanceScale     *float64      `json:"guidanceScale"`
	Strength          *float64      `json:"strength"`
}

type InpaintResult struct {
	ResultPath string `json:"resultPath"`
	ResultUrl  string `json:"resultUrl"`
	Message    string `json:"message"`
}

type UploadResult struct {
	FilePath string `json:"filePath"`
	FileUrl  string `json:"fileUrl"`
	Message  string `json:"message"`
}

type AIStatus struct {
	Available     bool   `json:"available"`
	Message       string `json:"message"`
	Device        string `json:"device,omitempty"`
	ApiConfigured bool   `json:"apiConfigured"`
}
