package models

import (
	"strings"
	"time"

	"github.com/trix-studio/trix/pkg/tokenid"
)

const (
	StatusDraft     = "draft"
	StatusPublished = "published"
	StatusPrivate   = "private"
)

// ValidStatus reports whether s is one of the design statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusDraft, StatusPublished, StatusPrivate:
		return true
	}
	return false
}

type Design struct {
	ID            uint   `gorm:"primaryKey"`
	UserID        uint   `gorm:"not null;index"`
	User          *User  `gorm:"foreignKey:UserID"`
	Title         string `gorm:"size:200;not null"`
	Description   string
	Image         string `gorm:"not null"`
	ImageSize     int64  `gorm:"not null;default:0"`
	Prompt        string
	Style         string `gorm:"size:50;index"`
	ModelUsed     string `gorm:"size:100"`
	Status        string `gorm:"size:20;not null;default:draft;index"`
	LikesCount    int    `gorm:"not null;default:0"`
	ViewsCount    int    `gorm:"not null;default:0"`
	CommentsCount int    `gorm:"not null;default:0"`
	Tags          string `gorm:"size:200"` // comma-separated
	CreatedAt     time.Time
	UpdatedAt     time.Time

	// Set once at creation, never rewritten.
	TokenID        *string    `gorm:"column:token_id;size:64;uniqueIndex"`
	TokenCreatedAt *time.Time `gorm:"column:token_created_at"`
}

// TagList splits Tags on commas, dropping blanks.
func (d *Design) TagList() []string {
	if d.Tags == "" {
		return []string{}
	}
	parts := strings.Split(d.Tags, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// VisibleTo reports whether userID may see the design.
func (d *Design) VisibleTo(userID uint) bool {
	return d.Status == StatusPublished || (userID != 0 && d.UserID == userID)
}

// Token returns the assigned identifier or "".
func (d *Design) Token() string {
	if d.TokenID == nil {
		return ""
	}
	return *d.TokenID
}

// EnsureToken assigns the identifier if the design has none yet. The owner
// must be loaded. It reports whether a new identifier was issued.
func (d *Design) EnsureToken(owner *User, now time.Time) bool {
	var ownerID uint
	var ownerName string
	if owner != nil {
		ownerID, ownerName = owner.ID, owner.Username
	}
	id, issued := tokenid.Assign(d.Token(), tokenid.Fields{
		OwnerID:   ownerID,
		OwnerName: ownerName,
		FileName:  d.Image,
		FileSize:  d.ImageSize,
		Title:     d.Title,
		CreatedAt: d.CreatedAt,
		Style:     d.Style,
		Model:     d.ModelUsed,
	}, now)
	if issued {
		d.TokenID = &id
		d.TokenCreatedAt = &now
	}
	return issued
}

type Like struct {
	ID        uint `gorm:"primaryKey"`
	UserID    uint `gorm:"uniqueIndex:idx_like_pair;not null"`
	DesignID  uint `gorm:"uniqueIndex:idx_like_pair;not null;index"`
	CreatedAt time.Time
}

type Comment struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null"`
	User      *User     `gorm:"foreignKey:UserID"`
	DesignID  uint      `gorm:"not null;index"`
	Content   string    `gorm:"not null"`
	ParentID  *uint     `gorm:"index"`
	Replies   []Comment `gorm:"foreignKey:ParentID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

// DesignView records one view per (user, design, ip).
type DesignView struct {
	ID        uint   `gorm:"primaryKey"`
	UserID    *uint  `gorm:"uniqueIndex:idx_view_unique"`
	DesignID  uint   `gorm:"uniqueIndex:idx_view_unique;not null;index"`
	IPAddress string `gorm:"uniqueIndex:idx_view_unique;size:45;not null"`
	UserAgent string
	CreatedAt time.Time
}

type TokenMetadata struct {
	ID                 uint      `gorm:"primaryKey"`
	DesignID           uint      `gorm:"uniqueIndex;not null"`
	TokenID            string    `gorm:"size:64;uniqueIndex;not null"`
	CreationTimestamp  time.Time `gorm:"autoCreateTime"`
	BlockchainVerified bool      `gorm:"not null;default:false"`
	HashAlgorithm      string    `gorm:"size:20;not null;default:SHA-256"`
}
