/*
 * triX API v1
 *
 * Social image-design platform with AI inpainting
 *
 * API version: 1.0.0
 */

package models

import "time"

type User struct {
	ID           uint         `gorm:"primaryKey"`
	Username     string       `gorm:"size:150;uniqueIndex;not null"`
	Email        string       `gorm:"size:254"`
	FirstName    string       `gorm:"size:150"`
	LastName     string       `gorm:"size:150"`
	PasswordHash string       `gorm:"not null"`
	Profile      *UserProfile `gorm:"foreignKey:UserID"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

type UserProfile struct {
	ID             uint       `gorm:"primaryKey"`
	UserID         uint       `gorm:"uniqueIndex;not null"`
	Bio            string     `gorm:"size:500"`
	Avatar         string     `gorm:"column:avatar"`
	Website        string     `gorm:"size:200"`
	Location       string     `gorm:"size:100"`
	BirthDate      *time.Time `gorm:"type:date"`
	FollowersCount int        `gorm:"not null;default:0"`
	FollowingCount int        `gorm:"not null;default:0"`
	DesignsCount   int        `gorm:"not null;default:0"`
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Follow is a directed edge: Follower follows Following.
type Follow struct {
	ID          uint `gorm:"primaryKey"`
	FollowerID  uint `gorm:"uniqueIndex:idx_follow_pair;not null"`
	FollowingID uint `gorm:"uniqueIndex:idx_follow_pair;not null;index"`
	CreatedAt   time.Time
}

type ContactMessage struct {
	ID        uint   `gorm:"primaryKey"`
	Name      string `gorm:"size:100;not null"`
	Email     string `gorm:"size:254;not null"`
	Subject   string `gorm:"size:200;not null"`
	Message   string `gorm:"not null"`
	IsRead    bool   `gorm:"not null;default:false"`
	CreatedAt time.Time
}
