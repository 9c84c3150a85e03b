package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Like records that a user liked a post.
type Like struct {
	User string `json:"user"`
}

// Comment is a reply embedded in a Post.
type Comment struct {
	ID     string    `json:"id"`
	Text   string    `json:"text"`
	Name   string    `json:"name"`
	Avatar string    `json:"avatar"`
	User   string    `json:"user"`
	Date   time.Time `json:"date"`
}

func (c Comment) EntryID() string { return c.ID }

// Post is a status update with its likes and comments stored inline,
// both ordered newest-first.
type Post struct {
	ID       string                       `gorm:"primaryKey;size:36" json:"id"`
	UserID   string                       `gorm:"size:36;not null;index" json:"user"`
	Text     string                       `gorm:"type:text;not null" json:"text"`
	Name     string                       `json:"name"`
	Avatar   string                       `json:"avatar"`
	Likes    datatypes.JSONSlice[Like]    `json:"likes"`
	Comments datatypes.JSONSlice[Comment] `json:"comments"`
	Date     time.Time                    `gorm:"index" json:"date"`
}

// LikedBy reports whether userID is in the post's likes.
func (p *Post) LikedBy(userID string) bool {
	return IndexFunc(p.Likes, func(l Like) bool { return l.User == userID }) >= 0
}

func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	return nil
}

func (p *Post) BeforeSave(_ *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Post) AfterFind(_ *gorm.DB) error {
	p.normalize()
	return nil
}

func (p *Post) normalize() {
	p.Likes = nonNil(p.Likes)
	p.Comments = nonNil(p.Comments)
}
