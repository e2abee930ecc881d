package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// BlogPost is an article shown to signed-in shoppers. Content is trusted HTML
// written by the admin.
type BlogPost struct {
	ID          uuid.UUID `gorm:"column:id;type:uuid;primaryKey"`
	Slug        string    `gorm:"column:slug;type:text;not null;uniqueIndex"`
	Title       string    `gorm:"column:title;not null"`
	Excerpt     string    `gorm:"column:excerpt;not null"`
	Content     string    `gorm:"column:content;not null"`
	ImageURL    *string   `gorm:"column:image_url"`
	PublishedAt time.Time `gorm:"column:published_at;not null"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (BlogPost) TableName() string { return "blog_posts" }

func (p *BlogPost) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
