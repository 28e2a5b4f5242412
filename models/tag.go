package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tag is an entry of the dynamic tag vocabulary. Name and Slug hold the same
// normalized value; Count is the number of novels currently carrying the tag.
type Tag struct {
	ID        uuid.UUID `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Name      string    `json:"name" db:"name" gorm:"type:varchar(30);not null;uniqueIndex:idx_tag_name"`
	Slug      string    `json:"slug" db:"slug" gorm:"type:varchar(30);not null;uniqueIndex:idx_tag_slug"`
	Count     int64     `json:"count" db:"novel_count" gorm:"column:novel_count;type:integer;not null;default:0;index:idx_tag_novel_count"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

func (t *Tag) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	if t.Slug == "" {
		t.Slug = t.Name
	}
	return nil
}

// CoOccurrence is one row of the related-tag aggregate: a tag and how many
// candidate novels carry it.
type CoOccurrence struct {
	TagID        uuid.UUID `json:"id" gorm:"column:tag_id"`
	Name         string    `json:"name" gorm:"column:name"`
	Slug         string    `json:"slug" gorm:"column:slug"`
	TagCount     int64     `json:"-" gorm:"column:tag_count"`
	CoOccurrence int64     `json:"coOccurrence" gorm:"column:co_occurrence"`
}
