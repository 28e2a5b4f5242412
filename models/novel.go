package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Novel holds the catalog fields used by tag discovery. HotScore is a cached
// value derived from the engagement counters and timestamps.
type Novel struct {
	ID            uuid.UUID  `json:"id" db:"id" gorm:"type:uuid;primaryKey;not null"`
	Title         string     `json:"title" db:"title" gorm:"type:text;not null"`
	CategoryID    *uuid.UUID `json:"categoryId,omitempty" db:"category_id" gorm:"type:uuid;index:idx_novel_category"`
	IsPublished   bool       `json:"isPublished" db:"is_published" gorm:"not null;default:false;index:idx_novel_visible,priority:1"`
	IsBanned      bool       `json:"isBanned" db:"is_banned" gorm:"not null;default:false;index:idx_novel_visible,priority:2"`
	ViewCount     int64      `json:"viewCount" db:"view_count" gorm:"type:integer;not null;default:0;index:idx_novel_view_count"`
	BookmarkCount int64      `json:"bookmarkCount" db:"bookmark_count" gorm:"type:integer;not null;default:0;index:idx_novel_bookmark_count"`
	TotalChapters int        `json:"totalChapters" db:"total_chapters" gorm:"type:integer;not null;default:0"`
	HotScore      float64    `json:"hotScore" db:"hot_score" gorm:"not null;default:0;index:idx_novel_hot_score"`
	CreatedAt     time.Time  `json:"createdAt" db:"created_at"`
	UpdatedAt     time.Time  `json:"updatedAt" db:"updated_at"`
	Tags          []Tag      `json:"tags,omitempty" gorm:"many2many:novel_tags"`
}

func (n *Novel) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}

// NovelTag is the association row between a novel and a tag.
type NovelTag struct {
	NovelID uuid.UUID `json:"novelId" db:"novel_id" gorm:"type:uuid;primaryKey;not null"`
	TagID   uuid.UUID `json:"tagId" db:"tag_id" gorm:"type:uuid;primaryKey;not null;index:idx_novel_tag_tag_id"`
}

// NovelQuery describes an intersection search over the novel catalog.
// OrderBy must be one of the sortable columns known to the repository.
// RelatedLimit asks page reads for that many co-occurring tags.
type NovelQuery struct {
	TagIDs       []uuid.UUID
	CategoryID   *uuid.UUID
	OrderBy      string
	Offset       int
	Limit        int
	RelatedLimit int
}

// NovelPage is one page of an intersection search. Related is filled from
// every match when RelatedAggregated is set; otherwise the page already holds
// every match and callers count tags from Novels.
type NovelPage struct {
	Novels            []Novel
	Total             int64
	Related           []CoOccurrence
	RelatedAggregated bool
}
