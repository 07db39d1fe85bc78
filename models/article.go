package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/tdngan/news-survey-server/utils"
)

// excerptLimit is the maximum excerpt length in runes before truncation.
const excerptLimit = 300

type Article struct {
	ID          uint      `gorm:"primaryKey;autoIncrement" json:"id"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Slug        string    `gorm:"size:255;uniqueIndex" json:"slug"`
	Content     string    `gorm:"type:text;not null" json:"content"`
	Author      string    `gorm:"size:255;not null" json:"author"`
	Category    string    `gorm:"size:100;not null;default:'General'" json:"category"`
	Tags        string    `gorm:"size:255" json:"tags"`
	ImageURL    string    `gorm:"size:512" json:"image_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
	Excerpt     string    `gorm:"size:400" json:"excerpt"`
	Views       uint      `gorm:"not null;default:0" json:"views"`
}

// BeforeSave derives the slug and excerpt when they are empty. A user-supplied
// slug or excerpt is never overwritten. The probe loop excludes the record's
// own row so re-saves keep their slug; the unique index on the column is the
// hard backstop against two concurrent saves picking the same candidate.
func (a *Article) BeforeSave(tx *gorm.DB) error {
	if a.Slug == "" {
		base := utils.Slugify(a.Title)
		if base == "" {
			base = "article"
		}
		slug := base
		for counter := 1; ; counter++ {
			var count int64
			q := tx.Model(&Article{}).Where("slug = ?", slug)
			if a.ID != 0 {
				q = q.Where("id <> ?", a.ID)
			}
			if err := q.Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				break
			}
			slug = fmt.Sprintf("%s-%d", base, counter)
		}
		a.Slug = slug
	}

	if a.Excerpt == "" {
		a.Excerpt = MakeExcerpt(a.Content)
	}
	if a.Category == "" {
		a.Category = "General"
	}
	if a.PublishedAt.IsZero() {
		a.PublishedAt = time.Now()
	}
	return nil
}

// MakeExcerpt returns the first 300 runes of content with a trailing ellipsis,
// or the content verbatim when it fits.
func MakeExcerpt(content string) string {
	runes := []rune(content)
	if len(runes) > excerptLimit {
		return string(runes[:excerptLimit]) + "..."
	}
	return content
}
