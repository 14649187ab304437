package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Bài giảng video, bất biến sau khi upload
type Lecture struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course     Course    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	VideoPath  string    `gorm:"type:text;not null" json:"video_path"`
	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

func (l *Lecture) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}
