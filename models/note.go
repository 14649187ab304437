package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Tài liệu (ghi chú) của khóa học, bất biến sau khi upload
type Note struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID   uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course     Course    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title      string    `gorm:"size:255;not null" json:"title"`
	FilePath   string    `gorm:"type:text;not null" json:"file_path"`
	UploadDate time.Time `gorm:"autoCreateTime" json:"upload_date"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) error {
	if n.ID == uuid.Nil {
		n.ID = uuid.New()
	}
	return nil
}
