package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Lịch sử xem bài giảng: append-only, mỗi lần đánh dấu xem là một dòng,
// không dedup theo ngày ở tầng này.
type WatchEvent struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;index" json:"student_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`

	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"-"`

	// Ngày xem dạng "2006-01-02"
	WatchDate string    `gorm:"size:10;not null" json:"watch_date"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (WatchEvent) TableName() string {
	return "watch_history"
}

func (w *WatchEvent) BeforeCreate(tx *gorm.DB) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	return nil
}
