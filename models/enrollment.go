package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Enrollment là quan hệ sinh viên - khóa học, kèm trạng thái streak.
// Chỉ streak engine (services.RecordWatch) được phép ghi Streak/LastWatchDate.
type Enrollment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"student_id"`
	CourseID  uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_course" json:"course_id"`

	Student User   `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Course  Course `gorm:"foreignKey:CourseID;constraint:OnDelete:CASCADE" json:"course"`

	Streak int `gorm:"not null;default:0" json:"streak"`
	// Ngày xem gần nhất, dạng "2006-01-02" (lịch, không phải timestamp)
	LastWatchDate *string   `gorm:"size:10" json:"last_watch_date"`
	CreatedAt     time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Enrollment) TableName() string {
	return "student_courses"
}

func (e *Enrollment) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
