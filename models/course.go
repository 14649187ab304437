package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Course struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Title     string    `gorm:"size:255;not null" json:"title"`
	TeacherID uuid.UUID `gorm:"type:uuid;not null" json:"teacher_id"`
	Teacher   User      `gorm:"foreignKey:TeacherID;references:ID;constraint:OnDelete:CASCADE;" json:"teacher"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`

	Lectures []Lecture `gorm:"foreignKey:CourseID" json:"lectures,omitempty"`
	Notes    []Note    `gorm:"foreignKey:CourseID" json:"notes,omitempty"`
	Quizzes  []Quiz    `gorm:"foreignKey:CourseID" json:"quizzes,omitempty"`
}

func (co *Course) BeforeCreate(tx *gorm.DB) error {
	if co.ID == uuid.Nil {
		co.ID = uuid.New()
	}
	return nil
}
