package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Quiz struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	CourseID    uuid.UUID `gorm:"type:uuid;not null;index" json:"course_id"`
	Course      Course    `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Title       string    `gorm:"size:255;not null" json:"title"`
	Description string    `gorm:"type:text" json:"description"`
	CreatedAt   time.Time `gorm:"autoCreateTime" json:"created_at"`

	Questions []QuizQuestion `gorm:"foreignKey:QuizID" json:"questions,omitempty"`
}

// Câu hỏi trắc nghiệm 4 lựa chọn, bất biến sau khi tạo quiz.
// CorrectAnswer có omitempty: service xóa trường này khi sinh viên chưa làm bài.
type QuizQuestion struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID        uuid.UUID `gorm:"type:uuid;not null;index" json:"quiz_id"`
	Quiz          Quiz      `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	Question      string    `gorm:"type:text;not null" json:"question"`
	OptionA       string    `gorm:"type:text;not null" json:"option_a"`
	OptionB       string    `gorm:"type:text;not null" json:"option_b"`
	OptionC       string    `gorm:"type:text;not null" json:"option_c"`
	OptionD       string    `gorm:"type:text;not null" json:"option_d"`
	CorrectAnswer string    `gorm:"size:1;not null" json:"correct_answer,omitempty"`
}

// Bài làm đã chấm, bất biến; unique (student_id, quiz_id) chặn nộp lần hai.
type QuizAttempt struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	StudentID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_quiz" json:"student_id"`
	QuizID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_student_quiz" json:"quiz_id"`

	Student User `gorm:"foreignKey:StudentID;constraint:OnDelete:CASCADE" json:"-"`
	Quiz    Quiz `gorm:"foreignKey:QuizID;constraint:OnDelete:CASCADE" json:"-"`

	Score          int               `gorm:"not null" json:"score"`
	TotalQuestions int               `gorm:"not null" json:"total_questions"`
	Answers        datatypes.JSONMap `json:"answers"` // question_id -> "A".."D", giữ nguyên để xem lại
	SubmittedAt    time.Time         `gorm:"autoCreateTime" json:"submitted_at"`
}

func (q *Quiz) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (qq *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if qq.ID == uuid.Nil {
		qq.ID = uuid.New()
	}
	return nil
}

func (qa *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if qa.ID == uuid.Nil {
		qa.ID = uuid.New()
	}
	return nil
}
