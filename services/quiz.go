package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
)

// ====== INPUT / OUTPUT STRUCTS ======

type QuestionInput struct {
	Question      string `json:"question" binding:"required"`
	OptionA       string `json:"option_a" binding:"required"`
	OptionB       string `json:"option_b" binding:"required"`
	OptionC       string `json:"option_c" binding:"required"`
	OptionD       string `json:"option_d" binding:"required"`
	CorrectAnswer string `json:"correct_answer" binding:"required"`
}

type AttemptResult struct {
	Score          int `json:"score"`
	TotalQuestions int `json:"total_questions"`
}

type AttemptView struct {
	Quiz      models.Quiz           `json:"quiz"`
	Questions []models.QuizQuestion `json:"questions"`
	Attempt   *models.QuizAttempt   `json:"attempt"`
}

type AttemptSummary struct {
	ID             uuid.UUID `json:"id"`
	StudentID      uuid.UUID `json:"student_id"`
	StudentName    string    `json:"student_name"`
	Score          int       `json:"score"`
	TotalQuestions int       `json:"total_questions"`
	SubmittedAt    time.Time `json:"submitted_at"`
}

type CourseQuizSummary struct {
	models.Quiz
	Attempted    bool `json:"attempted"`
	AttemptScore *int `json:"attempt_score,omitempty"`
}

// ====== QUIZ AUTHORING ======

// CreateQuiz tạo quiz kèm toàn bộ câu hỏi trong một transaction (all-or-nothing).
// Giáo viên phải là chủ khóa học; khóa học không tồn tại cũng trả ErrForbidden
// để không lộ việc id có tồn tại hay không.
func CreateQuiz(db *gorm.DB, teacherID, courseID uuid.UUID, title, description string, questions []QuestionInput) (uuid.UUID, error) {
	var course models.Course
	if err := db.Where("id = ? AND teacher_id = ?", courseID, teacherID).First(&course).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return uuid.Nil, ErrForbidden
		}
		return uuid.Nil, fmt.Errorf("kiểm tra quyền khóa học: %w", err)
	}

	for i, q := range questions {
		if err := validateQuestion(q); err != nil {
			return uuid.Nil, fmt.Errorf("câu %d: %w", i+1, err)
		}
	}

	quiz := models.Quiz{
		CourseID:    courseID,
		Title:       title,
		Description: description,
	}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&quiz).Error; err != nil {
			return fmt.Errorf("tạo quiz: %w", err)
		}
		for _, q := range questions {
			question := models.QuizQuestion{
				QuizID:        quiz.ID,
				Question:      q.Question,
				OptionA:       q.OptionA,
				OptionB:       q.OptionB,
				OptionC:       q.OptionC,
				OptionD:       q.OptionD,
				CorrectAnswer: normalizeLetter(q.CorrectAnswer),
			}
			if err := tx.Create(&question).Error; err != nil {
				return fmt.Errorf("tạo câu hỏi: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return uuid.Nil, err
	}
	return quiz.ID, nil
}

func validateQuestion(q QuestionInput) error {
	if strings.TrimSpace(q.Question) == "" {
		return fmt.Errorf("%w: thiếu nội dung câu hỏi", ErrInvalidQuestion)
	}
	for _, opt := range []string{q.OptionA, q.OptionB, q.OptionC, q.OptionD} {
		if strings.TrimSpace(opt) == "" {
			return fmt.Errorf("%w: phải có đủ 4 lựa chọn", ErrInvalidQuestion)
		}
	}
	switch normalizeLetter(q.CorrectAnswer) {
	case "A", "B", "C", "D":
		return nil
	default:
		return fmt.Errorf("%w: đáp án đúng phải là A, B, C hoặc D", ErrInvalidQuestion)
	}
}

func normalizeLetter(s string) string {
	return strings.ToUpper(strings.TrimSpace(s))
}

// ====== SCORING ======

// SubmitAttempt chấm bài theo đáp án chuẩn và lưu một attempt bất biến.
// Mỗi câu đúng 1 điểm; câu bỏ trống hoặc id lạ tính 0, không phải lỗi.
// Fetch câu hỏi, chấm điểm và insert attempt nằm trong cùng một transaction.
// Nộp lần hai cho cùng (student, quiz) trả ErrDuplicateAttempt.
func SubmitAttempt(db *gorm.DB, studentID, quizID uuid.UUID, answers map[string]string) (*AttemptResult, error) {
	var result AttemptResult
	err := db.Transaction(func(tx *gorm.DB) error {
		var quiz models.Quiz
		if err := tx.First(&quiz, "id = ?", quizID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrQuizNotFound
			}
			return fmt.Errorf("truy vấn quiz: %w", err)
		}

		var existing models.QuizAttempt
		err := tx.Where("student_id = ? AND quiz_id = ?", studentID, quizID).First(&existing).Error
		if err == nil {
			return ErrDuplicateAttempt
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("kiểm tra attempt cũ: %w", err)
		}

		var questions []models.QuizQuestion
		if err := tx.Where("quiz_id = ?", quizID).Find(&questions).Error; err != nil {
			return fmt.Errorf("truy vấn câu hỏi: %w", err)
		}

		score := 0
		for _, q := range questions {
			if normalizeLetter(answers[q.ID.String()]) == q.CorrectAnswer {
				score++
			}
		}

		// Lưu nguyên văn bài làm của sinh viên; chuẩn hóa chỉ dùng khi chấm
		stored := datatypes.JSONMap{}
		for id, letter := range answers {
			stored[id] = letter
		}

		attempt := models.QuizAttempt{
			StudentID:      studentID,
			QuizID:         quizID,
			Score:          score,
			TotalQuestions: len(questions),
			Answers:        stored,
		}
		if err := tx.Create(&attempt).Error; err != nil {
			// Unique index (student_id, quiz_id) chặn race giữa check và insert
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicateAttempt
			}
			return fmt.Errorf("lưu attempt: %w", err)
		}

		result = AttemptResult{Score: score, TotalQuestions: len(questions)}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &result, nil
}

// GetAttemptView trả quiz, câu hỏi và attempt của sinh viên (nếu có).
// Chưa làm bài thì correct_answer bị xóa khỏi mọi câu hỏi; đã làm thì giữ
// nguyên để client hiển thị kết quả.
func GetAttemptView(db *gorm.DB, studentID, quizID uuid.UUID) (*AttemptView, error) {
	var quiz models.Quiz
	if err := db.First(&quiz, "id = ?", quizID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrQuizNotFound
		}
		return nil, fmt.Errorf("truy vấn quiz: %w", err)
	}

	var questions []models.QuizQuestion
	if err := db.Where("quiz_id = ?", quizID).Find(&questions).Error; err != nil {
		return nil, fmt.Errorf("truy vấn câu hỏi: %w", err)
	}

	view := AttemptView{Quiz: quiz, Questions: questions}

	var attempt models.QuizAttempt
	err := db.Where("student_id = ? AND quiz_id = ?", studentID, quizID).First(&attempt).Error
	switch {
	case err == nil:
		view.Attempt = &attempt
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Đáp án là bí mật cho tới khi sinh viên nộp bài
		for i := range view.Questions {
			view.Questions[i].CorrectAnswer = ""
		}
	default:
		return nil, fmt.Errorf("truy vấn attempt: %w", err)
	}
	return &view, nil
}

// ====== TEACHER VIEWS ======

// quizOwnedBy trả quiz khi teacherID là chủ khóa học chứa quiz.
// Quiz không tồn tại và quiz của giáo viên khác đều trả ErrForbidden:
// probe id không phân biệt được hai trường hợp.
func quizOwnedBy(db *gorm.DB, teacherID, quizID uuid.UUID) (*models.Quiz, error) {
	var quiz models.Quiz
	err := db.Joins("JOIN courses ON courses.id = quizzes.course_id").
		Where("quizzes.id = ? AND courses.teacher_id = ?", quizID, teacherID).
		First(&quiz).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrForbidden
		}
		return nil, fmt.Errorf("kiểm tra quyền quiz: %w", err)
	}
	return &quiz, nil
}

// GetQuizForOwner trả quiz kèm toàn bộ câu hỏi (có đáp án) cho chủ khóa học.
func GetQuizForOwner(db *gorm.DB, teacherID, quizID uuid.UUID) (*models.Quiz, []models.QuizQuestion, error) {
	quiz, err := quizOwnedBy(db, teacherID, quizID)
	if err != nil {
		return nil, nil, err
	}
	var questions []models.QuizQuestion
	if err := db.Where("quiz_id = ?", quizID).Find(&questions).Error; err != nil {
		return nil, nil, fmt.Errorf("truy vấn câu hỏi: %w", err)
	}
	return quiz, questions, nil
}

// ListAttempts trả danh sách bài nộp của một quiz kèm tên sinh viên,
// mới nhất trước. Chỉ chủ khóa học được xem.
func ListAttempts(db *gorm.DB, teacherID, quizID uuid.UUID) ([]AttemptSummary, error) {
	if _, err := quizOwnedBy(db, teacherID, quizID); err != nil {
		return nil, err
	}
	var attempts []AttemptSummary
	err := db.Model(&models.QuizAttempt{}).
		Select("quiz_attempts.id, quiz_attempts.student_id, users.name AS student_name, quiz_attempts.score, quiz_attempts.total_questions, quiz_attempts.submitted_at").
		Joins("JOIN users ON users.id = quiz_attempts.student_id").
		Where("quiz_attempts.quiz_id = ?", quizID).
		Order("quiz_attempts.submitted_at DESC").
		Scan(&attempts).Error
	if err != nil {
		return nil, fmt.Errorf("truy vấn attempts: %w", err)
	}
	return attempts, nil
}

// ListCourseQuizzes trả các quiz của khóa học kèm cờ attempted và điểm
// của người dùng hiện tại (cho danh sách quiz phía sinh viên).
func ListCourseQuizzes(db *gorm.DB, userID, courseID uuid.UUID) ([]CourseQuizSummary, error) {
	var quizzes []models.Quiz
	if err := db.Where("course_id = ?", courseID).Order("created_at ASC").Find(&quizzes).Error; err != nil {
		return nil, fmt.Errorf("truy vấn quizzes: %w", err)
	}
	if len(quizzes) == 0 {
		return []CourseQuizSummary{}, nil
	}

	ids := make([]uuid.UUID, 0, len(quizzes))
	for _, q := range quizzes {
		ids = append(ids, q.ID)
	}
	var attempts []models.QuizAttempt
	if err := db.Where("student_id = ? AND quiz_id IN ?", userID, ids).Find(&attempts).Error; err != nil {
		return nil, fmt.Errorf("truy vấn attempts: %w", err)
	}
	scoreByQuiz := make(map[uuid.UUID]int, len(attempts))
	for _, a := range attempts {
		scoreByQuiz[a.QuizID] = a.Score
	}

	out := make([]CourseQuizSummary, 0, len(quizzes))
	for _, q := range quizzes {
		item := CourseQuizSummary{Quiz: q}
		if score, ok := scoreByQuiz[q.ID]; ok {
			item.Attempted = true
			s := score
			item.AttemptScore = &s
		}
		out = append(out, item)
	}
	return out, nil
}
