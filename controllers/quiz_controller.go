package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/services"
)

type CreateQuizInput struct {
	Title       string                   `json:"title" binding:"required"`
	Description string                   `json:"description"`
	Questions   []services.QuestionInput `json:"questions" binding:"required,min=1,dive"`
}

type SubmitQuizInput struct {
	Answers map[string]string `json:"answers" binding:"required"`
}

// CreateQuiz tạo quiz mới cho khóa học (chỉ giáo viên chủ khóa học)
// POST /api/courses/:id/quizzes
func CreateQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input CreateQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	quizID, err := services.CreateQuiz(db, teacherID, courseID, input.Title, input.Description, input.Questions)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền tạo quiz cho khóa học này"})
		case errors.Is(err, services.ErrInvalidQuestion):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo quiz"})
		}
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo quiz thành công",
		"quiz_id": quizID,
	})
}

// ListCourseQuizzes trả các quiz của khóa học kèm cờ attempted + điểm
// GET /api/courses/:id/quizzes
func ListCourseQuizzes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quizzes, err := services.ListCourseQuizzes(db, userID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"quizzes": quizzes})
}

// GetQuiz trả quiz + câu hỏi + attempt của sinh viên.
// Chưa làm bài thì correct_answer bị ẩn.
// GET /api/quizzes/:id
func GetQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	view, err := services.GetAttemptView(db, userID, quizID)
	if err != nil {
		if errors.Is(err, services.ErrQuizNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": services.ErrQuizNotFound.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quiz":      view.Quiz,
		"questions": view.Questions,
		"attempt":   view.Attempt,
	})
}

// SubmitQuiz chấm bài và lưu attempt (mỗi sinh viên một lần mỗi quiz)
// POST /api/quizzes/:id/submit
func SubmitQuiz(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var input SubmitQuizInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := services.SubmitAttempt(db, studentID, quizID, input.Answers)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrQuizNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": services.ErrQuizNotFound.Error()})
		case errors.Is(err, services.ErrDuplicateAttempt):
			c.JSON(http.StatusConflict, gin.H{"error": services.ErrDuplicateAttempt.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể nộp bài"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":         "Nộp bài thành công",
		"score":           result.Score,
		"total_questions": result.TotalQuestions,
	})
}

// GetQuizTeacher trả quiz kèm đầy đủ đáp án cho chủ khóa học
// GET /api/quizzes/:id/teacher
func GetQuizTeacher(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	quiz, questions, err := services.GetQuizForOwner(db, teacherID, quizID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy quiz"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"quiz":      quiz,
		"questions": questions,
	})
}

// ListQuizAttempts trả các bài nộp của quiz kèm tên sinh viên (chủ khóa học)
// GET /api/quizzes/:id/attempts
func ListQuizAttempts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}
	quizID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	attempts, err := services.ListAttempts(db, teacherID, quizID)
	if err != nil {
		if errors.Is(err, services.ErrForbidden) {
			c.JSON(http.StatusForbidden, gin.H{"error": services.ErrForbidden.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách bài nộp"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"attempts": attempts})
}
