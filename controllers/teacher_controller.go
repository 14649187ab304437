package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/utils"
)

// ownsCourse kiểm tra teacherID có phải chủ khóa học không.
// Khóa học không tồn tại cũng trả false để không lộ id.
func ownsCourse(db *gorm.DB, teacherID, courseID uuid.UUID) (bool, error) {
	var course models.Course
	err := db.Where("id = ? AND teacher_id = ?", courseID, teacherID).First(&course).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func requireCourseOwner(c *gin.Context, db *gorm.DB) (teacherID, courseID uuid.UUID, ok bool) {
	teacherID, ok = currentUserID(c)
	if !ok {
		return
	}
	courseID, ok = parseIDParam(c, "id")
	if !ok {
		return
	}
	owns, err := ownsCourse(db, teacherID, courseID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể kiểm tra quyền khóa học"})
		ok = false
		return
	}
	if !owns {
		c.JSON(http.StatusForbidden, gin.H{"error": "Bạn không có quyền truy cập khóa học này"})
		ok = false
		return
	}
	return teacherID, courseID, true
}

// TeacherCourses trả các khóa học của giáo viên đang đăng nhập
// GET /api/teacher/courses
func TeacherCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	teacherID, ok := currentUserID(c)
	if !ok {
		return
	}

	var courses []models.Course
	if err := db.Where("teacher_id = ?", teacherID).Order("created_at ASC").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// UploadLecture upload video bài giảng lên Supabase rồi lưu metadata
// POST /api/teacher/courses/:id/lectures (multipart: video, title)
func UploadLecture(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	title := c.PostForm("title")
	file, err := c.FormFile("video")
	if err != nil || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file video hoặc tiêu đề"})
		return
	}

	lectureID := uuid.New()
	videoURL, err := utils.UploadLectureToSupabase(file, lectureID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload video thất bại"})
		return
	}

	lecture := models.Lecture{
		ID:        lectureID,
		CourseID:  courseID,
		Title:     title,
		VideoPath: videoURL,
	}
	if err := db.Create(&lecture).Error; err != nil {
		// Metadata hỏng thì dọn luôn file vừa đẩy lên
		_ = utils.DeleteFileFromSupabase(videoURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu bài giảng"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Upload bài giảng thành công",
		"lecture": lecture,
	})
}

// UploadNote upload tài liệu (pdf, docx, txt...) của khóa học
// POST /api/teacher/courses/:id/notes (multipart: note, title)
func UploadNote(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	title := c.PostForm("title")
	file, err := c.FormFile("note")
	if err != nil || title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Thiếu file tài liệu hoặc tiêu đề"})
		return
	}

	noteID := uuid.New()
	fileURL, err := utils.UploadNoteToSupabase(file, noteID.String())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Upload tài liệu thất bại"})
		return
	}

	note := models.Note{
		ID:       noteID,
		CourseID: courseID,
		Title:    title,
		FilePath: fileURL,
	}
	if err := db.Create(&note).Error; err != nil {
		_ = utils.DeleteFileFromSupabase(fileURL)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lưu tài liệu"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Upload tài liệu thành công",
		"note":    note,
	})
}

// CourseLectures trả bài giảng của khóa học (view giáo viên)
// GET /api/teacher/courses/:id/lectures
func CourseLectures(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	var lectures []models.Lecture
	if err := db.Where("course_id = ?", courseID).Order("upload_date ASC").Find(&lectures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy bài giảng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"lectures": lectures})
}

// CourseNotes trả tài liệu của khóa học (view giáo viên)
// GET /api/teacher/courses/:id/notes
func CourseNotes(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	var notes []models.Note
	if err := db.Where("course_id = ?", courseID).Order("upload_date ASC").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tài liệu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notes": notes})
}

// CourseStudents trả danh sách sinh viên đã đăng ký kèm streak
// GET /api/teacher/courses/:id/students
func CourseStudents(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	var students []StudentStreakRow
	err := db.Table("student_courses").
		Select("users.id, users.name, student_courses.streak").
		Joins("JOIN users ON users.id = student_courses.student_id").
		Where("student_courses.course_id = ?", courseID).
		Order("student_courses.streak DESC").
		Scan(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách sinh viên"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}

// CourseStats tổng hợp số liệu khóa học cho dashboard giáo viên
// GET /api/teacher/courses/:id/stats
func CourseStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	_, courseID, ok := requireCourseOwner(c, db)
	if !ok {
		return
	}

	var studentCount int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).Count(&studentCount)

	var avgStreak float64
	db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).
		Select("COALESCE(AVG(streak), 0)").Scan(&avgStreak)

	var maxStreak int64
	db.Model(&models.Enrollment{}).Where("course_id = ?", courseID).
		Select("COALESCE(MAX(streak), 0)").Scan(&maxStreak)

	var quizCount int64
	db.Model(&models.Quiz{}).Where("course_id = ?", courseID).Count(&quizCount)

	var attemptCount int64
	db.Model(&models.QuizAttempt{}).
		Joins("JOIN quizzes ON quizzes.id = quiz_attempts.quiz_id").
		Where("quizzes.course_id = ?", courseID).
		Count(&attemptCount)

	var watchCount int64
	db.Model(&models.WatchEvent{}).Where("course_id = ?", courseID).Count(&watchCount)

	c.JSON(http.StatusOK, gin.H{
		"student_count": studentCount,
		"avg_streak":    avgStreak,
		"max_streak":    maxStreak,
		"quiz_count":    quizCount,
		"attempt_count": attemptCount,
		"watch_count":   watchCount,
	})
}
