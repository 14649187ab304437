package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
	"github.com/vnkhanh/e-learning-backend/services"
)

type RegisterCourseInput struct {
	CourseID uuid.UUID `json:"course_id" binding:"required"`
}

// Dòng kết quả sinh viên + streak (dùng chung cho view sinh viên và giáo viên)
type StudentStreakRow struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Streak int       `json:"streak"`
}

// ListCourses trả tất cả khóa học kèm thông tin giảng viên (màn đăng ký)
// GET /api/student/courses
func ListCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var courses []models.Course
	if err := db.Preload("Teacher").Order("created_at ASC").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// MyCourses trả các khóa học sinh viên đã đăng ký, kèm streak
// GET /api/student/my-courses
func MyCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}

	var enrollments []models.Enrollment
	if err := db.Where("student_id = ?", studentID).
		Preload("Course.Teacher").
		Find(&enrollments).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy khóa học của bạn"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": enrollments})
}

// RegisterCourse đăng ký khóa học: tạo enrollment với streak=0,
// last_watch_date=null
// POST /api/student/courses/register
func RegisterCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input RegisterCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var course models.Course
	if err := db.First(&course, "id = ?", input.CourseID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể kiểm tra khóa học"})
		return
	}

	enrollment := models.Enrollment{
		StudentID: studentID,
		CourseID:  input.CourseID,
		Streak:    0,
	}
	if err := db.Create(&enrollment).Error; err != nil {
		// Unique index (student_id, course_id): hai request đua nhau thì
		// request thua nhận lỗi trùng chứ không phải 500
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrAlreadyRegistered.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể đăng ký khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Đăng ký khóa học thành công"})
}

// DropCourse hủy đăng ký: xóa enrollment, giữ nguyên watch history
// POST /api/student/courses/drop
func DropCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}

	var input RegisterCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	res := db.Where("student_id = ? AND course_id = ?", studentID, input.CourseID).
		Delete(&models.Enrollment{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể hủy đăng ký"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Bạn chưa đăng ký khóa học này"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Hủy đăng ký thành công"})
}

// RecordWatch đánh dấu đã xem hôm nay và cập nhật streak qua streak engine
// POST /api/student/courses/:id/watch
func RecordWatch(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	streak, err := services.RecordWatch(db, studentID, courseID, time.Now(), services.SameDayPolicyFromEnv())
	if err != nil {
		if errors.Is(err, services.ErrNotEnrolled) {
			c.JSON(http.StatusBadRequest, gin.H{"error": services.ErrNotEnrolled.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể cập nhật streak"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "Đã ghi nhận lượt xem và cập nhật streak",
		"streak":  streak,
	})
}

// CourseDetails trả bài giảng, tài liệu và streak hiện tại của sinh viên
// GET /api/student/courses/:id/details
func CourseDetails(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var lectures []models.Lecture
	if err := db.Where("course_id = ?", courseID).Order("upload_date ASC").Find(&lectures).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy bài giảng"})
		return
	}

	var notes []models.Note
	if err := db.Where("course_id = ?", courseID).Order("upload_date ASC").Find(&notes).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy tài liệu"})
		return
	}

	// Chưa đăng ký thì streak hiển thị 0
	streak := 0
	var enrollment models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", studentID, courseID).
		First(&enrollment).Error; err == nil {
		streak = enrollment.Streak
	}

	c.JSON(http.StatusOK, gin.H{
		"lectures": lectures,
		"notes":    notes,
		"streak":   streak,
	})
}

// CourseClassmates trả các sinh viên khác của khóa học kèm streak
// GET /api/student/courses/:id/students
func CourseClassmates(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	studentID, ok := currentUserID(c)
	if !ok {
		return
	}
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var students []StudentStreakRow
	err := db.Table("student_courses").
		Select("users.id, users.name, student_courses.streak").
		Joins("JOIN users ON users.id = student_courses.student_id").
		Where("student_courses.course_id = ? AND users.id <> ?", courseID, studentID).
		Order("student_courses.streak DESC").
		Scan(&students).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách sinh viên"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"students": students})
}
