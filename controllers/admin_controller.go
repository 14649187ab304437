package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
)

type CreateCourseInput struct {
	Title     string    `json:"title" binding:"required"`
	TeacherID uuid.UUID `json:"teacher_id" binding:"required"`
}

// ListUsers trả toàn bộ người dùng, lọc được theo role (?role=student)
// GET /api/admin/users
func ListUsers(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	query := db.Order("created_at ASC")
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var users []models.User
	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách người dùng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"users": users})
}

// DeleteUser xóa người dùng (cascade enrollment, attempt...)
// DELETE /api/admin/users/:id
func DeleteUser(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	userID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	// Không cho admin tự xóa mình
	if selfID, ok := currentUserID(c); ok && selfID == userID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Không thể tự xóa tài khoản của mình"})
		return
	}

	res := db.Delete(&models.User{}, "id = ?", userID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa người dùng"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy người dùng"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa người dùng thành công"})
}

// AdminListCourses trả tất cả khóa học kèm giảng viên
// GET /api/admin/courses
func AdminListCourses(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var courses []models.Course
	if err := db.Preload("Teacher").Order("created_at ASC").Find(&courses).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể lấy danh sách khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"courses": courses})
}

// CreateCourse tạo khóa học và gán cho một giáo viên
// POST /api/admin/courses
func CreateCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	var input CreateCourseInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var teacher models.User
	if err := db.Where("id = ? AND role = ?", input.TeacherID, models.RoleTeacher).
		First(&teacher).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "teacher_id không phải giảng viên hợp lệ"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể kiểm tra giảng viên"})
		return
	}

	course := models.Course{
		Title:     input.Title,
		TeacherID: input.TeacherID,
	}
	if err := db.Create(&course).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể tạo khóa học"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Tạo khóa học thành công",
		"course":  course,
	})
}

// DeleteCourse xóa khóa học (cascade bài giảng, quiz, enrollment)
// DELETE /api/admin/courses/:id
func DeleteCourse(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	courseID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	res := db.Delete(&models.Course{}, "id = ?", courseID)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể xóa khóa học"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Không tìm thấy khóa học"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Xóa khóa học thành công"})
}

// PlatformStats tổng hợp số liệu toàn hệ thống cho dashboard admin
// GET /api/admin/stats
func PlatformStats(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)

	counts := gin.H{}
	type target struct {
		key   string
		model interface{}
	}
	for _, t := range []target{
		{"courses", &models.Course{}},
		{"lectures", &models.Lecture{}},
		{"notes", &models.Note{}},
		{"quizzes", &models.Quiz{}},
		{"attempts", &models.QuizAttempt{}},
		{"enrollments", &models.Enrollment{}},
		{"watch_events", &models.WatchEvent{}},
	} {
		var n int64
		if err := db.Model(t.model).Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thống kê hệ thống"})
			return
		}
		counts[t.key] = n
	}

	usersByRole := gin.H{}
	for _, role := range []models.UserRole{models.RoleStudent, models.RoleTeacher, models.RoleAdmin} {
		var n int64
		if err := db.Model(&models.User{}).Where("role = ?", role).Count(&n).Error; err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Không thể thống kê người dùng"})
			return
		}
		usersByRole[string(role)] = n
	}
	counts["users"] = usersByRole

	c.JSON(http.StatusOK, counts)
}
