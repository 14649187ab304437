package services

import (
	"fmt"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/vnkhanh/e-learning-backend/models"
)

// newTestDB mở một sqlite in-memory riêng cho từng test
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	if err != nil {
		t.Fatalf("mở sqlite in-memory: %v", err)
	}

	if err := db.AutoMigrate(
		&models.User{},
		&models.Course{},
		&models.Lecture{},
		&models.Note{},
		&models.Enrollment{},
		&models.WatchEvent{},
		&models.Quiz{},
		&models.QuizQuestion{},
		&models.QuizAttempt{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createUser(t *testing.T, db *gorm.DB, role models.UserRole, name string) models.User {
	t.Helper()
	user := models.User{
		Username: fmt.Sprintf("%s-%s", name, uuid.NewString()[:8]),
		Password: "x",
		Name:     name,
		Role:     role,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("tạo user: %v", err)
	}
	return user
}

func createCourse(t *testing.T, db *gorm.DB, teacherID uuid.UUID, title string) models.Course {
	t.Helper()
	course := models.Course{Title: title, TeacherID: teacherID}
	if err := db.Create(&course).Error; err != nil {
		t.Fatalf("tạo course: %v", err)
	}
	return course
}

func enroll(t *testing.T, db *gorm.DB, studentID, courseID uuid.UUID) models.Enrollment {
	t.Helper()
	e := models.Enrollment{StudentID: studentID, CourseID: courseID}
	if err := db.Create(&e).Error; err != nil {
		t.Fatalf("tạo enrollment: %v", err)
	}
	return e
}
