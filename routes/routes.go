package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/controllers"
	"github.com/vnkhanh/e-learning-backend/middleware"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
	}

	student := api.Group("/student")
	{
		student.Use(middleware.AuthMiddleware(), middleware.RequireRoles("student"))

		student.GET("/courses", controllers.ListCourses)
		student.GET("/my-courses", controllers.MyCourses)
		student.POST("/courses/register", controllers.RegisterCourse)
		student.POST("/courses/drop", controllers.DropCourse)
		student.POST("/courses/:id/watch", controllers.RecordWatch)
		student.GET("/courses/:id/details", controllers.CourseDetails)
		student.GET("/courses/:id/students", controllers.CourseClassmates)
	}

	teacher := api.Group("/teacher")
	{
		teacher.Use(middleware.AuthMiddleware(), middleware.RequireRoles("teacher"))

		teacher.GET("/courses", controllers.TeacherCourses)
		teacher.POST("/courses/:id/lectures", controllers.UploadLecture)
		teacher.POST("/courses/:id/notes", controllers.UploadNote)
		teacher.GET("/courses/:id/lectures", controllers.CourseLectures)
		teacher.GET("/courses/:id/notes", controllers.CourseNotes)
		teacher.GET("/courses/:id/students", controllers.CourseStudents)
		teacher.GET("/courses/:id/stats", controllers.CourseStats)
	}

	// Quiz: mọi role đã đăng nhập; quyền sở hữu kiểm tra trong service
	quiz := api.Group("")
	{
		quiz.Use(middleware.AuthMiddleware())

		quiz.POST("/courses/:id/quizzes", middleware.RequireRoles("teacher"), controllers.CreateQuiz)
		quiz.GET("/courses/:id/quizzes", controllers.ListCourseQuizzes)
		quiz.GET("/quizzes/:id", controllers.GetQuiz)
		quiz.POST("/quizzes/:id/submit", middleware.RequireRoles("student"), controllers.SubmitQuiz)
		quiz.GET("/quizzes/:id/teacher", middleware.RequireRoles("teacher"), controllers.GetQuizTeacher)
		quiz.GET("/quizzes/:id/attempts", middleware.RequireRoles("teacher"), controllers.ListQuizAttempts)
	}

	admin := api.Group("/admin")
	{
		admin.Use(middleware.AuthMiddleware(), middleware.RequireRoles("admin"))

		admin.GET("/users", controllers.ListUsers)
		admin.DELETE("/users/:id", controllers.DeleteUser)
		admin.GET("/courses", controllers.AdminListCourses)
		admin.POST("/courses", controllers.CreateCourse)
		admin.DELETE("/courses/:id", controllers.DeleteCourse)
		admin.GET("/stats", controllers.PlatformStats)
	}

	return r
}
