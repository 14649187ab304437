package services

import "errors"

// Lỗi nghiệp vụ để controller ánh xạ sang HTTP status.
// Lỗi storage được wrap bằng %w và trả nguyên cho caller (retryable).
var (
	ErrNotEnrolled       = errors.New("sinh viên chưa đăng ký khóa học")
	ErrAlreadyRegistered = errors.New("đã đăng ký khóa học này rồi")
	ErrQuizNotFound      = errors.New("không tìm thấy quiz")
	ErrForbidden         = errors.New("không có quyền truy cập tài nguyên này")
	ErrInvalidQuestion   = errors.New("câu hỏi không hợp lệ")
	ErrDuplicateAttempt  = errors.New("quiz này đã được nộp bài rồi")
)
