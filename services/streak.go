package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/vnkhanh/e-learning-backend/models"
)

// Định dạng ngày lịch dùng cho streak (không phải timestamp)
const DateLayout = "2006-01-02"

// SameDayPolicy quyết định hành vi khi sinh viên xem lại trong cùng một ngày:
// giữ nguyên streak hiện tại hoặc reset về 1.
type SameDayPolicy string

const (
	SameDayPreserve SameDayPolicy = "preserve"
	SameDayReset    SameDayPolicy = "reset"
)

// SameDayPolicyFromEnv đọc STREAK_SAME_DAY_POLICY, mặc định "preserve".
func SameDayPolicyFromEnv() SameDayPolicy {
	if os.Getenv("STREAK_SAME_DAY_POLICY") == string(SameDayReset) {
		return SameDayReset
	}
	return SameDayPreserve
}

var errStreakConflict = errors.New("streak bị cập nhật đồng thời")

const streakRetries = 3

// RecordWatch ghi một lần xem và cập nhật streak của (studentID, courseID).
// Toàn bộ chạy trong một transaction; bước cập nhật enrollment là
// compare-and-swap trên (streak, last_watch_date) nên hai request đồng thời
// cho cùng một cặp không thể cùng ăn một lần tăng (lost update).
// Trả về streak mới.
func RecordWatch(db *gorm.DB, studentID, courseID uuid.UUID, today time.Time, policy SameDayPolicy) (int, error) {
	day := today.Format(DateLayout)
	var lastErr error
	for i := 0; i < streakRetries; i++ {
		streak, err := recordWatchOnce(db, studentID, courseID, day, policy)
		if errors.Is(err, errStreakConflict) {
			lastErr = err
			continue
		}
		return streak, err
	}
	return 0, fmt.Errorf("cập nhật streak thất bại sau %d lần thử: %w", streakRetries, lastErr)
}

func recordWatchOnce(db *gorm.DB, studentID, courseID uuid.UUID, day string, policy SameDayPolicy) (int, error) {
	newStreak := 0
	err := db.Transaction(func(tx *gorm.DB) error {
		var enr models.Enrollment
		if err := tx.Where("student_id = ? AND course_id = ?", studentID, courseID).First(&enr).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotEnrolled
			}
			return fmt.Errorf("truy vấn enrollment: %w", err)
		}

		// Append-only log, kể cả xem nhiều lần trong ngày
		event := models.WatchEvent{
			StudentID: studentID,
			CourseID:  courseID,
			WatchDate: day,
		}
		if err := tx.Create(&event).Error; err != nil {
			return fmt.Errorf("ghi watch history: %w", err)
		}

		newStreak = NextStreak(enr.Streak, enr.LastWatchDate, day, policy)

		upd := tx.Model(&models.Enrollment{}).
			Where("id = ? AND streak = ?", enr.ID, enr.Streak)
		if enr.LastWatchDate == nil {
			upd = upd.Where("last_watch_date IS NULL")
		} else {
			upd = upd.Where("last_watch_date = ?", *enr.LastWatchDate)
		}
		res := upd.Updates(map[string]interface{}{
			"streak":          newStreak,
			"last_watch_date": day,
		})
		if res.Error != nil {
			return fmt.Errorf("cập nhật streak: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			// Một request khác đã ghi trước, rollback cả watch event rồi thử lại
			return errStreakConflict
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return newStreak, nil
}

// NextStreak tính streak mới theo khoảng cách ngày lịch:
// chưa có last_watch_date -> 1; cách đúng 1 ngày -> tăng;
// cùng ngày -> theo policy; còn lại (gap, lệch giờ về quá khứ) -> 1.
func NextStreak(current int, lastWatchDate *string, today string, policy SameDayPolicy) int {
	if lastWatchDate == nil {
		return 1
	}
	diff, err := diffDays(*lastWatchDate, today)
	if err != nil {
		return 1
	}
	switch {
	case diff == 1:
		return current + 1
	case diff == 0 && policy == SameDayPreserve && current > 0:
		return current
	default:
		return 1
	}
}

func diffDays(from, to string) (int, error) {
	f, err := time.Parse(DateLayout, from)
	if err != nil {
		return 0, err
	}
	t, err := time.Parse(DateLayout, to)
	if err != nil {
		return 0, err
	}
	return int(t.Sub(f).Hours() / 24), nil
}
