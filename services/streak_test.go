package services

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vnkhanh/e-learning-backend/models"
)

var day0 = time.Date(2026, 1, 5, 10, 30, 0, 0, time.UTC)

func TestRecordWatchConsecutiveDays(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Giải tích 1")
	enroll(t, db, student.ID, course.ID)

	for i, want := range []int{1, 2, 3} {
		got, err := RecordWatch(db, student.ID, course.ID, day0.AddDate(0, 0, i), SameDayPreserve)
		if err != nil {
			t.Fatalf("ngày %d: %v", i, err)
		}
		if got != want {
			t.Errorf("ngày %d: streak = %d, muốn %d", i, got, want)
		}
	}

	var enr models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enr).Error; err != nil {
		t.Fatalf("đọc enrollment: %v", err)
	}
	if enr.Streak != 3 {
		t.Errorf("streak lưu trong DB = %d, muốn 3", enr.Streak)
	}
	if enr.LastWatchDate == nil || *enr.LastWatchDate != day0.AddDate(0, 0, 2).Format(DateLayout) {
		t.Errorf("last_watch_date = %v, muốn %s", enr.LastWatchDate, day0.AddDate(0, 0, 2).Format(DateLayout))
	}
}

func TestRecordWatchGapResets(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Vật lý đại cương")
	enroll(t, db, student.ID, course.ID)

	if _, err := RecordWatch(db, student.ID, course.ID, day0, SameDayPreserve); err != nil {
		t.Fatal(err)
	}
	// Bỏ lỡ một ngày -> reset về 1
	got, err := RecordWatch(db, student.ID, course.ID, day0.AddDate(0, 0, 2), SameDayPreserve)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("streak sau gap = %d, muốn 1", got)
	}
}

func TestRecordWatchSameDayPolicies(t *testing.T) {
	tests := []struct {
		name   string
		policy SameDayPolicy
		want   int
	}{
		{"preserve giữ nguyên streak", SameDayPreserve, 2},
		{"reset về 1", SameDayReset, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := newTestDB(t)
			teacher := createUser(t, db, models.RoleTeacher, "gv")
			student := createUser(t, db, models.RoleStudent, "sv")
			course := createCourse(t, db, teacher.ID, "Hóa học")
			enroll(t, db, student.ID, course.ID)

			// Hai ngày liên tiếp -> streak 2, rồi xem lại trong ngày
			if _, err := RecordWatch(db, student.ID, course.ID, day0, tt.policy); err != nil {
				t.Fatal(err)
			}
			if _, err := RecordWatch(db, student.ID, course.ID, day0.AddDate(0, 0, 1), tt.policy); err != nil {
				t.Fatal(err)
			}
			got, err := RecordWatch(db, student.ID, course.ID, day0.AddDate(0, 0, 1), tt.policy)
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("streak xem lại cùng ngày = %d, muốn %d", got, tt.want)
			}
		})
	}
}

func TestRecordWatchClockSkewResets(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Xác suất thống kê")
	enroll(t, db, student.ID, course.ID)

	if _, err := RecordWatch(db, student.ID, course.ID, day0.AddDate(0, 0, 1), SameDayPreserve); err != nil {
		t.Fatal(err)
	}
	// Ngày "hôm nay" lùi về quá khứ (lệch đồng hồ) -> reset, không âm
	got, err := RecordWatch(db, student.ID, course.ID, day0, SameDayPreserve)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("streak khi lệch giờ = %d, muốn 1", got)
	}
}

func TestRecordWatchNotEnrolled(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Triết học")

	_, err := RecordWatch(db, student.ID, course.ID, day0, SameDayPreserve)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err = %v, muốn ErrNotEnrolled", err)
	}

	// Không được để lại watch event nào (atomic)
	var count int64
	db.Model(&models.WatchEvent{}).Count(&count)
	if count != 0 {
		t.Errorf("watch_history có %d dòng, muốn 0", count)
	}
}

func TestRecordWatchConcurrentSameEnrollment(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Hệ điều hành")
	enroll(t, db, student.ID, course.ID)

	if _, err := RecordWatch(db, student.ID, course.ID, day0, SameDayPreserve); err != nil {
		t.Fatal(err)
	}

	// Nhiều request đua nhau cho cùng (student, course) vào ngày hôm sau:
	// CAS chỉ cho một request ăn lần tăng, các request thua retry rồi
	// thấy streak đã là 2 (cùng ngày, preserve)
	const workers = 8
	day1 := day0.AddDate(0, 0, 1)
	var wg sync.WaitGroup
	errs := make([]error, workers)
	streaks := make([]int, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			streaks[i], errs[i] = RecordWatch(db, student.ID, course.ID, day1, SameDayPreserve)
		}(i)
	}
	wg.Wait()

	for i := 0; i < workers; i++ {
		if errs[i] != nil {
			t.Fatalf("goroutine %d: %v", i, errs[i])
		}
		if streaks[i] != 2 {
			t.Errorf("goroutine %d: streak = %d, muốn 2", i, streaks[i])
		}
	}

	var enr models.Enrollment
	if err := db.Where("student_id = ? AND course_id = ?", student.ID, course.ID).First(&enr).Error; err != nil {
		t.Fatalf("đọc enrollment: %v", err)
	}
	if enr.Streak != 2 {
		t.Errorf("streak cuối = %d, muốn 2 (đúng một lần tăng)", enr.Streak)
	}
	if enr.LastWatchDate == nil || *enr.LastWatchDate != day1.Format(DateLayout) {
		t.Errorf("last_watch_date = %v, muốn %s", enr.LastWatchDate, day1.Format(DateLayout))
	}

	// Mỗi call thành công vẫn append một dòng history
	var watches int64
	db.Model(&models.WatchEvent{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&watches)
	if watches != workers+1 {
		t.Errorf("watch_history có %d dòng, muốn %d", watches, workers+1)
	}
}

func TestRecordWatchAppendsHistoryEveryCall(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	course := createCourse(t, db, teacher.ID, "Lập trình Go")
	enroll(t, db, student.ID, course.ID)

	// 3 lần trong cùng một ngày vẫn là 3 dòng log (append-only, không dedup)
	for i := 0; i < 3; i++ {
		if _, err := RecordWatch(db, student.ID, course.ID, day0, SameDayPreserve); err != nil {
			t.Fatal(err)
		}
	}

	var count int64
	db.Model(&models.WatchEvent{}).
		Where("student_id = ? AND course_id = ?", student.ID, course.ID).
		Count(&count)
	if count != 3 {
		t.Errorf("watch_history có %d dòng, muốn 3", count)
	}
}

func TestRecordWatchIndependentPerCourse(t *testing.T) {
	db := newTestDB(t)
	teacher := createUser(t, db, models.RoleTeacher, "gv")
	student := createUser(t, db, models.RoleStudent, "sv")
	c1 := createCourse(t, db, teacher.ID, "Khóa A")
	c2 := createCourse(t, db, teacher.ID, "Khóa B")
	enroll(t, db, student.ID, c1.ID)
	enroll(t, db, student.ID, c2.ID)

	for i := 0; i < 3; i++ {
		if _, err := RecordWatch(db, student.ID, c1.ID, day0.AddDate(0, 0, i), SameDayPreserve); err != nil {
			t.Fatal(err)
		}
	}
	got, err := RecordWatch(db, student.ID, c2.ID, day0.AddDate(0, 0, 2), SameDayPreserve)
	if err != nil {
		t.Fatal(err)
	}
	if got != 1 {
		t.Errorf("streak khóa B = %d, muốn 1 (độc lập với khóa A)", got)
	}
}

func TestNextStreak(t *testing.T) {
	d := func(s string) *string { return &s }
	tests := []struct {
		name    string
		current int
		last    *string
		today   string
		policy  SameDayPolicy
		want    int
	}{
		{"lần đầu", 0, nil, "2026-01-05", SameDayPreserve, 1},
		{"liên tiếp", 4, d("2026-01-04"), "2026-01-05", SameDayPreserve, 5},
		{"qua tháng", 2, d("2026-01-31"), "2026-02-01", SameDayPreserve, 3},
		{"gap 2 ngày", 7, d("2026-01-03"), "2026-01-05", SameDayPreserve, 1},
		{"cùng ngày preserve", 3, d("2026-01-05"), "2026-01-05", SameDayPreserve, 3},
		{"cùng ngày reset", 3, d("2026-01-05"), "2026-01-05", SameDayReset, 1},
		{"lùi ngày", 3, d("2026-01-06"), "2026-01-05", SameDayPreserve, 1},
		{"last hỏng", 3, d("hôm-qua"), "2026-01-05", SameDayPreserve, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NextStreak(tt.current, tt.last, tt.today, tt.policy); got != tt.want {
				t.Errorf("NextStreak() = %d, muốn %d", got, tt.want)
			}
		})
	}
}

func TestRecordWatchUnknownIDs(t *testing.T) {
	db := newTestDB(t)
	_, err := RecordWatch(db, uuid.New(), uuid.New(), day0, SameDayPreserve)
	if !errors.Is(err, ErrNotEnrolled) {
		t.Fatalf("err = %v, muốn ErrNotEnrolled", err)
	}
}
