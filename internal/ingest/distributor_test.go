package ingest

import (
	"testing"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

var testToday = time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

func countStatuses(records []model.AttendanceRecord) (p, a, l int) {
	for _, r := range records {
		switch r.Status {
		case model.StatusPresent:
			p++
		case model.StatusAbsent:
			a++
		case model.StatusOnLeave:
			l++
		}
	}
	return
}

func TestDistribute_ScalesToWindow(t *testing.T) {
	records := Distribute(Counts{Present: 7, Absent: 2, Leave: 1}, 14, testToday)
	if len(records) != 14 {
		t.Fatalf("期望 14 条记录，实际 %d", len(records))
	}
	p, a, l := countStatuses(records)
	if p != 10 || a != 3 || l != 1 {
		t.Errorf("期望 10/3/1，实际 %d/%d/%d", p, a, l)
	}
	if records[0].Date != "2025-08-07" || records[13].Date != "2025-08-20" {
		t.Errorf("日期范围错误: %s … %s", records[0].Date, records[13].Date)
	}
	// 连续段：Present → Absent → On Leave
	if records[9].Status != model.StatusPresent || records[10].Status != model.StatusAbsent || records[13].Status != model.StatusOnLeave {
		t.Errorf("状态分段错误: %+v", records)
	}
}

func TestDistribute_Proportions(t *testing.T) {
	tests := []Counts{
		{Present: 18, Absent: 3, Leave: 2},
		{Present: 0, Absent: 5, Leave: 5},
		{Present: 21, Absent: 0, Leave: 0},
		{Present: 1, Absent: 1, Leave: 1},
		{Present: 3.5, Absent: 1.5, Leave: 0},
	}
	const window = 14
	for _, c := range tests {
		records := Distribute(c, window, testToday)
		if len(records) != window {
			t.Errorf("%+v: 期望 %d 条记录，实际 %d", c, window, len(records))
			continue
		}
		p, a, _ := countStatuses(records)
		total := c.Total()
		wantP := c.Present * window / total
		wantA := c.Absent * window / total
		if diff := float64(p) - wantP; diff > 1 || diff < -1 {
			t.Errorf("%+v: Present 偏差过大，期望约 %.2f，实际 %d", c, wantP, p)
		}
		if diff := float64(a) - wantA; diff > 1 || diff < -1 {
			t.Errorf("%+v: Absent 偏差过大，期望约 %.2f，实际 %d", c, wantA, a)
		}
	}
}

func TestDistribute_EdgeCases(t *testing.T) {
	t.Run("计数全为0", func(t *testing.T) {
		records := Distribute(Counts{}, 14, testToday)
		p, a, l := countStatuses(records)
		if p != 0 || a != 0 || l != 14 {
			t.Errorf("期望全部为 On Leave，实际 %d/%d/%d", p, a, l)
		}
	})
	t.Run("四舍五入溢出时截断", func(t *testing.T) {
		records := Distribute(Counts{Present: 1, Absent: 1}, 1, testToday)
		if len(records) != 1 {
			t.Fatalf("期望恰好 1 条记录，实际 %d", len(records))
		}
		if records[0].Status != model.StatusPresent {
			t.Errorf("期望保留 Present，实际 %s", records[0].Status)
		}
	})
	t.Run("负数按0处理", func(t *testing.T) {
		records := Distribute(Counts{Present: -3, Absent: 7}, 14, testToday)
		p, a, _ := countStatuses(records)
		if p != 0 || a != 14 {
			t.Errorf("期望 0/14，实际 %d/%d", p, a)
		}
	})
	t.Run("窗口为0", func(t *testing.T) {
		if records := Distribute(Counts{Present: 1}, 0, testToday); records != nil {
			t.Errorf("期望 nil，实际 %+v", records)
		}
	})
}

func TestPlaceholderAttendance(t *testing.T) {
	records := PlaceholderAttendance(14, testToday)
	if len(records) != 14 {
		t.Fatalf("期望 14 条记录，实际 %d", len(records))
	}
	if records[13].Date != "2025-08-20" || records[0].Date != "2025-08-07" {
		t.Errorf("日期范围错误: %s … %s", records[0].Date, records[13].Date)
	}

	// i=0（今天）: r=7 → Absent；i=1: r=4 → Present；i=6: r=9 → On Leave
	if records[13].Status != model.StatusAbsent {
		t.Errorf("今天期望 Absent，实际 %s", records[13].Status)
	}
	if records[12].Status != model.StatusPresent {
		t.Errorf("昨天期望 Present，实际 %s", records[12].Status)
	}
	if records[7].Status != model.StatusOnLeave {
		t.Errorf("6 天前期望 On Leave，实际 %s", records[7].Status)
	}

	again := PlaceholderAttendance(14, testToday)
	for i := range records {
		if records[i] != again[i] {
			t.Fatalf("占位考勤应是确定性的，第 %d 天不同", i)
		}
	}
}

func TestWindowDates_MonthBoundary(t *testing.T) {
	dates := windowDates(3, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	want := []string{"2025-02-27", "2025-02-28", "2025-03-01"}
	for i := range want {
		if dates[i] != want[i] {
			t.Errorf("第 %d 天期望 %s，实际 %s", i, want[i], dates[i])
		}
	}
}
