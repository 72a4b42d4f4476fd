package ingest

import (
	"testing"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

func TestDurationMinutes(t *testing.T) {
	kolkata, err := time.LoadLocation("Asia/Kolkata")
	if err != nil {
		kolkata = time.UTC
	}

	tests := []struct {
		name                         string
		inDate, inTime, outDate, out string
		want                         int
	}{
		{"同日", "2025-08-01", "09:05", "2025-08-01", "17:40", 515},
		{"跨日", "2025-08-01", "22:00", "2025-08-02", "06:00", 480},
		{"出早于入截为0", "2025-08-01", "17:00", "2025-08-01", "09:00", 0},
		{"缺少出时间", "2025-08-01", "09:00", "2025-08-01", "", 0},
		{"缺少入日期", "", "09:00", "2025-08-01", "17:00", 0},
		{"格式错误", "2025-08-01", "9am", "2025-08-01", "17:00", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DurationMinutes(tt.inDate, tt.inTime, tt.outDate, tt.out, kolkata); got != tt.want {
				t.Errorf("期望 %d 分钟，实际 %d", tt.want, got)
			}
		})
	}
}

func TestComputeCumulative(t *testing.T) {
	rows := []model.PunchRow{
		{LateIn: true, GraceIn: true},
		{LateIn: true, GraceIn: true, GraceOut: true},
		{LateIn: true},
		{LateIn: true},
		{},
	}
	c := ComputeCumulative(rows, 4)
	if c.LateIn != 4 {
		t.Errorf("期望 late_in=4，实际 %d", c.LateIn)
	}
	if c.CL != 1 {
		t.Errorf("4 次迟到期望 CL=1，实际 %d", c.CL)
	}
	if c.GraceIn != 2 || c.GraceOut != 1 || c.DoubleGrace != 1 {
		t.Errorf("grace 统计错误: %+v", c)
	}
	if c.Observations != 4 {
		t.Errorf("期望 observations=4，实际 %d", c.Observations)
	}

	c = ComputeCumulative(append(rows, model.PunchRow{EarlyOut: true}, model.PunchRow{EarlyOut: true}, model.PunchRow{EarlyOut: true}, model.PunchRow{EarlyOut: true}), 4)
	if c.CL != 2 {
		t.Errorf("4 次迟到 + 4 次早退期望 CL=2，实际 %d", c.CL)
	}
	if ComputeCumulative(rows, 0).CL != 0 {
		t.Error("除数为0时 CL 应为 0")
	}
}

func TestComputeDuration(t *testing.T) {
	rows := []model.PunchRow{
		{DurationMinutes: 515},
		{DurationMinutes: 400},
		{DurationMinutes: 0},
		{DurationMinutes: 300, LateIn: true},
	}
	d := ComputeDuration(rows, 450, 4)
	if d.AvgMinutes != 405 {
		t.Errorf("期望平均 405 分钟（0 不计入），实际 %d", d.AvgMinutes)
	}
	if d.NormalizedHours != "6.75" {
		t.Errorf("期望 6.75 小时，实际 %s", d.NormalizedHours)
	}
	if d.UnderCount != 2 {
		t.Errorf("期望短工时 2 天，实际 %d", d.UnderCount)
	}
	if d.GraceCL != 0 || d.ShortfallCL != 0 || d.TotalCL != 0 {
		t.Errorf("CL 计算错误: %+v", d)
	}

	var short []model.PunchRow
	for i := 0; i < 9; i++ {
		short = append(short, model.PunchRow{DurationMinutes: 420, EarlyOut: i < 4})
	}
	d = ComputeDuration(short, 450, 4)
	if d.ShortfallCL != 2 || d.GraceCL != 1 || d.TotalCL != 3 {
		t.Errorf("期望 shortfall=2 grace=1 total=3，实际 %+v", d)
	}

	empty := ComputeDuration(nil, 450, 4)
	if empty.AvgMinutes != 0 || empty.NormalizedHours != "0.00" {
		t.Errorf("无数据时期望 0 / 0.00，实际 %+v", empty)
	}
}

func TestEstimateHOD(t *testing.T) {
	tests := []struct {
		name      string
		base      DurationSummary
		wantAvg   int
		wantHours string
		wantUnder int
		wantCL    int
	}{
		{"下限钳制", DurationSummary{AvgMinutes: 405, UnderCount: 2}, 450, "7.50", 0, 0},
		{"上限钳制", DurationSummary{AvgMinutes: 530, UnderCount: 8}, 540, "9.00", 2, 0},
		{"正常上浮", DurationSummary{AvgMinutes: 480, UnderCount: 20}, 495, "8.25", 4, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := EstimateHOD(tt.base, 450, 4)
			if got.AvgMinutes != tt.wantAvg || got.NormalizedHours != tt.wantHours {
				t.Errorf("期望 %d/%s，实际 %d/%s", tt.wantAvg, tt.wantHours, got.AvgMinutes, got.NormalizedHours)
			}
			if got.UnderCount != tt.wantUnder || got.TotalCL != tt.wantCL {
				t.Errorf("期望 under=%d CL=%d，实际 %+v", tt.wantUnder, tt.wantCL, got)
			}
			if got.GraceCL != 0 {
				t.Errorf("HOD 宽限折算假期应为 0，实际 %d", got.GraceCL)
			}
		})
	}
}
