package ingest

import (
	"math"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

const dateLayout = "2006-01-02"

// Counts 汇总表中的出勤/缺勤/请假计数
type Counts struct {
	Present float64
	Absent  float64
	Leave   float64
}

// Total 三项之和（负数按 0 计）
func (c Counts) Total() float64 {
	return nonNegative(c.Present) + nonNegative(c.Absent) + nonNegative(c.Leave)
}

// Distribute 将汇总计数按比例缩放到 window 天并展开为逐日记录
//   - 日期为 today-(window-1) … today，升序
//   - 顺序为 Present 连续段、Absent 连续段、On Leave 补齐剩余
//   - 四舍五入溢出时先截 Absent 再截 Present，保证恰好 window 条
func Distribute(c Counts, window int, today time.Time) []model.AttendanceRecord {
	if window <= 0 {
		return nil
	}
	present, absent := nonNegative(c.Present), nonNegative(c.Absent)

	scale := 1.0
	if total := c.Total(); total > 0 {
		scale = float64(window) / total
	}
	p := roundHalfUp(present * scale)
	a := roundHalfUp(absent * scale)
	if p > window {
		p = window
	}
	if p+a > window {
		a = window - p
	}

	dates := windowDates(window, today)
	out := make([]model.AttendanceRecord, window)
	for i := range out {
		status := model.StatusOnLeave
		switch {
		case i < p:
			status = model.StatusPresent
		case i < p+a:
			status = model.StatusAbsent
		}
		out[i] = model.AttendanceRecord{Date: dates[i], Status: status}
	}
	return out
}

// PlaceholderAttendance 无汇总数据时的确定性占位考勤
// 第 i 天（i=0 为今天）按 (i*17+7)%10 取值：<7 出勤，<9 缺勤，其余请假
func PlaceholderAttendance(window int, today time.Time) []model.AttendanceRecord {
	if window <= 0 {
		return nil
	}
	dates := windowDates(window, today)
	out := make([]model.AttendanceRecord, window)
	for i := 0; i < window; i++ {
		r := (i*17 + 7) % 10
		status := model.StatusOnLeave
		switch {
		case r < 7:
			status = model.StatusPresent
		case r < 9:
			status = model.StatusAbsent
		}
		out[window-1-i] = model.AttendanceRecord{Date: dates[window-1-i], Status: status}
	}
	return out
}

// windowDates 返回以 today 结尾的 n 个连续日期（升序）
func windowDates(n int, today time.Time) []string {
	y, m, d := today.Date()
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = time.Date(y, m, d-(n-1-i), 0, 0, 0, 0, today.Location()).Format(dateLayout)
	}
	return out
}

func roundHalfUp(x float64) int {
	return int(math.Floor(x + 0.5))
}

func nonNegative(x float64) float64 {
	if x < 0 || math.IsNaN(x) {
		return 0
	}
	return x
}
