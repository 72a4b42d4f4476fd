package ingest

import (
	"fmt"
	"math"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

// HOD 粗估参数
const (
	hodDurationBonus   = 15  // 平均在岗时长上浮（分钟）
	hodDurationCeiling = 540 // 平均在岗时长上限（分钟）
	hodShortfallShare  = 0.2 // 短工时天数按该比例折算
)

// DurationMinutes 计算一次进出的在岗分钟数
// 任一日期/时间缺失或无法解析时为 0；出早于入时截为 0
func DurationMinutes(inDate, inTime, outDate, outTime string, loc *time.Location) int {
	if inDate == "" || inTime == "" || outDate == "" || outTime == "" {
		return 0
	}
	if loc == nil {
		loc = time.UTC
	}
	const layout = "2006-01-02 15:04"
	in, err := time.ParseInLocation(layout, inDate+" "+inTime, loc)
	if err != nil {
		return 0
	}
	out, err := time.ParseInLocation(layout, outDate+" "+outTime, loc)
	if err != nil {
		return 0
	}
	d := int(math.Round(out.Sub(in).Minutes()))
	if d < 0 {
		return 0
	}
	return d
}

// Cumulative 迟到/早退累计统计
type Cumulative struct {
	GraceIn      int `json:"grace_in"`
	GraceOut     int `json:"grace_out"`
	LateIn       int `json:"late_in"`
	EarlyOut     int `json:"early_out"`
	DoubleGrace  int `json:"double_grace"` // 同一行 grace_in 与 grace_out 同时为真
	Observations int `json:"observations"` // 带任一标记的行数
	CL           int `json:"cl"`           // floor((迟到+早退)/除数)
}

// ComputeCumulative 汇总打卡行的迟到/早退标记
func ComputeCumulative(rows []model.PunchRow, divisor int) Cumulative {
	var c Cumulative
	for _, r := range rows {
		if r.GraceIn {
			c.GraceIn++
		}
		if r.GraceOut {
			c.GraceOut++
		}
		if r.LateIn {
			c.LateIn++
		}
		if r.EarlyOut {
			c.EarlyOut++
		}
		if r.GraceIn && r.GraceOut {
			c.DoubleGrace++
		}
		if r.GraceIn || r.GraceOut || r.LateIn || r.EarlyOut {
			c.Observations++
		}
	}
	c.CL = floorDiv(c.LateIn+c.EarlyOut, divisor)
	return c
}

// DurationSummary 在岗时长与折算假期
type DurationSummary struct {
	AvgMinutes      int    `json:"avg_minutes"`
	NormalizedHours string `json:"normalized_hours"` // 平均时长（小时，两位小数）
	UnderCount      int    `json:"under_count"`      // 0 < 时长 < 短工时阈值 的天数
	GraceCL         int    `json:"grace_cl"`
	ShortfallCL     int    `json:"shortfall_cl"`
	TotalCL         int    `json:"total_cl"`
}

// ComputeDuration 统计在岗时长；只计入正时长
func ComputeDuration(rows []model.PunchRow, shortDayMinutes, divisor int) DurationSummary {
	var (
		sum, n int
		under  int
	)
	for _, r := range rows {
		d := r.DurationMinutes
		if d <= 0 {
			continue
		}
		sum += d
		n++
		if d < shortDayMinutes {
			under++
		}
	}
	avg := 0
	if n > 0 {
		avg = roundHalfUp(float64(sum) / float64(n))
	}
	grace := ComputeCumulative(rows, divisor).CL
	return newDurationSummary(avg, under, grace, divisor)
}

// EstimateHOD 由对应人员的时长统计粗估 HOD 一行
//   - 平均时长上浮 15 分钟并钳制在 [短工时阈值, 540]
//   - 短工时天数取 20%，宽限折算假期记 0
//
// 仅为估算值，并非 HOD 本人的打卡数据
func EstimateHOD(base DurationSummary, shortDayMinutes, divisor int) DurationSummary {
	avg := base.AvgMinutes + hodDurationBonus
	if avg > hodDurationCeiling {
		avg = hodDurationCeiling
	}
	if avg < shortDayMinutes {
		avg = shortDayMinutes
	}
	under := roundHalfUp(float64(base.UnderCount) * hodShortfallShare)
	if under < 0 {
		under = 0
	}
	return newDurationSummary(avg, under, 0, divisor)
}

func newDurationSummary(avg, under, grace, divisor int) DurationSummary {
	shortfall := floorDiv(under, divisor)
	return DurationSummary{
		AvgMinutes:      avg,
		NormalizedHours: fmt.Sprintf("%.2f", float64(avg)/60),
		UnderCount:      under,
		GraceCL:         grace,
		ShortfallCL:     shortfall,
		TotalCL:         grace + shortfall,
	}
}

func floorDiv(n, d int) int {
	if d <= 0 {
		return 0
	}
	return n / d
}
