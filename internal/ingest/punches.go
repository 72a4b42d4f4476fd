package ingest

import (
	"strings"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

// PunchStats 打卡行映射统计
type PunchStats struct {
	Rows                  int           // 输入行数
	Mapped                int           // 有姓名、被保留的行数
	Skipped               int           // 无姓名而丢弃的行数
	UnresolvedColumns     map[Field]int // 字段 → 未匹配到列的行数
	UnparseableTimestamps int           // 有值但无法识别的日期/时间单元格数
}

// MapPunchRow 将一行表格映射为打卡记录
//   - 未匹配的字段按空串处理
//   - late_in/early_out 无专用列时分别沿用 grace_in/grace_out
func MapPunchRow(res *Resolver, row *Row, loc *time.Location) model.PunchRow {
	p, _ := mapPunchRow(res, row, loc)
	return p
}

func mapPunchRow(res *Resolver, row *Row, loc *time.Location) (model.PunchRow, int) {
	bad := 0
	date := func(f Field) string {
		v, ok := res.Value(row, f)
		if !ok {
			return ""
		}
		out := ParseDate(v)
		if out == "" && strings.TrimSpace(cellText(v)) != "" {
			bad++
		}
		return out
	}
	clock := func(f Field) string {
		v, ok := res.Value(row, f)
		if !ok {
			return ""
		}
		out := ParseTime(v)
		if out == "" && strings.TrimSpace(cellText(v)) != "" {
			bad++
		}
		return out
	}
	flag := func(f Field) (bool, bool) {
		v, ok := res.Value(row, f)
		if !ok {
			return false, false
		}
		return ToBool(v), true
	}

	p := model.PunchRow{
		CardID:     res.String(row, FieldCardID),
		EmpID:      res.String(row, FieldEmpID),
		Name:       res.String(row, FieldName),
		Department: res.String(row, FieldDepartment),
		College:    res.String(row, FieldCollege),
		InDate:     date(FieldInDate),
		InTime:     clock(FieldInTime),
		OutDate:    date(FieldOutDate),
		OutTime:    clock(FieldOutTime),
	}
	p.GraceIn, _ = flag(FieldGraceIn)
	p.GraceOut, _ = flag(FieldGraceOut)
	if v, ok := flag(FieldLateIn); ok {
		p.LateIn = v
	} else {
		p.LateIn = p.GraceIn
	}
	if v, ok := flag(FieldEarlyOut); ok {
		p.EarlyOut = v
	} else {
		p.EarlyOut = p.GraceOut
	}
	p.DurationMinutes = DurationMinutes(p.InDate, p.InTime, p.OutDate, p.OutTime, loc)
	return p, bad
}

// MapPunchRows 批量映射打卡行，丢弃无姓名的行
func MapPunchRows(res *Resolver, rows []*Row, loc *time.Location) ([]model.PunchRow, PunchStats) {
	stats := PunchStats{Rows: len(rows), UnresolvedColumns: make(map[Field]int)}
	out := make([]model.PunchRow, 0, len(rows))
	for _, row := range rows {
		for _, f := range PunchFields {
			if _, ok := res.Header(row, f); !ok {
				stats.UnresolvedColumns[f]++
			}
		}
		p, bad := mapPunchRow(res, row, loc)
		stats.UnparseableTimestamps += bad
		if p.Name == "" {
			stats.Skipped++
			continue
		}
		out = append(out, p)
	}
	stats.Mapped = len(out)
	return out, stats
}
