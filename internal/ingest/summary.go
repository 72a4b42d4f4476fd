package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/shubh389/College-ti/internal/model"
)

// CSV 汇总表的列名（表头包含即可，不区分大小写）
const (
	summaryColID         = "employee id"
	summaryColName       = "employee name"
	summaryColDepartment = "department"
	summaryColPresent    = "present"
	summaryColAbsent     = "absent"
	summaryColLeave      = "leave"
)

// SummaryParseResult CSV 汇总表解析结果
type SummaryParseResult struct {
	Rows    []model.SummaryRow
	Skipped int // 缺少工号/姓名/部门或格式错误而跳过的行
}

// ParseSummaryCSV 解析 CSV 汇总表
// 首行为表头；计数列为空或非数字时按 0 处理
func ParseSummaryCSV(r io.Reader) (SummaryParseResult, error) {
	var res SummaryParseResult

	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err == io.EOF {
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("读取 CSV 表头失败: %w", err)
	}
	col := func(name string) int {
		for i, h := range header {
			if strings.Contains(strings.ToLower(strings.TrimSpace(h)), name) {
				return i
			}
		}
		return -1
	}
	idIdx := col(summaryColID)
	nameIdx := col(summaryColName)
	deptIdx := col(summaryColDepartment)
	presentIdx := col(summaryColPresent)
	absentIdx := col(summaryColAbsent)
	leaveIdx := col(summaryColLeave)

	for {
		cells, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				res.Skipped++
				continue
			}
			return res, fmt.Errorf("读取 CSV 失败: %w", err)
		}
		if blankCells(cells) {
			continue
		}

		row := model.SummaryRow{
			ID:         cellAt(cells, idIdx),
			Name:       cellAt(cells, nameIdx),
			Department: strings.ToUpper(cellAt(cells, deptIdx)),
			Present:    countAt(cells, presentIdx),
			Absent:     countAt(cells, absentIdx),
			Leave:      countAt(cells, leaveIdx),
		}
		if row.ID == "" || row.Name == "" || row.Department == "" {
			res.Skipped++
			continue
		}
		res.Rows = append(res.Rows, row)
	}
	return res, nil
}

// SummaryPeople CSV 汇总行 → 待分组人员，考勤由计数展开
func SummaryPeople(rows []model.SummaryRow, window int, today time.Time) []Person {
	people := make([]Person, 0, len(rows))
	for _, r := range rows {
		people = append(people, Person{
			ID:         r.ID,
			Name:       r.Name,
			Department: r.Department,
			Attendance: Distribute(Counts{Present: r.Present, Absent: r.Absent, Leave: r.Leave}, window, today),
		})
	}
	return people
}

// summaryCounts 从表格行读取出勤/缺勤/请假计数；三列都未匹配时 ok=false
func summaryCounts(res *Resolver, row *Row) (Counts, bool) {
	var (
		c     Counts
		found bool
	)
	for _, f := range []struct {
		field Field
		dst   *float64
	}{
		{FieldPresent, &c.Present},
		{FieldAbsent, &c.Absent},
		{FieldLeave, &c.Leave},
	} {
		h, ok := res.Header(row, f.field)
		if !ok {
			continue
		}
		found = true
		*f.dst = parseCount(row.String(h))
	}
	return c, found
}

func cellAt(cells []string, idx int) string {
	if idx < 0 || idx >= len(cells) {
		return ""
	}
	return strings.TrimSpace(cells[idx])
}

func countAt(cells []string, idx int) float64 {
	return parseCount(cellAt(cells, idx))
}

// parseCount 非数字（含空串）按 0 处理
func parseCount(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return nonNegative(f)
}
