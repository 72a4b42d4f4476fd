package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/ingest"
)

// ── 导出模块业务错误 ──

var (
	ErrExportGenerateFail = errors.New("生成 Excel 文件失败")
)

// ExportService 导出业务接口
//
// 设计说明：
//   - 四类报表均按当前筛选条件计算，导出为单 Sheet 的 .xlsx
//   - 导出以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
//   - 文件名为 <类型>-YYYY-MM-DD.xlsx，日期取配置时区的当天
type ExportService interface {
	// ExportPunches 打卡明细
	ExportPunches(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)
	// ExportCumulative 累计统计（单行）
	ExportCumulative(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)
	// ExportDuration 时长与折算假期（教职工一行 + HOD 粗估一行）
	ExportDuration(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)
	// ExportDepartmentPeople 部门人员
	ExportDepartmentPeople(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)
}

type exportService struct {
	attendance AttendanceService
	logger     *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(attendance AttendanceService, logger *zap.Logger) ExportService {
	return &exportService{attendance: attendance, logger: logger}
}

// sheetSpec 单 Sheet 表格：表头 + 数据行
type sheetSpec struct {
	name    string
	headers []string
	widths  []float64
	rows    [][]interface{}
}

func (s *exportService) ExportPunches(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error) {
	punches := s.attendance.FilterPunches(ctx, q)
	sheet := sheetSpec{
		name: "Detailed Punches",
		headers: []string{
			"Card Id", "Employee ID", "Employee Name", "In Date", "In Time",
			"Out Date", "Out Time", "Department", "College",
		},
		widths: []float64{12, 14, 24, 12, 10, 12, 10, 18, 18},
		rows:   make([][]interface{}, 0, len(punches)),
	}
	for _, p := range punches {
		sheet.rows = append(sheet.rows, []interface{}{
			p.CardID, p.EmpID, p.Name, p.InDate, p.InTime,
			p.OutDate, p.OutTime, p.Department, p.College,
		})
	}
	return s.write(sheet, "detailed-punches")
}

func (s *exportService) ExportCumulative(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error) {
	c := s.attendance.Cumulative(ctx, q).Cumulative
	sheet := sheetSpec{
		name: "Cumulative",
		headers: []string{
			"Grace In", "Grace Out", "Late In", "Early Out",
			"# Late In (cumulative)", "# Early Out (cum)", "# Double Grace (cumulative)",
			"# Observations (cumulative)", "# CLs (cumulative)",
		},
		widths: []float64{10, 10, 10, 10, 22, 18, 26, 26, 18},
		rows: [][]interface{}{{
			c.GraceIn, c.GraceOut, c.LateIn, c.EarlyOut,
			c.LateIn, c.EarlyOut, c.DoubleGrace, c.Observations, c.CL,
		}},
	}
	return s.write(sheet, "cumulative")
}

func (s *exportService) ExportDuration(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error) {
	d := s.attendance.Duration(ctx, q)
	sheet := sheetSpec{
		name: "Duration & CL",
		headers: []string{
			"Role", "Duration", "Normalized Duration", "Avg Monthly Duration",
			"Avg <7.5h", "Addnl CL for Average Duration", "Total CL",
		},
		widths: []float64{16, 16, 20, 22, 10, 30, 10},
	}
	sheet.rows = [][]interface{}{
		durationCells("Faculty (Excel)", d.Faculty),
		durationCells("HOD (rough)", d.HOD),
	}
	return s.write(sheet, "duration-cl")
}

func (s *exportService) ExportDepartmentPeople(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error) {
	groups := s.attendance.DepartmentPeople(ctx, q)
	sheet := sheetSpec{
		name:    "Dept People",
		headers: []string{"Department", "HOD", "People Count", "People"},
		widths:  []float64{22, 24, 14, 80},
		rows:    make([][]interface{}, 0, len(groups)),
	}
	for _, g := range groups {
		sheet.rows = append(sheet.rows, []interface{}{g.Department, g.HOD, g.Count, strings.Join(g.Names, ", ")})
	}
	return s.write(sheet, "dept-people")
}

// ── 写出 ──

func (s *exportService) write(sheet sheetSpec, prefix string) (*bytes.Buffer, string, error) {
	f := excelize.NewFile()
	defer f.Close()

	idx, err := f.NewSheet(sheet.name)
	if err != nil {
		s.logger.Error("创建 Sheet 失败", zap.String("sheet", sheet.name), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	if sheet.name != "Sheet1" {
		_ = f.DeleteSheet("Sheet1")
	}

	for i, w := range sheet.widths {
		col := colName(i)
		_ = f.SetColWidth(sheet.name, col, col, w)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	// 表头
	for i, h := range sheet.headers {
		_ = f.SetCellValue(sheet.name, cell(colName(i), 1), h)
	}
	if len(sheet.headers) > 0 {
		_ = f.SetCellStyle(sheet.name, "A1", cell(colName(len(sheet.headers)-1), 1), headerStyle)
	}

	// 数据行
	for r, row := range sheet.rows {
		for c, v := range row {
			_ = f.SetCellValue(sheet.name, cell(colName(c), r+2), v)
		}
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.String("sheet", sheet.name), zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	filename := fmt.Sprintf("%s-%s.xlsx", prefix, s.attendance.Today().Format("2006-01-02"))
	s.logger.Info("报表导出完成",
		zap.String("file", filename),
		zap.Int("rows", len(sheet.rows)),
		zap.Int("bytes", buf.Len()),
	)
	return buf, filename, nil
}

// ── 辅助函数 ──

func durationCells(role string, d ingest.DurationSummary) []interface{} {
	return []interface{}{
		role,
		fmt.Sprintf("%d min (avg)", d.AvgMinutes),
		d.NormalizedHours + " h",
		d.NormalizedHours + " h",
		d.UnderCount,
		d.ShortfallCL,
		d.TotalCL,
	}
}

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
