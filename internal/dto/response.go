package dto

import (
	"time"

	"github.com/shubh389/College-ti/internal/ingest"
	"github.com/shubh389/College-ti/internal/model"
)

// ── 导入模块响应 ──

// ImportResponse 一次导入/同步的结果
type ImportResponse struct {
	SessionID   string        `json:"session_id"`
	Kind        string        `json:"kind"` // roster / summary / workbook / sync
	Source      string        `json:"source,omitempty"`
	Provider    string        `json:"provider,omitempty"` // 打卡表解码器
	Departments int           `json:"departments"`
	Faculties   int           `json:"faculties"`
	Report      ingest.Report `json:"report"`
	Warnings    []string      `json:"warnings,omitempty"`
	BuiltAt     time.Time     `json:"built_at"`
}

// SnapshotResponse 当前数据快照概况
type SnapshotResponse struct {
	SessionID   string        `json:"session_id"`
	Departments int           `json:"departments"`
	Faculties   int           `json:"faculties"`
	PunchRows   int           `json:"punch_rows"`
	People      int           `json:"people"` // 打卡表中不同姓名数
	Report      ingest.Report `json:"report"`
	BuiltAt     time.Time     `json:"built_at"`
}

// ── 部门模块响应 ──

// DepartmentSummaryResponse 部门列表项
type DepartmentSummaryResponse struct {
	ID           string `json:"id"`
	Code         string `json:"code"`
	Name         string `json:"name"`
	HOD          string `json:"hod"`
	FacultyCount int    `json:"faculty_count"`
}

// ── 报表模块响应 ──

// PersonPunchesResponse 个人打卡明细
type PersonPunchesResponse struct {
	Name  string           `json:"name"`
	Count int              `json:"count"`
	Rows  []model.PunchRow `json:"rows"`
}

// CumulativeResponse 累计统计报表
type CumulativeResponse struct {
	Rows       int               `json:"rows"` // 参与统计的打卡行数
	Cumulative ingest.Cumulative `json:"cumulative"`
}

// DurationResponse 时长与折算假期报表
type DurationResponse struct {
	Rows    int                    `json:"rows"`
	Faculty ingest.DurationSummary `json:"faculty"`
	HOD     ingest.DurationSummary `json:"hod"` // 粗估值
}

// ── 分页请求 ──

// PaginationRequest 通用分页参数
type PaginationRequest struct {
	Page     int `form:"page"      binding:"omitempty,min=1"`
	PageSize int `form:"page_size" binding:"omitempty,min=1,max=500"`
}

// GetPage 获取页码（含默认值）
func (p *PaginationRequest) GetPage() int {
	if p.Page <= 0 {
		return 1
	}
	return p.Page
}

// GetPageSize 获取每页数量（含默认值）
func (p *PaginationRequest) GetPageSize() int {
	if p.PageSize <= 0 {
		return 50
	}
	return p.PageSize
}

// GetOffset 计算偏移量
func (p *PaginationRequest) GetOffset() int {
	return (p.GetPage() - 1) * p.GetPageSize()
}
