package dto

import (
	"strings"

	"github.com/shubh389/College-ti/internal/ingest"
)

// ── 考勤模块 DTO ──

// DepartmentListRequest 部门列表查询参数
type DepartmentListRequest struct {
	Code string `form:"code" binding:"omitempty,max=20"`
}

// PersonPunchesRequest 个人打卡明细查询参数
type PersonPunchesRequest struct {
	Name string `form:"name" binding:"required,max=100"`
}

// PunchQuery 打卡明细筛选条件（报表与导出共用）
type PunchQuery struct {
	Department string `form:"department" binding:"omitempty,max=100"`
	Search     string `form:"search"     binding:"omitempty,max=100"`
	From       string `form:"from"       binding:"omitempty,datetime=2006-01-02"`
	To         string `form:"to"         binding:"omitempty,datetime=2006-01-02"`
}

// Filter 转换为流水线筛选条件
func (q *PunchQuery) Filter() ingest.PunchFilter {
	if q == nil {
		return ingest.PunchFilter{}
	}
	return ingest.PunchFilter{
		Department: strings.TrimSpace(q.Department),
		Search:     strings.TrimSpace(q.Search),
		From:       q.From,
		To:         q.To,
	}
}

// PunchListRequest 打卡明细分页查询
type PunchListRequest struct {
	PunchQuery
	PaginationRequest
}
