package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/pkg/response"
)

// ReportHandler 统计报表 HTTP 处理器
type ReportHandler struct {
	svc service.AttendanceService
}

// NewReportHandler 创建 ReportHandler
func NewReportHandler(svc service.AttendanceService) *ReportHandler {
	return &ReportHandler{svc: svc}
}

// Cumulative 迟到/早退累计统计
// GET /api/v1/reports/cumulative
func (h *ReportHandler) Cumulative(c *gin.Context) {
	q, ok := bindPunchQuery(c)
	if !ok {
		return
	}
	response.OK(c, h.svc.Cumulative(c.Request.Context(), q))
}

// Duration 在岗时长与折算假期
// GET /api/v1/reports/duration
func (h *ReportHandler) Duration(c *gin.Context) {
	q, ok := bindPunchQuery(c)
	if !ok {
		return
	}
	response.OK(c, h.svc.Duration(c.Request.Context(), q))
}

// DepartmentPeople 按部门汇总打卡人员
// GET /api/v1/reports/department-people
func (h *ReportHandler) DepartmentPeople(c *gin.Context) {
	q, ok := bindPunchQuery(c)
	if !ok {
		return
	}
	response.OK(c, gin.H{"list": h.svc.DepartmentPeople(c.Request.Context(), q)})
}

// Status 当前数据快照概况
// GET /api/v1/status
func (h *ReportHandler) Status(c *gin.Context) {
	response.OK(c, h.svc.Snapshot(c.Request.Context()))
}

// bindPunchQuery 绑定并校验筛选条件；失败时已写入 400 响应
func bindPunchQuery(c *gin.Context) (*dto.PunchQuery, bool) {
	var q dto.PunchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return nil, false
	}
	if !validRange(&q) {
		response.BadRequest(c, 18001, "开始日期不能晚于结束日期")
		return nil, false
	}
	return &q, true
}

// validRange from/to 均为 YYYY-MM-DD，可直接按字符串比较
func validRange(q *dto.PunchQuery) bool {
	return q.From == "" || q.To == "" || q.From <= q.To
}
