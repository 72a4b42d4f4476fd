package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/pkg/response"
)

// PunchHandler 打卡明细 HTTP 处理器
type PunchHandler struct {
	svc service.AttendanceService
}

// NewPunchHandler 创建 PunchHandler
func NewPunchHandler(svc service.AttendanceService) *PunchHandler {
	return &PunchHandler{svc: svc}
}

// ListPunches 分页查询打卡明细
// GET /api/v1/punches?department=&search=&from=&to=&page=&page_size=
func (h *PunchHandler) ListPunches(c *gin.Context) {
	var req dto.PunchListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}
	if !validRange(&req.PunchQuery) {
		response.BadRequest(c, 18001, "开始日期不能晚于结束日期")
		return
	}

	rows, total := h.svc.ListPunches(c.Request.Context(), &req)
	response.OKPage(c, rows, total, req.GetPage(), req.GetPageSize())
}

// PunchDepartments 打卡表中的部门列表（首项为 All）
// GET /api/v1/punches/departments
func (h *PunchHandler) PunchDepartments(c *gin.Context) {
	response.OK(c, gin.H{"list": h.svc.PunchDepartments(c.Request.Context())})
}

// PersonPunches 个人打卡明细
// GET /api/v1/people/punches?name=
func (h *PunchHandler) PersonPunches(c *gin.Context) {
	var req dto.PersonPunchesRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "name 不能为空")
		return
	}

	resp, err := h.svc.PersonPunches(c.Request.Context(), req.Name)
	if err != nil {
		h.handlePunchError(c, err)
		return
	}
	response.OK(c, resp)
}

func (h *PunchHandler) handlePunchError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPersonNameRequired):
		response.BadRequest(c, 10001, "name 不能为空")
	default:
		response.InternalError(c)
	}
}
