package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/pkg/response"
)

// DepartmentHandler 部门层级 HTTP 处理器
type DepartmentHandler struct {
	svc service.AttendanceService
}

// NewDepartmentHandler 创建 DepartmentHandler
func NewDepartmentHandler(svc service.AttendanceService) *DepartmentHandler {
	return &DepartmentHandler{svc: svc}
}

// ListDepartments 获取部门列表
// GET /api/v1/departments?code=
func (h *DepartmentHandler) ListDepartments(c *gin.Context) {
	var req dto.DepartmentListRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, 10001, "参数校验失败")
		return
	}

	response.OK(c, gin.H{"list": h.svc.ListDepartments(c.Request.Context(), &req)})
}

// GetDepartment 获取部门详情（HOD → 教职工 → 考勤）
// GET /api/v1/departments/:id
func (h *DepartmentHandler) GetDepartment(c *gin.Context) {
	id := c.Param("id")
	if id == "" {
		response.BadRequest(c, 10001, "部门ID不能为空")
		return
	}

	dept, err := h.svc.GetDepartment(c.Request.Context(), id)
	if err != nil {
		h.handleDepartmentError(c, err)
		return
	}

	response.OK(c, dept)
}

func (h *DepartmentHandler) handleDepartmentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrDepartmentNotFound):
		response.NotFound(c, 17001, "部门不存在")
	default:
		response.InternalError(c)
	}
}
