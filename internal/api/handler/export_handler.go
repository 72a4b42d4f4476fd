package handler

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/pkg/response"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc}
}

type exportFunc func(ctx context.Context, q *dto.PunchQuery) (*bytes.Buffer, string, error)

// ExportPunches 导出打卡明细
// GET /api/v1/export/punches
func (h *ExportHandler) ExportPunches(c *gin.Context) {
	h.export(c, h.exportSvc.ExportPunches)
}

// ExportCumulative 导出累计统计
// GET /api/v1/export/cumulative
func (h *ExportHandler) ExportCumulative(c *gin.Context) {
	h.export(c, h.exportSvc.ExportCumulative)
}

// ExportDuration 导出时长与折算假期
// GET /api/v1/export/duration
func (h *ExportHandler) ExportDuration(c *gin.Context) {
	h.export(c, h.exportSvc.ExportDuration)
}

// ExportDepartmentPeople 导出部门人员
// GET /api/v1/export/department-people
func (h *ExportHandler) ExportDepartmentPeople(c *gin.Context) {
	h.export(c, h.exportSvc.ExportDepartmentPeople)
}

func (h *ExportHandler) export(c *gin.Context, fn exportFunc) {
	q, ok := bindPunchQuery(c)
	if !ok {
		return
	}

	buf, filename, err := fn(c.Request.Context(), q)
	if err != nil {
		h.handleExportError(c, err)
		return
	}

	// 设置下载响应头
	encodedFilename := url.QueryEscape(filename)
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+encodedFilename)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (h *ExportHandler) handleExportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrExportGenerateFail):
		response.Error(c, http.StatusInternalServerError, 16101, "生成 Excel 文件失败")
	default:
		response.InternalError(c)
	}
}
