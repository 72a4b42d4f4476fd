package handler

import (
	"bytes"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/shubh389/College-ti/internal/service"
	"github.com/shubh389/College-ti/pkg/response"
)

// ImportHandler 数据导入 HTTP 处理器
type ImportHandler struct {
	svc service.AttendanceService
}

// NewImportHandler 创建 ImportHandler
func NewImportHandler(svc service.AttendanceService) *ImportHandler {
	return &ImportHandler{svc: svc}
}

// ImportRoster 导入花名册文本
// POST /api/v1/import/roster
//
// 支持两种方式：
//   - 纯文本请求体: text/plain
//   - 文件上传: multipart/form-data, field="file"
func (h *ImportHandler) ImportRoster(c *gin.Context) {
	data, ok := h.upload(c)
	if !ok {
		return
	}

	resp, err := h.svc.ImportRoster(c.Request.Context(), string(data))
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// ImportSummary 导入 CSV 汇总表（出勤/缺勤/请假计数）
// POST /api/v1/import/summary
func (h *ImportHandler) ImportSummary(c *gin.Context) {
	data, ok := h.upload(c)
	if !ok {
		return
	}

	resp, err := h.svc.ImportSummaryCSV(c.Request.Context(), bytes.NewReader(data))
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// ImportWorkbook 导入打卡表（xlsx / xls / csv）
// POST /api/v1/import/workbook
func (h *ImportHandler) ImportWorkbook(c *gin.Context) {
	data, ok := h.upload(c)
	if !ok {
		return
	}

	resp, err := h.svc.ImportWorkbook(c.Request.Context(), data)
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// Sync 从配置的来源重新获取全部数据
// POST /api/v1/import/sync
func (h *ImportHandler) Sync(c *gin.Context) {
	resp, err := h.svc.Sync(c.Request.Context())
	if err != nil {
		handleImportError(c, err)
		return
	}
	response.OK(c, resp)
}

// upload 读取上传内容；失败时已写入响应（超限由 BodyLimit 写入）
func (h *ImportHandler) upload(c *gin.Context) ([]byte, bool) {
	data, err := readUpload(c)
	switch {
	case err == nil:
		return data, true
	case bodyTooLarge(c):
	case errors.Is(err, errNoUpload):
		response.BadRequest(c, 19000, "请上传文件或提供请求体")
	default:
		response.ErrorWithDetails(c, http.StatusBadRequest, 19000, "读取上传内容失败", err.Error())
	}
	return nil, false
}

func handleImportError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrRosterEmpty):
		response.BadRequest(c, 19001, "花名册内容为空")
	case errors.Is(err, service.ErrRosterNoEntries):
		response.BadRequest(c, 19002, "花名册中未识别到任何人员")
	case errors.Is(err, service.ErrSummaryInvalid):
		response.ErrorWithDetails(c, http.StatusBadRequest, 19003, "汇总表格式错误", err.Error())
	case errors.Is(err, service.ErrSummaryNoRows):
		response.BadRequest(c, 19004, "汇总表中没有有效数据行")
	case errors.Is(err, service.ErrWorkbookUnreadable):
		response.ErrorWithDetails(c, http.StatusBadRequest, 19005, "无法识别的打卡表文件", err.Error())
	case errors.Is(err, service.ErrWorkbookNoRows):
		response.BadRequest(c, 19006, "打卡表中没有数据行")
	case errors.Is(err, service.ErrSyncSourceMissing):
		response.Error(c, http.StatusConflict, 19007, "未配置任何数据来源")
	default:
		response.InternalError(c)
	}
}
