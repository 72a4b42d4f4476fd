package handler

import "github.com/shubh389/College-ti/internal/service"

// Handler 所有 Handler 的聚合入口
type Handler struct {
	Department *DepartmentHandler
	Punch      *PunchHandler
	Report     *ReportHandler
	Export     *ExportHandler
	Import     *ImportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service) *Handler {
	return &Handler{
		Department: NewDepartmentHandler(svc.Attendance),
		Punch:      NewPunchHandler(svc.Attendance),
		Report:     NewReportHandler(svc.Attendance),
		Export:     NewExportHandler(svc.Export),
		Import:     NewImportHandler(svc.Attendance),
	}
}
