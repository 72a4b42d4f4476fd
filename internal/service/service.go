package service

import (
	"go.uber.org/zap"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/ingest"
)

// Service 所有 Service 的聚合入口
type Service struct {
	Attendance AttendanceService
	Export     ExportService
}

// NewService 创建 Service 聚合
func NewService(
	cfg *config.Config,
	fetcher SourceFetcher,
	decoder WorkbookDecoder,
	defaultRoster string,
	logger *zap.Logger,
) *Service {
	pipeline := ingest.NewPipeline(PipelineOptions(cfg))
	attendance := NewAttendanceService(cfg, pipeline, fetcher, decoder, defaultRoster, logger)
	return &Service{
		Attendance: attendance,
		Export:     NewExportService(attendance, logger),
	}
}
