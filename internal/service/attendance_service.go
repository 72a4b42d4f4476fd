package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/ingest"
	"github.com/shubh389/College-ti/internal/model"
	"github.com/shubh389/College-ti/internal/source"
)

// ── 考勤模块业务错误 ──

var (
	ErrRosterEmpty        = errors.New("花名册内容为空")
	ErrRosterNoEntries    = errors.New("花名册中未识别到任何人员")
	ErrSummaryInvalid     = errors.New("汇总表格式错误")
	ErrSummaryNoRows      = errors.New("汇总表中没有有效数据行")
	ErrWorkbookUnreadable = errors.New("无法识别的打卡表文件")
	ErrWorkbookNoRows     = errors.New("打卡表中没有数据行")
	ErrDepartmentNotFound = errors.New("部门不存在")
	ErrPersonNameRequired = errors.New("姓名不能为空")
	ErrSyncSourceMissing  = errors.New("未配置任何数据来源")
)

// 导入类型
const (
	ImportKindRoster   = "roster"
	ImportKindSummary  = "summary"
	ImportKindWorkbook = "workbook"
	ImportKindSync     = "sync"
)

// SourceFetcher 原始字节获取（URL 或本地路径）
type SourceFetcher interface {
	Fetch(ctx context.Context, location string) ([]byte, error)
}

// WorkbookDecoder 打卡表解码
type WorkbookDecoder interface {
	Decode(ctx context.Context, data []byte) (*source.Decoded, error)
}

// AttendanceService 花名册与考勤业务接口
//
// 设计说明：
//   - 三类输入（花名册文本 / CSV 汇总表 / 打卡表）各自独立导入，
//     任一输入变化都会以当前全部输入重跑流水线并整体替换快照
//   - 读操作只读取快照，不会看到半成品
//   - 输入中的坏数据不会导致失败，计入 Report；只有整份输入不可用时才返回错误
type AttendanceService interface {
	ImportRoster(ctx context.Context, text string) (*dto.ImportResponse, error)
	ImportSummaryCSV(ctx context.Context, r io.Reader) (*dto.ImportResponse, error)
	ImportWorkbook(ctx context.Context, data []byte) (*dto.ImportResponse, error)
	// Sync 从配置的来源重新获取全部输入
	Sync(ctx context.Context) (*dto.ImportResponse, error)

	ListDepartments(ctx context.Context, req *dto.DepartmentListRequest) []dto.DepartmentSummaryResponse
	GetDepartment(ctx context.Context, id string) (*model.Department, error)
	PersonPunches(ctx context.Context, name string) (*dto.PersonPunchesResponse, error)
	ListPunches(ctx context.Context, req *dto.PunchListRequest) ([]model.PunchRow, int64)
	FilterPunches(ctx context.Context, q *dto.PunchQuery) []model.PunchRow
	PunchDepartments(ctx context.Context) []string
	DepartmentPeople(ctx context.Context, q *dto.PunchQuery) []ingest.DepartmentPeople
	Cumulative(ctx context.Context, q *dto.PunchQuery) *dto.CumulativeResponse
	Duration(ctx context.Context, q *dto.PunchQuery) *dto.DurationResponse
	Snapshot(ctx context.Context) *dto.SnapshotResponse
	// Today 按配置时区的当前时间
	Today() time.Time
}

type snapshot struct {
	id     string
	result *ingest.Result
}

type attendanceService struct {
	cfg           *config.Config
	pipeline      *ingest.Pipeline
	fetcher       SourceFetcher
	decoder       WorkbookDecoder
	defaultRoster string
	logger        *zap.Logger

	mu    sync.RWMutex
	input ingest.Input
	snap  *snapshot
}

// NewAttendanceService 创建 AttendanceService 实例
// defaultRoster 为未配置 roster.path 时使用的内置花名册
func NewAttendanceService(
	cfg *config.Config,
	pipeline *ingest.Pipeline,
	fetcher SourceFetcher,
	decoder WorkbookDecoder,
	defaultRoster string,
	logger *zap.Logger,
) AttendanceService {
	s := &attendanceService{
		cfg:           cfg,
		pipeline:      pipeline,
		fetcher:       fetcher,
		decoder:       decoder,
		defaultRoster: defaultRoster,
		logger:        logger,
	}
	s.snap = &snapshot{id: uuid.NewString(), result: pipeline.Run(ingest.Input{})}
	return s
}

// ════════════════════════════════════════════════════════════
// 导入
// ════════════════════════════════════════════════════════════

func (s *attendanceService) ImportRoster(ctx context.Context, text string) (*dto.ImportResponse, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrRosterEmpty
	}
	tok := s.pipeline.Tokenize(text)
	if len(tok.Entries) == 0 {
		s.logger.Warn("花名册导入被拒绝：无有效条目", zap.Int("skipped", tok.Skipped))
		return nil, ErrRosterNoEntries
	}

	return s.rebuild(ImportKindRoster, "", "", nil, func(in *ingest.Input) {
		in.RosterText = text
	}), nil
}

func (s *attendanceService) ImportSummaryCSV(ctx context.Context, r io.Reader) (*dto.ImportResponse, error) {
	parsed, err := ingest.ParseSummaryCSV(r)
	if err != nil {
		s.logger.Warn("汇总表解析失败", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrSummaryInvalid, err)
	}
	if len(parsed.Rows) == 0 {
		return nil, ErrSummaryNoRows
	}

	var warnings []string
	if parsed.Skipped > 0 {
		warnings = append(warnings, fmt.Sprintf("汇总表跳过 %d 行无法解析的记录", parsed.Skipped))
	}
	return s.rebuild(ImportKindSummary, "", "", warnings, func(in *ingest.Input) {
		in.Summary = parsed.Rows
	}), nil
}

func (s *attendanceService) ImportWorkbook(ctx context.Context, data []byte) (*dto.ImportResponse, error) {
	decoded, err := s.decoder.Decode(ctx, data)
	if err != nil {
		s.logger.Warn("打卡表解码失败", zap.Int("bytes", len(data)), zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrWorkbookUnreadable, err)
	}
	if len(decoded.Rows) == 0 {
		return nil, ErrWorkbookNoRows
	}

	return s.rebuild(ImportKindWorkbook, "", decoded.Provider, nil, func(in *ingest.Input) {
		in.Rows = decoded.Rows
	}), nil
}

// Sync 重新获取花名册、汇总表与打卡表
//   - 花名册：roster.path，未配置或获取失败时使用内置花名册
//   - 汇总表 / 打卡表：获取或解码失败时降级为空，并记入 warnings
func (s *attendanceService) Sync(ctx context.Context) (*dto.ImportResponse, error) {
	ic := s.cfg.Ingest
	rosterPath := strings.TrimSpace(s.cfg.Roster.Path)
	if rosterPath == "" && s.defaultRoster == "" && ic.SummaryPath == "" && ic.Source == "" {
		return nil, ErrSyncSourceMissing
	}

	var (
		next     ingest.Input
		warnings []string
		provider string
	)

	next.RosterText = s.defaultRoster
	if rosterPath != "" {
		data, err := s.fetcher.Fetch(ctx, rosterPath)
		if err != nil {
			s.logger.Warn("获取花名册失败，使用内置花名册", zap.String("source", rosterPath), zap.Error(err))
			warnings = append(warnings, "花名册获取失败: "+err.Error())
		} else {
			next.RosterText = string(data)
		}
	}

	if ic.SummaryPath != "" {
		rows, err := s.fetchSummary(ctx, ic.SummaryPath)
		if err != nil {
			s.logger.Warn("获取汇总表失败", zap.String("source", ic.SummaryPath), zap.Error(err))
			warnings = append(warnings, "汇总表获取失败: "+err.Error())
		}
		next.Summary = rows
	}

	if ic.Source != "" {
		decoded, err := s.fetchWorkbook(ctx, ic.Source)
		if err != nil {
			// 打卡表不可用时降级为仅花名册层级
			s.logger.Warn("获取打卡表失败，降级为仅花名册数据", zap.String("source", ic.Source), zap.Error(err))
			warnings = append(warnings, "打卡表获取失败: "+err.Error())
		} else {
			next.Rows = decoded.Rows
			provider = decoded.Provider
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return s.rebuild(ImportKindSync, ic.Source, provider, warnings, func(in *ingest.Input) {
		*in = next
	}), nil
}

func (s *attendanceService) fetchSummary(ctx context.Context, location string) ([]model.SummaryRow, error) {
	data, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	parsed, err := ingest.ParseSummaryCSV(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	return parsed.Rows, nil
}

func (s *attendanceService) fetchWorkbook(ctx context.Context, location string) (*source.Decoded, error) {
	data, err := s.fetcher.Fetch(ctx, location)
	if err != nil {
		return nil, err
	}
	return s.decoder.Decode(ctx, data)
}

// rebuild 更新输入并重跑流水线，整体替换快照
func (s *attendanceService) rebuild(kind, src, provider string, warnings []string, mutate func(in *ingest.Input)) *dto.ImportResponse {
	s.mu.Lock()
	defer s.mu.Unlock()

	mutate(&s.input)
	start := time.Now()
	res := s.pipeline.Run(s.input)
	s.snap = &snapshot{id: uuid.NewString(), result: res}

	faculties := countFaculties(res.Departments)
	s.logger.Info("数据快照已更新",
		zap.String("session_id", s.snap.id),
		zap.String("kind", kind),
		zap.Int("departments", len(res.Departments)),
		zap.Int("faculties", faculties),
		zap.Int("punch_rows", res.Report.PunchRows),
		zap.Int("skipped_entries", res.Report.SkippedEntries),
		zap.Int("skipped_rows", res.Report.SkippedRows),
		zap.Int("unparseable_timestamps", res.Report.UnparseableTimestamps),
		zap.Duration("latency", time.Since(start)),
	)
	if err := res.Report.Err(); err != nil {
		s.logger.Warn("数据接入跳过了部分内容",
			zap.String("session_id", s.snap.id),
			zap.String("kind", kind),
			zap.Error(err),
		)
	}
	for field, n := range res.Report.UnresolvedColumns {
		s.logger.Debug("打卡表列未匹配", zap.String("field", string(field)), zap.Int("rows", n))
	}

	return &dto.ImportResponse{
		SessionID:   s.snap.id,
		Kind:        kind,
		Source:      src,
		Provider:    provider,
		Departments: len(res.Departments),
		Faculties:   faculties,
		Report:      res.Report,
		Warnings:    warnings,
		BuiltAt:     res.BuiltAt,
	}
}

func (s *attendanceService) current() *snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// ════════════════════════════════════════════════════════════
// 查询
// ════════════════════════════════════════════════════════════

func (s *attendanceService) ListDepartments(ctx context.Context, req *dto.DepartmentListRequest) []dto.DepartmentSummaryResponse {
	code := ""
	if req != nil {
		code = strings.TrimSpace(req.Code)
	}

	depts := s.current().result.Departments
	out := make([]dto.DepartmentSummaryResponse, 0, len(depts))
	for i := range depts {
		d := &depts[i]
		if code != "" && !strings.EqualFold(d.Code, code) {
			continue
		}
		item := dto.DepartmentSummaryResponse{
			ID:           d.ID,
			Code:         d.Code,
			Name:         d.Name,
			FacultyCount: d.FacultyCount(),
		}
		if len(d.HODs) > 0 {
			item.HOD = d.HODs[0].Name
		}
		out = append(out, item)
	}
	return out
}

// GetDepartment 按 ID 或部门代码（不区分大小写）查询
func (s *attendanceService) GetDepartment(ctx context.Context, id string) (*model.Department, error) {
	id = strings.TrimSpace(id)
	depts := s.current().result.Departments
	for i := range depts {
		if depts[i].ID == id || strings.EqualFold(depts[i].Code, id) {
			d := depts[i]
			return &d, nil
		}
	}
	return nil, ErrDepartmentNotFound
}

func (s *attendanceService) PersonPunches(ctx context.Context, name string) (*dto.PersonPunchesResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, ErrPersonNameRequired
	}
	rows := s.current().result.Index.Rows(name)
	return &dto.PersonPunchesResponse{Name: name, Count: len(rows), Rows: rows}, nil
}

func (s *attendanceService) ListPunches(ctx context.Context, req *dto.PunchListRequest) ([]model.PunchRow, int64) {
	rows := s.FilterPunches(ctx, &req.PunchQuery)
	total := int64(len(rows))

	offset := req.GetOffset()
	if offset >= len(rows) {
		return []model.PunchRow{}, total
	}
	end := offset + req.GetPageSize()
	if end > len(rows) {
		end = len(rows)
	}
	return rows[offset:end], total
}

func (s *attendanceService) FilterPunches(ctx context.Context, q *dto.PunchQuery) []model.PunchRow {
	return ingest.FilterPunches(s.current().result.Punches, q.Filter())
}

func (s *attendanceService) PunchDepartments(ctx context.Context) []string {
	return ingest.PunchDepartments(s.current().result.Punches)
}

func (s *attendanceService) DepartmentPeople(ctx context.Context, q *dto.PunchQuery) []ingest.DepartmentPeople {
	return ingest.GroupDepartmentPeople(s.FilterPunches(ctx, q))
}

func (s *attendanceService) Cumulative(ctx context.Context, q *dto.PunchQuery) *dto.CumulativeResponse {
	rows := s.FilterPunches(ctx, q)
	return &dto.CumulativeResponse{Rows: len(rows), Cumulative: s.pipeline.Cumulative(rows)}
}

func (s *attendanceService) Duration(ctx context.Context, q *dto.PunchQuery) *dto.DurationResponse {
	rows := s.FilterPunches(ctx, q)
	faculty, hod := s.pipeline.Duration(rows)
	return &dto.DurationResponse{Rows: len(rows), Faculty: faculty, HOD: hod}
}

func (s *attendanceService) Snapshot(ctx context.Context) *dto.SnapshotResponse {
	snap := s.current()
	res := snap.result
	return &dto.SnapshotResponse{
		SessionID:   snap.id,
		Departments: len(res.Departments),
		Faculties:   countFaculties(res.Departments),
		PunchRows:   len(res.Punches),
		People:      res.Index.Len(),
		Report:      res.Report,
		BuiltAt:     res.BuiltAt,
	}
}

func (s *attendanceService) Today() time.Time {
	return s.pipeline.Today()
}

// ── 辅助函数 ──

func countFaculties(depts []model.Department) int {
	n := 0
	for i := range depts {
		n += depts[i].FacultyCount()
	}
	return n
}
