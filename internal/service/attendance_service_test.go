package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/shubh389/College-ti/config"
	"github.com/shubh389/College-ti/internal/dto"
	"github.com/shubh389/College-ti/internal/ingest"
	"github.com/shubh389/College-ti/internal/source"
	apperrors "github.com/shubh389/College-ti/pkg/errors"
)

// ── 测试辅助 ──

const testRoster = `Staff list 2025-08
TIG00001 Asha Rao CSE TINT 2025-08 20  TIG00002 Ravi Kumar CSE TINT 2025-08 18
TIG00003 Meera Iyer CSE TINT 2025-08 19  CSE TINT All 57
TIG00004 Vivaan Mehta PRINCIPAL TINT 2025-08 11
TIG00005 Sai Patel BSH TINT 2025-08 17  TIG00007 Vihaan Patel BSH TINT 2025-08 18`

const testPunchCSV = `Card Id,Employee ID,Employee Name,Department,In Date,In Time,Out Date,Out Time,Late In,Early Out
C1,TIG00002,Ravi Kumar,CSE,01/08/2025,9:05,01/08/2025,17:40,yes,no
C1,TIG00002,Ravi Kumar,CSE,02/08/2025,9:20,02/08/2025,16:00,no,yes
C5,TIG00005,Sai Patel,BSH,02/08/2025,8:55,02/08/2025,17:10,no,no
`

const testSummaryCSV = `Employee ID,Employee Name,Department,Present,Absent,Leave
TIG00003,Meera Iyer,CSE,7,2,1
`

var testNow = time.Date(2025, 8, 20, 15, 30, 0, 0, time.UTC)

// stubFetcher 按地址返回预置内容
type stubFetcher struct {
	data map[string]string
}

func (f *stubFetcher) Fetch(_ context.Context, location string) ([]byte, error) {
	v, ok := f.data[location]
	if !ok {
		return nil, errors.New("not found: " + location)
	}
	return []byte(v), nil
}

func newTestConfig() *config.Config {
	return &config.Config{
		Attendance: config.AttendanceConfig{WindowDays: 14, ShortDayMinutes: 450, LeaveCreditDivisor: 4},
		Roster: config.RosterConfig{
			IdentifierPrefix:    "TIG",
			IdentifierMinDigits: 1,
			Departments: []config.DepartmentLabel{
				{Code: "CSE", Label: "Computer Science & Engineering"},
				{Code: "BSH", Label: "Basic Science & Humanities"},
			},
		},
	}
}

func setupTestAttendanceService(cfg *config.Config, fetcher SourceFetcher, defaultRoster string) AttendanceService {
	opts := PipelineOptions(cfg)
	opts.Now = func() time.Time { return testNow }
	pipeline := ingest.NewPipeline(opts)
	return NewAttendanceService(cfg, pipeline, fetcher, source.DefaultChain(zap.NewNop()), defaultRoster, zap.NewNop())
}

func importAll(t *testing.T, svc AttendanceService) {
	t.Helper()
	ctx := context.Background()
	if _, err := svc.ImportRoster(ctx, testRoster); err != nil {
		t.Fatalf("ImportRoster 应成功: %v", err)
	}
	if _, err := svc.ImportWorkbook(ctx, []byte(testPunchCSV)); err != nil {
		t.Fatalf("ImportWorkbook 应成功: %v", err)
	}
}

// ── 导入测试 ──

func TestAttendanceService_ImportRoster_Rejects(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")

	if _, err := svc.ImportRoster(context.Background(), "   "); !errors.Is(err, ErrRosterEmpty) {
		t.Errorf("期望 ErrRosterEmpty，实际: %v", err)
	}
	if _, err := svc.ImportRoster(context.Background(), "no identifiers here"); !errors.Is(err, ErrRosterNoEntries) {
		t.Errorf("期望 ErrRosterNoEntries，实际: %v", err)
	}
	if got := svc.Snapshot(context.Background()).Departments; got != 0 {
		t.Errorf("被拒绝的导入不应改变快照，实际 %d 个部门", got)
	}
}

func TestAttendanceService_ImportRoster_Success(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")

	resp, err := svc.ImportRoster(context.Background(), testRoster)
	if err != nil {
		t.Fatalf("ImportRoster 应成功: %v", err)
	}
	if resp.Kind != ImportKindRoster || resp.SessionID == "" {
		t.Errorf("响应字段错误: %+v", resp)
	}
	// PRINCIPAL 归入 ADMIN 并被排除
	if resp.Departments != 2 || resp.Faculties != 3 {
		t.Errorf("期望 2 个部门 3 名教职工，实际 %d / %d", resp.Departments, resp.Faculties)
	}

	depts := svc.ListDepartments(context.Background(), nil)
	if len(depts) != 2 || depts[0].Code != "BSH" || depts[1].HOD != "Asha Rao" {
		t.Errorf("部门列表错误: %+v", depts)
	}
	if got := svc.ListDepartments(context.Background(), &dto.DepartmentListRequest{Code: "cse"}); len(got) != 1 {
		t.Errorf("按代码筛选期望 1 个部门，实际 %d", len(got))
	}
}

func TestAttendanceService_GetDepartment(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	importAll(t, svc)

	for _, id := range []string{"cse", "CSE"} {
		dept, err := svc.GetDepartment(context.Background(), id)
		if err != nil {
			t.Fatalf("GetDepartment(%q) 应成功: %v", id, err)
		}
		if dept.Name != "Computer Science & Engineering" || dept.FacultyCount() != 2 {
			t.Errorf("部门详情错误: %+v", dept)
		}
	}
	if _, err := svc.GetDepartment(context.Background(), "xyz"); !errors.Is(err, ErrDepartmentNotFound) {
		t.Errorf("期望 ErrDepartmentNotFound，实际: %v", err)
	}
}

func TestAttendanceService_ImportWorkbook(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	importAll(t, svc)

	snap := svc.Snapshot(context.Background())
	if snap.PunchRows != 3 || snap.People != 2 {
		t.Errorf("期望 3 行打卡、2 人，实际 %d / %d", snap.PunchRows, snap.People)
	}
	// 重新导入花名册后打卡数据仍保留
	if _, err := svc.ImportRoster(context.Background(), testRoster); err != nil {
		t.Fatal(err)
	}
	if got := svc.Snapshot(context.Background()); got.PunchRows != 3 || got.SessionID == snap.SessionID {
		t.Errorf("重建后应保留打卡数据并更换会话: %+v", got)
	}

	if _, err := svc.ImportWorkbook(context.Background(), []byte{0x00, 0x01, 0xFF}); !errors.Is(err, ErrWorkbookUnreadable) {
		t.Errorf("期望 ErrWorkbookUnreadable，实际: %v", err)
	}
	if _, err := svc.ImportWorkbook(context.Background(), []byte("Name\n")); !errors.Is(err, ErrWorkbookNoRows) {
		t.Errorf("期望 ErrWorkbookNoRows，实际: %v", err)
	}
}

func TestAttendanceService_ImportSummaryCSV(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	if _, err := svc.ImportRoster(context.Background(), testRoster); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.ImportSummaryCSV(context.Background(), strings.NewReader(testSummaryCSV))
	if err != nil {
		t.Fatalf("ImportSummaryCSV 应成功: %v", err)
	}
	if resp.Report.SummaryMatches != 1 {
		t.Errorf("期望按姓名合并 1 人，实际 %d", resp.Report.SummaryMatches)
	}

	dept, _ := svc.GetDepartment(context.Background(), "CSE")
	var present int
	for _, f := range dept.HODs[0].Faculties {
		if f.Name != "Meera Iyer" {
			continue
		}
		for _, a := range f.Attendance {
			if a.Status == "Present" {
				present++
			}
		}
	}
	// 7/2/1 按 14 天窗口放大为 10/3/1
	if present != 10 {
		t.Errorf("期望 10 天出勤，实际 %d", present)
	}

	if _, err := svc.ImportSummaryCSV(context.Background(), strings.NewReader("Employee ID,Employee Name\n")); !errors.Is(err, ErrSummaryNoRows) {
		t.Errorf("期望 ErrSummaryNoRows，实际: %v", err)
	}
}

// ── 同步测试 ──

func TestAttendanceService_Sync(t *testing.T) {
	cfg := newTestConfig()
	cfg.Roster.Path = "/data/roster.txt"
	cfg.Ingest.Source = "https://example.test/punches.csv"
	cfg.Ingest.SummaryPath = "/data/missing.csv"

	fetcher := &stubFetcher{data: map[string]string{
		"https://example.test/punches.csv": testPunchCSV,
	}}
	svc := setupTestAttendanceService(cfg, fetcher, testRoster)

	resp, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync 应成功: %v", err)
	}
	// 花名册与汇总表获取失败：回退内置花名册，汇总表为空
	if len(resp.Warnings) != 2 {
		t.Errorf("期望 2 条警告，实际 %v", resp.Warnings)
	}
	if resp.Departments != 2 || resp.Report.PunchRows != 3 || resp.Provider != "csv" {
		t.Errorf("同步结果错误: %+v", resp)
	}
}

func TestAttendanceService_Sync_DegradesWithoutWorkbook(t *testing.T) {
	cfg := newTestConfig()
	cfg.Ingest.Source = "https://example.test/down.xlsx"
	svc := setupTestAttendanceService(cfg, &stubFetcher{}, testRoster)

	resp, err := svc.Sync(context.Background())
	if err != nil {
		t.Fatalf("Sync 不应因打卡表失败而失败: %v", err)
	}
	if resp.Departments != 2 || resp.Report.PunchRows != 0 || len(resp.Warnings) != 1 {
		t.Errorf("期望降级为仅花名册数据: %+v", resp)
	}
}

func TestAttendanceService_Sync_NoSource(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	if _, err := svc.Sync(context.Background()); !errors.Is(err, ErrSyncSourceMissing) {
		t.Errorf("期望 ErrSyncSourceMissing，实际: %v", err)
	}
}

// ── 查询测试 ──

func TestAttendanceService_PersonPunches(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	importAll(t, svc)

	resp, err := svc.PersonPunches(context.Background(), "  RAVI kumar ")
	if err != nil {
		t.Fatalf("PersonPunches 应成功: %v", err)
	}
	if resp.Count != 2 {
		t.Errorf("期望 2 行，实际 %d", resp.Count)
	}
	if resp, _ := svc.PersonPunches(context.Background(), "Nobody"); resp.Count != 0 || resp.Rows == nil {
		t.Errorf("未知姓名应返回空列表: %+v", resp)
	}
	if _, err := svc.PersonPunches(context.Background(), " "); !errors.Is(err, ErrPersonNameRequired) {
		t.Errorf("期望 ErrPersonNameRequired，实际: %v", err)
	}
}

func TestAttendanceService_ListPunches(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	importAll(t, svc)
	ctx := context.Background()

	req := &dto.PunchListRequest{PaginationRequest: dto.PaginationRequest{Page: 1, PageSize: 2}}
	rows, total := svc.ListPunches(ctx, req)
	if total != 3 || len(rows) != 2 {
		t.Errorf("第 1 页期望 2/3，实际 %d/%d", len(rows), total)
	}
	req.Page = 2
	if rows, _ = svc.ListPunches(ctx, req); len(rows) != 1 {
		t.Errorf("第 2 页期望 1 行，实际 %d", len(rows))
	}
	req.Page = 5
	if rows, _ = svc.ListPunches(ctx, req); len(rows) != 0 {
		t.Errorf("越界页期望 0 行，实际 %d", len(rows))
	}

	req = &dto.PunchListRequest{PunchQuery: dto.PunchQuery{Department: "BSH"}}
	if rows, total = svc.ListPunches(ctx, req); total != 1 || rows[0].Name != "Sai Patel" {
		t.Errorf("按部门筛选错误: %+v", rows)
	}
	req = &dto.PunchListRequest{PunchQuery: dto.PunchQuery{From: "2025-08-02", To: "2025-08-02"}}
	if _, total = svc.ListPunches(ctx, req); total != 2 {
		t.Errorf("按日期筛选期望 2 行，实际 %d", total)
	}

	depts := svc.PunchDepartments(ctx)
	if len(depts) != 3 || depts[0] != ingest.AllDepartments || depts[1] != "BSH" {
		t.Errorf("部门列表错误: %v", depts)
	}
}

func TestAttendanceService_Reports(t *testing.T) {
	svc := setupTestAttendanceService(newTestConfig(), &stubFetcher{}, "")
	importAll(t, svc)
	ctx := context.Background()

	cse := &dto.PunchQuery{Department: "CSE"}
	cum := svc.Cumulative(ctx, cse)
	if cum.Rows != 2 || cum.Cumulative.LateIn != 1 || cum.Cumulative.EarlyOut != 1 || cum.Cumulative.Observations != 2 {
		t.Errorf("累计统计错误: %+v", cum)
	}

	dur := svc.Duration(ctx, cse)
	// (515 + 400) / 2 = 457.5 → 458
	if dur.Faculty.AvgMinutes != 458 || dur.Faculty.UnderCount != 1 {
		t.Errorf("时长统计错误: %+v", dur.Faculty)
	}
	if dur.HOD.AvgMinutes != 473 {
		t.Errorf("HOD 粗估期望 473，实际 %d", dur.HOD.AvgMinutes)
	}

	people := svc.DepartmentPeople(ctx, nil)
	if len(people) != 2 || people[1].Department != "CSE" || people[1].HOD != "Ravi Kumar" {
		t.Errorf("部门人员错误: %+v", people)
	}
}

func TestAttendanceService_RebuildLogsSkippedContent(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := newTestConfig()
	opts := PipelineOptions(cfg)
	opts.Now = func() time.Time { return testNow }
	svc := NewAttendanceService(cfg, ingest.NewPipeline(opts), &stubFetcher{},
		source.DefaultChain(zap.NewNop()), "", zap.New(core))

	roster := testRoster + "  TIG00009 Nobody Here TIG00010 Kiran Das CSE TINT 2025-08 12"
	if _, err := svc.ImportRoster(context.Background(), roster); err != nil {
		t.Fatalf("ImportRoster 应成功: %v", err)
	}

	entries := logs.FilterMessage("数据接入跳过了部分内容").All()
	if len(entries) != 1 {
		t.Fatalf("期望 1 条告警日志，实际 %d", len(entries))
	}
	err, ok := entries[0].ContextMap()["error"]
	if !ok {
		t.Fatal("告警日志应携带 error 字段")
	}
	if !strings.Contains(err.(string), apperrors.ErrMalformedEntry.Error()) {
		t.Errorf("error 字段应包含 ErrMalformedEntry，实际 %v", err)
	}
}

func TestAttendanceService_RebuildCleanInputNoWarning(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	cfg := newTestConfig()
	svc := NewAttendanceService(cfg, ingest.NewPipeline(PipelineOptions(cfg)), &stubFetcher{},
		source.DefaultChain(zap.NewNop()), "", zap.New(core))

	if _, err := svc.ImportRoster(context.Background(), testRoster); err != nil {
		t.Fatalf("ImportRoster 应成功: %v", err)
	}
	if n := logs.FilterMessage("数据接入跳过了部分内容").Len(); n != 0 {
		t.Errorf("无异常时不应告警，实际 %d 条", n)
	}
}
