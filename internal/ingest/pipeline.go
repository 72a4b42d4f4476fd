package ingest

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shubh389/College-ti/internal/model"
	apperrors "github.com/shubh389/College-ti/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// Pipeline 数据接入流水线
//
// 输入：花名册文本 / CSV 汇总表 / 打卡表行（任意组合）
// 输出：部门 → HOD → 教职工 层级 + 按姓名索引的打卡行
//
//   1. 花名册文本 → 分词 → 归类分组，考勤先填占位序列
//      （无花名册时由 CSV 汇总表直接建层级，考勤由计数展开）
//   2. 同时提供了花名册与 CSV 时，按姓名将 CSV 计数合并到教职工
//   3. 打卡表行 → 列匹配 → 打卡记录 + 姓名索引
//   4. 打卡表中带计数列的行按姓名合并到教职工（excel_summary + 重建考勤）
//
// 流水线是纯同步计算，不持有可变状态；Run 可并发调用。
// ═══════════════════════════════════════════════════════════

// Options 流水线参数
type Options struct {
	Tokenizer          TokenizerConfig
	Classifier         ClassifierConfig
	Rules              Rules
	WindowDays         int
	ShortDayMinutes    int
	LeaveCreditDivisor int
	Location           *time.Location
	Now                func() time.Time
}

// DefaultOptions 内置默认参数
func DefaultOptions() Options {
	return Options{
		Tokenizer: TokenizerConfig{
			IdentifierPrefix:    "TIG",
			IdentifierMinDigits: 1,
			Keywords: []string{
				"AEIE", "BSH", "CE", "CSE", "ECE", "EE", "IT", "MBA", "MCA", "ME", "Admin", "PRINCIPAL",
			},
			TwoWordMarkers: []string{"ASST. REGISTRATAR"},
		},
		Classifier: ClassifierConfig{
			AdminMarkers:  []string{"Admin", "PRINCIPAL", "ASST. REGISTRATAR"},
			ExcludedCodes: []string{AdminCode},
			EmailDomain:   "tint.edu",
		},
		WindowDays:         14,
		ShortDayMinutes:    450,
		LeaveCreditDivisor: 4,
		Location:           time.UTC,
		Now:                time.Now,
	}
}

// Input 一次流水线运行的输入
type Input struct {
	RosterText string
	Summary    []model.SummaryRow
	Rows       []*Row
}

// Report 运行报告：被吸收的异常计数
type Report struct {
	Entries               int           `json:"entries"`
	SkippedEntries        int           `json:"skipped_entries"`
	SummaryRows           int           `json:"summary_rows"`
	Rows                  int           `json:"rows"`
	PunchRows             int           `json:"punch_rows"`
	SkippedRows           int           `json:"skipped_rows"`
	UnresolvedColumns     map[Field]int `json:"unresolved_columns,omitempty"`
	UnparseableTimestamps int           `json:"unparseable_timestamps"`
	SummaryMatches        int           `json:"summary_matches"`
}

// Err 将报告中被吸收的异常汇总为一个错误，仅用于日志；无异常时为 nil
func (r Report) Err() error {
	var errs []error
	if r.SkippedEntries > 0 {
		errs = append(errs, fmt.Errorf("%w: %d 条", apperrors.ErrMalformedEntry, r.SkippedEntries))
	}
	if len(r.UnresolvedColumns) > 0 {
		fields := make([]string, 0, len(r.UnresolvedColumns))
		for f := range r.UnresolvedColumns {
			fields = append(fields, string(f))
		}
		sort.Strings(fields)
		errs = append(errs, fmt.Errorf("%w: %s", apperrors.ErrUnresolvableColumn, strings.Join(fields, ", ")))
	}
	if r.UnparseableTimestamps > 0 {
		errs = append(errs, fmt.Errorf("%w: %d 处", apperrors.ErrUnparseableDateTime, r.UnparseableTimestamps))
	}
	return errors.Join(errs...)
}

// Result 流水线输出
type Result struct {
	Departments []model.Department
	Entries     []model.RosterEntry
	Punches     []model.PunchRow
	Index       *PunchIndex
	Report      Report
	BuiltAt     time.Time
}

// Pipeline 数据接入流水线
type Pipeline struct {
	opts       Options
	tokenizer  *Tokenizer
	classifier *Classifier
}

// NewPipeline 创建流水线；零值参数回退为默认值
func NewPipeline(opts Options) *Pipeline {
	def := DefaultOptions()
	if opts.Tokenizer.IdentifierPrefix == "" {
		opts.Tokenizer = def.Tokenizer
	}
	if len(opts.Classifier.AdminMarkers) == 0 && len(opts.Classifier.ExcludedCodes) == 0 {
		labels, domain := opts.Classifier.Labels, opts.Classifier.EmailDomain
		opts.Classifier = def.Classifier
		opts.Classifier.Labels = labels
		if domain != "" {
			opts.Classifier.EmailDomain = domain
		}
	}
	if opts.Rules == nil {
		opts.Rules = DefaultRules()
	}
	if opts.WindowDays <= 0 {
		opts.WindowDays = def.WindowDays
	}
	if opts.ShortDayMinutes <= 0 {
		opts.ShortDayMinutes = def.ShortDayMinutes
	}
	if opts.LeaveCreditDivisor <= 0 {
		opts.LeaveCreditDivisor = def.LeaveCreditDivisor
	}
	if opts.Location == nil {
		opts.Location = def.Location
	}
	if opts.Now == nil {
		opts.Now = def.Now
	}
	return &Pipeline{
		opts:       opts,
		tokenizer:  NewTokenizer(opts.Tokenizer),
		classifier: NewClassifier(opts.Classifier),
	}
}

// Options 当前生效的参数
func (p *Pipeline) Options() Options { return p.opts }

// Classifier 部门归类器
func (p *Pipeline) Classifier() *Classifier { return p.classifier }

// Today 按配置时区取当前日期
func (p *Pipeline) Today() time.Time {
	return p.opts.Now().In(p.opts.Location)
}

// Tokenize 仅执行花名册分词
func (p *Pipeline) Tokenize(text string) TokenizeResult {
	return p.tokenizer.Tokenize(text)
}

// Run 执行流水线
func (p *Pipeline) Run(in Input) *Result {
	today := p.Today()
	res := &Result{BuiltAt: today}

	tok := p.tokenizer.Tokenize(in.RosterText)
	res.Entries = tok.Entries
	res.Report.Entries = len(tok.Entries)
	res.Report.SkippedEntries = tok.Skipped
	res.Report.SummaryRows = len(in.Summary)

	switch {
	case len(tok.Entries) > 0:
		people := make([]Person, 0, len(tok.Entries))
		for _, e := range tok.Entries {
			people = append(people, Person{
				ID:         e.ID,
				Name:       e.Name,
				Department: e.Department,
				Attendance: PlaceholderAttendance(p.opts.WindowDays, today),
			})
		}
		res.Departments = p.classifier.Group(people)
		if len(in.Summary) > 0 {
			res.Report.SummaryMatches += p.mergeSummaryRows(res.Departments, in.Summary, today)
		}
	case len(in.Summary) > 0:
		res.Departments = p.classifier.Group(SummaryPeople(in.Summary, p.opts.WindowDays, today))
	default:
		res.Departments = []model.Department{}
	}

	res.Punches = []model.PunchRow{}
	if len(in.Rows) > 0 {
		resolver := NewResolver(p.opts.Rules)
		punches, stats := MapPunchRows(resolver, in.Rows, p.opts.Location)
		res.Punches = punches
		res.Report.Rows = stats.Rows
		res.Report.PunchRows = stats.Mapped
		res.Report.SkippedRows = stats.Skipped
		res.Report.UnresolvedColumns = stats.UnresolvedColumns
		res.Report.UnparseableTimestamps = stats.UnparseableTimestamps
		res.Report.SummaryMatches += p.mergeSheetSummaries(resolver, res.Departments, in.Rows, today)
	}
	res.Index = BuildPunchIndex(res.Punches)
	return res
}

// Cumulative 按当前参数计算累计统计
func (p *Pipeline) Cumulative(rows []model.PunchRow) Cumulative {
	return ComputeCumulative(rows, p.opts.LeaveCreditDivisor)
}

// Duration 按当前参数计算时长统计及 HOD 粗估
func (p *Pipeline) Duration(rows []model.PunchRow) (DurationSummary, DurationSummary) {
	faculty := ComputeDuration(rows, p.opts.ShortDayMinutes, p.opts.LeaveCreditDivisor)
	return faculty, EstimateHOD(faculty, p.opts.ShortDayMinutes, p.opts.LeaveCreditDivisor)
}

// mergeSummaryRows 将 CSV 计数按姓名合并到教职工，返回命中人数
func (p *Pipeline) mergeSummaryRows(depts []model.Department, rows []model.SummaryRow, today time.Time) int {
	byName := make(map[string]model.SummaryRow, len(rows))
	for _, r := range rows {
		if key := NormalizeName(r.Name); key != "" {
			byName[key] = r
		}
	}
	return eachFaculty(depts, func(f *model.FacultyMember) bool {
		r, ok := byName[NormalizeName(f.Name)]
		if !ok {
			return false
		}
		f.Attendance = Distribute(Counts{Present: r.Present, Absent: r.Absent, Leave: r.Leave}, p.opts.WindowDays, today)
		return true
	})
}

// mergeSheetSummaries 将打卡表中的行按姓名合并到教职工（同名取最后一行）
func (p *Pipeline) mergeSheetSummaries(res *Resolver, depts []model.Department, rows []*Row, today time.Time) int {
	byName := make(map[string]*Row, len(rows))
	for _, row := range rows {
		if key := NormalizeName(res.String(row, FieldName)); key != "" {
			byName[key] = row
		}
	}
	return eachFaculty(depts, func(f *model.FacultyMember) bool {
		row, ok := byName[NormalizeName(f.Name)]
		if !ok {
			return false
		}
		f.ExcelSummary = row.ToMap()
		if counts, ok := summaryCounts(res, row); ok {
			f.Attendance = Distribute(counts, p.opts.WindowDays, today)
		}
		return true
	})
}

func eachFaculty(depts []model.Department, fn func(f *model.FacultyMember) bool) int {
	n := 0
	for i := range depts {
		for j := range depts[i].HODs {
			faculties := depts[i].HODs[j].Faculties
			for k := range faculties {
				if fn(&faculties[k]) {
					n++
				}
			}
		}
	}
	return n
}
