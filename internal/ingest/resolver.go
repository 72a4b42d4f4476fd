package ingest

import (
	"regexp"
	"strings"
)

// Field 打卡表/汇总表中的逻辑字段
type Field string

const (
	FieldCardID     Field = "card_id"
	FieldEmpID      Field = "emp_id"
	FieldName       Field = "name"
	FieldDepartment Field = "department"
	FieldCollege    Field = "college"
	FieldInDate     Field = "in_date"
	FieldInTime     Field = "in_time"
	FieldOutDate    Field = "out_date"
	FieldOutTime    Field = "out_time"
	FieldGraceIn    Field = "grace_in"
	FieldGraceOut   Field = "grace_out"
	FieldLateIn     Field = "late_in"
	FieldEarlyOut   Field = "early_out"
	FieldPresent    Field = "present"
	FieldAbsent     Field = "absent"
	FieldLeave      Field = "leave"
)

// PunchFields 打卡行映射所需的字段
var PunchFields = []Field{
	FieldCardID, FieldEmpID, FieldName, FieldDepartment, FieldCollege,
	FieldInDate, FieldInTime, FieldOutDate, FieldOutTime,
	FieldGraceIn, FieldGraceOut, FieldLateIn, FieldEarlyOut,
}

// FieldRule 单个字段的列匹配规则
//   - Patterns 按优先级排列；对每个模式依次扫描全部表头，先命中者胜出
//   - Aliases 为兜底的精确别名（规范化后比较）
type FieldRule struct {
	Patterns []*regexp.Regexp
	Aliases  []string
}

// Rules 字段 → 匹配规则
type Rules map[Field]FieldRule

func rule(aliases []string, patterns ...string) FieldRule {
	r := FieldRule{Aliases: aliases}
	for _, p := range patterns {
		r.Patterns = append(r.Patterns, regexp.MustCompile(`(?i)`+p))
	}
	return r
}

// DefaultRules 内置列匹配规则
func DefaultRules() Rules {
	return Rules{
		FieldCardID:     rule([]string{"card", "badge", "badge no"}, `card\s*id`, `card\s*no`, `card\s*number`),
		FieldEmpID:      rule([]string{"code", "emp code", "employee code", "staff code"}, `employee\s*id`, `emp\s*id`, `id$`),
		FieldName:       rule([]string{"staff", "faculty", "person"}, `employee\s*name`, `name`),
		FieldDepartment: rule([]string{"branch", "section"}, `department`, `dept`),
		FieldCollege:    rule([]string{"campus", "company"}, `college`, `institute`, `org`),
		FieldInDate:     rule([]string{"date", "punch date", "attendance date"}, `in\s*date`, `date\s*in`, `entry\s*date`),
		FieldInTime:     rule([]string{"in", "check in", "first punch"}, `in\s*time`, `time\s*in`, `entry\s*time`),
		FieldOutDate:    rule([]string{"date", "punch date", "attendance date"}, `out\s*date`, `date\s*out`, `exit\s*date`),
		FieldOutTime:    rule([]string{"out", "check out", "last punch"}, `out\s*time`, `time\s*out`, `exit\s*time`),
		FieldGraceIn:    rule([]string{"grace"}, `grace\s*in`, `late\s*in`),
		FieldGraceOut:   rule(nil, `grace\s*out`, `early\s*out`),
		FieldLateIn:     rule([]string{"late"}, `late\s*in`),
		FieldEarlyOut:   rule([]string{"early"}, `early\s*out`),
		FieldPresent:    rule([]string{"days present"}, `\b(present|^p$)\b`),
		FieldAbsent:     rule([]string{"days absent"}, `\b(absent|^a$)\b`),
		FieldLeave:      rule([]string{"on leave", "days leave"}, `\b(leave|^l$)\b`),
	}
}

// ResolveHeader 在表头列表中为规则选出匹配列
func ResolveHeader(headers []string, r FieldRule) (string, bool) {
	for _, p := range r.Patterns {
		for _, h := range headers {
			if p.MatchString(h) {
				return h, true
			}
		}
	}
	for _, alias := range r.Aliases {
		want := NormalizeName(alias)
		for _, h := range headers {
			if NormalizeName(h) == want {
				return h, true
			}
		}
	}
	return "", false
}

type resolution struct {
	header string
	ok     bool
}

// Resolver 带缓存的列匹配器
// 同一表头结构只匹配一次；非并发安全，每次导入各自创建
type Resolver struct {
	rules Rules
	cache map[string]map[Field]resolution
}

// NewResolver 创建列匹配器
func NewResolver(rules Rules) *Resolver {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Resolver{rules: rules, cache: make(map[string]map[Field]resolution)}
}

// Header 字段在该行中对应的表头
func (r *Resolver) Header(row *Row, f Field) (string, bool) {
	fp := row.Fingerprint()
	shape, ok := r.cache[fp]
	if !ok {
		shape = make(map[Field]resolution)
		r.cache[fp] = shape
	}
	if res, ok := shape[f]; ok {
		return res.header, res.ok
	}
	var res resolution
	if rl, ok := r.rules[f]; ok {
		res.header, res.ok = ResolveHeader(row.Keys(), rl)
	}
	shape[f] = res
	return res.header, res.ok
}

// Value 字段原始值；列未匹配时 ok=false
func (r *Resolver) Value(row *Row, f Field) (any, bool) {
	h, ok := r.Header(row, f)
	if !ok {
		return nil, false
	}
	return row.Get(h)
}

// String 字段文本值（去除首尾空白）
func (r *Resolver) String(row *Row, f Field) string {
	h, ok := r.Header(row, f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(row.String(h))
}
