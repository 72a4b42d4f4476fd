package ingest

import (
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/shubh389/College-ti/internal/model"
)

// AllDepartments 部门筛选中代表“全部”的值
const AllDepartments = "All"

// UnknownDepartment 打卡行缺少部门时的归属
const UnknownDepartment = "Unknown"

// NormalizeName 姓名规范化：大小写折叠，空白折叠为单个空格并去除首尾
func NormalizeName(s string) string {
	// Caser 有状态，不能跨 goroutine 共享
	return cases.Fold().String(strings.Join(strings.Fields(s), " "))
}

// PunchIndex 按规范化姓名索引的打卡行
type PunchIndex struct {
	byName map[string][]model.PunchRow
}

// BuildPunchIndex 构建姓名索引；无姓名的行不入索引
func BuildPunchIndex(rows []model.PunchRow) *PunchIndex {
	ix := &PunchIndex{byName: make(map[string][]model.PunchRow)}
	for _, r := range rows {
		key := NormalizeName(r.Name)
		if key == "" {
			continue
		}
		ix.byName[key] = append(ix.byName[key], r)
	}
	return ix
}

// Rows 按姓名查询打卡行，无匹配时返回空切片
func (ix *PunchIndex) Rows(name string) []model.PunchRow {
	if ix == nil {
		return []model.PunchRow{}
	}
	rows := ix.byName[NormalizeName(name)]
	if rows == nil {
		return []model.PunchRow{}
	}
	return rows
}

// Len 已索引的不同姓名数
func (ix *PunchIndex) Len() int {
	if ix == nil {
		return 0
	}
	return len(ix.byName)
}

// DepartmentPeople 打卡表中某部门出现过的人员
type DepartmentPeople struct {
	Department string   `json:"department"`
	HOD        string   `json:"hod"` // 按字母序首位的名义 HOD
	Count      int      `json:"count"`
	Names      []string `json:"names"`
}

// GroupDepartmentPeople 按部门汇总打卡表中的不同姓名
//   - 缺少部门的行归入 Unknown
//   - 姓名按字母序（本地化排序，不区分大小写）；部门按名称升序
func GroupDepartmentPeople(rows []model.PunchRow) []DepartmentPeople {
	sets := make(map[string]map[string]struct{})
	for _, r := range rows {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			continue
		}
		dept := strings.TrimSpace(r.Department)
		if dept == "" {
			dept = UnknownDepartment
		}
		if sets[dept] == nil {
			sets[dept] = make(map[string]struct{})
		}
		sets[dept][name] = struct{}{}
	}

	col := collate.New(language.English, collate.IgnoreCase)
	out := make([]DepartmentPeople, 0, len(sets))
	for dept, set := range sets {
		names := make([]string, 0, len(set))
		for n := range set {
			names = append(names, n)
		}
		col.SortStrings(names)
		out = append(out, DepartmentPeople{
			Department: dept,
			HOD:        names[0],
			Count:      len(names),
			Names:      names,
		})
	}
	sort.Slice(out, func(i, j int) bool {
		return col.CompareString(out[i].Department, out[j].Department) < 0
	})
	return out
}

// PunchFilter 打卡明细筛选条件；零值不过滤
type PunchFilter struct {
	Department string // "All" 或空表示全部
	Search     string // 姓名或工号子串，不区分大小写
	From       string // YYYY-MM-DD，含
	To         string // YYYY-MM-DD，含
}

// Match 判断打卡行是否满足筛选条件
// 日期以 InDate（缺失时 OutDate）比较；无日期的行不受日期范围约束
func (f PunchFilter) Match(r *model.PunchRow) bool {
	if f.Department != "" && f.Department != AllDepartments && r.Department != f.Department {
		return false
	}
	if q := NormalizeName(f.Search); q != "" {
		if !strings.Contains(NormalizeName(r.Name), q) && !strings.Contains(NormalizeName(r.EmpID), q) {
			return false
		}
	}
	if day := r.Day(); day != "" {
		if f.From != "" && day < f.From {
			return false
		}
		if f.To != "" && day > f.To {
			return false
		}
	}
	return true
}

// FilterPunches 按条件筛选打卡行，保持原顺序
func FilterPunches(rows []model.PunchRow, f PunchFilter) []model.PunchRow {
	out := make([]model.PunchRow, 0, len(rows))
	for i := range rows {
		if f.Match(&rows[i]) {
			out = append(out, rows[i])
		}
	}
	return out
}

// PunchDepartments 打卡表中出现的部门列表，首项为 "All"
func PunchDepartments(rows []model.PunchRow) []string {
	seen := make(map[string]bool)
	var depts []string
	for _, r := range rows {
		d := strings.TrimSpace(r.Department)
		if d == "" || seen[d] {
			continue
		}
		seen[d] = true
		depts = append(depts, d)
	}
	collate.New(language.English, collate.IgnoreCase).SortStrings(depts)
	return append([]string{AllDepartments}, depts...)
}
