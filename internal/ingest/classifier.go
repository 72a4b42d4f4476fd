package ingest

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shubh389/College-ti/internal/model"
)

// AdminCode 行政类人员统一归入的部门代码
const AdminCode = "ADMIN"

var nonLetters = regexp.MustCompile(`[^a-z]+`)

// Person 分组前的单个人员（来自花名册或 CSV 汇总表）
type Person struct {
	ID         string
	Name       string
	Department string
	Attendance []model.AttendanceRecord
}

// ClassifierConfig 部门归类规则
type ClassifierConfig struct {
	Labels        map[string]string // 大写代码 → 显示名称
	AdminMarkers  []string
	ExcludedCodes []string
	EmailDomain   string
}

// Classifier 将人员按部门分组并构建 部门 → HOD → 教职工 层级
type Classifier struct {
	labels      map[string]string
	admin       map[string]bool
	excluded    map[string]bool
	emailDomain string
}

// NewClassifier 构造归类器
func NewClassifier(cfg ClassifierConfig) *Classifier {
	c := &Classifier{
		labels:      make(map[string]string, len(cfg.Labels)),
		admin:       make(map[string]bool, len(cfg.AdminMarkers)),
		excluded:    make(map[string]bool, len(cfg.ExcludedCodes)),
		emailDomain: cfg.EmailDomain,
	}
	for code, label := range cfg.Labels {
		c.labels[canonicalToken(code)] = label
	}
	for _, m := range cfg.AdminMarkers {
		c.admin[canonicalToken(m)] = true
	}
	for _, code := range cfg.ExcludedCodes {
		c.excluded[canonicalToken(code)] = true
	}
	if c.emailDomain == "" {
		c.emailDomain = "tint.edu"
	}
	return c
}

// Canonical 部门标记 → 规范代码：大写化，行政类标记折叠为 ADMIN
func (c *Classifier) Canonical(marker string) string {
	code := canonicalToken(marker)
	if c.admin[code] {
		return AdminCode
	}
	return code
}

// Label 规范代码对应的显示名称，未知代码返回代码本身
func (c *Classifier) Label(code string) string {
	if label, ok := c.labels[code]; ok {
		return label
	}
	return code
}

// Excluded 判断规范代码是否被排除在层级之外
func (c *Classifier) Excluded(code string) bool {
	return c.excluded[code]
}

// Group 按部门分组构建层级
//   - 部门按规范代码升序；组内保持文档出现顺序
//   - 组内首人为 HOD，其余为该 HOD 下的教职工
//   - 被排除的部门（默认 ADMIN）不出现在结果中
func (c *Classifier) Group(people []Person) []model.Department {
	var order []string
	groups := make(map[string][]Person)
	for _, p := range people {
		code := c.Canonical(p.Department)
		if code == "" || c.excluded[code] {
			continue
		}
		if _, ok := groups[code]; !ok {
			order = append(order, code)
		}
		groups[code] = append(groups[code], p)
	}

	depts := make([]model.Department, 0, len(order))
	for _, code := range order {
		members := groups[code]
		deptID := strings.ToLower(code)
		head := members[0]

		faculties := make([]model.FacultyMember, 0, len(members)-1)
		for idx, m := range members[1:] {
			attendance := m.Attendance
			if attendance == nil {
				attendance = []model.AttendanceRecord{}
			}
			faculties = append(faculties, model.FacultyMember{
				ID:         m.ID,
				Name:       m.Name,
				Role:       model.RoleFaculty,
				Email:      c.Email(m.Name, code),
				Phone:      Phone(idx, code),
				Attendance: attendance,
			})
		}

		depts = append(depts, model.Department{
			ID:   deptID,
			Name: c.Label(code),
			Code: code,
			HODs: []model.HOD{{
				ID:           deptID + "-hod-1",
				Name:         head.Name,
				DepartmentID: deptID,
				Faculties:    faculties,
			}},
		})
	}

	sort.SliceStable(depts, func(i, j int) bool { return depts[i].Code < depts[j].Code })
	return depts
}

// Email 生成占位邮箱：姓名小写，非字母串折叠为单个点
func (c *Classifier) Email(name, code string) string {
	handle := nonLetters.ReplaceAllString(strings.ToLower(name), ".")
	handle = strings.Trim(handle, ".")
	return fmt.Sprintf("%s@%s.%s", handle, strings.ToLower(code), c.emailDomain)
}

// Phone 生成占位电话，由组内序号与部门代码长度确定
func Phone(idx int, code string) string {
	id := strings.ToLower(code)
	return fmt.Sprintf("+91 98%d%d%d0%d%d", idx, len(code), len(id), (idx+3)%10, (idx+6)%10)
}

func canonicalToken(s string) string {
	return strings.ToUpper(strings.Join(strings.Fields(s), " "))
}
