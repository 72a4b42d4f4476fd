package model

// Department 部门：花名册解析结果的顶层节点
//   - ID 为小写部门代码，Code 为大写规范代码
//   - Name 来自静态名称表，未知代码直接沿用 Code
type Department struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
	HODs []HOD  `json:"hods"`
}

// HOD 系主任：每个部门在文档中出现的第一人
type HOD struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	DepartmentID string          `json:"department_id"`
	Faculties    []FacultyMember `json:"faculties"`
}

// FacultyMember 教职工
type FacultyMember struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Role         string             `json:"role"`
	Email        string             `json:"email"`
	Phone        string             `json:"phone"`
	Attendance   []AttendanceRecord `json:"attendance"`
	ExcelSummary map[string]string  `json:"excel_summary,omitempty"`
}

// RoleFaculty 普通教职工角色标签
const RoleFaculty = "Faculty"

// FacultyCount 统计部门下的教职工人数（不含 HOD）
func (d *Department) FacultyCount() int {
	n := 0
	for _, h := range d.HODs {
		n += len(h.Faculties)
	}
	return n
}
