package model

// RosterEntry 花名册文本中切分出的一条人员记录
type RosterEntry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Department string `json:"department"` // 原始部门标记（双词标记以空格连接）
	Org        string `json:"org,omitempty"`
	Period     string `json:"period,omitempty"`
	Days       int    `json:"days,omitempty"`
}

// SummaryRow CSV 汇总表中的一行（出勤/缺勤/请假计数）
type SummaryRow struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Department string  `json:"department"`
	Present    float64 `json:"present"`
	Absent     float64 `json:"absent"`
	Leave      float64 `json:"leave"`
}
