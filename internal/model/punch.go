package model

// PunchRow 打卡表中的一行（一次进出记录）
//   - InDate/OutDate 为 YYYY-MM-DD，InTime/OutTime 为 HH:MM，无法识别时为空串
//   - DurationMinutes 恒为非负；任一时间戳缺失时为 0
type PunchRow struct {
	CardID          string `json:"card_id"`
	EmpID           string `json:"emp_id"`
	Name            string `json:"name"`
	InDate          string `json:"in_date"`
	InTime          string `json:"in_time"`
	OutDate         string `json:"out_date"`
	OutTime         string `json:"out_time"`
	Department      string `json:"department"`
	College         string `json:"college"`
	GraceIn         bool   `json:"grace_in"`
	GraceOut        bool   `json:"grace_out"`
	LateIn          bool   `json:"late_in"`
	EarlyOut        bool   `json:"early_out"`
	DurationMinutes int    `json:"duration_minutes"`
}

// Day 用于日期筛选的日期：优先 InDate，其次 OutDate
func (p *PunchRow) Day() string {
	if p.InDate != "" {
		return p.InDate
	}
	return p.OutDate
}
