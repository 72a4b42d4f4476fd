package model

// AttendanceStatus 出勤状态
type AttendanceStatus string

const (
	StatusPresent AttendanceStatus = "Present"
	StatusAbsent  AttendanceStatus = "Absent"
	StatusOnLeave AttendanceStatus = "On Leave"
)

// AttendanceRecord 单日出勤记录，Date 为 YYYY-MM-DD
type AttendanceRecord struct {
	Date   string           `json:"date"`
	Status AttendanceStatus `json:"status"`
}

// Remark 出勤状态对应的备注文字
func (r AttendanceRecord) Remark() string {
	switch r.Status {
	case StatusPresent:
		return "-"
	case StatusAbsent:
		return "Uninformed"
	default:
		return "Approved"
	}
}
