package ingest

import (
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"ISO", "2024-02-01", "2024-02-01"},
		{"带时间", "2024-02-01 09:30:00", "2024-02-01"},
		{"RFC3339不换算时区", "2025-08-15T23:30:00+05:30", "2025-08-15"},
		{"斜杠年在前", "2024/02/01", "2024-02-01"},
		{"日/月/年", "01/02/2024", "2024-02-01"},
		{"歧义日期按日在前", "03/04/2025", "2025-04-03"},
		{"日-月-两位年", "1-2-24", "2024-02-01"},
		{"嵌入文本", "Punch on 15/08/2025 09:05", "2025-08-15"},
		{"英文月份", "15-Aug-2025", "2025-08-15"},
		{"英文长月份", "August 15, 2025", "2025-08-15"},
		{"time.Time", time.Date(2025, 8, 15, 22, 0, 0, 0, time.UTC), "2025-08-15"},
		{"Excel序列号", 45292.0, "2024-01-01"},
		{"Excel序列号带时间", 45292.75, "2024-01-01"},
		{"文本序列号", "45292", "2024-01-01"},
		{"紧凑格式", "20250801", "2025-08-01"},
		{"过小的数字", "2024", ""},
		{"空串", "  ", ""},
		{"nil", nil, ""},
		{"无法识别", "not a date", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseDate(tt.in); got != tt.want {
				t.Errorf("ParseDate(%v) 期望 %q，实际 %q", tt.in, tt.want, got)
			}
		})
	}
}

func TestParseDate_Idempotent(t *testing.T) {
	inputs := []any{
		"2024-02-01", "01/02/2024", "1-2-24", "15-Aug-2025", "2025-08-15T23:30:00Z",
		45292.0, time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), "31/12/99",
	}
	for _, in := range inputs {
		once := ParseDate(in)
		if once == "" {
			t.Errorf("ParseDate(%v) 不应为空", in)
			continue
		}
		if twice := ParseDate(once); twice != once {
			t.Errorf("ParseDate 不幂等: %v → %q → %q", in, once, twice)
		}
	}
}

func TestParseTime(t *testing.T) {
	tests := []struct {
		name string
		in   any
		want string
	}{
		{"补零", "9:5", "09:05"},
		{"标准", "09:05", "09:05"},
		{"带秒", "17:40:00", "17:40"},
		{"嵌入文本", "In 9:30 AM", "09:30"},
		{"日期时间", "2025-08-15 18:02:11", "18:02"},
		{"Excel小数", 0.5, "12:00"},
		{"Excel日期时间", 45292.75, "18:00"},
		{"文本序列号", "0.375", "09:00"},
		{"点分隔不是序列号", "9.30", ""},
		{"time.Time", time.Date(2025, 8, 15, 9, 5, 0, 0, time.UTC), "09:05"},
		{"空串", "", ""},
		{"无冒号", "0930", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseTime(tt.in); got != tt.want {
				t.Errorf("ParseTime(%v) 期望 %q，实际 %q", tt.in, tt.want, got)
			}
		})
	}
}

func TestToBool(t *testing.T) {
	tests := []struct {
		in   any
		want bool
	}{
		{"Yes", true},
		{"y", true},
		{"TRUE", true},
		{"1", true},
		{" no ", false},
		{"N", false},
		{"false", false},
		{"0", false},
		{"", false},
		{"Late", true},
		{"x", true},
		{nil, false},
		{1.0, true},
		{0.0, false},
		{true, true},
		{false, false},
	}
	for _, tt := range tests {
		if got := ToBool(tt.in); got != tt.want {
			t.Errorf("ToBool(%#v) 期望 %v，实际 %v", tt.in, tt.want, got)
		}
	}
}
