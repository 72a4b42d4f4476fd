package ingest

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// 通用日期格式；有歧义的纯数字 M/D/Y 不在此列，交由 dmyPattern 处理
var generalDateLayouts = []string{
	"2006-01-02",
	"2006-1-2",
	"2006/01/02",
	"2006/1/2",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	time.RFC3339Nano,
	"02 Jan 2006",
	"2 Jan 2006",
	"02-Jan-2006",
	"2-Jan-2006",
	"02-Jan-06",
	"2-Jan-06",
	"2 January 2006",
	"Jan 2, 2006",
	"Jan 2 2006",
	"January 2, 2006",
	"Mon Jan 2 2006",
	time.RFC1123,
	time.RFC1123Z,
	time.ANSIC,
	"20060102",
}

// Excel 日期序列号的合理范围（1910-01-01 … 9999-12-31），用于识别以文本保存的序列号
const (
	minSerialDate = 3654
	maxSerialDate = 2958465
)

var (
	dmyPattern  = regexp.MustCompile(`(\d{1,2})[/-](\d{1,2})[/-](\d{2,4})`)
	hhmmPattern = regexp.MustCompile(`(\d{1,2}):(\d{1,2})`)
)

// ParseDate 将单元格值规范为 YYYY-MM-DD，无法识别时返回空串
//   - time.Time 直接格式化
//   - 数值按 Excel 日期序列号换算
//   - 文本先尝试通用格式，再识别以文本保存的序列号，最后按 D/M/Y（或 D-M-Y）解析，两位年份视为 20YY
//
// 对自身输出幂等：ParseDate(ParseDate(x)) == ParseDate(x)
func ParseDate(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format(dateLayout)
	case *time.Time:
		if x == nil {
			return ""
		}
		return ParseDate(*x)
	case float64:
		return serialDate(x)
	case int:
		return serialDate(float64(x))
	case int64:
		return serialDate(float64(x))
	}

	s := strings.TrimSpace(cellText(v))
	if s == "" {
		return ""
	}
	for _, layout := range generalDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(dateLayout)
		}
	}

	if f, err := strconv.ParseFloat(s, 64); err == nil {
		if f >= minSerialDate && f <= maxSerialDate {
			return serialDate(f)
		}
		return ""
	}

	m := dmyPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year, _ := strconv.Atoi(m[3])
	if len(m[3]) == 2 {
		year += 2000
	}
	return time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

func serialDate(f float64) string {
	if f <= 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	t, err := excelize.ExcelDateToTime(f, false)
	if err != nil {
		return ""
	}
	return t.Format(dateLayout)
}

// ParseTime 提取首个 H:MM / HH:MM 并补零为 HH:MM，无法识别时返回空串
//   - time.Time 取其时分
//   - 数值及以文本保存的序列号按 Excel 时间（一天的小数部分）换算
//
// 不处理 AM/PM 后缀
func ParseTime(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case time.Time:
		if x.IsZero() {
			return ""
		}
		return x.Format("15:04")
	case float64:
		return serialTime(x)
	}

	s := strings.TrimSpace(cellText(v))
	if strings.Contains(s, ".") {
		if f, err := strconv.ParseFloat(s, 64); err == nil && (f < 1 || f >= minSerialDate) {
			return serialTime(f)
		}
	}
	m := hhmmPattern.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	h, _ := strconv.Atoi(m[1])
	mm, _ := strconv.Atoi(m[2])
	return fmt.Sprintf("%02d:%02d", h, mm)
}

func serialTime(f float64) string {
	if f < 0 || math.IsNaN(f) || math.IsInf(f, 0) {
		return ""
	}
	frac := f - math.Floor(f)
	minutes := int(math.Round(frac*24*60)) % (24 * 60)
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ToBool 将单元格值解释为布尔
//   - 文本：yes/y/true/1/late/early → true；no/n/false/0 → false；其余非空即 true
//   - 数值：非 0 即 true
func ToBool(v any) bool {
	switch x := v.(type) {
	case nil:
		return false
	case bool:
		return x
	case string:
		t := strings.ToLower(strings.TrimSpace(x))
		switch t {
		case "yes", "y", "true", "1", "late", "early":
			return true
		case "no", "n", "false", "0":
			return false
		}
		return t != ""
	case float64:
		return x != 0 && !math.IsNaN(x)
	case int:
		return x != 0
	case int64:
		return x != 0
	default:
		return true
	}
}
