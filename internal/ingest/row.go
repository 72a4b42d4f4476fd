package ingest

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Row 表格中的一行：保持表头顺序的 header → value 映射
//
// 表头顺序决定列匹配时的优先级，因此不能直接用 map。
// Row 的零值不可用，请使用 NewRow / RowsFromTable 构造。
type Row struct {
	keys   []string
	values map[string]any
}

// NewRow 创建空行
func NewRow() *Row {
	return &Row{values: make(map[string]any)}
}

// Set 写入单元格；已存在的表头保持原位置
func (r *Row) Set(key string, value any) {
	if _, ok := r.values[key]; !ok {
		r.keys = append(r.keys, key)
	}
	r.values[key] = value
}

// Get 读取单元格
func (r *Row) Get(key string) (any, bool) {
	v, ok := r.values[key]
	return v, ok
}

// String 以文本形式读取单元格，不存在时为空串
func (r *Row) String(key string) string {
	v, ok := r.values[key]
	if !ok {
		return ""
	}
	return cellText(v)
}

// Keys 按原始顺序返回表头
func (r *Row) Keys() []string {
	return r.keys
}

// Len 列数
func (r *Row) Len() int { return len(r.keys) }

// Fingerprint 表头集合指纹，用于列匹配结果缓存
func (r *Row) Fingerprint() string {
	return strings.Join(r.keys, "\x1f")
}

// ToMap 导出为普通 map（用于 excel_summary 字段）
func (r *Row) ToMap() map[string]string {
	m := make(map[string]string, len(r.keys))
	for _, k := range r.keys {
		m[k] = cellText(r.values[k])
	}
	return m
}

// RowsFromTable 将二维表（首个非空行为表头）转为 Row 列表
//   - 空表头命名为 __EMPTY、__EMPTY_1 …；重名表头追加 _1、_2 …
//   - 缺失单元格补空串；整行为空的数据行跳过
func RowsFromTable(table [][]string) []*Row {
	headerIdx := -1
	for i, cells := range table {
		if !blankCells(cells) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil
	}
	headers := uniqueHeaders(table[headerIdx])

	rows := make([]*Row, 0, len(table)-headerIdx-1)
	for _, cells := range table[headerIdx+1:] {
		if blankCells(cells) {
			continue
		}
		row := NewRow()
		for i, h := range headers {
			v := ""
			if i < len(cells) {
				v = strings.TrimSpace(cells[i])
			}
			row.Set(h, v)
		}
		rows = append(rows, row)
	}
	return rows
}

// uniqueHeaders 重复表头追加 _N 后缀；后缀名与已有表头冲突时继续递增
func uniqueHeaders(raw []string) []string {
	taken := make(map[string]bool, len(raw))
	for _, h := range raw {
		taken[strings.TrimSpace(h)] = true
	}

	used := make(map[string]bool, len(raw))
	next := make(map[string]int, len(raw))
	out := make([]string, len(raw))
	for i, h := range raw {
		h = strings.TrimSpace(h)
		if h == "" {
			h = "__EMPTY"
		}
		if used[h] {
			base := h
			for n := next[base] + 1; ; n++ {
				h = fmt.Sprintf("%s_%d", base, n)
				if !used[h] && !taken[h] {
					next[base] = n
					break
				}
			}
		}
		used[h] = true
		out[i] = h
	}
	return out
}

func blankCells(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// cellText 单元格值的文本形式
func cellText(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case time.Time:
		return x.Format("2006-01-02")
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}
