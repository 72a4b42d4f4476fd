package ingest

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shubh389/College-ti/internal/model"
)

// ── 花名册文本分词器 ──────────────────────────────────────────
//
// 职责：把一整段花名册文本切分为 (工号, 姓名, 部门标记) 三元组。
//
// 文本格式：
//   TIG18701037 Sai Mehta AEIE TINT 2025-08 18  ...  AEIE TINT All 112  TIG18701036 ...
//   └─ 工号 ─┘ └ 姓名 ┘ └部门┘ └──── 尾部元数据 ───┘   └── 部门汇总行 ──┘
//
// 状态机：
//   ExpectIdentifier → (工号) → ScanningName → (部门标记) → DeptFound → (工号) → ScanningName …
//
//   - 姓名词持续累积，直到遇到部门关键字或双词标记（如 "ASST. REGISTRATAR"）
//   - 姓名为空、或到下一个工号/文本结束仍未找到部门的条目被丢弃
//   - 部门汇总行不以工号开头，只会落入上一条目的尾部元数据，不会成为人员
// ─────────────────────────────────────────────────────────────

// scanState 分词状态
type scanState int

const (
	stateExpectIdentifier scanState = iota
	stateScanningName
	stateDeptFound
)

func (s scanState) String() string {
	switch s {
	case stateExpectIdentifier:
		return "ExpectIdentifier"
	case stateScanningName:
		return "ScanningName"
	case stateDeptFound:
		return "DeptFound"
	default:
		return fmt.Sprintf("scanState(%d)", int(s))
	}
}

// maxTrailingTokens 部门标记之后最多吸收的元数据词数（机构、年月、天数）
const maxTrailingTokens = 3

var periodPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// TokenizerConfig 分词规则表
type TokenizerConfig struct {
	IdentifierPrefix    string
	IdentifierMinDigits int
	Keywords            []string // 单词部门标记，区分大小写
	TwoWordMarkers      []string // 双词部门标记，如 "ASST. REGISTRATAR"
}

// Tokenizer 花名册分词器
type Tokenizer struct {
	idPattern *regexp.Regexp
	keywords  map[string]bool
	twoWord   map[string][]string // 首词 → 可接续的次词
}

// NewTokenizer 根据规则表构造分词器
func NewTokenizer(cfg TokenizerConfig) *Tokenizer {
	minDigits := cfg.IdentifierMinDigits
	if minDigits <= 0 {
		minDigits = 1
	}
	t := &Tokenizer{
		idPattern: regexp.MustCompile(fmt.Sprintf(`^%s\d{%d,}$`, regexp.QuoteMeta(cfg.IdentifierPrefix), minDigits)),
		keywords:  make(map[string]bool, len(cfg.Keywords)),
		twoWord:   make(map[string][]string, len(cfg.TwoWordMarkers)),
	}
	for _, k := range cfg.Keywords {
		t.keywords[strings.TrimSpace(k)] = true
	}
	for _, m := range cfg.TwoWordMarkers {
		parts := strings.Fields(m)
		if len(parts) != 2 {
			continue
		}
		t.twoWord[parts[0]] = append(t.twoWord[parts[0]], parts[1])
	}
	return t
}

// TokenizeResult 分词结果
type TokenizeResult struct {
	Entries []model.RosterEntry
	Skipped int // 丢弃的畸形条目数
}

// Tokenize 执行分词
func (t *Tokenizer) Tokenize(text string) TokenizeResult {
	words := strings.Fields(text)

	var (
		res      TokenizeResult
		cur      model.RosterEntry
		name     []string
		trailing int
		state    = stateExpectIdentifier
	)

	for i := 0; i < len(words); i++ {
		w := words[i]

		if t.isIdentifier(w) {
			switch state {
			case stateDeptFound:
				res.Entries = append(res.Entries, cur)
			case stateScanningName:
				res.Skipped++
			}
			cur = model.RosterEntry{ID: w}
			name = name[:0]
			trailing = 0
			state = stateScanningName
			continue
		}

		switch state {
		case stateExpectIdentifier:
			// 前导文本或被丢弃条目的残余
		case stateScanningName:
			marker, width := t.matchDepartment(words, i)
			if width == 0 {
				name = append(name, w)
				continue
			}
			i += width - 1
			if len(name) == 0 {
				res.Skipped++
				state = stateExpectIdentifier
				continue
			}
			cur.Name = strings.Join(name, " ")
			cur.Department = marker
			state = stateDeptFound
		case stateDeptFound:
			if trailing < maxTrailingTokens {
				absorbTrailing(&cur, w)
				trailing++
			}
		}
	}

	switch state {
	case stateDeptFound:
		res.Entries = append(res.Entries, cur)
	case stateScanningName:
		res.Skipped++
	}
	return res
}

// isIdentifier 判断词是否为工号
func (t *Tokenizer) isIdentifier(w string) bool {
	return t.idPattern.MatchString(w)
}

// matchDepartment 在位置 i 尝试匹配部门标记，返回标记文本与消耗的词数（0 表示未匹配）
func (t *Tokenizer) matchDepartment(words []string, i int) (string, int) {
	w := words[i]
	if i+1 < len(words) {
		for _, next := range t.twoWord[w] {
			if words[i+1] == next {
				return w + " " + next, 2
			}
		}
	}
	if t.keywords[w] {
		return w, 1
	}
	return "", 0
}

// absorbTrailing 解析尾部元数据：机构标签、年月、天数
func absorbTrailing(e *model.RosterEntry, w string) {
	switch {
	case periodPattern.MatchString(w):
		if e.Period == "" {
			e.Period = w
		}
	case isDigits(w):
		if e.Days == 0 {
			e.Days, _ = strconv.Atoi(w)
		}
	default:
		if e.Org == "" {
			e.Org = w
		}
	}
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
