package source

import (
	"context"
	"errors"
	"testing"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	apperrors "github.com/shubh389/College-ti/pkg/errors"
)

func buildWorkbook(t *testing.T) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	sheet := "Sheet1"
	rows := [][]any{
		{"Card Id", "Name", "Department", "Date", "In Time"},
		{"TIG00001", "Asha Rao", "CSE", 45870.0, 0.375},
		{"TIG00002", "Vikram Sen", "ECE", 45870.0, 0.40625},
	}
	for r, row := range rows {
		for c, v := range row {
			cell, err := excelize.CoordinatesToCellName(c+1, r+1)
			if err != nil {
				t.Fatalf("坐标转换失败: %v", err)
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				t.Fatalf("写入单元格失败: %v", err)
			}
		}
	}
	// 第二个工作表不应被读取
	if _, err := f.NewSheet("Other"); err != nil {
		t.Fatalf("创建工作表失败: %v", err)
	}
	_ = f.SetCellValue("Other", "A1", "ignored")

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("写出工作簿失败: %v", err)
	}
	return buf.Bytes()
}

func TestChain_DecodeXLSX(t *testing.T) {
	chain := DefaultChain(zap.NewNop())
	out, err := chain.Decode(context.Background(), buildWorkbook(t))
	if err != nil {
		t.Fatalf("期望解码成功，实际 %v", err)
	}
	if out.Provider != "xlsx" {
		t.Errorf("期望 xlsx 解码器，实际 %s", out.Provider)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("期望 2 行，实际 %d", len(out.Rows))
	}
	first := out.Rows[0]
	if got := first.String("Name"); got != "Asha Rao" {
		t.Errorf("期望 Asha Rao，实际 %q", got)
	}
	// 原始值读取：日期为序列号文本
	if got := first.String("Date"); got != "45870" {
		t.Errorf("期望日期序列号 45870，实际 %q", got)
	}
}

func TestChain_DecodeCSV(t *testing.T) {
	data := []byte("\xEF\xBB\xBFName,Date,In Time\nAsha Rao,2025-08-01,09:00\n\nVikram Sen,2025-08-01,09:45\n")

	out, err := DefaultChain(zap.NewNop()).Decode(context.Background(), data)
	if err != nil {
		t.Fatalf("期望解码成功，实际 %v", err)
	}
	if out.Provider != "csv" {
		t.Errorf("期望 csv 解码器，实际 %s", out.Provider)
	}
	if len(out.Rows) != 2 {
		t.Fatalf("期望 2 行（空行跳过），实际 %d", len(out.Rows))
	}
	if got := out.Rows[1].String("In Time"); got != "09:45" {
		t.Errorf("期望 09:45，实际 %q", got)
	}
	// BOM 不应残留在表头中
	if got := out.Rows[0].String("Name"); got != "Asha Rao" {
		t.Errorf("期望 Asha Rao，实际 %q", got)
	}
}

func TestChain_Empty(t *testing.T) {
	_, err := DefaultChain(nil).Decode(context.Background(), nil)
	if !errors.Is(err, apperrors.ErrIngestionFailure) {
		t.Errorf("期望 ErrIngestionFailure，实际 %v", err)
	}
	if !errors.Is(err, ErrEmptySource) {
		t.Errorf("期望 ErrEmptySource，实际 %v", err)
	}
}

func TestChain_AllProvidersFail(t *testing.T) {
	data := []byte{0x00, 0x01, 0x02, 0xFF, 0xFE, 0x00, 0x10}
	_, err := DefaultChain(zap.NewNop()).Decode(context.Background(), data)
	if !errors.Is(err, apperrors.ErrIngestionFailure) {
		t.Fatalf("期望 ErrIngestionFailure，实际 %v", err)
	}
	if !errors.Is(err, ErrNotTextInput) {
		t.Errorf("期望包含 csv 解码器的 ErrNotTextInput，实际 %v", err)
	}
}

// ── 回退顺序 ──

type stubProvider struct {
	name   string
	probe  bool
	table  [][]string
	err    error
	called *[]string
}

func (s *stubProvider) Name() string { return s.name }
func (s *stubProvider) Probe(*mimetype.MIME) bool { return s.probe }
func (s *stubProvider) Decode(context.Context, []byte) ([][]string, error) {
	*s.called = append(*s.called, s.name)
	return s.table, s.err
}

func TestChain_Fallback(t *testing.T) {
	var called []string
	chain := NewChain(zap.NewNop(),
		&stubProvider{name: "a", called: &called, table: [][]string{{"Name"}, {"a"}}},
		&stubProvider{name: "b", probe: true, err: errors.New("坏数据"), called: &called},
		&stubProvider{name: "c", called: &called, table: [][]string{{"Name"}, {"c"}}},
	)

	out, err := chain.Decode(context.Background(), []byte("x"))
	if err != nil {
		t.Fatalf("期望回退成功，实际 %v", err)
	}
	// 匹配的 b 优先，失败后按原顺序回退到 a
	if len(called) != 2 || called[0] != "b" || called[1] != "a" {
		t.Errorf("期望调用顺序 [b a]，实际 %v", called)
	}
	if out.Provider != "a" || out.Rows[0].String("Name") != "a" {
		t.Errorf("期望由 a 解码，实际 %s", out.Provider)
	}
}

func TestChain_ContextCanceled(t *testing.T) {
	var called []string
	chain := NewChain(nil, &stubProvider{name: "a", called: &called})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := chain.Decode(ctx, []byte("x")); !errors.Is(err, context.Canceled) {
		t.Errorf("期望 context.Canceled，实际 %v", err)
	}
	if len(called) != 0 {
		t.Errorf("取消后不应调用解码器，实际 %v", called)
	}
}
