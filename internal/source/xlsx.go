package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"github.com/xuri/excelize/v2"
)

const mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// XLSXProvider Office Open XML 工作簿解码器
//
// 读取原始单元格值：日期/时间单元格以 Excel 序列号文本返回，
// 由 ingest.ParseDate / ParseTime 换算，避免依赖单元格显示格式。
type XLSXProvider struct{}

// NewXLSXProvider 创建 xlsx 解码器
func NewXLSXProvider() *XLSXProvider { return &XLSXProvider{} }

func (p *XLSXProvider) Name() string { return "xlsx" }

func (p *XLSXProvider) Probe(kind *mimetype.MIME) bool {
	return kindIs(kind, mimeXLSX, "application/zip")
}

func (p *XLSXProvider) Decode(_ context.Context, data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("打开 xlsx 失败: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoWorksheet
	}
	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("读取工作表 %s 失败: %w", sheets[0], err)
	}
	return rows, nil
}
