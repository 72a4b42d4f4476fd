package source

import (
	"bytes"
	"context"
	"fmt"

	"github.com/extrame/xls"
	"github.com/gabriel-vasile/mimetype"
)

const (
	mimeXLS = "application/vnd.ms-excel"
	mimeOLE = "application/x-ole-storage"
)

// maxXLSRows 旧版工作簿单次读取的最大行数
const maxXLSRows = 100000

// XLSProvider 旧版 BIFF (.xls) 工作簿解码器
type XLSProvider struct{}

// NewXLSProvider 创建 xls 解码器
func NewXLSProvider() *XLSProvider { return &XLSProvider{} }

func (p *XLSProvider) Name() string { return "xls" }

func (p *XLSProvider) Probe(kind *mimetype.MIME) bool {
	return kindIs(kind, mimeXLS, mimeOLE)
}

func (p *XLSProvider) Decode(_ context.Context, data []byte) (rows [][]string, err error) {
	// 损坏的 BIFF 流可能触发库内 panic
	defer func() {
		if r := recover(); r != nil {
			rows, err = nil, fmt.Errorf("解析 xls 失败: %v", r)
		}
	}()

	wb, err := xls.OpenReader(bytes.NewReader(data), "utf-8")
	if err != nil {
		return nil, fmt.Errorf("打开 xls 失败: %w", err)
	}
	if wb.NumSheets() == 0 {
		return nil, ErrNoWorksheet
	}
	sheet := wb.GetSheet(0)
	if sheet == nil {
		return nil, ErrNoWorksheet
	}

	maxRow := int(sheet.MaxRow)
	if maxRow >= maxXLSRows {
		maxRow = maxXLSRows - 1
	}
	rows = make([][]string, 0, maxRow+1)
	for i := 0; i <= maxRow; i++ {
		row := sheet.Row(i)
		if row == nil {
			rows = append(rows, nil)
			continue
		}
		cells := make([]string, 0, row.LastCol()+1)
		for j := row.FirstCol(); j < row.LastCol(); j++ {
			for len(cells) < j {
				cells = append(cells, "")
			}
			cells = append(cells, row.Col(j))
		}
		rows = append(rows, cells)
	}
	return rows, nil
}
