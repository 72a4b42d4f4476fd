package source

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"unicode/utf8"

	"github.com/gabriel-vasile/mimetype"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVProvider 逗号分隔文本解码器
type CSVProvider struct{}

// NewCSVProvider 创建 csv 解码器
func NewCSVProvider() *CSVProvider { return &CSVProvider{} }

func (p *CSVProvider) Name() string { return "csv" }

func (p *CSVProvider) Probe(kind *mimetype.MIME) bool {
	return kindIs(kind, "text/csv", "text/plain")
}

func (p *CSVProvider) Decode(_ context.Context, data []byte) ([][]string, error) {
	if !utf8.Valid(data) || bytes.IndexByte(data, 0) >= 0 {
		return nil, ErrNotTextInput
	}
	data = bytes.TrimPrefix(data, utf8BOM)

	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	r.LazyQuotes = true

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("解析 csv 失败: %w", err)
	}
	return rows, nil
}
