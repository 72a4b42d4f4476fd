package source

import (
	"context"
	"errors"
	"fmt"

	"github.com/gabriel-vasile/mimetype"
	"go.uber.org/zap"

	"github.com/shubh389/College-ti/internal/ingest"
	apperrors "github.com/shubh389/College-ti/pkg/errors"
)

// ═══════════════════════════════════════════════════════════
// 打卡表解码
//
// Provider 为单一格式的解码能力（xlsx / xls / csv）。
// Chain 先按内容嗅探出的 MIME 类型挑选匹配的 Provider，
// 解码失败时依次回退到其余 Provider，全部失败才报错。
// 只读取第一个工作表。
// ═══════════════════════════════════════════════════════════

var (
	ErrEmptySource  = errors.New("打卡表内容为空")
	ErrNoWorksheet  = errors.New("工作簿中没有工作表")
	ErrNotTextInput = errors.New("内容不是文本格式")
)

// Provider 单一格式解码器
type Provider interface {
	Name() string
	// Probe 判断嗅探出的类型是否由该解码器负责
	Probe(kind *mimetype.MIME) bool
	// Decode 解码第一个工作表为二维表
	Decode(ctx context.Context, data []byte) ([][]string, error)
}

// Decoded 解码结果
type Decoded struct {
	Provider string
	MIME     string
	Rows     []*ingest.Row
}

// Chain 带回退的解码链
type Chain struct {
	providers []Provider
	logger    *zap.Logger
}

// NewChain 按优先级组装解码链
func NewChain(logger *zap.Logger, providers ...Provider) *Chain {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Chain{providers: providers, logger: logger}
}

// DefaultChain xlsx → xls → csv
func DefaultChain(logger *zap.Logger) *Chain {
	return NewChain(logger, NewXLSXProvider(), NewXLSProvider(), NewCSVProvider())
}

// Decode 嗅探类型并解码；全部失败时返回包装了 ErrIngestionFailure 的错误
func (c *Chain) Decode(ctx context.Context, data []byte) (*Decoded, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, ErrEmptySource)
	}
	kind := mimetype.Detect(data)

	var errs []error
	for _, p := range c.order(kind) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		table, err := p.Decode(ctx, data)
		if err != nil {
			c.logger.Debug("解码失败，尝试下一个解码器",
				zap.String("provider", p.Name()),
				zap.String("mime", kind.String()),
				zap.Error(err),
			)
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), err))
			continue
		}
		return &Decoded{
			Provider: p.Name(),
			MIME:     kind.String(),
			Rows:     ingest.RowsFromTable(table),
		}, nil
	}
	return nil, fmt.Errorf("%w: %w", apperrors.ErrIngestionFailure, errors.Join(errs...))
}

// order 匹配的解码器在前，其余作为回退
func (c *Chain) order(kind *mimetype.MIME) []Provider {
	matched := make([]Provider, 0, len(c.providers))
	var rest []Provider
	for _, p := range c.providers {
		if p.Probe(kind) {
			matched = append(matched, p)
		} else {
			rest = append(rest, p)
		}
	}
	return append(matched, rest...)
}

// kindIs 判断类型或其父类型是否为任一给定 MIME
func kindIs(kind *mimetype.MIME, types ...string) bool {
	for m := kind; m != nil; m = m.Parent() {
		for _, t := range types {
			if m.Is(t) {
				return true
			}
		}
	}
	return false
}
