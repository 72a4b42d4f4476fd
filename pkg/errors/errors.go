package errors

import "errors"

// ── 数据接入错误分类 ──
//
// 这些错误只用于计数与日志，不会中断处理流程：
// 解析阶段一律就地吸收并以安全默认值继续。

var (
	// ErrMalformedEntry 花名册条目缺少姓名或部门，整条跳过
	ErrMalformedEntry = errors.New("花名册条目无法解析出姓名或部门")
	// ErrUnresolvableColumn 表头无法匹配到目标字段，字段按空字符串处理
	ErrUnresolvableColumn = errors.New("表头中找不到对应字段")
	// ErrUnparseableDateTime 日期/时间文本无法识别，返回空字符串
	ErrUnparseableDateTime = errors.New("日期或时间格式无法识别")
	// ErrIngestionFailure 打卡表获取或解码整体失败，退化为仅花名册层级
	ErrIngestionFailure = errors.New("打卡表获取或解码失败")
)
