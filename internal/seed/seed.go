// Package seed 内置的默认花名册文本
// 未配置 roster.path 且未上传花名册时使用
package seed

import _ "embed"

// Roster 默认花名册原文（空白分隔的 PDF 提取文本）
//
//go:embed roster.txt
var Roster string
