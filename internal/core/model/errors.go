/**
 * 转换错误定义
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 转换流水线的错误分类，可恢复错误计数放行，致命错误中止运行
 */
package model

import (
	"errors"
	"fmt"
)

// ==================== 转换错误定义 ====================

var (
	// 输入无法按 UTF-8 文本解码，解析开始前即中止
	ErrInputDecode = errors.New("input cannot be decoded as UTF-8 text")

	// 非空输入没有产出任何记录，多半是选错了格式
	ErrNoRecordsParsed = errors.New("no records parsed from non-empty input")

	// 输出目标不可写，不留下半成品文件
	ErrSerialization = errors.New("failed to serialize records")
)

// UnitParseError 单个行/块解析失败
// 可恢复：计入跳过计数后继续，不改变进程退出状态
type UnitParseError struct {
	Line   int    // 原始文件中的 1 起始行号
	Reason string // 失败原因
}

func (e *UnitParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
