/**
 * 格式解析器接口定义
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 每种工具格式一个解析器，消费归一化单元并产出规范化记录。
 *               遵循 "Small Interfaces" 原则。
 */
package parser

import (
	"fmt"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

// Parser 接口定义了所有格式解析器必须实现的方法
type Parser interface {
	// Tool 返回该格式对应的 source_tool 标签
	Tool() string

	// Format 返回该解析器消费的归一化格式
	Format() normalizer.Format

	// Parse 解析一个单元，产出零或多条记录
	// 无法识别的单元返回 *model.UnitParseError (可恢复)；
	// 装饰性内容 (banner、进度行) 返回 (nil, nil)
	Parse(unit normalizer.Unit) ([]model.Record, error)
}

// ForFormat 按格式标签构造解析器
// 格式由调用方显式选择，不做内容探测
func ForFormat(format normalizer.Format) (Parser, error) {
	switch format {
	case normalizer.FormatSubdomain:
		return NewSubdomainParser(), nil
	case normalizer.FormatNmap:
		return NewNmapParser(), nil
	case normalizer.FormatSSLScan:
		return NewSSLScanParser(), nil
	case normalizer.FormatNuclei:
		return NewNucleiParser(), nil
	default:
		return nil, fmt.Errorf("no parser registered for format %q", format)
	}
}
