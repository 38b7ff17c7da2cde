/**
 * nuclei 控制台输出解析器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 解析 nuclei 文本输出：三括号组的发现行和带级别标签的日志行。
 *               按括号数量和严重级别词表区分 finding 与 log。
 */
package parser

import (
	"regexp"
	"strings"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

var (
	// [template-id] [protocol] [severity] target [extra]
	nucleiFindingRegexp = regexp.MustCompile(`^\[([^\]]+)\]\s+\[([^\]]+)\]\s+\[([^\]]+)\]\s+(\S+)(?:\s+\[(.*)\])?\s*$`)

	// [INF] Using Nuclei Engine 3.1.0
	nucleiLogRegexp = regexp.MustCompile(`^\[(INF|WRN|ERR|FTL|DBG)\]\s+(.*)$`)
)

// 发现行第三个括号组必须是已识别的严重级别
var nucleiSeverities = map[string]bool{
	"info":     true,
	"low":      true,
	"medium":   true,
	"high":     true,
	"critical": true,
	"unknown":  true,
}

// 日志级别标签到 log_level 的映射
var nucleiLogLevels = map[string]string{
	"INF": "info",
	"WRN": "warning",
	"ERR": "error",
	"FTL": "fatal",
	"DBG": "debug",
}

// NucleiParser 每个单元一行，产出一条 log_entry 记录
type NucleiParser struct{}

func NewNucleiParser() *NucleiParser {
	return &NucleiParser{}
}

func (p *NucleiParser) Tool() string {
	return "nuclei"
}

func (p *NucleiParser) Format() normalizer.Format {
	return normalizer.FormatNuclei
}

func (p *NucleiParser) Parse(unit normalizer.Unit) ([]model.Record, error) {
	if len(unit.Lines) == 0 {
		return nil, nil
	}
	line := unit.Lines[0]

	if m := nucleiFindingRegexp.FindStringSubmatch(line); m != nil {
		severity := strings.ToLower(m[3])
		if nucleiSeverities[severity] {
			return []model.Record{&model.LogRecord{
				EntryKind: model.EntryKindFinding,
				Template:  m[1],
				Protocol:  m[2],
				Severity:  severity,
				Target:    m[4],
				ExtraInfo: strings.TrimSpace(m[5]),
			}}, nil
		}
		// 括号数量凑够但第三组不是严重级别，落回日志判定
	}

	if m := nucleiLogRegexp.FindStringSubmatch(line); m != nil {
		return []model.Record{&model.LogRecord{
			EntryKind: model.EntryKindLog,
			LogLevel:  nucleiLogLevels[m[1]],
			Message:   m[2],
		}}, nil
	}

	return nil, &model.UnitParseError{
		Line:   unit.Line,
		Reason: "line matches neither finding nor log pattern",
	}
}
