/**
 * 子域名列表解析器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 解析 subfinder/sublist3r 风格的纯文本子域名列表，每行一个主机名
 */
package parser

import (
	"regexp"
	"strings"

	"golang.org/x/net/idna"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

// 宽松主机名文法：点分隔的 [A-Za-z0-9-] 标签，无前导/尾随点
var hostnameRegexp = regexp.MustCompile(`^[a-z0-9-]+(\.[a-z0-9-]+)*$`)

// SubdomainParser 一行一个主机名
type SubdomainParser struct{}

func NewSubdomainParser() *SubdomainParser {
	return &SubdomainParser{}
}

func (p *SubdomainParser) Tool() string {
	return "subfinder"
}

func (p *SubdomainParser) Format() normalizer.Format {
	return normalizer.FormatSubdomain
}

func (p *SubdomainParser) Parse(unit normalizer.Unit) ([]model.Record, error) {
	if len(unit.Lines) == 0 {
		return nil, nil
	}
	raw := strings.TrimSpace(unit.Lines[0])
	if raw == "" {
		// 空单元静默跳过，不计为解析失败
		return nil, nil
	}

	hostname, ok := normalizeHostname(raw)
	if !ok {
		return nil, &model.UnitParseError{
			Line:   unit.Line,
			Reason: "not a valid hostname: " + raw,
		}
	}

	rec := &model.HostRecord{Hostname: hostname}
	if hostname != raw {
		rec.RawHostname = raw
	}
	return []model.Record{rec}, nil
}

// normalizeHostname 小写化并校验主机名
// 非 ASCII 域名先经 punycode 转换再校验，保证重跑时 ID 稳定
func normalizeHostname(raw string) (string, bool) {
	lower := strings.ToLower(raw)
	if hostnameRegexp.MatchString(lower) {
		return lower, true
	}

	ascii, err := idna.Lookup.ToASCII(lower)
	if err == nil && hostnameRegexp.MatchString(ascii) {
		return ascii, true
	}
	return "", false
}
