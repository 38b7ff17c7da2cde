/**
 * sslscan 文本输出解析器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 解析 sslscan 文本输出的目标块：协议启用状态和 heartbleed 判定。
 *               协议状态使用固定词表预置为 disabled，未知协议按原文记录，避免静默丢数据。
 */
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

var (
	// Testing SSL server example.com on port 443 using SNI name example.com
	sslscanHeaderRegexp = regexp.MustCompile(`^Testing SSL server\s+(\S+)\s+on port\s+(\d+)`)
	// Connected to 93.184.216.34
	sslscanConnectedRegexp = regexp.MustCompile(`^Connected to\s+(\S+)`)

	// TLSv1.2    enabled  /  TLSv1.2: enabled
	sslscanProtocolRegexp = regexp.MustCompile(`^([A-Za-z][A-Za-z0-9.]+)\s*:?\s+(enabled|disabled)$`)

	// TLSv1.2 not vulnerable to heartbleed  /  TLSv1.1 vulnerable to heartbleed
	sslscanHeartbleedRegexp = regexp.MustCompile(`^(\S+)\s+(not\s+)?vulnerable to heartbleed`)
)

// SSLScanParser 每个单元一个扫描目标块，产出一条 protocol_status 记录
type SSLScanParser struct{}

func NewSSLScanParser() *SSLScanParser {
	return &SSLScanParser{}
}

func (p *SSLScanParser) Tool() string {
	return "sslscan"
}

func (p *SSLScanParser) Format() normalizer.Format {
	return normalizer.FormatSSLScan
}

func (p *SSLScanParser) Parse(unit normalizer.Unit) ([]model.Record, error) {
	if len(unit.Lines) == 0 {
		return nil, nil
	}

	m := sslscanHeaderRegexp.FindStringSubmatch(unit.Lines[0])
	if m == nil {
		// 版本 banner 等前导块
		return nil, nil
	}

	port, _ := strconv.Atoi(m[2])
	rec := &model.ProtocolStatusRecord{
		Target:     m[1],
		Port:       port,
		Protocols:  make(map[string]string, len(model.TLSProtocolVocabulary)),
		Heartbleed: make(map[string]string),
	}
	// 词表六个协议预置 disabled，出现过的行覆盖
	for _, name := range model.TLSProtocolVocabulary {
		rec.Protocols[name] = "disabled"
	}

	for _, line := range unit.Lines[1:] {
		if m := sslscanConnectedRegexp.FindStringSubmatch(line); m != nil {
			rec.IP = m[1]
			continue
		}
		if m := sslscanProtocolRegexp.FindStringSubmatch(line); m != nil {
			rec.Protocols[m[1]] = m[2]
			continue
		}
		if m := sslscanHeartbleedRegexp.FindStringSubmatch(line); m != nil {
			verdict := "vulnerable"
			if strings.TrimSpace(m[2]) != "" {
				verdict = "not vulnerable"
			}
			rec.Heartbleed[m[1]] = verdict
			continue
		}
		// 密码套件、证书等其余小节暂不入库
	}

	return []model.Record{rec}, nil
}
