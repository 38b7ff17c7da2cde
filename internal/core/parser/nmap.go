/**
 * nmap 文本输出解析器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 解析 nmap 普通文本输出的主机块：报告头、端口表、OS/MAC 元数据。
 *               nmap 输出混杂结构化表格和自由评论，无法匹配任何规则的行按装饰内容忽略。
 */
package parser

import (
	"regexp"
	"strconv"
	"strings"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

// 主机块内的行规则，按优先级依次尝试
var (
	// Nmap scan report for example.com (192.168.1.10)
	nmapReportHostRegexp = regexp.MustCompile(`^Nmap scan report for\s+(\S+)\s+\((\d+\.\d+\.\d+\.\d+)\)`)
	// Nmap scan report for 192.168.1.10
	nmapReportIPRegexp = regexp.MustCompile(`^Nmap scan report for\s+(\d+\.\d+\.\d+\.\d+)\s*$`)
	// 裸 IP 行开启主机块
	nmapBareIPRegexp = regexp.MustCompile(`^(\d+\.\d+\.\d+\.\d+)\s*$`)

	// 22/tcp  open  ssh  OpenSSH 8.9p1
	nmapPortRowRegexp = regexp.MustCompile(`^(\d+)/([a-z]+)\s+(open|closed|filtered|unfiltered|open\|filtered|closed\|filtered)\s+(\S+)(?:\s+(.+))?$`)

	nmapHostUpRegexp   = regexp.MustCompile(`^Host is up(?:\s+\(([\d.]+)s latency\))?`)
	nmapHostDownRegexp = regexp.MustCompile(`^Host seems down|^Host is down`)
	nmapRDNSRegexp     = regexp.MustCompile(`^rDNS record for \S+:\s*(.+)$`)
	nmapMACRegexp      = regexp.MustCompile(`^MAC Address:\s*([0-9A-Fa-f:]+)(?:\s+\((.+)\))?`)

	// OS 探测子块
	nmapOSDetailsRegexp = regexp.MustCompile(`^OS details:\s*(.+)$`)
	nmapOSRunningRegexp = regexp.MustCompile(`^Running:\s*(.+)$`)
	nmapOSGuessRegexp   = regexp.MustCompile(`^Aggressive OS guesses:\s*(.+?)\s*\((\d+)%\)`)
)

// NmapParser 每个单元一个主机块，产出一条 port_service 记录
type NmapParser struct{}

func NewNmapParser() *NmapParser {
	return &NmapParser{}
}

func (p *NmapParser) Tool() string {
	return "nmap"
}

func (p *NmapParser) Format() normalizer.Format {
	return normalizer.FormatNmap
}

func (p *NmapParser) Parse(unit normalizer.Unit) ([]model.Record, error) {
	if len(unit.Lines) == 0 {
		return nil, nil
	}

	rec, ok := parseHostHeader(unit.Lines[0])
	if !ok {
		// 首个主机头之前的前导块 (版本 banner、进度统计)，按装饰内容忽略
		return nil, nil
	}

	for _, line := range unit.Lines[1:] {
		parseHostLine(rec, line)
	}

	if rec.State == "" {
		rec.State = "unknown"
	}
	if rec.Ports == nil {
		rec.Ports = []model.PortEntry{}
	}
	return []model.Record{rec}, nil
}

// parseHostHeader 识别主机块的三种开头形式
func parseHostHeader(line string) (*model.PortServiceRecord, bool) {
	if m := nmapReportHostRegexp.FindStringSubmatch(line); m != nil {
		return &model.PortServiceRecord{Hostname: m[1], IP: m[2]}, true
	}
	if m := nmapReportIPRegexp.FindStringSubmatch(line); m != nil {
		return &model.PortServiceRecord{IP: m[1]}, true
	}
	if m := nmapBareIPRegexp.FindStringSubmatch(line); m != nil {
		return &model.PortServiceRecord{IP: m[1]}, true
	}
	return nil, false
}

// parseHostLine 把块内一行折叠进主机记录，无规则命中时不做任何事
func parseHostLine(rec *model.PortServiceRecord, line string) {
	if m := nmapPortRowRegexp.FindStringSubmatch(line); m != nil {
		port, _ := strconv.Atoi(m[1])
		rec.Ports = append(rec.Ports, model.PortEntry{
			Port:     port,
			Protocol: m[2],
			State:    m[3],
			Service:  m[4],
			Version:  strings.TrimSpace(m[5]),
		})
		return
	}

	if m := nmapHostUpRegexp.FindStringSubmatch(line); m != nil {
		rec.State = "up"
		if m[1] != "" {
			rec.Latency = m[1] + "s"
		}
		return
	}
	if nmapHostDownRegexp.MatchString(line) {
		rec.State = "down"
		return
	}

	if m := nmapRDNSRegexp.FindStringSubmatch(line); m != nil {
		rec.RDNS = m[1]
		return
	}
	if m := nmapMACRegexp.FindStringSubmatch(line); m != nil {
		rec.MACAddress = m[1]
		rec.Vendor = strings.TrimSpace(m[2])
		return
	}

	if m := nmapOSDetailsRegexp.FindStringSubmatch(line); m != nil {
		rec.OSName = m[1]
		return
	}
	if m := nmapOSRunningRegexp.FindStringSubmatch(line); m != nil {
		// OS details 优先于 Running 粗分类
		if rec.OSName == "" {
			rec.OSName = m[1]
		}
		return
	}
	if m := nmapOSGuessRegexp.FindStringSubmatch(line); m != nil {
		if rec.OSName == "" {
			rec.OSName = m[1]
			rec.OSAccuracy = m[2]
		}
		return
	}
}
