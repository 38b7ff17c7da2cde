/**
 * 规范化记录模型
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 定义各扫描工具输出归一化后的统一记录结构 (CanonicalRecord)
 */
package model

import (
	"encoding/json"
	"fmt"
)

// 记录类型常量
// 每种 source_tool 产出固定的 record_type，不做跨工具的统一 Schema
const (
	RecordTypeHost           = "host"            // 子域名枚举结果
	RecordTypePortService    = "port_service"    // nmap 主机+端口服务
	RecordTypeProtocolStatus = "protocol_status" // sslscan TLS 协议状态
	RecordTypeLogEntry       = "log_entry"       // nuclei 日志/发现条目
)

// Meta 记录公共头
// id 在一次转换内从 1 开始连续分配，溯源字段标记输入来源
type Meta struct {
	ID          int    `json:"id"`
	RecordType  string `json:"record_type"`
	SourceTool  string `json:"source_tool"`
	InputOrigin string `json:"input_origin"`
}

// Record 是所有规范化记录的统一接口
// Assembler 通过 Header() 写入 ID 与溯源字段，记录生成后视为不可变
type Record interface {
	Header() *Meta
	Type() string
}

// HostRecord 子域名记录 (subfinder/sublist3r 等纯文本列表)
type HostRecord struct {
	Meta
	Hostname    string `json:"hostname"`               // 统一小写，保证重跑 ID 稳定
	RawHostname string `json:"raw_hostname,omitempty"` // 原始大小写与输入不同时保留
}

func (r *HostRecord) Header() *Meta { return &r.Meta }
func (r *HostRecord) Type() string  { return RecordTypeHost }

// PortEntry 端口表中的一行
type PortEntry struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"`
	State    string `json:"state"`
	Service  string `json:"service"`
	Version  string `json:"version"`
}

// PortServiceRecord nmap 文本输出中的一台主机及其端口表
type PortServiceRecord struct {
	Meta
	IP         string      `json:"ip"`
	Hostname   string      `json:"hostname,omitempty"`
	State      string      `json:"state"`
	Ports      []PortEntry `json:"ports"`
	OSName     string      `json:"os_name,omitempty"`
	OSAccuracy string      `json:"os_accuracy,omitempty"`
	Vendor     string      `json:"vendor,omitempty"`
	MACAddress string      `json:"mac_address,omitempty"`
	RDNS       string      `json:"rdns,omitempty"`
	Latency    string      `json:"latency,omitempty"`
}

func (r *PortServiceRecord) Header() *Meta { return &r.Meta }
func (r *PortServiceRecord) Type() string  { return RecordTypePortService }

// OpenPortCount 统计 open 状态的端口数 (供元数据扁平化使用)
func (r *PortServiceRecord) OpenPortCount() int {
	n := 0
	for _, p := range r.Ports {
		if p.State == "open" {
			n++
		}
	}
	return n
}

// TLS 协议固定词表，sslscan 记录的 protocols 映射始终包含这六个键
var TLSProtocolVocabulary = []string{
	"SSLv2", "SSLv3", "TLSv1.0", "TLSv1.1", "TLSv1.2", "TLSv1.3",
}

// ProtocolStatusRecord sslscan 文本输出中的一个扫描目标
type ProtocolStatusRecord struct {
	Meta
	Target     string            `json:"target"`
	IP         string            `json:"ip,omitempty"`
	Port       int               `json:"port"`
	Protocols  map[string]string `json:"protocols"`  // 协议名 -> enabled|disabled，未知协议按原文记录
	Heartbleed map[string]string `json:"heartbleed"` // TLS 版本 -> vulnerable|not vulnerable
}

func (r *ProtocolStatusRecord) Header() *Meta { return &r.Meta }
func (r *ProtocolStatusRecord) Type() string  { return RecordTypeProtocolStatus }

// EnabledProtocols 返回词表顺序下启用的协议列表
func (r *ProtocolStatusRecord) EnabledProtocols() []string {
	var out []string
	for _, name := range TLSProtocolVocabulary {
		if r.Protocols[name] == "enabled" {
			out = append(out, name)
		}
	}
	return out
}

// 日志条目子类型
const (
	EntryKindFinding = "finding" // 带严重级别的漏洞/技术发现
	EntryKindLog     = "log"     // 工具运行日志行
)

// LogRecord nuclei 文本输出中的一行 (发现或日志)
type LogRecord struct {
	Meta
	EntryKind string `json:"entry_kind"`
	// finding 字段
	Template  string `json:"template,omitempty"`
	Protocol  string `json:"protocol,omitempty"`
	Severity  string `json:"severity,omitempty"`
	Target    string `json:"target,omitempty"`
	ExtraInfo string `json:"extra_info,omitempty"`
	// log 字段
	LogLevel string `json:"log_level,omitempty"`
	Message  string `json:"message,omitempty"`
}

func (r *LogRecord) Header() *Meta { return &r.Meta }
func (r *LogRecord) Type() string  { return RecordTypeLogEntry }

// UnmarshalRecords 按 record_type 分发反序列化一个记录数组
// 序列化与反序列化互为逆操作，字段类型不丢失
func UnmarshalRecords(data []byte) ([]Record, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return nil, fmt.Errorf("decode record array: %w", err)
	}

	records := make([]Record, 0, len(raws))
	for i, raw := range raws {
		var probe struct {
			RecordType string `json:"record_type"`
		}
		if err := json.Unmarshal(raw, &probe); err != nil {
			return nil, fmt.Errorf("decode record %d header: %w", i, err)
		}

		var rec Record
		switch probe.RecordType {
		case RecordTypeHost:
			rec = &HostRecord{}
		case RecordTypePortService:
			rec = &PortServiceRecord{}
		case RecordTypeProtocolStatus:
			rec = &ProtocolStatusRecord{}
		case RecordTypeLogEntry:
			rec = &LogRecord{}
		default:
			return nil, fmt.Errorf("record %d: unknown record_type %q", i, probe.RecordType)
		}
		if err := json.Unmarshal(raw, rec); err != nil {
			return nil, fmt.Errorf("decode record %d: %w", i, err)
		}
		records = append(records, rec)
	}
	return records, nil
}
