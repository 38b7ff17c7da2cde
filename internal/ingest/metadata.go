/**
 * 元数据扁平化
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 外部库的过滤契约只支持标量等值/比较，嵌套结构必须摊平或汇总。
 *               字段集按 record_type 固定且互不重叠，不强造统一 Schema。
 */
package ingest

import (
	"strings"

	"neovector/internal/core/model"
)

// BuildMetadata 为一条记录构造扁平标量元数据
func BuildMetadata(rec model.Record) map[string]interface{} {
	meta := map[string]interface{}{
		"record_type":  rec.Type(),
		"source_tool":  rec.Header().SourceTool,
		"input_origin": rec.Header().InputOrigin,
	}

	switch r := rec.(type) {
	case *model.HostRecord:
		meta["hostname"] = r.Hostname

	case *model.PortServiceRecord:
		meta["ip"] = r.IP
		meta["state"] = r.State
		meta["open_port_count"] = r.OpenPortCount()
		if r.Hostname != "" {
			meta["hostname"] = r.Hostname
		}
		if r.OSName != "" {
			meta["os_name"] = r.OSName
		}
		if r.OSAccuracy != "" {
			meta["os_accuracy"] = r.OSAccuracy
		}
		if r.MACAddress != "" {
			meta["mac_address"] = r.MACAddress
		}
		if r.Vendor != "" {
			meta["vendor"] = r.Vendor
		}

	case *model.ProtocolStatusRecord:
		meta["target"] = r.Target
		meta["port"] = r.Port
		if r.IP != "" {
			meta["ip"] = r.IP
		}
		// protocols 映射摊平为派生计数
		meta["enabled_protocol_count"] = len(r.EnabledProtocols())
		meta["weak_protocol_count"] = weakProtocolCount(r)
		meta["heartbleed_vulnerable"] = heartbleedVulnerable(r)

	case *model.LogRecord:
		meta["entry_kind"] = r.EntryKind
		if r.EntryKind == model.EntryKindFinding {
			meta["template"] = r.Template
			meta["severity"] = r.Severity
			meta["target"] = r.Target
		} else {
			meta["log_level"] = r.LogLevel
		}
	}
	return meta
}

// weakProtocolCount 启用的弃用协议数 (SSLv2/SSLv3/TLSv1.0/TLSv1.1)
func weakProtocolCount(r *model.ProtocolStatusRecord) int {
	n := 0
	for name, state := range r.Protocols {
		if state != "enabled" {
			continue
		}
		switch {
		case strings.HasPrefix(name, "SSL"):
			n++
		case name == "TLSv1.0" || name == "TLSv1.1":
			n++
		}
	}
	return n
}

func heartbleedVulnerable(r *model.ProtocolStatusRecord) bool {
	for _, verdict := range r.Heartbleed {
		if verdict == "vulnerable" {
			return true
		}
	}
	return false
}
