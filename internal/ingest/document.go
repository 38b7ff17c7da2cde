/**
 * 可检索文档文本构造
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 按 record_type 以固定顺序拼接记录的文本字段，作为语义检索的文档。
 *               顺序即契约：改动会改变嵌入结果，等同改 Schema。
 */
package ingest

import (
	"fmt"
	"strings"

	"neovector/internal/core/model"
)

// BuildDocument 为一条记录构造检索文档
func BuildDocument(rec model.Record) string {
	switch r := rec.(type) {
	case *model.HostRecord:
		return buildHostDocument(r)
	case *model.PortServiceRecord:
		return buildPortServiceDocument(r)
	case *model.ProtocolStatusRecord:
		return buildProtocolStatusDocument(r)
	case *model.LogRecord:
		return buildLogDocument(r)
	default:
		return ""
	}
}

func buildHostDocument(r *model.HostRecord) string {
	parts := []string{"Hostname: " + r.Hostname}
	if r.InputOrigin != "" {
		parts = append(parts, "Origin: "+r.InputOrigin)
	}
	return strings.Join(parts, "\n")
}

// 顺序: IP、主机名、MAC/厂商、状态、OS、每个端口一行服务描述
func buildPortServiceDocument(r *model.PortServiceRecord) string {
	parts := []string{"IP Address: " + r.IP}
	if r.Hostname != "" {
		parts = append(parts, "Hostname: "+r.Hostname)
	}
	if r.MACAddress != "" {
		parts = append(parts, "MAC Address: "+r.MACAddress)
		if r.Vendor != "" {
			parts = append(parts, "Vendor: "+r.Vendor)
		}
	}
	parts = append(parts, "Status: "+r.State)
	if r.OSName != "" {
		os := "Operating System: " + r.OSName
		if r.OSAccuracy != "" {
			os += fmt.Sprintf(" (Accuracy: %s%%)", r.OSAccuracy)
		}
		parts = append(parts, os)
	}

	open := r.OpenPortCount()
	if len(r.Ports) > 0 {
		parts = append(parts, fmt.Sprintf("Open Ports: %d", open))
		for _, p := range r.Ports {
			if p.State != "open" {
				continue
			}
			line := fmt.Sprintf("%d/%s: %s", p.Port, p.Protocol, p.Service)
			if p.Version != "" {
				line += " (" + p.Version + ")"
			}
			parts = append(parts, line)
		}
	}
	return strings.Join(parts, "\n")
}

// 顺序: 目标、IP、端口、启用协议列表、heartbleed 判定
func buildProtocolStatusDocument(r *model.ProtocolStatusRecord) string {
	parts := []string{"Target: " + r.Target}
	if r.IP != "" {
		parts = append(parts, "IP Address: "+r.IP)
	}
	parts = append(parts, fmt.Sprintf("Port: %d", r.Port))

	enabled := r.EnabledProtocols()
	if len(enabled) > 0 {
		parts = append(parts, "TLS protocols: "+strings.Join(enabled, ", "))
	} else {
		parts = append(parts, "TLS protocols: none enabled")
	}
	for _, name := range model.TLSProtocolVocabulary {
		if verdict, ok := r.Heartbleed[name]; ok {
			parts = append(parts, fmt.Sprintf("Heartbleed %s: %s", name, verdict))
		}
	}
	return strings.Join(parts, "\n")
}

// 顺序: finding 为严重级别、模板、目标、附加信息；log 为级别和消息
func buildLogDocument(r *model.LogRecord) string {
	if r.EntryKind == model.EntryKindFinding {
		parts := []string{
			"Severity: " + r.Severity,
			"Template: " + r.Template,
			"Protocol: " + r.Protocol,
			"Target: " + r.Target,
		}
		if r.ExtraInfo != "" {
			parts = append(parts, "Extra: "+r.ExtraInfo)
		}
		return strings.Join(parts, "\n")
	}
	return "Log " + r.LogLevel + ": " + r.Message
}
