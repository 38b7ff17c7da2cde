package model

import (
	"fmt"
	"strconv"
	"strings"
)

// Headers 实现 TabularData 接口
// ID | Tool | Hostname
func (r HostRecord) Headers() []string {
	// 表头列
	return []string{"ID", "Tool", "Hostname"}
}

// Rows 实现 TabularData 接口
func (r HostRecord) Rows() [][]string {
	return [][]string{{strconv.Itoa(r.ID), r.SourceTool, r.Hostname}}
}

// Headers 实现 TabularData 接口
// ID | IP | Hostname | State | Open Ports | OS
func (r PortServiceRecord) Headers() []string {
	return []string{"ID", "IP", "Hostname", "State", "Open Ports", "OS"}
}

// Rows 实现 TabularData 接口
// 每个开放端口一行，主机信息只在首行出现
func (r PortServiceRecord) Rows() [][]string {
	open := make([]PortEntry, 0, len(r.Ports))
	for _, p := range r.Ports {
		if p.State == "open" {
			open = append(open, p)
		}
	}

	if len(open) == 0 {
		return [][]string{{strconv.Itoa(r.ID), r.IP, r.Hostname, r.State, "-", r.OSName}}
	}

	rows := make([][]string, 0, len(open))
	for i, p := range open {
		portCol := fmt.Sprintf("%d/%s %s", p.Port, p.Protocol, p.Service)
		if p.Version != "" {
			portCol += " (" + p.Version + ")"
		}
		if i == 0 {
			rows = append(rows, []string{strconv.Itoa(r.ID), r.IP, r.Hostname, r.State, portCol, r.OSName})
		} else {
			rows = append(rows, []string{"", "", "", "", portCol, ""})
		}
	}
	return rows
}

// Headers 实现 TabularData 接口
// ID | Target | Port | Enabled | Heartbleed
func (r ProtocolStatusRecord) Headers() []string {
	return []string{"ID", "Target", "Port", "Enabled", "Heartbleed"}
}

// Rows 实现 TabularData 接口
func (r ProtocolStatusRecord) Rows() [][]string {
	enabled := r.EnabledProtocols()
	enabledCol := "none"
	if len(enabled) > 0 {
		enabledCol = strings.Join(enabled, ", ")
	}

	heartbleed := "-"
	for _, version := range TLSProtocolVocabulary {
		if r.Heartbleed[version] == "vulnerable" {
			heartbleed = "vulnerable (" + version + ")"
			break
		}
	}

	return [][]string{{strconv.Itoa(r.ID), r.Target, strconv.Itoa(r.Port), enabledCol, heartbleed}}
}

// Headers 实现 TabularData 接口
// ID | Kind | Severity/Level | Target | Detail
func (r LogRecord) Headers() []string {
	return []string{"ID", "Kind", "Severity/Level", "Target", "Detail"}
}

// Rows 实现 TabularData 接口
func (r LogRecord) Rows() [][]string {
	if r.EntryKind == EntryKindFinding {
		detail := r.Template
		if r.ExtraInfo != "" {
			detail += " [" + r.ExtraInfo + "]"
		}
		return [][]string{{strconv.Itoa(r.ID), r.EntryKind, r.Severity, r.Target, detail}}
	}
	return [][]string{{strconv.Itoa(r.ID), r.EntryKind, r.LogLevel, "-", r.Message}}
}
