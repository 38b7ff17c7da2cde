package parser

import (
	"testing"

	"neovector/internal/core/model"
	"neovector/internal/core/normalizer"
)

func TestNmapParser_FullHostBlock(t *testing.T) {
	p := NewNmapParser()

	unit := normalizer.Unit{
		Index: 2,
		Line:  3,
		Lines: []string{
			"Nmap scan report for web01.example.com (192.168.1.10)",
			"Host is up (0.0010s latency).",
			"rDNS record for 192.168.1.10: web01.internal",
			"PORT     STATE SERVICE  VERSION",
			"22/tcp   open  ssh      OpenSSH 8.9p1 Ubuntu 3ubuntu0.1",
			"80/tcp   open  http     nginx 1.18.0",
			"443/tcp  closed https",
			"MAC Address: 00:1A:2B:3C:4D:5E (Dell Inc.)",
			"OS details: Linux 5.4 - 5.15",
		},
	}

	records, err := p.Parse(unit)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("Expected 1 record per host block, got %d", len(records))
	}

	rec := records[0].(*model.PortServiceRecord)
	if rec.IP != "192.168.1.10" {
		t.Errorf("Expected IP 192.168.1.10, got %q", rec.IP)
	}
	if rec.Hostname != "web01.example.com" {
		t.Errorf("Expected hostname web01.example.com, got %q", rec.Hostname)
	}
	if rec.State != "up" {
		t.Errorf("Expected state up, got %q", rec.State)
	}
	if rec.Latency != "0.0010s" {
		t.Errorf("Expected latency 0.0010s, got %q", rec.Latency)
	}
	if rec.RDNS != "web01.internal" {
		t.Errorf("Expected rDNS web01.internal, got %q", rec.RDNS)
	}
	if rec.MACAddress != "00:1A:2B:3C:4D:5E" || rec.Vendor != "Dell Inc." {
		t.Errorf("MAC/Vendor wrong: %q / %q", rec.MACAddress, rec.Vendor)
	}
	if rec.OSName != "Linux 5.4 - 5.15" {
		t.Errorf("Expected OS details, got %q", rec.OSName)
	}

	// 端口表：表头行被忽略，closed 行保留
	if len(rec.Ports) != 3 {
		t.Fatalf("Expected 3 port rows, got %d", len(rec.Ports))
	}
	ssh := rec.Ports[0]
	if ssh.Port != 22 || ssh.Protocol != "tcp" || ssh.State != "open" || ssh.Service != "ssh" {
		t.Errorf("SSH row wrong: %+v", ssh)
	}
	if ssh.Version != "OpenSSH 8.9p1 Ubuntu 3ubuntu0.1" {
		t.Errorf("Expected full version string, got %q", ssh.Version)
	}
	if rec.Ports[2].State != "closed" || rec.Ports[2].Version != "" {
		t.Errorf("Closed row wrong: %+v", rec.Ports[2])
	}
	if rec.OpenPortCount() != 2 {
		t.Errorf("Expected 2 open ports, got %d", rec.OpenPortCount())
	}
}

func TestNmapParser_DownHost(t *testing.T) {
	p := NewNmapParser()

	unit := normalizer.Unit{
		Index: 1,
		Line:  1,
		Lines: []string{
			"Nmap scan report for 10.0.0.9",
			"Host seems down. If it is really up, but blocking our ping probes, try -Pn",
		},
	}

	records, err := p.Parse(unit)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rec := records[0].(*model.PortServiceRecord)
	if rec.IP != "10.0.0.9" || rec.Hostname != "" {
		t.Errorf("Header parse wrong: ip=%q hostname=%q", rec.IP, rec.Hostname)
	}
	if rec.State != "down" {
		t.Errorf("Expected state down, got %q", rec.State)
	}
	// 端口表缺席时序列化为 [] 而不是 null
	if rec.Ports == nil || len(rec.Ports) != 0 {
		t.Errorf("Expected empty non-nil port slice, got %#v", rec.Ports)
	}
}

func TestNmapParser_PreambleIgnored(t *testing.T) {
	p := NewNmapParser()

	unit := normalizer.Unit{
		Index: 1,
		Line:  1,
		Lines: []string{
			"Starting Nmap 7.94 ( https://nmap.org ) at 2026-08-12 10:00 UTC",
			"Nmap done: 1 IP address (1 host up) scanned in 2.05 seconds",
		},
	}

	records, err := p.Parse(unit)
	if err != nil {
		t.Fatalf("Preamble must not error: %v", err)
	}
	if records != nil {
		t.Errorf("Preamble must yield no records, got %v", records)
	}
}

func TestNmapParser_StateDefaultsUnknown(t *testing.T) {
	p := NewNmapParser()

	unit := normalizer.Unit{
		Index: 1,
		Line:  1,
		Lines: []string{
			"Nmap scan report for 10.0.0.1",
			"53/udp open|filtered domain",
		},
	}

	records, err := p.Parse(unit)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	rec := records[0].(*model.PortServiceRecord)
	if rec.State != "unknown" {
		t.Errorf("Expected state unknown without liveness line, got %q", rec.State)
	}
	if len(rec.Ports) != 1 || rec.Ports[0].State != "open|filtered" {
		t.Errorf("Compound state row wrong: %+v", rec.Ports)
	}
}
