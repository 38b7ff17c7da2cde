package normalizer

import (
	"errors"
	"strings"
	"testing"

	"neovector/internal/core/model"
)

func TestNormalize_SubdomainLines(t *testing.T) {
	input := "a.example.com\n\n# comment line\nb.example.com\n====\nc.example.com\n"

	units, err := Normalize(strings.NewReader(input), FormatSubdomain)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// 空行、注释行、分隔线都被丢弃
	if len(units) != 3 {
		t.Fatalf("Expected 3 units, got %d", len(units))
	}

	want := []string{"a.example.com", "b.example.com", "c.example.com"}
	for i, u := range units {
		if u.Index != i+1 {
			t.Errorf("Unit %d: expected index %d, got %d", i, i+1, u.Index)
		}
		if len(u.Lines) != 1 || u.Lines[0] != want[i] {
			t.Errorf("Unit %d: expected line %q, got %v", i, want[i], u.Lines)
		}
	}

	// 行号指向原始文件
	if units[1].Line != 4 {
		t.Errorf("Expected b.example.com at source line 4, got %d", units[1].Line)
	}
}

func TestNormalize_NucleiKeepsComments(t *testing.T) {
	// # 注释丢弃只针对 subdomain 格式
	input := "#no-comment-rule\n[INF] starting\n"

	units, err := Normalize(strings.NewReader(input), FormatNuclei)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("Expected 2 units, got %d", len(units))
	}
}

func TestNormalize_NmapBlocks(t *testing.T) {
	input := strings.Join([]string{
		"Starting Nmap 7.94 ( https://nmap.org )",
		"Nmap scan report for web01.example.com (192.168.1.10)",
		"Host is up (0.0010s latency).",
		"22/tcp open ssh OpenSSH 8.9p1",
		"",
		"Nmap scan report for 192.168.1.11",
		"Host seems down.",
		"Nmap done: 2 IP addresses scanned",
	}, "\n")

	units, err := Normalize(strings.NewReader(input), FormatNmap)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	// 前导 banner 自成一个单元，之后每个报告头开启一块
	if len(units) != 3 {
		t.Fatalf("Expected 3 units (preamble + 2 hosts), got %d", len(units))
	}
	if !strings.HasPrefix(units[1].Lines[0], "Nmap scan report for web01") {
		t.Errorf("Unit 2 should start at first host header, got %q", units[1].Lines[0])
	}
	if len(units[1].Lines) != 3 {
		t.Errorf("Expected 3 lines in first host block, got %d", len(units[1].Lines))
	}
	// 尾部统计行归入最后一块，解析器按装饰内容忽略
	if len(units[2].Lines) != 3 {
		t.Errorf("Expected 3 lines in second host block, got %d", len(units[2].Lines))
	}
}

func TestNormalize_SSLScanBlocks(t *testing.T) {
	// sslscan 真实输出顺序：连接行在目标头之前
	input := strings.Join([]string{
		"Version: 2.1.3",
		"Connected to 192.168.1.10",
		"Testing SSL server one.example.com on port 443 using SNI name one.example.com",
		"TLSv1.2   enabled",
		"Connected to 192.168.1.11",
		"Testing SSL server two.example.com on port 8443",
		"TLSv1.3   enabled",
	}, "\n")

	units, err := Normalize(strings.NewReader(input), FormatSSLScan)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(units) != 3 {
		t.Fatalf("Expected 3 units (preamble + 2 targets), got %d", len(units))
	}

	// 连接行并入所属目标块，且目标头保持单元首行
	for i, wantIP := range []string{"192.168.1.10", "192.168.1.11"} {
		u := units[i+1]
		if !strings.HasPrefix(u.Lines[0], "Testing SSL server") {
			t.Errorf("Unit %d should start with target header, got %q", u.Index, u.Lines[0])
		}
		found := false
		for _, line := range u.Lines[1:] {
			if line == "Connected to "+wantIP {
				found = true
			}
		}
		if !found {
			t.Errorf("Unit %d missing connection line for %s: %v", u.Index, wantIP, u.Lines)
		}
	}
}

func TestNormalize_SSLScanTrailingConnection(t *testing.T) {
	// 末尾悬空的连接行 (目标无响应时 sslscan 可能中断) 不得混入前一个目标块
	input := strings.Join([]string{
		"Connected to 192.168.1.10",
		"Testing SSL server one.example.com on port 443",
		"TLSv1.2   enabled",
		"Connected to 192.168.1.99",
	}, "\n")

	units, err := Normalize(strings.NewReader(input), FormatSSLScan)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(units) != 2 {
		t.Fatalf("Expected 2 units, got %d", len(units))
	}
	for _, line := range units[0].Lines {
		if line == "Connected to 192.168.1.99" {
			t.Errorf("Trailing connection line leaked into target block: %v", units[0].Lines)
		}
	}
}

func TestNormalize_StripsAnsiAndBOM(t *testing.T) {
	input := "\xEF\xBB\xBF\x1b[32m[INF]\x1b[0m engine ready\n"

	units, err := Normalize(strings.NewReader(input), FormatNuclei)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	if len(units) != 1 {
		t.Fatalf("Expected 1 unit, got %d", len(units))
	}
	if units[0].Lines[0] != "[INF] engine ready" {
		t.Errorf("ANSI codes not stripped: %q", units[0].Lines[0])
	}
}

func TestNormalize_InvalidUTF8(t *testing.T) {
	input := "valid line\n\xff\xfe broken\n"

	_, err := Normalize(strings.NewReader(input), FormatSubdomain)
	if !errors.Is(err, model.ErrInputDecode) {
		t.Fatalf("Expected ErrInputDecode, got %v", err)
	}
}

func TestNormalize_Deterministic(t *testing.T) {
	input := "a.example.com\nb.example.com\n"

	first, err := Normalize(strings.NewReader(input), FormatSubdomain)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}
	second, err := Normalize(strings.NewReader(input), FormatSubdomain)
	if err != nil {
		t.Fatalf("Normalize failed: %v", err)
	}

	if len(first) != len(second) {
		t.Fatalf("Unit counts differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].Index != second[i].Index || first[i].Line != second[i].Line ||
			first[i].Lines[0] != second[i].Lines[0] {
			t.Errorf("Unit %d differs between runs", i)
		}
	}
}
