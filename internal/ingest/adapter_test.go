package ingest

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"neovector/internal/core/model"
	"neovector/internal/store"
)

// ==================== 测试替身 ====================

// flakyStore 按批次序号注入失败，其余委托给进程内存储
type flakyStore struct {
	*store.MemoryStore
	calls  int
	failOn map[int]error // 批次序号 (从 1 起) -> 注入的错误
}

func (f *flakyStore) Upsert(ctx context.Context, ids []int, documents []string, metadatas []map[string]interface{}) error {
	f.calls++
	if err, ok := f.failOn[f.calls]; ok {
		return err
	}
	return f.MemoryStore.Upsert(ctx, ids, documents, metadatas)
}

// ==================== 样本记录 ====================

func hostRecord(id int, hostname string) *model.HostRecord {
	r := &model.HostRecord{Hostname: hostname}
	r.ID = id
	r.RecordType = model.RecordTypeHost
	r.SourceTool = "subfinder"
	r.InputOrigin = "subs.txt"
	return r
}

func portServiceRecord(id int) *model.PortServiceRecord {
	r := &model.PortServiceRecord{
		IP:       "192.168.1.10",
		Hostname: "web01.example.com",
		State:    "up",
		OSName:   "Linux 5.4",
		Ports: []model.PortEntry{
			{Port: 22, Protocol: "tcp", State: "open", Service: "ssh", Version: "OpenSSH 8.9p1"},
			{Port: 80, Protocol: "tcp", State: "open", Service: "http"},
			{Port: 443, Protocol: "tcp", State: "closed", Service: "https"},
		},
	}
	r.ID = id
	r.RecordType = model.RecordTypePortService
	r.SourceTool = "nmap"
	r.InputOrigin = "scan.txt"
	return r
}

func protocolStatusRecord(id int) *model.ProtocolStatusRecord {
	r := &model.ProtocolStatusRecord{
		Target: "example.com",
		IP:     "93.184.216.34",
		Port:   443,
		Protocols: map[string]string{
			"SSLv3":   "enabled",
			"TLSv1.0": "enabled",
			"TLSv1.2": "enabled",
			"TLSv1.3": "disabled",
		},
		Heartbleed: map[string]string{
			"TLSv1.2": "vulnerable",
		},
	}
	r.ID = id
	r.RecordType = model.RecordTypeProtocolStatus
	r.SourceTool = "sslscan"
	r.InputOrigin = "tls.txt"
	return r
}

func findingRecord(id int) *model.LogRecord {
	r := &model.LogRecord{
		EntryKind: model.EntryKindFinding,
		Template:  "tech-detect",
		Severity:  "info",
		Protocol:  "http",
		Target:    "https://example.com",
		ExtraInfo: "nginx",
	}
	r.ID = id
	r.RecordType = model.RecordTypeLogEntry
	r.SourceTool = "nuclei"
	r.InputOrigin = "nuclei.txt"
	return r
}

// ==================== 文档构造 ====================

func TestBuildDocument_PortService(t *testing.T) {
	doc := BuildDocument(portServiceRecord(1))

	lines := strings.Split(doc, "\n")
	if lines[0] != "IP Address: 192.168.1.10" {
		t.Errorf("Document must lead with IP, got %q", lines[0])
	}
	if !strings.Contains(doc, "Hostname: web01.example.com") {
		t.Error("Missing hostname line")
	}
	if !strings.Contains(doc, "Open Ports: 2") {
		t.Errorf("Closed ports must not count as open:\n%s", doc)
	}
	if !strings.Contains(doc, "22/tcp: ssh (OpenSSH 8.9p1)") {
		t.Errorf("Missing versioned service line:\n%s", doc)
	}
	if strings.Contains(doc, "443/tcp") {
		t.Error("Closed port must not appear in the document")
	}
}

func TestBuildDocument_ProtocolStatus(t *testing.T) {
	doc := BuildDocument(protocolStatusRecord(1))

	if !strings.Contains(doc, "Target: example.com") {
		t.Error("Missing target line")
	}
	// 启用协议按词表顺序列出
	if !strings.Contains(doc, "TLS protocols: SSLv3, TLSv1.0, TLSv1.2") {
		t.Errorf("Enabled protocols wrong:\n%s", doc)
	}
	if !strings.Contains(doc, "Heartbleed TLSv1.2: vulnerable") {
		t.Errorf("Missing heartbleed verdict:\n%s", doc)
	}
}

func TestBuildDocument_Finding(t *testing.T) {
	doc := BuildDocument(findingRecord(1))

	if !strings.HasPrefix(doc, "Severity: info") {
		t.Errorf("Finding document must lead with severity:\n%s", doc)
	}
	if !strings.Contains(doc, "Template: tech-detect") || !strings.Contains(doc, "Extra: nginx") {
		t.Errorf("Finding document incomplete:\n%s", doc)
	}
}

// ==================== 元数据扁平化 ====================

func TestBuildMetadata_CommonFields(t *testing.T) {
	meta := BuildMetadata(hostRecord(1, "a.example.com"))
	if meta["record_type"] != model.RecordTypeHost {
		t.Errorf("record_type = %v", meta["record_type"])
	}
	if meta["source_tool"] != "subfinder" || meta["input_origin"] != "subs.txt" {
		t.Errorf("Common fields wrong: %v", meta)
	}
	if meta["hostname"] != "a.example.com" {
		t.Errorf("hostname = %v", meta["hostname"])
	}
}

func TestBuildMetadata_DerivedCounts(t *testing.T) {
	meta := BuildMetadata(portServiceRecord(1))
	if meta["open_port_count"] != 2 {
		t.Errorf("open_port_count = %v", meta["open_port_count"])
	}
	if meta["state"] != "up" || meta["os_name"] != "Linux 5.4" {
		t.Errorf("Scalar fields wrong: %v", meta)
	}

	meta = BuildMetadata(protocolStatusRecord(1))
	if meta["enabled_protocol_count"] != 3 {
		t.Errorf("enabled_protocol_count = %v", meta["enabled_protocol_count"])
	}
	// SSLv3 与 TLSv1.0 属于弃用协议
	if meta["weak_protocol_count"] != 2 {
		t.Errorf("weak_protocol_count = %v", meta["weak_protocol_count"])
	}
	if meta["heartbleed_vulnerable"] != true {
		t.Errorf("heartbleed_vulnerable = %v", meta["heartbleed_vulnerable"])
	}
}

func TestBuildMetadata_LogEntryKinds(t *testing.T) {
	meta := BuildMetadata(findingRecord(1))
	if meta["entry_kind"] != model.EntryKindFinding || meta["severity"] != "info" {
		t.Errorf("Finding metadata wrong: %v", meta)
	}
	if _, ok := meta["log_level"]; ok {
		t.Error("Finding must not carry log_level")
	}

	logRec := &model.LogRecord{EntryKind: model.EntryKindLog, LogLevel: "warning", Message: "slow target"}
	logRec.ID = 2
	logRec.RecordType = model.RecordTypeLogEntry
	meta = BuildMetadata(logRec)
	if meta["log_level"] != "warning" {
		t.Errorf("log_level = %v", meta["log_level"])
	}
	if _, ok := meta["severity"]; ok {
		t.Error("Log line must not carry severity")
	}
}

// ==================== 批量入库 ====================

func TestIngest_Batches(t *testing.T) {
	mem := store.NewMemoryStore()
	adapter := NewAdapter(mem).WithBatchSize(2)

	records := []model.Record{
		hostRecord(1, "a.example.com"),
		hostRecord(2, "b.example.com"),
		hostRecord(3, "c.example.com"),
		hostRecord(4, "d.example.com"),
		hostRecord(5, "e.example.com"),
	}

	summary, err := adapter.Ingest(context.Background(), records)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if summary.Prepared != 5 || summary.Uploaded != 5 || summary.Failed != 0 {
		t.Errorf("Summary wrong: %+v", summary)
	}
	if summary.Batches != 3 {
		t.Errorf("Expected 3 batches of size 2, got %d", summary.Batches)
	}

	count, _ := mem.Count(context.Background())
	if count != 5 {
		t.Errorf("Expected 5 documents in store, got %d", count)
	}
}

func TestIngest_Empty(t *testing.T) {
	adapter := NewAdapter(store.NewMemoryStore())
	summary, err := adapter.Ingest(context.Background(), nil)
	if err != nil {
		t.Fatalf("Ingest failed: %v", err)
	}
	if summary.Prepared != 0 || summary.Batches != 0 {
		t.Errorf("Summary wrong: %+v", summary)
	}
}

func TestIngest_BatchFailureContinues(t *testing.T) {
	flaky := &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failOn:      map[int]error{2: fmt.Errorf("metadata rejected")},
	}
	adapter := NewAdapter(flaky).WithBatchSize(2)

	records := []model.Record{
		hostRecord(1, "a.example.com"),
		hostRecord(2, "b.example.com"),
		hostRecord(3, "c.example.com"),
		hostRecord(4, "d.example.com"),
		hostRecord(5, "e.example.com"),
	}

	summary, err := adapter.Ingest(context.Background(), records)
	if err != nil {
		t.Fatalf("Batch failure must not abort ingestion: %v", err)
	}
	if summary.Uploaded != 3 || summary.Failed != 2 || summary.Batches != 3 {
		t.Errorf("Summary wrong: %+v", summary)
	}
}

func TestIngest_ConnectionLossAborts(t *testing.T) {
	flaky := &flakyStore{
		MemoryStore: store.NewMemoryStore(),
		failOn:      map[int]error{2: fmt.Errorf("%w: dial tcp: refused", store.ErrConnection)},
	}
	adapter := NewAdapter(flaky).WithBatchSize(2)

	records := []model.Record{
		hostRecord(1, "a.example.com"),
		hostRecord(2, "b.example.com"),
		hostRecord(3, "c.example.com"),
		hostRecord(4, "d.example.com"),
	}

	summary, err := adapter.Ingest(context.Background(), records)
	if !errors.Is(err, store.ErrIngestionAborted) {
		t.Fatalf("Expected ErrIngestionAborted, got %v", err)
	}
	// 摘要反映中止前进度：第 1 批入库，剩余不再发出
	if summary.Uploaded != 2 || summary.Batches != 2 {
		t.Errorf("Summary wrong: %+v", summary)
	}
	if flaky.calls != 2 {
		t.Errorf("Remaining batches must not be sent, calls = %d", flaky.calls)
	}
}
