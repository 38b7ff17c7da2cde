package store

import (
	"context"
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
)

// fakeChroma 模拟 ChromaDB REST 接口，记录收到的请求体供断言
type fakeChroma struct {
	collectionsBody map[string]interface{}
	upsertBody      map[string]interface{}
	queryBody       map[string]interface{}
	getBody         map[string]interface{}
	queryResponse   string // 非空时覆盖 query 的默认响应
	lastAuth        string
	lastUA          string
}

func (f *fakeChroma) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/heartbeat", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewEncoder(w).Encode(map[string]int64{"nanosecond heartbeat": 1})
	})
	mux.HandleFunc("/api/v1/collections", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewDecoder(r.Body).Decode(&f.collectionsBody)
		if f.collectionsBody["get_or_create"] != true {
			http.Error(w, "expected get_or_create", http.StatusBadRequest)
			return
		}
		json.NewEncoder(w).Encode(map[string]string{"id": "col-uuid-1"})
	})
	mux.HandleFunc("/api/v1/collections/col-uuid-1/upsert", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewDecoder(r.Body).Decode(&f.upsertBody)
		w.WriteHeader(http.StatusCreated)
	})
	mux.HandleFunc("/api/v1/collections/col-uuid-1/query", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewDecoder(r.Body).Decode(&f.queryBody)
		if f.queryResponse != "" {
			w.Write([]byte(f.queryResponse))
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ids":       [][]string{{"1", "2"}},
			"documents": [][]string{{"doc one", "doc two"}},
			"metadatas": [][]map[string]interface{}{{
				{"record_type": "host"},
				{"record_type": "port_service"},
			}},
			"distances": [][]float64{{0.12, 0.34}},
		})
	})
	mux.HandleFunc("/api/v1/collections/col-uuid-1/get", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		json.NewDecoder(r.Body).Decode(&f.getBody)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"ids":       []string{"3"},
			"documents": []string{"doc three"},
			"metadatas": []map[string]interface{}{{"state": "up"}},
		})
	})
	mux.HandleFunc("/api/v1/collections/col-uuid-1/count", func(w http.ResponseWriter, r *http.Request) {
		f.record(r)
		w.Write([]byte("42"))
	})
	return mux
}

func (f *fakeChroma) record(r *http.Request) {
	f.lastAuth = r.Header.Get("Authorization")
	f.lastUA = r.Header.Get("User-Agent")
}

func startFakeChroma(t *testing.T) (*fakeChroma, Config) {
	t.Helper()
	fake := &fakeChroma{}
	server := httptest.NewServer(fake.handler())
	t.Cleanup(server.Close)

	u, err := url.Parse(server.URL)
	if err != nil {
		t.Fatalf("Parse server URL failed: %v", err)
	}
	host, portStr, err := net.SplitHostPort(u.Host)
	if err != nil {
		t.Fatalf("SplitHostPort failed: %v", err)
	}
	port, _ := strconv.Atoi(portStr)

	return fake, Config{
		Mode:       ModeRemote,
		Host:       host,
		Port:       port,
		Collection: "security_scans",
		AuthToken:  "secret-token",
		VectorSize: 384,
	}
}

func TestChromaStore_Connect(t *testing.T) {
	fake, cfg := startFakeChroma(t)

	s, err := NewChromaStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}
	if s.collectionID != "col-uuid-1" {
		t.Errorf("Expected collection ID from server, got %q", s.collectionID)
	}
	if fake.lastAuth != "Bearer secret-token" {
		t.Errorf("Expected bearer auth header, got %q", fake.lastAuth)
	}
	if !strings.HasPrefix(fake.lastUA, "NeoVector/") {
		t.Errorf("Expected NeoVector user agent, got %q", fake.lastUA)
	}

	// 建集合请求携带配置的向量维度
	meta, _ := fake.collectionsBody["metadata"].(map[string]interface{})
	if meta["vector_size"] != float64(384) {
		t.Errorf("Expected vector_size 384 in collection metadata, got %v", fake.collectionsBody["metadata"])
	}
}

func TestChromaStore_ConnectionRefused(t *testing.T) {
	// 监听后立即关闭，拿到一个必然拒绝连接的端口
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen failed: %v", err)
	}
	port := l.Addr().(*net.TCPAddr).Port
	l.Close()

	_, err = NewChromaStore(context.Background(), Config{
		Mode:       ModeRemote,
		Host:       "127.0.0.1",
		Port:       port,
		Collection: "security_scans",
	})
	if !errors.Is(err, ErrConnection) {
		t.Fatalf("Expected ErrConnection, got %v", err)
	}
}

func TestChromaStore_UpsertStringifiesIDs(t *testing.T) {
	fake, cfg := startFakeChroma(t)
	s, err := NewChromaStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}

	err = s.Upsert(context.Background(),
		[]int{1, 2},
		[]string{"doc one", "doc two"},
		[]map[string]interface{}{{"record_type": "host"}, {"record_type": "host"}},
	)
	if err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	ids, ok := fake.upsertBody["ids"].([]interface{})
	if !ok || len(ids) != 2 {
		t.Fatalf("Expected 2 ids in upsert body, got %v", fake.upsertBody["ids"])
	}
	if ids[0] != "1" || ids[1] != "2" {
		t.Errorf("IDs must be sent as strings, got %v", ids)
	}
}

func TestChromaStore_Query(t *testing.T) {
	fake, cfg := startFakeChroma(t)
	s, err := NewChromaStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}

	hits, err := s.Query(context.Background(), "web server", 5)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("Expected 2 hits, got %d", len(hits))
	}
	if hits[0].ID != "1" || hits[0].Document != "doc one" || hits[0].Distance != 0.12 {
		t.Errorf("First hit wrong: %+v", hits[0])
	}
	if hits[1].Metadata["record_type"] != "port_service" {
		t.Errorf("Second hit metadata wrong: %+v", hits[1].Metadata)
	}

	texts, _ := fake.queryBody["query_texts"].([]interface{})
	if len(texts) != 1 || texts[0] != "web server" {
		t.Errorf("Query body wrong: %v", fake.queryBody)
	}
	if fake.queryBody["n_results"] != float64(5) {
		t.Errorf("Expected n_results 5, got %v", fake.queryBody["n_results"])
	}
}

func TestChromaStore_QueryNullIncludeFields(t *testing.T) {
	// 服务端可能把 include 字段整组置 null，只回 ids
	fake, cfg := startFakeChroma(t)
	fake.queryResponse = `{"ids":[["1"]],"documents":null,"metadatas":null,"distances":null}`

	s, err := NewChromaStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}

	hits, err := s.Query(context.Background(), "web server", 5)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(hits) != 1 {
		t.Fatalf("Expected 1 hit, got %d", len(hits))
	}
	if hits[0].ID != "1" {
		t.Errorf("Expected hit ID 1, got %q", hits[0].ID)
	}
	if hits[0].Document != "" || hits[0].Metadata != nil || hits[0].Distance != 0 {
		t.Errorf("Omitted fields should stay zero-valued: %+v", hits[0])
	}
}

func TestChromaStore_GetAndCount(t *testing.T) {
	fake, cfg := startFakeChroma(t)
	s, err := NewChromaStore(context.Background(), cfg)
	if err != nil {
		t.Fatalf("NewChromaStore failed: %v", err)
	}

	hits, err := s.Get(context.Background(), Where{"state": "up"}, 10)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if len(hits) != 1 || hits[0].ID != "3" || hits[0].Metadata["state"] != "up" {
		t.Fatalf("Get result wrong: %+v", hits)
	}
	where, _ := fake.getBody["where"].(map[string]interface{})
	if where["state"] != "up" {
		t.Errorf("Where clause not forwarded: %v", fake.getBody)
	}
	if fake.getBody["limit"] != float64(10) {
		t.Errorf("Limit not forwarded: %v", fake.getBody["limit"])
	}

	count, err := s.Count(context.Background())
	if err != nil {
		t.Fatalf("Count failed: %v", err)
	}
	if count != 42 {
		t.Errorf("Expected count 42, got %d", count)
	}
}
