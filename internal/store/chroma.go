/**
 * ChromaDB HTTP 客户端
 * @author: Sun977
 * @date: 2026.08.12
 * @description: remote 模式的能力对象，按 ChromaDB REST 契约消费外部服务：
 *               get_or_create_collection / upsert / query / get / count。
 *               只依赖文档化的接口，不触碰库内部表示。
 */
package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"neovector/internal/pkg/version"
)

// ChromaStore ChromaDB 集合句柄
type ChromaStore struct {
	client       *http.Client
	baseURL      string
	authToken    string
	collectionID string
}

// NewChromaStore 连接服务端并 get_or_create 目标集合
// 服务不可达时返回 ErrConnection
func NewChromaStore(ctx context.Context, cfg Config) (*ChromaStore, error) {
	s := &ChromaStore{
		client: &http.Client{
			Timeout: 30 * time.Second,
		},
		baseURL:   fmt.Sprintf("http://%s:%d/api/v1", cfg.Host, cfg.Port),
		authToken: cfg.AuthToken,
	}

	// 心跳探测：尽早暴露连接问题而不是在第一批 upsert 时
	if err := s.heartbeat(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s:%d: %v", ErrConnection, cfg.Host, cfg.Port, err)
	}

	id, err := s.getOrCreateCollection(ctx, cfg.Collection, cfg.VectorSize)
	if err != nil {
		return nil, fmt.Errorf("get or create collection %q: %w", cfg.Collection, err)
	}
	s.collectionID = id
	return s, nil
}

func (s *ChromaStore) Upsert(ctx context.Context, ids []int, documents []string, metadatas []map[string]interface{}) error {
	strIDs := make([]string, len(ids))
	for i, id := range ids {
		strIDs[i] = strconv.Itoa(id)
	}

	body := map[string]interface{}{
		"ids":       strIDs,
		"documents": documents,
		"metadatas": metadatas,
	}
	return s.doRequest(ctx, "POST", "/collections/"+s.collectionID+"/upsert", body, nil)
}

func (s *ChromaStore) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	body := map[string]interface{}{
		"query_texts": []string{text},
		"n_results":   k,
		"include":     []string{"documents", "metadatas", "distances"},
	}

	// query 的结果按查询文本分组，外层各多一层数组
	var result struct {
		IDs       [][]string                 `json:"ids"`
		Documents [][]string                 `json:"documents"`
		Metadatas [][]map[string]interface{} `json:"metadatas"`
		Distances [][]float64                `json:"distances"`
	}
	if err := s.doRequest(ctx, "POST", "/collections/"+s.collectionID+"/query", body, &result); err != nil {
		return nil, err
	}
	if len(result.IDs) == 0 {
		return nil, nil
	}

	// include 字段服务端可能整组置空 (null)，外层切片逐个判空
	hits := make([]Hit, 0, len(result.IDs[0]))
	for i, id := range result.IDs[0] {
		hit := Hit{ID: id}
		if len(result.Documents) > 0 && i < len(result.Documents[0]) {
			hit.Document = result.Documents[0][i]
		}
		if len(result.Metadatas) > 0 && i < len(result.Metadatas[0]) {
			hit.Metadata = result.Metadatas[0][i]
		}
		if len(result.Distances) > 0 && i < len(result.Distances[0]) {
			hit.Distance = result.Distances[0][i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *ChromaStore) Get(ctx context.Context, where Where, limit int) ([]Hit, error) {
	body := map[string]interface{}{
		"where":   where,
		"include": []string{"documents", "metadatas"},
	}
	if limit > 0 {
		body["limit"] = limit
	}

	var result struct {
		IDs       []string                 `json:"ids"`
		Documents []string                 `json:"documents"`
		Metadatas []map[string]interface{} `json:"metadatas"`
	}
	if err := s.doRequest(ctx, "POST", "/collections/"+s.collectionID+"/get", body, &result); err != nil {
		return nil, err
	}

	hits := make([]Hit, 0, len(result.IDs))
	for i, id := range result.IDs {
		hit := Hit{ID: id}
		if i < len(result.Documents) {
			hit.Document = result.Documents[i]
		}
		if i < len(result.Metadatas) {
			hit.Metadata = result.Metadatas[i]
		}
		hits = append(hits, hit)
	}
	return hits, nil
}

func (s *ChromaStore) Count(ctx context.Context) (int, error) {
	var count int
	if err := s.doRequest(ctx, "GET", "/collections/"+s.collectionID+"/count", nil, &count); err != nil {
		return 0, err
	}
	return count, nil
}

// ==================== 内部方法 ====================

func (s *ChromaStore) heartbeat(ctx context.Context) error {
	return s.doRequest(ctx, "GET", "/heartbeat", nil, nil)
}

func (s *ChromaStore) getOrCreateCollection(ctx context.Context, name string, vectorSize int) (string, error) {
	body := map[string]interface{}{
		"name":          name,
		"get_or_create": true,
	}
	// 向量维度随建集合请求下发，已存在的集合由服务端忽略该元数据
	if vectorSize > 0 {
		body["metadata"] = map[string]interface{}{"vector_size": vectorSize}
	}
	var result struct {
		ID string `json:"id"`
	}
	if err := s.doRequest(ctx, "POST", "/collections", body, &result); err != nil {
		return "", err
	}
	if result.ID == "" {
		// 部分版本直接以集合名寻址
		return name, nil
	}
	return result.ID, nil
}

// doRequest 执行一次 HTTP 请求并解码响应
// 传输层失败包装为 ErrConnection，供上层区分批内失败与连接中断
func (s *ChromaStore) doRequest(ctx context.Context, method, path string, body, out interface{}) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", version.GetUserAgent())
	if s.authToken != "" {
		req.Header.Set("Authorization", "Bearer "+s.authToken)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("chroma %s %s: status %d: %s", method, path, resp.StatusCode, string(data))
	}

	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}
