/**
 * 进程内存储实现
 * @author: Sun977
 * @date: 2026.08.12
 * @description: local 模式的能力对象。Query 用词元重叠打分近似排序，
 *               语义排序仍然是远端向量库的职责；Get 的谓词求值与远端语义一致。
 */
package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
)

type memoryDoc struct {
	id       int
	document string
	metadata map[string]interface{}
}

// MemoryStore 按插入序保存文档的进程内存储
type MemoryStore struct {
	mu   sync.RWMutex
	docs map[int]*memoryDoc
	seq  []int // 插入顺序，保证遍历确定性
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		docs: make(map[int]*memoryDoc),
	}
}

func (s *MemoryStore) Upsert(ctx context.Context, ids []int, documents []string, metadatas []map[string]interface{}) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for i, id := range ids {
		if _, exists := s.docs[id]; !exists {
			s.seq = append(s.seq, id)
		}
		s.docs[id] = &memoryDoc{
			id:       id,
			document: documents[i],
			metadata: metadatas[i],
		}
	}
	return nil
}

// Query 词元重叠打分：查询词元命中越多距离越小
func (s *MemoryStore) Query(ctx context.Context, text string, k int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(text))
	if len(terms) == 0 || k <= 0 {
		return nil, nil
	}

	type scored struct {
		doc   *memoryDoc
		score int
	}
	var candidates []scored
	for _, id := range s.seq {
		doc := s.docs[id]
		lower := strings.ToLower(doc.document)
		score := 0
		for _, t := range terms {
			if strings.Contains(lower, t) {
				score++
			}
		}
		if score > 0 {
			candidates = append(candidates, scored{doc, score})
		}
	}

	// 得分降序，同分按 ID 保持稳定
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > k {
		candidates = candidates[:k]
	}

	hits := make([]Hit, 0, len(candidates))
	for _, c := range candidates {
		hits = append(hits, Hit{
			ID:       strconv.Itoa(c.doc.id),
			Document: c.doc.document,
			Metadata: c.doc.metadata,
			Distance: 1.0 - float64(c.score)/float64(len(terms)),
		})
	}
	return hits, nil
}

func (s *MemoryStore) Get(ctx context.Context, where Where, limit int) ([]Hit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var hits []Hit
	for _, id := range s.seq {
		doc := s.docs[id]
		if !matchWhere(doc.metadata, where) {
			continue
		}
		hits = append(hits, Hit{
			ID:       strconv.Itoa(doc.id),
			Document: doc.document,
			Metadata: doc.metadata,
		})
		if limit > 0 && len(hits) >= limit {
			break
		}
	}
	return hits, nil
}

func (s *MemoryStore) Count(ctx context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs), nil
}

// matchWhere 求值 Chroma 风格谓词：标量等值或 {$gt/$gte/$lt/$lte/$ne: v} 比较
func matchWhere(metadata map[string]interface{}, where Where) bool {
	for field, cond := range where {
		value, ok := metadata[field]
		if !ok {
			return false
		}

		ops, isOp := cond.(map[string]interface{})
		if !isOp {
			if !scalarEqual(value, cond) {
				return false
			}
			continue
		}

		for op, operand := range ops {
			switch op {
			case "$eq":
				if !scalarEqual(value, operand) {
					return false
				}
			case "$ne":
				if scalarEqual(value, operand) {
					return false
				}
			case "$gt", "$gte", "$lt", "$lte":
				lhs, lok := toFloat(value)
				rhs, rok := toFloat(operand)
				if !lok || !rok {
					return false
				}
				switch op {
				case "$gt":
					if !(lhs > rhs) {
						return false
					}
				case "$gte":
					if !(lhs >= rhs) {
						return false
					}
				case "$lt":
					if !(lhs < rhs) {
						return false
					}
				case "$lte":
					if !(lhs <= rhs) {
						return false
					}
				}
			default:
				return false
			}
		}
	}
	return true
}

func scalarEqual(a, b interface{}) bool {
	if af, aok := toFloat(a); aok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return a == b
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	case float32:
		return float64(n), true
	}
	return 0, false
}
