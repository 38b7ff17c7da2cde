/**
 * 入库适配器
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 把装配完成的记录批量 upsert 到向量库。单批失败记录后继续，
 *               连接级失败中止剩余批次；ID 分配在任何调度之前已经完成。
 */
package ingest

import (
	"context"
	"errors"
	"fmt"

	"neovector/internal/core/model"
	"neovector/internal/pkg/logger"
	"neovector/internal/store"
)

// 默认批大小，与原始上传脚本保持一致
const DefaultBatchSize = 100

// Summary 一次入库的统计
type Summary struct {
	Prepared int // 准备上传的记录数
	Uploaded int // 成功上传的记录数
	Failed   int // 失败批次内的记录数
	Batches  int // 发出的批次数
}

// Adapter 入库适配器
type Adapter struct {
	store     store.Store
	batchSize int
}

func NewAdapter(s store.Store) *Adapter {
	return &Adapter{
		store:     s,
		batchSize: DefaultBatchSize,
	}
}

// WithBatchSize 覆盖批大小 (测试用)
func (a *Adapter) WithBatchSize(n int) *Adapter {
	if n > 0 {
		a.batchSize = n
	}
	return a
}

// Ingest 上传全部记录
// 返回的 Summary 在出错时同样有效，反映中止前的进度
func (a *Adapter) Ingest(ctx context.Context, records []model.Record) (*Summary, error) {
	summary := &Summary{Prepared: len(records)}
	if len(records) == 0 {
		return summary, nil
	}

	ids := make([]int, len(records))
	documents := make([]string, len(records))
	metadatas := make([]map[string]interface{}, len(records))
	for i, rec := range records {
		ids[i] = rec.Header().ID
		documents[i] = BuildDocument(rec)
		metadatas[i] = BuildMetadata(rec)
	}

	for start := 0; start < len(ids); start += a.batchSize {
		end := start + a.batchSize
		if end > len(ids) {
			end = len(ids)
		}
		summary.Batches++

		err := a.store.Upsert(ctx, ids[start:end], documents[start:end], metadatas[start:end])
		if err == nil {
			summary.Uploaded += end - start
			logger.Debugf("uploaded batch %d (%d records)", summary.Batches, end-start)
			continue
		}

		if errors.Is(err, store.ErrConnection) {
			// 连接中断：已入库的保留，剩余批次不再发出
			return summary, fmt.Errorf("batch %d: %w: %v", summary.Batches, store.ErrIngestionAborted, err)
		}

		// 批内失败：记录后继续后续批次
		summary.Failed += end - start
		logger.Warnf("batch %d failed (%d records): %v", summary.Batches, end-start, err)
	}
	return summary, nil
}
