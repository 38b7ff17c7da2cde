/**
 * 结果输出接口定义
 * @author: Sun977
 * @date: 2026.08.12
 * @description: 定义转换结果输出的通用接口，解耦 Console/CSV 输出。
 */

package reporter

import (
	"context"

	"neovector/internal/core/model"
)

// TabularData 是一个可以被渲染为表格的数据接口
// 任何想要在控制台漂亮打印的记录都应该实现此接口
type TabularData interface {
	Headers() []string
	Rows() [][]string
}

// Reporter 定义记录输出的行为
type Reporter interface {
	// Report 输出一批记录
	Report(ctx context.Context, records []model.Record) error
}

// MultiReporter 支持同时向多个目标输出 (e.g., Console + CSV)
type MultiReporter struct {
	reporters []Reporter
}

func NewMultiReporter(reporters ...Reporter) *MultiReporter {
	return &MultiReporter{
		reporters: reporters,
	}
}

func (m *MultiReporter) Report(ctx context.Context, records []model.Record) error {
	var errs []error
	for _, r := range m.reporters {
		if err := r.Report(ctx, records); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errs[0] // 简单返回第一个错误
	}
	return nil
}
