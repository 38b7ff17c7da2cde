package reporter

import (
	"context"
	"fmt"

	"neovector/internal/core/model"

	"github.com/pterm/pterm" // 引入 pterm 库用于控制台输出
)

// ConsoleReporter 控制台输出
type ConsoleReporter struct{}

func NewConsoleReporter() *ConsoleReporter {
	return &ConsoleReporter{}
}

// Report 按记录类型分组渲染表格
// 不同类型表头不同，混在一张表里没法看
func (r *ConsoleReporter) Report(ctx context.Context, records []model.Record) error {
	if len(records) == 0 {
		pterm.Warning.Println("No records to display.")
		return nil
	}

	groups := groupByType(records)
	for _, recordType := range []string{
		model.RecordTypeHost,
		model.RecordTypePortService,
		model.RecordTypeProtocolStatus,
		model.RecordTypeLogEntry,
	} {
		group := groups[recordType]
		if len(group) == 0 {
			continue
		}

		var headers []string
		var allRows [][]string
		for _, rec := range group {
			tabular, ok := rec.(TabularData)
			if !ok {
				continue
			}
			if len(headers) == 0 {
				headers = tabular.Headers()
			}
			allRows = append(allRows, tabular.Rows()...)
		}

		if len(headers) == 0 {
			continue
		}
		pterm.Println(pterm.LightGreen(fmt.Sprintf("%s (%d records)", recordType, len(group))))
		if err := r.printTableFromData(headers, allRows); err != nil {
			return err
		}
	}
	return nil
}

// groupByType 保持组内原始顺序
func groupByType(records []model.Record) map[string][]model.Record {
	groups := make(map[string][]model.Record)
	for _, rec := range records {
		groups[rec.Type()] = append(groups[rec.Type()], rec)
	}
	return groups
}

func (r *ConsoleReporter) printTableFromData(headers []string, rows [][]string) error {
	if len(rows) == 0 {
		return nil
	}

	// 使用 pterm 渲染表格
	tableData := pterm.TableData{headers}
	tableData = append(tableData, rows...)

	err := pterm.DefaultTable.
		WithHasHeader(true).
		WithBoxed(false). // 简洁风格
		WithData(tableData).
		Render()

	if err != nil {
		return fmt.Errorf("failed to render table: %w", err)
	}
	return nil
}
