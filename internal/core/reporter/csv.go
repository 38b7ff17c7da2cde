package reporter

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"

	"neovector/internal/core/model"
)

// CsvReporter 负责将记录导出为 CSV 文件
type CsvReporter struct {
	FilePath string
}

func NewCsvReporter(filePath string) *CsvReporter {
	return &CsvReporter{
		FilePath: filePath,
	}
}

func (r *CsvReporter) Report(ctx context.Context, records []model.Record) error {
	return SaveCsvRecords(r.FilePath, records)
}

// SaveCsvRecords 一次性将记录保存为 CSV
// 不同记录类型表头不同，只导出第一种类型的表头，混合类型按行追加
func SaveCsvRecords(path string, records []model.Record) error {
	if len(records) == 0 {
		return nil
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create csv file: %v", err)
	}
	defer f.Close()

	// 写入 UTF-8 BOM，防止 Excel 打开乱码
	f.WriteString("\xEF\xBB\xBF")

	w := csv.NewWriter(f)
	defer w.Flush()

	var headers []string
	var allRows [][]string

	// 1. 收集数据
	for _, rec := range records {
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
		return fmt.Errorf("no tabular data found to export")
	}

	// 2. 写入表头
	if err := w.Write(headers); err != nil {
		return fmt.Errorf("failed to write headers: %v", err)
	}

	// 3. 写入行数据
	if err := w.WriteAll(allRows); err != nil {
		return fmt.Errorf("failed to write rows: %v", err)
	}

	fmt.Printf("[+] Records saved to %s\n", path)
	return nil
}
